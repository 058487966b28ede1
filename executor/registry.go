package executor

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Option 注册表选项
type Option func(r *Registry)

// WithConfig 使用给定的池大小配置
func WithConfig(conf Config) Option {
	return func(r *Registry) {
		r.conf = conf
	}
}

// WithGroupWorkers 为单个执行组指定工作协程数，仅对尚未创建的执行组生效
func WithGroupWorkers(key string, workers int) Option {
	return func(r *Registry) {
		if r.conf.GroupWorkers == nil {
			r.conf.GroupWorkers = make(map[string]int)
		}
		r.conf.GroupWorkers[key] = workers
	}
}

// WithLogger 指定日志输出，默认使用 logrus 标准 logger
func WithLogger(log logrus.FieldLogger) Option {
	return func(r *Registry) {
		r.log = log
	}
}

// Registry 执行组注册表，是命令执行所需的显式上下文对象。
// 每个命令在构造时获得注册表引用；根命令的所有者负责在结束时调用 Close。
type Registry struct {
	mu     sync.Mutex
	groups map[string]*Group
	keys   []string
	closed bool

	conf Config
	log  logrus.FieldLogger
}

// NewRegistry 创建空注册表，执行组在首次使用时创建。
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		groups: make(map[string]*Group),
		conf:   Config{DefaultWorkers: DefaultWorkers},
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Group 返回 key 对应的执行组，不存在时原子地创建。
// 同一个 key 在注册表生命周期内总是返回同一个实例，池大小创建后不再调整。
// 注册表关闭后新创建的执行组处于关闭状态，向其提交任务会得到 ErrGroupClosed。
func (r *Registry) Group(key string) *Group {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g, ok := r.groups[key]; ok {
		return g
	}

	g := newGroup(key, r.conf.workersFor(key), r.log)
	if r.closed {
		g.shutdown()
	}
	r.groups[key] = g
	r.keys = append(r.keys, key)
	return g
}

// Keys 按创建顺序返回已有执行组的 key
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

// Logger 返回注册表使用的日志记录器
func (r *Registry) Logger() logrus.FieldLogger {
	return r.log
}

// Closed 报告注册表是否已关闭
func (r *Registry) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Close 并发关闭所有执行组并等待其工作协程退出。
// 运行中的任务自然结束；排队未开始的任务以 ErrGroupClosed 失败。
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	groups := make([]*Group, 0, len(r.keys))
	for _, key := range r.keys {
		groups = append(groups, r.groups[key])
	}
	r.mu.Unlock()

	r.log.WithField("groups", len(groups)).Info("closing executor registry")

	var eg errgroup.Group
	for _, g := range groups {
		g := g
		eg.Go(func() error {
			return g.Close(ctx)
		})
	}
	return eg.Wait()
}
