package executor

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/favbox/taskchain/internal"
)

// ErrGroupClosed 执行组已关闭，任务不会再被启动
var ErrGroupClosed = errors.New("executor group closed")

// job 排队中的任务
type job struct {
	ctx    context.Context
	run    func(ctx context.Context)
	reject func(err error)
}

// Group 按 key 命名的固定大小工作协程池。
// 任务按提交顺序 FIFO 出队；同一 Group 内最多 Workers() 个任务同时运行。
type Group struct {
	key     string
	workers int

	queue   *internal.Queue[*job]
	running atomic.Int64
	closed  atomic.Bool
	wg      sync.WaitGroup
	done    chan struct{}

	log logrus.FieldLogger
}

func newGroup(key string, workers int, log logrus.FieldLogger) *Group {
	g := &Group{
		key:     key,
		workers: workers,
		queue:   internal.NewQueue[*job](),
		done:    make(chan struct{}),
		log:     log.WithField("group", key),
	}

	g.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go g.loop(i)
	}

	g.log.WithField("workers", workers).Debug("executor group started")
	return g
}

// Key 返回执行组的 key
func (g *Group) Key() string { return g.key }

// Workers 返回工作协程数，创建后不变
func (g *Group) Workers() int { return g.workers }

// Pending 返回排队中尚未开始的任务数
func (g *Group) Pending() int { return g.queue.Len() }

// Running 返回正在运行的任务数
func (g *Group) Running() int { return int(g.running.Load()) }

// Closed 报告执行组是否已关闭
func (g *Group) Closed() bool { return g.closed.Load() }

// Submit 将任务放入队列，永不阻塞调用方。
// run 在某个工作协程上执行，其 context 携带 Worker 标识；
// 若执行组在任务开始前关闭，则改为调用 reject(ErrGroupClosed)。
// 执行组已关闭时直接返回 ErrGroupClosed，run 和 reject 都不会被调用。
func (g *Group) Submit(ctx context.Context, run func(ctx context.Context), reject func(err error)) error {
	if run == nil {
		return errors.New("submit nil task")
	}
	if g.closed.Load() {
		return ErrGroupClosed
	}
	if !g.queue.Push(&job{ctx: ctx, run: run, reject: reject}) {
		return ErrGroupClosed
	}
	return nil
}

func (g *Group) loop(idx int) {
	defer g.wg.Done()

	w := Worker{Group: g.key, Index: idx}
	for {
		j, ok := g.queue.Pop()
		if !ok {
			return
		}
		g.execute(w, j)
	}
}

// execute 运行单个任务；任务内未捕获的 panic 只记录日志，不会杀死工作协程
func (g *Group) execute(w Worker, j *job) {
	g.running.Add(1)
	defer func() {
		g.running.Add(-1)
		if e := recover(); e != nil {
			g.log.WithFields(logrus.Fields{
				"worker": w.String(),
				"panic":  e,
			}).Errorf("executor task panicked\n%s", debug.Stack())
		}
	}()

	ctx := j.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	j.run(WithWorker(ctx, w))
}

// Close 关闭执行组：不再接收新任务，排队未开始的任务以 ErrGroupClosed 拒绝，
// 运行中的任务继续执行直至结束。Close 等待所有工作协程退出，或 ctx 结束。
// 重复调用是安全的。
func (g *Group) Close(ctx context.Context) error {
	g.shutdown()

	select {
	case <-g.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("close executor group[%s]: %w", g.key, ctx.Err())
	}
}

func (g *Group) shutdown() {
	if !g.closed.CompareAndSwap(false, true) {
		return
	}

	pending := g.queue.Close()
	g.log.WithFields(logrus.Fields{
		"pending": len(pending),
		"running": g.running.Load(),
	}).Info("executor group closing")

	for _, j := range pending {
		if j.reject != nil {
			j.reject(ErrGroupClosed)
		}
	}

	go func() {
		g.wg.Wait()
		close(g.done)
	}()
}
