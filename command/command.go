package command

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/favbox/taskchain/callbacks"
	"github.com/favbox/taskchain/executor"
	"github.com/favbox/taskchain/internal/generic"
	"github.com/favbox/taskchain/internal/safe"
)

var tracer = otel.Tracer("github.com/favbox/taskchain/command")

// ====== 命令选项 ======

type options[O any] struct {
	fallback  func(ctx context.Context, err error) (O, error)
	onSuccess func(O)
	onFailure func(error)
	handlers  []callbacks.Handler
}

// Option 命令选项
type Option[O any] func(o *options[O])

// WithFallback 配置降级函数，命令体失败时以其返回值作为结果。
// 降级函数每次失败的运行最多调用一次，err 为命令体的原始错误。
func WithFallback[O any](fn func(ctx context.Context, err error) (O, error)) Option[O] {
	return func(o *options[O]) {
		o.fallback = fn
	}
}

// WithFallbackValue 配置固定降级值
func WithFallbackValue[O any](v O) Option[O] {
	return WithFallback(func(context.Context, error) (O, error) {
		return v, nil
	})
}

// WithOnSuccess 命令体成功时在工作协程上调用
func WithOnSuccess[O any](fn func(O)) Option[O] {
	return func(o *options[O]) {
		o.onSuccess = fn
	}
}

// WithOnFailure 命令体失败（含执行组关闭）时在工作协程上调用，
// 与 WithOnSuccess 互斥，每次运行恰好触发其一。
func WithOnFailure[O any](fn func(error)) Option[O] {
	return func(o *options[O]) {
		o.onFailure = fn
	}
}

// WithCallbacks 为命令附加生命周期回调，在 context 中的回调之后执行
func WithCallbacks[O any](handlers ...callbacks.Handler) Option[O] {
	return func(o *options[O]) {
		o.handlers = append(o.handlers, handlers...)
	}
}

// ====== 命令基础状态机 ======

// Info 命令标识
type Info struct {
	Key   string
	Group string
}

// task 任务树节点持有的类型擦除命令
type task interface {
	info() Info
	registry() *executor.Registry
	start(ctx context.Context, in any) <-chan struct{}
	result() outcome
}

// base 命令的公共部分：标识、钩子、状态机与记忆化的执行句柄。
// 一个实例最多运行一次；重复提交直接复用第一次的结果。
type base[O any] struct {
	key   string
	group string
	reg   *executor.Registry

	body func(ctx context.Context, in any) (O, error)
	opts *options[O]

	state atomic.Uint32
	once  sync.Once
	done  chan struct{}
	out   outcome
}

func newBase[O any](reg *executor.Registry, group, key string, body func(ctx context.Context, in any) (O, error), opts []Option[O]) *base[O] {
	o := &options[O]{}
	for _, opt := range opts {
		opt(o)
	}
	if key == "" {
		key = uuid.NewString()
	}
	return &base[O]{
		key:   key,
		group: group,
		reg:   reg,
		body:  body,
		opts:  o,
		done:  make(chan struct{}),
	}
}

// Key 返回命令标识
func (b *base[O]) Key() string { return b.key }

// Group 返回命令所属执行组
func (b *base[O]) Group() string { return b.group }

// State 返回当前状态
func (b *base[O]) State() State { return State(b.state.Load()) }

// Outcome 返回已确定的结果，命令尚未结束时第二个返回值为 false
func (b *base[O]) Outcome() (Outcome[O], bool) {
	select {
	case <-b.done:
		return typed[O](0, b.key, b.out), true
	default:
		return Outcome[O]{Key: b.key}, false
	}
}

func (b *base[O]) info() Info {
	return Info{Key: b.key, Group: b.group}
}

func (b *base[O]) registry() *executor.Registry {
	return b.reg
}

func (b *base[O]) result() outcome {
	<-b.done
	return b.out
}

// start 把命令提交到执行组，返回完成信号。只有第一次调用生效。
// 命令体使用去除了取消信号的 context：调用方的截止时间只约束等待，不中断运行中的命令。
func (b *base[O]) start(ctx context.Context, in any) <-chan struct{} {
	b.once.Do(func() {
		b.state.Store(uint32(StateRunning))
		runCtx := context.WithoutCancel(ctx)
		err := b.reg.Group(b.group).Submit(runCtx, func(wctx context.Context) {
			b.execute(wctx, in)
		}, b.reject)
		if err != nil {
			b.reject(err)
		}
	})
	return b.done
}

func (b *base[O]) finish(o outcome) {
	b.out = o
	close(b.done)
}

// reject 执行组在命令开始前关闭
func (b *base[O]) reject(error) {
	b.state.Store(uint32(StateFailed))
	err := &ShutdownFailure{Key: b.key, Group: b.group}
	b.hook(func() {
		if b.opts.onFailure != nil {
			b.opts.onFailure(err)
		}
	})
	b.finish(outcome{err: err})
}

// execute 在工作协程上运行命令体，必要时运行降级函数
func (b *base[O]) execute(ctx context.Context, in any) {
	info := &callbacks.RunInfo{Key: b.key, Group: b.group}
	if w, ok := executor.WorkerFrom(ctx); ok {
		info.Worker = w.String()
	}

	ctx, span := tracer.Start(ctx, "command "+b.key, trace.WithAttributes(
		attribute.String("taskchain.command.key", b.key),
		attribute.String("taskchain.command.group", b.group),
		attribute.String("taskchain.worker", info.Worker),
	))
	defer span.End()

	cbm := callbacks.NewManager(ctx, info, b.opts.handlers...)
	ctx = b.observe(ctx, func() context.Context { return cbm.OnStart(ctx, in) })

	v, err := b.invoke(ctx, in)
	if err == nil {
		b.state.Store(uint32(StateSucceeded))
		b.hook(func() {
			if b.opts.onSuccess != nil {
				b.opts.onSuccess(v)
			}
		})
		b.observe(ctx, func() context.Context { return cbm.OnEnd(ctx, v) })
		b.finish(outcome{value: v})
		return
	}

	b.state.Store(uint32(StateFailed))
	span.RecordError(err)
	b.hook(func() {
		if b.opts.onFailure != nil {
			b.opts.onFailure(err)
		}
	})
	ctx = b.observe(ctx, func() context.Context { return cbm.OnError(ctx, err) })

	if b.opts.fallback == nil {
		span.SetStatus(codes.Error, err.Error())
		b.finish(outcome{err: &ExecutionFailure{Key: b.key, Group: b.group, Err: err}})
		return
	}

	fv, ferr := b.recoverWith(ctx, err)
	if ferr != nil {
		span.SetStatus(codes.Error, ferr.Error())
		b.finish(outcome{err: &ExecutionFailure{Key: b.key, Group: b.group, Err: err, FallbackErr: ferr}})
		return
	}

	b.state.Store(uint32(StateFallback))
	span.SetAttributes(attribute.Bool("taskchain.fallback", true))
	b.observe(ctx, func() context.Context { return cbm.OnFallback(ctx, err, fv) })
	b.finish(outcome{
		value:     fv,
		recovered: &RecoveredFailure{Key: b.key, Group: b.group, Err: err},
	})
}

func (b *base[O]) invoke(ctx context.Context, in any) (v O, err error) {
	defer func() {
		if e := recover(); e != nil {
			err = safe.NewPanicErr(e, debug.Stack())
		}
	}()
	return b.body(ctx, in)
}

func (b *base[O]) recoverWith(ctx context.Context, cause error) (v O, err error) {
	defer func() {
		if e := recover(); e != nil {
			err = safe.NewPanicErr(fmt.Errorf("panic in fallback: %v", e), debug.Stack())
		}
	}()
	return b.opts.fallback(ctx, cause)
}

// hook 运行用户钩子；钩子 panic 只记录日志，不影响结果的确定
func (b *base[O]) hook(fn func()) {
	defer func() {
		if e := recover(); e != nil {
			b.reg.Logger().WithField("command", b.key).
				WithField("group", b.group).
				Warnf("command hook panicked: %v", e)
		}
	}()
	fn()
}

// observe 运行生命周期回调，回调 panic 时沿用原 context
func (b *base[O]) observe(ctx context.Context, fn func() context.Context) context.Context {
	next := ctx
	b.hook(func() {
		next = fn()
	})
	return next
}

// ====== 零输入命令 ======

// Command 零输入命令，输出类型为 O
type Command[O any] struct {
	*base[O]
}

// New 创建零输入命令。key 为空时生成随机标识。
// reg 是命令运行所需的执行组注册表，group 选择命令所在的执行组。
func New[O any](reg *executor.Registry, group, key string, run func(ctx context.Context) (O, error), opts ...Option[O]) *Command[O] {
	body := func(ctx context.Context, _ any) (O, error) {
		return run(ctx)
	}
	return &Command[O]{base: newBase(reg, group, key, body, opts)}
}

// Chain 返回只包含该命令的任务树
func (c *Command[O]) Chain() Chain[O] {
	n, err := c.graph()
	return Chain[O]{root: n, err: err}
}

func (c *Command[O]) graph() (*node, error) {
	if c == nil || c.base == nil {
		return nil, ErrNilCommand
	}
	return &node{cmd: c.base}, nil
}

// Before 见 Chain.Before
func (c *Command[O]) Before(others ...Graph) Chain[O] {
	return c.Chain().Before(others...)
}

// InParallel 见 Chain.InParallel
func (c *Command[O]) InParallel(others ...Source[O]) Chain[O] {
	return c.Chain().InParallel(others...)
}

// Submit 异步提交，立即返回结果句柄
func (c *Command[O]) Submit(ctx context.Context) *Result[O] {
	return c.Chain().Submit(ctx)
}

// Execute 同步执行：阻塞到命令结束，返回结果或降级值；
// 失败且无降级时返回 *ExecutionFailure。
func (c *Command[O]) Execute(ctx context.Context) (O, error) {
	return c.Submit(ctx).Value(ctx)
}

// ====== 单输入命令 ======

// Step 单输入命令，接收 I，输出 O。
// 通过 Into 接在生产者之后，或通过 Bind 直接绑定输入。
type Step[I, O any] struct {
	*base[O]
}

// NewStep 创建单输入命令
func NewStep[I, O any](reg *executor.Registry, group, key string, run func(ctx context.Context, in I) (O, error), opts ...Option[O]) *Step[I, O] {
	body := func(ctx context.Context, in any) (O, error) {
		return run(ctx, generic.Cast[I](in))
	}
	return &Step[I, O]{base: newBase(reg, group, key, body, opts)}
}

// Bind 以固定输入构造任务树
func (s *Step[I, O]) Bind(in I) Chain[O] {
	if s == nil || s.base == nil {
		return Chain[O]{err: ErrNilCommand}
	}
	return Chain[O]{root: &node{cmd: s.base, input: in}}
}

// Submit 以给定输入异步提交
func (s *Step[I, O]) Submit(ctx context.Context, in I) *Result[O] {
	return s.Bind(in).Submit(ctx)
}

// Execute 以给定输入同步执行
func (s *Step[I, O]) Execute(ctx context.Context, in I) (O, error) {
	return s.Submit(ctx, in).Value(ctx)
}
