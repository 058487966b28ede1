package callbacks

import "context"

type ctxHandlersKey struct{}

// WithHandlers 返回携带追加处理器的新 context。
// 已有处理器保持在前，新的处理器追加在后。
func WithHandlers(ctx context.Context, handlers ...Handler) context.Context {
	if len(handlers) == 0 {
		return ctx
	}

	exist := HandlersFrom(ctx)
	hs := make([]Handler, 0, len(exist)+len(handlers))
	hs = append(hs, exist...)
	hs = append(hs, handlers...)
	return context.WithValue(ctx, ctxHandlersKey{}, hs)
}

// HandlersFrom 返回 context 中的处理器
func HandlersFrom(ctx context.Context) []Handler {
	hs, _ := ctx.Value(ctxHandlersKey{}).([]Handler)
	return hs
}

// Manager 一次命令运行的回调分发器。
// OnStart 按注册顺序调用；OnEnd、OnError、OnFallback 按注册的逆序调用，
// 与函数调用栈的展开顺序一致。
type Manager struct {
	info     *RunInfo
	handlers []Handler
}

// NewManager 合并 context 中的处理器与命令自带的处理器。
// 没有任何处理器时返回 nil，nil Manager 的所有方法都是空操作。
func NewManager(ctx context.Context, info *RunInfo, handlers ...Handler) *Manager {
	exist := HandlersFrom(ctx)
	if len(exist)+len(handlers) == 0 {
		return nil
	}

	hs := make([]Handler, 0, len(exist)+len(handlers))
	hs = append(hs, exist...)
	hs = append(hs, handlers...)
	return &Manager{info: info, handlers: hs}
}

func (m *Manager) needed(ctx context.Context, h Handler, timing CallbackTiming) bool {
	tc, ok := h.(TimingChecker)
	return !ok || tc.Needed(ctx, m.info, timing)
}

// OnStart 分发开始回调
func (m *Manager) OnStart(ctx context.Context, input CallbackInput) context.Context {
	if m == nil {
		return ctx
	}
	for _, h := range m.handlers {
		if m.needed(ctx, h, TimingOnStart) {
			ctx = h.OnStart(ctx, m.info, input)
		}
	}
	return ctx
}

// OnEnd 分发成功回调
func (m *Manager) OnEnd(ctx context.Context, output CallbackOutput) context.Context {
	if m == nil {
		return ctx
	}
	for i := len(m.handlers) - 1; i >= 0; i-- {
		if h := m.handlers[i]; m.needed(ctx, h, TimingOnEnd) {
			ctx = h.OnEnd(ctx, m.info, output)
		}
	}
	return ctx
}

// OnError 分发失败回调
func (m *Manager) OnError(ctx context.Context, err error) context.Context {
	if m == nil {
		return ctx
	}
	for i := len(m.handlers) - 1; i >= 0; i-- {
		if h := m.handlers[i]; m.needed(ctx, h, TimingOnError) {
			ctx = h.OnError(ctx, m.info, err)
		}
	}
	return ctx
}

// OnFallback 分发降级回调
func (m *Manager) OnFallback(ctx context.Context, err error, output CallbackOutput) context.Context {
	if m == nil {
		return ctx
	}
	for i := len(m.handlers) - 1; i >= 0; i-- {
		if h := m.handlers[i]; m.needed(ctx, h, TimingOnFallback) {
			ctx = h.OnFallback(ctx, m.info, err, output)
		}
	}
	return ctx
}
