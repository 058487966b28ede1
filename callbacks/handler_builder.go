package callbacks

import "context"

// HandlerBuilder 回调处理器构建器。
//
// 未设置的回调时机不会被调用，Build 得到的 Handler 自动实现 TimingChecker。
type HandlerBuilder struct {
	onStartFn    func(ctx context.Context, info *RunInfo, input CallbackInput) context.Context
	onEndFn      func(ctx context.Context, info *RunInfo, output CallbackOutput) context.Context
	onErrorFn    func(ctx context.Context, info *RunInfo, err error) context.Context
	onFallbackFn func(ctx context.Context, info *RunInfo, err error, output CallbackOutput) context.Context
}

type handlerImpl struct {
	HandlerBuilder
}

func (hb *handlerImpl) OnStart(ctx context.Context, info *RunInfo, input CallbackInput) context.Context {
	if hb.onStartFn == nil {
		return ctx
	}
	return hb.onStartFn(ctx, info, input)
}

func (hb *handlerImpl) OnEnd(ctx context.Context, info *RunInfo, output CallbackOutput) context.Context {
	if hb.onEndFn == nil {
		return ctx
	}
	return hb.onEndFn(ctx, info, output)
}

func (hb *handlerImpl) OnError(ctx context.Context, info *RunInfo, err error) context.Context {
	if hb.onErrorFn == nil {
		return ctx
	}
	return hb.onErrorFn(ctx, info, err)
}

func (hb *handlerImpl) OnFallback(ctx context.Context, info *RunInfo, err error, output CallbackOutput) context.Context {
	if hb.onFallbackFn == nil {
		return ctx
	}
	return hb.onFallbackFn(ctx, info, err, output)
}

// Needed 实现 TimingChecker
func (hb *handlerImpl) Needed(_ context.Context, _ *RunInfo, timing CallbackTiming) bool {
	switch timing {
	case TimingOnStart:
		return hb.onStartFn != nil
	case TimingOnEnd:
		return hb.onEndFn != nil
	case TimingOnError:
		return hb.onErrorFn != nil
	case TimingOnFallback:
		return hb.onFallbackFn != nil
	default:
		return false
	}
}

// NewHandlerBuilder 创建 HandlerBuilder
func NewHandlerBuilder() *HandlerBuilder {
	return &HandlerBuilder{}
}

// OnStartFn 设置开始回调
func (hb *HandlerBuilder) OnStartFn(
	fn func(ctx context.Context, info *RunInfo, input CallbackInput) context.Context) *HandlerBuilder {

	hb.onStartFn = fn
	return hb
}

// OnEndFn 设置成功回调
func (hb *HandlerBuilder) OnEndFn(
	fn func(ctx context.Context, info *RunInfo, output CallbackOutput) context.Context) *HandlerBuilder {

	hb.onEndFn = fn
	return hb
}

// OnErrorFn 设置失败回调
func (hb *HandlerBuilder) OnErrorFn(
	fn func(ctx context.Context, info *RunInfo, err error) context.Context) *HandlerBuilder {

	hb.onErrorFn = fn
	return hb
}

// OnFallbackFn 设置降级回调
func (hb *HandlerBuilder) OnFallbackFn(
	fn func(ctx context.Context, info *RunInfo, err error, output CallbackOutput) context.Context) *HandlerBuilder {

	hb.onFallbackFn = fn
	return hb
}

// Build 构建 Handler
func (hb *HandlerBuilder) Build() Handler {
	return &handlerImpl{*hb}
}
