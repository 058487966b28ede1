/*
 * callbacks 包 - 命令生命周期回调
 *
 * 核心组件：
 *   - Handler: 四个回调时机（开始 / 成功 / 失败 / 降级）
 *   - HandlerBuilder: 以函数方式构建 Handler
 *   - WithHandlers / HandlersFrom: 通过 context 传递处理器，不存在进程级全局列表
 *
 * 触发规则：
 *   - OnStart 在命令体开始前调用，返回的 context 传给命令体
 *   - OnEnd 与 OnError 互斥，每次运行恰好其一
 *   - OnFallback 仅在 OnError 之后、降级值确定时调用
 *   - 所有回调都在执行命令的工作协程上同步运行
 */

package callbacks

import "context"

// RunInfo 回调运行信息
type RunInfo struct {
	// Key 命令标识
	Key string
	// Group 命令所属执行组
	Group string
	// Worker 执行命令的工作协程，形如 group#index
	Worker string
}

// CallbackInput 命令输入，零输入命令为 nil
type CallbackInput any

// CallbackOutput 命令输出或降级值
type CallbackOutput any

// Handler 回调处理器接口。
type Handler interface {
	// OnStart 命令体开始执行前触发
	OnStart(ctx context.Context, info *RunInfo, input CallbackInput) context.Context

	// OnEnd 命令体成功返回后触发
	OnEnd(ctx context.Context, info *RunInfo, output CallbackOutput) context.Context

	// OnError 命令体返回错误或 panic 后触发
	OnError(ctx context.Context, info *RunInfo, err error) context.Context

	// OnFallback 降级函数给出替代值后触发，err 为命令体原始错误
	OnFallback(ctx context.Context, info *RunInfo, err error, output CallbackOutput) context.Context
}

// CallbackTiming 回调时机
type CallbackTiming uint8

const (
	TimingOnStart CallbackTiming = iota
	TimingOnEnd
	TimingOnError
	TimingOnFallback
)

// TimingChecker 可选接口，处理器用它声明自己关心哪些时机；不关心的时机会被跳过。
type TimingChecker interface {
	Needed(ctx context.Context, info *RunInfo, timing CallbackTiming) bool
}
