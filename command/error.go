package command

/*
 * error.go - 失败分类
 *
 *   - ExecutionFailure: 命令体失败且无降级（或降级本身失败），向下游传播
 *   - RecoveredFailure: 命令体失败但降级成功，只挂在 Outcome 上，不作为错误返回
 *   - TimeoutFailure:   阻塞等待超过 context 截止时间，命令可能仍在运行，不触发命令的失败钩子
 *   - ShutdownFailure:  命令开始前所属执行组已关闭
 */

import (
	"errors"
	"fmt"

	"github.com/favbox/taskchain/executor"
)

var (
	// ErrNilCommand 任务树中出现 nil 命令
	ErrNilCommand = errors.New("nil command")
	// ErrNilRegistry 命令构造时未提供执行组注册表
	ErrNilRegistry = errors.New("nil executor registry")
	// ErrDuplicateCommand 同一个命令实例在一棵任务树中出现多次
	ErrDuplicateCommand = errors.New("command appears more than once in chain")
	// ErrAmbiguousInput 透传边的生产者有多个输出，无法确定消费者的输入
	ErrAmbiguousInput = errors.New("producer has parallel outputs, consumer input is ambiguous")
	// ErrNoOutput 结果中没有任何输出节点
	ErrNoOutput = errors.New("result has no output")
)

// ExecutionFailure 命令体失败且没有被降级恢复
type ExecutionFailure struct {
	Key   string
	Group string
	// Err 命令体返回的错误或 panic
	Err error
	// FallbackErr 降级函数本身的错误，未配置降级时为 nil
	FallbackErr error
}

func (e *ExecutionFailure) Error() string {
	if e.FallbackErr != nil {
		return fmt.Sprintf("[ExecutionFailure] command[%s] in group[%s]: %v; fallback failed: %v",
			e.Key, e.Group, e.Err, e.FallbackErr)
	}
	return fmt.Sprintf("[ExecutionFailure] command[%s] in group[%s]: %v", e.Key, e.Group, e.Err)
}

func (e *ExecutionFailure) Unwrap() []error {
	if e.FallbackErr != nil {
		return []error{e.Err, e.FallbackErr}
	}
	return []error{e.Err}
}

// RecoveredFailure 命令体失败后由降级值恢复
type RecoveredFailure struct {
	Key   string
	Group string
	Err   error
}

func (e *RecoveredFailure) Error() string {
	return fmt.Sprintf("[RecoveredFailure] command[%s] in group[%s]: %v", e.Key, e.Group, e.Err)
}

func (e *RecoveredFailure) Unwrap() error {
	return e.Err
}

// TimeoutFailure 阻塞等待在命令解析前结束
type TimeoutFailure struct {
	// Key 等待中的第一个未解析命令
	Key string
	// Err context.DeadlineExceeded 或 context.Canceled
	Err error
}

func (e *TimeoutFailure) Error() string {
	return fmt.Sprintf("[TimeoutFailure] waiting for command[%s]: %v", e.Key, e.Err)
}

func (e *TimeoutFailure) Unwrap() error {
	return e.Err
}

// ShutdownFailure 命令开始前执行组已关闭
type ShutdownFailure struct {
	Key   string
	Group string
}

func (e *ShutdownFailure) Error() string {
	return fmt.Sprintf("[ShutdownFailure] command[%s]: executor group[%s] closed", e.Key, e.Group)
}

func (e *ShutdownFailure) Unwrap() error {
	return executor.ErrGroupClosed
}
