package command

import (
	"context"

	"github.com/favbox/taskchain/executor"
	"github.com/favbox/taskchain/function"
)

// FromFunc1 把单参数函数包装为单输入命令。key 为空时使用函数名。
func FromFunc1[T, R any](reg *executor.Registry, group, key string, f *function.Func1[T, R], opts ...Option[R]) *Step[T, R] {
	return NewStep(reg, group, keyOf(key, f), f.Invoke, opts...)
}

// FromFunc2 把双参数函数包装为以 Input2 为输入的命令，
// 生产者需要输出 function.Input2[T1, T2]。
func FromFunc2[T1, T2, R any](reg *executor.Registry, group, key string, f *function.Func2[T1, T2, R], opts ...Option[R]) *Step[function.Input2[T1, T2], R] {
	return NewStep(reg, group, keyOf(key, f), f.Call, opts...)
}

// FromFunction 以统一的 Input 信封接收输入，适合异构命令之间传递参数。
// 参数个数或类型不符时命令失败，错误包装 function.ErrArity 或 function.ErrInputType。
func FromFunction[R any](reg *executor.Registry, group, key string, f function.Function[R], opts ...Option[R]) *Step[function.Input, R] {
	return NewStep(reg, group, keyOf(key, f), func(ctx context.Context, in function.Input) (R, error) {
		return f.Apply(ctx, in)
	}, opts...)
}

func keyOf(key string, f interface{ Name() string }) string {
	if key != "" {
		return key
	}
	return f.Name()
}
