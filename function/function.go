package function

import (
	"context"
	"errors"
	"fmt"

	"github.com/favbox/taskchain/internal/generic"
)

var (
	// ErrArity 信封的参数个数与函数不符
	ErrArity = errors.New("input arity mismatch")
	// ErrInputType 信封参数个数相符但类型不符
	ErrInputType = errors.New("input type mismatch")
)

// Function 以统一信封调用的函数
type Function[R any] interface {
	Name() string
	Arity() int
	Apply(ctx context.Context, in Input) (R, error)
}

type options struct {
	name string
}

// Option 函数节点选项
type Option func(o *options)

// WithName 指定函数名，默认从函数符号推断
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

func newOptions(fn any, opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.name == "" {
		o.name = generic.FuncName(fn)
	}
	return o
}

func mismatch[R any](name string, arity int, in Input, want string) (R, error) {
	var zero R
	if in == nil {
		return zero, fmt.Errorf("%w: function %q expects %d args, got nil input", ErrArity, name, arity)
	}
	if in.Arity() != arity {
		return zero, fmt.Errorf("%w: function %q expects %d args, got %d", ErrArity, name, arity, in.Arity())
	}
	return zero, fmt.Errorf("%w: function %q expects %s, got %T", ErrInputType, name, want, in)
}

// Func1 单参数函数
type Func1[T, R any] struct {
	name string
	fn   func(ctx context.Context, v T) (R, error)
}

// NewFunc1 包装单参数函数
func NewFunc1[T, R any](fn func(ctx context.Context, v T) (R, error), opts ...Option) *Func1[T, R] {
	return &Func1[T, R]{name: newOptions(fn, opts).name, fn: fn}
}

func (f *Func1[T, R]) Name() string { return f.name }
func (f *Func1[T, R]) Arity() int   { return 1 }

// Call 以确切的 Input1 调用
func (f *Func1[T, R]) Call(ctx context.Context, in Input1[T]) (R, error) {
	return f.fn(ctx, in.V1)
}

// Invoke 以普通参数调用
func (f *Func1[T, R]) Invoke(ctx context.Context, v T) (R, error) {
	return f.fn(ctx, v)
}

// Apply 以统一信封调用，信封不是 Input1[T] 时返回 ErrArity 或 ErrInputType
func (f *Func1[T, R]) Apply(ctx context.Context, in Input) (R, error) {
	switch v := in.(type) {
	case Input1[T]:
		return f.fn(ctx, v.V1)
	case *Input1[T]:
		if v != nil {
			return f.fn(ctx, v.V1)
		}
	}
	return mismatch[R](f.name, 1, in, fmt.Sprintf("Input1[%v]", generic.TypeOf[T]()))
}

// Func2 双参数函数
type Func2[T1, T2, R any] struct {
	name string
	fn   func(ctx context.Context, v1 T1, v2 T2) (R, error)
}

// NewFunc2 包装双参数函数
func NewFunc2[T1, T2, R any](fn func(ctx context.Context, v1 T1, v2 T2) (R, error), opts ...Option) *Func2[T1, T2, R] {
	return &Func2[T1, T2, R]{name: newOptions(fn, opts).name, fn: fn}
}

func (f *Func2[T1, T2, R]) Name() string { return f.name }
func (f *Func2[T1, T2, R]) Arity() int   { return 2 }

// Call 以确切的 Input2 调用
func (f *Func2[T1, T2, R]) Call(ctx context.Context, in Input2[T1, T2]) (R, error) {
	return f.fn(ctx, in.V1, in.V2)
}

// Invoke 以普通参数调用
func (f *Func2[T1, T2, R]) Invoke(ctx context.Context, v1 T1, v2 T2) (R, error) {
	return f.fn(ctx, v1, v2)
}

// Apply 以统一信封调用，信封不是 Input2[T1, T2] 时返回 ErrArity 或 ErrInputType
func (f *Func2[T1, T2, R]) Apply(ctx context.Context, in Input) (R, error) {
	switch v := in.(type) {
	case Input2[T1, T2]:
		return f.fn(ctx, v.V1, v.V2)
	case *Input2[T1, T2]:
		if v != nil {
			return f.fn(ctx, v.V1, v.V2)
		}
	}
	return mismatch[R](f.name, 2, in,
		fmt.Sprintf("Input2[%v, %v]", generic.TypeOf[T1](), generic.TypeOf[T2]()))
}
