/*
 * function 包 - 按元数区分的函数节点
 *
 * 核心组件：
 *   - Input: 参数信封，按元数区分的封闭联合：Input0 / Input1[T] / Input2[T1, T2]
 *   - Func1 / Func2: 定长泛型函数，同时提供两种等价调用方式
 *       Call(ctx, Input1[T])   编译期类型检查的直接调用
 *       Apply(ctx, Input)      统一信封调用，经类型分派后执行，用于在图中统一传递
 *   - Function[R]: 信封调用的公共接口，命令层通过它把函数包装为可链接的 Step
 *
 * 信封分派使用 type switch 匹配具体的 InputN 类型，不使用反射向下转型。
 */

package function

// Input 参数信封。只有本包的 Input0、Input1、Input2 实现该接口。
type Input interface {
	// Arity 参数个数
	Arity() int
	// Args 按位置返回参数，主要用于日志和调试
	Args() []any

	sealed()
}

// Input0 零参数信封
type Input0 struct{}

func (Input0) Arity() int  { return 0 }
func (Input0) Args() []any { return nil }
func (Input0) sealed()     {}

// Input1 单参数信封
type Input1[T any] struct {
	V1 T
}

func (Input1[T]) Arity() int    { return 1 }
func (i Input1[T]) Args() []any { return []any{i.V1} }
func (Input1[T]) sealed()       {}

// Input2 双参数信封
type Input2[T1, T2 any] struct {
	V1 T1
	V2 T2
}

func (Input2[T1, T2]) Arity() int    { return 2 }
func (i Input2[T1, T2]) Args() []any { return []any{i.V1, i.V2} }
func (Input2[T1, T2]) sealed()       {}

// In1 构造单参数信封
func In1[T any](v T) Input1[T] {
	return Input1[T]{V1: v}
}

// In2 构造双参数信封
func In2[T1, T2 any](v1 T1, v2 T2) Input2[T1, T2] {
	return Input2[T1, T2]{V1: v1, V2: v2}
}
