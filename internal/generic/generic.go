package generic

import "reflect"

// TypeOf 返回 T 的 reflect.Type。
//
// 示例:
//
//	TypeOf[int]()     // reflect.TypeOf(int)
//	TypeOf[*int]()    // reflect.TypeOf(*int)
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Cast 将类型擦除后的值还原为 T。
// nil 会还原为 T 的零值，适用于接口类型的输出。
func Cast[T any](v any) T {
	t, _ := v.(T)
	return t
}
