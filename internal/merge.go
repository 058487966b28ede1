package internal

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/favbox/taskchain/internal/generic"
)

// ErrEmptyMerge 没有可合并的元素
var ErrEmptyMerge = errors.New("merge of empty items")

var (
	mergeMu    sync.RWMutex
	mergeFuncs = map[reflect.Type]any{
		generic.TypeOf[string](): joinStrings,
	}
)

func joinStrings(ss []string) (string, error) {
	var n int
	for _, s := range ss {
		n += len(s)
	}

	var b strings.Builder
	b.Grow(n)
	for _, s := range ss {
		b.WriteString(s)
	}
	return b.String(), nil
}

// RegisterMergeFunc 注册类型 T 的合并函数，覆盖已有注册
func RegisterMergeFunc[T any](fn func([]T) (T, error)) {
	mergeMu.Lock()
	defer mergeMu.Unlock()
	mergeFuncs[generic.TypeOf[T]()] = fn
}

func mergeFunc(typ reflect.Type) func(reflect.Value) (reflect.Value, error) {
	mergeMu.RLock()
	fn, ok := mergeFuncs[typ]
	mergeMu.RUnlock()
	if !ok {
		return nil
	}

	return func(items reflect.Value) (reflect.Value, error) {
		out := reflect.ValueOf(fn).Call([]reflect.Value{items})
		var err error
		if !out[1].IsNil() {
			err = out[1].Interface().(error)
		}
		return out[0], err
	}
}

// Merge 把多个同类型的值合并为一个。
//
// 合并规则，按优先级：
//   - 注册过合并函数的类型使用注册函数，string 默认直接拼接
//   - slice: 依次追加
//   - map: 按 key 合并，多个 map 中出现的同一 key 递归合并其值
//   - 其他类型: 最多只能有一个非零值
func Merge[T any](items []T) (T, error) {
	var zero T
	switch len(items) {
	case 0:
		return zero, ErrEmptyMerge
	case 1:
		return items[0], nil
	}

	v, err := mergeValues(reflect.ValueOf(items))
	if err != nil {
		return zero, err
	}
	return generic.Cast[T](v.Interface()), nil
}

// mergeValues 合并 reflect 切片中的元素
func mergeValues(items reflect.Value) (reflect.Value, error) {
	elem := items.Type().Elem()
	if items.Len() == 1 {
		return items.Index(0), nil
	}

	if fn := mergeFunc(elem); fn != nil {
		return fn(items)
	}

	switch elem.Kind() {
	case reflect.Slice:
		out := reflect.MakeSlice(elem, 0, 0)
		for i := 0; i < items.Len(); i++ {
			out = reflect.AppendSlice(out, items.Index(i))
		}
		return out, nil
	case reflect.Map:
		return mergeMaps(items)
	}

	var picked reflect.Value
	for i := 0; i < items.Len(); i++ {
		v := items.Index(i)
		if v.IsZero() {
			continue
		}
		if picked.IsValid() {
			return reflect.Value{}, fmt.Errorf("cannot merge multiple non-zero values of type %s", elem)
		}
		picked = v
	}
	if !picked.IsValid() {
		return reflect.Zero(elem), nil
	}
	return picked, nil
}

// mergeMaps 按 key 合并多个 map，key 保持首次出现的值类型
func mergeMaps(ms reflect.Value) (reflect.Value, error) {
	typ := ms.Type().Elem()
	grouped := make(map[any]reflect.Value)
	var keys []reflect.Value

	for i := 0; i < ms.Len(); i++ {
		m := ms.Index(i)
		if m.IsNil() {
			continue
		}
		iter := m.MapRange()
		for iter.Next() {
			k := iter.Key()
			vals, ok := grouped[k.Interface()]
			if !ok {
				vals = reflect.MakeSlice(reflect.SliceOf(typ.Elem()), 0, 1)
				keys = append(keys, k)
			}
			grouped[k.Interface()] = reflect.Append(vals, iter.Value())
		}
	}

	out := reflect.MakeMapWithSize(typ, len(keys))
	for _, k := range keys {
		v, err := mergeValues(grouped[k.Interface()])
		if err != nil {
			return reflect.Value{}, fmt.Errorf("merge key %v: %w", k.Interface(), err)
		}
		if !v.IsValid() {
			v = reflect.Zero(typ.Elem())
		}
		out.SetMapIndex(k, v)
	}
	return out, nil
}
