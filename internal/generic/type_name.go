package generic

import (
	"reflect"
	"runtime"
	"strings"
)

// FuncName 返回函数的短名称，用作函数节点的默认名。
// 匿名函数（编译器生成的 funcN 或纯数字后缀）返回空字符串。
//
// 示例:
//
//	FuncName(strings.ToUpper)     // "ToUpper"
//	FuncName((*User).GetUser)      // "GetUser"
//	FuncName(func() {})            // ""
func FuncName(fn any) string {
	if fn == nil {
		return ""
	}

	val := reflect.ValueOf(fn)
	if val.Kind() != reflect.Func || val.IsNil() {
		return ""
	}

	full := runtime.FuncForPC(val.Pointer()).Name()
	name := full[strings.LastIndex(full, ".")+1:]
	name = strings.TrimSuffix(name, "-fm")

	if isAnonymous(name) {
		return ""
	}
	return name
}

func isAnonymous(name string) bool {
	if name == "" {
		return true
	}
	digits := strings.TrimPrefix(name, "func")
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
