package safe

import "fmt"

// panicErr 包装 panic 信息和堆栈跟踪的错误类型。
type panicErr struct {
	info  any
	stack []byte
}

func (p *panicErr) Error() string {
	return fmt.Sprintf("panic error: %v, \nstack: %s", p.info, string(p.stack))
}

// Unwrap 当 panic 的值本身是 error 时返回它，便于 errors.Is 判断
func (p *panicErr) Unwrap() error {
	if err, ok := p.info.(error); ok {
		return err
	}
	return nil
}

// NewPanicErr 创建新的 panic 错误。
// 命令体或降级函数中的 panic 会被转换为该错误，按普通失败处理。
func NewPanicErr(info any, stack []byte) error {
	return &panicErr{
		info,
		stack,
	}
}
