package command

import "github.com/favbox/taskchain/internal/generic"

// OutcomeKind 单个输出节点的完成类型
type OutcomeKind uint8

const (
	OutcomePending OutcomeKind = iota
	OutcomeSucceeded
	OutcomeRecovered
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeRecovered:
		return "recovered"
	case OutcomeFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Outcome 命令完成后的显式结果：成功、降级恢复或失败三者之一。
type Outcome[O any] struct {
	// Index 在结果中的声明顺序位置
	Index int
	Key   string
	// Value 成功值或降级值
	Value O
	// Err 未恢复的失败
	Err error
	// Recovered 非 nil 表示 Value 来自降级
	Recovered *RecoveredFailure

	resolved bool
}

// Kind 返回完成类型
func (o Outcome[O]) Kind() OutcomeKind {
	switch {
	case !o.resolved:
		return OutcomePending
	case o.Err != nil:
		return OutcomeFailed
	case o.Recovered != nil:
		return OutcomeRecovered
	default:
		return OutcomeSucceeded
	}
}

// OK 报告是否得到了可用的值（成功或降级恢复）
func (o Outcome[O]) OK() bool {
	return o.resolved && o.Err == nil
}

// outcome 类型擦除后的结果，在任务树内部传递
type outcome struct {
	value     any
	err       error
	recovered *RecoveredFailure
}

func typed[O any](idx int, key string, o outcome) Outcome[O] {
	return Outcome[O]{
		Index:     idx,
		Key:       key,
		Value:     generic.Cast[O](o.value),
		Err:       o.err,
		Recovered: o.recovered,
		resolved:  true,
	}
}
