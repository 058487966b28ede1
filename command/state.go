package command

// State 命令状态。
//
//	CREATED → RUNNING（提交时）→ SUCCEEDED | FAILED → FALLBACK（失败且降级成功）
//
// 终态：SUCCEEDED、FALLBACK（失败已恢复）、运行结束后的 FAILED（失败已传播）。
type State uint32

const (
	StateCreated State = iota
	StateRunning
	StateSucceeded
	StateFailed
	StateFallback
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "CREATED"
	case StateRunning:
		return "RUNNING"
	case StateSucceeded:
		return "SUCCEEDED"
	case StateFailed:
		return "FAILED"
	case StateFallback:
		return "FALLBACK"
	default:
		return "UNKNOWN"
	}
}
