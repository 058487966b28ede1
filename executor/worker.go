package executor

import (
	"context"
	"fmt"
)

// Worker 标识执行组中的一个工作协程。
// Go 没有可见的线程 ID，工作协程标识承担同样的角色：
// 同一个 Worker 上的任务永远串行执行。
type Worker struct {
	Group string
	Index int
}

func (w Worker) String() string {
	return fmt.Sprintf("%s#%d", w.Group, w.Index)
}

type workerKey struct{}

// WithWorker 将工作协程标识写入 context
func WithWorker(ctx context.Context, w Worker) context.Context {
	return context.WithValue(ctx, workerKey{}, w)
}

// WorkerFrom 返回执行当前任务的工作协程。
// 不在执行组内运行时第二个返回值为 false。
func WorkerFrom(ctx context.Context) (Worker, bool) {
	w, ok := ctx.Value(workerKey{}).(Worker)
	return w, ok
}
