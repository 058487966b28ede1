/*
 * result.go - 任务树的结果句柄
 *
 * 结果按声明顺序排列，与完成顺序无关；Transform 是唯一按完成顺序投递的访问方式。
 * 所有访问都没有副作用，重复读取不会重新执行任何命令。
 */

package command

import (
	"context"
	"sync"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/favbox/taskchain/internal"
	"github.com/favbox/taskchain/internal/generic"
)

// Result 异步提交返回的结果句柄，每个输出节点对应一个位置
type Result[O any] struct {
	slots []*slot
	// err 构建或校验错误，非 nil 时任务树未被提交
	err error

	mu        sync.Mutex
	completed []int
	changed   chan struct{}
	done      chan struct{}
}

func newResult[O any](keys []string) *Result[O] {
	r := &Result[O]{
		changed: make(chan struct{}),
		done:    make(chan struct{}),
	}
	r.slots = newSlots(keys, r.complete)
	return r
}

func failedResult[O any](err error) *Result[O] {
	r := &Result[O]{
		err:     err,
		changed: make(chan struct{}),
		done:    make(chan struct{}),
	}
	close(r.done)
	return r
}

// complete 记录完成顺序并唤醒所有等待者
func (r *Result[O]) complete(idx int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.completed = append(r.completed, idx)
	close(r.changed)
	r.changed = make(chan struct{})
	if len(r.completed) == len(r.slots) {
		close(r.done)
	}
}

// completion 返回第 from 个之后的完成记录，以及下一次变化的信号
func (r *Result[O]) completion(from int) ([]int, <-chan struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed[from:], r.changed
}

// Len 返回输出节点个数
func (r *Result[O]) Len() int {
	return len(r.slots)
}

// Err 返回构建或校验错误
func (r *Result[O]) Err() error {
	return r.err
}

// Done 所有输出确定后关闭
func (r *Result[O]) Done() <-chan struct{} {
	return r.done
}

// Wait 阻塞到所有输出确定，ctx 先结束时返回 *TimeoutFailure。
// 命令自身的失败不在这里返回，通过 Get 或 Outcomes 检查。
func (r *Result[O]) Wait(ctx context.Context) error {
	if r.err != nil {
		return r.err
	}
	for _, s := range r.slots {
		if _, err := s.wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// WaitTimeout 以相对时长作为截止时间的 Wait
func (r *Result[O]) WaitTimeout(d time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return r.Wait(ctx)
}

// Get 按声明顺序等待每个输出，返回全部值。
// 遇到的第一个未恢复失败立即返回，后面的成功不会掩盖它。
func (r *Result[O]) Get(ctx context.Context) ([]O, error) {
	if r.err != nil {
		return nil, r.err
	}
	values := make([]O, 0, len(r.slots))
	for _, s := range r.slots {
		o, err := s.wait(ctx)
		if err != nil {
			return nil, err
		}
		if o.err != nil {
			return nil, o.err
		}
		values = append(values, typed[O](s.idx, s.key, o).Value)
	}
	return values, nil
}

// Value 返回第一个输出节点的值
func (r *Result[O]) Value(ctx context.Context) (O, error) {
	var zero O
	if r.err != nil {
		return zero, r.err
	}
	if len(r.slots) == 0 {
		return zero, ErrNoOutput
	}
	o, err := r.slots[0].wait(ctx)
	if err != nil {
		return zero, err
	}
	if o.err != nil {
		return zero, o.err
	}
	return generic.Cast[O](o.value), nil
}

// Outcomes 等待所有输出，按声明顺序返回每个输出的显式结果，包括降级恢复的细节。
// 返回的错误只可能是构建错误或 *TimeoutFailure。
func (r *Result[O]) Outcomes(ctx context.Context) ([]Outcome[O], error) {
	if err := r.Wait(ctx); err != nil {
		return nil, err
	}
	return r.Resolved(), nil
}

// Resolved 不阻塞，返回已经确定的输出（按声明顺序），等待超时后依然可用
func (r *Result[O]) Resolved() []Outcome[O] {
	var res []Outcome[O]
	for _, s := range r.slots {
		if s.resolved() {
			res = append(res, typed[O](s.idx, s.key, s.out))
		}
	}
	return res
}

// ByKey 等待所有输出，返回以命令 key 为键、按声明顺序排列的结果。
// key 重复时后出现的输出覆盖先前的值，位置保持首次出现处。
func (r *Result[O]) ByKey(ctx context.Context) (*orderedmap.OrderedMap[string, Outcome[O]], error) {
	outs, err := r.Outcomes(ctx)
	if err != nil {
		return nil, err
	}
	m := orderedmap.New[string, Outcome[O]]()
	for _, o := range outs {
		m.Set(o.Key, o)
	}
	return m, nil
}

// ForEach 按声明顺序对每个值调用 fn，遇到失败或 fn 返回错误时停止
func (r *Result[O]) ForEach(ctx context.Context, fn func(i int, v O) error) error {
	values, err := r.Get(ctx)
	if err != nil {
		return err
	}
	for i, v := range values {
		if err := fn(i, v); err != nil {
			return err
		}
	}
	return nil
}

// Reduce 把按声明顺序排列的全部值归约为一个结果，如计数、拼接
func Reduce[O, R any](ctx context.Context, r *Result[O], fn func(values []O) (R, error)) (R, error) {
	var zero R
	values, err := r.Get(ctx)
	if err != nil {
		return zero, err
	}
	return fn(values)
}

// Transformer 先收集后产出：值按完成顺序逐个 Accept，全部到达后调用 Produce
type Transformer[O, R any] interface {
	Accept(v O) error
	Produce() (R, error)
}

type transformer[O, R any] struct {
	accept  func(v O) error
	produce func() (R, error)
}

func (t *transformer[O, R]) Accept(v O) error    { return t.accept(v) }
func (t *transformer[O, R]) Produce() (R, error) { return t.produce() }

// NewTransformer 用函数构造 Transformer
func NewTransformer[O, R any](accept func(v O) error, produce func() (R, error)) Transformer[O, R] {
	return &transformer[O, R]{accept: accept, produce: produce}
}

// Transform 按完成顺序把每个值交给 t.Accept，全部到达后返回 t.Produce()。
// 任一输出未恢复失败时停止投递并返回该失败。
func Transform[O, R any](ctx context.Context, r *Result[O], t Transformer[O, R]) (R, error) {
	var zero R
	if r.err != nil {
		return zero, r.err
	}

	delivered := 0
	for delivered < len(r.slots) {
		idx, changed := r.completion(delivered)
		for _, i := range idx {
			s := r.slots[i]
			if s.out.err != nil {
				return zero, s.out.err
			}
			if err := t.Accept(typed[O](s.idx, s.key, s.out).Value); err != nil {
				return zero, err
			}
			delivered++
		}
		if delivered == len(r.slots) {
			break
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return zero, &TimeoutFailure{Key: r.firstPending(), Err: ctx.Err()}
		}
	}
	return t.Produce()
}

func (r *Result[O]) firstPending() string {
	for _, s := range r.slots {
		if !s.resolved() {
			return s.key
		}
	}
	return ""
}

// Merge 合并同类型的输出，可直接作为 Reduce 的归约函数：
//
//	html, err := command.Reduce(ctx, r, command.Merge[string])
//
// string 直接拼接，slice 依次追加，map 按 key 合并；
// 其他类型最多只能有一个非零值，或先通过 RegisterMerge 注册合并函数。
func Merge[O any](values []O) (O, error) {
	return internal.Merge(values)
}

// RegisterMerge 注册类型 O 的合并函数，供 Merge 使用
func RegisterMerge[O any](fn func(values []O) (O, error)) {
	internal.RegisterMergeFunc(fn)
}
