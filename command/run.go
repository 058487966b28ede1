package command

import (
	"context"
	"sync"
)

// slot 一个输出节点的结果位置
type slot struct {
	idx  int
	key  string
	once sync.Once
	done chan struct{}
	out  outcome

	// notify 在结果确定后调用，用于记录完成顺序
	notify func(idx int)
}

func newSlots(keys []string, notify func(int)) []*slot {
	slots := make([]*slot, len(keys))
	for i, key := range keys {
		slots[i] = &slot{idx: i, key: key, done: make(chan struct{}), notify: notify}
	}
	return slots
}

func (s *slot) resolve(o outcome) {
	s.once.Do(func() {
		s.out = o
		close(s.done)
		if s.notify != nil {
			s.notify(s.idx)
		}
	})
}

func (s *slot) resolved() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// wait 等待结果确定；已确定的结果总是直接返回，即使 ctx 已结束
func (s *slot) wait(ctx context.Context) (outcome, error) {
	if s.resolved() {
		return s.out, nil
	}
	select {
	case <-s.done:
		return s.out, nil
	case <-ctx.Done():
		return outcome{}, &TimeoutFailure{Key: s.key, Err: ctx.Err()}
	}
}

// run 驱动一个节点直到它的所有输出确定。
// 运行在协调协程上，工作协程只执行命令体，因此同一执行组内的任务不会互相等待。
func run(ctx context.Context, n *node, slots []*slot) {
	in := n.input

	for _, e := range n.edges {
		if e.kind == EdgeParallel {
			continue
		}

		sub := newSlots(e.to.outputs(nil), nil)
		run(ctx, e.to, sub)

		var failed error
		for _, s := range sub {
			<-s.done
			if failed == nil && s.out.err != nil {
				failed = s.out.err
			}
		}
		if failed != nil {
			for _, s := range slots {
				s.resolve(outcome{err: failed})
			}
			return
		}
		if e.kind == EdgeSequentialPassthrough {
			in = sub[0].out.value
		}
	}

	offset := 1
	for _, e := range n.edges {
		if e.kind != EdgeParallel {
			continue
		}
		w := e.to.width()
		go run(ctx, e.to, slots[offset:offset+w])
		offset += w
	}

	<-n.cmd.start(ctx, in)
	slots[0].resolve(n.cmd.result())
}
