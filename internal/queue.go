/*
 * queue.go - 执行组使用的无界 FIFO 队列
 *
 * 核心组件：
 *   - Queue: 无界容量的泛型队列，入队永不阻塞
 *
 * 设计特点：
 *   - 线程安全: 互斥锁 + 条件变量
 *   - 非阻塞入队: 提交任务的调用方不会被工作协程的繁忙程度拖住
 *   - 关闭即排空: Close 原子地取走所有未被消费的元素并返回给调用方
 */

package internal

import "sync"

// Queue 是无界 FIFO 队列。
// Push 永不阻塞；Pop 在队列为空时阻塞，直到有元素或队列被关闭。
type Queue[T any] struct {
	buffer   []T
	mutex    sync.Mutex
	notEmpty *sync.Cond
	closed   bool
}

// NewQueue 创建一个空队列
func NewQueue[T any]() *Queue[T] {
	q := &Queue[T]{}
	q.notEmpty = sync.NewCond(&q.mutex)
	return q
}

// Push 将元素追加到队尾。
// 队列已关闭时返回 false，元素不会入队。
func (q *Queue[T]) Push(value T) bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.closed {
		return false
	}

	q.buffer = append(q.buffer, value)
	q.notEmpty.Signal()
	return true
}

// Pop 取出队首元素。
// 第二个返回值为 false 表示队列已关闭且没有剩余元素。
func (q *Queue[T]) Pop() (T, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	for len(q.buffer) == 0 && !q.closed {
		q.notEmpty.Wait()
	}

	if len(q.buffer) == 0 {
		var zero T
		return zero, false
	}

	val := q.buffer[0]
	var zero T
	q.buffer[0] = zero
	q.buffer = q.buffer[1:]
	return val, true
}

// Len 返回当前排队的元素数量
func (q *Queue[T]) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.buffer)
}

// Close 关闭队列，唤醒所有等待者，并返回尚未被取走的元素。
// 重复关闭是安全的，后续调用返回 nil。
func (q *Queue[T]) Close() []T {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.closed {
		return nil
	}

	q.closed = true
	rest := q.buffer
	q.buffer = nil
	q.notEmpty.Broadcast()
	return rest
}
