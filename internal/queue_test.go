package internal

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQueue(t *testing.T) {
	t.Run("fifo", func(t *testing.T) {
		q := NewQueue[int]()
		for i := 0; i < 5; i++ {
			assert.True(t, q.Push(i))
		}
		assert.Equal(t, 5, q.Len())

		for i := 0; i < 5; i++ {
			v, ok := q.Pop()
			assert.True(t, ok)
			assert.Equal(t, i, v)
		}
		assert.Equal(t, 0, q.Len())
	})

	t.Run("pop blocks until push", func(t *testing.T) {
		q := NewQueue[string]()
		got := make(chan string, 1)
		go func() {
			v, _ := q.Pop()
			got <- v
		}()

		select {
		case <-got:
			t.Fatal("pop returned on empty queue")
		case <-time.After(20 * time.Millisecond):
		}

		q.Push("x")
		assert.Equal(t, "x", <-got)
	})

	t.Run("close drains and wakes waiters", func(t *testing.T) {
		q := NewQueue[int]()
		var wg sync.WaitGroup
		wg.Add(2)
		for i := 0; i < 2; i++ {
			go func() {
				defer wg.Done()
				_, ok := q.Pop()
				assert.False(t, ok)
			}()
		}
		time.Sleep(10 * time.Millisecond)

		rest := q.Close()
		assert.Empty(t, rest)
		wg.Wait()

		assert.False(t, q.Push(1))
		assert.Nil(t, q.Close())
	})

	t.Run("close returns pending", func(t *testing.T) {
		q := NewQueue[int]()
		q.Push(1)
		q.Push(2)
		assert.Equal(t, []int{1, 2}, q.Close())

		_, ok := q.Pop()
		assert.False(t, ok)
	})
}
