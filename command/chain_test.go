package command

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/favbox/taskchain/executor"
)

// recorder 记录命令的执行顺序
type recorder struct {
	mu    sync.Mutex
	order []string
}

func (r *recorder) add(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, key)
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

func recorded(reg *executor.Registry, rec *recorder, group, key string) *Command[string] {
	return New(reg, group, key, func(context.Context) (string, error) {
		rec.add(key)
		return key, nil
	})
}

func identity[T any](reg *executor.Registry, key string, calls *atomic.Int32, seen *[]T) *Step[T, T] {
	return NewStep(reg, "default", key, func(_ context.Context, in T) (T, error) {
		calls.Add(1)
		*seen = append(*seen, in)
		return in, nil
	})
}

func TestInto(t *testing.T) {
	reg := newRegistry(t)
	ctx := context.Background()

	convey.Convey("into", t, func() {
		convey.Convey("producer value reaches consumer exactly once", func() {
			var calls atomic.Int32
			var seen []int
			a := constant(reg, "default", "a", 23)
			b := identity(reg, "b", &calls, &seen)

			v, err := Into[int](a, b).Execute(ctx)
			convey.So(err, convey.ShouldBeNil)
			convey.So(v, convey.ShouldEqual, 23)
			convey.So(calls.Load(), convey.ShouldEqual, int32(1))
			convey.So(seen, convey.ShouldResemble, []int{23})
		})

		convey.Convey("chains compose", func() {
			toLen := NewStep(reg, "default", "len", func(_ context.Context, s string) (int, error) {
				return len(s), nil
			})
			double := NewStep(reg, "default", "double", func(_ context.Context, n int) (int, error) {
				return n * 2, nil
			})

			v, err := Into[int](Into[string](constant(reg, "default", "s", "hello"), toLen), double).Execute(ctx)
			convey.So(err, convey.ShouldBeNil)
			convey.So(v, convey.ShouldEqual, 10)
		})

		convey.Convey("failed producer stops consumer", func() {
			var calls atomic.Int32
			var seen []int
			a := New(reg, "default", "producer", func(context.Context) (int, error) {
				return 0, errBoom
			})
			b := identity(reg, "consumer", &calls, &seen)

			_, err := Into[int](a, b).Execute(ctx)
			var ef *ExecutionFailure
			convey.So(errors.As(err, &ef), convey.ShouldBeTrue)
			convey.So(ef.Key, convey.ShouldEqual, "producer")
			convey.So(calls.Load(), convey.ShouldEqual, int32(0))
			convey.So(b.State(), convey.ShouldEqual, StateCreated)
		})

		convey.Convey("recovered producer feeds fallback value", func() {
			var calls atomic.Int32
			var seen []int
			a := New(reg, "default", "producer", func(context.Context) (int, error) {
				return 0, errBoom
			}, WithFallbackValue(5))
			b := identity(reg, "consumer", &calls, &seen)

			v, err := Into[int](a, b).Execute(ctx)
			convey.So(err, convey.ShouldBeNil)
			convey.So(v, convey.ShouldEqual, 5)
		})

		convey.Convey("bound step", func() {
			var calls atomic.Int32
			var seen []string
			v, err := identity(reg, "bound", &calls, &seen).Execute(ctx, "x")
			convey.So(err, convey.ShouldBeNil)
			convey.So(v, convey.ShouldEqual, "x")
		})
	})
}

func TestBefore(t *testing.T) {
	reg := newRegistry(t)
	ctx := context.Background()

	t.Run("dependencies run first in declaration order", func(t *testing.T) {
		rec := &recorder{}
		a := recorded(reg, rec, "g1", "a")
		b := recorded(reg, rec, "g2", "b")
		c := recorded(reg, rec, "g3", "c")

		r := a.Before(b, c).Submit(ctx)
		assert.Equal(t, 1, r.Len())

		vs, err := r.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, vs)
		assert.Equal(t, []string{"b", "c", "a"}, rec.get())
	})

	t.Run("dependency gates parallel siblings", func(t *testing.T) {
		rec := &recorder{}
		a := recorded(reg, rec, "g1", "a")
		b := recorded(reg, rec, "g2", "b")
		dep := recorded(reg, rec, "g3", "dep")

		vs, err := a.InParallel(b).Before(dep).Submit(ctx).Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, vs)
		assert.Equal(t, "dep", rec.get()[0])
	})

	t.Run("failed dependency fails every output", func(t *testing.T) {
		rec := &recorder{}
		a := recorded(reg, rec, "g1", "a")
		b := recorded(reg, rec, "g2", "b")
		dep := New(reg, "g3", "dep", func(context.Context) (int, error) {
			return 0, errBoom
		})

		outs, err := a.InParallel(b).Before(dep).Submit(ctx).Outcomes(ctx)
		require.NoError(t, err)
		require.Len(t, outs, 2)
		for _, o := range outs {
			assert.Equal(t, OutcomeFailed, o.Kind())
			assert.ErrorIs(t, o.Err, errBoom)
		}
		assert.Empty(t, rec.get())
	})

	t.Run("recovered dependency lets owner run", func(t *testing.T) {
		rec := &recorder{}
		dep := New(reg, "g3", "dep", func(context.Context) (int, error) {
			return 0, errBoom
		}, WithFallbackValue(0))

		v, err := recorded(reg, rec, "g1", "a").Before(dep).Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, "a", v)
	})
}

func TestInParallel(t *testing.T) {
	reg := newRegistry(t, executor.WithGroupWorkers("pool", 2))
	ctx := context.Background()

	t.Run("siblings run on distinct workers", func(t *testing.T) {
		var barrier sync.WaitGroup
		barrier.Add(2)
		whoami := func(key string) *Command[string] {
			return New(reg, "pool", key, func(ctx context.Context) (string, error) {
				barrier.Done()
				barrier.Wait()
				w, _ := executor.WorkerFrom(ctx)
				return w.String(), nil
			})
		}

		ids, err := whoami("a").InParallel(whoami("b")).Submit(ctx).Get(ctx)
		require.NoError(t, err)
		require.Len(t, ids, 2)
		assert.NotEqual(t, ids[0], ids[1])
		for _, id := range ids {
			assert.True(t, strings.HasPrefix(id, "pool#"), id)
		}
	})

	t.Run("declaration order is stable", func(t *testing.T) {
		sleepy := func(group, key string) *Command[string] {
			return New(reg, group, key, func(context.Context) (string, error) {
				time.Sleep(time.Duration(rand.Intn(3)) * time.Millisecond)
				return key, nil
			})
		}
		for i := 0; i < 20; i++ {
			c := sleepy("g3", "c").InParallel(sleepy("g4", "d"))
			tree := sleepy("g1", "a").InParallel(sleepy("g2", "b"), c, sleepy("g5", "e"))

			keys, err := tree.Outputs()
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b", "c", "d", "e"}, keys)

			vs, err := tree.Submit(ctx).Get(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b", "c", "d", "e"}, vs)
		}
	})

	t.Run("sibling failures are isolated", func(t *testing.T) {
		rec := &recorder{}
		bad := New(reg, "g2", "bad", func(context.Context) (string, error) {
			return "", errBoom
		})
		r := recorded(reg, rec, "g1", "a").InParallel(bad, recorded(reg, rec, "g3", "c")).Submit(ctx)

		_, err := r.Get(ctx)
		assert.ErrorIs(t, err, errBoom)

		outs, err := r.Outcomes(ctx)
		require.NoError(t, err)
		kinds := []OutcomeKind{outs[0].Kind(), outs[1].Kind(), outs[2].Kind()}
		assert.Equal(t, []OutcomeKind{OutcomeSucceeded, OutcomeFailed, OutcomeSucceeded}, kinds)
		assert.ElementsMatch(t, []string{"a", "c"}, rec.get())
	})

	t.Run("same group siblings interleave", func(t *testing.T) {
		single := newRegistry(t, executor.WithGroupWorkers("one", 1))
		rec := &recorder{}
		vs, err := recorded(single, rec, "one", "a").
			InParallel(recorded(single, rec, "one", "b"), recorded(single, rec, "one", "c")).
			Submit(ctx).Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, vs)
	})
}

func TestBuilderErrors(t *testing.T) {
	reg := newRegistry(t)
	ctx := context.Background()

	convey.Convey("builder errors", t, func() {
		convey.Convey("duplicate command", func() {
			a := constant(reg, "default", "a", 1)
			_, err := a.InParallel(a).Submit(ctx).Get(ctx)
			convey.So(errors.Is(err, ErrDuplicateCommand), convey.ShouldBeTrue)
			convey.So(a.State(), convey.ShouldEqual, StateCreated)
		})

		convey.Convey("ambiguous input", func() {
			var calls atomic.Int32
			var seen []int
			producer := constant(reg, "default", "a", 1).InParallel(constant(reg, "default", "b", 2))
			chain := Into[int](producer, identity(reg, "c", &calls, &seen))
			convey.So(errors.Is(chain.Err(), ErrAmbiguousInput), convey.ShouldBeTrue)

			// 第一个错误被保留
			chain = chain.Before(constant(reg, "default", "d", 0))
			_, err := chain.Execute(ctx)
			convey.So(errors.Is(err, ErrAmbiguousInput), convey.ShouldBeTrue)
		})

		convey.Convey("nil command", func() {
			var c *Command[int]
			convey.So(errors.Is(c.Chain().Err(), ErrNilCommand), convey.ShouldBeTrue)
			err := constant(reg, "default", "a", 1).InParallel(c).Err()
			convey.So(errors.Is(err, ErrNilCommand), convey.ShouldBeTrue)
		})

		convey.Convey("nil registry", func() {
			_, err := constant[int](nil, "default", "a", 1).Execute(ctx)
			convey.So(errors.Is(err, ErrNilRegistry), convey.ShouldBeTrue)
		})
	})
}

func TestChainImmutable(t *testing.T) {
	reg := newRegistry(t)

	a := constant(reg, "default", "a", 1)
	root := a.Chain()
	withB := root.InParallel(constant(reg, "default", "b", 2))
	withC := root.InParallel(constant(reg, "default", "c", 3))

	k, _ := root.Outputs()
	assert.Equal(t, []string{"a"}, k)
	k, _ = withB.Outputs()
	assert.Equal(t, []string{"a", "b"}, k)
	k, _ = withC.Outputs()
	assert.Equal(t, []string{"a", "c"}, k)
}

func TestDescribe(t *testing.T) {
	reg := newRegistry(t)

	var calls atomic.Int32
	var seen []int
	chain := Into[int](constant(reg, "db", "load", 1), identity(reg, "render", &calls, &seen)).
		Before(constant(reg, "cache", "warm", 0)).
		InParallel(constant(reg, "db", "banner", 2))

	plan, err := chain.Describe()
	require.NoError(t, err)
	assert.Equal(t, "render", plan.Key)
	assert.Equal(t, "default", plan.Group)
	require.Len(t, plan.Edges, 3)
	assert.Equal(t, EdgeSequentialPassthrough.String(), plan.Edges[0].Kind)
	assert.Equal(t, "load", plan.Edges[0].To.Key)
	assert.Equal(t, EdgeSequentialDiscard.String(), plan.Edges[1].Kind)
	assert.Equal(t, "warm", plan.Edges[1].To.Key)
	assert.Equal(t, EdgeParallel.String(), plan.Edges[2].Kind)
	assert.Equal(t, "banner", plan.Edges[2].To.Key)

	js, err := plan.JSON()
	require.NoError(t, err)
	assert.Contains(t, js, `"kind":"SEQUENTIAL_PASSTHROUGH"`)
	assert.Contains(t, js, `"group":"cache"`)

	_, err = Into[int](constant(reg, "db", "a", 1).InParallel(constant(reg, "db", "b", 1)),
		identity(reg, "c", &calls, &seen)).Describe()
	assert.ErrorIs(t, err, ErrAmbiguousInput)
}
