package command

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/favbox/taskchain/function"
)

func double(_ context.Context, n int) (int, error) {
	return n * 2, nil
}

func TestFromFunc(t *testing.T) {
	reg := newRegistry(t)
	ctx := context.Background()

	t.Run("func1 after producer", func(t *testing.T) {
		step := FromFunc1(reg, "default", "", function.NewFunc1(double))
		assert.Equal(t, "double", step.Key())

		v, err := Into[int](constant(reg, "default", "n", 21), step).Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	})

	t.Run("func2 with typed envelope", func(t *testing.T) {
		add := function.NewFunc2(func(_ context.Context, a, b int) (string, error) {
			return strconv.Itoa(a + b), nil
		}, function.WithName("add"))
		args := constant(reg, "default", "args", function.In2(2, 3))

		step := FromFunc2(reg, "default", "", add)
		assert.Equal(t, "add", step.Key())

		v, err := Into[function.Input2[int, int]](args, step).Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, "5", v)
	})

	t.Run("uniform envelope", func(t *testing.T) {
		var f function.Function[int] = function.NewFunc1(double)
		args := constant[function.Input](reg, "default", "args", function.In1(4))

		v, err := Into[function.Input](args, FromFunction(reg, "default", "apply", f)).Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, 8, v)
	})

	t.Run("envelope mismatch fails the command", func(t *testing.T) {
		var f function.Function[int] = function.NewFunc1(double)

		_, err := FromFunction(reg, "default", "", f).Execute(ctx, function.In2(1, 2))
		var ef *ExecutionFailure
		require.ErrorAs(t, err, &ef)
		assert.ErrorIs(t, err, function.ErrArity)

		_, err = FromFunction(reg, "default", "", f).Execute(ctx, function.In1("four"))
		assert.ErrorIs(t, err, function.ErrInputType)
	})
}
