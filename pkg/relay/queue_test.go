package relay_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/logrelay/pkg/relay"
)

func TestQueue_Push(t *testing.T) {
	t.Parallel()

	t.Run("within capacity", func(t *testing.T) {
		t.Parallel()

		q := relay.NewQueue[int](3)
		for i := 1; i <= 3; i++ {
			_, evicted := q.Push(i)
			assert.False(t, evicted)
		}
		assert.Equal(t, 3, q.Len())
		assert.Equal(t, []int{1, 2, 3}, q.Head(3))
	})

	t.Run("evicts oldest when full", func(t *testing.T) {
		t.Parallel()

		q := relay.NewQueue[string](2)
		q.Push("a")
		q.Push("b")

		old, evicted := q.Push("c")
		require.True(t, evicted)
		assert.Equal(t, "a", old)
		assert.Equal(t, 2, q.Len())
		assert.Equal(t, []string{"b", "c"}, q.Head(10))
	})

	t.Run("unbounded with zero capacity", func(t *testing.T) {
		t.Parallel()

		q := relay.NewQueue[int](0)
		for i := range 1000 {
			_, evicted := q.Push(i)
			require.False(t, evicted)
		}
		assert.Equal(t, 1000, q.Len())
		assert.Equal(t, 0, q.Cap())
	})

	t.Run("negative capacity is unbounded", func(t *testing.T) {
		t.Parallel()

		q := relay.NewQueue[int](-5)
		for i := range 20 {
			q.Push(i)
		}
		assert.Equal(t, 20, q.Len())
	})
}

func TestQueue_BoundInvariant(t *testing.T) {
	t.Parallel()

	const capacity = 5
	q := relay.NewQueue[int](capacity)

	for i := 1; i <= 57; i++ {
		q.Push(i)
		require.LessOrEqual(t, q.Len(), capacity)

		first := max(1, i-capacity+1)
		want := make([]int, 0, capacity)
		for v := first; v <= i; v++ {
			want = append(want, v)
		}
		require.Equal(t, want, q.Head(q.Len()), "after push %d", i)
	}
}

func TestQueue_Head(t *testing.T) {
	t.Parallel()

	q := relay.NewQueue[int](0)
	for i := range 5 {
		q.Push(i)
	}

	assert.Equal(t, []int{0, 1}, q.Head(2))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, q.Head(50))
	assert.Empty(t, q.Head(0))
	assert.Empty(t, q.Head(-1))

	head := q.Head(2)
	head[0] = 100
	assert.Equal(t, []int{0, 1}, q.Head(2), "head must return a copy")
	assert.Equal(t, 5, q.Len())
}

func TestQueue_Remove(t *testing.T) {
	t.Parallel()

	t.Run("removes from head", func(t *testing.T) {
		t.Parallel()

		q := relay.NewQueue[int](0)
		for i := range 5 {
			q.Push(i)
		}
		q.Remove(2)
		assert.Equal(t, []int{2, 3, 4}, q.Head(5))
	})

	t.Run("more than size empties queue", func(t *testing.T) {
		t.Parallel()

		q := relay.NewQueue[int](0)
		q.Push(1)
		q.Push(2)
		q.Remove(10)
		assert.Equal(t, 0, q.Len())
		assert.Empty(t, q.Head(1))
	})

	t.Run("negative is a no-op", func(t *testing.T) {
		t.Parallel()

		q := relay.NewQueue[int](0)
		q.Push(1)
		q.Remove(-3)
		assert.Equal(t, 1, q.Len())
	})

	t.Run("keeps order across wrap-around", func(t *testing.T) {
		t.Parallel()

		q := relay.NewQueue[int](4)
		next := 0
		var want []int
		for round := range 10 {
			for range 3 {
				q.Push(next)
				want = append(want, next)
				next++
			}
			for len(want) > q.Len() {
				want = want[1:]
			}
			require.Equal(t, want, q.Head(q.Len()), "round %d", round)

			q.Remove(2)
			want = want[min(2, len(want)):]
			require.Equal(t, want, q.Head(q.Len()), "round %d", round)
		}
	})
}

func TestQueue_Drain(t *testing.T) {
	t.Parallel()

	q := relay.NewQueue[int](3)
	for i := range 4 {
		q.Push(i)
	}

	assert.Equal(t, []int{1, 2, 3}, q.Drain())
	assert.Equal(t, 0, q.Len())

	q.Push(7)
	assert.Equal(t, []int{7}, q.Head(1))
}
