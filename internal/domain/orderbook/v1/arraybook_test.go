package orderbookv1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrayBook_Add(t *testing.T) {
	t.Run("asks kept ascending", func(t *testing.T) {
		book := NewArrayBook(SideSell, 8)
		for _, p := range []int64{103, 100, 102, 101} {
			require.NoError(t, book.Add(p, 10))
		}

		depth := book.Depth()
		require.Len(t, depth, 4)
		for i, want := range []int64{100, 101, 102, 103} {
			assert.Equal(t, want, depth[i].Price)
		}
	})

	t.Run("bids kept descending", func(t *testing.T) {
		book := NewArrayBook(SideBuy, 8)
		for _, p := range []int64{101, 103, 100} {
			require.NoError(t, book.Add(p, 10))
		}

		depth := book.Depth()
		require.Len(t, depth, 3)
		for i, want := range []int64{103, 101, 100} {
			assert.Equal(t, want, depth[i].Price)
		}
	})

	t.Run("same price merges quantity", func(t *testing.T) {
		book := NewArrayBook(SideSell, 8)
		require.NoError(t, book.Add(100, 10))
		require.NoError(t, book.Add(100, 5))

		assert.Equal(t, 1, book.Len())
		assert.Equal(t, int64(15), book.TotalVolume())
	})

	t.Run("invalid input", func(t *testing.T) {
		book := NewArrayBook(SideSell, 8)
		assert.ErrorIs(t, book.Add(100, 0), ErrInvalidQuantity)
		assert.ErrorIs(t, book.Add(0, 10), ErrInvalidPrice)
	})
}

func TestArrayBook_Match(t *testing.T) {
	t.Run("walks best levels while crossing", func(t *testing.T) {
		book := NewArrayBook(SideSell, 8)
		require.NoError(t, book.Add(100, 5))
		require.NoError(t, book.Add(101, 6))
		require.NoError(t, book.Add(103, 4))

		// Incoming buy limited at 102 consumes 100 and 101 only.
		filled := book.Match(102, 20)

		assert.Equal(t, int64(11), filled)
		assert.Equal(t, int64(4), book.TotalVolume())
	})

	t.Run("partial level consumption", func(t *testing.T) {
		book := NewArrayBook(SideSell, 8)
		require.NoError(t, book.Add(100, 10))

		filled := book.Match(100, 4)

		assert.Equal(t, int64(4), filled)
		best, ok := book.BestPrice()
		require.True(t, ok)
		assert.Equal(t, int64(100), best)
		assert.Equal(t, int64(6), book.TotalVolume())
	})

	t.Run("no crossing no fill", func(t *testing.T) {
		book := NewArrayBook(SideSell, 8)
		require.NoError(t, book.Add(101, 10))

		assert.Equal(t, int64(0), book.Match(100, 10))
		assert.Equal(t, int64(10), book.TotalVolume())
	})
}

func TestArrayBook_LazyCompaction(t *testing.T) {
	book := NewArrayBook(SideSell, 8)
	require.NoError(t, book.Add(100, 5))
	require.NoError(t, book.Add(101, 6))
	require.NoError(t, book.Add(102, 7))

	// Fully consume the first two levels; they are zeroed, not removed.
	filled := book.Match(101, 11)
	require.Equal(t, int64(11), filled)

	// Reads skip the zeroed prefix without compaction running.
	best, ok := book.BestPrice()
	require.True(t, ok)
	assert.Equal(t, int64(102), best)
	assert.Equal(t, 1, book.Len())

	depth := book.Depth()
	require.Len(t, depth, 1)
	assert.Equal(t, int64(102), depth[0].Price)

	// New inserts land correctly relative to the live tail.
	require.NoError(t, book.Add(103, 3))
	best, ok = book.BestPrice()
	require.True(t, ok)
	assert.Equal(t, int64(102), best)

	book.Compact()
	depth = book.Depth()
	require.Len(t, depth, 2)
	assert.Equal(t, int64(102), depth[0].Price)
	assert.Equal(t, int64(103), depth[1].Price)
}

func TestArrayBook_Clear(t *testing.T) {
	book := NewArrayBook(SideBuy, 8)
	require.NoError(t, book.Add(100, 5))

	book.Clear()

	assert.Equal(t, 0, book.Len())
	_, ok := book.BestPrice()
	assert.False(t, ok)
}
