package buffer_test

import (
	"math/rand/v2"
	"slices"
	"strconv"
	"testing"

	"github.com/teenjuna/again/buffer"
	"github.com/teenjuna/again/internal/testing/require"
)

type item struct {
	Key string
	N   int
}

func TestAppendingBuffer(t *testing.T) {
	var input []item
	for i := range 1000 {
		input = append(input, item{Key: strconv.Itoa(i), N: rand.IntN(1000)})
	}

	b := buffer.Appending[item](0)
	require.Equal(t, b.Size(), 0)

	for i, item := range input {
		b.Push(item)
		require.Equal(t, b.Size(), i+1)
	}

	items := slices.Collect(b.Iter())
	require.Equal(t, items, input)

	copied := b.Items()
	copied[0].N = -1
	require.Equal(t, slices.Collect(b.Iter()), input)

	b.Reset()

	items = slices.Collect(b.Iter())
	require.Equal(t, b.Size(), 0)
	require.Equal(t, len(items), 0)

	require.PanicWithError(t, "capacity can't be < 0", func() {
		_ = buffer.Appending[item](-1)
	})
}

func TestGroupingBuffer(t *testing.T) {
	b := buffer.Grouping(func(i item) string { return i.Key })
	require.Equal(t, b.Size(), 0)
	require.Equal(t, b.Groups(), 0)

	input := []item{
		{Key: "Goku", N: 1},
		{Key: "Vegeta", N: 1},
		{Key: "Goku", N: 2},
		{Key: "Broly", N: 1},
		{Key: "Vegeta", N: 2},
		{Key: "Goku", N: 3},
	}
	for _, i := range input {
		b.Push(i)
	}
	require.Equal(t, b.Size(), 6)
	require.Equal(t, b.Groups(), 3)

	// Groups in order of first push, items in push order.
	require.Equal(t, slices.Collect(b.Iter()), []item{
		{Key: "Goku", N: 1},
		{Key: "Goku", N: 2},
		{Key: "Goku", N: 3},
		{Key: "Vegeta", N: 1},
		{Key: "Vegeta", N: 2},
		{Key: "Broly", N: 1},
	})

	require.Equal(t, b.Take("Vegeta"), []item{
		{Key: "Vegeta", N: 1},
		{Key: "Vegeta", N: 2},
	})
	require.Equal(t, b.Size(), 4)
	require.Equal(t, b.Groups(), 2)
	require.Nil(t, b.Take("Vegeta"))

	// A taken key starts a new group at the end.
	b.Push(item{Key: "Vegeta", N: 3})
	keys := make([]string, 0)
	for i := range b.Iter() {
		keys = append(keys, i.Key)
	}
	require.Equal(t, keys, []string{"Goku", "Goku", "Goku", "Broly", "Vegeta"})

	for range b.Iter() {
		break
	}

	b.Reset()
	require.Equal(t, b.Size(), 0)
	require.Equal(t, b.Groups(), 0)
	require.Equal(t, len(slices.Collect(b.Iter())), 0)

	require.PanicWithError(t, "key func can't be nil", func() {
		_ = buffer.Grouping[item, string](nil)
	})
}
