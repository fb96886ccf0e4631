package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingCapacityRoundsUp(t *testing.T) {
	r := New[int](10, DropNewest)
	assert.Equal(t, MinCapacity, r.Cap())

	r2 := New[int](3000, DropNewest)
	assert.Equal(t, 4096, r2.Cap())
}

func TestRingOverflowDropsNewest(t *testing.T) {
	r := New[int](MinCapacity, DropNewest)
	for i := 0; i < 2*r.Cap(); i++ {
		r.Push(i)
	}

	out := make([]int, r.Cap())
	n := r.PopMany(out)
	require.Equal(t, r.Cap()-1, n) // one slot is always unusable (head==tail means empty)
	assert.Equal(t, 0, out[0], "oldest event whose push did not encounter a full buffer")
}

func TestRingOverflowDropsOldest(t *testing.T) {
	r := New[int](MinCapacity, DropOldest)
	total := 2 * r.Cap()
	for i := 0; i < total; i++ {
		r.Push(i)
	}

	out := make([]int, r.Cap())
	n := r.PopMany(out)
	require.Equal(t, r.Cap()-1, n)
	assert.Equal(t, total-n, out[0])
}

func TestRingPopManyPartial(t *testing.T) {
	r := New[int](MinCapacity, DropNewest)
	r.Push(1)
	r.Push(2)
	r.Push(3)

	out := make([]int, 2)
	n := r.PopMany(out)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int{1, 2}, out)
	assert.Equal(t, 1, r.Len())
}

func TestRingNoAliasing(t *testing.T) {
	type payload struct{ v int }
	r := New[payload](MinCapacity, DropNewest)
	p := payload{v: 1}
	r.Push(p)
	p.v = 2 // mutate caller's copy after push

	out := make([]payload, 1)
	r.PopMany(out)
	assert.Equal(t, 1, out[0].v, "ring stores by value, must not alias caller's mutation")
}
