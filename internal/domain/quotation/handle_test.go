package quotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArena_StaleHandleAfterReuse(t *testing.T) {
	var a arena[string]
	first := a.insert(func(Handle) string { return "first" })
	require.True(t, a.remove(first))

	second := a.insert(func(Handle) string { return "second" })
	assert.Equal(t, first.index(), second.index(), "slot is reused")
	assert.NotEqual(t, first, second)

	_, ok := a.get(first)
	assert.False(t, ok, "stale handle must not resolve")
	v, ok := a.get(second)
	require.True(t, ok)
	assert.Equal(t, "second", *v)
}

func TestArena_PreservesInsertionOrder(t *testing.T) {
	var a arena[int]
	hs := make([]Handle, 0, 4)
	for i := 1; i <= 4; i++ {
		v := i
		hs = append(hs, a.insert(func(Handle) int { return v }))
	}
	a.remove(hs[1])

	var got []int
	a.each(func(v *int) { got = append(got, *v) })
	assert.Equal(t, []int{1, 3, 4}, got)
	assert.Equal(t, 3, a.len())
}

func TestArena_RemoveWhere(t *testing.T) {
	var a arena[int]
	for i := 0; i < 6; i++ {
		v := i
		a.insert(func(Handle) int { return v })
	}
	removed := a.removeWhere(func(v *int) bool { return *v%2 == 0 })
	assert.Len(t, removed, 3)

	var got []int
	a.each(func(v *int) { got = append(got, *v) })
	assert.Equal(t, []int{1, 3, 5}, got)
}

func TestHandle_StringRoundTrip(t *testing.T) {
	h := newHandle(7, 3)
	parsed, err := ParseHandle(h.String())
	require.NoError(t, err)
	assert.Equal(t, h, parsed)

	_, err = ParseHandle("abc")
	assert.Error(t, err)
	assert.True(t, NoHandle.IsZero())
}
