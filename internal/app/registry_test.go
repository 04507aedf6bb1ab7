package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAssignsUniqueIDs(t *testing.T) {
	r := NewRegistry()
	a := r.Register(&fakeConn{}, nil)
	b := r.Register(&fakeConn{}, nil)

	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, r.Count())

	_, ok := r.Conn(a)
	assert.True(t, ok)
}

func TestRegistry_RoomOf(t *testing.T) {
	r := NewRegistry()
	a := r.Register(&fakeConn{}, nil)

	_, ok := r.RoomOf(a)
	assert.False(t, ok, "anonymous connection has no room")

	require.True(t, r.SetRoom(a, "abcd"))
	room, ok := r.RoomOf(a)
	require.True(t, ok)
	assert.Equal(t, "abcd", string(room))

	assert.False(t, r.SetRoom("ghost", "abcd"))
}

func TestRegistry_UnregisterExactlyOnce(t *testing.T) {
	r := NewRegistry()
	canceled := 0
	a := r.Register(&fakeConn{}, func() { canceled++ })

	assert.True(t, r.Unregister(a))
	assert.False(t, r.Unregister(a), "second unregister reports nothing to do")
	assert.Equal(t, 1, canceled)
	assert.Equal(t, 0, r.Count())

	_, ok := r.Conn(a)
	assert.False(t, ok)
}
