package app

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hangout-mates/signaling/internal/core"
	"github.com/hangout-mates/signaling/internal/domain"
)

type connEntry struct {
	Conn   core.SignalConnection
	Room   domain.RoomID
	Cancel context.CancelFunc
}

// Registry tracks every live transport connection and which room, if any,
// it has joined.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ConnID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[domain.ConnID]*connEntry)}
}

// Register assigns a fresh connection id and tracks the connection.
func (r *Registry) Register(conn core.SignalConnection, cancel context.CancelFunc) domain.ConnID {
	cid := domain.ConnID(uuid.NewString())
	r.mu.Lock()
	r.conns[cid] = &connEntry{Conn: conn, Cancel: cancel}
	r.mu.Unlock()
	log.Info().Str("module", "app.registry").Str("cid", string(cid)).Msg("connection registered")
	return cid
}

// Unregister removes the connection and reports whether it was still present.
// The second call for the same id returns false, which is what keeps
// disconnect cleanup exactly-once.
func (r *Registry) Unregister(cid domain.ConnID) bool {
	r.mu.Lock()
	entry, ok := r.conns[cid]
	if ok {
		delete(r.conns, cid)
	}
	r.mu.Unlock()
	if !ok {
		return false
	}
	if entry.Cancel != nil {
		entry.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("cid", string(cid)).Msg("connection unregistered")
	return true
}

// SetRoom records the room a connection has joined. A connection joins at
// most one room for its lifetime.
func (r *Registry) SetRoom(cid domain.ConnID, room domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.conns[cid]
	if !ok {
		return false
	}
	entry.Room = room
	return true
}

// RoomOf returns the room the connection has joined, if any.
func (r *Registry) RoomOf(cid domain.ConnID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.conns[cid]
	if !ok || entry.Room == "" {
		return "", false
	}
	return entry.Room, true
}

// Conn returns the live transport endpoint for cid.
func (r *Registry) Conn(cid domain.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.conns[cid]
	if !ok {
		return nil, false
	}
	return entry.Conn, true
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
