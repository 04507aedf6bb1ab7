// Package metrics is a minimal, concurrency-safe counter registry.
//
// The relay's failure policies (dead targets, backpressure, rejected joins)
// all drop or refuse work silently at the wire; these counters are how that
// work remains observable.
package metrics

import "sync"

// Counter names used across the relay.
const (
	SignalDroppedDeadTarget   = "signal_dropped_dead_target"
	SignalRejectedUnjoined    = "signal_rejected_unjoined"
	FramesDroppedBackpressure = "frames_dropped_backpressure"
	JoinRejectedRoomNotFound  = "join_rejected_room_not_found"
	JoinRejectedDuplicate     = "join_rejected_duplicate"
	JoinRejectedRateLimited   = "join_rejected_rate_limited"
	RoomsReaped               = "rooms_reaped"
)

type Metrics struct {
	mu sync.Mutex
	m  map[string]uint64
}

func New() *Metrics {
	return &Metrics{
		m: make(map[string]uint64),
	}
}

func (m *Metrics) Inc(name string) {
	m.mu.Lock()
	m.m[name]++
	m.mu.Unlock()
}

func (m *Metrics) Add(name string, n uint64) {
	m.mu.Lock()
	m.m[name] += n
	m.mu.Unlock()
}

func (m *Metrics) Get(name string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.m[name]
}

// Snapshot returns a copy of all counters, for the stats endpoint.
func (m *Metrics) Snapshot() map[string]uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]uint64, len(m.m))
	for k, v := range m.m {
		out[k] = v
	}
	return out
}
