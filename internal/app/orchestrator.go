package app

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/hangout-mates/signaling/internal/core"
	"github.com/hangout-mates/signaling/internal/domain"
	"github.com/hangout-mates/signaling/internal/metrics"
	"github.com/hangout-mates/signaling/internal/protocol"
)

// Orchestrator drives the per-connection lifecycle: anonymous after Connect,
// joined after a successful Join, terminated after Disconnect. All failure
// paths here are recoverable at the connection level; nothing a client sends
// can affect other connections or rooms.
type Orchestrator struct {
	Registry    *Registry
	Rooms       *Directory
	Broadcaster *Broadcaster
	Metrics     *metrics.Metrics
}

func NewOrchestrator(reg *Registry, dir *Directory, bc *Broadcaster, m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{Registry: reg, Rooms: dir, Broadcaster: bc, Metrics: m}
}

// Connect registers a new anonymous connection and returns its id.
func (o *Orchestrator) Connect(conn core.SignalConnection, cancel context.CancelFunc) domain.ConnID {
	return o.Registry.Register(conn, cancel)
}

// Join moves the connection from anonymous to joined. The directory performs
// the mutation and the presence fan-out; on success the registry records the
// room so later signals and the eventual disconnect know where to look.
func (o *Orchestrator) Join(cid domain.ConnID, room domain.RoomID, name string) ([]domain.Participant, error) {
	if _, joined := o.Registry.RoomOf(cid); joined {
		o.Metrics.Inc(metrics.JoinRejectedDuplicate)
		return nil, domain.ErrAlreadyJoined
	}
	conn, ok := o.Registry.Conn(cid)
	if !ok {
		return nil, domain.ErrNotJoined
	}
	p, err := domain.NewParticipant(cid, name)
	if err != nil {
		return nil, err
	}
	snapshot, err := o.Rooms.Join(room, p, conn)
	if err != nil {
		if err == domain.ErrRoomNotFound {
			o.Metrics.Inc(metrics.JoinRejectedRoomNotFound)
		}
		return nil, err
	}
	o.Registry.SetRoom(cid, room)
	return snapshot, nil
}

// Relay forwards an opaque payload to exactly one target connection, tagged
// with the sender's id. A target that is not live gets the message silently
// dropped; the sender's session carries on.
func (o *Orchestrator) Relay(cid domain.ConnID, target domain.ConnID, payload json.RawMessage) error {
	if _, joined := o.Registry.RoomOf(cid); !joined {
		o.Metrics.Inc(metrics.SignalRejectedUnjoined)
		return domain.ErrNotJoined
	}
	conn, ok := o.Registry.Conn(target)
	if !ok {
		o.Metrics.Inc(metrics.SignalDroppedDeadTarget)
		log.Debug().Str("module", "app.orchestrator").
			Str("from", string(cid)).Str("target", string(target)).Msg("signal dropped, target gone")
		return nil
	}
	frame := protocol.NewSignal(cid, payload)
	if err := conn.TrySend(frame); err != nil {
		o.Metrics.Inc(metrics.FramesDroppedBackpressure)
		log.Warn().Str("module", "app.orchestrator").
			Str("target", string(target)).Err(err).Msg("signal dropped, slow target")
	}
	return nil
}

// Chat relays a chat message to all other members of the sender's room.
func (o *Orchestrator) Chat(cid domain.ConnID, name, message string) error {
	others, _, ok := o.Rooms.Others(cid)
	if !ok {
		o.Metrics.Inc(metrics.SignalRejectedUnjoined)
		return domain.ErrNotJoined
	}
	o.Broadcaster.Chat(others, name, message)
	return nil
}

// Disconnect tears the connection down. Safe to call repeatedly: only the
// first call finds a registry entry, so directory cleanup and the departure
// broadcast happen exactly once, joined or not.
func (o *Orchestrator) Disconnect(cid domain.ConnID) {
	if !o.Registry.Unregister(cid) {
		return
	}
	if _, _, ok := o.Rooms.Leave(cid); !ok {
		log.Debug().Str("module", "app.orchestrator").Str("cid", string(cid)).Msg("disconnect without room")
	}
}
