package app

import (
	"github.com/rs/zerolog/log"

	"github.com/hangout-mates/signaling/internal/core"
	"github.com/hangout-mates/signaling/internal/domain"
	"github.com/hangout-mates/signaling/internal/metrics"
	"github.com/hangout-mates/signaling/internal/protocol"
)

// Broadcaster fans membership events out to room members. Delivery is
// fire-and-forget: a member whose outbound queue is full loses the frame and
// gets counted, never stalling the mutation that triggered the fan-out. A
// dropped presence snapshot is self-healing since the next one carries full
// state again.
type Broadcaster struct {
	Metrics *metrics.Metrics
}

func NewBroadcaster(m *metrics.Metrics) *Broadcaster {
	return &Broadcaster{Metrics: m}
}

func (b *Broadcaster) MemberJoined(prior []core.Member, joined domain.Participant) {
	b.fanOut(prior, protocol.NewUserJoined(joined))
}

func (b *Broadcaster) RoomData(members []core.Member, participants []domain.Participant) {
	b.fanOut(members, protocol.NewRoomData(participants))
}

func (b *Broadcaster) MemberLeft(remaining []core.Member, departed domain.ConnID) {
	b.fanOut(remaining, protocol.NewUserDisconnected(departed))
}

// Chat relays a chat message verbatim to everyone but the sender.
func (b *Broadcaster) Chat(others []core.Member, name, message string) {
	b.fanOut(others, protocol.NewChat(name, message))
}

func (b *Broadcaster) fanOut(members []core.Member, frame core.Frame) {
	if frame == nil {
		return
	}
	for _, m := range members {
		if err := m.Conn.TrySend(frame); err != nil {
			if b.Metrics != nil {
				b.Metrics.Inc(metrics.FramesDroppedBackpressure)
			}
			log.Warn().Str("module", "app.broadcaster").
				Str("cid", string(m.Participant.ID)).Err(err).Msg("frame dropped")
		}
	}
}
