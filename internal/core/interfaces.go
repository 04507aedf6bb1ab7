package core

import "github.com/hangout-mates/signaling/internal/domain"

// Frame is a raw encoded message bound for one connection's outbound queue.
type Frame []byte

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it. TrySend never blocks:
// it enqueues or fails, so slow receivers cannot stall room mutations.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// Member pairs a participant record with its transport endpoint.
// This is what a room stores and fans out to.
type Member struct {
	Participant domain.Participant
	Conn        SignalConnection
}

// Notifier receives membership changes as they are applied. The directory
// invokes it while still holding the room lock, so for any one room the
// callbacks happen in the same order as the mutations they report.
type Notifier interface {
	// MemberJoined fires before the snapshot update, toward members that were
	// already in the room.
	MemberJoined(prior []Member, joined domain.Participant)
	// RoomData carries the full, current participant list to every member.
	RoomData(members []Member, participants []domain.Participant)
	// MemberLeft fires toward the members remaining after a departure.
	MemberLeft(remaining []Member, departed domain.ConnID)
}

type RoomInfo struct {
	ID           domain.RoomID `json:"id"`
	Participants int           `json:"participants"`
}
