// Package domain contains entities without logic, just meta-data.
package domain

import "errors"

const MaxNameLen = 64

var (
	ErrNameEmpty     = errors.New("display name empty")
	ErrNameTooLong   = errors.New("display name too long")
	ErrRoomNotFound  = errors.New("room not found")
	ErrAlreadyJoined = errors.New("connection already joined a room")
	ErrNotJoined     = errors.New("connection not joined to any room")
)

// ConnID identifies one live transport connection. Assigned at connect,
// valid for the lifetime of that connection only.
type ConnID string

type RoomID string

// Participant is one connection's membership in a room. Created on join,
// removed on leave or disconnect, never mutated in between.
type Participant struct {
	ID   ConnID `json:"id"`
	Name string `json:"name"`
}

// NewParticipant is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewParticipant(id ConnID, name string) (Participant, error) {
	if len(name) == 0 {
		return Participant{}, ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return Participant{}, ErrNameTooLong
	}
	return Participant{ID: id, Name: name}, nil
}
