// Package protocol defines the JSON frames exchanged over the signaling
// connection. Every frame carries a "type" discriminator; signalData is
// forwarded as raw bytes and never inspected.
package protocol

import (
	"encoding/json"

	"github.com/hangout-mates/signaling/internal/core"
	"github.com/hangout-mates/signaling/internal/domain"
)

// Client -> relay event types.
const (
	EventJoinRoom = "join-room"
	EventSignal   = "signal"
	EventChat     = "chat-message"
)

// Relay -> client event types.
const (
	EventConnected        = "connected"
	EventUserJoined       = "user-joined"
	EventRoomData         = "room-data"
	EventUserDisconnected = "user-disconnected"
	EventError            = "error"
)

// Error codes carried by Error frames.
const (
	CodeBadPayload    = "bad_payload"
	CodeBadName       = "bad_name"
	CodeRoomNotFound  = "room_not_found"
	CodeAlreadyJoined = "already_joined"
	CodeNotInRoom     = "not_in_room"
	CodeRateLimited   = "rate_limited"
	CodeUnknownEvent  = "unknown_event"
)

// Envelope is the minimal view used to dispatch an inbound frame.
type Envelope struct {
	Type string `json:"type"`
}

type JoinRoom struct {
	RoomID   string `json:"roomId"`
	UserName string `json:"userName"`
}

type Signal struct {
	RoomID     string          `json:"roomId"`
	SignalData json.RawMessage `json:"signalData"`
	TargetID   string          `json:"targetId"`
}

type ChatMessage struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type Connected struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

type UserJoined struct {
	Type     string `json:"type"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type RoomData struct {
	Type         string               `json:"type"`
	Participants []domain.Participant `json:"participants"`
}

type SignalOut struct {
	Type       string          `json:"type"`
	SignalData json.RawMessage `json:"signalData"`
	UserID     string          `json:"userId"`
}

type UserDisconnected struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

type ChatOut struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

type Error struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Marshal encodes v as a frame. Marshal failures are programming errors for
// these fixed shapes, so the error is swallowed into a nil frame the sender
// skips.
func Marshal(v any) core.Frame {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return core.Frame(b)
}

func NewConnected(id domain.ConnID) core.Frame {
	return Marshal(Connected{Type: EventConnected, UserID: string(id)})
}

func NewUserJoined(p domain.Participant) core.Frame {
	return Marshal(UserJoined{Type: EventUserJoined, UserID: string(p.ID), UserName: p.Name})
}

func NewRoomData(participants []domain.Participant) core.Frame {
	return Marshal(RoomData{Type: EventRoomData, Participants: participants})
}

func NewSignal(from domain.ConnID, data json.RawMessage) core.Frame {
	return Marshal(SignalOut{Type: EventSignal, SignalData: data, UserID: string(from)})
}

func NewUserDisconnected(id domain.ConnID) core.Frame {
	return Marshal(UserDisconnected{Type: EventUserDisconnected, UserID: string(id)})
}

func NewChat(name, message string) core.Frame {
	return Marshal(ChatOut{Type: EventChat, Name: name, Message: message})
}

func NewError(code, message string) core.Frame {
	return Marshal(Error{Type: EventError, Code: code, Message: message})
}
