package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/hangout-mates/signaling/internal/domain"
	"github.com/hangout-mates/signaling/internal/metrics"
	"github.com/hangout-mates/signaling/internal/protocol"
)

func (ctl *Controller) handleJoin(cid domain.ConnID, c *WsConn, data []byte) {
	var p protocol.JoinRoom
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(c, protocol.CodeBadPayload, "malformed join-room")
		return
	}
	if p.UserName == "" || len(p.UserName) > domain.MaxNameLen {
		ctl.sendError(c, protocol.CodeBadName, "userName must be 1-64 bytes")
		return
	}
	if !ctl.Limiter.Allow(cid) {
		ctl.Orch.Metrics.Inc(metrics.JoinRejectedRateLimited)
		ctl.sendError(c, protocol.CodeRateLimited, "too many join attempts")
		return
	}

	log.Info().Str("module", "signal").Str("cid", string(cid)).
		Str("room", p.RoomID).Str("name", p.UserName).Msg("join-room")
	_, err := ctl.Orch.Join(cid, domain.RoomID(p.RoomID), p.UserName)
	switch {
	case err == nil:
		// The directory already fanned out user-joined and room-data.
	case errors.Is(err, domain.ErrRoomNotFound):
		ctl.sendError(c, protocol.CodeRoomNotFound, p.RoomID)
	case errors.Is(err, domain.ErrAlreadyJoined):
		ctl.sendError(c, protocol.CodeAlreadyJoined, "one room per connection")
	default:
		ctl.sendError(c, protocol.CodeBadName, err.Error())
	}
}

func (ctl *Controller) handleSignal(cid domain.ConnID, c *WsConn, data []byte) {
	var p protocol.Signal
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad signal payload")
		ctl.sendError(c, protocol.CodeBadPayload, "malformed signal")
		return
	}
	if err := ctl.Orch.Relay(cid, domain.ConnID(p.TargetID), p.SignalData); err != nil {
		ctl.sendError(c, protocol.CodeNotInRoom, "join a room before signaling")
	}
}

func (ctl *Controller) handleChat(cid domain.ConnID, c *WsConn, data []byte) {
	var p protocol.ChatMessage
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad chat payload")
		ctl.sendError(c, protocol.CodeBadPayload, "malformed chat-message")
		return
	}
	if err := ctl.Orch.Chat(cid, p.Name, p.Message); err != nil {
		ctl.sendError(c, protocol.CodeNotInRoom, "join a room before chatting")
	}
}
