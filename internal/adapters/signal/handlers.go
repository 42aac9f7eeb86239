package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Video/internal/domain"
	"github.com/dkeye/Video/internal/hub"
	"github.com/dkeye/Video/internal/protocol"
)

func (ctl *Controller) handleFrame(sess *connSession, data []byte) {
	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.Type {
	case protocol.TypeJoinRoom:
		ctl.handleJoin(sess, data)
	case protocol.TypeOffer, protocol.TypeAnswer, protocol.TypeICECandidate:
		ctl.handleRelay(sess, data)
	case protocol.TypeChatMessage:
		ctl.handleChat(sess, data)
	case protocol.TypeUserToggle:
		ctl.handleToggle(sess, data)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
	}
}

func (ctl *Controller) handleJoin(sess *connSession, data []byte) {
	var p protocol.JoinRoom
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(sess.conn, "bad_payload")
		return
	}
	if p.Room == "" {
		ctl.sendError(sess.conn, "empty room")
		return
	}
	userID := p.UserID
	if userID == "" {
		userID = sess.token
	}

	existing, err := ctl.Hub.Join(sess.id, domain.RoomID(p.Room), domain.UserID(userID), p.DisplayName)
	if err != nil {
		if errors.Is(err, hub.ErrAlreadyJoined) {
			// idempotent join, no duplicate membership
			log.Debug().Str("module", "signal").Str("conn", string(sess.id)).Msg("join ignored, already in a room")
			return
		}
		log.Error().Err(err).Str("module", "signal").Str("conn", string(sess.id)).Msg("join rejected")
		ctl.sendError(sess.conn, err.Error())
		return
	}

	ctl.sendJSON(sess.conn, protocol.ExistingUsers{
		Type:  protocol.TypeExistingUsers,
		Users: existing,
	})
	ctl.Hub.AnnounceJoined(sess.id)
}

// handleRelay forwards offer, answer and ice-candidate frames to their
// target, rewriting the address fields only. Payloads stay opaque.
func (ctl *Controller) handleRelay(sess *connSession, data []byte) {
	var p protocol.Signal
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad signal payload")
		return
	}
	if p.Target == "" {
		log.Warn().Str("module", "signal").Str("type", p.Type).Msg("signal without target")
		return
	}

	frame, err := json.Marshal(protocol.Signal{
		Type:      p.Type,
		Sender:    sess.id,
		SDP:       p.SDP,
		Candidate: p.Candidate,
	})
	if err != nil {
		return
	}
	ctl.Hub.Relay(p.Target, frame)
}

func (ctl *Controller) handleChat(sess *connSession, data []byte) {
	var p protocol.ChatMessage
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad chat payload")
		return
	}
	if p.Text == "" {
		return
	}
	ctl.Hub.BroadcastChat(sess.id, p.Text)
}

func (ctl *Controller) handleToggle(sess *connSession, data []byte) {
	var p protocol.UserToggle
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad toggle payload")
		return
	}
	ctl.Hub.BroadcastToggle(sess.id, p.Video, p.Audio)
}

func (ctl *Controller) sendJSON(c *WsSignalConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *Controller) sendError(c *WsSignalConn, msg string) {
	ctl.sendJSON(c, map[string]any{"type": "error", "error": msg})
}
