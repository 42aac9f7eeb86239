package hub

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Video/internal/domain"
	"github.com/dkeye/Video/internal/protocol"
)

// AnnounceJoined tells every other member of the joiner's room about it.
// Called by the adapter right after a successful Join.
func (h *Hub) AnnounceJoined(id domain.ConnID) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sess, ok := h.sessions[id]
	if !ok || sess.room == "" {
		return
	}
	frame, err := json.Marshal(protocol.UserJoined{
		Type:        protocol.TypeUserJoined,
		UserID:      sess.user.ID,
		DisplayName: sess.user.DisplayName,
		ConnID:      id,
	})
	if err != nil {
		return
	}
	h.fanoutLocked(sess.room, id, frame)
}

// BroadcastChat enriches a chat text with the sender's identity and a
// timestamp and fans it out to the rest of the sender's room. Fire and
// forget: no acknowledgment, no ordering beyond the transport's own.
func (h *Hub) BroadcastChat(id domain.ConnID, text string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sess, ok := h.sessions[id]
	if !ok || sess.room == "" {
		return
	}
	frame, err := json.Marshal(protocol.ChatMessage{
		Type:        protocol.TypeChatMessage,
		Text:        text,
		UserID:      sess.user.ID,
		DisplayName: sess.user.DisplayName,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	h.fanoutLocked(sess.room, id, frame)
}

// BroadcastToggle fans out the sender's current mute flags to its room.
// Receivers treat this as informational; rendering is a view concern.
func (h *Hub) BroadcastToggle(id domain.ConnID, video, audio bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sess, ok := h.sessions[id]
	if !ok || sess.room == "" {
		return
	}
	frame, err := json.Marshal(protocol.UserToggle{
		Type:   protocol.TypeUserToggle,
		ConnID: id,
		Video:  video,
		Audio:  audio,
	})
	if err != nil {
		return
	}
	h.fanoutLocked(sess.room, id, frame)
}

// fanoutLocked delivers a frame to every member of room except from.
// Callers hold at least the read lock. Slow consumers just drop the frame.
func (h *Hub) fanoutLocked(room domain.RoomID, from domain.ConnID, frame Frame) {
	sent := 0
	for mid := range h.rooms[room] {
		if mid == from {
			continue
		}
		if err := h.sessions[mid].conn.TrySend(frame); err != nil {
			log.Warn().Err(err).Str("module", "hub").Str("conn", string(mid)).Msg("fanout send failed")
			continue
		}
		sent++
	}
	log.Debug().Str("module", "hub").Str("room", string(room)).Str("from", string(from)).Int("sent_to", sent).Msg("fanout")
}

func (h *Hub) userLeftFrame(id domain.ConnID, user *domain.User) Frame {
	frame, err := json.Marshal(protocol.UserLeft{
		Type:        protocol.TypeUserLeft,
		ConnID:      id,
		UserID:      user.ID,
		DisplayName: user.DisplayName,
	})
	if err != nil {
		return nil
	}
	return frame
}

// RoomInfo is a read-only view for the HTTP API.
type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"memberCount"`
}

func (h *Hub) RoomsSnapshot() []RoomInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]RoomInfo, 0, len(h.rooms))
	for id, members := range h.rooms {
		out = append(out, RoomInfo{ID: id, MemberCount: len(members)})
	}
	return out
}
