// Package hub is the authoritative registry of rooms and participants and
// the addressed relay between them. Hub state is the single source of truth
// for membership; clients never decide on their own who is in a room.
package hub

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Video/internal/domain"
)

// Frame is a raw signal payload the hub delivers without interpreting.
type Frame []byte

// SignalConn abstracts the transport endpoint of one session.
// Owned by the adapter; the adapter must Close() it.
type SignalConn interface {
	TrySend(Frame) error
	Close()
}

var (
	ErrAlreadyJoined  = errors.New("session already joined a room")
	ErrUnknownSession = errors.New("unknown session")
)

type session struct {
	conn SignalConn
	user *domain.User
	room domain.RoomID // "" until joined
}

type Hub struct {
	mu       sync.RWMutex
	sessions map[domain.ConnID]*session
	rooms    map[domain.RoomID]map[domain.ConnID]struct{}
}

func New() *Hub {
	return &Hub{
		sessions: make(map[domain.ConnID]*session),
		rooms:    make(map[domain.RoomID]map[domain.ConnID]struct{}),
	}
}

// Register binds a fresh transport session to the hub. Membership comes
// later, with Join.
func (h *Hub) Register(id domain.ConnID, conn SignalConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[id] = &session{conn: conn}
	log.Info().Str("module", "hub").Str("conn", string(id)).Msg("session registered")
}

// Join puts the session into room and returns the members that were already
// there, excluding the joiner. The room is created lazily. A second Join
// without an intervening Leave is a no-op: one membership per handle.
func (h *Hub) Join(id domain.ConnID, room domain.RoomID, userID domain.UserID, displayName string) ([]domain.Participant, error) {
	user, err := domain.NewUser(userID, displayName)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	sess, ok := h.sessions[id]
	if !ok {
		return nil, ErrUnknownSession
	}
	if sess.room != "" {
		return nil, ErrAlreadyJoined
	}

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[domain.ConnID]struct{})
		h.rooms[room] = members
	}

	existing := make([]domain.Participant, 0, len(members))
	for mid := range members {
		m := h.sessions[mid]
		existing = append(existing, domain.NewParticipant(m.user, mid))
	}

	members[id] = struct{}{}
	sess.user = user
	sess.room = room

	log.Info().Str("module", "hub").
		Str("conn", string(id)).
		Str("room", string(room)).
		Str("user", string(user.ID)).
		Int("members", len(members)).
		Msg("joined room")
	return existing, nil
}

// Leave removes the session from its room, if any, and destroys the room
// once its member set is empty. The session itself stays registered so the
// same transport connection may join again.
func (h *Hub) Leave(id domain.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(id)
}

// Disconnect is Leave plus removal of the session itself. Called by the
// adapter when the transport drops.
func (h *Hub) Disconnect(id domain.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(id)
	delete(h.sessions, id)
	log.Info().Str("module", "hub").Str("conn", string(id)).Msg("session removed")
}

func (h *Hub) leaveLocked(id domain.ConnID) {
	sess, ok := h.sessions[id]
	if !ok || sess.room == "" {
		return
	}
	room := sess.room
	user := sess.user
	sess.room = ""

	members := h.rooms[room]
	delete(members, id)
	if len(members) == 0 {
		delete(h.rooms, room)
		log.Info().Str("module", "hub").Str("room", string(room)).Msg("room destroyed")
	} else {
		h.fanoutLocked(room, id, h.userLeftFrame(id, user))
	}
	log.Info().Str("module", "hub").Str("conn", string(id)).Str("room", string(room)).Msg("left room")
}

// Relay forwards a prepared frame to the single session whose handle equals
// target. Relay is room-unaware and best-effort: a dead target means the
// frame is dropped with no error to the sender.
func (h *Hub) Relay(target domain.ConnID, frame Frame) bool {
	h.mu.RLock()
	sess, ok := h.sessions[target]
	h.mu.RUnlock()
	if !ok {
		log.Debug().Str("module", "hub").Str("target", string(target)).Msg("relay miss, dropped")
		return false
	}
	if err := sess.conn.TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "hub").Str("target", string(target)).Msg("relay send failed")
		return false
	}
	return true
}

// Member returns the joined identity of a session, if it has one.
func (h *Hub) Member(id domain.ConnID) (domain.Participant, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sess, ok := h.sessions[id]
	if !ok || sess.room == "" {
		return domain.Participant{}, false
	}
	return domain.NewParticipant(sess.user, id), true
}

// MemberCount reports the size of a room, zero when it does not exist.
func (h *Hub) MemberCount(room domain.RoomID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
