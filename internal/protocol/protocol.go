// Package protocol defines the JSON event contract spoken over the signal
// channel. The hub reads only the envelope type, the target and the sender
// identity; sdp and candidate bodies stay opaque end to end.
package protocol

import (
	"encoding/json"

	"github.com/dkeye/Video/internal/domain"
)

const (
	TypeJoinRoom      = "join-room"
	TypeExistingUsers = "existing-users"
	TypeUserJoined    = "user-joined"
	TypeUserLeft      = "user-left"
	TypeOffer         = "offer"
	TypeAnswer        = "answer"
	TypeICECandidate  = "ice-candidate"
	TypeChatMessage   = "chat-message"
	TypeUserToggle    = "user-toggle"
)

// Envelope is the minimal view used to dispatch an inbound frame.
type Envelope struct {
	Type string `json:"type"`
}

type JoinRoom struct {
	Type        string `json:"type"`
	Room        string `json:"room"`
	UserID      string `json:"userId,omitempty"`
	DisplayName string `json:"displayName"`
}

type ExistingUsers struct {
	Type  string               `json:"type"`
	Users []domain.Participant `json:"users"`
}

type UserJoined struct {
	Type        string        `json:"type"`
	UserID      domain.UserID `json:"userId"`
	DisplayName string        `json:"displayName"`
	ConnID      domain.ConnID `json:"connId"`
}

type UserLeft struct {
	Type        string        `json:"type"`
	ConnID      domain.ConnID `json:"connId"`
	UserID      domain.UserID `json:"userId"`
	DisplayName string        `json:"displayName"`
}

// Signal carries offer, answer and ice-candidate events. Target is set by
// the sending client and replaced with Sender before the hub relays it.
type Signal struct {
	Type      string          `json:"type"`
	Target    domain.ConnID   `json:"target,omitempty"`
	Sender    domain.ConnID   `json:"sender,omitempty"`
	SDP       json.RawMessage `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

type ChatMessage struct {
	Type        string        `json:"type"`
	Text        string        `json:"text"`
	UserID      domain.UserID `json:"userId,omitempty"`
	DisplayName string        `json:"displayName,omitempty"`
	Timestamp   string        `json:"timestamp,omitempty"`
}

type UserToggle struct {
	Type   string        `json:"type"`
	ConnID domain.ConnID `json:"connId,omitempty"`
	Video  bool          `json:"video"`
	Audio  bool          `json:"audio"`
}
