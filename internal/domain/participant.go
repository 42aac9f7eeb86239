package domain

// ConnID is the transport-level connection handle, unique per active
// session. A handle belongs to at most one room at a time.
type ConnID string

// Participant is one joined session as the rest of the room sees it.
type Participant struct {
	UserID      UserID `json:"userId"`
	DisplayName string `json:"displayName"`
	ConnID      ConnID `json:"connId"`
}

// NewParticipant avoids raw literals in adapters and keeps construction obvious.
func NewParticipant(user *User, conn ConnID) Participant {
	return Participant{UserID: user.ID, DisplayName: user.DisplayName, ConnID: conn}
}
