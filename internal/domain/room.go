package domain

// RoomID is participant-supplied and opaque. A room exists from the first
// join to the last leave.
type RoomID string

type Room struct {
	ID RoomID
}
