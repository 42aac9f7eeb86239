package orch

import (
	"errors"
	"fmt"

	"github.com/dkeye/Video/internal/domain"
)

var (
	// ErrTransportClosed reports that the signaling connection is gone and no
	// further frames can be sent.
	ErrTransportClosed = errors.New("signaling transport closed")

	// ErrNotSharing is returned by StopScreenShare when no share is active.
	ErrNotSharing = errors.New("screen share not active")
)

// NegotiationError wraps a failure in the offer/answer exchange with the peer
// it concerns. The link that produced it is torn down; other links are not
// affected.
type NegotiationError struct {
	Op   string
	Peer domain.ConnID
	Err  error
}

func (e *NegotiationError) Error() string {
	return fmt.Sprintf("negotiation %s with %s: %v", e.Op, e.Peer, e.Err)
}

func (e *NegotiationError) Unwrap() error { return e.Err }

func negotiationErr(op string, peer domain.ConnID, err error) *NegotiationError {
	return &NegotiationError{Op: op, Peer: peer, Err: err}
}
