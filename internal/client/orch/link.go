package orch

import (
	"github.com/pion/webrtc/v4"

	"github.com/dkeye/Video/internal/client/core"
	"github.com/dkeye/Video/internal/domain"
)

// LinkState tracks where a peer link is in the offer/answer exchange.
type LinkState int

const (
	LinkNew LinkState = iota
	LinkOfferSent
	LinkOfferReceived
	LinkAnswerSent
	LinkConnected
	LinkClosed
)

func (s LinkState) String() string {
	switch s {
	case LinkNew:
		return "new"
	case LinkOfferSent:
		return "offer-sent"
	case LinkOfferReceived:
		return "offer-received"
	case LinkAnswerSent:
		return "answer-sent"
	case LinkConnected:
		return "connected"
	case LinkClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// peerLink is one end of a mesh connection. Candidates arriving before the
// remote description lands are parked in pending and flushed in order once
// it does.
type peerLink struct {
	remote domain.ConnID
	conn   core.LinkConn
	state  LinkState

	remoteSet     bool
	renegotiating bool
	// pendingRenegotiate marks a track added while the first exchange was
	// still in flight; the re-offer fires once the link reaches connected.
	pendingRenegotiate bool
	pending            []webrtc.ICECandidateInit

	audioSender core.Sender
	videoSender core.Sender

	remoteTracks []*webrtc.TrackRemote
}
