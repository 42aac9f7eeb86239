package core

import "github.com/pion/webrtc/v4"

// Sender is an outbound track slot on an established link. ReplaceTrack
// swaps the media source feeding it without a new offer/answer round.
type Sender interface {
	ReplaceTrack(webrtc.TrackLocal) error
}

// LinkConn abstracts the peer-connection under one Peer Link.
// Owned by the orchestrator; the orchestrator must Close() it.
type LinkConn interface {
	// CreateOffer produces and installs a local offer requesting both audio
	// and video reception.
	CreateOffer() (webrtc.SessionDescription, error)
	// ApplyOfferCreateAnswer installs a remote offer and produces the answer.
	ApplyOfferCreateAnswer(webrtc.SessionDescription) (webrtc.SessionDescription, error)
	// ApplyAnswer installs a remote answer.
	ApplyAnswer(webrtc.SessionDescription) error
	// AddICECandidate applies a remote ICE candidate.
	AddICECandidate(webrtc.ICECandidateInit) error
	// AddTrack attaches a local outbound track.
	AddTrack(webrtc.TrackLocal) (Sender, error)
	// OnICECandidate sets a callback for newly gathered local candidates.
	OnICECandidate(func(webrtc.ICECandidateInit))
	// OnTrack sets a callback invoked when a remote track arrives.
	OnTrack(func(*webrtc.TrackRemote))
	// OnConnected sets a callback for the underlying connected signal.
	OnConnected(func())
	// Close stops the underlying connection and its resources.
	Close()
}
