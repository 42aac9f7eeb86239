package orch

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Video/internal/domain"
	"github.com/dkeye/Video/internal/protocol"
)

func (o *Orchestrator) handleFrame(raw []byte) {
	var env protocol.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Warn().Err(err).Str("module", "orch").Msg("bad frame")
		return
	}

	switch env.Type {
	case protocol.TypeExistingUsers:
		var msg protocol.ExistingUsers
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Warn().Err(err).Str("module", "orch").Msg("bad existing-users")
			return
		}
		o.handleExistingUsers(msg)
	case protocol.TypeUserJoined:
		var msg protocol.UserJoined
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Warn().Err(err).Str("module", "orch").Msg("bad user-joined")
			return
		}
		o.handleUserJoined(msg)
	case protocol.TypeUserLeft:
		var msg protocol.UserLeft
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		o.handleUserLeft(msg.ConnID)
	case protocol.TypeOffer, protocol.TypeAnswer, protocol.TypeICECandidate:
		var sig protocol.Signal
		if err := json.Unmarshal(raw, &sig); err != nil {
			log.Warn().Err(err).Str("module", "orch").Msg("bad signal")
			return
		}
		o.handleSignal(sig)
	case protocol.TypeChatMessage:
		var msg protocol.ChatMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		o.handleChat(msg)
	case protocol.TypeUserToggle:
		var msg protocol.UserToggle
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		o.handleToggle(msg)
	default:
		log.Debug().Str("module", "orch").Str("type", env.Type).Msg("unhandled frame type")
	}
}

// handleExistingUsers offers to every member already in the room. The members
// offer back on user-joined, so glare is expected and settled per link.
func (o *Orchestrator) handleExistingUsers(msg protocol.ExistingUsers) {
	for _, p := range msg.Users {
		o.mu.Lock()
		o.participants[p.ConnID] = p
		l, err := o.ensureLinkLocked(p.ConnID)
		o.mu.Unlock()
		if err != nil {
			log.Error().Err(err).Str("module", "orch").Str("peer", string(p.ConnID)).Msg("link setup failed")
			continue
		}
		o.sendOffer(l)
	}
}

func (o *Orchestrator) handleUserJoined(msg protocol.UserJoined) {
	p := domain.Participant{UserID: msg.UserID, DisplayName: msg.DisplayName, ConnID: msg.ConnID}
	o.mu.Lock()
	o.participants[p.ConnID] = p
	l, err := o.ensureLinkLocked(p.ConnID)
	o.mu.Unlock()
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("peer", string(p.ConnID)).Msg("link setup failed")
		return
	}
	o.sendOffer(l)
}

func (o *Orchestrator) handleUserLeft(peer domain.ConnID) {
	o.mu.Lock()
	l, ok := o.links[peer]
	if ok {
		delete(o.links, peer)
		l.state = LinkClosed
	}
	delete(o.participants, peer)
	delete(o.toggles, peer)
	o.mu.Unlock()

	if ok {
		l.conn.Close()
		log.Info().Str("module", "orch").Str("peer", string(peer)).Msg("peer left, link closed")
	}
}

func (o *Orchestrator) handleSignal(sig protocol.Signal) {
	switch sig.Type {
	case protocol.TypeOffer:
		o.handleOffer(sig)
	case protocol.TypeAnswer:
		o.handleAnswer(sig)
	case protocol.TypeICECandidate:
		o.handleCandidate(sig)
	}
}

func (o *Orchestrator) handleOffer(sig protocol.Signal) {
	var sdp webrtc.SessionDescription
	if err := json.Unmarshal(sig.SDP, &sdp); err != nil {
		log.Warn().Err(err).Str("module", "orch").Msg("bad offer sdp")
		return
	}

	o.mu.Lock()
	l, exists := o.links[sig.Sender]
	if exists {
		switch l.state {
		case LinkConnected:
			// Renegotiation on the live link, screen share track adds land
			// here.
		case LinkOfferSent:
			if !o.remoteWinsLocked(sig.Sender) {
				o.mu.Unlock()
				log.Debug().Str("module", "orch").Str("peer", string(sig.Sender)).Msg("glare, local offer stands")
				return
			}
			// Remote side wins the glare. Drop the half-open link and answer
			// their offer on a fresh one.
			old := l
			delete(o.links, sig.Sender)
			o.mu.Unlock()
			old.conn.Close()
			o.mu.Lock()
			var err error
			l, err = o.ensureLinkLocked(sig.Sender)
			if err != nil {
				o.mu.Unlock()
				log.Error().Err(err).Str("module", "orch").Str("peer", string(sig.Sender)).Msg("link setup failed")
				return
			}
		default:
			o.mu.Unlock()
			log.Debug().
				Str("module", "orch").
				Str("peer", string(sig.Sender)).
				Str("state", l.state.String()).
				Msg("offer ignored in current state")
			return
		}
	} else {
		if _, known := o.participants[sig.Sender]; !known {
			// Offer raced ahead of user-joined. Track the sender so the
			// roster stays consistent.
			o.participants[sig.Sender] = domain.Participant{
				UserID:      domain.UserID(sig.Sender),
				DisplayName: string(sig.Sender),
				ConnID:      sig.Sender,
			}
		}
		var err error
		l, err = o.ensureLinkLocked(sig.Sender)
		if err != nil {
			o.mu.Unlock()
			log.Error().Err(err).Str("module", "orch").Str("peer", string(sig.Sender)).Msg("link setup failed")
			return
		}
	}
	o.mu.Unlock()

	answer, err := l.conn.ApplyOfferCreateAnswer(sdp)
	if err != nil {
		// Link keeps its prior state; a fresh join is the recovery path.
		log.Error().Err(negotiationErr("answer", sig.Sender, err)).Str("module", "orch").Msg("negotiation failed")
		return
	}

	o.mu.Lock()
	l.remoteSet = true
	if l.state != LinkConnected {
		l.state = LinkAnswerSent
	}
	o.flushCandidatesLocked(l)
	o.mu.Unlock()

	o.sendSignal(protocol.TypeAnswer, sig.Sender, answer)
}

func (o *Orchestrator) handleAnswer(sig protocol.Signal) {
	var sdp webrtc.SessionDescription
	if err := json.Unmarshal(sig.SDP, &sdp); err != nil {
		log.Warn().Err(err).Str("module", "orch").Msg("bad answer sdp")
		return
	}

	o.mu.Lock()
	l, ok := o.links[sig.Sender]
	if !ok || (l.state != LinkOfferSent && !(l.state == LinkConnected && l.renegotiating)) {
		o.mu.Unlock()
		log.Debug().Str("module", "orch").Str("peer", string(sig.Sender)).Msg("answer ignored")
		return
	}
	o.mu.Unlock()

	if err := l.conn.ApplyAnswer(sdp); err != nil {
		log.Error().Err(negotiationErr("apply answer", sig.Sender, err)).Str("module", "orch").Msg("negotiation failed")
		return
	}

	o.mu.Lock()
	l.remoteSet = true
	l.renegotiating = false
	l.state = LinkConnected
	pending := l.pendingRenegotiate
	l.pendingRenegotiate = false
	o.flushCandidatesLocked(l)
	o.mu.Unlock()

	if pending {
		o.renegotiate(l)
	}
}

func (o *Orchestrator) handleCandidate(sig protocol.Signal) {
	var ci webrtc.ICECandidateInit
	if err := json.Unmarshal(sig.Candidate, &ci); err != nil {
		log.Warn().Err(err).Str("module", "orch").Msg("bad candidate")
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.links[sig.Sender]
	if !ok {
		log.Debug().Str("module", "orch").Str("peer", string(sig.Sender)).Msg("candidate for unknown link dropped")
		return
	}
	if !l.remoteSet {
		l.pending = append(l.pending, ci)
		return
	}
	if err := l.conn.AddICECandidate(ci); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("peer", string(sig.Sender)).Msg("candidate rejected")
	}
}

// flushCandidatesLocked applies parked candidates in arrival order.
func (o *Orchestrator) flushCandidatesLocked(l *peerLink) {
	for _, ci := range l.pending {
		if err := l.conn.AddICECandidate(ci); err != nil {
			log.Warn().Err(err).Str("module", "orch").Str("peer", string(l.remote)).Msg("buffered candidate rejected")
		}
	}
	l.pending = nil
}

func (o *Orchestrator) handleChat(msg protocol.ChatMessage) {
	o.mu.Lock()
	o.chat = append(o.chat, chatEntry{
		Text:        msg.Text,
		UserID:      msg.UserID,
		DisplayName: msg.DisplayName,
		Timestamp:   msg.Timestamp,
	})
	o.mu.Unlock()
}

func (o *Orchestrator) handleToggle(msg protocol.UserToggle) {
	o.mu.Lock()
	o.toggles[msg.ConnID] = toggleState{Video: msg.Video, Audio: msg.Audio}
	o.mu.Unlock()
}

// remoteWinsLocked settles offer glare: the side with the greater user id
// keeps its offer, the other side answers.
func (o *Orchestrator) remoteWinsLocked(peer domain.ConnID) bool {
	p, ok := o.participants[peer]
	if !ok {
		return false
	}
	return string(p.UserID) > string(o.opts.UserID)
}

// ensureLinkLocked returns the link for a peer, building one when absent:
// fresh connection, callbacks bound, local tracks attached.
func (o *Orchestrator) ensureLinkLocked(peer domain.ConnID) (*peerLink, error) {
	if l, ok := o.links[peer]; ok {
		return l, nil
	}

	conn, err := o.opts.NewConn(peer)
	if err != nil {
		return nil, negotiationErr("connect", peer, err)
	}
	l := &peerLink{remote: peer, conn: conn, state: LinkNew}

	conn.OnICECandidate(func(ci webrtc.ICECandidateInit) {
		// No orchestrator state touched here, the callback runs on pion's
		// goroutine.
		o.sendCandidate(peer, ci)
	})
	conn.OnTrack(func(t *webrtc.TrackRemote) {
		o.mu.Lock()
		l.remoteTracks = append(l.remoteTracks, t)
		o.mu.Unlock()
	})
	conn.OnConnected(func() {
		o.mu.Lock()
		if l.state == LinkAnswerSent {
			l.state = LinkConnected
		}
		pending := l.state == LinkConnected && l.pendingRenegotiate
		if pending {
			l.pendingRenegotiate = false
		}
		o.mu.Unlock()
		log.Info().Str("module", "orch").Str("peer", string(peer)).Msg("peer link connected")
		if pending {
			o.renegotiate(l)
		}
	})

	o.attachLocalTracks(l)
	o.links[peer] = l
	return l, nil
}

func (o *Orchestrator) attachLocalTracks(l *peerLink) {
	cam := o.opts.Media.Camera()
	if cam.Audio != nil {
		s, err := l.conn.AddTrack(cam.Audio)
		if err != nil {
			log.Error().Err(err).Str("module", "orch").Str("peer", string(l.remote)).Msg("add audio track failed")
		} else {
			l.audioSender = s
		}
	}
	video := cam.Video
	if scr := o.opts.Media.Screen(); scr.Video != nil {
		video = scr.Video
	}
	if video != nil {
		s, err := l.conn.AddTrack(video)
		if err != nil {
			log.Error().Err(err).Str("module", "orch").Str("peer", string(l.remote)).Msg("add video track failed")
		} else {
			l.videoSender = s
		}
	}
}

// sendOffer moves a fresh link to offer-sent. Links past new are left alone.
func (o *Orchestrator) sendOffer(l *peerLink) {
	o.mu.Lock()
	if l.state != LinkNew {
		o.mu.Unlock()
		return
	}
	o.mu.Unlock()

	offer, err := l.conn.CreateOffer()
	if err != nil {
		// Link stays in new; this peer never reaches connected without a
		// fresh join.
		log.Error().Err(negotiationErr("offer", l.remote, err)).Str("module", "orch").Msg("negotiation failed")
		return
	}

	o.mu.Lock()
	if l.state == LinkNew {
		l.state = LinkOfferSent
	}
	o.mu.Unlock()

	o.sendSignal(protocol.TypeOffer, l.remote, offer)
}

func (o *Orchestrator) sendSignal(typ string, target domain.ConnID, sdp webrtc.SessionDescription) {
	body, err := json.Marshal(sdp)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("marshal sdp")
		return
	}
	tr := o.transport()
	if tr == nil {
		return
	}
	msg := protocol.Signal{Type: typ, Target: target, SDP: body}
	if err := tr.Send(msg); err != nil {
		log.Error().Err(err).Str("module", "orch").Str("peer", string(target)).Msg("send signal failed")
	}
}

func (o *Orchestrator) sendCandidate(target domain.ConnID, ci webrtc.ICECandidateInit) {
	body, err := json.Marshal(ci)
	if err != nil {
		return
	}
	tr := o.transport()
	if tr == nil {
		return
	}
	msg := protocol.Signal{Type: protocol.TypeICECandidate, Target: target, Candidate: body}
	if err := tr.Send(msg); err != nil {
		log.Error().Err(err).Str("module", "orch").Str("peer", string(target)).Msg("send candidate failed")
	}
}

