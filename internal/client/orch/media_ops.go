package orch

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Video/internal/client/media"
	"github.com/dkeye/Video/internal/protocol"
)

// SendChat publishes a chat message to the room and records it locally. The
// hub stamps identity and time for the other members and skips the sender on
// fan-out, so the local copy is the only one this side ever sees.
func (o *Orchestrator) SendChat(text string) error {
	if text == "" {
		return nil
	}
	tr := o.transport()
	if tr == nil {
		return ErrTransportClosed
	}
	if err := tr.Send(protocol.ChatMessage{
		Type: protocol.TypeChatMessage,
		Text: text,
	}); err != nil {
		return err
	}

	o.mu.Lock()
	o.chat = append(o.chat, chatEntry{
		Text:        text,
		UserID:      o.opts.UserID,
		DisplayName: o.opts.DisplayName,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
	o.mu.Unlock()
	return nil
}

// ToggleVideo flips the camera mute and announces the new state.
func (o *Orchestrator) ToggleVideo() (bool, error) {
	on := o.opts.Media.ToggleVideo()
	return on, o.announceToggle()
}

// ToggleAudio flips the mic mute and announces the new state.
func (o *Orchestrator) ToggleAudio() (bool, error) {
	on := o.opts.Media.ToggleAudio()
	return on, o.announceToggle()
}

func (o *Orchestrator) announceToggle() error {
	tr := o.transport()
	if tr == nil {
		return ErrTransportClosed
	}
	return tr.Send(protocol.UserToggle{
		Type:  protocol.TypeUserToggle,
		Video: o.opts.Media.VideoOn(),
		Audio: o.opts.Media.AudioOn(),
	})
}

// StartScreenShare swaps the outgoing media on every link to the screen
// capture: the video sender and, when the capture carries audio, the audio
// sender get the screen tracks in place with no renegotiation. Links without
// a video sender get the track added and a fresh offer once connected.
// Idempotent while a share is active.
func (o *Orchestrator) StartScreenShare(ctx context.Context, dev media.Device) error {
	tracks, err := o.opts.Media.StartScreen(ctx, dev)
	if err != nil {
		return err
	}
	if tracks.Video == nil && tracks.Audio == nil {
		return nil
	}

	o.mu.Lock()
	links := make([]*peerLink, 0, len(o.links))
	for _, l := range o.links {
		links = append(links, l)
	}
	o.mu.Unlock()

	for _, l := range links {
		if tracks.Audio != nil && l.audioSender != nil {
			if err := l.audioSender.ReplaceTrack(tracks.Audio); err != nil {
				log.Error().Err(err).Str("module", "orch").Str("peer", string(l.remote)).Msg("replace audio track failed")
			}
		}
		if tracks.Video == nil {
			continue
		}
		if l.videoSender != nil {
			if err := l.videoSender.ReplaceTrack(tracks.Video); err != nil {
				log.Error().Err(err).Str("module", "orch").Str("peer", string(l.remote)).Msg("replace track failed")
			}
			continue
		}
		s, err := l.conn.AddTrack(tracks.Video)
		if err != nil {
			log.Error().Err(err).Str("module", "orch").Str("peer", string(l.remote)).Msg("add screen track failed")
			continue
		}
		o.mu.Lock()
		l.videoSender = s
		connected := l.state == LinkConnected
		if !connected {
			l.pendingRenegotiate = true
		}
		o.mu.Unlock()
		if connected {
			o.renegotiate(l)
		}
	}
	return nil
}

// StopScreenShare restores the camera and mic tracks on every link that was
// switched.
func (o *Orchestrator) StopScreenShare() error {
	if !o.opts.Media.Sharing() {
		return ErrNotSharing
	}
	hadAudio := o.opts.Media.Screen().Audio != nil
	o.opts.Media.StopScreen()

	cam := o.opts.Media.Camera()
	o.mu.Lock()
	links := make([]*peerLink, 0, len(o.links))
	for _, l := range o.links {
		links = append(links, l)
	}
	o.mu.Unlock()

	for _, l := range links {
		if hadAudio && l.audioSender != nil && cam.Audio != nil {
			if err := l.audioSender.ReplaceTrack(cam.Audio); err != nil {
				log.Error().Err(err).Str("module", "orch").Str("peer", string(l.remote)).Msg("restore mic track failed")
			}
		}
		if l.videoSender == nil || cam.Video == nil {
			continue
		}
		if err := l.videoSender.ReplaceTrack(cam.Video); err != nil {
			log.Error().Err(err).Str("module", "orch").Str("peer", string(l.remote)).Msg("restore camera track failed")
		}
	}
	return nil
}

// renegotiate re-offers on a live link after its track set changed.
func (o *Orchestrator) renegotiate(l *peerLink) {
	o.mu.Lock()
	if l.state != LinkConnected {
		o.mu.Unlock()
		return
	}
	l.renegotiating = true
	o.mu.Unlock()

	offer, err := l.conn.CreateOffer()
	if err != nil {
		o.mu.Lock()
		l.renegotiating = false
		o.mu.Unlock()
		log.Error().Err(negotiationErr("renegotiate", l.remote, err)).Str("module", "orch").Msg("negotiation failed")
		return
	}
	o.sendSignal(protocol.TypeOffer, l.remote, offer)
}
