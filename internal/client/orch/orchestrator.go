// Package orch drives the client side of a room: it joins over the signaling
// transport, opens one peer link per participant, and walks each link through
// the offer/answer exchange until media flows.
package orch

import (
	"context"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Video/internal/client/core"
	"github.com/dkeye/Video/internal/client/media"
	"github.com/dkeye/Video/internal/domain"
	"github.com/dkeye/Video/internal/protocol"
)

// mediaOpenTimeout bounds the wait for local capture. A room join never
// blocks on a device: on timeout the user enters receive-only.
const mediaOpenTimeout = 3 * time.Second

// Options wires an Orchestrator. Dial opens the signaling transport and is
// called once per Run, so a second Run after transport loss performs a fresh
// join over a new connection. NewConn builds the peer link for a remote
// connection; both factories let tests substitute fakes.
type Options struct {
	Dial    func(ctx context.Context) (core.Transport, error)
	Media   *media.Source
	NewConn func(peer domain.ConnID) (core.LinkConn, error)

	UserID      domain.UserID
	DisplayName string
	Room        domain.RoomID
}

type chatEntry struct {
	Text        string
	UserID      domain.UserID
	DisplayName string
	Timestamp   string
}

type toggleState struct {
	Video bool
	Audio bool
}

type Orchestrator struct {
	opts Options

	mu           sync.Mutex
	tr           core.Transport // nil outside Run
	links        map[domain.ConnID]*peerLink
	participants map[domain.ConnID]domain.Participant
	toggles      map[domain.ConnID]toggleState
	chat         []chatEntry
}

func New(opts Options) *Orchestrator {
	return &Orchestrator{
		opts:         opts,
		links:        make(map[domain.ConnID]*peerLink),
		participants: make(map[domain.ConnID]domain.Participant),
		toggles:      make(map[domain.ConnID]toggleState),
	}
}

// Run dials the signaling transport, opens local media, joins the room and
// serves signaling frames until the context is done or the transport closes.
// All peer links are torn down on return; running again dials fresh and
// rejoins, rebuilding every link from the hub's member list.
func (o *Orchestrator) Run(ctx context.Context) error {
	tr, err := o.opts.Dial(ctx)
	if err != nil {
		return err
	}
	o.mu.Lock()
	o.tr = tr
	o.mu.Unlock()

	o.openMedia(ctx)
	defer o.teardown()

	join := protocol.JoinRoom{
		Type:        protocol.TypeJoinRoom,
		Room:        string(o.opts.Room),
		UserID:      string(o.opts.UserID),
		DisplayName: o.opts.DisplayName,
	}
	if err := tr.Send(join); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-tr.Incoming():
			if !ok {
				return ErrTransportClosed
			}
			o.handleFrame(raw)
		}
	}
}

// transport returns the live signaling channel, nil outside Run.
func (o *Orchestrator) transport() core.Transport {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.tr
}

func (o *Orchestrator) openMedia(ctx context.Context) {
	openCtx, cancel := context.WithTimeout(ctx, mediaOpenTimeout)
	defer cancel()
	if err := o.opts.Media.Open(openCtx); err != nil {
		log.Warn().Err(err).Str("module", "orch").Msg("local media unavailable, joining receive-only")
	}
}

func (o *Orchestrator) teardown() {
	o.mu.Lock()
	tr := o.tr
	o.tr = nil
	links := make([]*peerLink, 0, len(o.links))
	for _, l := range o.links {
		links = append(links, l)
		l.state = LinkClosed
	}
	o.links = make(map[domain.ConnID]*peerLink)
	o.participants = make(map[domain.ConnID]domain.Participant)
	o.mu.Unlock()

	for _, l := range links {
		l.conn.Close()
	}
	o.opts.Media.Close()
	if tr != nil {
		tr.Close()
	}
}

// Participants returns a snapshot of the known room members.
func (o *Orchestrator) Participants() []domain.Participant {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]domain.Participant, 0, len(o.participants))
	for _, p := range o.participants {
		out = append(out, p)
	}
	return out
}

// ChatHistory returns messages in arrival order.
func (o *Orchestrator) ChatHistory() []chatEntry {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]chatEntry, len(o.chat))
	copy(out, o.chat)
	return out
}

// RemoteTracks returns the media tracks received from a peer.
func (o *Orchestrator) RemoteTracks(peer domain.ConnID) []*webrtc.TrackRemote {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.links[peer]
	if !ok {
		return nil
	}
	out := make([]*webrtc.TrackRemote, len(l.remoteTracks))
	copy(out, l.remoteTracks)
	return out
}

// Preview returns the local tracks a view should render: the screen while
// sharing, the camera otherwise.
func (o *Orchestrator) Preview() media.Tracks {
	return o.opts.Media.Preview()
}

// LinkStateOf reports the exchange state for a peer, LinkClosed when unknown.
func (o *Orchestrator) LinkStateOf(peer domain.ConnID) LinkState {
	o.mu.Lock()
	defer o.mu.Unlock()
	if l, ok := o.links[peer]; ok {
		return l.state
	}
	return LinkClosed
}

// PeerToggle reports the last announced mute state for a peer. Both flags
// default to on for peers that never announced.
func (o *Orchestrator) PeerToggle(peer domain.ConnID) (video, audio bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if t, ok := o.toggles[peer]; ok {
		return t.Video, t.Audio
	}
	return true, true
}
