package orch

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pion/webrtc/v4"

	"github.com/dkeye/Video/internal/client/core"
	"github.com/dkeye/Video/internal/client/media"
	"github.com/dkeye/Video/internal/domain"
	"github.com/dkeye/Video/internal/protocol"
)

type fakeTransport struct {
	mu     sync.Mutex
	sent   [][]byte
	in     chan []byte
	closed bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{in: make(chan []byte, 16)}
}

func (t *fakeTransport) Send(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.sent = append(t.sent, b)
	t.mu.Unlock()
	return nil
}

func (t *fakeTransport) Incoming() <-chan []byte { return t.in }

func (t *fakeTransport) Close() { t.closed = true }

func (t *fakeTransport) sentTypes(tb testing.TB) []string {
	tb.Helper()
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.sent))
	for _, b := range t.sent {
		var env protocol.Envelope
		if err := json.Unmarshal(b, &env); err != nil {
			tb.Fatalf("bad sent frame %q: %v", b, err)
		}
		out = append(out, env.Type)
	}
	return out
}

func (t *fakeTransport) lastSignal(tb testing.TB, typ string) protocol.Signal {
	tb.Helper()
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.sent) - 1; i >= 0; i-- {
		var sig protocol.Signal
		if err := json.Unmarshal(t.sent[i], &sig); err == nil && sig.Type == typ {
			return sig
		}
	}
	tb.Fatalf("no %s frame sent, frames: %d", typ, len(t.sent))
	return protocol.Signal{}
}

type fakeSender struct {
	track    webrtc.TrackLocal
	replaced int
}

func (s *fakeSender) ReplaceTrack(t webrtc.TrackLocal) error {
	s.track = t
	s.replaced++
	return nil
}

type fakeLink struct {
	peer domain.ConnID

	offers        int
	remoteOffers  []webrtc.SessionDescription
	remoteAnswers []webrtc.SessionDescription
	candidates    []webrtc.ICECandidateInit
	tracks        []webrtc.TrackLocal
	senders       []*fakeSender
	closed        bool

	onICE       func(webrtc.ICECandidateInit)
	onTrack     func(*webrtc.TrackRemote)
	onConnected func()
}

func (l *fakeLink) CreateOffer() (webrtc.SessionDescription, error) {
	l.offers++
	return webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "v=0 local offer"}, nil
}

func (l *fakeLink) ApplyOfferCreateAnswer(offer webrtc.SessionDescription) (webrtc.SessionDescription, error) {
	l.remoteOffers = append(l.remoteOffers, offer)
	return webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: "v=0 local answer"}, nil
}

func (l *fakeLink) ApplyAnswer(answer webrtc.SessionDescription) error {
	l.remoteAnswers = append(l.remoteAnswers, answer)
	return nil
}

func (l *fakeLink) AddICECandidate(ci webrtc.ICECandidateInit) error {
	l.candidates = append(l.candidates, ci)
	return nil
}

func (l *fakeLink) AddTrack(t webrtc.TrackLocal) (core.Sender, error) {
	s := &fakeSender{track: t}
	l.tracks = append(l.tracks, t)
	l.senders = append(l.senders, s)
	return s, nil
}

func (l *fakeLink) OnICECandidate(fn func(webrtc.ICECandidateInit)) { l.onICE = fn }

func (l *fakeLink) OnTrack(fn func(*webrtc.TrackRemote)) { l.onTrack = fn }

func (l *fakeLink) OnConnected(fn func()) { l.onConnected = fn }

func (l *fakeLink) Close() { l.closed = true }

func (l *fakeLink) videoTrack() webrtc.TrackLocal {
	for _, t := range l.tracks {
		if t.Kind() == webrtc.RTPCodecTypeVideo {
			return t
		}
	}
	return nil
}

type fakeDevice struct {
	label  string
	closed bool
}

func (d *fakeDevice) Open(_ context.Context) (media.Tracks, error) {
	v, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8}, "video", d.label)
	if err != nil {
		return media.Tracks{}, err
	}
	a, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus}, "audio", d.label)
	if err != nil {
		return media.Tracks{}, err
	}
	return media.Tracks{Audio: a, Video: v}, nil
}

func (d *fakeDevice) Close() error {
	d.closed = true
	return nil
}

type harness struct {
	o     *Orchestrator
	tr    *fakeTransport
	links map[domain.ConnID]*fakeLink
	src   *media.Source
}

func newHarness(t *testing.T, userID domain.UserID, openMedia bool) *harness {
	t.Helper()
	tr := newFakeTransport()
	links := make(map[domain.ConnID]*fakeLink)
	src := media.NewSource(&fakeDevice{label: "cam"})
	if openMedia {
		if err := src.Open(context.Background()); err != nil {
			t.Fatalf("open media: %v", err)
		}
	}
	o := New(Options{
		Dial: func(context.Context) (core.Transport, error) { return tr, nil },
		Media: src,
		NewConn: func(peer domain.ConnID) (core.LinkConn, error) {
			l := &fakeLink{peer: peer}
			links[peer] = l
			return l, nil
		},
		UserID:      userID,
		DisplayName: "me",
		Room:        "room",
	})
	o.tr = tr
	return &harness{o: o, tr: tr, links: links, src: src}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func offerFrame(t *testing.T, sender domain.ConnID) []byte {
	t.Helper()
	sdp := mustJSON(t, webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "v=0 remote offer"})
	return mustJSON(t, protocol.Signal{Type: protocol.TypeOffer, Sender: sender, SDP: sdp})
}

func answerFrame(t *testing.T, sender domain.ConnID) []byte {
	t.Helper()
	sdp := mustJSON(t, webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: "v=0 remote answer"})
	return mustJSON(t, protocol.Signal{Type: protocol.TypeAnswer, Sender: sender, SDP: sdp})
}

func candidateFrame(t *testing.T, sender domain.ConnID, cand string) []byte {
	t.Helper()
	ci := mustJSON(t, webrtc.ICECandidateInit{Candidate: cand})
	return mustJSON(t, protocol.Signal{Type: protocol.TypeICECandidate, Sender: sender, Candidate: ci})
}

func existingUsersFrame(t *testing.T, users ...domain.Participant) []byte {
	t.Helper()
	return mustJSON(t, protocol.ExistingUsers{Type: protocol.TypeExistingUsers, Users: users})
}

func TestExistingUserGetsOfferThenConnects(t *testing.T) {
	h := newHarness(t, "me-id", true)

	h.o.handleFrame(existingUsersFrame(t, domain.Participant{UserID: "u2", DisplayName: "bob", ConnID: "c2"}))

	if got := h.o.LinkStateOf("c2"); got != LinkOfferSent {
		t.Fatalf("state = %v, want offer-sent", got)
	}
	sig := h.tr.lastSignal(t, protocol.TypeOffer)
	if sig.Target != "c2" {
		t.Fatalf("offer target = %q", sig.Target)
	}
	if len(h.links["c2"].tracks) != 2 {
		t.Fatalf("local tracks attached = %d, want 2", len(h.links["c2"].tracks))
	}

	h.o.handleFrame(answerFrame(t, "c2"))

	if got := h.o.LinkStateOf("c2"); got != LinkConnected {
		t.Fatalf("state = %v, want connected", got)
	}
	if len(h.links["c2"].remoteAnswers) != 1 {
		t.Fatal("remote answer not applied")
	}
}

func TestInboundOfferIsAnswered(t *testing.T) {
	h := newHarness(t, "me-id", true)

	// An offer from a sender we have no link with yet, the usual path for
	// the side that joined first.
	h.o.handleFrame(offerFrame(t, "c9"))

	if got := h.o.LinkStateOf("c9"); got != LinkAnswerSent {
		t.Fatalf("state = %v, want answer-sent", got)
	}
	sig := h.tr.lastSignal(t, protocol.TypeAnswer)
	if sig.Target != "c9" {
		t.Fatalf("answer target = %q", sig.Target)
	}

	// The transport reports connected, terminal state for the answering side.
	h.links["c9"].onConnected()
	if got := h.o.LinkStateOf("c9"); got != LinkConnected {
		t.Fatalf("state = %v, want connected", got)
	}
}

func TestCandidatesBufferedUntilRemoteDescription(t *testing.T) {
	h := newHarness(t, "me-id", true)

	h.o.handleFrame(existingUsersFrame(t, domain.Participant{UserID: "u2", DisplayName: "bob", ConnID: "c2"}))
	h.o.handleFrame(candidateFrame(t, "c2", "candidate:1"))
	h.o.handleFrame(candidateFrame(t, "c2", "candidate:2"))

	if got := len(h.links["c2"].candidates); got != 0 {
		t.Fatalf("candidates applied before remote description: %d", got)
	}

	h.o.handleFrame(answerFrame(t, "c2"))

	applied := h.links["c2"].candidates
	if len(applied) != 2 || applied[0].Candidate != "candidate:1" || applied[1].Candidate != "candidate:2" {
		t.Fatalf("flushed candidates = %+v, want both in arrival order", applied)
	}

	// Later candidates skip the buffer.
	h.o.handleFrame(candidateFrame(t, "c2", "candidate:3"))
	if got := len(h.links["c2"].candidates); got != 3 {
		t.Fatalf("post-flush candidate not applied, total %d", got)
	}
}

func TestCandidateForUnknownPeerDropped(t *testing.T) {
	h := newHarness(t, "me-id", true)
	h.o.handleFrame(candidateFrame(t, "ghost", "candidate:1"))
	if _, ok := h.links["ghost"]; ok {
		t.Fatal("candidate created a link")
	}
}

func TestGlareRemoteWins(t *testing.T) {
	// Remote user id sorts above ours, so the inbound offer replaces our
	// half-open link.
	h := newHarness(t, "aaa", true)

	h.o.handleFrame(existingUsersFrame(t, domain.Participant{UserID: "zzz", DisplayName: "bob", ConnID: "c2"}))
	first := h.links["c2"]
	if h.o.LinkStateOf("c2") != LinkOfferSent {
		t.Fatal("precondition: offer not sent")
	}

	h.o.handleFrame(offerFrame(t, "c2"))

	if !first.closed {
		t.Fatal("losing link not closed")
	}
	second := h.links["c2"]
	if second == first {
		t.Fatal("link not rebuilt for the winning offer")
	}
	if got := h.o.LinkStateOf("c2"); got != LinkAnswerSent {
		t.Fatalf("state = %v, want answer-sent", got)
	}
	h.tr.lastSignal(t, protocol.TypeAnswer)
}

func TestGlareLocalWins(t *testing.T) {
	// Our user id sorts above the remote's, so their offer is ignored and
	// ours stands.
	h := newHarness(t, "zzz", true)

	h.o.handleFrame(existingUsersFrame(t, domain.Participant{UserID: "aaa", DisplayName: "bob", ConnID: "c2"}))
	first := h.links["c2"]

	h.o.handleFrame(offerFrame(t, "c2"))

	if first.closed {
		t.Fatal("winning link was closed")
	}
	if got := h.o.LinkStateOf("c2"); got != LinkOfferSent {
		t.Fatalf("state = %v, want offer-sent", got)
	}
	if len(first.remoteOffers) != 0 {
		t.Fatal("losing offer was applied")
	}
}

func TestRenegotiationOnConnectedLink(t *testing.T) {
	h := newHarness(t, "me-id", true)

	h.o.handleFrame(existingUsersFrame(t, domain.Participant{UserID: "u2", DisplayName: "bob", ConnID: "c2"}))
	h.o.handleFrame(answerFrame(t, "c2"))
	if h.o.LinkStateOf("c2") != LinkConnected {
		t.Fatal("precondition: link not connected")
	}

	h.o.handleFrame(offerFrame(t, "c2"))

	if got := h.o.LinkStateOf("c2"); got != LinkConnected {
		t.Fatalf("state = %v, want connected after renegotiation", got)
	}
	if len(h.links["c2"].remoteOffers) != 1 {
		t.Fatal("renegotiation offer not applied")
	}
	h.tr.lastSignal(t, protocol.TypeAnswer)
}

func TestUserLeftClosesLink(t *testing.T) {
	h := newHarness(t, "me-id", true)

	h.o.handleFrame(existingUsersFrame(t, domain.Participant{UserID: "u2", DisplayName: "bob", ConnID: "c2"}))
	h.o.handleFrame(answerFrame(t, "c2"))

	h.o.handleFrame(mustJSON(t, protocol.UserLeft{Type: protocol.TypeUserLeft, ConnID: "c2", UserID: "u2"}))

	if !h.links["c2"].closed {
		t.Fatal("link not closed on user-left")
	}
	if got := h.o.LinkStateOf("c2"); got != LinkClosed {
		t.Fatalf("state = %v, want closed", got)
	}
	if len(h.o.Participants()) != 0 {
		t.Fatal("participant not removed")
	}
}

func TestScreenShareReplacesTrackInPlace(t *testing.T) {
	h := newHarness(t, "me-id", true)

	h.o.handleFrame(existingUsersFrame(t, domain.Participant{UserID: "u2", DisplayName: "bob", ConnID: "c2"}))
	h.o.handleFrame(answerFrame(t, "c2"))

	link := h.links["c2"]
	offersBefore := link.offers
	camVideo := link.videoTrack()

	if err := h.o.StartScreenShare(context.Background(), &fakeDevice{label: "screen"}); err != nil {
		t.Fatalf("start share: %v", err)
	}

	var videoSender *fakeSender
	for _, s := range link.senders {
		if s.track.Kind() == webrtc.RTPCodecTypeVideo {
			videoSender = s
		}
	}
	if videoSender == nil || videoSender.replaced != 1 {
		t.Fatal("video sender track not replaced")
	}
	if videoSender.track == camVideo {
		t.Fatal("sender still carries the camera track")
	}
	if link.offers != offersBefore {
		t.Fatal("replace path should not renegotiate")
	}
	if got := h.o.LinkStateOf("c2"); got != LinkConnected {
		t.Fatalf("state = %v, want connected during share", got)
	}

	if err := h.o.StopScreenShare(); err != nil {
		t.Fatalf("stop share: %v", err)
	}
	if videoSender.replaced != 2 || videoSender.track != camVideo {
		t.Fatal("camera track not restored")
	}
}

func TestScreenShareAddsTrackWhenNoSender(t *testing.T) {
	// Media never opened: the link starts with no senders at all.
	h := newHarness(t, "me-id", false)

	h.o.handleFrame(existingUsersFrame(t, domain.Participant{UserID: "u2", DisplayName: "bob", ConnID: "c2"}))
	h.o.handleFrame(answerFrame(t, "c2"))

	link := h.links["c2"]
	if len(link.senders) != 0 {
		t.Fatalf("precondition: link has %d senders", len(link.senders))
	}
	offersBefore := link.offers

	if err := h.o.StartScreenShare(context.Background(), &fakeDevice{label: "screen"}); err != nil {
		t.Fatalf("start share: %v", err)
	}

	if len(link.senders) != 1 {
		t.Fatalf("senders = %d, want screen track added", len(link.senders))
	}
	if link.offers != offersBefore+1 {
		t.Fatal("added track requires a renegotiation offer")
	}
}

func TestStopScreenShareWithoutShare(t *testing.T) {
	h := newHarness(t, "me-id", true)
	if err := h.o.StopScreenShare(); !errors.Is(err, ErrNotSharing) {
		t.Fatalf("err = %v, want ErrNotSharing", err)
	}
}

func TestStartScreenShareIdempotent(t *testing.T) {
	h := newHarness(t, "me-id", true)
	h.o.handleFrame(existingUsersFrame(t, domain.Participant{UserID: "u2", DisplayName: "bob", ConnID: "c2"}))
	h.o.handleFrame(answerFrame(t, "c2"))

	dev := &fakeDevice{label: "screen"}
	if err := h.o.StartScreenShare(context.Background(), dev); err != nil {
		t.Fatalf("first start: %v", err)
	}
	if err := h.o.StartScreenShare(context.Background(), &fakeDevice{label: "screen2"}); err != nil {
		t.Fatalf("second start: %v", err)
	}
	if !h.src.Sharing() {
		t.Fatal("share not active")
	}
}

func TestToggleAnnouncesNewState(t *testing.T) {
	h := newHarness(t, "me-id", true)

	on, err := h.o.ToggleVideo()
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if on {
		t.Fatal("video should be off after first toggle")
	}

	h.tr.mu.Lock()
	last := h.tr.sent[len(h.tr.sent)-1]
	h.tr.mu.Unlock()
	var msg protocol.UserToggle
	if err := json.Unmarshal(last, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != protocol.TypeUserToggle || msg.Video || !msg.Audio {
		t.Fatalf("toggle frame = %+v", msg)
	}
}

func TestChatHistoryKeepsArrivalOrder(t *testing.T) {
	h := newHarness(t, "me-id", true)

	for _, text := range []string{"first", "second", "third"} {
		h.o.handleFrame(mustJSON(t, protocol.ChatMessage{
			Type: protocol.TypeChatMessage, Text: text, UserID: "u2", DisplayName: "bob",
			Timestamp: "2026-01-02T15:04:05Z",
		}))
	}

	history := h.o.ChatHistory()
	if len(history) != 3 || history[0].Text != "first" || history[2].Text != "third" {
		t.Fatalf("history = %+v", history)
	}
}

func TestPeerToggleDefaultsOn(t *testing.T) {
	h := newHarness(t, "me-id", true)

	video, audio := h.o.PeerToggle("c2")
	if !video || !audio {
		t.Fatal("unknown peer should default to media on")
	}

	h.o.handleFrame(mustJSON(t, protocol.UserToggle{
		Type: protocol.TypeUserToggle, ConnID: "c2", Video: false, Audio: true,
	}))
	video, audio = h.o.PeerToggle("c2")
	if video || !audio {
		t.Fatalf("toggle state = video %v audio %v", video, audio)
	}
}

func TestRunSendsJoinAndStopsOnTransportClose(t *testing.T) {
	h := newHarness(t, "me-id", true)

	done := make(chan error, 1)
	go func() { done <- h.o.Run(context.Background()) }()

	close(h.tr.in)
	err := <-done
	if !errors.Is(err, ErrTransportClosed) {
		t.Fatalf("err = %v, want ErrTransportClosed", err)
	}

	types := h.tr.sentTypes(t)
	if len(types) == 0 || types[0] != protocol.TypeJoinRoom {
		t.Fatalf("first frame = %v, want join-room", types)
	}
	if !h.tr.closed {
		t.Fatal("transport not closed on teardown")
	}
}

func TestScreenShareSwapsAudioWhenCapturePresent(t *testing.T) {
	h := newHarness(t, "me-id", true)
	h.o.handleFrame(existingUsersFrame(t, domain.Participant{UserID: "u2", DisplayName: "bob", ConnID: "c2"}))
	h.o.handleFrame(answerFrame(t, "c2"))

	link := h.links["c2"]
	var audioSender *fakeSender
	var camAudio webrtc.TrackLocal
	for _, s := range link.senders {
		if s.track.Kind() == webrtc.RTPCodecTypeAudio {
			audioSender = s
			camAudio = s.track
		}
	}
	if audioSender == nil {
		t.Fatal("precondition: no audio sender on the link")
	}

	// The fake screen device captures audio alongside video, so both
	// senders must switch.
	if err := h.o.StartScreenShare(context.Background(), &fakeDevice{label: "screen"}); err != nil {
		t.Fatalf("start share: %v", err)
	}
	if audioSender.replaced != 1 {
		t.Fatal("audio sender kept the mic track during share")
	}
	if audioSender.track == camAudio {
		t.Fatal("audio sender still carries the mic track")
	}

	if err := h.o.StopScreenShare(); err != nil {
		t.Fatalf("stop share: %v", err)
	}
	if audioSender.replaced != 2 || audioSender.track != camAudio {
		t.Fatal("mic track not restored after share")
	}
}

func TestSendChatRecordsOwnMessage(t *testing.T) {
	h := newHarness(t, "me-id", true)

	if err := h.o.SendChat("hello room"); err != nil {
		t.Fatalf("send chat: %v", err)
	}

	history := h.o.ChatHistory()
	if len(history) != 1 {
		t.Fatalf("history = %d entries, want own message recorded", len(history))
	}
	entry := history[0]
	if entry.Text != "hello room" || entry.UserID != "me-id" || entry.DisplayName != "me" {
		t.Fatalf("entry = %+v", entry)
	}
	if _, err := time.Parse(time.RFC3339, entry.Timestamp); err != nil {
		t.Fatalf("timestamp %q: %v", entry.Timestamp, err)
	}

	types := h.tr.sentTypes(t)
	if len(types) != 1 || types[0] != protocol.TypeChatMessage {
		t.Fatalf("sent = %v, want one chat-message", types)
	}
}

func TestSecondRunRejoinsAndRebuildsLinks(t *testing.T) {
	dialed := make(chan *fakeTransport, 2)
	links := make(map[domain.ConnID]*fakeLink)
	o := New(Options{
		Dial: func(context.Context) (core.Transport, error) {
			tr := newFakeTransport()
			dialed <- tr
			return tr, nil
		},
		Media: media.NewSource(&fakeDevice{label: "cam"}),
		NewConn: func(peer domain.ConnID) (core.LinkConn, error) {
			l := &fakeLink{peer: peer}
			links[peer] = l
			return l, nil
		},
		UserID:      "me-id",
		DisplayName: "me",
		Room:        "room",
	})

	run := func(t *testing.T) *fakeTransport {
		t.Helper()
		done := make(chan error, 1)
		go func() { done <- o.Run(context.Background()) }()
		tr := <-dialed
		tr.in <- existingUsersFrame(t, domain.Participant{UserID: "u2", DisplayName: "bob", ConnID: "c2"})
		close(tr.in)
		if err := <-done; !errors.Is(err, ErrTransportClosed) {
			t.Fatalf("run err = %v, want ErrTransportClosed", err)
		}
		return tr
	}

	tr1 := run(t)
	first := links["c2"]
	if first == nil || first.offers != 1 {
		t.Fatalf("first run link = %+v", first)
	}
	if !tr1.closed {
		t.Fatal("first transport not closed on teardown")
	}

	tr2 := run(t)
	second := links["c2"]
	if second == first {
		t.Fatal("second run reused the dead link")
	}
	if second.offers != 1 {
		t.Fatalf("second run offers = %d, want a fresh offer", second.offers)
	}

	for _, tr := range []*fakeTransport{tr1, tr2} {
		types := tr.sentTypes(t)
		if len(types) == 0 || types[0] != protocol.TypeJoinRoom {
			t.Fatalf("first frame = %v, want join-room on every run", types)
		}
	}
}

func TestScreenTrackAddedBeforeConnectRenegotiates(t *testing.T) {
	// Media never opened: the link carries no senders, so the share has to
	// add the track. The first exchange is still in flight.
	h := newHarness(t, "me-id", false)
	h.o.handleFrame(existingUsersFrame(t, domain.Participant{UserID: "u2", DisplayName: "bob", ConnID: "c2"}))

	link := h.links["c2"]
	if h.o.LinkStateOf("c2") != LinkOfferSent || link.offers != 1 {
		t.Fatal("precondition: initial offer not in flight")
	}

	if err := h.o.StartScreenShare(context.Background(), &fakeDevice{label: "screen"}); err != nil {
		t.Fatalf("start share: %v", err)
	}
	if link.offers != 1 {
		t.Fatal("re-offered before the link connected")
	}

	// The answer lands, the link connects, and the deferred re-offer fires.
	h.o.handleFrame(answerFrame(t, "c2"))
	if link.offers != 2 {
		t.Fatalf("offers = %d, want deferred renegotiation after connect", link.offers)
	}

	// The renegotiation answer is accepted on the live link.
	h.o.handleFrame(answerFrame(t, "c2"))
	if got := h.o.LinkStateOf("c2"); got != LinkConnected {
		t.Fatalf("state = %v, want connected", got)
	}
	if len(link.remoteAnswers) != 2 {
		t.Fatalf("remote answers = %d, want both applied", len(link.remoteAnswers))
	}
}

func TestRemoteTrackRecorded(t *testing.T) {
	h := newHarness(t, "me-id", true)
	h.o.handleFrame(existingUsersFrame(t, domain.Participant{UserID: "u2", DisplayName: "bob", ConnID: "c2"}))

	h.links["c2"].onTrack(&webrtc.TrackRemote{})

	if got := len(h.o.RemoteTracks("c2")); got != 1 {
		t.Fatalf("remote tracks = %d, want 1", got)
	}
}
