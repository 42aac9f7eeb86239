// Package media owns the local capture: exactly one camera+mic set per
// session plus an optional screen capture that temporarily overrides it.
package media

import (
	"context"
	"errors"

	"github.com/pion/webrtc/v4"
)

// ErrMediaAccess marks a capture device that is denied or unavailable.
// It blocks the corresponding capability only; the session stays up.
var ErrMediaAccess = errors.New("media device denied or unavailable")

// Tracks is one capture's outbound track pair. Either side may be nil
// (a screen capture without audio, a mic-only device).
type Tracks struct {
	Audio webrtc.TrackLocal
	Video webrtc.TrackLocal
}

// Device is a capture source. Open may block while the platform negotiates
// access, so it takes a context for a bounded wait.
type Device interface {
	Open(ctx context.Context) (Tracks, error)
	Close() error
}

// SampleDevice is a Device backed by static sample tracks. The embedder
// pushes encoded frames into AudioTrack/VideoTrack via WriteSample; this is
// the integration point for an actual capture pipeline. The capture loop
// must consult the owning Source's AudioOn/VideoOn flags and skip writes
// while muted: a toggle never detaches the track, it only stops the frames.
type SampleDevice struct {
	label string
	audio *webrtc.TrackLocalStaticSample
	video *webrtc.TrackLocalStaticSample
}

func NewSampleDevice(label string) *SampleDevice {
	return &SampleDevice{label: label}
}

func (d *SampleDevice) Open(_ context.Context) (Tracks, error) {
	video, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8}, "video", d.label)
	if err != nil {
		return Tracks{}, errors.Join(ErrMediaAccess, err)
	}
	audio, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus}, "audio", d.label)
	if err != nil {
		return Tracks{}, errors.Join(ErrMediaAccess, err)
	}
	d.video = video
	d.audio = audio
	return Tracks{Audio: audio, Video: video}, nil
}

// Close releases nothing for sample tracks; hardware-backed devices stop
// their capture loop here.
func (d *SampleDevice) Close() error { return nil }

func (d *SampleDevice) AudioTrack() *webrtc.TrackLocalStaticSample { return d.audio }
func (d *SampleDevice) VideoTrack() *webrtc.TrackLocalStaticSample { return d.video }
