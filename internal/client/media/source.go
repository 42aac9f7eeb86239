package media

import (
	"context"
	"fmt"
	"sync"
)

// Source is the single local media source of a session. The orchestrator
// owns it exclusively; peer links see its tracks read-only as outbound
// senders. Toggling mutes in place, it never detaches a track.
type Source struct {
	mu     sync.Mutex
	camera Device
	cam    Tracks
	opened bool

	screen  Device
	scr     Tracks
	sharing bool

	audioOn bool
	videoOn bool
}

func NewSource(camera Device) *Source {
	return &Source{camera: camera, audioOn: true, videoOn: true}
}

// Open acquires the camera+mic capture. Callers bound the wait with ctx.
func (s *Source) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opened {
		return nil
	}
	tracks, err := s.camera.Open(ctx)
	if err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	s.cam = tracks
	s.opened = true
	return nil
}

func (s *Source) Opened() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened
}

// Camera returns the camera+mic track pair, zero before Open.
func (s *Source) Camera() Tracks {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cam
}

// Screen returns the screen track pair, zero unless sharing.
func (s *Source) Screen() Tracks {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scr
}

// Preview is what the local view renders: the screen while sharing,
// the camera otherwise.
func (s *Source) Preview() Tracks {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sharing {
		return s.scr
	}
	return s.cam
}

// ToggleAudio flips the mic enabled flag and reports the new state.
func (s *Source) ToggleAudio() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audioOn = !s.audioOn
	return s.audioOn
}

// ToggleVideo flips the camera enabled flag and reports the new state.
func (s *Source) ToggleVideo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videoOn = !s.videoOn
	return s.videoOn
}

func (s *Source) AudioOn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.audioOn
}

func (s *Source) VideoOn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.videoOn
}

func (s *Source) Sharing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sharing
}

// StartScreen acquires an independent screen capture. Idempotent while a
// share is active.
func (s *Source) StartScreen(ctx context.Context, dev Device) (Tracks, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sharing {
		return s.scr, nil
	}
	tracks, err := dev.Open(ctx)
	if err != nil {
		return Tracks{}, fmt.Errorf("open screen: %w", err)
	}
	s.screen = dev
	s.scr = tracks
	s.sharing = true
	return tracks, nil
}

// StopScreen stops the screen capture and forgets its tracks.
func (s *Source) StopScreen() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.sharing {
		return
	}
	_ = s.screen.Close()
	s.screen = nil
	s.scr = Tracks{}
	s.sharing = false
}

// Close releases every capture this source owns. Safe on all exit paths.
func (s *Source) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sharing {
		_ = s.screen.Close()
		s.screen = nil
		s.scr = Tracks{}
		s.sharing = false
	}
	if s.opened {
		_ = s.camera.Close()
		s.cam = Tracks{}
		s.opened = false
	}
}
