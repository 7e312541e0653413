package audio

import (
	"context"
	"log"
	"time"

	"github.com/richinsley/gowavefield/engine"
	"github.com/richinsley/gowavefield/spectrum"
)

// analysisInterval paces the FFT producer, roughly one pass per frame at
// 60 fps.
const analysisInterval = 16 * time.Millisecond

// bufferCapacity sizes the session FIFO, about half a second at 44.1kHz.
const bufferCapacity = 24000

// Session owns the audio pipeline: device chunks drain into the shared
// buffer, the analyzer turns each completed window into a frequency
// snapshot, and an optional player renders the same buffer to the
// speakers. It implements engine.SnapshotSource.
type Session struct {
	device   Device
	buffer   *SampleBuffer
	analyzer *spectrum.Analyzer
	player   *Player

	playback bool
	volume   float64
	active   bool
	cancel   context.CancelFunc
}

// NewSession builds a session around device. With playback enabled the
// decoded stream is also rendered to the default output.
func NewSession(device Device, playback bool) *Session {
	buffer := NewSampleBuffer(bufferCapacity)
	return &Session{
		device:   device,
		buffer:   buffer,
		analyzer: spectrum.NewAnalyzer(buffer),
		playback: playback,
		volume:   1,
	}
}

// Start acquires the device and spawns the drain and analysis goroutines.
// Failures come back as ResourceUnavailableError and leave the session
// inactive; the caller keeps rendering without audio. Starting an active
// session is a no-op.
func (s *Session) Start() error {
	if s.active {
		return nil
	}

	audioChan, err := s.device.Start()
	if err != nil {
		return &engine.ResourceUnavailableError{Resource: "audio device", Err: err}
	}

	if s.playback && s.player == nil {
		player, err := NewPlayer(s.device.SampleRate(), s.buffer)
		if err != nil {
			s.device.Stop()
			return &engine.ResourceUnavailableError{Resource: "audio output", Err: err}
		}
		player.SetVolume(s.volume)
		s.player = player
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go s.drain(ctx, audioChan)
	go s.analyze(ctx)

	if s.player != nil {
		s.player.Play()
	}
	s.active = true
	return nil
}

// drain moves device chunks into the shared buffer until the stream or
// the session ends. A nil channel (NullDevice) blocks until cancel.
func (s *Session) drain(ctx context.Context, audioChan <-chan []float32) {
	for {
		select {
		case <-ctx.Done():
			return
		case chunk, ok := <-audioChan:
			if !ok {
				log.Println("audio stream ended")
				return
			}
			s.buffer.Write(chunk, true)
		}
	}
}

// analyze produces snapshots on its own schedule; the render tick reads
// whichever one is latest.
func (s *Session) analyze(ctx context.Context) {
	ticker := time.NewTicker(analysisInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.analyzer.Update()
		}
	}
}

// Stop ends capture and analysis. Idempotent. The player is paused rather
// than closed so a later Start resumes output on the same device context.
func (s *Session) Stop() error {
	if !s.active {
		return nil
	}
	s.active = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.player != nil {
		s.player.Pause()
	}
	return s.device.Stop()
}

// Snapshot returns the latest frequency snapshot, nil until analysis has
// produced one.
func (s *Session) Snapshot() []byte {
	return s.analyzer.Snapshot()
}

// SetVolume adjusts playback gain in [0,1]. The value persists across
// Stop/Start cycles and is a no-op when playback is disabled.
func (s *Session) SetVolume(v float64) {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	s.volume = v
	if s.player != nil {
		s.player.SetVolume(v)
	}
}

// Volume reports the playback gain, 0 when playback is disabled.
func (s *Session) Volume() float64 {
	if !s.playback {
		return 0
	}
	if s.player != nil {
		return s.player.Volume()
	}
	return s.volume
}

// Active reports whether the session is between a successful Start and
// the next Stop.
func (s *Session) Active() bool {
	return s.active
}
