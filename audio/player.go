package audio

import (
	"encoding/binary"
	"fmt"
	"math"

	oto "github.com/hajimehoshi/oto/v2"
)

// otoFloatFormat is the oto bit-depth selector for 32-bit float samples.
const otoFloatFormat = 0

// Player renders buffered PCM to the default output through oto. The feed
// reader pulls from the SampleBuffer and pads with silence when decode
// falls behind, so the stream never ends on its own.
type Player struct {
	ctx    *oto.Context
	ready  chan struct{}
	player oto.Player
	volume float64
}

// NewPlayer opens the mono audio output context at the given rate and
// wires it to the buffer's destructive read side.
func NewPlayer(sampleRate int, buffer *SampleBuffer) (*Player, error) {
	ctx, ready, err := oto.NewContext(sampleRate, 1, otoFloatFormat)
	if err != nil {
		return nil, fmt.Errorf("open audio output: %w", err)
	}
	p := &Player{ctx: ctx, ready: ready, volume: 1}
	p.player = ctx.NewPlayer(&bufferFeed{buffer: buffer})
	return p, nil
}

// Play starts or resumes output, waiting for the device on first use.
func (p *Player) Play() {
	<-p.ready
	p.player.SetVolume(p.volume)
	p.player.Play()
}

// Pause suspends output without tearing the stream down.
func (p *Player) Pause() {
	p.player.Pause()
}

// SetVolume sets the playback gain, clamped to [0,1]. It applies to the
// live stream immediately.
func (p *Player) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p.volume = v
	p.player.SetVolume(v)
}

// Volume returns the current playback gain.
func (p *Player) Volume() float64 {
	return p.volume
}

// Close releases the output stream.
func (p *Player) Close() error {
	return p.player.Close()
}

// bufferFeed adapts the SampleBuffer's read side to the io.Reader oto
// pulls from. Shortfalls come back as silence.
type bufferFeed struct {
	buffer *SampleBuffer
}

func (f *bufferFeed) Read(out []byte) (int, error) {
	samples := len(out) / 4
	if samples == 0 {
		return 0, nil
	}
	chunk := f.buffer.Read(samples)
	for i := 0; i < samples; i++ {
		var v float32
		if i < len(chunk) {
			v = chunk[i]
		}
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return samples * 4, nil
}
