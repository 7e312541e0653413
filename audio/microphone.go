package audio

import (
	"fmt"
	"log"

	"github.com/gordonklaus/portaudio"
)

// Microphone captures the default input device through portaudio and
// produces mono chunks. The portaudio library is initialized on Start and
// released on Stop, so a stopped microphone can be started again.
type Microphone struct {
	sampleRate int
	stream     *portaudio.Stream
	audioChan  chan []float32
	streaming  bool
}

// NewMicrophone prepares a capture device at the given sample rate. No
// driver state is touched until Start.
func NewMicrophone(sampleRate int) *Microphone {
	return &Microphone{sampleRate: sampleRate}
}

// capture runs on the portaudio callback thread. The driver reuses the
// input buffer, so each chunk is copied before handoff, and the send
// never blocks: a slow consumer drops chunks instead of stalling capture.
func (m *Microphone) capture(in []float32) {
	chunk := make([]float32, len(in))
	copy(chunk, in)
	select {
	case m.audioChan <- chunk:
	default:
		log.Println("microphone chunk dropped, consumer behind")
	}
}

// Start initializes portaudio and opens the default input stream.
func (m *Microphone) Start() (<-chan []float32, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}

	m.audioChan = make(chan []float32, 16)

	host, err := portaudio.DefaultHostApi()
	if err != nil {
		close(m.audioChan)
		portaudio.Terminate()
		return nil, err
	}

	params := portaudio.HighLatencyParameters(host.DefaultInputDevice, nil)
	params.Input.Channels = 1
	params.SampleRate = float64(m.sampleRate)

	stream, err := portaudio.OpenStream(params, m.capture)
	if err != nil {
		close(m.audioChan)
		portaudio.Terminate()
		return nil, fmt.Errorf("open capture stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		close(m.audioChan)
		portaudio.Terminate()
		return nil, fmt.Errorf("start capture stream: %w", err)
	}

	m.stream = stream
	m.streaming = true
	return m.audioChan, nil
}

// Stop closes the stream and the chunk channel. Safe to call when not
// streaming.
func (m *Microphone) Stop() error {
	if !m.streaming {
		return nil
	}
	m.streaming = false
	if err := m.stream.Close(); err != nil {
		portaudio.Terminate()
		return err
	}
	close(m.audioChan)
	return portaudio.Terminate()
}

func (m *Microphone) SampleRate() int {
	return m.sampleRate
}
