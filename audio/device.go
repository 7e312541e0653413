package audio

// Capture and decode sources produce mono float32 PCM through this
// interface. PortAudio backs the microphone:
//   macos:	brew install portaudio
//   debian:	sudo apt-get install portaudio19-dev
//   windows:	pacman -S mingw-w64-x86_64-portaudio
type Device interface {
	// Start begins production and returns a receive-only channel of
	// sample chunks. The channel closes when the stream ends.
	Start() (<-chan []float32, error)
	// Stop terminates the stream and closes the channel.
	Stop() error
	// SampleRate returns the stream sample rate.
	SampleRate() int
}

// NullDevice is the silent stand-in used when no capture or file source
// is configured.
type NullDevice struct {
	rate int
}

// NewNullDevice returns a device producing silence at the given rate.
func NewNullDevice(sampleRate int) *NullDevice {
	return &NullDevice{rate: sampleRate}
}

// Start returns a nil channel. Receives on it block forever, which reads
// as silence downstream.
func (d *NullDevice) Start() (<-chan []float32, error) {
	return nil, nil
}

func (d *NullDevice) Stop() error {
	return nil
}

func (d *NullDevice) SampleRate() int {
	return d.rate
}
