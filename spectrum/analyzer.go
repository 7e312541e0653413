package spectrum

import (
	"math"
	"sync"

	fft "github.com/mjibson/go-dsp/fft"
)

const (
	// WindowSize is the number of samples per FFT pass. 2048 gives 1024
	// frequency bins.
	WindowSize = 2048
	// Bins is the snapshot length. The lowest quarter of the FFT output
	// covers bass through mids, which is everything the loudness
	// extraction looks at.
	Bins = 256

	minDecibels     = -100.0
	maxDecibels     = -30.0
	smoothingFactor = 0.8
)

// SampleSource supplies the most recent WindowSize samples, oldest first.
// The analyzer polls it once per Update.
type SampleSource interface {
	WindowPeek() []float32
}

// Analyzer converts recent PCM into byte frequency snapshots the way a
// WebAudio analyser node does: Blackman window, real FFT, magnitude in
// decibels with temporal smoothing, then a linear byte scale over
// [-100,-30] dB. Update runs on the producer goroutine; Snapshot hands the
// render tick a copy without blocking on analysis.
type Analyzer struct {
	source  SampleSource
	window  []float64
	scratch []float64
	lastDB  []float64

	mu       sync.Mutex
	snapshot []byte
}

// NewAnalyzer returns an analyzer reading from source. The smoothing state
// starts at the decibel floor so silence reads as silence from the first
// pass.
func NewAnalyzer(source SampleSource) *Analyzer {
	a := &Analyzer{
		source:  source,
		window:  blackmanWindow(WindowSize),
		scratch: make([]float64, WindowSize),
		lastDB:  make([]float64, Bins),
	}
	for i := range a.lastDB {
		a.lastDB[i] = minDecibels
	}
	return a
}

// Update runs one analysis pass over the latest window. A source that
// cannot fill a whole window yet is skipped.
func (a *Analyzer) Update() {
	samples := a.source.WindowPeek()
	if len(samples) != WindowSize {
		return
	}

	for i, s := range samples {
		a.scratch[i] = float64(s) * a.window[i]
	}
	spectrum := fft.FFTReal(a.scratch)

	out := make([]byte, Bins)
	for i := 0; i < Bins; i++ {
		re := real(spectrum[i])
		im := imag(spectrum[i])
		// Normalize magnitude by 2/N for non-DC components.
		magnitude := math.Sqrt(re*re+im*im) * (2.0 / float64(WindowSize))
		db := 20 * math.Log10(magnitude+1e-9)
		a.lastDB[i] = smoothingFactor*a.lastDB[i] + (1-smoothingFactor)*db
		out[i] = scaleToByte(a.lastDB[i])
	}

	a.mu.Lock()
	a.snapshot = out
	a.mu.Unlock()
}

// Snapshot returns a copy of the latest snapshot in ascending frequency
// order, or nil before the first completed Update.
func (a *Analyzer) Snapshot() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.snapshot == nil {
		return nil
	}
	out := make([]byte, len(a.snapshot))
	copy(out, a.snapshot)
	return out
}

// scaleToByte maps smoothed decibels onto the byte snapshot scale.
func scaleToByte(db float64) byte {
	if db <= minDecibels {
		return 0
	}
	if db >= maxDecibels {
		return 255
	}
	return byte(math.Round((db - minDecibels) / (maxDecibels - minDecibels) * 255))
}

// blackmanWindow generates the analysis window (a0 0.42, a1 0.5, a2 0.08).
func blackmanWindow(size int) []float64 {
	window := make([]float64, size)
	a0, a1, a2 := 0.42, 0.5, 0.08
	invSize := 1.0 / float64(size-1)
	for i := range window {
		t := float64(i) * invSize
		window[i] = a0 - a1*math.Cos(2*math.Pi*t) + a2*math.Cos(4*math.Pi*t)
	}
	return window
}
