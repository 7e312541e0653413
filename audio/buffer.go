package audio

import "sync"

// AnalysisWindow is the number of samples handed to the FFT per peek.
const AnalysisWindow = 2048

// SampleBuffer is the hand-off point between one producer and two
// consumers with different needs: playback destructively reads FIFO
// samples, analysis non-destructively peeks the most recent completed
// window.
type SampleBuffer struct {
	mu        sync.RWMutex
	chunks    [][]float32
	maxChunks int
	available int
	written   int64
	dropped   int64

	// The peek window is double-buffered under its own lock, so analysis
	// reads never contend with chunk writes for long.
	windowMu    sync.RWMutex
	writeWindow []float32
	readWindow  []float32
	writePos    int
}

// NewSampleBuffer sizes the FIFO for roughly capacity samples.
func NewSampleBuffer(capacity int) *SampleBuffer {
	maxChunks := capacity / 1024
	if maxChunks < 20 {
		maxChunks = 20
	}
	return &SampleBuffer{
		chunks:      make([][]float32, 0, maxChunks),
		maxChunks:   maxChunks,
		writeWindow: make([]float32, AnalysisWindow),
		readWindow:  make([]float32, AnalysisWindow),
	}
}

// Write appends one chunk and feeds the peek window. When the FIFO is
// full, dropIfFull discards the oldest chunk to make room; otherwise the
// new chunk is discarded.
func (b *SampleBuffer) Write(samples []float32, dropIfFull bool) {
	b.updateWindow(samples)

	b.mu.Lock()
	defer b.mu.Unlock()

	chunk := make([]float32, len(samples))
	copy(chunk, samples)

	if len(b.chunks) >= b.maxChunks {
		if !dropIfFull {
			b.dropped += int64(len(samples))
			return
		}
		oldest := b.chunks[0]
		b.chunks = b.chunks[1:]
		b.dropped += int64(len(oldest))
		b.available -= len(oldest)
	}

	b.chunks = append(b.chunks, chunk)
	b.written += int64(len(samples))
	b.available += len(samples)
}

// Read destructively consumes up to count samples, oldest first. It
// returns nil when the FIFO is empty.
func (b *SampleBuffer) Read(count int) []float32 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if count <= 0 || b.available == 0 {
		return nil
	}
	if count > b.available {
		count = b.available
	}

	out := make([]float32, count)
	pos := 0
	remaining := count
	for len(b.chunks) > 0 && remaining > 0 {
		chunk := b.chunks[0]
		n := min(remaining, len(chunk))
		copy(out[pos:], chunk[:n])
		pos += n
		remaining -= n
		if n == len(chunk) {
			b.chunks = b.chunks[1:]
		} else {
			b.chunks[0] = chunk[n:]
		}
	}

	b.available -= count
	return out
}

// AvailableSamples returns the number of readable samples.
func (b *SampleBuffer) AvailableSamples() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.available
}

// TotalWritten returns the lifetime sample count accepted by Write.
func (b *SampleBuffer) TotalWritten() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.written
}

// DroppedSamples returns the lifetime count of samples lost to overflow.
func (b *SampleBuffer) DroppedSamples() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dropped
}

// updateWindow streams samples into the write window and swaps it into
// read position each time it fills.
func (b *SampleBuffer) updateWindow(samples []float32) {
	b.windowMu.Lock()
	defer b.windowMu.Unlock()

	idx := 0
	for idx < len(samples) {
		space := AnalysisWindow - b.writePos
		n := min(len(samples)-idx, space)
		copy(b.writeWindow[b.writePos:b.writePos+n], samples[idx:idx+n])
		b.writePos += n
		idx += n
		if b.writePos >= AnalysisWindow {
			b.writeWindow, b.readWindow = b.readWindow, b.writeWindow
			b.writePos = 0
		}
	}
}

// WindowPeek returns a copy of the most recent completed analysis window.
// Before the first window fills it returns silence.
func (b *SampleBuffer) WindowPeek() []float32 {
	b.windowMu.RLock()
	defer b.windowMu.RUnlock()
	out := make([]float32, AnalysisWindow)
	copy(out, b.readWindow)
	return out
}
