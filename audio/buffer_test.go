package audio

import "testing"

// --- SampleBuffer Tests ---

func ramp(start, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(start + i)
	}
	return out
}

// TestSampleBuffer_ReadFIFO tests destructive reads come back oldest first
func TestSampleBuffer_ReadFIFO(t *testing.T) {
	b := NewSampleBuffer(0)
	b.Write(ramp(0, 5), true)
	b.Write(ramp(5, 5), true)

	got := b.Read(7)
	if len(got) != 7 {
		t.Fatalf("Read(7) returned %d samples", len(got))
	}
	for i, v := range got {
		if v != float32(i) {
			t.Fatalf("sample %d = %v, want %v", i, v, float32(i))
		}
	}

	rest := b.Read(10)
	if len(rest) != 3 {
		t.Fatalf("second Read returned %d samples, want 3", len(rest))
	}
	for i, v := range rest {
		if v != float32(7+i) {
			t.Fatalf("tail sample %d = %v, want %v", i, v, float32(7+i))
		}
	}
}

// TestSampleBuffer_ReadEmpty_Nil tests reading an empty FIFO
func TestSampleBuffer_ReadEmpty_Nil(t *testing.T) {
	b := NewSampleBuffer(0)
	if got := b.Read(16); got != nil {
		t.Errorf("Read on empty buffer = %v, want nil", got)
	}
	if got := b.Read(0); got != nil {
		t.Errorf("Read(0) = %v, want nil", got)
	}
}

// TestSampleBuffer_Accounting tests the written/available counters
func TestSampleBuffer_Accounting(t *testing.T) {
	b := NewSampleBuffer(0)
	b.Write(ramp(0, 100), true)
	b.Write(ramp(100, 50), true)
	if got := b.AvailableSamples(); got != 150 {
		t.Errorf("AvailableSamples = %d, want 150", got)
	}
	if got := b.TotalWritten(); got != 150 {
		t.Errorf("TotalWritten = %d, want 150", got)
	}
	b.Read(60)
	if got := b.AvailableSamples(); got != 90 {
		t.Errorf("AvailableSamples after Read = %d, want 90", got)
	}
	if got := b.TotalWritten(); got != 150 {
		t.Errorf("TotalWritten after Read = %d, want 150", got)
	}
}

// TestSampleBuffer_OverflowDropsOldest tests dropIfFull discards the head chunk
func TestSampleBuffer_OverflowDropsOldest(t *testing.T) {
	b := NewSampleBuffer(0) // minimum FIFO depth of 20 chunks
	for i := 0; i < 21; i++ {
		b.Write([]float32{float32(i)}, true)
	}
	if got := b.AvailableSamples(); got != 20 {
		t.Errorf("AvailableSamples = %d, want 20", got)
	}
	if got := b.DroppedSamples(); got != 1 {
		t.Errorf("DroppedSamples = %d, want 1", got)
	}
	head := b.Read(1)
	if len(head) != 1 || head[0] != 1 {
		t.Errorf("head after overflow = %v, want [1]", head)
	}
}

// TestSampleBuffer_OverflowKeepsOldest tests dropIfFull=false discards the new chunk
func TestSampleBuffer_OverflowKeepsOldest(t *testing.T) {
	b := NewSampleBuffer(0)
	for i := 0; i < 21; i++ {
		b.Write([]float32{float32(i)}, false)
	}
	if got := b.AvailableSamples(); got != 20 {
		t.Errorf("AvailableSamples = %d, want 20", got)
	}
	head := b.Read(1)
	if len(head) != 1 || head[0] != 0 {
		t.Errorf("head = %v, want [0]", head)
	}
}

// TestSampleBuffer_WindowPeek_SilenceBeforeFill tests the zero-padded early window
func TestSampleBuffer_WindowPeek_SilenceBeforeFill(t *testing.T) {
	b := NewSampleBuffer(0)
	b.Write(ramp(1, 100), true)
	peek := b.WindowPeek()
	if len(peek) != AnalysisWindow {
		t.Fatalf("peek length = %d, want %d", len(peek), AnalysisWindow)
	}
	for i, v := range peek {
		if v != 0 {
			t.Fatalf("peek[%d] = %v before first full window, want 0", i, v)
		}
	}
}

// TestSampleBuffer_WindowPeek_CompletedWindow tests the swap on a full window
func TestSampleBuffer_WindowPeek_CompletedWindow(t *testing.T) {
	b := NewSampleBuffer(0)
	b.Write(ramp(0, AnalysisWindow), true)
	peek := b.WindowPeek()
	for i, v := range peek {
		if v != float32(i) {
			t.Fatalf("peek[%d] = %v, want %v", i, v, float32(i))
		}
	}

	b.Write(ramp(10000, AnalysisWindow), true)
	peek = b.WindowPeek()
	for i, v := range peek {
		if v != float32(10000+i) {
			t.Fatalf("second window peek[%d] = %v, want %v", i, v, float32(10000+i))
		}
	}
}

// TestSampleBuffer_PeekUnaffectedByRead tests the two consumer paths stay independent
func TestSampleBuffer_PeekUnaffectedByRead(t *testing.T) {
	b := NewSampleBuffer(0)
	b.Write(ramp(0, AnalysisWindow), true)
	b.Read(AnalysisWindow)
	if got := b.AvailableSamples(); got != 0 {
		t.Fatalf("AvailableSamples = %d after draining, want 0", got)
	}
	peek := b.WindowPeek()
	for i, v := range peek {
		if v != float32(i) {
			t.Fatalf("peek[%d] = %v after drain, want %v", i, v, float32(i))
		}
	}
}
