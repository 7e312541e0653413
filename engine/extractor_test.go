package engine

import (
	"errors"
	"math"
	"testing"
)

// --- BassExtractor Tests ---

func makeSnapshot(n int, fill func(i int) byte) []byte {
	s := make([]byte, n)
	for i := range s {
		s[i] = fill(i)
	}
	return s
}

// TestBassExtractor_FullScaleBassWindow_IsOne tests 256 bins with the low fifth maxed
func TestBassExtractor_FullScaleBassWindow_IsOne(t *testing.T) {
	e, err := NewBassExtractor(DefaultCutoffFraction)
	if err != nil {
		t.Fatalf("NewBassExtractor: %v", err)
	}
	// floor(256*0.2) = 51 bins; bins 0..50 at 255, everything above silent.
	snap := makeSnapshot(256, func(i int) byte {
		if i < 51 {
			return 255
		}
		return 0
	})
	got, err := e.Update(snap)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got != 1.0 {
		t.Errorf("intensity = %v, want exactly 1.0", got)
	}
}

// TestBassExtractor_Silence_IsZero tests an all-zero snapshot
func TestBassExtractor_Silence_IsZero(t *testing.T) {
	e, err := NewBassExtractor(DefaultCutoffFraction)
	if err != nil {
		t.Fatalf("NewBassExtractor: %v", err)
	}
	got, err := e.Update(make([]byte, 256))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got != 0 {
		t.Errorf("intensity = %v, want 0", got)
	}
}

// TestBassExtractor_HighBinsIgnored tests energy above the cutoff does not register
func TestBassExtractor_HighBinsIgnored(t *testing.T) {
	e, err := NewBassExtractor(DefaultCutoffFraction)
	if err != nil {
		t.Fatalf("NewBassExtractor: %v", err)
	}
	snap := makeSnapshot(256, func(i int) byte {
		if i >= 51 {
			return 255
		}
		return 0
	})
	got, err := e.Update(snap)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got != 0 {
		t.Errorf("intensity = %v, want 0 when only high bins carry energy", got)
	}
}

// TestBassExtractor_MidLevel_ScalesLinearly tests the mean normalizes by 255
func TestBassExtractor_MidLevel_ScalesLinearly(t *testing.T) {
	e, err := NewBassExtractor(DefaultCutoffFraction)
	if err != nil {
		t.Fatalf("NewBassExtractor: %v", err)
	}
	snap := makeSnapshot(256, func(i int) byte {
		if i < 51 {
			return 51
		}
		return 0
	})
	got, err := e.Update(snap)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if math.Abs(float64(got)-0.2) > 1e-6 {
		t.Errorf("intensity = %v, want 0.2", got)
	}
}

// TestBassExtractor_EmptySnapshot_InvalidInput tests the recoverable error path
func TestBassExtractor_EmptySnapshot_InvalidInput(t *testing.T) {
	e, err := NewBassExtractor(DefaultCutoffFraction)
	if err != nil {
		t.Fatalf("NewBassExtractor: %v", err)
	}
	got, err := e.Update(nil)
	if err == nil {
		t.Fatal("empty snapshot accepted, want error")
	}
	var invalid *InvalidInputError
	if !errors.As(err, &invalid) {
		t.Errorf("error %T, want *InvalidInputError", err)
	}
	if got != 0 {
		t.Errorf("value alongside error = %v, want 0", got)
	}
}

// TestBassExtractor_TinySnapshot_UsesFloorOfFour tests the minimum window size
func TestBassExtractor_TinySnapshot_UsesFloorOfFour(t *testing.T) {
	e, err := NewBassExtractor(DefaultCutoffFraction)
	if err != nil {
		t.Fatalf("NewBassExtractor: %v", err)
	}
	// floor(8*0.2) = 1, so the window widens to 4 bins.
	snap := []byte{255, 0, 0, 0, 255, 255, 255, 255}
	got, err := e.Update(snap)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if math.Abs(float64(got)-0.25) > 1e-6 {
		t.Errorf("intensity = %v, want 0.25 (255 over 4 bins)", got)
	}
}

// TestBassExtractor_CutoffCappedAtLength tests snapshots shorter than four bins
func TestBassExtractor_CutoffCappedAtLength(t *testing.T) {
	e, err := NewBassExtractor(DefaultCutoffFraction)
	if err != nil {
		t.Fatalf("NewBassExtractor: %v", err)
	}
	got, err := e.Update([]byte{255, 255, 255})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got != 1.0 {
		t.Errorf("intensity = %v, want 1.0 over a 3-bin snapshot", got)
	}
}

// TestBassExtractor_RejectsBadFractions tests constructor validation
func TestBassExtractor_RejectsBadFractions(t *testing.T) {
	for _, fraction := range []float64{0, -0.1, 1.01} {
		_, err := NewBassExtractor(fraction)
		if err == nil {
			t.Errorf("fraction %v accepted, want error", fraction)
			continue
		}
		var invalid *InvalidInputError
		if !errors.As(err, &invalid) {
			t.Errorf("fraction %v: error %T, want *InvalidInputError", fraction, err)
		}
	}
}
