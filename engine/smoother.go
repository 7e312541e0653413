package engine

import "fmt"

// PointerSmoother eases the rendered pointer toward the most recent raw
// sample. Each Step moves the current position a constant fraction of the
// remaining distance, so after k steps toward a fixed target only (1-rate)^k
// of the initial distance is left and the motion never overshoots.
type PointerSmoother struct {
	current [2]float64
	target  [2]float64
	rate    float64
}

// NewPointerSmoother returns a smoother with the given per-step rate in
// (0,1]. 0.2 tracks snappily; 0.08 gives a heavier feel.
func NewPointerSmoother(rate float64) (*PointerSmoother, error) {
	if rate <= 0 || rate > 1 {
		return nil, &InvalidInputError{Reason: fmt.Sprintf("smoothing rate %v outside (0,1]", rate)}
	}
	return &PointerSmoother{rate: rate}, nil
}

// OnRawSample records the newest raw pointer position. Components are
// clamped to [-1,1] and the latest sample always wins.
func (s *PointerSmoother) OnRawSample(x, y float64) {
	s.target[0] = clampF(x, -1, 1)
	s.target[1] = clampF(y, -1, 1)
}

// Step advances the smoothed position one frame and returns it.
func (s *PointerSmoother) Step() [2]float64 {
	s.current[0] += (s.target[0] - s.current[0]) * s.rate
	s.current[1] += (s.target[1] - s.current[1]) * s.rate
	return s.current
}

// Current returns the smoothed position without advancing it.
func (s *PointerSmoother) Current() [2]float64 {
	return s.current
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
