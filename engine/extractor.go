package engine

import (
	"fmt"
	"math"
)

const (
	// maxBinMagnitude is the full-scale value of one snapshot bin.
	maxBinMagnitude = 255.0
	// minCutoffBins keeps tiny snapshots from averaging almost nothing.
	minCutoffBins = 4
)

// DefaultCutoffFraction is the share of low-frequency bins that feed the
// loudness scalar.
const DefaultCutoffFraction = 0.2

// BassExtractor reduces a frequency-magnitude snapshot to a single bass
// loudness scalar in [0,1]. The reduction is the unweighted mean of the
// lowest max(4, floor(N*fraction)) bins divided by full scale; snapshots
// arrive in ascending frequency order, so those are the bass bins.
type BassExtractor struct {
	cutoffFraction float64
}

// NewBassExtractor returns an extractor averaging the given fraction of
// low bins. The fraction must lie in (0,1].
func NewBassExtractor(fraction float64) (*BassExtractor, error) {
	if fraction <= 0 || fraction > 1 {
		return nil, &InvalidInputError{Reason: fmt.Sprintf("cutoff fraction %v outside (0,1]", fraction)}
	}
	return &BassExtractor{cutoffFraction: fraction}, nil
}

// Update reduces one snapshot. An empty snapshot is an InvalidInputError;
// the tick loop recovers by substituting zero.
func (e *BassExtractor) Update(snapshot []byte) (float32, error) {
	if len(snapshot) == 0 {
		return 0, &InvalidInputError{Reason: "empty frequency snapshot"}
	}
	cutoff := int(math.Floor(float64(len(snapshot)) * e.cutoffFraction))
	if cutoff < minCutoffBins {
		cutoff = minCutoffBins
	}
	if cutoff > len(snapshot) {
		cutoff = len(snapshot)
	}
	sum := 0.0
	for _, m := range snapshot[:cutoff] {
		sum += float64(m)
	}
	mean := sum / float64(cutoff)
	return float32(clampF(mean/maxBinMagnitude, 0, 1)), nil
}
