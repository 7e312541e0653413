package field

import "math"

// Params holds the displacement tunables for the surface. All evaluation
// methods are pure: the same Params, coordinates, time, pointer and
// intensity always produce the same output.
type Params struct {
	// Seed selects the noise lattice.
	Seed uint64
	// FreqScale is the base noise frequency of the height term.
	FreqScale float64
	// WarpScale scales the domain-warp offsets added to the noise lookup.
	WarpScale float64
	// TimeScale converts session seconds into noise-space scroll.
	TimeScale float64
	// BaseAmp is the displacement amplitude at zero intensity; AmpGain is
	// added on top at full intensity.
	BaseAmp float64
	AmpGain float64
	// RippleRadius is the outer edge of the pointer ripple; RippleBase and
	// RippleGain set its height at zero and full intensity.
	RippleRadius float64
	RippleBase   float64
	RippleGain   float64
	// WobbleAmp bounds the cosmetic in-plane wobble per component. Keep it
	// well under 0.1 or neighboring cells start to fold over each other.
	WobbleAmp float64
}

// DefaultParams returns the tuning the shipped modes use.
func DefaultParams() Params {
	return Params{
		Seed:         1337,
		FreqScale:    4.0,
		WarpScale:    0.35,
		TimeScale:    0.25,
		BaseAmp:      0.18,
		AmpGain:      0.45,
		RippleRadius: 0.55,
		RippleBase:   0.08,
		RippleGain:   0.25,
		WobbleAmp:    0.015,
	}
}

// MaxHeight is the upper bound Height can reach under any inputs.
func (p Params) MaxHeight() float64 {
	return p.BaseAmp + p.AmpGain + p.RippleBase + p.RippleGain
}

// Height returns the displaced surface height at plane coordinate (u,v) in
// [0,1]^2. pointer is in [-1,1]^2, intensity in [0,1], t in seconds. The
// result lies in [0, MaxHeight()].
func (p Params) Height(u, v, t float64, px, py, intensity float64) float64 {
	ts := t * p.TimeScale

	warpX := Noise(p.Seed, u*3+ts, v*3+ts) * p.WarpScale
	warpY := Noise(p.Seed, u*3-ts, v*3-ts) * p.WarpScale

	// Pointer maps from [-1,1] into plane space for the ripple center.
	cx := px*0.5 + 0.5
	cy := py*0.5 + 0.5
	d := math.Hypot(u-cx, v-cy)
	ripple := smoothstep(p.RippleRadius, 0, d) * (p.RippleBase + intensity*p.RippleGain)

	amp := p.BaseAmp + intensity*p.AmpGain
	return Noise(p.Seed, u*p.FreqScale+warpX+ts, v*p.FreqScale+warpY+ts)*amp + ripple
}

// Wobble returns a small in-plane offset for (u,v) at time t, each
// component bounded by WobbleAmp. It feeds only the rendered vertex
// position, never the height lookup.
func (p Params) Wobble(u, v, t float64) (dx, dy float64) {
	if p.WobbleAmp == 0 {
		return 0, 0
	}
	ts := t * p.TimeScale
	dx = (Noise(p.Seed^0x9E37, u*7+ts, v*7)*2 - 1) * p.WobbleAmp
	dy = (Noise(p.Seed^0x79B9, u*7, v*7-ts)*2 - 1) * p.WobbleAmp
	return dx, dy
}

// Shading palette: deep water at rest, lifting toward teal as the bass
// energy rises, with a warm glow on peaks.
var (
	gradientLow  = [3]float64{0.04, 0.09, 0.22}
	gradientHigh = [3]float64{0.10, 0.45, 0.52}
	glowTone     = [3]float64{0.85, 0.35, 0.75}
)

// Shade returns the RGB color for plane coordinate (u,v) at time t and the
// given intensity. Channels are clamped to [0,1].
func Shade(u, v, t, intensity float64) (r, g, b float64) {
	r = lerp(gradientLow[0], gradientHigh[0], v)
	g = lerp(gradientLow[1], gradientHigh[1], v)
	b = lerp(gradientLow[2], gradientHigh[2], v)

	tint := 0.05 * math.Sin(t*0.6+(u+v)*3.0) * (0.5 + intensity)
	r += tint
	g += tint * 0.6
	b += tint * 1.2

	glow := math.Pow(intensity, 1.5) * 0.35
	r += glow * glowTone[0]
	g += glow * glowTone[1]
	b += glow * glowTone[2]

	vig := smoothstep(1.0, 0.2, math.Hypot(u-0.5, v-0.5))
	r *= vig
	g *= vig
	b *= vig

	return clampF(r, 0, 1), clampF(g, 0, 1), clampF(b, 0, 1)
}
