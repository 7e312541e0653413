package field

import "math"

// splitmix64 is a fast, high-quality 64-bit mixer.
func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	z := x
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// hash2D returns a deterministic 64-bit hash for (x,y) under the given seed.
func hash2D(seed uint64, x, y int64) uint64 {
	h := seed
	h ^= uint64(x) * 0x9E3779B185EBCA87
	h ^= uint64(y) * 0xC2B2AE3D27D4EB4F
	return splitmix64(h)
}

// latticeValue maps a lattice point to a value in [0,1).
func latticeValue(seed uint64, x, y int64) float64 {
	return float64(hash2D(seed, x, y)>>11) * (1.0 / (1 << 53))
}

// Noise evaluates seeded 2D value noise at (x,y): the four surrounding
// lattice values blended bilinearly with a smoothstep fade. The result is
// in [0,1) and depends only on the arguments.
func Noise(seed uint64, x, y float64) float64 {
	fx, fy := math.Floor(x), math.Floor(y)
	ix, iy := int64(fx), int64(fy)
	tx, ty := x-fx, y-fy

	u := tx * tx * (3 - 2*tx)
	v := ty * ty * (3 - 2*ty)

	n00 := latticeValue(seed, ix, iy)
	n10 := latticeValue(seed, ix+1, iy)
	n01 := latticeValue(seed, ix, iy+1)
	n11 := latticeValue(seed, ix+1, iy+1)

	return lerp(lerp(n00, n10, u), lerp(n01, n11, u), v)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
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

// smoothstep is the GLSL smoothstep: 0 at edge0, 1 at edge1, hermite in
// between. Works with edge0 > edge1 as a falloff.
func smoothstep(edge0, edge1, x float64) float64 {
	t := clampF((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}
