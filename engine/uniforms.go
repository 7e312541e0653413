package engine

// Uniforms is the per-frame state the surface evaluation reads. The tick
// takes a copy before evaluating, so mesh workers never observe a
// mid-frame change.
type Uniforms struct {
	// Time is seconds since session start, monotonic from zero.
	Time float64
	// AudioIntensity is the bass loudness scalar in [0,1].
	AudioIntensity float32
	// Pointer is the smoothed pointer position, each component in [-1,1].
	Pointer [2]float32
}

// SnapshotSource supplies the most recent frequency-magnitude snapshot,
// ascending frequency, one byte per bin. Implementations return nil until
// a snapshot exists and must not block.
type SnapshotSource interface {
	Snapshot() []byte
}

// Presenter turns an evaluated mesh into output. The GL renderer, the
// video recorder and the PNG frame writer all implement it.
type Presenter interface {
	// Present draws the evaluated mesh. A returned error is logged by the
	// tick and does not stop the session.
	Present(m *Mesh, u Uniforms, aspect float32) error
	// Resize reports a new output size in pixels.
	Resize(width, height int)
	// Release frees presenter resources. Called once during teardown.
	Release()
}
