package options

type Options struct {
	Help       *bool
	Mode       *string // view, record, or frames
	Duration   *float64
	FPS        *int
	Width      *int
	Height     *int
	OutputFile *string
	FramesDir  *string
	FrameCount *int

	// Audio source selection. A file path overrides the default microphone.
	AudioFile  *string
	Mic        *bool
	SampleRate *int
	Volume     *float64
	FFMPEGPath *string

	// Surface tuning.
	Seed       *int64
	MeshCols   *int
	MeshRows   *int
	SmoothRate *float64
	BassCutoff *float64
	Workers    *int
}
