package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/richinsley/gowavefield/field"
)

// State identifies where a Session is in its lifecycle. Transitions only
// ever move forward: uninitialized, running, torn down.
type State int32

const (
	StateUninitialized State = iota
	StateRunning
	StateTornDown
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StateTornDown:
		return "torn down"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Config carries the session tunables. DefaultConfig gives the values the
// shipped modes use.
type Config struct {
	// MeshCols and MeshRows set the vertex grid, minimum 2x2.
	MeshCols int
	MeshRows int
	// SmoothRate is the per-step pointer smoothing rate in (0,1].
	SmoothRate float64
	// CutoffFraction is the share of low-frequency bins averaged into the
	// loudness scalar, in (0,1].
	CutoffFraction float64
	// Workers controls mesh evaluation: 1 evaluates serially, zero or
	// negative uses GOMAXPROCS goroutines.
	Workers int
	// Surface holds the displacement params.
	Surface field.Params
	// Now is the clock source; nil means time.Now. Record and frames
	// modes install a stepped source here.
	Now func() time.Time
}

// DefaultConfig returns the standard session tuning.
func DefaultConfig() Config {
	return Config{
		MeshCols:       240,
		MeshRows:       160,
		SmoothRate:     0.2,
		CutoffFraction: DefaultCutoffFraction,
		Workers:        0,
		Surface:        field.DefaultParams(),
	}
}

// Session owns one render lifecycle: clock, pointer smoother, bass
// extractor, mesh and the collaborators that feed and present it.
//
// A Session is not safe for concurrent use. Drive it from one goroutine;
// collaborators like the audio session hand data over through the
// non-blocking SnapshotSource read.
type Session struct {
	cfg       Config
	state     State
	clock     *Clock
	smoother  *PointerSmoother
	extractor *BassExtractor
	mesh      *Mesh
	pool      *WorkerPool
	source    SnapshotSource
	presenter Presenter
	uniforms  Uniforms
	ticks     uint64
	width     int
	height    int
	aspect    float32
	cancelRun context.CancelFunc
}

// NewSession validates cfg and builds a session in StateUninitialized.
// source and presenter may be nil: a nil source pins intensity to zero, a
// nil presenter skips presentation entirely.
func NewSession(cfg Config, source SnapshotSource, presenter Presenter) (*Session, error) {
	smoother, err := NewPointerSmoother(cfg.SmoothRate)
	if err != nil {
		return nil, err
	}
	extractor, err := NewBassExtractor(cfg.CutoffFraction)
	if err != nil {
		return nil, err
	}
	mesh, err := NewMesh(cfg.MeshCols, cfg.MeshRows, cfg.Surface)
	if err != nil {
		return nil, err
	}
	return &Session{
		cfg:       cfg,
		state:     StateUninitialized,
		clock:     NewClock(cfg.Now),
		smoother:  smoother,
		extractor: extractor,
		mesh:      mesh,
		source:    source,
		presenter: presenter,
		aspect:    1,
	}, nil
}

// Start moves the session to StateRunning, rebasing the clock so Time
// counts from zero. Starting twice, or after teardown, is a
// LifecycleError.
func (s *Session) Start() error {
	if s.state != StateUninitialized {
		return &LifecycleError{Op: "start", State: s.state}
	}
	if s.cfg.Workers != 1 {
		s.pool = NewWorkerPool(s.cfg.Workers)
	}
	s.clock.Restart()
	s.state = StateRunning
	return nil
}

// Tick advances the session one frame: sample the clock, step the pointer,
// reduce the latest snapshot, evaluate the mesh, present. Only valid while
// running.
func (s *Session) Tick() error {
	if s.state != StateRunning {
		return &LifecycleError{Op: "tick", State: s.state}
	}

	s.uniforms.Time = s.clock.Elapsed()
	p := s.smoother.Step()
	s.uniforms.Pointer = [2]float32{float32(p[0]), float32(p[1])}

	s.uniforms.AudioIntensity = 0
	if s.source != nil {
		if snap := s.source.Snapshot(); snap != nil {
			v, err := s.extractor.Update(snap)
			if err != nil {
				// Recoverable: treat a bad snapshot as silence.
				log.Printf("audio snapshot rejected: %v", err)
			} else {
				s.uniforms.AudioIntensity = v
			}
		}
	}

	u := s.uniforms
	if s.pool != nil {
		s.mesh.EvaluateParallel(u, s.pool)
	} else {
		s.mesh.Evaluate(u)
	}

	if s.presenter != nil {
		if err := s.presenter.Present(s.mesh, u, s.aspect); err != nil {
			log.Printf("present failed: %v", err)
		}
	}

	s.ticks++
	return nil
}

// OnPointerSample feeds one raw pointer sample in [-1,1]^2 (values outside
// are clamped). Allowed before Start so a window can seed the position;
// forbidden after teardown.
func (s *Session) OnPointerSample(x, y float64) error {
	if s.state == StateTornDown {
		return &LifecycleError{Op: "pointer sample", State: s.state}
	}
	s.smoother.OnRawSample(x, y)
	return nil
}

// Resize records a new output size and forwards it to the presenter. It
// can arrive between any two ticks without stopping the loop.
func (s *Session) Resize(width, height int) error {
	if s.state == StateTornDown {
		return &LifecycleError{Op: "resize", State: s.state}
	}
	if width <= 0 || height <= 0 {
		return &InvalidInputError{Reason: fmt.Sprintf("resize to %dx%d", width, height)}
	}
	s.width, s.height = width, height
	s.aspect = float32(width) / float32(height)
	if s.presenter != nil {
		s.presenter.Resize(width, height)
	}
	return nil
}

// Run drives Tick at the given rate until ctx is done or the session is
// torn down. It blocks on the calling goroutine; ticks never overlap.
func (s *Session) Run(ctx context.Context, fps int) error {
	if s.state != StateRunning {
		return &LifecycleError{Op: "run", State: s.state}
	}
	if fps <= 0 {
		return &InvalidInputError{Reason: fmt.Sprintf("fps %d", fps)}
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancelRun = cancel
	defer cancel()

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if s.state == StateTornDown {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			if s.state != StateRunning {
				return nil
			}
			if err := s.Tick(); err != nil {
				return err
			}
		}
	}
}

// Teardown releases everything. The first call cancels any pending run
// loop, closes the pool and releases the presenter; repeats are no-ops.
// After teardown the tick counter is frozen and every other operation
// returns a LifecycleError.
func (s *Session) Teardown() error {
	if s.state == StateTornDown {
		return nil
	}
	s.state = StateTornDown
	if s.cancelRun != nil {
		s.cancelRun()
		s.cancelRun = nil
	}
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
	if s.presenter != nil {
		s.presenter.Release()
	}
	return nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// TickCount returns the number of completed ticks, frozen after teardown.
func (s *Session) TickCount() uint64 {
	return s.ticks
}

// Uniforms returns a copy of the most recent frame state.
func (s *Session) Uniforms() Uniforms {
	return s.uniforms
}

// Aspect returns width/height from the last resize, or 1 before any.
func (s *Session) Aspect() float32 {
	return s.aspect
}

// Size returns the dimensions from the last resize.
func (s *Session) Size() (width, height int) {
	return s.width, s.height
}

// Mesh returns the session mesh. Its contents change on every tick.
func (s *Session) Mesh() *Mesh {
	return s.mesh
}
