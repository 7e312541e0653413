package main

import (
	"flag"
	"fmt"
	"log"
	"runtime"
	"time"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	audio "github.com/richinsley/gowavefield/audio"
	"github.com/richinsley/gowavefield/engine"
	"github.com/richinsley/gowavefield/glfwcontext"
	options "github.com/richinsley/gowavefield/options"
	renderer "github.com/richinsley/gowavefield/renderer"
)

func init() {
	runtime.LockOSThread()
}

func parseFlags() *options.Options {
	opts := &options.Options{
		Help:       flag.Bool("help", false, "Show help message"),
		Mode:       flag.String("mode", "view", "Run mode: view, record, or frames"),
		Duration:   flag.Float64("duration", 10.0, "Duration to record in seconds"),
		FPS:        flag.Int("fps", 60, "Frames per second"),
		Width:      flag.Int("width", 1280, "Width of the output"),
		Height:     flag.Int("height", 720, "Height of the output"),
		OutputFile: flag.String("output", "output.mp4", "Output file name for recording"),
		FramesDir:  flag.String("frames-dir", "frames", "Directory for exported PNG frames"),
		FrameCount: flag.Int("frame-count", 300, "Number of PNG frames to export"),
		AudioFile:  flag.String("audiofile", "", "Audio file to analyze and play back (overrides -mic)"),
		Mic:        flag.Bool("mic", false, "Analyze the default microphone"),
		SampleRate: flag.Int("samplerate", 44100, "Audio sample rate"),
		Volume:     flag.Float64("volume", 0.8, "Playback volume (0-1)"),
		FFMPEGPath: flag.String("ffmpeg", "", "Path to ffmpeg executable"),
		Seed:       flag.Int64("seed", 1337, "Noise seed for the surface"),
		MeshCols:   flag.Int("mesh-cols", 240, "Surface grid columns"),
		MeshRows:   flag.Int("mesh-rows", 160, "Surface grid rows"),
		SmoothRate: flag.Float64("smooth-rate", 0.2, "Pointer smoothing rate in (0,1]"),
		BassCutoff: flag.Float64("bass-cutoff", 0.2, "Fraction of low spectrum bins averaged for loudness"),
		Workers:    flag.Int("workers", 0, "Mesh evaluation workers (0 = all cores, 1 = serial)"),
	}
	flag.Parse()
	return opts
}

func main() {
	opts := parseFlags()

	if *opts.Help {
		fmt.Println("gowavefield - audio reactive surface renderer")
		flag.PrintDefaults()
		return
	}

	switch *opts.Mode {
	case "view":
		runView(opts)
	case "record":
		runRecord(opts)
	case "frames":
		runFrames(opts)
	default:
		log.Fatalf("Unknown mode %q (want view, record, or frames)", *opts.Mode)
	}
}

func engineConfig(opts *options.Options) engine.Config {
	cfg := engine.DefaultConfig()
	cfg.MeshCols = *opts.MeshCols
	cfg.MeshRows = *opts.MeshRows
	cfg.SmoothRate = *opts.SmoothRate
	cfg.CutoffFraction = *opts.BassCutoff
	cfg.Workers = *opts.Workers
	cfg.Surface.Seed = uint64(*opts.Seed)
	return cfg
}

// buildAudioSession wires the selected capture device, or returns nil when
// no audio source was requested. Only file sources get speaker playback;
// looping the microphone back out would feed on itself.
func buildAudioSession(opts *options.Options) *audio.Session {
	var device audio.Device
	playback := false
	switch {
	case *opts.AudioFile != "":
		device = audio.NewFileSource(*opts.AudioFile, *opts.SampleRate, *opts.FFMPEGPath, true)
		playback = true
	case *opts.Mic:
		device = audio.NewMicrophone(*opts.SampleRate)
	default:
		return nil
	}
	s := audio.NewSession(device, playback)
	s.SetVolume(*opts.Volume)
	return s
}

func runView(opts *options.Options) {
	if err := glfwcontext.InitGraphics(); err != nil {
		log.Fatalf("Failed to initialize graphics: %v", err)
	}
	defer glfwcontext.TerminateGraphics()

	r, err := renderer.NewRenderer(opts, true)
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}

	audioSession := buildAudioSession(opts)
	if audioSession != nil {
		defer audioSession.Stop()
	}

	var source engine.SnapshotSource
	if audioSession != nil {
		source = audioSession
	}
	session, err := engine.NewSession(engineConfig(opts), source, r)
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	if err := session.Start(); err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}
	defer session.Teardown()

	ctx := r.Context()
	if audioSession != nil {
		// Audio stays silent until the user asks for it.
		ctx.RegisterKeyCallback(glfw.KeySpace, func() {
			if audioSession.Active() {
				audioSession.Stop()
				log.Println("Audio paused")
				return
			}
			if err := audioSession.Start(); err != nil {
				log.Printf("Audio unavailable: %v", err)
				return
			}
			log.Println("Audio running")
		})
		ctx.RegisterKeyCallback(glfw.KeyLeftBracket, func() {
			audioSession.SetVolume(audioSession.Volume() - 0.1)
		})
		ctx.RegisterKeyCallback(glfw.KeyRightBracket, func() {
			audioSession.SetVolume(audioSession.Volume() + 0.1)
		})
	}

	fbWidth, fbHeight := ctx.GetFramebufferSize()
	if err := session.Resize(fbWidth, fbHeight); err != nil {
		log.Fatalf("Failed to size session: %v", err)
	}

	log.Println("Starting interactive render loop...")
	frames := 0
	lastLog := time.Now()
	for !r.ShouldClose() {
		px, py := ctx.PointerNDC()
		session.OnPointerSample(px, py)

		if w, h := ctx.GetFramebufferSize(); w != fbWidth || h != fbHeight {
			fbWidth, fbHeight = w, h
			if w > 0 && h > 0 {
				session.Resize(w, h)
			}
		}

		if err := session.Tick(); err != nil {
			log.Printf("Render tick failed: %v", err)
			break
		}
		r.EndFrame()

		frames++
		if time.Since(lastLog) >= time.Second {
			log.Printf("FPS: %d", frames)
			frames = 0
			lastLog = time.Now()
		}
	}
}

func runRecord(opts *options.Options) {
	if err := glfwcontext.InitGraphics(); err != nil {
		log.Fatalf("Failed to initialize graphics: %v", err)
	}
	defer glfwcontext.TerminateGraphics()

	// The window stays hidden; frames are read back and piped to FFmpeg.
	r, err := renderer.NewRenderer(opts, false)
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}

	audioSession := buildAudioSession(opts)
	if audioSession != nil {
		if err := audioSession.Start(); err != nil {
			log.Printf("Audio unavailable, recording the silent surface: %v", err)
			audioSession = nil
		} else {
			defer audioSession.Stop()
		}
	}

	clock := renderer.NewFixedClock(*opts.FPS)
	cfg := engineConfig(opts)
	cfg.Now = clock.Now

	var source engine.SnapshotSource
	if audioSession != nil {
		source = audioSession
	}
	session, err := engine.NewSession(cfg, source, r)
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	if err := session.Start(); err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}
	defer session.Teardown()
	if err := session.Resize(*opts.Width, *opts.Height); err != nil {
		log.Fatalf("Failed to size session: %v", err)
	}

	if err := r.RunRecord(opts, session, clock); err != nil {
		log.Fatalf("Offscreen rendering failed: %v", err)
	}
	log.Printf("Successfully rendered to %s", *opts.OutputFile)
}

func runFrames(opts *options.Options) {
	w, err := renderer.NewFrameWriter(*opts.FramesDir, *opts.Width, *opts.Height)
	if err != nil {
		log.Fatalf("Failed to create frame writer: %v", err)
	}

	audioSession := buildAudioSession(opts)
	if audioSession != nil {
		if err := audioSession.Start(); err != nil {
			log.Printf("Audio unavailable, exporting the silent surface: %v", err)
			audioSession = nil
		} else {
			defer audioSession.Stop()
		}
	}

	clock := renderer.NewFixedClock(*opts.FPS)
	cfg := engineConfig(opts)
	cfg.Now = clock.Now

	var source engine.SnapshotSource
	if audioSession != nil {
		source = audioSession
	}
	session, err := engine.NewSession(cfg, source, w)
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	if err := session.Start(); err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}
	defer session.Teardown()
	if err := session.Resize(*opts.Width, *opts.Height); err != nil {
		log.Fatalf("Failed to size session: %v", err)
	}

	log.Println("Starting frame export...")
	for i := 0; i < *opts.FrameCount; i++ {
		if err := session.Tick(); err != nil {
			log.Fatalf("Frame %d failed: %v", i, err)
		}
		clock.Advance()
	}
	log.Printf("Successfully exported %d frames to %s", w.FrameCount(), *opts.FramesDir)
}
