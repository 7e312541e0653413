package renderer

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/gowavefield/engine"
	options "github.com/richinsley/gowavefield/options"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Frame carries one rendered frame from the GL producer to the encoder.
type Frame struct {
	Pixels []byte
	PTS    int64
}

const frameChanDepth = 4

// FixedClock steps simulation time one frame at a time, independent of wall
// time, so recorded output is deterministic regardless of encode speed.
type FixedClock struct {
	base  time.Time
	step  time.Duration
	frame int
}

func NewFixedClock(fps int) *FixedClock {
	return &FixedClock{base: time.Unix(0, 0), step: time.Second / time.Duration(fps)}
}

func (c *FixedClock) Now() time.Time {
	return c.base.Add(time.Duration(c.frame) * c.step)
}

func (c *FixedClock) Advance() {
	c.frame++
}

// ReadFramePixels reads the back buffer into buf, reallocating when the size
// does not match, and flips the bottom-up GL scanlines into top-down order
// for the encoder.
func (r *Renderer) ReadFramePixels(buf []byte) []byte {
	width, height := r.width, r.height
	size := width * height * 4
	if len(buf) != size {
		buf = make([]byte, size)
	}
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(buf))
	flipRows(buf, width, height)
	return buf
}

func flipRows(pixels []byte, width, height int) {
	rowBytes := width * 4
	tmp := make([]byte, rowBytes)
	for y := 0; y < height/2; y++ {
		top := pixels[y*rowBytes : (y+1)*rowBytes]
		bottom := pixels[(height-1-y)*rowBytes : (height-y)*rowBytes]
		copy(tmp, top)
		copy(top, bottom)
		copy(bottom, tmp)
	}
}

// runEncoder is the Consumer. It sets up FFmpeg and consumes frames from frameChan.
func runEncoder(opts *options.Options, frameChan <-chan *Frame, doneChan chan<- error) {
	pipeReader, pipeWriter := io.Pipe()

	inputArgs := ffmpeg.KwArgs{
		"f":       "rawvideo",
		"pix_fmt": "rgba",
		"s":       fmt.Sprintf("%dx%d", *opts.Width, *opts.Height),
		"r":       *opts.FPS,
	}
	outputArgs := ffmpeg.KwArgs{
		"c:v":     "libx264",
		"pix_fmt": "yuv420p",
		"b:v":     "25M",
	}

	ffmpegCmd := ffmpeg.Input("pipe:", inputArgs).
		Output(*opts.OutputFile, outputArgs).
		OverWriteOutput().WithInput(pipeReader).ErrorToStdOut()

	if *opts.FFMPEGPath != "" {
		ffmpegCmd = ffmpegCmd.SetFfmpegPath(*opts.FFMPEGPath)
	}

	errc := make(chan error, 1)
	go func() {
		errc <- ffmpegCmd.Run()
	}()

	var writeErr error
	for frame := range frameChan {
		if writeErr != nil {
			// keep draining so the producer never blocks
			continue
		}
		if _, err := pipeWriter.Write(frame.Pixels); err != nil {
			log.Printf("Error writing pixel data on frame %d: %v", frame.PTS, err)
			writeErr = err
		}
	}

	pipeWriter.Close()
	doneChan <- <-errc
}

// RunRecord is the Producer. It renders a fixed number of frames at a fixed
// timestep and sends them to the encoder. The session must have been built
// on clock.Now so simulation time advances in lockstep with the PTS.
func (r *Renderer) RunRecord(opts *options.Options, session *engine.Session, clock *FixedClock) error {
	log.Println("Starting in record mode...")
	frameChan := make(chan *Frame, frameChanDepth)
	encoderDoneChan := make(chan error, 1)

	// Start the consumer goroutine
	go runEncoder(opts, frameChan, encoderDoneChan)

	totalFrames := int(*opts.Duration * float64(*opts.FPS))
	for i := 0; i < totalFrames; i++ {
		if err := session.Tick(); err != nil {
			close(frameChan)
			<-encoderDoneChan
			return err
		}

		pixels := r.ReadFramePixels(nil)
		frameChan <- &Frame{Pixels: pixels, PTS: int64(i)}
		clock.Advance()
	}

	// Close the channel to signal the producer is done
	close(frameChan)

	// Wait for the consumer to finish
	return <-encoderDoneChan
}
