package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"os/exec"
	"strconv"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// fileChunkSamples is the chunk size delivered downstream, about 23ms at
// 44.1kHz.
const fileChunkSamples = 1024

// FileSource decodes an audio file to mono float32 PCM through an ffmpeg
// subprocess. With realtime pacing on, chunks are delivered no faster
// than the samples play out, so the analyzer tracks the audible position.
type FileSource struct {
	path       string
	sampleRate int
	ffmpegPath string
	realtime   bool

	cmd       *exec.Cmd
	pipe      *io.PipeReader
	audioChan chan []float32
	cancel    context.CancelFunc
}

// NewFileSource prepares a decoder for path. ffmpegPath overrides the
// ffmpeg binary when non-empty. Stopping and restarting decodes the file
// from the top again.
func NewFileSource(path string, sampleRate int, ffmpegPath string, realtime bool) *FileSource {
	return &FileSource{
		path:       path,
		sampleRate: sampleRate,
		ffmpegPath: ffmpegPath,
		realtime:   realtime,
	}
}

// Start spawns ffmpeg and begins decoding. The returned channel closes at
// end of file or on Stop.
func (f *FileSource) Start() (<-chan []float32, error) {
	if _, err := os.Stat(f.path); err != nil {
		return nil, fmt.Errorf("audio file: %w", err)
	}

	pipeReader, pipeWriter := io.Pipe()
	stream := ffmpeg.Input(f.path).
		Output("pipe:", ffmpeg.KwArgs{
			"f":      "f32le",
			"acodec": "pcm_f32le",
			"ac":     "1",
			"ar":     strconv.Itoa(f.sampleRate),
		}).
		WithOutput(pipeWriter).
		ErrorToStdOut()
	if f.ffmpegPath != "" {
		stream.SetFfmpegPath(f.ffmpegPath)
	}
	f.cmd = stream.Compile()

	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	f.pipe = pipeReader
	f.audioChan = make(chan []float32, 16)

	cmd := f.cmd
	go func() {
		if err := cmd.Run(); err != nil {
			log.Printf("ffmpeg decode finished: %v", err)
		}
		pipeWriter.Close()
	}()
	go f.decode(ctx, pipeReader, f.audioChan)

	return f.audioChan, nil
}

// decode converts the f32le byte stream into sample chunks, pacing to
// real time when requested. The channel is passed in so a restarted
// source never races a lingering decoder from the previous run.
func (f *FileSource) decode(ctx context.Context, r io.Reader, out chan<- []float32) {
	defer close(out)

	start := time.Now()
	var sent int64
	buf := make([]byte, fileChunkSamples*4)
	for {
		n, err := io.ReadFull(r, buf)
		if n >= 4 {
			chunk := make([]float32, n/4)
			for i := range chunk {
				chunk[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
			}
			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
			sent += int64(len(chunk))

			if f.realtime {
				// Sleep off any decode lead over the wall clock.
				expected := int64(time.Since(start).Seconds() * float64(f.sampleRate))
				if ahead := sent - expected; ahead > 0 {
					sleep := time.Duration(float64(ahead) / float64(f.sampleRate) * float64(time.Second))
					select {
					case <-time.After(sleep):
					case <-ctx.Done():
						return
					}
				}
			}
		}
		if err != nil {
			// EOF ends the file, a closed pipe means Stop was called.
			if err != io.EOF && err != io.ErrUnexpectedEOF && err != io.ErrClosedPipe {
				log.Printf("ffmpeg pipe read: %v", err)
			}
			return
		}
	}
}

// Stop cancels decoding and kills the ffmpeg process. Safe to call more
// than once.
func (f *FileSource) Stop() error {
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	if f.pipe != nil {
		f.pipe.Close()
		f.pipe = nil
	}
	if f.cmd != nil && f.cmd.Process != nil {
		f.cmd.Process.Kill()
	}
	f.cmd = nil
	return nil
}

func (f *FileSource) SampleRate() int {
	return f.sampleRate
}
