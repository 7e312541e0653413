package renderer

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	"github.com/richinsley/gowavefield/engine"
)

// FrameWriter rasterizes evaluated meshes straight to numbered PNG files
// without any GPU context. Each grid vertex becomes one texel and the grid
// image is resampled to the requested output size, so the frames mode runs
// on headless machines. It satisfies engine.Presenter.
type FrameWriter struct {
	dir    string
	width  int
	height int
	frame  int
}

func NewFrameWriter(dir string, width, height int) (*FrameWriter, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create frames directory: %w", err)
	}
	return &FrameWriter{dir: dir, width: width, height: height}, nil
}

func (w *FrameWriter) Present(m *engine.Mesh, u engine.Uniforms, aspect float32) error {
	cols, rows := m.Dims()
	verts := m.Vertices()

	grid := image.NewRGBA(image.Rect(0, 0, cols, rows))
	for row := 0; row < rows; row++ {
		// grid rows run bottom-to-top, image rows top-to-bottom
		y := rows - 1 - row
		for col := 0; col < cols; col++ {
			base := (row*cols + col) * engine.VertexStride
			o := grid.PixOffset(col, y)
			grid.Pix[o+0] = colorByte(verts[base+3])
			grid.Pix[o+1] = colorByte(verts[base+4])
			grid.Pix[o+2] = colorByte(verts[base+5])
			grid.Pix[o+3] = 0xFF
		}
	}

	out := image.NewRGBA(image.Rect(0, 0, w.width, w.height))
	draw.CatmullRom.Scale(out, out.Bounds(), grid, grid.Bounds(), draw.Src, nil)

	name := filepath.Join(w.dir, fmt.Sprintf("frame_%05d.png", w.frame))
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	if err := png.Encode(f, out); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	w.frame++
	return nil
}

func (w *FrameWriter) Resize(width, height int) {
	if width > 0 && height > 0 {
		w.width = width
		w.height = height
	}
}

func (w *FrameWriter) Release() {}

// FrameCount reports how many frames have been written so far.
func (w *FrameWriter) FrameCount() int {
	return w.frame
}

func colorByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
