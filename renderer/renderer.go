package renderer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/gowavefield/engine"
	"github.com/richinsley/gowavefield/glfwcontext"
	options "github.com/richinsley/gowavefield/options"
)

// Package-level sync.Once so gl.Init() runs only once per process even when
// several renderers are created (view window plus a hidden record context).
var glInitOnce sync.Once

// surfaceVertexShader lifts each grid vertex by its sampled height and views
// the plane from a fixed pitched-down camera. The projection is inlined so
// the only per-frame input is the framebuffer aspect.
const surfaceVertexShader = `#version 410 core

layout(location = 0) in vec2 inGrid;
layout(location = 1) in float inHeight;
layout(location = 2) in vec3 inColor;

uniform float uAspect;

out vec3 vColor;
out float vDist;

const float tilt     = 0.96;
const float span     = 2.0;
const float camDist  = 2.2;
const float fovScale = 1.9;
const float zNear    = 0.1;
const float zFar     = 10.0;

void main() {
    vec3 world = vec3((inGrid.x - 0.5) * span, inHeight, (0.5 - inGrid.y) * span);

    float c = cos(tilt);
    float s = sin(tilt);
    vec3 eye = vec3(world.x,
                    c * world.y - s * world.z,
                    s * world.y + c * world.z - camDist);

    float pa = (zFar + zNear) / (zNear - zFar);
    float pb = (2.0 * zFar * zNear) / (zNear - zFar);
    gl_Position = vec4(eye.x * fovScale / uAspect,
                       eye.y * fovScale,
                       eye.z * pa + pb,
                       -eye.z);

    vColor = inColor;
    vDist = -eye.z;
}
`

const surfaceFragmentShader = `#version 410 core

in vec3 vColor;
in float vDist;

uniform float uTime;
uniform float uIntensity;

out vec4 fragColor;

const vec3 horizonTone = vec3(0.02, 0.03, 0.08);

void main() {
    float fog = clamp((vDist - 1.8) / 2.2, 0.0, 1.0);
    float pulse = 1.0 + 0.08 * uIntensity * sin(uTime * 6.2831853);
    vec3 color = mix(vColor * pulse, horizonTone, fog);
    fragColor = vec4(color, 1.0);
}
`

// Renderer draws evaluated surface meshes into a GLFW-backed GL context.
// It satisfies engine.Presenter.
type Renderer struct {
	context      *glfwcontext.Context
	program      uint32
	vao          uint32
	vbo          uint32
	ebo          uint32
	vboFloats    int
	indexCount   int32
	timeLoc      int32
	intensityLoc int32
	aspectLoc    int32
	width        int
	height       int
	recordMode   bool
}

func NewRenderer(opts *options.Options, visible bool) (*Renderer, error) {
	r := &Renderer{
		width:      *opts.Width,
		height:     *opts.Height,
		recordMode: !visible,
	}
	var err error

	r.context, err = glfwcontext.New(opts, visible)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize glfw context: %w", err)
	}

	// Make the context current on this thread.
	r.context.MakeCurrent()

	// Use the sync.Once to safely initialize OpenGL bindings.
	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", initErr)
	}

	r.program, err = newProgram(surfaceVertexShader, surfaceFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create surface program: %w", err)
	}

	gl.UseProgram(r.program)
	r.timeLoc = gl.GetUniformLocation(r.program, gl.Str("uTime\x00"))
	r.intensityLoc = gl.GetUniformLocation(r.program, gl.Str("uIntensity\x00"))
	r.aspectLoc = gl.GetUniformLocation(r.program, gl.Str("uAspect\x00"))

	gl.Enable(gl.DEPTH_TEST)
	gl.ClearColor(0.01, 0.015, 0.04, 1.0)

	return r, nil
}

// ensureBuffers lazily builds the VAO for the mesh and rebuilds it whenever
// the grid resolution changes. Vertex data is interleaved grid x, grid y,
// height, r, g, b; indices are uploaded once and stay static.
func (r *Renderer) ensureBuffers(m *engine.Mesh) {
	verts := m.Vertices()
	indices := m.Indices()
	if r.vao != 0 && len(verts) == r.vboFloats {
		return
	}
	if r.vao != 0 {
		gl.DeleteBuffers(1, &r.vbo)
		gl.DeleteBuffers(1, &r.ebo)
		gl.DeleteVertexArrays(1, &r.vao)
	}

	gl.GenVertexArrays(1, &r.vao)
	gl.GenBuffers(1, &r.vbo)
	gl.GenBuffers(1, &r.ebo)

	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.DYNAMIC_DRAW)

	stride := int32(engine.VertexStride * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 1, gl.FLOAT, false, stride, gl.PtrOffset(2*4))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 3, gl.FLOAT, false, stride, gl.PtrOffset(3*4))

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	r.vboFloats = len(verts)
	r.indexCount = int32(len(indices))
}

// Present uploads the current vertex data and draws the surface. It does not
// swap buffers; the caller ends the frame so record mode can read pixels
// back before any swap.
func (r *Renderer) Present(m *engine.Mesh, u engine.Uniforms, aspect float32) error {
	if r.context == nil {
		return fmt.Errorf("renderer released")
	}
	r.ensureBuffers(m)

	renderWidth, renderHeight := r.width, r.height
	if !r.recordMode {
		// In interactive mode, match the window's framebuffer size to allow resizing.
		renderWidth, renderHeight = r.context.GetFramebufferSize()
	}

	gl.Viewport(0, 0, int32(renderWidth), int32(renderHeight))
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.UseProgram(r.program)
	if r.timeLoc != -1 {
		gl.Uniform1f(r.timeLoc, float32(u.Time))
	}
	if r.intensityLoc != -1 {
		gl.Uniform1f(r.intensityLoc, u.AudioIntensity)
	}
	if r.aspectLoc != -1 {
		gl.Uniform1f(r.aspectLoc, aspect)
	}

	verts := m.Vertices()
	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(verts)*4, gl.Ptr(verts))
	gl.DrawElements(gl.TRIANGLES, r.indexCount, gl.UNSIGNED_INT, gl.PtrOffset(0))
	gl.BindVertexArray(0)

	return nil
}

// Resize records the new raster size. Interactive presents already track the
// framebuffer, so this mostly matters for record mode and aspect bookkeeping.
func (r *Renderer) Resize(width, height int) {
	r.width = width
	r.height = height
}

// Release frees the GL objects and destroys the window.
func (r *Renderer) Release() {
	if r.program != 0 {
		gl.DeleteProgram(r.program)
		r.program = 0
	}
	if r.vao != 0 {
		gl.DeleteBuffers(1, &r.vbo)
		gl.DeleteBuffers(1, &r.ebo)
		gl.DeleteVertexArrays(1, &r.vao)
		r.vao = 0
	}
	if r.context != nil {
		r.context.Shutdown()
		r.context = nil
	}
}

// EndFrame swaps buffers and pumps window events.
func (r *Renderer) EndFrame() {
	r.context.EndFrame()
}

func (r *Renderer) ShouldClose() bool {
	return r.context.ShouldClose()
}

// Context exposes the window context for input wiring.
func (r *Renderer) Context() *glfwcontext.Context {
	return r.context
}

func newProgram(vertexShaderSource, fragmentShaderSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("failed to link program: %v", log)
	}

	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		return 0, fmt.Errorf("failed to compile shader: %v", logText)
	}
	return shader, nil
}
