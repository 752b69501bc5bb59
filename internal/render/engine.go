package render

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

// Config contains window/engine configuration. Adapted from the teacher's
// render.Config, dropping the fullscreen/monitor option the demo doesn't
// need.
type Config struct {
	Width  int
	Height int
	Title  string
	VSync  bool
}

// DefaultConfig returns a reasonable windowed default.
func DefaultConfig() Config {
	return Config{Width: 1280, Height: 720, Title: "voxelcore demo", VSync: true}
}

// Engine owns the GLFW window and the camera driving the demo's view and
// cull frustum, and runs the update/render loop. Adapted from the
// teacher's Engine, stripped of the texture/particle subsystems the voxel
// core spec has no use for.
type Engine struct {
	window *glfw.Window
	width  int
	height int

	Camera *Camera
	input  *Input

	lastFrame float64
	deltaTime float32
	captured  bool
}

// NewEngine initializes GLFW and OpenGL and creates a window per config.
func NewEngine(config Config) (*Engine, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Samples, 4)

	window, err := glfw.CreateWindow(config.Width, config.Height, config.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	window.MakeContextCurrent()

	if config.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.Enable(gl.MULTISAMPLE)
	gl.ClearColor(0.53, 0.73, 0.94, 1.0)

	e := &Engine{
		window: window,
		width:  config.Width,
		height: config.Height,
		Camera: NewCamera(mgl32.Vec3{0, 80, 0}),
		input:  NewInput(),
	}
	window.SetFramebufferSizeCallback(e.framebufferSizeCallback)
	window.SetKeyCallback(e.keyCallback)
	window.SetCursorPosCallback(e.cursorPosCallback)
	window.SetMouseButtonCallback(e.mouseButtonCallback)
	window.SetScrollCallback(e.scrollCallback)
	return e, nil
}

// ShouldClose reports whether the window has received a close request.
func (e *Engine) ShouldClose() bool {
	return e.window.ShouldClose()
}

// BeginFrame advances the delta-time clock, polls window events and clears
// the framebuffer. Call once per loop iteration before rendering.
func (e *Engine) BeginFrame() float32 {
	current := glfw.GetTime()
	e.deltaTime = float32(current - e.lastFrame)
	e.lastFrame = current
	if e.deltaTime > 0.1 {
		e.deltaTime = 0.1
	}

	glfw.PollEvents()
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	return e.deltaTime
}

// EndFrame swaps the window's front and back buffers.
func (e *Engine) EndFrame() {
	e.window.SwapBuffers()
}

// Aspect returns the current framebuffer's width/height ratio.
func (e *Engine) Aspect() float32 {
	return float32(e.width) / float32(e.height)
}

// Cleanup terminates GLFW, releasing the window.
func (e *Engine) Cleanup() {
	glfw.Terminate()
}

func (e *Engine) framebufferSizeCallback(w *glfw.Window, width, height int) {
	e.width = width
	e.height = height
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (e *Engine) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	e.input.HandleKey(key, action)
}

func (e *Engine) cursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	e.input.HandleMouseMove(xpos, ypos)
}

func (e *Engine) mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	e.input.HandleMouseButton(button, action)
}

func (e *Engine) scrollCallback(w *glfw.Window, xoff, yoff float64) {
	e.input.HandleScroll(xoff, yoff)
}

// ProcessInput applies the frame's accumulated input to the camera: WASD
// (with left-shift to move faster) walks the camera across the X-Z plane
// using its flattened forward direction, holding the right mouse button
// captures the cursor and looks around, the scroll wheel zooms the FOV,
// and Home resets the camera to its spawn pose. Call once per frame after
// BeginFrame.
func (e *Engine) ProcessInput() {
	holdingLook := e.input.IsMouseButtonPressed(glfw.MouseButtonRight)
	if holdingLook != e.captured {
		e.captured = holdingLook
		if e.captured {
			e.window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
		} else {
			e.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
		}
	}
	if e.captured {
		dx, dy := e.input.GetMouseDelta()
		if dx != 0 || dy != 0 {
			e.Camera.ProcessMouseMovement(float32(dx), float32(dy))
		}
	}

	if _, sy := e.input.GetScroll(); sy != 0 {
		e.Camera.ProcessScroll(float32(sy))
	}

	moveDir := mgl32.Vec3{0, 0, 0}
	if e.input.IsKeyPressed(glfw.KeyW) {
		moveDir = moveDir.Add(e.Camera.GetForward())
	}
	if e.input.IsKeyPressed(glfw.KeyS) {
		moveDir = moveDir.Sub(e.Camera.GetForward())
	}
	if e.input.IsKeyPressed(glfw.KeyA) {
		moveDir = moveDir.Sub(e.Camera.Right)
	}
	if e.input.IsKeyPressed(glfw.KeyD) {
		moveDir = moveDir.Add(e.Camera.Right)
	}
	if moveDir.Len() > 0 {
		moveDir = moveDir.Normalize()
	}

	speed := float32(10.0)
	if e.input.IsKeyPressed(glfw.KeyLeftShift) {
		speed *= 1.8
	}
	e.Camera.SetPosition(e.Camera.Position.Add(moveDir.Mul(speed * e.deltaTime)))

	if e.input.IsKeyPressed(glfw.KeyHome) {
		e.Camera.SetPosition(mgl32.Vec3{0, 80, 0})
		e.Camera.SetRotation(-90, 0)
	}
}
