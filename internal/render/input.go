package render

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Input tracks keyboard, mouse button and mouse movement state across
// frames so Engine can poll it once per frame rather than reacting to
// callbacks mid-frame. Adapted from the teacher's render.Input.
type Input struct {
	keys         map[glfw.Key]bool
	mouseButtons map[glfw.MouseButton]bool

	mouseX, mouseY         float64
	lastMouseX, lastMouseY float64
	firstMouse             bool

	mouseDeltaX, mouseDeltaY float64
	scrollX, scrollY         float64
}

// NewInput creates an empty input tracker.
func NewInput() *Input {
	return &Input{
		keys:         make(map[glfw.Key]bool),
		mouseButtons: make(map[glfw.MouseButton]bool),
		firstMouse:   true,
	}
}

// HandleKey processes a GLFW key callback event.
func (i *Input) HandleKey(key glfw.Key, action glfw.Action) {
	if action == glfw.Press {
		i.keys[key] = true
	} else if action == glfw.Release {
		i.keys[key] = false
	}
}

// HandleMouseMove processes a GLFW cursor position callback event.
func (i *Input) HandleMouseMove(xpos, ypos float64) {
	if i.firstMouse {
		i.lastMouseX = xpos
		i.lastMouseY = ypos
		i.firstMouse = false
	}

	i.mouseDeltaX += xpos - i.lastMouseX
	i.mouseDeltaY += i.lastMouseY - ypos // Y is inverted

	i.lastMouseX = xpos
	i.lastMouseY = ypos
	i.mouseX = xpos
	i.mouseY = ypos
}

// HandleMouseButton processes a GLFW mouse button callback event.
func (i *Input) HandleMouseButton(button glfw.MouseButton, action glfw.Action) {
	if action == glfw.Press {
		i.mouseButtons[button] = true
	} else if action == glfw.Release {
		i.mouseButtons[button] = false
	}
}

// HandleScroll processes a GLFW scroll callback event.
func (i *Input) HandleScroll(xoff, yoff float64) {
	i.scrollX += xoff
	i.scrollY += yoff
}

// IsKeyPressed reports whether key is currently held down.
func (i *Input) IsKeyPressed(key glfw.Key) bool {
	return i.keys[key]
}

// IsMouseButtonPressed reports whether button is currently held down.
func (i *Input) IsMouseButtonPressed(button glfw.MouseButton) bool {
	return i.mouseButtons[button]
}

// GetMouseDelta returns mouse movement since the last call and resets it.
func (i *Input) GetMouseDelta() (dx, dy float64) {
	dx, dy = i.mouseDeltaX, i.mouseDeltaY
	i.mouseDeltaX, i.mouseDeltaY = 0, 0
	return
}

// GetScroll returns scroll wheel movement since the last call and resets it.
func (i *Input) GetScroll() (x, y float64) {
	x, y = i.scrollX, i.scrollY
	i.scrollX, i.scrollY = 0, 0
	return
}
