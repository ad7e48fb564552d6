package engine

import (
	"StoneEngine/internal/behaviour"

	"github.com/go-gl/glfw/v3.3/glfw"
)

var keyBindings = map[behaviour.Key][]glfw.Key{
	behaviour.KeyForward: {glfw.KeyW, glfw.KeyUp},
	behaviour.KeyBack:    {glfw.KeyS, glfw.KeyDown},
	behaviour.KeyLeft:    {glfw.KeyA, glfw.KeyLeft},
	behaviour.KeyRight:   {glfw.KeyD, glfw.KeyRight},
	behaviour.KeyBoost:   {glfw.KeyLeftShift, glfw.KeyRightShift},
}

// windowInput reads keys and mouse look from a glfw window. Mouse look is
// active while the right button is held on a focused window.
type windowInput struct {
	window       *glfw.Window
	lastX, lastY float64
	firstMouse   bool
	dx, dy       float64
}

func newWindowInput(window *glfw.Window) *windowInput {
	in := &windowInput{window: window, firstMouse: true}
	window.SetCursorPosCallback(in.cursorMoved)
	return in
}

func (in *windowInput) Pressed(k behaviour.Key) bool {
	for _, key := range keyBindings[k] {
		if in.window.GetKey(key) == glfw.Press {
			return true
		}
	}
	return false
}

func (in *windowInput) LookDelta() (float64, float64) {
	dx, dy := in.dx, in.dy
	in.dx, in.dy = 0, 0
	return dx, dy
}

func (in *windowInput) cursorMoved(w *glfw.Window, xpos, ypos float64) {
	if w.GetAttrib(glfw.Focused) != glfw.True || w.GetMouseButton(glfw.MouseButtonRight) != glfw.Press {
		in.firstMouse = true
		return
	}
	if in.firstMouse {
		in.lastX, in.lastY = xpos, ypos
		in.firstMouse = false
		return
	}
	in.dx += xpos - in.lastX
	in.dy += ypos - in.lastY
	in.lastX, in.lastY = xpos, ypos
}
