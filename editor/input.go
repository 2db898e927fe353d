package editor

import (
	"grid-editor/core"
	"grid-editor/scene"
)

// InputManager turns pointer drags and wheel steps into orbit control
// input. Left drag rotates, right drag pans. A press on the menu never
// starts a drag.
type InputManager struct {
	controls *scene.OrbitControls

	MouseX, MouseY float64
	dragButton     int
	dragging       bool
}

func NewInputManager(controls *scene.OrbitControls) *InputManager {
	return &InputManager{controls: controls, dragButton: -1}
}

// BeginDrag starts a drag at (x, y) if button drives the camera.
func (im *InputManager) BeginDrag(button int, x, y float64) {
	if button != core.MouseLeft && button != core.MouseRight {
		return
	}
	im.dragButton = button
	im.dragging = true
	im.MouseX, im.MouseY = x, y
}

// EndDrag stops any drag started with button.
func (im *InputManager) EndDrag(button int) {
	if im.dragging && button == im.dragButton {
		im.dragging = false
		im.dragButton = -1
	}
}

// CursorMoved feeds motion to the active drag. viewportHeight scales pixel
// deltas to angles and pan distances.
func (im *InputManager) CursorMoved(x, y, viewportHeight float64) {
	dx, dy := float32(x-im.MouseX), float32(y-im.MouseY)
	im.MouseX, im.MouseY = x, y
	if !im.dragging {
		return
	}
	h := float32(viewportHeight)
	switch im.dragButton {
	case core.MouseLeft:
		im.controls.Rotate(dx, dy, h)
	case core.MouseRight:
		im.controls.Pan(dx, dy, h)
	}
}

// Scroll converts wheel notches into dolly steps; up zooms in.
func (im *InputManager) Scroll(yoff float64) {
	im.controls.Dolly(float32(yoff))
}

func (im *InputManager) Dragging() bool {
	return im.dragging
}
