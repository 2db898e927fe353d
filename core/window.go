package core

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GLFW and OpenGL calls must stay on the main OS thread.
	runtime.LockOSThread()
}

// Window wraps a GLFW window with a current OpenGL 4.1 core context.
// Width/Height are in screen coordinates (pointer space); the framebuffer
// may be larger on HiDPI displays.
type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
	Title  string

	resizeCb func(width, height int)
}

type WindowConfig struct {
	Width     int
	Height    int
	Title     string
	Resizable bool
	VSync     bool
}

func NewWindow(config WindowConfig) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, boolToInt(config.Resizable))
	glfw.WindowHint(glfw.Samples, 4)

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	handle.MakeContextCurrent()
	if config.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	window := &Window{
		Handle: handle,
		Width:  config.Width,
		Height: config.Height,
		Title:  config.Title,
	}

	handle.SetSizeCallback(func(w *glfw.Window, width, height int) {
		window.Width = width
		window.Height = height
		if window.resizeCb != nil {
			window.resizeCb(width, height)
		}
	})

	return window, nil
}

func (w *Window) ShouldClose() bool {
	return w.Handle.ShouldClose()
}

func (w *Window) SetShouldClose(v bool) {
	w.Handle.SetShouldClose(v)
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) SwapBuffers() {
	w.Handle.SwapBuffers()
}

func (w *Window) GetFramebufferSize() (int, int) {
	return w.Handle.GetFramebufferSize()
}

func (w *Window) SetTitle(title string) {
	if title == w.Title {
		return
	}
	w.Handle.SetTitle(title)
	w.Title = title
}

// Destroy closes the window and terminates GLFW.
func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
}

// ResizeCallback receives the new window size in screen coordinates.
type ResizeCallback func(width, height int)

// PointerCallback receives a button transition at the cursor position.
type PointerCallback func(button int, pressed bool, x, y float64)

// CursorCallback receives cursor motion in screen coordinates.
type CursorCallback func(x, y float64)

// ScrollCallback is the type for scroll event handlers
type ScrollCallback func(xoff, yoff float64)

// SetResizeCallback installs cb, replacing any previous one. nil removes it.
func (w *Window) SetResizeCallback(cb ResizeCallback) {
	w.resizeCb = cb
}

// SetPointerCallback installs cb for mouse button presses and releases.
// nil removes it.
func (w *Window) SetPointerCallback(cb PointerCallback) {
	if cb == nil {
		w.Handle.SetMouseButtonCallback(nil)
		return
	}
	w.Handle.SetMouseButtonCallback(func(win *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if action == glfw.Repeat {
			return
		}
		x, y := win.GetCursorPos()
		cb(int(button), action == glfw.Press, x, y)
	})
}

// SetCursorCallback installs cb for cursor motion. nil removes it.
func (w *Window) SetCursorCallback(cb CursorCallback) {
	if cb == nil {
		w.Handle.SetCursorPosCallback(nil)
		return
	}
	w.Handle.SetCursorPosCallback(func(win *glfw.Window, x, y float64) {
		cb(x, y)
	})
}

// SetScrollCallback installs cb for wheel events. nil removes it.
func (w *Window) SetScrollCallback(cb ScrollCallback) {
	if cb == nil {
		w.Handle.SetScrollCallback(nil)
		return
	}
	w.Handle.SetScrollCallback(func(win *glfw.Window, xoff, yoff float64) {
		cb(xoff, yoff)
	})
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

const (
	MouseLeft   = int(glfw.MouseButtonLeft)
	MouseRight  = int(glfw.MouseButtonRight)
	MouseMiddle = int(glfw.MouseButtonMiddle)
)
