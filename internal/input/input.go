package input

import (
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Action is a logical viewer command, not a physical key.
type Action int

const (
	ActionTogglePause Action = iota
	ActionPreset1
	ActionPreset2
	ActionToggleDepthOfField
	ActionToggleMirror
	ActionToggleNormals
	ActionResetCamera
	ActionQuit
	ActionRotate
	ActionPan
	ActionModShift
	ActionCount // Sentinel value for array sizing
)

// InputManager maps keys and mouse buttons to actions and accumulates
// pointer motion between frames.
type InputManager struct {
	mu sync.RWMutex

	keyToActions         map[glfw.Key][]Action
	mouseButtonToActions map[glfw.MouseButton][]Action

	currentState [ActionCount]bool
	justPressed  [ActionCount]bool
	justReleased [ActionCount]bool

	cursorX, cursorY float64
	haveCursor       bool
	dx, dy           float64
	scroll           float64
}

// NewInputManager creates an InputManager with the default viewer bindings.
func NewInputManager() *InputManager {
	im := &InputManager{
		keyToActions:         make(map[glfw.Key][]Action),
		mouseButtonToActions: make(map[glfw.MouseButton][]Action),
	}

	im.BindKey(glfw.KeyP, ActionTogglePause)
	im.BindKey(glfw.Key1, ActionPreset1)
	im.BindKey(glfw.Key2, ActionPreset2)
	im.BindKey(glfw.KeyD, ActionToggleDepthOfField)
	im.BindKey(glfw.KeyM, ActionToggleMirror)
	im.BindKey(glfw.KeyN, ActionToggleNormals)
	im.BindKey(glfw.KeyR, ActionResetCamera)
	im.BindKey(glfw.KeyEscape, ActionQuit)

	im.BindMouseButton(glfw.MouseButtonLeft, ActionRotate)
	im.BindMouseButton(glfw.MouseButtonRight, ActionPan)
	im.BindMouseButton(glfw.MouseButtonMiddle, ActionPan)

	im.BindKey(glfw.KeyLeftShift, ActionModShift)
	im.BindKey(glfw.KeyRightShift, ActionModShift)

	return im
}

// BindKey adds action to key. A key may drive several actions and several
// keys may share one.
func (im *InputManager) BindKey(key glfw.Key, action Action) {
	im.mu.Lock()
	defer im.mu.Unlock()

	if action < 0 || action >= ActionCount {
		return
	}

	im.keyToActions[key] = append(im.keyToActions[key], action)
}

// UnbindKey drops every action bound to key.
func (im *InputManager) UnbindKey(key glfw.Key) {
	im.mu.Lock()
	defer im.mu.Unlock()

	delete(im.keyToActions, key)
}

// BindMouseButton adds action to button.
func (im *InputManager) BindMouseButton(button glfw.MouseButton, action Action) {
	im.mu.Lock()
	defer im.mu.Unlock()

	if action < 0 || action >= ActionCount {
		return
	}

	im.mouseButtonToActions[button] = append(im.mouseButtonToActions[button], action)
}

// UnbindMouseButton drops every action bound to button.
func (im *InputManager) UnbindMouseButton(button glfw.MouseButton) {
	im.mu.Lock()
	defer im.mu.Unlock()

	delete(im.mouseButtonToActions, button)
}

// HandleKeyEvent applies a key press, repeat or release.
func (im *InputManager) HandleKeyEvent(key glfw.Key, action glfw.Action) {
	im.mu.Lock()
	defer im.mu.Unlock()
	im.set(im.keyToActions[key], action == glfw.Press || action == glfw.Repeat)
}

// HandleMouseButtonEvent applies a mouse button press or release.
func (im *InputManager) HandleMouseButtonEvent(button glfw.MouseButton, action glfw.Action) {
	im.mu.Lock()
	defer im.mu.Unlock()
	im.set(im.mouseButtonToActions[button], action == glfw.Press)
}

// set records the new held state of actions and flags edges as they
// arrive, so a press and release within one frame is still seen.
// Callers hold mu.
func (im *InputManager) set(actions []Action, pressed bool) {
	for _, act := range actions {
		if act < 0 || act >= ActionCount {
			continue
		}
		if pressed && !im.currentState[act] {
			im.justPressed[act] = true
		}
		if !pressed && im.currentState[act] {
			im.justReleased[act] = true
		}
		im.currentState[act] = pressed
	}
}

// HandleCursorPos records a pointer position. Motion is accumulated only
// while rotating or panning, so the first drag does not jump.
func (im *InputManager) HandleCursorPos(x, y float64) {
	im.mu.Lock()
	defer im.mu.Unlock()
	dragging := im.currentState[ActionRotate] || im.currentState[ActionPan]
	if im.haveCursor && dragging {
		im.dx += x - im.cursorX
		im.dy += y - im.cursorY
	}
	im.cursorX, im.cursorY = x, y
	im.haveCursor = true
}

// HandleScroll accumulates wheel motion.
func (im *InputManager) HandleScroll(yoff float64) {
	im.mu.Lock()
	im.scroll += yoff
	im.mu.Unlock()
}

// TakeMotion returns and resets the pointer motion and scroll accumulated
// since the previous call.
func (im *InputManager) TakeMotion() (dx, dy, scroll float64) {
	im.mu.Lock()
	defer im.mu.Unlock()
	dx, dy, scroll = im.dx, im.dy, im.scroll
	im.dx, im.dy, im.scroll = 0, 0, 0
	return dx, dy, scroll
}

// SetCallbacks wires key, button, cursor and scroll events of window.
func (im *InputManager) SetCallbacks(window *glfw.Window) {
	im.SetKeyCallback(window)
	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		im.HandleMouseButtonEvent(button, action)
	})
	window.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		im.HandleCursorPos(x, y)
	})
	window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		im.HandleScroll(yoff)
	})
}

// SetKeyCallback routes key events of window to HandleKeyEvent.
func (im *InputManager) SetKeyCallback(window *glfw.Window) {
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		im.HandleKeyEvent(key, action)
	})
}

// PostUpdate ends the frame: edge flags are cleared for the next one.
func (im *InputManager) PostUpdate() {
	im.mu.Lock()
	defer im.mu.Unlock()

	im.justPressed = [ActionCount]bool{}
	im.justReleased = [ActionCount]bool{}
}

// IsActive reports whether action is held.
func (im *InputManager) IsActive(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}

	im.mu.RLock()
	defer im.mu.RUnlock()

	return im.currentState[action]
}

// JustPressed reports whether action went down this frame.
func (im *InputManager) JustPressed(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}

	im.mu.RLock()
	defer im.mu.RUnlock()

	return im.justPressed[action]
}

// JustReleased reports whether action went up this frame.
func (im *InputManager) JustReleased(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}

	im.mu.RLock()
	defer im.mu.RUnlock()

	return im.justReleased[action]
}
