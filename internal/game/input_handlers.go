package game

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"
)

// SetupInputHandlers wires window events to the input manager and the
// compositor.
func SetupInputHandlers(app *App) {
	window := app.window
	app.inputManager.SetCallbacks(window)

	// Targets follow the framebuffer, not the logical window size.
	window.SetFramebufferSizeCallback(func(w *glfw.Window, fbWidth, fbHeight int) {
		if fbWidth <= 0 || fbHeight <= 0 {
			return
		}
		if err := app.session.Compositor.Resize(fbWidth, fbHeight); err != nil {
			app.log.Error("resize failed", zap.Int("width", fbWidth), zap.Int("height", fbHeight), zap.Error(err))
		}
	})

	// pause when focus is lost
	window.SetFocusCallback(func(w *glfw.Window, focused bool) {
		if !focused && !app.session.Store.Paused() {
			app.session.Store.TogglePause()
		}
	})

	// NOTE: macOS blocks the main loop during live resize; repaint from here.
	window.SetRefreshCallback(func(w *glfw.Window) {
		app.RefreshRender()
	})
}
