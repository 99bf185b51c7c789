package game

import (
	"time"

	"reefview/internal/input"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"
)

// App owns the window loop around a Session.
type App struct {
	window       *glfw.Window
	inputManager *input.InputManager
	session      *Session
	log          *zap.Logger

	fpsLimiter *FPSLimiter
	lastTime   time.Time
}

func NewApp(window *glfw.Window, im *input.InputManager, session *Session, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	return &App{
		window:       window,
		inputManager: im,
		session:      session,
		log:          log.Named("app"),
		fpsLimiter:   NewFPSLimiter(),
		lastTime:     time.Now(),
	}
}

// Run ticks until the window is closed.
func (a *App) Run() {
	for !a.window.ShouldClose() {
		a.tick()
	}
	a.log.Info("window closed",
		zap.Uint64("frames", a.session.Frame()),
		zap.Int("dropped", a.session.Dropped()),
	)
}

func (a *App) tick() {
	now := time.Now()
	dt := now.Sub(a.lastTime).Seconds()
	a.lastTime = now

	glfw.PollEvents()

	if a.session.HandleInput(a.inputManager) {
		a.window.SetShouldClose(true)
	}
	a.render(dt)
	a.inputManager.PostUpdate()

	a.fpsLimiter.Wait(a.session.Store.Paused())
}

func (a *App) render(dt float64) {
	w, h := a.window.GetFramebufferSize()
	// dropped frames are logged by the session; keep the previous image
	if err := a.session.Tick(dt, w, h); err != nil {
		return
	}
	a.window.SwapBuffers()
}

// RefreshRender repaints during live resizes without advancing time.
func (a *App) RefreshRender() {
	a.render(0)
}
