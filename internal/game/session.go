package game

import (
	"math"
	"time"

	"reefview/internal/config"
	"reefview/internal/graphics/renderer"
	"reefview/internal/input"
	"reefview/internal/profiling"
	"reefview/internal/scene"

	"go.uber.org/zap"
)

// Camera control gains, per pixel of pointer motion and per scroll step.
const (
	rotateSpeed = 0.005
	panSpeed    = 0.001
	zoomStep    = 0.9
)

// SlowFrame is the tick duration above which the slowest stages are logged.
const SlowFrame = 16 * time.Millisecond

// Session drives one scene: it applies input, advances the animation clock
// and actors, and renders a frame per tick. It does not own the window.
type Session struct {
	Scene      *scene.Scene
	Compositor *renderer.Compositor
	Store      *config.Store

	log        *zap.Logger
	frame      uint64
	home       scene.Preset
	dropped    int
	lastErr    error
	lastRender time.Duration
}

// NewSession binds scene, compositor and settings.
func NewSession(sc *scene.Scene, comp *renderer.Compositor, store *config.Store, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	cam := sc.Camera
	return &Session{
		Scene:      sc,
		Compositor: comp,
		Store:      store,
		log:        log.Named("session").With(zap.String("scene", sc.Name)),
		home:       scene.Preset{Distance: cam.Distance, AngleZ: cam.AngleZ, AngleY: cam.AngleY, LookAt: cam.LookAt},
	}
}

// HandleInput applies this frame's hotkeys and pointer motion. It reports
// whether the viewer asked to quit.
func (s *Session) HandleInput(im *input.InputManager) (quit bool) {
	if im.JustPressed(input.ActionTogglePause) {
		paused := s.Store.TogglePause()
		s.log.Info("pause toggled", zap.Bool("paused", paused))
	}
	for i, action := range []input.Action{input.ActionPreset1, input.ActionPreset2} {
		if preset := i + 1; im.JustPressed(action) {
			if err := s.Store.ApplyPreset(preset); err != nil {
				s.log.Warn("preset rejected", zap.Error(err))
			} else {
				s.log.Info("preset applied", zap.Int("preset", preset))
			}
		}
	}
	if im.JustPressed(input.ActionToggleDepthOfField) {
		s.Store.ToggleDepthOfField()
		s.log.Info("depth of field toggled", zap.Bool("enabled", s.Store.Snapshot().DepthOfField))
	}
	if im.JustPressed(input.ActionToggleMirror) {
		s.Store.ToggleMirror()
		s.log.Info("mirror toggled", zap.Bool("enabled", s.Store.Snapshot().Mirror))
	}
	if im.JustPressed(input.ActionToggleNormals) {
		s.Store.ToggleNormals()
	}
	if im.JustPressed(input.ActionResetCamera) {
		s.Scene.Camera.SetPreset(s.home)
	}

	dx, dy, scroll := im.TakeMotion()
	s.MoveCamera(dx, dy, scroll, im.IsActive(input.ActionPan) || im.IsActive(input.ActionModShift))

	return im.JustPressed(input.ActionQuit)
}

// MoveCamera orbits, or pans when pan is set, by a pointer delta in pixels,
// and zooms by scroll steps.
func (s *Session) MoveCamera(dx, dy, scroll float64, pan bool) {
	cam := s.Scene.Camera
	if dx != 0 || dy != 0 {
		if pan {
			cam.Pan(float32(dx*panSpeed), float32(dy*panSpeed))
		} else {
			cam.Rotate(float32(-dx*rotateSpeed), float32(dy*rotateSpeed))
		}
	}
	if scroll != 0 {
		cam.Zoom(float32(math.Pow(zoomStep, scroll)))
	}
}

// Tick advances the clock by dt seconds and renders one width x height
// frame. A failed frame is logged and dropped; the error is returned so
// callers can surface it, but the session stays usable.
func (s *Session) Tick(dt float64, width, height int) error {
	profiling.ResetFrame()
	start := time.Now()

	s.frame++
	animTime := s.Store.AdvanceTime(dt)
	if !s.Store.Paused() {
		func() {
			defer profiling.Track("scene.Evolve")()
			s.Scene.Evolve(float32(dt))
		}()
	}

	state := renderer.NewSceneState(s.Scene, renderer.FrameInfo{
		Number:  s.frame,
		Elapsed: animTime,
		Delta:   dt,
		Width:   width,
		Height:  height,
	}, s.Store.Snapshot(), animTime)

	err := s.Compositor.Render(state)
	s.lastRender = time.Since(start)
	if err != nil {
		s.dropped++
		s.lastErr = err
		s.log.Error("frame dropped", zap.Uint64("frame", s.frame), zap.Error(err))
		return err
	}

	if s.lastRender > SlowFrame {
		s.log.Warn("slow frame",
			append([]zap.Field{zap.Uint64("frame", s.frame), zap.Duration("took", s.lastRender)}, profiling.Fields(5)...)...)
	}
	return nil
}

// Frame returns the number of the last rendered tick.
func (s *Session) Frame() uint64 { return s.frame }

// Dropped returns how many frames failed to render.
func (s *Session) Dropped() int { return s.dropped }

// LastError returns the error of the most recent dropped frame.
func (s *Session) LastError() error { return s.lastErr }

// Cleanup releases the compositor.
func (s *Session) Cleanup() {
	if s.Compositor != nil {
		s.Compositor.Dispose()
		s.Compositor = nil
	}
}
