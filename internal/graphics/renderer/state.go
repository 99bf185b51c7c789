package renderer

import (
	"reefview/internal/config"
	"reefview/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// FrameInfo is what the host reports for one tick.
type FrameInfo struct {
	Number  uint64
	Elapsed float64 // seconds since start
	Delta   float64 // seconds since previous tick
	Width   int     // framebuffer size in pixels
	Height  int
}

// SceneState is everything one frame is rendered from. It is built fresh
// every tick and not retained by the renderer.
type SceneState struct {
	Scene           *scene.Scene
	Frame           FrameInfo
	AnimationTime   float64
	BackgroundColor mgl32.Vec4
	Settings        config.Tunables
}

// NewSceneState merges the scene overrides onto the global settings and
// clamps the result to the slider ranges.
func NewSceneState(s *scene.Scene, frame FrameInfo, global config.Tunables, animationTime float64) *SceneState {
	settings := global.Merge(s.Settings).Clamped()
	return &SceneState{
		Scene:           s,
		Frame:           frame,
		AnimationTime:   animationTime,
		BackgroundColor: settings.BackgroundColor,
		Settings:        settings,
	}
}
