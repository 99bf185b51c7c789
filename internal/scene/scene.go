// Package scene holds the data the renderer draws: objects with materials and
// transforms, lights, the turntable camera, and the per-frame matrix cache.
package scene

import (
	"reefview/internal/config"
)

// Actor is anything that animates between frames.
type Actor interface {
	Evolve(dt float32)
}

// ActorFunc adapts a function to Actor.
type ActorFunc func(dt float32)

func (f ActorFunc) Evolve(dt float32) { f(dt) }

// Scene is an ordered set of objects and lights seen through one camera.
type Scene struct {
	Name     string
	Objects  []*Object
	Lights   []*Light
	Camera   *TurntableCamera
	Actors   []Actor
	Settings config.Overrides

	// Matrices is the main-view cache, recomputed every frame.
	Matrices *MatrixCache
}

// New returns an empty scene with a default camera.
func New(name string) *Scene {
	return &Scene{
		Name:     name,
		Camera:   NewTurntableCamera(),
		Matrices: NewMatrixCache(),
	}
}

// Add appends objects in draw order and returns the last one.
func (s *Scene) Add(objs ...*Object) *Object {
	s.Objects = append(s.Objects, objs...)
	if len(objs) == 0 {
		return nil
	}
	return objs[len(objs)-1]
}

// AddLight appends a light.
func (s *Scene) AddLight(l *Light) *Light {
	s.Lights = append(s.Lights, l)
	return l
}

// Evolve advances every actor by dt seconds.
func (s *Scene) Evolve(dt float32) {
	for _, a := range s.Actors {
		a.Evolve(dt)
	}
}

// UpdateMatrices recomputes the main-view cache for frame.
func (s *Scene) UpdateMatrices(frame uint64) {
	if s.Matrices == nil {
		s.Matrices = NewMatrixCache()
	}
	s.Camera.ComputeMatrices(s.Matrices, frame, s.Objects)
}
