package scene

import "github.com/go-gl/mathgl/mgl32"

// Transform places an object in the world: scale, then rotate, then translate.
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

// Identity is the transform with unit scale and no rotation.
func Identity() Transform {
	return Transform{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}
}

// At returns a unit-scale transform at position p.
func At(p mgl32.Vec3) Transform {
	t := Identity()
	t.Translation = p
	return t
}

// Scaled returns t with a uniform scale s.
func (t Transform) Scaled(s float32) Transform {
	t.Scale = mgl32.Vec3{s, s, s}
	return t
}

// Matrix returns the model-to-world matrix.
func (t Transform) Matrix() mgl32.Mat4 {
	rot := t.Rotation
	if rot == (mgl32.Quat{}) {
		rot = mgl32.QuatIdent()
	}
	scale := t.Scale
	if scale == (mgl32.Vec3{}) {
		scale = mgl32.Vec3{1, 1, 1}
	}
	return mgl32.Translate3D(t.Translation[0], t.Translation[1], t.Translation[2]).
		Mul4(rot.Mat4()).
		Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
}

// Object is one drawable entry of a scene. Renderers read objects and never
// mutate them; actors may change the transform between frames.
type Object struct {
	Name      string
	Mesh      string // resource reference
	Material  Material
	Transform Transform
}

// Light is a point light.
type Light struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
}
