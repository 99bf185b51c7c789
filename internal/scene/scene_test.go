package scene

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestMaterialCapabilities(t *testing.T) {
	tests := []struct {
		name        string
		m           Material
		shadow      bool
		noPhong     bool
		transparent bool
	}{
		{"diffuse", NewDiffuse(mgl32.Vec3{1, 1, 1}, 1), true, false, false},
		{"translucent diffuse", Material{Kind: Diffuse, Opacity: 0.4}, true, false, true},
		{"background", NewBackground("sky.jpg"), false, true, false},
		{"reflective", NewReflective("marble.png", mgl32.Vec3{}), true, false, false},
		{"water", NewWater(), false, false, false},
		{"terrain", NewTerrain(DefaultTerrainColors()), true, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.CastsShadow(); got != tt.shadow {
				t.Errorf("CastsShadow = %v, want %v", got, tt.shadow)
			}
			if got := tt.m.ExcludedFromBlinnPhong(); got != tt.noPhong {
				t.Errorf("ExcludedFromBlinnPhong = %v, want %v", got, tt.noPhong)
			}
			if got := tt.m.IsTransparent(); got != tt.transparent {
				t.Errorf("IsTransparent = %v, want %v", got, tt.transparent)
			}
		})
	}
}

func TestUntaggedMaterialIsDiffuse(t *testing.T) {
	var m Material
	if m.Kind != Diffuse {
		t.Errorf("zero Kind = %v, want diffuse", m.Kind)
	}
	if m.Kind.String() != "diffuse" {
		t.Errorf("String = %q", m.Kind.String())
	}
}

func TestTransformMatrix(t *testing.T) {
	tr := At(mgl32.Vec3{1, 2, 3}).Scaled(2)
	p := tr.Matrix().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	want := mgl32.Vec4{3, 2, 3, 1}
	if !p.ApproxEqual(want) {
		t.Errorf("transformed point = %v, want %v", p, want)
	}

	var zero Transform
	if !zero.Matrix().ApproxEqual(mgl32.Ident4()) {
		t.Errorf("zero transform should be identity, got %v", zero.Matrix())
	}
}

func TestCameraPosition(t *testing.T) {
	c := NewTurntableCamera()
	c.AngleZ = 0
	c.AngleY = 0
	c.Distance = 4
	c.LookAt = mgl32.Vec3{1, 0, 0}
	if got := c.Position(); !got.ApproxEqual(mgl32.Vec3{5, 0, 0}) {
		t.Errorf("Position = %v, want (5,0,0)", got)
	}

	c.AngleY = math.Pi / 4
	c.Rotate(0, 10)
	if c.AngleY >= math.Pi/2 {
		t.Errorf("pitch not clamped: %v", c.AngleY)
	}

	c.Zoom(1000)
	if c.Distance != maxDistance {
		t.Errorf("Distance = %v, want %v", c.Distance, float32(maxDistance))
	}
}

func TestCameraPanKeepsDistance(t *testing.T) {
	c := NewTurntableCamera()
	before := c.Position().Sub(c.LookAt).Len()
	c.Pan(0.1, -0.2)
	after := c.Position().Sub(c.LookAt).Len()
	if math.Abs(float64(before-after)) > 1e-4 {
		t.Errorf("orbit distance changed: %v -> %v", before, after)
	}
}

func TestUpdateFormatRatioIgnoresZeroSize(t *testing.T) {
	c := NewTurntableCamera()
	c.UpdateFormatRatio(200, 100)
	c.UpdateFormatRatio(0, 0)
	if c.AspectRatio() != 2 {
		t.Errorf("AspectRatio = %v, want 2", c.AspectRatio())
	}
}

func TestMatrixCacheRebuildsPerFrame(t *testing.T) {
	a := &Object{Name: "a", Transform: At(mgl32.Vec3{1, 0, 0})}
	b := &Object{Name: "b", Transform: Identity()}
	cache := NewMatrixCache()

	if _, ok := cache.Frame(); ok {
		t.Fatal("new cache reports computed")
	}

	view := mgl32.Translate3D(0, 0, -5)
	proj := mgl32.Perspective(1, 1, 0.1, 100)
	cache.Compute(1, view, proj, []*Object{a, b})
	if cache.Len() != 2 {
		t.Fatalf("Len = %d, want 2", cache.Len())
	}
	m, ok := cache.Get(a)
	if !ok {
		t.Fatal("missing entry for a")
	}
	if !m.ModelViewProjection.ApproxEqual(proj.Mul4(view).Mul4(a.Transform.Matrix())) {
		t.Error("MVP mismatch")
	}
	if !m.ModelToWorld.ApproxEqual(a.Transform.Matrix()) {
		t.Error("ModelToWorld mismatch")
	}

	cache.Compute(2, view, proj, []*Object{b})
	if _, ok := cache.Get(a); ok {
		t.Error("entry for a survived into the next frame")
	}
	if f, _ := cache.Frame(); f != 2 {
		t.Errorf("Frame = %d, want 2", f)
	}
}

func TestNormalMatrixUndoesNonUniformScale(t *testing.T) {
	mv := mgl32.Scale3D(2, 1, 1)
	n := NormalMatrix(mv)
	got := n.Mul3x1(mgl32.Vec3{1, 1, 0})
	want := mgl32.Vec3{0.5, 1, 0}
	if !got.ApproxEqual(want) {
		t.Errorf("normal = %v, want %v", got, want)
	}
}

func TestSceneEvolve(t *testing.T) {
	s := New("test")
	var total float32
	s.Actors = append(s.Actors, ActorFunc(func(dt float32) { total += dt }))
	s.Evolve(0.25)
	s.Evolve(0.5)
	if total != 0.75 {
		t.Errorf("total = %v, want 0.75", total)
	}
}
