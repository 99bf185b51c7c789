package renderer

import (
	"image"
	"image/color"
	"testing"

	"reefview/assets"
	"reefview/internal/config"
	"reefview/internal/graphics/gpu"
	"reefview/internal/graphics/gpu/softgpu"
	"reefview/internal/meshing"
	"reefview/internal/resources"
	"reefview/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	testWidth  = 64
	testHeight = 48
)

type fixture struct {
	dev  *softgpu.Device
	res  *resources.Manager
	comp *Compositor
}

func newResources(t *testing.T, dev *softgpu.Device) *resources.Manager {
	t.Helper()
	res, err := resources.NewManager(dev, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	for name, m := range map[string]*meshing.Mesh{
		"sphere":     meshing.UVSphere(8, false),
		"sky_sphere": meshing.UVSphere(8, true),
		"plane":      meshing.Plane(),
		"terrain":    meshing.Grid(8, func(x, y float32) float32 { return x*y - 0.2 }),
	} {
		if err := res.AddMesh(name, m); err != nil {
			t.Fatalf("AddMesh(%s): %v", name, err)
		}
	}
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(1, 1, color.RGBA{200, 100, 50, 255})
	if _, err := res.AddImage("stripes", img, gpu.WrapRepeat); err != nil {
		t.Fatalf("AddImage: %v", err)
	}
	return res
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dev := softgpu.New(testWidth, testHeight)
	res := newResources(t, dev)
	comp, err := NewCompositor(dev, res, Options{Width: testWidth, Height: testHeight, Shaders: assets.FS})
	if err != nil {
		t.Fatalf("NewCompositor: %v", err)
	}
	t.Cleanup(comp.Dispose)
	return &fixture{dev: dev, res: res, comp: comp}
}

// reefScene has one object of every material kind, in a fixed order.
func reefScene() *scene.Scene {
	s := scene.New("test")
	s.Camera.LookAt = mgl32.Vec3{0, 0, 0}
	s.Camera.Distance = 6

	s.Add(&scene.Object{Name: "sky", Mesh: "sky_sphere", Material: scene.NewBackground("stripes"), Transform: scene.Identity().Scaled(50)})
	s.Add(&scene.Object{Name: "sand", Mesh: "terrain", Material: scene.NewTerrain(scene.DefaultTerrainColors()), Transform: scene.Identity().Scaled(10)})
	s.Add(&scene.Object{Name: "fish", Mesh: "sphere", Material: scene.NewTexturedDiffuse("stripes", 0.5), Transform: scene.At(mgl32.Vec3{1, 0, 1})})
	glass := scene.NewDiffuse(mgl32.Vec3{0.2, 0.4, 0.9}, 2)
	glass.Opacity = 0.5
	s.Add(&scene.Object{Name: "glass", Mesh: "sphere", Material: glass, Transform: scene.At(mgl32.Vec3{-1, 0, 1})})
	s.Add(&scene.Object{Name: "water", Mesh: "plane", Material: scene.NewWater(), Transform: scene.At(mgl32.Vec3{0, 0, 2}).Scaled(10)})
	s.Add(&scene.Object{Name: "mirror", Mesh: "plane", Material: scene.NewReflective("", mgl32.Vec3{0.8, 0.8, 0.8}), Transform: scene.At(mgl32.Vec3{0, 0, 0.1}).Scaled(2)})
	s.AddLight(&scene.Light{Position: mgl32.Vec3{0, -3, 8}, Color: mgl32.Vec3{1, 1, 1}})
	return s
}

func tunables(fn func(t *config.Tunables)) config.Tunables {
	t := config.Defaults()
	if fn != nil {
		fn(&t)
	}
	return t
}

func stateFor(s *scene.Scene, frame uint64, settings config.Tunables) *SceneState {
	return NewSceneState(s, FrameInfo{Number: frame, Width: testWidth, Height: testHeight}, settings, 0)
}

// mainView prepares the main-view matrices of s for frame.
func mainView(s *scene.Scene, frame uint64) *View {
	s.Camera.UpdateFormatRatio(testWidth, testHeight)
	s.UpdateMatrices(frame)
	return &View{
		Name:      "main",
		Matrices:  s.Matrices,
		Eye:       s.Camera.Position(),
		LookAt:    s.Camera.LookAt,
		ClipPlane: NoClip,
	}
}

func labels(records []softgpu.DrawRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Label
	}
	return out
}

// withoutFramebuffer copies records with the target handle cleared, so
// journals of different targets can be compared.
func withoutFramebuffer(records []softgpu.DrawRecord) []softgpu.DrawRecord {
	out := make([]softgpu.DrawRecord, len(records))
	for i, r := range records {
		r.Framebuffer = 0
		out[i] = r
	}
	return out
}

func findObject(s *scene.Scene, name string) *scene.Object {
	for _, o := range s.Objects {
		if o.Name == name {
			return o
		}
	}
	return nil
}
