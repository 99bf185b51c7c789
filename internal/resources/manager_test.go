package resources

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"reefview/internal/graphics/gpu"
	"reefview/internal/graphics/gpu/softgpu"
	"reefview/internal/meshing"

	"github.com/go-gl/mathgl/mgl32"
)

func writePNG(t *testing.T, path string, w, h int, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func newManager(t *testing.T, dir string) (*Manager, *softgpu.Device) {
	t.Helper()
	dev := softgpu.New(4, 4)
	m, err := NewManager(dev, dir, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m, dev
}

func TestWhiteFallback(t *testing.T) {
	m, dev := newManager(t, "")
	if got := dev.Pixel(m.White(), 0, 0); got != (mgl32.Vec4{1, 1, 1, 1}) {
		t.Errorf("fallback texel = %v, want white", got)
	}
}

func TestMeshLookup(t *testing.T) {
	m, _ := newManager(t, "")
	if err := m.AddMesh("plane", meshing.Plane()); err != nil {
		t.Fatalf("AddMesh: %v", err)
	}
	if _, err := m.Mesh("plane"); err != nil {
		t.Errorf("Mesh(plane): %v", err)
	}
	_, err := m.Mesh("suzanne.obj")
	if !errors.Is(err, ErrUnknownMesh) {
		t.Errorf("Mesh(suzanne.obj) error = %v, want ErrUnknownMesh", err)
	}
}

func TestAddMeshRejectsInvalid(t *testing.T) {
	m, _ := newManager(t, "")
	bad := &meshing.Mesh{Positions: []mgl32.Vec3{{}}, Faces: []uint32{0, 0, 4}}
	if err := m.AddMesh("bad", bad); err == nil {
		t.Fatal("expected validation error")
	}
	if _, err := m.Mesh("bad"); err == nil {
		t.Error("invalid mesh was registered")
	}
}

func TestTextureLazyLoad(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "red.png"), 2, 2, color.RGBA{R: 255, A: 255})
	m, dev := newManager(t, dir)

	tex, err := m.Texture("red.png")
	if err != nil {
		t.Fatalf("Texture: %v", err)
	}
	if got := dev.Pixel(tex, 1, 1); got != (mgl32.Vec4{1, 0, 0, 1}) {
		t.Errorf("texel = %v, want red", got)
	}
	again, err := m.Texture("red.png")
	if err != nil || again != tex {
		t.Errorf("second lookup = %v, %v; want cached %v", again, err, tex)
	}
}

func TestTextureMissingIsCached(t *testing.T) {
	dir := t.TempDir()
	m, _ := newManager(t, dir)

	_, err := m.Texture("missing.png")
	if !errors.Is(err, ErrUnknownTexture) {
		t.Fatalf("error = %v, want ErrUnknownTexture", err)
	}
	// Creating the file afterwards does not change the cached outcome.
	writePNG(t, filepath.Join(dir, "missing.png"), 1, 1, color.RGBA{A: 255})
	if _, err := m.Texture("missing.png"); !errors.Is(err, ErrUnknownTexture) {
		t.Errorf("second lookup error = %v, want cached ErrUnknownTexture", err)
	}
}

func TestTextureDownscaled(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "wide.png"), 64, 16, color.RGBA{G: 255, A: 255})
	m, dev := newManager(t, dir)
	m.MaxTextureSize = 32

	tex, err := m.Texture("wide.png")
	if err != nil {
		t.Fatalf("Texture: %v", err)
	}
	if w, h := dev.TextureSize(tex); w != 32 || h != 8 {
		t.Errorf("size = %dx%d, want 32x8", w, h)
	}
}

func TestAddImageReplaces(t *testing.T) {
	m, dev := newManager(t, "")
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	first, err := m.AddImage("marble", img, gpu.WrapRepeat)
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.AddImage("marble", img, gpu.WrapRepeat)
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatal("replacement reused the old handle")
	}
	if w, _ := dev.TextureSize(first); w != 0 {
		t.Error("replaced texture was not deleted")
	}
}

func TestBuildMeshes(t *testing.T) {
	m, _ := newManager(t, "")
	pool := meshing.NewWorkerPool(2, 2)
	defer pool.Shutdown()

	err := m.BuildMeshes(pool, map[string]func() (*meshing.Mesh, error){
		"sphere": func() (*meshing.Mesh, error) { return meshing.UVSphere(6, false), nil },
		"box":    func() (*meshing.Mesh, error) { return meshing.Box(false), nil },
	})
	if err != nil {
		t.Fatalf("BuildMeshes: %v", err)
	}
	for _, name := range []string{"sphere", "box"} {
		if _, err := m.Mesh(name); err != nil {
			t.Errorf("Mesh(%s): %v", name, err)
		}
	}
}

func TestRelease(t *testing.T) {
	m, dev := newManager(t, "")
	_ = m.AddMesh("plane", meshing.Plane())
	m.Release()
	if _, err := m.Mesh("plane"); err == nil {
		t.Error("mesh survived Release")
	}
	if len(dev.LiveTextures()) != 0 {
		t.Errorf("live textures after Release: %v", dev.LiveTextures())
	}
}
