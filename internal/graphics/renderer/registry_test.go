package renderer

import (
	"errors"
	"testing"

	"reefview/internal/graphics/gpu"
	"reefview/internal/graphics/gpu/softgpu"

	"github.com/go-gl/mathgl/mgl32"
)

func newRegistry(t *testing.T, names ...string) (*softgpu.Device, *TargetRegistry) {
	t.Helper()
	dev := softgpu.New(100, 100)
	reg := NewTargetRegistry(dev, 100, 100, nil)
	for _, n := range names {
		if err := reg.Create(n, gpu.TargetOptions{}); err != nil {
			t.Fatalf("Create(%s): %v", n, err)
		}
	}
	return dev, reg
}

func TestRenderIntoClearsTarget(t *testing.T) {
	dev, reg := newRegistry(t, "t")
	reg.ClearColor = mgl32.Vec4{0.1, 0.2, 0.3, 1}

	tex, err := reg.RenderInto("t", func() error { return nil })
	if err != nil {
		t.Fatalf("RenderInto: %v", err)
	}
	if w, h := dev.TextureSize(tex); w != 100 || h != 100 {
		t.Fatalf("target size = %dx%d, want 100x100", w, h)
	}
	for i, px := range dev.Pixels(tex) {
		if px != reg.ClearColor {
			t.Fatalf("texel %d = %v, want %v", i, px, reg.ClearColor)
		}
	}
	if j := dev.Journal(tex); len(j) != 0 {
		t.Fatalf("journal not empty: %v", j)
	}
}

func TestRenderIntoDiscardsPreviousContent(t *testing.T) {
	dev, reg := newRegistry(t, "t")
	reg.ClearColor = mgl32.Vec4{1, 0, 0, 1}
	tex, _ := reg.RenderInto("t", nil)

	reg.ClearColor = mgl32.Vec4{0, 0, 1, 1}
	if _, err := reg.RenderInto("t", nil); err != nil {
		t.Fatal(err)
	}
	if got := dev.Pixel(tex, 50, 50); got != reg.ClearColor {
		t.Fatalf("pixel = %v, want %v", got, reg.ClearColor)
	}
}

func TestRenderIntoNestingRestoresBinding(t *testing.T) {
	dev, reg := newRegistry(t, "outer", "inner")
	dev.Viewport(640, 480)

	var outerFB, innerFB gpu.Framebuffer
	var innerDepth int
	_, err := reg.RenderInto("outer", func() error {
		outerFB = dev.BoundFramebuffer()
		_, err := reg.RenderInto("inner", func() error {
			innerFB = dev.BoundFramebuffer()
			innerDepth = reg.Depth()
			return nil
		})
		if err != nil {
			return err
		}
		if dev.BoundFramebuffer() != outerFB {
			t.Errorf("outer binding not restored after inner pass")
		}
		if w, h := dev.ViewportSize(); w != 100 || h != 100 {
			t.Errorf("viewport after inner = %dx%d, want 100x100", w, h)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RenderInto: %v", err)
	}

	if outerFB != reg.Target("outer").Framebuffer || innerFB != reg.Target("inner").Framebuffer {
		t.Fatalf("wrong framebuffers bound: outer %d inner %d", outerFB, innerFB)
	}
	if innerDepth != 2 {
		t.Fatalf("depth inside nested call = %d, want 2", innerDepth)
	}
	if reg.Depth() != 0 {
		t.Fatalf("depth after return = %d", reg.Depth())
	}
	if dev.BoundFramebuffer() != gpu.DefaultFramebuffer {
		t.Fatalf("default framebuffer not restored")
	}
	if w, h := dev.ViewportSize(); w != 640 || h != 480 {
		t.Fatalf("viewport = %dx%d, want 640x480", w, h)
	}
}

func TestRenderIntoRestoresOnError(t *testing.T) {
	dev, reg := newRegistry(t, "t")
	boom := errors.New("boom")

	_, err := reg.RenderInto("t", func() error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if reg.Depth() != 0 || dev.BoundFramebuffer() != gpu.DefaultFramebuffer {
		t.Fatalf("binding leaked: depth %d fb %d", reg.Depth(), dev.BoundFramebuffer())
	}
}

func TestRenderIntoRestoresOnPanic(t *testing.T) {
	dev, reg := newRegistry(t, "t")

	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("panic was swallowed")
			}
		}()
		reg.RenderInto("t", func() error { panic("draw failed") })
	}()

	if reg.Depth() != 0 || dev.BoundFramebuffer() != gpu.DefaultFramebuffer {
		t.Fatalf("binding leaked: depth %d fb %d", reg.Depth(), dev.BoundFramebuffer())
	}
}

func TestRenderIntoRejectsReentry(t *testing.T) {
	_, reg := newRegistry(t, "t")
	var inner error
	_, err := reg.RenderInto("t", func() error {
		_, inner = reg.RenderInto("t", nil)
		return nil
	})
	if err != nil {
		t.Fatalf("outer: %v", err)
	}
	var cfg *ConfigurationError
	if !errors.As(inner, &cfg) {
		t.Fatalf("re-entry err = %v, want ConfigurationError", inner)
	}
}

func TestCreateDuplicateTarget(t *testing.T) {
	_, reg := newRegistry(t, "t")
	var cfg *ConfigurationError
	if err := reg.Create("t", gpu.TargetOptions{}); !errors.As(err, &cfg) {
		t.Fatalf("err = %v, want ConfigurationError", err)
	}
}

func TestGetUnknownTargetPanics(t *testing.T) {
	_, reg := newRegistry(t)
	defer func() {
		if recover() == nil {
			t.Fatalf("Get of unknown target did not panic")
		}
	}()
	reg.Get("missing")
}

func TestResizeRecreatesTargets(t *testing.T) {
	dev, reg := newRegistry(t, "a", "b")
	before := reg.Get("a")

	if err := reg.Resize(200, 50); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	after := reg.Get("a")
	if after == before {
		t.Fatalf("texture handle was reused")
	}
	if w, h := dev.TextureSize(after); w != 200 || h != 50 {
		t.Fatalf("new size = %dx%d", w, h)
	}
	if w, _ := dev.TextureSize(before); w != 0 {
		t.Fatalf("old texture still alive")
	}
	if w, h := reg.Size(); w != 200 || h != 50 {
		t.Fatalf("Size = %dx%d", w, h)
	}
	if got := reg.Names(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("Names = %v", got)
	}
}

func TestResizeSameSizeKeepsTargets(t *testing.T) {
	_, reg := newRegistry(t, "a")
	before := reg.Get("a")
	if err := reg.Resize(100, 100); err != nil {
		t.Fatal(err)
	}
	if reg.Get("a") != before {
		t.Fatalf("same-size resize recreated the target")
	}
}

func TestResizeRejected(t *testing.T) {
	_, reg := newRegistry(t, "a")
	if err := reg.Resize(0, 10); err == nil {
		t.Fatalf("zero width accepted")
	}
	_, err := reg.RenderInto("a", func() error {
		if err := reg.Resize(10, 10); err == nil {
			t.Errorf("resize inside RenderInto accepted")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
