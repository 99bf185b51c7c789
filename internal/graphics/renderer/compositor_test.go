package renderer

import (
	"errors"
	"reflect"
	"testing"

	"reefview/assets"
	"reefview/internal/config"
	"reefview/internal/graphics/gpu"
	"reefview/internal/graphics/gpu/softgpu"
	"reefview/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

func TestCompositorTargets(t *testing.T) {
	f := newFixture(t)
	want := []string{TargetBase, TargetShadows, TargetFog, TargetShadowsAndBase, TargetMirrorReflection, TargetShadowDepth}
	if got := f.comp.Targets().Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("targets = %v, want %v", got, want)
	}
	if opts := f.comp.Targets().Target(TargetShadowDepth).Options; opts.Type != gpu.TypeFloat {
		t.Fatalf("shadow depth target is not float: %+v", opts)
	}
	if n := len(f.comp.Renderers()); n != len(AllPasses) {
		t.Fatalf("%d renderers, want %d", n, len(AllPasses))
	}
}

func TestRenderPassSequence(t *testing.T) {
	f := newFixture(t)
	s := reefScene()
	if err := f.comp.Render(stateFor(s, 1, tunables(nil))); err != nil {
		t.Fatalf("Render: %v", err)
	}

	want := []string{
		// base, with one mirror re-running the opaque subsequence
		"preprocessing", "background", "terrain", "blinn_phong",
		"preprocessing", "background", "terrain", "blinn_phong",
		"mirror",
		// shadows
		"preprocessing", "shadow_depth", "shadows",
		// fog
		"god_rays",
		// composite
		"map_mixer", "transparent",
	}
	recs := f.dev.Records()
	if got := labels(recs); !reflect.DeepEqual(got, want) {
		t.Fatalf("passes = %v\nwant     %v", got, want)
	}

	targets := f.comp.Targets()
	fb := func(name string) gpu.Framebuffer { return targets.Target(name).Framebuffer }
	wantFB := []gpu.Framebuffer{
		fb(TargetBase), fb(TargetBase), fb(TargetBase), fb(TargetBase),
		fb(TargetMirrorReflection), fb(TargetMirrorReflection), fb(TargetMirrorReflection), fb(TargetMirrorReflection),
		fb(TargetBase),
		fb(TargetShadows), fb(TargetShadowDepth), fb(TargetShadows),
		fb(TargetFog),
		gpu.DefaultFramebuffer, gpu.DefaultFramebuffer,
	}
	for i, r := range recs {
		if r.Framebuffer != wantFB[i] {
			t.Errorf("pass %d (%s) drew into %d, want %d", i, r.Label, r.Framebuffer, wantFB[i])
		}
	}
	if targets.Depth() != 0 || f.dev.BoundFramebuffer() != gpu.DefaultFramebuffer {
		t.Fatalf("binding not restored after frame")
	}
}

func TestSubmittedBatchesFollowInclusionPolicy(t *testing.T) {
	f := newFixture(t)
	s := reefScene()
	all := tunables(func(t *config.Tunables) {
		t.Mirror = true
		t.RenderNormals = true
		t.DepthOfField = true
	})
	if err := f.comp.Render(stateFor(s, 1, all)); err != nil {
		t.Fatal(err)
	}

	kinds := make(map[string]PassKind)
	for _, p := range AllPasses {
		kinds[p.String()] = p
	}
	seen := make(map[PassKind]bool)
	for _, rec := range f.dev.Records() {
		kind, ok := kinds[rec.Label]
		if !ok {
			t.Fatalf("batch %q is not a known pass", rec.Label)
		}
		seen[kind] = true
		for _, item := range rec.Items {
			o := findObject(s, item.Label)
			if o == nil {
				t.Fatalf("%s drew unknown object %q", rec.Label, item.Label)
			}
			if !Includes(kind, o.Material) {
				t.Errorf("%s drew %s (%s), which its policy excludes", rec.Label, o.Name, o.Material.Kind)
			}
			mesh, _ := f.res.Mesh(o.Mesh)
			if item.Mesh != mesh {
				t.Errorf("%s item %s has mesh %d, want %d", rec.Label, o.Name, item.Mesh, mesh)
			}
		}
	}
	for _, p := range AllPasses {
		if !seen[p] {
			t.Errorf("pass %s never ran", p)
		}
	}
}

func TestMapMixerReadsStageOutputs(t *testing.T) {
	f := newFixture(t)
	s := reefScene()
	if err := f.comp.Render(stateFor(s, 1, tunables(nil))); err != nil {
		t.Fatal(err)
	}
	out := f.dev.OutputJournal()
	if len(out) != 2 || out[0].Label != "map_mixer" {
		t.Fatalf("output journal = %v", labels(out))
	}
	u := out[0].Items[0].Uniforms
	targets := f.comp.Targets()
	if u[InputShadows] != targets.Get(TargetShadows) || u[InputBase] != targets.Get(TargetBase) || u[InputFog] != targets.Get(TargetFog) {
		t.Fatalf("mixer inputs = %v %v %v", u[InputShadows], u[InputBase], u[InputFog])
	}
}

func TestDepthOfFieldPreBlurMatchesDirectOutput(t *testing.T) {
	f := newFixture(t)
	s := reefScene()
	colors := func(t *config.Tunables) {
		t.BackgroundColor = mgl32.Vec4{0.2, 0.4, 0.8, 1}
		t.ClearColor = mgl32.Vec4{0.9, 0.1, 0.1, 1}
	}

	if err := f.comp.Render(stateFor(s, 1, tunables(colors))); err != nil {
		t.Fatal(err)
	}
	direct := withoutFramebuffer(f.dev.OutputJournal())
	directPixels := f.dev.OutputPixels()

	on := tunables(func(t *config.Tunables) {
		colors(t)
		t.DepthOfField = true
		t.DoFKernelSize = 0
	})
	if err := f.comp.Render(stateFor(s, 2, on)); err != nil {
		t.Fatal(err)
	}
	mixed := f.comp.Targets().Get(TargetShadowsAndBase)
	preBlur := withoutFramebuffer(f.dev.Journal(mixed))

	if !reflect.DeepEqual(direct, preBlur) {
		t.Fatalf("pre-blur buffer differs from direct output:\n%v\n%v", labels(direct), labels(preBlur))
	}
	if got := f.dev.Pixels(mixed); !reflect.DeepEqual(got, directPixels) {
		t.Fatalf("pre-blur texel = %v, direct output texel = %v", got[0], directPixels[0])
	}
	if got := f.dev.Pixel(f.comp.Targets().Get(TargetBase), 0, 0); got != (mgl32.Vec4{0.9, 0.1, 0.1, 1}) {
		t.Fatalf("internal targets should still clear to ClearColor, got %v", got)
	}

	out := f.dev.OutputJournal()
	if len(out) != 1 || out[0].Label != "depth_of_field" {
		t.Fatalf("output journal = %v", labels(out))
	}
	if got := out[0].Items[0].Uniforms[InputColor]; got != mixed {
		t.Fatalf("blur samples %v, want %v", got, mixed)
	}
}

func TestMirrorDisabledMatchesNoReflectiveObjects(t *testing.T) {
	f := newFixture(t)
	off := tunables(func(t *config.Tunables) { t.Mirror = false })

	s := reefScene()
	if err := f.comp.Render(stateFor(s, 1, off)); err != nil {
		t.Fatal(err)
	}
	base := f.comp.Targets().Get(TargetBase)
	disabled := withoutFramebuffer(f.dev.Journal(base))

	retagged := reefScene()
	findObject(retagged, "mirror").Material.Kind = scene.Diffuse
	if err := f.comp.Render(stateFor(retagged, 2, tunables(nil))); err != nil {
		t.Fatal(err)
	}
	plain := withoutFramebuffer(f.dev.Journal(base))

	if !reflect.DeepEqual(disabled, plain) {
		t.Fatalf("base differs:\n%v\n%v", labels(disabled), labels(plain))
	}
}

func TestMirrorReflectionView(t *testing.T) {
	f := newFixture(t)
	s := reefScene()
	if err := f.comp.Render(stateFor(s, 1, tunables(nil))); err != nil {
		t.Fatal(err)
	}
	mirror := findObject(s, "mirror")
	refl := f.dev.Journal(f.comp.Targets().Get(TargetMirrorReflection))
	if len(refl) != 4 {
		t.Fatalf("reflection journal = %v", labels(refl))
	}
	for _, r := range refl {
		for _, it := range r.Items {
			if plane, ok := it.Uniforms["clip_plane"]; ok && plane != (mgl32.Vec4{0, 0, 1, -0.1}) {
				t.Fatalf("%s clip plane = %v", r.Label, plane)
			}
		}
	}
	// every object but the mirror is prefilled in the reflection
	if got := len(refl[0].Items); got != len(s.Objects)-1 {
		t.Fatalf("reflection prefill drew %d objects, want %d", got, len(s.Objects)-1)
	}

	var mirrorPass softgpu.DrawRecord
	for _, r := range f.dev.Records() {
		if r.Label == "mirror" {
			mirrorPass = r
		}
	}
	if len(mirrorPass.Items) != 1 {
		t.Fatalf("mirror pass drew %d items", len(mirrorPass.Items))
	}
	m, _ := s.Matrices.Get(mirror)
	u := mirrorPass.Items[0].Uniforms
	if u["mat_model_view_projection"] != m.ModelViewProjection {
		t.Fatalf("mirror drawn with the wrong view")
	}
	if u[InputReflection] != f.comp.Targets().Get(TargetMirrorReflection) {
		t.Fatalf("mirror samples %v", u[InputReflection])
	}
}

func TestMirrorPlane(t *testing.T) {
	o := &scene.Object{Transform: scene.At(mgl32.Vec3{0, 0, 2})}

	above := MirrorPlane(o, mgl32.Vec3{0, 0, 10})
	if !above.ApproxEqual(mgl32.Vec4{0, 0, 1, -2}) {
		t.Fatalf("plane from above = %v", above)
	}
	below := MirrorPlane(o, mgl32.Vec3{0, 0, -10})
	if !below.ApproxEqual(mgl32.Vec4{0, 0, -1, 2}) {
		t.Fatalf("plane from below = %v", below)
	}

	r := ReflectionMatrix(above)
	got := r.Mul4x1(mgl32.Vec4{1, 2, 5, 1}).Vec3()
	if !got.ApproxEqual(mgl32.Vec3{1, 2, -1}) {
		t.Fatalf("reflected point = %v", got)
	}
	if !r.Mul4(r).ApproxEqual(mgl32.Ident4()) {
		t.Fatalf("reflection is not an involution")
	}
}

func TestLightViewLooksAtTarget(t *testing.T) {
	view, proj := LightView(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{0, 0, 0})
	clip := proj.Mul4(view).Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	ndc := clip.Vec3().Mul(1 / clip.W())
	if !mgl32.FloatEqualThreshold(ndc.X(), 0, 1e-5) || !mgl32.FloatEqualThreshold(ndc.Y(), 0, 1e-5) {
		t.Fatalf("target projects to %v, want center", ndc)
	}

	// light on its target must still give a finite matrix
	view, _ = LightView(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 1, 1})
	for _, v := range view {
		if v != v {
			t.Fatalf("NaN in degenerate light view")
		}
	}
}

func TestRenderWithoutLightsSkipsShadowMap(t *testing.T) {
	f := newFixture(t)
	s := reefScene()
	s.Lights = nil
	if err := f.comp.Render(stateFor(s, 1, tunables(nil))); err != nil {
		t.Fatal(err)
	}
	for _, r := range f.dev.Records() {
		if r.Label == "shadow_depth" || r.Label == "shadows" {
			t.Fatalf("%s drawn without lights", r.Label)
		}
	}
}

func TestRenderNormalsOverlay(t *testing.T) {
	f := newFixture(t)
	s := reefScene()
	on := tunables(func(t *config.Tunables) { t.RenderNormals = true })
	if err := f.comp.Render(stateFor(s, 1, on)); err != nil {
		t.Fatal(err)
	}
	base := f.dev.Journal(f.comp.Targets().Get(TargetBase))
	if last := base[len(base)-1]; last.Label != "normals" {
		t.Fatalf("last base pass = %s, want normals", last.Label)
	}
}

func TestSceneOverridesApply(t *testing.T) {
	f := newFixture(t)
	s := reefScene()
	s.Settings.DepthOfField = config.Ptr(true)
	if err := f.comp.Render(stateFor(s, 1, tunables(nil))); err != nil {
		t.Fatal(err)
	}
	if out := f.dev.OutputJournal(); len(out) != 1 || out[0].Label != "depth_of_field" {
		t.Fatalf("scene override ignored: %v", labels(out))
	}
}

func TestSceneOverridesAreClamped(t *testing.T) {
	s := reefScene()
	s.Settings.DoFKernelSize = config.Ptr(1000)
	s.Settings.ShadowBias = config.Ptr(float32(-3))
	state := stateFor(s, 1, tunables(nil))
	if got := state.Settings.DoFKernelSize; got != config.KernelSizeMax {
		t.Fatalf("kernel size = %d, want %d", got, config.KernelSizeMax)
	}
	if got := state.Settings.ShadowBias; got != 0 {
		t.Fatalf("shadow bias = %v, want 0", got)
	}

	f := newFixture(t)
	s.Settings.DepthOfField = config.Ptr(true)
	if err := f.comp.Render(stateFor(s, 1, tunables(nil))); err != nil {
		t.Fatal(err)
	}
	out := f.dev.OutputJournal()
	if got := out[len(out)-1].Items[0].Uniforms["kernel_size"]; got != int32(config.KernelSizeMax) {
		t.Fatalf("blur kernel uniform = %v", got)
	}
}

func TestRenderAbortsOnUnresolvedMesh(t *testing.T) {
	f := newFixture(t)
	s := reefScene()
	findObject(s, "fish").Mesh = "missing"

	err := f.comp.Render(stateFor(s, 1, tunables(nil)))
	var rre *ResourceResolutionError
	if !errors.As(err, &rre) || rre.Kind != KindMesh {
		t.Fatalf("err = %v, want mesh ResourceResolutionError", err)
	}
	if f.comp.Targets().Depth() != 0 || f.dev.BoundFramebuffer() != gpu.DefaultFramebuffer {
		t.Fatalf("binding leaked after aborted frame")
	}
	if n := len(f.dev.OutputJournal()); n != 0 {
		t.Fatalf("aborted frame reached the output: %d batches", n)
	}
}

func TestRenderResizesTargets(t *testing.T) {
	f := newFixture(t)
	before := f.comp.Targets().Get(TargetBase)

	s := reefScene()
	st := stateFor(s, 1, tunables(nil))
	st.Frame.Width, st.Frame.Height = 80, 20
	f.dev.ResizeOutput(80, 20)
	if err := f.comp.Render(st); err != nil {
		t.Fatal(err)
	}
	after := f.comp.Targets().Get(TargetBase)
	if after == before {
		t.Fatalf("targets not recreated")
	}
	if w, h := f.dev.TextureSize(after); w != 80 || h != 20 {
		t.Fatalf("base is %dx%d", w, h)
	}
	if got := s.Camera.AspectRatio(); got != 4 {
		t.Fatalf("aspect = %v, want 4", got)
	}
}

func TestRenderZeroSizeFrame(t *testing.T) {
	f := newFixture(t)
	s := reefScene()
	st := stateFor(s, 1, tunables(nil))
	st.Frame.Width = 0
	if err := f.comp.Render(st); err != nil {
		t.Fatal(err)
	}
	if n := len(f.dev.Records()); n != 0 {
		t.Fatalf("%d batches for a zero-size frame", n)
	}
}

func TestSpecOverrideIsValidated(t *testing.T) {
	dev := softgpu.New(testWidth, testHeight)
	res := newResources(t, dev)
	broken := ShadowsSpec()
	delete(broken.Uniforms, "shadow_bias")

	_, err := NewCompositor(dev, res, Options{Width: testWidth, Height: testHeight, Shaders: assets.FS, Specs: []PassSpec{broken}})
	var cfg *ConfigurationError
	if !errors.As(err, &cfg) {
		t.Fatalf("err = %v, want ConfigurationError", err)
	}
	if n := len(dev.LiveTextures()); n != 2 {
		t.Fatalf("%d textures alive after failed construction, want 2 (white, stripes)", n)
	}
}

func TestDisposeReleasesTargets(t *testing.T) {
	dev := softgpu.New(testWidth, testHeight)
	res := newResources(t, dev)
	comp, err := NewCompositor(dev, res, Options{Width: testWidth, Height: testHeight, Shaders: assets.FS})
	if err != nil {
		t.Fatal(err)
	}
	comp.Dispose()
	res.Release()
	if live := dev.LiveTextures(); len(live) != 0 {
		t.Fatalf("textures still alive: %v", live)
	}
}
