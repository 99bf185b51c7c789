package renderer

import (
	"fmt"
	"io/fs"
	"math"

	"reefview/internal/graphics/gpu"
	"reefview/internal/profiling"
	"reefview/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Light frustum used for shadow mapping.
const (
	lightFOV  = 90.0
	lightNear = 0.1
	lightFar  = 500.0
)

// Compositor runs the fixed pass pipeline for one frame: opaque base (with
// optional mirrors and normals overlay), shadows, fog, then mixing with
// transparency and optional depth of field.
type Compositor struct {
	dev     gpu.Device
	log     *zap.Logger
	targets *TargetRegistry

	preprocessing *ShaderRenderer
	background    *ShaderRenderer
	terrain       *ShaderRenderer
	blinnPhong    *ShaderRenderer
	mirror        *ShaderRenderer
	normals       *ShaderRenderer
	shadowDepth   *ShaderRenderer
	shadows       *ShaderRenderer
	godRays       *ShaderRenderer
	mapMixer      *ShaderRenderer
	transparent   *ShaderRenderer
	depthOfField  *ShaderRenderer

	renderers []*ShaderRenderer

	lightCache  *scene.MatrixCache
	mirrorCache *scene.MatrixCache
}

// Options configures a Compositor.
type Options struct {
	Width, Height int
	Shaders       fs.FS
	// Specs replaces DefaultPassSpecs, matched by Kind. Missing kinds keep
	// their default.
	Specs []PassSpec
	Log   *zap.Logger
}

// NewCompositor compiles every pass and creates the render targets.
func NewCompositor(dev gpu.Device, res Resolver, opts Options) (*Compositor, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	c := &Compositor{
		dev:         dev,
		log:         log.Named("renderer"),
		targets:     NewTargetRegistry(dev, opts.Width, opts.Height, log),
		lightCache:  scene.NewMatrixCache(),
		mirrorCache: scene.NewMatrixCache(),
	}

	specs := make(map[PassKind]PassSpec)
	for _, s := range DefaultPassSpecs() {
		specs[s.Kind] = s
	}
	for _, s := range opts.Specs {
		specs[s.Kind] = s
	}

	slots := map[PassKind]**ShaderRenderer{
		PassPreprocessing: &c.preprocessing,
		PassBackground:    &c.background,
		PassTerrain:       &c.terrain,
		PassOpaque:        &c.blinnPhong,
		PassMirror:        &c.mirror,
		PassNormals:       &c.normals,
		PassShadowDepth:   &c.shadowDepth,
		PassShadows:       &c.shadows,
		PassFog:           &c.godRays,
		PassMapMixer:      &c.mapMixer,
		PassTransparent:   &c.transparent,
		PassDepthOfField:  &c.depthOfField,
	}
	for _, kind := range AllPasses {
		r, err := NewShaderRenderer(dev, res, opts.Shaders, specs[kind], c.log)
		if err != nil {
			c.Dispose()
			return nil, err
		}
		*slots[kind] = r
		c.renderers = append(c.renderers, r)
	}

	color := gpu.TargetOptions{Wrap: gpu.WrapClamp, Format: gpu.FormatRGBA, Type: gpu.TypeUint8}
	float := gpu.TargetOptions{Wrap: gpu.WrapClamp, Format: gpu.FormatRGBA, Type: gpu.TypeFloat}
	for _, t := range []struct {
		name string
		opts gpu.TargetOptions
	}{
		{TargetBase, color},
		{TargetShadows, color},
		{TargetFog, color},
		{TargetShadowsAndBase, color},
		{TargetMirrorReflection, color},
		{TargetShadowDepth, float},
	} {
		if err := c.targets.Create(t.name, t.opts); err != nil {
			c.Dispose()
			return nil, err
		}
	}

	c.log.Info("compositor ready",
		zap.Int("passes", len(c.renderers)),
		zap.Strings("targets", c.targets.Names()),
		zap.Int("width", opts.Width), zap.Int("height", opts.Height),
	)
	return c, nil
}

// Targets returns the render target registry.
func (c *Compositor) Targets() *TargetRegistry {
	return c.targets
}

// Renderers returns the passes in pipeline order.
func (c *Compositor) Renderers() []*ShaderRenderer {
	return c.renderers
}

// Resize recreates the viewport-sized targets.
func (c *Compositor) Resize(width, height int) error {
	return c.targets.Resize(width, height)
}

// Render draws one frame to the default framebuffer. Zero-size frames are
// skipped. Any error aborts the frame; nothing is retried.
func (c *Compositor) Render(state *SceneState) error {
	defer profiling.Track("renderer.Render")()

	w, h := state.Frame.Width, state.Frame.Height
	if w <= 0 || h <= 0 {
		return nil
	}
	if tw, th := c.targets.Size(); tw != w || th != h {
		if err := c.targets.Resize(w, h); err != nil {
			return fmt.Errorf("resize targets: %w", err)
		}
	}

	c.targets.ClearColor = state.Settings.ClearColor
	c.dev.BindFramebuffer(gpu.DefaultFramebuffer)
	c.dev.Viewport(w, h)
	c.dev.Clear(state.BackgroundColor, 1)

	sc := state.Scene
	sc.Camera.UpdateFormatRatio(w, h)
	sc.UpdateMatrices(state.Frame.Number)

	main := &View{
		Name:      "main",
		Matrices:  sc.Matrices,
		Eye:       sc.Camera.Position(),
		LookAt:    sc.Camera.LookAt,
		ClipPlane: NoClip,
	}

	base, err := c.renderBase(state, main)
	if err != nil {
		return err
	}
	shadows, err := c.renderShadows(state, main)
	if err != nil {
		return err
	}
	fog, err := c.renderFog(state, main)
	if err != nil {
		return err
	}
	return c.composite(state, main, Inputs{
		InputShadows: shadows,
		InputBase:    base,
		InputFog:     fog,
	})
}

// renderOpaqueSubsequence draws depth prefill, background, terrain and the
// lit pass from view into the bound target. Mirrors call it again with a
// reflected view.
func (c *Compositor) renderOpaqueSubsequence(state *SceneState, view *View) error {
	for _, r := range []*ShaderRenderer{c.preprocessing, c.background, c.terrain, c.blinnPhong} {
		if err := r.Render(state, view, nil); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compositor) renderBase(state *SceneState, main *View) (gpu.Texture, error) {
	defer profiling.Track("pass.base")()
	return c.targets.RenderInto(TargetBase, func() error {
		if err := c.renderOpaqueSubsequence(state, main); err != nil {
			return err
		}
		if state.Settings.Mirror {
			if err := c.renderMirrors(state, main); err != nil {
				return err
			}
		}
		if state.Settings.RenderNormals {
			return c.normals.Render(state, main, nil)
		}
		return nil
	})
}

// renderMirrors renders, for each reflective object, the opaque subsequence
// seen through it, then draws the object onto the bound target sampling
// that reflection.
func (c *Compositor) renderMirrors(state *SceneState, main *View) error {
	defer profiling.Track("pass.mirror")()
	for _, o := range state.Scene.Objects {
		if !c.mirror.Includes(o) {
			continue
		}
		reflected := c.reflectedView(state, main, o)
		reflection, err := c.targets.RenderInto(TargetMirrorReflection, func() error {
			return c.renderOpaqueSubsequence(state, reflected)
		})
		if err != nil {
			return fmt.Errorf("mirror %s: %w", o.Name, err)
		}
		only := *main
		only.Only = o
		if err := c.mirror.Render(state, &only, Inputs{InputReflection: reflection}); err != nil {
			return err
		}
	}
	return nil
}

// MirrorPlane returns the world plane (n, d) of a reflective object: its
// local XY plane, oriented so that eye is on the positive side.
func MirrorPlane(o *scene.Object, eye mgl32.Vec3) mgl32.Vec4 {
	model := o.Transform.Matrix()
	n := scene.NormalMatrix(model).Mul3x1(mgl32.Vec3{0, 0, 1}).Normalize()
	p := model.Col(3).Vec3()
	d := -n.Dot(p)
	if n.Dot(eye)+d < 0 {
		n, d = n.Mul(-1), -d
	}
	return mgl32.Vec4{n[0], n[1], n[2], d}
}

// ReflectionMatrix reflects world space across plane (n, d) with unit n.
func ReflectionMatrix(plane mgl32.Vec4) mgl32.Mat4 {
	nx, ny, nz, d := plane[0], plane[1], plane[2], plane[3]
	return mgl32.Mat4{
		1 - 2*nx*nx, -2 * nx * ny, -2 * nx * nz, 0,
		-2 * nx * ny, 1 - 2*ny*ny, -2 * ny * nz, 0,
		-2 * nx * nz, -2 * ny * nz, 1 - 2*nz*nz, 0,
		-2 * d * nx, -2 * d * ny, -2 * d * nz, 1,
	}
}

func (c *Compositor) reflectedView(state *SceneState, main *View, mirror *scene.Object) *View {
	plane := MirrorPlane(mirror, main.Eye)
	refl := ReflectionMatrix(plane)
	view := main.Matrices.View().Mul4(refl)
	c.mirrorCache.Compute(state.Frame.Number, view, main.Matrices.Projection(), state.Scene.Objects)
	return &View{
		Name:      "mirror:" + mirror.Name,
		Matrices:  c.mirrorCache,
		Eye:       refl.Mul4x1(main.Eye.Vec4(1)).Vec3(),
		LookAt:    refl.Mul4x1(main.LookAt.Vec4(1)).Vec3(),
		ClipPlane: plane,
		Skip:      mirror,
	}
}

// LightView returns the shadow-map camera of a light aimed at target. A light
// sitting on its target looks straight down.
func LightView(light, target mgl32.Vec3) (view, proj mgl32.Mat4) {
	dir := target.Sub(light)
	if dir.Len() < 1e-6 {
		target = light.Add(mgl32.Vec3{0, 0, -1})
		dir = target.Sub(light)
	}
	up := scene.Up
	if math.Abs(float64(dir.Normalize().Dot(up))) > 0.999 {
		up = mgl32.Vec3{0, 1, 0}
	}
	view = mgl32.LookAtV(light, target, up)
	proj = mgl32.Perspective(mgl32.DegToRad(lightFOV), 1, lightNear, lightFar)
	return view, proj
}

func (c *Compositor) renderShadows(state *SceneState, main *View) (gpu.Texture, error) {
	defer profiling.Track("pass.shadows")()
	return c.targets.RenderInto(TargetShadows, func() error {
		if err := c.preprocessing.Render(state, main, nil); err != nil {
			return err
		}
		lights := state.Scene.Lights
		if len(lights) == 0 {
			return nil
		}
		light := lights[0].Position
		target := state.Scene.Camera.LookAt
		lightView, lightProj := LightView(light, target)
		c.lightCache.Compute(state.Frame.Number, lightView, lightProj, state.Scene.Objects)

		lv := &View{
			Name:      "light",
			Matrices:  c.lightCache,
			Eye:       light,
			LookAt:    target,
			ClipPlane: NoClip,
		}
		depth, err := c.targets.RenderInto(TargetShadowDepth, func() error {
			return c.shadowDepth.Render(state, lv, nil)
		})
		if err != nil {
			return err
		}
		return c.shadows.Render(state, main, Inputs{
			InputShadowMap:           depth,
			InputLightViewProjection: lightProj.Mul4(lightView),
		})
	})
}

func (c *Compositor) renderFog(state *SceneState, main *View) (gpu.Texture, error) {
	defer profiling.Track("pass.fog")()
	return c.targets.RenderInto(TargetFog, func() error {
		return c.godRays.Render(state, main, nil)
	})
}

// composite mixes shadows, base and fog and draws transparency on top,
// either straight to the bound output or, with depth of field on, into
// shadows_and_base which is then blurred onto the output.
func (c *Compositor) composite(state *SceneState, main *View, in Inputs) error {
	defer profiling.Track("pass.composite")()
	mix := func() error {
		if err := c.mapMixer.Render(state, main, in); err != nil {
			return err
		}
		return c.transparent.Render(state, main, nil)
	}
	if !state.Settings.DepthOfField {
		return mix()
	}
	// shadows_and_base starts from the same clear as the output surface, so
	// the pre-blur image matches what the direct path would have shown.
	prevClear := c.targets.ClearColor
	c.targets.ClearColor = state.BackgroundColor
	mixed, err := c.targets.RenderInto(TargetShadowsAndBase, mix)
	c.targets.ClearColor = prevClear
	if err != nil {
		return err
	}
	return c.depthOfField.Render(state, main, Inputs{InputColor: mixed})
}

// Dispose releases programs in reverse order, then the targets.
func (c *Compositor) Dispose() {
	for i := len(c.renderers) - 1; i >= 0; i-- {
		c.renderers[i].Dispose()
	}
	c.renderers = nil
	c.targets.Release()
}
