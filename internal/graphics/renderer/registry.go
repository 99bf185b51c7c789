package renderer

import (
	"fmt"

	"reefview/internal/graphics/gpu"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Names of the targets owned by the compositor.
const (
	TargetBase             = "base"
	TargetShadows          = "shadows"
	TargetFog              = "fog"
	TargetShadowsAndBase   = "shadows_and_base"
	TargetMirrorReflection = "mirror_reflection"
	TargetShadowDepth      = "shadow_depth"
)

type targetEntry struct {
	name string
	opts gpu.TargetOptions
	rt   gpu.RenderTarget
}

type binding struct {
	name          string
	framebuffer   gpu.Framebuffer
	width, height int
}

// TargetRegistry owns named off-screen targets, all sized to the viewport.
type TargetRegistry struct {
	dev gpu.Device
	log *zap.Logger

	width, height int
	targets       map[string]*targetEntry
	order         []string
	stack         []binding

	// ClearColor is written to a target at the start of every RenderInto.
	ClearColor mgl32.Vec4
}

// NewTargetRegistry returns an empty registry for a width x height viewport.
func NewTargetRegistry(dev gpu.Device, width, height int, log *zap.Logger) *TargetRegistry {
	if log == nil {
		log = zap.NewNop()
	}
	return &TargetRegistry{
		dev:        dev,
		log:        log.Named("registry"),
		width:      width,
		height:     height,
		targets:    make(map[string]*targetEntry),
		ClearColor: mgl32.Vec4{0, 0, 0, 1},
	}
}

// Create registers a viewport-sized target. Names are unique.
func (r *TargetRegistry) Create(name string, opts gpu.TargetOptions) error {
	if _, ok := r.targets[name]; ok {
		return &ConfigurationError{Component: "registry", Reason: fmt.Sprintf("target %q already exists", name)}
	}
	rt, err := r.dev.CreateRenderTarget(r.width, r.height, opts)
	if err != nil {
		return &ConfigurationError{Component: "registry", Reason: fmt.Sprintf("create target %q", name), Err: err}
	}
	r.targets[name] = &targetEntry{name: name, opts: opts, rt: rt}
	r.order = append(r.order, name)
	r.log.Debug("target created", zap.String("name", name), zap.Int("width", r.width), zap.Int("height", r.height))
	return nil
}

func (r *TargetRegistry) lookup(name string) *targetEntry {
	e, ok := r.targets[name]
	if !ok {
		panic(fmt.Sprintf("renderer: unknown render target %q", name))
	}
	return e
}

// Get returns the color texture of a target. It panics on unknown names.
func (r *TargetRegistry) Get(name string) gpu.Texture {
	return r.lookup(name).rt.Color
}

// Target returns the full target description. It panics on unknown names.
func (r *TargetRegistry) Target(name string) gpu.RenderTarget {
	return r.lookup(name).rt
}

// Has reports whether name is registered.
func (r *TargetRegistry) Has(name string) bool {
	_, ok := r.targets[name]
	return ok
}

// Names returns the registered target names in creation order.
func (r *TargetRegistry) Names() []string {
	return append([]string(nil), r.order...)
}

// Size returns the current target size.
func (r *TargetRegistry) Size() (int, int) {
	return r.width, r.height
}

// Depth returns the number of RenderInto calls currently in progress.
func (r *TargetRegistry) Depth() int {
	return len(r.stack)
}

// RenderInto binds the named target, clears its color and depth, runs draw,
// then restores the framebuffer and viewport that were bound before, even if
// draw fails or panics. Calls nest; rendering into a target that is already
// being rendered into is an error.
func (r *TargetRegistry) RenderInto(name string, draw func() error) (gpu.Texture, error) {
	e := r.lookup(name)
	for _, b := range r.stack {
		if b.name == name {
			return e.rt.Color, &ConfigurationError{
				Component: "registry",
				Reason:    fmt.Sprintf("target %q is already being rendered into", name),
			}
		}
	}

	prevFB := r.dev.BoundFramebuffer()
	prevW, prevH := r.dev.ViewportSize()
	r.stack = append(r.stack, binding{name: name, framebuffer: prevFB, width: prevW, height: prevH})
	defer func() {
		top := r.stack[len(r.stack)-1]
		r.stack = r.stack[:len(r.stack)-1]
		r.dev.BindFramebuffer(top.framebuffer)
		r.dev.Viewport(top.width, top.height)
	}()

	r.dev.BindFramebuffer(e.rt.Framebuffer)
	r.dev.Viewport(e.rt.Width, e.rt.Height)
	r.dev.Clear(r.ClearColor, 1)

	if draw != nil {
		if err := draw(); err != nil {
			return e.rt.Color, err
		}
	}
	return e.rt.Color, nil
}

// Resize recreates every target at the new size. It must not be called from
// inside RenderInto.
func (r *TargetRegistry) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid target size %dx%d", width, height)
	}
	if len(r.stack) > 0 {
		return fmt.Errorf("resize during RenderInto of %q", r.stack[len(r.stack)-1].name)
	}
	if width == r.width && height == r.height {
		return nil
	}
	for _, name := range r.order {
		e := r.targets[name]
		rt, err := r.dev.CreateRenderTarget(width, height, e.opts)
		if err != nil {
			return fmt.Errorf("recreate target %q: %w", name, err)
		}
		r.dev.DeleteRenderTarget(e.rt)
		e.rt = rt
	}
	r.log.Info("targets resized",
		zap.Int("from_width", r.width), zap.Int("from_height", r.height),
		zap.Int("width", width), zap.Int("height", height),
		zap.Int("targets", len(r.order)),
	)
	r.width, r.height = width, height
	return nil
}

// Release deletes every target.
func (r *TargetRegistry) Release() {
	for _, name := range r.order {
		r.dev.DeleteRenderTarget(r.targets[name].rt)
	}
	r.targets = make(map[string]*targetEntry)
	r.order = nil
}
