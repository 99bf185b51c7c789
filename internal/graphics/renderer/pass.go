package renderer

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"reefview/internal/graphics/gpu"
	"reefview/internal/profiling"
	"reefview/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Resolver resolves mesh and texture references.
type Resolver interface {
	Mesh(name string) (gpu.Mesh, error)
	Texture(name string) (gpu.Texture, error)
	White() gpu.Texture
}

// NoClip is a clip plane that keeps everything.
var NoClip = mgl32.Vec4{0, 0, 0, 1}

// View is the viewpoint a pass is rendered from.
type View struct {
	Name     string
	Matrices *scene.MatrixCache
	Eye      mgl32.Vec3
	LookAt   mgl32.Vec3

	// ClipPlane (n, d) keeps world points with dot(n, p) + d >= 0.
	ClipPlane mgl32.Vec4

	// Skip is never drawn in this view. Only, when set, is the single
	// object drawn.
	Skip *scene.Object
	Only *scene.Object
}

// Inputs are extra named values a pass reads, usually textures written by
// earlier passes.
type Inputs map[string]any

// DrawInput is everything a uniform source may read for one object.
type DrawInput struct {
	State    *SceneState
	View     *View
	Object   *scene.Object
	Matrices scene.ObjectMatrices
	Mesh     gpu.Mesh
	Texture  gpu.Texture
	Textured bool
	Inputs   Inputs
}

// UniformSource computes one uniform value for one object. Returning nil
// means the value is unavailable and aborts the frame.
type UniformSource func(in *DrawInput) any

// PassSpec describes one pass as data: which program, which uniforms bound
// to what, which objects, and the pipeline state.
type PassSpec struct {
	Kind           PassKind
	Name           string
	VertexShader   string
	FragmentShader string
	Uniforms       map[string]UniformSource
	Attributes     []gpu.AttributeBinding // nil binds gpu.DefaultAttributes
	Include        func(*scene.Object) bool
	Blend          gpu.BlendState
	Depth          gpu.DepthState
}

// ShaderRenderer draws the objects selected by a PassSpec with one program
// in a single batch. It keeps no state between calls besides the program.
type ShaderRenderer struct {
	spec    PassSpec
	program *gpu.Program
	dev     gpu.Device
	res     Resolver
	log     *zap.Logger
	names   []string
}

// NewShaderRenderer compiles the pass's shaders from shaders and checks that
// every uniform and attribute the program declares has a binding.
func NewShaderRenderer(dev gpu.Device, res Resolver, shaders fs.FS, spec PassSpec, log *zap.Logger) (*ShaderRenderer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if spec.Name == "" {
		spec.Name = spec.Kind.String()
	}
	if spec.Attributes == nil {
		spec.Attributes = gpu.DefaultAttributes
	}
	vs, err := fs.ReadFile(shaders, spec.VertexShader)
	if err != nil {
		return nil, &ConfigurationError{Component: spec.Name, Reason: "read vertex shader", Err: err}
	}
	frag, err := fs.ReadFile(shaders, spec.FragmentShader)
	if err != nil {
		return nil, &ConfigurationError{Component: spec.Name, Reason: "read fragment shader", Err: err}
	}
	program, err := dev.CompileProgram(spec.Name, string(vs), string(frag))
	if err != nil {
		return nil, &ConfigurationError{Component: spec.Name, Reason: "compile program", Err: err}
	}

	for _, u := range program.Uniforms {
		if _, ok := spec.Uniforms[u]; !ok {
			dev.DeleteProgram(program)
			return nil, &ConfigurationError{Component: spec.Name, Reason: fmt.Sprintf("uniform %q has no binding", u)}
		}
	}
	for _, a := range program.Attributes {
		if !hasAttribute(spec.Attributes, a) {
			dev.DeleteProgram(program)
			return nil, &ConfigurationError{Component: spec.Name, Reason: fmt.Sprintf("attribute %q has no binding", a)}
		}
	}

	names := make([]string, 0, len(spec.Uniforms))
	for name := range spec.Uniforms {
		names = append(names, name)
	}
	sort.Strings(names)

	log.Debug("pass ready", zap.String("pass", spec.Name), zap.Strings("uniforms", program.Uniforms))
	return &ShaderRenderer{spec: spec, program: program, dev: dev, res: res, log: log, names: names}, nil
}

func hasAttribute(bindings []gpu.AttributeBinding, name string) bool {
	for _, b := range bindings {
		if b.Name == name {
			return true
		}
	}
	return false
}

// Name returns the pass name.
func (r *ShaderRenderer) Name() string { return r.spec.Name }

// Spec returns the pass description.
func (r *ShaderRenderer) Spec() PassSpec { return r.spec }

// Includes reports whether the pass draws o.
func (r *ShaderRenderer) Includes(o *scene.Object) bool {
	return r.spec.Include == nil || r.spec.Include(o)
}

// Render draws every included object of the scene, in scene order, into the
// currently bound target. Nothing is submitted when no object survives.
func (r *ShaderRenderer) Render(state *SceneState, view *View, inputs Inputs) error {
	defer profiling.Track("pass." + r.spec.Name)()

	frame, computed := view.Matrices.Frame()
	if !computed || frame != state.Frame.Number {
		return fmt.Errorf("pass %s, view %s: %w", r.spec.Name, view.Name, ErrStaleMatrices)
	}

	objects := state.Scene.Objects
	items := make([]gpu.DrawItem, 0, len(objects))
	for _, o := range objects {
		if o == view.Skip || (view.Only != nil && o != view.Only) || !r.Includes(o) {
			continue
		}
		in, err := r.resolve(state, view, o, inputs)
		if err != nil {
			return err
		}
		uniforms := make(map[string]any, len(r.names))
		for _, name := range r.names {
			v := r.spec.Uniforms[name](in)
			if v == nil {
				return &ResourceResolutionError{Pass: r.spec.Name, Kind: KindInput, Reference: name}
			}
			uniforms[name] = v
		}
		items = append(items, gpu.DrawItem{Label: o.Name, Mesh: in.Mesh, Uniforms: uniforms})
	}

	if len(items) == 0 {
		r.log.Debug("empty batch skipped", zap.String("pass", r.spec.Name), zap.String("view", view.Name))
		return nil
	}
	err := r.dev.Draw(gpu.DrawBatch{
		Label:      r.spec.Name,
		Program:    r.program,
		Blend:      r.spec.Blend,
		Depth:      r.spec.Depth,
		Attributes: r.spec.Attributes,
		Items:      items,
	})
	if err != nil {
		return fmt.Errorf("pass %s: draw: %w", r.spec.Name, err)
	}
	return nil
}

func (r *ShaderRenderer) resolve(state *SceneState, view *View, o *scene.Object, inputs Inputs) (*DrawInput, error) {
	mesh, err := r.res.Mesh(o.Mesh)
	if err != nil {
		return nil, &ResourceResolutionError{Pass: r.spec.Name, Kind: KindMesh, Reference: o.Mesh, Err: err}
	}
	tex, textured := r.res.White(), false
	if o.Material.IsTextured() {
		tex, err = r.res.Texture(o.Material.Texture)
		if err != nil {
			return nil, &ResourceResolutionError{Pass: r.spec.Name, Kind: KindTexture, Reference: o.Material.Texture, Err: err}
		}
		textured = true
	}
	m, ok := view.Matrices.Get(o)
	if !ok {
		return nil, &ResourceResolutionError{
			Pass: r.spec.Name, Kind: KindMatrices, Reference: o.Name,
			Err: errors.New("object missing from matrix cache"),
		}
	}
	return &DrawInput{
		State:    state,
		View:     view,
		Object:   o,
		Matrices: m,
		Mesh:     mesh,
		Texture:  tex,
		Textured: textured,
		Inputs:   inputs,
	}, nil
}

// Dispose deletes the program.
func (r *ShaderRenderer) Dispose() {
	r.dev.DeleteProgram(r.program)
}
