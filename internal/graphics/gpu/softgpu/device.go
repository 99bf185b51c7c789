// Package softgpu is an in-memory gpu.Device. It does not rasterize: clears
// write pixels, draws are appended to the journal of the bound target. The
// journal is the target's content for comparison purposes, which makes the
// device suitable for headless runs and for testing pass composition.
package softgpu

import (
	"fmt"
	"image"
	"sort"

	"reefview/internal/graphics/gpu"

	"github.com/go-gl/mathgl/mgl32"
)

// DrawRecord is one submitted batch as seen by the device.
type DrawRecord struct {
	Framebuffer gpu.Framebuffer
	Label       string
	Program     string
	Blend       gpu.BlendState
	Depth       gpu.DepthState
	Items       []gpu.DrawItem
}

type surface struct {
	width, height int
	pixels        []mgl32.Vec4
	journal       []DrawRecord
}

type framebuffer struct {
	color gpu.Texture
}

type program struct {
	label      string
	uniforms   []string
	attributes []string
}

// Device implements gpu.Device in memory.
type Device struct {
	nextID uint32

	textures     map[gpu.Texture]*surface
	framebuffers map[gpu.Framebuffer]*framebuffer
	programs     map[uint32]*program
	meshes       map[gpu.Mesh]gpu.MeshData

	output *surface
	bound  gpu.Framebuffer

	viewportW, viewportH int

	records  []DrawRecord
	released bool
}

// New returns a device whose default output surface is width x height.
func New(width, height int) *Device {
	return &Device{
		textures:     make(map[gpu.Texture]*surface),
		framebuffers: make(map[gpu.Framebuffer]*framebuffer),
		programs:     make(map[uint32]*program),
		meshes:       make(map[gpu.Mesh]gpu.MeshData),
		output:       newSurface(width, height),
		viewportW:    width,
		viewportH:    height,
	}
}

func newSurface(w, h int) *surface {
	return &surface{width: w, height: h, pixels: make([]mgl32.Vec4, w*h)}
}

func (d *Device) id() uint32 {
	d.nextID++
	return d.nextID
}

// ResizeOutput changes the size of the default output surface, as a window resize would.
func (d *Device) ResizeOutput(width, height int) {
	d.output = newSurface(width, height)
}

// CompileProgram reflects the declared uniforms and vertex inputs from source.
func (d *Device) CompileProgram(label, vertexSrc, fragmentSrc string) (*gpu.Program, error) {
	if vertexSrc == "" || fragmentSrc == "" {
		return nil, fmt.Errorf("program %s: empty shader source", label)
	}
	p := &program{
		label:      label,
		uniforms:   gpu.ParseUniforms(vertexSrc, fragmentSrc),
		attributes: gpu.ParseAttributes(vertexSrc),
	}
	id := d.id()
	d.programs[id] = p
	return &gpu.Program{ID: id, Label: label, Uniforms: p.uniforms, Attributes: p.attributes}, nil
}

func (d *Device) DeleteProgram(p *gpu.Program) {
	if p != nil {
		delete(d.programs, p.ID)
	}
}

func (d *Device) CreateRenderTarget(width, height int, opts gpu.TargetOptions) (gpu.RenderTarget, error) {
	if width <= 0 || height <= 0 {
		return gpu.RenderTarget{}, fmt.Errorf("invalid render target size %dx%d", width, height)
	}
	tex := gpu.Texture(d.id())
	d.textures[tex] = newSurface(width, height)
	fb := gpu.Framebuffer(d.id())
	d.framebuffers[fb] = &framebuffer{color: tex}
	return gpu.RenderTarget{Framebuffer: fb, Color: tex, Width: width, Height: height, Options: opts}, nil
}

func (d *Device) DeleteRenderTarget(rt gpu.RenderTarget) {
	delete(d.framebuffers, rt.Framebuffer)
	delete(d.textures, rt.Color)
}

func (d *Device) UploadTexture(img *image.RGBA, _ gpu.WrapMode) (gpu.Texture, error) {
	if img == nil {
		return 0, fmt.Errorf("nil image")
	}
	b := img.Bounds()
	s := newSurface(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := img.RGBAAt(b.Min.X+x, b.Min.Y+y)
			s.pixels[y*s.width+x] = mgl32.Vec4{
				float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255,
			}
		}
	}
	tex := gpu.Texture(d.id())
	d.textures[tex] = s
	return tex, nil
}

func (d *Device) DeleteTexture(tex gpu.Texture) {
	delete(d.textures, tex)
}

func (d *Device) UploadMesh(data gpu.MeshData) (gpu.Mesh, error) {
	if len(data.Positions) == 0 {
		return 0, fmt.Errorf("mesh has no positions")
	}
	for _, f := range data.Faces {
		if int(f) >= len(data.Positions) {
			return 0, fmt.Errorf("face index %d out of range (%d vertices)", f, len(data.Positions))
		}
	}
	m := gpu.Mesh(d.id())
	d.meshes[m] = data
	return m, nil
}

func (d *Device) DeleteMesh(m gpu.Mesh) {
	delete(d.meshes, m)
}

// BindFramebuffer panics on unknown handles, as binding a deleted FBO is a programming error.
func (d *Device) BindFramebuffer(fb gpu.Framebuffer) {
	if fb != gpu.DefaultFramebuffer {
		if _, ok := d.framebuffers[fb]; !ok {
			panic(fmt.Sprintf("softgpu: bind of unknown framebuffer %d", fb))
		}
	}
	d.bound = fb
}

func (d *Device) BoundFramebuffer() gpu.Framebuffer {
	return d.bound
}

func (d *Device) Viewport(width, height int) {
	d.viewportW, d.viewportH = width, height
}

func (d *Device) ViewportSize() (int, int) {
	return d.viewportW, d.viewportH
}

// Clear fills the bound target with color and discards its journal.
func (d *Device) Clear(color mgl32.Vec4, _ float32) {
	s := d.boundSurface()
	for i := range s.pixels {
		s.pixels[i] = color
	}
	s.journal = nil
}

// Draw validates the batch against the program interface and records it.
func (d *Device) Draw(batch gpu.DrawBatch) error {
	if batch.Program == nil {
		return fmt.Errorf("batch %s: nil program", batch.Label)
	}
	p, ok := d.programs[batch.Program.ID]
	if !ok {
		return fmt.Errorf("batch %s: unknown program %d", batch.Label, batch.Program.ID)
	}
	bound := make(map[string]bool, len(batch.Attributes))
	for _, a := range batch.Attributes {
		bound[a.Name] = true
	}
	for _, a := range p.attributes {
		if !bound[a] {
			return fmt.Errorf("batch %s: attribute %s not bound", batch.Label, a)
		}
	}
	for i, item := range batch.Items {
		if _, ok := d.meshes[item.Mesh]; !ok {
			return fmt.Errorf("batch %s item %d: unknown mesh %d", batch.Label, i, item.Mesh)
		}
		for _, u := range p.uniforms {
			v, ok := item.Uniforms[u]
			if !ok {
				return fmt.Errorf("batch %s item %d: uniform %s has no value", batch.Label, i, u)
			}
			if tex, isTex := v.(gpu.Texture); isTex {
				if _, ok := d.textures[tex]; !ok {
					return fmt.Errorf("batch %s item %d: uniform %s samples unknown texture %d", batch.Label, i, u, tex)
				}
			}
		}
	}

	rec := DrawRecord{
		Framebuffer: d.bound,
		Label:       batch.Label,
		Program:     p.label,
		Blend:       batch.Blend,
		Depth:       batch.Depth,
		Items:       append([]gpu.DrawItem(nil), batch.Items...),
	}
	d.records = append(d.records, rec)
	s := d.boundSurface()
	s.journal = append(s.journal, rec)
	return nil
}

// Release drops every resource.
func (d *Device) Release() {
	d.textures = make(map[gpu.Texture]*surface)
	d.framebuffers = make(map[gpu.Framebuffer]*framebuffer)
	d.programs = make(map[uint32]*program)
	d.meshes = make(map[gpu.Mesh]gpu.MeshData)
	d.released = true
}

func (d *Device) boundSurface() *surface {
	if d.bound == gpu.DefaultFramebuffer {
		return d.output
	}
	return d.textures[d.framebuffers[d.bound].color]
}

// Records returns every batch submitted since the last ResetRecords.
func (d *Device) Records() []DrawRecord {
	return d.records
}

// ResetRecords clears the submission log. Target contents are untouched.
func (d *Device) ResetRecords() {
	d.records = nil
}

// Journal returns the draws accumulated in a texture since it was last cleared.
func (d *Device) Journal(tex gpu.Texture) []DrawRecord {
	if s, ok := d.textures[tex]; ok {
		return s.journal
	}
	return nil
}

// OutputJournal returns the draws accumulated on the default output surface.
func (d *Device) OutputJournal() []DrawRecord {
	return d.output.journal
}

// OutputPixels returns a copy of the default output surface.
func (d *Device) OutputPixels() []mgl32.Vec4 {
	return append([]mgl32.Vec4(nil), d.output.pixels...)
}

// Pixel returns the texel of tex at (x, y).
func (d *Device) Pixel(tex gpu.Texture, x, y int) mgl32.Vec4 {
	s := d.textures[tex]
	return s.pixels[y*s.width+x]
}

// TextureSize reports the dimensions of tex, or zeros if it does not exist.
func (d *Device) TextureSize(tex gpu.Texture) (int, int) {
	if s, ok := d.textures[tex]; ok {
		return s.width, s.height
	}
	return 0, 0
}

// Pixels returns a copy of all texels of tex in row-major order.
func (d *Device) Pixels(tex gpu.Texture) []mgl32.Vec4 {
	s, ok := d.textures[tex]
	if !ok {
		return nil
	}
	return append([]mgl32.Vec4(nil), s.pixels...)
}

// LiveTextures returns the handles of all textures currently allocated, sorted.
func (d *Device) LiveTextures() []gpu.Texture {
	out := make([]gpu.Texture, 0, len(d.textures))
	for t := range d.textures {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Released reports whether Release has been called.
func (d *Device) Released() bool {
	return d.released
}

var _ gpu.Device = (*Device)(nil)
