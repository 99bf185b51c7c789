// Package gpu defines the backend-neutral contract the renderer draws through.
// Backends (OpenGL, the in-memory recorder) implement Device.
package gpu

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// Texture is a backend texture handle. Zero is never a valid texture.
type Texture uint32

// Framebuffer is a backend framebuffer handle. Zero is the default output surface.
type Framebuffer uint32

// DefaultFramebuffer is the output surface presented to the window.
const DefaultFramebuffer Framebuffer = 0

// Mesh is a handle to uploaded vertex and index buffers.
type Mesh uint32

// WrapMode selects texture coordinate wrapping.
type WrapMode int

const (
	WrapClamp WrapMode = iota
	WrapRepeat
	WrapMirror
)

// Format is the channel layout of a color target.
type Format int

const (
	FormatRGBA Format = iota
	FormatRGB
	FormatAlpha
)

// PixelType is the per-channel storage type of a color target.
type PixelType int

const (
	TypeFloat PixelType = iota
	TypeUint8
)

// TargetOptions configures an off-screen render target.
type TargetOptions struct {
	Wrap   WrapMode
	Format Format
	Type   PixelType
}

// RenderTarget is a color texture plus the framebuffer (with depth attachment) that writes it.
type RenderTarget struct {
	Framebuffer Framebuffer
	Color       Texture
	Width       int
	Height      int
	Options     TargetOptions
}

// CompareFunc is a depth comparison function. The zero value is LessEqual.
type CompareFunc int

const (
	CompareLessEqual CompareFunc = iota
	CompareLess
	CompareEqual
	CompareGreater
	CompareGreaterEqual
	CompareAlways
	CompareNever
)

// DepthState configures depth testing. The zero value tests with <= and writes depth.
type DepthState struct {
	Disabled bool
	ReadOnly bool
	Func     CompareFunc
}

// BlendFactor is a blend function operand.
type BlendFactor int

const (
	BlendOne BlendFactor = iota
	BlendZero
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstAlpha
	BlendOneMinusDstAlpha
	BlendSrcColor
	BlendOneMinusSrcColor
)

// BlendEquation combines source and destination terms.
type BlendEquation int

const (
	EquationAdd BlendEquation = iota
	EquationSubtract
	EquationReverseSubtract
	EquationMin
	EquationMax
)

// BlendState configures color blending. The zero value disables blending.
type BlendState struct {
	Enabled  bool
	SrcRGB   BlendFactor
	DstRGB   BlendFactor
	SrcAlpha BlendFactor
	DstAlpha BlendFactor
	Equation BlendEquation
}

// AlphaBlend is straight "src alpha, one minus src alpha" blending with additive equation.
var AlphaBlend = BlendState{
	Enabled:  true,
	SrcRGB:   BlendSrcAlpha,
	DstRGB:   BlendOneMinusSrcAlpha,
	SrcAlpha: BlendOne,
	DstAlpha: BlendOneMinusSrcAlpha,
	Equation: EquationAdd,
}

// VertexSource names a per-vertex stream of a mesh.
type VertexSource int

const (
	SourcePosition VertexSource = iota
	SourceNormal
	SourceTexCoord
)

// AttributeBinding maps a shader attribute to a mesh vertex stream.
type AttributeBinding struct {
	Name   string
	Source VertexSource
}

// DefaultAttributes is the standard position/normal/texcoord mesh layout.
var DefaultAttributes = []AttributeBinding{
	{Name: "vertex_position", Source: SourcePosition},
	{Name: "vertex_normal", Source: SourceNormal},
	{Name: "vertex_tex_coords", Source: SourceTexCoord},
}

// Program is a compiled and linked GPU program with its reflected interface.
type Program struct {
	ID         uint32
	Label      string
	Uniforms   []string
	Attributes []string
}

// HasUniform reports whether the program declares the named uniform.
func (p *Program) HasUniform(name string) bool {
	for _, u := range p.Uniforms {
		if u == name {
			return true
		}
	}
	return false
}

// MeshData is CPU-side geometry handed to UploadMesh.
type MeshData struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	TexCoords []mgl32.Vec2
	Faces     []uint32
}

// DrawItem is one object's contribution to a batch.
type DrawItem struct {
	Label    string // object name, for errors and tooling
	Mesh     Mesh
	Uniforms map[string]any
}

// DrawBatch is a single submission: one program, one pipeline state, many items.
type DrawBatch struct {
	Label      string
	Program    *Program
	Blend      BlendState
	Depth      DepthState
	Attributes []AttributeBinding
	Items      []DrawItem
}

// Device is the GPU surface used by the renderer. Implementations are not
// safe for concurrent use; all calls happen on the frame thread.
type Device interface {
	CompileProgram(label, vertexSrc, fragmentSrc string) (*Program, error)
	DeleteProgram(p *Program)

	CreateRenderTarget(width, height int, opts TargetOptions) (RenderTarget, error)
	DeleteRenderTarget(rt RenderTarget)

	UploadTexture(img *image.RGBA, wrap WrapMode) (Texture, error)
	DeleteTexture(tex Texture)

	UploadMesh(data MeshData) (Mesh, error)
	DeleteMesh(m Mesh)

	BindFramebuffer(fb Framebuffer)
	BoundFramebuffer() Framebuffer
	Viewport(width, height int)
	ViewportSize() (int, int)
	Clear(color mgl32.Vec4, depth float32)

	Draw(batch DrawBatch) error

	Release()
}
