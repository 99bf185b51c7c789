// Package glgpu implements gpu.Device on OpenGL 4.1 core. All calls must be
// made on the thread that owns the GL context.
package glgpu

import (
	"fmt"
	"image"

	"reefview/internal/graphics/gpu"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

type meshBuffers struct {
	positions  uint32
	normals    uint32
	texCoords  uint32
	elements   uint32
	indexCount int32
}

type targetBuffers struct {
	depth uint32
}

// Device is the OpenGL backend.
type Device struct {
	log *zap.Logger

	vao      uint32
	programs map[uint32]*programInfo
	meshes   map[gpu.Mesh]*meshBuffers
	targets  map[gpu.Framebuffer]*targetBuffers
	nextMesh uint32

	viewportW, viewportH int
}

// New initializes GL function pointers and returns a device. The GL context
// must already be current.
func New(log *zap.Logger, width, height int) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl init: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	d := &Device{
		log:      log.Named("glgpu"),
		programs: make(map[uint32]*programInfo),
		meshes:   make(map[gpu.Mesh]*meshBuffers),
		targets:  make(map[gpu.Framebuffer]*targetBuffers),
	}
	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)
	gl.Enable(gl.DEPTH_TEST)
	d.Viewport(width, height)

	d.log.Info("OpenGL device initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)
	return d, nil
}

func (d *Device) CreateRenderTarget(width, height int, opts gpu.TargetOptions) (gpu.RenderTarget, error) {
	if width <= 0 || height <= 0 {
		return gpu.RenderTarget{}, fmt.Errorf("invalid render target size %dx%d", width, height)
	}

	internal, format, xtype := textureFormat(opts)

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	wrap := wrapMode(opts.Wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, int32(width), int32(height), 0, format, xtype, nil)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	var depth uint32
	gl.GenRenderbuffers(1, &depth)
	gl.BindRenderbuffer(gl.RENDERBUFFER, depth)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, int32(width), int32(height))
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)

	var prev int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prev)

	var fbo uint32
	gl.GenFramebuffers(1, &fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, tex, 0)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, depth)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prev))

	if status != gl.FRAMEBUFFER_COMPLETE {
		gl.DeleteFramebuffers(1, &fbo)
		gl.DeleteRenderbuffers(1, &depth)
		gl.DeleteTextures(1, &tex)
		return gpu.RenderTarget{}, fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}

	d.targets[gpu.Framebuffer(fbo)] = &targetBuffers{depth: depth}
	return gpu.RenderTarget{
		Framebuffer: gpu.Framebuffer(fbo),
		Color:       gpu.Texture(tex),
		Width:       width,
		Height:      height,
		Options:     opts,
	}, nil
}

func (d *Device) DeleteRenderTarget(rt gpu.RenderTarget) {
	fbo := uint32(rt.Framebuffer)
	tex := uint32(rt.Color)
	if tb, ok := d.targets[rt.Framebuffer]; ok {
		gl.DeleteRenderbuffers(1, &tb.depth)
		delete(d.targets, rt.Framebuffer)
	}
	gl.DeleteFramebuffers(1, &fbo)
	gl.DeleteTextures(1, &tex)
}

// UploadTexture creates an RGBA8 texture with linear filtering.
func (d *Device) UploadTexture(img *image.RGBA, wrap gpu.WrapMode) (gpu.Texture, error) {
	if img == nil {
		return 0, fmt.Errorf("nil image")
	}
	var texture uint32
	gl.GenTextures(1, &texture)
	gl.BindTexture(gl.TEXTURE_2D, texture)

	w := wrapMode(wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, w)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, w)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA,
		int32(img.Rect.Size().X),
		int32(img.Rect.Size().Y),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		gl.Ptr(img.Pix),
	)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return gpu.Texture(texture), nil
}

func (d *Device) DeleteTexture(tex gpu.Texture) {
	t := uint32(tex)
	gl.DeleteTextures(1, &t)
}

// UploadMesh stores each vertex stream in its own buffer so programs can
// bind any subset of them.
func (d *Device) UploadMesh(data gpu.MeshData) (gpu.Mesh, error) {
	if len(data.Positions) == 0 {
		return 0, fmt.Errorf("mesh has no positions")
	}
	mb := &meshBuffers{indexCount: int32(len(data.Faces))}
	mb.positions = uploadVec3(data.Positions)
	if len(data.Normals) > 0 {
		mb.normals = uploadVec3(data.Normals)
	}
	if len(data.TexCoords) > 0 {
		mb.texCoords = uploadVec2(data.TexCoords)
	}
	gl.GenBuffers(1, &mb.elements)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, mb.elements)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data.Faces)*4, gl.Ptr(data.Faces), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)

	d.nextMesh++
	id := gpu.Mesh(d.nextMesh)
	d.meshes[id] = mb
	return id, nil
}

func (d *Device) DeleteMesh(m gpu.Mesh) {
	mb, ok := d.meshes[m]
	if !ok {
		return
	}
	for _, b := range []uint32{mb.positions, mb.normals, mb.texCoords, mb.elements} {
		if b != 0 {
			gl.DeleteBuffers(1, &b)
		}
	}
	delete(d.meshes, m)
}

func uploadVec3(v []mgl32.Vec3) uint32 {
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(v)*3*4, gl.Ptr(&v[0][0]), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return vbo
}

func uploadVec2(v []mgl32.Vec2) uint32 {
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(v)*2*4, gl.Ptr(&v[0][0]), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return vbo
}

func (d *Device) BindFramebuffer(fb gpu.Framebuffer) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fb))
}

func (d *Device) BoundFramebuffer() gpu.Framebuffer {
	var fb int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &fb)
	return gpu.Framebuffer(fb)
}

func (d *Device) Viewport(width, height int) {
	d.viewportW, d.viewportH = width, height
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (d *Device) ViewportSize() (int, int) {
	return d.viewportW, d.viewportH
}

// Clear clears color and depth of the bound framebuffer. The depth mask is
// forced on first, since glClear honours it.
func (d *Device) Clear(color mgl32.Vec4, depth float32) {
	gl.DepthMask(true)
	gl.ClearColor(color[0], color[1], color[2], color[3])
	gl.ClearDepthf(depth)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Release deletes every mesh, target and program the device still tracks.
func (d *Device) Release() {
	for m := range d.meshes {
		d.DeleteMesh(m)
	}
	for fb, tb := range d.targets {
		f := uint32(fb)
		gl.DeleteRenderbuffers(1, &tb.depth)
		gl.DeleteFramebuffers(1, &f)
	}
	d.targets = make(map[gpu.Framebuffer]*targetBuffers)
	for id := range d.programs {
		gl.DeleteProgram(id)
	}
	d.programs = make(map[uint32]*programInfo)
	gl.DeleteVertexArrays(1, &d.vao)
	d.log.Info("OpenGL device released")
}

func textureFormat(opts gpu.TargetOptions) (internal int32, format uint32, xtype uint32) {
	float := opts.Type == gpu.TypeFloat
	switch opts.Format {
	case gpu.FormatRGB:
		format = gl.RGB
		internal = gl.RGB8
		if float {
			internal = gl.RGB32F
		}
	case gpu.FormatAlpha:
		format = gl.RED
		internal = gl.R8
		if float {
			internal = gl.R32F
		}
	default:
		format = gl.RGBA
		internal = gl.RGBA8
		if float {
			internal = gl.RGBA32F
		}
	}
	xtype = gl.UNSIGNED_BYTE
	if float {
		xtype = gl.FLOAT
	}
	return internal, format, xtype
}

func wrapMode(w gpu.WrapMode) int32 {
	switch w {
	case gpu.WrapRepeat:
		return gl.REPEAT
	case gpu.WrapMirror:
		return gl.MIRRORED_REPEAT
	default:
		return gl.CLAMP_TO_EDGE
	}
}

var _ gpu.Device = (*Device)(nil)
