package glgpu

import (
	"fmt"

	"reefview/internal/graphics/gpu"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Draw applies the batch pipeline state, then binds attributes and uniforms
// per item and issues an indexed draw.
func (d *Device) Draw(batch gpu.DrawBatch) error {
	if batch.Program == nil {
		return fmt.Errorf("batch %s: nil program", batch.Label)
	}
	info, ok := d.programs[batch.Program.ID]
	if !ok {
		return fmt.Errorf("batch %s: unknown program %d", batch.Label, batch.Program.ID)
	}

	gl.UseProgram(batch.Program.ID)
	applyDepth(batch.Depth)
	applyBlend(batch.Blend)
	// Programs with a clip_plane uniform write gl_ClipDistance[0].
	if batch.Program.HasUniform("clip_plane") {
		gl.Enable(gl.CLIP_DISTANCE0)
	}
	defer func() {
		gl.Disable(gl.CLIP_DISTANCE0)
		gl.Disable(gl.BLEND)
		gl.DepthMask(true)
		gl.Enable(gl.DEPTH_TEST)
	}()

	for i, item := range batch.Items {
		mb, ok := d.meshes[item.Mesh]
		if !ok {
			return fmt.Errorf("batch %s item %d (%s): unknown mesh %d", batch.Label, i, item.Label, item.Mesh)
		}
		enabled, err := bindAttributes(info, mb, batch.Attributes)
		if err != nil {
			return fmt.Errorf("batch %s item %d (%s): %w", batch.Label, i, item.Label, err)
		}
		unit := uint32(0)
		for name, loc := range info.uniforms {
			v, ok := item.Uniforms[name]
			if !ok {
				disable(enabled)
				return fmt.Errorf("batch %s item %d (%s): uniform %s has no value", batch.Label, i, item.Label, name)
			}
			if err := setUniform(loc, v, &unit); err != nil {
				disable(enabled)
				return fmt.Errorf("batch %s item %d (%s): uniform %s: %w", batch.Label, i, item.Label, name, err)
			}
		}

		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, mb.elements)
		gl.DrawElements(gl.TRIANGLES, mb.indexCount, gl.UNSIGNED_INT, nil)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)
		disable(enabled)
	}
	return nil
}

func bindAttributes(info *programInfo, mb *meshBuffers, bindings []gpu.AttributeBinding) ([]uint32, error) {
	var enabled []uint32
	for _, b := range bindings {
		loc, ok := info.attributes[b.Name]
		if !ok || loc < 0 {
			continue
		}
		var vbo uint32
		var size int32
		switch b.Source {
		case gpu.SourcePosition:
			vbo, size = mb.positions, 3
		case gpu.SourceNormal:
			vbo, size = mb.normals, 3
		case gpu.SourceTexCoord:
			vbo, size = mb.texCoords, 2
		}
		if vbo == 0 {
			disable(enabled)
			return nil, fmt.Errorf("attribute %s: mesh has no data for source %d", b.Name, b.Source)
		}
		gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
		gl.EnableVertexAttribArray(uint32(loc))
		gl.VertexAttribPointerWithOffset(uint32(loc), size, gl.FLOAT, false, 0, 0)
		enabled = append(enabled, uint32(loc))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	for name := range info.attributes {
		if !hasBinding(bindings, name) {
			disable(enabled)
			return nil, fmt.Errorf("attribute %s not bound", name)
		}
	}
	return enabled, nil
}

func hasBinding(bindings []gpu.AttributeBinding, name string) bool {
	for _, b := range bindings {
		if b.Name == name {
			return true
		}
	}
	return false
}

func disable(locs []uint32) {
	for _, l := range locs {
		gl.DisableVertexAttribArray(l)
	}
}

func setUniform(loc int32, v any, unit *uint32) error {
	switch x := v.(type) {
	case float32:
		gl.Uniform1f(loc, x)
	case float64:
		gl.Uniform1f(loc, float32(x))
	case int:
		gl.Uniform1i(loc, int32(x))
	case int32:
		gl.Uniform1i(loc, x)
	case bool:
		b := int32(0)
		if x {
			b = 1
		}
		gl.Uniform1i(loc, b)
	case mgl32.Vec2:
		gl.Uniform2f(loc, x[0], x[1])
	case mgl32.Vec3:
		gl.Uniform3f(loc, x[0], x[1], x[2])
	case mgl32.Vec4:
		gl.Uniform4f(loc, x[0], x[1], x[2], x[3])
	case mgl32.Mat3:
		gl.UniformMatrix3fv(loc, 1, false, &x[0])
	case mgl32.Mat4:
		gl.UniformMatrix4fv(loc, 1, false, &x[0])
	case []mgl32.Vec3:
		if len(x) > 0 {
			gl.Uniform3fv(loc, int32(len(x)), &x[0][0])
		}
	case []float32:
		if len(x) > 0 {
			gl.Uniform1fv(loc, int32(len(x)), &x[0])
		}
	case gpu.Texture:
		gl.ActiveTexture(gl.TEXTURE0 + *unit)
		gl.BindTexture(gl.TEXTURE_2D, uint32(x))
		gl.Uniform1i(loc, int32(*unit))
		*unit++
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
	return nil
}

func applyDepth(s gpu.DepthState) {
	if s.Disabled {
		gl.Disable(gl.DEPTH_TEST)
		return
	}
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthMask(!s.ReadOnly)
	gl.DepthFunc(compareFunc(s.Func))
}

func applyBlend(s gpu.BlendState) {
	if !s.Enabled {
		gl.Disable(gl.BLEND)
		return
	}
	gl.Enable(gl.BLEND)
	gl.BlendFuncSeparate(blendFactor(s.SrcRGB), blendFactor(s.DstRGB), blendFactor(s.SrcAlpha), blendFactor(s.DstAlpha))
	gl.BlendEquation(blendEquation(s.Equation))
}

func compareFunc(f gpu.CompareFunc) uint32 {
	switch f {
	case gpu.CompareLess:
		return gl.LESS
	case gpu.CompareEqual:
		return gl.EQUAL
	case gpu.CompareGreater:
		return gl.GREATER
	case gpu.CompareGreaterEqual:
		return gl.GEQUAL
	case gpu.CompareAlways:
		return gl.ALWAYS
	case gpu.CompareNever:
		return gl.NEVER
	default:
		return gl.LEQUAL
	}
}

func blendFactor(f gpu.BlendFactor) uint32 {
	switch f {
	case gpu.BlendZero:
		return gl.ZERO
	case gpu.BlendSrcAlpha:
		return gl.SRC_ALPHA
	case gpu.BlendOneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	case gpu.BlendDstAlpha:
		return gl.DST_ALPHA
	case gpu.BlendOneMinusDstAlpha:
		return gl.ONE_MINUS_DST_ALPHA
	case gpu.BlendSrcColor:
		return gl.SRC_COLOR
	case gpu.BlendOneMinusSrcColor:
		return gl.ONE_MINUS_SRC_COLOR
	default:
		return gl.ONE
	}
}

func blendEquation(e gpu.BlendEquation) uint32 {
	switch e {
	case gpu.EquationSubtract:
		return gl.FUNC_SUBTRACT
	case gpu.EquationReverseSubtract:
		return gl.FUNC_REVERSE_SUBTRACT
	case gpu.EquationMin:
		return gl.MIN
	case gpu.EquationMax:
		return gl.MAX
	default:
		return gl.FUNC_ADD
	}
}
