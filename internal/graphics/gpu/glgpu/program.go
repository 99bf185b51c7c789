package glgpu

import (
	"fmt"
	"sort"
	"strings"

	"reefview/internal/graphics/gpu"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"
)

type programInfo struct {
	uniforms   map[string]int32
	attributes map[string]int32
}

// CompileProgram compiles and links a vertex/fragment pair and reflects its
// active uniforms and attributes.
func (d *Device) CompileProgram(label, vertexSrc, fragmentSrc string) (*gpu.Program, error) {
	id, err := compileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("program %s: %w", label, err)
	}
	info := &programInfo{
		uniforms:   activeUniforms(id),
		attributes: activeAttributes(id),
	}
	d.programs[id] = info
	d.log.Debug("program linked",
		zap.String("label", label),
		zap.Int("uniforms", len(info.uniforms)),
		zap.Int("attributes", len(info.attributes)),
	)
	return &gpu.Program{
		ID:         id,
		Label:      label,
		Uniforms:   keys(info.uniforms),
		Attributes: keys(info.attributes),
	}, nil
}

func (d *Device) DeleteProgram(p *gpu.Program) {
	if p == nil {
		return
	}
	gl.DeleteProgram(p.ID)
	delete(d.programs, p.ID)
}

func compileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertexShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	fragmentShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, fmt.Errorf("fragment: %w", err)
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)

		return 0, fmt.Errorf("failed to link program: %v", log)
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)

		return 0, fmt.Errorf("failed to compile shader: %v", log)
	}
	return shader, nil
}

func activeUniforms(program uint32) map[string]int32 {
	var count, maxLen int32
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORMS, &count)
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORM_MAX_LENGTH, &maxLen)

	out := make(map[string]int32, count)
	buf := make([]byte, maxLen+1)
	for i := uint32(0); i < uint32(count); i++ {
		var length, size int32
		var xtype uint32
		gl.GetActiveUniform(program, i, maxLen+1, &length, &size, &xtype, &buf[0])
		name := gpu.UniformBaseName(string(buf[:length]))
		out[name] = gl.GetUniformLocation(program, gl.Str(name+"\x00"))
	}
	return out
}

func activeAttributes(program uint32) map[string]int32 {
	var count, maxLen int32
	gl.GetProgramiv(program, gl.ACTIVE_ATTRIBUTES, &count)
	gl.GetProgramiv(program, gl.ACTIVE_ATTRIBUTE_MAX_LENGTH, &maxLen)

	out := make(map[string]int32, count)
	buf := make([]byte, maxLen+1)
	for i := uint32(0); i < uint32(count); i++ {
		var length, size int32
		var xtype uint32
		gl.GetActiveAttrib(program, i, maxLen+1, &length, &size, &xtype, &buf[0])
		name := string(buf[:length])
		out[name] = gl.GetAttribLocation(program, gl.Str(name+"\x00"))
	}
	return out
}

func keys(m map[string]int32) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
