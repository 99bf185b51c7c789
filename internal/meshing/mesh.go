// Package meshing builds CPU-side triangle meshes: procedural primitives and
// vertex normals.
package meshing

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is an indexed triangle list. Normals and TexCoords are either empty or
// one per position.
type Mesh struct {
	Name      string
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	TexCoords []mgl32.Vec2
	Faces     []uint32 // three indices per triangle
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces) / 3
}

// Validate checks stream lengths and index ranges.
func (m *Mesh) Validate() error {
	n := len(m.Positions)
	if n == 0 {
		return fmt.Errorf("mesh %s: no positions", m.Name)
	}
	if len(m.Normals) != 0 && len(m.Normals) != n {
		return fmt.Errorf("mesh %s: %d normals for %d positions", m.Name, len(m.Normals), n)
	}
	if len(m.TexCoords) != 0 && len(m.TexCoords) != n {
		return fmt.Errorf("mesh %s: %d tex coords for %d positions", m.Name, len(m.TexCoords), n)
	}
	if len(m.Faces)%3 != 0 {
		return fmt.Errorf("mesh %s: %d indices is not a multiple of 3", m.Name, len(m.Faces))
	}
	for i, f := range m.Faces {
		if int(f) >= n {
			return fmt.Errorf("mesh %s: index %d at %d out of range", m.Name, f, i)
		}
	}
	return nil
}

// EnsureNormals computes vertex normals when the mesh has none.
func (m *Mesh) EnsureNormals() {
	if len(m.Normals) == len(m.Positions) {
		return
	}
	m.Normals = ComputeVertexNormals(m.Positions, m.Faces)
}

// EnsureTexCoords fills missing texture coordinates with zeros so every
// default attribute has data.
func (m *Mesh) EnsureTexCoords() {
	if len(m.TexCoords) == len(m.Positions) {
		return
	}
	m.TexCoords = make([]mgl32.Vec2, len(m.Positions))
}
