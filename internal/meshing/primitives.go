package meshing

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// UVSphere returns a unit sphere with divisions rings and 2*divisions
// segments. Inverted spheres face inward, for sky domes.
func UVSphere(divisions int, inverted bool) *Mesh {
	if divisions < 2 {
		divisions = 2
	}
	vRes := divisions
	uRes := 2 * divisions

	m := &Mesh{
		Name:      fmt.Sprintf("uv_sphere_%d", divisions),
		Positions: make([]mgl32.Vec3, 0, vRes*uRes),
		TexCoords: make([]mgl32.Vec2, 0, vRes*uRes),
		Faces:     make([]uint32, 0, 6*(vRes-1)*(uRes-1)),
	}
	for iv := 0; iv < vRes; iv++ {
		v := float64(iv) / float64(vRes-1)
		phi := v * math.Pi
		sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)
		for iu := 0; iu < uRes; iu++ {
			u := float64(iu) / float64(uRes-1)
			theta := 2 * u * math.Pi
			m.Positions = append(m.Positions, mgl32.Vec3{
				float32(math.Cos(theta) * sinPhi),
				float32(math.Sin(theta) * sinPhi),
				float32(cosPhi),
			})
			m.TexCoords = append(m.TexCoords, mgl32.Vec2{float32(u), float32(v)})
		}
	}
	for iv := 0; iv < vRes-1; iv++ {
		for iu := 0; iu < uRes-1; iu++ {
			i0 := uint32(iu + iv*uRes)
			i1 := uint32(iu + 1 + iv*uRes)
			i2 := uint32(iu + 1 + (iv+1)*uRes)
			i3 := uint32(iu + (iv+1)*uRes)
			if inverted {
				m.Faces = append(m.Faces, i0, i2, i1, i0, i3, i2)
			} else {
				m.Faces = append(m.Faces, i0, i1, i2, i0, i2, i3)
			}
		}
	}

	// On a unit sphere the position is the normal.
	m.Normals = make([]mgl32.Vec3, len(m.Positions))
	for i, p := range m.Positions {
		if inverted {
			p = p.Mul(-1)
		}
		m.Normals[i] = p
	}
	if inverted {
		m.Name += "_inverted"
	}
	return m
}

// Plane returns the square [-1,1]^2 at z=0 facing +Z.
func Plane() *Mesh {
	up := mgl32.Vec3{0, 0, 1}
	return &Mesh{
		Name:      "plane",
		Positions: []mgl32.Vec3{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}},
		Normals:   []mgl32.Vec3{up, up, up, up},
		TexCoords: []mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		Faces:     []uint32{0, 1, 2, 0, 2, 3},
	}
}

// Box returns the cube [-1,1]^3 with shared corners and corner normals.
func Box(inverted bool) *Mesh {
	s := float32(1 / math.Sqrt(3))
	if inverted {
		s = -s
	}
	m := &Mesh{
		Name: "box",
		Positions: []mgl32.Vec3{
			{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
			{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
		},
		Normals: []mgl32.Vec3{
			{-s, -s, s}, {s, -s, s}, {s, s, s}, {-s, s, s},
			{-s, -s, -s}, {s, -s, -s}, {s, s, -s}, {-s, s, -s},
		},
		TexCoords: []mgl32.Vec2{
			{0, 0}, {1, 0}, {1, 1}, {0, 1},
			{0, 0}, {1, 0}, {1, 1}, {0, 1},
		},
		Faces: []uint32{
			0, 1, 2, 0, 2, 3,
			4, 5, 6, 4, 6, 7,
			0, 1, 5, 0, 5, 4,
			1, 2, 6, 1, 6, 5,
			2, 3, 7, 2, 7, 6,
			3, 0, 4, 3, 4, 7,
		},
	}
	return m
}

// HeightFunc returns the height at (x, y) in [0,1]^2.
type HeightFunc func(x, y float32) float32

// Grid returns an n x n vertex grid over [-0.5,0.5]^2 displaced along Z by
// height. Normals are left empty; call EnsureNormals.
func Grid(n int, height HeightFunc) *Mesh {
	if n < 2 {
		n = 2
	}
	m := &Mesh{
		Name:      fmt.Sprintf("grid_%d", n),
		Positions: make([]mgl32.Vec3, 0, n*n),
		TexCoords: make([]mgl32.Vec2, 0, n*n),
		Faces:     make([]uint32, 0, 6*(n-1)*(n-1)),
	}
	step := 1 / float32(n-1)
	for iy := 0; iy < n; iy++ {
		for ix := 0; ix < n; ix++ {
			u, v := float32(ix)*step, float32(iy)*step
			z := float32(0)
			if height != nil {
				z = height(u, v)
			}
			m.Positions = append(m.Positions, mgl32.Vec3{u - 0.5, v - 0.5, z})
			m.TexCoords = append(m.TexCoords, mgl32.Vec2{u, v})
		}
	}
	for iy := 0; iy < n-1; iy++ {
		for ix := 0; ix < n-1; ix++ {
			a := uint32(ix + iy*n)
			b := a + 1
			c := a + uint32(n) + 1
			d := a + uint32(n)
			m.Faces = append(m.Faces, a, b, c, a, c, d)
		}
	}
	return m
}
