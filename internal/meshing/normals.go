package meshing

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ComputeVertexNormals returns one normal per position: the sum of the
// normals of adjacent triangles, each weighted by the triangle's interior
// angle at that vertex. Vertices touched by no triangle get (0,0,1).
func ComputeVertexNormals(positions []mgl32.Vec3, faces []uint32) []mgl32.Vec3 {
	acc := make([]mgl32.Vec3, len(positions))
	for i := 0; i+2 < len(faces); i += 3 {
		ia, ib, ic := faces[i], faces[i+1], faces[i+2]
		a, b, c := positions[ia], positions[ib], positions[ic]
		n := b.Sub(a).Cross(c.Sub(a))
		if n.Len() == 0 {
			continue
		}
		n = n.Normalize()
		acc[ia] = acc[ia].Add(n.Mul(angle(b.Sub(a), c.Sub(a))))
		acc[ib] = acc[ib].Add(n.Mul(angle(c.Sub(b), a.Sub(b))))
		acc[ic] = acc[ic].Add(n.Mul(angle(a.Sub(c), b.Sub(c))))
	}
	for i, n := range acc {
		if n.Len() == 0 {
			acc[i] = mgl32.Vec3{0, 0, 1}
			continue
		}
		acc[i] = n.Normalize()
	}
	return acc
}

func angle(u, v mgl32.Vec3) float32 {
	lu, lv := u.Len(), v.Len()
	if lu == 0 || lv == 0 {
		return 0
	}
	c := mgl32.Clamp(u.Dot(v)/(lu*lv), -1, 1)
	return float32(math.Acos(float64(c)))
}
