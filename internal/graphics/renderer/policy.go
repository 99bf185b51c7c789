package renderer

import (
	"fmt"

	"reefview/internal/scene"
)

// PassKind identifies a pass for object inclusion.
type PassKind int

const (
	PassPreprocessing PassKind = iota
	PassBackground
	PassTerrain
	PassOpaque
	PassMirror
	PassNormals
	PassShadowDepth
	PassShadows
	PassFog
	PassMapMixer
	PassTransparent
	PassDepthOfField
)

// AllPasses lists every pass kind in pipeline order.
var AllPasses = []PassKind{
	PassPreprocessing, PassBackground, PassTerrain, PassOpaque, PassMirror, PassNormals,
	PassShadowDepth, PassShadows, PassFog, PassMapMixer, PassTransparent, PassDepthOfField,
}

func (p PassKind) String() string {
	switch p {
	case PassPreprocessing:
		return "preprocessing"
	case PassBackground:
		return "background"
	case PassTerrain:
		return "terrain"
	case PassOpaque:
		return "blinn_phong"
	case PassMirror:
		return "mirror"
	case PassNormals:
		return "normals"
	case PassShadowDepth:
		return "shadow_depth"
	case PassShadows:
		return "shadows"
	case PassFog:
		return "god_rays"
	case PassMapMixer:
		return "map_mixer"
	case PassTransparent:
		return "transparent"
	case PassDepthOfField:
		return "depth_of_field"
	}
	return fmt.Sprintf("PassKind(%d)", int(p))
}

// Includes reports whether a pass draws objects with material m.
func Includes(p PassKind, m scene.Material) bool {
	switch p {
	case PassBackground:
		return m.Kind == scene.Background
	case PassTerrain:
		return m.Kind == scene.Terrain
	case PassOpaque:
		return !m.ExcludedFromBlinnPhong()
	case PassShadows, PassShadowDepth:
		return m.CastsShadow()
	case PassFog:
		return m.Kind == scene.Water
	case PassTransparent:
		return m.IsTransparent() && m.Kind != scene.Water
	case PassMirror:
		return m.Kind == scene.Reflective
	case PassPreprocessing, PassNormals, PassMapMixer, PassDepthOfField:
		return true
	}
	return false
}

// IncludeFor returns the inclusion predicate of a pass.
func IncludeFor(p PassKind) func(*scene.Object) bool {
	return func(o *scene.Object) bool { return Includes(p, o.Material) }
}

// Membership returns the objects of s drawn by pass p, in scene order.
func Membership(p PassKind, objects []*scene.Object) []*scene.Object {
	var out []*scene.Object
	for _, o := range objects {
		if Includes(p, o.Material) {
			out = append(out, o)
		}
	}
	return out
}
