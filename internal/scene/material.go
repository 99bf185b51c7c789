package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// MaterialKind is the closed set of material classes. The zero value is
// Diffuse, so an untagged material behaves like a plain lit surface.
type MaterialKind int

const (
	Diffuse MaterialKind = iota
	Background
	Reflective
	Water
	Terrain
)

func (k MaterialKind) String() string {
	switch k {
	case Diffuse:
		return "diffuse"
	case Background:
		return "background"
	case Reflective:
		return "reflective"
	case Water:
		return "water"
	case Terrain:
		return "terrain"
	}
	return fmt.Sprintf("MaterialKind(%d)", int(k))
}

// Defaults used when a material does not set a value.
var (
	DefaultBaseColor = mgl32.Vec3{1, 0, 1}
	DefaultShininess = float32(0.1)
)

// TerrainColors are the height-banded colors of a Terrain material.
type TerrainColors struct {
	Water              mgl32.Vec3
	WaterShininess     float32
	Sand               mgl32.Vec3
	SandShininess      float32
	DeepWater          mgl32.Vec3
	DeepWaterShininess float32
	WaterLevel         float32
}

// Material describes how a surface interacts with light and which passes draw it.
type Material struct {
	Kind      MaterialKind
	Texture   string // resource reference; empty means untextured
	BaseColor mgl32.Vec3
	Shininess float32
	Opacity   float32
	Terrain   TerrainColors
}

// NewDiffuse returns an opaque diffuse material.
func NewDiffuse(color mgl32.Vec3, shininess float32) Material {
	return Material{Kind: Diffuse, BaseColor: color, Shininess: shininess, Opacity: 1}
}

// NewTexturedDiffuse returns an opaque diffuse material sampling texture.
func NewTexturedDiffuse(texture string, shininess float32) Material {
	return Material{Kind: Diffuse, Texture: texture, BaseColor: DefaultBaseColor, Shininess: shininess, Opacity: 1}
}

// NewBackground returns an environment material, drawn unlit.
func NewBackground(texture string) Material {
	return Material{Kind: Background, Texture: texture, BaseColor: DefaultBaseColor, Shininess: DefaultShininess, Opacity: 1}
}

// NewReflective returns a planar mirror material.
func NewReflective(texture string, color mgl32.Vec3) Material {
	return Material{Kind: Reflective, Texture: texture, BaseColor: color, Shininess: DefaultShininess, Opacity: 1}
}

// NewWater returns the volume proxy material used by the fog pass.
func NewWater() Material {
	return Material{Kind: Water, BaseColor: DefaultBaseColor, Shininess: DefaultShininess, Opacity: 1}
}

// NewTerrain returns a height-banded terrain material.
func NewTerrain(colors TerrainColors) Material {
	return Material{Kind: Terrain, BaseColor: DefaultBaseColor, Shininess: DefaultShininess, Opacity: 1, Terrain: colors}
}

// DefaultTerrainColors matches the sand scene palette.
func DefaultTerrainColors() TerrainColors {
	return TerrainColors{
		Water:              mgl32.Vec3{0.03, 0.71, 1.12},
		WaterShininess:     100,
		Sand:               mgl32.Vec3{0.76, 0.69, 0.5},
		SandShininess:      100,
		DeepWater:          mgl32.Vec3{0.26, 0.83, 0.93},
		DeepWaterShininess: 100,
		WaterLevel:         0,
	}
}

// Capability flags follow from Kind and Opacity. There are no per-object
// overrides, so every Diffuse object casts a shadow.

// CastsShadow reports whether objects with this material occlude light.
func (m Material) CastsShadow() bool {
	switch m.Kind {
	case Water, Background:
		return false
	case Diffuse, Reflective, Terrain:
		return true
	}
	return true
}

// ExcludedFromBlinnPhong reports whether the material is shaded by a
// dedicated pass instead of the generic lit pass.
func (m Material) ExcludedFromBlinnPhong() bool {
	switch m.Kind {
	case Background, Terrain:
		return true
	case Diffuse, Reflective, Water:
		return false
	}
	return false
}

// IsTransparent reports opacity below one.
func (m Material) IsTransparent() bool {
	return m.Opacity < 1
}

// IsTextured reports whether the material references a texture.
func (m Material) IsTextured() bool {
	return m.Texture != ""
}
