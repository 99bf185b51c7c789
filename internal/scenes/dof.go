package scenes

import (
	"image"
	"image/color"
	"math"

	"reefview/internal/config"
	"reefview/internal/meshing"
	"reefview/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// DepthOfField is a small scene for tuning focus: a pulsing sphere in front
// of a gray backdrop under a sunset sky.
func DepthOfField() Definition {
	return Definition{
		Name: "dof",
		Meshes: map[string]func() (*meshing.Mesh, error){
			"sky_sphere": func() (*meshing.Mesh, error) { return meshing.UVSphere(16, true), nil },
			"sphere":     func() (*meshing.Mesh, error) { return meshing.UVSphere(24, false), nil },
			"backdrop":   func() (*meshing.Mesh, error) { return meshing.Box(false), nil },
		},
		Textures: map[string]func() image.Image{
			"sunset": func() image.Image {
				return VerticalGradient(64, 256, color.RGBA{250, 170, 90, 255}, color.RGBA{60, 40, 90, 255})
			},
		},
		Setup: setupDepthOfField,
	}
}

func setupDepthOfField() *scene.Scene {
	s := scene.New("dof")
	s.Camera.SetPreset(scene.Preset{Distance: 15, AngleZ: -math.Pi/2 - 0.3, AngleY: 0.1, LookAt: mgl32.Vec3{0, 0, 1}})

	s.AddLight(&scene.Light{Position: mgl32.Vec3{0, -50, 20}, Color: mgl32.Vec3{1, 1, 0.9}})

	sphere := s.Add(&scene.Object{
		Name:      "sphere",
		Mesh:      "sphere",
		Material:  scene.NewDiffuse(mgl32.Vec3{0.2, 0.4, 0.9}, 10),
		Transform: scene.At(mgl32.Vec3{0, 0, 1}),
	})
	s.Add(&scene.Object{
		Name:      "backdrop",
		Mesh:      "backdrop",
		Material:  scene.NewDiffuse(mgl32.Vec3{0.4, 0.4, 0.4}, 0.5),
		Transform: scene.Transform{Translation: mgl32.Vec3{0, 30, 5}, Scale: mgl32.Vec3{60, 1, 30}},
	})
	s.Add(&scene.Object{
		Name:      "sky",
		Mesh:      "sky_sphere",
		Material:  scene.NewBackground("sunset"),
		Transform: scene.Identity().Scaled(80),
	})

	s.Actors = append(s.Actors, NewPulse(sphere, 0.8, 1.2, 2))

	s.Settings = config.Overrides{
		MinFocusDistance: config.Ptr[float32](10),
		MaxFocusDistance: config.Ptr[float32](20),
	}
	return s
}
