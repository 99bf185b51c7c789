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

const (
	reefTerrainSize  = 150
	reefTerrainDepth = 40
	reefWaterSize    = 75
	reefSkySize      = 250
	reefSeed         = 7
)

// reefHeight is a sandy floor: fbm noise flattened towards the middle.
func reefHeight(x, y float32) float32 {
	n := valueNoise{seed: reefSeed}
	h := n.FBM(x*6, y*6, 5)
	dx, dy := x-0.5, y-0.5
	border := float32(math.Min(1, math.Sqrt(float64(dx*dx+dy*dy))*2))
	return (h-0.5)*0.5 + border*border*0.3
}

// Reef is a water volume over sandy terrain with swimming fish, a drifting
// jellyfish, a marble mirror and an orbiting light.
func Reef() Definition {
	return Definition{
		Name: "reef",
		Meshes: map[string]func() (*meshing.Mesh, error){
			"sky_sphere": func() (*meshing.Mesh, error) { return meshing.UVSphere(16, true), nil },
			"fish":       func() (*meshing.Mesh, error) { return meshing.UVSphere(12, false), nil },
			"water_box":  func() (*meshing.Mesh, error) { return meshing.Box(false), nil },
			"mirror":     func() (*meshing.Mesh, error) { return meshing.Plane(), nil },
			"terrain":    func() (*meshing.Mesh, error) { return meshing.Grid(96, reefHeight), nil },
		},
		Textures: map[string]func() image.Image{
			"underwater": func() image.Image {
				return VerticalGradient(64, 256, color.RGBA{40, 140, 200, 255}, color.RGBA{2, 20, 50, 255})
			},
			"fish_stripes": func() image.Image {
				return Stripes(32, 32, 4, color.RGBA{255, 140, 20, 255}, color.RGBA{250, 250, 250, 255})
			},
			"marble": func() image.Image {
				return Marble(128, 128, reefSeed, color.RGBA{230, 230, 225, 255}, color.RGBA{90, 90, 100, 255})
			},
		},
		Setup: setupReef,
	}
}

func setupReef() *scene.Scene {
	s := scene.New("reef")
	s.Camera.SetPreset(scene.Preset{Distance: 60, AngleZ: -math.Pi / 2, AngleY: 0.25, LookAt: mgl32.Vec3{0, 0, -10}})

	s.Add(&scene.Object{
		Name:      "terrain",
		Mesh:      "terrain",
		Material:  scene.NewTerrain(scene.DefaultTerrainColors()),
		Transform: scene.Transform{Translation: mgl32.Vec3{0, 0, -30}, Scale: mgl32.Vec3{reefTerrainSize, reefTerrainSize, reefTerrainDepth}},
	})
	s.Add(&scene.Object{
		Name:      "water",
		Mesh:      "water_box",
		Material:  scene.NewWater(),
		Transform: scene.Identity().Scaled(reefWaterSize),
	})
	s.Add(&scene.Object{
		Name:      "sky",
		Mesh:      "sky_sphere",
		Material:  scene.NewBackground("underwater"),
		Transform: scene.Identity().Scaled(reefSkySize),
	})

	s.Add(&scene.Object{
		Name:     "mirror",
		Mesh:     "mirror",
		Material: scene.NewReflective("marble", mgl32.Vec3{0.9, 0.9, 0.9}),
		Transform: scene.Transform{
			Translation: mgl32.Vec3{0, 20, -5},
			Rotation:    mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{1, 0, 0}),
			Scale:       mgl32.Vec3{20, 12, 1},
		},
	})

	for i := 0; i < 6; i++ {
		fish := s.Add(&scene.Object{
			Name:      "fish",
			Mesh:      "fish",
			Material:  scene.NewTexturedDiffuse("fish_stripes", 0.5),
			Transform: scene.Transform{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{2, 0.8, 1}},
		})
		speed := float32(0.4 + 0.1*float32(i))
		if i%2 == 1 {
			speed = -speed
		}
		s.Actors = append(s.Actors, &Swimmer{
			Object: fish,
			Center: mgl32.Vec3{0, 0, -15 + 3*float32(i)},
			Radius: 12 + 2*float32(i),
			Speed:  speed,
			Phase:  float32(i),
			Bob:    1,
		})
	}

	jelly := scene.NewDiffuse(mgl32.Vec3{0.9, 0.5, 0.9}, 8)
	jelly.Opacity = 0.45
	jellyfish := s.Add(&scene.Object{Name: "jellyfish", Mesh: "fish", Material: jelly, Transform: scene.At(mgl32.Vec3{-8, -6, -2}).Scaled(3)})
	s.Actors = append(s.Actors, NewDrift(jellyfish, 4, 3))

	light := s.AddLight(&scene.Light{Position: mgl32.Vec3{0, 0, 130}, Color: mgl32.Vec3{1, 1, 0.9}})
	s.Actors = append(s.Actors, &OrbitLight{Light: light, Center: mgl32.Vec3{0, 0, 130}, Radius: 30, Speed: 0.1})

	s.Settings = config.Overrides{
		MinFocusDistance: config.Ptr[float32](20),
		MaxFocusDistance: config.Ptr[float32](90),
	}
	return s
}
