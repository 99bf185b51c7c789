package renderer

import (
	"testing"

	"reefview/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

func TestInclusionTable(t *testing.T) {
	translucent := scene.NewDiffuse(mgl32.Vec3{1, 1, 1}, 1)
	translucent.Opacity = 0.3

	materials := map[string]scene.Material{
		"background":  scene.NewBackground("sky"),
		"diffuse":     scene.NewDiffuse(mgl32.Vec3{1, 0, 0}, 1),
		"translucent": translucent,
		"reflective":  scene.NewReflective("", mgl32.Vec3{1, 1, 1}),
		"water":       scene.NewWater(),
		"terrain":     scene.NewTerrain(scene.DefaultTerrainColors()),
	}

	// pass -> materials drawn
	want := map[PassKind][]string{
		PassPreprocessing: {"background", "diffuse", "translucent", "reflective", "water", "terrain"},
		PassBackground:    {"background"},
		PassTerrain:       {"terrain"},
		PassOpaque:        {"diffuse", "translucent", "reflective", "water"},
		PassMirror:        {"reflective"},
		PassNormals:       {"background", "diffuse", "translucent", "reflective", "water", "terrain"},
		PassShadowDepth:   {"diffuse", "translucent", "reflective", "terrain"},
		PassShadows:       {"diffuse", "translucent", "reflective", "terrain"},
		PassFog:           {"water"},
		PassMapMixer:      {"background", "diffuse", "translucent", "reflective", "water", "terrain"},
		PassTransparent:   {"translucent"},
		PassDepthOfField:  {"background", "diffuse", "translucent", "reflective", "water", "terrain"},
	}

	for _, p := range AllPasses {
		included := make(map[string]bool)
		for _, name := range want[p] {
			included[name] = true
		}
		for name, m := range materials {
			if got := Includes(p, m); got != included[name] {
				t.Errorf("Includes(%s, %s) = %v, want %v", p, name, got, included[name])
			}
		}
	}
}

func TestUntaggedOpaqueObject(t *testing.T) {
	m := scene.Material{Opacity: 1}
	for p, want := range map[PassKind]bool{
		PassOpaque:      true,
		PassShadows:     true,
		PassBackground:  false,
		PassTerrain:     false,
		PassFog:         false,
		PassMirror:      false,
		PassTransparent: false,
	} {
		if got := Includes(p, m); got != want {
			t.Errorf("Includes(%s) = %v, want %v", p, got, want)
		}
	}
}

func TestTransparentMembership(t *testing.T) {
	water := scene.NewWater()
	water.Opacity = 0.5
	objects := []*scene.Object{
		{Name: "water", Material: water},
		{Name: "rock", Material: scene.NewDiffuse(mgl32.Vec3{0.5, 0.5, 0.5}, 1)},
	}
	if got := Membership(PassTransparent, objects); len(got) != 0 {
		t.Fatalf("membership = %v, want none", got)
	}

	jelly := scene.NewDiffuse(mgl32.Vec3{1, 0.5, 1}, 1)
	jelly.Opacity = 0.4
	objects = append(objects, &scene.Object{Name: "jelly", Material: jelly})
	got := Membership(PassTransparent, objects)
	if len(got) != 1 || got[0].Name != "jelly" {
		t.Fatalf("membership = %v, want [jelly]", got)
	}
}

func TestMembershipKeepsSceneOrder(t *testing.T) {
	objects := []*scene.Object{
		{Name: "c", Material: scene.NewDiffuse(mgl32.Vec3{}, 1)},
		{Name: "sky", Material: scene.NewBackground("")},
		{Name: "a", Material: scene.NewDiffuse(mgl32.Vec3{}, 1)},
	}
	got := Membership(PassOpaque, objects)
	if len(got) != 2 || got[0].Name != "c" || got[1].Name != "a" {
		t.Fatalf("membership = %v", got)
	}
}

func TestPassKindString(t *testing.T) {
	if PassOpaque.String() != "blinn_phong" || PassFog.String() != "god_rays" {
		t.Fatalf("unexpected names %s %s", PassOpaque, PassFog)
	}
	if got := PassKind(99).String(); got != "PassKind(99)" {
		t.Fatalf("unknown kind = %q", got)
	}
}
