// Package scenes holds the built-in scenes: geometry and texture recipes
// plus the objects, lights and actors that use them.
package scenes

import (
	"fmt"
	"image"
	"sort"

	"reefview/internal/graphics/gpu"
	"reefview/internal/meshing"
	"reefview/internal/resources"
	"reefview/internal/scene"
)

// Definition describes a scene and the resources it references.
type Definition struct {
	Name     string
	Meshes   map[string]func() (*meshing.Mesh, error)
	Textures map[string]func() image.Image
	Setup    func() *scene.Scene
}

var registry = map[string]func() Definition{
	"reef": Reef,
	"dof":  DepthOfField,
}

// Names lists the built-in scenes.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the definition of a built-in scene.
func Lookup(name string) (Definition, error) {
	def, ok := registry[name]
	if !ok {
		return Definition{}, fmt.Errorf("unknown scene %q (have %v)", name, Names())
	}
	return def(), nil
}

// Build generates the meshes of def on pool, uploads them and its textures
// through res, and returns the scene.
func Build(def Definition, res *resources.Manager, pool *meshing.WorkerPool) (*scene.Scene, error) {
	if err := res.BuildMeshes(pool, def.Meshes); err != nil {
		return nil, fmt.Errorf("scene %s: %w", def.Name, err)
	}
	names := make([]string, 0, len(def.Textures))
	for name := range def.Textures {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := res.AddImage(name, def.Textures[name](), gpu.WrapRepeat); err != nil {
			return nil, fmt.Errorf("scene %s: texture %s: %w", def.Name, name, err)
		}
	}
	return def.Setup(), nil
}
