// Package resources owns the GPU copies of meshes and textures and resolves
// the string references used by scene objects and materials.
package resources

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"sort"
	"sync"

	"reefview/internal/graphics/gpu"
	"reefview/internal/meshing"

	"go.uber.org/zap"
)

var (
	ErrUnknownMesh    = errors.New("unknown mesh")
	ErrUnknownTexture = errors.New("unknown texture")
)

// DefaultMaxTextureSize bounds the longest side of loaded textures.
const DefaultMaxTextureSize = 2048

// Manager maps references to device resources. Textures not registered
// explicitly are loaded from the texture directory on first use.
type Manager struct {
	dev        gpu.Device
	log        *zap.Logger
	textureDir string

	// MaxTextureSize is applied to images loaded from disk.
	MaxTextureSize int

	mu       sync.RWMutex
	meshes   map[string]gpu.Mesh
	textures map[string]gpu.Texture
	failed   map[string]error
	white    gpu.Texture
}

// NewManager uploads the fallback texture and returns an empty manager.
func NewManager(dev gpu.Device, textureDir string, log *zap.Logger) (*Manager, error) {
	if log == nil {
		log = zap.NewNop()
	}
	white := image.NewRGBA(image.Rect(0, 0, 1, 1))
	white.SetRGBA(0, 0, color.RGBA{255, 255, 255, 255})
	tex, err := dev.UploadTexture(white, gpu.WrapRepeat)
	if err != nil {
		return nil, fmt.Errorf("upload fallback texture: %w", err)
	}
	return &Manager{
		dev:            dev,
		log:            log.Named("resources"),
		textureDir:     textureDir,
		MaxTextureSize: DefaultMaxTextureSize,
		meshes:         make(map[string]gpu.Mesh),
		textures:       make(map[string]gpu.Texture),
		failed:         make(map[string]error),
		white:          tex,
	}, nil
}

// White returns the 1x1 white texture bound for untextured materials.
func (m *Manager) White() gpu.Texture {
	return m.white
}

// AddMesh validates, completes and uploads a mesh under name, replacing any
// previous mesh of that name.
func (m *Manager) AddMesh(name string, mesh *meshing.Mesh) error {
	if err := mesh.Validate(); err != nil {
		return err
	}
	mesh.EnsureNormals()
	mesh.EnsureTexCoords()
	h, err := m.dev.UploadMesh(gpu.MeshData{
		Positions: mesh.Positions,
		Normals:   mesh.Normals,
		TexCoords: mesh.TexCoords,
		Faces:     mesh.Faces,
	})
	if err != nil {
		return fmt.Errorf("upload mesh %s: %w", name, err)
	}

	m.mu.Lock()
	old, replaced := m.meshes[name]
	m.meshes[name] = h
	m.mu.Unlock()

	if replaced {
		m.dev.DeleteMesh(old)
	}
	m.log.Debug("mesh added",
		zap.String("name", name),
		zap.Int("vertices", len(mesh.Positions)),
		zap.Int("triangles", mesh.TriangleCount()),
	)
	return nil
}

// BuildMeshes builds meshes on pool and uploads them. Uploads happen on the
// calling goroutine.
func (m *Manager) BuildMeshes(pool *meshing.WorkerPool, builders map[string]func() (*meshing.Mesh, error)) error {
	built, err := pool.BuildAll(builders)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(built))
	for name := range built {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := m.AddMesh(name, built[name]); err != nil {
			return err
		}
	}
	return nil
}

// Mesh resolves a mesh reference.
func (m *Manager) Mesh(name string) (gpu.Mesh, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.meshes[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMesh, name)
	}
	return h, nil
}

// AddImage uploads img under name.
func (m *Manager) AddImage(name string, img image.Image, wrap gpu.WrapMode) (gpu.Texture, error) {
	tex, err := m.dev.UploadTexture(toRGBA(img, 0), wrap)
	if err != nil {
		return 0, fmt.Errorf("upload texture %s: %w", name, err)
	}
	m.mu.Lock()
	old, replaced := m.textures[name]
	m.textures[name] = tex
	delete(m.failed, name)
	m.mu.Unlock()
	if replaced {
		m.dev.DeleteTexture(old)
	}
	return tex, nil
}

// Texture resolves a texture reference, loading it from disk on first use.
// A file that failed to load is not retried.
func (m *Manager) Texture(name string) (gpu.Texture, error) {
	m.mu.RLock()
	if tex, ok := m.textures[name]; ok {
		m.mu.RUnlock()
		return tex, nil
	}
	if err, ok := m.failed[name]; ok {
		m.mu.RUnlock()
		return 0, err
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double check locking
	if tex, ok := m.textures[name]; ok {
		return tex, nil
	}
	if err, ok := m.failed[name]; ok {
		return 0, err
	}

	tex, err := m.load(name)
	if err != nil {
		err = fmt.Errorf("%w: %q: %v", ErrUnknownTexture, name, err)
		m.failed[name] = err
		m.log.Warn("texture load failed", zap.String("name", name), zap.Error(err))
		return 0, err
	}
	m.textures[name] = tex
	return tex, nil
}

func (m *Manager) load(name string) (gpu.Texture, error) {
	if m.textureDir == "" {
		return 0, errors.New("no texture directory")
	}
	img, err := DecodeFile(filepath.Join(m.textureDir, name))
	if err != nil {
		return 0, err
	}
	b := img.Bounds()
	tex, err := m.dev.UploadTexture(toRGBA(img, m.MaxTextureSize), gpu.WrapRepeat)
	if err != nil {
		return 0, err
	}
	m.log.Info("texture loaded", zap.String("name", name), zap.Int("width", b.Dx()), zap.Int("height", b.Dy()))
	return tex, nil
}

// Release deletes every uploaded mesh and texture.
func (m *Manager) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range m.meshes {
		m.dev.DeleteMesh(h)
	}
	for _, t := range m.textures {
		m.dev.DeleteTexture(t)
	}
	m.dev.DeleteTexture(m.white)
	m.meshes = make(map[string]gpu.Mesh)
	m.textures = make(map[string]gpu.Texture)
	m.failed = make(map[string]error)
}
