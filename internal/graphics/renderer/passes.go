package renderer

import (
	"reefview/internal/graphics/gpu"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxLights is the number of lights the lit pass accumulates.
const MaxLights = 4

// Input names passed between passes.
const (
	InputShadows             = "shadows"
	InputBase                = "blinn_phong"
	InputFog                 = "fog"
	InputColor               = "color_texture"
	InputReflection          = "reflection_texture"
	InputShadowMap           = "shadow_map"
	InputLightViewProjection = "mat_light_view_projection"
)

func mvp(in *DrawInput) any          { return in.Matrices.ModelViewProjection }
func modelView(in *DrawInput) any    { return in.Matrices.ModelView }
func normalsMV(in *DrawInput) any    { return in.Matrices.NormalModelView }
func modelToWorld(in *DrawInput) any { return in.Matrices.ModelToWorld }
func clipPlane(in *DrawInput) any    { return in.View.ClipPlane }
func texture(in *DrawInput) any      { return in.Texture }
func isTextured(in *DrawInput) any   { return in.Textured }
func baseColor(in *DrawInput) any    { return in.Object.Material.BaseColor }
func shininess(in *DrawInput) any    { return in.Object.Material.Shininess }
func opacity(in *DrawInput) any      { return in.Object.Material.Opacity }
func canvasWidth(in *DrawInput) any  { return float32(in.State.Frame.Width) }
func canvasHeight(in *DrawInput) any { return float32(in.State.Frame.Height) }

func input(name string) UniformSource {
	return func(in *DrawInput) any { return in.Inputs[name] }
}

// firstLight returns the world position and color of the first light, or
// zeros when the scene has none.
func firstLight(in *DrawInput) (mgl32.Vec3, mgl32.Vec3) {
	if len(in.State.Scene.Lights) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	l := in.State.Scene.Lights[0]
	return l.Position, l.Color
}

func toView(in *DrawInput, p mgl32.Vec3) mgl32.Vec3 {
	return in.View.Matrices.View().Mul4x1(p.Vec4(1)).Vec3()
}

// PreprocessingSpec fills depth with every object and writes black.
func PreprocessingSpec() PassSpec {
	return PassSpec{
		Kind:           PassPreprocessing,
		VertexShader:   "shaders/preprocessing.vert",
		FragmentShader: "shaders/preprocessing.frag",
		Uniforms: map[string]UniformSource{
			"mat_model_view_projection": mvp,
			"mat_model_to_world":        modelToWorld,
			"clip_plane":                clipPlane,
		},
		Attributes: []gpu.AttributeBinding{{Name: "vertex_position", Source: gpu.SourcePosition}},
		Include:    IncludeFor(PassPreprocessing),
	}
}

// BackgroundSpec draws environment objects unlit.
func BackgroundSpec() PassSpec {
	return PassSpec{
		Kind:           PassBackground,
		VertexShader:   "shaders/flat_color.vert",
		FragmentShader: "shaders/flat_color.frag",
		Uniforms: map[string]UniformSource{
			"mat_model_view_projection": mvp,
			"mat_model_to_world":        modelToWorld,
			"clip_plane":                clipPlane,
			"material_texture":          texture,
			"is_textured":               isTextured,
			"material_base_color":       baseColor,
		},
		Include: IncludeFor(PassBackground),
	}
}

// TerrainSpec shades terrain by height band with the first light.
func TerrainSpec() PassSpec {
	return PassSpec{
		Kind:           PassTerrain,
		VertexShader:   "shaders/terrain.vert",
		FragmentShader: "shaders/terrain.frag",
		Uniforms: map[string]UniformSource{
			"mat_model_view_projection": mvp,
			"mat_model_view":            modelView,
			"mat_normals_model_view":    normalsMV,
			"mat_model_to_world":        modelToWorld,
			"clip_plane":                clipPlane,
			"light_position": func(in *DrawInput) any {
				p, _ := firstLight(in)
				return toView(in, p)
			},
			"light_color": func(in *DrawInput) any {
				_, c := firstLight(in)
				return c
			},
			"water_color":          func(in *DrawInput) any { return in.Object.Material.Terrain.Water },
			"water_shininess":      func(in *DrawInput) any { return in.Object.Material.Terrain.WaterShininess },
			"sand_color":           func(in *DrawInput) any { return in.Object.Material.Terrain.Sand },
			"sand_shininess":       func(in *DrawInput) any { return in.Object.Material.Terrain.SandShininess },
			"deep_water_color":     func(in *DrawInput) any { return in.Object.Material.Terrain.DeepWater },
			"deep_water_shininess": func(in *DrawInput) any { return in.Object.Material.Terrain.DeepWaterShininess },
			"water_level":          func(in *DrawInput) any { return in.Object.Material.Terrain.WaterLevel },
		},
		Include: IncludeFor(PassTerrain),
	}
}

// BlinnPhongSpec is the generic lit pass, accumulating up to MaxLights lights.
func BlinnPhongSpec() PassSpec {
	return PassSpec{
		Kind:           PassOpaque,
		VertexShader:   "shaders/blinn_phong.vert",
		FragmentShader: "shaders/blinn_phong.frag",
		Uniforms: map[string]UniformSource{
			"mat_model_view_projection": mvp,
			"mat_model_view":            modelView,
			"mat_normals_model_view":    normalsMV,
			"mat_model_to_world":        modelToWorld,
			"clip_plane":                clipPlane,
			"light_positions": func(in *DrawInput) any {
				out := make([]mgl32.Vec3, MaxLights)
				for i, l := range in.State.Scene.Lights {
					if i == MaxLights {
						break
					}
					out[i] = toView(in, l.Position)
				}
				return out
			},
			"light_colors": func(in *DrawInput) any {
				out := make([]mgl32.Vec3, MaxLights)
				for i, l := range in.State.Scene.Lights {
					if i == MaxLights {
						break
					}
					out[i] = l.Color
				}
				return out
			},
			"light_count": func(in *DrawInput) any {
				return int32(min(len(in.State.Scene.Lights), MaxLights))
			},
			"material_texture":    texture,
			"is_textured":         isTextured,
			"material_base_color": baseColor,
			"material_shininess":  shininess,
		},
		Include: IncludeFor(PassOpaque),
	}
}

// MirrorSpec draws a reflective object sampling its reflection in screen space.
func MirrorSpec() PassSpec {
	return PassSpec{
		Kind:           PassMirror,
		VertexShader:   "shaders/mirror.vert",
		FragmentShader: "shaders/mirror.frag",
		Uniforms: map[string]UniformSource{
			"mat_model_view_projection": mvp,
			"canvas_width":              canvasWidth,
			"canvas_height":             canvasHeight,
			"reflection_texture":        input(InputReflection),
			"material_texture":          texture,
			"is_textured":               isTextured,
			"material_base_color":       baseColor,
		},
		Include: IncludeFor(PassMirror),
	}
}

// NormalsSpec is the debug overlay that colors surfaces by view-space normal.
func NormalsSpec() PassSpec {
	return PassSpec{
		Kind:           PassNormals,
		VertexShader:   "shaders/normals.vert",
		FragmentShader: "shaders/normals.frag",
		Uniforms: map[string]UniformSource{
			"mat_model_view_projection": mvp,
			"mat_normals_model_view":    normalsMV,
		},
		Attributes: []gpu.AttributeBinding{
			{Name: "vertex_position", Source: gpu.SourcePosition},
			{Name: "vertex_normal", Source: gpu.SourceNormal},
		},
		Include: IncludeFor(PassNormals),
	}
}

// ShadowDepthSpec writes the encoded distance to the light, rendered from the light.
func ShadowDepthSpec() PassSpec {
	return PassSpec{
		Kind:           PassShadowDepth,
		VertexShader:   "shaders/shadow_depth.vert",
		FragmentShader: "shaders/shadow_depth.frag",
		Uniforms: map[string]UniformSource{
			"mat_model_view_projection": mvp,
			"mat_model_to_world":        modelToWorld,
			"light_position": func(in *DrawInput) any {
				p, _ := firstLight(in)
				return p
			},
		},
		Attributes: []gpu.AttributeBinding{{Name: "vertex_position", Source: gpu.SourcePosition}},
		Include:    IncludeFor(PassShadowDepth),
	}
}

// ShadowsSpec writes the occlusion mask: white where the first light is blocked.
func ShadowsSpec() PassSpec {
	return PassSpec{
		Kind:           PassShadows,
		VertexShader:   "shaders/shadows.vert",
		FragmentShader: "shaders/shadows.frag",
		Uniforms: map[string]UniformSource{
			"mat_model_view_projection": mvp,
			"mat_model_to_world":        modelToWorld,
			"mat_light_view_projection": input(InputLightViewProjection),
			"light_position": func(in *DrawInput) any {
				p, _ := firstLight(in)
				return p
			},
			"shadow_map":  input(InputShadowMap),
			"shadow_bias": func(in *DrawInput) any { return in.State.Settings.ShadowBias },
		},
		Attributes: []gpu.AttributeBinding{{Name: "vertex_position", Source: gpu.SourcePosition}},
		Include:    IncludeFor(PassShadows),
	}
}

// GodRaysSpec ray-marches the water volume towards the first light.
func GodRaysSpec() PassSpec {
	return PassSpec{
		Kind:           PassFog,
		VertexShader:   "shaders/god_rays.vert",
		FragmentShader: "shaders/god_rays.frag",
		Uniforms: map[string]UniformSource{
			"mat_model_view_projection": mvp,
			"mat_model_to_world":        modelToWorld,
			"max_step":                  func(in *DrawInput) any { return int32(in.State.Settings.MaxStep) },
			"step_size":                 func(in *DrawInput) any { return in.State.Settings.StepSize },
			"cam_pos":                   func(in *DrawInput) any { return in.View.Eye },
			"cam_look_at":               func(in *DrawInput) any { return in.View.LookAt },
			"scattering_coeff":          func(in *DrawInput) any { return in.State.Settings.ScatteringCoeff },
			"absorption_coeff":          func(in *DrawInput) any { return in.State.Settings.AbsorptionCoeff },
			"normalization":             func(in *DrawInput) any { return in.State.Settings.Normalization },
			"frequency":                 func(in *DrawInput) any { return in.State.Settings.Frequency },
			"sphere_light":              func(in *DrawInput) any { return in.State.Settings.SphereLight },
			"time":                      func(in *DrawInput) any { return float32(in.State.AnimationTime) },
			"light_strength":            func(in *DrawInput) any { return in.State.Settings.LightStrength },
			"light_position": func(in *DrawInput) any {
				p, _ := firstLight(in)
				return p
			},
			"light_color": func(in *DrawInput) any {
				_, c := firstLight(in)
				return c
			},
		},
		Attributes: []gpu.AttributeBinding{{Name: "vertex_position", Source: gpu.SourcePosition}},
		Include:    IncludeFor(PassFog),
		Blend:      gpu.AlphaBlend,
		Depth:      gpu.DepthState{Func: gpu.CompareLessEqual},
	}
}

// MapMixerSpec combines the shadow mask, lit base and fog in screen space.
func MapMixerSpec() PassSpec {
	return PassSpec{
		Kind:           PassMapMixer,
		VertexShader:   "shaders/map_mixer.vert",
		FragmentShader: "shaders/map_mixer.frag",
		Uniforms: map[string]UniformSource{
			"mat_model_view_projection": mvp,
			"canvas_width":              canvasWidth,
			"canvas_height":             canvasHeight,
			"shadows":                   input(InputShadows),
			"blinn_phong":               input(InputBase),
			"fog":                       input(InputFog),
		},
		Attributes: []gpu.AttributeBinding{{Name: "vertex_position", Source: gpu.SourcePosition}},
		Include:    IncludeFor(PassMapMixer),
	}
}

// TransparentSpec draws translucent objects over the mixed image.
func TransparentSpec() PassSpec {
	return PassSpec{
		Kind:           PassTransparent,
		VertexShader:   "shaders/transparent_color.vert",
		FragmentShader: "shaders/transparent_color.frag",
		Uniforms: map[string]UniformSource{
			"mat_model_view_projection": mvp,
			"material_texture":          texture,
			"is_textured":               isTextured,
			"material_base_color":       baseColor,
			"material_base_opacity":     opacity,
		},
		Include: IncludeFor(PassTransparent),
		Blend:   gpu.AlphaBlend,
		Depth:   gpu.DepthState{ReadOnly: true},
	}
}

// DepthOfFieldSpec blurs the composed image by distance from the focus range.
func DepthOfFieldSpec() PassSpec {
	return PassSpec{
		Kind:           PassDepthOfField,
		VertexShader:   "shaders/depth_of_field.vert",
		FragmentShader: "shaders/depth_of_field.frag",
		Uniforms: map[string]UniformSource{
			"mat_model_view_projection": mvp,
			"mat_model_view":            modelView,
			"canvas_width":              canvasWidth,
			"canvas_height":             canvasHeight,
			"color_texture":             input(InputColor),
			"min_focus_distance":        func(in *DrawInput) any { return in.State.Settings.MinFocusDistance },
			"max_focus_distance":        func(in *DrawInput) any { return in.State.Settings.MaxFocusDistance },
			"kernel_size":               func(in *DrawInput) any { return int32(in.State.Settings.DoFKernelSize) },
		},
		Attributes: []gpu.AttributeBinding{{Name: "vertex_position", Source: gpu.SourcePosition}},
		Include:    IncludeFor(PassDepthOfField),
	}
}

// DefaultPassSpecs returns every pass of the pipeline.
func DefaultPassSpecs() []PassSpec {
	return []PassSpec{
		PreprocessingSpec(),
		BackgroundSpec(),
		TerrainSpec(),
		BlinnPhongSpec(),
		MirrorSpec(),
		NormalsSpec(),
		ShadowDepthSpec(),
		ShadowsSpec(),
		GodRaysSpec(),
		MapMixerSpec(),
		TransparentSpec(),
		DepthOfFieldSpec(),
	}
}
