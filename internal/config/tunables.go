package config

import "github.com/go-gl/mathgl/mgl32"

// Tunables is the flat set of render settings for one frame. It is a value:
// the renderer receives a copy and never observes later edits.
type Tunables struct {
	DepthOfField     bool    `yaml:"depth_of_field"`
	MinFocusDistance float32 `yaml:"min_focus_distance"`
	MaxFocusDistance float32 `yaml:"max_focus_distance"`
	DoFKernelSize    int     `yaml:"dof_kernel_size"`

	Mirror        bool `yaml:"mirror"`
	RenderNormals bool `yaml:"render_normals"`

	MaxStep         int     `yaml:"max_step"`
	StepSize        float32 `yaml:"step_size"`
	ScatteringCoeff float32 `yaml:"scattering_coeff"`
	AbsorptionCoeff float32 `yaml:"absorption_coeff"`
	Normalization   float32 `yaml:"normalization"`
	Frequency       float32 `yaml:"frequency"`
	SphereLight     bool    `yaml:"sphere_light"`
	LightStrength   float32 `yaml:"light_strength"`

	ShadowBias float32 `yaml:"shadow_bias"`

	BackgroundColor mgl32.Vec4 `yaml:"background_color"`
	ClearColor      mgl32.Vec4 `yaml:"clear_color"`

	FPSLimit int `yaml:"fps_limit"`
}

// Defaults returns the startup settings.
func Defaults() Tunables {
	return Tunables{
		DepthOfField:     false,
		MinFocusDistance: 5,
		MaxFocusDistance: 100,
		DoFKernelSize:    7,

		Mirror:        true,
		RenderNormals: false,

		MaxStep:         50,
		StepSize:        0.1,
		ScatteringCoeff: 0.05,
		AbsorptionCoeff: 0.04,
		Normalization:   0.5,
		Frequency:       0.1,
		SphereLight:     false,
		LightStrength:   5000,

		ShadowBias: 0.05,

		BackgroundColor: mgl32.Vec4{0, 0, 0, 1},
		ClearColor:      mgl32.Vec4{0, 0, 0, 1},

		FPSLimit: 60,
	}
}

// Slider ranges.
const (
	MaxStepMin, MaxStepMax             = 3, 200
	StepSizeMax                        = 10
	CoeffMax                           = 0.1
	LightStrengthMax                   = 100000
	FrequencyMax                       = 220
	MinFocusMax                        = 50
	MaxFocusMin, MaxFocusMax           = 10, 200
	KernelSizeMax                      = 25
	FPSLimitMax                        = 1000
	ShadowBiasMax              float32 = 1
)

// Clamped returns t with every numeric field inside its slider range.
func (t Tunables) Clamped() Tunables {
	t.MaxStep = clampInt(t.MaxStep, MaxStepMin, MaxStepMax)
	t.StepSize = mgl32.Clamp(t.StepSize, 0, StepSizeMax)
	t.ScatteringCoeff = mgl32.Clamp(t.ScatteringCoeff, 0, CoeffMax)
	t.AbsorptionCoeff = mgl32.Clamp(t.AbsorptionCoeff, 0, CoeffMax)
	t.LightStrength = mgl32.Clamp(t.LightStrength, 0, LightStrengthMax)
	t.Normalization = mgl32.Clamp(t.Normalization, 0, 1)
	t.Frequency = mgl32.Clamp(t.Frequency, 0, FrequencyMax)
	t.MinFocusDistance = mgl32.Clamp(t.MinFocusDistance, 0, MinFocusMax)
	t.MaxFocusDistance = mgl32.Clamp(t.MaxFocusDistance, MaxFocusMin, MaxFocusMax)
	t.DoFKernelSize = clampInt(t.DoFKernelSize, 0, KernelSizeMax)
	t.FPSLimit = clampInt(t.FPSLimit, 0, FPSLimitMax)
	t.ShadowBias = mgl32.Clamp(t.ShadowBias, 0, ShadowBiasMax)
	return t
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Overrides holds per-scene settings. Nil fields keep the global value.
type Overrides struct {
	DepthOfField     *bool
	MinFocusDistance *float32
	MaxFocusDistance *float32
	DoFKernelSize    *int
	Mirror           *bool
	RenderNormals    *bool
	LightStrength    *float32
	SphereLight      *bool
	ShadowBias       *float32
	BackgroundColor  *mgl32.Vec4
}

// Merge returns t with every non-nil override applied. Scene values win.
func (t Tunables) Merge(o Overrides) Tunables {
	if o.DepthOfField != nil {
		t.DepthOfField = *o.DepthOfField
	}
	if o.MinFocusDistance != nil {
		t.MinFocusDistance = *o.MinFocusDistance
	}
	if o.MaxFocusDistance != nil {
		t.MaxFocusDistance = *o.MaxFocusDistance
	}
	if o.DoFKernelSize != nil {
		t.DoFKernelSize = *o.DoFKernelSize
	}
	if o.Mirror != nil {
		t.Mirror = *o.Mirror
	}
	if o.RenderNormals != nil {
		t.RenderNormals = *o.RenderNormals
	}
	if o.LightStrength != nil {
		t.LightStrength = *o.LightStrength
	}
	if o.SphereLight != nil {
		t.SphereLight = *o.SphereLight
	}
	if o.ShadowBias != nil {
		t.ShadowBias = *o.ShadowBias
	}
	if o.BackgroundColor != nil {
		t.BackgroundColor = *o.BackgroundColor
	}
	return t
}

// Ptr returns a pointer to v, for building Overrides literals.
func Ptr[T any](v T) *T {
	return &v
}
