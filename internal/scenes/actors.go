package scenes

import (
	"math"

	"reefview/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// OrbitLight moves a light on a horizontal circle around Center.
type OrbitLight struct {
	Light  *scene.Light
	Center mgl32.Vec3
	Radius float32
	Speed  float32 // radians per second
	angle  float32
}

func (o *OrbitLight) Evolve(dt float32) {
	o.angle = float32(math.Mod(float64(o.angle+o.Speed*dt), 2*math.Pi))
	s, c := math.Sincos(float64(o.angle))
	o.Light.Position = o.Center.Add(mgl32.Vec3{o.Radius * float32(c), o.Radius * float32(s), 0})
}

// Swimmer circles an object around Center, facing along its path, with a
// slight vertical bob.
type Swimmer struct {
	Object *scene.Object
	Center mgl32.Vec3
	Radius float32
	Speed  float32 // radians per second
	Phase  float32
	Bob    float32
}

func (s *Swimmer) Evolve(dt float32) {
	s.Phase = float32(math.Mod(float64(s.Phase+s.Speed*dt), 2*math.Pi))
	sin, cos := math.Sincos(float64(s.Phase))
	s.Object.Transform.Translation = s.Center.Add(mgl32.Vec3{
		s.Radius * float32(cos),
		s.Radius * float32(sin),
		s.Bob * float32(math.Sin(float64(3*s.Phase))),
	})
	heading := s.Phase + math.Pi/2
	if s.Speed < 0 {
		heading -= math.Pi
	}
	s.Object.Transform.Rotation = mgl32.QuatRotate(heading, scene.Up)
}

// pingPong runs a tween back and forth forever.
type pingPong struct {
	from, to float32
	duration float32
	easing   ease.TweenFunc
	tween    *gween.Tween
}

func newPingPong(from, to, duration float32, easing ease.TweenFunc) *pingPong {
	return &pingPong{from: from, to: to, duration: duration, easing: easing, tween: gween.New(from, to, duration, easing)}
}

func (p *pingPong) Update(dt float32) float32 {
	v, done := p.tween.Update(dt)
	if done {
		p.from, p.to = p.to, p.from
		p.tween = gween.New(p.from, p.to, p.duration, p.easing)
	}
	return v
}

// Pulse scales an object between two uniform factors.
type Pulse struct {
	Object *scene.Object
	pp     *pingPong
}

// NewPulse grows and shrinks o between lo and hi, one way per half period.
func NewPulse(o *scene.Object, lo, hi, halfPeriod float32) *Pulse {
	return &Pulse{Object: o, pp: newPingPong(lo, hi, halfPeriod, ease.InOutSine)}
}

func (p *Pulse) Evolve(dt float32) {
	v := p.pp.Update(dt)
	p.Object.Transform.Scale = mgl32.Vec3{v, v, v}
}

// Drift moves an object up and down by Amplitude around its start height.
type Drift struct {
	Object *scene.Object
	base   float32
	pp     *pingPong
}

func NewDrift(o *scene.Object, amplitude, halfPeriod float32) *Drift {
	return &Drift{
		Object: o,
		base:   o.Transform.Translation.Z(),
		pp:     newPingPong(-amplitude, amplitude, halfPeriod, ease.InOutQuad),
	}
}

func (d *Drift) Evolve(dt float32) {
	d.Object.Transform.Translation[2] = d.base + d.pp.Update(dt)
}
