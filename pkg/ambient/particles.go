package ambient

import "math/rand"

// Particle is one floating speck in the background field.
type Particle struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	VX   float64 `json:"vx"` // velocity per step
	VY   float64 `json:"vy"`
	Size float64 `json:"size"`
	Life float64 `json:"life"` // 0..1, fades out at 0
}

// Field animates a set of drifting particles inside a bounded canvas.
// Step is pure bookkeeping; rendering belongs to the UI layer.
type Field struct {
	Width  float64
	Height float64

	particles []Particle
	rng       *rand.Rand
}

// NewField seeds count particles across the canvas. A nil rng gets a
// self-seeded one.
func NewField(width, height float64, count int, rng *rand.Rand) *Field {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	f := &Field{Width: width, Height: height, rng: rng}
	f.particles = make([]Particle, count)
	for i := range f.particles {
		f.particles[i] = f.spawn()
	}
	return f
}

func (f *Field) spawn() Particle {
	return Particle{
		X:    f.rng.Float64() * f.Width,
		Y:    f.rng.Float64() * f.Height,
		VX:   (f.rng.Float64() - 0.5) * 0.8,
		VY:   -0.2 - f.rng.Float64()*0.6, // drift upward
		Size: 2 + f.rng.Float64()*4,
		Life: 0.4 + f.rng.Float64()*0.6,
	}
}

// Particles returns the current field contents.
func (f *Field) Particles() []Particle {
	out := make([]Particle, len(f.particles))
	copy(out, f.particles)
	return out
}

// Step advances every particle by one frame. speed scales velocity and
// decay together, matching the animation-speed preference; particles
// that fade out or leave the canvas respawn.
func (f *Field) Step(speed float64) {
	if speed <= 0 {
		return
	}
	for i := range f.particles {
		p := &f.particles[i]
		p.X += p.VX * speed
		p.Y += p.VY * speed
		p.Life -= 0.004 * speed

		if p.Life <= 0 || p.Y < -p.Size || p.X < -p.Size || p.X > f.Width+p.Size {
			*p = f.spawn()
			p.Y = f.Height + p.Size // re-enter from the bottom
		}
	}
}
