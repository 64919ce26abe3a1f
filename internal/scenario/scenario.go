// Package scenario seeds fields with canned initial vorticity distributions.
package scenario

import (
	"math"

	"github.com/kursatkara/govpm/internal/vpm"
)

// Seeder appends an initial particle distribution to a field.
type Seeder interface {
	Seed(f *vpm.Field) error
}

// Ring parameterizes a thin vortex ring.
type Ring struct {
	Center      vpm.Vec3
	Radius      float64
	Circulation float64
	Sigma       float64 // core size of every discretizing particle
	N           int     // particles along the ring
}

// Seed discretizes the ring in the xy-plane around Center and appends the
// particles. Each particle carries the circulation times its arc length,
// tangentially oriented.
func (r Ring) Seed(f *vpm.Field) error {
	ds := 2 * math.Pi * r.Radius / float64(r.N)
	for i := 0; i < r.N; i++ {
		phi := 2 * math.Pi * float64(i) / float64(r.N)
		x := r.Center.Add(vpm.Vec3{r.Radius * math.Cos(phi), r.Radius * math.Sin(phi), 0})
		tangent := vpm.Vec3{-math.Sin(phi), math.Cos(phi), 0}
		p := vpm.Particle{
			X:           x,
			Gamma:       tangent.Scale(r.Circulation * ds),
			Sigma:       r.Sigma,
			Vol:         ds * math.Pi * r.Sigma * r.Sigma,
			Circulation: math.Abs(r.Circulation) * ds,
		}
		if _, err := f.AddParticle(p); err != nil {
			return err
		}
	}
	return nil
}

// Pair parameterizes two co-rotating strength-carrying particles, the
// smallest configuration with a closed-form solution.
type Pair struct {
	Separation  float64
	Circulation float64
	Sigma       float64
}

func (p Pair) Seed(f *vpm.Field) error {
	gamma := vpm.Vec3{0, 0, p.Circulation}
	if _, err := f.Add(vpm.Vec3{-p.Separation / 2, 0, 0}, gamma, p.Sigma); err != nil {
		return err
	}
	_, err := f.Add(vpm.Vec3{p.Separation / 2, 0, 0}, gamma, p.Sigma)
	return err
}

// RotationRate returns the analytic mutual rotation rate of the pair under
// the given kernel.
func (p Pair) RotationRate(k vpm.Kernel) float64 {
	d := p.Separation
	return p.Circulation * k.G(d/p.Sigma) / (2 * math.Pi * d * d * d)
}
