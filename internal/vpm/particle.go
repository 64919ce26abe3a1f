package vpm

// Particle is a regularized vortex particle: a blob of vorticity of strength
// Gamma (vorticity times volume) smoothed over core radius Sigma.
//
// U, J, SFS and C are derived quantities recomputed every step by the
// evaluator and the active closure models; they do not need to survive a
// restart.
type Particle struct {
	X     Vec3    // position
	Gamma Vec3    // vector circulation (vorticity * volume)
	Sigma float64 // core size, always > 0

	Vol         float64 // particle volume
	Circulation float64 // scalar circulation magnitude
	Index       int     // persistent identity, assigned at Add, survives slot swaps
	Static      bool    // static particles induce velocity but are not advanced

	U   Vec3    // induced velocity at X
	J   Mat3    // velocity Jacobian dU_i/dx_j at X
	SFS Vec3    // subfilter-scale closure contribution to dGamma/dt
	C   float64 // per-particle SFS model coefficient
}

// Vorticity returns the particle's mean vorticity Gamma/Vol, or the zero
// vector for a volume-less particle.
func (p *Particle) Vorticity() Vec3 {
	if p.Vol == 0 {
		return Vec3{}
	}
	return p.Gamma.Scale(1 / p.Vol)
}

func (p *Particle) isValid() bool {
	return p.Sigma > 0 && p.X.IsValid() && p.Gamma.IsValid()
}
