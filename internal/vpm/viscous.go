package vpm

import "math"

// ViscousScheme models viscous diffusion by mutating particle state in
// place. Each variant documents which particle fields it touches; the
// kernel compatibility is checked once, before the first step.
type ViscousScheme interface {
	// Apply performs the diffusion for a time increment dt.
	Apply(f *Field, dt float64)
	// Compatible reports whether the scheme can run under the given kernel.
	Compatible(k KernelID) bool
	Name() string
}

// Inviscid is the true no-op scheme.
type Inviscid struct{}

func (Inviscid) Apply(*Field, float64)    {}
func (Inviscid) Compatible(KernelID) bool { return true }
func (Inviscid) Name() string             { return "inviscid" }

// CoreSpreading diffuses vorticity by growing every core size with the
// closed-form Gaussian solution sigma^2 <- sigma^2 + 2*nu*dt. It mutates
// Sigma only and is exact only under the gaussian-erf kernel.
type CoreSpreading struct {
	Nu   float64 // kinematic viscosity
	NSub int     // sub-steps per Apply; <= 1 means a single step
}

func (cs *CoreSpreading) Apply(f *Field, dt float64) {
	nsub := cs.NSub
	if nsub < 1 {
		nsub = 1
	}
	h := dt / float64(nsub)
	for s := 0; s < nsub; s++ {
		for i := range f.Particles() {
			p := &f.Particles()[i]
			p.Sigma = math.Sqrt(p.Sigma*p.Sigma + 2*cs.Nu*h)
		}
	}
}

func (cs *CoreSpreading) Compatible(k KernelID) bool { return k == KernelGaussianErf }
func (cs *CoreSpreading) Name() string               { return "corespreading" }

// PSE diffuses vorticity by particle strength exchange: pairs of particles
// trade Gamma through the regularized delta, conserving the total strength
// exactly. It mutates Gamma only and runs every Every steps (treating the
// skipped interval in one lumped exchange).
type PSE struct {
	Nu    float64
	Every int // cadence in steps; <= 1 runs every step
}

func (pse *PSE) Apply(f *Field, dt float64) {
	every := pse.Every
	if every < 1 {
		every = 1
	}
	if f.Nt%every != 0 {
		return
	}
	h := dt * float64(every)

	ps := f.Particles()
	n := len(ps)
	dgam := make([]Vec3, n)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			// Symmetrized core keeps the exchange antisymmetric.
			sgm := 0.5 * (ps[i].Sigma + ps[j].Sigma)
			r := ps[i].X.Sub(ps[j].X).Norm()
			zeta := f.Kernel.Zeta(r/sgm) / (fourPi * sgm * sgm * sgm)
			coef := 2 * pse.Nu / (sgm * sgm) * zeta

			ex := ps[j].Gamma.Scale(ps[i].Vol).Sub(ps[i].Gamma.Scale(ps[j].Vol)).Scale(coef)
			dgam[i] = dgam[i].Add(ex)
			dgam[j] = dgam[j].Sub(ex)
		}
	}
	for i := 0; i < n; i++ {
		ps[i].Gamma = ps[i].Gamma.Add(dgam[i].Scale(h))
	}
}

func (pse *PSE) Compatible(k KernelID) bool {
	return k == KernelGaussianErf || k == KernelWinckelmans
}
func (pse *PSE) Name() string { return "pse" }
