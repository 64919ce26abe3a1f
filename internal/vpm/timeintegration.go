package vpm

import "fmt"

// TimeScheme advances a field one explicit step of size dt. The relax flag
// marks steps on which the caller's relaxation cadence fires; relaxation is
// applied only after the final stage, never between stages.
//
// Per-step sequence for every variant: evaluate UJ, apply the viscous scheme,
// apply the SFS model, form the strength RHS (stretching + SFS accumulator,
// projected by the formulation), advance X/Gamma/Sigma, then relax if due and
// advance t and nt.
type TimeScheme interface {
	Step(f *Field, dt float64, relax bool) error
}

// rhs computes the strength and core-size rates for one particle on the
// current stage state. The viscous contribution is not part of the RHS: the
// schemes mutate Gamma or Sigma directly per their contract.
func rhs(f *Field, p *Particle, z float64) (dgamma Vec3, dsigma float64) {
	dgamma = p.J.MulVec(p.Gamma).Add(p.SFS)
	if z == 0 {
		return dgamma, 0
	}
	norm := p.Gamma.Norm()
	if norm == 0 {
		return dgamma, 0
	}
	ghat := p.Gamma.Scale(1 / norm)
	proj := dgamma.Dot(ghat)
	dgamma = dgamma.Sub(ghat.Scale(z * proj))
	dsigma = -z * p.Sigma * proj / norm
	return dgamma, dsigma
}

func stepPrelude(f *Field) error {
	if !f.validated {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func stepEpilogue(f *Field, dt float64, relax bool) {
	if relax && f.Relax && f.Relaxation.Order() > 0 {
		for i := range f.Particles() {
			p := &f.Particles()[i]
			if !p.Static {
				f.Relaxation.Relax(p)
			}
		}
	}
	f.T += dt
	f.Nt++
}

// Euler is the first-order explicit integrator: one UJ evaluation per step.
type Euler struct{}

func (Euler) Step(f *Field, dt float64, relax bool) error {
	if err := stepPrelude(f); err != nil {
		return err
	}
	if err := f.Evaluator.Evaluate(f); err != nil {
		return &StepError{Step: f.Nt, Time: f.T, Wrapped: err}
	}
	f.Viscous.Apply(f, dt)
	f.SFS.Apply(f)

	z := f.Formulation.Z()
	uinf := f.Uinf(f.T)
	for i := range f.Particles() {
		p := &f.Particles()[i]
		if p.Static {
			continue
		}
		dgamma, dsigma := rhs(f, p, z)
		p.X = p.X.Add(p.U.Add(uinf).Scale(dt))
		p.Gamma = p.Gamma.Add(dgamma.Scale(dt))
		p.Sigma += dt * dsigma
	}

	stepEpilogue(f, dt, relax)
	return nil
}

// Williamson low-storage RK3 coefficients. Each stage folds the previous
// stage's register q into the new rate (q <- a*q + dt*f) and advances the
// state by b*q; c gives the stage time fraction.
var (
	rk3a = [3]float64{0, -5.0 / 9.0, -153.0 / 128.0}
	rk3b = [3]float64{1.0 / 3.0, 15.0 / 16.0, 8.0 / 15.0}
	rk3c = [3]float64{0, 1.0 / 3.0, 3.0 / 4.0}
	// Effective quadrature weight of each stage for state advanced outside
	// the register recursion (the viscous schemes); the weights sum to 1.
	rk3w = [3]float64{1.0 / 3.0, 5.0 / 12.0, 1.0 / 4.0}
)

// RK3 is the three-stage low-storage Runge-Kutta integrator. It keeps one
// register per particle for position, strength and core size, reused across
// steps.
type RK3 struct {
	qx []Vec3
	qg []Vec3
	qs []float64
}

func (r *RK3) ensureRegisters(n int) {
	if len(r.qx) != n {
		r.qx = make([]Vec3, n)
		r.qg = make([]Vec3, n)
		r.qs = make([]float64, n)
	}
}

func (r *RK3) Step(f *Field, dt float64, relax bool) error {
	if err := stepPrelude(f); err != nil {
		return err
	}
	r.ensureRegisters(f.Cap())
	for i := range r.qx[:f.Len()] {
		r.qx[i], r.qg[i], r.qs[i] = Vec3{}, Vec3{}, 0
	}

	z := f.Formulation.Z()
	for s := 0; s < 3; s++ {
		if err := f.Evaluator.Evaluate(f); err != nil {
			return &StepError{Step: f.Nt, Time: f.T, Wrapped: fmt.Errorf("stage %d: %w", s+1, err)}
		}
		f.Viscous.Apply(f, rk3w[s]*dt)
		f.SFS.Apply(f)

		uinf := f.Uinf(f.T + rk3c[s]*dt)
		a, b := rk3a[s], rk3b[s]
		for i := range f.Particles() {
			p := &f.Particles()[i]
			if p.Static {
				continue
			}
			dgamma, dsigma := rhs(f, p, z)

			r.qx[i] = r.qx[i].Scale(a).Add(p.U.Add(uinf).Scale(dt))
			p.X = p.X.Add(r.qx[i].Scale(b))

			r.qg[i] = r.qg[i].Scale(a).Add(dgamma.Scale(dt))
			p.Gamma = p.Gamma.Add(r.qg[i].Scale(b))

			r.qs[i] = a*r.qs[i] + dt*dsigma
			p.Sigma += b * r.qs[i]
		}
	}

	stepEpilogue(f, dt, relax)
	return nil
}
