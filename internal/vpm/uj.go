package vpm

import (
	"fmt"
	"math"
	"runtime"
	"sync"
)

// Evaluator computes the induced velocity U and velocity Jacobian J for every
// active particle and writes them in place. Implementations may parallelize
// internally, but per-particle accumulation must stay order-deterministic so
// repeated evaluations of the same field agree bitwise.
type Evaluator interface {
	Evaluate(f *Field) error
}

const fourPi = 4 * math.Pi

// pairUJ accumulates the velocity and Jacobian induced at a target offset dx
// from a source particle of strength gamma and core size sigma.
//
// The self/coincident case (r = 0) contributes no velocity but a nonzero
// rotation to the Jacobian through the limit g(r)/r^3 -> zeta(0)/3.
func pairUJ(k *Kernel, dx, gamma Vec3, sigma float64, u *Vec3, jac *Mat3) {
	r2 := dx.Norm2()
	if r2 == 0 {
		f := k.Zeta(0) / (3 * sigma * sigma * sigma * fourPi)
		// dU_m/dx_k -= f * (e_k x gamma)_m, the r -> 0 limit of the
		// general branch below
		jac[0][1] -= f * gamma[2]
		jac[0][2] += f * gamma[1]
		jac[1][0] += f * gamma[2]
		jac[1][2] -= f * gamma[0]
		jac[2][0] -= f * gamma[1]
		jac[2][1] += f * gamma[0]
		return
	}
	r := math.Sqrt(r2)
	g, dgdr := k.GDgDr(r / sigma)

	r3 := r2 * r
	f := g / (r3 * fourPi)
	// d/dr of g(r/sigma)/r^3, divided by r
	fpr := (dgdr/(sigma*r3) - 3*g/(r2*r2)) / (r * fourPi)

	cr := dx.Cross(gamma)
	u[0] -= f * cr[0]
	u[1] -= f * cr[1]
	u[2] -= f * cr[2]

	for m := 0; m < 3; m++ {
		for c := 0; c < 3; c++ {
			jac[m][c] -= fpr * dx[c] * cr[m]
		}
	}
	jac[0][1] -= f * gamma[2]
	jac[0][2] += f * gamma[1]
	jac[1][0] += f * gamma[2]
	jac[1][2] -= f * gamma[0]
	jac[2][0] -= f * gamma[1]
	jac[2][1] += f * gamma[0]
}

// DirectEvaluator computes U and J by exact O(N^2) pairwise summation with
// the configured kernel. It is the reference every accelerated strategy is
// measured against.
//
// With Parallel set, targets are partitioned across goroutines; each target's
// source loop still runs in slot order, so results are identical to the
// sequential pass.
type DirectEvaluator struct {
	Parallel bool
}

func (d *DirectEvaluator) Evaluate(f *Field) error {
	if err := checkFinite(f); err != nil {
		return err
	}
	ps := f.Particles()
	n := len(ps)

	if d.Parallel && n >= 256 {
		workers := runtime.GOMAXPROCS(0)
		chunk := (n + workers - 1) / workers
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			lo := w * chunk
			hi := lo + chunk
			if hi > n {
				hi = n
			}
			if lo >= hi {
				break
			}
			wg.Add(1)
			go func(lo, hi int) {
				defer wg.Done()
				d.evalRange(f, ps, lo, hi)
			}(lo, hi)
		}
		wg.Wait()
		return nil
	}

	d.evalRange(f, ps, 0, n)
	return nil
}

func (d *DirectEvaluator) evalRange(f *Field, ps []Particle, lo, hi int) {
	for i := lo; i < hi; i++ {
		var u Vec3
		var jac Mat3
		for j := range ps {
			pairUJ(&f.Kernel, ps[i].X.Sub(ps[j].X), ps[j].Gamma, ps[j].Sigma, &u, &jac)
		}
		ps[i].U = u
		ps[i].J = jac
	}
}

func checkFinite(f *Field) error {
	for i := range f.Particles() {
		p := &f.Particles()[i]
		if !p.isValid() || math.IsInf(p.Sigma, 0) {
			return fmt.Errorf("%w: particle index %d is not finite", ErrEvaluation, p.Index)
		}
	}
	return nil
}
