package vpm

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// DefaultRelaxFactor is the standard Pedrizzetti blending weight.
const DefaultRelaxFactor = 0.3

// RelaxationScheme periodically realigns a particle's strength with the local
// principal strain direction to damp spurious stretching growth. Order
// reports how many evaluation passes the scheme needs (1 for the Pedrizzetti
// variants); -1 marks a scheme that is always skippable.
type RelaxationScheme interface {
	Relax(p *Particle)
	Order() int
	Name() string
}

// NoRelaxation disables relaxation.
type NoRelaxation struct{}

func (NoRelaxation) Relax(*Particle) {}
func (NoRelaxation) Order() int      { return -1 }
func (NoRelaxation) Name() string    { return "none" }

// Pedrizzetti blends Gamma toward the dominant eigenvector of the local
// strain-rate tensor: Gamma' = (1-lambda)*Gamma + lambda*|Gamma|*e.
type Pedrizzetti struct {
	Lambda float64
}

func (r *Pedrizzetti) Relax(p *Particle) {
	relaxToStrain(p, r.Lambda, false)
}

func (r *Pedrizzetti) Order() int   { return 1 }
func (r *Pedrizzetti) Name() string { return "pedrizzetti" }

// CorrectedPedrizzetti applies the same blend with a magnitude correction
// that restores |Gamma| exactly after the blend.
type CorrectedPedrizzetti struct {
	Lambda float64
}

func (r *CorrectedPedrizzetti) Relax(p *Particle) {
	relaxToStrain(p, r.Lambda, true)
}

func (r *CorrectedPedrizzetti) Order() int   { return 1 }
func (r *CorrectedPedrizzetti) Name() string { return "correctedpedrizzetti" }

func relaxToStrain(p *Particle, lambda float64, corrected bool) {
	norm := p.Gamma.Norm()
	if norm == 0 {
		return
	}

	e, ok := dominantStrainDir(p.J)
	if !ok {
		return
	}
	ghat := p.Gamma.Scale(1 / norm)
	// Orient the eigenvector along the current strength.
	align := e.Dot(ghat)
	if align < 0 {
		e = e.Scale(-1)
		align = -align
	}

	p.Gamma = p.Gamma.Scale(1 - lambda).Add(e.Scale(lambda * norm))
	if corrected {
		// |Gamma'|^2 = |Gamma|^2 * (1 - 2*lambda*(1-lambda)*(1 - e.ghat))
		f := 1 - 2*lambda*(1-lambda)*(1-align)
		if f > 0 {
			p.Gamma = p.Gamma.Scale(1 / math.Sqrt(f))
		}
	}
}

// dominantStrainDir returns the unit eigenvector of the largest eigenvalue of
// the symmetric part of j.
func dominantStrainDir(j Mat3) (Vec3, bool) {
	s := j.Sym()
	sym := mat.NewSymDense(3, []float64{
		s[0][0], s[0][1], s[0][2],
		s[0][1], s[1][1], s[1][2],
		s[0][2], s[1][2], s[2][2],
	})

	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		return Vec3{}, false
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// Eigenvalues come back in ascending order; the principal strain
	// direction is the last column.
	e := Vec3{vecs.At(0, 2), vecs.At(1, 2), vecs.At(2, 2)}
	n := e.Norm()
	if n == 0 {
		return Vec3{}, false
	}
	return e.Scale(1 / n), true
}
