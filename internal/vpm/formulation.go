package vpm

// Formulation selects between the classical and the reformulated
// vorticity-strength equations through two numeric coefficients.
//
// The reformulated scheme removes the component of the stretching rate that
// is parallel to Gamma, weighted by Z = (G+F)/(1+3F), and contracts the core
// size to compensate, which keeps the particle volume consistent with the
// stretched vorticity. F = G = 0 recovers the classical scheme (Z = 0, no
// core contraction).
type Formulation struct {
	F float64
	G float64
}

// ClassicalVPM is the classical vorticity-strength equation.
var ClassicalVPM = Formulation{F: 0, G: 0}

// ReformulatedVPM is the default reformulated scheme.
var ReformulatedVPM = Formulation{F: 0, G: 1.0 / 5.0}

// Z returns the stretching-projection coefficient (G+F)/(1+3F).
func (fm Formulation) Z() float64 {
	return (fm.G + fm.F) / (1 + 3*fm.F)
}
