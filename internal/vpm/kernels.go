package vpm

import "math"

// KernelID is an explicit tag identifying a standard kernel. Scheme
// compatibility is resolved against the tag at configuration time, never by
// comparing function values at runtime.
type KernelID int

const (
	KernelCustom KernelID = iota
	KernelSingular
	KernelGaussian
	KernelGaussianErf
	KernelWinckelmans
)

func (id KernelID) String() string {
	switch id {
	case KernelSingular:
		return "singular"
	case KernelGaussian:
		return "gaussian"
	case KernelGaussianErf:
		return "gaussianerf"
	case KernelWinckelmans:
		return "winckelmans"
	default:
		return "custom"
	}
}

// Kernel bundles the regularization functions of a smoothing kernel as pure
// scalar functions of the normalized distance r = |x|/sigma.
//
// Zeta is the regularized delta, G the Biot-Savart weight and DgDr its
// derivative; GDgDr evaluates both in one call for the hot pair loop. The
// functions satisfy g'(r) = r^2 * zeta(r); the 1/(4*pi) normalization is
// carried by the Biot-Savart sum, not by the kernel.
type Kernel struct {
	ID    KernelID
	Order int // regularization order
	Exp   int // radial exponent, bookkeeping only

	Zeta  func(r float64) float64
	G     func(r float64) float64
	DgDr  func(r float64) float64
	GDgDr func(r float64) (g, dgdr float64)
}

const sqrt2OverPi = 0.7978845608028654 // sqrt(2/pi)

// SingularKernel is the unregularized Biot-Savart kernel. Its delta is zero
// everywhere except the origin, so coincident particles contribute nothing.
var SingularKernel = Kernel{
	ID:    KernelSingular,
	Order: 0,
	Exp:   -1,
	Zeta:  func(r float64) float64 { return 0 },
	G:     func(r float64) float64 { return 1 },
	DgDr:  func(r float64) float64 { return 0 },
	GDgDr: func(r float64) (float64, float64) { return 1, 0 },
}

// GaussianKernel is the second-order exponential kernel g(r) = 1 - exp(-r^3).
var GaussianKernel = Kernel{
	ID:    KernelGaussian,
	Order: 2,
	Exp:   3,
	Zeta:  func(r float64) float64 { return 3 * math.Exp(-r*r*r) },
	G:     func(r float64) float64 { return 1 - math.Exp(-r*r*r) },
	DgDr:  func(r float64) float64 { return 3 * r * r * math.Exp(-r*r*r) },
	GDgDr: func(r float64) (float64, float64) {
		e := math.Exp(-r * r * r)
		return 1 - e, 3 * r * r * e
	},
}

// GaussianErfKernel is the true Gaussian kernel. It is the default and the
// only kernel under which core spreading is exact.
var GaussianErfKernel = Kernel{
	ID:    KernelGaussianErf,
	Order: 2,
	Exp:   2,
	Zeta:  func(r float64) float64 { return sqrt2OverPi * math.Exp(-0.5*r*r) },
	G: func(r float64) float64 {
		return math.Erf(r/math.Sqrt2) - sqrt2OverPi*r*math.Exp(-0.5*r*r)
	},
	DgDr: func(r float64) float64 { return sqrt2OverPi * r * r * math.Exp(-0.5*r*r) },
	GDgDr: func(r float64) (float64, float64) {
		e := math.Exp(-0.5 * r * r)
		return math.Erf(r/math.Sqrt2) - sqrt2OverPi*r*e, sqrt2OverPi * r * r * e
	},
}

// WinckelmansKernel is the high-order algebraic kernel of Winckelmans and
// Leonard.
var WinckelmansKernel = Kernel{
	ID:    KernelWinckelmans,
	Order: 4,
	Exp:   -7,
	Zeta: func(r float64) float64 {
		return 7.5 / math.Pow(r*r+1, 3.5)
	},
	G: func(r float64) float64 {
		return r * r * r * (r*r + 2.5) / math.Pow(r*r+1, 2.5)
	},
	DgDr: func(r float64) float64 {
		return 7.5 * r * r / math.Pow(r*r+1, 3.5)
	},
	GDgDr: func(r float64) (float64, float64) {
		r2 := r * r
		d := math.Pow(r2+1, 2.5)
		return r * r2 * (r2 + 2.5) / d, 7.5 * r2 / (d * (r2 + 1))
	},
}

// KernelByID returns the standard kernel carrying the given tag.
func KernelByID(id KernelID) (Kernel, bool) {
	switch id {
	case KernelSingular:
		return SingularKernel, true
	case KernelGaussian:
		return GaussianKernel, true
	case KernelGaussianErf:
		return GaussianErfKernel, true
	case KernelWinckelmans:
		return WinckelmansKernel, true
	}
	return Kernel{}, false
}
