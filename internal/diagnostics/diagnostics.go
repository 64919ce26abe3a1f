// Package diagnostics provides field monitors for tracking conservation and
// resolution quality during a run.
package diagnostics

import (
	"math"

	"github.com/kursatkara/govpm/internal/vpm"
)

// TotalCirculation tracks |sum Gamma|, which an inviscid unbounded run must
// conserve.
type TotalCirculation struct {
	value float64
}

func (*TotalCirculation) Name() string { return "total_circulation" }

func (m *TotalCirculation) Observe(f *vpm.Field) {
	m.value = f.TotalCirculation().Norm()
}

func (m *TotalCirculation) Value() float64 { return m.value }
func (m *TotalCirculation) Reset()         { m.value = 0 }

// Enstrophy tracks the particle enstrophy proxy sum |Gamma|^2 / sigma^3,
// a growth sensor for stretching instability.
type Enstrophy struct {
	value float64
}

func (*Enstrophy) Name() string { return "enstrophy" }

func (m *Enstrophy) Observe(f *vpm.Field) {
	sum := 0.0
	for i := range f.Particles() {
		p := &f.Particles()[i]
		sum += p.Gamma.Norm2() / (p.Sigma * p.Sigma * p.Sigma)
	}
	m.value = sum
}

func (m *Enstrophy) Value() float64 { return m.value }
func (m *Enstrophy) Reset()         { m.value = 0 }

// MeanSigma tracks the mean core size, the resolution scale of the
// discretization.
type MeanSigma struct {
	value float64
}

func (*MeanSigma) Name() string { return "mean_sigma" }

func (m *MeanSigma) Observe(f *vpm.Field) {
	if f.Len() == 0 {
		m.value = 0
		return
	}
	sum := 0.0
	for i := range f.Particles() {
		sum += f.Particles()[i].Sigma
	}
	m.value = sum / float64(f.Len())
}

func (m *MeanSigma) Value() float64 { return m.value }
func (m *MeanSigma) Reset()         { m.value = 0 }

// MaxVelocity tracks the peak induced speed; a divergence sensor commonly
// used in halt predicates.
type MaxVelocity struct {
	value float64
}

func (*MaxVelocity) Name() string { return "max_velocity" }

func (m *MaxVelocity) Observe(f *vpm.Field) {
	peak := 0.0
	for i := range f.Particles() {
		peak = math.Max(peak, f.Particles()[i].U.Norm())
	}
	m.value = peak
}

func (m *MaxVelocity) Value() float64 { return m.value }
func (m *MaxVelocity) Reset()         { m.value = 0 }
