package vpm

import "fmt"

// Field owns the particle arena and the field-level configuration. Capacity
// is fixed at construction; exceeding it is a fatal precondition violation,
// never an automatic resize.
//
// The arena is exclusively owned by the field. Particle slots are reordered
// by Remove (swap-with-last), so a slot returned by Add is valid only until
// the next removal; the Index field carries the persistent identity.
type Field struct {
	particles []Particle
	np        int
	nextIndex int

	T  float64 // current simulation time
	Nt int     // completed time steps

	Formulation Formulation
	Kernel      Kernel
	Viscous     ViscousScheme
	Relaxation  RelaxationScheme
	SFS         SFSModel
	Evaluator   Evaluator
	Uinf        func(t float64) Vec3
	Relax       bool

	validated bool
}

// NewField creates an empty field with the given fixed capacity and the
// default configuration: gaussian-erf kernel, reformulated scheme, inviscid,
// Pedrizzetti relaxation, no SFS model, direct evaluation, zero freestream.
func NewField(capacity int) *Field {
	return &Field{
		particles:   make([]Particle, capacity),
		Formulation: ReformulatedVPM,
		Kernel:      GaussianErfKernel,
		Viscous:     Inviscid{},
		Relaxation:  &Pedrizzetti{Lambda: DefaultRelaxFactor},
		SFS:         NoSFS{},
		Evaluator:   &DirectEvaluator{},
		Uinf:        func(float64) Vec3 { return Vec3{} },
		Relax:       true,
	}
}

func (f *Field) Len() int { return f.np }
func (f *Field) Cap() int { return len(f.particles) }

// Particles returns the active particles as a mutable slice view in slot
// order. The view is invalidated by Add and Remove.
func (f *Field) Particles() []Particle { return f.particles[:f.np] }

// Get returns the particle at slot i.
func (f *Field) Get(i int) (*Particle, error) {
	if i < 0 || i >= f.np {
		return nil, fmt.Errorf("%w: slot %d of %d", ErrOutOfRange, i, f.np)
	}
	return &f.particles[i], nil
}

// Add appends a particle with the given position, strength and core size,
// returning its slot. The scalar circulation defaults to |Gamma|.
func (f *Field) Add(x, gamma Vec3, sigma float64) (int, error) {
	return f.AddParticle(Particle{X: x, Gamma: gamma, Sigma: sigma})
}

// AddParticle appends p to the arena. Derived quantities in p are zeroed.
// Fails with ErrCapacity when the arena is full and ErrInvalidState on a
// non-positive core size.
func (f *Field) AddParticle(p Particle) (int, error) {
	if f.np >= len(f.particles) {
		return -1, fmt.Errorf("%w: %d particles", ErrCapacity, f.np)
	}
	if p.Sigma <= 0 {
		return -1, fmt.Errorf("%w: sigma %g", ErrInvalidState, p.Sigma)
	}
	p.U, p.J, p.SFS, p.C = Vec3{}, Mat3{}, Vec3{}, 0
	if p.Circulation == 0 {
		p.Circulation = p.Gamma.Norm()
	}
	p.Index = f.nextIndex
	f.nextIndex++
	f.particles[f.np] = p
	f.np++
	return f.np - 1, nil
}

// Remove deletes the particle at slot i by swapping the last active particle
// into its place. O(1); any held slot for the old last particle is
// invalidated.
func (f *Field) Remove(i int) error {
	if i < 0 || i >= f.np {
		return fmt.Errorf("%w: slot %d of %d", ErrOutOfRange, i, f.np)
	}
	f.np--
	f.particles[i] = f.particles[f.np]
	f.particles[f.np] = Particle{}
	return nil
}

// Validate checks the configured kernel against the viscous scheme and the
// presence of an evaluator. It runs once before the first step; an error here
// is fatal and never auto-corrected.
func (f *Field) Validate() error {
	if f.Evaluator == nil {
		return fmt.Errorf("%w: no evaluator configured", ErrEvaluation)
	}
	if f.Viscous == nil || f.Relaxation == nil || f.SFS == nil {
		return fmt.Errorf("%w: incomplete scheme configuration", ErrInvalidState)
	}
	if !f.Viscous.Compatible(f.Kernel.ID) {
		return fmt.Errorf("%w: %s with %s", ErrIncompatible, f.Kernel.ID, f.Viscous.Name())
	}
	f.validated = true
	return nil
}

// TotalCirculation returns the vector sum of all particle strengths.
func (f *Field) TotalCirculation() Vec3 {
	var sum Vec3
	for i := range f.Particles() {
		sum = sum.Add(f.particles[i].Gamma)
	}
	return sum
}
