// Package vpm implements the particle-field evolution engine of a
// three-dimensional vortex particle method.
//
// Vorticity is carried by regularized point particles that are advected and
// stretched by the velocity field they induce. The package defines:
//
//   - [Field]: fixed-capacity particle arena plus field-level configuration
//   - [Kernel]: regularized Biot-Savart weighting functions
//   - [Evaluator]: induced velocity/Jacobian computation ([DirectEvaluator]
//     exact pairwise, [TreeEvaluator] Barnes-Hut accelerated)
//   - [ViscousScheme]: [Inviscid], [CoreSpreading], [PSE]
//   - [SFSModel]: subfilter-scale turbulence closures
//   - [RelaxationScheme]: Pedrizzetti-type vorticity realignment
//   - [TimeScheme]: explicit [Euler] and low-storage [RK3] integrators
//
// # Example
//
//	f := vpm.NewField(1000)
//	f.Add(vpm.Vec3{}, vpm.Vec3{0, 0, 1}, 0.1)
//	scheme := &vpm.RK3{}
//	err := scheme.Step(f, 0.01, true)
//
// # Thread Safety
//
// A Field is owned by a single stepping goroutine. Evaluators parallelize
// internally over targets only, so evaluation stays deterministic.
package vpm
