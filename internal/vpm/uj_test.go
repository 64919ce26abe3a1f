package vpm

import (
	"math"
	"math/rand"
	"testing"
)

// Velocity induced at distance r along x by a unit z-strength particle at the
// origin: U = (0, g(r/sigma)/(4*pi*r^2), 0).
func TestDirectSinglePairClosedForm(t *testing.T) {
	const sigma = 0.2
	for _, k := range standardKernels {
		f := NewField(2)
		f.Kernel = k
		f.Add(Vec3{}, Vec3{0, 0, 1}, sigma)
		f.Add(Vec3{1, 0, 0}, Vec3{}, sigma)

		if err := f.Evaluator.Evaluate(f); err != nil {
			t.Fatalf("%s: %v", k.ID, err)
		}

		want := k.G(1/sigma) / (4 * math.Pi)
		u := f.Particles()[1].U
		if math.Abs(u[0]) > 1e-10 || math.Abs(u[1]-want) > 1e-10 || math.Abs(u[2]) > 1e-10 {
			t.Errorf("%s: U = %v, want (0, %g, 0)", k.ID, u, want)
		}
	}
}

func TestDirectGaussianErfAgainstExplicitFormula(t *testing.T) {
	// Independent of the kernel tables: erf(r/(sqrt(2)*sigma)) minus the
	// Gaussian correction, straight from the closed-form solution.
	const sigma, r = 0.3, 1.5
	f := NewField(2)
	f.Add(Vec3{}, Vec3{0, 0, 1}, sigma)
	f.Add(Vec3{r, 0, 0}, Vec3{}, sigma)
	if err := f.Evaluator.Evaluate(f); err != nil {
		t.Fatal(err)
	}

	rs := r / sigma
	g := math.Erf(rs/math.Sqrt2) - math.Sqrt(2/math.Pi)*rs*math.Exp(-rs*rs/2)
	want := g / (4 * math.Pi * r * r)
	if got := f.Particles()[1].U[1]; math.Abs(got-want) > 1e-10 {
		t.Fatalf("U_y = %.12g, want %.12g", got, want)
	}
}

func TestSelfInteractionJacobian(t *testing.T) {
	// A lone particle has zero self velocity but a nonzero antisymmetric
	// Jacobian from the regularized self-term.
	f := NewField(1)
	f.Add(Vec3{}, Vec3{0, 0, 1}, 0.1)
	if err := f.Evaluator.Evaluate(f); err != nil {
		t.Fatal(err)
	}

	p := f.Particles()[0]
	if p.U.Norm() != 0 {
		t.Fatalf("self velocity = %v, want zero", p.U)
	}
	// Gamma along +z induces counterclockwise flow around the core, so
	// dUx/dy is negative at the center.
	sigma := 0.1
	want := f.Kernel.Zeta(0) / (3 * sigma * sigma * sigma * 4 * math.Pi)
	if math.Abs(p.J[0][1]+want) > 1e-12 || math.Abs(p.J[1][0]-want) > 1e-12 {
		t.Fatalf("self Jacobian = %v, want -+%g in the xy block", p.J, want)
	}
	if math.Abs(p.J[0][0]) > 0 || math.Abs(p.J[2][2]) > 0 {
		t.Fatalf("self Jacobian has a diagonal part: %v", p.J)
	}
}

func TestSelfJacobianContinuousAtOrigin(t *testing.T) {
	// The coincident branch must be the limit of the general branch: a
	// near-zero offset evaluation agrees with the r=0 term entrywise,
	// sign included.
	const sigma = 0.1
	gamma := Vec3{0, 0, 1}

	var uSelf Vec3
	var jSelf Mat3
	pairUJ(&GaussianErfKernel, Vec3{}, gamma, sigma, &uSelf, &jSelf)

	var uNear Vec3
	var jNear Mat3
	pairUJ(&GaussianErfKernel, Vec3{1e-7, 1e-7, 0}, gamma, sigma, &uNear, &jNear)

	scale := jSelf.FrobNorm()
	for m := 0; m < 3; m++ {
		for c := 0; c < 3; c++ {
			if math.Abs(jNear[m][c]-jSelf[m][c]) > 1e-3*scale {
				t.Fatalf("J[%d][%d] jumps at the origin: near %g, self %g",
					m, c, jNear[m][c], jSelf[m][c])
			}
		}
	}
}

func randomCloud(n int, seed int64) *Field {
	rng := rand.New(rand.NewSource(seed))
	f := NewField(n)
	for i := 0; i < n; i++ {
		x := Vec3{rng.Float64()*2 - 1, rng.Float64()*2 - 1, rng.Float64()*2 - 1}
		g := Vec3{rng.Float64() - 0.5, rng.Float64() - 0.5, rng.Float64() - 0.5}
		f.Add(x, g.Scale(0.1), 0.05+0.05*rng.Float64())
	}
	return f
}

func TestDirectParallelMatchesSequential(t *testing.T) {
	seq := randomCloud(300, 7)
	par := randomCloud(300, 7)
	par.Evaluator = &DirectEvaluator{Parallel: true}

	if err := seq.Evaluator.Evaluate(seq); err != nil {
		t.Fatal(err)
	}
	if err := par.Evaluator.Evaluate(par); err != nil {
		t.Fatal(err)
	}
	for i := range seq.Particles() {
		du := seq.Particles()[i].U.Sub(par.Particles()[i].U).Norm()
		if du != 0 {
			t.Fatalf("particle %d: parallel evaluation differs by %g", i, du)
		}
	}
}

func TestTreeDegeneratesToDirectWithLargeLeaf(t *testing.T) {
	direct := randomCloud(100, 3)
	tree := randomCloud(100, 3)
	tree.Evaluator = &TreeEvaluator{Theta: 0.5, MaxLeaf: 1000}

	if err := direct.Evaluator.Evaluate(direct); err != nil {
		t.Fatal(err)
	}
	if err := tree.Evaluator.Evaluate(tree); err != nil {
		t.Fatal(err)
	}
	for i := range direct.Particles() {
		du := direct.Particles()[i].U.Sub(tree.Particles()[i].U).Norm()
		if du > 1e-12 {
			t.Fatalf("particle %d: single-leaf tree differs from direct by %g", i, du)
		}
	}
}

func TestTreeApproximatesDirect(t *testing.T) {
	direct := randomCloud(400, 11)
	tree := randomCloud(400, 11)
	tree.Evaluator = &TreeEvaluator{Theta: 0.2, MaxLeaf: 8}

	if err := direct.Evaluator.Evaluate(direct); err != nil {
		t.Fatal(err)
	}
	if err := tree.Evaluator.Evaluate(tree); err != nil {
		t.Fatal(err)
	}

	umax := 0.0
	for i := range direct.Particles() {
		umax = math.Max(umax, direct.Particles()[i].U.Norm())
	}
	for i := range direct.Particles() {
		du := direct.Particles()[i].U.Sub(tree.Particles()[i].U).Norm()
		if du > 0.05*umax {
			t.Fatalf("particle %d: tree error %g exceeds 5%% of peak velocity %g", i, du, umax)
		}
	}
}

func TestTreeDefaultsDoNotMutateConfiguration(t *testing.T) {
	f := randomCloud(20, 2)
	ev := &TreeEvaluator{Theta: 0.5}
	f.Evaluator = ev
	if err := f.Evaluator.Evaluate(f); err != nil {
		t.Fatal(err)
	}
	if ev.MaxLeaf != 0 {
		t.Fatalf("Evaluate rewrote MaxLeaf to %d", ev.MaxLeaf)
	}
}

func TestTreeRejectsBadOpeningAngle(t *testing.T) {
	f := randomCloud(10, 1)
	f.Evaluator = &TreeEvaluator{Theta: 1.5}
	if err := f.Evaluator.Evaluate(f); err == nil {
		t.Fatal("expected evaluation error for theta > 1")
	}
}

func TestTreeRejectsNonFiniteParticles(t *testing.T) {
	f := randomCloud(10, 1)
	f.Particles()[3].X[0] = math.NaN()
	f.Evaluator = &TreeEvaluator{Theta: 0.5}
	err := f.Evaluator.Evaluate(f)
	if err == nil {
		t.Fatal("expected evaluation error for NaN position")
	}
}

func BenchmarkDirectEvaluate(b *testing.B) {
	f := randomCloud(500, 42)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := f.Evaluator.Evaluate(f); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTreeEvaluate(b *testing.B) {
	f := randomCloud(500, 42)
	f.Evaluator = &TreeEvaluator{Theta: 0.4, MaxLeaf: 16}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := f.Evaluator.Evaluate(f); err != nil {
			b.Fatal(err)
		}
	}
}
