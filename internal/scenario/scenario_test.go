package scenario

import (
	"math"
	"testing"

	"github.com/kursatkara/govpm/internal/vpm"
)

func TestRingSeedsClosedLoop(t *testing.T) {
	f := vpm.NewField(100)
	ring := Ring{Radius: 1, Circulation: 1, Sigma: 0.2, N: 100}
	if err := ring.Seed(f); err != nil {
		t.Fatal(err)
	}
	if f.Len() != 100 {
		t.Fatalf("seeded %d particles, want 100", f.Len())
	}

	// A closed loop has zero net strength and every particle on the circle.
	if net := f.TotalCirculation().Norm(); net > 1e-12 {
		t.Fatalf("net circulation %g, want 0", net)
	}
	for i := range f.Particles() {
		p := &f.Particles()[i]
		r := math.Hypot(p.X[0], p.X[1])
		if math.Abs(r-1) > 1e-12 || p.X[2] != 0 {
			t.Fatalf("particle %d off the ring: %v", i, p.X)
		}
		// Gamma is tangential: orthogonal to the radial direction.
		radial := vpm.Vec3{p.X[0], p.X[1], 0}
		if math.Abs(radial.Dot(p.Gamma)) > 1e-12 {
			t.Fatalf("particle %d strength not tangential", i)
		}
	}
}

func TestRingSelfInductionTranslatesAlongAxis(t *testing.T) {
	// A vortex ring propels itself along its axis; after one RK3 step every
	// particle has moved the same distance in +z and stayed on a circle.
	f := vpm.NewField(64)
	f.Relax = false
	ring := Ring{Radius: 1, Circulation: 1, Sigma: 0.2, N: 64}
	if err := ring.Seed(f); err != nil {
		t.Fatal(err)
	}

	scheme := &vpm.RK3{}
	if err := scheme.Step(f, 1e-3, false); err != nil {
		t.Fatal(err)
	}

	dz0 := f.Particles()[0].X[2]
	if dz0 <= 0 {
		t.Fatalf("ring moved backwards or not at all: dz=%g", dz0)
	}
	for i := range f.Particles() {
		dz := f.Particles()[i].X[2]
		if math.Abs(dz-dz0) > 1e-9 {
			t.Fatalf("particle %d axial travel %g differs from %g", i, dz, dz0)
		}
	}
}

func TestRingRespectsCapacity(t *testing.T) {
	f := vpm.NewField(10)
	ring := Ring{Radius: 1, Circulation: 1, Sigma: 0.2, N: 20}
	if err := ring.Seed(f); err == nil {
		t.Fatal("expected capacity error")
	}
}

func TestPairRotationRate(t *testing.T) {
	p := Pair{Separation: 1, Circulation: 1, Sigma: 0.1}
	f := vpm.NewField(2)
	f.Relax = false
	if err := p.Seed(f); err != nil {
		t.Fatal(err)
	}

	omega := p.RotationRate(f.Kernel)
	want := f.Kernel.G(10) / (2 * math.Pi)
	if math.Abs(omega-want) > 1e-14 {
		t.Fatalf("rotation rate %g, want %g", omega, want)
	}

	// One Euler step moves particle 0 by dt*Omega*d/2 in -y.
	const dt = 1e-3
	if err := (vpm.Euler{}).Step(f, dt, false); err != nil {
		t.Fatal(err)
	}
	gotDy := f.Particles()[0].X[1]
	wantDy := -dt * omega * 0.5
	if math.Abs(gotDy-wantDy) > 1e-12 {
		t.Fatalf("dy = %g, want %g", gotDy, wantDy)
	}
}
