package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/kursatkara/govpm/internal/vpm"
)

func pairField() *vpm.Field {
	f := vpm.NewField(4)
	f.Relax = false
	f.Add(vpm.Vec3{-0.5, 0, 0}, vpm.Vec3{0, 0, 1}, 0.1)
	f.Add(vpm.Vec3{0.5, 0, 0}, vpm.Vec3{0, 0, 1}, 0.1)
	return f
}

type countMonitor struct{ n int }

func (*countMonitor) Name() string           { return "count" }
func (m *countMonitor) Observe(f *vpm.Field) { m.n++ }
func (m *countMonitor) Value() float64       { return float64(m.n) }
func (m *countMonitor) Reset()               { m.n = 0 }

func TestRunAdvancesField(t *testing.T) {
	f := pairField()
	r := New(f, vpm.Euler{})
	m := &countMonitor{}
	r.AddMonitor(m)

	res, err := r.Run(context.Background(), Config{Dt: 1e-3, Steps: 10})
	if err != nil {
		t.Fatal(err)
	}
	if res.StepsTaken != 10 || f.Nt != 10 {
		t.Fatalf("steps taken %d, field nt %d", res.StepsTaken, f.Nt)
	}
	if m.n != 10 {
		t.Fatalf("monitor observed %d steps", m.n)
	}
	if len(res.History["count"]) != 10 {
		t.Fatalf("history length %d", len(res.History["count"]))
	}
}

func TestRunHaltPredicateStopsBetweenSteps(t *testing.T) {
	f := pairField()
	r := New(f, vpm.Euler{})

	res, err := r.Run(context.Background(), Config{
		Dt:    1e-3,
		Steps: 100,
		Halt:  func(f *vpm.Field) bool { return f.Nt < 5 },
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.StepsTaken != 5 || !res.Interrupted {
		t.Fatalf("steps taken %d, interrupted %v", res.StepsTaken, res.Interrupted)
	}
}

func TestRunContextCancellation(t *testing.T) {
	f := pairField()
	r := New(f, vpm.Euler{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := r.Run(ctx, Config{Dt: 1e-3, Steps: 100})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.StepsTaken != 0 {
		t.Fatalf("steps taken after immediate cancel: %d", res.StepsTaken)
	}
}

func TestRunSurfacesConfigurationError(t *testing.T) {
	f := pairField()
	f.Kernel = vpm.WinckelmansKernel
	f.Viscous = &vpm.CoreSpreading{Nu: 1e-3}
	r := New(f, vpm.Euler{})

	_, err := r.Run(context.Background(), Config{Dt: 1e-3, Steps: 10})
	if !errors.Is(err, vpm.ErrIncompatible) {
		t.Fatalf("expected ErrIncompatible, got %v", err)
	}
	if f.Nt != 0 {
		t.Fatal("no step may run under a bad configuration")
	}
}

func TestRunValidatesConfig(t *testing.T) {
	r := New(pairField(), vpm.Euler{})
	if _, err := r.Run(context.Background(), Config{Dt: 0, Steps: 1}); err == nil {
		t.Fatal("expected error for non-positive dt")
	}
	if _, err := r.Run(context.Background(), Config{Dt: 0.1, Steps: -1}); err == nil {
		t.Fatal("expected error for negative step count")
	}
}

func TestRelaxCadence(t *testing.T) {
	// RelaxEvery=3 fires on steps 3, 6, 9, ...
	f := pairField()
	f.Relax = true
	relaxed := 0
	f.Relaxation = &spyRelaxation{hits: &relaxed}
	r := New(f, vpm.Euler{})

	if _, err := r.Run(context.Background(), Config{Dt: 1e-3, Steps: 9, RelaxEvery: 3}); err != nil {
		t.Fatal(err)
	}
	// Two particles relaxed on each of 3 due steps.
	if relaxed != 6 {
		t.Fatalf("relaxation fired %d particle-times, want 6", relaxed)
	}
}

type spyRelaxation struct{ hits *int }

func (s *spyRelaxation) Relax(*vpm.Particle) { *s.hits++ }
func (s *spyRelaxation) Order() int          { return 1 }
func (s *spyRelaxation) Name() string        { return "spy" }
