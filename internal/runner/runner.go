package runner

import (
	"context"
	"fmt"

	"github.com/kursatkara/govpm/internal/vpm"
)

// Monitor observes field state between steps and reduces it to a scalar.
type Monitor interface {
	Name() string
	Observe(f *vpm.Field)
	Value() float64
	Reset()
}

// Observer receives the field after every completed step.
type Observer interface {
	OnStep(f *vpm.Field)
}

// Config drives a fixed-step run. Halt, when non-nil, is consulted between
// steps; returning false stops the run cleanly. There is no mid-step
// cancellation.
type Config struct {
	Dt         float64
	Steps      int
	RelaxEvery int // relaxation cadence in steps; <= 0 disables
	Halt       func(f *vpm.Field) bool
}

// Result summarizes a completed run.
type Result struct {
	StepsTaken  int
	FinalTime   float64
	Monitors    map[string]float64
	History     map[string][]float64 // per-step monitor traces
	Interrupted bool
}

// Runner drives strictly sequential time steps of a single field.
type Runner struct {
	field     *vpm.Field
	scheme    vpm.TimeScheme
	monitors  []Monitor
	observers []Observer
}

func New(f *vpm.Field, scheme vpm.TimeScheme) *Runner {
	return &Runner{field: f, scheme: scheme}
}

func (r *Runner) AddMonitor(m Monitor)   { r.monitors = append(r.monitors, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

func (r *Runner) Field() *vpm.Field { return r.field }

// Run advances the field cfg.Steps times. Configuration problems surface
// before the first step; step failures are fatal and abort the run.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := r.validate(cfg); err != nil {
		return nil, err
	}
	if err := r.field.Validate(); err != nil {
		return nil, err
	}

	result := &Result{
		Monitors: make(map[string]float64),
		History:  make(map[string][]float64),
	}
	for _, m := range r.monitors {
		m.Reset()
	}

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			result.Interrupted = true
			r.finish(result)
			return result, ctx.Err()
		default:
		}

		if cfg.Halt != nil && !cfg.Halt(r.field) {
			result.Interrupted = true
			break
		}

		relax := cfg.RelaxEvery > 0 && (r.field.Nt+1)%cfg.RelaxEvery == 0
		if err := r.scheme.Step(r.field, cfg.Dt, relax); err != nil {
			r.finish(result)
			return result, err
		}
		result.StepsTaken++

		for _, m := range r.monitors {
			m.Observe(r.field)
			result.History[m.Name()] = append(result.History[m.Name()], m.Value())
		}
		for _, o := range r.observers {
			o.OnStep(r.field)
		}
	}

	r.finish(result)
	return result, nil
}

func (r *Runner) finish(result *Result) {
	result.FinalTime = r.field.T
	for _, m := range r.monitors {
		result.Monitors[m.Name()] = m.Value()
	}
}

func (r *Runner) validate(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("runner: dt must be positive, got %g", cfg.Dt)
	}
	if cfg.Steps < 0 {
		return fmt.Errorf("runner: negative step count %d", cfg.Steps)
	}
	return nil
}
