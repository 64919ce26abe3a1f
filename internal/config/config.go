// Package config defines the yaml settings surface and resolves it into a
// configured particle field. Scheme choices are named by explicit tags and
// resolved here, once, at configuration time.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kursatkara/govpm/internal/vpm"
)

const (
	DefaultDt         = 0.01
	DefaultSteps      = 1000
	DefaultCapacity   = 10000
	DefaultRelaxEvery = 1
	DefaultTheta      = 0.4
)

type Config struct {
	Capacity   int     `yaml:"capacity"`
	Dt         float64 `yaml:"dt"`
	Steps      int     `yaml:"steps"`
	Integrator string  `yaml:"integrator"` // euler | rk3
	Kernel     string  `yaml:"kernel"`

	Formulation FormulationConfig `yaml:"formulation"`
	Viscous     ViscousConfig     `yaml:"viscous"`
	Relaxation  RelaxationConfig  `yaml:"relaxation"`
	SFS         SFSConfig         `yaml:"sfs"`
	UJ          UJConfig          `yaml:"uj"`
	Uinf        [3]float64        `yaml:"uinf"`
}

type FormulationConfig struct {
	Scheme string  `yaml:"scheme"` // classical | reformulated
	F      float64 `yaml:"f"`
	G      float64 `yaml:"g"`
}

type ViscousConfig struct {
	Scheme string  `yaml:"scheme"` // inviscid | corespreading | pse
	Nu     float64 `yaml:"nu"`
	NSub   int     `yaml:"nsub"`
	Every  int     `yaml:"every"`
}

type RelaxationConfig struct {
	Scheme string  `yaml:"scheme"` // none | pedrizzetti | correctedpedrizzetti
	Lambda float64 `yaml:"lambda"`
	Every  int     `yaml:"every"`
}

type SFSConfig struct {
	Model string  `yaml:"model"` // none | constant | dynamic
	Cs    float64 `yaml:"cs"`
	Alpha float64 `yaml:"alpha"`
	Cmin  float64 `yaml:"cmin"`
	Cmax  float64 `yaml:"cmax"`
	Clip  bool    `yaml:"clip"`
}

type UJConfig struct {
	Strategy string  `yaml:"strategy"` // direct | accelerated
	Theta    float64 `yaml:"theta"`
	MaxLeaf  int     `yaml:"max_leaf"`
	Parallel bool    `yaml:"parallel"`
}

func DefaultConfig() *Config {
	return &Config{
		Capacity:    DefaultCapacity,
		Dt:          DefaultDt,
		Steps:       DefaultSteps,
		Integrator:  "rk3",
		Kernel:      "gaussianerf",
		Formulation: FormulationConfig{Scheme: "reformulated", G: vpm.ReformulatedVPM.G},
		Viscous:     ViscousConfig{Scheme: "inviscid"},
		Relaxation:  RelaxationConfig{Scheme: "pedrizzetti", Lambda: vpm.DefaultRelaxFactor, Every: DefaultRelaxEvery},
		SFS:         SFSConfig{Model: "none"},
		UJ:          UJConfig{Strategy: "direct", Theta: DefaultTheta},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Build resolves the named choices into a field and runs the one-time
// compatibility validation.
func (c *Config) Build() (*vpm.Field, error) {
	f := vpm.NewField(c.Capacity)

	kernel, err := kernelByName(c.Kernel)
	if err != nil {
		return nil, err
	}
	f.Kernel = kernel

	switch strings.ToLower(c.Formulation.Scheme) {
	case "", "reformulated":
		f.Formulation = vpm.ReformulatedVPM
		if c.Formulation.F != 0 || c.Formulation.G != 0 {
			f.Formulation = vpm.Formulation{F: c.Formulation.F, G: c.Formulation.G}
		}
	case "classical":
		f.Formulation = vpm.ClassicalVPM
	default:
		return nil, fmt.Errorf("config: unknown formulation %q", c.Formulation.Scheme)
	}

	switch strings.ToLower(c.Viscous.Scheme) {
	case "", "inviscid":
		f.Viscous = vpm.Inviscid{}
	case "corespreading":
		f.Viscous = &vpm.CoreSpreading{Nu: c.Viscous.Nu, NSub: c.Viscous.NSub}
	case "pse":
		f.Viscous = &vpm.PSE{Nu: c.Viscous.Nu, Every: c.Viscous.Every}
	default:
		return nil, fmt.Errorf("config: unknown viscous scheme %q", c.Viscous.Scheme)
	}

	lambda := c.Relaxation.Lambda
	if lambda == 0 {
		lambda = vpm.DefaultRelaxFactor
	}
	switch strings.ToLower(c.Relaxation.Scheme) {
	case "none":
		f.Relaxation = vpm.NoRelaxation{}
		f.Relax = false
	case "", "pedrizzetti":
		f.Relaxation = &vpm.Pedrizzetti{Lambda: lambda}
	case "correctedpedrizzetti":
		f.Relaxation = &vpm.CorrectedPedrizzetti{Lambda: lambda}
	default:
		return nil, fmt.Errorf("config: unknown relaxation scheme %q", c.Relaxation.Scheme)
	}

	switch strings.ToLower(c.SFS.Model) {
	case "", "none":
		f.SFS = vpm.NoSFS{}
	case "constant":
		f.SFS = &vpm.ConstantSFS{Cs: c.SFS.Cs, Clip: c.SFS.Clip}
	case "dynamic":
		f.SFS = &vpm.DynamicSFS{Alpha: c.SFS.Alpha, Cmin: c.SFS.Cmin, Cmax: c.SFS.Cmax, Clip: c.SFS.Clip}
	default:
		return nil, fmt.Errorf("config: unknown sfs model %q", c.SFS.Model)
	}

	switch strings.ToLower(c.UJ.Strategy) {
	case "", "direct":
		f.Evaluator = &vpm.DirectEvaluator{Parallel: c.UJ.Parallel}
	case "accelerated":
		theta := c.UJ.Theta
		if theta == 0 {
			theta = DefaultTheta
		}
		f.Evaluator = &vpm.TreeEvaluator{Theta: theta, MaxLeaf: c.UJ.MaxLeaf, Parallel: c.UJ.Parallel}
	default:
		return nil, fmt.Errorf("config: unknown uj strategy %q", c.UJ.Strategy)
	}

	uinf := vpm.Vec3{c.Uinf[0], c.Uinf[1], c.Uinf[2]}
	f.Uinf = func(float64) vpm.Vec3 { return uinf }

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Scheme picks the configured time integrator.
func (c *Config) Scheme() (vpm.TimeScheme, error) {
	switch strings.ToLower(c.Integrator) {
	case "euler":
		return vpm.Euler{}, nil
	case "", "rk3":
		return &vpm.RK3{}, nil
	default:
		return nil, fmt.Errorf("config: unknown integrator %q", c.Integrator)
	}
}

func kernelByName(name string) (vpm.Kernel, error) {
	switch strings.ToLower(name) {
	case "singular":
		return vpm.SingularKernel, nil
	case "gaussian":
		return vpm.GaussianKernel, nil
	case "", "gaussianerf":
		return vpm.GaussianErfKernel, nil
	case "winckelmans":
		return vpm.WinckelmansKernel, nil
	default:
		return vpm.Kernel{}, fmt.Errorf("config: unknown kernel %q", name)
	}
}
