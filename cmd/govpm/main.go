package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/kursatkara/govpm/internal/config"
	"github.com/kursatkara/govpm/internal/diagnostics"
	"github.com/kursatkara/govpm/internal/runner"
	"github.com/kursatkara/govpm/internal/scenario"
	"github.com/kursatkara/govpm/internal/store"
	"github.com/kursatkara/govpm/internal/tui"
	"github.com/kursatkara/govpm/internal/vpm"
)

var (
	configFile string
	preset     string
	dt         float64
	steps      int
	relaxEvery int
	outPrefix  string
	live       bool
	frameRate  int
	maxSpeed   float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "govpm",
		Short: "vortex particle method solver",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation from a preset or config file",
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "ring", "preset scenario")
	runCmd.Flags().Float64Var(&dt, "dt", 0, "timestep override")
	runCmd.Flags().IntVar(&steps, "steps", 0, "step count override")
	runCmd.Flags().IntVar(&relaxEvery, "relax-every", 1, "relaxation cadence in steps, 0 disables")
	runCmd.Flags().StringVar(&outPrefix, "out", "", "output file prefix (writes <out>.json, <out>.csv, <out>_summary.json)")
	runCmd.Flags().BoolVar(&live, "live", false, "live terminal view")
	runCmd.Flags().IntVar(&frameRate, "fps", 30, "live view frame rate")
	runCmd.Flags().Float64Var(&maxSpeed, "max-speed", 0, "halt when peak velocity exceeds this, 0 disables")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset scenarios",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	plotCmd := &cobra.Command{
		Use:   "plot [summary.json] [monitor]",
		Short: "plot a monitor trace from a run summary",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  plotSummary,
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a default config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Save(args[0], config.DefaultConfig())
		},
	}

	rootCmd.AddCommand(runCmd, presetsCmd, plotCmd, initCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, seed, err := resolveConfig()
	if err != nil {
		return err
	}
	if dt > 0 {
		cfg.Dt = dt
	}
	if steps > 0 {
		cfg.Steps = steps
	}
	if !cmd.Flags().Changed("relax-every") && cfg.Relaxation.Every != 0 {
		relaxEvery = cfg.Relaxation.Every
	}

	field, err := cfg.Build()
	if err != nil {
		return err
	}
	if seed != nil {
		if err := seed.Seed(field); err != nil {
			return err
		}
	}
	scheme, err := cfg.Scheme()
	if err != nil {
		return err
	}

	run := runner.New(field, scheme)
	circ := &diagnostics.TotalCirculation{}
	enst := &diagnostics.Enstrophy{}
	umax := &diagnostics.MaxVelocity{}
	run.AddMonitor(circ)
	run.AddMonitor(enst)
	run.AddMonitor(umax)

	rcfg := runner.Config{Dt: cfg.Dt, Steps: cfg.Steps, RelaxEvery: relaxEvery}
	if maxSpeed > 0 {
		rcfg.Halt = func(f *vpm.Field) bool { return umax.Value() < maxSpeed }
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var result *runner.Result
	if live {
		result, err = tui.Run(ctx, run, rcfg, frameRate)
	} else {
		result, err = run.Run(ctx, rcfg)
	}
	if result != nil {
		printSummary(result, field.Len())
	}
	if err != nil && err != context.Canceled {
		return err
	}

	if outPrefix != "" {
		snap := store.Capture(field)
		if err := snap.WriteJSON(outPrefix + ".json"); err != nil {
			return err
		}
		if err := snap.WriteCSV(outPrefix + ".csv"); err != nil {
			return err
		}
		if err := store.WriteSummary(outPrefix+"_summary.json", cfg.Dt, result); err != nil {
			return err
		}
		fmt.Printf("wrote %s.json, %s.csv, %s_summary.json\n", outPrefix, outPrefix, outPrefix)
	}
	return nil
}

func resolveConfig() (*config.Config, scenario.Seeder, error) {
	if configFile != "" {
		cfg, err := config.Load(configFile)
		return cfg, nil, err
	}
	p := config.GetPreset(preset)
	if p == nil {
		return nil, nil, fmt.Errorf("unknown preset %q (try: %s)",
			preset, strings.Join(config.ListPresets(), ", "))
	}
	return p.Config, p.Seed(), nil
}

func printSummary(res *runner.Result, n int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "steps\t%d\n", res.StepsTaken)
	fmt.Fprintf(w, "final time\t%.6f\n", res.FinalTime)
	fmt.Fprintf(w, "particles\t%d\n", n)
	for name, v := range res.Monitors {
		fmt.Fprintf(w, "%s\t%.6e\n", name, v)
	}
	if res.Interrupted {
		fmt.Fprintf(w, "interrupted\ttrue\n")
	}
	w.Flush()
}

func plotSummary(cmd *cobra.Command, args []string) error {
	summary, err := store.ReadSummary(args[0])
	if err != nil {
		return err
	}
	monitor := "enstrophy"
	if len(args) > 1 {
		monitor = args[1]
	}
	trace, ok := summary.History[monitor]
	if !ok || len(trace) == 0 {
		names := make([]string, 0, len(summary.History))
		for name := range summary.History {
			names = append(names, name)
		}
		return fmt.Errorf("no trace %q in summary (have: %s)", monitor, strings.Join(names, ", "))
	}

	// Thin long traces so the plot fits a terminal.
	const maxPoints = 200
	if len(trace) > maxPoints {
		stride := int(math.Ceil(float64(len(trace)) / maxPoints))
		thinned := make([]float64, 0, maxPoints)
		for i := 0; i < len(trace); i += stride {
			thinned = append(thinned, trace[i])
		}
		trace = thinned
	}

	fmt.Println(monitor)
	fmt.Println(asciigraph.Plot(trace, asciigraph.Height(12), asciigraph.Width(70)))
	return nil
}
