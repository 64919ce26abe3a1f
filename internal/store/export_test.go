package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kursatkara/govpm/internal/runner"
	"github.com/kursatkara/govpm/internal/vpm"
)

func sampleField(t *testing.T) *vpm.Field {
	t.Helper()
	f := vpm.NewField(4)
	if _, err := f.Add(vpm.Vec3{1, 2, 3}, vpm.Vec3{0, 0, 1}, 0.1); err != nil {
		t.Fatal(err)
	}
	if _, err := f.AddParticle(vpm.Particle{
		X: vpm.Vec3{-1, 0, 0}, Gamma: vpm.Vec3{0, 1, 0}, Sigma: 0.2, Vol: 0.01, Static: true,
	}); err != nil {
		t.Fatal(err)
	}
	f.T = 1.5
	f.Nt = 42
	return f
}

func TestCaptureSnapshot(t *testing.T) {
	snap := Capture(sampleField(t))
	if snap.T != 1.5 || snap.Nt != 42 || snap.N != 2 {
		t.Fatalf("metadata wrong: %+v", snap)
	}
	if snap.Particles[0].Z != 3 || snap.Particles[0].GammaZ != 1 {
		t.Fatalf("particle 0 wrong: %+v", snap.Particles[0])
	}
	if !snap.Particles[1].Static || snap.Particles[1].Vol != 0.01 {
		t.Fatalf("particle 1 wrong: %+v", snap.Particles[1])
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	if err := Capture(sampleField(t)).WriteJSON(path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Nt != 42 || len(snap.Particles) != 2 {
		t.Fatalf("round trip lost data: %+v", snap)
	}
}

func TestWriteCSVHasHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.csv")
	if err := Capture(sampleField(t)).WriteCSV(path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("want header + 2 rows, got %d lines", len(lines))
	}
	if !strings.Contains(lines[0], "sigma") || !strings.Contains(lines[0], "gamma_z") {
		t.Fatalf("header missing columns: %s", lines[0])
	}
}

func TestSummaryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.json")
	res := &runner.Result{
		StepsTaken: 10,
		FinalTime:  0.1,
		Monitors:   map[string]float64{"enstrophy": 2.5},
		History:    map[string][]float64{"enstrophy": {1, 2, 2.5}},
	}
	if err := WriteSummary(path, 0.01, res); err != nil {
		t.Fatal(err)
	}
	summary, err := ReadSummary(path)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Steps != 10 || summary.Monitors["enstrophy"] != 2.5 {
		t.Fatalf("round trip lost data: %+v", summary)
	}
	if len(summary.History["enstrophy"]) != 3 {
		t.Fatalf("history lost: %+v", summary.History)
	}
}
