// Package store exports field snapshots and run summaries. The on-disk
// layout is owned here, outside the core: the engine only exposes the
// per-particle state and the field metadata.
package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/kursatkara/govpm/internal/runner"
	"github.com/kursatkara/govpm/internal/vpm"
)

// Snapshot is the JSON representation of a field at one instant.
type Snapshot struct {
	T         float64          `json:"t"`
	Nt        int              `json:"nt"`
	N         int              `json:"n"`
	Particles []ParticleRecord `json:"particles"`
}

// ParticleRecord carries the persistent per-particle state.
type ParticleRecord struct {
	Index       int     `json:"index" csv:"index"`
	X           float64 `json:"x" csv:"x"`
	Y           float64 `json:"y" csv:"y"`
	Z           float64 `json:"z" csv:"z"`
	GammaX      float64 `json:"gamma_x" csv:"gamma_x"`
	GammaY      float64 `json:"gamma_y" csv:"gamma_y"`
	GammaZ      float64 `json:"gamma_z" csv:"gamma_z"`
	Sigma       float64 `json:"sigma" csv:"sigma"`
	Vol         float64 `json:"vol" csv:"vol"`
	Circulation float64 `json:"circulation" csv:"circulation"`
	Static      bool    `json:"static" csv:"static"`
}

// Capture copies the field's persistent state into a snapshot.
func Capture(f *vpm.Field) *Snapshot {
	snap := &Snapshot{
		T:         f.T,
		Nt:        f.Nt,
		N:         f.Len(),
		Particles: make([]ParticleRecord, 0, f.Len()),
	}
	for i := range f.Particles() {
		p := &f.Particles()[i]
		snap.Particles = append(snap.Particles, ParticleRecord{
			Index:       p.Index,
			X:           p.X[0],
			Y:           p.X[1],
			Z:           p.X[2],
			GammaX:      p.Gamma[0],
			GammaY:      p.Gamma[1],
			GammaZ:      p.Gamma[2],
			Sigma:       p.Sigma,
			Vol:         p.Vol,
			Circulation: p.Circulation,
			Static:      p.Static,
		})
	}
	return snap
}

// WriteJSON writes the snapshot as indented JSON.
func (s *Snapshot) WriteJSON(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteCSV writes the particle table as CSV.
func (s *Snapshot) WriteCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return gocsv.MarshalFile(&s.Particles, file)
}

// RunSummary is the JSON export of a completed run.
type RunSummary struct {
	Dt       float64              `json:"dt"`
	Steps    int                  `json:"steps"`
	Final    float64              `json:"final_time"`
	Monitors map[string]float64   `json:"monitors"`
	History  map[string][]float64 `json:"history"`
}

// WriteSummary exports the runner result next to the final snapshot.
func WriteSummary(path string, dt float64, res *runner.Result) error {
	summary := RunSummary{
		Dt:       dt,
		Steps:    res.StepsTaken,
		Final:    res.FinalTime,
		Monitors: res.Monitors,
		History:  res.History,
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ReadSummary loads a run summary written by WriteSummary.
func ReadSummary(path string) (*RunSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var summary RunSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
