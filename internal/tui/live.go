// Package tui renders a live terminal view of a running simulation.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/kursatkara/govpm/internal/runner"
	"github.com/kursatkara/govpm/internal/vpm"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

const historyLen = 120

type stepMsg struct {
	nt   int
	t    float64
	n    int
	circ float64
	enst float64
}

type doneMsg struct{ err error }

type model struct {
	steps   int
	last    stepMsg
	history []float64
	done    bool
	err     error
	cancel  context.CancelFunc
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.cancel()
			return m, tea.Quit
		}
	case stepMsg:
		m.last = msg
		m.history = append(m.history, msg.enst)
		if len(m.history) > historyLen {
			m.history = m.history[1:]
		}
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(cyan.Render("govpm") + dim.Render("  vortex particle run") + "\n\n")

	progress := float64(m.last.nt) / float64(m.steps)
	b.WriteString(fmt.Sprintf("  %s %s\n",
		white.Render(fmt.Sprintf("step %6d/%d", m.last.nt, m.steps)),
		dim.Render(fmt.Sprintf("(%.0f%%)", 100*progress))))
	b.WriteString(fmt.Sprintf("  %s t=%.4f   particles=%d\n",
		dim.Render("time"), m.last.t, m.last.n))
	b.WriteString(fmt.Sprintf("  %s %.6e   %s %.6e\n\n",
		dim.Render("|circulation|"), m.last.circ,
		dim.Render("enstrophy"), m.last.enst))

	if len(m.history) > 1 {
		b.WriteString(dim.Render("  enstrophy") + "\n")
		b.WriteString(asciigraph.Plot(m.history,
			asciigraph.Height(8), asciigraph.Width(60), asciigraph.Offset(4)))
		b.WriteString("\n\n")
	}

	if m.done {
		if m.err != nil {
			b.WriteString(yellow.Render("  stopped: "+m.err.Error()) + "\n")
		} else {
			b.WriteString(green.Render("  run complete") + "\n")
		}
	} else {
		b.WriteString(dim.Render("  q to stop") + "\n")
	}
	return b.String()
}

// liveObserver forwards throttled step updates into the program.
type liveObserver struct {
	prog      *tea.Program
	frameRate int
	lastFrame time.Time
}

func (o *liveObserver) OnStep(f *vpm.Field) {
	if time.Since(o.lastFrame) < time.Second/time.Duration(o.frameRate) {
		return
	}
	o.lastFrame = time.Now()

	enst := 0.0
	for i := range f.Particles() {
		p := &f.Particles()[i]
		enst += p.Gamma.Norm2() / (p.Sigma * p.Sigma * p.Sigma)
	}
	o.prog.Send(stepMsg{
		nt:   f.Nt,
		t:    f.T,
		n:    f.Len(),
		circ: f.TotalCirculation().Norm(),
		enst: enst,
	})
}

// Run drives the runner under a live view. Quitting the view cancels the run
// between steps.
func Run(ctx context.Context, r *runner.Runner, rcfg runner.Config, frameRate int) (*runner.Result, error) {
	if frameRate <= 0 {
		frameRate = 30
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := &model{steps: rcfg.Steps, cancel: cancel}
	prog := tea.NewProgram(m)
	r.AddObserver(&liveObserver{prog: prog, frameRate: frameRate})

	var result *runner.Result
	var runErr error
	done := make(chan struct{})
	go func() {
		result, runErr = r.Run(ctx, rcfg)
		close(done)
		prog.Send(doneMsg{err: runErr})
	}()

	_, uiErr := prog.Run()
	cancel()
	<-done
	if uiErr != nil {
		return result, uiErr
	}
	return result, runErr
}
