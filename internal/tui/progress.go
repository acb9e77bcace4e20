// Package tui shows dataset generation progress in the terminal.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/anombench/internal/dataset"
)

const barWidth = 40

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ffff"))
	barFull    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	barEmpty   = lipgloss.NewStyle().Foreground(lipgloss.Color("#444466"))
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888899"))
	errStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4444"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688")).Italic(true)
)

type progressMsg dataset.Progress

type doneMsg struct{ err error }

type model struct {
	title   string
	cancel  context.CancelFunc
	started time.Time

	done, total int
	cached      int
	last        *dataset.Bucket

	finished bool
	err      error
}

func newModel(title string, cancel context.CancelFunc) model {
	return model{title: title, cancel: cancel, started: time.Now()}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case progressMsg:
		// Events may arrive out of order from concurrent workers.
		if msg.Done > m.done {
			m.done = msg.Done
		}
		m.total = msg.Total
		if msg.Cached {
			m.cached++
		}
		b := msg.Bucket
		m.last = &b
	case doneMsg:
		m.finished = true
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title) + "\n\n")
	b.WriteString(bar(m.done, m.total) + "\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("%d/%d buckets, %d cached, %s",
		m.done, m.total, m.cached, time.Since(m.started).Round(100*time.Millisecond))) + "\n")
	if m.last != nil {
		b.WriteString(infoStyle.Render(fmt.Sprintf("last: %s alpha=%s",
			m.last.Process, dataset.FormatLabel(m.last.Alpha))) + "\n")
	}

	switch {
	case m.err != nil:
		b.WriteString(errStyle.Render("failed: "+m.err.Error()) + "\n")
	case m.finished:
		b.WriteString(infoStyle.Render("done") + "\n")
	default:
		b.WriteString(hintStyle.Render("q to abort") + "\n")
	}
	return b.String()
}

func bar(done, total int) string {
	filled := 0
	if total > 0 {
		filled = done * barWidth / total
	}
	if filled > barWidth {
		filled = barWidth
	}
	return barFull.Render(strings.Repeat("█", filled)) +
		barEmpty.Render(strings.Repeat("░", barWidth-filled))
}

// Track runs work while rendering the progress it reports. Quitting the
// view cancels the context passed to work. The error of work is returned.
func Track(ctx context.Context, title string, work func(ctx context.Context, obs dataset.Observer) error, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(title, cancel), opts...)
	errc := make(chan error, 1)
	go func() {
		err := work(ctx, dataset.ObserverFunc(func(pr dataset.Progress) {
			p.Send(progressMsg(pr))
		}))
		p.Send(doneMsg{err: err})
		errc <- err
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-errc
		return err
	}
	return <-errc
}
