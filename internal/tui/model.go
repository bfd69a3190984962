// Package tui renders detail prefetch progress, either as a Bubble Tea
// progress view or as plain timestamped lines.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// BatchStatus is the display state of a single detail batch.
type BatchStatus string

const (
	StatusPending BatchStatus = "pending"
	StatusLoaded  BatchStatus = "loaded"
	StatusDropped BatchStatus = "dropped"
)

// maxRows bounds how many batch rows the view shows; older rows scroll off.
const maxRows = 8

// BatchState tracks one batch row.
type BatchState struct {
	Index    int
	Status   BatchStatus
	Names    []string
	Loaded   int
	Err      error
	Duration time.Duration
}

// BatchUpdateMsg reports a finished batch to the display.
type BatchUpdateMsg struct {
	Index    int
	Total    int
	Names    []string
	Loaded   int
	Err      error
	Duration time.Duration
}

// PrefetchDoneMsg signals that every batch has finished.
type PrefetchDoneMsg struct {
	Cached int // Details now in the cache
}

// PrefetchErrorMsg signals that the prefetch could not run, e.g. the
// listing fetch failed.
type PrefetchErrorMsg struct {
	Err error
}

// Model is the Bubble Tea model for prefetch progress.
type Model struct {
	title      string
	requested  int
	total      int
	batches    []BatchState
	loaded     int
	dropped    int
	cached     int
	spinner    spinner.Model
	progress   progress.Model
	done       bool
	aborting   bool
	err        error
	width      int
	startTime  time.Time
	cancelFunc func()
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithCancelFunc sets the function called on the first q/ctrl+c press.
// A second press forces the program to quit.
func WithCancelFunc(fn func()) ModelOption {
	return func(m *Model) {
		m.cancelFunc = fn
	}
}

// WithTitle sets the heading shown above the progress bar.
func WithTitle(title string) ModelOption {
	return func(m *Model) {
		m.title = title
	}
}

// NewModel creates a Model expecting requested detail fetches.
func NewModel(requested int, opts ...ModelOption) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	m := Model{
		title:     "Prefetching details",
		requested: requested,
		spinner:   s,
		progress:  progress.New(progress.WithDefaultGradient()),
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init starts the spinner tick.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case BatchUpdateMsg:
		if msg.Total > 0 {
			m.total = msg.Total
		}
		st := BatchState{
			Index:    msg.Index,
			Status:   StatusLoaded,
			Names:    msg.Names,
			Loaded:   msg.Loaded,
			Err:      msg.Err,
			Duration: msg.Duration,
		}
		if msg.Err != nil {
			st.Status = StatusDropped
			m.dropped += len(msg.Names)
		} else {
			m.loaded += len(msg.Names)
		}
		m.batches = append(m.batches, st)
		return m, nil

	case PrefetchDoneMsg:
		m.done = true
		m.aborting = false
		m.cached = msg.Cached
		return m, tea.Quit

	case PrefetchErrorMsg:
		m.done = true
		m.aborting = false
		m.err = msg.Err
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = max(10, min(msg.Width-4, 60))
		return m, nil

	case tea.KeyMsg:
		if m.done {
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancelFunc == nil || m.aborting {
				m.done = true
				return m, tea.Quit
			}
			m.aborting = true
			m.cancelFunc()
			return m, nil
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// Percent returns the finished share of requested fetches in [0, 1].
func (m Model) Percent() float64 {
	if m.requested <= 0 {
		return 1
	}
	return min(1, float64(m.loaded+m.dropped)/float64(m.requested))
}

// View renders the progress bar, recent batch rows and a footer.
func (m Model) View() string {
	var b strings.Builder

	head := m.spinner.View()
	if m.done {
		head = "✓"
		if m.err != nil {
			head = "✗"
		}
	}
	fmt.Fprintf(&b, "  %s %s (%d/%d)\n", head, m.title, m.loaded+m.dropped, m.requested)
	fmt.Fprintf(&b, "  %s\n\n", m.progress.ViewAs(m.Percent()))

	rows := m.batches
	if len(rows) > maxRows {
		rows = rows[len(rows)-maxRows:]
	}
	for _, r := range rows {
		line := fmt.Sprintf("  %s batch %d/%d  %d names", statusIndicator(r.Status), r.Index+1, m.total, len(r.Names))
		if r.Duration > 0 {
			line += fmt.Sprintf(" %.1fs", r.Duration.Seconds())
		}
		if r.Err != nil {
			line += " (dropped)"
		}
		b.WriteString(line + "\n")
	}

	if m.aborting {
		b.WriteString("\n  Aborting... (press q again to force quit)\n")
	}

	if m.done {
		if m.err != nil {
			fmt.Fprintf(&b, "\n  Error: %s\n", m.err)
		} else {
			fmt.Fprintf(&b, "\n  %d loaded, %d dropped, %d cached (%.1fs)\n",
				m.loaded, m.dropped, m.cached, time.Since(m.startTime).Seconds())
		}
	}

	return b.String()
}

// statusIndicator returns the Unicode indicator for a batch status.
func statusIndicator(status BatchStatus) string {
	switch status {
	case StatusPending:
		return "○"
	case StatusLoaded:
		return "✓"
	case StatusDropped:
		return "✗"
	default:
		return "?"
	}
}
