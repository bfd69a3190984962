package dashboard

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultToastDuration is how long a toast stays visible.
const DefaultToastDuration = 3 * time.Second

// toastState is a transient one-line message above the help bar.
type toastState struct {
	text  string
	isErr bool
	id    int
}

// show replaces the current toast and returns the command that expires it.
func (ts toastState) show(text string, isErr bool, d time.Duration) (toastState, tea.Cmd) {
	ts.id++
	ts.text = text
	ts.isErr = isErr
	id := ts.id
	return ts, tea.Tick(d, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

// expire clears the toast if id still refers to it.
func (ts toastState) expire(id int) toastState {
	if id == ts.id {
		ts.text = ""
		ts.isErr = false
	}
	return ts
}

// View renders the toast, or "" when none is shown.
func (ts toastState) View() string {
	if ts.text == "" {
		return ""
	}
	if ts.isErr {
		return toastErrorStyle.Render(ts.text)
	}
	return toastStyle.Render(ts.text)
}
