package dashboard

import (
	"fmt"
	"strings"
)

// allTypesLabel is the picker option that clears the type filter.
const allTypesLabel = "all types"

// pickerState manages the type picker overlay on the left pane.
type pickerState struct {
	open    bool
	loading bool
	err     error
	types   []string
	cursor  int
}

// options returns the picker rows: the clear option followed by each type.
func (ps pickerState) options() []string {
	return append([]string{allTypesLabel}, ps.types...)
}

// openAt opens the picker with the cursor on current (or the clear option).
func (ps pickerState) openAt(current string) pickerState {
	ps.open = true
	ps.cursor = 0
	for i, t := range ps.types {
		if t == current {
			ps.cursor = i + 1
		}
	}
	return ps
}

func (ps pickerState) move(delta int) pickerState {
	n := len(ps.options())
	ps.cursor = (ps.cursor + delta + n) % n
	return ps
}

// selected returns the chosen type name, or "" for the clear option.
func (ps pickerState) selected() string {
	if ps.cursor <= 0 || ps.cursor > len(ps.types) {
		return ""
	}
	return ps.types[ps.cursor-1]
}

// View renders the picker for the given height.
func (ps pickerState) View(height int, spinnerView string) string {
	if ps.loading {
		return fmt.Sprintf("%s Loading types...", spinnerView)
	}
	if ps.err != nil {
		return errorText.Render(fmt.Sprintf("Error: %s", ps.err)) + "\n\nPress esc to close"
	}

	opts := ps.options()
	var b strings.Builder
	b.WriteString(titleText.Render("Filter by type") + "\n")
	start, end := scrollWindow(len(opts), ps.cursor, height-1)
	for i := start; i < end; i++ {
		if i > start {
			b.WriteByte('\n')
		}
		if i == ps.cursor {
			b.WriteString(CursorMarker)
		} else {
			b.WriteString("  ")
		}
		if i == 0 {
			b.WriteString(mutedText.Render(opts[i]))
		} else {
			b.WriteString(TypeBadge(opts[i]))
		}
	}
	return b.String()
}
