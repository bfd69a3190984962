package dashboard

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// confirmState holds the pending removal shown on the confirmation screen.
type confirmState struct {
	name string
	mode Mode
}

// View renders the confirmation screen.
func (cs confirmState) View(caser cases.Caser) string {
	var b strings.Builder
	list := "favorites"
	if cs.mode == ModeTeam {
		list = "team"
	}
	fmt.Fprintf(&b, "Remove %s from %s?\n", caser.String(cs.name), list)
	b.WriteString("\n  [Enter] Confirm   [Esc] Cancel")
	return b.String()
}
