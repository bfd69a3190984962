package dashboard

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/smileynet/pokedex/internal/catalog"
)

// CursorMarker is the prefix shown on the selected row.
const CursorMarker = "▸ "

// Membership markers appended to rows.
const (
	FavoriteMarker = "★"
	TeamMarker     = "⚔"
)

// rowState is everything a list row needs to render.
type rowState struct {
	entry    catalog.Entry
	detail   catalog.Detail
	favorite bool
	team     bool
	selected bool
}

// renderRow renders one entry as "#025 Pikachu [electric] ★ ⚔".
func renderRow(r rowState, caser cases.Caser) string {
	var b strings.Builder
	if r.selected {
		b.WriteString(CursorMarker)
	} else {
		b.WriteString("  ")
	}
	b.WriteString(mutedText.Render("#" + r.entry.DisplayID()))
	b.WriteByte(' ')
	name := caser.String(r.entry.Name)
	if r.selected {
		name = titleText.Render(name)
	}
	b.WriteString(name)
	if len(r.detail.Types) > 0 {
		b.WriteString(" [" + TypeBadges(r.detail.Types) + "]")
	}
	if r.favorite {
		b.WriteString(" " + FavoriteMarker)
	}
	if r.team {
		b.WriteString(" " + TeamMarker)
	}
	return b.String()
}

// scrollWindow returns the [start, end) slice of n rows to show in height
// lines so that cursor stays visible.
func scrollWindow(n, cursor, height int) (start, end int) {
	if height <= 0 || n <= 0 {
		return 0, 0
	}
	if n <= height {
		return 0, n
	}
	start = cursor - height + 1
	if start < 0 {
		start = 0
	}
	end = start + height
	if end > n {
		end = n
		start = end - height
	}
	return start, end
}

// filterSummary describes the active catalog filter, e.g.
// `Generation 1 · fire · "char"`.
func filterSummary(f catalog.Filter) string {
	var parts []string
	if f.Generation != "" {
		if g, err := catalog.LookupGeneration(f.Generation); err == nil {
			parts = append(parts, g.Label)
		}
	}
	if f.Type != "" {
		parts = append(parts, TypeBadge(f.Type))
	}
	if strings.TrimSpace(f.Search) != "" {
		parts = append(parts, fmt.Sprintf("%q", strings.TrimSpace(f.Search)))
	}
	if len(parts) == 0 {
		return mutedText.Render("All generations · all types")
	}
	return strings.Join(parts, " · ")
}

// statusLine renders "<count> Pokémon | Page p of n".
func statusLine(count, page, total int) string {
	return fmt.Sprintf("%d Pokémon | Page %d of %d", count, page, max(total, 1))
}
