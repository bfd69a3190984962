package dashboard

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/smileynet/pokedex/internal/catalog"
)

// statLabels are the detail pane's labels for each base stat.
var statLabels = map[string]string{
	catalog.StatHP:             "HP",
	catalog.StatAttack:         "ATK",
	catalog.StatDefense:        "DEF",
	catalog.StatSpecialAttack:  "SP.ATK",
	catalog.StatSpecialDefense: "SP.DEF",
	catalog.StatSpeed:          "SPD",
}

// statBarWidth is the widest a stat bar gets.
const statBarWidth = 24

// renderDetail renders the right pane for the selected entry.
func renderDetail(r rowState, caser cases.Caser, width int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", mutedText.Render("#"+r.entry.DisplayID()), titleText.Render(caser.String(r.entry.Name)))

	var marks []string
	if r.favorite {
		marks = append(marks, FavoriteMarker+" Favorite")
	}
	if r.team {
		marks = append(marks, TeamMarker+" Team")
	}
	if len(marks) > 0 {
		b.WriteString(strings.Join(marks, "  ") + "\n")
	}

	if !r.detail.Known() {
		b.WriteString("\n" + mutedText.Render("Loading details..."))
		return b.String()
	}

	b.WriteString(TypeBadges(r.detail.Types) + "\n\n")

	barWidth := max(0, min(statBarWidth, width-16))
	total := 0
	for _, stat := range catalog.StatOrder {
		v := r.detail.Stat(stat)
		total += v
		fmt.Fprintf(&b, "%-7s %3d %s\n", statLabels[stat], v, StatBar(v, barWidth))
	}
	fmt.Fprintf(&b, "%-7s %3d\n\n", "TOTAL", total)

	fmt.Fprintf(&b, "Height %.1f m   Weight %.1f kg   Base XP %d\n",
		float64(r.detail.Height)/10, float64(r.detail.Weight)/10, r.detail.BaseExperience)
	if url := r.entry.SpriteURL(); url != "" {
		b.WriteString("\n" + mutedText.Render(url))
	}
	return b.String()
}
