package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// MinLeftWidth is the minimum character width for the left pane.
const MinLeftWidth = 36

// defaultTypeColor is used for type names missing from typeColors.
const defaultTypeColor = "#777777"

// typeColors maps each type name to its badge color.
var typeColors = map[string]string{
	"normal":   "#A8A878",
	"fire":     "#F08030",
	"water":    "#6890F0",
	"electric": "#F8D030",
	"grass":    "#78C850",
	"ice":      "#98D8D8",
	"fighting": "#C03028",
	"poison":   "#A040A0",
	"ground":   "#E0C068",
	"flying":   "#A890F0",
	"psychic":  "#F85888",
	"bug":      "#A8B820",
	"rock":     "#B8A038",
	"ghost":    "#705898",
	"dragon":   "#7038F8",
	"dark":     "#705848",
	"steel":    "#B8B8D0",
	"fairy":    "#EE99AC",
}

var (
	mutedText  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})
	titleText  = lipgloss.NewStyle().Bold(true)
	errorText  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "9"})
	accentText = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"})
	toastStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.AdaptiveColor{Light: "11", Dark: "11"})
	toastErrorStyle = toastStyle.Background(lipgloss.AdaptiveColor{Light: "9", Dark: "9"})
)

// TypeColor returns the badge color for a type name.
func TypeColor(name string) lipgloss.Color {
	if c, ok := typeColors[name]; ok {
		return lipgloss.Color(c)
	}
	return lipgloss.Color(defaultTypeColor)
}

// TypeBadge returns a colored type label like "fire".
func TypeBadge(name string) string {
	return lipgloss.NewStyle().
		Foreground(TypeColor(name)).
		Render(name)
}

// TypeBadges joins the badges of several types with "/".
func TypeBadges(names []string) string {
	badges := make([]string, len(names))
	for i, n := range names {
		badges[i] = TypeBadge(n)
	}
	return strings.Join(badges, "/")
}

// StatBar renders a base stat as a bar scaled against maxStat.
func StatBar(value, width int) string {
	const maxStat = 255
	if width <= 0 {
		return ""
	}
	filled := min(width, value*width/maxStat)
	if value > 0 && filled == 0 {
		filled = 1
	}
	return accentText.Render(strings.Repeat("█", filled)) + mutedText.Render(strings.Repeat("░", width-filled))
}

// FocusedBorder returns a lipgloss style with an accent-colored rounded border.
func FocusedBorder() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"})
}

// UnfocusedBorder returns a lipgloss style with a dim rounded border.
func UnfocusedBorder() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.AdaptiveColor{Light: "240", Dark: "240"})
}

// PaneWidths calculates the left and right pane widths from a total width.
// Left pane gets 1/2 (minimum MinLeftWidth), right pane gets the rest.
func PaneWidths(totalWidth int) (left, right int) {
	if totalWidth <= 0 {
		return 0, 0
	}
	left = totalWidth / 2
	if left < MinLeftWidth {
		left = MinLeftWidth
	}
	right = totalWidth - left
	if right < 0 {
		right = 0
	}
	return left, right
}

// tabBar renders the mode tabs with the active one highlighted.
func tabBar(active Mode) string {
	var parts []string
	for _, m := range []Mode{ModeCatalog, ModeFavorites, ModeTeam} {
		label := fmt.Sprintf(" %s ", m)
		if m == active {
			parts = append(parts, titleText.Inherit(accentText).Underline(true).Render(label))
		} else {
			parts = append(parts, mutedText.Render(label))
		}
	}
	return strings.Join(parts, "│")
}
