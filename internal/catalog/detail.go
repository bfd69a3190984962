package catalog

import "github.com/smileynet/pokedex/internal/api"

// Stat names shown on cards, in display order.
const (
	StatHP             = "hp"
	StatAttack         = "attack"
	StatDefense        = "defense"
	StatSpecialAttack  = "special-attack"
	StatSpecialDefense = "special-defense"
	StatSpeed          = "speed"
)

// StatOrder lists every base stat in the order the detail pane shows them.
var StatOrder = []string{StatHP, StatAttack, StatDefense, StatSpecialAttack, StatSpecialDefense, StatSpeed}

// Detail is the lazily fetched extended data of an entry.
type Detail struct {
	ID             int
	Name           string
	Types          []string
	Stats          map[string]int
	Height         int
	Weight         int
	BaseExperience int
}

// Known reports whether d came from the detail endpoint rather than being
// the placeholder returned for entries not yet loaded.
func (d Detail) Known() bool {
	return d.Name != ""
}

// Stat returns the named base stat, or 0 when absent.
func (d Detail) Stat(name string) int {
	return d.Stats[name]
}

// detailFrom converts a detail payload into a Detail.
func detailFrom(p api.Pokemon) Detail {
	return Detail{
		ID:             p.ID,
		Name:           p.Name,
		Types:          p.TypeNames(),
		Stats:          p.StatMap(),
		Height:         p.Height,
		Weight:         p.Weight,
		BaseExperience: p.BaseExperience,
	}
}
