// Package catalog holds the Pokémon catalog view state: the active entry
// list, the lazily filled detail cache, filtering and pagination.
package catalog

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/smileynet/pokedex/internal/api"
)

// spriteURLFormat is the official sprite location, keyed by numeric id.
const spriteURLFormat = "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/%d.png"

// entryURLFormat is the canonical detail URL used by the listing endpoints.
const entryURLFormat = "https://pokeapi.co/api/v2/pokemon/%d/"

var (
	idPattern     = regexp.MustCompile(`/pokemon/(\d+)/?$`)
	spritePattern = regexp.MustCompile(`/pokemon/(\d+)\.png$`)
)

// Entry is a single catalog item. Name is the unique lower-case identifier.
type Entry struct {
	Name string
	URL  string
}

// ID extracts the numeric id from the tail of the entry URL.
// It returns 0 when the URL does not end in /pokemon/<id>/.
func (e Entry) ID() int {
	m := idPattern.FindStringSubmatch(e.URL)
	if m == nil {
		return 0
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return id
}

// DisplayID returns the id zero-padded to three digits, or "???" when unknown.
func (e Entry) DisplayID() string {
	id := e.ID()
	if id == 0 {
		return "???"
	}
	return fmt.Sprintf("%03d", id)
}

// SpriteURL returns the sprite image URL, or "" when the id is unknown.
func (e Entry) SpriteURL() string {
	id := e.ID()
	if id == 0 {
		return ""
	}
	return fmt.Sprintf(spriteURLFormat, id)
}

// EntryFor returns the entry with the canonical listing URL for id.
func EntryFor(name string, id int) Entry {
	if id <= 0 {
		return Entry{Name: name}
	}
	return Entry{Name: name, URL: fmt.Sprintf(entryURLFormat, id)}
}

// EntryFromSprite rebuilds an entry from a stored name and sprite URL.
// The entry's id is unknown when the sprite URL carries none.
func EntryFromSprite(name, spriteURL string) Entry {
	e := Entry{Name: name}
	if m := spritePattern.FindStringSubmatch(spriteURL); m != nil {
		if id, err := strconv.Atoi(m[1]); err == nil {
			return EntryFor(name, id)
		}
	}
	return e
}

// entriesFrom converts listing results into entries.
func entriesFrom(results []api.NamedResource) []Entry {
	entries := make([]Entry, len(results))
	for i, r := range results {
		entries[i] = Entry{Name: r.Name, URL: r.URL}
	}
	return entries
}
