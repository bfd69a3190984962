package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/smileynet/pokedex/internal/api"
)

var errBackend = errors.New("backend down")

// fakeSource serves a synthetic catalog of n entries named poke-<id>,
// plus explicit listings per type. It records every call.
type fakeSource struct {
	mu       sync.Mutex
	names    []string
	byType   map[string][]string
	failList bool
	failType bool
	failName map[string]bool

	listCalls   [][2]int
	typeCalls   []string
	detailCalls map[string]int
}

func newFakeSource(names ...string) *fakeSource {
	return &fakeSource{
		names:       names,
		byType:      map[string][]string{},
		failName:    map[string]bool{},
		detailCalls: map[string]int{},
	}
}

func numberedNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("poke-%d", i+1)
	}
	return names
}

func resourceFor(name string, id int) api.NamedResource {
	return api.NamedResource{Name: name, URL: fmt.Sprintf("https://pokeapi.co/api/v2/pokemon/%d/", id)}
}

func (f *fakeSource) ListPokemon(_ context.Context, limit, offset int) (api.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, [2]int{offset, limit})
	if f.failList {
		return api.Page{}, errBackend
	}
	var page api.Page
	page.Count = len(f.names)
	for i := offset; i < offset+limit && i < len(f.names); i++ {
		page.Results = append(page.Results, resourceFor(f.names[i], i+1))
	}
	return page, nil
}

func (f *fakeSource) PokemonByType(_ context.Context, name string) (api.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.typeCalls = append(f.typeCalls, name)
	if f.failType {
		return api.Page{}, errBackend
	}
	var page api.Page
	for _, n := range f.byType[name] {
		page.Results = append(page.Results, resourceFor(n, f.indexOf(n)+1))
	}
	return page, nil
}

func (f *fakeSource) Pokemon(ctx context.Context, name string) (api.Pokemon, error) {
	f.mu.Lock()
	f.detailCalls[name]++
	fail := f.failName[name]
	id := f.indexOf(name) + 1
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return api.Pokemon{}, err
	}
	if fail {
		return api.Pokemon{}, errBackend
	}
	return api.Pokemon{
		ID:    id,
		Name:  name,
		Types: []api.PokemonType{{Slot: 1, Type: api.NamedResource{Name: "normal"}}},
		Stats: []api.PokemonStat{{BaseStat: 10 * id, Stat: api.NamedResource{Name: StatHP}}},
	}, nil
}

func (f *fakeSource) indexOf(name string) int {
	for i, n := range f.names {
		if n == name {
			return i
		}
	}
	return -1
}

func (f *fakeSource) detailCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.detailCalls[name]
}

func (f *fakeSource) totalDetailCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.detailCalls {
		total += n
	}
	return total
}

func entriesNamed(names ...string) []Entry {
	entries := make([]Entry, len(names))
	for i, n := range names {
		entries[i] = Entry{Name: n, URL: fmt.Sprintf("https://pokeapi.co/api/v2/pokemon/%d/", i+1)}
	}
	return entries
}

func namesOf(entries []Entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}
