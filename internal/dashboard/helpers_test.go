package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/pokedex/internal/api"
	"github.com/smileynet/pokedex/internal/catalog"
	"github.com/smileynet/pokedex/internal/roster"
)

var errBackend = errors.New("backend down")

// stripANSI removes ANSI escape sequences from a string.
func stripANSI(s string) string {
	var out []byte
	i := 0
	for i < len(s) {
		if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && (s[j] < 'A' || s[j] > 'Z') && (s[j] < 'a' || s[j] > 'z') {
				j++
			}
			if j < len(s) {
				j++
			}
			i = j
		} else {
			out = append(out, s[i])
			i++
		}
	}
	return string(out)
}

// containsPlainText checks if s contains sub after stripping ANSI escapes.
func containsPlainText(s, sub string) bool {
	return strings.Contains(stripANSI(s), sub)
}

// execBatch executes a tea.Cmd, handling both single commands and batch
// commands. It returns all resulting messages. Spinner ticks are skipped
// to avoid infinite recursion.
func execBatch(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			if c != nil {
				result := c()
				// Skip spinner ticks to avoid recursion.
				if _, isTick := result.(spinner.TickMsg); !isTick {
					msgs = append(msgs, result)
				}
			}
		}
		return msgs
	}
	if _, isTick := msg.(spinner.TickMsg); isTick {
		return nil
	}
	return []tea.Msg{msg}
}

// pump feeds every message produced by cmd back into m.
func pump(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range execBatch(t, cmd) {
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

// press sends a key to m and returns the updated model and command.
func press(m Model, k string) (Model, tea.Cmd) {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+c":
		msg = tea.KeyMsg{Type: tea.KeyCtrlC}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

// typeText presses each rune of s in turn.
func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = press(m, string(r))
	}
	return m
}

// fakeCatalog serves listings and details for a fixed set of names.
type fakeCatalog struct {
	mu       sync.Mutex
	names    []string
	byType   map[string][]string
	failList bool
}

func newFakeCatalog(names ...string) *fakeCatalog {
	return &fakeCatalog{names: names, byType: map[string][]string{}}
}

func (f *fakeCatalog) resource(name string) api.NamedResource {
	for i, n := range f.names {
		if n == name {
			return api.NamedResource{Name: n, URL: fmt.Sprintf("https://pokeapi.co/api/v2/pokemon/%d/", i+1)}
		}
	}
	return api.NamedResource{Name: name}
}

func (f *fakeCatalog) ListPokemon(_ context.Context, limit, offset int) (api.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList {
		return api.Page{}, errBackend
	}
	page := api.Page{Count: len(f.names)}
	for i := offset; i < offset+limit && i < len(f.names); i++ {
		page.Results = append(page.Results, f.resource(f.names[i]))
	}
	return page, nil
}

func (f *fakeCatalog) PokemonByType(_ context.Context, name string) (api.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var page api.Page
	for _, n := range f.byType[name] {
		page.Results = append(page.Results, f.resource(n))
	}
	return page, nil
}

func (f *fakeCatalog) Pokemon(_ context.Context, name string) (api.Pokemon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.names {
		if n == name {
			return api.Pokemon{
				ID:   i + 1,
				Name: n,
				Types: []api.PokemonType{
					{Slot: 1, Type: api.NamedResource{Name: "grass"}},
				},
				Stats: []api.PokemonStat{
					{BaseStat: 45, Stat: api.NamedResource{Name: catalog.StatHP}},
				},
			}, nil
		}
	}
	return api.Pokemon{}, api.ErrNotFound
}

// fakeTypes returns a fixed type list.
type fakeTypes struct {
	types []string
	err   error
}

func (f fakeTypes) Types(context.Context) ([]api.NamedResource, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]api.NamedResource, len(f.types))
	for i, t := range f.types {
		out[i] = api.NamedResource{Name: t}
	}
	return out, nil
}

// fakeRosterClient keeps favorites and team in memory.
type fakeRosterClient struct {
	mu        sync.Mutex
	token     bool
	nextID    int
	favorites []api.Member
	team      []api.Member
}

func (f *fakeRosterClient) HasToken() bool { return f.token }

func (f *fakeRosterClient) Favorites(context.Context) ([]api.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.Member(nil), f.favorites...), nil
}

func (f *fakeRosterClient) Team(context.Context) ([]api.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.Member(nil), f.team...), nil
}

func (f *fakeRosterClient) add(list *[]api.Member, in api.MemberInput) api.Member {
	f.nextID++
	m := api.Member{ID: f.nextID, Code: in.Code, Name: in.Name, ImageURL: in.ImageURL, Favorite: in.Favorite, Team: in.Team}
	*list = append(*list, m)
	return m
}

func (f *fakeRosterClient) AddFavorite(_ context.Context, in api.MemberInput) (api.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	in.Favorite = true
	return f.add(&f.favorites, in), nil
}

func (f *fakeRosterClient) AddToTeam(_ context.Context, in api.MemberInput) (api.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.team) >= roster.TeamLimit {
		return api.Member{}, &api.StatusError{Method: "POST", Path: "/api/me/team", Code: 400, Msg: "Team already has 6 members"}
	}
	in.Team = true
	return f.add(&f.team, in), nil
}

func remove(list []api.Member, id int) []api.Member {
	out := list[:0]
	for _, m := range list {
		if m.ID != id {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeRosterClient) RemoveFavorite(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.favorites = remove(f.favorites, id)
	return nil
}

func (f *fakeRosterClient) RemoveFromTeam(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.team = remove(f.team, id)
	return nil
}

var starters = []string{"bulbasaur", "ivysaur", "venusaur", "charmander", "charmeleon", "charizard", "squirtle"}

func numberedNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("poke-%d", i+1)
	}
	return names
}

// newTestView builds a catalog view over src with no batch stagger.
func newTestView(src *fakeCatalog) *catalog.View {
	cache := catalog.NewDetailCache(0)
	loader := catalog.NewLoader(src, catalog.WithFullSize(len(src.names)))
	populator := catalog.NewPopulator(src, cache, catalog.WithBatchDelay(0))
	return catalog.NewView(loader, populator, cache)
}

// newLoadedModel returns a sized model whose first listing has been applied.
func newLoadedModel(t *testing.T, src *fakeCatalog, opts ...Option) Model {
	t.Helper()
	opts = append([]Option{WithToastDuration(time.Millisecond)}, opts...)
	m := NewModel(newTestView(src), opts...)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	m = updated.(Model)
	return pump(t, m, m.Init())
}
