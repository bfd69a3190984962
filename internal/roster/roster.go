// Package roster tracks the signed-in user's favorites and battle team and
// answers membership questions for catalog entries.
package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/smileynet/pokedex/internal/api"
	"github.com/smileynet/pokedex/internal/catalog"
)

// ErrNotLoggedIn is returned by mutations when no session token is set.
var ErrNotLoggedIn = errors.New("roster: not logged in")

// ErrNotMember is returned when removing a name that is not in the list.
var ErrNotMember = errors.New("roster: not a member")

// TeamLimit is the backend's maximum team size.
const TeamLimit = 6

// Client is the subset of the API client the roster needs.
type Client interface {
	HasToken() bool
	Favorites(ctx context.Context) ([]api.Member, error)
	Team(ctx context.Context) ([]api.Member, error)
	AddFavorite(ctx context.Context, in api.MemberInput) (api.Member, error)
	AddToTeam(ctx context.Context, in api.MemberInput) (api.Member, error)
	RemoveFavorite(ctx context.Context, id int) error
	RemoveFromTeam(ctx context.Context, id int) error
}

// Roster caches the two user lists. Safe for concurrent use.
type Roster struct {
	client Client

	mu        sync.RWMutex
	favorites []api.Member
	team      []api.Member
}

// New creates an empty Roster backed by client.
func New(client Client) *Roster {
	return &Roster{client: client}
}

// Reload fetches both lists. Without a session both lists become empty.
// On error the previously loaded lists are kept.
func (r *Roster) Reload(ctx context.Context) error {
	if !r.client.HasToken() {
		r.mu.Lock()
		r.favorites, r.team = nil, nil
		r.mu.Unlock()
		return nil
	}

	var favorites, team []api.Member
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		favorites, err = r.client.Favorites(gctx)
		if err != nil {
			return fmt.Errorf("roster: loading favorites: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		team, err = r.client.Team(gctx)
		if err != nil {
			return fmt.Errorf("roster: loading team: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	r.mu.Lock()
	r.favorites, r.team = favorites, team
	r.mu.Unlock()
	return nil
}

// Favorites returns a copy of the loaded favorites.
func (r *Roster) Favorites() []api.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]api.Member(nil), r.favorites...)
}

// Team returns a copy of the loaded team.
func (r *Roster) Team() []api.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]api.Member(nil), r.team...)
}

// IsFavorite reports whether name is among the favorites, ignoring case.
func (r *Roster) IsFavorite(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := find(r.favorites, name)
	return ok
}

// IsInTeam reports whether name is in the team, ignoring case.
func (r *Roster) IsInTeam(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := find(r.team, name)
	return ok
}

// Favorite adds e to the favorites and reloads both lists.
func (r *Roster) Favorite(ctx context.Context, e catalog.Entry) error {
	if !r.client.HasToken() {
		return ErrNotLoggedIn
	}
	if _, err := r.client.AddFavorite(ctx, memberInput(e)); err != nil {
		return err
	}
	return r.Reload(ctx)
}

// AddToTeam adds e to the team and reloads both lists. The backend
// rejects additions beyond TeamLimit; its message is carried by the error.
func (r *Roster) AddToTeam(ctx context.Context, e catalog.Entry) error {
	if !r.client.HasToken() {
		return ErrNotLoggedIn
	}
	if _, err := r.client.AddToTeam(ctx, memberInput(e)); err != nil {
		return err
	}
	return r.Reload(ctx)
}

// RemoveFavorite removes the favorite whose code matches name.
func (r *Roster) RemoveFavorite(ctx context.Context, name string) error {
	if !r.client.HasToken() {
		return ErrNotLoggedIn
	}
	r.mu.RLock()
	m, ok := find(r.favorites, name)
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotMember, name)
	}
	if err := r.client.RemoveFavorite(ctx, m.ID); err != nil {
		return err
	}
	return r.Reload(ctx)
}

// RemoveFromTeam removes the team member whose code matches name.
func (r *Roster) RemoveFromTeam(ctx context.Context, name string) error {
	if !r.client.HasToken() {
		return ErrNotLoggedIn
	}
	r.mu.RLock()
	m, ok := find(r.team, name)
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotMember, name)
	}
	if err := r.client.RemoveFromTeam(ctx, m.ID); err != nil {
		return err
	}
	return r.Reload(ctx)
}

// Entries converts members back into catalog entries, e.g. to browse the
// favorites list. The entry URL is rebuilt from the sprite id when known.
func Entries(members []api.Member) []catalog.Entry {
	entries := make([]catalog.Entry, 0, len(members))
	for _, m := range members {
		entries = append(entries, catalog.EntryFromSprite(strings.ToLower(m.Code), m.ImageURL))
	}
	return entries
}

func find(members []api.Member, name string) (api.Member, bool) {
	for _, m := range members {
		if strings.EqualFold(m.Code, name) {
			return m, true
		}
	}
	return api.Member{}, false
}

func memberInput(e catalog.Entry) api.MemberInput {
	return api.MemberInput{
		Code:     e.Name,
		Name:     e.Name,
		ImageURL: e.SpriteURL(),
	}
}
