package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/smileynet/pokedex/internal/api"
	"github.com/smileynet/pokedex/internal/catalog"
	"github.com/smileynet/pokedex/internal/roster"
	"github.com/smileynet/pokedex/internal/session"
)

// --- Favorites and team commands ---

// memberList selects which of the user's lists a command acts on.
type memberList int

const (
	listFavorites memberList = iota
	listTeam
)

func (l memberList) String() string {
	if l == listTeam {
		return "team"
	}
	return "favorites"
}

// FavoritesCmd groups the favorites subcommands.
type FavoritesCmd struct {
	List   FavoritesListCmd   `cmd:"" default:"1" help:"List your favorites."`
	Add    FavoritesAddCmd    `cmd:"" help:"Add a Pokémon to your favorites."`
	Remove FavoritesRemoveCmd `cmd:"" help:"Remove a Pokémon from your favorites."`
}

// FavoritesListCmd lists the favorites.
type FavoritesListCmd struct{}

// Run executes the favorites list command.
func (c *FavoritesListCmd) Run() error {
	return withApp(func(ctx context.Context, a *app) error {
		return listMembers(ctx, a, listFavorites)
	})
}

// FavoritesAddCmd adds a favorite.
type FavoritesAddCmd struct {
	Name string `arg:"" help:"Pokémon name or id."`
}

// Run executes the favorites add command.
func (c *FavoritesAddCmd) Run() error {
	return withApp(func(ctx context.Context, a *app) error {
		return addMember(ctx, a, listFavorites, c.Name)
	})
}

// FavoritesRemoveCmd removes a favorite.
type FavoritesRemoveCmd struct {
	Name string `arg:"" help:"Pokémon name."`
}

// Run executes the favorites remove command.
func (c *FavoritesRemoveCmd) Run() error {
	return withApp(func(ctx context.Context, a *app) error {
		return removeMember(ctx, a, listFavorites, c.Name)
	})
}

// TeamCmd groups the team subcommands.
type TeamCmd struct {
	List   TeamListCmd   `cmd:"" default:"1" help:"List your battle team."`
	Add    TeamAddCmd    `cmd:"" help:"Add a Pokémon to your team (up to 6)."`
	Remove TeamRemoveCmd `cmd:"" help:"Remove a Pokémon from your team."`
}

// TeamListCmd lists the team.
type TeamListCmd struct{}

// Run executes the team list command.
func (c *TeamListCmd) Run() error {
	return withApp(func(ctx context.Context, a *app) error {
		return listMembers(ctx, a, listTeam)
	})
}

// TeamAddCmd adds a team member.
type TeamAddCmd struct {
	Name string `arg:"" help:"Pokémon name or id."`
}

// Run executes the team add command.
func (c *TeamAddCmd) Run() error {
	return withApp(func(ctx context.Context, a *app) error {
		return addMember(ctx, a, listTeam, c.Name)
	})
}

// TeamRemoveCmd removes a team member.
type TeamRemoveCmd struct {
	Name string `arg:"" help:"Pokémon name."`
}

// Run executes the team remove command.
func (c *TeamRemoveCmd) Run() error {
	return withApp(func(ctx context.Context, a *app) error {
		return removeMember(ctx, a, listTeam, c.Name)
	})
}

// loadedRoster returns a roster with both lists loaded, or ErrNotLoggedIn.
func loadedRoster(ctx context.Context, a *app) (*roster.Roster, error) {
	if !a.client.HasToken() {
		return nil, roster.ErrNotLoggedIn
	}
	r := a.newRoster()
	if err := r.Reload(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func listMembers(ctx context.Context, a *app, which memberList) error {
	r, err := loadedRoster(ctx, a)
	if err != nil {
		return fmt.Errorf("%s: %w", which, err)
	}
	members := r.Favorites()
	if which == listTeam {
		members = r.Team()
	}
	if len(members) == 0 {
		a.printf("Your %s list is empty.\n", which)
		return nil
	}

	t := newTable(a.out)
	t.AppendHeader(table.Row{"#", "Name"})
	for _, e := range roster.Entries(members) {
		t.AppendRow(table.Row{e.DisplayID(), a.caser.String(e.Name)})
	}
	if which == listTeam {
		t.AppendFooter(table.Row{"", fmt.Sprintf("%d of %d slots", len(members), roster.TeamLimit)})
	}
	t.Render()
	return nil
}

func addMember(ctx context.Context, a *app, which memberList, name string) error {
	if !a.client.HasToken() {
		return fmt.Errorf("%s: %w", which, roster.ErrNotLoggedIn)
	}
	p, err := a.client.Pokemon(ctx, strings.ToLower(name))
	if err != nil {
		return fmt.Errorf("%s: looking up %s: %w", which, name, err)
	}
	e := catalog.EntryFor(p.Name, p.ID)
	r := a.newRoster()

	if which == listTeam {
		if err := r.AddToTeam(ctx, e); err != nil {
			return fmt.Errorf("%s: %w", which, err)
		}
		a.printf("%s joined your team\n", a.caser.String(e.Name))
		return nil
	}
	if err := r.Favorite(ctx, e); err != nil {
		return fmt.Errorf("%s: %w", which, err)
	}
	a.printf("%s added to favorites\n", a.caser.String(e.Name))
	return nil
}

func removeMember(ctx context.Context, a *app, which memberList, name string) error {
	r, err := loadedRoster(ctx, a)
	if err != nil {
		return fmt.Errorf("%s: %w", which, err)
	}
	name = strings.ToLower(name)
	if which == listTeam {
		err = r.RemoveFromTeam(ctx, name)
	} else {
		err = r.RemoveFavorite(ctx, name)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", which, err)
	}
	a.printf("%s removed from %s\n", a.caser.String(name), which)
	return nil
}

// --- Auth commands ---

// LoginCmd exchanges credentials for a session.
type LoginCmd struct {
	Login    string `arg:"" help:"Login name."`
	Password string `required:"" env:"POKEDEX_PASSWORD" help:"Password."`
}

// Run executes the login command.
func (c *LoginCmd) Run() error {
	return withApp(func(ctx context.Context, a *app) error {
		return c.run(ctx, a)
	})
}

func (c *LoginCmd) run(ctx context.Context, a *app) error {
	resp, err := a.client.Login(ctx, c.Login, c.Password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return saveSession(a, resp, "Logged in")
}

// RegisterCmd creates an account and stores its session.
type RegisterCmd struct {
	Name     string `required:"" help:"Display name."`
	Login    string `required:"" help:"Login name."`
	Email    string `required:"" help:"Email address."`
	Password string `required:"" env:"POKEDEX_PASSWORD" help:"Password."`
}

// Run executes the register command.
func (c *RegisterCmd) Run() error {
	return withApp(func(ctx context.Context, a *app) error {
		return c.run(ctx, a)
	})
}

func (c *RegisterCmd) run(ctx context.Context, a *app) error {
	resp, err := a.client.Register(ctx, api.Registration{
		Name:     c.Name,
		Login:    c.Login,
		Email:    c.Email,
		Password: c.Password,
	})
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return saveSession(a, resp, "Registered")
}

func saveSession(a *app, resp api.AuthResponse, verb string) error {
	sess := session.Session{Token: resp.AccessToken, User: resp.User}
	if err := a.store.Save(sess); err != nil {
		return err
	}
	a.client.SetToken(resp.AccessToken)
	role := ""
	if resp.User.IsAdmin {
		role = " (admin)"
	}
	a.printf("%s as %s [%s]%s\n", verb, resp.User.Name, resp.User.Login, role)
	return nil
}

// LogoutCmd removes the stored session.
type LogoutCmd struct{}

// Run executes the logout command.
func (c *LogoutCmd) Run() error {
	return withApp(func(_ context.Context, a *app) error {
		return c.run(a)
	})
}

func (c *LogoutCmd) run(a *app) error {
	if err := a.store.Clear(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	a.printf("Logged out\n")
	return nil
}

// WhoamiCmd shows the user the session belongs to.
type WhoamiCmd struct{}

// Run executes the whoami command.
func (c *WhoamiCmd) Run() error {
	return withApp(func(ctx context.Context, a *app) error {
		return c.run(ctx, a)
	})
}

func (c *WhoamiCmd) run(ctx context.Context, a *app) error {
	if !a.client.HasToken() {
		return fmt.Errorf("whoami: %w", session.ErrNoSession)
	}
	u, err := a.client.Me(ctx)
	if err != nil {
		return fmt.Errorf("whoami: %w", err)
	}
	a.printf("%s [%s] <%s>\n", u.Name, u.Login, u.Email)
	if u.IsAdmin {
		a.printf("Role: admin\n")
	}
	if exp, ok := a.sess.ExpiresAt(); ok {
		a.printf("Session expires %s\n", exp.Local().Format(time.DateTime))
	}
	return nil
}

// UsersCmd groups the admin user management subcommands.
type UsersCmd struct {
	List   UsersListCmd   `cmd:"" default:"1" help:"List every account."`
	Delete UsersDeleteCmd `cmd:"" help:"Delete an account."`
}

// UsersListCmd lists accounts.
type UsersListCmd struct{}

// Run executes the users list command.
func (c *UsersListCmd) Run() error {
	return withApp(func(ctx context.Context, a *app) error {
		return c.run(ctx, a)
	})
}

func (c *UsersListCmd) run(ctx context.Context, a *app) error {
	users, err := a.client.Users(ctx)
	if err != nil {
		return fmt.Errorf("users: %w", err)
	}
	t := newTable(a.out)
	t.AppendHeader(table.Row{"ID", "Name", "Created"})
	for _, u := range users {
		created := ""
		if u.CreatedAt != nil {
			created = *u.CreatedAt
		}
		t.AppendRow(table.Row{u.ID, u.Name, created})
	}
	t.Render()
	return nil
}

// UsersDeleteCmd deletes an account by id.
type UsersDeleteCmd struct {
	ID int `arg:"" help:"Account id."`
}

// Run executes the users delete command.
func (c *UsersDeleteCmd) Run() error {
	return withApp(func(ctx context.Context, a *app) error {
		return c.run(ctx, a)
	})
}

func (c *UsersDeleteCmd) run(ctx context.Context, a *app) error {
	msg, err := a.client.DeleteUser(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("users delete %d: %w", c.ID, err)
	}
	if msg == "" {
		msg = fmt.Sprintf("Deleted user %d", c.ID)
	}
	a.printf("%s\n", msg)
	return nil
}

// ResetPasswordCmd sets a new password for an account.
type ResetPasswordCmd struct {
	LoginOrEmail string `arg:"" help:"Login name or email of the account."`
	Password     string `required:"" env:"POKEDEX_NEW_PASSWORD" help:"New password."`
}

// Run executes the reset-password command.
func (c *ResetPasswordCmd) Run() error {
	return withApp(func(ctx context.Context, a *app) error {
		return c.run(ctx, a)
	})
}

func (c *ResetPasswordCmd) run(ctx context.Context, a *app) error {
	msg, err := a.client.ResetPassword(ctx, c.LoginOrEmail, c.Password)
	if err != nil {
		return fmt.Errorf("reset-password: %w", err)
	}
	if msg == "" {
		msg = "Password changed"
	}
	a.printf("%s\n", msg)
	return nil
}

// --- Doctor command ---

// DoctorCmd reports the effective configuration, backend health and session.
type DoctorCmd struct{}

// Run executes the doctor command.
func (c *DoctorCmd) Run() error {
	return withApp(func(ctx context.Context, a *app) error {
		return c.run(ctx, a)
	})
}

func (c *DoctorCmd) run(ctx context.Context, a *app) error {
	a.printf("API:     %s (timeout %s)\n", a.cfg.API.BaseURL, a.cfg.API.Timeout)
	a.printf("Session: %s\n", a.store.Path())

	status, healthErr := a.client.Health(ctx)
	if healthErr != nil {
		a.printf("Backend: unreachable (%v)\n", healthErr)
	} else {
		a.printf("Backend: %s\n", status)
	}

	switch {
	case !a.client.HasToken():
		a.printf("Login:   not logged in\n")
	default:
		u, err := a.client.Me(ctx)
		switch {
		case errors.Is(err, api.ErrUnauthorized):
			a.printf("Login:   session rejected, run `pokedex login`\n")
		case err != nil:
			a.printf("Login:   unknown (%v)\n", err)
		default:
			a.printf("Login:   %s [%s]\n", u.Name, u.Login)
		}
	}

	if healthErr != nil {
		return fmt.Errorf("doctor: backend unreachable: %w", healthErr)
	}
	return nil
}
