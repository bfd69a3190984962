package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/smileynet/pokedex/internal/api"
	"github.com/smileynet/pokedex/internal/catalog"
	"github.com/smileynet/pokedex/internal/config"
	"github.com/smileynet/pokedex/internal/roster"
	"github.com/smileynet/pokedex/internal/session"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// CLI is the top-level command structure for pokedex.
type CLI struct {
	Version kong.VersionFlag `help:"Show version." short:"V"`

	Browse      BrowseCmd      `cmd:"" help:"Open the interactive catalog browser."`
	List        ListCmd        `cmd:"" help:"Print one page of the catalog."`
	Show        ShowCmd        `cmd:"" help:"Show the stats of one Pokémon."`
	Types       TypesCmd       `cmd:"" help:"List the types usable as filters."`
	Generations GenerationsCmd `cmd:"" help:"List the generation ranges."`
	Prefetch    PrefetchCmd    `cmd:"" help:"Fetch details in batches and report progress."`

	Favorites FavoritesCmd `cmd:"" help:"Manage your favorites."`
	Team      TeamCmd      `cmd:"" help:"Manage your battle team."`

	Login         LoginCmd         `cmd:"" help:"Log in and store the session."`
	Register      RegisterCmd      `cmd:"" help:"Create an account and log in."`
	Logout        LogoutCmd        `cmd:"" help:"Forget the stored session."`
	Whoami        WhoamiCmd        `cmd:"" help:"Show the logged-in user."`
	Users         UsersCmd         `cmd:"" help:"Manage accounts (admin only)."`
	ResetPassword ResetPasswordCmd `cmd:"" help:"Set a new password for an account."`
	Doctor        DoctorCmd        `cmd:"" help:"Check configuration, backend and session."`
}

// app holds the dependencies shared by every command.
type app struct {
	cfg    *config.Config
	client *api.Client
	store  *session.FileStore
	sess   session.Session
	logger *slog.Logger
	out    io.Writer
	caser  cases.Caser
	closer io.Closer
}

// loadConfig loads layered config from user and project paths with env overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadLayered(
		os.ExpandEnv("$HOME/.config/pokedex/config.yaml"),
		".pokedex/config.yaml",
	)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp builds the shared dependencies from config. Logs go to the
// configured file, or to logOut when none is set.
func newApp(out, logOut io.Writer) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return buildApp(cfg, out, logOut)
}

func buildApp(cfg *config.Config, out, logOut io.Writer) (*app, error) {
	a := &app{cfg: cfg, out: out, caser: cases.Title(language.Und)}

	if cfg.Log.File != "" {
		path, err := config.ExpandHome(cfg.Log.File)
		if err != nil {
			return nil, err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		logOut, a.closer = f, f
	}
	logger, err := newLogger(cfg.Log.Level, logOut)
	if err != nil {
		return nil, err
	}
	a.logger = logger

	path, err := config.ExpandHome(cfg.Session.Path)
	if err != nil {
		return nil, err
	}
	a.store = session.NewFileStore(path)

	token := cfg.Session.Token
	if token == "" {
		sess, err := a.store.Load()
		switch {
		case err == nil:
			a.sess = sess
			token = sess.Token
		case !errors.Is(err, session.ErrNoSession):
			logger.Warn("ignoring unreadable session", "path", path, "err", err)
		}
	} else {
		a.sess = session.Session{Token: token}
	}

	a.client = api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithToken(token),
		api.WithLogger(logger),
	)
	return a, nil
}

// Close releases the log file, if any.
func (a *app) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// newLogger builds a text slog.Logger at the named level.
func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	if w == nil || w == io.Discard {
		return slog.New(slog.DiscardHandler), nil
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// catalogParts are the pieces of a catalog view, exposed for commands that
// drive the loader or populator directly.
type catalogParts struct {
	cache     *catalog.DetailCache
	loader    *catalog.Loader
	populator *catalog.Populator
}

func (a *app) newCatalog(notify func(catalog.BatchResult)) catalogParts {
	c := a.cfg.Catalog
	cache := catalog.NewDetailCache(0)
	opts := []catalog.PopulatorOption{
		catalog.WithBatchSize(c.BatchSize),
		catalog.WithBatchDelay(c.BatchDelay),
		catalog.WithLogger(a.logger),
	}
	if notify != nil {
		opts = append(opts, catalog.WithNotify(notify))
	}
	return catalogParts{
		cache: cache,
		loader: catalog.NewLoader(a.client,
			catalog.WithFullSize(c.FullSize),
			catalog.WithListingCeiling(c.ListingCeiling),
		),
		populator: catalog.NewPopulator(a.client, cache, opts...),
	}
}

func (a *app) newView(notify func(catalog.BatchResult)) *catalog.View {
	p := a.newCatalog(notify)
	return catalog.NewView(p.loader, p.populator, p.cache,
		catalog.WithPageSize(a.cfg.Catalog.PageSize),
		catalog.WithLookahead(a.cfg.Catalog.Lookahead),
	)
}

func (a *app) newRoster() *roster.Roster {
	return roster.New(a.client)
}

// newTable returns a table writer rendering to w in the CLI's style.
// Footers keep their case since they carry sentences.
func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Footer = text.FormatDefault
	return t
}

// printf writes to the command output, ignoring write errors.
func (a *app) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}

// withApp builds the app, runs fn with an interrupt-aware context and
// closes the app afterwards.
func withApp(fn func(ctx context.Context, a *app) error) error {
	a, err := newApp(os.Stdout, os.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return fn(ctx, a)
}

// Exit codes.
const (
	exitSuccess = 0
	exitBackend = 1
	exitUser    = 2
)

// exitCode maps an error to the appropriate exit code. Errors the user can
// act on exit 2; backend and network failures exit 1.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var se *api.StatusError
	if errors.As(err, &se) {
		if se.Code >= 500 {
			return exitBackend
		}
		return exitUser
	}
	switch {
	case errors.Is(err, roster.ErrNotLoggedIn),
		errors.Is(err, roster.ErrNotMember),
		errors.Is(err, session.ErrNoSession),
		errors.Is(err, catalog.ErrUnknownGeneration),
		errors.Is(err, errUsage):
		return exitUser
	}
	return exitBackend
}

// errUsage marks invalid command input.
var errUsage = errors.New("invalid input")

// errorText returns the line printed for err: the backend's own message
// when it sent one.
func errorText(err error) string {
	return api.Message(err, err.Error())
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pokedex"),
		kong.Description("Browse the Pokémon catalog and manage your favorites and team."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", errorText(err))
		os.Exit(exitCode(err))
	}
}
