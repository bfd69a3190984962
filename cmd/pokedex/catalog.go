package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/smileynet/pokedex/internal/catalog"
	"github.com/smileynet/pokedex/internal/dashboard"
	"github.com/smileynet/pokedex/internal/tui"
)

// --- Browse command ---

// BrowseCmd opens the interactive catalog browser.
type BrowseCmd struct {
	Generation string `short:"g" help:"Start filtered to a generation (1-9, 10 for special forms)."`
	Type       string `short:"t" help:"Start filtered to a type."`
}

// teaRunner abstracts Bubble Tea program execution for testing.
type teaRunner interface {
	Run() (tea.Model, error)
}

// Run builds real dependencies and launches the browser.
func (b *BrowseCmd) Run() error {
	if !tui.IsTTY(os.Stdout) {
		return fmt.Errorf("browse: requires a terminal (TTY)")
	}
	a, err := newApp(os.Stdout, io.Discard)
	if err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	defer func() { _ = a.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	prog := tea.NewProgram(b.model(ctx, a), tea.WithAltScreen())
	return b.run(true, prog)
}

// model wires the dashboard to the app's client and session.
func (b *BrowseCmd) model(ctx context.Context, a *app) dashboard.Model {
	feed := dashboard.NewBatchFeed()
	opts := []dashboard.Option{
		dashboard.WithContext(ctx),
		dashboard.WithRoster(a.newRoster()),
		dashboard.WithTypes(a.client),
		dashboard.WithBatchFeed(feed),
		dashboard.WithFilter(b.Generation, strings.ToLower(b.Type)),
	}
	if a.sess.User.Login != "" {
		opts = append(opts, dashboard.WithUser(a.sess.User.Login))
	}
	return dashboard.NewModel(a.newView(feed.Notify), opts...)
}

// run executes the tea program, enabling testable wiring.
func (b *BrowseCmd) run(isTTY bool, prog teaRunner) error {
	if !isTTY {
		return fmt.Errorf("browse: requires a terminal (TTY)")
	}
	_, err := prog.Run()
	return err
}

// --- List command ---

// ListCmd prints one page of the filtered catalog as a table.
type ListCmd struct {
	Generation string `short:"g" help:"Filter by generation (1-9, 10 for special forms)."`
	Type       string `short:"t" help:"Filter by type."`
	Search     string `short:"s" help:"Filter by name."`
	Page       int    `short:"p" help:"Page to print." default:"1"`
	PageSize   int    `help:"Entries per page (default from config)."`
	Details    bool   `short:"d" help:"Fetch and print types and stats."`
}

// Run executes the list command.
func (l *ListCmd) Run() error {
	return withApp(func(ctx context.Context, a *app) error {
		return l.run(ctx, a)
	})
}

func (l *ListCmd) run(ctx context.Context, a *app) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	view := a.newView(nil)
	if l.PageSize > 0 {
		view.SetPageSize(ctx, l.PageSize)
	}
	loadTask, err := view.Load(ctx, l.Generation, strings.ToLower(l.Type))
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	tasks := []*catalog.Task{loadTask, view.SetSearch(ctx, l.Search)}
	if l.Page != view.PageNumber() {
		task, ok := view.GoToPage(ctx, l.Page)
		if !ok {
			return fmt.Errorf("list: page %d out of range 1-%d: %w", l.Page, max(view.TotalPages(), 1), errUsage)
		}
		tasks = append(tasks, task)
	}
	if l.Details {
		tasks = append(tasks, view.Prefetch(ctx, view.Page()))
		for _, t := range tasks {
			t.Wait()
		}
	}

	t := newTable(a.out)
	header := table.Row{"#", "Name"}
	if l.Details {
		header = append(header, "Types", "HP", "ATK", "DEF", "SPD")
	}
	t.AppendHeader(header)
	for _, e := range view.Page() {
		row := table.Row{e.DisplayID(), a.caser.String(e.Name)}
		if l.Details {
			d := view.Detail(e)
			if d.Known() {
				row = append(row, strings.Join(d.Types, "/"),
					d.Stat(catalog.StatHP), d.Stat(catalog.StatAttack), d.Stat(catalog.StatDefense), d.Stat(catalog.StatSpeed))
			} else {
				row = append(row, "?", "", "", "", "")
			}
		}
		t.AppendRow(row)
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d Pokémon | Page %d of %d", view.Count(), view.PageNumber(), max(view.TotalPages(), 1))})
	t.Render()
	return nil
}

// --- Show command ---

// ShowCmd prints one entry's detail.
type ShowCmd struct {
	Name string `arg:"" help:"Pokémon name or id."`
}

// Run executes the show command.
func (s *ShowCmd) Run() error {
	return withApp(func(ctx context.Context, a *app) error {
		return s.run(ctx, a)
	})
}

func (s *ShowCmd) run(ctx context.Context, a *app) error {
	p, err := a.client.Pokemon(ctx, strings.ToLower(s.Name))
	if err != nil {
		return fmt.Errorf("show %s: %w", s.Name, err)
	}
	e := catalog.EntryFor(p.Name, p.ID)

	r := a.newRoster()
	if err := r.Reload(ctx); err != nil {
		a.logger.Debug("roster unavailable", "err", err)
	}

	a.printf("#%s %s\n", e.DisplayID(), a.caser.String(p.Name))
	var marks []string
	if r.IsFavorite(p.Name) {
		marks = append(marks, "★ Favorite")
	}
	if r.IsInTeam(p.Name) {
		marks = append(marks, "⚔ Team")
	}
	if len(marks) > 0 {
		a.printf("%s\n", strings.Join(marks, "  "))
	}

	t := newTable(a.out)
	t.AppendHeader(table.Row{"Stat", "Base"})
	stats := p.StatMap()
	total := 0
	for _, name := range catalog.StatOrder {
		total += stats[name]
		t.AppendRow(table.Row{name, stats[name]})
	}
	t.AppendFooter(table.Row{"total", total})
	t.Render()

	a.printf("Types: %s\n", strings.Join(p.TypeNames(), "/"))
	a.printf("Height %.1f m   Weight %.1f kg   Base XP %d\n",
		float64(p.Height)/10, float64(p.Weight)/10, p.BaseExperience)
	a.printf("Sprite: %s\n", e.SpriteURL())
	return nil
}

// --- Types command ---

// TypesCmd lists the types usable as filters.
type TypesCmd struct{}

// Run executes the types command.
func (c *TypesCmd) Run() error {
	return withApp(func(ctx context.Context, a *app) error {
		return c.run(ctx, a)
	})
}

func (c *TypesCmd) run(ctx context.Context, a *app) error {
	types, err := a.client.Types(ctx)
	if err != nil {
		return fmt.Errorf("types: %w", err)
	}
	for _, t := range types {
		a.printf("%s\n", t.Name)
	}
	return nil
}

// --- Generations command ---

// GenerationsCmd lists the static generation ranges.
type GenerationsCmd struct{}

// Run executes the generations command.
func (c *GenerationsCmd) Run() error {
	c.run(os.Stdout)
	return nil
}

func (c *GenerationsCmd) run(w io.Writer) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Key", "Generation", "IDs"})
	for _, g := range catalog.Generations {
		t.AppendRow(table.Row{g.Key, g.Label, fmt.Sprintf("%d-%d", g.FirstID(), g.LastID())})
	}
	t.Render()
}

// --- Prefetch command ---

// PrefetchCmd warms the detail cache for a filter and reports each batch.
type PrefetchCmd struct {
	Generation string `short:"g" help:"Filter by generation (1-9, 10 for special forms)."`
	Type       string `short:"t" help:"Filter by type."`
	Search     string `short:"s" help:"Filter by name."`
	Count      int    `short:"n" help:"Number of entries to fetch (default: lookahead from config)."`
	NoTUI      bool   `help:"Force plain text output even if stdout is a TTY." default:"false"`
}

// Run executes the prefetch command.
func (p *PrefetchCmd) Run() error {
	a, err := newApp(os.Stdout, io.Discard)
	if err != nil {
		return fmt.Errorf("prefetch: %w", err)
	}
	defer func() { _ = a.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	return p.run(ctx, cancel, a, p.NoTUI)
}

// run loads the listing, then fetches details for its head while a
// display consumes batch results through a Bridge.
func (p *PrefetchCmd) run(ctx context.Context, cancel context.CancelFunc, a *app, forcePlain bool) error {
	bridge := tui.NewBridge()
	start := time.Now()
	parts := a.newCatalog(func(r catalog.BatchResult) {
		bridge.Send(tui.BatchUpdateMsg{
			Index:    r.Index,
			Total:    r.Total,
			Names:    r.Names,
			Loaded:   r.Loaded,
			Err:      r.Err,
			Duration: time.Since(start),
		})
	})

	entries, err := parts.loader.Load(ctx, catalog.Filter{Generation: p.Generation, Type: strings.ToLower(p.Type)})
	if err != nil {
		return fmt.Errorf("prefetch: %w", err)
	}
	count := p.Count
	if count <= 0 {
		count = a.cfg.Catalog.Lookahead
	}
	window := catalog.Window(catalog.Search(entries, p.Search), 0, count)

	display := tui.NewDisplay(tui.DisplayOptions{
		Writer:     a.out,
		ForcePlain: forcePlain,
		Title:      fmt.Sprintf("Prefetching %d Pokémon", len(window)),
		Requested:  len(window),
		CancelFunc: cancel,
	})
	displayDone := make(chan error, 1)
	go func() {
		displayDone <- display.Run(context.Background(), bridge.Events())
	}()

	parts.populator.Populate(ctx, 0, window).Wait()
	if err := ctx.Err(); err != nil {
		bridge.Error(err)
	} else {
		bridge.Done(parts.cache.Len())
	}

	if err := <-displayDone; err != nil {
		return fmt.Errorf("prefetch: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("prefetch: %w", err)
	}
	return nil
}
