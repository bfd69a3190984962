// Package dashboard implements the two-pane catalog browser TUI: the current
// page of entries on the left, the selected entry's detail on the right.
// Separate from internal/tui which handles the prefetch progress display.
package dashboard

import (
	"context"

	"github.com/smileynet/pokedex/internal/api"
	"github.com/smileynet/pokedex/internal/catalog"
)

// Mode represents which list the dashboard is browsing.
type Mode int

const (
	ModeCatalog   Mode = iota // Filtered, paginated catalog.
	ModeFavorites             // Signed-in user's favorites.
	ModeTeam                  // Signed-in user's battle team.
)

// String returns the mode's tab label.
func (m Mode) String() string {
	switch m {
	case ModeFavorites:
		return "Favorites"
	case ModeTeam:
		return "Team"
	default:
		return "Catalog"
	}
}

// next cycles Catalog → Favorites → Team → Catalog.
func (m Mode) next() Mode {
	return (m + 1) % 3
}

// --- Consumer-side interfaces ---

// TypeLister fetches the type names offered by the type picker.
type TypeLister interface {
	Types(ctx context.Context) ([]api.NamedResource, error)
}

// --- tea.Msg types ---

// ListLoadedMsg carries the result of a catalog listing fetch tagged with
// the epoch of the selection that started it.
type ListLoadedMsg struct {
	Epoch   uint64
	Entries []catalog.Entry
	Err     error
}

// BatchDoneMsg reports a finished detail batch. Its only effect is a
// redraw; the cache has already been filled.
type BatchDoneMsg struct {
	Result catalog.BatchResult
}

// TypesLoadedMsg carries the type picker's options.
type TypesLoadedMsg struct {
	Types []string
	Err   error
}

// RosterLoadedMsg signals that favorites and team were reloaded.
type RosterLoadedMsg struct {
	Err error
}

// RosterActionMsg reports the outcome of a favorite/team mutation.
type RosterActionMsg struct {
	Text string
	Err  error
}

// toastExpiredMsg clears the toast with the given id if still shown.
type toastExpiredMsg struct {
	id int
}

// BatchFeed carries detail batch results from populator goroutines to the
// update loop. Results are dropped when the buffer is full; the next one
// triggers the same redraw.
type BatchFeed struct {
	ch chan catalog.BatchResult
}

// NewBatchFeed creates a BatchFeed with a small buffer.
func NewBatchFeed() *BatchFeed {
	return &BatchFeed{ch: make(chan catalog.BatchResult, 32)}
}

// Notify is passed to catalog.WithNotify.
func (f *BatchFeed) Notify(r catalog.BatchResult) {
	select {
	case f.ch <- r:
	default:
	}
}
