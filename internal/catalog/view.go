package catalog

import (
	"context"
	"errors"
)

// View is the catalog view controller: the active entry list for the
// current filter, the search-filtered subset, the current page and the
// detail cache backing the cards.
//
// View is not safe for concurrent use; confine it to one goroutine (the
// Bubble Tea update loop or a CLI command). Only the DetailCache is
// written from other goroutines.
type View struct {
	loader    *Loader
	populator *Populator
	cache     *DetailCache
	pageSize  int
	lookahead int

	filter   Filter
	entries  []Entry
	filtered []Entry
	epoch    uint64
	loaded   bool
	err      string
}

// ViewOption configures a View.
type ViewOption func(*View)

// WithPageSize sets the number of entries per page.
func WithPageSize(n int) ViewOption {
	return func(v *View) {
		if n > 0 {
			v.pageSize = n
		}
	}
}

// WithLookahead sets how many entries from the page start are prefetched.
func WithLookahead(n int) ViewOption {
	return func(v *View) {
		if n > 0 {
			v.lookahead = n
		}
	}
}

// NewView creates a View over the given loader, populator and cache.
func NewView(loader *Loader, populator *Populator, cache *DetailCache, opts ...ViewOption) *View {
	v := &View{
		loader:    loader,
		populator: populator,
		cache:     cache,
		pageSize:  DefaultPageSize,
		lookahead: DefaultLookahead,
		filter:    Filter{Page: 1},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Loader returns the view's loader so callers can fetch off the update loop.
func (v *View) Loader() *Loader {
	return v.loader
}

// Request records a new generation/type selection and returns the filter
// to fetch together with its epoch. Results for older epochs are ignored
// by Apply.
func (v *View) Request(generation, typeName string) (Filter, uint64) {
	v.epoch++
	v.filter.Generation = generation
	v.filter.Type = typeName
	return v.filter, v.epoch
}

// Apply installs the result of the fetch started by Request. It reports
// false and changes nothing when epoch is stale. On error the previous
// list is kept and the error message is exposed through Err. On success
// the page resets to 1 and details for the first lookahead entries are
// requested.
func (v *View) Apply(ctx context.Context, epoch uint64, entries []Entry, err error) (*Task, bool) {
	if epoch != v.epoch {
		return nil, false
	}
	if err != nil {
		v.err = userMessage(err)
		v.clamp()
		return nil, true
	}
	v.err = ""
	v.loaded = true
	v.entries = entries
	v.filtered = Search(entries, v.filter.Search)
	v.filter.Page = 1
	return v.populate(ctx), true
}

// Load fetches and applies a generation/type selection synchronously.
func (v *View) Load(ctx context.Context, generation, typeName string) (*Task, error) {
	f, epoch := v.Request(generation, typeName)
	entries, err := v.loader.Load(ctx, f)
	task, _ := v.Apply(ctx, epoch, entries, err)
	return task, err
}

// SetSearch filters the active list by name without refetching. The page
// is clamped to the new page count and the visible window is populated.
func (v *View) SetSearch(ctx context.Context, term string) *Task {
	v.filter.Search = term
	v.filtered = Search(v.entries, term)
	v.clamp()
	return v.populate(ctx)
}

// SetPageSize changes the page size and clamps the current page.
func (v *View) SetPageSize(ctx context.Context, n int) *Task {
	if n > 0 {
		v.pageSize = n
	}
	v.clamp()
	return v.populate(ctx)
}

// GoToPage moves to page and requests details for the page plus lookahead.
// Pages outside [1, TotalPages] are ignored and reported as false.
func (v *View) GoToPage(ctx context.Context, page int) (*Task, bool) {
	if page < 1 || page > v.TotalPages() {
		return nil, false
	}
	v.filter.Page = page
	return v.populate(ctx), true
}

// NextPage advances one page when possible.
func (v *View) NextPage(ctx context.Context) (*Task, bool) {
	return v.GoToPage(ctx, v.filter.Page+1)
}

// PrevPage goes back one page when possible.
func (v *View) PrevPage(ctx context.Context) (*Task, bool) {
	return v.GoToPage(ctx, v.filter.Page-1)
}

// FirstPage jumps to page 1.
func (v *View) FirstPage(ctx context.Context) (*Task, bool) {
	return v.GoToPage(ctx, 1)
}

// LastPage jumps to the last page.
func (v *View) LastPage(ctx context.Context) (*Task, bool) {
	return v.GoToPage(ctx, v.TotalPages())
}

// Page returns the entries of the current page.
func (v *View) Page() []Entry {
	return Paginate(v.filtered, v.filter.Page, v.pageSize)
}

// PageNumber returns the current 1-based page.
func (v *View) PageNumber() int {
	return v.filter.Page
}

// PageSize returns the number of entries per page.
func (v *View) PageSize() int {
	return v.pageSize
}

// TotalPages returns the page count of the search-filtered list.
func (v *View) TotalPages() int {
	return TotalPages(len(v.filtered), v.pageSize)
}

// Count returns the number of entries after search filtering.
func (v *View) Count() int {
	return len(v.filtered)
}

// Entries returns the active list before search filtering.
func (v *View) Entries() []Entry {
	return v.entries
}

// Filtered returns the active list after search filtering.
func (v *View) Filtered() []Entry {
	return v.filtered
}

// Filter returns the current filter state.
func (v *View) Filter() Filter {
	return v.filter
}

// Loaded reports whether any list has been applied yet.
func (v *View) Loaded() bool {
	return v.loaded
}

// Err returns the user-visible message of the last failed fetch, or "".
func (v *View) Err() string {
	return v.err
}

// Epoch returns the epoch of the latest Request.
func (v *View) Epoch() uint64 {
	return v.epoch
}

// IsCurrent reports whether epoch belongs to the latest Request.
func (v *View) IsCurrent(epoch uint64) bool {
	return epoch == v.epoch
}

// Detail returns the cached detail for an entry, or the unknown
// placeholder while it is still loading.
func (v *View) Detail(e Entry) Detail {
	return v.cache.Lookup(e.Name)
}

// Prefetch requests details for entries outside the active list, such as
// a user's favorites, tagged with the current epoch.
func (v *View) Prefetch(ctx context.Context, entries []Entry) *Task {
	if v.populator == nil {
		return nil
	}
	return v.populator.Populate(ctx, v.epoch, entries)
}

// Cache returns the detail cache.
func (v *View) Cache() *DetailCache {
	return v.cache
}

func (v *View) clamp() {
	v.filter.Page = ClampPage(v.filter.Page, v.TotalPages())
}

// populate requests details for the current page and the lookahead window.
func (v *View) populate(ctx context.Context) *Task {
	if v.populator == nil {
		return nil
	}
	start := (v.filter.Page - 1) * v.pageSize
	return v.populator.Populate(ctx, v.epoch, Window(v.filtered, start, v.lookahead))
}

func userMessage(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Msg
	}
	return err.Error()
}
