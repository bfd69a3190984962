package catalog

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/smileynet/pokedex/internal/api"
)

// Catalog size constants of the upstream provider.
const (
	DefaultFullSize       = 1302
	DefaultListingCeiling = 1000
)

// User-visible load failure messages.
const (
	MsgLoadFailed       = "failed to load catalog, try reloading"
	MsgGenerationFailed = "failed to filter by generation"
	MsgTypeFailed       = "failed to filter by type"
)

// Source provides catalog listings. *api.Client satisfies it.
type Source interface {
	ListPokemon(ctx context.Context, limit, offset int) (api.Page, error)
	PokemonByType(ctx context.Context, name string) (api.Page, error)
}

// Filter selects the active entry list. Generation and Type may both be
// set, in which case the list is their intersection.
type Filter struct {
	Generation string
	Type       string
	Search     string
	Page       int
}

// LoadError carries the single message shown to the user for a failed
// listing fetch, along with the underlying cause.
type LoadError struct {
	Msg string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("catalog: %s: %v", e.Msg, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loader fetches entry lists for filters. The unfiltered catalog is
// fetched once and memoized.
type Loader struct {
	source   Source
	fullSize int
	ceiling  int

	mu  sync.Mutex
	all []Entry
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFullSize sets the size of the complete catalog.
func WithFullSize(n int) LoaderOption {
	return func(l *Loader) {
		l.fullSize = n
	}
}

// WithListingCeiling sets the largest limit the listing endpoint accepts.
func WithListingCeiling(n int) LoaderOption {
	return func(l *Loader) {
		l.ceiling = n
	}
}

// NewLoader creates a Loader reading from source.
func NewLoader(source Source, opts ...LoaderOption) *Loader {
	l := &Loader{
		source:   source,
		fullSize: DefaultFullSize,
		ceiling:  DefaultListingCeiling,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the entry list selected by f's generation and type.
// f.Search and f.Page are ignored; searching never refetches.
func (l *Loader) Load(ctx context.Context, f Filter) ([]Entry, error) {
	switch {
	case f.Generation == "" && f.Type == "":
		return l.All(ctx)
	case f.Type == "":
		return l.byGeneration(ctx, f.Generation)
	case f.Generation == "":
		return l.byType(ctx, f.Type)
	}

	var byGen, byType []Entry
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		byGen, err = l.byGeneration(gctx, f.Generation)
		return err
	})
	g.Go(func() error {
		var err error
		byType, err = l.byType(gctx, f.Type)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Intersect(byType, byGen), nil
}

// All returns the complete catalog, fetching it on first use. When the
// listing ceiling is below the catalog size the fetch is split into
// concurrent requests concatenated in offset order.
func (l *Loader) All(ctx context.Context) ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.all != nil {
		return l.all, nil
	}

	chunk := l.ceiling
	if chunk <= 0 || chunk > l.fullSize {
		chunk = l.fullSize
	}
	var ranges [][2]int
	for offset := 0; offset < l.fullSize; offset += chunk {
		ranges = append(ranges, [2]int{offset, min(chunk, l.fullSize-offset)})
	}

	parts := make([][]Entry, len(ranges))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range ranges {
		g.Go(func() error {
			page, err := l.source.ListPokemon(gctx, r[1], r[0])
			if err != nil {
				return err
			}
			parts[i] = entriesFrom(page.Results)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &LoadError{Msg: MsgLoadFailed, Err: err}
	}

	all := make([]Entry, 0, l.fullSize)
	for _, p := range parts {
		all = append(all, p...)
	}
	l.all = all
	return all, nil
}

func (l *Loader) byGeneration(ctx context.Context, key string) ([]Entry, error) {
	gen, err := LookupGeneration(key)
	if err != nil {
		return nil, err
	}
	page, err := l.source.ListPokemon(ctx, gen.Limit, gen.Offset)
	if err != nil {
		return nil, &LoadError{Msg: MsgGenerationFailed, Err: err}
	}
	return entriesFrom(page.Results), nil
}

func (l *Loader) byType(ctx context.Context, name string) ([]Entry, error) {
	page, err := l.source.PokemonByType(ctx, name)
	if err != nil {
		return nil, &LoadError{Msg: MsgTypeFailed, Err: err}
	}
	return entriesFrom(page.Results), nil
}
