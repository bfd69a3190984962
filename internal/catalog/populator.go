package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/smileynet/pokedex/internal/api"
)

// Populator defaults: batches of 25 detail requests, each batch starting
// 200ms after the previous one, covering the current page plus lookahead.
const (
	DefaultBatchSize  = 25
	DefaultBatchDelay = 200 * time.Millisecond
	DefaultLookahead  = 150
)

// DetailSource fetches the detail of a single entry. *api.Client satisfies it.
type DetailSource interface {
	Pokemon(ctx context.Context, name string) (api.Pokemon, error)
}

// BatchResult reports the outcome of one detail batch. Err is non-nil when
// the batch was dropped; nothing from a dropped batch reaches the cache.
type BatchResult struct {
	Epoch  uint64
	Index  int
	Total  int
	Names  []string
	Loaded int
	Err    error
}

// Populator fills a DetailCache in delayed, concurrent batches.
type Populator struct {
	source    DetailSource
	cache     *DetailCache
	batchSize int
	delay     time.Duration
	logger    *slog.Logger
	notify    func(BatchResult)

	mu       sync.Mutex
	inflight map[string]struct{}
}

// PopulatorOption configures a Populator.
type PopulatorOption func(*Populator)

// WithBatchSize sets the number of detail requests per batch.
func WithBatchSize(n int) PopulatorOption {
	return func(p *Populator) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithBatchDelay sets the stagger between consecutive batch start times.
func WithBatchDelay(d time.Duration) PopulatorOption {
	return func(p *Populator) {
		p.delay = d
	}
}

// WithLogger sets the logger that records dropped batches.
func WithLogger(l *slog.Logger) PopulatorOption {
	return func(p *Populator) {
		p.logger = l
	}
}

// WithNotify registers fn to receive every BatchResult. fn is called from
// the batch goroutine.
func WithNotify(fn func(BatchResult)) PopulatorOption {
	return func(p *Populator) {
		p.notify = fn
	}
}

// NewPopulator creates a Populator writing into cache.
func NewPopulator(source DetailSource, cache *DetailCache, opts ...PopulatorOption) *Populator {
	p := &Populator{
		source:    source,
		cache:     cache,
		batchSize: DefaultBatchSize,
		delay:     DefaultBatchDelay,
		logger:    slog.New(slog.DiscardHandler),
		inflight:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Task tracks the batches started by one Populate call.
type Task struct {
	Epoch   uint64
	Batches int
	Names   int

	wg sync.WaitGroup
}

// Wait blocks until every batch of the task has finished or been dropped.
func (t *Task) Wait() {
	if t == nil {
		return
	}
	t.wg.Wait()
}

// Populate fetches details for the entries that are neither cached nor
// already being fetched. Batch i starts after i×delay; started batches run
// concurrently. A failed batch is dropped as a whole, without retry.
// Populate does not block.
func (p *Populator) Populate(ctx context.Context, epoch uint64, entries []Entry) *Task {
	names := p.claim(entries)
	batches := chunkNames(names, p.batchSize)
	t := &Task{Epoch: epoch, Batches: len(batches), Names: len(names)}

	for i, batch := range batches {
		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			res := p.runBatch(ctx, BatchResult{Epoch: epoch, Index: i, Total: len(batches), Names: batch},
				time.Duration(i)*p.delay)
			if p.notify != nil {
				p.notify(res)
			}
		}()
	}
	return t
}

// claim filters out cached and in-flight names and marks the rest in flight.
func (p *Populator) claim(entries []Entry) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var names []string
	for _, e := range entries {
		if _, busy := p.inflight[e.Name]; busy {
			continue
		}
		if p.cache.Has(e.Name) {
			continue
		}
		p.inflight[e.Name] = struct{}{}
		names = append(names, e.Name)
	}
	return names
}

func (p *Populator) release(names []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, n := range names {
		delete(p.inflight, n)
	}
}

func (p *Populator) runBatch(ctx context.Context, res BatchResult, wait time.Duration) BatchResult {
	defer p.release(res.Names)

	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			res.Err = ctx.Err()
			return res
		case <-timer.C:
		}
	}

	details := make([]api.Pokemon, len(res.Names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range res.Names {
		g.Go(func() error {
			d, err := p.source.Pokemon(gctx, name)
			if err != nil {
				return err
			}
			details[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.logger.Debug("detail batch dropped", "epoch", res.Epoch, "batch", res.Index, "size", len(res.Names), "err", err)
		res.Err = err
		return res
	}

	for _, d := range details {
		if p.cache.Add(detailFrom(d)) {
			res.Loaded++
		}
	}
	return res
}

func chunkNames(names []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(names); start += size {
		out = append(out, names[start:min(start+size, len(names))])
	}
	return out
}
