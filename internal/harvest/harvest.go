// Package harvest coordinates a run: it resolves the requested sources,
// fans the query out over a worker pool, merges results in source order,
// and deduplicates the merged stream.
package harvest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/leadforge/leadforge/internal/lead"
	"github.com/leadforge/leadforge/internal/source"
	"github.com/leadforge/leadforge/pkg/pool"
)

// Per-source floor. Asking each source for a handful more than target/n
// leaves headroom for dedup losses.
const minPerSource = 5

// Concurrent harvests cap their worker count; more parallel browser
// sessions than this mostly buys memory pressure.
const maxWorkers = 5

// Options tunes one orchestrator. Zero values mean sequential execution
// with no retries and no deadline.
type Options struct {
	// Concurrent runs sources in parallel instead of one at a time.
	Concurrent bool

	// MaxRetries re-runs a source after a transient failure.
	MaxRetries int

	// SourceTimeout bounds each fetch attempt.
	SourceTimeout time.Duration

	// Timeout bounds the whole harvest. When it expires, finished sources
	// keep their results and unfinished ones are reported as abandoned.
	Timeout time.Duration

	// RateLimitRPS spaces out fetch starts across all workers.
	RateLimitRPS float64

	// Logf defaults to the standard logger.
	Logf func(format string, args ...any)
}

// SourceReport describes how one source fared.
type SourceReport struct {
	ID        string
	Count     int
	Err       error
	Abandoned bool
}

// Result is one completed harvest.
type Result struct {
	// Records is the deduplicated merge, ordered by source registration
	// order and within a source by extraction order.
	Records []*lead.Record

	// RawCount is the merged total before deduplication.
	RawCount int

	Sources []SourceReport

	// Unknown lists requested source ids that are not registered. They are
	// skipped, not fatal, unless nothing valid remains.
	Unknown []string

	Elapsed time.Duration
}

// Orchestrator runs harvests against a fixed registry.
type Orchestrator struct {
	reg  *source.Registry
	opts Options
	logf func(format string, args ...any)
}

// New builds an orchestrator.
func New(reg *source.Registry, opts Options) *Orchestrator {
	logf := opts.Logf
	if logf == nil {
		logf = log.Printf
	}
	return &Orchestrator{reg: reg, opts: opts, logf: logf}
}

// Harvest runs the query to completion. A source failing, returning nothing,
// or being unknown never fails the run; the only hard errors are an invalid
// query and a run with no usable sources at all.
func (o *Orchestrator) Harvest(ctx context.Context, q lead.Query) (*Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	strategies, unknown, err := o.resolve(q)
	if err != nil {
		return nil, err
	}
	for _, id := range unknown {
		o.logf("skipping unknown source %q", id)
	}

	perSource := q.TargetCount / len(strategies)
	if perSource < minPerSource {
		perSource = minPerSource
	}

	if o.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.Timeout)
		defer cancel()
	}

	completed := make([]bool, len(strategies))
	outcomes, runErr := pool.RunWithCallback(ctx, strategies,
		func(ctx context.Context, s source.Strategy) ([]*lead.Record, error) {
			d := s.Descriptor()
			o.logf("fetching up to %d leads from %s", perSource, d.ID)
			return s.Fetch(ctx, q.Industry, q.Location, perSource)
		},
		func(idx int, out pool.Outcome[source.Strategy, []*lead.Record]) {
			completed[idx] = true
			id := strategies[idx].Descriptor().ID
			if out.Err != nil {
				o.logf("source %s failed: %v", id, out.Err)
				return
			}
			o.logf("source %s returned %d leads", id, len(out.Output))
		},
		o.poolOptions(len(strategies)),
	)
	if runErr != nil {
		o.logf("harvest deadline hit, keeping completed sources: %v", runErr)
	}

	res := &Result{Unknown: unknown}
	for _, id := range unknown {
		res.Sources = append(res.Sources, SourceReport{
			ID:  id,
			Err: fmt.Errorf("%w: %q", source.ErrUnknownSource, id),
		})
	}
	var merged []*lead.Record
	for i, out := range outcomes {
		id := strategies[i].Descriptor().ID
		rep := SourceReport{ID: id, Err: out.Err, Abandoned: runErr != nil && !completed[i]}
		if rep.Abandoned {
			rep.Err = fmt.Errorf("source %s: %w", id, context.DeadlineExceeded)
		}
		for _, rec := range out.Output {
			merged = append(merged, rec.WithReserved(id, q.Industry, q.Location))
		}
		rep.Count = len(out.Output)
		res.Sources = append(res.Sources, rep)
	}

	res.RawCount = len(merged)
	res.Records = lead.Dedupe(merged)
	res.Elapsed = time.Since(start)
	return res, nil
}

// resolve maps the query's source selection to strategies. Unknown ids are
// collected, not fatal; an empty result is.
func (o *Orchestrator) resolve(q lead.Query) ([]source.Strategy, []string, error) {
	ids := q.Sources
	if len(ids) == 0 {
		ids = o.reg.Defaults(q.Category)
	}
	if len(ids) == 0 {
		return nil, nil, fmt.Errorf("no sources registered for category %q", q.Category)
	}

	var strategies []source.Strategy
	var unknown []string
	for _, id := range ids {
		s, err := o.reg.Resolve(id)
		if err != nil {
			unknown = append(unknown, id)
			continue
		}
		strategies = append(strategies, s)
	}
	if len(strategies) == 0 {
		return nil, nil, fmt.Errorf("%w: none of the requested sources exist: %v", source.ErrUnknownSource, ids)
	}
	return strategies, unknown, nil
}

func (o *Orchestrator) poolOptions(n int) pool.Options {
	workers := 1
	if o.opts.Concurrent {
		workers = n
		if workers > maxWorkers {
			workers = maxWorkers
		}
	}
	return pool.Options{
		Workers:      workers,
		MaxRetries:   o.opts.MaxRetries,
		TaskTimeout:  o.opts.SourceTimeout,
		RateLimitRPS: o.opts.RateLimitRPS,
	}
}
