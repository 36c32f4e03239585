// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/git-insights/internal/domain"
	"github.com/naka-gawa/git-insights/internal/gateway"
)

// ProgressFunc observes how many files have been processed out of total.
type ProgressFunc func(processed, total int)

// Aggregator is the use case for aggregating repository ownership stats.
// It orchestrates the fetching and combining of data.
type Aggregator struct {
	fetcher  gateway.Fetcher
	logger   logrus.FieldLogger
	workers  int
	progress ProgressFunc
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithWorkers bounds the number of files attributed concurrently.
// Non-positive values keep the default of GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithProgress installs a progress observer.
func WithProgress(fn ProgressFunc) Option {
	return func(a *Aggregator) { a.progress = fn }
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, logger logrus.FieldLogger, opts ...Option) *Aggregator {
	a := &Aggregator{
		fetcher: fetcher,
		logger:  logger,
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate performs the main business logic: it resolves the file scope,
// then computes LOC/files and commit counts concurrently and merges them.
// On a *domain.LedgerError the returned map is still valid, without commit counts.
// A cancelled ctx is terminal: no partial map is returned.
func (a *Aggregator) Aggregate(ctx context.Context, mode domain.GroupMode, strategy LedgerStrategy) (domain.StatsMap, error) {
	a.logger.Debug("Usecase: Starting data aggregation...")

	files, err := a.ResolveScope(ctx)
	if err != nil {
		return nil, err
	}

	var (
		stats     domain.StatsMap
		commits   map[domain.AuthorKey]int
		ledgerErr error
	)
	var eg errgroup.Group
	eg.Go(func() error {
		var err error
		stats, err = a.AggregateLOC(ctx, files, mode)
		return err
	})
	eg.Go(func() error {
		commits, ledgerErr = a.CommitCounts(ctx, mode, strategy)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if ledgerErr != nil {
		return stats, ledgerErr
	}
	MergeCommits(stats, commits)

	a.logger.Debug("Usecase: Aggregation complete.")
	return stats, nil
}

// AggregateLOC attributes every surviving line of files to its author and
// merges the per-file counts into one StatsMap. Files whose blame fails are
// skipped. The result does not depend on the order in which files finish.
// It fails only when ctx is cancelled.
func (a *Aggregator) AggregateLOC(ctx context.Context, files []string, mode domain.GroupMode) (domain.StatsMap, error) {
	stats := make(domain.StatsMap)
	err := collectBlame(ctx, a, files,
		func(text string) map[domain.AuthorKey]int { return CountByAuthor(text, mode) },
		func(path string, counts map[domain.AuthorKey]int) {
			for author, loc := range counts {
				s := stats.Ensure(author)
				s.LOC += loc
				s.Files[path] = struct{}{}
			}
		})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

type blameResult[T any] struct {
	path  string
	value T
	ok    bool
}

// collectBlame runs one blame task per file on a pool of a.workers
// goroutines. Each task parses its file without holding any shared state and
// sends the result to a single collector, which calls fold sequentially.
// collectBlame returns only after every fold has run. A blame failure skips
// its file, unless ctx is done, in which case the whole run fails with ctx.Err().
func collectBlame[T any](ctx context.Context, a *Aggregator, files []string, parse func(string) T, fold func(string, T)) error {
	total := len(files)
	results := make(chan blameResult[T])
	done := make(chan struct{})

	go func() {
		defer close(done)
		processed := 0
		for r := range results {
			processed++
			if r.ok {
				fold(r.path, r.value)
			}
			if a.progress != nil {
				a.progress(processed, total)
			}
		}
	}()

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(a.workers)
	for _, path := range files {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			text, err := a.fetcher.FetchBlame(egCtx, path)
			if err != nil {
				if ctxErr := egCtx.Err(); ctxErr != nil {
					return ctxErr
				}
				a.logger.WithError(&domain.AttributionError{Path: path, Err: err}).Debug("skipping file")
				results <- blameResult[T]{path: path}
				return nil
			}
			results <- blameResult[T]{path: path, value: parse(text), ok: true}
			return nil
		})
	}
	err := eg.Wait()
	close(results)
	<-done
	if err != nil {
		return err
	}
	return ctx.Err()
}
