package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/naka-gawa/git-insights/internal/domain"
)

// LedgerStrategy selects how commit counts are obtained.
type LedgerStrategy string

const (
	// LedgerLog walks the full commit log, one identity per commit.
	LedgerLog LedgerStrategy = "log"
	// LedgerShortlog reads the per-author commit summary.
	LedgerShortlog LedgerStrategy = "shortlog"
)

// ParseLedgerStrategy validates a strategy name.
func ParseLedgerStrategy(s string) (LedgerStrategy, error) {
	switch LedgerStrategy(s) {
	case LedgerLog, LedgerShortlog:
		return LedgerStrategy(s), nil
	}
	return "", fmt.Errorf("unknown ledger strategy %q (want log or shortlog)", s)
}

// CommitCounts returns commits per author using the chosen strategy.
// Any failure to read history is reported as a *domain.LedgerError.
func (a *Aggregator) CommitCounts(ctx context.Context, mode domain.GroupMode, strategy LedgerStrategy) (map[domain.AuthorKey]int, error) {
	a.logger.Debugf("Usecase: Counting commits (%s)...", strategy)
	switch strategy {
	case LedgerShortlog:
		text, err := a.fetcher.FetchShortlog(ctx)
		if err != nil {
			return nil, &domain.LedgerError{Err: err}
		}
		return CountFromShortlog(text, mode), nil
	default:
		text, err := a.fetcher.FetchCommitLog(ctx)
		if err != nil {
			return nil, &domain.LedgerError{Err: err}
		}
		return CountFromLog(text, mode), nil
	}
}

// CountFromLog counts commit-log records ("<ts>\t<name>\t<email>") per author.
// Lines without a name are skipped.
func CountFromLog(text string, mode domain.GroupMode) map[domain.AuthorKey]int {
	counts := make(map[domain.AuthorKey]int)
	for _, line := range splitLines(text) {
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		name := strings.TrimSpace(fields[1])
		if name == "" {
			continue
		}
		var email string
		if len(fields) > 2 {
			email = strings.TrimSpace(fields[2])
		}
		counts[domain.KeyFor(mode, name, email)]++
	}
	return counts
}

// CountFromShortlog parses "<count>\t<Name> <email>" lines. The identity is
// split at its last " <". Entries mapping to the same key are summed.
func CountFromShortlog(text string, mode domain.GroupMode) map[domain.AuthorKey]int {
	counts := make(map[domain.AuthorKey]int)
	for _, line := range splitLines(text) {
		countStr, ident, ok := strings.Cut(strings.TrimSpace(line), "\t")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(countStr))
		if err != nil || n < 0 {
			continue
		}
		ident = strings.TrimSpace(ident)
		name, email := ident, ""
		if i := strings.LastIndex(ident, " <"); i >= 0 {
			name = strings.TrimSpace(ident[:i])
			email = strings.TrimSuffix(ident[i+2:], ">")
		}
		if name == "" {
			continue
		}
		counts[domain.KeyFor(mode, name, email)] += n
	}
	return counts
}

// MergeCommits writes commit counts into stats. Counts replace any existing
// value, so merging the same ledger twice is harmless. LOC and files are
// never touched.
func MergeCommits(stats domain.StatsMap, counts map[domain.AuthorKey]int) {
	for author, n := range counts {
		stats.Ensure(author).Commits = n
	}
}
