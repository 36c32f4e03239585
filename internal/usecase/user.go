package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/naka-gawa/git-insights/internal/domain"
	"github.com/naka-gawa/git-insights/internal/temporal"
)

var mergeSubjectPrefixes = []string{
	"Merge pull request #",
	"Merge branch '",
	"Merged in",
}

// UserInsights collects the tags whose history contains commits by user and
// the number of pull requests merged for them.
func (a *Aggregator) UserInsights(ctx context.Context, user string) (*domain.UserStats, error) {
	a.logger.Debugf("Usecase: Collecting insights for %q...", user)

	tagsOut, err := a.fetcher.FetchTags(ctx)
	if err != nil {
		return nil, &domain.ScopeError{Op: "list tags", Err: err}
	}

	stats := &domain.UserStats{Tags: []string{}}
	for _, tag := range splitLines(tagsOut) {
		out, err := a.fetcher.FetchTagAuthorCommits(ctx, tag, user)
		if err != nil {
			a.logger.WithError(err).WithField("tag", tag).Debug("skipping tag")
			continue
		}
		if len(splitLines(out)) > 0 {
			stats.Tags = append(stats.Tags, tag)
		}
	}
	sort.Strings(stats.Tags)

	subjects, err := a.fetcher.FetchMergeSubjects(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to count pull requests: %w", err)
	}
	stats.PullRequests = CountPullRequests(subjects)
	return stats, nil
}

// CountPullRequests counts merge subjects that look like merged pull requests.
func CountPullRequests(subjects string) int {
	n := 0
	for _, line := range splitLines(subjects) {
		for _, prefix := range mergeSubjectPrefixes {
			if strings.HasPrefix(line, prefix) {
				n++
				break
			}
		}
	}
	return n
}

// CommitTimestamps returns the commit times of the history, newest first.
func (a *Aggregator) CommitTimestamps(ctx context.Context) ([]int64, error) {
	text, err := a.fetcher.FetchCommitLog(ctx)
	if err != nil {
		return nil, &domain.LedgerError{Err: err}
	}
	return temporal.ParseTimestamps(text), nil
}
