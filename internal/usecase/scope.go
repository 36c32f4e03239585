package usecase

import (
	"context"
	"strings"

	"github.com/naka-gawa/git-insights/internal/domain"
)

// ResolveScope returns the files tracked at HEAD that are also classified as
// text, in tracked-file order. Failing to list tracked files is a ScopeError;
// a failed text probe only empties the scope.
func (a *Aggregator) ResolveScope(ctx context.Context) ([]string, error) {
	a.logger.Debug("Usecase: Resolving file scope...")
	tracked, err := a.fetcher.FetchTrackedFiles(ctx)
	if err != nil {
		return nil, &domain.ScopeError{Op: "list tracked files", Err: err}
	}

	files := []string{}
	probe, err := a.fetcher.FetchTextFiles(ctx)
	if err != nil {
		a.logger.WithError(err).Warn("text probe failed, treating repository as having no text files")
		return files, nil
	}

	text := make(map[string]struct{})
	for _, p := range splitLines(probe) {
		text[p] = struct{}{}
	}
	for _, p := range splitLines(tracked) {
		if _, ok := text[p]; ok {
			files = append(files, p)
			delete(text, p)
		}
	}
	a.logger.Debugf("Usecase: %d files in scope.", len(files))
	return files, nil
}

// splitLines returns the non-blank lines of s, without line terminators.
func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
