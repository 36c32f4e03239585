package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/naka-gawa/git-insights/internal/domain"
)

// MatchMode selects which part of a blamed identity is compared to the target.
type MatchMode int

const (
	MatchName MatchMode = iota
	MatchEmail
)

// SortMode selects the ranking of ownership rows.
type SortMode string

const (
	SortLOC SortMode = "loc"
	SortPct SortMode = "pct"
)

// ParseSortMode validates a sort mode name.
func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(s) {
	case SortLOC, SortPct:
		return SortMode(s), nil
	}
	return "", fmt.Errorf("unknown sort mode %q (want loc or pct)", s)
}

// OwnershipQuery describes whose files to rank and how.
type OwnershipQuery struct {
	Identity string
	Match    MatchMode
	Top      int // <= 0 means no limit
	Sort     SortMode
}

type ownershipCount struct {
	user  int
	total int
}

// NormalizeEmail strips surrounding angle brackets and case-folds an email.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	email = strings.TrimSuffix(strings.TrimPrefix(email, "<"), ">")
	return strings.ToLower(strings.TrimSpace(email))
}

// RankOwnership computes, for every file in files, how many of its lines the
// queried identity owns, and returns the ranked rows where it owns any.
// It fails only when ctx is cancelled.
func (a *Aggregator) RankOwnership(ctx context.Context, files []string, q OwnershipQuery) ([]domain.FileOwnershipRow, error) {
	a.logger.Debugf("Usecase: Ranking ownership of %q across %d files...", q.Identity, len(files))

	match := func(l domain.BlameLine) bool { return l.Author == q.Identity }
	if q.Match == MatchEmail {
		target := NormalizeEmail(q.Identity)
		match = func(l domain.BlameLine) bool { return NormalizeEmail(l.Email) == target }
	}

	rows := []domain.FileOwnershipRow{}
	err := collectBlame(ctx, a, files,
		func(text string) ownershipCount {
			var c ownershipCount
			ParseBlame(text, func(l domain.BlameLine) {
				c.total++
				if match(l) {
					c.user++
				}
			})
			return c
		},
		func(path string, c ownershipCount) {
			if c.user == 0 {
				return
			}
			rows = append(rows, domain.FileOwnershipRow{
				Path:    path,
				UserLOC: c.user,
				FileLOC: c.total,
				Pct:     float64(c.user) / float64(c.total) * 100,
			})
		})
	if err != nil {
		return nil, err
	}

	SortOwnership(rows, q.Sort)
	if q.Top > 0 && len(rows) > q.Top {
		rows = rows[:q.Top]
	}
	return rows, nil
}

// SortOwnership orders rows deterministically:
// loc by (user LOC desc, pct desc, path asc), pct by (pct desc, user LOC desc, path asc).
func SortOwnership(rows []domain.FileOwnershipRow, mode SortMode) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if mode == SortPct {
			if a.Pct != b.Pct {
				return a.Pct > b.Pct
			}
			if a.UserLOC != b.UserLOC {
				return a.UserLOC > b.UserLOC
			}
			return a.Path < b.Path
		}
		if a.UserLOC != b.UserLOC {
			return a.UserLOC > b.UserLOC
		}
		if a.Pct != b.Pct {
			return a.Pct > b.Pct
		}
		return a.Path < b.Path
	})
}
