package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func set(paths ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		s[p] = struct{}{}
	}
	return s
}

func TestKeyFor(t *testing.T) {
	assert.Equal(t, AuthorKey("Alice"), KeyFor(ByName, "Alice", "alice@example.com"))
	assert.Equal(t, AuthorKey("Alice <alice@example.com>"), KeyFor(ByEmail, "Alice", "alice@example.com"))
}

func TestStatsMap_TotalsAndSorted(t *testing.T) {
	stats := StatsMap{
		"Carol": {LOC: 10, Commits: 1, Files: set("c.go")},
		"Alice": {LOC: 30, Commits: 2, Files: set("a.go", "shared.go")},
		"Bob":   {LOC: 10, Commits: 5, Files: set("shared.go")},
		"Dave":  {LOC: 10, Commits: 1, Files: set()},
	}

	assert.Equal(t, Totals{LOC: 60, Commits: 9, Files: 3}, stats.Totals())

	var order []AuthorKey
	for _, e := range stats.Sorted() {
		order = append(order, e.Author)
	}
	assert.Equal(t, []AuthorKey{"Alice", "Bob", "Carol", "Dave"}, order)

	assert.Equal(t, Totals{}, StatsMap{}.Totals())
	assert.Empty(t, StatsMap{}.Sorted())
}

func TestStatsMap_Ensure(t *testing.T) {
	stats := StatsMap{}
	s := stats.Ensure("Alice")
	s.LOC = 3
	assert.Same(t, s, stats.Ensure("Alice"))
	assert.NotNil(t, s.Files)
}

func TestAuthorStats_MarshalJSON(t *testing.T) {
	stats := StatsMap{"Alice": {LOC: 3, Commits: 1, Files: set("z.go", "a.go")}}

	out, err := json.Marshal(stats)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Alice":{"loc":3,"commits":1,"files":["a.go","z.go"]}}`, string(out))
}

func TestErrors_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	for _, err := range []error{
		&ScopeError{Op: "list tracked files", Err: cause},
		&AttributionError{Path: "a.go", Err: cause},
		&LedgerError{Err: cause},
		&ClockError{Err: cause},
	} {
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "cause")
	}
}
