// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"encoding/json"
	"sort"
)

// GroupMode decides how an author's identity is turned into an AuthorKey.
// It is fixed for the lifetime of one invocation.
type GroupMode int

const (
	// ByName keys authors by their bare name.
	ByName GroupMode = iota
	// ByEmail keys authors by "Name <email>".
	ByEmail
)

// AuthorKey identifies one author within a StatsMap.
type AuthorKey string

// KeyFor builds the AuthorKey for an identity under the given mode.
func KeyFor(mode GroupMode, name, email string) AuthorKey {
	if mode == ByEmail {
		return AuthorKey(name + " <" + email + ">")
	}
	return AuthorKey(name)
}

// AuthorStats holds the ownership statistics of a single author.
// LOC counts surviving lines at HEAD, Files is the set of paths where the
// author owns at least one line.
type AuthorStats struct {
	LOC     int                 `json:"loc"`
	Commits int                 `json:"commits"`
	Files   map[string]struct{} `json:"-"`
}

// NewAuthorStats returns an empty AuthorStats with an initialized file set.
func NewAuthorStats() *AuthorStats {
	return &AuthorStats{Files: make(map[string]struct{})}
}

// FileList returns the author's files in lexical order.
func (s *AuthorStats) FileList() []string {
	files := make([]string, 0, len(s.Files))
	for f := range s.Files {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// MarshalJSON renders the file set as a sorted array.
func (s *AuthorStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		LOC     int      `json:"loc"`
		Commits int      `json:"commits"`
		Files   []string `json:"files"`
	}{s.LOC, s.Commits, s.FileList()})
}

// MarshalYAML mirrors MarshalJSON for the YAML exporter.
func (s *AuthorStats) MarshalYAML() (interface{}, error) {
	return struct {
		LOC     int      `yaml:"loc"`
		Commits int      `yaml:"commits"`
		Files   []string `yaml:"files"`
	}{s.LOC, s.Commits, s.FileList()}, nil
}

// StatsMap maps every author to its statistics.
type StatsMap map[AuthorKey]*AuthorStats

// Ensure returns the entry for key, creating it when missing.
func (m StatsMap) Ensure(key AuthorKey) *AuthorStats {
	s, ok := m[key]
	if !ok {
		s = NewAuthorStats()
		m[key] = s
	}
	return s
}

// Totals holds repository-wide sums over a StatsMap.
type Totals struct {
	LOC     int `json:"loc"`
	Commits int `json:"commits"`
	Files   int `json:"files"`
}

// Totals sums LOC and commits and counts distinct files across all authors.
func (m StatsMap) Totals() Totals {
	var t Totals
	files := make(map[string]struct{})
	for _, s := range m {
		t.LOC += s.LOC
		t.Commits += s.Commits
		for f := range s.Files {
			files[f] = struct{}{}
		}
	}
	t.Files = len(files)
	return t
}

// AuthorEntry pairs an author with its statistics.
type AuthorEntry struct {
	Author AuthorKey
	Stats  *AuthorStats
}

// Sorted returns the entries ordered by LOC desc, commits desc, then author.
func (m StatsMap) Sorted() []AuthorEntry {
	entries := make([]AuthorEntry, 0, len(m))
	for k, s := range m {
		entries = append(entries, AuthorEntry{Author: k, Stats: s})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].Stats, entries[j].Stats
		if a.LOC != b.LOC {
			return a.LOC > b.LOC
		}
		if a.Commits != b.Commits {
			return a.Commits > b.Commits
		}
		return entries[i].Author < entries[j].Author
	})
	return entries
}

// FileOwnershipRow is one file owned, at least partly, by a single identity.
// 0 < UserLOC <= FileLOC and Pct = UserLOC/FileLOC*100.
type FileOwnershipRow struct {
	Path    string  `json:"path"`
	UserLOC int     `json:"user_loc"`
	FileLOC int     `json:"file_loc"`
	Pct     float64 `json:"pct"`
}

// UserStats holds the release and pull request footprint of one user.
type UserStats struct {
	Tags         []string `json:"tags"`
	PullRequests int      `json:"pull_requests"`
}

// BlameLine is one surviving line attributed to its last author.
type BlameLine struct {
	Author string
	Email  string
}

// Commit is one record of the commit log.
type Commit struct {
	Timestamp int64
	Name      string
	Email     string
}
