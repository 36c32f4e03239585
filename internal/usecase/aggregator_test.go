package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/git-insights/internal/domain"
	"github.com/naka-gawa/git-insights/internal/gateway"
	"github.com/naka-gawa/git-insights/internal/logging"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate a repository without running git or calling GitHub.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) text(args mock.Arguments) (string, error) {
	return args.String(0), args.Error(1)
}

func (m *mockFetcher) FetchTrackedFiles(ctx context.Context) (string, error) {
	return m.text(m.Called(ctx))
}

func (m *mockFetcher) FetchTextFiles(ctx context.Context) (string, error) {
	return m.text(m.Called(ctx))
}

func (m *mockFetcher) FetchBlame(ctx context.Context, path string) (string, error) {
	return m.text(m.Called(ctx, path))
}

func (m *mockFetcher) FetchCommitLog(ctx context.Context) (string, error) {
	return m.text(m.Called(ctx))
}

func (m *mockFetcher) FetchShortlog(ctx context.Context) (string, error) {
	return m.text(m.Called(ctx))
}

func (m *mockFetcher) FetchTags(ctx context.Context) (string, error) {
	return m.text(m.Called(ctx))
}

func (m *mockFetcher) FetchTagAuthorCommits(ctx context.Context, tag, author string) (string, error) {
	return m.text(m.Called(ctx, tag, author))
}

func (m *mockFetcher) FetchMergeSubjects(ctx context.Context, author string) (string, error) {
	return m.text(m.Called(ctx, author))
}

func (m *mockFetcher) FetchHeadRevision(ctx context.Context) (string, error) {
	return m.text(m.Called(ctx))
}

type ident struct{ name, email string }

var (
	alice = ident{"Alice", "alice@example.com"}
	bob   = ident{"Bob", "bob@example.com"}
	carol = ident{"Carol", "carol@example.com"}
)

// porcelain renders one line-porcelain record per author in lines, with the
// extra headers git emits between author-mail and the content line.
func porcelain(path string, lines ...ident) string {
	var b strings.Builder
	for i, who := range lines {
		fmt.Fprintf(&b, "%040d %d %d 1\n", i, i+1, i+1)
		fmt.Fprintf(&b, "author %s\nauthor-mail <%s>\nauthor-time 1700000000\nauthor-tz +0000\n", who.name, who.email)
		fmt.Fprintf(&b, "committer %s\ncommitter-mail <%s>\nsummary change\nfilename %s\n", who.name, who.email, path)
		fmt.Fprintf(&b, "\tline %d\n", i+1)
	}
	return b.String()
}

// fixture describes a repository served by a mockFetcher.
type fixture struct {
	files     []string
	blames    map[string]string
	failing   map[string]bool
	log       string
	shortlog  string
	ledgerErr error
}

func defaultFixture() fixture {
	return fixture{
		files: []string{"main.go", "util.go", "README.md"},
		blames: map[string]string{
			"main.go":   porcelain("main.go", alice, alice, bob),
			"util.go":   porcelain("util.go", bob, bob, bob, alice),
			"README.md": porcelain("README.md", carol),
		},
		log: "1700000300\tAlice\talice@example.com\n" +
			"1700000200\tBob\tbob@example.com\n" +
			"1700000100\tAlice\talice@example.com\n",
		shortlog: "     2\tAlice <alice@example.com>\n     1\tBob <bob@example.com>\n",
	}
}

func (f fixture) mock() *mockFetcher {
	m := new(mockFetcher)
	listing := strings.Join(f.files, "\n")
	m.On("FetchTrackedFiles", mock.Anything).Return(listing, nil).Maybe()
	m.On("FetchTextFiles", mock.Anything).Return(listing, nil).Maybe()
	for _, path := range f.files {
		if f.failing[path] {
			m.On("FetchBlame", mock.Anything, path).Return("", errors.New("blame failed")).Maybe()
			continue
		}
		m.On("FetchBlame", mock.Anything, path).Return(f.blames[path], nil).Maybe()
	}
	m.On("FetchCommitLog", mock.Anything).Return(f.log, f.ledgerErr).Maybe()
	m.On("FetchShortlog", mock.Anything).Return(f.shortlog, f.ledgerErr).Maybe()
	return m
}

func files(paths ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return set
}

// TestAggregator_Aggregate uses a table-driven approach to test the aggregator.
func TestAggregator_Aggregate(t *testing.T) {
	testCases := []struct {
		name           string
		fixture        func() fixture
		mode           domain.GroupMode
		strategy       LedgerStrategy
		expectedResult domain.StatsMap
		expectedErr    interface{}
	}{
		{
			name:     "happy path - LOC, files and commits per author",
			fixture:  defaultFixture,
			strategy: LedgerLog,
			expectedResult: domain.StatsMap{
				"Alice": {LOC: 3, Commits: 2, Files: files("main.go", "util.go")},
				"Bob":   {LOC: 4, Commits: 1, Files: files("main.go", "util.go")},
				"Carol": {LOC: 1, Commits: 0, Files: files("README.md")},
			},
		},
		{
			name:     "shortlog ledger gives the same counts",
			fixture:  defaultFixture,
			strategy: LedgerShortlog,
			expectedResult: domain.StatsMap{
				"Alice": {LOC: 3, Commits: 2, Files: files("main.go", "util.go")},
				"Bob":   {LOC: 4, Commits: 1, Files: files("main.go", "util.go")},
				"Carol": {LOC: 1, Commits: 0, Files: files("README.md")},
			},
		},
		{
			name:     "by-email grouping",
			fixture:  defaultFixture,
			mode:     domain.ByEmail,
			strategy: LedgerLog,
			expectedResult: domain.StatsMap{
				"Alice <alice@example.com>": {LOC: 3, Commits: 2, Files: files("main.go", "util.go")},
				"Bob <bob@example.com>":     {LOC: 4, Commits: 1, Files: files("main.go", "util.go")},
				"Carol <carol@example.com>": {LOC: 1, Commits: 0, Files: files("README.md")},
			},
		},
		{
			name: "partial failure - failing file is skipped",
			fixture: func() fixture {
				f := defaultFixture()
				f.failing = map[string]bool{"util.go": true}
				return f
			},
			strategy: LedgerLog,
			expectedResult: domain.StatsMap{
				"Alice": {LOC: 2, Commits: 2, Files: files("main.go")},
				"Bob":   {LOC: 1, Commits: 1, Files: files("main.go")},
				"Carol": {LOC: 1, Commits: 0, Files: files("README.md")},
			},
		},
		{
			name: "empty repository",
			fixture: func() fixture {
				return fixture{}
			},
			strategy:       LedgerLog,
			expectedResult: domain.StatsMap{},
		},
		{
			name: "ledger failure keeps LOC and files",
			fixture: func() fixture {
				f := defaultFixture()
				f.ledgerErr = errors.New("no history")
				return f
			},
			strategy: LedgerLog,
			expectedResult: domain.StatsMap{
				"Alice": {LOC: 3, Files: files("main.go", "util.go")},
				"Bob":   {LOC: 4, Files: files("main.go", "util.go")},
				"Carol": {LOC: 1, Files: files("README.md")},
			},
			expectedErr: new(*domain.LedgerError),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			fetcher := tc.fixture().mock()
			aggregator := NewAggregator(fetcher, logging.Discard())

			// --- Act ---
			results, err := aggregator.Aggregate(context.Background(), tc.mode, tc.strategy)

			// --- Assert ---
			if tc.expectedErr != nil {
				assert.ErrorAs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.expectedResult, results)
			fetcher.AssertExpectations(t)
		})
	}
}

func TestAggregator_Aggregate_ScopeError(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("FetchTrackedFiles", mock.Anything).Return("", errors.New("not a repository"))

	results, err := NewAggregator(fetcher, logging.Discard()).Aggregate(context.Background(), domain.ByName, LedgerLog)

	var scopeErr *domain.ScopeError
	require.ErrorAs(t, err, &scopeErr)
	assert.Equal(t, "list tracked files", scopeErr.Op)
	assert.Nil(t, results)
	fetcher.AssertNotCalled(t, "FetchBlame", mock.Anything, mock.Anything)
}

func TestAggregator_AggregateLOC_WorkerCountDoesNotMatter(t *testing.T) {
	f := fixture{blames: map[string]string{}}
	people := []ident{alice, bob, carol}
	for i := 0; i < 40; i++ {
		path := fmt.Sprintf("pkg/file%02d.go", i)
		var lines []ident
		for j := 0; j <= i%7; j++ {
			lines = append(lines, people[(i+j)%len(people)])
		}
		f.files = append(f.files, path)
		f.blames[path] = porcelain(path, lines...)
	}

	var baseline domain.StatsMap
	for _, workers := range []int{1, 2, 3, 8, 64} {
		stats, err := NewAggregator(f.mock(), logging.Discard(), WithWorkers(workers)).
			AggregateLOC(context.Background(), f.files, domain.ByName)
		require.NoError(t, err)
		if baseline == nil {
			baseline = stats
			continue
		}
		assert.Equal(t, baseline, stats, "workers=%d", workers)
	}

	// Every attributed line lands with exactly one author.
	expected := 0
	for _, path := range f.files {
		expected += strings.Count(f.blames[path], "\n\t")
	}
	assert.Equal(t, expected, baseline.Totals().LOC)
	assert.Equal(t, len(f.files), baseline.Totals().Files)
}

// scriptedBlame serves FetchBlame from a function and everything else from
// the embedded mock.
type scriptedBlame struct {
	*mockFetcher
	blame func(ctx context.Context, path string) (string, error)
}

func (s scriptedBlame) FetchBlame(ctx context.Context, path string) (string, error) {
	return s.blame(ctx, path)
}

func TestAggregator_AggregateLOC_CompletionOrderDoesNotMatter(t *testing.T) {
	f := defaultFixture()
	baseline, err := NewAggregator(f.mock(), logging.Discard(), WithWorkers(1)).
		AggregateLOC(context.Background(), f.files, domain.ByName)
	require.NoError(t, err)

	// Files earlier in scope order finish later, so the collector sees them reversed.
	delay := make(map[string]time.Duration, len(f.files))
	for i, path := range f.files {
		delay[path] = time.Duration(len(f.files)-i) * 20 * time.Millisecond
	}
	var (
		mu    sync.Mutex
		order []string
	)
	fetcher := scriptedBlame{
		mockFetcher: f.mock(),
		blame: func(ctx context.Context, path string) (string, error) {
			time.Sleep(delay[path])
			mu.Lock()
			order = append(order, path)
			mu.Unlock()
			return f.blames[path], nil
		},
	}

	stats, err := NewAggregator(fetcher, logging.Discard(), WithWorkers(len(f.files))).
		AggregateLOC(context.Background(), f.files, domain.ByName)
	require.NoError(t, err)
	assert.Equal(t, baseline, stats)
	assert.Equal(t, []string{"README.md", "util.go", "main.go"}, order)
}

func TestAggregator_Cancelled(t *testing.T) {
	newFetcher := func(cancel context.CancelFunc) gateway.Fetcher {
		f := defaultFixture()
		var calls int
		return scriptedBlame{
			mockFetcher: f.mock(),
			blame: func(ctx context.Context, path string) (string, error) {
				calls++
				if calls == 1 {
					cancel()
					return f.blames[path], nil
				}
				return "", ctx.Err()
			},
		}
	}

	t.Run("Aggregate", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		stats, err := NewAggregator(newFetcher(cancel), logging.Discard(), WithWorkers(1)).
			Aggregate(ctx, domain.ByName, LedgerLog)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, stats)
	})

	t.Run("AggregateLOC", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		stats, err := NewAggregator(newFetcher(cancel), logging.Discard(), WithWorkers(1)).
			AggregateLOC(ctx, defaultFixture().files, domain.ByName)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, stats)
	})

	t.Run("RankOwnership", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		rows, err := NewAggregator(newFetcher(cancel), logging.Discard(), WithWorkers(1)).
			RankOwnership(ctx, defaultFixture().files, OwnershipQuery{Identity: "Alice", Sort: SortLOC})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, rows)
	})

	t.Run("already cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		fetcher := defaultFixture().mock()
		_, err := NewAggregator(fetcher, logging.Discard()).
			AggregateLOC(ctx, defaultFixture().files, domain.ByName)
		assert.ErrorIs(t, err, context.Canceled)
		fetcher.AssertNotCalled(t, "FetchBlame", mock.Anything, mock.Anything)
	})
}

func TestAggregator_Progress(t *testing.T) {
	f := defaultFixture()
	f.failing = map[string]bool{"README.md": true}

	var (
		mu    sync.Mutex
		calls [][2]int
	)
	progress := func(processed, total int) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, [2]int{processed, total})
	}

	_, err := NewAggregator(f.mock(), logging.Discard(), WithWorkers(2), WithProgress(progress)).
		AggregateLOC(context.Background(), f.files, domain.ByName)
	require.NoError(t, err)

	require.Len(t, calls, len(f.files))
	for i, c := range calls {
		assert.Equal(t, [2]int{i + 1, len(f.files)}, c)
	}
}

func TestWithWorkers_IgnoresNonPositive(t *testing.T) {
	a := NewAggregator(new(mockFetcher), logging.Discard(), WithWorkers(3))
	assert.Equal(t, 3, a.workers)

	b := NewAggregator(new(mockFetcher), logging.Discard(), WithWorkers(0))
	assert.Positive(t, b.workers)
}
