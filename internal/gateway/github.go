package gateway

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/git-insights/internal/domain"
)

// defaultProbeLimit bounds concurrent isBinary queries.
const defaultProbeLimit = 8

// GitHubGateway reads the history of a remote repository through the GitHub
// REST and GraphQL APIs and renders it in the Fetcher text formats.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	owner         string
	name          string
	probeLimit    int
	logger        logrus.FieldLogger

	mu     sync.Mutex
	head   string
	logins map[string]string
}

// blobQuery asks whether one file at a revision is binary.
type blobQuery struct {
	Repository struct {
		Object struct {
			Blob struct {
				IsBinary bool
			} `graphql:"... on Blob"`
		} `graphql:"object(expression: $expression)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// blameQuery fetches the blame ranges of one file at a revision.
type blameQuery struct {
	Repository struct {
		Object struct {
			Commit struct {
				Blame struct {
					Ranges []struct {
						StartingLine int
						EndingLine   int
						Commit       struct {
							Author struct {
								Name  string
								Email string
							}
						}
					}
				} `graphql:"blame(path: $path)"`
			} `graphql:"... on Commit"`
		} `graphql:"object(expression: $expression)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// mergedPRQuery pages through the merged pull requests of one author.
type mergedPRQuery struct {
	Search struct {
		PageInfo struct {
			HasNextPage bool
			EndCursor   githubv4.String
		}
		Edges []struct {
			Node struct {
				Typename    string `graphql:"__typename"`
				PullRequest struct {
					Number int
				} `graphql:"... on PullRequest"`
			}
		}
	} `graphql:"search(query: $query, type: ISSUE, first: 100, after: $cursor)"`
}

// NewGitHubGateway is a constructor that creates a gateway for repo, given as "owner/name".
func NewGitHubGateway(token, repo string, logger logrus.FieldLogger) (*GitHubGateway, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("invalid repository %q, expected owner/name", repo)
	}
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		owner:         owner,
		name:          name,
		probeLimit:    defaultProbeLimit,
		logger:        logger,
	}, nil
}

// FetchHeadRevision resolves HEAD of the default branch once and reuses it,
// so every later query reads the same snapshot.
func (g *GitHubGateway) FetchHeadRevision(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.head != "" {
		return g.head, nil
	}
	sha, _, err := g.restClient.Repositories.GetCommitSHA1(ctx, g.owner, g.name, "HEAD", "")
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD with REST API: %w", err)
	}
	g.head = sha
	return sha, nil
}

func (g *GitHubGateway) trackedFiles(ctx context.Context) ([]string, error) {
	head, err := g.FetchHeadRevision(ctx)
	if err != nil {
		return nil, err
	}
	tree, _, err := g.restClient.Git.GetTree(ctx, g.owner, g.name, head, true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tree with REST API: %w", err)
	}
	if tree.GetTruncated() {
		g.logger.Warnf("tree of %s/%s is truncated, some files are not analyzed", g.owner, g.name)
	}
	var paths []string
	for _, entry := range tree.Entries {
		if entry.GetType() == "blob" {
			paths = append(paths, entry.GetPath())
		}
	}
	return paths, nil
}

func (g *GitHubGateway) FetchTrackedFiles(ctx context.Context) (string, error) {
	g.logger.Debug("Fetching tracked files using REST API...")
	paths, err := g.trackedFiles(ctx)
	if err != nil {
		return "", err
	}
	return joinLines(paths), nil
}

// FetchTextFiles probes every tracked blob for isBinary, with bounded concurrency.
func (g *GitHubGateway) FetchTextFiles(ctx context.Context) (string, error) {
	g.logger.Debug("Probing files for binary content using GraphQL API...")
	paths, err := g.trackedFiles(ctx)
	if err != nil {
		return "", err
	}
	head, err := g.FetchHeadRevision(ctx)
	if err != nil {
		return "", err
	}

	text := make([]bool, len(paths))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.probeLimit)
	for i, path := range paths {
		eg.Go(func() error {
			var q blobQuery
			variables := map[string]interface{}{
				"owner":      githubv4.String(g.owner),
				"name":       githubv4.String(g.name),
				"expression": githubv4.String(head + ":" + path),
			}
			if err := g.graphqlClient.Query(egCtx, &q, variables); err != nil {
				return fmt.Errorf("failed to execute GraphQL query for %s: %w", path, err)
			}
			text[i] = !q.Repository.Object.Blob.IsBinary
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return "", err
	}

	var textPaths []string
	for i, path := range paths {
		if text[i] {
			textPaths = append(textPaths, path)
		}
	}
	return joinLines(textPaths), nil
}

// FetchBlame renders the GraphQL blame ranges of path as line-porcelain.
func (g *GitHubGateway) FetchBlame(ctx context.Context, path string) (string, error) {
	head, err := g.FetchHeadRevision(ctx)
	if err != nil {
		return "", err
	}
	var q blameQuery
	variables := map[string]interface{}{
		"owner":      githubv4.String(g.owner),
		"name":       githubv4.String(g.name),
		"expression": githubv4.String(head),
		"path":       githubv4.String(path),
	}
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return "", fmt.Errorf("failed to execute GraphQL query for blame: %w", err)
	}

	var b strings.Builder
	for _, r := range q.Repository.Object.Commit.Blame.Ranges {
		author := r.Commit.Author
		for line := r.StartingLine; line <= r.EndingLine; line++ {
			fmt.Fprintf(&b, "author %s\nauthor-mail <%s>\n\t\n", author.Name, author.Email)
		}
	}
	return b.String(), nil
}

func (g *GitHubGateway) listCommits(ctx context.Context, opts *github.CommitsListOptions, all bool) ([]domain.Commit, error) {
	var commits []domain.Commit
	for {
		result, resp, err := g.restClient.Repositories.ListCommits(ctx, g.owner, g.name, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list commits with REST API: %w", err)
		}
		for _, rc := range result {
			if len(rc.Parents) > 1 {
				continue
			}
			author := rc.GetCommit().GetAuthor()
			// Committer time, as git log %ct reports it.
			date := rc.GetCommit().GetCommitter().GetDate()
			if date.IsZero() {
				date = author.GetDate()
			}
			commits = append(commits, domain.Commit{
				Timestamp: date.Unix(),
				Name:      author.GetName(),
				Email:     author.GetEmail(),
			})
		}
		if !all || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Debug("  Fetching next page of commits...")
	}
	return commits, nil
}

func (g *GitHubGateway) FetchCommitLog(ctx context.Context) (string, error) {
	g.logger.Debug("Fetching commit log using REST API...")
	head, err := g.FetchHeadRevision(ctx)
	if err != nil {
		return "", err
	}
	opts := &github.CommitsListOptions{SHA: head, ListOptions: github.ListOptions{PerPage: 100}}
	commits, err := g.listCommits(ctx, opts, true)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, c := range commits {
		fmt.Fprintf(&b, "%d\t%s\t%s\n", c.Timestamp, c.Name, c.Email)
	}
	return b.String(), nil
}

// FetchShortlog derives the per-author summary from the commit listing.
func (g *GitHubGateway) FetchShortlog(ctx context.Context) (string, error) {
	head, err := g.FetchHeadRevision(ctx)
	if err != nil {
		return "", err
	}
	opts := &github.CommitsListOptions{SHA: head, ListOptions: github.ListOptions{PerPage: 100}}
	commits, err := g.listCommits(ctx, opts, true)
	if err != nil {
		return "", err
	}

	counts := make(map[string]int)
	for _, c := range commits {
		counts[c.Name+" <"+c.Email+">"]++
	}
	idents := make([]string, 0, len(counts))
	for id := range counts {
		idents = append(idents, id)
	}
	sort.Slice(idents, func(i, j int) bool {
		if counts[idents[i]] != counts[idents[j]] {
			return counts[idents[i]] > counts[idents[j]]
		}
		return idents[i] < idents[j]
	})

	var b strings.Builder
	for _, id := range idents {
		fmt.Fprintf(&b, "%6d\t%s\n", counts[id], id)
	}
	return b.String(), nil
}

func (g *GitHubGateway) FetchTags(ctx context.Context) (string, error) {
	g.logger.Debug("Fetching tags using REST API...")
	opts := &github.ListOptions{PerPage: 100}
	var tags []string
	for {
		result, resp, err := g.restClient.Repositories.ListTags(ctx, g.owner, g.name, opts)
		if err != nil {
			return "", fmt.Errorf("failed to list tags with REST API: %w", err)
		}
		for _, tag := range result {
			tags = append(tags, tag.GetName())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return joinLines(tags), nil
}

// resolveLogin maps a commit author name to the GitHub login that authored
// its commits, since the REST author filter and the search qualifier only
// understand logins and emails. Emails, known logins and names without a
// linked account are returned unchanged.
func (g *GitHubGateway) resolveLogin(ctx context.Context, author string) (string, error) {
	if strings.Contains(author, "@") {
		return author, nil
	}
	g.mu.Lock()
	login, ok := g.logins[author]
	g.mu.Unlock()
	if ok {
		return login, nil
	}

	head, err := g.FetchHeadRevision(ctx)
	if err != nil {
		return "", err
	}
	login = author
	opts := &github.CommitsListOptions{SHA: head, ListOptions: github.ListOptions{PerPage: 100}}
search:
	for {
		result, resp, err := g.restClient.Repositories.ListCommits(ctx, g.owner, g.name, opts)
		if err != nil {
			return "", fmt.Errorf("failed to list commits with REST API: %w", err)
		}
		for _, rc := range result {
			l := rc.GetAuthor().GetLogin()
			if l == "" {
				continue
			}
			if strings.EqualFold(l, author) || rc.GetCommit().GetAuthor().GetName() == author {
				login = l
				break search
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	g.logger.Debugf("Resolved author %q to %q", author, login)

	g.mu.Lock()
	if g.logins == nil {
		g.logins = make(map[string]string)
	}
	g.logins[author] = login
	g.mu.Unlock()
	return login, nil
}

func (g *GitHubGateway) FetchTagAuthorCommits(ctx context.Context, tag, author string) (string, error) {
	author, err := g.resolveLogin(ctx, author)
	if err != nil {
		return "", err
	}
	opts := &github.CommitsListOptions{SHA: tag, Author: author, ListOptions: github.ListOptions{PerPage: 1}}
	commits, err := g.listCommits(ctx, opts, false)
	if err != nil {
		return "", err
	}
	names := make([]string, 0, len(commits))
	for _, c := range commits {
		names = append(names, c.Name)
	}
	return joinLines(names), nil
}

// FetchMergeSubjects reports merged pull requests of author as merge subjects.
func (g *GitHubGateway) FetchMergeSubjects(ctx context.Context, author string) (string, error) {
	g.logger.Debug("Fetching merged PR data...")
	author, err := g.resolveLogin(ctx, author)
	if err != nil {
		return "", err
	}
	query := fmt.Sprintf("repo:%s/%s is:pr is:merged author:%s", g.owner, g.name, author)
	variables := map[string]interface{}{"query": githubv4.String(query), "cursor": (*githubv4.String)(nil)}
	var b strings.Builder
	for {
		var q mergedPRQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return "", fmt.Errorf("failed to execute GraphQL query for pull requests: %w", err)
		}
		for _, edge := range q.Search.Edges {
			if edge.Node.Typename != "PullRequest" {
				continue
			}
			fmt.Fprintf(&b, "Merge pull request #%d\n", edge.Node.PullRequest.Number)
		}
		if !q.Search.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.Search.PageInfo.EndCursor)
		g.logger.Debug("  Fetching next page of pull requests...")
	}
	return b.String(), nil
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
