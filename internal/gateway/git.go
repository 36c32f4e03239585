package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// GitCLI reads history from a local repository by running the git binary.
type GitCLI struct {
	dir    string
	logger logrus.FieldLogger
}

// NewGitCLI creates a GitCLI operating on the repository at dir.
func NewGitCLI(dir string, logger logrus.FieldLogger) *GitCLI {
	return &GitCLI{dir: dir, logger: logger}
}

// IsGitInstalled reports whether a git binary is reachable through PATH.
func IsGitInstalled() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// IsInsideWorkTree reports whether dir belongs to a git working tree.
func (g *GitCLI) IsInsideWorkTree(ctx context.Context) bool {
	out, err := g.run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

func (g *GitCLI) run(ctx context.Context, args ...string) (string, error) {
	// Listings use -z; quotepath only keeps non-ASCII names readable elsewhere.
	full := append([]string{"-c", "core.quotepath=off", "--no-pager"}, args...)
	cmd := exec.CommandContext(ctx, "git", full...)
	cmd.Dir = g.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("git %s: %w", args[0], err)
		}
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, msg)
	}
	return stdout.String(), nil
}

// hasHead reports whether the repository has at least one commit.
func (g *GitCLI) hasHead(ctx context.Context) bool {
	_, err := g.run(ctx, "rev-parse", "--verify", "--quiet", "HEAD")
	return err == nil
}

// pathList turns NUL-terminated git output into one path per line, dropping
// prefix from each entry. Names containing a newline cannot be listed one
// per line and are skipped.
func (g *GitCLI) pathList(out, prefix string) string {
	var b strings.Builder
	for _, name := range strings.Split(out, "\x00") {
		name = strings.TrimPrefix(name, prefix)
		if name == "" {
			continue
		}
		if strings.Contains(name, "\n") {
			g.logger.WithField("path", name).Warn("skipping file with a newline in its name")
			continue
		}
		b.WriteString(name)
		b.WriteByte('\n')
	}
	return b.String()
}

func (g *GitCLI) FetchTrackedFiles(ctx context.Context) (string, error) {
	out, err := g.run(ctx, "ls-files", "-z")
	if err != nil {
		return "", err
	}
	return g.pathList(out, ""), nil
}

// FetchTextFiles lists the files git considers text at HEAD.
func (g *GitCLI) FetchTextFiles(ctx context.Context) (string, error) {
	if !g.hasHead(ctx) {
		return "", nil
	}
	out, err := g.run(ctx, "grep", "-z", "-I", "--name-only", "-e", "", "HEAD", "--")
	if err != nil {
		// git grep exits 1 when nothing matched.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", nil
		}
		return "", err
	}
	return g.pathList(out, "HEAD:"), nil
}

func (g *GitCLI) FetchBlame(ctx context.Context, path string) (string, error) {
	return g.run(ctx, "blame", "--line-porcelain", "-w", "-C", "-C", "HEAD", "--", path)
}

func (g *GitCLI) FetchCommitLog(ctx context.Context) (string, error) {
	if !g.hasHead(ctx) {
		return "", nil
	}
	return g.run(ctx, "log", "--no-merges", "--format=%ct%x09%aN%x09%aE", "HEAD")
}

func (g *GitCLI) FetchShortlog(ctx context.Context) (string, error) {
	if !g.hasHead(ctx) {
		return "", nil
	}
	return g.run(ctx, "shortlog", "-sne", "--no-merges", "HEAD")
}

func (g *GitCLI) FetchTags(ctx context.Context) (string, error) {
	return g.run(ctx, "tag", "--list", "--format=%(refname:short)")
}

func (g *GitCLI) FetchTagAuthorCommits(ctx context.Context, tag, author string) (string, error) {
	return g.run(ctx, "log", "--fixed-strings", "--author="+author, "--format=%aN", "-1", tag, "--")
}

func (g *GitCLI) FetchMergeSubjects(ctx context.Context, author string) (string, error) {
	if !g.hasHead(ctx) {
		return "", nil
	}
	return g.run(ctx, "log", "--merges", "--fixed-strings", "--author="+author, "--format=%s", "HEAD", "--")
}

func (g *GitCLI) FetchHeadRevision(ctx context.Context) (string, error) {
	out, err := g.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
