package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/git-insights/internal/config"
	"github.com/naka-gawa/git-insights/internal/domain"
	"github.com/naka-gawa/git-insights/internal/gateway"
	"github.com/naka-gawa/git-insights/internal/logging"
	"github.com/naka-gawa/git-insights/internal/usecase"
)

// session bundles what every command needs: the merged configuration, the
// logger, and the history source the usecases read from.
type session struct {
	cfg     *config.Config
	logger  *logrus.Entry
	verbose bool
	fetcher gateway.Fetcher
	closers []func() error
}

// newSession loads the configuration, lets explicitly set flags win over
// it, and opens the history source. Any failure terminates the process.
func newSession(cmd *cobra.Command) *session {
	flags := cmd.Flags()
	verbose, _ := flags.GetBool("verbose")
	configPath, _ := flags.GetString("config")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if flags.Changed("repo") {
		cfg.Repo, _ = flags.GetString("repo")
	}
	if flags.Changed("github") {
		cfg.GitHub.Repo, _ = flags.GetString("github")
	}
	if flags.Changed("by-email") {
		cfg.ByEmail, _ = flags.GetBool("by-email")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("cache") {
		cfg.Cache.Enabled, _ = flags.GetBool("cache")
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	s := &session{
		cfg:     cfg,
		logger:  logging.New(os.Stderr, verbose),
		verbose: verbose,
	}
	if err := s.openSource(cmd.Context()); err != nil {
		s.fail("Failed to open repository: %v", err)
	}
	return s
}

func (s *session) openSource(ctx context.Context) error {
	if repo := s.cfg.GitHub.Repo; repo != "" {
		if s.cfg.GitHub.Token == "" {
			return errors.New("GITHUB_TOKEN environment variable is not set")
		}
		gw, err := gateway.NewGitHubGateway(s.cfg.GitHub.Token, repo, s.logger)
		if err != nil {
			return fmt.Errorf("failed to create GitHub gateway: %w", err)
		}
		s.fetcher = gw
	} else {
		if !gateway.IsGitInstalled() {
			return errors.New("git is not installed or not in PATH")
		}
		git := gateway.NewGitCLI(s.cfg.Repo, s.logger)
		if !git.IsInsideWorkTree(ctx) {
			return fmt.Errorf("%s is not inside a git work tree", s.cfg.Repo)
		}
		s.fetcher = git
	}

	if s.cfg.Cache.Enabled {
		cached, err := gateway.OpenCachedFetcher(s.cfg.Cache.Path, s.fetcher, s.logger)
		if err != nil {
			s.logger.WithError(err).Warn("blame cache disabled")
			return nil
		}
		s.fetcher = cached
		s.closers = append(s.closers, cached.Close)
	}
	return nil
}

func (s *session) aggregator() *usecase.Aggregator {
	opts := []usecase.Option{usecase.WithWorkers(s.cfg.Workers)}
	if s.verbose {
		opts = append(opts, usecase.WithProgress(func(processed, total int) {
			fmt.Fprintf(os.Stderr, "\rProcessed %d/%d files", processed, total)
			if processed == total {
				fmt.Fprintln(os.Stderr)
			}
		}))
	}
	return usecase.NewAggregator(s.fetcher, s.logger, opts...)
}

func (s *session) groupMode() domain.GroupMode {
	if s.cfg.ByEmail {
		return domain.ByEmail
	}
	return domain.ByName
}

func (s *session) close() {
	for _, c := range s.closers {
		if err := c(); err != nil {
			s.logger.WithError(err).Debug("close failed")
		}
	}
	s.closers = nil
}

// fail releases the session and exits with status 1.
func (s *session) fail(format string, args ...any) {
	s.close()
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// createOutput opens path for writing; "-" means stdout.
func createOutput(path string) (*os.File, func() error, error) {
	if path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
