// Package main implements gitripper, a CLI tool that bulk-clones a GitHub
// user's owned or starred repositories and records clone analytics.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kaganisildak/gitripper/internal/analytics"
	"github.com/kaganisildak/gitripper/internal/config"
	"github.com/kaganisildak/gitripper/internal/git"
	"github.com/kaganisildak/gitripper/internal/github"
	"github.com/kaganisildak/gitripper/internal/progress"
	"github.com/kaganisildak/gitripper/internal/ripper"
	"github.com/kaganisildak/gitripper/internal/token"
)

type rootOptions struct {
	directory  string
	depth      int
	sync       bool
	token      string
	lfs        bool
	workers    int
	configPath string
}

// runFunc allows for mocking in tests
var runFunc = run

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "gitripper <username> <all|starred>",
		Short: "Bulk-clone a GitHub user's repositories",
		Long: `A tool for cloning all of a GitHub user's repositories (owned or starred)
with a bounded worker pool, optional fork-upstream syncing, and per-repository
clone analytics recorded to a JSON file.

Example usage:
  gitripper octocat all
  gitripper octocat starred -d /srv/mirrors --depth 1
  gitripper octocat all --sync --lfs`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]

			var kind github.RepoKind
			switch args[1] {
			case "all":
				kind = github.KindOwned
			case "starred":
				kind = github.KindStarred
			default:
				return fmt.Errorf("invalid repository option %q (expected 'all' or 'starred')", args[1])
			}

			return runFunc(cmd, opts, username, kind)
		},
	}

	cmd.Flags().StringVarP(&opts.directory, "directory", "d", "", "Directory to clone repositories into (default: current directory)")
	cmd.Flags().IntVar(&opts.depth, "depth", 0, "Depth of git clone (0 for full history)")
	cmd.Flags().BoolVar(&opts.sync, "sync", false, "Sync mode: clone original repositories for forks")
	cmd.Flags().StringVar(&opts.token, "token", "", "GitHub personal access token (falls back to GITHUB_TOKEN)")
	cmd.Flags().BoolVar(&opts.lfs, "lfs", false, "Enable Git LFS support")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Number of concurrent clone workers (default 32)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to a JSON defaults file")

	return cmd
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildConfig merges the defaults file (when given) with any explicitly set
// flags; flags always win.
func buildConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if opts.configPath != "" {
		var err error
		cfg, err = config.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("directory") {
		cfg.Directory = opts.directory
	} else if cfg.Directory == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		cfg.Directory = wd
	}
	if flags.Changed("depth") {
		cfg.Depth = opts.depth
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if flags.Changed("lfs") {
		cfg.LFS = opts.lfs
	}
	if flags.Changed("sync") {
		cfg.Sync = opts.sync
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cmd *cobra.Command, opts *rootOptions, username string, kind github.RepoKind) error {
	cfg, err := buildConfig(cmd, opts)
	if err != nil {
		return err
	}

	tokenValue, err := token.Resolve(opts.token)
	if err != nil {
		return err
	}
	if tokenValue == "" {
		color.Yellow("Warning: no GitHub token provided. You may encounter rate limits.")
	}

	if cfg.LFS {
		fmt.Println("Git LFS support enabled.")
	} else {
		fmt.Println("Git LFS support disabled. Large files will be skipped.")
	}

	ledger, err := analytics.Load(analytics.FileName(username))
	if err != nil {
		return err
	}

	fmt.Printf("Fetching repository information for user: %s\n", username)
	fmt.Printf("Cloning repositories into: %s\n", cfg.Directory)
	if cfg.Depth > 0 {
		fmt.Printf("Using clone depth: %d\n", cfg.Depth)
	}
	if cfg.Sync {
		fmt.Println("Sync mode enabled: will clone original repositories for forks")
	}

	client := github.NewClient(tokenValue)
	r := ripper.New(client, client, ripper.ClonerFunc(git.Clone), progress.NewConsoleTracker(), ripper.Options{
		Username:    username,
		Kind:        kind,
		Directory:   cfg.Directory,
		Depth:       cfg.Depth,
		Token:       tokenValue,
		LFS:         cfg.LFS,
		Sync:        cfg.Sync,
		Workers:     cfg.Workers,
		MaxAttempts: cfg.RetryAttempts,
	})

	summary, err := r.Run(context.Background(), ledger)
	if err != nil {
		return err
	}

	printSummary(summary, cfg.Sync)

	if err := ledger.Save(); err != nil {
		return err
	}
	fmt.Printf("Analytics saved to %s\n", ledger.Path())

	return nil
}

func printSummary(s *ripper.Summary, syncMode bool) {
	green := color.New(color.FgGreen).SprintFunc()

	fmt.Printf("\nCloning complete.\n")
	fmt.Printf("Total repositories attempted: %d\n", s.Attempted)
	fmt.Printf("Successfully cloned repositories: %s\n", green(s.Succeeded))
	fmt.Printf("Total time taken: %.2f seconds\n", s.Elapsed.Seconds())
	fmt.Printf("Actual cloning rate: %.2f repos per minute\n", s.Rate())
	if syncMode {
		fmt.Printf("Original repositories cloned for forks: %d\n", s.OriginalsCloned)
	}
}
