// Package ripper orchestrates a bulk clone run: it lists a user's
// repositories, dispatches clone tasks across a bounded worker pool,
// optionally expands the set with fork upstreams, and merges every outcome
// into the analytics ledger.
package ripper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/kaganisildak/gitripper/internal/analytics"
	errs "github.com/kaganisildak/gitripper/internal/errors"
	"github.com/kaganisildak/gitripper/internal/git"
	"github.com/kaganisildak/gitripper/internal/github"
	"github.com/kaganisildak/gitripper/internal/progress"
)

const defaultWorkers = 32

// Lister produces the full repository set for a user.
type Lister interface {
	ListRepositories(ctx context.Context, owner string, kind github.RepoKind) ([]github.Repository, error)
}

// Resolver looks up the upstream repository of a fork.
type Resolver interface {
	GetSource(ctx context.Context, repo github.Repository) (*github.Repository, error)
}

// Cloner executes a single repository clone. Implementations must always
// return an outcome, never panic or leak errors.
type Cloner interface {
	Clone(ctx context.Context, opts git.Options) analytics.Outcome
}

// ClonerFunc adapts a plain function to the Cloner interface.
type ClonerFunc func(ctx context.Context, opts git.Options) analytics.Outcome

// Clone implements Cloner
func (f ClonerFunc) Clone(ctx context.Context, opts git.Options) analytics.Outcome {
	return f(ctx, opts)
}

// Options configures a run.
type Options struct {
	Username    string
	Kind        github.RepoKind
	Directory   string
	Depth       int
	Token       string
	LFS         bool
	Sync        bool // Also clone the upstream of every fork
	Workers     int  // Worker pool size, defaults to 32
	MaxAttempts int  // Clone retry cap, 0 uses the executor default
}

// Summary holds the statistics reported at the end of a run.
type Summary struct {
	Attempted       int
	Succeeded       int
	OriginalsCloned int
	Elapsed         time.Duration
}

// Rate returns successful clones per minute over the run.
func (s Summary) Rate() float64 {
	minutes := s.Elapsed.Minutes()
	if minutes <= 0 {
		return 0
	}
	return float64(s.Succeeded) / minutes
}

// Ripper drives a whole run: Listing, Dispatching, Collecting, Finalizing.
type Ripper struct {
	lister   Lister
	resolver Resolver
	cloner   Cloner
	tracker  progress.Tracker
	opts     Options
}

// task pairs a repository descriptor with its upstream marker
type task struct {
	repo     github.Repository
	original bool
}

// New creates a Ripper.
func New(lister Lister, resolver Resolver, cloner Cloner, tracker progress.Tracker, opts Options) *Ripper {
	if opts.Workers < 1 {
		opts.Workers = defaultWorkers
	}
	if tracker == nil {
		tracker = progress.NopTracker{}
	}
	return &Ripper{
		lister:   lister,
		resolver: resolver,
		cloner:   cloner,
		tracker:  tracker,
		opts:     opts,
	}
}

// Run executes the full batch and merges every outcome into the ledger.
// It fails only when listing fails or returns no repositories; individual
// clone failures are recorded and reported, never escalated. The ledger is
// touched exclusively by the collecting loop below, so no locking is
// required on it.
func (r *Ripper) Run(ctx context.Context, ledger *analytics.Ledger) (*Summary, error) {
	repos, err := r.lister.ListRepositories(ctx, r.opts.Username, r.opts.Kind)
	if err != nil {
		return nil, errs.New("listing", err)
	}
	if len(repos) == 0 {
		return nil, errs.New("listing", fmt.Errorf("no repositories found for user %s", r.opts.Username))
	}

	start := time.Now()

	tasks := make([]task, 0, len(repos))
	for _, repo := range repos {
		tasks = append(tasks, task{repo: repo})
	}
	if r.opts.Sync {
		tasks = append(tasks, r.resolveOrigins(ctx, repos)...)
	}

	results := make(chan analytics.Outcome)
	sem := semaphore.NewWeighted(int64(r.opts.Workers))

	var wg sync.WaitGroup
	for _, tk := range tasks {
		wg.Add(1)
		go func(tk task) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				results <- analytics.Outcome{
					Name:           tk.repo.Name,
					Success:        false,
					Error:          err.Error(),
					IsFork:         tk.repo.Fork,
					OriginalCloned: tk.original,
					LFSSupported:   r.opts.LFS,
				}
				return
			}
			defer sem.Release(1)
			results <- r.cloner.Clone(ctx, r.cloneOptions(tk))
		}(tk)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	summary := &Summary{Attempted: len(tasks)}
	r.tracker.Start("Cloning repositories", len(tasks))

	done := 0
	for outcome := range results {
		done++
		r.tracker.Update(done)
		if outcome.Success {
			summary.Succeeded++
			if outcome.OriginalCloned {
				summary.OriginalsCloned++
			}
		} else {
			r.tracker.Message("failed to clone %s: %s", outcome.Name, outcome.Error)
		}
		ledger.Record(outcome)
	}

	r.tracker.Complete()
	summary.Elapsed = time.Since(start)
	return summary, nil
}

// resolveOrigins looks up the upstream of every forked descriptor. Failed
// lookups are reported and skipped; they never abort the run.
func (r *Ripper) resolveOrigins(ctx context.Context, repos []github.Repository) []task {
	var forks []github.Repository
	for _, repo := range repos {
		if repo.Fork {
			forks = append(forks, repo)
		}
	}
	if len(forks) == 0 {
		return nil
	}

	r.tracker.Message("Processing %d forked repositories...", len(forks))

	var tasks []task
	for _, fork := range forks {
		origin, err := r.resolver.GetSource(ctx, fork)
		if err != nil {
			r.tracker.Message("Could not resolve origin for %s: %v", fork.Name, err)
			continue
		}
		if origin != nil {
			tasks = append(tasks, task{repo: *origin, original: true})
		}
	}
	return tasks
}

func (r *Ripper) cloneOptions(tk task) git.Options {
	return git.Options{
		Name:        tk.repo.Name,
		CloneURL:    tk.repo.CloneURL,
		Stars:       tk.repo.StargazersCount,
		Forks:       tk.repo.ForksCount,
		IsFork:      tk.repo.Fork,
		Dir:         r.opts.Directory,
		Depth:       r.opts.Depth,
		Token:       r.opts.Token,
		LFS:         r.opts.LFS,
		Original:    tk.original,
		MaxAttempts: r.opts.MaxAttempts,
	}
}
