// Package git executes repository clones by shelling out to the external
// git tool. Every clone produces an analytics.Outcome, success or failure;
// errors never escape to the caller.
package git

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kaganisildak/gitripper/internal/analytics"
	"github.com/kaganisildak/gitripper/internal/errors"
	"github.com/kaganisildak/gitripper/internal/retry"
	"github.com/kaganisildak/gitripper/internal/urlutils"
)

const (
	defaultMaxAttempts = 3
	commandTimeout     = 30 * time.Minute
)

// backoff is a variable so tests can collapse the retry delays
var backoff = retry.Linear(2 * time.Second)

// Options contains configuration for one repository clone. The descriptor
// fields (Stars, Forks, IsFork) are carried through into the outcome.
type Options struct {
	Name        string
	CloneURL    string
	Stars       int
	Forks       int
	IsFork      bool
	Dir         string // Destination parent directory
	Depth       int    // Shallow clone depth, 0 for full history
	Token       string // Embedded into the clone URL, never logged
	LFS         bool
	Original    bool // Clone of a fork's upstream
	MaxAttempts int  // Defaults to 3
}

// Dest returns the working tree path for this clone. Upstream clones go
// under "<name>_original/<name>" so a fork and its origin cloned in the
// same batch never collide.
func (o Options) Dest() string {
	if o.Original {
		return filepath.Join(o.Dir, o.Name+"_original", o.Name)
	}
	return filepath.Join(o.Dir, o.Name)
}

// Clone runs the bounded-retry clone-and-checkout sequence for a single
// repository and reports the outcome. It blocks for the duration of the
// external tool runs and the backoff sleeps, so it must run off any
// latency-sensitive goroutine.
func Clone(ctx context.Context, opts Options) analytics.Outcome {
	attempts := opts.MaxAttempts
	if attempts < 1 {
		attempts = defaultMaxAttempts
	}

	dest := opts.Dest()

	cloneURL := opts.CloneURL
	if opts.Token != "" {
		if tokenURL, err := urlutils.FormatTokenURL(cloneURL, opts.Token); err == nil {
			cloneURL = tokenURL
		}
	}

	start := time.Now()
	attempt := 0
	err := retry.Do(ctx, attempts, backoff, func() error {
		attempt++
		if attempt > 1 {
			// A failed attempt can leave a partial checkout behind; git
			// refuses to clone into a non-empty directory. A directory
			// that predates the run is left alone and fails the same way.
			os.RemoveAll(dest)
		}

		args := []string{"clone"}
		if opts.Depth > 0 {
			args = append(args, "--depth", strconv.Itoa(opts.Depth))
		}
		args = append(args, "--no-checkout", cloneURL, dest)
		if err := runGitCommand(ctx, "", args...); err != nil {
			return err
		}

		if !opts.LFS {
			return runGitCommand(ctx, dest, "checkout")
		}
		if err := runGitCommand(ctx, dest, "lfs", "fetch", "--all"); err != nil {
			return err
		}
		return runGitCommand(ctx, dest, "lfs", "checkout")
	})

	if err != nil {
		return analytics.Outcome{
			Name:           opts.Name,
			Success:        false,
			Error:          redact(err.Error(), opts.Token),
			IsFork:         opts.IsFork,
			OriginalCloned: opts.Original,
			LFSSupported:   opts.LFS,
		}
	}

	return analytics.Outcome{
		Name:           opts.Name,
		LastRipped:     time.Now().Format(time.RFC3339),
		Stars:          opts.Stars,
		Forks:          opts.Forks,
		CloneTime:      time.Since(start).Seconds(),
		Success:        true,
		IsFork:         opts.IsFork,
		OriginalCloned: opts.Original,
		LFSSupported:   opts.LFS,
	}
}

// redact scrubs the credential from error text; git echoes the clone URL
// in its diagnostics.
func redact(msg, token string) string {
	if token == "" {
		return msg
	}
	return strings.ReplaceAll(msg, token, "***")
}

// runGitCommand is a variable so it can be mocked in tests
var runGitCommand = func(ctx context.Context, dir string, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	output, err := cmd.CombinedOutput()
	if err != nil {
		return errors.New("git-"+args[0], fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output))))
	}
	return nil
}
