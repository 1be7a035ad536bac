package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaganisildak/gitripper/internal/retry"
)

// call records one invocation of the mocked git command
type call struct {
	dir  string
	args []string
}

// mockGit swaps runGitCommand and the retry backoff for the test's duration
// and returns the recorded calls.
func mockGit(t *testing.T, fail func(n int, args []string) error) *[]call {
	t.Helper()
	originalRun := runGitCommand
	originalBackoff := backoff
	t.Cleanup(func() {
		runGitCommand = originalRun
		backoff = originalBackoff
	})

	backoff = retry.None()

	var calls []call
	runGitCommand = func(ctx context.Context, dir string, args ...string) error {
		calls = append(calls, call{dir: dir, args: args})
		if fail != nil {
			return fail(len(calls), args)
		}
		return nil
	}
	return &calls
}

func TestCloneSuccess(t *testing.T) {
	calls := mockGit(t, nil)

	opts := Options{
		Name:     "repo",
		CloneURL: "https://github.com/owner/repo.git",
		Stars:    42,
		Forks:    7,
		Dir:      t.TempDir(),
	}
	outcome := Clone(context.Background(), opts)

	require.True(t, outcome.Success)
	assert.Equal(t, "repo", outcome.Name)
	assert.Equal(t, 42, outcome.Stars)
	assert.Equal(t, 7, outcome.Forks)
	assert.GreaterOrEqual(t, outcome.CloneTime, 0.0)
	assert.NotEmpty(t, outcome.LastRipped)

	require.Len(t, *calls, 2)
	assert.Equal(t, []string{"clone", "--no-checkout", opts.CloneURL, opts.Dest()}, (*calls)[0].args)
	assert.Equal(t, []string{"checkout"}, (*calls)[1].args)
	assert.Equal(t, opts.Dest(), (*calls)[1].dir)
}

func TestCloneWithDepth(t *testing.T) {
	calls := mockGit(t, nil)

	Clone(context.Background(), Options{
		Name:     "repo",
		CloneURL: "https://github.com/owner/repo.git",
		Dir:      t.TempDir(),
		Depth:    1,
	})

	require.NotEmpty(t, *calls)
	assert.Contains(t, (*calls)[0].args, "--depth")
	assert.Contains(t, (*calls)[0].args, "1")
}

func TestCloneLFSSequence(t *testing.T) {
	calls := mockGit(t, nil)

	outcome := Clone(context.Background(), Options{
		Name:     "repo",
		CloneURL: "https://github.com/owner/repo.git",
		Dir:      t.TempDir(),
		LFS:      true,
	})

	require.True(t, outcome.Success)
	assert.True(t, outcome.LFSSupported)

	require.Len(t, *calls, 3)
	assert.Equal(t, "clone", (*calls)[0].args[0])
	assert.Equal(t, []string{"lfs", "fetch", "--all"}, (*calls)[1].args)
	assert.Equal(t, []string{"lfs", "checkout"}, (*calls)[2].args)
}

func TestCloneEmbedsTokenInURL(t *testing.T) {
	calls := mockGit(t, nil)

	Clone(context.Background(), Options{
		Name:     "repo",
		CloneURL: "https://github.com/owner/repo.git",
		Dir:      t.TempDir(),
		Token:    "ghp_secret",
	})

	require.NotEmpty(t, *calls)
	cloneArgs := (*calls)[0].args
	assert.Contains(t, cloneArgs, "https://ghp_secret@github.com/owner/repo.git")
}

func TestCloneOriginalDestination(t *testing.T) {
	dir := t.TempDir()
	fork := Options{Name: "repo", Dir: dir}
	original := Options{Name: "repo", Dir: dir, Original: true}

	assert.Equal(t, filepath.Join(dir, "repo"), fork.Dest())
	assert.Equal(t, filepath.Join(dir, "repo_original", "repo"), original.Dest())
	assert.NotEqual(t, fork.Dest(), original.Dest())
}

func TestCloneRetriesThenSucceeds(t *testing.T) {
	cloneAttempts := 0
	calls := mockGit(t, func(n int, args []string) error {
		if args[0] == "clone" {
			cloneAttempts++
			if cloneAttempts < 3 {
				return fmt.Errorf("exit status 128: early EOF")
			}
		}
		return nil
	})

	outcome := Clone(context.Background(), Options{
		Name:     "repo",
		CloneURL: "https://github.com/owner/repo.git",
		Dir:      t.TempDir(),
	})

	require.True(t, outcome.Success)
	assert.Equal(t, 3, cloneAttempts)
	// 3 clone attempts, the last followed by a checkout
	assert.Len(t, *calls, 4)
}

func TestCloneFailureAfterAllAttempts(t *testing.T) {
	cloneAttempts := 0
	mockGit(t, func(n int, args []string) error {
		cloneAttempts++
		return fmt.Errorf("exit status 128: could not resolve host")
	})

	outcome := Clone(context.Background(), Options{
		Name:     "repo",
		CloneURL: "https://github.com/owner/repo.git",
		Dir:      t.TempDir(),
		IsFork:   true,
	})

	require.False(t, outcome.Success)
	assert.Equal(t, defaultMaxAttempts, cloneAttempts)
	assert.Contains(t, outcome.Error, "could not resolve host")
	assert.True(t, outcome.IsFork)
	assert.Empty(t, outcome.LastRipped)
	assert.Zero(t, outcome.CloneTime)
	assert.Zero(t, outcome.Stars)
}

func TestCloneFailureRedactsToken(t *testing.T) {
	mockGit(t, func(n int, args []string) error {
		// git echoes the full remote URL in its diagnostics
		return fmt.Errorf("fatal: unable to access '%s'", args[len(args)-2])
	})

	outcome := Clone(context.Background(), Options{
		Name:     "repo",
		CloneURL: "https://github.com/owner/repo.git",
		Dir:      t.TempDir(),
		Token:    "ghp_secret",
	})

	require.False(t, outcome.Success)
	assert.NotContains(t, outcome.Error, "ghp_secret")
	assert.True(t, strings.Contains(outcome.Error, "***"))
}

func TestCloneLeavesExistingDestinationUntouched(t *testing.T) {
	mockGit(t, nil)

	dir := t.TempDir()
	opts := Options{
		Name:     "repo",
		CloneURL: "https://github.com/owner/repo.git",
		Dir:      dir,
	}
	require.NoError(t, os.MkdirAll(opts.Dest(), 0755))
	sentinel := filepath.Join(opts.Dest(), "precious.txt")
	require.NoError(t, os.WriteFile(sentinel, []byte("keep"), 0644))

	Clone(context.Background(), opts)

	_, err := os.Stat(sentinel)
	assert.NoError(t, err, "a pre-existing destination must survive the first attempt")
}

func TestCloneRemovesPartialCheckoutBetweenRetries(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		Name:     "repo",
		CloneURL: "https://github.com/owner/repo.git",
		Dir:      dir,
	}

	cloneAttempts := 0
	mockGit(t, func(n int, args []string) error {
		if args[0] == "clone" {
			cloneAttempts++
			if cloneAttempts == 1 {
				// Simulate a partial checkout left by the failed attempt
				os.MkdirAll(opts.Dest(), 0755)
				os.WriteFile(filepath.Join(opts.Dest(), "partial.txt"), []byte("x"), 0644)
				return fmt.Errorf("exit status 128: early EOF")
			}
		}
		return nil
	})

	outcome := Clone(context.Background(), opts)

	require.True(t, outcome.Success)
	_, err := os.Stat(filepath.Join(opts.Dest(), "partial.txt"))
	assert.True(t, os.IsNotExist(err), "the retry must start from a clean destination")
}

func TestCloneCustomMaxAttempts(t *testing.T) {
	cloneAttempts := 0
	mockGit(t, func(n int, args []string) error {
		cloneAttempts++
		return fmt.Errorf("exit status 128")
	})

	outcome := Clone(context.Background(), Options{
		Name:        "repo",
		CloneURL:    "https://github.com/owner/repo.git",
		Dir:         t.TempDir(),
		MaxAttempts: 5,
	})

	require.False(t, outcome.Success)
	assert.Equal(t, 5, cloneAttempts)
}
