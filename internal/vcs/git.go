// Package vcs commits dataset updates to version control.
package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Committer records changed files as a single commit.
type Committer interface {
	// Commit stages paths and commits them. It reports false when nothing changed.
	Commit(ctx context.Context, paths []string, message string) (bool, error)
}

// Revisioner reports the revision a commit produced.
type Revisioner interface {
	Head(ctx context.Context) string
}

// NoopCommitter is used when git integration is disabled.
type NoopCommitter struct{}

func (NoopCommitter) Commit(context.Context, []string, string) (bool, error) { return false, nil }

// GitCommitter shells out to the git binary.
type GitCommitter struct {
	RepoDir     string
	AuthorName  string
	AuthorEmail string
}

// NewGitCommitter creates a committer for the repository at repoDir.
func NewGitCommitter(repoDir, authorName, authorEmail string) *GitCommitter {
	return &GitCommitter{RepoDir: repoDir, AuthorName: authorName, AuthorEmail: authorEmail}
}

func (g *GitCommitter) Commit(ctx context.Context, paths []string, message string) (bool, error) {
	if len(paths) == 0 {
		return false, nil
	}
	if _, err := g.run(ctx, append([]string{"add", "--"}, paths...)...); err != nil {
		return false, fmt.Errorf("git add: %w", err)
	}

	// exit status 1 means the index differs from HEAD
	_, err := g.run(ctx, append([]string{"diff", "--cached", "--quiet", "--"}, paths...)...)
	if err == nil {
		return false, nil
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
		return false, fmt.Errorf("git diff: %w", err)
	}

	args := []string{}
	if g.AuthorName != "" {
		args = append(args, "-c", "user.name="+g.AuthorName)
	}
	if g.AuthorEmail != "" {
		args = append(args, "-c", "user.email="+g.AuthorEmail)
	}
	args = append(args, "commit", "-m", message, "--")
	args = append(args, paths...)
	if _, err := g.run(ctx, args...); err != nil {
		return false, fmt.Errorf("git commit: %w", err)
	}
	return true, nil
}

// Head returns the short hash of HEAD, or "unknown" outside a repository.
func (g *GitCommitter) Head(ctx context.Context) string {
	out, err := g.run(ctx, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "unknown"
	}
	return out
}

func (g *GitCommitter) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.RepoDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}
	return strings.TrimSpace(stdout.String()), nil
}
