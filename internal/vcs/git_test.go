package vcs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	g := NewGitCommitter(dir, "Test", "test@example.com")
	_, err := g.run(context.Background(), "init", "-q")
	require.NoError(t, err)
	return dir
}

func TestGitCommitter_CommitsChangedFile(t *testing.T) {
	dir := initRepo(t)
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("series_id,period,value\n"), 0o644))

	g := NewGitCommitter(dir, "Test", "test@example.com")
	ctx := context.Background()

	committed, err := g.Commit(ctx, []string{"data.csv"}, "data: seed")
	require.NoError(t, err)
	assert.True(t, committed)
	assert.NotEqual(t, "unknown", g.Head(ctx))

	// unchanged file: nothing to commit
	committed, err = g.Commit(ctx, []string{"data.csv"}, "data: again")
	require.NoError(t, err)
	assert.False(t, committed)

	require.NoError(t, os.WriteFile(path, []byte("series_id,period,value\nA,2024-01,1\n"), 0o644))
	committed, err = g.Commit(ctx, []string{"data.csv"}, "data: append 1 new observations")
	require.NoError(t, err)
	assert.True(t, committed)

	out, err := g.run(ctx, "log", "--format=%s")
	require.NoError(t, err)
	assert.Equal(t, "data: append 1 new observations\ndata: seed", out)
}

func TestGitCommitter_OutsideRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.csv"), []byte("x\n"), 0o644))
	g := NewGitCommitter(dir, "", "")

	_, err := g.Commit(context.Background(), []string{"data.csv"}, "msg")
	assert.Error(t, err)
	assert.Equal(t, "unknown", g.Head(context.Background()))
}

func TestGitCommitter_IsRevisioner(t *testing.T) {
	var c Committer = NewGitCommitter(t.TempDir(), "", "")
	_, ok := c.(Revisioner)
	assert.True(t, ok)
	_, ok = Committer(NoopCommitter{}).(Revisioner)
	assert.False(t, ok)
}

func TestNoopCommitter(t *testing.T) {
	committed, err := NoopCommitter{}.Commit(context.Background(), []string{"x"}, "m")
	assert.NoError(t, err)
	assert.False(t, committed)
}
