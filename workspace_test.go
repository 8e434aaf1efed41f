package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initTempRepo(t *testing.T, dir string) *gogit.Repository {
	t.Helper()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	worktree, err := repo.Worktree()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("temp repo\n"), 0o644))
	_, err = worktree.Add("README.md")
	require.NoError(t, err)

	_, err = worktree.Commit("initial commit", &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	require.NoError(t, worktree.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName("trunk"),
		Create: true,
	}))
	return repo
}

func TestDetectWorkspaceInRepo(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	initTempRepo(t, dir)

	sub := filepath.Join(dir, "pkg", "inner")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	info := DetectWorkspace(sub)
	assert.True(t, info.IsRepo)
	assert.Equal(t, dir, info.Root)
	assert.Equal(t, "trunk", info.Branch)
	assert.Contains(t, info.Label(), "(trunk)")
}

func TestDetectWorkspaceOutsideRepo(t *testing.T) {
	dir := t.TempDir()

	info := DetectWorkspace(dir)
	assert.False(t, info.IsRepo)
	assert.Equal(t, dir, info.Root)
	assert.Empty(t, info.Branch)
	assert.NotContains(t, info.Label(), "(")
}
