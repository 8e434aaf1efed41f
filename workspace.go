package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
)

// WorkspaceInfo identifies where the prompt history of this run belongs
type WorkspaceInfo struct {
	Root   string // repository root, or the working directory outside git
	Branch string // current branch, a short hash on a detached head, empty outside git
	IsRepo bool
}

// DetectWorkspace finds the git repository containing dir
func DetectWorkspace(dir string) WorkspaceInfo {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	info := WorkspaceInfo{Root: abs}

	repo, err := gogit.PlainOpenWithOptions(abs, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		slog.Debug("not a git repository", "dir", abs, "error", err)
		return info
	}
	info.IsRepo = true

	if worktree, err := repo.Worktree(); err == nil {
		info.Root = worktree.Filesystem.Root()
	}

	ref, err := repo.Head()
	if err != nil {
		// a fresh repository has no HEAD commit yet
		slog.Debug("failed to read HEAD", "error", err)
		return info
	}
	if ref.Name().IsBranch() {
		info.Branch = ref.Name().Short()
	} else {
		info.Branch = ref.Hash().String()[:7]
	}
	return info
}

// Label renders the workspace for the status line
func (w WorkspaceInfo) Label() string {
	root := w.Root
	if home, err := os.UserHomeDir(); err == nil && home != "" && strings.HasPrefix(root, home) {
		root = "~" + strings.TrimPrefix(root, home)
	}
	if w.Branch == "" {
		return root
	}
	return root + " (" + w.Branch + ")"
}
