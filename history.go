package main

import (
	"log/slog"
	"time"

	"github.com/afittestide/skillprompt/storage"
)

// PromptHistory is the recall list behind Ctrl+P / Ctrl+N.
// Entries keep their raw text so recalled skills are tokens again.
// Without a store it only remembers the current run.
type PromptHistory struct {
	store     *storage.HistoryStore
	workspace WorkspaceInfo
	sessionID string

	entries []storage.PromptEntry
	cursor  int
	// pending is the unsent prompt saved when browsing starts
	pending  string
	browsing bool
}

// NewPromptHistory creates a history for one workspace and conversation
func NewPromptHistory(store *storage.HistoryStore, workspace WorkspaceInfo, sessionID string) *PromptHistory {
	return &PromptHistory{
		store:     store,
		workspace: workspace,
		sessionID: sessionID,
	}
}

// Load reads the newest limit entries of the workspace
func (h *PromptHistory) Load(limit int) error {
	h.resetCursor()
	if h.store == nil {
		return nil
	}
	entries, err := h.store.LoadPromptHistory(h.workspace.Root, h.workspace.Branch, limit)
	if err != nil {
		return err
	}
	h.entries = entries
	h.cursor = len(h.entries)
	slog.Debug("loaded prompt history", "count", len(entries), "workspace", h.workspace.Root)
	return nil
}

// Append records a submitted prompt and ends browsing
func (h *PromptHistory) Append(raw, plain string) error {
	h.entries = append(h.entries, storage.PromptEntry{
		SessionID: h.sessionID,
		Raw:       raw,
		Plain:     plain,
		Timestamp: time.Now(),
	})
	h.resetCursor()
	if h.store == nil {
		return nil
	}
	return h.store.AppendPrompt(h.workspace.Root, h.workspace.Branch, h.sessionID, raw, plain)
}

// Len returns the number of entries
func (h *PromptHistory) Len() int {
	return len(h.entries)
}

// Previous steps back to an older prompt. current is the prompt being edited
// and is restored once Next walks past the newest entry.
func (h *PromptHistory) Previous(current string) (string, bool) {
	if h.cursor == 0 {
		return "", false
	}
	if !h.browsing {
		h.pending = current
		h.browsing = true
	}
	h.cursor--
	return h.entries[h.cursor].Raw, true
}

// Next steps forward to a newer prompt, ending at the saved unsent one
func (h *PromptHistory) Next() (string, bool) {
	if !h.browsing {
		return "", false
	}
	h.cursor++
	if h.cursor >= len(h.entries) {
		pending := h.pending
		h.resetCursor()
		return pending, true
	}
	return h.entries[h.cursor].Raw, true
}

func (h *PromptHistory) resetCursor() {
	h.cursor = len(h.entries)
	h.pending = ""
	h.browsing = false
}
