package storage

import (
	"fmt"
	"time"
)

// HistoryStore persists submitted prompts per workspace
type HistoryStore struct {
	db  *DB
	cfg *HistoryConfig
}

// NewHistoryStore creates a new history store
func NewHistoryStore(db *DB, cfg *HistoryConfig) *HistoryStore {
	return &HistoryStore{
		db:  db,
		cfg: cfg,
	}
}

// AppendPrompt records a prompt for the workspace at root/branch and trims the
// workspace history to the configured limit
func (h *HistoryStore) AppendPrompt(root, branch, sessionID, raw, plain string) error {
	workspaceID, err := h.db.GetOrCreateWorkspace(root, branch)
	if err != nil {
		return err
	}

	_, err = h.db.conn.Exec(`
		INSERT INTO prompt_history (workspace_id, session_id, raw, plain, timestamp)
		VALUES (?, ?, ?, ?, ?)`,
		workspaceID, sessionID, raw, plain, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to append prompt: %w", err)
	}

	if h.cfg != nil && h.cfg.MaxEntries > 0 {
		_, err = h.db.conn.Exec(`
			DELETE FROM prompt_history
			WHERE workspace_id = ?
			AND id NOT IN (
				SELECT id FROM prompt_history
				WHERE workspace_id = ?
				ORDER BY timestamp DESC, id DESC
				LIMIT ?
			)`,
			workspaceID, workspaceID, h.cfg.MaxEntries,
		)
		if err != nil {
			return fmt.Errorf("failed to apply prompt history limit: %w", err)
		}
	}

	return nil
}

// LoadPromptHistory returns the prompts of a workspace, oldest first.
// A limit above zero keeps only the newest entries.
func (h *HistoryStore) LoadPromptHistory(root, branch string, limit int) ([]PromptEntry, error) {
	ws, err := h.db.GetWorkspace(root, branch)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return []PromptEntry{}, nil
	}

	query := `
		SELECT id, workspace_id, session_id, raw, plain, timestamp FROM (
			SELECT * FROM prompt_history
			WHERE workspace_id = ?
			ORDER BY timestamp DESC, id DESC`
	args := []any{ws.ID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	query += `) ORDER BY timestamp ASC, id ASC`

	rows, err := h.db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt history: %w", err)
	}
	defer rows.Close()

	entries := []PromptEntry{}
	for rows.Next() {
		var entry PromptEntry
		var timestamp int64
		if err := rows.Scan(&entry.ID, &entry.WorkspaceID, &entry.SessionID, &entry.Raw, &entry.Plain, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan prompt: %w", err)
		}
		entry.Timestamp = time.Unix(timestamp, 0)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prompts: %w", err)
	}

	return entries, nil
}

// ClearPromptHistory deletes all prompts of a workspace
func (h *HistoryStore) ClearPromptHistory(root, branch string) error {
	ws, err := h.db.GetWorkspace(root, branch)
	if err != nil {
		return err
	}
	if ws == nil {
		return nil
	}

	if _, err := h.db.conn.Exec("DELETE FROM prompt_history WHERE workspace_id = ?", ws.ID); err != nil {
		return fmt.Errorf("failed to clear prompt history: %w", err)
	}
	return nil
}

// CleanupOldHistory removes prompts older than the configured age
func (h *HistoryStore) CleanupOldHistory() error {
	if h.cfg == nil || h.cfg.MaxAgeDays <= 0 {
		return nil
	}

	cutoff := time.Now().AddDate(0, 0, -h.cfg.MaxAgeDays).Unix()
	if _, err := h.db.conn.Exec("DELETE FROM prompt_history WHERE timestamp < ?", cutoff); err != nil {
		return fmt.Errorf("failed to cleanup old prompt history: %w", err)
	}
	return nil
}
