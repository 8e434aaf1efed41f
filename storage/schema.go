package storage

import "time"

// Schema version for migrations
const SchemaVersion = 1

// HistoryConfig holds persistent history configuration
type HistoryConfig struct {
	Enabled    bool
	MaxEntries int // per workspace, 0 keeps everything
	MaxAgeDays int
}

// Workspace is a project directory and the git branch checked out in it.
// Prompt history is keyed by workspace.
type Workspace struct {
	ID     int64  `db:"id"`
	Root   string `db:"root"`   // absolute path of the repository root or working directory
	Branch string `db:"branch"` // e.g. "main", empty outside git
}

// PromptEntry is a submitted prompt.
// Raw keeps the skill tokens so a recalled prompt is still editable as tokens,
// Plain is what was sent to the model.
type PromptEntry struct {
	ID          int64     `db:"id"`
	WorkspaceID int64     `db:"workspace_id"`
	SessionID   string    `db:"session_id"`
	Raw         string    `db:"raw"`
	Plain       string    `db:"plain"`
	Timestamp   time.Time `db:"timestamp"`
}

// Contact is an address book entry offered as a recipient skill
type Contact struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Address   string    `db:"address"`
	CreatedAt time.Time `db:"created_at"`
}

// Schema is the SQL DDL for creating all tables
const Schema = `
CREATE TABLE IF NOT EXISTS workspaces (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    root TEXT NOT NULL,
    branch TEXT NOT NULL,
    UNIQUE(root, branch)
);

CREATE TABLE IF NOT EXISTS prompt_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    workspace_id INTEGER NOT NULL,
    session_id TEXT NOT NULL,
    raw TEXT NOT NULL,
    plain TEXT NOT NULL,
    timestamp INTEGER NOT NULL,
    FOREIGN KEY (workspace_id) REFERENCES workspaces(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_prompt_history_workspace ON prompt_history(workspace_id, timestamp DESC);

CREATE TABLE IF NOT EXISTS contacts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE COLLATE NOCASE,
    address TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);

INSERT OR IGNORE INTO schema_version (version, applied_at) VALUES (1, unixepoch());
`
