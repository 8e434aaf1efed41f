package storage

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a delete or lookup matched no row
var ErrNotFound = errors.New("not found")

// GetOrCreateWorkspace returns the ID of the workspace for root and branch, creating it on first use
func (db *DB) GetOrCreateWorkspace(root, branch string) (int64, error) {
	ws, err := db.GetWorkspace(root, branch)
	if err != nil {
		return 0, err
	}
	if ws != nil {
		return ws.ID, nil
	}

	result, err := db.conn.Exec("INSERT INTO workspaces (root, branch) VALUES (?, ?)", root, branch)
	if err != nil {
		return 0, fmt.Errorf("failed to create workspace: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get workspace ID: %w", err)
	}
	return id, nil
}

// GetWorkspace looks up a workspace. It returns nil when none exists.
func (db *DB) GetWorkspace(root, branch string) (*Workspace, error) {
	var ws Workspace
	err := db.conn.QueryRow(
		"SELECT id, root, branch FROM workspaces WHERE root = ? AND branch = ?",
		root, branch,
	).Scan(&ws.ID, &ws.Root, &ws.Branch)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	return &ws, nil
}

// ListWorkspaces returns all known workspaces
func (db *DB) ListWorkspaces() ([]Workspace, error) {
	rows, err := db.conn.Query("SELECT id, root, branch FROM workspaces ORDER BY root, branch")
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	defer rows.Close()

	var workspaces []Workspace
	for rows.Next() {
		var ws Workspace
		if err := rows.Scan(&ws.ID, &ws.Root, &ws.Branch); err != nil {
			return nil, fmt.Errorf("failed to scan workspace: %w", err)
		}
		workspaces = append(workspaces, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workspaces: %w", err)
	}
	return workspaces, nil
}

// DeleteWorkspace removes a workspace and its history (CASCADE)
func (db *DB) DeleteWorkspace(id int64) error {
	result, err := db.conn.Exec("DELETE FROM workspaces WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("workspace %d: %w", id, ErrNotFound)
	}
	return nil
}
