package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/afittestide/skillprompt/skilltext"
	"github.com/afittestide/skillprompt/storage"
)

// writeHistoryMarkdown renders prompt history as markdown, one section per prompt
func writeHistoryMarkdown(w io.Writer, workspace WorkspaceInfo, catalog *skilltext.Catalog, entries []storage.PromptEntry) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Prompt history: %s\n\n", workspace.Label())
	fmt.Fprintf(&b, "**Exported:** %s | **Prompts:** %d\n\n---\n\n", time.Now().Format("2006-01-02 15:04:05"), len(entries))

	for i, entry := range entries {
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, entry.Timestamp.Format("2006-01-02 15:04:05"))

		var names []string
		for _, skill := range skilltext.Skills(skilltext.Split(entry.Raw, catalog)) {
			names = append(names, skill.Label)
		}
		if len(names) > 0 {
			fmt.Fprintf(&b, "**Skills:** %s\n\n", strings.Join(names, ", "))
		}

		b.WriteString("```\n")
		b.WriteString(entry.Plain)
		b.WriteString("\n```\n\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// exportHistory writes the markdown to path, or to a new file in the temp dir
// when path is empty, and returns the path written
func exportHistory(path string, workspace WorkspaceInfo, catalog *skilltext.Catalog, entries []storage.PromptEntry) (string, error) {
	if path == "" {
		filename := fmt.Sprintf("%s-history-%s.md", appName, time.Now().Format("20060102-150405"))
		path = filepath.Join(os.TempDir(), filename)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	if err := writeHistoryMarkdown(f, workspace, catalog, entries); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}
