package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/afittestide/skillprompt/skilltext"
	"github.com/afittestide/skillprompt/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := loadConfigFrom(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.True(t, config.History.Enabled)
	assert.Equal(t, 500, config.History.MaxEntries)
	assert.Equal(t, "fake", config.LLM.Provider)
	assert.Equal(t, skilltext.DefaultChainSkillID, config.Chain.SkillID)
	require.Len(t, config.Skills, 1)
	assert.Equal(t, "Send", config.Skills[0].Label)
	assert.Contains(t, config.Storage.DatabasePath, "skillprompt.sqlite")
}

func TestLoadConfigLayers(t *testing.T) {
	dir := t.TempDir()
	user := writeConfig(t, dir, "user.toml", `
[llm]
provider = "openai"
model = "gpt-4o-mini"

[ui]
markdown_enabled = false

[[skills]]
id = "send"
label = "Send"

[[skills]]
id = "swap"
label = "Swap"
description = "Swap tokens"

[[skills]]
id = "treasury"
label = "@treasury"
category = "recipient"
`)
	project := writeConfig(t, dir, "project.toml", `
[llm]
model = "gpt-4o"

[history]
max_entries = 10
`)

	config, err := loadConfigFrom(user, project)
	require.NoError(t, err)

	assert.Equal(t, "openai", config.LLM.Provider)
	assert.Equal(t, "gpt-4o", config.LLM.Model)
	assert.False(t, config.UI.MarkdownEnabled)
	assert.Equal(t, 10, config.History.MaxEntries)
	assert.True(t, config.History.Enabled)

	require.Len(t, config.Skills, 3)
	assert.Equal(t, "Swap tokens", config.Skills[1].Description)
	assert.True(t, config.Skills[2].IsRecipient())
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv("SKILLPROMPT_LLM_API_KEY", "from-env")
	t.Setenv("SKILLPROMPT_CHAIN_SKILL_ID", "pay")
	t.Setenv("SKILLPROMPT_STORAGE_DATABASE_PATH", "/tmp/custom.sqlite")

	config, err := loadConfigFrom()
	require.NoError(t, err)
	assert.Equal(t, "from-env", config.LLM.APIKey)
	assert.Equal(t, "pay", config.Chain.SkillID)
	assert.Equal(t, "/tmp/custom.sqlite", config.Storage.DatabasePath)
}

func TestLoadConfigProviderKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "anthropic-key")
	path := writeConfig(t, t.TempDir(), "conf.toml", `
[llm]
provider = "anthropic"
`)

	config, err := loadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "anthropic-key", config.LLM.APIKey)
}

func TestLoadConfigInvalidFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "broken.toml", "[llm\nprovider = ")
	_, err := loadConfigFrom(path)
	require.Error(t, err)
}

func TestBuildCatalog(t *testing.T) {
	skills := []skilltext.Skill{
		{ID: "send", Label: "Send"},
		{ID: "treasury", Label: "@treasury", Category: skilltext.RecipientCategory},
	}
	contacts := []storage.Contact{
		{Name: "alice", Address: "addr-1"},
		{Name: "Treasury", Address: "shadowed"},
		{Name: "mal" + skilltext.Prefix + "lory", Address: "broken"},
	}

	catalog, err := BuildCatalog(skills, contacts)
	require.NoError(t, err)

	recipients := catalog.Recipients()
	require.Len(t, recipients, 2)
	assert.Equal(t, "@treasury", recipients[0].Label)
	assert.Equal(t, "@alice", recipients[1].Label)
	assert.Equal(t, "contact:alice", recipients[1].ID)
	assert.Equal(t, "addr-1", recipients[1].Description)

	_, err = BuildCatalog([]skilltext.Skill{{ID: "x", Label: "X"}, {ID: "x", Label: "Y"}}, nil)
	require.Error(t, err)
}

func TestSessionOptionsFromConfig(t *testing.T) {
	config := defaultConfig()
	config.UI.CharWidth = 2
	config.Chain.SkillID = "pay"

	opts := config.sessionOptions()
	assert.Equal(t, 1, opts.LineHeight)
	assert.Equal(t, 2, opts.CharWidth)
	assert.Equal(t, "pay", opts.ChainSkillID)

	history := config.historyConfig()
	assert.Equal(t, config.History.MaxEntries, history.MaxEntries)
}
