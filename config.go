package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/afittestide/skillprompt/skilltext"
	"github.com/afittestide/skillprompt/storage"
	koanftoml "github.com/knadh/koanf/parsers/toml/v2"
	koanfenv "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
)

const (
	appName   = "skillprompt"
	envPrefix = "SKILLPROMPT_"

	contactIDPrefix = "contact:"
)

// Config represents the application configuration structure
type Config struct {
	Storage StorageConfig     `koanf:"storage"`
	Logging LoggingConfig     `koanf:"logging"`
	UI      UIConfig          `koanf:"ui"`
	LLM     LLMConfig         `koanf:"llm"`
	History HistoryConfig     `koanf:"history"`
	Chain   ChainConfig       `koanf:"chain"`
	Skills  []skilltext.Skill `koanf:"skills"`
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	DatabasePath string `koanf:"database_path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `koanf:"level"`
}

// LLMConfig holds LLM configuration
type LLMConfig struct {
	Provider string `koanf:"provider"`
	Model    string `koanf:"model"`
	APIKey   string `koanf:"api_key"`
	BaseURL  string `koanf:"base_url"`
}

// HistoryConfig holds prompt history configuration
type HistoryConfig struct {
	Enabled    bool `koanf:"enabled"`
	MaxEntries int  `koanf:"max_entries"`
	MaxAgeDays int  `koanf:"max_age_days"`
}

// UIConfig holds UI-specific configuration
type UIConfig struct {
	MarkdownEnabled bool `koanf:"markdown_enabled"`
	// LineHeight and CharWidth are the cell metrics the suggestion list is positioned with
	LineHeight int `koanf:"line_height"`
	CharWidth  int `koanf:"char_width"`
}

// ChainConfig selects the action skill that continues into the recipient picker
type ChainConfig struct {
	SkillID string `koanf:"skill_id"`
}

// defaultSkills is the catalog used when the configuration names none
func defaultSkills() []skilltext.Skill {
	return []skilltext.Skill{
		{ID: skilltext.DefaultChainSkillID, Label: "Send", Description: "Send to a recipient"},
	}
}

// defaultConfig returns the configuration populated with sensible defaults.
func defaultConfig() Config {
	homeDir, _ := os.UserHomeDir()

	return Config{
		Storage: StorageConfig{
			DatabasePath: filepath.Join(homeDir, ".local", "share", appName, appName+".sqlite"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: 500,
			MaxAgeDays: 90,
		},
		UI: UIConfig{
			MarkdownEnabled: true,
			// the terminal grid: one row per line, one column per rune
			LineHeight: 1,
			CharWidth:  1,
		},
		LLM: LLMConfig{
			Provider: "fake",
		},
		Chain: ChainConfig{
			SkillID: skilltext.DefaultChainSkillID,
		},
	}
}

// configPaths lists the config files in load order, later files win
func configPaths() []string {
	var paths []string
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", appName, "conf.toml"))
	} else {
		slog.Warn("failed to get user home directory", "error", err)
	}
	return append(paths, "."+appName+".toml")
}

// LoadConfig loads configuration from the user and project files and the environment
func LoadConfig() (*Config, error) {
	return loadConfigFrom(configPaths()...)
}

func loadConfigFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if !os.IsNotExist(err) {
				slog.Warn("unable to stat config", "path", path, "error", err)
			}
			continue
		}
		if err := k.Load(file.Provider(path), koanftoml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
		slog.Debug("config loaded", "path", path)
	}

	// SKILLPROMPT_LLM_API_KEY becomes "llm.api_key": only the section separator is a dot
	if err := k.Load(koanfenv.Provider(".", koanfenv.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
			return strings.Replace(key, "_", ".", 1), value
		},
	}), nil); err != nil {
		slog.Warn("failed to load environment variables", "error", err)
	}

	config := defaultConfig()
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// slices are merged by index, so the default catalog is only applied when none is configured
	if !k.Exists("skills") {
		config.Skills = defaultSkills()
	}

	if config.LLM.APIKey == "" {
		config.LLM.APIKey = providerEnvKey(config.LLM.Provider)
	}

	return &config, nil
}

// providerEnvKey reads the conventional API key variable of a provider
func providerEnvKey(provider string) string {
	switch provider {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "googleai":
		return os.Getenv("GEMINI_API_KEY")
	}
	return ""
}

// historyConfig maps the prompt history settings onto the storage layer
func (c *Config) historyConfig() *storage.HistoryConfig {
	return &storage.HistoryConfig{
		Enabled:    c.History.Enabled,
		MaxEntries: c.History.MaxEntries,
		MaxAgeDays: c.History.MaxAgeDays,
	}
}

// sessionOptions maps the UI settings onto a skill session
func (c *Config) sessionOptions() skilltext.Options {
	return skilltext.Options{
		LineHeight:   c.UI.LineHeight,
		CharWidth:    c.UI.CharWidth,
		ChainSkillID: c.Chain.SkillID,
	}
}

// contactSkill turns an address book entry into a recipient skill
func contactSkill(contact storage.Contact) skilltext.Skill {
	return skilltext.Skill{
		ID:          contactIDPrefix + strings.ToLower(contact.Name),
		Label:       "@" + contact.Name,
		Category:    skilltext.RecipientCategory,
		Description: contact.Address,
	}
}

// BuildCatalog merges the configured skills with the address book.
// A contact whose label is already taken by a configured skill is skipped.
func BuildCatalog(skills []skilltext.Skill, contacts []storage.Contact) (*skilltext.Catalog, error) {
	all := append([]skilltext.Skill(nil), skills...)

	taken := make(map[string]bool, len(skills))
	for _, skill := range skills {
		taken[strings.ToLower(skill.Label)] = true
	}
	for _, contact := range contacts {
		skill := contactSkill(contact)
		if strings.ContainsAny(skill.Label, skilltext.Prefix+skilltext.Suffix) {
			slog.Warn("contact name contains token markers", "contact", contact.Name)
			continue
		}
		if taken[strings.ToLower(skill.Label)] {
			slog.Warn("contact shadowed by a configured skill", "contact", contact.Name)
			continue
		}
		taken[strings.ToLower(skill.Label)] = true
		all = append(all, skill)
	}

	catalog, err := skilltext.NewCatalog(all...)
	if err != nil {
		return nil, fmt.Errorf("failed to build skill catalog: %w", err)
	}
	return catalog, nil
}
