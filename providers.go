package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/afittestide/skillprompt/skilltext"
	"github.com/afittestide/skillprompt/storage"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

// appModule wires the interactive application
func appModule(logger *slog.Logger) fx.Option {
	return fx.Options(
		fx.Supply(logger),
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger}
		}),
		fx.Provide(
			ProvideConfig,
			ProvideStorage,
			ProvideWorkspace,
			ProvideCatalog,
			ProvideConversation,
			ProvidePromptHistory,
			ProvideTUIModel,
			StartTUI,
		),
		fx.Invoke(func(*tea.Program) {}),
	)
}

// ProvideConfig loads the configuration, falling back to the defaults
func ProvideConfig(logger *slog.Logger) *Config {
	config, err := LoadConfig()
	if err != nil {
		logger.Warn("using default configuration due to load failure", "error", err)
		defaults := defaultConfig()
		return &defaults
	}
	logger.Info("configuration loaded", "provider", config.LLM.Provider, "skills", len(config.Skills))
	return config
}

// StorageParams holds parameters for storage initialization
type StorageParams struct {
	fx.In
	Lifecycle fx.Lifecycle
	Config    *Config
	Logger    *slog.Logger
}

// ProvideStorage opens the database. A database that fails to open leaves
// history and contacts disabled instead of stopping the app, so the result may be nil.
func ProvideStorage(params StorageParams) *storage.DB {
	db, err := storage.InitDB(params.Config.Storage.DatabasePath)
	if err != nil {
		params.Logger.Error("failed to initialize storage, history disabled", "error", err)
		return nil
	}

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			params.Logger.Info("closing storage")
			return db.Close()
		},
	})
	return db
}

// ProvideWorkspace identifies the repository the app runs in
func ProvideWorkspace(logger *slog.Logger) WorkspaceInfo {
	dir, err := os.Getwd()
	if err != nil {
		logger.Warn("failed to get working directory", "error", err)
		dir = "."
	}
	workspace := DetectWorkspace(dir)
	logger.Info("workspace detected", "root", workspace.Root, "branch", workspace.Branch, "repo", workspace.IsRepo)
	return workspace
}

// ProvideCatalog merges the configured skills with the stored contacts
func ProvideCatalog(config *Config, db *storage.DB, logger *slog.Logger) (*skilltext.Catalog, error) {
	var contacts []storage.Contact
	if db != nil {
		var err error
		contacts, err = storage.NewContactStore(db).ListContacts()
		if err != nil {
			logger.Warn("failed to load contacts", "error", err)
		}
	}

	catalog, err := BuildCatalog(config.Skills, contacts)
	if err != nil {
		return nil, err
	}
	logger.Info("skill catalog ready", "actions", len(catalog.Actions()), "recipients", len(catalog.Recipients()))
	return catalog, nil
}

// ProvideConversation connects to the configured model. Without a model the
// app still runs and every prompt answers with an error.
func ProvideConversation(config *Config, catalog *skilltext.Catalog, logger *slog.Logger) *Conversation {
	logger.Info("connecting to LLM", "provider", config.LLM.Provider, "model", config.LLM.Model)
	model, err := getLLMClient(config)
	if err != nil {
		logger.Warn("failed to connect to LLM, running without AI capabilities", "error", err)
		model = nil
	}
	return NewConversation(model, catalog)
}

// ProvidePromptHistory loads the prompts of the current workspace
func ProvidePromptHistory(config *Config, db *storage.DB, workspace WorkspaceInfo, conversation *Conversation, logger *slog.Logger) *PromptHistory {
	var store *storage.HistoryStore
	if db != nil && config.History.Enabled {
		store = storage.NewHistoryStore(db, config.historyConfig())
		if err := store.CleanupOldHistory(); err != nil {
			logger.Warn("failed to clean up prompt history", "error", err)
		}
	}

	history := NewPromptHistory(store, workspace, conversation.ID)
	if err := history.Load(config.History.MaxEntries); err != nil {
		logger.Warn("failed to load prompt history", "error", err)
	}
	return history
}

// TUIModelParams holds parameters for TUI model creation
type TUIModelParams struct {
	fx.In
	Config       *Config
	Catalog      *skilltext.Catalog
	Workspace    WorkspaceInfo
	History      *PromptHistory
	Conversation *Conversation
}

// ProvideTUIModel creates and returns the TUI model
func ProvideTUIModel(params TUIModelParams) *TUIModel {
	return NewTUIModel(params.Config, params.Catalog, params.Workspace, params.History, params.Conversation)
}

// TUIProgramParams holds parameters for TUI program initialization
type TUIProgramParams struct {
	fx.In
	Model      *TUIModel
	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
}

// StartTUI creates the program and runs it once the app starts. When the
// program exits the whole app shuts down.
func StartTUI(params TUIProgramParams) *tea.Program {
	prog := tea.NewProgram(params.Model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				_, err := prog.Run()
				params.Model.shutdown()
				var opts []fx.ShutdownOption
				if err != nil {
					params.Logger.Error("program exited with error", "error", err)
					opts = append(opts, fx.ExitCode(1))
				}
				if err := params.Shutdowner.Shutdown(opts...); err != nil {
					params.Logger.Error("failed to shut down", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			prog.Quit()
			return nil
		},
	})
	return prog
}

// runInteractive runs the app until the program exits
func runInteractive(logger *slog.Logger) error {
	app := fx.New(appModule(logger))
	if err := app.Err(); err != nil {
		return fmt.Errorf("failed to assemble app: %w", err)
	}
	app.Run()
	return nil
}
