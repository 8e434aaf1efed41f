package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/afittestide/skillprompt/skilltext"
	"github.com/afittestide/skillprompt/storage"
	"github.com/alecthomas/kong"
	isatty "github.com/mattn/go-isatty"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

type runCmd struct{}

type versionCmd struct {
	Check bool `help:"Check GitHub for a newer release"`
}

type updateCmd struct{}

type stripCmd struct {
	Flatten bool `help:"Keep a single space where a token's padding was"`
}

type skillsCmd struct{}

type contactsCmd struct {
	Add    contactsAddCmd    `cmd:"" help:"Add or update a recipient"`
	List   contactsListCmd   `cmd:"" default:"1" help:"List recipients"`
	Remove contactsRemoveCmd `cmd:"" help:"Remove a recipient"`
}

type contactsAddCmd struct {
	Name    string `arg:"" help:"Recipient name, used as @name"`
	Address string `arg:"" optional:"" help:"Address or note shown next to the name"`
}

type contactsListCmd struct{}

type contactsRemoveCmd struct {
	Name string `arg:"" help:"Recipient name"`
}

type historyCmd struct {
	List   historyListCmd   `cmd:"" default:"1" help:"List prompts sent from this workspace"`
	Export historyExportCmd `cmd:"" help:"Write the prompt history of this workspace as markdown"`
	Clear  historyClearCmd  `cmd:"" help:"Delete the prompt history of this workspace"`

	Workspaces historyWorkspacesCmd `cmd:"" help:"List every workspace with stored history"`
	Forget     historyForgetCmd     `cmd:"" help:"Delete a workspace and its history by id"`
}

type historyListCmd struct {
	Limit int  `default:"20" help:"Number of prompts to show, 0 for all"`
	Raw   bool `help:"Print prompts with their skill tokens"`
}

type historyExportCmd struct {
	Output string `short:"o" type:"path" help:"Output file, a temp file when omitted"`
}

type historyClearCmd struct{}

type historyWorkspacesCmd struct{}

type historyForgetCmd struct {
	ID int64 `arg:"" help:"Workspace id as shown by history workspaces"`
}

type apikeyCmd struct {
	Set    apikeySetCmd    `cmd:"" help:"Store a provider API key in the OS keyring"`
	Delete apikeyDeleteCmd `cmd:"" help:"Remove a provider API key from the OS keyring"`
}

type apikeySetCmd struct {
	Provider string `arg:"" enum:"openai,anthropic,googleai,ollama" help:"LLM provider"`
	Key      string `arg:"" optional:"" help:"API key, read from stdin when omitted"`
}

type apikeyDeleteCmd struct {
	Provider string `arg:"" enum:"openai,anthropic,googleai,ollama" help:"LLM provider"`
}

var cli struct {
	Prompt string `short:"p" help:"Send one prompt and print the reply"`
	Debug  bool   `help:"Enable debug logging"`

	Run      runCmd      `cmd:"" default:"1" help:"Run the interactive prompt"`
	Version  versionCmd  `cmd:"" help:"Print version information"`
	Update   updateCmd   `cmd:"" help:"Update to the latest release"`
	Strip    stripCmd    `cmd:"" help:"Remove skill tokens from stdin"`
	Skills   skillsCmd   `cmd:"" help:"List the skill catalog"`
	Contacts contactsCmd `cmd:"" help:"Manage recipients"`
	History  historyCmd  `cmd:"" help:"Show or export prompt history"`
	APIKey   apikeyCmd   `cmd:"apikey" help:"Manage provider API keys"`
}

// Update the version as part of the version release process
var version = "0.1.0"

func initLogger() *slog.Logger {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("failed to get user home directory: %w", err))
	}

	logDir := filepath.Join(homeDir, ".local", "share", appName)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		panic(fmt.Errorf("failed to create log directory %s: %w", logDir, err))
	}

	logFile := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, appName+".log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	logLevel := slog.LevelInfo
	if cli.Debug {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return logger
}

func (r *runCmd) Run() error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsTerminal(os.Stdin.Fd()) {
		fmt.Println("This program requires a terminal to run.")
		fmt.Println("Use -p to send a single prompt instead.")
		return nil
	}
	return runInteractive(slog.Default())
}

func (v *versionCmd) Run() error {
	fmt.Printf("skillprompt v%s\n", version)
	if !v.Check {
		return nil
	}

	latest, newer, err := CheckForUpdates(context.Background(), version)
	if err != nil {
		return err
	}
	if newer {
		fmt.Printf("v%s is available: %s\nRun `%s update` to install it.\n", latest.Version, latest.URL, appName)
	} else {
		fmt.Println("You are running the latest version.")
	}
	return nil
}

func (u *updateCmd) Run() error {
	installed, err := SelfUpdate(version)
	if err != nil {
		return err
	}
	fmt.Printf("skillprompt v%s\n", installed)
	return nil
}

func (s *stripCmd) Run() error {
	return stripStream(os.Stdin, os.Stdout, s.Flatten)
}

// stripStream copies in to out without skill tokens
func stripStream(in io.Reader, out io.Writer, flatten bool) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	strip := skilltext.Strip
	if flatten {
		strip = skilltext.Flatten
	}
	_, err = io.WriteString(out, strip(string(data)))
	return err
}

func (s *skillsCmd) Run() error {
	config, err := LoadConfig()
	if err != nil {
		return err
	}

	var contacts []storage.Contact
	if db, err := storage.InitDB(config.Storage.DatabasePath); err == nil {
		defer db.Close()
		contacts, err = storage.NewContactStore(db).ListContacts()
		if err != nil {
			return err
		}
	} else {
		slog.Warn("contacts unavailable", "error", err)
	}

	catalog, err := BuildCatalog(config.Skills, contacts)
	if err != nil {
		return err
	}
	return printCatalog(os.Stdout, catalog)
}

func printCatalog(out io.Writer, catalog *skilltext.Catalog) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TRIGGER\tLABEL\tID\tDESCRIPTION")
	for _, skill := range catalog.Actions() {
		fmt.Fprintf(w, "/\t%s\t%s\t%s\n", skill.Label, skill.ID, skill.Description)
	}
	for _, skill := range catalog.Recipients() {
		fmt.Fprintf(w, "@\t%s\t%s\t%s\n", skill.Label, skill.ID, skill.Description)
	}
	return w.Flush()
}

// openContacts opens the address book of the configured database
func openContacts() (*storage.ContactStore, func(), error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := storage.InitDB(config.Storage.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	return storage.NewContactStore(db), func() { db.Close() }, nil
}

func (c *contactsAddCmd) Run() error {
	contacts, closeDB, err := openContacts()
	if err != nil {
		return err
	}
	defer closeDB()

	contact, err := contacts.AddContact(c.Name, c.Address)
	if err != nil {
		return err
	}
	fmt.Printf("Added @%s\n", contact.Name)
	return nil
}

func (c *contactsListCmd) Run() error {
	contacts, closeDB, err := openContacts()
	if err != nil {
		return err
	}
	defer closeDB()

	list, err := contacts.ListContacts()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Printf("No contacts. Add one with `%s contacts add NAME ADDRESS`.\n", appName)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, contact := range list {
		fmt.Fprintf(w, "@%s\t%s\n", contact.Name, contact.Address)
	}
	return w.Flush()
}

func (c *contactsRemoveCmd) Run() error {
	contacts, closeDB, err := openContacts()
	if err != nil {
		return err
	}
	defer closeDB()

	if err := contacts.RemoveContact(c.Name); err != nil {
		return err
	}
	fmt.Printf("Removed @%s\n", strings.TrimPrefix(c.Name, "@"))
	return nil
}

// workspaceHistory is the prompt history of the working directory
type workspaceHistory struct {
	config    *Config
	db        *storage.DB
	store     *storage.HistoryStore
	workspace WorkspaceInfo
}

func openWorkspaceHistory() (*workspaceHistory, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	db, err := storage.InitDB(config.Storage.DatabasePath)
	if err != nil {
		return nil, err
	}
	dir, err := os.Getwd()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return &workspaceHistory{
		config:    config,
		db:        db,
		store:     storage.NewHistoryStore(db, config.historyConfig()),
		workspace: DetectWorkspace(dir),
	}, nil
}

func (h *workspaceHistory) load(limit int) ([]storage.PromptEntry, error) {
	return h.store.LoadPromptHistory(h.workspace.Root, h.workspace.Branch, limit)
}

func (h *workspaceHistory) catalog() (*skilltext.Catalog, error) {
	contacts, err := storage.NewContactStore(h.db).ListContacts()
	if err != nil {
		return nil, err
	}
	return BuildCatalog(h.config.Skills, contacts)
}

func (c *historyListCmd) Run() error {
	h, err := openWorkspaceHistory()
	if err != nil {
		return err
	}
	defer h.db.Close()

	entries, err := h.load(c.Limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Printf("No prompts sent from %s yet.\n", h.workspace.Label())
		return nil
	}

	for _, entry := range entries {
		text := entry.Plain
		if c.Raw {
			text = entry.Raw
		}
		fmt.Printf("%s  %s\n", entry.Timestamp.Format("2006-01-02 15:04"), strings.ReplaceAll(text, "\n", "⏎ "))
	}
	return nil
}

func (c *historyExportCmd) Run() error {
	h, err := openWorkspaceHistory()
	if err != nil {
		return err
	}
	defer h.db.Close()

	entries, err := h.load(0)
	if err != nil {
		return err
	}
	catalog, err := h.catalog()
	if err != nil {
		return err
	}
	path, err := exportHistory(c.Output, h.workspace, catalog, entries)
	if err != nil {
		return err
	}
	fmt.Printf("Exported %d prompts to %s\n", len(entries), path)
	return nil
}

func (c *historyClearCmd) Run() error {
	h, err := openWorkspaceHistory()
	if err != nil {
		return err
	}
	defer h.db.Close()

	if err := h.store.ClearPromptHistory(h.workspace.Root, h.workspace.Branch); err != nil {
		return err
	}
	fmt.Printf("Cleared the prompt history of %s\n", h.workspace.Label())
	return nil
}

func (c *historyWorkspacesCmd) Run() error {
	h, err := openWorkspaceHistory()
	if err != nil {
		return err
	}
	defer h.db.Close()

	workspaces, err := h.db.ListWorkspaces()
	if err != nil {
		return err
	}
	stats, err := h.db.Stats()
	if err != nil {
		return err
	}

	fmt.Printf("Database: %s (%d prompts, %d contacts)\n\n", h.db.Path(), stats["prompt_history"], stats["contacts"])
	if len(workspaces) == 0 {
		fmt.Println("No workspaces yet.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tROOT\tBRANCH")
	for _, ws := range workspaces {
		branch := ws.Branch
		if branch == "" {
			branch = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", ws.ID, ws.Root, branch)
	}
	return tw.Flush()
}

func (c *historyForgetCmd) Run() error {
	h, err := openWorkspaceHistory()
	if err != nil {
		return err
	}
	defer h.db.Close()

	if err := h.db.DeleteWorkspace(c.ID); err != nil {
		return err
	}
	fmt.Printf("Forgot workspace %d\n", c.ID)
	return nil
}

func (a *apikeySetCmd) Run() error {
	key := a.Key
	if key == "" {
		if isatty.IsTerminal(os.Stdin.Fd()) {
			fmt.Printf("%s API key: ", a.Provider)
		}
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read API key: %w", err)
		}
		key = strings.TrimSpace(line)
	}
	if key == "" {
		return fmt.Errorf("empty API key")
	}

	if err := SaveAPIKeyToKeyring(a.Provider, key); err != nil {
		return err
	}
	fmt.Printf("Saved the %s API key to the keyring\n", a.Provider)
	return nil
}

func (a *apikeyDeleteCmd) Run() error {
	if err := DeleteAPIKeyFromKeyring(a.Provider); err != nil {
		return err
	}
	fmt.Printf("Deleted the %s API key from the keyring\n", a.Provider)
	return nil
}

// askOnce sends one prompt without the TUI and prints the reply
func askOnce(ctx context.Context, out io.Writer, prompt string) error {
	config, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	catalog, err := BuildCatalog(config.Skills, nil)
	if err != nil {
		return err
	}
	model, err := getLLMClient(config)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}

	reply, err := NewConversation(model, catalog).Ask(ctx, strings.TrimSpace(skilltext.Flatten(prompt)))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, reply)
	return err
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name(appName),
		kong.Description("A chat prompt with inline skills: / for actions, @ for recipients."),
		kong.UsageOnError(),
	)

	initLogger()
	slog.Debug("starting", "version", version, "command", ctx.Command())

	if cli.Prompt != "" {
		if err := askOnce(context.Background(), os.Stdout, cli.Prompt); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
