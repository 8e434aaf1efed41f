package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/afittestide/skillprompt/skilltext"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultWidth  = 80
	defaultHeight = 24

	slowUpdate = 20 * time.Millisecond
	slowView   = 50 * time.Millisecond
)

type (
	// replyMsg carries the model's answer to a submitted prompt
	replyMsg struct {
		text string
		err  error
	}
	waitingTickMsg struct{}
)

// TUIModel is the interactive prompt: a chat transcript, the preview line,
// the skill-aware text area, and the status line
type TUIModel struct {
	config *Config
	theme  *Theme
	width  int
	height int

	prompt       *PromptComponent
	skills       *skilltext.Session
	chat         *ChatComponent
	dropdown     *Dropdown
	status       *StatusComponent
	history      *PromptHistory
	conversation *Conversation

	waitingForResponse bool
	ctx                context.Context
	cancel             context.CancelFunc
}

// NewTUIModel creates the model and binds a skill session to its prompt
func NewTUIModel(config *Config, catalog *skilltext.Catalog, workspace WorkspaceInfo, history *PromptHistory, conversation *Conversation) *TUIModel {
	theme := NewTheme()
	ctx, cancel := context.WithCancel(context.Background())

	status := NewStatusComponent(theme, workspace, defaultWidth)
	status.SetProvider(config.LLM.Provider, config.LLM.Model)

	prompt := NewPromptComponent(theme, defaultWidth, minPromptHeight)
	prompt.MaxHeight = defaultHeight / 3

	opts := config.sessionOptions()
	opts.OnSelect = func(skill skilltext.Skill, triggerIndex int) {
		status.AddToast(fmt.Sprintf("%s at %d", skill.Label, triggerIndex), 0)
	}
	opts.OnChange = func(event skilltext.ChangeEvent) {
		slog.Debug("prompt rewritten", "caret", event.Caret, "length", len([]rune(event.Value)))
	}

	return &TUIModel{
		config:       config,
		theme:        theme,
		prompt:       prompt,
		skills:       skilltext.NewSession(prompt, catalog, opts),
		chat:         NewChatComponent(theme, defaultWidth, defaultHeight-minPromptHeight-3, config.UI.MarkdownEnabled),
		dropdown:     NewDropdown(theme, defaultWidth),
		status:       status,
		history:      history,
		conversation: conversation,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// shutdown stops a pending model call and releases the prompt
func (m *TUIModel) shutdown() {
	m.cancel()
	m.skills.Detach()
}

// Init implements bubbletea.Model
func (m TUIModel) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements bubbletea.Model
func (m TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	start := time.Now()
	defer func() {
		if duration := time.Since(start); duration > slowUpdate {
			slog.Warn("[bubbletea] Update() SLOW", "duration", duration, "msg_type", fmt.Sprintf("%T", msg))
		}
	}()

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateComponentDimensions()
		return m, nil
	case tea.MouseMsg:
		var cmd tea.Cmd
		*m.chat, cmd = m.chat.Update(msg)
		return m, cmd
	case replyMsg:
		m.stopWaitingForResponse()
		if msg.err != nil {
			slog.Error("model call failed", "error", msg.err)
			m.status.SetError(true)
			m.chat.AddError(msg.err.Error())
			return m, nil
		}
		m.status.SetError(false)
		m.chat.AddAI(msg.text)
		return m, nil
	case waitingTickMsg:
		if m.waitingForResponse {
			return m, waitingTick()
		}
		return m, nil
	}

	return m, m.prompt.Update(msg)
}

func (m TUIModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.shutdown()
		return m, tea.Quit
	case "ctrl+p":
		return m.recallHistory(true)
	case "ctrl+n":
		return m.recallHistory(false)
	case "pgup", "pgdown":
		var cmd tea.Cmd
		*m.chat, cmd = m.chat.Update(msg)
		return m, cmd
	}

	if m.skills.HandleKey(skilltext.Key(msg.String())) {
		m.updateComponentDimensions()
		return m, nil
	}
	if msg.String() == "enter" {
		return m.handleEnterKey()
	}

	value, caret := m.prompt.Value(), m.prompt.Caret()
	cmd := m.prompt.Update(msg)
	if m.prompt.Value() != value || m.prompt.Caret() != caret {
		m.skills.HandleInput()
	}
	m.updateComponentDimensions()
	return m, cmd
}

// handleEnterKey submits the prompt. The dropdown, when open, has already taken Enter.
func (m TUIModel) handleEnterKey() (tea.Model, tea.Cmd) {
	raw := m.prompt.Value()
	plain := strings.TrimSpace(skilltext.Flatten(raw))
	if plain == "" || m.waitingForResponse {
		return m, nil
	}

	segments := skilltext.Split(raw, m.skills.Catalog())
	for _, skill := range skilltext.Skills(segments) {
		slog.Info("skill invoked", "id", skill.ID, "label", skill.Label, "category", skill.Category)
	}
	if err := m.history.Append(raw, plain); err != nil {
		slog.Warn("failed to save prompt history", "error", err)
	}

	m.chat.AddUser(plain, segments)
	m.prompt.Reset()
	m.skills.Reset()
	m.skills.Sync()
	m.updateComponentDimensions()

	return m, tea.Batch(m.startWaitingForResponse(), m.ask(plain))
}

func (m TUIModel) ask(prompt string) tea.Cmd {
	ctx, conversation := m.ctx, m.conversation
	return func() tea.Msg {
		reply, err := conversation.Ask(ctx, prompt)
		return replyMsg{text: reply, err: err}
	}
}

func (m TUIModel) recallHistory(older bool) (tea.Model, tea.Cmd) {
	var (
		entry string
		ok    bool
	)
	if older {
		entry, ok = m.history.Previous(m.prompt.Value())
	} else {
		entry, ok = m.history.Next()
	}
	if !ok {
		return m, nil
	}

	m.prompt.SetValue(entry)
	m.skills.Reset()
	m.skills.Sync()
	m.updateComponentDimensions()
	return m, nil
}

func (m *TUIModel) startWaitingForResponse() tea.Cmd {
	m.waitingForResponse = true
	m.status.StartWaiting()
	return waitingTick()
}

func (m *TUIModel) stopWaitingForResponse() {
	m.waitingForResponse = false
	m.status.StopWaiting()
}

func waitingTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return waitingTickMsg{} })
}

func (m *TUIModel) updateComponentDimensions() {
	if m.width == 0 || m.height == 0 {
		return
	}

	m.prompt.MaxHeight = max(minPromptHeight, m.height/3)
	m.prompt.SetWidth(m.width)
	m.prompt.SetHeight(m.prompt.CalculateDesiredHeight())
	m.status.SetWidth(m.width)
	m.dropdown.SetWidth(m.width)

	previewHeight := 0
	if preview := m.previewView(); preview != "" {
		previewHeight = lipgloss.Height(preview)
	}
	// prompt borders and the status line
	chatHeight := m.height - m.prompt.Height - 2 - 1 - previewHeight
	if m.chat.Width != m.width || m.chat.Height != chatHeight {
		m.chat.SetSize(m.width, chatHeight)
	}
}

func (m TUIModel) previewView() string {
	preview := renderSkillPreview(m.theme, m.skills.Segments())
	if preview == "" {
		return ""
	}
	return lipgloss.NewStyle().Width(m.width).PaddingLeft(1).Render(preview)
}

// View implements bubbletea.Model
func (m TUIModel) View() string {
	start := time.Now()
	defer func() {
		if duration := time.Since(start); duration > slowView {
			slog.Warn("[bubbletea] View() SLOW", "duration", duration)
		}
	}()

	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	parts := []string{m.chat.View()}
	if preview := m.previewView(); preview != "" {
		parts = append(parts, preview)
	}
	promptTop := lipgloss.Height(lipgloss.JoinVertical(lipgloss.Left, parts...))

	promptView := m.prompt.View()
	parts = append(parts, promptView, m.status.View())
	baseView := lipgloss.JoinVertical(lipgloss.Left, parts...)

	return m.overlayDropdown(baseView, promptTop, lipgloss.Height(promptView))
}

// overlayDropdown replaces whole lines of the base view with the suggestion
// list, just under the line holding the trigger. Without room below the
// prompt it goes above it.
func (m TUIModel) overlayDropdown(baseView string, promptTop, promptHeight int) string {
	state := m.skills.State()
	state.Position.Left++ // prompt border
	dialog := m.dropdown.View(state)
	if dialog == "" {
		return baseView
	}

	dialogHeight := lipgloss.Height(dialog)
	top := min(state.Position.Top, promptHeight-1)
	yPos := promptTop + 1 + top
	if yPos+dialogHeight > m.height {
		yPos = promptTop - dialogHeight
	}
	if yPos < 0 {
		yPos = 0
	}

	lines := strings.Split(lipgloss.Place(m.width, m.height, lipgloss.Left, lipgloss.Top, baseView), "\n")
	for i, dialogLine := range strings.Split(dialog, "\n") {
		if yPos+i < len(lines) {
			lines[yPos+i] = dialogLine
		}
	}
	return strings.Join(lines, "\n")
}
