package main

import (
	"log/slog"
	"strings"
	"time"

	"github.com/afittestide/skillprompt/skilltext"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

const (
	aiPrefix     = "🎏  "
	systemPrefix = "🛠️  "
	errorPrefix  = "🦐  "
	userIndent   = 4
)

type chatRole int

const (
	roleSystem chatRole = iota
	roleUser
	roleAI
	roleError
)

type chatMessage struct {
	role chatRole
	text string
	// segments of a user prompt, used to draw its skills as chips
	segments []skilltext.Segment
}

// ChatComponent is the scrolling transcript above the prompt
type ChatComponent struct {
	Viewport viewport.Model
	Width    int
	Height   int

	messages         []chatMessage
	theme            *Theme
	markdownRenderer *glamour.TermRenderer
	userScrolled     bool
}

// NewChatComponent creates a chat transcript. The markdown renderer is only
// built when markdown is enabled.
func NewChatComponent(theme *Theme, width, height int, markdownEnabled bool) *ChatComponent {
	c := &ChatComponent{
		Viewport: viewport.New(width, height),
		Width:    width,
		Height:   height,
		theme:    theme,
	}

	if markdownEnabled {
		start := time.Now()
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(0), // wrapping happens in renderMarkdown at the current width
		)
		slog.Debug("markdown renderer initialized", "duration", time.Since(start), "error", err)
		if err == nil {
			c.markdownRenderer = renderer
		}
	}

	c.AddSystem("New session at " + time.Now().Format("2 January, 3:04 PM MST"))
	return c
}

// SetSize updates the width & height of the chat component
func (c *ChatComponent) SetSize(width, height int) {
	if height < 0 {
		height = 0
	}
	c.Width = width
	c.Height = height
	c.Viewport.Width = width
	c.Viewport.Height = height
	c.UpdateContent()
}

// AddUser appends a submitted prompt, given as the segments of its raw text
func (c *ChatComponent) AddUser(plain string, segments []skilltext.Segment) {
	c.add(chatMessage{role: roleUser, text: plain, segments: segments})
}

// AddAI appends a model reply
func (c *ChatComponent) AddAI(text string) {
	c.add(chatMessage{role: roleAI, text: text})
}

// AddSystem appends an informational line
func (c *ChatComponent) AddSystem(text string) {
	c.add(chatMessage{role: roleSystem, text: text})
}

// AddError appends a failure
func (c *ChatComponent) AddError(text string) {
	c.add(chatMessage{role: roleError, text: text})
}

// Len returns the number of messages in the transcript
func (c *ChatComponent) Len() int {
	return len(c.messages)
}

func (c *ChatComponent) add(message chatMessage) {
	c.messages = append(c.messages, message)
	c.userScrolled = false
	c.UpdateContent()
}

// UpdateContent re-renders every message at the current width
func (c *ChatComponent) UpdateContent() {
	views := make([]string, 0, len(c.messages))
	for _, message := range c.messages {
		views = append(views, c.renderMessage(message))
	}
	c.Viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, views...))
	if !c.userScrolled {
		c.Viewport.GotoBottom()
	}
}

func (c *ChatComponent) renderMessage(message chatMessage) string {
	switch message.role {
	case roleUser:
		body := renderSkillPreview(c.theme, message.segments)
		if body == "" {
			body = wordwrap.String(message.text, c.wrapWidth(userIndent))
		}
		indent := strings.Repeat(" ", userIndent)
		lines := strings.Split(body, "\n")
		for i := range lines {
			lines[i] = indent + lines[i]
		}
		return c.theme.RenderUser(strings.Join(lines, "\n")).String()
	case roleAI:
		return aiPrefix + c.renderMarkdown(message.text)
	case roleError:
		return lipgloss.NewStyle().Foreground(c.theme.Error).
			Render(errorPrefix + wordwrap.String(message.text, c.wrapWidth(4)))
	default:
		return c.theme.RenderAI(systemPrefix + wordwrap.String(message.text, c.wrapWidth(4))).String()
	}
}

func (c *ChatComponent) renderMarkdown(content string) string {
	if c.markdownRenderer == nil {
		return strings.TrimSpace(wordwrap.String(content, c.wrapWidth(4)))
	}
	rendered, err := c.markdownRenderer.Render(content)
	if err != nil {
		slog.Debug("markdown render failed", "error", err)
		return strings.TrimSpace(wordwrap.String(content, c.wrapWidth(4)))
	}
	return strings.TrimSpace(wordwrap.String(rendered, c.wrapWidth(4)))
}

func (c *ChatComponent) wrapWidth(margin int) int {
	if w := c.Width - margin; w > 0 {
		return w
	}
	return 1
}

// Update scrolls the transcript with the mouse wheel and page keys
func (c ChatComponent) Update(msg tea.Msg) (ChatComponent, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			c.Viewport.ScrollUp(1)
			c.userScrolled = true
		case tea.MouseButtonWheelDown:
			c.Viewport.ScrollDown(1)
			c.userScrolled = !c.Viewport.AtBottom()
		}
		return c, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "pgup":
			c.Viewport.HalfPageUp()
			c.userScrolled = true
		case "pgdown":
			c.Viewport.HalfPageDown()
			c.userScrolled = !c.Viewport.AtBottom()
		}
		return c, nil
	}
	var cmd tea.Cmd
	c.Viewport, cmd = c.Viewport.Update(msg)
	return c, cmd
}

// View renders the chat component
func (c ChatComponent) View() string {
	return lipgloss.NewStyle().Width(c.Width).Height(c.Height).Render(c.Viewport.View())
}
