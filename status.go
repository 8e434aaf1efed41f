package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const defaultToastTimeout = 3 * time.Second

// Toast is a short lived notice shown in the status line
type Toast struct {
	Message string
	Created time.Time
	Timeout time.Duration
}

// StatusComponent is the bottom line: workspace on the left, toast or
// waiting time in the middle, provider and model on the right
type StatusComponent struct {
	Provider string
	Model    string
	HasError bool
	Width    int

	theme     *Theme
	workspace WorkspaceInfo
	toast     *Toast

	waitingForResponse bool
	waitingSince       time.Time

	now func() time.Time
}

// NewStatusComponent creates a new status component
func NewStatusComponent(theme *Theme, workspace WorkspaceInfo, width int) *StatusComponent {
	return &StatusComponent{
		Width:     width,
		theme:     theme,
		workspace: workspace,
		now:       time.Now,
	}
}

// SetProvider sets the current provider and model
func (s *StatusComponent) SetProvider(provider, model string) {
	s.Provider = provider
	s.Model = model
}

// SetWidth updates the width of the status component
func (s *StatusComponent) SetWidth(width int) {
	s.Width = width
}

// AddToast replaces the current toast. A zero timeout uses the default.
func (s *StatusComponent) AddToast(message string, timeout time.Duration) {
	if timeout <= 0 {
		timeout = defaultToastTimeout
	}
	s.toast = &Toast{Message: message, Created: s.now(), Timeout: timeout}
}

// CurrentToast returns the message of the live toast, if any
func (s *StatusComponent) CurrentToast() (string, bool) {
	s.expire()
	if s.toast == nil {
		return "", false
	}
	return s.toast.Message, true
}

func (s *StatusComponent) expire() {
	if s.toast != nil && s.now().Sub(s.toast.Created) >= s.toast.Timeout {
		s.toast = nil
	}
}

// StartWaiting marks the status component as waiting for a model response
func (s *StatusComponent) StartWaiting() {
	s.waitingForResponse = true
	s.waitingSince = s.now()
}

// StopWaiting clears the waiting indicator
func (s *StatusComponent) StopWaiting() {
	s.waitingForResponse = false
}

// SetError marks the last model call as failed
func (s *StatusComponent) SetError(failed bool) {
	s.HasError = failed
}

// View renders the status component
func (s *StatusComponent) View() string {
	s.expire()

	left := " " + s.workspace.Label()
	middle := s.renderMiddleSection()
	right := s.renderRightSection()

	leftWidth := lipgloss.Width(left)
	rightWidth := lipgloss.Width(right)
	middleWidth := lipgloss.Width(middle)

	if leftWidth+middleWidth+rightWidth+2 > s.Width {
		left = truncateString(left, s.Width-middleWidth-rightWidth-2)
		leftWidth = lipgloss.Width(left)
	}
	if leftWidth+middleWidth+rightWidth+2 > s.Width {
		middle = ""
		middleWidth = 0
	}

	space := s.Width - leftWidth - middleWidth - rightWidth
	if space < 0 {
		space = 0
	}
	leftSpacing := space / 2
	line := left + strings.Repeat(" ", leftSpacing) + middle + strings.Repeat(" ", space-leftSpacing) + right

	return s.theme.Status.Width(s.Width).MaxHeight(1).Render(line)
}

func (s *StatusComponent) renderMiddleSection() string {
	if s.toast != nil {
		return s.theme.Toast.Render(s.toast.Message)
	}
	if s.waitingForResponse {
		if wait := int(s.now().Sub(s.waitingSince).Seconds()); wait >= 1 {
			return fmt.Sprintf("⏳ %ds", wait)
		}
		return "⏳"
	}
	return ""
}

func (s *StatusComponent) renderRightSection() string {
	icon := "✅"
	if s.HasError {
		icon = "❌"
	}
	return fmt.Sprintf("%s %s ", shortenProviderModel(s.Provider, s.Model), icon)
}

// shortenProviderModel shortens provider and model names for display
func shortenProviderModel(provider, model string) string {
	switch strings.ToLower(provider) {
	case "anthropic":
		provider = "Claude"
	case "openai":
		provider = "GPT"
	case "google", "googleai":
		provider = "Gemini"
	case "ollama":
		provider = "Ollama"
	case "fake", "":
		provider = "Offline"
	}

	if model == "" {
		return provider
	}

	// claude-3-5-haiku-20240307 -> 3.5-haiku, gpt-4o-mini -> 4o-mini
	lower := strings.ToLower(model)
	for _, family := range []string{"claude", "gpt", "gemini"} {
		lower = strings.TrimPrefix(lower, family)
	}
	parts := strings.FieldsFunc(lower, func(r rune) bool {
		return r == '-' || r == ' ' || r == '_'
	})
	kept := parts[:0]
	for _, part := range parts {
		if part == "latest" || (len(part) == 8 && strings.Trim(part, "0123456789") == "") {
			continue
		}
		kept = append(kept, part)
	}
	short := strings.Join(kept, "-")
	short = strings.Replace(short, "3-5", "3.5", 1)
	if short == "" {
		return provider
	}
	return provider + "-" + short
}

// truncateString cuts str to maxWidth cells, ending in "..."
func truncateString(str string, maxWidth int) string {
	if lipgloss.Width(str) <= maxWidth {
		return str
	}
	if maxWidth <= 3 {
		return "..."
	}
	runes := []rune(str)
	for len(runes) > 0 && lipgloss.Width(string(runes))+3 > maxWidth {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
