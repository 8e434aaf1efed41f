package main

import (
	"strings"

	"github.com/afittestide/skillprompt/skilltext"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	PlaceholderDefault = "Type / for skills, @ for recipients. Enter to send, Ctrl+J for a new line"
	minPromptHeight    = 2
)

// PromptComponent is the text area the user types into.
// It implements skilltext.Surface so a skill session can edit it.
type PromptComponent struct {
	TextArea  textarea.Model
	Width     int
	Height    int
	MaxHeight int
	Style     lipgloss.Style
}

var _ skilltext.Surface = (*PromptComponent)(nil)

// promptKeyMap is the default textarea keymap with Enter left to the host and
// deletion limited to the keys a skill session intercepts
func promptKeyMap() textarea.KeyMap {
	km := textarea.DefaultKeyMap
	km.InsertNewline = key.NewBinding(key.WithKeys("ctrl+j", "alt+enter"))
	km.DeleteCharacterBackward = key.NewBinding(key.WithKeys("backspace"))
	km.DeleteCharacterForward = key.NewBinding(key.WithKeys("delete"))
	km.LineNext = key.NewBinding(key.WithKeys("down"))
	km.LinePrevious = key.NewBinding(key.WithKeys("up"))
	return km
}

// NewPromptComponent creates a new prompt component
func NewPromptComponent(theme *Theme, width, height int) *PromptComponent {
	ta := textarea.New()
	ta.Placeholder = PlaceholderDefault
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.KeyMap = promptKeyMap()
	ta.Prompt = ""
	ta.Focus()

	p := &PromptComponent{
		TextArea: ta,
		Style: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.PromptBorder),
	}
	p.SetWidth(width)
	p.SetHeight(height)
	return p
}

// SetWidth updates the width of the prompt component
func (p *PromptComponent) SetWidth(width int) {
	p.Width = width
	// borders are drawn outside the style width
	p.Style = p.Style.Width(width - 2)
	p.TextArea.SetWidth(width - 2)
}

// SetHeight updates the height of the prompt, bounded by MaxHeight
func (p *PromptComponent) SetHeight(height int) {
	if p.MaxHeight > 0 && height > p.MaxHeight {
		height = p.MaxHeight
	}
	if height < 1 {
		height = 1
	}
	p.Height = height
	p.Style = p.Style.Height(height)
	p.TextArea.SetHeight(height)
}

// CalculateDesiredHeight returns the height that fits the current content
func (p *PromptComponent) CalculateDesiredHeight() int {
	lines := strings.Count(p.TextArea.Value(), "\n") + 1
	if lines < minPromptHeight {
		lines = minPromptHeight
	}
	if p.MaxHeight > 0 && lines > p.MaxHeight {
		return p.MaxHeight
	}
	return lines
}

// Value returns the current text value
func (p *PromptComponent) Value() string {
	return p.TextArea.Value()
}

// SetValue replaces the text; the caret moves to the end
func (p *PromptComponent) SetValue(value string) {
	p.TextArea.SetValue(value)
}

// Reset clears the prompt
func (p *PromptComponent) Reset() {
	p.TextArea.Reset()
}

// Caret returns the caret as a rune offset into Value
func (p *PromptComponent) Caret() int {
	row := p.TextArea.Line()
	info := p.TextArea.LineInfo()
	col := info.StartColumn + info.ColumnOffset

	lines := strings.Split(p.TextArea.Value(), "\n")
	offset := 0
	for i := 0; i < row && i < len(lines); i++ {
		offset += len([]rune(lines[i])) + 1
	}
	return offset + col
}

// Selection reports the caret; the textarea has no range selection
func (p *PromptComponent) Selection() skilltext.Selection {
	caret := p.Caret()
	return skilltext.Selection{Start: caret, End: caret}
}

// SetSelection moves the caret to start
func (p *PromptComponent) SetSelection(start, _ int) {
	p.SetCaret(start)
}

// SetCaret moves the caret to a rune offset into Value
func (p *PromptComponent) SetCaret(offset int) {
	row, col := offsetToRowCol(p.TextArea.Value(), offset)

	// the textarea only moves between lines one step at a time
	for guard := p.TextArea.LineCount() * (p.TextArea.Width() + 2); guard > 0; guard-- {
		current := p.TextArea.Line()
		if current == row {
			break
		}
		if current > row {
			p.TextArea.CursorUp()
		} else {
			p.TextArea.CursorDown()
		}
	}
	p.TextArea.SetCursor(col)
}

// offsetToRowCol maps a rune offset onto the line and column holding it
func offsetToRowCol(value string, offset int) (row, col int) {
	lines := strings.Split(value, "\n")
	if offset < 0 {
		offset = 0
	}
	for i, line := range lines {
		n := len([]rune(line))
		if offset <= n || i == len(lines)-1 {
			if offset > n {
				offset = n
			}
			return i, offset
		}
		offset -= n + 1
	}
	return 0, 0
}

// Focus gives focus to the prompt
func (p *PromptComponent) Focus() {
	p.TextArea.Focus()
}

// Blur removes focus from the prompt
func (p *PromptComponent) Blur() {
	p.TextArea.Blur()
}

// Update lets the textarea apply an edit or caret movement
func (p *PromptComponent) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.TextArea, cmd = p.TextArea.Update(msg)
	return cmd
}

// View renders the prompt component
func (p *PromptComponent) View() string {
	return p.Style.Render(p.TextArea.View())
}
