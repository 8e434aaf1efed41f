package main

import "github.com/charmbracelet/lipgloss"

// Theme defines the colors and styles for the UI.
type Theme struct {
	// Terminal7 color scheme
	PromptBorder     lipgloss.Color
	ChatBorder       lipgloss.Color
	TextColor        lipgloss.Color
	Warning          lipgloss.Color
	Error            lipgloss.Color
	PromptBackground lipgloss.Color
	ChatBackground   lipgloss.Color
	DarkBorder       lipgloss.Color

	// Skill chips in the preview line
	ActionChip    lipgloss.Style
	RecipientChip lipgloss.Style
	UnknownChip   lipgloss.Style

	// Suggestion list
	Dropdown         lipgloss.Style
	DropdownItem     lipgloss.Style
	DropdownSelected lipgloss.Style
	DropdownHint     lipgloss.Style

	Status lipgloss.Style
	Toast  lipgloss.Style

	RenderAI   func(string) lipgloss.Style
	RenderUser func(string) lipgloss.Style
}

// NewTheme creates and returns a new Theme with Terminal7 colors.
func NewTheme() *Theme {
	promptBorder := lipgloss.Color("#F952F9")
	chatBorder := lipgloss.Color("#F4DB53")
	textColor := lipgloss.Color("#01FAFA")
	warning := lipgloss.Color("#F4DB53")
	errorColor := lipgloss.Color("#F54545")
	promptBackground := lipgloss.Color("#271D30")
	chatBackground := lipgloss.Color("#11051E")
	darkBorder := lipgloss.Color("#373702")

	chip := lipgloss.NewStyle().Padding(0, 1).Bold(true)

	return &Theme{
		PromptBorder:     promptBorder,
		ChatBorder:       chatBorder,
		TextColor:        textColor,
		Warning:          warning,
		Error:            errorColor,
		PromptBackground: promptBackground,
		ChatBackground:   chatBackground,
		DarkBorder:       darkBorder,

		ActionChip:    chip.Foreground(chatBackground).Background(textColor),
		RecipientChip: chip.Foreground(chatBackground).Background(promptBorder),
		UnknownChip:   lipgloss.NewStyle().Foreground(warning).Underline(true),

		Dropdown: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(promptBorder).
			Background(promptBackground),
		DropdownItem:     lipgloss.NewStyle().Foreground(textColor).Padding(0, 1),
		DropdownSelected: lipgloss.NewStyle().Foreground(chatBackground).Background(chatBorder).Padding(0, 1),
		DropdownHint:     lipgloss.NewStyle().Foreground(darkBorder).Italic(true),

		Status: lipgloss.NewStyle().Foreground(darkBorder),
		Toast:  lipgloss.NewStyle().Foreground(warning).Bold(true),

		RenderAI: func(text string) lipgloss.Style {
			return lipgloss.NewStyle().Foreground(textColor).SetString(text)
		},
		RenderUser: func(text string) lipgloss.Style {
			return lipgloss.NewStyle().Foreground(promptBorder).SetString(text)
		},
	}
}
