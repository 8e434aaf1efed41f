package main

import (
	"fmt"
	"slices"

	"github.com/afittestide/skillprompt/skilltext"
	"github.com/charmbracelet/lipgloss"
)

const dropdownRows = 6

// Dropdown renders the suggestion list of a skill session
type Dropdown struct {
	window  SelectWindow[skilltext.Skill]
	theme   *Theme
	width   int
	trigger int
}

// NewDropdown creates a suggestion list no wider than width
func NewDropdown(theme *Theme, width int) *Dropdown {
	return &Dropdown{
		window:  NewSelectWindow[skilltext.Skill](dropdownRows),
		theme:   theme,
		width:   width,
		trigger: skilltext.NoTrigger,
	}
}

// SetWidth updates the space available to the list
func (d *Dropdown) SetWidth(width int) {
	d.width = width
}

func sameSkill(a, b skilltext.Skill) bool {
	return a.ID == b.ID
}

// View renders state. A closed list renders as the empty string.
// The list is drawn below the prompt, so only the horizontal offset of the position is applied.
func (d *Dropdown) View(state skilltext.State) string {
	if !state.DropdownOpen || len(state.Filtered) == 0 {
		return ""
	}

	if state.TriggerIndex != d.trigger || !slices.EqualFunc(d.window.Items, state.Filtered, sameSkill) {
		d.window.SetItems(state.Filtered)
		d.trigger = state.TriggerIndex
	}
	body := d.window.Render(state.SelectedIndex, RenderConfig[skilltext.Skill]{
		RenderItem: func(_ int, skill skilltext.Skill, isSelected bool) string {
			row := skill.Label
			if skill.Description != "" {
				row += "  " + d.theme.DropdownHint.Render(skill.Description)
			}
			if isSelected {
				return d.theme.DropdownSelected.Render(row)
			}
			return d.theme.DropdownItem.Render(row)
		},
		Footer: func(selected, total int) string {
			return d.theme.DropdownHint.Render(fmt.Sprintf(" %d/%d", selected+1, total))
		},
	})

	box := d.theme.Dropdown.Render(body)
	left := state.Position.Left
	if d.width > 0 {
		if room := d.width - lipgloss.Width(box); left > room {
			left = room
		}
	}
	if left < 0 {
		left = 0
	}
	return lipgloss.NewStyle().MarginLeft(left).Render(box)
}
