package main

import (
	"fmt"
	"strings"
)

// SelectWindow is a scrolling window over a list of items with one selected row
type SelectWindow[T any] struct {
	Items      []T
	MaxVisible int
	offset     int
}

// NewSelectWindow creates a select window showing up to maxVisible rows
func NewSelectWindow[T any](maxVisible int) SelectWindow[T] {
	if maxVisible < 1 {
		maxVisible = 1
	}
	return SelectWindow[T]{MaxVisible: maxVisible}
}

// SetItems replaces the items and scrolls back to the top
func (s *SelectWindow[T]) SetItems(items []T) {
	s.Items = items
	s.offset = 0
}

// Follow scrolls the window so selected is visible
func (s *SelectWindow[T]) Follow(selected int) {
	if selected < s.offset {
		s.offset = selected
	}
	if selected >= s.offset+s.MaxVisible {
		s.offset = selected - s.MaxVisible + 1
	}
	maxOffset := len(s.Items) - s.MaxVisible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if s.offset > maxOffset {
		s.offset = maxOffset
	}
	if s.offset < 0 {
		s.offset = 0
	}
}

// Visible returns the bounds of the rows currently shown
func (s *SelectWindow[T]) Visible() (start, end int) {
	start = s.offset
	end = start + s.MaxVisible
	if end > len(s.Items) {
		end = len(s.Items)
	}
	return start, end
}

// RenderConfig holds callbacks for customization
type RenderConfig[T any] struct {
	// RenderItem renders a single row; i is the absolute index in Items
	RenderItem func(i int, item T, isSelected bool) string
	// Footer is appended when some rows are scrolled out of view
	Footer func(selected, total int) string
}

// Render renders the visible rows with the given selection
func (s *SelectWindow[T]) Render(selected int, config RenderConfig[T]) string {
	s.Follow(selected)
	start, end := s.Visible()

	var rows []string
	for i := start; i < end; i++ {
		isSelected := i == selected
		if config.RenderItem != nil {
			rows = append(rows, config.RenderItem(i, s.Items[i], isSelected))
			continue
		}
		prefix := "  "
		if isSelected {
			prefix = "▶ "
		}
		rows = append(rows, fmt.Sprintf("%s%v", prefix, s.Items[i]))
	}

	if len(s.Items) > s.MaxVisible && config.Footer != nil {
		rows = append(rows, config.Footer(selected, len(s.Items)))
	}
	return strings.Join(rows, "\n")
}
