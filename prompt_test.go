package main

import (
	"testing"

	"github.com/afittestide/skillprompt/skilltext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffsetToRowCol(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		offset  int
		wantRow int
		wantCol int
	}{
		{name: "start", value: "abc", offset: 0, wantRow: 0, wantCol: 0},
		{name: "end of single line", value: "abc", offset: 3, wantRow: 0, wantCol: 3},
		{name: "end of first line", value: "ab\ncd", offset: 2, wantRow: 0, wantCol: 2},
		{name: "start of second line", value: "ab\ncd", offset: 3, wantRow: 1, wantCol: 0},
		{name: "inside third line", value: "a\nb\ncde", offset: 6, wantRow: 2, wantCol: 2},
		{name: "past the end clamps", value: "ab\ncd", offset: 99, wantRow: 1, wantCol: 2},
		{name: "negative clamps", value: "ab", offset: -4, wantRow: 0, wantCol: 0},
		{name: "multi-byte runes", value: "é\nñx", offset: 3, wantRow: 1, wantCol: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, col := offsetToRowCol(tt.value, tt.offset)
			assert.Equal(t, tt.wantRow, row)
			assert.Equal(t, tt.wantCol, col)
		})
	}
}

func TestPromptCaretRoundTrip(t *testing.T) {
	p := NewPromptComponent(NewTheme(), 60, 4)
	value := "first line\n" + skilltext.Encode("Send") + "to\nlast"
	p.SetValue(value)
	require.Equal(t, len([]rune(value)), p.Caret())

	for _, offset := range []int{0, 5, 10, 11, 14, 25, 27, 28, len([]rune(value))} {
		p.SetCaret(offset)
		assert.Equal(t, offset, p.Caret(), "offset %d", offset)

		sel := p.Selection()
		assert.Equal(t, offset, sel.Start)
		assert.Equal(t, offset, sel.End)
	}
}

func TestPromptSetSelectionUsesStart(t *testing.T) {
	p := NewPromptComponent(NewTheme(), 40, 2)
	p.SetValue("hello world")
	p.SetSelection(3, 8)
	assert.Equal(t, 3, p.Caret())
}

func TestPromptHeight(t *testing.T) {
	p := NewPromptComponent(NewTheme(), 40, 2)
	p.MaxHeight = 4

	assert.Equal(t, minPromptHeight, p.CalculateDesiredHeight())

	p.SetValue("a\nb\nc")
	assert.Equal(t, 3, p.CalculateDesiredHeight())

	p.SetValue("1\n2\n3\n4\n5\n6")
	assert.Equal(t, 4, p.CalculateDesiredHeight())

	p.SetHeight(10)
	assert.Equal(t, 4, p.Height)
}

func TestPromptReset(t *testing.T) {
	p := NewPromptComponent(NewTheme(), 40, 2)
	p.SetValue("draft")
	p.Reset()
	assert.Equal(t, "", p.Value())
	assert.Equal(t, 0, p.Caret())
}
