// Package skilltext encodes skills as invisible-delimited tokens inside
// free text, splits such text back into plain and skill segments, and runs
// the "/" and "@" suggestion state machine for an editable text surface.
//
// All offsets in this package are rune offsets.
package skilltext

const (
	// Prefix opens a skill token (INVISIBLE SEPARATOR)
	Prefix = "\u2063"
	// Suffix closes a skill token (INVISIBLE PLUS)
	Suffix = "\u2064"
	// TrailingPadding follows every encoded token so the highlighted chip keeps room after the label
	TrailingPadding = "\u2009 \u2009 \u2009 \u2009 "

	prefixRune = '\u2063'
	suffixRune = '\u2064'
)

var paddingRunes = []rune(TrailingPadding)

// Range is a half-open span [Start, End) of rune offsets
type Range struct {
	Start int
	End   int
}

// Len returns the number of runes in the range
func (r Range) Len() int {
	return r.End - r.Start
}

// Encode wraps a label into a skill token
func Encode(label string) string {
	return Prefix + label + Suffix + TrailingPadding
}

// EncodedLen returns the rune length of Encode(label)
func EncodedLen(label string) int {
	return len([]rune(label)) + 2 + len(paddingRunes)
}

// RangeAt finds the token that contains index or ends right at it.
// The token span covers the prefix, the label, the suffix and whatever part
// of the trailing padding is still present. A prefix that is followed by
// another prefix before any suffix is unterminated and yields no range.
func RangeAt(text string, index int) (Range, bool) {
	return rangeAt([]rune(text), index)
}

func rangeAt(runes []rune, index int) (Range, bool) {
	if index < 0 || index > len(runes) {
		return Range{}, false
	}

	start := -1
	for i := min(index, len(runes)-1); i >= 0; i-- {
		if runes[i] == prefixRune {
			start = i
			break
		}
	}
	if start == -1 {
		return Range{}, false
	}

	suffix := -1
	for i := start + 1; i < len(runes); i++ {
		if runes[i] == suffixRune {
			suffix = i
			break
		}
		if runes[i] == prefixRune {
			return Range{}, false
		}
	}
	if suffix == -1 {
		return Range{}, false
	}

	end := suffix + 1 + paddingAt(runes, suffix+1)
	if index > end {
		return Range{}, false
	}
	return Range{Start: start, End: end}, true
}

// paddingAt counts how many runes starting at pos match the beginning of TrailingPadding
func paddingAt(runes []rune, pos int) int {
	n := 0
	for n < len(paddingRunes) && pos+n < len(runes) && runes[pos+n] == paddingRunes[n] {
		n++
	}
	return n
}
