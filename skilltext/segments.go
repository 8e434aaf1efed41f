package skilltext

import "strings"

// Segment is a run of text that is either plain or a resolved skill token.
// The text of a skill segment is its label without markers or padding.
type Segment struct {
	Text    string
	IsSkill bool
	Skill   *Skill
}

// Split walks text once and returns its plain and skill segments in order.
//
// Markers in the wrong mode are kept as literal text, so tokens never nest.
// A token whose label is not in the catalog becomes a plain segment holding
// the label. An unterminated token at the end of the text is emitted as plain
// text that still starts with Prefix, so partial tokens stay visible.
func Split(text string, catalog *Catalog) []Segment {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	var segments []Segment
	var buf strings.Builder
	insideSkill := false

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == prefixRune && !insideSkill:
			if buf.Len() > 0 {
				segments = append(segments, Segment{Text: buf.String()})
				buf.Reset()
			}
			insideSkill = true
		case r == suffixRune && insideSkill:
			label := buf.String()
			segment := Segment{Text: label}
			if skill, ok := catalog.Lookup(label); ok {
				segment.IsSkill = true
				segment.Skill = &skill
			}
			segments = append(segments, segment)
			buf.Reset()
			insideSkill = false
			// the padding is part of the token
			i += paddingAt(runes, i+1)
		default:
			buf.WriteRune(r)
		}
	}

	if buf.Len() > 0 {
		rest := buf.String()
		if insideSkill {
			rest = Prefix + rest
		}
		segments = append(segments, Segment{Text: rest})
	}

	return segments
}

// HasSkill reports whether any segment is a resolved skill
func HasSkill(segments []Segment) bool {
	for _, segment := range segments {
		if segment.IsSkill {
			return true
		}
	}
	return false
}

// Skills returns the resolved skills of segments in order
func Skills(segments []Segment) []Skill {
	var skills []Skill
	for _, segment := range segments {
		if segment.IsSkill && segment.Skill != nil {
			skills = append(skills, *segment.Skill)
		}
	}
	return skills
}

// Strip removes every marker and every padding run from text.
// It works on characters, not tokens, so it is safe on malformed text.
func Strip(text string) string {
	return stripWith(text, "")
}

// Flatten is Strip for outgoing prompts: each padding run becomes a single
// space so a label does not run into the word typed after it.
func Flatten(text string) string {
	return stripWith(text, " ")
}

func stripWith(text, padding string) string {
	text = strings.ReplaceAll(text, Prefix, "")
	text = strings.ReplaceAll(text, Suffix, "")
	// removing one run can join the halves of another
	for strings.Contains(text, TrailingPadding) {
		text = strings.ReplaceAll(text, TrailingPadding, padding)
	}
	return text
}
