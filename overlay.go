package main

import (
	"strings"

	"github.com/afittestide/skillprompt/skilltext"
)

// renderSkillPreview draws the prompt with its skill tokens as chips.
// Without a resolved skill there is nothing to highlight and it returns "".
func renderSkillPreview(theme *Theme, segments []skilltext.Segment) string {
	if !skilltext.HasSkill(segments) {
		return ""
	}

	var b strings.Builder
	for _, segment := range segments {
		switch {
		case segment.IsSkill && segment.Skill.IsRecipient():
			b.WriteString(theme.RecipientChip.Render(segment.Text))
		case segment.IsSkill:
			b.WriteString(theme.ActionChip.Render(segment.Text))
		case strings.HasPrefix(segment.Text, skilltext.Prefix):
			// an unterminated token is shown without its marker
			b.WriteString(theme.UnknownChip.Render(skilltext.Strip(segment.Text)))
		default:
			b.WriteString(strings.ReplaceAll(segment.Text, "\n", "⏎ "))
		}
	}
	return b.String()
}
