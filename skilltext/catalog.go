package skilltext

import (
	"fmt"
	"strings"
)

// RecipientCategory marks skills offered by the recipient picker (@) instead of the action picker (/)
const RecipientCategory = "recipient"

// Skill is a catalog entry that can be embedded in prompt text as a token
type Skill struct {
	ID          string `koanf:"id"`
	Label       string `koanf:"label"`
	Category    string `koanf:"category"`
	Description string `koanf:"description"`
}

// IsRecipient reports whether the skill belongs to the recipient picker
func (s Skill) IsRecipient() bool {
	return s.Category == RecipientCategory
}

// Catalog is a read-only set of skills, partitioned into actions and recipients.
// A Catalog is never mutated after NewCatalog returns, so sessions may share one.
type Catalog struct {
	skills     []Skill
	actions    []Skill
	recipients []Skill
}

// NewCatalog validates the skills and builds a catalog preserving their order
func NewCatalog(skills ...Skill) (*Catalog, error) {
	c := &Catalog{}
	seen := make(map[string]bool, len(skills))
	for _, skill := range skills {
		if skill.ID == "" {
			return nil, fmt.Errorf("skill %q has no id", skill.Label)
		}
		if seen[skill.ID] {
			return nil, fmt.Errorf("duplicate skill id %q", skill.ID)
		}
		if skill.Label == "" {
			return nil, fmt.Errorf("skill %q has no label", skill.ID)
		}
		if strings.ContainsAny(skill.Label, Prefix+Suffix) {
			return nil, fmt.Errorf("skill %q label contains token markers", skill.ID)
		}
		seen[skill.ID] = true

		c.skills = append(c.skills, skill)
		if skill.IsRecipient() {
			c.recipients = append(c.recipients, skill)
		} else {
			c.actions = append(c.actions, skill)
		}
	}
	return c, nil
}

// MustCatalog is NewCatalog for static skill lists; it panics on invalid input
func MustCatalog(skills ...Skill) *Catalog {
	c, err := NewCatalog(skills...)
	if err != nil {
		panic(err)
	}
	return c
}

// All returns every skill in catalog order
func (c *Catalog) All() []Skill {
	if c == nil {
		return nil
	}
	return append([]Skill(nil), c.skills...)
}

// Actions returns the skills offered after "/"
func (c *Catalog) Actions() []Skill {
	if c == nil {
		return nil
	}
	return append([]Skill(nil), c.actions...)
}

// Recipients returns the skills offered after "@" or after a chaining skill
func (c *Catalog) Recipients() []Skill {
	if c == nil {
		return nil
	}
	return append([]Skill(nil), c.recipients...)
}

// Lookup finds a skill by label, ignoring case
func (c *Catalog) Lookup(label string) (Skill, bool) {
	if c == nil {
		return Skill{}, false
	}
	for _, skill := range c.skills {
		if strings.EqualFold(skill.Label, label) {
			return skill, true
		}
	}
	return Skill{}, false
}

// Get finds a skill by id
func (c *Catalog) Get(id string) (Skill, bool) {
	if c == nil {
		return Skill{}, false
	}
	for _, skill := range c.skills {
		if skill.ID == id {
			return skill, true
		}
	}
	return Skill{}, false
}

// FilterActions returns the action skills whose label starts with query, ignoring case
func (c *Catalog) FilterActions(query string) []Skill {
	if c == nil {
		return nil
	}
	return filterByPrefix(c.actions, query, false)
}

// FilterRecipients returns the recipient skills matching query.
// A leading "@" is ignored on both the query and the labels; an empty query matches all.
func (c *Catalog) FilterRecipients(query string) []Skill {
	if c == nil {
		return nil
	}
	return filterByPrefix(c.recipients, strings.TrimPrefix(query, "@"), true)
}

func filterByPrefix(skills []Skill, query string, trimAt bool) []Skill {
	query = strings.ToLower(query)
	var matches []Skill
	for _, skill := range skills {
		label := skill.Label
		if trimAt {
			label = strings.TrimPrefix(label, "@")
		}
		if strings.HasPrefix(strings.ToLower(label), query) {
			matches = append(matches, skill)
		}
	}
	return matches
}
