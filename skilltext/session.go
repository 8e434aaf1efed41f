package skilltext

import (
	"log/slog"
	"strings"
)

// Key names a key press the session reacts to. The values match the key
// strings Bubble Tea reports, so hosts can pass Key(msg.String()).
type Key string

const (
	KeyTab       Key = "tab"
	KeyEnter     Key = "enter"
	KeyEscape    Key = "esc"
	KeyUp        Key = "up"
	KeyDown      Key = "down"
	KeyBackspace Key = "backspace"
	KeyDelete    Key = "delete"
)

const (
	// NoTrigger is the TriggerIndex of a session without an open suggestion list
	NoTrigger = -1

	// DefaultChainSkillID names the skill whose commit opens the recipient picker
	DefaultChainSkillID = "send"

	defaultLineHeight = 24
	defaultCharWidth  = 8
)

// Selection is the caret or selected range of a surface, in rune offsets
type Selection struct {
	Start int
	End   int
}

// Surface is the editable text a Session drives
type Surface interface {
	Value() string
	SetValue(value string)
	Selection() Selection
	SetSelection(start, end int)
}

// Position is the approximate offset of the suggestion list from the top-left of the surface
type Position struct {
	Top  int
	Left int
}

// ChangeEvent carries the buffer after a session rewrote it
type ChangeEvent struct {
	Value string
	Caret int
}

// Options configures a Session. Zero values select the defaults.
type Options struct {
	// OnSelect runs after a skill is committed, with the offset it replaced from
	OnSelect func(skill Skill, triggerIndex int)
	// OnChange runs after every buffer rewrite made by the session
	OnChange func(ChangeEvent)
	// LineHeight and CharWidth drive the fixed-metric dropdown position heuristic
	LineHeight int
	CharWidth  int
	// ChainSkillID is the action skill that chains into the recipient picker
	ChainSkillID string
}

// State is the suggestion state a renderer needs
type State struct {
	DropdownOpen     bool
	Position         Position
	SelectedIndex    int
	Filtered         []Skill
	TriggerIndex     int
	PendingRecipient bool
}

// Selected returns the highlighted suggestion, if the list is open and non-empty
func (s State) Selected() (Skill, bool) {
	if !s.DropdownOpen || s.SelectedIndex < 0 || s.SelectedIndex >= len(s.Filtered) {
		return Skill{}, false
	}
	return s.Filtered[s.SelectedIndex], true
}

// Session owns the skill editing state of one text surface.
// It is not safe for concurrent use; hosts call it from a single event loop.
type Session struct {
	surface  Surface
	catalog  *Catalog
	opts     Options
	state    State
	segments []Segment
	// typedAt is set when the recipient sub-session was opened by typing "@"
	typedAt bool
}

// NewSession binds a session to a surface and a catalog
func NewSession(surface Surface, catalog *Catalog, opts Options) *Session {
	if opts.LineHeight <= 0 {
		opts.LineHeight = defaultLineHeight
	}
	if opts.CharWidth <= 0 {
		opts.CharWidth = defaultCharWidth
	}
	if opts.ChainSkillID == "" {
		opts.ChainSkillID = DefaultChainSkillID
	}

	s := &Session{
		surface: surface,
		catalog: catalog,
		opts:    opts,
		state:   State{TriggerIndex: NoTrigger},
	}
	s.Sync()
	return s
}

// State returns a copy of the current suggestion state
func (s *Session) State() State {
	st := s.state
	st.Filtered = append([]Skill(nil), s.state.Filtered...)
	return st
}

// Segments returns the segments of the buffer as of the last event
func (s *Session) Segments() []Segment {
	return s.segments
}

// Catalog returns the catalog the session filters
func (s *Session) Catalog() *Catalog {
	return s.catalog
}

// Detach drops the surface; every later event is a no-op
func (s *Session) Detach() {
	s.surface = nil
	s.close()
	s.segments = nil
}

// Sync re-reads the buffer after the host changed it outside the session
func (s *Session) Sync() {
	if s.surface == nil {
		return
	}
	s.segments = Split(s.surface.Value(), s.catalog)
}

// Reset closes any open suggestion list
func (s *Session) Reset() {
	s.close()
}

// HandleInput runs trigger detection after the buffer or caret changed
func (s *Session) HandleInput() {
	if s.surface == nil {
		return
	}
	s.detectTrigger()
	s.Sync()
}

// HandleKey reacts to a key press before the surface applies it.
// It returns true when the session consumed the key and the host must
// suppress its default behavior.
func (s *Session) HandleKey(key Key) bool {
	if s.surface == nil {
		return false
	}

	if s.state.DropdownOpen {
		switch key {
		case KeyTab, KeyEnter:
			if selected, ok := s.state.Selected(); ok {
				s.SelectSkill(selected)
			}
			return true
		case KeyEscape:
			s.close()
			return true
		case KeyDown:
			if s.state.SelectedIndex < len(s.state.Filtered)-1 {
				s.state.SelectedIndex++
			}
			return true
		case KeyUp:
			if s.state.SelectedIndex > 0 {
				s.state.SelectedIndex--
			}
			return true
		}
	}

	if key == KeyBackspace || key == KeyDelete {
		sel := s.surface.Selection()
		if sel.Start != sel.End {
			return false
		}
		target := sel.Start
		if key == KeyBackspace {
			target--
		}
		return s.removeTokenAt(target)
	}

	return false
}

// SelectSkill commits skill at the open trigger. Without a trigger it does nothing.
func (s *Session) SelectSkill(skill Skill) {
	if s.surface == nil || s.state.TriggerIndex == NoTrigger {
		return
	}

	runes := []rune(s.surface.Value())
	start := clamp(s.state.TriggerIndex, 0, len(runes))
	caret := clamp(s.surface.Selection().Start, start, len(runes))

	token := Encode(skill.Label)
	value := string(runes[:start]) + token + string(runes[caret:])
	newCaret := start + EncodedLen(skill.Label)

	slog.Debug("skill.commit", "skill", skill.ID, "trigger", start, "recipient", s.state.PendingRecipient)

	s.close()
	if s.opts.OnSelect != nil {
		s.opts.OnSelect(skill, start)
	}
	s.applyMutation(value, newCaret)

	if skill.ID == s.opts.ChainSkillID && !skill.IsRecipient() {
		if recipients := s.catalog.Recipients(); len(recipients) > 0 {
			s.openRecipients(value, newCaret, recipients)
		}
	}
}

// removeTokenAt deletes the whole token covering the rune at target
func (s *Session) removeTokenAt(target int) bool {
	value := s.surface.Value()
	runes := []rune(value)
	r, ok := rangeAt(runes, target)
	// RangeAt also matches a caret resting right after a token; a deletion
	// there targets the next character, not the token.
	if !ok || target >= r.End {
		return false
	}

	slog.Debug("skill.delete", "start", r.Start, "end", r.End)
	s.applyMutation(string(runes[:r.Start])+string(runes[r.End:]), r.Start)
	s.detectTrigger()
	return true
}

// applyMutation is the single path every session rewrite goes through
func (s *Session) applyMutation(value string, caret int) {
	s.surface.SetValue(value)
	s.surface.SetSelection(caret, caret)
	if s.opts.OnChange != nil {
		s.opts.OnChange(ChangeEvent{Value: value, Caret: caret})
	}
	s.segments = Split(value, s.catalog)
}

func (s *Session) detectTrigger() {
	runes := []rune(s.surface.Value())
	caret := clamp(s.surface.Selection().Start, 0, len(runes))
	before := runes[:caret]

	if s.state.PendingRecipient {
		trigger := s.state.TriggerIndex
		if trigger < 0 || trigger > caret || (s.typedAt && (trigger >= len(runes) || runes[trigger] != '@')) {
			s.close()
			return
		}
		query := string(runes[trigger:caret])
		if breaksQuery(query) {
			s.close()
			return
		}
		s.showRecipients(runes, trigger, s.catalog.FilterRecipients(query))
		return
	}

	if slash := lastIndex(before, '/'); slash != -1 {
		query := string(before[slash+1:])
		if !breaksQuery(query) {
			if matches := s.catalog.FilterActions(query); len(matches) > 0 {
				s.open(runes, slash, matches)
				return
			}
		}
	}

	if at := lastIndex(before, '@'); at != -1 {
		query := string(before[at+1:])
		if !breaksQuery(query) {
			if matches := s.catalog.FilterRecipients(query); len(matches) > 0 {
				s.open(runes, at, matches)
				s.state.PendingRecipient = true
				s.typedAt = true
				return
			}
		}
	}

	s.close()
}

func (s *Session) openRecipients(value string, trigger int, recipients []Skill) {
	s.open([]rune(value), trigger, recipients)
	s.state.PendingRecipient = true
	s.typedAt = false
}

// showRecipients keeps a recipient sub-session alive; with no matches the
// list hides but the sub-session keeps its trigger until a space ends it.
func (s *Session) showRecipients(runes []rune, trigger int, matches []Skill) {
	if len(matches) == 0 {
		s.state.DropdownOpen = false
		s.state.Filtered = nil
		s.state.SelectedIndex = 0
		return
	}
	s.open(runes, trigger, matches)
	s.state.PendingRecipient = true
}

func (s *Session) open(runes []rune, trigger int, matches []Skill) {
	s.state = State{
		DropdownOpen:  true,
		Position:      s.position(runes[:trigger]),
		SelectedIndex: 0,
		Filtered:      matches,
		TriggerIndex:  trigger,
	}
}

func (s *Session) close() {
	s.state = State{TriggerIndex: NoTrigger}
	s.typedAt = false
}

// position approximates where the list goes, assuming fixed line and character metrics.
// It anchors at the trigger, so the list stays put while the query is typed.
func (s *Session) position(before []rune) Position {
	lines := strings.Split(string(before), "\n")
	last := []rune(lines[len(lines)-1])
	return Position{
		Top:  len(lines) * s.opts.LineHeight,
		Left: len(last) * s.opts.CharWidth,
	}
}

func breaksQuery(query string) bool {
	return strings.ContainsAny(query, " \n")
}

func lastIndex(runes []rune, r rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == r {
			return i
		}
	}
	return -1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
