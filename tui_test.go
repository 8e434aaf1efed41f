package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/afittestide/skillprompt/skilltext"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms/fake"
)

// mockConfig returns a configuration that keeps tests off disk and the network
func mockConfig() *Config {
	config := defaultConfig()
	config.History.Enabled = false
	config.UI.MarkdownEnabled = false
	config.Skills = []skilltext.Skill{
		{ID: "send", Label: "Send", Description: "Send funds"},
		{ID: "swap", Label: "Swap", Description: "Swap tokens"},
		{ID: "alice", Label: "@alice", Category: skilltext.RecipientCategory},
		{ID: "bob", Label: "@bob", Category: skilltext.RecipientCategory},
	}
	return &config
}

// newTestModel creates a sized model answering with replies
func newTestModel(t *testing.T, replies ...string) TUIModel {
	t.Helper()
	config := mockConfig()
	catalog, err := BuildCatalog(config.Skills, nil)
	require.NoError(t, err)

	conversation := NewConversation(fake.NewFakeLLM(append(replies, "ok")), catalog)
	workspace := WorkspaceInfo{Root: "/work"}
	history := NewPromptHistory(nil, workspace, conversation.ID)

	model := NewTUIModel(config, catalog, workspace, history, conversation)
	m, _ := update(t, *model, tea.WindowSizeMsg{Width: 80, Height: 24})
	return m
}

func update(t *testing.T, m TUIModel, msg tea.Msg) (TUIModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(TUIModel)
	require.True(t, ok)
	return model, cmd
}

func typeText(t *testing.T, m TUIModel, text string) TUIModel {
	t.Helper()
	for _, r := range text {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func pressKey(t *testing.T, m TUIModel, key tea.KeyType) (TUIModel, tea.Cmd) {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: key})
}

func TestTUIModelInit(t *testing.T) {
	m := newTestModel(t)
	require.NotNil(t, m.Init())
}

func TestTUIModelWindowSizeMsg(t *testing.T) {
	m := newTestModel(t)
	m, cmd := update(t, m, tea.WindowSizeMsg{Width: 100, Height: 50})
	require.Nil(t, cmd)
	assert.Equal(t, 100, m.width)
	assert.Equal(t, 50, m.height)
	assert.Equal(t, 100, m.chat.Width)
	assert.Equal(t, 50-m.prompt.Height-3, m.chat.Height)
}

func TestTUIModelSlashOpensDropdown(t *testing.T) {
	m := newTestModel(t)
	m = typeText(t, m, "/s")

	state := m.skills.State()
	require.True(t, state.DropdownOpen)
	require.Len(t, state.Filtered, 2)
	assert.Equal(t, 0, state.TriggerIndex)

	view := m.View()
	assert.Contains(t, view, "Send funds")
	assert.Contains(t, view, "Swap tokens")
	assert.Len(t, strings.Split(view, "\n"), 24)

	m = typeText(t, m, "w")
	state = m.skills.State()
	require.Len(t, state.Filtered, 1)
	assert.Equal(t, "swap", state.Filtered[0].ID)
}

func TestTUIModelTabCommitsAndChains(t *testing.T) {
	m := newTestModel(t)
	m = typeText(t, m, "/se")

	m, cmd := pressKey(t, m, tea.KeyTab)
	require.Nil(t, cmd)
	require.Equal(t, skilltext.Encode("Send"), m.prompt.Value())
	assert.Equal(t, skilltext.EncodedLen("Send"), m.prompt.Caret())

	toast, ok := m.status.CurrentToast()
	require.True(t, ok)
	assert.Equal(t, "Send at 0", toast)

	state := m.skills.State()
	require.True(t, state.DropdownOpen)
	require.True(t, state.PendingRecipient)
	assert.Equal(t, []string{"@alice", "@bob"}, labels(state.Filtered))

	// Enter commits the highlighted recipient instead of submitting
	m, _ = pressKey(t, m, tea.KeyDown)
	m, cmd = pressKey(t, m, tea.KeyEnter)
	require.Nil(t, cmd)
	assert.Equal(t, skilltext.Encode("Send")+skilltext.Encode("@bob"), m.prompt.Value())
	assert.False(t, m.skills.State().DropdownOpen)
	assert.Equal(t, 1, m.chat.Len())
	assert.NotEmpty(t, m.previewView())
}

func TestTUIModelEscapeClosesDropdown(t *testing.T) {
	m := newTestModel(t)
	m = typeText(t, m, "/")
	require.True(t, m.skills.State().DropdownOpen)

	m, _ = pressKey(t, m, tea.KeyEsc)
	assert.False(t, m.skills.State().DropdownOpen)
	assert.Equal(t, "/", m.prompt.Value())
	assert.NotContains(t, m.View(), "Send funds")
}

func TestTUIModelBackspaceDeletesWholeToken(t *testing.T) {
	m := newTestModel(t)
	m = typeText(t, m, "/sw")
	m, _ = pressKey(t, m, tea.KeyTab)
	require.Equal(t, skilltext.Encode("Swap"), m.prompt.Value())

	m, _ = pressKey(t, m, tea.KeyBackspace)
	assert.Equal(t, "", m.prompt.Value())
	assert.Equal(t, 0, m.prompt.Caret())
	assert.Empty(t, m.previewView())
}

func TestTUIModelSubmit(t *testing.T) {
	m := newTestModel(t, "Sent.")
	m = typeText(t, m, "/se")
	m, _ = pressKey(t, m, tea.KeyTab)
	m, _ = pressKey(t, m, tea.KeyEsc)
	m = typeText(t, m, "1 SOL")
	raw := m.prompt.Value()

	m, cmd := pressKey(t, m, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.Equal(t, "", m.prompt.Value())
	assert.True(t, m.waitingForResponse)
	require.Equal(t, 2, m.chat.Len())
	assert.Equal(t, "Send 1 SOL", m.chat.messages[1].text)
	assert.True(t, skilltext.HasSkill(m.chat.messages[1].segments))

	recalled, ok := m.history.Previous("")
	require.True(t, ok)
	assert.Equal(t, raw, recalled)

	reply := m.ask("Send 1 SOL")()
	require.IsType(t, replyMsg{}, reply)
	assert.Equal(t, "Sent.", reply.(replyMsg).text)

	m, _ = update(t, m, reply)
	assert.False(t, m.waitingForResponse)
	require.Equal(t, 3, m.chat.Len())
	assert.Equal(t, roleAI, m.chat.messages[2].role)
}

func TestTUIModelIgnoresEmptyAndBusySubmit(t *testing.T) {
	m := newTestModel(t)

	m, cmd := pressKey(t, m, tea.KeyEnter)
	assert.Nil(t, cmd)
	assert.Equal(t, 1, m.chat.Len())

	m = typeText(t, m, "one")
	m, cmd = pressKey(t, m, tea.KeyEnter)
	require.NotNil(t, cmd)

	m = typeText(t, m, "two")
	m, cmd = pressKey(t, m, tea.KeyEnter)
	assert.Nil(t, cmd)
	assert.Equal(t, "two", m.prompt.Value())
	assert.Equal(t, 2, m.chat.Len())
}

func TestTUIModelHistoryRecall(t *testing.T) {
	m := newTestModel(t)
	m = typeText(t, m, "/se")
	m, _ = pressKey(t, m, tea.KeyTab)
	m, _ = pressKey(t, m, tea.KeyEsc)
	sent := m.prompt.Value()
	m, _ = pressKey(t, m, tea.KeyEnter)
	m, _ = update(t, m, replyMsg{text: "ok"})

	m = typeText(t, m, "draft")
	m, _ = pressKey(t, m, tea.KeyCtrlP)
	assert.Equal(t, sent, m.prompt.Value())
	assert.True(t, skilltext.HasSkill(m.skills.Segments()))
	assert.NotEmpty(t, m.previewView())

	m, _ = pressKey(t, m, tea.KeyCtrlN)
	assert.Equal(t, "draft", m.prompt.Value())
	assert.False(t, skilltext.HasSkill(m.skills.Segments()))
}

func TestTUIModelReplyError(t *testing.T) {
	m := newTestModel(t)
	m.waitingForResponse = true

	m, cmd := update(t, m, replyMsg{err: errors.New("rate limited")})
	require.Nil(t, cmd)
	assert.False(t, m.waitingForResponse)
	assert.True(t, m.status.HasError)
	assert.Equal(t, roleError, m.chat.messages[m.chat.Len()-1].role)
	assert.Contains(t, m.View(), "rate limited")
}

func TestTUIModelWaitingTick(t *testing.T) {
	m := newTestModel(t)

	_, cmd := update(t, m, waitingTickMsg{})
	assert.Nil(t, cmd)

	m.waitingForResponse = true
	_, cmd = update(t, m, waitingTickMsg{})
	assert.NotNil(t, cmd)
}

func TestTUIModelCtrlCQuits(t *testing.T) {
	m := newTestModel(t)
	m, cmd := pressKey(t, m, tea.KeyCtrlC)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Error(t, m.ctx.Err())
}

func TestTUIModelDropdownPlacement(t *testing.T) {
	m := newTestModel(t)
	m = typeText(t, m, "ab/")

	view := m.View()
	lines := strings.Split(view, "\n")
	promptTop := m.chat.Height

	row := -1
	for i, line := range lines {
		if strings.Contains(line, "Send funds") {
			row = i
			break
		}
	}
	require.NotEqual(t, -1, row)
	// the list needs more room than is left below the prompt, so it goes above it
	assert.Less(t, row, promptTop)
}

func labels(skills []skilltext.Skill) []string {
	out := make([]string, 0, len(skills))
	for _, skill := range skills {
		out = append(out, skill.Label)
	}
	return out
}
