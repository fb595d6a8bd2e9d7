package cli

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/nodegraph/pkg/graph"
	"github.com/matzehuels/nodegraph/pkg/session/sessiontest"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m RootListModel, keys ...string) (RootListModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(RootListModel)
	}
	return m, cmd
}

func TestRootInfos(t *testing.T) {
	g, err := graph.Build(sessiontest.New().
		Node("1", "Read1").
		Node("2", "Grade1").
		Node("3", "Write1").
		Node("4", "Read2").
		Link("1", "2").
		Link("2", "3").
		Link("4", "3").
		Doc())
	require.NoError(t, err)

	infos := rootInfos(g)
	require.Len(t, infos, 2)
	assert.Equal(t, RootInfo{Name: "Read1", Outputs: 1, Owned: 3}, infos[0])
	assert.Equal(t, RootInfo{Name: "Read2", Outputs: 1, Owned: 1}, infos[1])
}

func TestRootListModel(t *testing.T) {
	roots := []RootInfo{{Name: "a"}, {Name: "b"}, {Name: "c"}}

	t.Run("navigate and select", func(t *testing.T) {
		m, cmd := press(NewRootListModel(roots), "down", "j", "enter")
		assert.Equal(t, "c", m.Selected)
		assert.NotNil(t, cmd, "enter should quit")
	})

	t.Run("cursor stays in bounds", func(t *testing.T) {
		m, _ := press(NewRootListModel(roots), "up", "k", "down", "down", "down", "down")
		assert.Equal(t, 2, m.Cursor)
	})

	t.Run("quit without selection", func(t *testing.T) {
		m, cmd := press(NewRootListModel(roots), "down", "q")
		assert.Empty(t, m.Selected)
		assert.NotNil(t, cmd)
	})

	t.Run("scrolls with the cursor", func(t *testing.T) {
		m := NewRootListModel(roots)
		m.Height = 2
		m, _ = press(m, "down", "down")
		assert.Equal(t, 1, m.Offset)
		m, _ = press(m, "up", "up")
		assert.Equal(t, 0, m.Offset)
	})

	t.Run("view lists visible roots", func(t *testing.T) {
		m := NewRootListModel(roots)
		m.Height = 2
		view := m.View()
		assert.Contains(t, view, "Select Hierarchy Root")
		assert.Contains(t, view, "a")
		assert.NotContains(t, view, " c ")
		assert.Contains(t, view, "[1/3]")
	})

	t.Run("empty list ignores enter", func(t *testing.T) {
		m, cmd := press(NewRootListModel(nil), "enter")
		assert.Empty(t, m.Selected)
		assert.Nil(t, cmd)
	})
}
