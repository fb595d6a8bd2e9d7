package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/nodegraph/pkg/graph"
	"github.com/matzehuels/nodegraph/pkg/lineage"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
	headerStyle  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// RootInfo describes one root offered by the picker.
type RootInfo struct {
	Name    string
	Type    string
	Outputs int // outgoing connections
	Owned   int // nodes whose lineage starts at this root
}

// rootInfos lists the roots of g in node order.
func rootInfos(g *graph.Graph) []RootInfo {
	owned := make(map[string]int)
	for _, root := range lineage.Owners(g) {
		owned[root]++
	}

	roots := g.Roots()
	infos := make([]RootInfo, len(roots))
	for i, n := range roots {
		infos[i] = RootInfo{
			Name:    n.Name,
			Type:    n.Type,
			Outputs: g.OutDegree(n.Name),
			Owned:   owned[n.Name],
		}
	}
	return infos
}

// rootsTable renders root infos as a lipgloss table. cursor is the
// highlighted row, or -1 for none.
func rootsTable(roots []RootInfo, offset, cursor int) *table.Table {
	rows := make([][]string, len(roots))
	for i, r := range roots {
		typ := r.Type
		if typ == "" {
			typ = "—"
		}
		marker := "  "
		if offset+i == cursor {
			marker = "▸ "
		}
		rows[i] = []string{marker, r.Name, typ, strconv.Itoa(r.Outputs), strconv.Itoa(r.Owned)}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Root", "Type", "Outputs", "Lineage").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle()
			if col >= 3 {
				base = base.Foreground(colorGray)
			}
			if offset+row == cursor {
				return base.Foreground(colorGreen).Bold(true)
			}
			return base
		})
}

// =============================================================================
// RootListModel - Interactive hierarchy root selection
// =============================================================================

// RootListModel is the bubbletea model for interactive root selection.
type RootListModel struct {
	Roots    []RootInfo
	Cursor   int
	Selected string
	Height   int
	Offset   int
}

// NewRootListModel creates a new root list model.
func NewRootListModel(roots []RootInfo) RootListModel {
	return RootListModel{
		Roots:  roots,
		Height: 15,
	}
}

func (m RootListModel) Init() tea.Cmd {
	return nil
}

func (m RootListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Roots)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Roots) == 0 {
				return m, nil
			}
			m.Selected = m.Roots[m.Cursor].Name
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m RootListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Hierarchy Root"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Roots))
	b.WriteString(rootsTable(m.Roots[m.Offset:end], m.Offset, m.Cursor).Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Roots))))

	return b.String()
}

// runRootPicker shows the picker on the terminal and returns the chosen
// root, or "" when the user quit without choosing.
func runRootPicker(ctx context.Context, g *graph.Graph) (string, error) {
	p := tea.NewProgram(NewRootListModel(rootInfos(g)), tea.WithContext(ctx), tea.WithOutput(statusOut))
	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}
	fm, ok := finalModel.(RootListModel)
	if !ok {
		return "", nil
	}
	return fm.Selected, nil
}
