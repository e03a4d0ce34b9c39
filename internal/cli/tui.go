package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/lanegraph/pkg/layout"
	"github.com/matzehuels/lanegraph/pkg/render/text"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ViewerModel - Interactive lane browser
// =============================================================================

// rowBlock is the rendered text of one row. node is the index of the line
// holding the node marker; the others are connector transitions.
type rowBlock struct {
	lines []string
	node  int
}

// ViewerModel is the bubbletea model for browsing a layout row by row.
type ViewerModel struct {
	Layout *layout.View
	Cursor int
	Offset int
	Height int // Visible rows

	blocks []rowBlock
}

// NewViewerModel renders every row once and returns the model.
func NewViewerModel(v *layout.View) ViewerModel {
	blocks := make([]rowBlock, len(v.Rows))
	for i, row := range v.Rows {
		out := text.Render(&layout.View{Rows: []layout.Row{row}})
		lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
		node := slices.IndexFunc(lines, func(l string) bool { return strings.ContainsRune(l, '*') })
		blocks[i] = rowBlock{lines: lines, node: max(node, 0)}
	}
	return ViewerModel{Layout: v, Height: 15, blocks: blocks}
}

func (m ViewerModel) Init() tea.Cmd {
	return nil
}

func (m ViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup", "b":
			m.move(-m.Height)
		case "pgdown", " ":
			m.move(m.Height)
		case "home", "g":
			m.move(-len(m.blocks))
		case "end", "G":
			m.move(len(m.blocks))
		}
	case tea.WindowSizeMsg:
		// Rows take up to three lines; keep room for the detail table.
		m.Height = max((msg.Height-16)/2, 3)
		m.move(0)
	}
	return m, nil
}

// move shifts the cursor by delta rows, clamped, and scrolls to keep it
// visible.
func (m *ViewerModel) move(delta int) {
	if len(m.blocks) == 0 {
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), len(m.blocks)-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m ViewerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Lane Graph"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  pgup/pgdn page  g/G first/last  q quit"))
	b.WriteString("\n\n")

	if len(m.blocks) == 0 {
		b.WriteString(listDimStyle.Render("  (no events)"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.blocks))
	for i := m.Offset; i < end; i++ {
		blk := m.blocks[i]
		for j, l := range blk.lines {
			cursor := "  "
			if j == blk.node && i == m.Cursor {
				cursor = listSelectedStyle.Render("▸ ")
			}
			b.WriteString(cursor + l + "\n")
		}
	}
	if m.Layout.Truncated && end == len(m.blocks) {
		b.WriteString(listDimStyle.Render("  ... history truncated"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.detail())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.blocks))))

	return b.String()
}

// detail renders the selected row's event as a key/value table.
func (m ViewerModel) detail() string {
	row := m.Layout.Rows[m.Cursor]
	e := row.Active.Event

	rows := [][]string{
		{"id", e.ID},
		{"lamport", fmt.Sprintf("%d", e.Lamport)},
		{"lane", fmt.Sprintf("%d (column %d)", row.Active.Tid, row.ActiveIndex)},
		{"deps", depsSummary(e.Deps)},
	}
	if n := row.Forks(); n > 0 {
		rows = append(rows, []string{"forks", fmt.Sprintf("%d", n)})
	}
	if n := row.Merges(); n > 0 {
		rows = append(rows, []string{"merges", fmt.Sprintf("%d", n)})
	}
	for _, k := range slices.Sorted(maps.Keys(e.Meta)) {
		rows = append(rows, []string{k, fmt.Sprint(e.Meta[k])})
	}

	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return keyStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}

func depsSummary(deps []string) string {
	if len(deps) == 0 {
		return "—"
	}
	short := make([]string, len(deps))
	for i, d := range deps {
		short[i] = d
		if len(d) > 12 {
			short[i] = d[:12]
		}
	}
	return strings.Join(short, ", ")
}
