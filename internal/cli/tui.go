package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// CycleListModel is the bubbletea model for interactive cycle browsing.
// The selected cycle, if any, is available after the program exits.
type CycleListModel struct {
	Cycles   [][]string
	Cursor   int
	Selected [][]string // single-element slice when a cycle was chosen
	Height   int
	Offset   int
}

// NewCycleListModel creates a new cycle list model.
func NewCycleListModel(cycles [][]string) CycleListModel {
	return CycleListModel{
		Cycles: cycles,
		Height: 15,
	}
}

func (m CycleListModel) Init() tea.Cmd {
	return nil
}

func (m CycleListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Cycles)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Selected = [][]string{m.Cycles[m.Cursor]}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m CycleListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Dependency Cycles"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Cycles) {
		end = len(m.Cycles)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		cycle := m.Cycles[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			fmt.Sprintf("%d", len(cycle)),
			strings.Join(cycle, " "+iconArrow+" "),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Len", "Cycle").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Cycles))))

	return b.String()
}
