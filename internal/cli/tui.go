package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/cheertower/pkg/formation"
	"github.com/matzehuels/cheertower/pkg/routine"
	"github.com/matzehuels/cheertower/pkg/timing"
)

// headerRow is the row index table.StyleFunc passes for the header.
const headerRow = -1

// List styles
var (
	tableHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	previewStyle     = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// =============================================================================
// CategoryListModel - Interactive formation picker
// =============================================================================

// categoryKeyMap holds the picker's key bindings.
type categoryKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Grow   key.Binding
	Shrink key.Binding
	Select key.Binding
	Quit   key.Binding
}

func defaultCategoryKeys() categoryKeyMap {
	return categoryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Grow: key.NewBinding(
			key.WithKeys("+", "right", "l"),
			key.WithHelp("→/+", "team size +1"),
		),
		Shrink: key.NewBinding(
			key.WithKeys("-", "left", "h"),
			key.WithHelp("←/-", "team size -1"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("⏎", "select"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k categoryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Shrink, k.Grow, k.Select, k.Quit}
}

func (k categoryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Shrink, k.Grow},
		{k.Select, k.Quit},
	}
}

// CategoryListModel is the bubbletea model for picking a formation category.
// The diagram for the highlighted category is previewed below the table.
type CategoryListModel struct {
	Categories []formation.Category
	TeamSize   int
	Cursor     int
	Selected   *formation.Category

	keys categoryKeyMap
	help help.Model
}

// NewCategoryListModel creates a picker over all formation categories.
func NewCategoryListModel(teamSize int) CategoryListModel {
	return CategoryListModel{
		Categories: formation.Categories(),
		TeamSize:   teamSize,
		keys:       defaultCategoryKeys(),
		help:       help.New(),
	}
}

func (m CategoryListModel) Init() tea.Cmd {
	return nil
}

func (m CategoryListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.Cursor > 0 {
				m.Cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.Cursor < len(m.Categories)-1 {
				m.Cursor++
			}
		case key.Matches(msg, m.keys.Grow):
			if m.TeamSize < routine.MaxTeamSize {
				m.TeamSize++
			}
		case key.Matches(msg, m.keys.Shrink):
			if m.TeamSize > routine.MinTeamSize {
				m.TeamSize--
			}
		case key.Matches(msg, m.keys.Select):
			if len(m.Categories) == 0 {
				return m, tea.Quit
			}
			c := m.Categories[m.Cursor]
			m.Selected = &c
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m CategoryListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Formation"))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  team of %d", m.TeamSize)))
	b.WriteString("\n\n")

	rows := make([][]string, len(m.Categories))
	for i, c := range m.Categories {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows[i] = []string{cursor, c.String(), c.Description()}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Formation", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return tableHeaderStyle
			}
			if row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		})

	b.WriteString(t.Render())
	b.WriteString("\n")

	if len(m.Categories) > 0 {
		d := formation.Render(m.TeamSize, m.Categories[m.Cursor])
		b.WriteString(previewStyle.Render(d.String()))
		b.WriteString("\n")
		if note := diagramNote(d); note != "" {
			b.WriteString(StyleWarning.Render("  " + note))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// diagramNote explains pyramid marker counts that differ from the team size.
func diagramNote(d formation.Diagram) string {
	switch {
	case d.Dropped > 0:
		return fmt.Sprintf("%d athletes past the sixth pod are not drawn", d.Dropped)
	case d.Extra > 0:
		return fmt.Sprintf("last pod drawn full: %d extra markers", d.Extra)
	}
	return ""
}

// =============================================================================
// Static Tables
// =============================================================================

// categoryTable lists every formation with the marker count it draws for
// teamSize athletes.
func categoryTable(teamSize int) string {
	rows := make([][]string, 0, 4)
	for _, c := range formation.Categories() {
		d := formation.Render(teamSize, c)
		rows = append(rows, []string{c.String(), c.Description(), fmt.Sprint(d.Rows), fmt.Sprint(d.Markers())})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Formation", "Description", "Rows", "Markers").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return tableHeaderStyle
			}
			if col == 0 {
				return StyleHighlight
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// routineTable lists saved routines, newest first.
func routineTable(routines []*routine.Routine, now time.Time) string {
	rows := make([][]string, 0, len(routines))
	for _, r := range routines {
		rows = append(rows, []string{
			r.ID,
			r.Request.Level,
			fmt.Sprint(r.Request.TeamSize),
			timing.FormatTime(r.TotalSeconds()),
			r.Request.Focus,
			fmt.Sprintf("%d/10", r.Difficulty),
			formatRelativeTime(r.CreatedAt, now),
		})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Level", "Team", "Length", "Focus", "Difficulty", "Saved").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == headerRow:
				return tableHeaderStyle
			case col == 0:
				return StyleDim
			case col == 5:
				return StyleHighlight
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "—"
	}
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
