package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/cheertower/pkg/routine"
)

var (
	colorPink  = lipgloss.Color("205")
	colorCyan  = lipgloss.Color("36")
	colorAmber = lipgloss.Color("220")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	styleHeader  = lipgloss.NewStyle().Bold(true).Foreground(colorPink)
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleLabel   = lipgloss.NewStyle().Foreground(colorGray)
	styleScore   = lipgloss.NewStyle().Bold(true).Foreground(colorAmber)
	styleNote    = lipgloss.NewStyle().Foreground(colorAmber)
	styleDiagram = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim)
)

// Styled renders the routine for a terminal. Colors degrade to plain text
// when the output does not support them.
func Styled(r *routine.Routine) string {
	var b strings.Builder

	b.WriteString(styleHeader.Render("📣 LET'S GO CHEER SQUAD! 📣"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %s   %s %d   %s %d min   %s %s\n",
		styleLabel.Render("Level"), r.Request.Level,
		styleLabel.Render("Team"), r.Request.TeamSize,
		styleLabel.Render("Length"), r.Request.LengthMinutes,
		styleLabel.Render("Focus"), r.Request.Focus)
	b.WriteString(styleScore.Render(fmt.Sprintf("🔥 Difficulty %d/10", r.Difficulty)))
	b.WriteString("\n")

	for i, s := range r.Sections {
		b.WriteString("\n")
		b.WriteString(styleTitle.Render(fmt.Sprintf("%d. %s", i+1, s.Title)))
		b.WriteString("\n")
		b.WriteString(styleLabel.Render(fmt.Sprintf("%s · %s formation", s.Label, s.Formation)))
		b.WriteString("\n")
		if s.Diagram != "" {
			b.WriteString(styleDiagram.Render(s.Diagram))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n💖 ")
	b.WriteString(r.CoachTip)
	b.WriteString("\n")
	for _, n := range r.Notes {
		b.WriteString(styleNote.Render("• " + n))
		b.WriteString("\n")
	}
	return b.String()
}
