package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"chunkwise/internal/models"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.state == stateComplete && m.form != nil {
		return docStyle.Render(m.form.View())
	}

	var b strings.Builder
	if !m.loaded {
		b.WriteString(headerStyle.Render("chunkwise"))
		b.WriteString("\n\n")
		b.WriteString(m.loadErr)
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("Create one with: chunkwise plan new --budget <minutes>"))
		b.WriteString("\n\n")
		b.WriteString(m.help.View(m.keys))
		return docStyle.Render(b.String())
	}

	header := fmt.Sprintf("Plan %s [%s] %s / %s budget",
		m.view.Date, m.view.Status, m.view.EnergyMode, fmtMin(m.view.TimeBudget))
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(m.budgetBar())
	b.WriteString("\n\n")

	if len(m.view.Items) == 0 {
		b.WriteString(dimStyle.Render("No items yet. Add some with: chunkwise plan suggest"))
		b.WriteString("\n")
	}
	for i, it := range m.view.Items {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}
		title := "(chunk deleted)"
		duration := ""
		if it.Chunk != nil {
			title = it.Chunk.Title
			duration = " " + dimStyle.Render(fmtMin(it.Chunk.DurationMin))
		}
		line := fmt.Sprintf("[%s] %s%s", it.Status, title, duration)
		switch {
		case it.Status == models.ItemStatusInProgress:
			line = runningStyle.Render(line)
		case itemDone(it.Status):
			line = doneStyle.Render(line)
		}
		if it.Locked {
			line += dimStyle.Render(" *")
		}
		b.WriteString(cursor + line + "\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return docStyle.Render(b.String())
}

// budgetBar renders planned minutes against the time budget; the overrun
// portion, if any, is drawn in red.
func (m Model) budgetBar() string {
	const width = 40
	planned := 0
	for _, it := range m.view.Items {
		if it.Chunk != nil && it.Status != models.ItemStatusSkipped {
			planned += it.Chunk.DurationMin
		}
	}
	if m.view.TimeBudget <= 0 {
		return ""
	}
	fill := planned * width / m.view.TimeBudget
	over := 0
	if fill > width {
		over = fill - width
		if over > width {
			over = width
		}
		fill = width
	}
	bar := barFillStyle.Render(strings.Repeat("█", fill)) +
		dimStyle.Render(strings.Repeat("░", width-fill))
	if over > 0 {
		bar += barOverStyle.Render(strings.Repeat("█", over))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, bar,
		dimStyle.Render(fmt.Sprintf(" %s planned", fmtMin(planned))))
}

func fmtMin(min int) string {
	if min < 60 {
		return fmt.Sprintf("%dm", min)
	}
	if min%60 == 0 {
		return fmt.Sprintf("%dh", min/60)
	}
	return fmt.Sprintf("%dh%02dm", min/60, min%60)
}
