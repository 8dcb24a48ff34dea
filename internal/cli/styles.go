package cli

import (
	"github.com/charmbracelet/lipgloss"

	"chunkwise/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	badStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

func chunkStatusBadge(status models.ChunkStatus) string {
	switch status {
	case models.ChunkStatusDone:
		return okStyle.Render(string(status))
	case models.ChunkStatusInProgress:
		return warnStyle.Render(string(status))
	case models.ChunkStatusBacklog:
		return dimStyle.Render(string(status))
	default:
		return string(status)
	}
}

func itemStatusBadge(status models.ItemStatus) string {
	switch status {
	case models.ItemStatusCompleted:
		return okStyle.Render(string(status))
	case models.ItemStatusInProgress:
		return warnStyle.Render(string(status))
	case models.ItemStatusSkipped, models.ItemStatusMoved:
		return dimStyle.Render(string(status))
	default:
		return string(status)
	}
}

func planStatusBadge(status models.PlanStatus) string {
	switch status {
	case models.PlanStatusActive:
		return okStyle.Render(string(status))
	case models.PlanStatusExpired:
		return badStyle.Render(string(status))
	case models.PlanStatusCompleted:
		return dimStyle.Render(string(status))
	default:
		return string(status)
	}
}

func healthBadge(health models.AreaHealth) string {
	switch health {
	case models.AreaHealthNeglected:
		return warnStyle.Render(string(health))
	case models.AreaHealthUrgent:
		return badStyle.Render(string(health))
	default:
		return okStyle.Render(string(health))
	}
}
