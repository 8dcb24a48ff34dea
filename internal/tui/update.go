package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"chunkwise/internal/engine"
	"chunkwise/internal/models"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if m.state == stateDashboard {
			return m.updateDashboard(msg)
		}
	}
	if m.state == stateComplete {
		return m.updateCompleteForm(msg)
	}
	return m, nil
}

func (m Model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		m.refresh()
		m.status = ""
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.view.Items)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, m.keys.Finalize):
		if !m.loaded {
			return m, nil
		}
		if _, err := m.eng.FinalizePlan(m.owner, m.view.ID); err != nil {
			m.status = err.Error()
		} else {
			m.status = "Plan finalized"
			m.refresh()
		}
		return m, nil
	case key.Matches(msg, m.keys.Start):
		return m.runItemOp(func(itemID string) error {
			_, err := m.eng.StartItem(m.owner, itemID)
			return err
		}, "Started")
	case key.Matches(msg, m.keys.Pause):
		return m.runItemOp(func(itemID string) error {
			_, err := m.eng.PauseItem(m.owner, itemID)
			return err
		}, "Paused")
	case key.Matches(msg, m.keys.Skip):
		return m.runItemOp(func(itemID string) error {
			_, err := m.eng.SkipItem(m.owner, itemID)
			return err
		}, "Skipped")
	case key.Matches(msg, m.keys.Complete):
		item, ok := m.selectedItem()
		if !ok {
			return m, nil
		}
		m.completingItem = item.ID
		m.actualMin = ""
		if item.Chunk != nil {
			m.actualMin = strconv.Itoa(item.Chunk.DurationMin)
		}
		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Actual minutes spent").
					Value(&m.actualMin).
					Validate(func(s string) error {
						n, err := strconv.Atoi(s)
						if err != nil || n <= 0 {
							return fmt.Errorf("enter a positive number of minutes")
						}
						return nil
					}),
			),
		)
		m.state = stateComplete
		return m, m.form.Init()
	}
	return m, nil
}

func (m Model) updateCompleteForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = stateDashboard
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		actual, _ := strconv.Atoi(m.actualMin)
		if _, err := m.eng.CompleteItem(m.owner, m.completingItem, actual); err != nil {
			m.status = err.Error()
		} else {
			m.status = "Completed"
			m.refresh()
		}
		m.state = stateDashboard
		m.form = nil
		return m, nil
	case huh.StateAborted:
		m.state = stateDashboard
		m.form = nil
		return m, nil
	}
	return m, cmd
}

func (m Model) selectedItem() (engine.PlanItemView, bool) {
	if !m.loaded || m.cursor < 0 || m.cursor >= len(m.view.Items) {
		return engine.PlanItemView{}, false
	}
	return m.view.Items[m.cursor], true
}

func (m Model) runItemOp(op func(itemID string) error, verb string) (tea.Model, tea.Cmd) {
	item, ok := m.selectedItem()
	if !ok {
		return m, nil
	}
	if err := op(item.ID); err != nil {
		m.status = err.Error()
		return m, nil
	}
	title := ""
	if item.Chunk != nil {
		title = " " + item.Chunk.Title
	}
	m.status = verb + title
	m.refresh()
	return m, nil
}

func itemDone(status models.ItemStatus) bool {
	switch status {
	case models.ItemStatusCompleted, models.ItemStatusSkipped, models.ItemStatusMoved:
		return true
	}
	return false
}
