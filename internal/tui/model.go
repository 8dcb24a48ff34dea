// Package tui is the dashboard over today's day plan: item statuses, the
// time budget, and start/pause/complete/skip keybindings. All mutations go
// through the engine; the dashboard only ever renders what it reads back.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"chunkwise/internal/constants"
	"chunkwise/internal/engine"
)

type sessionState int

const (
	stateDashboard sessionState = iota
	stateComplete
)

type Model struct {
	eng   *engine.Engine
	owner string

	keys KeyMap
	help help.Model

	view    engine.PlanView
	loaded  bool
	loadErr string

	state          sessionState
	cursor         int
	form           *huh.Form
	actualMin      string
	completingItem string

	status   string
	quitting bool
	width    int
	height   int
}

func NewModel(eng *engine.Engine, owner string) Model {
	m := Model{
		eng:   eng,
		owner: owner,
		keys:  DefaultKeyMap(),
		help:  help.New(),
	}
	m.refresh()
	return m
}

// refresh reloads today's plan. A missing plan is not an error state; the
// dashboard renders a hint instead.
func (m *Model) refresh() {
	today := time.Now().Format(constants.DateFormat)
	view, err := m.eng.GetPlanByDate(m.owner, today)
	if err != nil {
		m.loaded = false
		m.loadErr = err.Error()
		return
	}
	m.loaded = true
	m.loadErr = ""
	m.view = view
	if m.cursor >= len(view.Items) {
		m.cursor = len(view.Items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Run launches the dashboard program.
func Run(eng *engine.Engine, owner string) error {
	p := tea.NewProgram(NewModel(eng, owner), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
