package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/huh"

	"chunkwise/internal/constants"
	"chunkwise/internal/engine"
	"chunkwise/internal/models"
	"chunkwise/internal/planner"
	"chunkwise/internal/storage"
)

type Context struct {
	Store  storage.Provider
	Engine *engine.Engine
	Owner  string
}

// Reconciler builds a planner reconciler over the engine.
func (ctx *Context) Reconciler() *planner.Reconciler {
	return planner.New(ctx.Engine)
}

func today() string {
	return time.Now().Format(constants.DateFormat)
}

// resolveDate defaults an empty date flag to today and validates the format.
func resolveDate(s string) (string, error) {
	if s == "" {
		return today(), nil
	}
	if _, err := time.Parse(constants.DateFormat, s); err != nil {
		return "", fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return s, nil
}

func parseEnergyMode(s string) (models.EnergyMode, error) {
	switch s {
	case "deep":
		return models.EnergyModeDeep, nil
	case "normal", "":
		return models.EnergyModeNormal, nil
	case "light":
		return models.EnergyModeLight, nil
	default:
		return "", fmt.Errorf("invalid energy mode %q (deep|normal|light)", s)
	}
}

func confirm(title string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func fmtMinutes(min int) string {
	if min < 60 {
		return fmt.Sprintf("%dm", min)
	}
	if min%60 == 0 {
		return fmt.Sprintf("%dh", min/60)
	}
	return fmt.Sprintf("%dh%02dm", min/60, min%60)
}
