package cli

import "chunkwise/internal/tui"

// TuiCmd launches the interactive day-plan dashboard.
type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *Context) error {
	return tui.Run(ctx.Engine, ctx.Owner)
}
