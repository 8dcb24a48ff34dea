package cli

import (
	"fmt"

	"chunkwise/internal/engine"
	"chunkwise/internal/models"
)

type ItemAddCmd struct {
	Chunk  string `arg:"" help:"Chunk ID to schedule."`
	Date   string `short:"d" help:"Plan date (YYYY-MM-DD). Defaults to today."`
	Locked bool   `short:"L" help:"Mark the item locked (kept through re-planning)."`
	Reason string `short:"r" help:"Why this chunk is on the plan."`
}

func (c *ItemAddCmd) Run(ctx *Context) error {
	view, err := planByDate(ctx, c.Date)
	if err != nil {
		return err
	}
	item, err := ctx.Engine.AddItem(ctx.Owner, view.ID, c.Chunk, c.Locked, c.Reason)
	if err != nil {
		return err
	}
	fmt.Printf("Added item %d to plan %s (ID: %s)\n", item.Order+1, view.Date, item.ID)
	return nil
}

type ItemRemoveCmd struct {
	ID string `arg:"" help:"Item ID."`
}

func (c *ItemRemoveCmd) Run(ctx *Context) error {
	if err := ctx.Engine.RemoveItem(ctx.Owner, c.ID); err != nil {
		return err
	}
	fmt.Println("Removed item; chunk returned to the ready pool")
	return nil
}

type ItemStartCmd struct {
	ID string `arg:"" help:"Item ID."`
}

func (c *ItemStartCmd) Run(ctx *Context) error {
	item, err := ctx.Engine.StartItem(ctx.Owner, c.ID)
	if err != nil {
		return err
	}
	if chunk, err := ctx.Engine.GetChunk(ctx.Owner, item.ChunkID); err == nil {
		fmt.Printf("Started: %s\n", chunk.Title)
	} else {
		fmt.Println("Started item")
	}
	return nil
}

type ItemPauseCmd struct {
	ID string `arg:"" help:"Item ID."`
}

func (c *ItemPauseCmd) Run(ctx *Context) error {
	if _, err := ctx.Engine.PauseItem(ctx.Owner, c.ID); err != nil {
		return err
	}
	fmt.Println("Paused item")
	return nil
}

type ItemDoneCmd struct {
	ID     string `arg:"" help:"Item ID."`
	Actual int    `short:"a" help:"Actual minutes spent." required:""`
}

func (c *ItemDoneCmd) Run(ctx *Context) error {
	item, err := ctx.Engine.CompleteItem(ctx.Owner, c.ID, c.Actual)
	if err != nil {
		return err
	}
	if chunk, err := ctx.Engine.GetChunk(ctx.Owner, item.ChunkID); err == nil {
		fmt.Printf("Completed: %s (%s actual)\n", chunk.Title, fmtMinutes(c.Actual))
	} else {
		fmt.Printf("Completed item (%s actual)\n", fmtMinutes(c.Actual))
	}
	return nil
}

type ItemSkipCmd struct {
	ID string `arg:"" help:"Item ID."`
}

func (c *ItemSkipCmd) Run(ctx *Context) error {
	if _, err := ctx.Engine.SkipItem(ctx.Owner, c.ID); err != nil {
		return err
	}
	fmt.Println("Skipped item; chunk returned to the ready pool")
	return nil
}

type ItemMoveCmd struct {
	ID string `arg:"" help:"Item ID."`
}

func (c *ItemMoveCmd) Run(ctx *Context) error {
	if _, err := ctx.Engine.UpdateItemStatus(ctx.Owner, c.ID, models.ItemStatusMoved, nil); err != nil {
		return err
	}
	fmt.Println("Marked item moved; chunk returned to the ready pool")
	return nil
}

type ItemReorderCmd struct {
	Date string   `short:"d" help:"Plan date (YYYY-MM-DD). Defaults to today."`
	IDs  []string `arg:"" help:"Item IDs in the desired order."`
}

func (c *ItemReorderCmd) Run(ctx *Context) error {
	view, err := planByDate(ctx, c.Date)
	if err != nil {
		return err
	}
	orders := make([]engine.ItemOrder, 0, len(c.IDs))
	for pos, id := range c.IDs {
		orders = append(orders, engine.ItemOrder{ItemID: id, Order: pos})
	}
	if err := ctx.Engine.ReorderItems(ctx.Owner, view.ID, orders); err != nil {
		return err
	}
	fmt.Printf("Reordered %d items\n", len(orders))
	return nil
}
