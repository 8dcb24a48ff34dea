package cli

import (
	"fmt"

	"chunkwise/internal/engine"
	"chunkwise/internal/models"
)

type IntentionAddCmd struct {
	Area        string `short:"a" help:"Parent area ID." required:""`
	Title       string `arg:"" help:"Intention title."`
	Description string `short:"d" help:"Optional description."`
	Paused      bool   `help:"Create paused instead of active."`
}

func (c *IntentionAddCmd) Run(ctx *Context) error {
	status := models.IntentionStatusActive
	if c.Paused {
		status = models.IntentionStatusPaused
	}
	intention, err := ctx.Engine.CreateIntention(ctx.Owner, engine.CreateIntentionInput{
		AreaID:      c.Area,
		Title:       c.Title,
		Description: c.Description,
		Status:      status,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Added intention: %s (ID: %s)\n", intention.Title, intention.ID)

	limit, err := ctx.Engine.CheckIntentionLimit(ctx.Owner, c.Area)
	if err == nil && limit.AtLimit {
		fmt.Println(warnStyle.Render(fmt.Sprintf(
			"Area is at the active-intention limit (%d/%d)", limit.ActiveCount, limit.Max)))
	}
	return nil
}

type IntentionListCmd struct {
	Area   string `short:"a" help:"Parent area ID." required:""`
	Status string `short:"s" help:"Filter by status (active|paused|done)."`
}

func (c *IntentionListCmd) Run(ctx *Context) error {
	var status *models.IntentionStatus
	if c.Status != "" {
		st := models.IntentionStatus(c.Status)
		status = &st
	}
	intentions, err := ctx.Engine.ListIntentionsByArea(ctx.Owner, c.Area, status)
	if err != nil {
		return err
	}
	if len(intentions) == 0 {
		fmt.Println("No intentions found")
		return nil
	}
	fmt.Println(titleStyle.Render("Intentions:"))
	for _, in := range intentions {
		fmt.Printf("  %d. [%s] %s %s\n", in.Order+1, in.Status, in.Title, dimStyle.Render(in.ID))
		if in.Description != "" {
			fmt.Printf("     %s\n", dimStyle.Render(in.Description))
		}
	}
	return nil
}

type IntentionEditCmd struct {
	ID          string  `arg:"" help:"Intention ID."`
	Title       *string `help:"New title."`
	Description *string `help:"New description."`
	Status      *string `short:"s" help:"New status (active|paused|done)."`
}

func (c *IntentionEditCmd) Run(ctx *Context) error {
	in := engine.UpdateIntentionInput{
		Title:       c.Title,
		Description: c.Description,
	}
	if c.Status != nil {
		st := models.IntentionStatus(*c.Status)
		in.Status = &st
	}
	intention, err := ctx.Engine.UpdateIntention(ctx.Owner, c.ID, in)
	if err != nil {
		return err
	}
	fmt.Printf("Updated intention: %s\n", intention.Title)
	return nil
}

type IntentionDeleteCmd struct {
	ID    string `arg:"" help:"Intention ID."`
	Force bool   `short:"f" help:"Skip confirmation."`
}

func (c *IntentionDeleteCmd) Run(ctx *Context) error {
	intention, err := ctx.Engine.GetIntention(ctx.Owner, c.ID)
	if err != nil {
		return err
	}
	if !c.Force {
		ok, err := confirm(fmt.Sprintf("Delete intention %q and its chunks?", intention.Title))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Cancelled")
			return nil
		}
	}
	if err := ctx.Engine.DeleteIntention(ctx.Owner, c.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted intention: %s\n", intention.Title)
	return nil
}

type IntentionReorderCmd struct {
	Area string   `short:"a" help:"Parent area ID." required:""`
	IDs  []string `arg:"" help:"Intention IDs in the desired order."`
}

func (c *IntentionReorderCmd) Run(ctx *Context) error {
	if err := ctx.Engine.ReorderIntentions(ctx.Owner, c.Area, c.IDs); err != nil {
		return err
	}
	fmt.Printf("Reordered %d intentions\n", len(c.IDs))
	return nil
}
