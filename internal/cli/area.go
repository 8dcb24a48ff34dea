package cli

import (
	"fmt"

	"chunkwise/internal/engine"
	"chunkwise/internal/models"
)

type AreaAddCmd struct {
	Title       string `arg:"" help:"Area title."`
	Weight      int    `short:"w" help:"Relative priority (1-10)." default:"5"`
	Description string `short:"d" help:"Optional description."`
}

func (c *AreaAddCmd) Run(ctx *Context) error {
	area, err := ctx.Engine.CreateArea(ctx.Owner, engine.CreateAreaInput{
		Title:       c.Title,
		Description: c.Description,
		Weight:      c.Weight,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Added area: %s (ID: %s)\n", area.Title, area.ID)
	return nil
}

type AreaListCmd struct {
	Status string `short:"s" help:"Filter by status (active|paused|archived)."`
}

func (c *AreaListCmd) Run(ctx *Context) error {
	var status *models.AreaStatus
	if c.Status != "" {
		st := models.AreaStatus(c.Status)
		status = &st
	}
	areas, err := ctx.Engine.ListAreas(ctx.Owner, status)
	if err != nil {
		return err
	}
	if len(areas) == 0 {
		fmt.Println("No areas found")
		return nil
	}
	fmt.Println(titleStyle.Render("Areas:"))
	for _, a := range areas {
		fmt.Printf("  [%s] %s (weight %d, %s) %s\n",
			a.Status, a.Title, a.Weight, healthBadge(a.Health), dimStyle.Render(a.ID))
		if a.Description != "" {
			fmt.Printf("      %s\n", dimStyle.Render(a.Description))
		}
	}
	return nil
}

type AreaEditCmd struct {
	ID          string  `arg:"" help:"Area ID."`
	Title       *string `help:"New title."`
	Description *string `help:"New description."`
	Weight      *int    `short:"w" help:"New weight (1-10)."`
	Status      *string `short:"s" help:"New status (active|paused|archived)."`
}

func (c *AreaEditCmd) Run(ctx *Context) error {
	in := engine.UpdateAreaInput{
		Title:       c.Title,
		Description: c.Description,
		Weight:      c.Weight,
	}
	if c.Status != nil {
		st := models.AreaStatus(*c.Status)
		in.Status = &st
	}
	area, err := ctx.Engine.UpdateArea(ctx.Owner, c.ID, in)
	if err != nil {
		return err
	}
	fmt.Printf("Updated area: %s\n", area.Title)
	return nil
}

type AreaDeleteCmd struct {
	ID    string `arg:"" help:"Area ID."`
	Force bool   `short:"f" help:"Skip confirmation."`
}

func (c *AreaDeleteCmd) Run(ctx *Context) error {
	area, err := ctx.Engine.GetArea(ctx.Owner, c.ID)
	if err != nil {
		return err
	}
	if !c.Force {
		ok, err := confirm(fmt.Sprintf("Delete area %q and everything under it?", area.Title))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Cancelled")
			return nil
		}
	}
	if err := ctx.Engine.DeleteArea(ctx.Owner, c.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted area: %s\n", area.Title)
	return nil
}

type AreaHealthCmd struct {
	ID string `arg:"" help:"Area ID."`
}

func (c *AreaHealthCmd) Run(ctx *Context) error {
	report, err := ctx.Engine.AreaHealthDetails(ctx.Owner, c.ID)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", titleStyle.Render(report.Title), healthBadge(report.Health))
	fmt.Printf("  Last touched:      %s (%d days ago)\n", report.LastTouchedAt, report.DaysSinceTouched)
	fmt.Printf("  Active intentions: %d\n", report.ActiveIntentions)
	fmt.Printf("  Ready chunks:      %d\n", report.ReadyChunks)
	fmt.Printf("  Suggestion:        %s\n", report.RecommendedAction)
	return nil
}
