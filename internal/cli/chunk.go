package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"chunkwise/internal/engine"
	"chunkwise/internal/models"
	"chunkwise/internal/oracle"
)

type ChunkAddCmd struct {
	Intention string   `short:"i" help:"Parent intention ID." required:""`
	Title     string   `arg:"" help:"Chunk title."`
	Dod       string   `short:"D" help:"Definition of done." required:""`
	Duration  int      `short:"d" help:"Duration in minutes (30-120)." required:""`
	Tags      []string `short:"t" help:"Tags."`
	Ready     bool     `help:"Create ready instead of backlog."`
}

func (c *ChunkAddCmd) Run(ctx *Context) error {
	status := models.ChunkStatusBacklog
	if c.Ready {
		status = models.ChunkStatusReady
	}
	chunk, err := ctx.Engine.CreateChunk(ctx.Owner, c.Intention, engine.ChunkDraft{
		Title:       c.Title,
		DoD:         c.Dod,
		DurationMin: c.Duration,
		Tags:        c.Tags,
		Status:      status,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Added chunk: %s (%s, ID: %s)\n", chunk.Title, fmtMinutes(chunk.DurationMin), chunk.ID)
	return nil
}

type ChunkListCmd struct {
	Intention string `short:"i" help:"Parent intention ID." required:""`
	Status    string `short:"s" help:"Filter by status (backlog|ready|inPlan|inProgress|done)."`
}

func (c *ChunkListCmd) Run(ctx *Context) error {
	var status *models.ChunkStatus
	if c.Status != "" {
		st := models.ChunkStatus(c.Status)
		status = &st
	}
	chunks, err := ctx.Engine.ListChunksByIntention(ctx.Owner, c.Intention, status)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		fmt.Println("No chunks found")
		return nil
	}
	fmt.Println(titleStyle.Render("Chunks:"))
	for _, ch := range chunks {
		fmt.Printf("  [%s] %s - %s%s %s\n",
			chunkStatusBadge(ch.Status), ch.Title, fmtMinutes(ch.DurationMin),
			joinTags(ch.Tags), dimStyle.Render(ch.ID))
		fmt.Printf("      DoD: %s\n", dimStyle.Render(ch.DoD))
	}
	return nil
}

type ChunkReadyCmd struct{}

func (c *ChunkReadyCmd) Run(ctx *Context) error {
	chunks, err := ctx.Engine.ListReadyChunks(ctx.Owner)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		fmt.Println("No ready chunks; groom your backlog first")
		return nil
	}
	fmt.Println(titleStyle.Render("Ready chunks:"))
	total := 0
	for _, ch := range chunks {
		fmt.Printf("  %s - %s%s\n", ch.Title, fmtMinutes(ch.DurationMin), joinTags(ch.Tags))
		fmt.Printf("      %s / %s (weight %d) %s\n",
			ch.AreaTitle, ch.IntentionTitle, ch.AreaWeight, dimStyle.Render(ch.ID))
		total += ch.DurationMin
	}
	fmt.Printf("\n%d chunks, %s total\n", len(chunks), fmtMinutes(total))
	return nil
}

type ChunkEditCmd struct {
	ID       string   `arg:"" help:"Chunk ID."`
	Title    *string  `help:"New title."`
	Dod      *string  `short:"D" help:"New definition of done."`
	Duration *int     `short:"d" help:"New duration in minutes."`
	Tags     []string `short:"t" help:"Replace tags."`
	Status   *string  `short:"s" help:"New status (backlog|ready|done)."`
}

func (c *ChunkEditCmd) Run(ctx *Context) error {
	in := engine.UpdateChunkInput{
		Title:       c.Title,
		DoD:         c.Dod,
		DurationMin: c.Duration,
	}
	if c.Tags != nil {
		in.Tags = &c.Tags
	}
	chunk, err := ctx.Engine.UpdateChunk(ctx.Owner, c.ID, in)
	if err != nil {
		return err
	}
	if c.Status != nil {
		chunk, err = ctx.Engine.UpdateChunkStatus(ctx.Owner, c.ID, models.ChunkStatus(*c.Status))
		if err != nil {
			return err
		}
	}
	fmt.Printf("Updated chunk: %s [%s]\n", chunk.Title, chunk.Status)
	return nil
}

type ChunkDeleteCmd struct {
	ID    string `arg:"" help:"Chunk ID."`
	Force bool   `short:"f" help:"Skip confirmation."`
}

func (c *ChunkDeleteCmd) Run(ctx *Context) error {
	chunk, err := ctx.Engine.GetChunk(ctx.Owner, c.ID)
	if err != nil {
		return err
	}
	if !c.Force {
		ok, err := confirm(fmt.Sprintf("Delete chunk %q?", chunk.Title))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Cancelled")
			return nil
		}
	}
	if err := ctx.Engine.DeleteChunk(ctx.Owner, c.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted chunk: %s\n", chunk.Title)
	return nil
}

type ChunkSplitCmd struct {
	ID     string   `arg:"" help:"Chunk ID to split."`
	Part   []string `short:"p" help:"Part as 'title::dod::minutes[::tag,tag]'. Repeat for each part."`
	Target int      `help:"Ask for suggested parts around this many minutes each (when no --part is given)." default:"45"`
	Yes    bool     `short:"y" help:"Accept suggested parts without confirmation."`
	Reason string   `short:"r" help:"Why the chunk is being split."`
}

func parsePart(s string) (engine.ChunkDraft, error) {
	fields := strings.Split(s, "::")
	if len(fields) < 3 || len(fields) > 4 {
		return engine.ChunkDraft{}, fmt.Errorf("invalid part %q (want 'title::dod::minutes[::tag,tag]')", s)
	}
	min, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return engine.ChunkDraft{}, fmt.Errorf("invalid minutes in part %q", s)
	}
	draft := engine.ChunkDraft{
		Title:       strings.TrimSpace(fields[0]),
		DoD:         strings.TrimSpace(fields[1]),
		DurationMin: min,
	}
	if len(fields) == 4 {
		for _, t := range strings.Split(fields[3], ",") {
			if t = strings.TrimSpace(t); t != "" {
				draft.Tags = append(draft.Tags, t)
			}
		}
	}
	return draft, nil
}

func (c *ChunkSplitCmd) Run(ctx *Context) error {
	var parts []engine.ChunkDraft
	if len(c.Part) > 0 {
		parts = make([]engine.ChunkDraft, 0, len(c.Part))
		for _, raw := range c.Part {
			draft, err := parsePart(raw)
			if err != nil {
				return err
			}
			parts = append(parts, draft)
		}
	} else {
		suggested, err := c.suggestParts(ctx)
		if err != nil {
			return err
		}
		if suggested == nil {
			fmt.Println("Cancelled")
			return nil
		}
		parts = suggested
	}
	result, err := ctx.Engine.SplitChunk(ctx.Owner, c.ID, parts, c.Reason)
	if err != nil {
		return err
	}
	fmt.Printf("Split %q into %d parts:\n", result.Original.Title, len(result.NewChunks))
	for _, nc := range result.NewChunks {
		fmt.Printf("  %s - %s (ID: %s)\n", nc.Title, fmtMinutes(nc.DurationMin), nc.ID)
	}
	if result.Warning != "" {
		fmt.Println(warnStyle.Render("Warning: " + result.Warning))
	}
	return nil
}

// suggestParts asks the oracle for a split and returns nil drafts when the
// user declines.
func (c *ChunkSplitCmd) suggestParts(ctx *Context) ([]engine.ChunkDraft, error) {
	client, err := oracle.NewClientFromEnv()
	if err != nil {
		return nil, err
	}
	chunk, err := ctx.Engine.GetChunk(ctx.Owner, c.ID)
	if err != nil {
		return nil, err
	}
	resp, err := client.SplitChunk(context.Background(), oracle.SplitChunkRequest{
		ChunkTitle:          chunk.Title,
		ChunkDoD:            chunk.DoD,
		OriginalDurationMin: chunk.DurationMin,
		TargetDurationMin:   c.Target,
		Tags:                chunk.Tags,
	})
	if err != nil {
		return nil, err
	}

	fmt.Printf("Suggested split for %q:\n", chunk.Title)
	for i, p := range resp.Parts {
		fmt.Printf("  %d. %s - %s%s\n", i+1, p.Title, fmtMinutes(p.DurationMin), joinTags(p.Tags))
		fmt.Printf("     DoD: %s\n", dimStyle.Render(p.DoD))
	}
	if resp.Reasoning != "" {
		fmt.Printf("\n%s\n", dimStyle.Render(resp.Reasoning))
	}
	if !c.Yes {
		ok, err := confirm(fmt.Sprintf("Split into these %d chunks?", len(resp.Parts)))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
	}

	drafts := make([]engine.ChunkDraft, 0, len(resp.Parts))
	for _, p := range resp.Parts {
		drafts = append(drafts, engine.ChunkDraft{
			Title:       p.Title,
			DoD:         p.DoD,
			DurationMin: p.DurationMin,
			Tags:        p.Tags,
		})
	}
	return drafts, nil
}

type ChunkLineageCmd struct {
	ID string `arg:"" help:"Original chunk ID."`
}

func (c *ChunkLineageCmd) Run(ctx *Context) error {
	splits, err := ctx.Engine.ListSplits(ctx.Owner, c.ID)
	if err != nil {
		return err
	}
	if len(splits) == 0 {
		fmt.Println("Chunk has never been split")
		return nil
	}
	for _, sp := range splits {
		fmt.Printf("%s split into %d chunks", sp.CreatedAt.Format("2006-01-02"), len(sp.NewChunkIDs))
		if sp.Reason != "" {
			fmt.Printf(" (%s)", sp.Reason)
		}
		fmt.Println()
		for _, id := range sp.NewChunkIDs {
			if ch, err := ctx.Engine.GetChunk(ctx.Owner, id); err == nil {
				fmt.Printf("  [%s] %s %s\n", chunkStatusBadge(ch.Status), ch.Title, dimStyle.Render(id))
			} else {
				fmt.Printf("  %s (deleted)\n", dimStyle.Render(id))
			}
		}
	}
	return nil
}

type ChunkExtractCmd struct {
	Intention string `short:"i" help:"Intention to break into chunks." required:""`
	Yes       bool   `short:"y" help:"Accept suggestions without confirmation."`
}

func (c *ChunkExtractCmd) Run(ctx *Context) error {
	client, err := oracle.NewClientFromEnv()
	if err != nil {
		return err
	}
	intention, err := ctx.Engine.GetIntention(ctx.Owner, c.Intention)
	if err != nil {
		return err
	}
	area, err := ctx.Engine.GetArea(ctx.Owner, intention.AreaID)
	if err != nil {
		return err
	}
	existing, err := ctx.Engine.ListChunksByIntention(ctx.Owner, intention.ID, nil)
	if err != nil {
		return err
	}

	req := oracle.ExtractChunksRequest{
		AreaTitle:            area.Title,
		IntentionTitle:       intention.Title,
		IntentionDescription: intention.Description,
	}
	for _, ch := range existing {
		req.ExistingChunks = append(req.ExistingChunks, oracle.ExistingChunk{Title: ch.Title, DoD: ch.DoD})
	}

	resp, err := client.ExtractChunks(context.Background(), req)
	if err != nil {
		return err
	}

	fmt.Printf("Suggested chunks for %q:\n", intention.Title)
	for i, s := range resp.Chunks {
		fmt.Printf("  %d. %s - %s%s\n", i+1, s.Title, fmtMinutes(s.DurationMin), joinTags(s.Tags))
		fmt.Printf("     DoD: %s\n", dimStyle.Render(s.DoD))
	}
	if resp.Reasoning != "" {
		fmt.Printf("\n%s\n", dimStyle.Render(resp.Reasoning))
	}

	if !c.Yes {
		ok, err := confirm(fmt.Sprintf("Create these %d chunks?", len(resp.Chunks)))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Cancelled")
			return nil
		}
	}

	drafts := make([]engine.ChunkDraft, 0, len(resp.Chunks))
	for _, s := range resp.Chunks {
		drafts = append(drafts, engine.ChunkDraft{
			Title:       s.Title,
			DoD:         s.DoD,
			DurationMin: s.DurationMin,
			Tags:        s.Tags,
		})
	}
	created, err := ctx.Engine.CreateChunkBatch(ctx.Owner, intention.ID, drafts)
	if err != nil {
		return err
	}
	fmt.Printf("Created %d chunks\n", len(created))
	return nil
}

func joinTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return " #" + strings.Join(tags, " #")
}
