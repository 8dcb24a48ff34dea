package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/huh"

	"chunkwise/internal/engine"
	"chunkwise/internal/logger"
	"chunkwise/internal/models"
	"chunkwise/internal/oracle"
	"chunkwise/internal/planner"
)

type PlanNewCmd struct {
	Date   string `short:"d" help:"Plan date (YYYY-MM-DD). Defaults to today."`
	Budget int    `short:"b" help:"Time budget in minutes." required:""`
	Energy string `short:"e" help:"Energy mode (deep|normal|light)." default:"normal"`
	Notes  string `short:"n" help:"Optional notes."`
}

func (c *PlanNewCmd) Run(ctx *Context) error {
	date, err := resolveDate(c.Date)
	if err != nil {
		return err
	}
	mode, err := parseEnergyMode(c.Energy)
	if err != nil {
		return err
	}
	plan, err := ctx.Engine.CreatePlan(ctx.Owner, engine.CreatePlanInput{
		Date:       date,
		TimeBudget: c.Budget,
		EnergyMode: mode,
		Notes:      c.Notes,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created draft plan for %s (%s budget, %s energy)\n",
		plan.Date, fmtMinutes(plan.TimeBudget), plan.EnergyMode)
	return nil
}

type PlanShowCmd struct {
	Date string `arg:"" optional:"" help:"Plan date (YYYY-MM-DD). Defaults to today."`
}

func (c *PlanShowCmd) Run(ctx *Context) error {
	date, err := resolveDate(c.Date)
	if err != nil {
		return err
	}
	view, err := ctx.Engine.GetPlanByDate(ctx.Owner, date)
	if err != nil {
		return err
	}
	printPlanView(view)
	return nil
}

func printPlanView(view engine.PlanView) {
	fmt.Printf("%s [%s] budget %s, %s energy\n",
		titleStyle.Render("Plan "+view.Date), planStatusBadge(view.Status),
		fmtMinutes(view.TimeBudget), view.EnergyMode)
	if view.Notes != "" {
		fmt.Printf("  %s\n", dimStyle.Render(view.Notes))
	}
	if len(view.Items) == 0 {
		fmt.Println("  (no items)")
		return
	}
	for i, it := range view.Items {
		lock := ""
		if it.Locked {
			lock = " *"
		}
		if it.Chunk != nil {
			fmt.Printf("  %d. [%s] %s - %s%s %s\n", i+1, itemStatusBadge(it.Status),
				it.Chunk.Title, fmtMinutes(it.Chunk.DurationMin), lock, dimStyle.Render(it.ID))
			if it.AreaTitle != "" {
				fmt.Printf("     %s\n", dimStyle.Render(it.AreaTitle+" / "+it.IntentionTitle))
			}
		} else {
			fmt.Printf("  %d. [%s] (chunk deleted)%s %s\n", i+1, itemStatusBadge(it.Status), lock, dimStyle.Render(it.ID))
		}
	}
	sum := planner.Summarize(view)
	band := string(sum.Band)
	if sum.Band == planner.BandOverBudget {
		band = warnStyle.Render(band)
	}
	fmt.Printf("  Planned %s of %s (%.0f%%, %s)\n",
		fmtMinutes(sum.TotalMin), fmtMinutes(sum.TimeBudgetMin), sum.Utilization*100, band)
}

type PlanListCmd struct {
	Limit  int `short:"l" help:"Maximum number of plans to show." default:"14"`
	Offset int `help:"Skip the newest N plans."`
}

func (c *PlanListCmd) Run(ctx *Context) error {
	plans, err := ctx.Engine.ListPlans(ctx.Owner, c.Limit, c.Offset)
	if err != nil {
		return err
	}
	if len(plans) == 0 {
		fmt.Println("No plans found")
		return nil
	}
	fmt.Println(titleStyle.Render("Plans:"))
	for _, p := range plans {
		fmt.Printf("  %s [%s] %d items, %s planned, %d done\n",
			p.Date, planStatusBadge(p.Status), p.ItemCount,
			fmtMinutes(p.TotalDurationMin), p.CompletedCount)
	}
	return nil
}

type PlanEditCmd struct {
	Date   string  `arg:"" optional:"" help:"Plan date (YYYY-MM-DD). Defaults to today."`
	Budget *int    `short:"b" help:"New time budget in minutes."`
	Energy *string `short:"e" help:"New energy mode (deep|normal|light)."`
	Notes  *string `short:"n" help:"New notes."`
}

func (c *PlanEditCmd) Run(ctx *Context) error {
	view, err := planByDate(ctx, c.Date)
	if err != nil {
		return err
	}
	in := engine.UpdatePlanInput{TimeBudget: c.Budget, Notes: c.Notes}
	if c.Energy != nil {
		mode, err := parseEnergyMode(*c.Energy)
		if err != nil {
			return err
		}
		in.EnergyMode = &mode
	}
	plan, err := ctx.Engine.UpdatePlan(ctx.Owner, view.ID, in)
	if err != nil {
		return err
	}
	fmt.Printf("Updated plan for %s\n", plan.Date)
	return nil
}

func planByDate(ctx *Context, dateFlag string) (engine.PlanView, error) {
	date, err := resolveDate(dateFlag)
	if err != nil {
		return engine.PlanView{}, err
	}
	return ctx.Engine.GetPlanByDate(ctx.Owner, date)
}

type PlanFinalizeCmd struct {
	Date string `arg:"" optional:"" help:"Plan date (YYYY-MM-DD). Defaults to today."`
}

func (c *PlanFinalizeCmd) Run(ctx *Context) error {
	view, err := planByDate(ctx, c.Date)
	if err != nil {
		return err
	}
	plan, err := ctx.Engine.FinalizePlan(ctx.Owner, view.ID)
	if err != nil {
		return err
	}
	fmt.Printf("Plan for %s is now active\n", plan.Date)
	return nil
}

type PlanCompleteCmd struct {
	Date  string `arg:"" optional:"" help:"Plan date (YYYY-MM-DD). Defaults to today."`
	Load  string `short:"l" help:"Perceived load (light|normal|heavy). Prompts when omitted."`
	Notes string `short:"n" help:"Review notes. Prompts when omitted."`
}

func (c *PlanCompleteCmd) Run(ctx *Context) error {
	view, err := planByDate(ctx, c.Date)
	if err != nil {
		return err
	}

	load := c.Load
	notes := c.Notes
	if load == "" {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("How did today feel?").
					Options(
						huh.NewOption("Light", "light"),
						huh.NewOption("Normal", "normal"),
						huh.NewOption("Heavy", "heavy"),
					).
					Value(&load),
				huh.NewText().
					Title("Anything worth remembering?").
					CharLimit(500).
					Value(&notes),
			),
		)
		if err := form.Run(); err != nil {
			return err
		}
	}

	plan, err := ctx.Engine.CompletePlan(ctx.Owner, view.ID, models.PerceivedLoad(load), notes)
	if err != nil {
		return err
	}
	fmt.Printf("Completed plan for %s\n", plan.Date)

	if stats, err := ctx.Engine.GetPlan(ctx.Owner, plan.ID); err == nil {
		done := 0
		for _, it := range stats.Items {
			if it.Status == models.ItemStatusCompleted {
				done++
			}
		}
		fmt.Printf("  %d of %d items completed\n", done, len(stats.Items))
	}
	return nil
}

type PlanDeleteCmd struct {
	Date  string `arg:"" optional:"" help:"Plan date (YYYY-MM-DD). Defaults to today."`
	Force bool   `short:"f" help:"Skip confirmation."`
}

func (c *PlanDeleteCmd) Run(ctx *Context) error {
	view, err := planByDate(ctx, c.Date)
	if err != nil {
		return err
	}
	if !c.Force {
		ok, err := confirm(fmt.Sprintf("Delete the plan for %s?", view.Date))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Cancelled")
			return nil
		}
	}
	if err := ctx.Engine.DeletePlan(ctx.Owner, view.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted plan for %s\n", view.Date)
	return nil
}

type PlanDupCmd struct {
	From string `arg:"" help:"Source plan date (YYYY-MM-DD)."`
	To   string `arg:"" optional:"" help:"Target date. Defaults to today."`
}

func (c *PlanDupCmd) Run(ctx *Context) error {
	source, err := ctx.Engine.GetPlanByDate(ctx.Owner, c.From)
	if err != nil {
		return err
	}
	target, err := resolveDate(c.To)
	if err != nil {
		return err
	}
	plan, err := ctx.Engine.DuplicatePlan(ctx.Owner, source.ID, target)
	if err != nil {
		return err
	}
	view, err := ctx.Engine.GetPlan(ctx.Owner, plan.ID)
	if err != nil {
		return err
	}
	fmt.Printf("Duplicated %s to %s with %d items\n", c.From, target, len(view.Items))
	return nil
}

type PlanStatsCmd struct{}

func (c *PlanStatsCmd) Run(ctx *Context) error {
	stats, err := ctx.Engine.ActivePlanStats(ctx.Owner)
	if err != nil {
		return err
	}
	fmt.Printf("%s [%s]\n", titleStyle.Render("Plan "+stats.Date), stats.Status)
	fmt.Printf("  Items:      %d total, %d done, %d in progress, %d pending, %d skipped, %d moved\n",
		stats.TotalItems, stats.Completed, stats.InProgress, stats.Pending, stats.Skipped, stats.Moved)
	fmt.Printf("  Planned:    %s of %s budget\n", fmtMinutes(stats.PlannedMin), fmtMinutes(stats.TimeBudgetMin))
	fmt.Printf("  Time used:  %s (%s remaining)\n", fmtMinutes(stats.UsedMin), fmtMinutes(stats.RemainingMin))
	fmt.Printf("  Completion: %d%%\n", stats.CompletionPct)
	return nil
}

type PlanSuggestCmd struct {
	Date     string `arg:"" optional:"" help:"Plan date (YYYY-MM-DD). Defaults to today."`
	MaxTasks int    `short:"m" help:"Maximum chunks to schedule." default:"5"`
	NoOracle bool   `help:"Skip the suggestion service and use deterministic ranking."`
	Apply    bool   `short:"y" help:"Apply the proposal without confirmation."`
}

func (c *PlanSuggestCmd) Run(ctx *Context) error {
	view, err := planByDate(ctx, c.Date)
	if err != nil {
		return err
	}
	if view.Status != models.PlanStatusDraft && view.Status != models.PlanStatusActive {
		return fmt.Errorf("plan for %s is %s and cannot be re-planned", view.Date, view.Status)
	}
	candidates, err := ctx.Engine.ListReadyChunks(ctx.Owner)
	if err != nil {
		return err
	}

	var lockedIDs []string
	lockedMin := 0
	for _, it := range view.Items {
		if it.Locked && it.Chunk != nil && it.Status != models.ItemStatusCompleted {
			lockedIDs = append(lockedIDs, it.ChunkID)
			lockedMin += it.Chunk.DurationMin
		}
	}

	proposal, err := c.buildProposal(ctx, view, candidates, lockedIDs, lockedMin)
	if err != nil {
		return err
	}
	if len(proposal.Entries) == 0 {
		fmt.Println("Nothing to schedule; no ready chunks fit the plan")
		return nil
	}

	fmt.Printf("Proposal for %s:\n", view.Date)
	byID := make(map[string]engine.ReadyChunk, len(candidates))
	for _, ch := range candidates {
		byID[ch.ID] = ch
	}
	for i, entry := range proposal.Entries {
		line := entry.ChunkID
		if ch, ok := byID[entry.ChunkID]; ok {
			line = fmt.Sprintf("%s - %s (%s)", ch.Title, fmtMinutes(ch.DurationMin), ch.AreaTitle)
		} else {
			for _, it := range view.Items {
				if it.ChunkID == entry.ChunkID && it.Chunk != nil {
					line = fmt.Sprintf("%s - %s (kept)", it.Chunk.Title, fmtMinutes(it.Chunk.DurationMin))
				}
			}
		}
		fmt.Printf("  %d. %s\n", i+1, line)
		if entry.Reason != "" {
			fmt.Printf("     %s\n", dimStyle.Render(entry.Reason))
		}
	}

	if !c.Apply {
		ok, err := confirm("Apply this proposal?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Cancelled")
			return nil
		}
	}

	applied, err := ctx.Reconciler().Apply(ctx.Owner, view.ID, proposal)
	if err != nil {
		return err
	}
	sum := planner.Summarize(applied)
	fmt.Printf("Applied: %d items, %s of %s (%s)\n",
		sum.ItemCount, fmtMinutes(sum.TotalMin), fmtMinutes(sum.TimeBudgetMin), sum.Band)
	return nil
}

// buildProposal asks the oracle when configured and falls back to the
// deterministic ranking otherwise. Locked items always lead the proposal.
func (c *PlanSuggestCmd) buildProposal(ctx *Context, view engine.PlanView, candidates []engine.ReadyChunk, lockedIDs []string, lockedMin int) (planner.Proposal, error) {
	if !c.NoOracle {
		if client, err := oracle.NewClientFromEnv(); err == nil {
			proposal, oerr := oracleProposal(client, view, candidates, lockedIDs, c.MaxTasks)
			if oerr == nil {
				return proposal, nil
			}
			logger.Warn("suggestion service failed, using deterministic ranking", "error", oerr)
			fmt.Println(warnStyle.Render("Suggestion service unavailable; using deterministic ranking"))
		}
	}

	var proposal planner.Proposal
	for _, id := range lockedIDs {
		proposal.Entries = append(proposal.Entries, planner.Entry{ChunkID: id, Reason: "locked"})
	}
	budget := view.TimeBudget - lockedMin
	fill := planner.Fill(candidates, view.EnergyMode, budget, c.MaxTasks-len(lockedIDs))
	proposal.Entries = append(proposal.Entries, fill.Entries...)
	return proposal, nil
}

func oracleProposal(client *oracle.Client, view engine.PlanView, candidates []engine.ReadyChunk, lockedIDs []string, maxTasks int) (planner.Proposal, error) {
	req := oracle.BuildPlanRequest{
		TimeBudgetMin:  view.TimeBudget,
		EnergyMode:     view.EnergyMode,
		MaxTasks:       maxTasks,
		LockedChunkIDs: lockedIDs,
	}
	for _, ch := range candidates {
		req.Candidates = append(req.Candidates, oracle.CandidateChunk{
			ChunkID:        ch.ID,
			Title:          ch.Title,
			DurationMin:    ch.DurationMin,
			Tags:           ch.Tags,
			AreaTitle:      ch.AreaTitle,
			AreaWeight:     ch.AreaWeight,
			IntentionTitle: ch.IntentionTitle,
		})
	}
	// Locked chunks are plan items, not ready candidates; the oracle still
	// needs them in the pool to keep them in the suggestion.
	for _, it := range view.Items {
		if it.Chunk == nil {
			continue
		}
		sched := false
		for _, id := range lockedIDs {
			if id == it.ChunkID {
				sched = true
			}
		}
		if !sched {
			continue
		}
		req.Candidates = append(req.Candidates, oracle.CandidateChunk{
			ChunkID:        it.ChunkID,
			Title:          it.Chunk.Title,
			DurationMin:    it.Chunk.DurationMin,
			Tags:           it.Chunk.Tags,
			AreaTitle:      it.AreaTitle,
			IntentionTitle: it.IntentionTitle,
		})
	}

	resp, err := client.BuildPlan(context.Background(), req)
	if err != nil {
		return planner.Proposal{}, err
	}
	items := resp.SuggestedItems
	sort.SliceStable(items, func(i, j int) bool { return items[i].Order < items[j].Order })

	var proposal planner.Proposal
	for _, item := range items {
		proposal.Entries = append(proposal.Entries, planner.Entry{
			ChunkID: item.ChunkID,
			Reason:  item.Reasoning,
		})
	}
	return proposal, nil
}
