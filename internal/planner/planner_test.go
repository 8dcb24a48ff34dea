package planner

import (
	"fmt"
	"testing"
	"time"

	"chunkwise/internal/apperrors"
	"chunkwise/internal/engine"
	"chunkwise/internal/models"
	"chunkwise/internal/storage"
)

func candidate(id string, weight, durationMin int, createdAt time.Time, tags ...string) engine.ReadyChunk {
	return engine.ReadyChunk{
		Chunk: models.Chunk{
			ID:          id,
			Title:       id,
			DurationMin: durationMin,
			Tags:        tags,
			Status:      models.ChunkStatusReady,
			CreatedAt:   createdAt,
		},
		AreaWeight: weight,
	}
}

func planItem(chunkID string, locked bool, status models.ItemStatus) engine.PlanItemView {
	return engine.PlanItemView{
		DayPlanItem: models.DayPlanItem{
			ID:      "item-" + chunkID,
			ChunkID: chunkID,
			Locked:  locked,
			Status:  status,
		},
	}
}

func TestValidate(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Candidates: []engine.ReadyChunk{
			candidate("c1", 5, 60, t0),
			candidate("c2", 5, 60, t0),
		},
		Items: []engine.PlanItemView{
			planItem("held", true, models.ItemStatusPending),
		},
		MaxTasks: 3,
	}

	cases := []struct {
		name    string
		entries []Entry
		wantErr bool
	}{
		{"keeps locked and adds candidates", []Entry{{ChunkID: "held"}, {ChunkID: "c1"}, {ChunkID: "c2"}}, false},
		{"empty proposal", nil, true},
		{"over the ceiling", []Entry{{ChunkID: "held"}, {ChunkID: "c1"}, {ChunkID: "c2"}, {ChunkID: "c3"}}, true},
		{"duplicate chunk", []Entry{{ChunkID: "held"}, {ChunkID: "c1"}, {ChunkID: "c1"}}, true},
		{"foreign chunk", []Entry{{ChunkID: "held"}, {ChunkID: "not-a-candidate"}}, true},
		{"drops the locked item", []Entry{{ChunkID: "c1"}, {ChunkID: "c2"}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(snap, Proposal{Entries: tc.entries})
			if tc.wantErr && !apperrors.IsValidation(err) {
				t.Errorf("kind = %v, want validation (err: %v)", apperrors.KindOf(err), err)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidate_FinishedLockedItemNeedNotBeKept(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Candidates: []engine.ReadyChunk{candidate("c1", 5, 60, t0)},
		Items: []engine.PlanItemView{
			planItem("done-and-locked", true, models.ItemStatusCompleted),
		},
	}
	if err := Validate(snap, Proposal{Entries: []Entry{{ChunkID: "c1"}}}); err != nil {
		t.Errorf("completed locked item blocked the proposal: %v", err)
	}
}

func TestValidate_FinishedItemsCountAgainstCapacity(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	candidates := make([]engine.ReadyChunk, 6)
	entries := make([]Entry, 6)
	for i := range candidates {
		id := fmt.Sprintf("c%d", i+1)
		candidates[i] = candidate(id, 5, 45, t0)
		entries[i] = Entry{ChunkID: id}
	}
	snap := Snapshot{
		Candidates: candidates,
		Items: []engine.PlanItemView{
			planItem("done-1", false, models.ItemStatusCompleted),
			planItem("done-2", false, models.ItemStatusCompleted),
			planItem("done-3", false, models.ItemStatusSkipped),
		},
	}

	// 6 proposed + 3 finished items held in the plan would exceed 8.
	err := Validate(snap, Proposal{Entries: entries})
	if !apperrors.IsValidation(err) {
		t.Fatalf("over-capacity proposal: kind = %v, want validation", apperrors.KindOf(err))
	}

	// 5 proposed + 3 finished fits exactly.
	if err := Validate(snap, Proposal{Entries: entries[:5]}); err != nil {
		t.Errorf("at-capacity proposal rejected: %v", err)
	}
}

func TestValidate_FinishedChunkNotReschedulable(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		// A skipped item's chunk goes back to ready and shows up as a
		// candidate, but the plan already holds its finished item.
		Candidates: []engine.ReadyChunk{candidate("skipped-chunk", 5, 45, t0)},
		Items: []engine.PlanItemView{
			planItem("skipped-chunk", false, models.ItemStatusSkipped),
		},
	}
	err := Validate(snap, Proposal{Entries: []Entry{{ChunkID: "skipped-chunk"}}})
	if !apperrors.IsValidation(err) {
		t.Fatalf("re-proposed finished chunk: kind = %v, want validation", apperrors.KindOf(err))
	}
}

func TestRank_Deterministic(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	candidates := []engine.ReadyChunk{
		candidate("old-light", 5, 30, t0, "admin"),
		candidate("heavy", 8, 60, t0.Add(time.Hour)),
		candidate("new-deep", 5, 90, t0.Add(2*time.Hour), "deep"),
	}

	ranked := Rank(candidates, models.EnergyModeDeep)
	want := []string{"heavy", "new-deep", "old-light"}
	for i, id := range want {
		if ranked[i].ID != id {
			t.Fatalf("rank[%d] = %s, want %s (full order: %v)", i, ranked[i].ID, id, ids(ranked))
		}
	}

	// Same inputs, same output.
	again := Rank(candidates, models.EnergyModeDeep)
	for i := range ranked {
		if ranked[i].ID != again[i].ID {
			t.Fatalf("ranking is not deterministic: %v vs %v", ids(ranked), ids(again))
		}
	}

	// The input slice is left alone.
	if candidates[0].ID != "old-light" {
		t.Errorf("Rank mutated its input")
	}
}

func TestRank_LightModeAffinity(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	candidates := []engine.ReadyChunk{
		candidate("deep-work", 5, 90, t0, "deep"),
		candidate("errands", 5, 30, t0.Add(time.Hour), "errand"),
	}
	ranked := Rank(candidates, models.EnergyModeLight)
	if ranked[0].ID != "errands" {
		t.Errorf("light mode ranked %s first, want errands", ranked[0].ID)
	}
}

func TestFill_RespectsBudgetAndCeiling(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	var candidates []engine.ReadyChunk
	for i := 0; i < 10; i++ {
		candidates = append(candidates, candidate(fmt.Sprintf("c%d", i), 5, 60, t0.Add(time.Duration(i)*time.Minute)))
	}

	p := Fill(candidates, models.EnergyModeNormal, 150, 8)
	if len(p.Entries) != 2 {
		t.Errorf("150 min budget fit %d chunks of 60 min, want 2", len(p.Entries))
	}

	p = Fill(candidates, models.EnergyModeNormal, 10_000, 8)
	if len(p.Entries) != 8 {
		t.Errorf("unlimited budget fit %d chunks, want the ceiling of 8", len(p.Entries))
	}

	// A too-big chunk is skipped, not allowed to overshoot.
	mixed := []engine.ReadyChunk{
		candidate("big", 9, 120, t0),
		candidate("small", 5, 30, t0),
	}
	p = Fill(mixed, models.EnergyModeNormal, 45, 8)
	if len(p.Entries) != 1 || p.Entries[0].ChunkID != "small" {
		t.Errorf("entries = %+v, want just the small chunk", p.Entries)
	}
}

func TestSummarize_Bands(t *testing.T) {
	view := func(budget int, durations ...int) engine.PlanView {
		v := engine.PlanView{DayPlan: models.DayPlan{TimeBudget: budget}}
		for i, d := range durations {
			c := models.Chunk{ID: fmt.Sprintf("c%d", i), DurationMin: d}
			v.Items = append(v.Items, engine.PlanItemView{
				DayPlanItem: models.DayPlanItem{ChunkID: c.ID},
				Chunk:       &c,
			})
		}
		return v
	}

	cases := []struct {
		name string
		view engine.PlanView
		want UtilizationBand
	}{
		{"exactly full", view(120, 60, 60), BandNominal},
		{"under budget", view(240, 60), BandNominal},
		{"near the limit", view(100, 60, 55), BandNearLimit},
		{"over budget", view(100, 60, 65), BandOverBudget},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sum := Summarize(tc.view)
			if sum.Band != tc.want {
				t.Errorf("band = %s (utilization %.2f), want %s", sum.Band, sum.Utilization, tc.want)
			}
		})
	}
}

func TestDiffProposal(t *testing.T) {
	current := []engine.PlanItemView{
		planItem("keep-me", false, models.ItemStatusPending),
		planItem("drop-me", false, models.ItemStatusPending),
		planItem("finished", false, models.ItemStatusCompleted),
	}
	p := Proposal{Entries: []Entry{{ChunkID: "keep-me"}, {ChunkID: "new-one"}}}

	d := DiffProposal(current, p)
	if len(d.Keep) != 1 || d.Keep[0].ChunkID != "keep-me" {
		t.Errorf("keep = %+v", d.Keep)
	}
	if len(d.Add) != 1 || d.Add[0].ChunkID != "new-one" {
		t.Errorf("add = %+v", d.Add)
	}
	// Finished items are history, not removals.
	if len(d.Remove) != 1 || d.Remove[0].ChunkID != "drop-me" {
		t.Errorf("remove = %+v", d.Remove)
	}
}

func ids(chunks []engine.ReadyChunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.ID
	}
	return out
}

func TestApply_ReconcilesThroughEngine(t *testing.T) {
	store := storage.NewMemoryStore()
	eng := engine.New(store)
	owner := "user-1"

	area, err := eng.CreateArea(owner, engine.CreateAreaInput{Title: "Work", Weight: 5})
	if err != nil {
		t.Fatalf("CreateArea failed: %v", err)
	}
	intent, err := eng.CreateIntention(owner, engine.CreateIntentionInput{AreaID: area.ID, Title: "ship it"})
	if err != nil {
		t.Fatalf("CreateIntention failed: %v", err)
	}
	mkChunk := func(title string) models.Chunk {
		c, err := eng.CreateChunk(owner, intent.ID, engine.ChunkDraft{
			Title: title, DoD: "done", DurationMin: 45, Status: models.ChunkStatusReady,
		})
		if err != nil {
			t.Fatalf("CreateChunk(%s) failed: %v", title, err)
		}
		return c
	}
	kept := mkChunk("kept")
	dropped := mkChunk("dropped")
	added := mkChunk("added")

	plan, err := eng.CreatePlan(owner, engine.CreatePlanInput{Date: "2025-06-02", TimeBudget: 240})
	if err != nil {
		t.Fatalf("CreatePlan failed: %v", err)
	}
	if _, err := eng.AddItem(owner, plan.ID, kept.ID, false, ""); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if _, err := eng.AddItem(owner, plan.ID, dropped.ID, false, ""); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	view, err := New(eng).Apply(owner, plan.ID, Proposal{Entries: []Entry{
		{ChunkID: "added-wrong"},
	}})
	if !apperrors.IsValidation(err) {
		t.Fatalf("invalid proposal: kind = %v, want validation", apperrors.KindOf(err))
	}

	view, err = New(eng).Apply(owner, plan.ID, Proposal{Entries: []Entry{
		{ChunkID: added.ID, Reason: "fresh"},
		{ChunkID: kept.ID},
	}})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(view.Items) != 2 {
		t.Fatalf("plan has %d items, want 2", len(view.Items))
	}
	if view.Items[0].ChunkID != added.ID || view.Items[1].ChunkID != kept.ID {
		t.Errorf("order = %s,%s, want added first", view.Items[0].ChunkID, view.Items[1].ChunkID)
	}

	// The dropped chunk is back in the candidate pool.
	droppedNow, err := eng.GetChunk(owner, dropped.ID)
	if err != nil {
		t.Fatalf("GetChunk failed: %v", err)
	}
	if droppedNow.Status != models.ChunkStatusReady {
		t.Errorf("dropped chunk status = %s, want ready", droppedNow.Status)
	}
}

func TestApply_OverCapacityProposalLeavesPlanUntouched(t *testing.T) {
	store := storage.NewMemoryStore()
	eng := engine.New(store)
	owner := "user-1"

	area, err := eng.CreateArea(owner, engine.CreateAreaInput{Title: "Work", Weight: 5})
	if err != nil {
		t.Fatalf("CreateArea failed: %v", err)
	}
	intent, err := eng.CreateIntention(owner, engine.CreateIntentionInput{AreaID: area.ID, Title: "ship it"})
	if err != nil {
		t.Fatalf("CreateIntention failed: %v", err)
	}
	mkChunk := func(title string) models.Chunk {
		c, err := eng.CreateChunk(owner, intent.ID, engine.ChunkDraft{
			Title: title, DoD: "done", DurationMin: 30, Status: models.ChunkStatusReady,
		})
		if err != nil {
			t.Fatalf("CreateChunk(%s) failed: %v", title, err)
		}
		return c
	}

	plan, err := eng.CreatePlan(owner, engine.CreatePlanInput{Date: "2025-06-02", TimeBudget: 480})
	if err != nil {
		t.Fatalf("CreatePlan failed: %v", err)
	}

	// Three items finished earlier in the day keep their slots.
	for i := 0; i < 3; i++ {
		c := mkChunk(fmt.Sprintf("finished %d", i+1))
		item, err := eng.AddItem(owner, plan.ID, c.ID, false, "")
		if err != nil {
			t.Fatalf("AddItem failed: %v", err)
		}
		if _, err := eng.CompleteItem(owner, item.ID, 30); err != nil {
			t.Fatalf("CompleteItem failed: %v", err)
		}
	}

	proposal := Proposal{}
	for i := 0; i < 6; i++ {
		c := mkChunk(fmt.Sprintf("fresh %d", i+1))
		proposal.Entries = append(proposal.Entries, Entry{ChunkID: c.ID})
	}

	// 6 new plus 3 finished would exceed the plan cap; nothing may land.
	_, err = New(eng).Apply(owner, plan.ID, proposal)
	if !apperrors.IsValidation(err) {
		t.Fatalf("Apply: kind = %v, want validation", apperrors.KindOf(err))
	}

	view, err := eng.GetPlan(owner, plan.ID)
	if err != nil {
		t.Fatalf("GetPlan failed: %v", err)
	}
	if len(view.Items) != 3 {
		t.Fatalf("plan has %d items after rejected proposal, want the 3 finished ones", len(view.Items))
	}
	for _, it := range view.Items {
		if it.Status != models.ItemStatusCompleted {
			t.Errorf("item %s status = %s, want completed", it.ID, it.Status)
		}
	}
	for _, entry := range proposal.Entries {
		c, err := eng.GetChunk(owner, entry.ChunkID)
		if err != nil {
			t.Fatalf("GetChunk failed: %v", err)
		}
		if c.Status != models.ChunkStatusReady {
			t.Errorf("chunk %s status = %s, want ready", c.ID, c.Status)
		}
	}
}
