package engine

import (
	"testing"
	"time"

	"chunkwise/internal/apperrors"
	"chunkwise/internal/models"
)

func TestCreateChunk_DurationBounds(t *testing.T) {
	f := newFixture(t)
	_, in, _ := f.scaffold()

	cases := []struct {
		min  int
		want bool
	}{
		{29, false},
		{30, true},
		{120, true},
		{121, false},
	}
	for _, tc := range cases {
		_, err := f.eng.CreateChunk(testOwner, in.ID, ChunkDraft{
			Title: "chunk", DoD: "done when done", DurationMin: tc.min,
		})
		if tc.want && err != nil {
			t.Errorf("duration %d: %v, want nil", tc.min, err)
		}
		if !tc.want && !apperrors.IsValidation(err) {
			t.Errorf("duration %d: kind = %v, want validation", tc.min, apperrors.KindOf(err))
		}
	}
}

func TestCreateChunk_InitialStatusRestricted(t *testing.T) {
	f := newFixture(t)
	_, in, _ := f.scaffold()

	c := f.chunk(in.ID, "groomed", 60, "")
	if c.Status != models.ChunkStatusBacklog {
		t.Errorf("default status = %s, want backlog", c.Status)
	}

	for _, status := range []models.ChunkStatus{models.ChunkStatusInPlan, models.ChunkStatusInProgress, models.ChunkStatusDone} {
		_, err := f.eng.CreateChunk(testOwner, in.ID, ChunkDraft{
			Title: "chunk", DoD: "done when done", DurationMin: 60, Status: status,
		})
		if !apperrors.IsValidation(err) {
			t.Errorf("initial status %s: kind = %v, want validation", status, apperrors.KindOf(err))
		}
	}
}

func TestCreateChunkBatch_Atomic(t *testing.T) {
	f := newFixture(t)
	_, in, _ := f.scaffold()

	_, err := f.eng.CreateChunkBatch(testOwner, in.ID, []ChunkDraft{
		{Title: "fine", DoD: "done", DurationMin: 45},
		{Title: "broken", DoD: "done", DurationMin: 10},
	})
	if !apperrors.IsValidation(err) {
		t.Fatalf("kind = %v, want validation", apperrors.KindOf(err))
	}

	chunks, err := f.eng.ListChunksByIntention(testOwner, in.ID, nil)
	if err != nil {
		t.Fatalf("ListChunksByIntention failed: %v", err)
	}
	// Only the scaffold chunk should exist; the batch must not have partially
	// landed.
	if len(chunks) != 1 {
		t.Errorf("got %d chunks after failed batch, want 1", len(chunks))
	}
}

func TestUpdateChunkStatus_DirectTransitions(t *testing.T) {
	f := newFixture(t)
	a, in, _ := f.scaffold()

	backlog := f.chunk(in.ID, "grooming target", 60, models.ChunkStatusBacklog)

	c, err := f.eng.UpdateChunkStatus(testOwner, backlog.ID, models.ChunkStatusReady)
	if err != nil {
		t.Fatalf("backlog->ready failed: %v", err)
	}
	if c.Status != models.ChunkStatusReady {
		t.Errorf("status = %s, want ready", c.Status)
	}

	// Marking done off-plan stamps completion and touches the area.
	before, _ := f.eng.GetArea(testOwner, a.ID)
	f.advance(time.Second)
	c, err = f.eng.UpdateChunkStatus(testOwner, backlog.ID, models.ChunkStatusDone)
	if err != nil {
		t.Fatalf("ready->done failed: %v", err)
	}
	if c.CompletedAt == nil || !c.CompletedAt.Equal(f.now) {
		t.Errorf("completedAt = %v, want %v", c.CompletedAt, f.now)
	}
	after, _ := f.eng.GetArea(testOwner, a.ID)
	if !after.LastTouchedAt.After(before.LastTouchedAt) {
		t.Errorf("area was not touched on chunk completion")
	}

	// done is terminal.
	if _, err := f.eng.UpdateChunkStatus(testOwner, backlog.ID, models.ChunkStatusReady); !apperrors.IsConflict(err) {
		t.Errorf("done->ready: kind = %v, want conflict", apperrors.KindOf(err))
	}
}

func TestUpdateChunkStatus_PlanDrivenValuesRejected(t *testing.T) {
	f := newFixture(t)
	_, _, c := f.scaffold()

	for _, status := range []models.ChunkStatus{models.ChunkStatusInPlan, models.ChunkStatusInProgress} {
		if _, err := f.eng.UpdateChunkStatus(testOwner, c.ID, status); !apperrors.IsValidation(err) {
			t.Errorf("direct %s: kind = %v, want validation", status, apperrors.KindOf(err))
		}
	}
}

func TestUpdateChunkStatus_ScheduledChunkBlocked(t *testing.T) {
	f := newFixture(t)
	_, _, c := f.scaffold()
	p := f.plan(f.date(), 240)
	f.addItem(p.ID, c.ID)

	if _, err := f.eng.UpdateChunkStatus(testOwner, c.ID, models.ChunkStatusReady); !apperrors.IsConflict(err) {
		t.Errorf("scheduled chunk: kind = %v, want conflict", apperrors.KindOf(err))
	}
}

func TestListReadyChunks_JoinsContextAndSorts(t *testing.T) {
	f := newFixture(t)
	low := f.area("Low", 2)
	high := f.area("High", 9)
	lowIn := f.intention(low.ID, "low goal")
	highIn := f.intention(high.ID, "high goal")
	f.readyChunk(lowIn.ID, "low chunk", 30)
	f.readyChunk(highIn.ID, "high chunk", 30)
	f.chunk(highIn.ID, "not ready", 30, models.ChunkStatusBacklog)

	ready, err := f.eng.ListReadyChunks(testOwner)
	if err != nil {
		t.Fatalf("ListReadyChunks failed: %v", err)
	}
	if len(ready) != 2 {
		t.Fatalf("got %d ready chunks, want 2", len(ready))
	}
	if ready[0].Title != "high chunk" || ready[0].AreaWeight != 9 {
		t.Errorf("first = %q (weight %d), want the high-weight chunk", ready[0].Title, ready[0].AreaWeight)
	}
	if ready[0].AreaTitle != "High" || ready[0].IntentionTitle != "high goal" {
		t.Errorf("context = %q/%q, want High/high goal", ready[0].AreaTitle, ready[0].IntentionTitle)
	}
}

func TestSplitChunk(t *testing.T) {
	f := newFixture(t)
	ar, in, _ := f.scaffold()
	original, err := f.eng.CreateChunk(testOwner, in.ID, ChunkDraft{
		Title: "big chunk", DoD: "all of it", DurationMin: 90,
		Tags: []string{"deep"}, Status: models.ChunkStatusReady,
	})
	if err != nil {
		t.Fatalf("CreateChunk failed: %v", err)
	}

	f.advance(48 * time.Hour)
	result, err := f.eng.SplitChunk(testOwner, original.ID, []ChunkDraft{
		{Title: "part one", DoD: "half done", DurationMin: 45},
		{Title: "part two", DoD: "other half", DurationMin: 45, Tags: []string{"light"}},
	}, "too big for one sitting")
	if err != nil {
		t.Fatalf("SplitChunk failed: %v", err)
	}

	if result.Original.Status != models.ChunkStatusDone || result.Original.CompletedAt == nil {
		t.Errorf("original not closed: status=%s completedAt=%v",
			result.Original.Status, result.Original.CompletedAt)
	}
	// Finishing the original by splitting counts as working the area.
	touched, err := f.eng.GetArea(testOwner, ar.ID)
	if err != nil {
		t.Fatalf("GetArea failed: %v", err)
	}
	if !touched.LastTouchedAt.Equal(f.now) {
		t.Errorf("area lastTouchedAt = %v, want %v", touched.LastTouchedAt, f.now)
	}
	if len(result.NewChunks) != 2 {
		t.Fatalf("got %d parts, want 2", len(result.NewChunks))
	}
	for _, nc := range result.NewChunks {
		if nc.Status != models.ChunkStatusReady {
			t.Errorf("part %q status = %s, want ready", nc.Title, nc.Status)
		}
	}
	// Tags inherit unless the part overrides them.
	if got := result.NewChunks[0].Tags; len(got) != 1 || got[0] != "deep" {
		t.Errorf("part one tags = %v, want inherited [deep]", got)
	}
	if got := result.NewChunks[1].Tags; len(got) != 1 || got[0] != "light" {
		t.Errorf("part two tags = %v, want override [light]", got)
	}
	if result.Warning != "" {
		t.Errorf("unexpected variance warning: %q", result.Warning)
	}

	splits, err := f.eng.ListSplits(testOwner, original.ID)
	if err != nil {
		t.Fatalf("ListSplits failed: %v", err)
	}
	if len(splits) != 1 || len(splits[0].NewChunkIDs) != 2 {
		t.Fatalf("split record missing or incomplete: %+v", splits)
	}
	if splits[0].Reason != "too big for one sitting" {
		t.Errorf("reason = %q", splits[0].Reason)
	}
}

func TestSplitChunk_VarianceWarning(t *testing.T) {
	f := newFixture(t)
	_, in, _ := f.scaffold()
	original := f.readyChunk(in.ID, "sixty minutes", 60)

	// 30+45=75 > 60*1.2, warned but not rejected.
	result, err := f.eng.SplitChunk(testOwner, original.ID, []ChunkDraft{
		{Title: "a", DoD: "done", DurationMin: 30},
		{Title: "b", DoD: "done", DurationMin: 45},
	}, "")
	if err != nil {
		t.Fatalf("SplitChunk failed: %v", err)
	}
	if result.Warning == "" {
		t.Errorf("expected a variance warning for 75 vs 60 minutes")
	}
}

func TestSplitChunk_Rejections(t *testing.T) {
	f := newFixture(t)
	_, in, c := f.scaffold()

	parts := []ChunkDraft{
		{Title: "a", DoD: "done", DurationMin: 30},
		{Title: "b", DoD: "done", DurationMin: 30},
	}

	if _, err := f.eng.SplitChunk(testOwner, c.ID, parts[:1], ""); !apperrors.IsValidation(err) {
		t.Errorf("single part: kind = %v, want validation", apperrors.KindOf(err))
	}

	p := f.plan(f.date(), 240)
	f.addItem(p.ID, c.ID)
	if _, err := f.eng.SplitChunk(testOwner, c.ID, parts, ""); !apperrors.IsConflict(err) {
		t.Errorf("scheduled chunk: kind = %v, want conflict", apperrors.KindOf(err))
	}

	done := f.chunk(in.ID, "finished", 60, models.ChunkStatusReady)
	if _, err := f.eng.UpdateChunkStatus(testOwner, done.ID, models.ChunkStatusDone); err != nil {
		t.Fatalf("marking done failed: %v", err)
	}
	if _, err := f.eng.SplitChunk(testOwner, done.ID, parts, ""); !apperrors.IsConflict(err) {
		t.Errorf("done chunk: kind = %v, want conflict", apperrors.KindOf(err))
	}
}

func TestDeleteChunk_KeepsClosedPlanHistory(t *testing.T) {
	f := newFixture(t)
	_, _, c := f.scaffold()
	p := f.activePlan(f.date(), 240)
	item := f.addItem(p.ID, c.ID)

	if _, err := f.eng.CompleteItem(testOwner, item.ID, 40); err != nil {
		t.Fatalf("CompleteItem failed: %v", err)
	}
	if _, err := f.eng.CompletePlan(testOwner, p.ID, models.LoadNormal, ""); err != nil {
		t.Fatalf("CompletePlan failed: %v", err)
	}

	if err := f.eng.DeleteChunk(testOwner, c.ID); err != nil {
		t.Fatalf("DeleteChunk failed: %v", err)
	}
	view, err := f.eng.GetPlan(testOwner, p.ID)
	if err != nil {
		t.Fatalf("GetPlan failed: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("closed-plan item was deleted with the chunk")
	}
	if view.Items[0].Chunk != nil {
		t.Errorf("item still resolves a deleted chunk")
	}
}
