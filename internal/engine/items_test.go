package engine

import (
	"fmt"
	"testing"

	"chunkwise/internal/apperrors"
	"chunkwise/internal/models"
)

func TestAddItem_SchedulesReadyChunk(t *testing.T) {
	f := newFixture(t)
	_, in, c := f.scaffold()
	second := f.readyChunk(in.ID, "second", 30)
	p := f.plan(f.date(), 240)

	first := f.addItem(p.ID, c.ID)
	if first.Status != models.ItemStatusPending || first.Order != 0 {
		t.Errorf("first item = %s/order %d, want pending/0", first.Status, first.Order)
	}
	if got := f.getChunk(c.ID); got.Status != models.ChunkStatusInPlan {
		t.Errorf("chunk status = %s, want inPlan", got.Status)
	}

	next := f.addItem(p.ID, second.ID)
	if next.Order != 1 {
		t.Errorf("second item order = %d, want 1", next.Order)
	}
}

func TestAddItem_Rejections(t *testing.T) {
	f := newFixture(t)
	_, in, c := f.scaffold()
	p := f.plan(f.date(), 240)
	f.addItem(p.ID, c.ID)

	// Same chunk twice in one plan.
	if _, err := f.eng.AddItem(testOwner, p.ID, c.ID, false, ""); !apperrors.IsConflict(err) {
		t.Errorf("duplicate chunk: kind = %v, want conflict", apperrors.KindOf(err))
	}

	// Backlog chunk is not schedulable.
	backlog := f.chunk(in.ID, "ungroomed", 30, models.ChunkStatusBacklog)
	if _, err := f.eng.AddItem(testOwner, p.ID, backlog.ID, false, ""); !apperrors.IsConflict(err) {
		t.Errorf("backlog chunk: kind = %v, want conflict", apperrors.KindOf(err))
	}

	// A chunk open in another plan cannot be scheduled again.
	other := f.plan("2025-06-03", 240)
	if _, err := f.eng.AddItem(testOwner, other.ID, c.ID, false, ""); !apperrors.IsConflict(err) {
		t.Errorf("chunk open elsewhere: kind = %v, want conflict", apperrors.KindOf(err))
	}
}

func TestAddItem_ItemCap(t *testing.T) {
	f := newFixture(t)
	a := f.area("Work", 5)
	in := f.intention(a.ID, "goal")
	p := f.plan(f.date(), 600)

	for i := 0; i < 8; i++ {
		c := f.readyChunk(in.ID, fmt.Sprintf("chunk %d", i), 30)
		f.addItem(p.ID, c.ID)
	}
	ninth := f.readyChunk(in.ID, "ninth", 30)
	if _, err := f.eng.AddItem(testOwner, p.ID, ninth.ID, false, ""); !apperrors.IsConflict(err) {
		t.Errorf("9th item: kind = %v, want conflict", apperrors.KindOf(err))
	}
}

func TestAddItem_ClosedPlanRejected(t *testing.T) {
	f := newFixture(t)
	_, _, c := f.scaffold()
	p := f.activePlan(f.date(), 240)
	if _, err := f.eng.CompletePlan(testOwner, p.ID, models.LoadLight, ""); err != nil {
		t.Fatalf("CompletePlan failed: %v", err)
	}

	if _, err := f.eng.AddItem(testOwner, p.ID, c.ID, false, ""); !apperrors.IsConflict(err) {
		t.Errorf("completed plan: kind = %v, want conflict", apperrors.KindOf(err))
	}
}

func TestStartItem_RequiresActivePlan(t *testing.T) {
	f := newFixture(t)
	_, _, c := f.scaffold()
	p := f.plan(f.date(), 240)
	item := f.addItem(p.ID, c.ID)

	if _, err := f.eng.StartItem(testOwner, item.ID); !apperrors.IsConflict(err) {
		t.Errorf("draft plan: kind = %v, want conflict", apperrors.KindOf(err))
	}
}

func TestStartItem_SingleRunningItem(t *testing.T) {
	f := newFixture(t)
	_, in, c := f.scaffold()
	second := f.readyChunk(in.ID, "second", 30)
	p := f.activePlan(f.date(), 240)
	itemA := f.addItem(p.ID, c.ID)
	itemB := f.addItem(p.ID, second.ID)

	started, err := f.eng.StartItem(testOwner, itemA.ID)
	if err != nil {
		t.Fatalf("StartItem failed: %v", err)
	}
	if started.Status != models.ItemStatusInProgress || started.StartedAt == nil {
		t.Errorf("item = %s/startedAt %v, want inProgress with timestamp", started.Status, started.StartedAt)
	}
	if got := f.getChunk(c.ID); got.Status != models.ChunkStatusInProgress {
		t.Errorf("chunk status = %s, want inProgress", got.Status)
	}

	// Starting the second demotes the first back to pending in the same
	// transaction.
	if _, err := f.eng.StartItem(testOwner, itemB.ID); err != nil {
		t.Fatalf("StartItem(B) failed: %v", err)
	}
	view, err := f.eng.GetPlan(testOwner, p.ID)
	if err != nil {
		t.Fatalf("GetPlan failed: %v", err)
	}
	running := 0
	for _, it := range view.Items {
		if it.Status == models.ItemStatusInProgress {
			running++
		}
		if it.ID == itemA.ID && it.Status != models.ItemStatusPending {
			t.Errorf("demoted item = %s, want pending", it.Status)
		}
	}
	if running != 1 {
		t.Errorf("%d items in progress, want exactly 1", running)
	}
	if got := f.getChunk(c.ID); got.Status != models.ChunkStatusInPlan {
		t.Errorf("demoted chunk status = %s, want inPlan", got.Status)
	}
}

func TestStartItem_Idempotent(t *testing.T) {
	f := newFixture(t)
	_, _, c := f.scaffold()
	p := f.activePlan(f.date(), 240)
	item := f.addItem(p.ID, c.ID)

	first, err := f.eng.StartItem(testOwner, item.ID)
	if err != nil {
		t.Fatalf("StartItem failed: %v", err)
	}
	again, err := f.eng.StartItem(testOwner, item.ID)
	if err != nil {
		t.Fatalf("second StartItem failed: %v", err)
	}
	if !again.StartedAt.Equal(*first.StartedAt) {
		t.Errorf("startedAt changed on repeat start")
	}
}

func TestPauseItem(t *testing.T) {
	f := newFixture(t)
	_, _, c := f.scaffold()
	p := f.activePlan(f.date(), 240)
	item := f.addItem(p.ID, c.ID)

	if _, err := f.eng.PauseItem(testOwner, item.ID); !apperrors.IsConflict(err) {
		t.Errorf("pausing a pending item: kind = %v, want conflict", apperrors.KindOf(err))
	}

	if _, err := f.eng.StartItem(testOwner, item.ID); err != nil {
		t.Fatalf("StartItem failed: %v", err)
	}
	paused, err := f.eng.PauseItem(testOwner, item.ID)
	if err != nil {
		t.Fatalf("PauseItem failed: %v", err)
	}
	if paused.Status != models.ItemStatusPending {
		t.Errorf("item = %s, want pending", paused.Status)
	}
	if got := f.getChunk(c.ID); got.Status != models.ChunkStatusInPlan {
		t.Errorf("chunk status = %s, want inPlan", got.Status)
	}
}

func TestCompleteItem(t *testing.T) {
	f := newFixture(t)
	a, _, c := f.scaffold()
	p := f.activePlan(f.date(), 240)
	item := f.addItem(p.ID, c.ID)

	if _, err := f.eng.CompleteItem(testOwner, item.ID, 0); !apperrors.IsValidation(err) {
		t.Errorf("zero actual minutes: kind = %v, want validation", apperrors.KindOf(err))
	}

	done, err := f.eng.CompleteItem(testOwner, item.ID, 50)
	if err != nil {
		t.Fatalf("CompleteItem failed: %v", err)
	}
	if done.Status != models.ItemStatusCompleted || done.ActualDurationMin == nil || *done.ActualDurationMin != 50 {
		t.Errorf("item = %+v, want completed with 50 actual minutes", done)
	}
	chunk := f.getChunk(c.ID)
	if chunk.Status != models.ChunkStatusDone || chunk.CompletedAt == nil {
		t.Errorf("chunk = %s/%v, want done with completedAt", chunk.Status, chunk.CompletedAt)
	}
	area, _ := f.eng.GetArea(testOwner, a.ID)
	if !area.LastTouchedAt.Equal(f.now) {
		t.Errorf("area not touched on completion")
	}

	if _, err := f.eng.CompleteItem(testOwner, item.ID, 10); !apperrors.IsConflict(err) {
		t.Errorf("double complete: kind = %v, want conflict", apperrors.KindOf(err))
	}
}

func TestSkipItem(t *testing.T) {
	f := newFixture(t)
	_, _, c := f.scaffold()
	p := f.activePlan(f.date(), 240)
	item := f.addItem(p.ID, c.ID)

	skipped, err := f.eng.SkipItem(testOwner, item.ID)
	if err != nil {
		t.Fatalf("SkipItem failed: %v", err)
	}
	if skipped.Status != models.ItemStatusSkipped {
		t.Errorf("item = %s, want skipped", skipped.Status)
	}
	// The chunk returns to the ready pool for another day.
	if got := f.getChunk(c.ID); got.Status != models.ChunkStatusReady {
		t.Errorf("chunk status = %s, want ready", got.Status)
	}

	if _, err := f.eng.SkipItem(testOwner, item.ID); !apperrors.IsConflict(err) {
		t.Errorf("skipping a skipped item: kind = %v, want conflict", apperrors.KindOf(err))
	}
}

func TestRemoveItem(t *testing.T) {
	f := newFixture(t)
	_, _, c := f.scaffold()
	p := f.plan(f.date(), 240)
	item := f.addItem(p.ID, c.ID)

	if err := f.eng.RemoveItem(testOwner, item.ID); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if got := f.getChunk(c.ID); got.Status != models.ChunkStatusReady {
		t.Errorf("chunk status = %s, want ready", got.Status)
	}
	view, err := f.eng.GetPlan(testOwner, p.ID)
	if err != nil {
		t.Fatalf("GetPlan failed: %v", err)
	}
	if len(view.Items) != 0 {
		t.Errorf("plan still has %d items", len(view.Items))
	}
}

func TestRemoveItem_TerminalRejected(t *testing.T) {
	f := newFixture(t)
	_, _, c := f.scaffold()
	p := f.activePlan(f.date(), 240)
	item := f.addItem(p.ID, c.ID)
	if _, err := f.eng.CompleteItem(testOwner, item.ID, 30); err != nil {
		t.Fatalf("CompleteItem failed: %v", err)
	}

	if err := f.eng.RemoveItem(testOwner, item.ID); !apperrors.IsConflict(err) {
		t.Errorf("removing a completed item: kind = %v, want conflict", apperrors.KindOf(err))
	}
	// The finished chunk keeps its status regardless.
	if got := f.getChunk(c.ID); got.Status != models.ChunkStatusDone {
		t.Errorf("chunk status = %s, want done", got.Status)
	}
}

func TestUpdateItemStatus(t *testing.T) {
	f := newFixture(t)
	_, _, c := f.scaffold()
	p := f.activePlan(f.date(), 240)
	item := f.addItem(p.ID, c.ID)

	if _, err := f.eng.UpdateItemStatus(testOwner, item.ID, models.ItemStatusInProgress, nil); !apperrors.IsValidation(err) {
		t.Errorf("generic inProgress: kind = %v, want validation", apperrors.KindOf(err))
	}

	moved, err := f.eng.UpdateItemStatus(testOwner, item.ID, models.ItemStatusMoved, nil)
	if err != nil {
		t.Fatalf("move failed: %v", err)
	}
	if moved.Status != models.ItemStatusMoved {
		t.Errorf("item = %s, want moved", moved.Status)
	}
	if got := f.getChunk(c.ID); got.Status != models.ChunkStatusReady {
		t.Errorf("chunk status = %s, want ready after move", got.Status)
	}

	// Back to pending re-reserves the chunk.
	pending, err := f.eng.UpdateItemStatus(testOwner, item.ID, models.ItemStatusPending, nil)
	if err != nil {
		t.Fatalf("pending failed: %v", err)
	}
	if pending.CompletedAt != nil {
		t.Errorf("completedAt not cleared on pending")
	}
	if got := f.getChunk(c.ID); got.Status != models.ChunkStatusInPlan {
		t.Errorf("chunk status = %s, want inPlan", got.Status)
	}
}

func TestUpdateItemStatus_DoneChunkNeverDowngraded(t *testing.T) {
	f := newFixture(t)
	_, _, c := f.scaffold()
	p := f.activePlan(f.date(), 240)
	item := f.addItem(p.ID, c.ID)
	if _, err := f.eng.CompleteItem(testOwner, item.ID, 30); err != nil {
		t.Fatalf("CompleteItem failed: %v", err)
	}

	if _, err := f.eng.UpdateItemStatus(testOwner, item.ID, models.ItemStatusSkipped, nil); err != nil {
		t.Fatalf("skip after complete failed: %v", err)
	}
	if got := f.getChunk(c.ID); got.Status != models.ChunkStatusDone {
		t.Errorf("chunk status = %s, want done untouched", got.Status)
	}
}

func TestReorderItems(t *testing.T) {
	f := newFixture(t)
	_, in, c := f.scaffold()
	second := f.readyChunk(in.ID, "second", 30)
	p := f.plan(f.date(), 240)
	itemA := f.addItem(p.ID, c.ID)
	itemB := f.addItem(p.ID, second.ID)

	err := f.eng.ReorderItems(testOwner, p.ID, []ItemOrder{
		{ItemID: itemB.ID, Order: 0},
		{ItemID: itemA.ID, Order: 1},
	})
	if err != nil {
		t.Fatalf("ReorderItems failed: %v", err)
	}
	view, err := f.eng.GetPlan(testOwner, p.ID)
	if err != nil {
		t.Fatalf("GetPlan failed: %v", err)
	}
	if view.Items[0].ID != itemB.ID {
		t.Errorf("first item after reorder = %s, want %s", view.Items[0].ID, itemB.ID)
	}

	other := f.plan("2025-06-03", 240)
	if err := f.eng.ReorderItems(testOwner, other.ID, []ItemOrder{{ItemID: itemA.ID, Order: 0}}); !apperrors.IsValidation(err) {
		t.Errorf("foreign item: kind = %v, want validation", apperrors.KindOf(err))
	}
}
