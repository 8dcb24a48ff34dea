package engine

import (
	"testing"

	"chunkwise/internal/apperrors"
	"chunkwise/internal/models"
)

func TestCreateIntention_ActiveCap(t *testing.T) {
	f := newFixture(t)
	a := f.area("Work", 5)

	for i := 0; i < 3; i++ {
		f.intention(a.ID, "goal")
	}

	_, err := f.eng.CreateIntention(testOwner, CreateIntentionInput{AreaID: a.ID, Title: "one too many"})
	if !apperrors.IsConflict(err) {
		t.Errorf("4th active intention: kind = %v, want conflict", apperrors.KindOf(err))
	}

	// A paused intention does not count against the cap.
	if _, err := f.eng.CreateIntention(testOwner, CreateIntentionInput{
		AreaID: a.ID, Title: "parked", Status: models.IntentionStatusPaused,
	}); err != nil {
		t.Errorf("paused 4th intention: %v, want nil", err)
	}
}

func TestCreateIntention_AssignsSequentialOrder(t *testing.T) {
	f := newFixture(t)
	a := f.area("Work", 5)

	first := f.intention(a.ID, "first")
	second := f.intention(a.ID, "second")

	if first.Order != 0 || second.Order != 1 {
		t.Errorf("orders = %d,%d, want 0,1", first.Order, second.Order)
	}
}

func TestUpdateIntention_ReactivationCountsAgainstCap(t *testing.T) {
	f := newFixture(t)
	a := f.area("Work", 5)
	parked, err := f.eng.CreateIntention(testOwner, CreateIntentionInput{
		AreaID: a.ID, Title: "parked", Status: models.IntentionStatusPaused,
	})
	if err != nil {
		t.Fatalf("CreateIntention failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		f.intention(a.ID, "goal")
	}

	active := models.IntentionStatusActive
	if _, err := f.eng.UpdateIntention(testOwner, parked.ID, UpdateIntentionInput{Status: &active}); !apperrors.IsConflict(err) {
		t.Errorf("reactivation at cap: kind = %v, want conflict", apperrors.KindOf(err))
	}
}

func TestUpdateIntention_StatusChangeBelowCap(t *testing.T) {
	f := newFixture(t)
	a := f.area("Work", 5)
	in := f.intention(a.ID, "goal")

	paused := models.IntentionStatusPaused
	if _, err := f.eng.UpdateIntention(testOwner, in.ID, UpdateIntentionInput{Status: &paused}); err != nil {
		t.Fatalf("pause failed: %v", err)
	}
	active := models.IntentionStatusActive
	updated, err := f.eng.UpdateIntention(testOwner, in.ID, UpdateIntentionInput{Status: &active})
	if err != nil {
		t.Fatalf("reactivate failed: %v", err)
	}
	if updated.Status != models.IntentionStatusActive {
		t.Errorf("status = %s, want active", updated.Status)
	}
}

func TestReorderIntentions(t *testing.T) {
	f := newFixture(t)
	a := f.area("Work", 5)
	first := f.intention(a.ID, "first")
	second := f.intention(a.ID, "second")

	if err := f.eng.ReorderIntentions(testOwner, a.ID, []string{second.ID, first.ID}); err != nil {
		t.Fatalf("ReorderIntentions failed: %v", err)
	}
	list, err := f.eng.ListIntentionsByArea(testOwner, a.ID, nil)
	if err != nil {
		t.Fatalf("ListIntentionsByArea failed: %v", err)
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Errorf("order after reorder = %s,%s, want second,first", list[0].Title, list[1].Title)
	}

	if err := f.eng.ReorderIntentions(testOwner, a.ID, []string{first.ID}); !apperrors.IsValidation(err) {
		t.Errorf("partial reorder: kind = %v, want validation", apperrors.KindOf(err))
	}
	if err := f.eng.ReorderIntentions(testOwner, a.ID, []string{first.ID, "foreign"}); !apperrors.IsValidation(err) {
		t.Errorf("foreign id: kind = %v, want validation", apperrors.KindOf(err))
	}
}

func TestCheckIntentionLimit(t *testing.T) {
	f := newFixture(t)
	a := f.area("Work", 5)
	f.intention(a.ID, "one")
	f.intention(a.ID, "two")

	limit, err := f.eng.CheckIntentionLimit(testOwner, a.ID)
	if err != nil {
		t.Fatalf("CheckIntentionLimit failed: %v", err)
	}
	if limit.ActiveCount != 2 || limit.AtLimit {
		t.Errorf("got count=%d atLimit=%v, want 2/false", limit.ActiveCount, limit.AtLimit)
	}

	f.intention(a.ID, "three")
	limit, err = f.eng.CheckIntentionLimit(testOwner, a.ID)
	if err != nil {
		t.Fatalf("CheckIntentionLimit failed: %v", err)
	}
	if !limit.AtLimit {
		t.Errorf("atLimit = false with 3 active intentions")
	}
}

func TestDeleteIntention_Cascades(t *testing.T) {
	f := newFixture(t)
	_, in, c := f.scaffold()

	if err := f.eng.DeleteIntention(testOwner, in.ID); err != nil {
		t.Fatalf("DeleteIntention failed: %v", err)
	}
	if _, err := f.eng.GetChunk(testOwner, c.ID); !apperrors.IsNotFound(err) {
		t.Errorf("chunk survived intention delete")
	}
}
