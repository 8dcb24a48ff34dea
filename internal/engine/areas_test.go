package engine

import (
	"testing"
	"time"

	"chunkwise/internal/apperrors"
	"chunkwise/internal/models"
)

func TestCreateArea_Defaults(t *testing.T) {
	f := newFixture(t)

	a := f.area("Health", 7)

	if a.Status != models.AreaStatusActive {
		t.Errorf("status = %s, want active", a.Status)
	}
	if a.Health != models.AreaHealthNormal {
		t.Errorf("health = %s, want normal", a.Health)
	}
	if !a.LastTouchedAt.Equal(f.now) {
		t.Errorf("lastTouchedAt = %v, want %v", a.LastTouchedAt, f.now)
	}
}

func TestCreateArea_Validation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name string
		in   CreateAreaInput
	}{
		{"empty title", CreateAreaInput{Title: "  ", Weight: 5}},
		{"weight too low", CreateAreaInput{Title: "Health", Weight: 0}},
		{"weight too high", CreateAreaInput{Title: "Health", Weight: 11}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.eng.CreateArea(testOwner, tc.in)
			if !apperrors.IsValidation(err) {
				t.Errorf("kind = %v, want validation (err: %v)", apperrors.KindOf(err), err)
			}
		})
	}

	if _, err := f.eng.CreateArea("", CreateAreaInput{Title: "Health", Weight: 5}); !apperrors.IsAuthorization(err) {
		t.Errorf("empty owner: kind = %v, want authorization", apperrors.KindOf(err))
	}
}

func TestGetArea_OwnershipAndMissing(t *testing.T) {
	f := newFixture(t)
	a := f.area("Health", 5)

	if _, err := f.eng.GetArea(testOwner, "nope"); !apperrors.IsNotFound(err) {
		t.Errorf("missing area: kind = %v, want not-found", apperrors.KindOf(err))
	}
	if _, err := f.eng.GetArea("someone-else", a.ID); !apperrors.IsAuthorization(err) {
		t.Errorf("foreign owner: kind = %v, want authorization", apperrors.KindOf(err))
	}
}

func TestListAreas_SortsAndDerivesHealth(t *testing.T) {
	f := newFixture(t)
	f.area("Light", 3)
	heavy := f.area("Heavy", 9)

	f.advance(20 * 24 * time.Hour)

	areas, err := f.eng.ListAreas(testOwner, nil)
	if err != nil {
		t.Fatalf("ListAreas failed: %v", err)
	}
	if len(areas) != 2 {
		t.Fatalf("got %d areas, want 2", len(areas))
	}
	if areas[0].ID != heavy.ID {
		t.Errorf("first area = %s, want the heavier one", areas[0].Title)
	}
	// Health is derived from the untouched age, not the stored value.
	for _, a := range areas {
		if a.Health != models.AreaHealthNeglected {
			t.Errorf("area %s health = %s, want neglected after 20 days", a.Title, a.Health)
		}
	}
}

func TestUpdateArea_PartialAndInvalid(t *testing.T) {
	f := newFixture(t)
	a := f.area("Health", 5)

	weight := 8
	updated, err := f.eng.UpdateArea(testOwner, a.ID, UpdateAreaInput{Weight: &weight})
	if err != nil {
		t.Fatalf("UpdateArea failed: %v", err)
	}
	if updated.Weight != 8 || updated.Title != "Health" {
		t.Errorf("got weight=%d title=%q, want 8/Health", updated.Weight, updated.Title)
	}

	bad := models.AreaStatus("bogus")
	if _, err := f.eng.UpdateArea(testOwner, a.ID, UpdateAreaInput{Status: &bad}); !apperrors.IsValidation(err) {
		t.Errorf("invalid status: kind = %v, want validation", apperrors.KindOf(err))
	}
}

func TestDeleteArea_CascadesToChunksAndOpenItems(t *testing.T) {
	f := newFixture(t)
	a, in, c := f.scaffold()
	p := f.plan(f.date(), 240)
	f.addItem(p.ID, c.ID)

	if err := f.eng.DeleteArea(testOwner, a.ID); err != nil {
		t.Fatalf("DeleteArea failed: %v", err)
	}

	if _, err := f.eng.GetIntention(testOwner, in.ID); !apperrors.IsNotFound(err) {
		t.Errorf("intention survived the cascade")
	}
	if _, err := f.eng.GetChunk(testOwner, c.ID); !apperrors.IsNotFound(err) {
		t.Errorf("chunk survived the cascade")
	}
	view, err := f.eng.GetPlan(testOwner, p.ID)
	if err != nil {
		t.Fatalf("GetPlan failed: %v", err)
	}
	if len(view.Items) != 0 {
		t.Errorf("open plan still has %d items, want 0", len(view.Items))
	}
}

func TestAreaHealthDetails(t *testing.T) {
	f := newFixture(t)
	a, in, _ := f.scaffold()
	_ = in

	f.advance(16 * 24 * time.Hour)

	report, err := f.eng.AreaHealthDetails(testOwner, a.ID)
	if err != nil {
		t.Fatalf("AreaHealthDetails failed: %v", err)
	}
	if report.Health != models.AreaHealthNeglected {
		t.Errorf("health = %s, want neglected", report.Health)
	}
	if report.DaysSinceTouched != 16 {
		t.Errorf("daysSinceTouched = %d, want 16", report.DaysSinceTouched)
	}
	if report.ActiveIntentions != 1 || report.ReadyChunks != 1 {
		t.Errorf("got %d intentions / %d ready chunks, want 1/1",
			report.ActiveIntentions, report.ReadyChunks)
	}
	if report.RecommendedAction != "schedule a ready chunk from this area today" {
		t.Errorf("unexpected recommendation: %q", report.RecommendedAction)
	}
}
