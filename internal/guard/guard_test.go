package guard

import (
	"testing"
	"time"

	"chunkwise/internal/apperrors"
	"chunkwise/internal/models"
)

func TestCheckDuration_Boundaries(t *testing.T) {
	cases := []struct {
		min  int
		want bool
	}{
		{29, false},
		{30, true},
		{75, true},
		{120, true},
		{121, false},
		{0, false},
		{-10, false},
	}
	for _, tc := range cases {
		err := CheckDuration(tc.min)
		if tc.want && err != nil {
			t.Errorf("CheckDuration(%d) = %v, want nil", tc.min, err)
		}
		if !tc.want && err == nil {
			t.Errorf("CheckDuration(%d) = nil, want error", tc.min)
		}
		if !tc.want && !apperrors.IsValidation(err) {
			t.Errorf("CheckDuration(%d) kind = %v, want validation", tc.min, apperrors.KindOf(err))
		}
	}
}

func TestCheckWeight_Boundaries(t *testing.T) {
	for _, w := range []int{1, 5, 10} {
		if err := CheckWeight(w); err != nil {
			t.Errorf("CheckWeight(%d) = %v, want nil", w, err)
		}
	}
	for _, w := range []int{0, 11, -1} {
		if err := CheckWeight(w); err == nil {
			t.Errorf("CheckWeight(%d) = nil, want error", w)
		}
	}
}

func TestCheckTitle_RejectsBlank(t *testing.T) {
	if err := CheckTitle("Deep work"); err != nil {
		t.Fatalf("CheckTitle failed on valid title: %v", err)
	}
	for _, title := range []string{"", "   ", "\t\n"} {
		if err := CheckTitle(title); err == nil {
			t.Errorf("CheckTitle(%q) = nil, want error", title)
		}
	}
}

func TestCheckOwner(t *testing.T) {
	if err := CheckOwner(""); !apperrors.IsAuthorization(err) {
		t.Errorf("empty owner: kind = %v, want authorization", apperrors.KindOf(err))
	}
	if err := CheckOwner("alice", "alice", "alice"); err != nil {
		t.Errorf("matching owners: %v, want nil", err)
	}
	if err := CheckOwner("alice", "alice", "bob"); !apperrors.IsAuthorization(err) {
		t.Errorf("mismatched owner: kind = %v, want authorization", apperrors.KindOf(err))
	}
}

func TestCheckActiveIntentionCap(t *testing.T) {
	active := func(n int) []models.Intention {
		out := make([]models.Intention, n)
		for i := range out {
			out[i] = models.Intention{Status: models.IntentionStatusActive}
		}
		return out
	}

	if err := CheckActiveIntentionCap(active(2)); err != nil {
		t.Errorf("2 active siblings: %v, want nil", err)
	}
	if err := CheckActiveIntentionCap(active(3)); !apperrors.IsConflict(err) {
		t.Errorf("3 active siblings: kind = %v, want conflict", apperrors.KindOf(err))
	}

	// Paused and done siblings do not count against the cap.
	mixed := append(active(2),
		models.Intention{Status: models.IntentionStatusPaused},
		models.Intention{Status: models.IntentionStatusDone},
	)
	if err := CheckActiveIntentionCap(mixed); err != nil {
		t.Errorf("2 active + 2 inactive siblings: %v, want nil", err)
	}
}

func TestCheckItemCap(t *testing.T) {
	items := make([]models.DayPlanItem, 7)
	if err := CheckItemCap(items); err != nil {
		t.Errorf("7 items: %v, want nil", err)
	}
	items = append(items, models.DayPlanItem{})
	if err := CheckItemCap(items); !apperrors.IsConflict(err) {
		t.Errorf("8 items: kind = %v, want conflict", apperrors.KindOf(err))
	}
}

func TestCheckChunkNotOpen(t *testing.T) {
	items := []models.DayPlanItem{{ChunkID: "c1"}, {ChunkID: "c2"}}
	if err := CheckChunkNotOpen(items, "c3"); err != nil {
		t.Errorf("absent chunk: %v, want nil", err)
	}
	if err := CheckChunkNotOpen(items, "c2"); !apperrors.IsConflict(err) {
		t.Errorf("present chunk: kind = %v, want conflict", apperrors.KindOf(err))
	}
}

func TestAreaHealth_NeglectThreshold(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		daysAgo int
		want    models.AreaHealth
	}{
		{0, models.AreaHealthNormal},
		{14, models.AreaHealthNormal},
		{15, models.AreaHealthNeglected},
		{60, models.AreaHealthNeglected},
	}
	for _, tc := range cases {
		touched := now.AddDate(0, 0, -tc.daysAgo)
		if got := AreaHealth(touched, now); got != tc.want {
			t.Errorf("AreaHealth(%d days ago) = %s, want %s", tc.daysAgo, got, tc.want)
		}
	}
}

func TestDaysSinceTouched(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	touched := now.AddDate(0, 0, -3)
	if got := DaysSinceTouched(touched, now); got != 3 {
		t.Errorf("DaysSinceTouched = %d, want 3", got)
	}
}
