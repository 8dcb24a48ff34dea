package engine

import (
	"fmt"
	"testing"
	"time"

	"chunkwise/internal/models"
	"chunkwise/internal/storage"
)

const testOwner = "user-1"

// fixture wires an engine to an in-memory store with a controllable clock and
// deterministic ids.
type fixture struct {
	t     *testing.T
	eng   *Engine
	store *storage.MemoryStore
	now   time.Time
	seq   int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:     t,
		store: storage.NewMemoryStore(),
		now:   time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
	}
	f.eng = New(f.store,
		WithClock(func() time.Time { return f.now }),
		WithIDGenerator(func() string {
			f.seq++
			return fmt.Sprintf("id-%03d", f.seq)
		}),
	)
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *fixture) date() string {
	return f.now.Format("2006-01-02")
}

func (f *fixture) area(title string, weight int) models.Area {
	f.t.Helper()
	a, err := f.eng.CreateArea(testOwner, CreateAreaInput{Title: title, Weight: weight})
	if err != nil {
		f.t.Fatalf("CreateArea(%q) failed: %v", title, err)
	}
	return a
}

func (f *fixture) intention(areaID, title string) models.Intention {
	f.t.Helper()
	in, err := f.eng.CreateIntention(testOwner, CreateIntentionInput{AreaID: areaID, Title: title})
	if err != nil {
		f.t.Fatalf("CreateIntention(%q) failed: %v", title, err)
	}
	return in
}

func (f *fixture) chunk(intentionID, title string, durationMin int, status models.ChunkStatus) models.Chunk {
	f.t.Helper()
	c, err := f.eng.CreateChunk(testOwner, intentionID, ChunkDraft{
		Title:       title,
		DoD:         "it is verifiably finished",
		DurationMin: durationMin,
		Status:      status,
	})
	if err != nil {
		f.t.Fatalf("CreateChunk(%q) failed: %v", title, err)
	}
	return c
}

func (f *fixture) readyChunk(intentionID, title string, durationMin int) models.Chunk {
	return f.chunk(intentionID, title, durationMin, models.ChunkStatusReady)
}

func (f *fixture) plan(date string, budgetMin int) models.DayPlan {
	f.t.Helper()
	p, err := f.eng.CreatePlan(testOwner, CreatePlanInput{Date: date, TimeBudget: budgetMin})
	if err != nil {
		f.t.Fatalf("CreatePlan(%s) failed: %v", date, err)
	}
	return p
}

func (f *fixture) activePlan(date string, budgetMin int) models.DayPlan {
	f.t.Helper()
	p := f.plan(date, budgetMin)
	p, err := f.eng.FinalizePlan(testOwner, p.ID)
	if err != nil {
		f.t.Fatalf("FinalizePlan failed: %v", err)
	}
	return p
}

func (f *fixture) addItem(planID, chunkID string) models.DayPlanItem {
	f.t.Helper()
	it, err := f.eng.AddItem(testOwner, planID, chunkID, false, "")
	if err != nil {
		f.t.Fatalf("AddItem failed: %v", err)
	}
	return it
}

// scaffold creates one area, one intention and one ready chunk, the minimum
// for plan and item tests.
func (f *fixture) scaffold() (models.Area, models.Intention, models.Chunk) {
	f.t.Helper()
	a := f.area("Health", 5)
	in := f.intention(a.ID, "Build a running habit")
	c := f.readyChunk(in.ID, "Run 5k", 45)
	return a, in, c
}

func (f *fixture) getChunk(id string) models.Chunk {
	f.t.Helper()
	c, err := f.eng.GetChunk(testOwner, id)
	if err != nil {
		f.t.Fatalf("GetChunk(%s) failed: %v", id, err)
	}
	return c
}
