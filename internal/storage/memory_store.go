package storage

import (
	"sort"
	"sync"

	"chunkwise/internal/models"
)

// MemoryStore is an in-process Provider used by tests and as a reference
// implementation of the Store contract. Not durable.
type MemoryStore struct {
	mu sync.Mutex

	areas      map[string]models.Area
	intentions map[string]models.Intention
	chunks     map[string]models.Chunk
	plans      map[string]models.DayPlan
	items      map[string]models.DayPlanItem
	reviews    map[string]models.DayReview
	splits     map[string]models.ChunkSplit
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		areas:      make(map[string]models.Area),
		intentions: make(map[string]models.Intention),
		chunks:     make(map[string]models.Chunk),
		plans:      make(map[string]models.DayPlan),
		items:      make(map[string]models.DayPlanItem),
		reviews:    make(map[string]models.DayReview),
		splits:     make(map[string]models.ChunkSplit),
	}
}

func (s *MemoryStore) Init() error           { return nil }
func (s *MemoryStore) Load() error           { return nil }
func (s *MemoryStore) Close() error          { return nil }
func (s *MemoryStore) GetConfigPath() string { return ":memory:" }

// Transact snapshots every table, runs fn, and restores the snapshot if fn
// fails. Writes replace whole records, so map-level copies are sufficient.
func (s *MemoryStore) Transact(fn func(Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := struct {
		areas      map[string]models.Area
		intentions map[string]models.Intention
		chunks     map[string]models.Chunk
		plans      map[string]models.DayPlan
		items      map[string]models.DayPlanItem
		reviews    map[string]models.DayReview
		splits     map[string]models.ChunkSplit
	}{
		areas:      cloneMap(s.areas),
		intentions: cloneMap(s.intentions),
		chunks:     cloneMap(s.chunks),
		plans:      cloneMap(s.plans),
		items:      cloneMap(s.items),
		reviews:    cloneMap(s.reviews),
		splits:     cloneMap(s.splits),
	}

	if err := fn(unlocked{s}); err != nil {
		s.areas = snapshot.areas
		s.intentions = snapshot.intentions
		s.chunks = snapshot.chunks
		s.plans = snapshot.plans
		s.items = snapshot.items
		s.reviews = snapshot.reviews
		s.splits = snapshot.splits
		return err
	}
	return nil
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// unlocked exposes the store's record operations without re-acquiring the
// mutex; used inside Transact, which already holds it.
type unlocked struct {
	s *MemoryStore
}

func (u unlocked) GetArea(id string) (models.Area, error) { return u.s.getArea(id) }
func (u unlocked) ListAreas(owner string) ([]models.Area, error) {
	return u.s.listAreas(owner)
}
func (u unlocked) ListAreasByStatus(owner string, status models.AreaStatus) ([]models.Area, error) {
	return u.s.listAreasByStatus(owner, status)
}
func (u unlocked) PutArea(a models.Area) error    { return u.s.putArea(a) }
func (u unlocked) DeleteArea(id string) error     { return u.s.deleteArea(id) }
func (u unlocked) GetIntention(id string) (models.Intention, error) {
	return u.s.getIntention(id)
}
func (u unlocked) ListIntentionsByArea(areaID string) ([]models.Intention, error) {
	return u.s.listIntentionsByArea(areaID)
}
func (u unlocked) ListIntentionsByAreaStatus(areaID string, status models.IntentionStatus) ([]models.Intention, error) {
	return u.s.listIntentionsByAreaStatus(areaID, status)
}
func (u unlocked) PutIntention(in models.Intention) error { return u.s.putIntention(in) }
func (u unlocked) DeleteIntention(id string) error        { return u.s.deleteIntention(id) }
func (u unlocked) GetChunk(id string) (models.Chunk, error) {
	return u.s.getChunk(id)
}
func (u unlocked) ListChunksByIntention(intentionID string) ([]models.Chunk, error) {
	return u.s.listChunksByIntention(intentionID)
}
func (u unlocked) ListChunksByOwnerStatus(owner string, status models.ChunkStatus) ([]models.Chunk, error) {
	return u.s.listChunksByOwnerStatus(owner, status)
}
func (u unlocked) PutChunk(c models.Chunk) error { return u.s.putChunk(c) }
func (u unlocked) DeleteChunk(id string) error   { return u.s.deleteChunk(id) }
func (u unlocked) GetPlan(id string) (models.DayPlan, error) {
	return u.s.getPlan(id)
}
func (u unlocked) GetPlanByDate(owner, date string) (models.DayPlan, error) {
	return u.s.getPlanByDate(owner, date)
}
func (u unlocked) ListPlans(owner string) ([]models.DayPlan, error) {
	return u.s.listPlans(owner)
}
func (u unlocked) PutPlan(p models.DayPlan) error { return u.s.putPlan(p) }
func (u unlocked) DeletePlan(id string) error     { return u.s.deletePlan(id) }
func (u unlocked) GetItem(id string) (models.DayPlanItem, error) {
	return u.s.getItem(id)
}
func (u unlocked) ListItemsByPlan(planID string) ([]models.DayPlanItem, error) {
	return u.s.listItemsByPlan(planID)
}
func (u unlocked) ListItemsByChunk(chunkID string) ([]models.DayPlanItem, error) {
	return u.s.listItemsByChunk(chunkID)
}
func (u unlocked) PutItem(it models.DayPlanItem) error { return u.s.putItem(it) }
func (u unlocked) DeleteItem(id string) error          { return u.s.deleteItem(id) }
func (u unlocked) GetReviewByPlan(planID string) (models.DayReview, error) {
	return u.s.getReviewByPlan(planID)
}
func (u unlocked) PutReview(r models.DayReview) error { return u.s.putReview(r) }
func (u unlocked) ListSplitsByOriginal(chunkID string) ([]models.ChunkSplit, error) {
	return u.s.listSplitsByOriginal(chunkID)
}
func (u unlocked) PutSplit(sp models.ChunkSplit) error { return u.s.putSplit(sp) }

// Locked entry points for use outside a transaction.

func (s *MemoryStore) GetArea(id string) (models.Area, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getArea(id)
}

func (s *MemoryStore) ListAreas(owner string) ([]models.Area, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listAreas(owner)
}

func (s *MemoryStore) ListAreasByStatus(owner string, status models.AreaStatus) ([]models.Area, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listAreasByStatus(owner, status)
}

func (s *MemoryStore) PutArea(a models.Area) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putArea(a)
}

func (s *MemoryStore) DeleteArea(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteArea(id)
}

func (s *MemoryStore) GetIntention(id string) (models.Intention, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getIntention(id)
}

func (s *MemoryStore) ListIntentionsByArea(areaID string) ([]models.Intention, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listIntentionsByArea(areaID)
}

func (s *MemoryStore) ListIntentionsByAreaStatus(areaID string, status models.IntentionStatus) ([]models.Intention, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listIntentionsByAreaStatus(areaID, status)
}

func (s *MemoryStore) PutIntention(in models.Intention) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putIntention(in)
}

func (s *MemoryStore) DeleteIntention(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteIntention(id)
}

func (s *MemoryStore) GetChunk(id string) (models.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getChunk(id)
}

func (s *MemoryStore) ListChunksByIntention(intentionID string) ([]models.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listChunksByIntention(intentionID)
}

func (s *MemoryStore) ListChunksByOwnerStatus(owner string, status models.ChunkStatus) ([]models.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listChunksByOwnerStatus(owner, status)
}

func (s *MemoryStore) PutChunk(c models.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putChunk(c)
}

func (s *MemoryStore) DeleteChunk(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteChunk(id)
}

func (s *MemoryStore) GetPlan(id string) (models.DayPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getPlan(id)
}

func (s *MemoryStore) GetPlanByDate(owner, date string) (models.DayPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getPlanByDate(owner, date)
}

func (s *MemoryStore) ListPlans(owner string) ([]models.DayPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listPlans(owner)
}

func (s *MemoryStore) PutPlan(p models.DayPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putPlan(p)
}

func (s *MemoryStore) DeletePlan(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deletePlan(id)
}

func (s *MemoryStore) GetItem(id string) (models.DayPlanItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getItem(id)
}

func (s *MemoryStore) ListItemsByPlan(planID string) ([]models.DayPlanItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listItemsByPlan(planID)
}

func (s *MemoryStore) ListItemsByChunk(chunkID string) ([]models.DayPlanItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listItemsByChunk(chunkID)
}

func (s *MemoryStore) PutItem(it models.DayPlanItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putItem(it)
}

func (s *MemoryStore) DeleteItem(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteItem(id)
}

func (s *MemoryStore) GetReviewByPlan(planID string) (models.DayReview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getReviewByPlan(planID)
}

func (s *MemoryStore) PutReview(r models.DayReview) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putReview(r)
}

func (s *MemoryStore) ListSplitsByOriginal(chunkID string) ([]models.ChunkSplit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listSplitsByOriginal(chunkID)
}

func (s *MemoryStore) PutSplit(sp models.ChunkSplit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putSplit(sp)
}

// Unlocked implementations.

func (s *MemoryStore) getArea(id string) (models.Area, error) {
	a, ok := s.areas[id]
	if !ok {
		return models.Area{}, ErrNotFound
	}
	return a, nil
}

func (s *MemoryStore) listAreas(owner string) ([]models.Area, error) {
	var out []models.Area
	for _, a := range s.areas {
		if a.OwnerID == owner {
			out = append(out, a)
		}
	}
	sortByID(out, func(a models.Area) string { return a.ID })
	return out, nil
}

func (s *MemoryStore) listAreasByStatus(owner string, status models.AreaStatus) ([]models.Area, error) {
	var out []models.Area
	for _, a := range s.areas {
		if a.OwnerID == owner && a.Status == status {
			out = append(out, a)
		}
	}
	sortByID(out, func(a models.Area) string { return a.ID })
	return out, nil
}

func (s *MemoryStore) putArea(a models.Area) error {
	s.areas[a.ID] = a
	return nil
}

func (s *MemoryStore) deleteArea(id string) error {
	delete(s.areas, id)
	return nil
}

func (s *MemoryStore) getIntention(id string) (models.Intention, error) {
	in, ok := s.intentions[id]
	if !ok {
		return models.Intention{}, ErrNotFound
	}
	return in, nil
}

func (s *MemoryStore) listIntentionsByArea(areaID string) ([]models.Intention, error) {
	var out []models.Intention
	for _, in := range s.intentions {
		if in.AreaID == areaID {
			out = append(out, in)
		}
	}
	sortByID(out, func(in models.Intention) string { return in.ID })
	return out, nil
}

func (s *MemoryStore) listIntentionsByAreaStatus(areaID string, status models.IntentionStatus) ([]models.Intention, error) {
	var out []models.Intention
	for _, in := range s.intentions {
		if in.AreaID == areaID && in.Status == status {
			out = append(out, in)
		}
	}
	sortByID(out, func(in models.Intention) string { return in.ID })
	return out, nil
}

func (s *MemoryStore) putIntention(in models.Intention) error {
	s.intentions[in.ID] = in
	return nil
}

func (s *MemoryStore) deleteIntention(id string) error {
	delete(s.intentions, id)
	return nil
}

func (s *MemoryStore) getChunk(id string) (models.Chunk, error) {
	c, ok := s.chunks[id]
	if !ok {
		return models.Chunk{}, ErrNotFound
	}
	return c, nil
}

func (s *MemoryStore) listChunksByIntention(intentionID string) ([]models.Chunk, error) {
	var out []models.Chunk
	for _, c := range s.chunks {
		if c.IntentionID == intentionID {
			out = append(out, c)
		}
	}
	sortByID(out, func(c models.Chunk) string { return c.ID })
	return out, nil
}

func (s *MemoryStore) listChunksByOwnerStatus(owner string, status models.ChunkStatus) ([]models.Chunk, error) {
	var out []models.Chunk
	for _, c := range s.chunks {
		if c.OwnerID == owner && c.Status == status {
			out = append(out, c)
		}
	}
	sortByID(out, func(c models.Chunk) string { return c.ID })
	return out, nil
}

func (s *MemoryStore) putChunk(c models.Chunk) error {
	s.chunks[c.ID] = c
	return nil
}

func (s *MemoryStore) deleteChunk(id string) error {
	delete(s.chunks, id)
	return nil
}

func (s *MemoryStore) getPlan(id string) (models.DayPlan, error) {
	p, ok := s.plans[id]
	if !ok {
		return models.DayPlan{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) getPlanByDate(owner, date string) (models.DayPlan, error) {
	for _, p := range s.plans {
		if p.OwnerID == owner && p.Date == date {
			return p, nil
		}
	}
	return models.DayPlan{}, ErrNotFound
}

func (s *MemoryStore) listPlans(owner string) ([]models.DayPlan, error) {
	var out []models.DayPlan
	for _, p := range s.plans {
		if p.OwnerID == owner {
			out = append(out, p)
		}
	}
	sortByID(out, func(p models.DayPlan) string { return p.ID })
	return out, nil
}

func (s *MemoryStore) putPlan(p models.DayPlan) error {
	s.plans[p.ID] = p
	return nil
}

func (s *MemoryStore) deletePlan(id string) error {
	delete(s.plans, id)
	return nil
}

func (s *MemoryStore) getItem(id string) (models.DayPlanItem, error) {
	it, ok := s.items[id]
	if !ok {
		return models.DayPlanItem{}, ErrNotFound
	}
	return it, nil
}

func (s *MemoryStore) listItemsByPlan(planID string) ([]models.DayPlanItem, error) {
	var out []models.DayPlanItem
	for _, it := range s.items {
		if it.DayPlanID == planID {
			out = append(out, it)
		}
	}
	sortByID(out, func(it models.DayPlanItem) string { return it.ID })
	return out, nil
}

func (s *MemoryStore) listItemsByChunk(chunkID string) ([]models.DayPlanItem, error) {
	var out []models.DayPlanItem
	for _, it := range s.items {
		if it.ChunkID == chunkID {
			out = append(out, it)
		}
	}
	sortByID(out, func(it models.DayPlanItem) string { return it.ID })
	return out, nil
}

func (s *MemoryStore) putItem(it models.DayPlanItem) error {
	s.items[it.ID] = it
	return nil
}

func (s *MemoryStore) deleteItem(id string) error {
	delete(s.items, id)
	return nil
}

func (s *MemoryStore) getReviewByPlan(planID string) (models.DayReview, error) {
	for _, r := range s.reviews {
		if r.DayPlanID == planID {
			return r, nil
		}
	}
	return models.DayReview{}, ErrNotFound
}

func (s *MemoryStore) putReview(r models.DayReview) error {
	s.reviews[r.ID] = r
	return nil
}

func (s *MemoryStore) listSplitsByOriginal(chunkID string) ([]models.ChunkSplit, error) {
	var out []models.ChunkSplit
	for _, sp := range s.splits {
		if sp.OriginalChunkID == chunkID {
			out = append(out, sp)
		}
	}
	sortByID(out, func(sp models.ChunkSplit) string { return sp.ID })
	return out, nil
}

func (s *MemoryStore) putSplit(sp models.ChunkSplit) error {
	s.splits[sp.ID] = sp
	return nil
}

// sortByID keeps map iteration order out of query results.
func sortByID[T any](items []T, id func(T) string) {
	sort.Slice(items, func(i, j int) bool {
		return id(items[i]) < id(items[j])
	})
}
