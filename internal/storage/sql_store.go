package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"chunkwise/internal/models"
)

// dbtx is the subset of database/sql shared by *sql.DB and *sql.Tx.
type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// queries implements Store over a database handle or an open transaction.
// rebind rewrites ?-style placeholders for drivers that need $n numbering.
type queries struct {
	q      dbtx
	rebind func(string) string
}

func passthrough(query string) string { return query }

// rebindDollar rewrites ? placeholders to $1..$n for lib/pq.
func rebindDollar(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func fmtTimePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: fmtTime(*t), Valid: true}
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t := parseTime(s.String)
	return &t
}

func encodeStrings(ss []string) string {
	if ss == nil {
		ss = []string{}
	}
	data, _ := json.Marshal(ss)
	return string(data)
}

func decodeStrings(s string) []string {
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

// Areas

func (st queries) GetArea(id string) (models.Area, error) {
	row := st.q.QueryRow(st.rebind(
		`SELECT id, owner_id, title, description, weight, status, health, last_touched_at, created_at
		 FROM areas WHERE id = ?`), id)
	return scanArea(row)
}

func scanArea(row *sql.Row) (models.Area, error) {
	var a models.Area
	var touched, created string
	err := row.Scan(&a.ID, &a.OwnerID, &a.Title, &a.Description, &a.Weight, &a.Status, &a.Health, &touched, &created)
	if err == sql.ErrNoRows {
		return models.Area{}, ErrNotFound
	}
	if err != nil {
		return models.Area{}, fmt.Errorf("failed to read area: %w", err)
	}
	a.LastTouchedAt = parseTime(touched)
	a.CreatedAt = parseTime(created)
	return a, nil
}

func (st queries) listAreas(query string, args ...any) ([]models.Area, error) {
	rows, err := st.q.Query(st.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query areas: %w", err)
	}
	defer rows.Close()

	var out []models.Area
	for rows.Next() {
		var a models.Area
		var touched, created string
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Title, &a.Description, &a.Weight, &a.Status, &a.Health, &touched, &created); err != nil {
			return nil, fmt.Errorf("failed to scan area: %w", err)
		}
		a.LastTouchedAt = parseTime(touched)
		a.CreatedAt = parseTime(created)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (st queries) ListAreas(owner string) ([]models.Area, error) {
	return st.listAreas(
		`SELECT id, owner_id, title, description, weight, status, health, last_touched_at, created_at
		 FROM areas WHERE owner_id = ? ORDER BY id`, owner)
}

func (st queries) ListAreasByStatus(owner string, status models.AreaStatus) ([]models.Area, error) {
	return st.listAreas(
		`SELECT id, owner_id, title, description, weight, status, health, last_touched_at, created_at
		 FROM areas WHERE owner_id = ? AND status = ? ORDER BY id`, owner, string(status))
}

func (st queries) PutArea(a models.Area) error {
	_, err := st.q.Exec(st.rebind(
		`INSERT INTO areas (id, owner_id, title, description, weight, status, health, last_touched_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title, description = excluded.description,
		   weight = excluded.weight, status = excluded.status, health = excluded.health,
		   last_touched_at = excluded.last_touched_at`),
		a.ID, a.OwnerID, a.Title, a.Description, a.Weight, string(a.Status), string(a.Health),
		fmtTime(a.LastTouchedAt), fmtTime(a.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to write area: %w", err)
	}
	return nil
}

func (st queries) DeleteArea(id string) error {
	_, err := st.q.Exec(st.rebind(`DELETE FROM areas WHERE id = ?`), id)
	return err
}

// Intentions

func (st queries) GetIntention(id string) (models.Intention, error) {
	row := st.q.QueryRow(st.rebind(
		`SELECT id, owner_id, area_id, title, description, status, sort_order, created_at
		 FROM intentions WHERE id = ?`), id)
	var in models.Intention
	var created string
	err := row.Scan(&in.ID, &in.OwnerID, &in.AreaID, &in.Title, &in.Description, &in.Status, &in.Order, &created)
	if err == sql.ErrNoRows {
		return models.Intention{}, ErrNotFound
	}
	if err != nil {
		return models.Intention{}, fmt.Errorf("failed to read intention: %w", err)
	}
	in.CreatedAt = parseTime(created)
	return in, nil
}

func (st queries) listIntentions(query string, args ...any) ([]models.Intention, error) {
	rows, err := st.q.Query(st.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query intentions: %w", err)
	}
	defer rows.Close()

	var out []models.Intention
	for rows.Next() {
		var in models.Intention
		var created string
		if err := rows.Scan(&in.ID, &in.OwnerID, &in.AreaID, &in.Title, &in.Description, &in.Status, &in.Order, &created); err != nil {
			return nil, fmt.Errorf("failed to scan intention: %w", err)
		}
		in.CreatedAt = parseTime(created)
		out = append(out, in)
	}
	return out, rows.Err()
}

func (st queries) ListIntentionsByArea(areaID string) ([]models.Intention, error) {
	return st.listIntentions(
		`SELECT id, owner_id, area_id, title, description, status, sort_order, created_at
		 FROM intentions WHERE area_id = ? ORDER BY id`, areaID)
}

func (st queries) ListIntentionsByAreaStatus(areaID string, status models.IntentionStatus) ([]models.Intention, error) {
	return st.listIntentions(
		`SELECT id, owner_id, area_id, title, description, status, sort_order, created_at
		 FROM intentions WHERE area_id = ? AND status = ? ORDER BY id`, areaID, string(status))
}

func (st queries) PutIntention(in models.Intention) error {
	_, err := st.q.Exec(st.rebind(
		`INSERT INTO intentions (id, owner_id, area_id, title, description, status, sort_order, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title, description = excluded.description,
		   status = excluded.status, sort_order = excluded.sort_order`),
		in.ID, in.OwnerID, in.AreaID, in.Title, in.Description, string(in.Status), in.Order, fmtTime(in.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to write intention: %w", err)
	}
	return nil
}

func (st queries) DeleteIntention(id string) error {
	_, err := st.q.Exec(st.rebind(`DELETE FROM intentions WHERE id = ?`), id)
	return err
}

// Chunks

func (st queries) GetChunk(id string) (models.Chunk, error) {
	row := st.q.QueryRow(st.rebind(
		`SELECT id, owner_id, area_id, intention_id, title, dod, duration_min, tags, status, completed_at, created_at
		 FROM chunks WHERE id = ?`), id)
	var c models.Chunk
	var tags, created string
	var completed sql.NullString
	err := row.Scan(&c.ID, &c.OwnerID, &c.AreaID, &c.IntentionID, &c.Title, &c.DoD, &c.DurationMin, &tags, &c.Status, &completed, &created)
	if err == sql.ErrNoRows {
		return models.Chunk{}, ErrNotFound
	}
	if err != nil {
		return models.Chunk{}, fmt.Errorf("failed to read chunk: %w", err)
	}
	c.Tags = decodeStrings(tags)
	c.CompletedAt = parseTimePtr(completed)
	c.CreatedAt = parseTime(created)
	return c, nil
}

func (st queries) listChunks(query string, args ...any) ([]models.Chunk, error) {
	rows, err := st.q.Query(st.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var out []models.Chunk
	for rows.Next() {
		var c models.Chunk
		var tags, created string
		var completed sql.NullString
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.AreaID, &c.IntentionID, &c.Title, &c.DoD, &c.DurationMin, &tags, &c.Status, &completed, &created); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		c.Tags = decodeStrings(tags)
		c.CompletedAt = parseTimePtr(completed)
		c.CreatedAt = parseTime(created)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (st queries) ListChunksByIntention(intentionID string) ([]models.Chunk, error) {
	return st.listChunks(
		`SELECT id, owner_id, area_id, intention_id, title, dod, duration_min, tags, status, completed_at, created_at
		 FROM chunks WHERE intention_id = ? ORDER BY id`, intentionID)
}

func (st queries) ListChunksByOwnerStatus(owner string, status models.ChunkStatus) ([]models.Chunk, error) {
	return st.listChunks(
		`SELECT id, owner_id, area_id, intention_id, title, dod, duration_min, tags, status, completed_at, created_at
		 FROM chunks WHERE owner_id = ? AND status = ? ORDER BY id`, owner, string(status))
}

func (st queries) PutChunk(c models.Chunk) error {
	_, err := st.q.Exec(st.rebind(
		`INSERT INTO chunks (id, owner_id, area_id, intention_id, title, dod, duration_min, tags, status, completed_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title, dod = excluded.dod, duration_min = excluded.duration_min,
		   tags = excluded.tags, status = excluded.status, completed_at = excluded.completed_at`),
		c.ID, c.OwnerID, c.AreaID, c.IntentionID, c.Title, c.DoD, c.DurationMin,
		encodeStrings(c.Tags), string(c.Status), fmtTimePtr(c.CompletedAt), fmtTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to write chunk: %w", err)
	}
	return nil
}

func (st queries) DeleteChunk(id string) error {
	_, err := st.q.Exec(st.rebind(`DELETE FROM chunks WHERE id = ?`), id)
	return err
}

// Day plans

func (st queries) scanPlanRow(row *sql.Row) (models.DayPlan, error) {
	var p models.DayPlan
	var created string
	var finalized, completed sql.NullString
	err := row.Scan(&p.ID, &p.OwnerID, &p.Date, &p.TimeBudget, &p.EnergyMode, &p.Notes, &p.Status, &finalized, &completed, &created)
	if err == sql.ErrNoRows {
		return models.DayPlan{}, ErrNotFound
	}
	if err != nil {
		return models.DayPlan{}, fmt.Errorf("failed to read day plan: %w", err)
	}
	p.FinalizedAt = parseTimePtr(finalized)
	p.CompletedAt = parseTimePtr(completed)
	p.CreatedAt = parseTime(created)
	return p, nil
}

func (st queries) GetPlan(id string) (models.DayPlan, error) {
	return st.scanPlanRow(st.q.QueryRow(st.rebind(
		`SELECT id, owner_id, date, time_budget, energy_mode, notes, status, finalized_at, completed_at, created_at
		 FROM day_plans WHERE id = ?`), id))
}

func (st queries) GetPlanByDate(owner, date string) (models.DayPlan, error) {
	return st.scanPlanRow(st.q.QueryRow(st.rebind(
		`SELECT id, owner_id, date, time_budget, energy_mode, notes, status, finalized_at, completed_at, created_at
		 FROM day_plans WHERE owner_id = ? AND date = ?`), owner, date))
}

func (st queries) ListPlans(owner string) ([]models.DayPlan, error) {
	rows, err := st.q.Query(st.rebind(
		`SELECT id, owner_id, date, time_budget, energy_mode, notes, status, finalized_at, completed_at, created_at
		 FROM day_plans WHERE owner_id = ? ORDER BY id`), owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query day plans: %w", err)
	}
	defer rows.Close()

	var out []models.DayPlan
	for rows.Next() {
		var p models.DayPlan
		var created string
		var finalized, completed sql.NullString
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Date, &p.TimeBudget, &p.EnergyMode, &p.Notes, &p.Status, &finalized, &completed, &created); err != nil {
			return nil, fmt.Errorf("failed to scan day plan: %w", err)
		}
		p.FinalizedAt = parseTimePtr(finalized)
		p.CompletedAt = parseTimePtr(completed)
		p.CreatedAt = parseTime(created)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (st queries) PutPlan(p models.DayPlan) error {
	_, err := st.q.Exec(st.rebind(
		`INSERT INTO day_plans (id, owner_id, date, time_budget, energy_mode, notes, status, finalized_at, completed_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   time_budget = excluded.time_budget, energy_mode = excluded.energy_mode,
		   notes = excluded.notes, status = excluded.status,
		   finalized_at = excluded.finalized_at, completed_at = excluded.completed_at`),
		p.ID, p.OwnerID, p.Date, p.TimeBudget, string(p.EnergyMode), p.Notes, string(p.Status),
		fmtTimePtr(p.FinalizedAt), fmtTimePtr(p.CompletedAt), fmtTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to write day plan: %w", err)
	}
	return nil
}

func (st queries) DeletePlan(id string) error {
	_, err := st.q.Exec(st.rebind(`DELETE FROM day_plans WHERE id = ?`), id)
	return err
}

// Day plan items

func (st queries) GetItem(id string) (models.DayPlanItem, error) {
	row := st.q.QueryRow(st.rebind(
		`SELECT id, day_plan_id, chunk_id, sort_order, locked, status, ai_reason, actual_duration_min, started_at, completed_at
		 FROM day_plan_items WHERE id = ?`), id)
	var it models.DayPlanItem
	var locked int
	var actual sql.NullInt64
	var started, completed sql.NullString
	err := row.Scan(&it.ID, &it.DayPlanID, &it.ChunkID, &it.Order, &locked, &it.Status, &it.AIReason, &actual, &started, &completed)
	if err == sql.ErrNoRows {
		return models.DayPlanItem{}, ErrNotFound
	}
	if err != nil {
		return models.DayPlanItem{}, fmt.Errorf("failed to read day plan item: %w", err)
	}
	it.Locked = locked != 0
	if actual.Valid {
		v := int(actual.Int64)
		it.ActualDurationMin = &v
	}
	it.StartedAt = parseTimePtr(started)
	it.CompletedAt = parseTimePtr(completed)
	return it, nil
}

func (st queries) listItems(query string, args ...any) ([]models.DayPlanItem, error) {
	rows, err := st.q.Query(st.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query day plan items: %w", err)
	}
	defer rows.Close()

	var out []models.DayPlanItem
	for rows.Next() {
		var it models.DayPlanItem
		var locked int
		var actual sql.NullInt64
		var started, completed sql.NullString
		if err := rows.Scan(&it.ID, &it.DayPlanID, &it.ChunkID, &it.Order, &locked, &it.Status, &it.AIReason, &actual, &started, &completed); err != nil {
			return nil, fmt.Errorf("failed to scan day plan item: %w", err)
		}
		it.Locked = locked != 0
		if actual.Valid {
			v := int(actual.Int64)
			it.ActualDurationMin = &v
		}
		it.StartedAt = parseTimePtr(started)
		it.CompletedAt = parseTimePtr(completed)
		out = append(out, it)
	}
	return out, rows.Err()
}

func (st queries) ListItemsByPlan(planID string) ([]models.DayPlanItem, error) {
	return st.listItems(
		`SELECT id, day_plan_id, chunk_id, sort_order, locked, status, ai_reason, actual_duration_min, started_at, completed_at
		 FROM day_plan_items WHERE day_plan_id = ? ORDER BY id`, planID)
}

func (st queries) ListItemsByChunk(chunkID string) ([]models.DayPlanItem, error) {
	return st.listItems(
		`SELECT id, day_plan_id, chunk_id, sort_order, locked, status, ai_reason, actual_duration_min, started_at, completed_at
		 FROM day_plan_items WHERE chunk_id = ? ORDER BY id`, chunkID)
}

func (st queries) PutItem(it models.DayPlanItem) error {
	locked := 0
	if it.Locked {
		locked = 1
	}
	var actual sql.NullInt64
	if it.ActualDurationMin != nil {
		actual = sql.NullInt64{Int64: int64(*it.ActualDurationMin), Valid: true}
	}
	_, err := st.q.Exec(st.rebind(
		`INSERT INTO day_plan_items (id, day_plan_id, chunk_id, sort_order, locked, status, ai_reason, actual_duration_min, started_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   sort_order = excluded.sort_order, locked = excluded.locked, status = excluded.status,
		   ai_reason = excluded.ai_reason, actual_duration_min = excluded.actual_duration_min,
		   started_at = excluded.started_at, completed_at = excluded.completed_at`),
		it.ID, it.DayPlanID, it.ChunkID, it.Order, locked, string(it.Status), it.AIReason,
		actual, fmtTimePtr(it.StartedAt), fmtTimePtr(it.CompletedAt))
	if err != nil {
		return fmt.Errorf("failed to write day plan item: %w", err)
	}
	return nil
}

func (st queries) DeleteItem(id string) error {
	_, err := st.q.Exec(st.rebind(`DELETE FROM day_plan_items WHERE id = ?`), id)
	return err
}

// Day reviews

func (st queries) GetReviewByPlan(planID string) (models.DayReview, error) {
	row := st.q.QueryRow(st.rebind(
		`SELECT id, day_plan_id, perceived_load, notes, created_at
		 FROM day_reviews WHERE day_plan_id = ?`), planID)
	var r models.DayReview
	var created string
	err := row.Scan(&r.ID, &r.DayPlanID, &r.PerceivedLoad, &r.Notes, &created)
	if err == sql.ErrNoRows {
		return models.DayReview{}, ErrNotFound
	}
	if err != nil {
		return models.DayReview{}, fmt.Errorf("failed to read day review: %w", err)
	}
	r.CreatedAt = parseTime(created)
	return r, nil
}

func (st queries) PutReview(r models.DayReview) error {
	_, err := st.q.Exec(st.rebind(
		`INSERT INTO day_reviews (id, day_plan_id, perceived_load, notes, created_at)
		 VALUES (?, ?, ?, ?, ?)`),
		r.ID, r.DayPlanID, string(r.PerceivedLoad), r.Notes, fmtTime(r.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to write day review: %w", err)
	}
	return nil
}

// Chunk splits

func (st queries) ListSplitsByOriginal(chunkID string) ([]models.ChunkSplit, error) {
	rows, err := st.q.Query(st.rebind(
		`SELECT id, owner_id, original_chunk_id, new_chunk_ids, reason, created_at
		 FROM chunk_splits WHERE original_chunk_id = ? ORDER BY id`), chunkID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk splits: %w", err)
	}
	defer rows.Close()

	var out []models.ChunkSplit
	for rows.Next() {
		var sp models.ChunkSplit
		var newIDs, created string
		if err := rows.Scan(&sp.ID, &sp.OwnerID, &sp.OriginalChunkID, &newIDs, &sp.Reason, &created); err != nil {
			return nil, fmt.Errorf("failed to scan chunk split: %w", err)
		}
		sp.NewChunkIDs = decodeStrings(newIDs)
		sp.CreatedAt = parseTime(created)
		out = append(out, sp)
	}
	return out, rows.Err()
}

func (st queries) PutSplit(sp models.ChunkSplit) error {
	_, err := st.q.Exec(st.rebind(
		`INSERT INTO chunk_splits (id, owner_id, original_chunk_id, new_chunk_ids, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`),
		sp.ID, sp.OwnerID, sp.OriginalChunkID, encodeStrings(sp.NewChunkIDs), sp.Reason, fmtTime(sp.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to write chunk split: %w", err)
	}
	return nil
}
