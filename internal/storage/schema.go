package storage

// schemaDDL is the relational schema shared by the SQLite and Postgres
// stores. Only portable column types are used (TEXT/INTEGER), timestamps are
// RFC3339 strings, and slice-valued fields are stored as JSON text.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS areas (
	id              TEXT PRIMARY KEY,
	owner_id        TEXT NOT NULL,
	title           TEXT NOT NULL,
	description     TEXT NOT NULL,
	weight          INTEGER NOT NULL,
	status          TEXT NOT NULL,
	health          TEXT NOT NULL,
	last_touched_at TEXT NOT NULL,
	created_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_areas_owner ON areas(owner_id);
CREATE INDEX IF NOT EXISTS idx_areas_owner_status ON areas(owner_id, status);

CREATE TABLE IF NOT EXISTS intentions (
	id          TEXT PRIMARY KEY,
	owner_id    TEXT NOT NULL,
	area_id     TEXT NOT NULL,
	title       TEXT NOT NULL,
	description TEXT NOT NULL,
	status      TEXT NOT NULL,
	sort_order  INTEGER NOT NULL,
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_intentions_area ON intentions(area_id);
CREATE INDEX IF NOT EXISTS idx_intentions_area_status ON intentions(area_id, status);

CREATE TABLE IF NOT EXISTS chunks (
	id           TEXT PRIMARY KEY,
	owner_id     TEXT NOT NULL,
	area_id      TEXT NOT NULL,
	intention_id TEXT NOT NULL,
	title        TEXT NOT NULL,
	dod          TEXT NOT NULL,
	duration_min INTEGER NOT NULL,
	tags         TEXT NOT NULL,
	status       TEXT NOT NULL,
	completed_at TEXT,
	created_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chunks_intention ON chunks(intention_id);
CREATE INDEX IF NOT EXISTS idx_chunks_owner_status ON chunks(owner_id, status);

CREATE TABLE IF NOT EXISTS day_plans (
	id           TEXT PRIMARY KEY,
	owner_id     TEXT NOT NULL,
	date         TEXT NOT NULL,
	time_budget  INTEGER NOT NULL,
	energy_mode  TEXT NOT NULL,
	notes        TEXT NOT NULL,
	status       TEXT NOT NULL,
	finalized_at TEXT,
	completed_at TEXT,
	created_at   TEXT NOT NULL,
	UNIQUE(owner_id, date)
);

CREATE TABLE IF NOT EXISTS day_plan_items (
	id                  TEXT PRIMARY KEY,
	day_plan_id         TEXT NOT NULL,
	chunk_id            TEXT NOT NULL,
	sort_order          INTEGER NOT NULL,
	locked              INTEGER NOT NULL,
	status              TEXT NOT NULL,
	ai_reason           TEXT NOT NULL,
	actual_duration_min INTEGER,
	started_at          TEXT,
	completed_at        TEXT
);
CREATE INDEX IF NOT EXISTS idx_items_plan ON day_plan_items(day_plan_id);
CREATE INDEX IF NOT EXISTS idx_items_chunk ON day_plan_items(chunk_id);

CREATE TABLE IF NOT EXISTS day_reviews (
	id             TEXT PRIMARY KEY,
	day_plan_id    TEXT NOT NULL UNIQUE,
	perceived_load TEXT NOT NULL,
	notes          TEXT NOT NULL,
	created_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS chunk_splits (
	id                TEXT PRIMARY KEY,
	owner_id          TEXT NOT NULL,
	original_chunk_id TEXT NOT NULL,
	new_chunk_ids     TEXT NOT NULL,
	reason            TEXT NOT NULL,
	created_at        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_splits_original ON chunk_splits(original_chunk_id);
`
