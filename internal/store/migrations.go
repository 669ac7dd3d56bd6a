package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS candidates (
	source_message_id TEXT PRIMARY KEY,
	event_name        TEXT NOT NULL,
	event_date        TEXT,
	event_time        TEXT,
	timezone          TEXT,
	location          TEXT,
	description       TEXT NOT NULL DEFAULT '',
	confidence        TEXT NOT NULL,
	source            TEXT NOT NULL,
	source_subject    TEXT NOT NULL DEFAULT '',
	source_from       TEXT NOT NULL DEFAULT '',
	source_date       DATETIME NOT NULL,
	state             TEXT NOT NULL DEFAULT 'pending'
		CHECK(state IN ('pending', 'approved', 'denied')),
	calendar_event_id TEXT NOT NULL DEFAULT '',
	created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	reviewed_at       DATETIME
);

CREATE INDEX IF NOT EXISTS idx_candidates_state ON candidates(state);
CREATE INDEX IF NOT EXISTS idx_candidates_source_date ON candidates(source_date);

CREATE TABLE IF NOT EXISTS monitored_addresses (
	address    TEXT PRIMARY KEY,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS scan_runs (
	id          TEXT PRIMARY KEY,
	started_at  DATETIME NOT NULL,
	finished_at DATETIME NOT NULL,
	addresses   INTEGER NOT NULL DEFAULT 0,
	messages    INTEGER NOT NULL DEFAULT 0,
	extracted   INTEGER NOT NULL DEFAULT 0,
	added       INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_scan_runs_started ON scan_runs(started_at);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
