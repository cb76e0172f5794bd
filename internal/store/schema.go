package store

const Schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	sync_status TEXT NOT NULL DEFAULT 'pending',
	started_at DATETIME NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS recordings (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,

	-- Metadata
	filename TEXT NOT NULL,
	duration_seconds REAL NOT NULL DEFAULT 0,
	sample_count INTEGER NOT NULL DEFAULT 0,
	data_type TEXT NOT NULL CHECK (data_type IN ('raw', 'filtered', 'rms')),
	sample_rate REAL NOT NULL DEFAULT 0,

	-- Sync state
	sync_status TEXT NOT NULL DEFAULT 'pending',
	local_path TEXT,
	remote_url TEXT,
	retry_count INTEGER NOT NULL DEFAULT 0,
	error TEXT,

	-- Timestamps
	recorded_at DATETIME NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,

	FOREIGN KEY (session_id) REFERENCES sessions(id)
);

CREATE INDEX IF NOT EXISTS idx_recordings_session_id ON recordings(session_id);
CREATE INDEX IF NOT EXISTS idx_recordings_sync_status ON recordings(sync_status);
CREATE INDEX IF NOT EXISTS idx_sessions_sync_status ON sessions(sync_status);

CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	description TEXT NOT NULL,
	applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`
