package storage

// SchemaVersion is the current audit schema version.
const SchemaVersion = 1

// Schema creates the audit tables and indexes.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_log (
	id            TEXT PRIMARY KEY,
	request_id    TEXT NOT NULL,
	trace_id      TEXT,
	operation     TEXT NOT NULL,
	method        TEXT NOT NULL,
	path          TEXT NOT NULL,
	recorded_at   TIMESTAMP NOT NULL,
	status        INTEGER NOT NULL,
	latency_ms    INTEGER NOT NULL,
	outcome       TEXT NOT NULL,
	error_message TEXT,
	remote_addr   TEXT
);

CREATE INDEX IF NOT EXISTS idx_audit_request_id ON audit_log(request_id);
CREATE INDEX IF NOT EXISTS idx_audit_trace_id ON audit_log(trace_id);
CREATE INDEX IF NOT EXISTS idx_audit_recorded_at ON audit_log(recorded_at);
CREATE INDEX IF NOT EXISTS idx_audit_operation ON audit_log(operation);

CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);
`

// InsertSchemaVersion records the schema version, ignoring duplicates.
const InsertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`

// GetSchemaVersion reads the highest recorded schema version.
const GetSchemaVersion = `SELECT MAX(version) FROM schema_version`
