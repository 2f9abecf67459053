// Package index is the durable recording index: the single writer of truth
// for migration state shared by the indexing and upload sweeps.
package index

import "time"

// Schema is the recordings table DDL, applied on connect. The table is the
// work queue between the two sweep stages; filename is the business key.
const Schema = `
CREATE TABLE IF NOT EXISTS recordings (
	id BIGSERIAL PRIMARY KEY,
	filename TEXT UNIQUE NOT NULL,
	agent_id TEXT NOT NULL DEFAULT '',
	extension TEXT NOT NULL DEFAULT '',
	caller_id TEXT NOT NULL DEFAULT '',
	called_id TEXT NOT NULL DEFAULT '',
	start_time TIMESTAMPTZ,
	duration TEXT NOT NULL DEFAULT '',
	content_type TEXT NOT NULL DEFAULT 'audio/wav',
	local_path TEXT NOT NULL,
	uploaded BOOLEAN NOT NULL DEFAULT FALSE,
	s3_path TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_recordings_pending ON recordings (uploaded, start_time);
`

// Entry is one row of the recordings table.
type Entry struct {
	ID          int64
	Filename    string
	AgentID     string
	Extension   string
	CallerID    string
	CalledID    string
	StartTime   *time.Time
	Duration    string
	ContentType string
	LocalPath   string
	Uploaded    bool
	S3Path      *string
}

// Candidate is the read projection of an unmigrated entry handed to the
// upload pipeline.
type Candidate struct {
	ID          int64
	Filename    string
	LocalPath   string
	AgentID     string
	Extension   string
	CallerID    string
	CalledID    string
	StartTime   *time.Time
	Duration    string
	ContentType string
}
