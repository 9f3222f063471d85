// Package store implements tracker.Store on PostgreSQL (pgx) and SQLite.
package store

// Migration is one forward schema change, written once per dialect.
type Migration struct {
	Version     int
	Description string
	Postgres    string
	SQLite      string
}

// Migrations are applied in order and recorded in schema_migrations.
var Migrations = []Migration{
	{
		Version:     1,
		Description: "create applications",
		Postgres: `
CREATE TABLE IF NOT EXISTS applications (
	id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	user_id        TEXT NOT NULL,
	company        TEXT NOT NULL,
	role           TEXT NOT NULL,
	status         TEXT NOT NULL DEFAULT 'Applied'
	               CHECK (status IN ('Applied', 'Interview', 'Offer', 'Rejected')),
	applied_date   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	follow_up_date TIMESTAMPTZ,
	notes          TEXT NOT NULL DEFAULT '',
	location       TEXT NOT NULL DEFAULT '',
	source         TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS applications_user_id_idx ON applications (user_id);`,
		SQLite: `
CREATE TABLE IF NOT EXISTS applications (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL,
	company        TEXT NOT NULL,
	role           TEXT NOT NULL,
	status         TEXT NOT NULL DEFAULT 'Applied'
	               CHECK (status IN ('Applied', 'Interview', 'Offer', 'Rejected')),
	applied_date   TEXT NOT NULL,
	follow_up_date TEXT,
	notes          TEXT NOT NULL DEFAULT '',
	location       TEXT NOT NULL DEFAULT '',
	source         TEXT NOT NULL DEFAULT '',
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS applications_user_id_idx ON applications (user_id);`,
	},
	{
		Version:     2,
		Description: "index follow-up dates for the reminder scan",
		Postgres: `
CREATE INDEX IF NOT EXISTS applications_follow_up_idx
	ON applications (follow_up_date) WHERE follow_up_date IS NOT NULL;`,
		SQLite: `
CREATE INDEX IF NOT EXISTS applications_follow_up_idx
	ON applications (follow_up_date) WHERE follow_up_date IS NOT NULL;`,
	},
}

const createMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version     INTEGER PRIMARY KEY,
	description TEXT NOT NULL
)`
