package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/NavDevs/AI-InternShip/internal/tracker"
)

// sqliteTime is fixed-width UTC so stored timestamps compare lexically.
const sqliteTime = "2006-01-02T15:04:05.000000000Z"

const sqliteColumns = `id, user_id, company, role, status, applied_date, follow_up_date,
	notes, location, source, created_at, updated_at`

// SQLite stores applications in a local SQLite database. It backs local
// development and single-user deployments.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite returns a SQLite store on an open database.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db, now: time.Now}
}

// Migrate applies pending migrations.
func (s *SQLite) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createMigrationsTable); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	for _, m := range Migrations {
		var n int
		if err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, m.Version,
		).Scan(&n); err != nil {
			return fmt.Errorf("migration %d lookup: %w", m.Version, err)
		}
		if n > 0 {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("migration %d begin: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, m.SQLite); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, description) VALUES (?, ?)`,
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d record: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", m.Version, err)
		}
	}
	return nil
}

// ListByUser returns all applications of userID, most recently applied first.
func (s *SQLite) ListByUser(ctx context.Context, userID string) ([]tracker.Application, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteColumns+` FROM applications WHERE user_id = ? ORDER BY applied_date DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listByUser query: %w", err)
	}
	return collectSQLite(rows)
}

// Get returns one application owned by userID.
func (s *SQLite) Get(ctx context.Context, userID, id string) (tracker.Application, error) {
	return scanSQLiteRow(s.db.QueryRowContext(ctx,
		`SELECT `+sqliteColumns+` FROM applications WHERE id = ? AND user_id = ?`,
		id, userID,
	))
}

// Insert stores app under a new random id.
func (s *SQLite) Insert(ctx context.Context, app tracker.Application) (tracker.Application, error) {
	now := s.now().UTC()
	app.ID = uuid.NewString()
	app.CreatedAt = now
	app.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO applications (`+sqliteColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		app.ID, app.UserID, app.Company, app.Role, string(app.Status),
		formatTime(app.AppliedDate), formatTimePtr(app.FollowUpDate),
		app.Notes, app.Location, app.Source, formatTime(now), formatTime(now),
	)
	if err != nil {
		return tracker.Application{}, fmt.Errorf("insert: %w", err)
	}
	return s.Get(ctx, app.UserID, app.ID)
}

// UpdateStatus sets the status of one application.
func (s *SQLite) UpdateStatus(ctx context.Context, userID, id string, status tracker.Status) (tracker.Application, error) {
	return s.update(ctx, `status = ?`, string(status), userID, id)
}

// UpdateFollowUp sets or clears the follow-up date.
func (s *SQLite) UpdateFollowUp(ctx context.Context, userID, id string, at *time.Time) (tracker.Application, error) {
	return s.update(ctx, `follow_up_date = ?`, formatTimePtr(at), userID, id)
}

// UpdateNotes replaces the notes.
func (s *SQLite) UpdateNotes(ctx context.Context, userID, id, notes string) (tracker.Application, error) {
	return s.update(ctx, `notes = ?`, notes, userID, id)
}

// Delete removes one application.
func (s *SQLite) Delete(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM applications WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rows affected: %w", err)
	}
	if n == 0 {
		return tracker.ErrNotFound
	}
	return nil
}

// ListFollowUpsBetween returns follow-ups of all users in [from, to).
func (s *SQLite) ListFollowUpsBetween(ctx context.Context, from, to time.Time) ([]tracker.Application, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteColumns+` FROM applications
		 WHERE follow_up_date IS NOT NULL AND follow_up_date >= ? AND follow_up_date < ?
		 ORDER BY follow_up_date`,
		formatTime(from), formatTime(to),
	)
	if err != nil {
		return nil, fmt.Errorf("listFollowUpsBetween query: %w", err)
	}
	return collectSQLite(rows)
}

func (s *SQLite) update(ctx context.Context, set string, value any, userID, id string) (tracker.Application, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE applications SET `+set+`, updated_at = ? WHERE id = ? AND user_id = ?`,
		value, formatTime(s.now()), id, userID,
	)
	if err != nil {
		return tracker.Application{}, fmt.Errorf("update: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return tracker.Application{}, tracker.ErrNotFound
	}
	return s.Get(ctx, userID, id)
}

// ─── Scanning ────────────────────────────────────────────────────────────────

type sqlScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRow(row *sql.Row) (tracker.Application, error) {
	a, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return tracker.Application{}, tracker.ErrNotFound
	}
	return a, err
}

func collectSQLite(rows *sql.Rows) ([]tracker.Application, error) {
	defer rows.Close()
	apps := make([]tracker.Application, 0)
	for rows.Next() {
		a, err := scanSQLite(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return apps, nil
}

func scanSQLite(row sqlScanner) (tracker.Application, error) {
	var (
		a                            tracker.Application
		status, applied, created, up string
		followUp                     sql.NullString
	)
	err := row.Scan(
		&a.ID, &a.UserID, &a.Company, &a.Role, &status, &applied, &followUp,
		&a.Notes, &a.Location, &a.Source, &created, &up,
	)
	if err != nil {
		return tracker.Application{}, err
	}
	a.Status = tracker.Status(status)
	if a.AppliedDate, err = parseTime(applied); err != nil {
		return tracker.Application{}, err
	}
	if a.CreatedAt, err = parseTime(created); err != nil {
		return tracker.Application{}, err
	}
	if a.UpdatedAt, err = parseTime(up); err != nil {
		return tracker.Application{}, err
	}
	if followUp.Valid {
		t, err := parseTime(followUp.String)
		if err != nil {
			return tracker.Application{}, err
		}
		a.FollowUpDate = &t
	}
	return a, nil
}

func formatTime(t time.Time) string { return t.UTC().Format(sqliteTime) }

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(sqliteTime, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}

func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
