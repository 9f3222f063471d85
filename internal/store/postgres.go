package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/NavDevs/AI-InternShip/internal/tracker"
)

const pgColumns = `id::text, user_id, company, role, status, applied_date, follow_up_date,
	notes, location, source, created_at, updated_at`

// Postgres stores applications in PostgreSQL through a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a Postgres store backed by pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate applies pending migrations.
func (s *Postgres) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createMigrationsTable); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	for _, m := range Migrations {
		var applied bool
		if err := s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, m.Version,
		).Scan(&applied); err != nil {
			return fmt.Errorf("migration %d lookup: %w", m.Version, err)
		}
		if applied {
			continue
		}

		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("migration %d begin: %w", m.Version, err)
		}
		if _, err := tx.Exec(ctx, m.Postgres); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO schema_migrations (version, description) VALUES ($1, $2)`,
			m.Version, m.Description,
		); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("migration %d record: %w", m.Version, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("migration %d commit: %w", m.Version, err)
		}
	}
	return nil
}

// ListByUser returns all applications of userID, most recently applied first.
func (s *Postgres) ListByUser(ctx context.Context, userID string) ([]tracker.Application, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgColumns+` FROM applications WHERE user_id = $1 ORDER BY applied_date DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listByUser query: %w", err)
	}
	return collectPG(rows)
}

// Get returns one application owned by userID.
func (s *Postgres) Get(ctx context.Context, userID, id string) (tracker.Application, error) {
	if !validUUID(id) {
		return tracker.Application{}, tracker.ErrNotFound
	}
	return scanPGRow(s.pool.QueryRow(ctx,
		`SELECT `+pgColumns+` FROM applications WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
}

// Insert stores app and returns it with its generated id.
func (s *Postgres) Insert(ctx context.Context, app tracker.Application) (tracker.Application, error) {
	return scanPGRow(s.pool.QueryRow(ctx,
		`INSERT INTO applications
		   (user_id, company, role, status, applied_date, follow_up_date, notes, location, source)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+pgColumns,
		app.UserID, app.Company, app.Role, string(app.Status), app.AppliedDate,
		app.FollowUpDate, app.Notes, app.Location, app.Source,
	))
}

// UpdateStatus sets the status of one application.
func (s *Postgres) UpdateStatus(ctx context.Context, userID, id string, status tracker.Status) (tracker.Application, error) {
	return s.update(ctx, `status = $1`, string(status), userID, id)
}

// UpdateFollowUp sets or clears the follow-up date.
func (s *Postgres) UpdateFollowUp(ctx context.Context, userID, id string, at *time.Time) (tracker.Application, error) {
	return s.update(ctx, `follow_up_date = $1`, at, userID, id)
}

// UpdateNotes replaces the notes.
func (s *Postgres) UpdateNotes(ctx context.Context, userID, id, notes string) (tracker.Application, error) {
	return s.update(ctx, `notes = $1`, notes, userID, id)
}

// Delete removes one application.
func (s *Postgres) Delete(ctx context.Context, userID, id string) error {
	if !validUUID(id) {
		return tracker.ErrNotFound
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM applications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tracker.ErrNotFound
	}
	return nil
}

// ListFollowUpsBetween returns follow-ups of all users in [from, to).
func (s *Postgres) ListFollowUpsBetween(ctx context.Context, from, to time.Time) ([]tracker.Application, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgColumns+` FROM applications
		 WHERE follow_up_date >= $1 AND follow_up_date < $2
		 ORDER BY follow_up_date`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("listFollowUpsBetween query: %w", err)
	}
	return collectPG(rows)
}

// update runs a single-column UPDATE; set must reference its value as $1.
func (s *Postgres) update(ctx context.Context, set string, value any, userID, id string) (tracker.Application, error) {
	if !validUUID(id) {
		return tracker.Application{}, tracker.ErrNotFound
	}
	return scanPGRow(s.pool.QueryRow(ctx,
		`UPDATE applications SET `+set+`, updated_at = NOW()
		 WHERE id = $2 AND user_id = $3
		 RETURNING `+pgColumns,
		value, id, userID,
	))
}

// ─── Scanning ────────────────────────────────────────────────────────────────

func scanPGRow(row pgx.Row) (tracker.Application, error) {
	a, err := scanPG(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return tracker.Application{}, tracker.ErrNotFound
	}
	return a, err
}

func collectPG(rows pgx.Rows) ([]tracker.Application, error) {
	defer rows.Close()
	apps := make([]tracker.Application, 0)
	for rows.Next() {
		a, err := scanPG(rows)
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

func scanPG(row pgx.Row) (tracker.Application, error) {
	var (
		a      tracker.Application
		status string
	)
	err := row.Scan(
		&a.ID, &a.UserID, &a.Company, &a.Role, &status, &a.AppliedDate, &a.FollowUpDate,
		&a.Notes, &a.Location, &a.Source, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return tracker.Application{}, err
	}
	a.Status = tracker.Status(status)
	return a, nil
}
