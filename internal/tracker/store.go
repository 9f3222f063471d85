package tracker

import (
	"context"
	"time"
)

// Store is the record store contract. Every per-user method is scoped by
// userID with an equality filter; implementations return ErrNotFound when the
// targeted record does not exist for that user.
type Store interface {
	ListByUser(ctx context.Context, userID string) ([]Application, error)
	Get(ctx context.Context, userID, id string) (Application, error)
	Insert(ctx context.Context, app Application) (Application, error)
	UpdateStatus(ctx context.Context, userID, id string, status Status) (Application, error)
	UpdateFollowUp(ctx context.Context, userID, id string, at *time.Time) (Application, error)
	UpdateNotes(ctx context.Context, userID, id, notes string) (Application, error)
	Delete(ctx context.Context, userID, id string) error

	// ListFollowUpsBetween scans all users for follow-ups in [from, to).
	ListFollowUpsBetween(ctx context.Context, from, to time.Time) ([]Application, error)
}

// ─── Events ──────────────────────────────────────────────────────────────────

// Event types published after successful mutations.
const (
	EventApplicationCreated = "EVENT_APPLICATION_CREATED"
	EventStatusChanged      = "EVENT_STATUS_CHANGED"
	EventApplicationDeleted = "EVENT_APPLICATION_DELETED"
	EventFollowUpDue        = "EVENT_FOLLOW_UP_DUE"
)

// Event is the payload published on the event bus. The channel or subject is
// the event Type.
type Event struct {
	Type          string    `json:"type"`
	ApplicationID string    `json:"applicationId"`
	UserID        string    `json:"userId"`
	From          string    `json:"from,omitempty"`
	To            string    `json:"to,omitempty"`
	FollowUpDate  string    `json:"followUpDate,omitempty"`
	At            time.Time `json:"at"`
}

// Publisher delivers events. Publishing is best-effort from the service's
// point of view: failures are logged, never returned to the caller.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }
