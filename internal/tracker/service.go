package tracker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/NavDevs/AI-InternShip/internal/telemetry"
)

var tracer = telemetry.Tracer("github.com/NavDevs/AI-InternShip/internal/tracker")

// ─── Service ─────────────────────────────────────────────────────────────────

// Service encapsulates the application-tracking business logic.
// It has no dependency on a transport: the HTTP handler, the gRPC server and
// the follow-up scheduler all call into it.
type Service struct {
	store Store
	pub   Publisher
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService returns a configured Service. A nil publisher disables events.
func NewService(store Store, pub Publisher, opts ...Option) *Service {
	if pub == nil {
		pub = nopPublisher{}
	}
	s := &Service{store: store, pub: pub, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ─── Read path ───────────────────────────────────────────────────────────────

// ListApplications returns every application owned by userID.
func (s *Service) ListApplications(ctx context.Context, userID string) ([]Application, error) {
	ctx, span := tracer.Start(ctx, "tracker.ListApplications")
	defer span.End()

	if userID == "" {
		return nil, ErrMissingUser
	}
	apps, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, NewPersistenceError("listApplications", err)
	}
	span.SetAttributes(telemetry.Int("applications.count", len(apps)))
	return apps, nil
}

// GetApplication returns a single application, validating ownership.
func (s *Service) GetApplication(ctx context.Context, userID, appID string) (*Application, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	app, err := s.store.Get(ctx, userID, appID)
	if err != nil {
		return nil, s.storeErr("getApplication", err)
	}
	return &app, nil
}

// Dashboard loads the user's applications and summarises them at the current time.
func (s *Service) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	apps, err := s.ListApplications(ctx, userID)
	if err != nil {
		return nil, err
	}
	d := Summarize(apps, s.now(), DashboardRecentLimit, DashboardFollowUpLimit)
	return &d, nil
}

// ─── Mutations ───────────────────────────────────────────────────────────────

// CreateApplication validates in and inserts it for userID. Validation
// failures never reach the store.
func (s *Service) CreateApplication(ctx context.Context, userID string, in NewApplication) (*Application, error) {
	ctx, span := tracer.Start(ctx, "tracker.CreateApplication")
	defer span.End()

	app, err := in.Build(userID, s.now())
	if err != nil {
		return nil, err
	}

	created, err := s.store.Insert(ctx, app)
	if err != nil {
		span.RecordError(err)
		return nil, NewPersistenceError("createApplication", err)
	}

	s.publish(ctx, Event{
		Type:          EventApplicationCreated,
		ApplicationID: created.ID,
		UserID:        userID,
		To:            string(created.Status),
	})
	return &created, nil
}

// ApplyToListing records an application for a listing the user applied to
// from inside the app, with a follow-up reminder five days out.
func (s *Service) ApplyToListing(ctx context.Context, userID string, l Listing) (*Application, error) {
	return s.CreateApplication(ctx, userID, l.ToNewApplication(s.now()))
}

// UpdateStatus moves an application to a new status.
func (s *Service) UpdateStatus(ctx context.Context, userID, appID, newStatusStr string) (*Application, error) {
	newStatus, err := ParseStatus(newStatusStr)
	if err != nil {
		return nil, &ValidationError{Field: "status", Msg: err.Error()}
	}
	if userID == "" {
		return nil, ErrMissingUser
	}

	current, err := s.store.Get(ctx, userID, appID)
	if err != nil {
		return nil, s.storeErr("updateStatus", err)
	}

	app, err := s.store.UpdateStatus(ctx, userID, appID, newStatus)
	if err != nil {
		return nil, s.storeErr("updateStatus", err)
	}

	if current.Status != newStatus {
		s.publish(ctx, Event{
			Type:          EventStatusChanged,
			ApplicationID: appID,
			UserID:        userID,
			From:          string(current.Status),
			To:            string(newStatus),
		})
	}
	return &app, nil
}

// SetFollowUp sets or clears (at == nil) the follow-up date.
func (s *Service) SetFollowUp(ctx context.Context, userID, appID string, at *time.Time) (*Application, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	app, err := s.store.UpdateFollowUp(ctx, userID, appID, at)
	if err != nil {
		return nil, s.storeErr("setFollowUp", err)
	}
	return &app, nil
}

// AddNote sets or replaces the free-text note on an application.
func (s *Service) AddNote(ctx context.Context, userID, appID, note string) (*Application, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	app, err := s.store.UpdateNotes(ctx, userID, appID, note)
	if err != nil {
		return nil, s.storeErr("addNote", err)
	}
	return &app, nil
}

// DeleteApplication removes an application. A record that is already gone
// counts as deleted.
func (s *Service) DeleteApplication(ctx context.Context, userID, appID string) error {
	if userID == "" {
		return ErrMissingUser
	}
	err := s.store.Delete(ctx, userID, appID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return NewPersistenceError("deleteApplication", err)
	}

	s.publish(ctx, Event{
		Type:          EventApplicationDeleted,
		ApplicationID: appID,
		UserID:        userID,
	})
	return nil
}

// DueFollowUps returns follow-ups of every user falling in [from, to) whose
// application is still open.
func (s *Service) DueFollowUps(ctx context.Context, from, to time.Time) ([]Application, error) {
	apps, err := s.store.ListFollowUpsBetween(ctx, from, to)
	if err != nil {
		return nil, NewPersistenceError("dueFollowUps", err)
	}
	open := apps[:0:0]
	for _, a := range apps {
		if !IsClosed(a.Status) {
			open = append(open, a)
		}
	}
	return open, nil
}

// Notify publishes ev, stamping it with the current time. Failures are logged.
func (s *Service) Notify(ctx context.Context, ev Event) {
	s.publish(ctx, ev)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func (s *Service) storeErr(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return NewPersistenceError(op, err)
}

func (s *Service) publish(ctx context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = s.now().UTC()
	}
	if err := s.pub.Publish(ctx, ev); err != nil {
		slog.Warn("publish event failed", "type", ev.Type, "applicationId", ev.ApplicationID, "err", err)
	}
}
