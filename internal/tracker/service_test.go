package tracker_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/NavDevs/AI-InternShip/internal/tracker"
)

// memStore is an in-memory tracker.Store that counts calls.
type memStore struct {
	mu    sync.Mutex
	apps  map[string]tracker.Application
	next  int
	calls int
	fail  error
}

func newMemStore(apps ...tracker.Application) *memStore {
	s := &memStore{apps: map[string]tracker.Application{}}
	for _, a := range apps {
		s.apps[a.ID] = a
	}
	return s
}

func (s *memStore) begin() error {
	s.mu.Lock()
	s.calls++
	return s.fail
}

func (s *memStore) ListByUser(_ context.Context, userID string) ([]tracker.Application, error) {
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return nil, err
	}
	out := []tracker.Application{}
	for _, a := range s.apps {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppliedDate.After(out[j].AppliedDate) })
	return out, nil
}

func (s *memStore) Get(_ context.Context, userID, id string) (tracker.Application, error) {
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return tracker.Application{}, err
	}
	a, ok := s.apps[id]
	if !ok || a.UserID != userID {
		return tracker.Application{}, tracker.ErrNotFound
	}
	return a, nil
}

func (s *memStore) Insert(_ context.Context, a tracker.Application) (tracker.Application, error) {
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return tracker.Application{}, err
	}
	s.next++
	a.ID = "app-" + string(rune('0'+s.next))
	s.apps[a.ID] = a
	return a, nil
}

func (s *memStore) mutate(userID, id string, fn func(*tracker.Application)) (tracker.Application, error) {
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return tracker.Application{}, err
	}
	a, ok := s.apps[id]
	if !ok || a.UserID != userID {
		return tracker.Application{}, tracker.ErrNotFound
	}
	fn(&a)
	s.apps[id] = a
	return a, nil
}

func (s *memStore) UpdateStatus(_ context.Context, userID, id string, st tracker.Status) (tracker.Application, error) {
	return s.mutate(userID, id, func(a *tracker.Application) { a.Status = st })
}

func (s *memStore) UpdateFollowUp(_ context.Context, userID, id string, at *time.Time) (tracker.Application, error) {
	return s.mutate(userID, id, func(a *tracker.Application) { a.FollowUpDate = at })
}

func (s *memStore) UpdateNotes(_ context.Context, userID, id, notes string) (tracker.Application, error) {
	return s.mutate(userID, id, func(a *tracker.Application) { a.Notes = notes })
}

func (s *memStore) Delete(_ context.Context, userID, id string) error {
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return err
	}
	a, ok := s.apps[id]
	if !ok || a.UserID != userID {
		return tracker.ErrNotFound
	}
	delete(s.apps, id)
	return nil
}

func (s *memStore) ListFollowUpsBetween(_ context.Context, from, to time.Time) ([]tracker.Application, error) {
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return nil, err
	}
	out := []tracker.Application{}
	for _, a := range s.apps {
		if a.FollowUpDate != nil && !a.FollowUpDate.Before(from) && a.FollowUpDate.Before(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *memStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// recorder is a tracker.Publisher that keeps every event.
type recorder struct {
	mu     sync.Mutex
	events []tracker.Event
	fail   error
}

func (r *recorder) Publish(_ context.Context, ev tracker.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.fail
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func newService(st tracker.Store, pub tracker.Publisher) *tracker.Service {
	return tracker.NewService(st, pub, tracker.WithClock(func() time.Time { return refNow }))
}

// ── CreateApplication ──────────────────────────────────────────────────────

func TestCreateApplication_ValidationNeverReachesStore(t *testing.T) {
	st := newMemStore()
	pub := &recorder{}
	svc := newService(st, pub)

	_, err := svc.CreateApplication(context.Background(), "u1", tracker.NewApplication{Company: "", Role: "Intern"})
	if !tracker.IsValidation(err) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if n := st.callCount(); n != 0 {
		t.Errorf("store called %d times, want 0", n)
	}
	if len(pub.types()) != 0 {
		t.Errorf("events published on validation failure: %v", pub.types())
	}
}

func TestCreateApplication_DefaultsAndEvent(t *testing.T) {
	st := newMemStore()
	pub := &recorder{}
	svc := newService(st, pub)

	got, err := svc.CreateApplication(context.Background(), "u1", tracker.NewApplication{Company: "Acme", Role: "Intern"})
	if err != nil {
		t.Fatalf("CreateApplication: %v", err)
	}
	if got.ID == "" || got.UserID != "u1" || got.Status != tracker.StatusApplied {
		t.Errorf("unexpected record %+v", got)
	}
	if !got.AppliedDate.Equal(refNow) {
		t.Errorf("AppliedDate = %v, want %v", got.AppliedDate, refNow)
	}
	if types := pub.types(); len(types) != 1 || types[0] != tracker.EventApplicationCreated {
		t.Errorf("events = %v, want [%s]", types, tracker.EventApplicationCreated)
	}
}

func TestCreateApplication_StoreFailureIsPersistenceError(t *testing.T) {
	st := newMemStore()
	st.fail = errors.New("disk full")
	svc := newService(st, nil)

	_, err := svc.CreateApplication(context.Background(), "u1", tracker.NewApplication{Company: "Acme", Role: "Intern"})
	if !tracker.IsPersistence(err) {
		t.Errorf("err = %v, want PersistenceError", err)
	}
}

func TestCreateApplication_PublishFailureDoesNotFail(t *testing.T) {
	svc := newService(newMemStore(), &recorder{fail: errors.New("bus down")})
	if _, err := svc.CreateApplication(context.Background(), "u1", tracker.NewApplication{Company: "Acme", Role: "Intern"}); err != nil {
		t.Errorf("CreateApplication: %v", err)
	}
}

func TestApplyToListing(t *testing.T) {
	svc := newService(newMemStore(), nil)
	got, err := svc.ApplyToListing(context.Background(), "u1", tracker.Listing{Title: "SWE Intern", Company: "Acme"})
	if err != nil {
		t.Fatalf("ApplyToListing: %v", err)
	}
	if got.Role != "SWE Intern" || got.Source != tracker.DefaultSource {
		t.Errorf("unexpected record %+v", got)
	}
	if got.FollowUpDate == nil || !got.FollowUpDate.Equal(refNow.Add(tracker.ListingFollowUpAfter)) {
		t.Errorf("FollowUpDate = %v", got.FollowUpDate)
	}
}

// ── Read path ──────────────────────────────────────────────────────────────

func TestListApplications_ScopedToUser(t *testing.T) {
	mine := app("1", "Acme", "Intern", tracker.StatusApplied, day(1))
	theirs := app("2", "Beta", "Intern", tracker.StatusApplied, day(1))
	theirs.UserID = "u2"
	svc := newService(newMemStore(mine, theirs), nil)

	got, err := svc.ListApplications(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListApplications: %v", err)
	}
	equalIDs(t, "ListApplications", got, "1")
}

func TestListApplications_MissingUser(t *testing.T) {
	st := newMemStore()
	svc := newService(st, nil)
	if _, err := svc.ListApplications(context.Background(), ""); !errors.Is(err, tracker.ErrMissingUser) {
		t.Errorf("err = %v, want ErrMissingUser", err)
	}
	if st.callCount() != 0 {
		t.Error("store should not be called without a user")
	}
}

func TestGetApplication_OtherUsersRecordIsNotFound(t *testing.T) {
	a := app("1", "Acme", "Intern", tracker.StatusApplied, day(1))
	svc := newService(newMemStore(a), nil)
	if _, err := svc.GetApplication(context.Background(), "u2", "1"); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDashboard(t *testing.T) {
	a := app("1", "Acme", "Intern", tracker.StatusInterview, day(1))
	a.FollowUpDate = ptr(refNow.Add(time.Hour))
	b := app("2", "Beta", "Intern", tracker.StatusRejected, day(2))
	svc := newService(newMemStore(a, b), nil)

	d, err := svc.Dashboard(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.Total != 2 || d.StatusCounts[tracker.StatusRejected] != 1 {
		t.Errorf("dashboard = %+v", d)
	}
	equalIDs(t, "Recent", d.Recent, "2", "1")
	equalIDs(t, "FollowUps", d.FollowUps, "1")
}

// ── UpdateStatus ───────────────────────────────────────────────────────────

func TestUpdateStatus_PublishesTransition(t *testing.T) {
	a := app("1", "Acme", "Intern", tracker.StatusApplied, day(1))
	pub := &recorder{}
	svc := newService(newMemStore(a), pub)

	got, err := svc.UpdateStatus(context.Background(), "u1", "1", "Interview")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if got.Status != tracker.StatusInterview {
		t.Errorf("Status = %q, want Interview", got.Status)
	}
	if len(pub.events) != 1 {
		t.Fatalf("events = %v, want one", pub.types())
	}
	ev := pub.events[0]
	if ev.Type != tracker.EventStatusChanged || ev.From != "Applied" || ev.To != "Interview" {
		t.Errorf("event = %+v", ev)
	}
	if !ev.At.Equal(refNow) {
		t.Errorf("event At = %v, want %v", ev.At, refNow)
	}
}

func TestUpdateStatus_SameStatusPublishesNothing(t *testing.T) {
	a := app("1", "Acme", "Intern", tracker.StatusOffer, day(1))
	pub := &recorder{}
	svc := newService(newMemStore(a), pub)

	if _, err := svc.UpdateStatus(context.Background(), "u1", "1", "Offer"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if len(pub.types()) != 0 {
		t.Errorf("events = %v, want none", pub.types())
	}
}

func TestUpdateStatus_AnyStatusReachable(t *testing.T) {
	a := app("1", "Acme", "Intern", tracker.StatusRejected, day(1))
	svc := newService(newMemStore(a), nil)
	for _, s := range []string{"Applied", "Offer", "Interview", "Rejected"} {
		got, err := svc.UpdateStatus(context.Background(), "u1", "1", s)
		if err != nil {
			t.Fatalf("UpdateStatus(%s): %v", s, err)
		}
		if string(got.Status) != s {
			t.Errorf("Status = %q, want %q", got.Status, s)
		}
	}
}

func TestUpdateStatus_InvalidStatusNeverReachesStore(t *testing.T) {
	st := newMemStore(app("1", "Acme", "Intern", tracker.StatusApplied, day(1)))
	svc := newService(st, nil)

	_, err := svc.UpdateStatus(context.Background(), "u1", "1", "Hired")
	var ve *tracker.ValidationError
	if !errors.As(err, &ve) || ve.Field != "status" {
		t.Fatalf("err = %v, want status ValidationError", err)
	}
	if st.callCount() != 0 {
		t.Errorf("store called %d times, want 0", st.callCount())
	}
}

func TestUpdateStatus_NotFound(t *testing.T) {
	svc := newService(newMemStore(), nil)
	if _, err := svc.UpdateStatus(context.Background(), "u1", "missing", "Offer"); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// ── Follow-ups and notes ───────────────────────────────────────────────────

func TestSetFollowUp_SetAndClear(t *testing.T) {
	svc := newService(newMemStore(app("1", "Acme", "Intern", tracker.StatusApplied, day(1))), nil)

	got, err := svc.SetFollowUp(context.Background(), "u1", "1", ptr(day(10)))
	if err != nil || got.FollowUpDate == nil || !got.FollowUpDate.Equal(day(10)) {
		t.Fatalf("SetFollowUp = %+v, %v", got, err)
	}
	got, err = svc.SetFollowUp(context.Background(), "u1", "1", nil)
	if err != nil || got.FollowUpDate != nil {
		t.Fatalf("clear follow-up = %+v, %v", got, err)
	}
}

func TestAddNote(t *testing.T) {
	svc := newService(newMemStore(app("1", "Acme", "Intern", tracker.StatusApplied, day(1))), nil)
	got, err := svc.AddNote(context.Background(), "u1", "1", "Recruiter call on Monday")
	if err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if got.Notes != "Recruiter call on Monday" {
		t.Errorf("Notes = %q", got.Notes)
	}
}

// ── DeleteApplication ──────────────────────────────────────────────────────

func TestDeleteApplication_RemovesAndPublishes(t *testing.T) {
	st := newMemStore(app("1", "Acme", "Intern", tracker.StatusApplied, day(1)))
	pub := &recorder{}
	svc := newService(st, pub)

	if err := svc.DeleteApplication(context.Background(), "u1", "1"); err != nil {
		t.Fatalf("DeleteApplication: %v", err)
	}
	if _, err := svc.GetApplication(context.Background(), "u1", "1"); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("record still present: %v", err)
	}
	if types := pub.types(); len(types) != 1 || types[0] != tracker.EventApplicationDeleted {
		t.Errorf("events = %v", types)
	}
}

func TestDeleteApplication_MissingIsNoOp(t *testing.T) {
	pub := &recorder{}
	svc := newService(newMemStore(), pub)
	if err := svc.DeleteApplication(context.Background(), "u1", "gone"); err != nil {
		t.Errorf("DeleteApplication(missing) = %v, want nil", err)
	}
	if len(pub.types()) != 0 {
		t.Errorf("events = %v, want none", pub.types())
	}
}

func TestDeleteApplication_StoreFailure(t *testing.T) {
	st := newMemStore()
	st.fail = errors.New("timeout")
	svc := newService(st, nil)
	if err := svc.DeleteApplication(context.Background(), "u1", "1"); !tracker.IsPersistence(err) {
		t.Errorf("err = %v, want PersistenceError", err)
	}
}

// ── DueFollowUps ───────────────────────────────────────────────────────────

func TestDueFollowUps_SkipsClosedApplications(t *testing.T) {
	open := app("1", "Acme", "Intern", tracker.StatusInterview, day(1))
	open.FollowUpDate = ptr(refNow.Add(10 * time.Minute))
	closed := app("2", "Beta", "Intern", tracker.StatusOffer, day(1))
	closed.FollowUpDate = ptr(refNow.Add(20 * time.Minute))
	later := app("3", "Gamma", "Intern", tracker.StatusApplied, day(1))
	later.FollowUpDate = ptr(refNow.Add(3 * time.Hour))

	svc := newService(newMemStore(open, closed, later), nil)
	got, err := svc.DueFollowUps(context.Background(), refNow, refNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("DueFollowUps: %v", err)
	}
	equalIDs(t, "DueFollowUps", got, "1")
}
