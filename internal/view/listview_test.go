package view_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/NavDevs/AI-InternShip/internal/tracker"
	"github.com/NavDevs/AI-InternShip/internal/view"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeBackend is a scripted view.Backend.
type fakeBackend struct {
	mu        sync.Mutex
	apps      []tracker.Application
	listErr   error
	createErr error
	updateErr error
	deleteErr error
	listGate  chan struct{} // when set, ListApplications blocks on it
	creates   int
	deletes   []string
}

func (b *fakeBackend) ListApplications(ctx context.Context, _ string) ([]tracker.Application, error) {
	b.mu.Lock()
	gate := b.listGate
	apps := append([]tracker.Application(nil), b.apps...)
	err := b.listErr
	b.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return apps, err
}

func (b *fakeBackend) CreateApplication(_ context.Context, userID string, in tracker.NewApplication) (*tracker.Application, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.creates++
	if b.createErr != nil {
		return nil, b.createErr
	}
	a, err := in.Build(userID, now)
	if err != nil {
		return nil, err
	}
	a.ID = "new"
	b.apps = append(b.apps, a)
	return &a, nil
}

func (b *fakeBackend) UpdateStatus(_ context.Context, _, appID, status string) (*tracker.Application, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.updateErr != nil {
		return nil, b.updateErr
	}
	for i := range b.apps {
		if b.apps[i].ID == appID {
			b.apps[i].Status = tracker.Status(status)
			a := b.apps[i]
			return &a, nil
		}
	}
	return nil, tracker.ErrNotFound
}

func (b *fakeBackend) DeleteApplication(_ context.Context, _, appID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deletes = append(b.deletes, appID)
	return b.deleteErr
}

func seed() []tracker.Application {
	return []tracker.Application{
		{ID: "a", UserID: "u1", Company: "Acme", Role: "Intern", Status: tracker.StatusApplied, AppliedDate: now.Add(-48 * time.Hour)},
		{ID: "b", UserID: "u1", Company: "Beta", Role: "Analyst", Status: tracker.StatusInterview, AppliedDate: now.Add(-24 * time.Hour)},
	}
}

func loadedView(t *testing.T, b *fakeBackend, opts ...view.Option) *view.ListView {
	t.Helper()
	opts = append([]view.Option{view.WithClock(func() time.Time { return now })}, opts...)
	v := view.New(b, "u1", opts...)
	if err := v.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	return v
}

// ── Load state ─────────────────────────────────────────────────────────────

func TestNew_StartsLoading(t *testing.T) {
	v := view.New(&fakeBackend{}, "u1")
	if v.State() != view.Loading {
		t.Errorf("State = %v, want loading", v.State())
	}
}

func TestReload_ErrorThenRetry(t *testing.T) {
	b := &fakeBackend{apps: seed(), listErr: errors.New("offline")}
	v := view.New(b, "u1")

	if err := v.Reload(context.Background()); err == nil {
		t.Fatal("Reload should fail")
	}
	if v.State() != view.Errored || v.Err() == nil {
		t.Fatalf("State = %v, Err = %v; want errored with error", v.State(), v.Err())
	}
	if v.Len() != 0 {
		t.Errorf("Len = %d, want 0", v.Len())
	}

	b.mu.Lock()
	b.listErr = nil
	b.mu.Unlock()

	if err := v.Reload(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if v.State() != view.Loaded || v.Err() != nil {
		t.Errorf("State = %v, Err = %v; want loaded", v.State(), v.Err())
	}
	if v.Len() != 2 {
		t.Errorf("Len = %d, want 2", v.Len())
	}
}

func TestReload_StaleResultIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	b := &fakeBackend{apps: seed(), listGate: gate}
	v := view.New(b, "u1")

	first := make(chan error, 1)
	go func() { first <- v.Reload(context.Background()) }()

	// Wait until the first reload is blocked in the backend, then let the
	// second reload run against an unblocked backend with different data.
	time.Sleep(20 * time.Millisecond)
	b.mu.Lock()
	b.listGate = nil
	b.apps = seed()[:1]
	b.mu.Unlock()

	if err := v.Reload(context.Background()); err != nil {
		t.Fatalf("second Reload: %v", err)
	}
	close(gate)

	if err := <-first; !errors.Is(err, view.ErrSuperseded) {
		t.Errorf("first Reload = %v, want ErrSuperseded", err)
	}
	if v.Len() != 1 {
		t.Errorf("Len = %d, want the newer result (1)", v.Len())
	}
}

// blockNextReload makes the next ListApplications call wait on the returned
// channel and starts a Reload of v against it.
func blockNextReload(t *testing.T, b *fakeBackend, v *view.ListView) (release chan struct{}, done chan error) {
	t.Helper()
	release = make(chan struct{})
	b.mu.Lock()
	b.listGate = release
	b.mu.Unlock()

	done = make(chan error, 1)
	go func() { done <- v.Reload(context.Background()) }()
	time.Sleep(20 * time.Millisecond)

	b.mu.Lock()
	b.listGate = nil
	b.mu.Unlock()
	return release, done
}

func TestReload_InFlightResultDoesNotUndoCreate(t *testing.T) {
	b := &fakeBackend{apps: seed()}
	v := loadedView(t, b)
	release, done := blockNextReload(t, b, v)

	if _, err := v.Create(context.Background(), tracker.NewApplication{Company: "Gamma", Role: "Intern"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	close(release)

	if err := <-done; !errors.Is(err, view.ErrSuperseded) {
		t.Errorf("Reload = %v, want ErrSuperseded", err)
	}
	if v.Len() != 3 || v.State() != view.Loaded {
		t.Errorf("Len = %d, State = %v, want 3 loaded", v.Len(), v.State())
	}
}

func TestReload_InFlightResultDoesNotUndoDelete(t *testing.T) {
	b := &fakeBackend{apps: seed()}
	v := loadedView(t, b, view.WithConfirmer(func(string) bool { return true }))
	release, done := blockNextReload(t, b, v)

	if got := v.Delete(context.Background(), "a"); got != view.DeleteRemoved {
		t.Fatalf("Delete = %v, want removed", got)
	}
	close(release)

	if err := <-done; !errors.Is(err, view.ErrSuperseded) {
		t.Errorf("Reload = %v, want ErrSuperseded", err)
	}
	if got := v.Applications(); len(got) != 1 || got[0].ID != "b" {
		t.Errorf("Applications = %+v, want only b", got)
	}
}

func TestReload_InFlightResultDoesNotUndoStatusChange(t *testing.T) {
	b := &fakeBackend{apps: seed()}
	v := loadedView(t, b)
	release, done := blockNextReload(t, b, v)

	if _, err := v.UpdateStatus(context.Background(), "a", "Offer"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	close(release)

	if err := <-done; !errors.Is(err, view.ErrSuperseded) {
		t.Errorf("Reload = %v, want ErrSuperseded", err)
	}
	if got := v.Applications(); got[0].Status != tracker.StatusOffer {
		t.Errorf("status = %s, want Offer", got[0].Status)
	}
}

func TestReload_FailureOfLoadedViewMovesToErrored(t *testing.T) {
	b := &fakeBackend{apps: seed()}
	v := loadedView(t, b)

	b.mu.Lock()
	b.listErr = errors.New("offline")
	b.mu.Unlock()

	if err := v.Reload(context.Background()); err == nil {
		t.Fatal("Reload should fail")
	}
	if v.State() != view.Errored {
		t.Errorf("State = %v, want errored", v.State())
	}
}

func TestApplications_ReturnsCopy(t *testing.T) {
	v := loadedView(t, &fakeBackend{apps: seed()})
	got := v.Applications()
	got[0].Company = "changed"
	if v.Applications()[0].Company == "changed" {
		t.Error("Applications() exposes the owned slice")
	}
}

func TestFilteredAndDashboard(t *testing.T) {
	v := loadedView(t, &fakeBackend{apps: seed()})

	if got := v.Filtered("ACM"); len(got) != 1 || got[0].ID != "a" {
		t.Errorf("Filtered = %+v", got)
	}
	d := v.Dashboard()
	if d.Total != 2 || d.StatusCounts[tracker.StatusInterview] != 1 {
		t.Errorf("Dashboard = %+v", d)
	}
	if len(d.Recent) != 2 || d.Recent[0].ID != "b" {
		t.Errorf("Recent = %+v", d.Recent)
	}
}

// ── Create ─────────────────────────────────────────────────────────────────

func TestCreate_AppendsStoredRecord(t *testing.T) {
	b := &fakeBackend{apps: seed()}
	v := loadedView(t, b)

	got, err := v.Create(context.Background(), tracker.NewApplication{Company: "Gamma", Role: "Intern"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.ID != "new" || v.Len() != 3 {
		t.Errorf("got %+v, Len = %d", got, v.Len())
	}
}

func TestCreate_ValidationFailsLocally(t *testing.T) {
	b := &fakeBackend{apps: seed()}
	v := loadedView(t, b)

	_, err := v.Create(context.Background(), tracker.NewApplication{Company: "", Role: "Intern"})
	if !tracker.IsValidation(err) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if b.creates != 0 {
		t.Errorf("backend called %d times, want 0", b.creates)
	}
	if v.Len() != 2 {
		t.Errorf("Len = %d, want unchanged 2", v.Len())
	}
}

func TestCreate_BackendFailureLeavesViewAndNotifies(t *testing.T) {
	var msgs []string
	b := &fakeBackend{apps: seed(), createErr: errors.New("503")}
	v := loadedView(t, b, view.WithNotifier(func(m string) { msgs = append(msgs, m) }))

	_, err := v.Create(context.Background(), tracker.NewApplication{Company: "Gamma", Role: "Intern"})
	if !tracker.IsPersistence(err) {
		t.Errorf("err = %v, want PersistenceError", err)
	}
	if v.Len() != 2 {
		t.Errorf("Len = %d, want unchanged 2", v.Len())
	}
	if len(msgs) != 1 {
		t.Errorf("notifications = %v, want one", msgs)
	}
}

func TestCreate_RequiresLoadedView(t *testing.T) {
	b := &fakeBackend{}
	v := view.New(b, "u1")
	if _, err := v.Create(context.Background(), tracker.NewApplication{Company: "A", Role: "B"}); !errors.Is(err, view.ErrNotLoaded) {
		t.Errorf("err = %v, want ErrNotLoaded", err)
	}
	if b.creates != 0 {
		t.Error("backend should not be called before load")
	}
}

// ── UpdateStatus ───────────────────────────────────────────────────────────

func TestUpdateStatus_ReplacesRecord(t *testing.T) {
	v := loadedView(t, &fakeBackend{apps: seed()})

	got, err := v.UpdateStatus(context.Background(), "a", "Offer")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if got.Status != tracker.StatusOffer {
		t.Errorf("Status = %q", got.Status)
	}
	for _, a := range v.Applications() {
		if a.ID == "a" && a.Status != tracker.StatusOffer {
			t.Errorf("view record status = %q, want Offer", a.Status)
		}
	}
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	v := loadedView(t, &fakeBackend{apps: seed()})
	if _, err := v.UpdateStatus(context.Background(), "a", "Hired"); !tracker.IsValidation(err) {
		t.Errorf("err = %v, want ValidationError", err)
	}
}

func TestUpdateStatus_UnknownID(t *testing.T) {
	v := loadedView(t, &fakeBackend{apps: seed()})
	if _, err := v.UpdateStatus(context.Background(), "zzz", "Offer"); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateStatus_BackendFailureNotifies(t *testing.T) {
	var msgs []string
	b := &fakeBackend{apps: seed()}
	v := loadedView(t, b, view.WithNotifier(func(m string) { msgs = append(msgs, m) }))
	b.updateErr = errors.New("timeout")

	if _, err := v.UpdateStatus(context.Background(), "a", "Offer"); err == nil {
		t.Fatal("UpdateStatus should fail")
	}
	if len(msgs) != 1 {
		t.Errorf("notifications = %v", msgs)
	}
	if v.Applications()[0].Status != tracker.StatusApplied {
		t.Error("failed update changed the view")
	}
}

// ── Delete ─────────────────────────────────────────────────────────────────

func TestDelete_Confirmed(t *testing.T) {
	var prompt string
	b := &fakeBackend{apps: seed()}
	v := loadedView(t, b, view.WithConfirmer(func(p string) bool { prompt = p; return true }))

	if got := v.Delete(context.Background(), "a"); got != view.DeleteRemoved {
		t.Fatalf("Delete = %v, want removed", got)
	}
	if prompt != view.DeletePrompt {
		t.Errorf("prompt = %q", prompt)
	}
	if v.Len() != 1 || v.Applications()[0].ID != "b" {
		t.Errorf("view = %+v", v.Applications())
	}
}

func TestDelete_CancelledLeavesEverything(t *testing.T) {
	b := &fakeBackend{apps: seed()}
	v := loadedView(t, b, view.WithConfirmer(func(string) bool { return false }))

	if got := v.Delete(context.Background(), "a"); got != view.DeleteCancelled {
		t.Fatalf("Delete = %v, want cancelled", got)
	}
	if len(b.deletes) != 0 || v.Len() != 2 {
		t.Errorf("deletes = %v, Len = %d", b.deletes, v.Len())
	}
}

func TestDelete_DefaultConfirmerCancels(t *testing.T) {
	b := &fakeBackend{apps: seed()}
	v := loadedView(t, b)
	if got := v.Delete(context.Background(), "a"); got != view.DeleteCancelled {
		t.Errorf("Delete = %v, want cancelled", got)
	}
}

func TestDelete_StaleIDIsNoOp(t *testing.T) {
	asked := false
	b := &fakeBackend{apps: seed()}
	v := loadedView(t, b, view.WithConfirmer(func(string) bool { asked = true; return true }))

	if got := v.Delete(context.Background(), "gone"); got != view.DeleteNotInView {
		t.Fatalf("Delete = %v, want not-in-view", got)
	}
	if asked || len(b.deletes) != 0 {
		t.Error("stale delete should neither prompt nor call the backend")
	}
	if v.Len() != 2 {
		t.Errorf("Len = %d, want 2", v.Len())
	}
}

func TestDelete_BackendNotFoundStillRemoves(t *testing.T) {
	b := &fakeBackend{apps: seed(), deleteErr: tracker.ErrNotFound}
	v := loadedView(t, b, view.WithConfirmer(func(string) bool { return true }))
	if got := v.Delete(context.Background(), "a"); got != view.DeleteRemoved {
		t.Errorf("Delete = %v, want removed", got)
	}
}

func TestDelete_BackendFailureKeepsRecord(t *testing.T) {
	var msgs []string
	b := &fakeBackend{apps: seed(), deleteErr: errors.New("500")}
	v := loadedView(t, b,
		view.WithConfirmer(func(string) bool { return true }),
		view.WithNotifier(func(m string) { msgs = append(msgs, m) }),
	)

	if got := v.Delete(context.Background(), "a"); got != view.DeleteFailed {
		t.Fatalf("Delete = %v, want failed", got)
	}
	if v.Len() != 2 || len(msgs) != 1 {
		t.Errorf("Len = %d, msgs = %v", v.Len(), msgs)
	}
}

func TestDelete_ErroredViewSendsNothing(t *testing.T) {
	asked := false
	b := &fakeBackend{apps: seed()}
	v := loadedView(t, b, view.WithConfirmer(func(string) bool { asked = true; return true }))

	b.mu.Lock()
	b.listErr = errors.New("offline")
	b.mu.Unlock()
	if err := v.Reload(context.Background()); err == nil {
		t.Fatal("Reload succeeded, want error")
	}

	if got := v.Delete(context.Background(), "a"); got != view.DeleteNotLoaded {
		t.Errorf("Delete = %v, want not loaded", got)
	}
	if asked || len(b.deletes) != 0 {
		t.Errorf("asked = %v, deletes = %v", asked, b.deletes)
	}
}

func TestState_String(t *testing.T) {
	for s, want := range map[view.State]string{view.Loading: "loading", view.Loaded: "loaded", view.Errored: "errored"} {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", s, s.String(), want)
		}
	}
}
