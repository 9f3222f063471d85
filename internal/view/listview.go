// Package view holds the client-side state of an application list: the
// owned copy of the user's records, its load state, and the reconciliation
// of mutations against the backend.
//
// State machine:
//
//	Loading ──► Loaded ──► Loaded   (create, update, delete)
//	   │          │
//	   ▼          ▼                 (failed load or reload)
//	Errored ──► Loading             (retry)
package view

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/NavDevs/AI-InternShip/internal/tracker"
)

// State is the display state of a ListView.
type State int

const (
	Loading State = iota
	Loaded
	Errored
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Errored:
		return "errored"
	}
	return "unknown"
}

// Backend is the remote side of a list view. *tracker.Service and
// *trackerclient.Client both satisfy it.
type Backend interface {
	ListApplications(ctx context.Context, userID string) ([]tracker.Application, error)
	CreateApplication(ctx context.Context, userID string, in tracker.NewApplication) (*tracker.Application, error)
	UpdateStatus(ctx context.Context, userID, appID, status string) (*tracker.Application, error)
	DeleteApplication(ctx context.Context, userID, appID string) error
}

// Confirmer asks the user a yes/no question and blocks for the answer.
type Confirmer func(prompt string) bool

// Notifier shows a transient message to the user.
type Notifier func(msg string)

var (
	// ErrSuperseded is returned by Reload when a newer reload replaced it.
	ErrSuperseded = errors.New("reload superseded by a newer request")
	// ErrNotLoaded is returned by mutations attempted before a successful load.
	ErrNotLoaded = errors.New("application list is not loaded")
)

// DeletePrompt is the question asked before a delete.
const DeletePrompt = "Are you sure you want to remove this application?"

// DeleteOutcome reports what Delete did.
type DeleteOutcome int

const (
	DeleteRemoved DeleteOutcome = iota
	DeleteCancelled
	DeleteNotInView
	DeleteFailed
	DeleteNotLoaded
)

// ListView owns one user's application list. It is safe for concurrent use;
// every mutation replaces the owned slice rather than editing it in place.
type ListView struct {
	backend Backend
	userID  string
	confirm Confirmer
	notify  Notifier
	now     func() time.Time

	mu    sync.Mutex
	state State
	apps  []tracker.Application
	err   error
	gen   uint64 // bumped by every reload and every applied mutation
}

// Option configures a ListView.
type Option func(*ListView)

// WithConfirmer sets the delete confirmation. Without one, deletes are cancelled.
func WithConfirmer(c Confirmer) Option { return func(v *ListView) { v.confirm = c } }

// WithNotifier sets the transient message sink.
func WithNotifier(n Notifier) Option { return func(v *ListView) { v.notify = n } }

// WithClock replaces time.Now for dashboards and validation.
func WithClock(now func() time.Time) Option { return func(v *ListView) { v.now = now } }

// New returns a view for userID in the Loading state. Call Reload to fetch.
func New(backend Backend, userID string, opts ...Option) *ListView {
	v := &ListView{
		backend: backend,
		userID:  userID,
		confirm: func(string) bool { return false },
		notify:  func(string) {},
		now:     time.Now,
		state:   Loading,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ─── Read path ───────────────────────────────────────────────────────────────

// Reload fetches the full list. A reload started later, or a mutation that
// succeeds while this one is in flight, supersedes it: its result is
// discarded and ErrSuperseded returned. A loaded view stays
// Loaded while refreshing; an errored view moves back to Loading.
func (v *ListView) Reload(ctx context.Context) error {
	v.mu.Lock()
	v.gen++
	gen := v.gen
	if v.state != Loaded {
		v.state = Loading
		v.err = nil
	}
	v.mu.Unlock()

	apps, err := v.backend.ListApplications(ctx, v.userID)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		return ErrSuperseded
	}
	if err != nil {
		v.state = Errored
		v.err = err
		return err
	}
	v.apps = cloneApps(apps)
	v.state = Loaded
	v.err = nil
	return nil
}

// State returns the current display state.
func (v *ListView) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Err returns the error behind the Errored state, or nil.
func (v *ListView) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Applications returns a copy of the owned list.
func (v *ListView) Applications() []tracker.Application {
	v.mu.Lock()
	defer v.mu.Unlock()
	return cloneApps(v.apps)
}

// Len returns the number of records in the view.
func (v *ListView) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.apps)
}

// Filtered returns the records matching query.
func (v *ListView) Filtered(query string) []tracker.Application {
	v.mu.Lock()
	defer v.mu.Unlock()
	return tracker.FilterByText(v.apps, query)
}

// Dashboard summarises the owned list at the current time.
func (v *ListView) Dashboard() tracker.Dashboard {
	v.mu.Lock()
	defer v.mu.Unlock()
	return tracker.Summarize(v.apps, v.now(), tracker.DashboardRecentLimit, tracker.DashboardFollowUpLimit)
}

// ─── Mutations ───────────────────────────────────────────────────────────────

// Create validates in locally, then creates it on the backend and appends
// the stored record. Nothing is sent when validation fails, and the view is
// unchanged when the backend fails.
func (v *ListView) Create(ctx context.Context, in tracker.NewApplication) (*tracker.Application, error) {
	if err := in.Validate(v.now()); err != nil {
		return nil, err
	}
	if v.State() != Loaded {
		return nil, ErrNotLoaded
	}

	app, err := v.backend.CreateApplication(ctx, v.userID, in)
	if err != nil {
		if tracker.IsValidation(err) {
			return nil, err
		}
		v.notify("Could not save the application. Please try again.")
		if !tracker.IsPersistence(err) {
			err = tracker.NewPersistenceError("createApplication", err)
		}
		return nil, err
	}

	v.mu.Lock()
	next := make([]tracker.Application, 0, len(v.apps)+1)
	next = append(next, v.apps...)
	v.apps = append(next, *app)
	v.gen++
	v.mu.Unlock()

	out := *app
	return &out, nil
}

// UpdateStatus sets the status of the record id. A record already gone from
// the backend is still updated locally.
func (v *ListView) UpdateStatus(ctx context.Context, id, status string) (*tracker.Application, error) {
	st, err := tracker.ParseStatus(status)
	if err != nil {
		return nil, &tracker.ValidationError{Field: "status", Msg: err.Error()}
	}
	if v.State() != Loaded {
		return nil, ErrNotLoaded
	}
	if _, ok := v.find(id); !ok {
		return nil, tracker.ErrNotFound
	}

	app, err := v.backend.UpdateStatus(ctx, v.userID, id, string(st))
	switch {
	case errors.Is(err, tracker.ErrNotFound):
		local, ok := v.find(id)
		if !ok {
			return nil, tracker.ErrNotFound
		}
		local.Status = st
		app = &local
	case err != nil:
		v.notify("Could not update the application. Please try again.")
		return nil, err
	}

	v.mu.Lock()
	next := cloneApps(v.apps)
	for i := range next {
		if next[i].ID == id {
			next[i] = *app
		}
	}
	v.apps = next
	v.gen++
	v.mu.Unlock()

	out := *app
	return &out, nil
}

// Delete asks for confirmation, then removes id from the backend and the
// view. Failures are reported through the Notifier and leave the view as is.
// Nothing is asked or sent unless the view is Loaded.
func (v *ListView) Delete(ctx context.Context, id string) DeleteOutcome {
	if v.State() != Loaded {
		return DeleteNotLoaded
	}
	if _, ok := v.find(id); !ok {
		return DeleteNotInView
	}
	if !v.confirm(DeletePrompt) {
		return DeleteCancelled
	}

	err := v.backend.DeleteApplication(ctx, v.userID, id)
	if err != nil && !errors.Is(err, tracker.ErrNotFound) {
		v.notify("Could not delete the application. Please try again.")
		return DeleteFailed
	}

	v.mu.Lock()
	next := make([]tracker.Application, 0, len(v.apps))
	for _, a := range v.apps {
		if a.ID != id {
			next = append(next, a)
		}
	}
	v.apps = next
	v.gen++
	v.mu.Unlock()
	return DeleteRemoved
}

func (v *ListView) find(id string) (tracker.Application, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, a := range v.apps {
		if a.ID == id {
			return a, true
		}
	}
	return tracker.Application{}, false
}

func cloneApps(apps []tracker.Application) []tracker.Application {
	out := make([]tracker.Application, len(apps))
	copy(out, apps)
	return out
}
