package tracker

import (
	"strings"
	"time"
)

// DefaultSource labels applications created from an in-app listing when the
// listing itself does not name its source.
const DefaultSource = "Intern-AI"

// ListingFollowUpAfter is how long after applying to a listing the follow-up
// reminder is scheduled.
const ListingFollowUpAfter = 5 * 24 * time.Hour

// futureSkew tolerates small clock differences between client and server.
const futureSkew = time.Minute

// Application is a single tracked job or internship application.
type Application struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	Company      string     `json:"company"`
	Role         string     `json:"role"`
	Status       Status     `json:"status"`
	AppliedDate  time.Time  `json:"appliedDate"`
	FollowUpDate *time.Time `json:"followUpDate,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	Location     string     `json:"location,omitempty"`
	Source       string     `json:"source,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// NewApplication carries the user-supplied fields for a create.
// Zero values mean "not provided".
type NewApplication struct {
	Company      string     `json:"company"`
	Role         string     `json:"role"`
	Status       Status     `json:"status,omitempty"`
	AppliedDate  *time.Time `json:"appliedDate,omitempty"`
	FollowUpDate *time.Time `json:"followUpDate,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	Location     string     `json:"location,omitempty"`
	Source       string     `json:"source,omitempty"`
}

// Validate checks the fields without touching any store.
func (n NewApplication) Validate(now time.Time) error {
	if strings.TrimSpace(n.Company) == "" {
		return &ValidationError{Field: "company", Msg: "company is required"}
	}
	if strings.TrimSpace(n.Role) == "" {
		return &ValidationError{Field: "role", Msg: "role is required"}
	}
	if n.Status != "" && !n.Status.Valid() {
		return &ValidationError{Field: "status", Msg: "unknown application status " + string(n.Status)}
	}
	if n.AppliedDate != nil && n.AppliedDate.After(now.Add(futureSkew)) {
		return &ValidationError{Field: "appliedDate", Msg: "appliedDate cannot be in the future"}
	}
	return nil
}

// Build validates n and returns the record to insert for userID, with
// defaults filled in: status Applied and appliedDate now.
func (n NewApplication) Build(userID string, now time.Time) (Application, error) {
	if userID == "" {
		return Application{}, ErrMissingUser
	}
	if err := n.Validate(now); err != nil {
		return Application{}, err
	}

	app := Application{
		UserID:       userID,
		Company:      strings.TrimSpace(n.Company),
		Role:         strings.TrimSpace(n.Role),
		Status:       n.Status,
		AppliedDate:  now,
		FollowUpDate: n.FollowUpDate,
		Notes:        n.Notes,
		Location:     strings.TrimSpace(n.Location),
		Source:       strings.TrimSpace(n.Source),
	}
	if app.Status == "" {
		app.Status = StatusApplied
	}
	if n.AppliedDate != nil {
		app.AppliedDate = *n.AppliedDate
	}
	return app, nil
}

// Listing is the subset of a job listing needed to record an application
// when the user applies from inside the app.
type Listing struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location,omitempty"`
	Source   string `json:"source,omitempty"`
}

// ToNewApplication maps a listing to a create request applied at now, with a
// follow-up scheduled ListingFollowUpAfter later.
func (l Listing) ToNewApplication(now time.Time) NewApplication {
	followUp := now.Add(ListingFollowUpAfter)
	source := l.Source
	if strings.TrimSpace(source) == "" {
		source = DefaultSource
	}
	return NewApplication{
		Company:      l.Company,
		Role:         l.Title,
		Status:       StatusApplied,
		AppliedDate:  &now,
		FollowUpDate: &followUp,
		Location:     l.Location,
		Source:       source,
	}
}
