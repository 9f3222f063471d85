// Package tracker holds the application-tracking domain: the Application record,
// its status funnel, the pure aggregation and filter functions derived from a
// user's records, and the Service that mediates mutations against a Store.
//
// Status funnel:
//
//	Applied ──► Interview ──► Offer
//	   │            │           │
//	   └────────────┴───────────┴──► Rejected
//
// The funnel is descriptive only: any status may be set from any other, the
// way a user edits a card by hand.
package tracker

import "fmt"

// Status values are persisted verbatim in the record store.
type Status string

const (
	StatusApplied   Status = "Applied"
	StatusInterview Status = "Interview"
	StatusOffer     Status = "Offer"
	StatusRejected  Status = "Rejected"
)

// funnel is the display order used by dashboards and counts.
var funnel = [...]Status{StatusApplied, StatusInterview, StatusOffer, StatusRejected}

// Statuses returns the four known statuses in funnel order.
func Statuses() []Status {
	out := make([]Status, len(funnel))
	copy(out, funnel[:])
	return out
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values. Matching is exact: "applied" is not a status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if st.Valid() {
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusApplied, StatusInterview, StatusOffer, StatusRejected:
		return true
	}
	return false
}

// IsClosed returns true for statuses that end the funnel (Offer or Rejected).
func IsClosed(s Status) bool { return s == StatusOffer || s == StatusRejected }
