package tracker

import (
	"sort"
	"time"
)

// Dashboard limits used by the service; they match what the dashboard renders.
const (
	DashboardRecentLimit   = 5
	DashboardFollowUpLimit = 3
)

// StatusCounts maps every known status to the number of records carrying it.
type StatusCounts map[Status]int

// Sum returns the number of records with a known status.
func (c StatusCounts) Sum() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Dashboard is the summary view derived from one user's applications.
type Dashboard struct {
	Total        int           `json:"total"`
	StatusCounts StatusCounts  `json:"statusCounts"`
	Recent       []Application `json:"recent"`
	FollowUps    []Application `json:"upcomingFollowUps"`
}

// CountByStatus counts records per status. All four statuses are present in
// the result, zero when unmatched. Records with an unknown status are skipped
// here but still contribute to Total.
func CountByStatus(apps []Application) StatusCounts {
	counts := make(StatusCounts, len(funnel))
	for _, s := range funnel {
		counts[s] = 0
	}
	for i := range apps {
		if _, ok := counts[apps[i].Status]; ok {
			counts[apps[i].Status]++
		}
	}
	return counts
}

// Total is the number of records regardless of status.
func Total(apps []Application) int { return len(apps) }

// Recent returns up to n records, most recently applied first. Records with
// equal appliedDate keep their input order.
func Recent(apps []Application, n int) []Application {
	if n <= 0 || len(apps) == 0 {
		return []Application{}
	}
	out := clone(apps)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AppliedDate.After(out[j].AppliedDate)
	})
	return truncate(out, n)
}

// UpcomingFollowUps returns up to n records whose follow-up is at or after
// now, soonest first. Records without a follow-up date never qualify.
func UpcomingFollowUps(apps []Application, n int, now time.Time) []Application {
	if n <= 0 {
		return []Application{}
	}
	out := make([]Application, 0, len(apps))
	for i := range apps {
		f := apps[i].FollowUpDate
		if f == nil || f.Before(now) {
			continue
		}
		out = append(out, apps[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FollowUpDate.Before(*out[j].FollowUpDate)
	})
	return truncate(out, n)
}

// Summarize derives the full dashboard at now.
func Summarize(apps []Application, now time.Time, recentN, followUpN int) Dashboard {
	return Dashboard{
		Total:        Total(apps),
		StatusCounts: CountByStatus(apps),
		Recent:       Recent(apps, recentN),
		FollowUps:    UpcomingFollowUps(apps, followUpN, now),
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func clone(apps []Application) []Application {
	out := make([]Application, len(apps))
	copy(out, apps)
	return out
}

func truncate(apps []Application, n int) []Application {
	if len(apps) > n {
		return apps[:n:n]
	}
	return apps
}
