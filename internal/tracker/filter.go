package tracker

import "strings"

// FilterByText keeps the records whose company or role contains query,
// ignoring case. A blank query keeps everything in input order. The result
// never aliases the input slice.
func FilterByText(apps []Application, query string) []Application {
	if strings.TrimSpace(query) == "" {
		return clone(apps)
	}
	q := strings.ToLower(query)
	out := make([]Application, 0, len(apps))
	for i := range apps {
		if strings.Contains(strings.ToLower(apps[i].Company), q) ||
			strings.Contains(strings.ToLower(apps[i].Role), q) {
			out = append(out, apps[i])
		}
	}
	return out
}

// MatchesLocation reports whether a listing located at jobLocation should be
// shown to someone searching around place. Remote listings always match, and
// an empty place matches everything.
func MatchesLocation(jobLocation, place string) bool {
	place = strings.ToLower(strings.TrimSpace(place))
	if place == "" {
		return true
	}
	loc := strings.ToLower(jobLocation)
	return strings.Contains(loc, place) || strings.Contains(loc, "remote")
}
