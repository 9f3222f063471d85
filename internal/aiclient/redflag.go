package aiclient

import "strings"

// HasRedFlag reports whether any term appears, ignoring case, in the
// listing's title, company or description.
func HasRedFlag(l JobListing, terms []string) bool {
	if len(terms) == 0 {
		return false
	}
	combined := strings.ToLower(l.Title + " " + l.Company + " " + StripHTML(l.Description))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		if strings.Contains(combined, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// DropRedFlagged returns the listings without a red flag. The input is not modified.
func DropRedFlagged(listings []JobListing, terms []string) []JobListing {
	out := make([]JobListing, 0, len(listings))
	for _, l := range listings {
		if !HasRedFlag(l, terms) {
			out = append(out, l)
		}
	}
	return out
}
