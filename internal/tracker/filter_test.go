package tracker_test

import (
	"testing"

	"github.com/NavDevs/AI-InternShip/internal/tracker"
)

func TestFilterByText_CaseInsensitive(t *testing.T) {
	apps := []tracker.Application{
		app("1", "Acme", "Intern", tracker.StatusApplied, day(1)),
		app("2", "Beta", "Acme Liaison", tracker.StatusApplied, day(1)),
		app("3", "Gamma", "Engineer", tracker.StatusApplied, day(1)),
	}

	equalIDs(t, `FilterByText("acme")`, tracker.FilterByText(apps, "acme"), "1", "2")
	equalIDs(t, `FilterByText("ACME")`, tracker.FilterByText(apps, "ACME"), "1", "2")
	equalIDs(t, `FilterByText("cM")`, tracker.FilterByText(apps, "cM"), "1", "2")
	equalIDs(t, `FilterByText("engineer")`, tracker.FilterByText(apps, "engineer"), "3")
	equalIDs(t, `FilterByText("zzz")`, tracker.FilterByText(apps, "zzz"))
}

func TestFilterByText_BlankQueryKeepsAll(t *testing.T) {
	apps := []tracker.Application{
		app("1", "Acme", "Intern", tracker.StatusApplied, day(1)),
		app("2", "Beta", "Intern", tracker.StatusApplied, day(2)),
	}
	for _, q := range []string{"", "   ", "\t"} {
		equalIDs(t, "FilterByText(blank)", tracker.FilterByText(apps, q), "1", "2")
	}
}

func TestFilterByText_ResultIsSubsetAndDoesNotAlias(t *testing.T) {
	apps := []tracker.Application{
		app("1", "Acme", "Intern", tracker.StatusApplied, day(1)),
	}
	out := tracker.FilterByText(apps, "")
	out[0].Company = "changed"
	if apps[0].Company != "Acme" {
		t.Error("FilterByText result aliases the input")
	}
}

func TestMatchesLocation(t *testing.T) {
	cases := []struct {
		loc, place string
		want       bool
	}{
		{"Bengaluru, Karnataka", "bengaluru", true},
		{"Bengaluru, Karnataka", "Pune", false},
		{"Remote", "Pune", true},
		{"Pune (Remote friendly)", "Delhi", true},
		{"Anywhere", "", true},
		{"Anywhere", "   ", true},
	}
	for _, c := range cases {
		if got := tracker.MatchesLocation(c.loc, c.place); got != c.want {
			t.Errorf("MatchesLocation(%q, %q) = %v, want %v", c.loc, c.place, got, c.want)
		}
	}
}
