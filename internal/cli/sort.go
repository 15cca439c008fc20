package cli

import (
	"sort"
	"strings"
	"time"

	"github.com/pfrederiksen/tradeshow-events/internal/event"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByRow     SortOrder = "row"
	SortByMonth   SortOrder = "month"
	SortByName    SortOrder = "name"
	SortByCompany SortOrder = "company"
)

// parseSortOrder validates a --sort value
func parseSortOrder(s string) (SortOrder, bool) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case "", SortByRow:
		return SortByRow, true
	case SortByMonth, SortByName, SortByCompany:
		return o, true
	default:
		return "", false
	}
}

// sortRecords sorts a copy of records; SortByRow keeps harvest order
func sortRecords(records []*event.Record, order SortOrder) []*event.Record {
	out := append([]*event.Record(nil), records...)

	switch order {
	case SortByMonth:
		sort.SliceStable(out, func(i, j int) bool {
			return compareByMonth(out[i], out[j])
		})
	case SortByName:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
	case SortByCompany:
		sort.SliceStable(out, func(i, j int) bool {
			ci, cj := strings.ToLower(out[i].CompanyName), strings.ToLower(out[j].CompanyName)
			// Unresolved companies go last
			if (ci == "") != (cj == "") {
				return cj == ""
			}
			if ci != cj {
				return ci < cj
			}
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
	}
	return out
}

// compareByMonth orders records by their "July 2025" month label, then by
// start date within the month. Values that do not parse sort last.
func compareByMonth(i, j *event.Record) bool {
	mi := parseMonth(i.Month)
	mj := parseMonth(j.Month)

	if !mi.Equal(mj) {
		return earlier(mi, mj)
	}
	return earlier(event.ParseDate(i.Dates), event.ParseDate(j.Dates))
}

// earlier reports whether a sorts before b, with zero times last
func earlier(a, b time.Time) bool {
	if !a.IsZero() && !b.IsZero() {
		return a.Before(b)
	}
	return !a.IsZero() && b.IsZero()
}

func parseMonth(label string) time.Time {
	t, err := time.Parse("January 2006", strings.TrimSpace(label))
	if err != nil {
		return time.Time{}
	}
	return t
}
