// Package filter decides which listing rows qualify for enrichment.
//
// A row qualifies when all of the following hold:
//   - Country: the country cell contains the target country (case-insensitive substring)
//   - Month: the date cell contains at least one of the month's aliases (case-insensitive)
//   - Year: the date cell contains the target year string
//
// Example usage:
//
//	q := filter.ForMonth(month)
//	if q.Matches(listing) {
//	    // resolve company name and contact info
//	}
package filter

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/tradeshow-events/internal/event"
)

// DefaultCountry is the country every harvested event must be held in
const DefaultCountry = "united states"

// Qualifier represents row qualification criteria
type Qualifier struct {
	Country string   `json:"country"`
	Aliases []string `json:"aliases"`
	Year    string   `json:"year"`
}

// ForMonth builds the qualifier for one harvesting pass
func ForMonth(m event.MonthSpec) *Qualifier {
	return &Qualifier{
		Country: DefaultCountry,
		Aliases: append([]string(nil), m.Aliases...),
		Year:    m.Year,
	}
}

// Matches checks if a listing row passes all criteria.
//
// Matching logic:
//   - Country: listing country must contain Country (case-insensitive)
//   - Aliases: listing dates must contain at least one alias (case-insensitive)
//   - Year: listing dates must contain Year
func (q *Qualifier) Matches(l event.Listing) bool {
	if !strings.Contains(strings.ToLower(l.Country), strings.ToLower(q.Country)) {
		return false
	}

	datesUpper := strings.ToUpper(l.Dates)
	matched := false
	for _, alias := range q.Aliases {
		alias = strings.ToUpper(strings.TrimSpace(alias))
		if alias != "" && strings.Contains(datesUpper, alias) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	return strings.Contains(l.Dates, q.Year)
}

// String returns a human-readable description of the criteria.
// Format: "Country: united states | Aliases: JUL, JULY | Year: 2025"
func (q *Qualifier) String() string {
	return fmt.Sprintf("Country: %s | Aliases: %s | Year: %s",
		q.Country, strings.Join(q.Aliases, ", "), q.Year)
}
