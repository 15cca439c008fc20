package event

import (
	"crypto/sha1"
	"fmt"
	"strings"
)

// CompanySource records which resolver produced a record's company name
type CompanySource string

const (
	SourceAI      CompanySource = "AI"
	SourceWebsite CompanySource = "Website"
	SourceNone    CompanySource = "None"
)

// Header is the fixed column header written ahead of the records by every sink
var Header = []string{
	"Event Name", "Dates", "City", "Country", "Attendance", "Exhibitors",
	"Website", "Email", "Company Name", "Company Name Source",
}

// Listing holds the raw fields read from one listing row, by column position
type Listing struct {
	Name       string `json:"name"`
	Dates      string `json:"dates"`
	City       string `json:"city"`
	Country    string `json:"country"`
	Attendance string `json:"attendance"`
	Exhibitors string `json:"exhibitors"`
}

// Summary renders the one-line description handed to the language model
func (l Listing) Summary() string {
	return fmt.Sprintf("Event: %s, Dates: %s, City: %s, Country: %s, Attendance: %s, Exhibitors: %s",
		l.Name, l.Dates, l.City, l.Country, l.Attendance, l.Exhibitors)
}

// Record is a harvested trade show event with its enrichment.
// Records are never modified once appended to a harvest result.
type Record struct {
	ID string `json:"id"`
	Listing
	Month         string        `json:"month,omitempty"`
	Website       string        `json:"website"`
	Email         string        `json:"email"`
	CompanyName   string        `json:"company_name"`
	CompanySource CompanySource `json:"company_name_source"`
}

// GenerateID creates a deterministic ID for a record based on its name and dates
func GenerateID(name, dates string) string {
	h := sha1.New()
	h.Write([]byte(strings.TrimSpace(name) + "|" + strings.TrimSpace(dates)))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// NewRecord assembles a record. The company source is forced to None whenever the
// company name is empty so the two fields can never disagree.
func NewRecord(l Listing, month, website, email, companyName string, source CompanySource) *Record {
	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		source = SourceNone
	} else if source == SourceNone || source == "" {
		source = SourceWebsite
	}

	return &Record{
		ID:            GenerateID(l.Name, l.Dates),
		Listing:       l,
		Month:         month,
		Website:       website,
		Email:         email,
		CompanyName:   companyName,
		CompanySource: source,
	}
}

// Row returns the record's cells in Header order
func (r *Record) Row() []string {
	return []string{
		r.Name, r.Dates, r.City, r.Country, r.Attendance, r.Exhibitors,
		r.Website, r.Email, r.CompanyName, string(r.CompanySource),
	}
}
