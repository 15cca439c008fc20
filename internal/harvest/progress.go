package harvest

import (
	"time"

	"github.com/pfrederiksen/tradeshow-events/internal/event"
)

// ProgressKind classifies a progress update
type ProgressKind string

const (
	ProgressMonthStarted ProgressKind = "month-started"
	ProgressPage         ProgressKind = "page"
	ProgressRecord       ProgressKind = "record"
	ProgressMonthDone    ProgressKind = "month-done"
)

// Progress is sent to the supervisor as the run advances
type Progress struct {
	Kind      ProgressKind `json:"kind"`
	Month     string       `json:"month"`
	Page      int          `json:"page,omitempty"`
	Collected int          `json:"collected"`
	Cap       int          `json:"cap"`
	Message   string       `json:"message"`
}

// Summary reports what a run produced
type Summary struct {
	SessionID   string `json:"session_id"`
	Total       int    `json:"total"`
	WithWebsite int    `json:"with_website"`
	WithEmail   int    `json:"with_email"`
	WithCompany int    `json:"with_company"`
	FromAI      int    `json:"from_ai"`
	FromWebsite int    `json:"from_website"`
	NotFound    int    `json:"not_found"`
	TokensUsed  int    `json:"tokens_used"`

	MonthsProcessed int `json:"months_processed"`
	PagesVisited    int `json:"pages_visited"`
	RowsSeen        int `json:"rows_seen"`
	RowsSkipped     int `json:"rows_skipped"`

	CapReached bool `json:"cap_reached"`
	Cancelled  bool `json:"cancelled"`
	Aborted    bool `json:"aborted"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// ContactFound counts records with an email plus records with a company name
func (s Summary) ContactFound() int {
	return s.WithEmail + s.WithCompany
}

// Tally fills the record counts of s from records
func (s *Summary) Tally(records []*event.Record) {
	s.Total = len(records)
	s.WithWebsite, s.WithEmail, s.WithCompany = 0, 0, 0
	s.FromAI, s.FromWebsite, s.NotFound = 0, 0, 0

	for _, r := range records {
		if r.Website != "" {
			s.WithWebsite++
		}
		if r.Email != "" {
			s.WithEmail++
		}
		if r.CompanyName != "" {
			s.WithCompany++
		}
		switch r.CompanySource {
		case event.SourceAI:
			s.FromAI++
		case event.SourceWebsite:
			s.FromWebsite++
		default:
			s.NotFound++
		}
	}
}
