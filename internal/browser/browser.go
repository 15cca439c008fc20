// Package browser drives the listing site through a real browser.
//
// The trade show calendar renders its results with JavaScript behind a form, so
// plain HTTP fetching cannot see the rows. Driver is the small surface the
// harvest loop needs; Chrome implements it with chromedp.
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a selector matches nothing
var ErrNotFound = errors.New("element not found")

// Cell is one rendered table cell
type Cell struct {
	Text  string   `json:"text"`
	Hrefs []string `json:"hrefs"`
}

// Row is one rendered result row
type Row struct {
	Cells []Cell `json:"cells"`
}

// Driver is a single stateful browser tab
type Driver interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	SelectByValue(ctx context.Context, selector, value string) error
	Click(ctx context.Context, selector string) error
	// ClickNested clicks the first inner element of selector via script,
	// for controls whose click handler sits on a child node.
	ClickNested(ctx context.Context, selector, inner string) error
	Rows(ctx context.Context, selector string) ([]Row, error)
	PageSource(ctx context.Context) (string, error)
	Close() error
}

// Selectors locate the listing site's controls
type Selectors struct {
	Month     string `yaml:"month" json:"month"`
	Submit    string `yaml:"submit" json:"submit"`
	Row       string `yaml:"row" json:"row"`
	Next      string `yaml:"next" json:"next"`
	NextInner string `yaml:"next_inner" json:"next_inner"`
}

// DefaultSelectors match thetradeshowcalendar.com
func DefaultSelectors() Selectors {
	return Selectors{
		Month:     "select[name=vMo]",
		Submit:    ".sc-button-submit",
		Row:       "tr.row",
		Next:      "td.next",
		NextInner: "div[onclick]",
	}
}

// WithDefaults fills empty selectors from DefaultSelectors
func (s Selectors) WithDefaults() Selectors {
	d := DefaultSelectors()
	if s.Month == "" {
		s.Month = d.Month
	}
	if s.Submit == "" {
		s.Submit = d.Submit
	}
	if s.Row == "" {
		s.Row = d.Row
	}
	if s.Next == "" {
		s.Next = d.Next
	}
	if s.NextInner == "" {
		s.NextInner = d.NextInner
	}
	return s
}
