package harvest

import (
	"strings"

	"github.com/pfrederiksen/tradeshow-events/internal/browser"
	"github.com/pfrederiksen/tradeshow-events/internal/event"
)

// minColumns is the number of cells a result row needs
const minColumns = 6

// ListingFromRow reads the listing fields by column position
func ListingFromRow(row browser.Row) (event.Listing, bool) {
	if len(row.Cells) < minColumns {
		return event.Listing{}, false
	}

	cell := func(i int) string { return strings.TrimSpace(row.Cells[i].Text) }

	return event.Listing{
		Name:       cell(0),
		Dates:      cell(1),
		City:       cell(2),
		Country:    cell(3),
		Attendance: cell(4),
		Exhibitors: cell(5),
	}, true
}

// WebsiteURL returns the first absolute link in the name cell, else the first
// absolute link anywhere in the row.
func WebsiteURL(row browser.Row) string {
	if len(row.Cells) == 0 {
		return ""
	}

	if u := firstHTTP(row.Cells[0].Hrefs); u != "" {
		return u
	}
	for _, c := range row.Cells {
		if u := firstHTTP(c.Hrefs); u != "" {
			return u
		}
	}
	return ""
}

func firstHTTP(hrefs []string) string {
	for _, h := range hrefs {
		if strings.HasPrefix(h, "http") {
			return h
		}
	}
	return ""
}
