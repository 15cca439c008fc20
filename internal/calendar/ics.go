// Package calendar renders harvested events as an iCalendar feed.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/tradeshow-events/internal/event"
)

const prodID = "-//Tradeshow Events//tradeshow-events//EN"

// maxLineOctets is the longest content line RFC 5545 allows before folding
const maxLineOctets = 75

// GenerateICS generates one calendar with an all-day VEVENT per record.
// Records whose dates cannot be parsed are left out; their count is returned.
func GenerateICS(records []*event.Record, now time.Time) (string, int) {
	var ics strings.Builder
	skipped := 0

	writeLine(&ics, "BEGIN:VCALENDAR")
	writeLine(&ics, "VERSION:2.0")
	writeLine(&ics, "PRODID:"+prodID)
	writeLine(&ics, "CALSCALE:GREGORIAN")
	writeLine(&ics, "METHOD:PUBLISH")

	for _, rec := range records {
		r, ok := event.ParseDateRange(rec.Dates)
		if !ok {
			skipped++
			continue
		}
		writeEvent(&ics, rec, r, now)
	}

	writeLine(&ics, "END:VCALENDAR")
	return ics.String(), skipped
}

func writeEvent(ics *strings.Builder, rec *event.Record, r event.DateRange, now time.Time) {
	writeLine(ics, "BEGIN:VEVENT")

	// UID - stable across runs for the same name and dates
	writeLine(ics, fmt.Sprintf("UID:%s@tradeshow-events", rec.ID))
	writeLine(ics, "DTSTAMP:"+formatICSTime(now))

	// All-day event; DTEND is exclusive
	writeLine(ics, "DTSTART;VALUE=DATE:"+formatICSDate(r.Start))
	writeLine(ics, "DTEND;VALUE=DATE:"+formatICSDate(r.End.AddDate(0, 0, 1)))

	writeLine(ics, "SUMMARY:"+escapeICS(rec.Name))

	var desc []string
	desc = append(desc, "Dates: "+rec.Dates)
	if rec.CompanyName != "" {
		desc = append(desc, fmt.Sprintf("Organizer: %s (%s)", rec.CompanyName, rec.CompanySource))
	}
	if rec.Email != "" {
		desc = append(desc, "Contact: "+rec.Email)
	}
	if rec.Attendance != "" {
		desc = append(desc, "Attendance: "+rec.Attendance)
	}
	if rec.Exhibitors != "" {
		desc = append(desc, "Exhibitors: "+rec.Exhibitors)
	}
	writeLine(ics, "DESCRIPTION:"+escapeICS(strings.Join(desc, "\n")))

	location := rec.City
	if rec.Country != "" {
		if location != "" {
			location += ", "
		}
		location += rec.Country
	}
	if location != "" {
		writeLine(ics, "LOCATION:"+escapeICS(location))
	}
	if rec.Website != "" {
		writeLine(ics, "URL:"+rec.Website)
	}

	writeLine(ics, "STATUS:CONFIRMED")
	writeLine(ics, "TRANSP:TRANSPARENT")
	writeLine(ics, "END:VEVENT")
}

// writeLine folds line at 75 octets and terminates it with CRLF
func writeLine(b *strings.Builder, line string) {
	limit := maxLineOctets
	for len(line) > limit {
		cut := limit
		// Never split a multi-byte UTF-8 sequence
		for cut > 0 && line[cut]&0xC0 == 0x80 {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		// Continuation lines start with a space
		limit = maxLineOctets - 1
	}
	b.WriteString(line)
	b.WriteString("\r\n")
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

func formatICSDate(t time.Time) string {
	return t.Format("20060102")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
