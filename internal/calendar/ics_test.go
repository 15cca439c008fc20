package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/tradeshow-events/internal/event"
)

var stamp = time.Date(2025, 7, 1, 12, 30, 0, 0, time.UTC)

func blackHat() *event.Record {
	return event.NewRecord(event.Listing{
		Name:       "Black Hat USA",
		Dates:      "2-7 AUG 2025",
		City:       "Las Vegas",
		Country:    "United States",
		Attendance: "20000",
		Exhibitors: "300",
	}, "August 2025", "https://www.blackhat.com", "info@blackhat.com", "Informa Tech", event.SourceAI)
}

func TestGenerateICS(t *testing.T) {
	rec := blackHat()
	ics, skipped := GenerateICS([]*event.Record{rec}, stamp)

	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}

	requiredFields := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Tradeshow Events//tradeshow-events//EN",
		"BEGIN:VEVENT",
		"UID:" + rec.ID + "@tradeshow-events",
		"DTSTAMP:20250701T123000Z",
		"DTSTART;VALUE=DATE:20250802",
		"DTEND;VALUE=DATE:20250808",
		"SUMMARY:Black Hat USA",
		"Organizer: Informa Tech (AI)",
		"LOCATION:Las Vegas\\, United States", // Comma is escaped
		"URL:https://www.blackhat.com",
		"END:VEVENT",
		"END:VCALENDAR",
	}

	for _, field := range requiredFields {
		if !strings.Contains(ics, field) {
			t.Errorf("ICS missing required field: %s\n%s", field, ics)
		}
	}

	if !strings.HasSuffix(ics, "END:VCALENDAR\r\n") {
		t.Error("ICS should use \\r\\n line endings")
	}
}

func TestGenerateICS_SkipsUnparseableDates(t *testing.T) {
	tba := event.NewRecord(event.Listing{Name: "Mystery Expo", Dates: "TBA"}, "July 2025", "", "", "", event.SourceNone)

	ics, skipped := GenerateICS([]*event.Record{tba, blackHat()}, stamp)

	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	if strings.Count(ics, "BEGIN:VEVENT") != 1 || strings.Contains(ics, "Mystery Expo") {
		t.Errorf("unexpected events in:\n%s", ics)
	}
}

func TestGenerateICS_Empty(t *testing.T) {
	ics, skipped := GenerateICS(nil, stamp)
	if skipped != 0 || strings.Contains(ics, "BEGIN:VEVENT") || !strings.Contains(ics, "END:VCALENDAR") {
		t.Errorf("empty calendar = %q", ics)
	}
}

func TestWriteLine_Folding(t *testing.T) {
	var b strings.Builder
	long := "DESCRIPTION:" + strings.Repeat("é", 60)
	writeLine(&b, long)

	lines := strings.Split(strings.TrimSuffix(b.String(), "\r\n"), "\r\n")
	if len(lines) < 2 {
		t.Fatalf("expected folded output, got %q", b.String())
	}
	for i, line := range lines {
		if len(line) > maxLineOctets {
			t.Errorf("line %d has %d octets", i, len(line))
		}
		if i > 0 && !strings.HasPrefix(line, " ") {
			t.Errorf("continuation line %d should start with a space", i)
		}
	}

	unfolded := strings.ReplaceAll(strings.TrimSuffix(b.String(), "\r\n"), "\r\n ", "")
	if unfolded != long {
		t.Error("unfolding should restore the original line")
	}
}

func TestEscapeICS(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Simple text", "Simple text"},
		{"Text, with comma", "Text\\, with comma"},
		{"Text; with semicolon", "Text\\; with semicolon"},
		{"Text\\with backslash", "Text\\\\with backslash"},
		{"Text\nwith newline", "Text\\nwith newline"},
	}

	for _, tt := range tests {
		if got := escapeICS(tt.input); got != tt.want {
			t.Errorf("escapeICS(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
