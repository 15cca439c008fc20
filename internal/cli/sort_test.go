package cli

import (
	"strings"
	"testing"

	"github.com/pfrederiksen/tradeshow-events/internal/event"
)

func rec(name, month, company string) *event.Record {
	source := event.SourceWebsite
	if company == "" {
		source = event.SourceNone
	}
	return event.NewRecord(event.Listing{Name: name}, month, "", "", company, source)
}

func names(records []*event.Record) string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return strings.Join(out, ",")
}

func TestSortRecords(t *testing.T) {
	records := []*event.Record{
		rec("Zeta Expo", "September 2025", "Beta Corp"),
		rec("alpha summit", "January 2026", ""),
		rec("Mid Show", "September 2025", "acme"),
		rec("Broken", "sometime", "Acme"),
	}

	tests := []struct {
		order SortOrder
		want  string
	}{
		{SortByRow, "Zeta Expo,alpha summit,Mid Show,Broken"},
		{SortByMonth, "Zeta Expo,Mid Show,alpha summit,Broken"},
		{SortByName, "alpha summit,Broken,Mid Show,Zeta Expo"},
		{SortByCompany, "Broken,Mid Show,Zeta Expo,alpha summit"},
	}

	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			if got := names(sortRecords(records, tt.order)); got != tt.want {
				t.Errorf("sortRecords(%s) = %s, want %s", tt.order, got, tt.want)
			}
		})
	}

	if names(records) != "Zeta Expo,alpha summit,Mid Show,Broken" {
		t.Error("sortRecords() must not reorder its input")
	}
}

func TestParseSortOrder(t *testing.T) {
	tests := []struct {
		in   string
		want SortOrder
		ok   bool
	}{
		{"", SortByRow, true},
		{"Month", SortByMonth, true},
		{" company ", SortByCompany, true},
		{"date", "", false},
	}

	for _, tt := range tests {
		got, ok := parseSortOrder(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseSortOrder(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSortRecords_ByMonthThenStartDate(t *testing.T) {
	late := rec("Late July", "July 2025", "")
	late.Dates = "28-30 JUL 2025"
	early := rec("Early July", "July 2025", "")
	early.Dates = "2 JUL 2025"
	undated := rec("Undated July", "July 2025", "")
	undated.Dates = "TBA"
	june := rec("June Show", "June 2025", "")

	got := names(sortRecords([]*event.Record{undated, late, june, early}, SortByMonth))
	if got != "June Show,Early July,Late July,Undated July" {
		t.Errorf("sortRecords(month) = %s", got)
	}
}
