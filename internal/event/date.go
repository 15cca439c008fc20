package event

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateRange is the first and last day of an event
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Days returns the number of calendar days the range covers
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

var (
	// 22-25 JUL 2025
	dayRangePattern = regexp.MustCompile(`(?i)^(\d{1,2})\s*-\s*(\d{1,2})\s+([a-z]+)\.?,?\s+(\d{4})$`)
	// 30 JUL - 1 AUG 2025
	crossDayRangePattern = regexp.MustCompile(`(?i)^(\d{1,2})\s+([a-z]+)\.?\s*-\s*(\d{1,2})\s+([a-z]+)\.?,?\s+(\d{4})$`)
	// 1 JUL 2025
	dayPattern = regexp.MustCompile(`(?i)^(\d{1,2})\s+([a-z]+)\.?,?\s+(\d{4})$`)
	// July 8-10, 2025 and July 30 - August 1, 2025
	monthRangePattern = regexp.MustCompile(`(?i)^([a-z]+)\.?\s+(\d{1,2})\s*-\s*(?:([a-z]+)\.?\s+)?(\d{1,2}),?\s+(\d{4})$`)
	// July 8, 2025
	monthDayPattern = regexp.MustCompile(`(?i)^([a-z]+)\.?\s+(\d{1,2}),?\s+(\d{4})$`)
)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

func monthFromName(name string) (time.Month, bool) {
	name = strings.ToLower(name)
	if len(name) < 3 {
		return 0, false
	}
	m, ok := monthsByPrefix[name[:3]]
	return m, ok
}

// ParseDateRange reads the date cell of a listing row.
// Supports: "22-25 JUL 2025", "30 JUL - 1 AUG 2025", "1 JUL 2025",
// "July 8-10, 2025", "July 30 - August 1, 2025", "July 8, 2025".
// A range whose start falls after its end is taken to start in the previous year.
func ParseDateRange(text string) (DateRange, bool) {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return DateRange{}, false
	}

	var startDay, startMonth, endDay, endMonth, year string
	if m := dayRangePattern.FindStringSubmatch(text); m != nil {
		startDay, endDay, startMonth, endMonth, year = m[1], m[2], m[3], m[3], m[4]
	} else if m := crossDayRangePattern.FindStringSubmatch(text); m != nil {
		startDay, startMonth, endDay, endMonth, year = m[1], m[2], m[3], m[4], m[5]
	} else if m := dayPattern.FindStringSubmatch(text); m != nil {
		startDay, endDay, startMonth, endMonth, year = m[1], m[1], m[2], m[2], m[3]
	} else if m := monthRangePattern.FindStringSubmatch(text); m != nil {
		startMonth, startDay, endDay, year = m[1], m[2], m[4], m[5]
		endMonth = m[3]
		if endMonth == "" {
			endMonth = startMonth
		}
	} else if m := monthDayPattern.FindStringSubmatch(text); m != nil {
		startMonth, endMonth, startDay, endDay, year = m[1], m[1], m[2], m[2], m[3]
	} else {
		return DateRange{}, false
	}

	y, _ := strconv.Atoi(year)
	start, ok := makeDate(y, startMonth, startDay)
	if !ok {
		return DateRange{}, false
	}
	end, ok := makeDate(y, endMonth, endDay)
	if !ok {
		return DateRange{}, false
	}
	if start.After(end) {
		start = start.AddDate(-1, 0, 0)
	}
	return DateRange{Start: start, End: end}, true
}

func makeDate(year int, month, day string) (time.Time, bool) {
	m, ok := monthFromName(month)
	if !ok {
		return time.Time{}, false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, m, d, 0, 0, 0, 0, time.UTC)
	// Reject days that roll over into the next month, such as 31 JUN
	if t.Month() != m {
		return time.Time{}, false
	}
	return t, true
}

// ParseDate returns the first day of a listing date cell.
// Returns time.Time{} (zero value) if parsing fails.
func ParseDate(dateText string) time.Time {
	r, ok := ParseDateRange(dateText)
	if !ok {
		return time.Time{}
	}
	return r.Start
}

// IsPastEvent checks if an event has ended before now.
// Returns false if the date cannot be parsed (safer default).
func (l Listing) IsPastEvent(now time.Time) bool {
	r, ok := ParseDateRange(l.Dates)
	if !ok {
		return false
	}
	return r.End.AddDate(0, 0, 1).Before(now)
}
