package event

import (
	"fmt"
	"strconv"
	"strings"
)

// MonthSpec defines one harvesting pass: the value selected in the listing's
// month control, the spellings the listing uses for that month in its date column,
// and the year the date text must contain.
type MonthSpec struct {
	Name    string   `yaml:"name" json:"name"`
	Value   string   `yaml:"value" json:"value"`
	Aliases []string `yaml:"aliases" json:"aliases"`
	Year    string   `yaml:"year,omitempty" json:"year,omitempty"`
}

// String returns "July 2025" style labels for logs and progress
func (m MonthSpec) String() string {
	if m.Year == "" {
		return m.Name
	}
	return m.Name + " " + m.Year
}

// Validate checks that the month can drive a harvesting pass
func (m MonthSpec) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("month name is empty")
	}
	if strings.TrimSpace(m.Value) == "" {
		return fmt.Errorf("month %s: selector value is empty", m.Name)
	}
	if len(m.Aliases) == 0 {
		return fmt.Errorf("month %s: no date aliases", m.Name)
	}
	if _, err := strconv.Atoi(m.Year); err != nil || len(m.Year) != 4 {
		return fmt.Errorf("month %s: invalid year %q", m.Name, m.Year)
	}
	return nil
}

// DefaultMonths returns the twelve months as the listing site labels them.
// Years are left empty; see AssignYears.
func DefaultMonths() []MonthSpec {
	return []MonthSpec{
		{Name: "January", Value: "1", Aliases: []string{"JAN", "JANUARY"}},
		{Name: "February", Value: "2", Aliases: []string{"FEB", "FEBRUARY"}},
		{Name: "March", Value: "3", Aliases: []string{"MAR", "MARCH"}},
		{Name: "April", Value: "4", Aliases: []string{"APR", "APRIL"}},
		{Name: "May", Value: "5", Aliases: []string{"MAY"}},
		{Name: "June", Value: "6", Aliases: []string{"JUN", "JUNE"}},
		{Name: "July", Value: "7", Aliases: []string{"JUL", "JULY"}},
		{Name: "August", Value: "8", Aliases: []string{"AUG", "AUGUST"}},
		{Name: "September", Value: "9", Aliases: []string{"SEP", "SEPT", "SEPTEMBER"}},
		{Name: "October", Value: "10", Aliases: []string{"OCT", "OCTOBER"}},
		{Name: "November", Value: "11", Aliases: []string{"NOV", "NOVEMBER"}},
		{Name: "December", Value: "12", Aliases: []string{"DEC", "DECEMBER"}},
	}
}

// AssignYears fills in the year of every spec that has none.
// With splitSeason, August through December use baseYear and January through July
// use the following year, so a run started mid-year covers the next twelve months.
func AssignYears(months []MonthSpec, baseYear int, splitSeason bool) []MonthSpec {
	out := make([]MonthSpec, len(months))
	for i, m := range months {
		m.Aliases = append([]string(nil), m.Aliases...)
		if m.Year == "" {
			year := baseYear
			if splitSeason {
				if n, err := strconv.Atoi(m.Value); err == nil && n < 8 {
					year = baseYear + 1
				}
			}
			m.Year = strconv.Itoa(year)
		}
		out[i] = m
	}
	return out
}

// SelectMonths picks specs by name, selector value or date alias (case-insensitive),
// preserving the order of names.
// An empty names list selects every month.
func SelectMonths(months []MonthSpec, names []string) ([]MonthSpec, error) {
	if len(names) == 0 {
		return append([]MonthSpec(nil), months...), nil
	}

	selected := make([]MonthSpec, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		found := false
		for _, m := range months {
			if m.matches(name) {
				selected = append(selected, m)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown month: %s", name)
		}
	}
	return selected, nil
}

func (m MonthSpec) matches(name string) bool {
	if strings.EqualFold(m.Name, name) || strings.EqualFold(m.Value, name) {
		return true
	}
	for _, a := range m.Aliases {
		if strings.EqualFold(a, name) {
			return true
		}
	}
	return false
}
