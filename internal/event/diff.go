package event

import (
	"sort"
	"strings"
	"time"
)

// StableKey identifies an event across runs even when its dates move.
// It is the lowercased name with whitespace collapsed.
func StableKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// DiffResult contains the results of comparing two harvests
type DiffResult struct {
	New     []*Record      `json:"new"`
	Removed []*Record      `json:"removed"`
	Changes []*EventChange `json:"changes"`
}

// Empty reports whether the two harvests were identical
func (d *DiffResult) Empty() bool {
	return len(d.New) == 0 && len(d.Removed) == 0 && len(d.Changes) == 0
}

// EventChange represents a change detected in an event
type EventChange struct {
	EventID    string    `json:"event_id"`
	StableKey  string    `json:"stable_key"`
	Name       string    `json:"name"`
	ChangeType string    `json:"change_type"` // "dates", "city", "website", "email", "company"
	OldValue   string    `json:"old_value"`
	NewValue   string    `json:"new_value"`
	DetectedAt time.Time `json:"detected_at"`
}

// Diff compares the records of the current run against a previous one.
// Records are matched by StableKey; a nil previous run reports nothing new so the
// first run is not flooded with additions.
func Diff(previous, current []*Record) *DiffResult {
	result := &DiffResult{}
	if previous == nil {
		return result
	}

	prevByKey := indexByKey(previous)
	currByKey := indexByKey(current)

	for _, rec := range current {
		key := StableKey(rec.Name)
		if prev, ok := prevByKey[key]; ok {
			result.Changes = append(result.Changes, DetectChanges(prev, rec)...)
		} else {
			result.New = append(result.New, rec)
		}
		// Only the first record of a repeated key is compared
		delete(prevByKey, key)
	}

	for _, rec := range previous {
		key := StableKey(rec.Name)
		if _, ok := currByKey[key]; !ok {
			result.Removed = append(result.Removed, rec)
			currByKey[key] = rec
		}
	}

	// Sort for consistent output
	sort.SliceStable(result.New, func(i, j int) bool {
		return StableKey(result.New[i].Name) < StableKey(result.New[j].Name)
	})
	sort.SliceStable(result.Removed, func(i, j int) bool {
		return StableKey(result.Removed[i].Name) < StableKey(result.Removed[j].Name)
	})

	return result
}

func indexByKey(records []*Record) map[string]*Record {
	idx := make(map[string]*Record, len(records))
	for _, rec := range records {
		key := StableKey(rec.Name)
		if _, exists := idx[key]; !exists {
			idx[key] = rec
		}
	}
	return idx
}

// DetectChanges compares two records of the same event and returns detected changes
func DetectChanges(previous, current *Record) []*EventChange {
	now := time.Now().UTC()
	var changes []*EventChange

	add := func(changeType, oldValue, newValue string) {
		if oldValue == newValue {
			return
		}
		changes = append(changes, &EventChange{
			EventID:    current.ID,
			StableKey:  StableKey(current.Name),
			Name:       current.Name,
			ChangeType: changeType,
			OldValue:   oldValue,
			NewValue:   newValue,
			DetectedAt: now,
		})
	}

	add("dates", previous.Dates, current.Dates)
	add("city", previous.City, current.City)
	// A lookup that found nothing this time is not a change worth reporting
	if current.Website != "" {
		add("website", previous.Website, current.Website)
	}
	if current.Email != "" {
		add("email", previous.Email, current.Email)
	}
	if current.CompanyName != "" {
		add("company", previous.CompanyName, current.CompanyName)
	}

	return changes
}
