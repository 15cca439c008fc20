package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func decodeLines(t *testing.T, data []byte) []map[string]interface{} {
	t.Helper()

	var entries []map[string]interface{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("line is not JSON: %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name     string
		minLevel Level
		logLevel Level
		wantLog  bool
	}{
		{"debug at debug", LevelDebug, LevelDebug, true},
		{"info at debug", LevelDebug, LevelInfo, true},
		{"debug at info", LevelInfo, LevelDebug, false},
		{"info at info", LevelInfo, LevelInfo, true},
		{"warn at info", LevelInfo, LevelWarn, true},
		{"info at warn", LevelWarn, LevelInfo, false},
		{"error at warn", LevelWarn, LevelError, true},
		{"warn at error", LevelError, LevelWarn, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(tt.minLevel, &buf)
			l.log(tt.logLevel, "test", nil, nil)

			got := buf.Len() > 0
			if got != tt.wantLog {
				t.Errorf("logged = %v, want %v (output %q)", got, tt.wantLog, buf.String())
			}
		})
	}
}

func TestLogger_JSONShape(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelDebug, &buf)

	l.Warn("contact fetch failed", Fields{
		"url":   "https://example.com/contact",
		"month": "July 2025",
		"rows":  3,
	}, errors.New("status 404"))

	entries := decodeLines(t, buf.Bytes())
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]

	if e["message"] != "contact fetch failed" {
		t.Errorf("message = %v", e["message"])
	}
	if e["level"] != "WARN" {
		t.Errorf("level = %v, want WARN", e["level"])
	}
	if _, ok := e["timestamp"]; !ok {
		t.Error("timestamp missing")
	}
	if e["url"] != "https://example.com/contact" {
		t.Errorf("url = %v", e["url"])
	}
	if e["rows"] != float64(3) {
		t.Errorf("rows = %v", e["rows"])
	}
	if e["error"] != "status 404" {
		t.Errorf("error = %v", e["error"])
	}
}

func TestLogger_NoErrorField(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelInfo, &buf)
	l.Info("started", Fields{"session": "abc"})

	entries := decodeLines(t, buf.Bytes())
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if _, ok := entries[0]["error"]; ok {
		t.Error("error key should be absent when no error is passed")
	}
}

func TestNewWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harvest.log")

	var console bytes.Buffer
	l := NewWithFile(LevelInfo, &console, path)
	l.Info("to both", nil)
	l.Debug("dropped", nil)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}

	fileEntries := decodeLines(t, data)
	consoleEntries := decodeLines(t, console.Bytes())
	if len(fileEntries) != 1 || len(consoleEntries) != 1 {
		t.Fatalf("file=%d console=%d entries, want 1 each", len(fileEntries), len(consoleEntries))
	}
	if fileEntries[0]["message"] != "to both" {
		t.Errorf("file message = %v", fileEntries[0]["message"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.IncrCounter("rows.seen")
	m.IncrCounter("rows.seen")
	m.AddCounter("rows.seen", 3)
	m.IncrCounter("rows.qualified")

	snap := m.GetSnapshot()
	if snap.Counters["rows.seen"] != 5 {
		t.Errorf("rows.seen = %d, want 5", snap.Counters["rows.seen"])
	}
	if snap.Counters["rows.qualified"] != 1 {
		t.Errorf("rows.qualified = %d, want 1", snap.Counters["rows.qualified"])
	}
}

func TestMetrics_Gauges(t *testing.T) {
	m := NewMetrics()

	m.SetGauge("session.tokens", 10)
	m.SetGauge("session.tokens", 42)

	snap := m.GetSnapshot()
	if snap.Gauges["session.tokens"] != 42 {
		t.Errorf("gauge = %v, want 42", snap.Gauges["session.tokens"])
	}
}

func TestMetrics_Timing(t *testing.T) {
	m := NewMetrics()

	m.RecordTiming("company.resolve", 100*time.Millisecond)
	m.RecordTiming("company.resolve", 300*time.Millisecond)
	m.RecordTiming("company.resolve", 200*time.Millisecond)

	stats, ok := m.GetSnapshot().Timings["company.resolve"]
	if !ok {
		t.Fatal("timing missing from snapshot")
	}
	if stats.Count != 3 {
		t.Errorf("count = %d, want 3", stats.Count)
	}
	if stats.Min != 100*time.Millisecond {
		t.Errorf("min = %v", stats.Min)
	}
	if stats.Max != 300*time.Millisecond {
		t.Errorf("max = %v", stats.Max)
	}
	if stats.Average != 200*time.Millisecond {
		t.Errorf("average = %v", stats.Average)
	}
	if stats.Total != 600*time.Millisecond {
		t.Errorf("total = %v", stats.Total)
	}
}

func TestMetrics_SnapshotIsCopy(t *testing.T) {
	m := NewMetrics()
	m.IncrCounter("a")

	snap := m.GetSnapshot()
	snap.Counters["a"] = 99

	if m.GetSnapshot().Counters["a"] != 1 {
		t.Error("mutating a snapshot changed the tracker")
	}

	m.Reset()
	if len(m.GetSnapshot().Counters) != 0 {
		t.Error("Reset did not clear counters")
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	var buf bytes.Buffer
	original := defaultLogger
	SetDefault(New(LevelDebug, &buf))
	defer SetDefault(original)

	Debug("d", nil)
	Info("i", Fields{"k": "v"})
	Warn("w", nil, nil)
	Error("e", nil, errors.New("boom"))

	entries := decodeLines(t, buf.Bytes())
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}

	wantLevels := []string{"DEBUG", "INFO", "WARN", "ERROR"}
	for i, want := range wantLevels {
		if entries[i]["level"] != want {
			t.Errorf("entry %d level = %v, want %s", i, entries[i]["level"], want)
		}
	}

	ResetMetrics()
	IncrCounter("pkg")
	SetGauge("pkg.gauge", 1.5)
	RecordTiming("pkg.timing", time.Second)

	snap := GetMetricsSnapshot()
	if snap.Counters["pkg"] != 1 {
		t.Errorf("counter = %d", snap.Counters["pkg"])
	}
	if snap.Gauges["pkg.gauge"] != 1.5 {
		t.Errorf("gauge = %v", snap.Gauges["pkg.gauge"])
	}
	if snap.Timings["pkg.timing"].Count != 1 {
		t.Errorf("timing count = %d", snap.Timings["pkg.timing"].Count)
	}
	ResetMetrics()
}
