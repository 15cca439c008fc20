package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func counterValue(t *testing.T, r *Recorder, name, labelName, labelValue string) float64 {
	t.Helper()

	families, err := r.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelName == "" {
				return m.GetCounter().GetValue()
			}
			for _, lp := range m.GetLabel() {
				if lp.GetName() == labelName && lp.GetValue() == labelValue {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestRecorder_Counters(t *testing.T) {
	r := New()

	r.RecordAppended("AI")
	r.RecordAppended("AI")
	r.RecordAppended("None")
	r.RowSkipped("not-qualified")
	r.PageVisited("July")
	r.FetchError("contact")
	r.AddTokens(120)
	r.AddTokens(-5)

	tests := []struct {
		name, metric, label, value string
		want                       float64
	}{
		{"ai records", "tradeshow_records_total", "source", "AI", 2},
		{"none records", "tradeshow_records_total", "source", "None", 1},
		{"skipped", "tradeshow_rows_skipped_total", "reason", "not-qualified", 1},
		{"pages", "tradeshow_pages_visited_total", "month", "July", 1},
		{"fetch errors", "tradeshow_fetch_errors_total", "stage", "contact", 1},
		{"tokens", "tradeshow_llm_tokens_total", "", "", 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := counterValue(t, r, tt.metric, tt.label, tt.value); got != tt.want {
				t.Errorf("%s = %v, want %v", tt.metric, got, tt.want)
			}
		})
	}
}

func TestRecorder_NilSafe(t *testing.T) {
	var r *Recorder

	r.RecordAppended("AI")
	r.RowSkipped("x")
	r.PageVisited("x")
	r.FetchError("x")
	r.AddTokens(1)
	r.ObserveResolve("company", time.Second)

	if err := r.WriteTextfile("/nonexistent/metrics.prom"); err != nil {
		t.Errorf("nil recorder WriteTextfile returned %v", err)
	}
	if r.Registry() != nil {
		t.Error("nil recorder should have nil registry")
	}
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := New()
	r.RecordAppended("Website")
	r.ObserveResolve("company", 250*time.Millisecond)

	path := filepath.Join(t.TempDir(), "harvest.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}

	out := string(data)
	for _, want := range []string{
		`tradeshow_records_total{source="Website"} 1`,
		"tradeshow_resolve_duration_seconds_count",
		"tradeshow_last_run_timestamp_seconds",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("textfile missing %q", want)
		}
	}
}
