package notifier

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/pfrederiksen/tradeshow-events/internal/harvest"
)

func TestFormatSummary(t *testing.T) {
	tests := []struct {
		name     string
		summary  harvest.Summary
		contains []string
		excludes []string
	}{
		{
			name: "complete run",
			summary: harvest.Summary{
				Total: 42, MonthsProcessed: 12, WithCompany: 40, FromAI: 30, FromWebsite: 10,
				WithEmail: 18, WithWebsite: 35,
			},
			contains: []string{
				"42 events across 12 months",
				"40 organizers (30 AI, 10 website)",
				"18 contact emails, 35 websites",
				"Contact information found for 58 events",
				"#TradeShows",
			},
			excludes: []string{"aborted", "cancelled", "cap reached"},
		},
		{
			name:     "cancelled",
			summary:  harvest.Summary{Total: 3, Cancelled: true},
			contains: []string{"Run cancelled"},
		},
		{
			name:     "aborted wins over cap",
			summary:  harvest.Summary{Total: 600, Aborted: true, CapReached: true},
			contains: []string{"Run aborted early"},
			excludes: []string{"cap reached"},
		},
		{
			name:     "cap reached",
			summary:  harvest.Summary{Total: 600, CapReached: true},
			contains: []string{"Event cap reached"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatSummary(tt.summary)

			if n := utf8.RuneCountInString(got); n > MaxStatusLength {
				t.Errorf("formatSummary() length = %d, want <= %d", n, MaxStatusLength)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("formatSummary() missing %q in:\n%s", want, got)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("formatSummary() should not contain %q:\n%s", unwanted, got)
				}
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("é", 300)
	got := truncate(long, MaxStatusLength)
	if utf8.RuneCountInString(got) != MaxStatusLength || !strings.HasSuffix(got, "...") {
		t.Errorf("truncate() = %d runes, want %d ending in ...", utf8.RuneCountInString(got), MaxStatusLength)
	}
	if !utf8.ValidString(got) {
		t.Error("truncate() split a multi-byte rune")
	}
	if got := truncate("short", MaxStatusLength); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
}

func TestDryRunNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewDryRunNotifier(&buf)

	if err := n.Notify(harvest.Summary{Total: 7, WithEmail: 2, WithCompany: 5}); err != nil {
		t.Fatalf("DryRunNotifier.Notify() error = %v, want nil", err)
	}

	out := buf.String()
	if !strings.Contains(out, "--- Announcement ---") || !strings.Contains(out, "Contact information found for 7 events") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

// rewriteTransport sends every request to the test server
type rewriteTransport struct {
	target *url.URL
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = rt.target.Scheme
	req.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func testNotifier(t *testing.T, handler http.HandlerFunc) *TwitterNotifier {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	target, err := url.Parse(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	return newTwitterNotifier(&http.Client{Transport: rewriteTransport{target: target}})
}

func TestTwitterNotifier_Notify(t *testing.T) {
	var status string
	n := testNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/statuses/update.json") {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		status = r.PostForm.Get("status")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 1, "id_str": "1"}`))
	})

	if err := n.Notify(harvest.Summary{SessionID: "abc", Total: 4}); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if !strings.Contains(status, "4 events") {
		t.Errorf("posted status = %q", status)
	}
}

func TestTwitterNotifier_NotifyError(t *testing.T) {
	n := testNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"errors":[{"code":187,"message":"Status is a duplicate."}]}`))
	})

	err := n.Notify(harvest.Summary{SessionID: "abc"})
	if err == nil || !strings.Contains(err.Error(), "session abc") {
		t.Errorf("Notify() error = %v, want wrapped failure", err)
	}
}

func TestNewTwitterNotifier_MissingCredentials(t *testing.T) {
	for _, key := range []string{"TWITTER_API_KEY", "TWITTER_API_SECRET", "TWITTER_ACCESS_TOKEN", "TWITTER_ACCESS_SECRET"} {
		t.Setenv(key, "")
	}
	if _, err := NewTwitterNotifier(); err == nil {
		t.Error("NewTwitterNotifier() should fail without credentials")
	}
}
