package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

func TestFetch(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		statusCode int
		wantError  bool
	}{
		{
			name:       "successful fetch",
			body:       "<html><body>Contact us at info@acme.com</body></html>",
			statusCode: http.StatusOK,
		},
		{
			name:       "no content is still success",
			body:       "",
			statusCode: http.StatusNoContent,
		},
		{
			name:       "not found",
			statusCode: http.StatusNotFound,
			wantError:  true,
		},
		{
			name:       "server error",
			statusCode: http.StatusInternalServerError,
			wantError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "Mozilla/5.0") {
					t.Errorf("User-Agent = %q, want a browser identity", ua)
				}
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			body, err := New().Fetch(context.Background(), server.URL)
			if (err != nil) != tt.wantError {
				t.Fatalf("Fetch() error = %v, wantError %v", err, tt.wantError)
			}
			if !tt.wantError && string(body) != tt.body {
				t.Errorf("body = %q, want %q", body, tt.body)
			}
		})
	}
}

func TestFetch_SelfSignedTLS(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("secure"))
	}))
	defer server.Close()

	body, err := New().Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() over self-signed TLS failed: %v", err)
	}
	if string(body) != "secure" {
		t.Errorf("body = %q", body)
	}
}

func TestFetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	if _, err := NewWithTimeout(20*time.Millisecond).Fetch(context.Background(), server.URL); err == nil {
		t.Error("expected timeout error")
	}
}

func TestFetch_BodyCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", MaxBodySize+1024)))
	}))
	defer server.Close()

	body, err := New().Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(body) != MaxBodySize {
		t.Errorf("len(body) = %d, want %d", len(body), MaxBodySize)
	}
}

func TestFetch_InvalidURL(t *testing.T) {
	if _, err := New().Fetch(context.Background(), "://bad"); err == nil {
		t.Error("expected error for invalid URL")
	}
}

func TestDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Acme Expo</title><style>.x{}</style></head>
			<body><script>var email = "hidden@x.com";</script><p>Visible</p></body></html>`))
	}))
	defer server.Close()

	doc, err := New().Document(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}

	if got := doc.Find("title").Text(); got != "Acme Expo" {
		t.Errorf("title = %q", got)
	}

	text := StripScripts(doc).Text()
	if strings.Contains(text, "hidden@x.com") {
		t.Error("script content should be stripped")
	}
	if !strings.Contains(text, "Visible") {
		t.Error("visible text missing")
	}
}

func TestStripScripts_Idempotent(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div><style>a{}</style>text</div>`))
	if err != nil {
		t.Fatal(err)
	}
	StripScripts(StripScripts(doc))
	if doc.Find("style").Length() != 0 {
		t.Error("style element survived")
	}
}
