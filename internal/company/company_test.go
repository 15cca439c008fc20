package company

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/tradeshow-events/internal/event"
	"github.com/pfrederiksen/tradeshow-events/internal/llm"
	"github.com/pfrederiksen/tradeshow-events/internal/session"
)

type fakeCompleter struct {
	text   string
	tokens int
	err    error
	calls  int
	last   llm.Prompt
}

func (f *fakeCompleter) Complete(ctx context.Context, p llm.Prompt) (llm.Completion, error) {
	f.calls++
	f.last = p
	return llm.Completion{Text: f.text, TotalTokens: f.tokens}, f.err
}

type fakeFetcher struct {
	pages map[string]string
	calls int
}

func (f *fakeFetcher) Document(ctx context.Context, url string) (*goquery.Document, error) {
	f.calls++
	html, ok := f.pages[url]
	if !ok {
		return nil, errors.New("connection refused")
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

const site = "https://www.globaltradeshow.com/"

func TestResolve_AIShortCircuit(t *testing.T) {
	ai := &fakeCompleter{text: "  Informa Tech\n", tokens: 42}
	fetch := &fakeFetcher{pages: map[string]string{site: `<footer class="footer">© 2025 Other Co</footer>`}}
	sess := session.New(10)

	r := NewResolver(ai, fetch)
	res := r.Resolve(context.Background(), Query{
		EventName:  "Black Hat USA",
		Summary:    "Event: Black Hat USA, Dates: 2-7 AUG 2025",
		WebsiteURL: site,
	}, sess)

	if res.Name != "Informa Tech" || res.Source != event.SourceAI {
		t.Errorf("Resolve() = (%q, %s), want (Informa Tech, AI)", res.Name, res.Source)
	}
	if fetch.calls != 0 {
		t.Errorf("website fetched %d times after AI answer, want 0", fetch.calls)
	}
	if sess.TokensUsed() != 42 {
		t.Errorf("TokensUsed = %d, want 42", sess.TokensUsed())
	}
	if !strings.Contains(ai.last.User, "Event: Black Hat USA, Dates: 2-7 AUG 2025") {
		t.Error("prompt does not carry the event summary")
	}
	if ai.last.Temperature != aiTemperature || ai.last.MaxTokens != aiMaxTokens {
		t.Errorf("prompt temperature=%v max_tokens=%d", ai.last.Temperature, ai.last.MaxTokens)
	}
}

func TestResolve_UnknownFallsBackToWebsite(t *testing.T) {
	ai := &fakeCompleter{text: "Unknown", tokens: 12}
	fetch := &fakeFetcher{pages: map[string]string{
		site: `<html><body><footer class="site-footer">© 2025 Acme Events Co. All rights reserved.</footer></body></html>`,
	}}
	sess := session.New(10)

	res := NewResolver(ai, fetch).Resolve(context.Background(), Query{EventName: "Summit", WebsiteURL: site}, sess)

	if fetch.calls != 1 {
		t.Errorf("fetch calls = %d, want 1", fetch.calls)
	}
	if res.Name != "Acme Events" || res.Source != event.SourceWebsite {
		t.Errorf("Resolve() = (%q, %s), want (Acme Events, Website)", res.Name, res.Source)
	}
	if sess.TokensUsed() != 12 {
		t.Errorf("tokens from an Unknown answer should still count, got %d", sess.TokensUsed())
	}
	if n := len(res.Attempts); n != 2 || res.Attempts[0].Found || !res.Attempts[1].Found {
		t.Errorf("attempts = %+v, want about miss then footer hit", res.Attempts)
	}
}

func TestResolve_UnknownWithoutWebsite(t *testing.T) {
	fetch := &fakeFetcher{}
	res := NewResolver(&fakeCompleter{text: "unknown"}, fetch).Resolve(context.Background(), Query{EventName: "Summit"}, session.New(1))

	if res.Name != "" || res.Source != event.SourceNone {
		t.Errorf("Resolve() = (%q, %s), want empty None", res.Name, res.Source)
	}
	if fetch.calls != 0 {
		t.Errorf("fetch calls = %d, want 0", fetch.calls)
	}
}

func TestResolve_AIErrorIsNotFatal(t *testing.T) {
	ai := &fakeCompleter{err: errors.New("503 service unavailable")}
	fetch := &fakeFetcher{pages: map[string]string{
		site: `<head><meta property="og:site_name" content="Northwind Traders"></head>`,
	}}

	res := NewResolver(ai, fetch).Resolve(context.Background(), Query{WebsiteURL: site}, session.New(1))
	if res.Name != "Northwind Traders" || res.Source != event.SourceWebsite {
		t.Errorf("Resolve() = (%q, %s)", res.Name, res.Source)
	}
}

func TestResolve_NilCompleter(t *testing.T) {
	fetch := &fakeFetcher{pages: map[string]string{
		site: `<head><meta name="organization" content="emerald x"></head>`,
	}}

	res := NewResolver(nil, fetch).Resolve(context.Background(), Query{WebsiteURL: site}, nil)
	if res.Name != "Emerald X" || res.Source != event.SourceWebsite {
		t.Errorf("Resolve() = (%q, %s), want (Emerald X, Website)", res.Name, res.Source)
	}
}

func TestResolve_EarlierMethodWins(t *testing.T) {
	fetch := &fakeFetcher{pages: map[string]string{
		site: `<html><head><meta property="og:site_name" content="Site Name Media"></head>
			<body><div class="about-us">This summit is organized by Bright Media Group. Join us.</div></body></html>`,
	}}

	res := NewResolver(nil, fetch).Resolve(context.Background(), Query{WebsiteURL: site}, nil)
	if res.Name != "Bright Media Group" {
		t.Errorf("Resolve() = %q, want the about section result", res.Name)
	}
	if len(res.Attempts) != 1 || res.Attempts[0].Method != "about" {
		t.Errorf("attempts = %+v, want only about", res.Attempts)
	}
}

func TestResolve_TitleHomeSegment(t *testing.T) {
	fetch := &fakeFetcher{pages: map[string]string{
		site: `<html><head><title>Home - Global Expo Group</title></head><body></body></html>`,
	}}

	res := NewResolver(nil, fetch).Resolve(context.Background(), Query{WebsiteURL: site}, nil)
	if res.Name != "Home" || res.Source != event.SourceWebsite {
		t.Errorf("Resolve() = (%q, %s), want (Home, Website)", res.Name, res.Source)
	}
}

func TestResolve_DomainFallback(t *testing.T) {
	url := "https://www.bright-media.com/summit"
	fetch := &fakeFetcher{pages: map[string]string{url: `<html><body>Nothing here</body></html>`}}

	res := NewResolver(nil, fetch).Resolve(context.Background(), Query{WebsiteURL: url}, nil)
	if res.Name != "Bright Media" {
		t.Errorf("Resolve() = %q, want Bright Media", res.Name)
	}
	if len(res.Attempts) != len(Waterfall) {
		t.Errorf("attempts = %d, want %d", len(res.Attempts), len(Waterfall))
	}
}

func TestResolve_Exhausted(t *testing.T) {
	fetch := &fakeFetcher{pages: map[string]string{site: `<html><body>Nothing here</body></html>`}}

	res := NewResolver(nil, fetch).Resolve(context.Background(), Query{WebsiteURL: site}, nil)
	if res.Name != "" || res.Source != event.SourceNone {
		t.Errorf("Resolve() = (%q, %s), want empty None", res.Name, res.Source)
	}
}

func TestResolve_FetchError(t *testing.T) {
	fetch := &fakeFetcher{pages: map[string]string{}}
	failures := 0

	r := NewResolver(nil, fetch)
	r.OnFetchError = func() { failures++ }
	res := r.Resolve(context.Background(), Query{WebsiteURL: "https://www.northwind.com/"}, nil)

	if res.Name != "" || res.Source != event.SourceNone {
		t.Errorf("Resolve() = (%q, %s), want empty None", res.Name, res.Source)
	}
	if failures != 1 {
		t.Errorf("OnFetchError called %d times, want 1", failures)
	}
	for _, a := range res.Attempts {
		if a.Found {
			t.Errorf("method %s reported found after fetch failure", a.Method)
		}
	}
}

func TestResolve_EmptyMetaContinues(t *testing.T) {
	fetch := &fakeFetcher{pages: map[string]string{
		site: `<head><meta property="og:site_name" content="   "><meta name="author" content="Clarion Events Ltd"></head>`,
	}}

	res := NewResolver(nil, fetch).Resolve(context.Background(), Query{WebsiteURL: site}, nil)
	if res.Name != "Clarion Events" {
		t.Errorf("Resolve() = %q, want Clarion Events", res.Name)
	}
}

func TestNormalizeAnswer(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Unknown", ""},
		{" N/A ", ""},
		{"NONE", ""},
		{"not found", ""},
		{"Cannot determine", ""},
		{"No company found", ""},
		{"", ""},
		{"Informa Markets", "Informa Markets"},
		{"Unknown Media", "Unknown Media"},
	}

	for _, tt := range tests {
		if got := NormalizeAnswer(tt.in); got != tt.want {
			t.Errorf("NormalizeAnswer(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
