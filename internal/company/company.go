package company

import (
	"context"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/tradeshow-events/internal/event"
	"github.com/pfrederiksen/tradeshow-events/internal/llm"
	"github.com/pfrederiksen/tradeshow-events/internal/logger"
	"github.com/pfrederiksen/tradeshow-events/internal/scraper"
	"github.com/pfrederiksen/tradeshow-events/internal/session"
)

// Fetcher retrieves and parses an event website
type Fetcher interface {
	Document(ctx context.Context, url string) (*goquery.Document, error)
}

// Query describes the event whose organizer is wanted
type Query struct {
	EventName  string
	Summary    string
	WebsiteURL string
}

// Attempt records what one waterfall method produced
type Attempt struct {
	Method string
	Value  string
	Found  bool
}

// Result is the resolved organizer and how it was found
type Result struct {
	Name     string
	Source   event.CompanySource
	Attempts []Attempt
}

// Resolver runs the AI pass and the website waterfall
type Resolver struct {
	completer llm.Completer
	fetcher   Fetcher
	methods   []Method

	// OnFetchError is called when the website cannot be fetched.
	OnFetchError func()
}

// NewResolver creates a Resolver. A nil completer disables the AI pass.
func NewResolver(completer llm.Completer, fetcher Fetcher) *Resolver {
	if completer == nil {
		logger.Warn("No language model configured, company names limited to website scraping", nil, nil)
	}
	return &Resolver{
		completer: completer,
		fetcher:   fetcher,
		methods:   Waterfall,
	}
}

// Resolve returns the organizing company for q. It never fails: every error is
// logged and degrades to an empty name with source None.
func (r *Resolver) Resolve(ctx context.Context, q Query, sess *session.Session) Result {
	start := time.Now()
	defer func() { logger.RecordTiming("company.resolve", time.Since(start)) }()

	if name := r.fromAI(ctx, q, sess); name != "" {
		logger.IncrCounter("company.source.ai")
		return Result{Name: name, Source: event.SourceAI}
	}

	if q.WebsiteURL == "" {
		return Result{Source: event.SourceNone}
	}

	res := r.fromWebsite(ctx, q)
	if res.Name != "" {
		logger.IncrCounter("company.source.website")
	}
	return res
}

func (r *Resolver) fromAI(ctx context.Context, q Query, sess *session.Session) string {
	if r.completer == nil {
		return ""
	}

	out, err := r.completer.Complete(ctx, BuildPrompt(q.Summary))
	if sess != nil {
		sess.AddTokens(out.TotalTokens)
	}
	if err != nil {
		logger.Warn("Error getting company name from language model", logger.Fields{
			"event": q.EventName,
		}, err)
		return ""
	}

	name := NormalizeAnswer(out.Text)
	logger.Debug("Language model answer", logger.Fields{
		"event":  q.EventName,
		"answer": out.Text,
		"tokens": out.TotalTokens,
	})
	return name
}

func (r *Resolver) fromWebsite(ctx context.Context, q Query) Result {
	res := Result{Source: event.SourceNone}

	page, err := r.loadPage(ctx, q.WebsiteURL)
	if err != nil {
		if r.OnFetchError != nil {
			r.OnFetchError()
		}
		logger.Warn("Error extracting company name from website", logger.Fields{
			"event": q.EventName,
			"url":   q.WebsiteURL,
		}, err)
		for _, m := range r.methods {
			res.Attempts = append(res.Attempts, Attempt{Method: m.Name})
		}
		return res
	}

	for _, m := range r.methods {
		value, ok := m.Extract(page)
		if ok {
			value = Clean(TitleCase(value))
			ok = value != ""
		}
		res.Attempts = append(res.Attempts, Attempt{Method: m.Name, Value: value, Found: ok})
		if ok {
			res.Name = value
			res.Source = event.SourceWebsite
			break
		}
	}

	fields := logger.Fields{
		"event":    q.EventName,
		"url":      q.WebsiteURL,
		"result":   res.Name,
		"attempts": len(res.Attempts),
	}
	if n := len(res.Attempts); n > 0 && res.Name != "" {
		fields["method"] = res.Attempts[n-1].Method
	}
	logger.Debug("Website extraction finished", fields)

	return res
}

func (r *Resolver) loadPage(ctx context.Context, rawURL string) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	doc, err := r.fetcher.Document(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	return &Page{URL: u, Doc: scraper.StripScripts(doc)}, nil
}
