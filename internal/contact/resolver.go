package contact

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/tradeshow-events/internal/logger"
	"github.com/pfrederiksen/tradeshow-events/internal/scraper"
)

// LinkKeywords mark an anchor as a likely contact or about page
var LinkKeywords = []string{"contact", "about", "info", "reach", "connect"}

// Fetcher retrieves and parses a page
type Fetcher interface {
	Document(ctx context.Context, url string) (*goquery.Document, error)
}

// Info is the contact data found for an event website
type Info struct {
	Website string `json:"website"`
	Email   string `json:"email"`
}

// Resolver combines page fetching with email extraction
type Resolver struct {
	fetcher   Fetcher
	extractor *Extractor

	// OnFetchError is called with "landing" or "contact-page" when a fetch fails.
	OnFetchError func(stage string)
}

// NewResolver creates a Resolver over fetcher
func NewResolver(fetcher Fetcher) *Resolver {
	return &Resolver{
		fetcher:   fetcher,
		extractor: NewExtractor(),
	}
}

// Resolve returns the website and the first email found on it or on its first
// contact-like page. Failures are logged and leave Email empty.
func (r *Resolver) Resolve(ctx context.Context, websiteURL, eventName string) Info {
	info := Info{Website: websiteURL}
	if websiteURL == "" {
		return info
	}

	doc, err := r.fetcher.Document(ctx, websiteURL)
	if err != nil {
		r.fetchFailed("landing")
		logger.Warn("Error scraping contact info", logger.Fields{
			"event": eventName,
			"url":   websiteURL,
		}, err)
		return info
	}

	if info.Email = r.extractor.FirstEmail(scraper.StripScripts(doc).Text()); info.Email != "" {
		return info
	}

	link, ok := FindContactLink(doc)
	if !ok {
		return info
	}

	contactURL, err := resolveLink(websiteURL, link)
	if err != nil {
		logger.Warn("Could not resolve contact link", logger.Fields{
			"event": eventName,
			"href":  link,
		}, err)
		return info
	}

	contactDoc, err := r.fetcher.Document(ctx, contactURL)
	if err != nil {
		r.fetchFailed("contact-page")
		logger.Warn("Could not scrape contact page", logger.Fields{
			"event": eventName,
			"url":   contactURL,
		}, err)
		return info
	}

	info.Email = r.extractor.FirstEmail(scraper.StripScripts(contactDoc).Text())
	logger.Debug("Followed contact link", logger.Fields{
		"event": eventName,
		"url":   contactURL,
		"found": info.Email != "",
	})
	return info
}

func (r *Resolver) fetchFailed(stage string) {
	if r.OnFetchError != nil {
		r.OnFetchError(stage)
	}
}

// FindContactLink returns the href of the first anchor whose text or href
// contains one of LinkKeywords.
func FindContactLink(doc *goquery.Document) (string, bool) {
	var href string
	var found bool

	doc.Find("a[href]").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		h, _ := sel.Attr("href")
		text := strings.ToLower(sel.Text())
		lowerHref := strings.ToLower(h)

		for _, kw := range LinkKeywords {
			if strings.Contains(text, kw) || strings.Contains(lowerHref, kw) {
				href, found = h, true
				return false
			}
		}
		return true
	})

	return href, found
}

func resolveLink(base, href string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parsing base url: %w", err)
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("parsing href: %w", err)
	}
	return baseURL.ResolveReference(ref).String(), nil
}
