package scraper

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	Timeout   = 10 * time.Second

	// MaxBodySize bounds how much of a response body is read
	MaxBodySize = 5 << 20
)

// Scraper handles fetching event websites
type Scraper struct {
	client    *http.Client
	userAgent string
}

// New creates a new Scraper instance
func New() *Scraper {
	return NewWithTimeout(Timeout)
}

// NewWithTimeout creates a Scraper whose requests give up after timeout
func NewWithTimeout(timeout time.Duration) *Scraper {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // event sites often have broken certificates

	return &Scraper{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		userAgent: UserAgent,
	}
}

// Fetch retrieves the raw body of url
func (s *Scraper) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	return body, nil
}

// Document fetches url and parses it into a goquery document
func (s *Scraper) Document(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := s.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	return doc, nil
}

// StripScripts removes script and style elements so Text() only returns visible copy
func StripScripts(doc *goquery.Document) *goquery.Document {
	doc.Find("script, style").Remove()
	return doc
}
