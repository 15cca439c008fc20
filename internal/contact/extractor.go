package contact

import (
	"regexp"
	"strings"
)

// DefaultPatterns are tried in order; the first pattern with any match wins.
var DefaultPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
	regexp.MustCompile(`info@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
	regexp.MustCompile(`contact@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
	regexp.MustCompile(`events@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
	regexp.MustCompile(`sales@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
}

// Extractor pulls email addresses out of page text
type Extractor struct {
	patterns []*regexp.Regexp
}

// NewExtractor creates an Extractor with the default pattern order
func NewExtractor() *Extractor {
	return &Extractor{patterns: DefaultPatterns}
}

// FirstEmail lower-cases text and returns the first match of the first pattern
// that matches anything, or "".
func (e *Extractor) FirstEmail(text string) string {
	text = strings.ToLower(text)
	for _, p := range e.patterns {
		if m := p.FindString(text); m != "" {
			return m
		}
	}
	return ""
}
