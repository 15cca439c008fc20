package company

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page is a fetched event website with script and style content removed
type Page struct {
	URL *url.URL
	Doc *goquery.Document
}

// Method is one step of the website waterfall
type Method struct {
	Name    string
	Extract func(p *Page) (string, bool)
}

// Waterfall lists the website heuristics in priority order.
var Waterfall = []Method{
	{Name: "about", Extract: FromAboutSection},
	{Name: "footer", Extract: FromFooter},
	{Name: "og:site_name", Extract: FromSiteName},
	{Name: "organization", Extract: FromOrganizationMeta},
	{Name: "author", Extract: FromAuthorMeta},
	{Name: "description", Extract: FromDescription},
	{Name: "title", Extract: FromTitle},
	{Name: "domain", Extract: FromDomain},
}

const minNameLength = 4

var (
	organizerPhrases = []string{
		"organized by", "hosted by", "sponsored by", "presented by", "produced by",
		"managed by", "we are", "our company", "our organization",
	}

	// capitalized phrase after an organizer phrase, stopping at punctuation or line end
	aboutPatterns = phrasePatterns(`([A-Z][A-Za-z&'-]*(?:[ \t]+(?:&|[A-Z][A-Za-z&'-]*))*)`)

	// description text is lowercased before matching
	descriptionPatterns = phrasePatterns(`([a-z&][a-z&'-]*(?:[ \t]+[a-z&][a-z&'-]*)*)`)

	footerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)©\s*\d{4}(?:\s*[-–]\s*\d{4})?\s*([a-z][a-z&'-]*(?:[ \t]+[a-z&][a-z&'-]*)*)`),
		regexp.MustCompile(`(?i)copyright\s*(?:©\s*)?\d{4}(?:\s*[-–]\s*\d{4})?\s*([a-z][a-z&'-]*(?:[ \t]+[a-z&][a-z&'-]*)*)`),
		regexp.MustCompile(`(?i)all rights reserved\s*([a-z][a-z&'-]*(?:[ \t]+[a-z&][a-z&'-]*)*)`),
		regexp.MustCompile(`(?i)powered by\s+([a-z][a-z&'-]*(?:[ \t]+[a-z&][a-z&'-]*)*)`),
	}

	aboutClass     = regexp.MustCompile(`(?i)about|contact|company|organization`)
	footerClass    = regexp.MustCompile(`(?i)footer|bottom`)
	titleSeparator = regexp.MustCompile(`\s*[-|]\s*`)

	// whole words, so "Organization" or "Theater" are not rejected
	aboutGeneric = regexp.MustCompile(`(?i)\b(?:conference|expo|show|event|the|and|or)s?\b`)

	eventWords  = []string{"conference", "expo", "show", "event"}
	domainWords = []string{"event", "show", "expo", "conference", "trade", "fair"}

	// words that end a captured phrase
	phraseStops = map[string]bool{
		"in": true, "at": true, "on": true, "for": true, "with": true, "since": true,
		"from": true, "to": true, "all": true, "is": true, "was": true, "who": true,
	}
)

const maxPhraseWords = 6

func phrasePatterns(capture string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(organizerPhrases))
	for _, phrase := range organizerPhrases {
		out = append(out, regexp.MustCompile(`(?i:`+regexp.QuoteMeta(phrase)+`)\s+`+capture))
	}
	return out
}

// trimPhrase cuts a captured phrase at the first stop word and caps its length
func trimPhrase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if i >= maxPhraseWords || (i > 0 && phraseStops[strings.ToLower(w)]) {
			words = words[:i]
			break
		}
	}
	return strings.Join(words, " ")
}

func containsAny(s string, words []string) bool {
	s = strings.ToLower(s)
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// FromAboutSection looks for organizer phrases inside about, contact, company or
// organization sections.
func FromAboutSection(p *Page) (string, bool) {
	var name string

	p.Doc.Find("div, section").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		class, _ := sel.Attr("class")
		id, _ := sel.Attr("id")
		if !aboutClass.MatchString(class) && !aboutClass.MatchString(id) {
			return true
		}

		text := sel.Text()
		for _, pattern := range aboutPatterns {
			m := pattern.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			candidate := trimPhrase(m[1])
			if len(candidate) >= minNameLength && !aboutGeneric.MatchString(candidate) {
				name = candidate
				return false
			}
		}
		return true
	})

	return name, name != ""
}

// FromFooter reads copyright, "all rights reserved" and "powered by" lines.
func FromFooter(p *Page) (string, bool) {
	footer := p.Doc.Find("footer, div").FilterFunction(func(i int, sel *goquery.Selection) bool {
		class, _ := sel.Attr("class")
		return footerClass.MatchString(class)
	}).First()
	if footer.Length() == 0 {
		footer = p.Doc.Find("footer").First()
	}
	if footer.Length() == 0 {
		return "", false
	}

	text := footer.Text()
	for _, pattern := range footerPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if candidate := trimPhrase(m[1]); len(candidate) >= minNameLength {
			return candidate, true
		}
	}
	return "", false
}

func metaContent(p *Page, selector string) (string, bool) {
	sel := p.Doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	content, _ := sel.Attr("content")
	content = strings.TrimSpace(content)
	return content, content != ""
}

// FromSiteName reads the Open Graph site name.
func FromSiteName(p *Page) (string, bool) {
	return metaContent(p, `meta[property="og:site_name"]`)
}

// FromOrganizationMeta reads <meta name="organization">.
func FromOrganizationMeta(p *Page) (string, bool) {
	return metaContent(p, `meta[name="organization"]`)
}

// FromAuthorMeta reads <meta name="author"> unless it looks like an email address.
func FromAuthorMeta(p *Page) (string, bool) {
	author, ok := metaContent(p, `meta[name="author"]`)
	if !ok || strings.Contains(author, "@") {
		return "", false
	}
	return author, true
}

// FromDescription applies the organizer phrases to the lowercased meta description.
func FromDescription(p *Page) (string, bool) {
	desc, ok := metaContent(p, `meta[name="description"]`)
	if !ok {
		return "", false
	}
	desc = strings.ToLower(desc)

	for _, pattern := range descriptionPatterns {
		m := pattern.FindStringSubmatch(desc)
		if m == nil {
			continue
		}
		candidate := trimPhrase(m[1])
		if len(candidate) >= minNameLength && !containsAny(candidate, eventWords) {
			return candidate, true
		}
	}
	return "", false
}

// FromTitle takes the first segment of a title such as "Acme Media - Summit 2025".
// Short or generic-looking segments like "Home" are only rejected by length and
// the event words, matching the other meta heuristics.
func FromTitle(p *Page) (string, bool) {
	title := p.Doc.Find("title").First().Text()
	if !strings.Contains(title, " - ") && !strings.Contains(title, " | ") {
		return "", false
	}

	parts := titleSeparator.Split(title, -1)
	if len(parts) < 2 {
		return "", false
	}

	candidate := strings.TrimSpace(parts[0])
	if len(candidate) < minNameLength || containsAny(candidate, eventWords) {
		return "", false
	}
	return candidate, true
}

// FromDomain uses the first label of the host, e.g. "acme-media" for www.acme-media.com.
func FromDomain(p *Page) (string, bool) {
	if p.URL == nil {
		return "", false
	}

	host := strings.TrimPrefix(strings.ToLower(p.URL.Hostname()), "www.")
	label, _, _ := strings.Cut(host, ".")
	if len(label) < minNameLength || containsAny(label, domainWords) {
		return "", false
	}

	return strings.NewReplacer("-", " ", "_", " ").Replace(label), true
}
