package company

import (
	"strings"
	"unicode"
)

var legalSuffixes = []string{" Inc", " LLC", " Corp", " Corporation", " Company", " Co", " Ltd", " Limited"}

var fillerPrefixes = []string{"The ", "Welcome to ", "Home - ", "About - "}

// TitleCase upper-cases every letter that follows a non-letter and lower-cases the rest.
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				r = unicode.ToLower(r)
			} else {
				r = unicode.ToUpper(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Clean strips legal suffixes and filler prefixes and collapses whitespace,
// repeating until the name stops changing.
func Clean(name string) string {
	name = collapseSpaces(name)
	for {
		next := collapseSpaces(stripPrefix(stripSuffix(name)))
		if next == name {
			return name
		}
		name = next
	}
}

func stripSuffix(name string) string {
	trimmed := strings.TrimRight(name, ".,")
	for _, suffix := range legalSuffixes {
		n := len(trimmed) - len(suffix)
		if n >= 0 && strings.EqualFold(trimmed[n:], suffix) {
			return strings.TrimRight(trimmed[:n], ", ")
		}
	}
	return name
}

func stripPrefix(name string) string {
	for _, prefix := range fillerPrefixes {
		if len(name) >= len(prefix) && strings.EqualFold(name[:len(prefix)], prefix) {
			return name[len(prefix):]
		}
	}
	return name
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
