// Package company resolves the organizing company behind a trade show.
//
// Resolution is a hybrid: a language model is asked first and, when it cannot
// name an organizer, the event website is mined with an ordered waterfall of
// heuristics (about sections, footer copyright lines, meta tags, the title tag
// and finally the domain name). The first heuristic that produces a name wins.
//
// Every candidate is title-cased and cleaned of legal suffixes such as "Inc" or
// "LLC" and filler prefixes such as "Welcome to". Cleaning is a fixed point:
// Clean(Clean(s)) == Clean(s).
package company
