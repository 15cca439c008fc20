// Package scraper fetches event websites and contact pages over HTTP.
//
// Requests identify as a desktop browser, time out after ten seconds and accept any
// TLS certificate, since many small event sites run with expired or self-signed
// certificates. Responses are parsed with goquery for the company name and contact
// email heuristics.
package scraper
