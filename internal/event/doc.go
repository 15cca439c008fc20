// Package event provides the record types produced by a trade show harvest.
//
// A Record is one qualifying listing row together with its enrichment (website,
// contact email, organizing company and where that name came from). Records carry a
// deterministic SHA1-based ID generated from the event name and date text so repeated
// harvests of the same listing produce the same identifiers. MonthSpec describes one
// month/year pass over the listing.
package event
