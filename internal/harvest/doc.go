// Package harvest drives the listing site month by month and enriches every
// qualifying row.
//
// For each configured month the Controller reloads the listing, selects the
// month, submits the search and then walks the result pages:
//
//	Idle -> PageLoaded -> MonthSelected -> SearchSubmitted -> RowsScanned -> (NextPage | MonthDone)
//
// Rows that pass the qualification filter reserve a slot in the session, are
// resolved for their organizing company and contact email, and are appended to
// the result in row order. The run ends when every month is done, when the
// session's event cap is reached, or when it is cancelled.
//
// Only two conditions abort a run: the month control cannot be driven, or the
// search cannot be submitted. Both capture the page source before returning a
// *FatalError. Everything else is logged and skipped.
package harvest
