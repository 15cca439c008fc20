// Package notifier announces the outcome of a harvest run.
//
// A Notifier receives the run summary once the records have been written.
// The Twitter and Telegram implementations post a single message; the dry-run
// implementation prints the status it would have posted.
package notifier
