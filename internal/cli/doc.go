// Package cli implements the command-line interface for tradeshow-events.
//
// The cli package provides the Cobra-based CLI: run harvests the listing and
// writes the enriched records, months shows which months a run would cover,
// report prints the last run, and config init writes a starter config.yaml.
// It coordinates the browser, resolvers, harvest controller, storage, metrics
// and notifier packages.
package cli
