// Package storage persists harvest output.
//
// Records are written once at the end of a run through a Sink: an Excel workbook
// (the default, sheet "US Events with Contact Info"), CSV or JSON. The data
// directory additionally receives diagnostic page snapshots (debug_<name>.html)
// captured when the listing form cannot be driven, and a JSON report of the last
// run. The default data directory is ~/.local/share/tradeshow-events/.
package storage
