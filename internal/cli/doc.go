// Package cli implements the command-line interface for civiclens.
//
// The cli package provides the Cobra-based CLI for running extractions
// against one or all configured sources, formatting output (JSON/text),
// filtering records, diffing runs against stored snapshots, exporting
// calendars, and posting notifications for new events.
package cli
