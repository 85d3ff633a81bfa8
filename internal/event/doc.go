// Package event defines the canonical event record, date/time
// normalization, the listing/detail merge policy, and run-level dedup,
// filtering and diffing.
package event
