// Package storage provides JSON-based persistence for run snapshots.
//
// Snapshots track the records a run produced so the next run can be
// compared against them. Each platform gets its own file
// (snapshot_PLATFORM.json) and combined runs use snapshot.json. The
// default location is ~/.local/share/civiclens/.
package storage
