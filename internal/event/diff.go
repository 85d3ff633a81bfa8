package event

// Snapshot captures the records of one pipeline run, keyed by identity URL,
// so a later run can report only the events that were not seen before.
type Snapshot struct {
	RunID     string             `json:"run_id"`
	Records   map[string]*Record `json:"records"` // keyed by EventURL
	UpdatedAt string             `json:"updated_at"`
}

// NewSnapshot creates an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Records: make(map[string]*Record),
	}
}

// CreateSnapshot builds a snapshot from a run's records.
func CreateSnapshot(records []*Record, runID, updatedAt string) *Snapshot {
	snap := NewSnapshot()
	snap.RunID = runID
	snap.UpdatedAt = updatedAt
	for _, rec := range records {
		snap.Records[rec.EventURL] = rec
	}
	return snap
}

// Diff returns the records whose identity URL is absent from the previous
// snapshot, in the order given. A nil previous snapshot marks everything
// new.
func Diff(previous *Snapshot, current []*Record) []*Record {
	if previous == nil {
		previous = NewSnapshot()
	}

	fresh := make([]*Record, 0)
	for _, rec := range current {
		if _, seen := previous.Records[rec.EventURL]; !seen {
			fresh = append(fresh, rec)
		}
	}
	return fresh
}
