package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/civiclens/civiclens/internal/event"
)

// Storage persists per-platform run snapshots so consecutive runs can be
// diffed for newly appeared events.
type Storage struct {
	dataDir string
}

// New creates a Storage rooted at dataDir, creating the directory if
// needed. A leading ~/ expands to the user's home directory.
func New(dataDir string) (*Storage, error) {
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{dataDir: dataDir}, nil
}

func (s *Storage) snapshotPath(platform string) string {
	if platform == "" || strings.EqualFold(platform, "all") {
		return filepath.Join(s.dataDir, "snapshot.json")
	}
	return filepath.Join(s.dataDir, fmt.Sprintf("snapshot_%s.json", strings.ToLower(platform)))
}

// LoadSnapshot loads the last saved snapshot for a platform. A missing
// file yields an empty snapshot, not an error: the first run has no
// history.
func (s *Storage) LoadSnapshot(platform string) (*event.Snapshot, error) {
	data, err := os.ReadFile(s.snapshotPath(platform))
	if err != nil {
		if os.IsNotExist(err) {
			return event.NewSnapshot(), nil
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snapshot event.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	if snapshot.Records == nil {
		snapshot.Records = make(map[string]*event.Record)
	}

	return &snapshot, nil
}

// SaveSnapshot writes a snapshot for a platform, stamping it with the
// current time.
func (s *Storage) SaveSnapshot(snapshot *event.Snapshot, platform string) error {
	snapshot.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.WriteFile(s.snapshotPath(platform), data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// SaveRecords builds a snapshot from a run's records and saves it.
func (s *Storage) SaveRecords(records []*event.Record, runID, platform string) error {
	snapshot := event.CreateSnapshot(records, runID, time.Now().UTC().Format(time.RFC3339))
	return s.SaveSnapshot(snapshot, platform)
}
