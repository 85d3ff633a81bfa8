// Package sink serializes finished records to their destination.
//
// The canonical output is a single JSON array, one object per record,
// with absent fields rendered as null. Records keep the order the
// pipeline produced them in.
package sink

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/civiclens/civiclens/internal/event"
)

// WriteJSON writes records as an indented JSON array. An empty run emits
// an empty array, never null.
func WriteJSON(w io.Writer, records []*event.Record) error {
	if records == nil {
		records = []*event.Record{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}
	return nil
}

// WriteFile writes the JSON array to path, or to stdout when path is
// empty.
func WriteFile(path string, records []*event.Record) error {
	if path == "" {
		return WriteJSON(os.Stdout, records)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := WriteJSON(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
