package notifier

import (
	"github.com/civiclens/civiclens/internal/event"
)

// Notifier posts notifications for newly discovered events.
type Notifier interface {
	// Notify posts notifications for the given records
	Notify(records []*event.Record) error
}
