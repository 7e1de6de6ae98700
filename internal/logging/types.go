package logging

import "time"

// #region event-entry
// EventEntry is a single row in the event_log table: one handled inbound
// event with the controller's decision for it.
type EventEntry struct {
	ChatID    int64
	Event     string
	StepKey   string
	Decision  string // "accepted" | "rejected" | "finalized" | "cancelled" | "menu" | "error"
	Reason    string
	CreatedAt time.Time
}

// #endregion event-entry
