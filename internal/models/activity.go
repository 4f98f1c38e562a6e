package models

import "time"

// Activity types.
const (
	ActivitySuccess = "SUCCESS"
	ActivityError   = "ERROR"
	ActivityInfo    = "INFO"
)

// ActivityEntry is a single dashboard status message.
type ActivityEntry struct {
	ID         string    `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
	Type       string    `json:"type"`              // SUCCESS | ERROR | INFO
	Message    string    `json:"message"`           // human-readable
	Command    string    `json:"command,omitempty"` // payload actually sent, if any
}
