package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Webhook event processing outcomes
const (
	WebhookProcessed = "PROCESSED"
	WebhookDuplicate = "DUPLICATE"
	WebhookSkipped   = "SKIPPED" // valid signature but unusable payload
	WebhookIgnored   = "IGNORED" // event type we do not act on
)

// WebhookEvent records every verified gateway delivery and what was done
// with it, so skipped or malformed events are visible after the fact
// instead of disappearing into the logs.
type WebhookEvent struct {
	gorm.Model
	EventID   string         `json:"event_id" gorm:"uniqueIndex"`
	EventType string         `json:"event_type"`
	Status    string         `json:"status"`
	Payload   datatypes.JSON `json:"payload"`
}
