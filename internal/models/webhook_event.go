package models

import (
	"time"
)

// WebhookEvent records a processed provider notification. The unique
// (provider, event_id) index makes redelivery a cheap no-op.
type WebhookEvent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Provider    string    `gorm:"size:20;not null;uniqueIndex:idx_provider_event" json:"provider"`
	EventID     string    `gorm:"size:128;not null;uniqueIndex:idx_provider_event" json:"event_id"`
	EventType   string    `gorm:"size:64;index" json:"event_type"`
	OrderNo     string    `gorm:"size:64;index" json:"order_no"`
	ProcessedAt time.Time `json:"processed_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}
