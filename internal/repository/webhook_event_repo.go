package repository

import (
	"context"
	"log"
	"time"

	"shipfire/internal/models"

	"gorm.io/gorm"
)

type WebhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

// Seen reports whether the provider event was already processed.
func (r *WebhookEventRepository) Seen(ctx context.Context, provider, eventID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.WebhookEvent{}).
		Where("provider = ? AND event_id = ?", provider, eventID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Record stores the processed event. A unique-index violation means a racing
// delivery recorded it first, which is fine.
func (r *WebhookEventRepository) Record(ctx context.Context, provider, eventID, eventType, orderNo string) {
	e := &models.WebhookEvent{
		Provider:    provider,
		EventID:     eventID,
		EventType:   eventType,
		OrderNo:     orderNo,
		ProcessedAt: time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		log.Printf("[webhook events] record %s/%s: %v", provider, eventID, err)
	}
}
