package service

import (
	"context"
	"time"

	"shipfire/internal/models"
)

// Store interfaces decouple the services from GORM so they can be exercised
// with fakes. internal/repository provides the real implementations.

type OrderStore interface {
	Insert(ctx context.Context, o *models.Order) error
	FindByOrderNo(ctx context.Context, orderNo string) (*models.Order, error)
	FindBySessionRef(ctx context.Context, payType, sessionRef string) (*models.Order, error)
	AttachSession(ctx context.Context, orderNo, sessionRef, detail string) error
	MarkPaid(ctx context.Context, orderNo, paidEmail, paidDetail string) (bool, error)
	ListByUser(ctx context.Context, userUUID string, limit int) ([]models.Order, error)
}

type CreditStore interface {
	Insert(ctx context.Context, c *models.Credit) error
	FindByOrderNo(ctx context.Context, orderNo string) (*models.Credit, error)
	SumValid(ctx context.Context, userUUID string) (int, error)
	ListByUser(ctx context.Context, userUUID string, limit int) ([]models.Credit, error)
}

type UserStore interface {
	FindByUUID(ctx context.Context, uuid string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type EventStore interface {
	Seen(ctx context.Context, provider, eventID string) (bool, error)
	Record(ctx context.Context, provider, eventID, eventType, orderNo string)
}

var timeNow = time.Now
