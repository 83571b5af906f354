package repository

import (
	"context"
	"errors"
	"time"

	"shipfire/internal/models"

	"gorm.io/gorm"
)

type CreditRepository struct {
	db *gorm.DB
}

func NewCreditRepository(db *gorm.DB) *CreditRepository {
	return &CreditRepository{db: db}
}

func (r *CreditRepository) Insert(ctx context.Context, c *models.Credit) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CreditRepository) FindByOrderNo(ctx context.Context, orderNo string) (*models.Credit, error) {
	var c models.Credit
	err := r.db.WithContext(ctx).Where("order_no = ?", orderNo).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// SumValid returns the user's balance: the sum over rows that have not expired
// (expired_at null means never expires).
func (r *CreditRepository) SumValid(ctx context.Context, userUUID string) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Credit{}).
		Select("COALESCE(SUM(credits), 0)").
		Where("user_uuid = ? AND (expired_at IS NULL OR expired_at >= ?)", userUUID, time.Now()).
		Scan(&total).Error
	return int(total), err
}

func (r *CreditRepository) ListByUser(ctx context.Context, userUUID string, limit int) ([]models.Credit, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var rows []models.Credit
	err := r.db.WithContext(ctx).
		Where("user_uuid = ?", userUUID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
