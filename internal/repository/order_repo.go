package repository

import (
	"context"
	"errors"
	"time"

	"shipfire/internal/domain"
	"shipfire/internal/models"

	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Insert(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *OrderRepository) FindByOrderNo(ctx context.Context, orderNo string) (*models.Order, error) {
	var o models.Order
	err := r.db.WithContext(ctx).Where("order_no = ?", orderNo).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) FindBySessionRef(ctx context.Context, payType, sessionRef string) (*models.Order, error) {
	var o models.Order
	err := r.db.WithContext(ctx).Where("pay_type = ? AND session_ref = ?", payType, sessionRef).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// AttachSession sets session_ref and the provider request snapshot. The guard
// on an empty session_ref means the first successful provider response wins.
func (r *OrderRepository) AttachSession(ctx context.Context, orderNo, sessionRef, detail string) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("order_no = ? AND (session_ref = '' OR session_ref IS NULL)", orderNo).
		Updates(map[string]interface{}{
			"session_ref":  sessionRef,
			"order_detail": detail,
		}).Error
}

// MarkPaid transitions created -> paid with a conditional update so that only
// one of several concurrent webhook deliveries wins. Returns whether this call
// performed the transition.
func (r *OrderRepository) MarkPaid(ctx context.Context, orderNo, paidEmail, paidDetail string) (bool, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("order_no = ? AND status = ?", orderNo, domain.OrderStatusCreated).
		Updates(map[string]interface{}{
			"status":      domain.OrderStatusPaid,
			"paid_at":     &now,
			"paid_email":  paidEmail,
			"paid_detail": paidDetail,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userUUID string, limit int) ([]models.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("user_uuid = ?", userUUID).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

// ExpireStale closes out created orders whose payment deadline has passed.
// Used by the sweeper; returns the number of orders expired.
func (r *OrderRepository) ExpireStale(ctx context.Context, olderThan time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("status = ? AND created_at < ?", domain.OrderStatusCreated, olderThan).
		Update("status", domain.OrderStatusExpired)
	return res.RowsAffected, res.Error
}
