package models

import (
	"time"
)

// Order records one purchase attempt. order_no is assigned before any provider
// call and never changes; session_ref correlates inbound webhooks back to the
// order and is set at most once (first successful provider response wins).
type Order struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderNo     string `gorm:"uniqueIndex;size:64;not null" json:"order_no"`
	UserUUID    string `gorm:"index;size:64;not null" json:"user_uuid"`
	UserEmail   string `gorm:"size:255" json:"user_email"`
	AmountCents int64  `gorm:"not null" json:"amount_cents"`
	Currency    string `gorm:"size:8;not null" json:"currency"`
	Interval    string `gorm:"size:16;not null" json:"interval"` // one-time | month | year
	Credits     int    `gorm:"not null;default:0" json:"credits"`
	ProductID   string `gorm:"size:64;index" json:"product_id"`
	ProductName string `gorm:"size:255" json:"product_name"`
	ValidMonths int    `gorm:"not null;default:0" json:"valid_months"`
	Status      string `gorm:"size:20;not null;index" json:"status"`   // created | paid | expired | cancelled
	PayType     string `gorm:"size:20;not null;index" json:"pay_type"` // stripe | paypal | creem
	SessionRef  string `gorm:"size:255;index" json:"session_ref"`
	OrderDetail string `gorm:"type:text" json:"-"` // provider request snapshot, JSON

	PaidAt     *time.Time `json:"paid_at"`
	PaidEmail  string     `gorm:"size:255" json:"paid_email"`
	PaidDetail string     `gorm:"type:text" json:"-"` // capture payload snapshot, JSON

	ExpiredAt time.Time `gorm:"index" json:"expired_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) IsSubscription() bool {
	return o.Interval == "month" || o.Interval == "year"
}
