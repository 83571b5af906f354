package models

import (
	"time"
)

// Credit is one row in the credit ledger. Positive credits grant, negative
// credits consume. A user's balance is the sum of non-expired rows.
type Credit struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	TransNo   string     `gorm:"uniqueIndex;size:64;not null" json:"trans_no"`
	UserUUID  string     `gorm:"index;size:64;not null" json:"user_uuid"`
	TransType string     `gorm:"size:32;not null;index" json:"trans_type"` // order_pay | image_gen | system_add
	Credits   int        `gorm:"not null" json:"credits"`
	OrderNo   string     `gorm:"index;size:64" json:"order_no"`
	ExpiredAt *time.Time `json:"expired_at"` // nil means never expires
	CreatedAt time.Time  `json:"created_at"`
}

func (Credit) TableName() string {
	return "credits"
}
