package models

import (
	"time"

	"gorm.io/gorm"
)

// WithdrawalRequest is a designer payout request reviewed by an admin.
type WithdrawalRequest struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	DesignerID    uint           `gorm:"index;not null" json:"designer_id"`
	Amount        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`
	Channel       string         `gorm:"type:varchar(32);not null" json:"channel"` // bank_transfer/stripe
	AccountInfo   string         `gorm:"type:varchar(255);not null" json:"account_info"` // IBAN or Stripe account id
	Status        string         `gorm:"type:varchar(20);not null;index;default:'requested'" json:"status"` // requested/completed/rejected
	RejectReason  string         `gorm:"type:varchar(255)" json:"reject_reason,omitempty"`
	ProcessedBy   *uint          `gorm:"index" json:"processed_by,omitempty"`
	ProcessedAt   *time.Time     `gorm:"index" json:"processed_at,omitempty"`
	PayoutRef     string         `gorm:"type:varchar(120)" json:"payout_ref,omitempty"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Designer *Designer `gorm:"foreignKey:DesignerID" json:"designer,omitempty"`
}

// TableName sets the table name.
func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}
