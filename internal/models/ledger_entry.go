package models

import (
	"time"

	"gorm.io/gorm"
)

// LedgerEntry is one append-only row in a designer's wallet ledger.
// Amount is signed: credits positive, debits negative. Reference is unique
// and doubles as the idempotency key for webhook replays.
type LedgerEntry struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	AccountID      uint           `gorm:"index;not null" json:"account_id"`
	DesignerID     uint           `gorm:"index;not null" json:"designer_id"`
	Type           string         `gorm:"type:varchar(40);not null;index" json:"type"`
	Amount         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`
	BalanceBefore  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"balance_before"`
	BalanceAfter   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"balance_after"`
	Status         string         `gorm:"type:varchar(20);not null;index;default:'completed'" json:"status"` // pending/completed/failed
	Reference      string         `gorm:"uniqueIndex;not null" json:"reference"`
	OrderID        *uint          `gorm:"index" json:"order_id,omitempty"`
	OrderItemID    *uint          `gorm:"index" json:"order_item_id,omitempty"`
	WithdrawalID   *uint          `gorm:"index" json:"withdrawal_id,omitempty"`
	CommissionTier string         `gorm:"type:varchar(20)" json:"commission_tier,omitempty"`
	GrossAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"gross_amount"`
	PlatformFee    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"platform_fee"`
	Remark         string         `gorm:"type:varchar(255)" json:"remark,omitempty"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
