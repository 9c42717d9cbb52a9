package models

import (
	"time"

	"gorm.io/gorm"
)

// WalletAccount holds the derived balance aggregates for one designer.
// The ledger is the source of truth; after every mutation the account must
// satisfy TotalEarnings - TotalWithdrawn == Balance + PendingBalance.
type WalletAccount struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	DesignerID     uint           `gorm:"uniqueIndex;not null" json:"designer_id"`
	Balance        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"balance"`
	PendingBalance Money          `gorm:"type:decimal(20,2);not null;default:0" json:"pending_balance"`
	TotalEarnings  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_earnings"`
	TotalWithdrawn Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_withdrawn"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (WalletAccount) TableName() string {
	return "wallet_accounts"
}
