package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem is a single product line inside an order. Designer and price are
// snapshots taken at checkout so later edits never change settlement math.
type OrderItem struct {
	ID               uint           `gorm:"primarykey" json:"id"`
	OrderID          uint           `gorm:"index;not null" json:"order_id"`
	ProductID        uint           `gorm:"index;not null" json:"product_id"`
	DesignerID       uint           `gorm:"index;not null" json:"designer_id"`
	ProductName      string         `gorm:"type:varchar(160);not null" json:"product_name"`
	UnitPrice        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`
	Quantity         int            `gorm:"not null" json:"quantity"`
	GrossAmount      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"gross_amount"`
	SettlementStatus string         `gorm:"type:varchar(20);not null;index;default:'pending'" json:"settlement_status"` // pending/settled/failed
	SettledAt        *time.Time     `gorm:"index" json:"settled_at,omitempty"`
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (OrderItem) TableName() string {
	return "order_items"
}
