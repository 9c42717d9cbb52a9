package models

import (
	"time"

	"gorm.io/gorm"
)

// Order is a customer order, possibly spanning several designers.
type Order struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	OrderNo         string         `gorm:"uniqueIndex;not null" json:"order_no"`
	CustomerEmail   string         `gorm:"index;not null" json:"customer_email"`
	CustomerName    string         `gorm:"type:varchar(120)" json:"customer_name,omitempty"`
	Status          string         `gorm:"index;not null" json:"status"` // pending_payment/paid/settled/canceled
	Currency        string         `gorm:"not null" json:"currency"`
	TotalAmount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`
	StripeSessionID string         `gorm:"type:varchar(160);index" json:"stripe_session_id,omitempty"`
	ClientIP        string         `gorm:"type:varchar(64)" json:"client_ip,omitempty"`
	ExpiresAt       *time.Time     `gorm:"index" json:"expires_at"`
	PaidAt          *time.Time     `gorm:"index" json:"paid_at"`
	SettledAt       *time.Time     `gorm:"index" json:"settled_at"`
	CanceledAt      *time.Time     `gorm:"index" json:"canceled_at"`
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// TableName sets the table name.
func (Order) TableName() string {
	return "orders"
}
