package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is a designer-owned listing.
type Product struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	DesignerID    uint           `gorm:"index;not null" json:"designer_id"`
	Name          string         `gorm:"type:varchar(160);not null" json:"name"`
	Slug          string         `gorm:"uniqueIndex;not null" json:"slug"`
	Description   string         `gorm:"type:text" json:"description,omitempty"`
	Price         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`
	Currency      string         `gorm:"type:varchar(8);not null;default:'RON'" json:"currency"`
	Stock         int            `gorm:"not null;default:0" json:"stock"` // -1 means unlimited
	Status        string         `gorm:"type:varchar(20);not null;index;default:'draft'" json:"status"` // draft/active/archived
	ImageURL      string         `gorm:"type:varchar(500)" json:"image_url,omitempty"`
	// Stripe price mapping is persisted, never held only in memory.
	StripePriceID string         `gorm:"type:varchar(120);index" json:"stripe_price_id,omitempty"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Designer *Designer `gorm:"foreignKey:DesignerID" json:"designer,omitempty"`
}

// TableName sets the table name.
func (Product) TableName() string {
	return "products"
}
