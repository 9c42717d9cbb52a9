package models

import (
	"time"

	"gorm.io/gorm"
)

// Designer is a fashion designer account selling through the marketplace.
type Designer struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	Email         string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash  string         `gorm:"not null" json:"-"`
	BrandName     string         `gorm:"type:varchar(120);not null" json:"brand_name"`
	Slug          string         `gorm:"uniqueIndex;not null" json:"slug"`
	Description   string         `gorm:"type:text" json:"description,omitempty"`
	City          string         `gorm:"type:varchar(80)" json:"city,omitempty"`
	WebsiteURL    string         `gorm:"type:varchar(255)" json:"website_url,omitempty"`
	InstagramURL  string         `gorm:"type:varchar(255)" json:"instagram_url,omitempty"`
	Status        string         `gorm:"type:varchar(20);not null;index;default:'pending'" json:"status"` // pending/approved/rejected
	RejectReason  string         `gorm:"type:varchar(255)" json:"reject_reason,omitempty"`
	// LifetimeSales only grows, and only through order settlement.
	LifetimeSales Money          `gorm:"type:decimal(20,2);not null;default:0" json:"lifetime_sales"`
	ApprovedAt    *time.Time     `gorm:"index" json:"approved_at,omitempty"`
	LastLoginAt   *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Products []Product `gorm:"foreignKey:DesignerID" json:"products,omitempty"`
}

// TableName sets the table name.
func (Designer) TableName() string {
	return "designers"
}
