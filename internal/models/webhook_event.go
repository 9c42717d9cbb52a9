package models

import "time"

// WebhookEvent records processed Stripe event ids so at-least-once delivery
// never settles the same event twice.
type WebhookEvent struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Provider    string    `gorm:"type:varchar(32);not null;index:idx_webhook_event_unique,unique" json:"provider"`
	EventID     string    `gorm:"type:varchar(160);not null;index:idx_webhook_event_unique,unique" json:"event_id"`
	EventType   string    `gorm:"type:varchar(80);not null;index" json:"event_type"`
	OrderID     *uint     `gorm:"index" json:"order_id,omitempty"`
	ProcessedAt time.Time `gorm:"index" json:"processed_at"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// TableName sets the table name.
func (WebhookEvent) TableName() string {
	return "webhook_events"
}
