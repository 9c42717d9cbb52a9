package repository

import (
	"errors"
	"strings"

	"github.com/baguri-ro/baguri-api/internal/models"

	"gorm.io/gorm"
)

// WebhookEventRepository is the processed-webhook data access interface.
type WebhookEventRepository interface {
	GetByProviderEventID(provider, eventID string) (*models.WebhookEvent, error)
	Create(event *models.WebhookEvent) error
	WithTx(tx *gorm.DB) *GormWebhookEventRepository
}

// GormWebhookEventRepository is the GORM webhook event repository.
type GormWebhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository builds a webhook event repository.
func NewWebhookEventRepository(db *gorm.DB) *GormWebhookEventRepository {
	return &GormWebhookEventRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormWebhookEventRepository) WithTx(tx *gorm.DB) *GormWebhookEventRepository {
	if tx == nil {
		return r
	}
	return &GormWebhookEventRepository{db: tx}
}

// GetByProviderEventID fetches a processed event record.
func (r *GormWebhookEventRepository) GetByProviderEventID(provider, eventID string) (*models.WebhookEvent, error) {
	provider = strings.TrimSpace(provider)
	eventID = strings.TrimSpace(eventID)
	if provider == "" || eventID == "" {
		return nil, nil
	}
	var event models.WebhookEvent
	if err := r.db.Where("provider = ? AND event_id = ?", provider, eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

// Create records a processed event. The unique (provider, event_id) index
// makes duplicate inserts fail, which callers treat as already-processed.
func (r *GormWebhookEventRepository) Create(event *models.WebhookEvent) error {
	return r.db.Create(event).Error
}
