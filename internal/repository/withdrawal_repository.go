package repository

import (
	"errors"

	"github.com/baguri-ro/baguri-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WithdrawalRepository is the withdrawal request data access interface.
type WithdrawalRepository interface {
	GetByID(id uint) (*models.WithdrawalRequest, error)
	GetByIDForUpdate(id uint) (*models.WithdrawalRequest, error)
	List(filter WithdrawalListFilter) ([]models.WithdrawalRequest, int64, error)
	Create(request *models.WithdrawalRequest) error
	Update(request *models.WithdrawalRequest) error
	WithTx(tx *gorm.DB) *GormWithdrawalRepository
}

// GormWithdrawalRepository is the GORM withdrawal repository.
type GormWithdrawalRepository struct {
	db *gorm.DB
}

// NewWithdrawalRepository builds a withdrawal repository.
func NewWithdrawalRepository(db *gorm.DB) *GormWithdrawalRepository {
	return &GormWithdrawalRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormWithdrawalRepository) WithTx(tx *gorm.DB) *GormWithdrawalRepository {
	if tx == nil {
		return r
	}
	return &GormWithdrawalRepository{db: tx}
}

// GetByID fetches a withdrawal request.
func (r *GormWithdrawalRepository) GetByID(id uint) (*models.WithdrawalRequest, error) {
	if id == 0 {
		return nil, nil
	}
	var request models.WithdrawalRequest
	if err := r.db.First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// GetByIDForUpdate fetches a withdrawal request with a row lock, so two
// reviewers cannot process the same request.
func (r *GormWithdrawalRepository) GetByIDForUpdate(id uint) (*models.WithdrawalRequest, error) {
	if id == 0 {
		return nil, nil
	}
	var request models.WithdrawalRequest
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// List pages through withdrawal requests.
func (r *GormWithdrawalRepository) List(filter WithdrawalListFilter) ([]models.WithdrawalRequest, int64, error) {
	query := r.db.Model(&models.WithdrawalRequest{})
	if filter.DesignerID != 0 {
		query = query.Where("designer_id = ?", filter.DesignerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var requests []models.WithdrawalRequest
	if err := query.Order("id desc").Find(&requests).Error; err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// Create inserts a withdrawal request.
func (r *GormWithdrawalRepository) Create(request *models.WithdrawalRequest) error {
	return r.db.Create(request).Error
}

// Update saves a withdrawal request.
func (r *GormWithdrawalRepository) Update(request *models.WithdrawalRequest) error {
	return r.db.Save(request).Error
}
