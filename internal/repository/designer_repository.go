package repository

import (
	"errors"
	"strings"

	"github.com/baguri-ro/baguri-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DesignerRepository is the designer data access interface.
type DesignerRepository interface {
	GetByID(id uint) (*models.Designer, error)
	GetByIDForUpdate(id uint) (*models.Designer, error)
	GetByEmail(email string) (*models.Designer, error)
	GetBySlug(slug string) (*models.Designer, error)
	GetByIDs(ids []uint) ([]models.Designer, error)
	List(filter DesignerListFilter) ([]models.Designer, int64, error)
	Create(designer *models.Designer) error
	Update(designer *models.Designer) error
	WithTx(tx *gorm.DB) *GormDesignerRepository
}

// GormDesignerRepository is the GORM designer repository.
type GormDesignerRepository struct {
	db *gorm.DB
}

// NewDesignerRepository builds a designer repository.
func NewDesignerRepository(db *gorm.DB) *GormDesignerRepository {
	return &GormDesignerRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormDesignerRepository) WithTx(tx *gorm.DB) *GormDesignerRepository {
	if tx == nil {
		return r
	}
	return &GormDesignerRepository{db: tx}
}

// GetByID fetches a designer by id.
func (r *GormDesignerRepository) GetByID(id uint) (*models.Designer, error) {
	if id == 0 {
		return nil, nil
	}
	var designer models.Designer
	if err := r.db.First(&designer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &designer, nil
}

// GetByIDForUpdate fetches a designer with a row lock, for settlement writes
// to lifetime_sales.
func (r *GormDesignerRepository) GetByIDForUpdate(id uint) (*models.Designer, error) {
	if id == 0 {
		return nil, nil
	}
	var designer models.Designer
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&designer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &designer, nil
}

// GetByEmail fetches a designer by login email.
func (r *GormDesignerRepository) GetByEmail(email string) (*models.Designer, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, nil
	}
	var designer models.Designer
	if err := r.db.Where("email = ?", email).First(&designer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &designer, nil
}

// GetBySlug fetches a designer by public slug.
func (r *GormDesignerRepository) GetBySlug(slug string) (*models.Designer, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}
	var designer models.Designer
	if err := r.db.Where("slug = ?", slug).First(&designer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &designer, nil
}

// GetByIDs fetches designers in batch.
func (r *GormDesignerRepository) GetByIDs(ids []uint) ([]models.Designer, error) {
	if len(ids) == 0 {
		return []models.Designer{}, nil
	}
	var designers []models.Designer
	if err := r.db.Where("id IN ?", ids).Find(&designers).Error; err != nil {
		return nil, err
	}
	return designers, nil
}

// List pages through designers.
func (r *GormDesignerRepository) List(filter DesignerListFilter) ([]models.Designer, int64, error) {
	query := r.db.Model(&models.Designer{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("(brand_name LIKE ? OR email LIKE ? OR slug LIKE ?)", like, like, like)
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

	var designers []models.Designer
	if err := query.Order("id desc").Find(&designers).Error; err != nil {
		return nil, 0, err
	}
	return designers, total, nil
}

// Create inserts a designer.
func (r *GormDesignerRepository) Create(designer *models.Designer) error {
	return r.db.Create(designer).Error
}

// Update saves a designer.
func (r *GormDesignerRepository) Update(designer *models.Designer) error {
	return r.db.Save(designer).Error
}
