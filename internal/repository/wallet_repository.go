package repository

import (
	"errors"
	"strings"

	"github.com/baguri-ro/baguri-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletRepository is the wallet account + ledger data access interface.
type WalletRepository interface {
	GetAccountByDesignerID(designerID uint) (*models.WalletAccount, error)
	GetAccountByDesignerIDForUpdate(designerID uint) (*models.WalletAccount, error)
	GetAccountsByDesignerIDs(designerIDs []uint) ([]models.WalletAccount, error)
	CreateAccount(account *models.WalletAccount) error
	UpdateAccount(account *models.WalletAccount) error
	CreateEntry(entry *models.LedgerEntry) error
	UpdateEntry(entry *models.LedgerEntry) error
	GetEntryByReference(reference string) (*models.LedgerEntry, error)
	ListEntries(filter LedgerListFilter) ([]models.LedgerEntry, int64, error)
	ListEntriesByDesigner(designerID uint) ([]models.LedgerEntry, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormWalletRepository
}

// GormWalletRepository is the GORM wallet repository.
type GormWalletRepository struct {
	db *gorm.DB
}

// NewWalletRepository builds a wallet repository.
func NewWalletRepository(db *gorm.DB) *GormWalletRepository {
	return &GormWalletRepository{db: db}
}

// Transaction runs fn inside a database transaction.
func (r *GormWalletRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// WithTx binds the repository to a transaction.
func (r *GormWalletRepository) WithTx(tx *gorm.DB) *GormWalletRepository {
	if tx == nil {
		return r
	}
	return &GormWalletRepository{db: tx}
}

// GetAccountByDesignerID fetches the account for a designer.
func (r *GormWalletRepository) GetAccountByDesignerID(designerID uint) (*models.WalletAccount, error) {
	if designerID == 0 {
		return nil, nil
	}
	var account models.WalletAccount
	if err := r.db.Where("designer_id = ?", designerID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetAccountByDesignerIDForUpdate fetches the account with a row lock.
func (r *GormWalletRepository) GetAccountByDesignerIDForUpdate(designerID uint) (*models.WalletAccount, error) {
	if designerID == 0 {
		return nil, nil
	}
	var account models.WalletAccount
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("designer_id = ?", designerID).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetAccountsByDesignerIDs fetches accounts in batch.
func (r *GormWalletRepository) GetAccountsByDesignerIDs(designerIDs []uint) ([]models.WalletAccount, error) {
	if len(designerIDs) == 0 {
		return []models.WalletAccount{}, nil
	}
	var accounts []models.WalletAccount
	if err := r.db.Where("designer_id IN ?", designerIDs).Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// CreateAccount inserts a wallet account.
func (r *GormWalletRepository) CreateAccount(account *models.WalletAccount) error {
	return r.db.Create(account).Error
}

// UpdateAccount saves a wallet account.
func (r *GormWalletRepository) UpdateAccount(account *models.WalletAccount) error {
	return r.db.Save(account).Error
}

// CreateEntry appends a ledger entry.
func (r *GormWalletRepository) CreateEntry(entry *models.LedgerEntry) error {
	return r.db.Create(entry).Error
}

// UpdateEntry saves a ledger entry. Only the status field of an existing row
// ever changes; amounts are immutable once written.
func (r *GormWalletRepository) UpdateEntry(entry *models.LedgerEntry) error {
	return r.db.Save(entry).Error
}

// GetEntryByReference fetches a ledger entry by its unique reference.
func (r *GormWalletRepository) GetEntryByReference(reference string) (*models.LedgerEntry, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil
	}
	var entry models.LedgerEntry
	if err := r.db.Where("reference = ?", reference).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// ListEntries pages through ledger entries.
func (r *GormWalletRepository) ListEntries(filter LedgerListFilter) ([]models.LedgerEntry, int64, error) {
	query := r.db.Model(&models.LedgerEntry{})
	if filter.DesignerID != 0 {
		query = query.Where("designer_id = ?", filter.DesignerID)
	}
	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
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

	var entries []models.LedgerEntry
	if err := query.Order("id desc").Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ListEntriesByDesigner returns the full ledger for one designer in insert
// order, for reconciliation folds.
func (r *GormWalletRepository) ListEntriesByDesigner(designerID uint) ([]models.LedgerEntry, error) {
	if designerID == 0 {
		return []models.LedgerEntry{}, nil
	}
	var entries []models.LedgerEntry
	if err := r.db.Where("designer_id = ?", designerID).Order("id asc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
