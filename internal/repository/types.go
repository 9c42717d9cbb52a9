package repository

import "time"

// DesignerListFilter filters designer listing queries.
type DesignerListFilter struct {
	Page        int
	PageSize    int
	Status      string
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// ProductListFilter filters product listing queries.
type ProductListFilter struct {
	Page       int
	PageSize   int
	DesignerID uint
	Status     string
	Search     string
	OnlyActive bool
}

// OrderListFilter filters order listing queries.
type OrderListFilter struct {
	Page          int
	PageSize      int
	Status        string
	OrderNo       string
	CustomerEmail string
	DesignerID    uint
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// LedgerListFilter filters ledger entry queries.
type LedgerListFilter struct {
	Page        int
	PageSize    int
	DesignerID  uint
	OrderID     uint
	Type        string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// WithdrawalListFilter filters withdrawal request queries.
type WithdrawalListFilter struct {
	Page        int
	PageSize    int
	DesignerID  uint
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
