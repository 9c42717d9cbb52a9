package service

import (
	"fmt"
	"time"

	"github.com/baguri-ro/baguri-api/internal/commission"
	"github.com/baguri-ro/baguri-api/internal/constants"
	"github.com/baguri-ro/baguri-api/internal/logger"
	"github.com/baguri-ro/baguri-api/internal/models"
	"github.com/baguri-ro/baguri-api/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WalletService manages wallet accounts and ledger reads. The ledger is the
// source of truth; account columns are derived and repairable via Reconcile.
type WalletService struct {
	walletRepo   repository.WalletRepository
	designerRepo repository.DesignerRepository
}

// WalletSummary is the designer-facing balance view.
type WalletSummary struct {
	Account       *models.WalletAccount `json:"account"`
	Tier          string                `json:"tier"`
	TierPct       models.Money          `json:"tier_pct"`
	NextTier      string                `json:"next_tier,omitempty"`
	NextThreshold models.Money          `json:"next_threshold,omitempty"`
	LifetimeSales models.Money          `json:"lifetime_sales"`
}

// ReconcileResult reports what a ledger rebuild found.
type ReconcileResult struct {
	DesignerID uint         `json:"designer_id"`
	Drifted    bool         `json:"drifted"`
	Balance    models.Money `json:"balance"`
	Pending    models.Money `json:"pending_balance"`
	Earnings   models.Money `json:"total_earnings"`
	Withdrawn  models.Money `json:"total_withdrawn"`
}

// NewWalletService builds a wallet service.
func NewWalletService(
	walletRepo repository.WalletRepository,
	designerRepo repository.DesignerRepository,
) *WalletService {
	return &WalletService{
		walletRepo:   walletRepo,
		designerRepo: designerRepo,
	}
}

// GetAccount returns the designer's account, creating it lazily.
func (s *WalletService) GetAccount(designerID uint) (*models.WalletAccount, error) {
	if designerID == 0 {
		return nil, ErrWalletAccountNotFound
	}
	account, err := s.walletRepo.GetAccountByDesignerID(designerID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}
	now := time.Now()
	account = &models.WalletAccount{
		DesignerID: designerID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.walletRepo.CreateAccount(account); err != nil {
		return nil, err
	}
	return account, nil
}

// GetSummary returns balances plus the designer's current tier position.
func (s *WalletService) GetSummary(designerID uint) (*WalletSummary, error) {
	designer, err := s.designerRepo.GetByID(designerID)
	if err != nil {
		return nil, err
	}
	if designer == nil {
		return nil, ErrDesignerNotFound
	}
	account, err := s.GetAccount(designerID)
	if err != nil {
		return nil, err
	}

	lifetime := designer.LifetimeSales.Decimal
	tier := commission.Resolve(lifetime)
	summary := &WalletSummary{
		Account:       account,
		Tier:          tier.Name,
		TierPct:       models.NewMoneyFromDecimal(tier.DesignerPct),
		LifetimeSales: designer.LifetimeSales,
	}
	for _, t := range commission.Schedule() {
		if t.Threshold.GreaterThan(lifetime) {
			summary.NextTier = t.Name
			summary.NextThreshold = models.NewMoneyFromDecimal(t.Threshold)
			break
		}
	}
	return summary, nil
}

// ListEntries pages through a designer's ledger.
func (s *WalletService) ListEntries(filter repository.LedgerListFilter) ([]models.LedgerEntry, int64, error) {
	return s.walletRepo.ListEntries(filter)
}

// CheckInvariant verifies total_earnings - total_withdrawn ==
// balance + pending_balance for one account.
func CheckInvariant(account *models.WalletAccount) error {
	if account == nil {
		return ErrWalletAccountNotFound
	}
	lhs := account.TotalEarnings.Decimal.Sub(account.TotalWithdrawn.Decimal).Round(2)
	rhs := account.Balance.Decimal.Add(account.PendingBalance.Decimal).Round(2)
	if !lhs.Equal(rhs) {
		return fmt.Errorf("%w: earnings-withdrawn=%s balance+pending=%s",
			ErrWalletInvariantBroken, lhs.StringFixed(2), rhs.StringFixed(2))
	}
	return nil
}

// Reconcile rebuilds the account aggregates from the ledger and repairs any
// drift. Runs inside a transaction with the account row locked so settlement
// and withdrawals cannot interleave with the rebuild.
func (s *WalletService) Reconcile(designerID uint) (*ReconcileResult, error) {
	if designerID == 0 {
		return nil, ErrWalletAccountNotFound
	}
	if _, err := s.GetAccount(designerID); err != nil {
		return nil, err
	}

	var result *ReconcileResult
	err := s.walletRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.walletRepo.WithTx(tx)
		account, err := repo.GetAccountByDesignerIDForUpdate(designerID)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrWalletAccountNotFound
		}
		entries, err := repo.ListEntriesByDesigner(designerID)
		if err != nil {
			return err
		}

		balance, pending, earnings, withdrawn := foldLedger(entries)
		drifted := !balance.Equal(account.Balance.Decimal.Round(2)) ||
			!pending.Equal(account.PendingBalance.Decimal.Round(2)) ||
			!earnings.Equal(account.TotalEarnings.Decimal.Round(2)) ||
			!withdrawn.Equal(account.TotalWithdrawn.Decimal.Round(2))

		if drifted {
			logger.Warnw("wallet_reconcile_drift",
				"designer_id", designerID,
				"balance_db", account.Balance.String(),
				"balance_ledger", balance.StringFixed(2),
			)
			account.Balance = models.NewMoneyFromDecimal(balance)
			account.PendingBalance = models.NewMoneyFromDecimal(pending)
			account.TotalEarnings = models.NewMoneyFromDecimal(earnings)
			account.TotalWithdrawn = models.NewMoneyFromDecimal(withdrawn)
			account.UpdatedAt = time.Now()
			if err := repo.UpdateAccount(account); err != nil {
				return ErrWalletAccountUpdateFailed
			}
		}
		result = &ReconcileResult{
			DesignerID: designerID,
			Drifted:    drifted,
			Balance:    models.NewMoneyFromDecimal(balance),
			Pending:    models.NewMoneyFromDecimal(pending),
			Earnings:   models.NewMoneyFromDecimal(earnings),
			Withdrawn:  models.NewMoneyFromDecimal(withdrawn),
		}
		return CheckInvariant(account)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// foldLedger replays the ledger into the four aggregates. Entry amounts are
// signed; which bucket an entry touches depends on its type:
//
//	sale_credit                  balance += amt, earnings += amt
//	withdrawal_request           balance += amt (amt < 0), pending -= amt
//	withdrawal_completed         pending += amt (amt < 0), withdrawn -= amt
//	withdrawal_rejected_reversal balance += amt (amt > 0), pending -= amt
func foldLedger(entries []models.LedgerEntry) (balance, pending, earnings, withdrawn decimal.Decimal) {
	balance, pending = decimal.Zero, decimal.Zero
	earnings, withdrawn = decimal.Zero, decimal.Zero
	for _, e := range entries {
		amt := e.Amount.Decimal.Round(2)
		switch e.Type {
		case constants.LedgerTypeSaleCredit:
			if e.Status != constants.LedgerStatusCompleted {
				continue
			}
			balance = balance.Add(amt)
			earnings = earnings.Add(amt)
		case constants.LedgerTypeWithdrawalRequest:
			balance = balance.Add(amt)
			pending = pending.Sub(amt)
		case constants.LedgerTypeWithdrawalCompleted:
			pending = pending.Add(amt)
			withdrawn = withdrawn.Sub(amt)
		case constants.LedgerTypeWithdrawalRejectedReversal:
			balance = balance.Add(amt)
			pending = pending.Sub(amt)
		}
	}
	return balance.Round(2), pending.Round(2), earnings.Round(2), withdrawn.Round(2)
}

// ensureAccountForUpdate locks the account row, creating the account first if
// the designer never earned before.
func ensureAccountForUpdate(repo *repository.GormWalletRepository, designerID uint, now time.Time) (*models.WalletAccount, error) {
	account, err := repo.GetAccountByDesignerIDForUpdate(designerID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}
	account = &models.WalletAccount{
		DesignerID: designerID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := repo.CreateAccount(account); err != nil {
		return nil, err
	}
	locked, err := repo.GetAccountByDesignerIDForUpdate(designerID)
	if err != nil {
		return nil, err
	}
	if locked == nil {
		return nil, ErrWalletAccountNotFound
	}
	return locked, nil
}

// buildSaleReference builds the idempotency reference for one settled item.
func buildSaleReference(orderID, itemID uint) string {
	return fmt.Sprintf("order:%d:item:%d:%s", orderID, itemID, constants.LedgerTypeSaleCredit)
}

// buildWithdrawalReference builds the reference for one withdrawal stage.
func buildWithdrawalReference(withdrawalID uint, stage string) string {
	return fmt.Sprintf("withdrawal:%d:%s", withdrawalID, stage)
}
