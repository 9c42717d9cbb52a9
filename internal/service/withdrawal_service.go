package service

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/baguri-ro/baguri-api/internal/config"
	"github.com/baguri-ro/baguri-api/internal/constants"
	"github.com/baguri-ro/baguri-api/internal/logger"
	"github.com/baguri-ro/baguri-api/internal/models"
	"github.com/baguri-ro/baguri-api/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const withdrawalDefaultMinAmount = "50"

// PayoutClient sends approved withdrawals to the payment provider.
type PayoutClient interface {
	Payout(request *models.WithdrawalRequest) (string, error)
}

// WithdrawalService runs the designer payout workflow: request, admin
// approve, admin reject. Every state change is mirrored in the ledger.
type WithdrawalService struct {
	cfg            *config.Config
	walletRepo     repository.WalletRepository
	withdrawalRepo repository.WithdrawalRepository
	designerRepo   repository.DesignerRepository
	settingRepo    repository.SettingRepository
	payout         PayoutClient
}

// WithdrawalRequestInput is the designer-side request payload.
type WithdrawalRequestInput struct {
	DesignerID  uint
	Amount      models.Money
	Channel     string
	AccountInfo string
}

// NewWithdrawalService builds a withdrawal service. payout may be nil when
// payouts are settled manually outside the system.
func NewWithdrawalService(
	cfg *config.Config,
	walletRepo repository.WalletRepository,
	withdrawalRepo repository.WithdrawalRepository,
	designerRepo repository.DesignerRepository,
	settingRepo repository.SettingRepository,
	payout PayoutClient,
) *WithdrawalService {
	return &WithdrawalService{
		cfg:            cfg,
		walletRepo:     walletRepo,
		withdrawalRepo: withdrawalRepo,
		designerRepo:   designerRepo,
		settingRepo:    settingRepo,
		payout:         payout,
	}
}

// MinAmount returns the active minimum withdrawal amount: the settings value
// when present, otherwise the config default.
func (s *WithdrawalService) MinAmount() decimal.Decimal {
	fallback := withdrawalDefaultMinAmount
	if s.cfg != nil && strings.TrimSpace(s.cfg.Withdrawal.MinAmount) != "" {
		fallback = s.cfg.Withdrawal.MinAmount
	}
	min, err := decimal.NewFromString(fallback)
	if err != nil {
		min = decimal.NewFromInt(50)
	}

	if s.settingRepo == nil {
		return min
	}
	setting, err := s.settingRepo.GetByKey(constants.SettingKeyWithdrawalConfig)
	if err != nil || setting == nil {
		return min
	}
	var payload struct {
		MinAmount string `json:"min_amount"`
	}
	if err := json.Unmarshal(setting.ValueJSON, &payload); err != nil {
		return min
	}
	if v, err := decimal.NewFromString(strings.TrimSpace(payload.MinAmount)); err == nil && v.GreaterThan(decimal.Zero) {
		return v
	}
	return min
}

// PayoutAutomatic reports whether approved withdrawals are pushed to the
// provider right away. Finance can switch to manual payouts through the
// commission settings; deferred requests stay visible to the payout job.
func (s *WithdrawalService) PayoutAutomatic() bool {
	if s.settingRepo == nil {
		return true
	}
	setting, err := s.settingRepo.GetByKey(constants.SettingKeyCommissionConfig)
	if err != nil || setting == nil {
		return true
	}
	var payload struct {
		PayoutAutomatic *bool `json:"payout_automatic"`
	}
	if err := json.Unmarshal(setting.ValueJSON, &payload); err != nil || payload.PayoutAutomatic == nil {
		return true
	}
	return *payload.PayoutAutomatic
}

// Request creates a withdrawal request and moves the amount from the
// available balance into pending, atomically. An amount the balance plainly
// cannot cover is rejected up front; a concurrent request that drains the
// balance between that check and the row lock loses with a conflict error.
// Either way the losing request leaves no state behind.
func (s *WithdrawalService) Request(input WithdrawalRequestInput) (*models.WithdrawalRequest, error) {
	if input.DesignerID == 0 {
		return nil, ErrDesignerNotFound
	}
	amount := input.Amount.Decimal.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrWalletInvalidAmount
	}
	if amount.LessThan(s.MinAmount()) {
		return nil, ErrWithdrawalBelowMinimum
	}
	if strings.TrimSpace(input.AccountInfo) == "" {
		return nil, ErrWithdrawalAccountMissing
	}
	channel := strings.TrimSpace(input.Channel)
	if channel == "" {
		channel = constants.WithdrawalChannelBankTransfer
	}

	designer, err := s.designerRepo.GetByID(input.DesignerID)
	if err != nil {
		return nil, err
	}
	if designer == nil {
		return nil, ErrDesignerNotFound
	}
	if designer.Status != constants.DesignerStatusApproved {
		return nil, ErrDesignerNotApproved
	}

	account, err := s.walletRepo.GetAccountByDesignerID(input.DesignerID)
	if err != nil {
		return nil, err
	}
	if account == nil || account.Balance.Decimal.Round(2).LessThan(amount) {
		return nil, ErrWalletInsufficientBalance
	}

	var request *models.WithdrawalRequest
	err = s.walletRepo.Transaction(func(tx *gorm.DB) error {
		walletRepo := s.walletRepo.WithTx(tx)
		withdrawalRepo := s.withdrawalRepo.WithTx(tx)

		now := time.Now()
		account, err := ensureAccountForUpdate(walletRepo, input.DesignerID, now)
		if err != nil {
			return err
		}

		// The unlocked check passed, so a shortfall here means another
		// writer drained the balance in between.
		available := account.Balance.Decimal.Round(2)
		if available.LessThan(amount) {
			return ErrWalletBalanceConflict
		}

		request = &models.WithdrawalRequest{
			DesignerID:  input.DesignerID,
			Amount:      models.NewMoneyFromDecimal(amount),
			Channel:     channel,
			AccountInfo: strings.TrimSpace(input.AccountInfo),
			Status:      constants.WithdrawalStatusRequested,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := withdrawalRepo.Create(request); err != nil {
			return err
		}

		before := account.Balance.Decimal.Round(2)
		after := before.Sub(amount).Round(2)
		entry := &models.LedgerEntry{
			AccountID:     account.ID,
			DesignerID:    input.DesignerID,
			Type:          constants.LedgerTypeWithdrawalRequest,
			Amount:        models.NewMoneyFromDecimal(amount.Neg()),
			BalanceBefore: models.NewMoneyFromDecimal(before),
			BalanceAfter:  models.NewMoneyFromDecimal(after),
			Status:        constants.LedgerStatusPending,
			Reference:     buildWithdrawalReference(request.ID, constants.LedgerTypeWithdrawalRequest),
			WithdrawalID:  &request.ID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := walletRepo.CreateEntry(entry); err != nil {
			return ErrWalletEntryCreateFailed
		}

		account.Balance = models.NewMoneyFromDecimal(after)
		account.PendingBalance = models.NewMoneyFromDecimal(account.PendingBalance.Decimal.Add(amount).Round(2))
		account.UpdatedAt = now
		if err := walletRepo.UpdateAccount(account); err != nil {
			return ErrWalletAccountUpdateFailed
		}
		return CheckInvariant(account)
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("withdrawal_requested",
		"withdrawal_id", request.ID,
		"designer_id", input.DesignerID,
		"amount", amount.StringFixed(2),
		"channel", channel,
	)
	return request, nil
}

// Approve completes a requested withdrawal: the pending amount becomes
// withdrawn, the request's ledger entry is marked completed, and a separate
// completed entry records the payout. The payout call to the provider runs
// after commit; if it fails the request stays completed in the ledger with
// an empty payout reference for the payout job to retry.
func (s *WithdrawalService) Approve(withdrawalID, adminID uint) (*models.WithdrawalRequest, error) {
	var request *models.WithdrawalRequest
	err := s.walletRepo.Transaction(func(tx *gorm.DB) error {
		walletRepo := s.walletRepo.WithTx(tx)
		withdrawalRepo := s.withdrawalRepo.WithTx(tx)

		var err error
		request, err = withdrawalRepo.GetByIDForUpdate(withdrawalID)
		if err != nil {
			return err
		}
		if request == nil {
			return ErrWithdrawalNotFound
		}
		if request.Status != constants.WithdrawalStatusRequested {
			return ErrWithdrawalStatusInvalid
		}

		now := time.Now()
		account, err := ensureAccountForUpdate(walletRepo, request.DesignerID, now)
		if err != nil {
			return err
		}

		amount := request.Amount.Decimal.Round(2)
		reference := buildWithdrawalReference(request.ID, constants.LedgerTypeWithdrawalCompleted)
		if existing, err := walletRepo.GetEntryByReference(reference); err != nil {
			return err
		} else if existing != nil {
			return ErrWithdrawalStatusInvalid
		}

		// The completed entry debits pending, not balance; the balance
		// already moved when the request was made.
		balance := account.Balance.Decimal.Round(2)
		entry := &models.LedgerEntry{
			AccountID:     account.ID,
			DesignerID:    request.DesignerID,
			Type:          constants.LedgerTypeWithdrawalCompleted,
			Amount:        models.NewMoneyFromDecimal(amount.Neg()),
			BalanceBefore: models.NewMoneyFromDecimal(balance),
			BalanceAfter:  models.NewMoneyFromDecimal(balance),
			Status:        constants.LedgerStatusCompleted,
			Reference:     reference,
			WithdrawalID:  &request.ID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := walletRepo.CreateEntry(entry); err != nil {
			return ErrWalletEntryCreateFailed
		}

		if requestEntry, err := walletRepo.GetEntryByReference(
			buildWithdrawalReference(request.ID, constants.LedgerTypeWithdrawalRequest),
		); err != nil {
			return err
		} else if requestEntry != nil && requestEntry.Status == constants.LedgerStatusPending {
			requestEntry.Status = constants.LedgerStatusCompleted
			requestEntry.UpdatedAt = now
			if err := walletRepo.UpdateEntry(requestEntry); err != nil {
				return err
			}
		}

		account.PendingBalance = models.NewMoneyFromDecimal(account.PendingBalance.Decimal.Sub(amount).Round(2))
		account.TotalWithdrawn = models.NewMoneyFromDecimal(account.TotalWithdrawn.Decimal.Add(amount).Round(2))
		account.UpdatedAt = now
		if err := walletRepo.UpdateAccount(account); err != nil {
			return ErrWalletAccountUpdateFailed
		}
		if err := CheckInvariant(account); err != nil {
			return err
		}

		request.Status = constants.WithdrawalStatusCompleted
		request.ProcessedBy = &adminID
		request.ProcessedAt = &now
		request.UpdatedAt = now
		return withdrawalRepo.Update(request)
	})
	if err != nil {
		return nil, err
	}

	if s.payout != nil && s.PayoutAutomatic() {
		ref, err := s.payout.Payout(request)
		if err != nil {
			logger.Warnw("withdrawal_payout_deferred",
				"withdrawal_id", request.ID,
				"error", err,
			)
		} else if ref != "" {
			request.PayoutRef = ref
			if err := s.withdrawalRepo.Update(request); err != nil {
				logger.Errorw("withdrawal_payout_ref_save_failed", "withdrawal_id", request.ID, "error", err)
			}
		}
	}

	logger.Infow("withdrawal_approved",
		"withdrawal_id", request.ID,
		"designer_id", request.DesignerID,
		"admin_id", adminID,
		"amount", request.Amount.String(),
	)
	return request, nil
}

// Reject returns a requested withdrawal's amount to the available balance.
// The original request entry is marked failed and a separate reversal entry
// is appended, leaving a two-entry audit trail; nothing is rewritten.
func (s *WithdrawalService) Reject(withdrawalID, adminID uint, reason string) (*models.WithdrawalRequest, error) {
	var request *models.WithdrawalRequest
	err := s.walletRepo.Transaction(func(tx *gorm.DB) error {
		walletRepo := s.walletRepo.WithTx(tx)
		withdrawalRepo := s.withdrawalRepo.WithTx(tx)

		var err error
		request, err = withdrawalRepo.GetByIDForUpdate(withdrawalID)
		if err != nil {
			return err
		}
		if request == nil {
			return ErrWithdrawalNotFound
		}
		if request.Status != constants.WithdrawalStatusRequested {
			return ErrWithdrawalStatusInvalid
		}

		now := time.Now()
		account, err := ensureAccountForUpdate(walletRepo, request.DesignerID, now)
		if err != nil {
			return err
		}

		amount := request.Amount.Decimal.Round(2)
		reference := buildWithdrawalReference(request.ID, constants.LedgerTypeWithdrawalRejectedReversal)
		if existing, err := walletRepo.GetEntryByReference(reference); err != nil {
			return err
		} else if existing != nil {
			return ErrWithdrawalStatusInvalid
		}

		if requestEntry, err := walletRepo.GetEntryByReference(
			buildWithdrawalReference(request.ID, constants.LedgerTypeWithdrawalRequest),
		); err != nil {
			return err
		} else if requestEntry != nil && requestEntry.Status == constants.LedgerStatusPending {
			requestEntry.Status = constants.LedgerStatusFailed
			requestEntry.UpdatedAt = now
			if err := walletRepo.UpdateEntry(requestEntry); err != nil {
				return err
			}
		}

		before := account.Balance.Decimal.Round(2)
		after := before.Add(amount).Round(2)
		entry := &models.LedgerEntry{
			AccountID:     account.ID,
			DesignerID:    request.DesignerID,
			Type:          constants.LedgerTypeWithdrawalRejectedReversal,
			Amount:        models.NewMoneyFromDecimal(amount),
			BalanceBefore: models.NewMoneyFromDecimal(before),
			BalanceAfter:  models.NewMoneyFromDecimal(after),
			Status:        constants.LedgerStatusCompleted,
			Reference:     reference,
			WithdrawalID:  &request.ID,
			Remark:        strings.TrimSpace(reason),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := walletRepo.CreateEntry(entry); err != nil {
			return ErrWalletEntryCreateFailed
		}

		account.Balance = models.NewMoneyFromDecimal(after)
		account.PendingBalance = models.NewMoneyFromDecimal(account.PendingBalance.Decimal.Sub(amount).Round(2))
		account.UpdatedAt = now
		if err := walletRepo.UpdateAccount(account); err != nil {
			return ErrWalletAccountUpdateFailed
		}
		if err := CheckInvariant(account); err != nil {
			return err
		}

		request.Status = constants.WithdrawalStatusRejected
		request.RejectReason = strings.TrimSpace(reason)
		request.ProcessedBy = &adminID
		request.ProcessedAt = &now
		request.UpdatedAt = now
		return withdrawalRepo.Update(request)
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("withdrawal_rejected",
		"withdrawal_id", request.ID,
		"designer_id", request.DesignerID,
		"admin_id", adminID,
		"reason", request.RejectReason,
	)
	return request, nil
}

// RetryPayout re-sends a completed withdrawal whose payout never reached the
// provider. A request that already carries a payout reference is a no-op.
func (s *WithdrawalService) RetryPayout(withdrawalID uint) error {
	request, err := s.withdrawalRepo.GetByID(withdrawalID)
	if err != nil {
		return err
	}
	if request == nil {
		return ErrWithdrawalNotFound
	}
	if request.Status != constants.WithdrawalStatusCompleted {
		return ErrWithdrawalStatusInvalid
	}
	if request.PayoutRef != "" || s.payout == nil {
		return nil
	}

	ref, err := s.payout.Payout(request)
	if err != nil {
		return err
	}
	if ref == "" {
		return nil
	}
	request.PayoutRef = ref
	request.UpdatedAt = time.Now()
	if err := s.withdrawalRepo.Update(request); err != nil {
		return err
	}
	logger.Infow("withdrawal_payout_sent", "withdrawal_id", request.ID, "payout_ref", ref)
	return nil
}

// GetByID fetches one withdrawal request.
func (s *WithdrawalService) GetByID(id uint) (*models.WithdrawalRequest, error) {
	request, err := s.withdrawalRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, ErrWithdrawalNotFound
	}
	return request, nil
}

// List pages through withdrawal requests.
func (s *WithdrawalService) List(filter repository.WithdrawalListFilter) ([]models.WithdrawalRequest, int64, error) {
	return s.withdrawalRepo.List(filter)
}
