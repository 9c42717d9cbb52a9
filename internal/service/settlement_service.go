package service

import (
	"time"

	"github.com/baguri-ro/baguri-api/internal/commission"
	"github.com/baguri-ro/baguri-api/internal/constants"
	"github.com/baguri-ro/baguri-api/internal/logger"
	"github.com/baguri-ro/baguri-api/internal/models"
	"github.com/baguri-ro/baguri-api/internal/repository"

	"gorm.io/gorm"
)

// SettlementService credits designer wallets for paid orders. Each item is
// settled in its own transaction with the wallet row locked, so a webhook
// retry or a crashed run can always be replayed safely.
type SettlementService struct {
	orderRepo    repository.OrderRepository
	walletRepo   repository.WalletRepository
	designerRepo repository.DesignerRepository
}

// SettlementResult summarizes one settlement run.
type SettlementResult struct {
	OrderID      uint   `json:"order_id"`
	SettledItems []uint `json:"settled_items"`
	SkippedItems []uint `json:"skipped_items"`
	FailedItems  []uint `json:"failed_items"`
}

// NewSettlementService builds a settlement service.
func NewSettlementService(
	orderRepo repository.OrderRepository,
	walletRepo repository.WalletRepository,
	designerRepo repository.DesignerRepository,
) *SettlementService {
	return &SettlementService{
		orderRepo:    orderRepo,
		walletRepo:   walletRepo,
		designerRepo: designerRepo,
	}
}

// SettleOrder settles every unsettled item of a paid order. Already settled
// items are skipped via their unique ledger reference, so the operation is
// idempotent under webhook retries. Items whose designer cannot receive the
// credit are marked failed and left for reconciliation; the rest still settle.
func (s *SettlementService) SettleOrder(orderID uint) (*SettlementResult, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status == constants.OrderStatusSettled {
		return &SettlementResult{OrderID: orderID}, nil
	}
	if order.Status != constants.OrderStatusPaid {
		return nil, ErrSettlementOrderNotPaid
	}

	result := &SettlementResult{OrderID: orderID}
	for i := range order.Items {
		item := &order.Items[i]
		if item.SettlementStatus == constants.SettlementStatusSettled {
			result.SkippedItems = append(result.SkippedItems, item.ID)
			continue
		}
		credited, err := s.settleItem(order, item)
		if err != nil {
			logger.Errorw("order_item_settlement_failed",
				"order_id", order.ID,
				"order_item_id", item.ID,
				"designer_id", item.DesignerID,
				"error", err,
			)
			s.markItemFailed(item)
			result.FailedItems = append(result.FailedItems, item.ID)
			continue
		}
		if credited {
			result.SettledItems = append(result.SettledItems, item.ID)
		} else {
			result.SkippedItems = append(result.SkippedItems, item.ID)
		}
	}

	if len(result.FailedItems) == 0 {
		now := time.Now()
		order.Status = constants.OrderStatusSettled
		order.SettledAt = &now
		order.UpdatedAt = now
		if err := s.orderRepo.Update(order); err != nil {
			return result, ErrOrderUpdateFailed
		}
		return result, nil
	}
	return result, ErrSettlementItemFailed
}

// settleItem credits one item inside a transaction. Returns false when the
// item had already been credited by an earlier run.
func (s *SettlementService) settleItem(order *models.Order, item *models.OrderItem) (bool, error) {
	credited := false
	err := s.walletRepo.Transaction(func(tx *gorm.DB) error {
		walletRepo := s.walletRepo.WithTx(tx)
		designerRepo := s.designerRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)

		designer, err := designerRepo.GetByIDForUpdate(item.DesignerID)
		if err != nil {
			return err
		}
		if designer == nil {
			return ErrDesignerNotFound
		}
		if designer.Status != constants.DesignerStatusApproved {
			return ErrDesignerNotApproved
		}

		now := time.Now()
		account, err := ensureAccountForUpdate(walletRepo, designer.ID, now)
		if err != nil {
			return err
		}

		reference := buildSaleReference(order.ID, item.ID)
		existing, err := walletRepo.GetEntryByReference(reference)
		if err != nil {
			return err
		}
		if existing != nil {
			// Replay: the credit landed before, only the item flag may be
			// missing.
			return s.markItemSettledTx(orderRepo, item, now)
		}

		// Tier comes from lifetime sales before this order's gross lands.
		gross := item.GrossAmount.Decimal.Round(2)
		tier := commission.Resolve(designer.LifetimeSales.Decimal)
		earnings, fee := commission.Split(gross, tier)

		before := account.Balance.Decimal.Round(2)
		after := before.Add(earnings).Round(2)

		entry := &models.LedgerEntry{
			AccountID:      account.ID,
			DesignerID:     designer.ID,
			Type:           constants.LedgerTypeSaleCredit,
			Amount:         models.NewMoneyFromDecimal(earnings),
			BalanceBefore:  models.NewMoneyFromDecimal(before),
			BalanceAfter:   models.NewMoneyFromDecimal(after),
			Status:         constants.LedgerStatusCompleted,
			Reference:      reference,
			OrderID:        &order.ID,
			OrderItemID:    &item.ID,
			CommissionTier: tier.Name,
			GrossAmount:    models.NewMoneyFromDecimal(gross),
			PlatformFee:    models.NewMoneyFromDecimal(fee),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := walletRepo.CreateEntry(entry); err != nil {
			return ErrWalletEntryCreateFailed
		}

		account.Balance = models.NewMoneyFromDecimal(after)
		account.TotalEarnings = models.NewMoneyFromDecimal(account.TotalEarnings.Decimal.Add(earnings).Round(2))
		account.UpdatedAt = now
		if err := walletRepo.UpdateAccount(account); err != nil {
			return ErrWalletAccountUpdateFailed
		}
		if err := CheckInvariant(account); err != nil {
			return err
		}

		designer.LifetimeSales = models.NewMoneyFromDecimal(designer.LifetimeSales.Decimal.Add(gross).Round(2))
		designer.UpdatedAt = now
		if err := designerRepo.Update(designer); err != nil {
			return err
		}

		if err := s.markItemSettledTx(orderRepo, item, now); err != nil {
			return err
		}
		credited = true

		logger.Infow("order_item_settled",
			"order_id", order.ID,
			"order_item_id", item.ID,
			"designer_id", designer.ID,
			"tier", tier.Name,
			"gross", gross.StringFixed(2),
			"earnings", earnings.StringFixed(2),
			"platform_fee", fee.StringFixed(2),
		)
		return nil
	})
	return credited, err
}

func (s *SettlementService) markItemSettledTx(orderRepo *repository.GormOrderRepository, item *models.OrderItem, now time.Time) error {
	if item.SettlementStatus == constants.SettlementStatusSettled {
		return nil
	}
	item.SettlementStatus = constants.SettlementStatusSettled
	item.SettledAt = &now
	item.UpdatedAt = now
	return orderRepo.UpdateItem(item)
}

func (s *SettlementService) markItemFailed(item *models.OrderItem) {
	item.SettlementStatus = constants.SettlementStatusFailed
	item.UpdatedAt = time.Now()
	if err := s.orderRepo.UpdateItem(item); err != nil {
		logger.Errorw("order_item_mark_failed_error", "order_item_id", item.ID, "error", err)
	}
}
