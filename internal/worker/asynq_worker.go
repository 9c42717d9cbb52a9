package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/baguri-ro/baguri-api/internal/constants"
	"github.com/baguri-ro/baguri-api/internal/logger"
	"github.com/baguri-ro/baguri-api/internal/provider"
	"github.com/baguri-ro/baguri-api/internal/queue"
	"github.com/baguri-ro/baguri-api/internal/repository"
	"github.com/baguri-ro/baguri-api/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer handles queued tasks.
type Consumer struct {
	*provider.Container
}

// NewConsumer builds a consumer.
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register binds task handlers.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderSettle, c.handleOrderSettle)
	mux.HandleFunc(queue.TaskWalletReconcile, c.handleWalletReconcile)
	mux.HandleFunc(queue.TaskWithdrawalPayout, c.handleWithdrawalPayout)
	mux.HandleFunc(queue.TaskOrderExpire, c.handleOrderExpire)
}

func (c *Consumer) handleOrderSettle(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.OrderSettlePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_settle_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_settle_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	result, err := c.SettlementService.SettleOrder(payload.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			logger.Debugw("worker_order_settle_skip_order_not_found", "order_id", payload.OrderID)
			return nil
		case errors.Is(err, service.ErrSettlementOrderNotPaid):
			logger.Debugw("worker_order_settle_skip_not_paid", "order_id", payload.OrderID)
			return nil
		default:
			// Retry; the per-item ledger references keep a rerun idempotent.
			logger.Warnw("worker_order_settle_failed", "order_id", payload.OrderID, "error", err)
			return err
		}
	}
	logger.Infow("worker_order_settled",
		"order_id", payload.OrderID,
		"settled", result.SettledItems,
		"skipped", result.SkippedItems,
	)
	return nil
}

func (c *Consumer) handleWalletReconcile(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.WalletReconcilePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_wallet_reconcile_unmarshal_failed", "error", err)
		return err
	}
	if payload.DesignerID == 0 {
		return c.reconcileAllWallets()
	}
	result, err := c.WalletService.Reconcile(payload.DesignerID)
	if err != nil {
		if errors.Is(err, service.ErrWalletAccountNotFound) {
			logger.Debugw("worker_wallet_reconcile_skip_no_account", "designer_id", payload.DesignerID)
			return nil
		}
		logger.Warnw("worker_wallet_reconcile_failed", "designer_id", payload.DesignerID, "error", err)
		return err
	}
	if result.Drifted {
		logger.Warnw("worker_wallet_reconcile_repaired",
			"designer_id", payload.DesignerID,
			"balance", result.Balance.String(),
		)
	}
	return nil
}

func (c *Consumer) reconcileAllWallets() error {
	page := 1
	const pageSize = 200
	var failed int
	for {
		designers, total, err := c.DesignerService.List(repository.DesignerListFilter{
			Status:   constants.DesignerStatusApproved,
			Page:     page,
			PageSize: pageSize,
		})
		if err != nil {
			return err
		}
		for i := range designers {
			if _, err := c.WalletService.Reconcile(designers[i].ID); err != nil {
				failed++
				logger.Warnw("worker_wallet_reconcile_one_failed", "designer_id", designers[i].ID, "error", err)
			}
		}
		if int64(page*pageSize) >= total || len(designers) == 0 {
			break
		}
		page++
	}
	if failed > 0 {
		logger.Warnw("worker_wallet_reconcile_sweep_partial", "failed", failed)
	}
	return nil
}

func (c *Consumer) handleWithdrawalPayout(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.WithdrawalPayoutPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_withdrawal_payout_unmarshal_failed", "error", err)
		return err
	}
	if payload.WithdrawalID == 0 {
		return nil
	}
	if err := c.WithdrawalService.RetryPayout(payload.WithdrawalID); err != nil {
		switch {
		case errors.Is(err, service.ErrWithdrawalNotFound):
			logger.Debugw("worker_withdrawal_payout_skip_not_found", "withdrawal_id", payload.WithdrawalID)
			return nil
		case errors.Is(err, service.ErrWithdrawalStatusInvalid):
			logger.Debugw("worker_withdrawal_payout_skip_not_completed", "withdrawal_id", payload.WithdrawalID)
			return nil
		default:
			logger.Warnw("worker_withdrawal_payout_failed", "withdrawal_id", payload.WithdrawalID, "error", err)
			return err
		}
	}
	return nil
}

func (c *Consumer) handleOrderExpire(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.OrderExpirePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_expire_unmarshal_failed", "error", err)
		return err
	}
	canceled, err := c.OrderService.CancelExpired(payload.Limit)
	if err != nil {
		logger.Warnw("worker_order_expire_failed", "error", err)
		return err
	}
	if canceled > 0 {
		logger.Infow("worker_orders_expired", "canceled", canceled)
	}
	return nil
}
