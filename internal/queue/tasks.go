package queue

import (
	"encoding/json"

	"github.com/baguri-ro/baguri-api/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderSettle credits designer wallets for a paid order.
	TaskOrderSettle = constants.TaskOrderSettle
	// TaskWalletReconcile refolds a designer's ledger into the wallet aggregate.
	TaskWalletReconcile = constants.TaskWalletReconcile
	// TaskWithdrawalPayout pushes an approved withdrawal to the payout channel.
	TaskWithdrawalPayout = constants.TaskWithdrawalPayout
	// TaskOrderExpire cancels unpaid orders past their expiry.
	TaskOrderExpire = constants.TaskOrderExpire
)

// OrderSettlePayload identifies the order to settle.
type OrderSettlePayload struct {
	OrderID uint `json:"order_id"`
}

// WalletReconcilePayload identifies the wallet to reconcile. DesignerID 0
// means reconcile every wallet.
type WalletReconcilePayload struct {
	DesignerID uint `json:"designer_id"`
}

// WithdrawalPayoutPayload identifies the withdrawal to pay out.
type WithdrawalPayoutPayload struct {
	WithdrawalID uint `json:"withdrawal_id"`
}

// OrderExpirePayload bounds one expiry sweep.
type OrderExpirePayload struct {
	Limit int `json:"limit"`
}

// NewOrderSettleTask builds an order settlement task.
func NewOrderSettleTask(payload OrderSettlePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderSettle, body), nil
}

// NewWalletReconcileTask builds a wallet reconciliation task.
func NewWalletReconcileTask(payload WalletReconcilePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskWalletReconcile, body), nil
}

// NewWithdrawalPayoutTask builds a withdrawal payout task.
func NewWithdrawalPayoutTask(payload WithdrawalPayoutPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskWithdrawalPayout, body), nil
}

// NewOrderExpireTask builds an order expiry sweep task.
func NewOrderExpireTask(payload OrderExpirePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderExpire, body), nil
}
