package constants

// Order status values
const (
	OrderStatusPendingPayment = "pending_payment"
	OrderStatusPaid           = "paid"
	OrderStatusSettled        = "settled"
	OrderStatusCanceled       = "canceled"
)

// Order item settlement status values
const (
	SettlementStatusPending = "pending"
	SettlementStatusSettled = "settled"
	SettlementStatusFailed  = "failed"
)

// Designer status values
const (
	DesignerStatusPending  = "pending"
	DesignerStatusApproved = "approved"
	DesignerStatusRejected = "rejected"
)

// Product status values
const (
	ProductStatusDraft    = "draft"
	ProductStatusActive   = "active"
	ProductStatusArchived = "archived"
)

// Unlimited stock marker
const (
	ProductStockUnlimited = -1
)

// Ledger entry types
const (
	LedgerTypeSaleCredit                  = "sale_credit"
	LedgerTypeWithdrawalRequest           = "withdrawal_request"
	LedgerTypeWithdrawalCompleted         = "withdrawal_completed"
	LedgerTypeWithdrawalRejectedReversal  = "withdrawal_rejected_reversal"
)

// Ledger entry status values
const (
	LedgerStatusPending   = "pending"
	LedgerStatusCompleted = "completed"
	LedgerStatusFailed    = "failed"
)

// Withdrawal request status values
const (
	WithdrawalStatusRequested = "requested"
	WithdrawalStatusCompleted = "completed"
	WithdrawalStatusRejected  = "rejected"
)

// Withdrawal payout channels
const (
	WithdrawalChannelBankTransfer = "bank_transfer"
	WithdrawalChannelStripe       = "stripe"
)

// Withdrawal review actions
const (
	WithdrawalActionApprove = "approve"
	WithdrawalActionReject  = "reject"
)

// Payment provider
const (
	PaymentProviderStripe = "stripe"
)

// Queue names and task types
const (
	QueueDefault         = "default"
	TaskOrderSettle      = "order:settle"
	TaskWalletReconcile  = "wallet:reconcile"
	TaskWithdrawalPayout = "withdrawal:payout"
	TaskOrderExpire      = "order:timeout_cancel"
)

// Cache defaults
const (
	RedisPrefixDefault = "bg"
)

// Setting keys
const (
	SettingKeyWithdrawalConfig            = "withdrawal_config"
	SettingFieldWithdrawalMinAmount       = "min_amount"
	SettingKeyCommissionConfig            = "commission_config"
	SettingFieldCommissionPayoutAutomatic = "payout_automatic"
)

// Currency defaults
const (
	SiteCurrencyDefault = "RON"
)
