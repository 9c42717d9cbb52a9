package service

import "errors"

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrNotFound           = errors.New("record not found")
)

// Designer errors
var (
	ErrDesignerNotFound      = errors.New("designer not found")
	ErrDesignerNotApproved   = errors.New("designer not approved")
	ErrDesignerStatusInvalid = errors.New("designer status invalid")
	ErrDesignerEmailTaken    = errors.New("designer email already registered")
	ErrDesignerSlugTaken     = errors.New("designer slug already taken")
)

// Product errors
var (
	ErrProductNotFound     = errors.New("product not found")
	ErrProductInvalid      = errors.New("product input invalid")
	ErrProductNotOwned     = errors.New("product belongs to another designer")
	ErrProductNotActive    = errors.New("product not active")
	ErrProductOutOfStock   = errors.New("product out of stock")
	ErrProductSlugTaken    = errors.New("product slug already taken")
	ErrProductPriceInvalid = errors.New("product price invalid")
)

// Order errors
var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderEmpty         = errors.New("order has no items")
	ErrOrderStatusInvalid = errors.New("order status invalid")
	ErrOrderUpdateFailed  = errors.New("order update failed")
	ErrOrderFetchFailed   = errors.New("order fetch failed")
)

// Wallet and ledger errors
var (
	ErrWalletAccountNotFound     = errors.New("wallet account not found")
	ErrWalletInvalidAmount       = errors.New("wallet amount invalid")
	ErrWalletInsufficientBalance = errors.New("wallet balance insufficient")
	ErrWalletBalanceConflict     = errors.New("wallet balance changed concurrently")
	ErrWalletAccountUpdateFailed = errors.New("wallet account update failed")
	ErrWalletEntryCreateFailed   = errors.New("ledger entry create failed")
	ErrWalletInvariantBroken     = errors.New("wallet invariant violated")
)

// Settlement errors
var (
	ErrSettlementOrderNotPaid = errors.New("order not paid, settlement refused")
	ErrSettlementItemFailed   = errors.New("one or more items failed to settle")
)

// Withdrawal errors
var (
	ErrWithdrawalNotFound       = errors.New("withdrawal request not found")
	ErrWithdrawalBelowMinimum   = errors.New("withdrawal amount below minimum")
	ErrWithdrawalStatusInvalid  = errors.New("withdrawal request already processed")
	ErrWithdrawalAccountMissing = errors.New("withdrawal payout account missing")
)

// Payment errors
var (
	ErrPaymentSessionCreateFailed = errors.New("payment session create failed")
	ErrWebhookSignatureInvalid    = errors.New("webhook signature invalid")
	ErrWebhookPayloadInvalid      = errors.New("webhook payload invalid")
)
