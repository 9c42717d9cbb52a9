package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/baguri-ro/baguri-api/internal/constants"
	"github.com/baguri-ro/baguri-api/internal/models"
	"github.com/baguri-ro/baguri-api/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupWalletServiceTest(t *testing.T) (*WalletService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:wallet_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Designer{},
		&models.WalletAccount{},
		&models.LedgerEntry{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewWalletService(
		repository.NewWalletRepository(db),
		repository.NewDesignerRepository(db),
	), db
}

func createLedgerEntry(t *testing.T, db *gorm.DB, accountID, designerID uint, entryType, status, reference string, amount decimal.Decimal) {
	t.Helper()
	now := time.Now()
	entry := models.LedgerEntry{
		AccountID:  accountID,
		DesignerID: designerID,
		Type:       entryType,
		Amount:     models.NewMoneyFromDecimal(amount),
		Status:     status,
		Reference:  reference,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("create ledger entry failed: %v", err)
	}
}

func TestCheckInvariant(t *testing.T) {
	good := &models.WalletAccount{
		Balance:        models.NewMoneyFromDecimal(decimal.NewFromInt(80)),
		PendingBalance: models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
		TotalEarnings:  models.NewMoneyFromDecimal(decimal.NewFromInt(150)),
		TotalWithdrawn: models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
	}
	if err := CheckInvariant(good); err != nil {
		t.Fatalf("balanced account flagged: %v", err)
	}

	bad := &models.WalletAccount{
		Balance:       models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		TotalEarnings: models.NewMoneyFromDecimal(decimal.NewFromInt(90)),
	}
	if err := CheckInvariant(bad); !errors.Is(err, ErrWalletInvariantBroken) {
		t.Fatalf("expected invariant error, got: %v", err)
	}
}

func TestWalletServiceGetAccountCreatesLazily(t *testing.T) {
	svc, db := setupWalletServiceTest(t)
	createTestDesigner(t, db, 1, constants.DesignerStatusApproved, decimal.Zero)

	account, err := svc.GetAccount(1)
	if err != nil {
		t.Fatalf("get account failed: %v", err)
	}
	if account.ID == 0 || !account.Balance.Decimal.IsZero() {
		t.Fatalf("unexpected fresh account: %+v", account)
	}

	again, err := svc.GetAccount(1)
	if err != nil {
		t.Fatalf("second get failed: %v", err)
	}
	if again.ID != account.ID {
		t.Fatalf("second get created a new account")
	}
}

func TestWalletServiceGetSummaryTierPosition(t *testing.T) {
	svc, db := setupWalletServiceTest(t)
	createTestDesigner(t, db, 2, constants.DesignerStatusApproved, decimal.NewFromInt(150))

	summary, err := svc.GetSummary(2)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.Tier != "silver" {
		t.Fatalf("unexpected tier: %s", summary.Tier)
	}
	if summary.NextTier != "gold" || !summary.NextThreshold.Decimal.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("unexpected next tier: %s at %s", summary.NextTier, summary.NextThreshold.String())
	}
}

func TestWalletServiceReconcileRepairsDrift(t *testing.T) {
	svc, db := setupWalletServiceTest(t)
	createTestDesigner(t, db, 3, constants.DesignerStatusApproved, decimal.NewFromInt(500))

	now := time.Now()
	// Account aggregates deliberately disagree with the ledger below.
	account := models.WalletAccount{
		DesignerID:    3,
		Balance:       models.NewMoneyFromDecimal(decimal.NewFromInt(999)),
		TotalEarnings: models.NewMoneyFromDecimal(decimal.NewFromInt(999)),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("create account failed: %v", err)
	}

	createLedgerEntry(t, db, account.ID, 3,
		constants.LedgerTypeSaleCredit, constants.LedgerStatusCompleted,
		"order:1:item:1:sale_credit", decimal.NewFromInt(300))
	createLedgerEntry(t, db, account.ID, 3,
		constants.LedgerTypeSaleCredit, constants.LedgerStatusCompleted,
		"order:2:item:2:sale_credit", decimal.NewFromInt(200))
	createLedgerEntry(t, db, account.ID, 3,
		constants.LedgerTypeWithdrawalRequest, constants.LedgerStatusCompleted,
		"withdrawal:1:withdrawal_request", decimal.NewFromInt(-100))
	createLedgerEntry(t, db, account.ID, 3,
		constants.LedgerTypeWithdrawalCompleted, constants.LedgerStatusCompleted,
		"withdrawal:1:withdrawal_completed", decimal.NewFromInt(-100))
	createLedgerEntry(t, db, account.ID, 3,
		constants.LedgerTypeWithdrawalRequest, constants.LedgerStatusFailed,
		"withdrawal:2:withdrawal_request", decimal.NewFromInt(-50))
	createLedgerEntry(t, db, account.ID, 3,
		constants.LedgerTypeWithdrawalRejectedReversal, constants.LedgerStatusCompleted,
		"withdrawal:2:withdrawal_rejected_reversal", decimal.NewFromInt(50))

	result, err := svc.Reconcile(3)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if !result.Drifted {
		t.Fatalf("drift not reported")
	}
	if !result.Balance.Decimal.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("unexpected rebuilt balance: %s", result.Balance.String())
	}
	if !result.Withdrawn.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected rebuilt withdrawn: %s", result.Withdrawn.String())
	}

	repaired := loadAccount(t, db, 3)
	if !repaired.Balance.Decimal.Equal(decimal.NewFromInt(400)) ||
		!repaired.PendingBalance.Decimal.IsZero() ||
		!repaired.TotalEarnings.Decimal.Equal(decimal.NewFromInt(500)) ||
		!repaired.TotalWithdrawn.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("account not repaired: %+v", repaired)
	}
	if err := CheckInvariant(repaired); err != nil {
		t.Fatalf("invariant broken after repair: %v", err)
	}

	// A clean second pass reports no drift.
	result, err = svc.Reconcile(3)
	if err != nil {
		t.Fatalf("second reconcile failed: %v", err)
	}
	if result.Drifted {
		t.Fatalf("clean account reported drift")
	}
}

func TestFoldLedgerSkipsNonCompletedCredits(t *testing.T) {
	entries := []models.LedgerEntry{
		{
			Type:   constants.LedgerTypeSaleCredit,
			Status: constants.LedgerStatusCompleted,
			Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		},
		{
			Type:   constants.LedgerTypeSaleCredit,
			Status: constants.LedgerStatusFailed,
			Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(40)),
		},
		{
			Type:   constants.LedgerTypeWithdrawalRequest,
			Status: constants.LedgerStatusPending,
			Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(-30)),
		},
	}
	balance, pending, earnings, withdrawn := foldLedger(entries)
	if !balance.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("unexpected balance: %s", balance.String())
	}
	if !pending.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("unexpected pending: %s", pending.String())
	}
	if !earnings.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected earnings: %s", earnings.String())
	}
	if !withdrawn.IsZero() {
		t.Fatalf("unexpected withdrawn: %s", withdrawn.String())
	}
}
