package service

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/baguri-ro/baguri-api/internal/config"
	"github.com/baguri-ro/baguri-api/internal/constants"
	"github.com/baguri-ro/baguri-api/internal/models"
	"github.com/baguri-ro/baguri-api/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubPayoutClient struct {
	ref   string
	err   error
	calls int
}

func (c *stubPayoutClient) Payout(request *models.WithdrawalRequest) (string, error) {
	c.calls++
	return c.ref, c.err
}

func setupWithdrawalServiceTest(t *testing.T, payout PayoutClient) (*WithdrawalService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:withdrawal_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Designer{},
		&models.WalletAccount{},
		&models.LedgerEntry{},
		&models.WithdrawalRequest{},
		&models.Setting{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	cfg := &config.Config{
		Withdrawal: config.WithdrawalConfig{MinAmount: "50"},
	}
	svc := NewWithdrawalService(
		cfg,
		repository.NewWalletRepository(db),
		repository.NewWithdrawalRepository(db),
		repository.NewDesignerRepository(db),
		repository.NewSettingRepository(db),
		payout,
	)
	return svc, db
}

func createFundedDesigner(t *testing.T, db *gorm.DB, id uint, balance decimal.Decimal) {
	t.Helper()
	createTestDesigner(t, db, id, constants.DesignerStatusApproved, balance)
	now := time.Now()
	account := models.WalletAccount{
		DesignerID:    id,
		Balance:       models.NewMoneyFromDecimal(balance),
		TotalEarnings: models.NewMoneyFromDecimal(balance),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("create account failed: %v", err)
	}
}

func loadAccount(t *testing.T, db *gorm.DB, designerID uint) *models.WalletAccount {
	t.Helper()
	var account models.WalletAccount
	if err := db.Where("designer_id = ?", designerID).First(&account).Error; err != nil {
		t.Fatalf("load account failed: %v", err)
	}
	return &account
}

func TestWithdrawalServiceRequestMovesBalanceToPending(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t, nil)
	createFundedDesigner(t, db, 1, decimal.NewFromInt(300))

	request, err := svc.Request(WithdrawalRequestInput{
		DesignerID:  1,
		Amount:      models.NewMoneyFromDecimal(decimal.NewFromInt(120)),
		Channel:     constants.WithdrawalChannelBankTransfer,
		AccountInfo: "RO49AAAA1B31007593840000",
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if request.Status != constants.WithdrawalStatusRequested {
		t.Fatalf("unexpected status: %s", request.Status)
	}

	account := loadAccount(t, db, 1)
	if !account.Balance.Decimal.Equal(decimal.NewFromInt(180)) {
		t.Fatalf("unexpected balance: %s", account.Balance.String())
	}
	if !account.PendingBalance.Decimal.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("unexpected pending: %s", account.PendingBalance.String())
	}
	if err := CheckInvariant(account); err != nil {
		t.Fatalf("invariant broken: %v", err)
	}

	var entry models.LedgerEntry
	if err := db.Where("withdrawal_id = ?", request.ID).First(&entry).Error; err != nil {
		t.Fatalf("load entry failed: %v", err)
	}
	if entry.Type != constants.LedgerTypeWithdrawalRequest || entry.Status != constants.LedgerStatusPending {
		t.Fatalf("unexpected entry: type=%s status=%s", entry.Type, entry.Status)
	}
	if !entry.Amount.Decimal.Equal(decimal.NewFromInt(-120)) {
		t.Fatalf("request entry not negative: %s", entry.Amount.String())
	}
}

func TestWithdrawalServiceRequestBelowMinimum(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t, nil)
	createFundedDesigner(t, db, 2, decimal.NewFromInt(300))

	_, err := svc.Request(WithdrawalRequestInput{
		DesignerID:  2,
		Amount:      models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
		AccountInfo: "RO49AAAA1B31007593840000",
	})
	if !errors.Is(err, ErrWithdrawalBelowMinimum) {
		t.Fatalf("expected below-minimum error, got: %v", err)
	}
}

func TestWithdrawalServiceRequestOverdraftLeavesNoTrace(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t, nil)
	createFundedDesigner(t, db, 3, decimal.NewFromInt(100))

	_, err := svc.Request(WithdrawalRequestInput{
		DesignerID:  3,
		Amount:      models.NewMoneyFromDecimal(decimal.NewFromInt(150)),
		AccountInfo: "RO49AAAA1B31007593840000",
	})
	if !errors.Is(err, ErrWalletInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got: %v", err)
	}

	account := loadAccount(t, db, 3)
	if !account.Balance.Decimal.Equal(decimal.NewFromInt(100)) || !account.PendingBalance.Decimal.IsZero() {
		t.Fatalf("failed request changed the account: balance=%s pending=%s",
			account.Balance.String(), account.PendingBalance.String())
	}

	var count int64
	if err := db.Model(&models.WithdrawalRequest{}).Count(&count).Error; err != nil {
		t.Fatalf("count requests failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("failed request persisted a row")
	}
	if err := db.Model(&models.LedgerEntry{}).Count(&count).Error; err != nil {
		t.Fatalf("count entries failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("failed request wrote ledger entries")
	}
}

func TestWithdrawalServiceConcurrentRequestsSingleWinner(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t, nil)
	createFundedDesigner(t, db, 9, decimal.NewFromInt(500))

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Request(WithdrawalRequestInput{
				DesignerID:  9,
				Amount:      models.NewMoneyFromDecimal(decimal.NewFromInt(300)),
				AccountInfo: "RO49AAAA1B31007593840000",
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		if !errors.Is(err, ErrWalletBalanceConflict) && !errors.Is(err, ErrWalletInsufficientBalance) {
			t.Fatalf("losing request failed with unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one request to win, got %d", succeeded)
	}

	account := loadAccount(t, db, 9)
	if !account.Balance.Decimal.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("unexpected balance: %s", account.Balance.String())
	}
	if !account.PendingBalance.Decimal.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("unexpected pending: %s", account.PendingBalance.String())
	}
	if err := CheckInvariant(account); err != nil {
		t.Fatalf("invariant broken: %v", err)
	}

	// The losing request leaves nothing behind.
	var count int64
	if err := db.Model(&models.WithdrawalRequest{}).Count(&count).Error; err != nil {
		t.Fatalf("count requests failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 withdrawal row, got %d", count)
	}
	if err := db.Model(&models.LedgerEntry{}).Count(&count).Error; err != nil {
		t.Fatalf("count entries failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", count)
	}
}

func TestWithdrawalServiceMinAmountFromSettings(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t, nil)
	setting := models.Setting{
		Key:       constants.SettingKeyWithdrawalConfig,
		ValueJSON: models.JSON(`{"min_amount":"200"}`),
	}
	if err := db.Create(&setting).Error; err != nil {
		t.Fatalf("create setting failed: %v", err)
	}
	if !svc.MinAmount().Equal(decimal.NewFromInt(200)) {
		t.Fatalf("settings minimum not applied: %s", svc.MinAmount().String())
	}

	createFundedDesigner(t, db, 4, decimal.NewFromInt(300))
	_, err := svc.Request(WithdrawalRequestInput{
		DesignerID:  4,
		Amount:      models.NewMoneyFromDecimal(decimal.NewFromInt(120)),
		AccountInfo: "RO49AAAA1B31007593840000",
	})
	if !errors.Is(err, ErrWithdrawalBelowMinimum) {
		t.Fatalf("expected below-minimum error, got: %v", err)
	}
}

func TestWithdrawalServiceApprove(t *testing.T) {
	payout := &stubPayoutClient{ref: "po_test_1"}
	svc, db := setupWithdrawalServiceTest(t, payout)
	createFundedDesigner(t, db, 5, decimal.NewFromInt(500))

	request, err := svc.Request(WithdrawalRequestInput{
		DesignerID:  5,
		Amount:      models.NewMoneyFromDecimal(decimal.NewFromInt(200)),
		Channel:     constants.WithdrawalChannelStripe,
		AccountInfo: "acct_123",
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	approved, err := svc.Approve(request.ID, 9)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != constants.WithdrawalStatusCompleted || approved.ProcessedBy == nil || *approved.ProcessedBy != 9 {
		t.Fatalf("unexpected request state: %+v", approved)
	}
	if payout.calls != 1 || approved.PayoutRef != "po_test_1" {
		t.Fatalf("payout not sent: calls=%d ref=%s", payout.calls, approved.PayoutRef)
	}

	account := loadAccount(t, db, 5)
	if !account.Balance.Decimal.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("unexpected balance: %s", account.Balance.String())
	}
	if !account.PendingBalance.Decimal.IsZero() {
		t.Fatalf("pending not cleared: %s", account.PendingBalance.String())
	}
	if !account.TotalWithdrawn.Decimal.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("unexpected withdrawn: %s", account.TotalWithdrawn.String())
	}
	if err := CheckInvariant(account); err != nil {
		t.Fatalf("invariant broken: %v", err)
	}

	var requestEntry models.LedgerEntry
	if err := db.Where("withdrawal_id = ? AND type = ?", request.ID, constants.LedgerTypeWithdrawalRequest).
		First(&requestEntry).Error; err != nil {
		t.Fatalf("load request entry failed: %v", err)
	}
	if requestEntry.Status != constants.LedgerStatusCompleted {
		t.Fatalf("request entry not completed: %s", requestEntry.Status)
	}
	var completedEntry models.LedgerEntry
	if err := db.Where("withdrawal_id = ? AND type = ?", request.ID, constants.LedgerTypeWithdrawalCompleted).
		First(&completedEntry).Error; err != nil {
		t.Fatalf("load completed entry failed: %v", err)
	}
	if completedEntry.Status != constants.LedgerStatusCompleted {
		t.Fatalf("completed entry not completed: %s", completedEntry.Status)
	}
}

func TestWithdrawalServiceRejectLeavesReversalTrail(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t, nil)
	createFundedDesigner(t, db, 6, decimal.NewFromInt(400))

	request, err := svc.Request(WithdrawalRequestInput{
		DesignerID:  6,
		Amount:      models.NewMoneyFromDecimal(decimal.NewFromInt(150)),
		AccountInfo: "RO49AAAA1B31007593840000",
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	rejected, err := svc.Reject(request.ID, 9, "account name mismatch")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != constants.WithdrawalStatusRejected || rejected.RejectReason != "account name mismatch" {
		t.Fatalf("unexpected request state: %+v", rejected)
	}

	account := loadAccount(t, db, 6)
	if !account.Balance.Decimal.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("balance not restored: %s", account.Balance.String())
	}
	if !account.PendingBalance.Decimal.IsZero() {
		t.Fatalf("pending not cleared: %s", account.PendingBalance.String())
	}
	if !account.TotalWithdrawn.Decimal.IsZero() {
		t.Fatalf("reject counted as withdrawn: %s", account.TotalWithdrawn.String())
	}
	if err := CheckInvariant(account); err != nil {
		t.Fatalf("invariant broken: %v", err)
	}

	// Two ledger rows stay behind: the failed request and the reversal.
	var entries []models.LedgerEntry
	if err := db.Where("withdrawal_id = ?", request.ID).Order("id asc").Find(&entries).Error; err != nil {
		t.Fatalf("load entries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Type != constants.LedgerTypeWithdrawalRequest || entries[0].Status != constants.LedgerStatusFailed {
		t.Fatalf("unexpected request entry: type=%s status=%s", entries[0].Type, entries[0].Status)
	}
	if entries[1].Type != constants.LedgerTypeWithdrawalRejectedReversal || !entries[1].Amount.Decimal.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("unexpected reversal entry: type=%s amount=%s", entries[1].Type, entries[1].Amount.String())
	}
}

func TestWithdrawalServiceDoubleProcess(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t, nil)
	createFundedDesigner(t, db, 7, decimal.NewFromInt(400))

	request, err := svc.Request(WithdrawalRequestInput{
		DesignerID:  7,
		Amount:      models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		AccountInfo: "RO49AAAA1B31007593840000",
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if _, err := svc.Approve(request.ID, 9); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	if _, err := svc.Approve(request.ID, 9); !errors.Is(err, ErrWithdrawalStatusInvalid) {
		t.Fatalf("expected status-invalid on double approve, got: %v", err)
	}
	if _, err := svc.Reject(request.ID, 9, "late"); !errors.Is(err, ErrWithdrawalStatusInvalid) {
		t.Fatalf("expected status-invalid on reject after approve, got: %v", err)
	}

	account := loadAccount(t, db, 7)
	if !account.TotalWithdrawn.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("double process changed withdrawn: %s", account.TotalWithdrawn.String())
	}
}

func TestWithdrawalServiceManualPayoutMode(t *testing.T) {
	payout := &stubPayoutClient{ref: "po_manual_1"}
	svc, db := setupWithdrawalServiceTest(t, payout)
	setting := models.Setting{
		Key:       constants.SettingKeyCommissionConfig,
		ValueJSON: models.JSON(`{"payout_automatic":false}`),
	}
	if err := db.Create(&setting).Error; err != nil {
		t.Fatalf("create setting failed: %v", err)
	}
	createFundedDesigner(t, db, 10, decimal.NewFromInt(400))

	request, err := svc.Request(WithdrawalRequestInput{
		DesignerID:  10,
		Amount:      models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		Channel:     constants.WithdrawalChannelStripe,
		AccountInfo: "acct_789",
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	approved, err := svc.Approve(request.ID, 9)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if payout.calls != 0 || approved.PayoutRef != "" {
		t.Fatalf("manual mode still sent a payout: calls=%d ref=%s", payout.calls, approved.PayoutRef)
	}

	// The payout job picks the request up later.
	if err := svc.RetryPayout(request.ID); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	var stored models.WithdrawalRequest
	if err := db.First(&stored, request.ID).Error; err != nil {
		t.Fatalf("load request failed: %v", err)
	}
	if stored.PayoutRef != "po_manual_1" {
		t.Fatalf("payout ref not saved: %s", stored.PayoutRef)
	}
}

func TestWithdrawalServiceRetryPayout(t *testing.T) {
	payout := &stubPayoutClient{err: errors.New("provider down")}
	svc, db := setupWithdrawalServiceTest(t, payout)
	createFundedDesigner(t, db, 8, decimal.NewFromInt(400))

	request, err := svc.Request(WithdrawalRequestInput{
		DesignerID:  8,
		Amount:      models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		Channel:     constants.WithdrawalChannelStripe,
		AccountInfo: "acct_456",
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	// The approve commits even when the payout call fails.
	approved, err := svc.Approve(request.ID, 9)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != constants.WithdrawalStatusCompleted || approved.PayoutRef != "" {
		t.Fatalf("unexpected state after deferred payout: %+v", approved)
	}

	payout.err = nil
	payout.ref = "po_retry_1"
	if err := svc.RetryPayout(request.ID); err != nil {
		t.Fatalf("retry failed: %v", err)
	}

	var stored models.WithdrawalRequest
	if err := db.First(&stored, request.ID).Error; err != nil {
		t.Fatalf("load request failed: %v", err)
	}
	if stored.PayoutRef != "po_retry_1" {
		t.Fatalf("payout ref not saved: %s", stored.PayoutRef)
	}

	// A second retry is a no-op once the reference is stored.
	calls := payout.calls
	if err := svc.RetryPayout(request.ID); err != nil {
		t.Fatalf("second retry failed: %v", err)
	}
	if payout.calls != calls {
		t.Fatalf("retry re-sent a settled payout")
	}
}
