package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/baguri-ro/baguri-api/internal/constants"
	"github.com/baguri-ro/baguri-api/internal/models"
	"github.com/baguri-ro/baguri-api/internal/provider"
	"github.com/baguri-ro/baguri-api/internal/queue"
	"github.com/baguri-ro/baguri-api/internal/repository"
	"github.com/baguri-ro/baguri-api/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupWorkerTest(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Designer{},
		&models.Order{},
		&models.OrderItem{},
		&models.WalletAccount{},
		&models.LedgerEntry{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	orderRepo := repository.NewOrderRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	designerRepo := repository.NewDesignerRepository(db)
	container := &provider.Container{
		SettlementService: service.NewSettlementService(orderRepo, walletRepo, designerRepo),
	}
	return NewConsumer(container), db
}

func TestHandleOrderSettleSkipsInvalidPayload(t *testing.T) {
	consumer, _ := setupWorkerTest(t)

	task, err := queue.NewOrderSettleTask(queue.OrderSettlePayload{OrderID: 0})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleOrderSettle(context.Background(), task); err != nil {
		t.Fatalf("zero order id should be dropped, got: %v", err)
	}

	bad := asynq.NewTask(queue.TaskOrderSettle, []byte("not-json"))
	if err := consumer.handleOrderSettle(context.Background(), bad); err == nil {
		t.Fatalf("malformed payload should error")
	}
}

func TestHandleOrderSettleSkipsMissingOrder(t *testing.T) {
	consumer, _ := setupWorkerTest(t)

	task, err := queue.NewOrderSettleTask(queue.OrderSettlePayload{OrderID: 9999})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	// A deleted order is not retriable.
	if err := consumer.handleOrderSettle(context.Background(), task); err != nil {
		t.Fatalf("missing order should be dropped, got: %v", err)
	}
}

func TestHandleOrderSettleCreditsWallet(t *testing.T) {
	consumer, db := setupWorkerTest(t)

	now := time.Now()
	designer := models.Designer{
		ID:            1,
		Email:         "atelier@example.ro",
		PasswordHash:  "hash",
		BrandName:     "Atelier",
		Slug:          "atelier",
		Status:        constants.DesignerStatusApproved,
		LifetimeSales: models.NewMoneyFromDecimal(decimal.Zero),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := db.Create(&designer).Error; err != nil {
		t.Fatalf("create designer failed: %v", err)
	}
	order := models.Order{
		OrderNo:       "BGWORKER0001",
		CustomerEmail: "customer@example.ro",
		Status:        constants.OrderStatusPaid,
		Currency:      constants.SiteCurrencyDefault,
		TotalAmount:   models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		PaidAt:        &now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	item := models.OrderItem{
		OrderID:          order.ID,
		ProductID:        11,
		DesignerID:       1,
		ProductName:      "Silk Scarf",
		UnitPrice:        models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		Quantity:         1,
		GrossAmount:      models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		SettlementStatus: constants.SettlementStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("create order item failed: %v", err)
	}

	task, err := queue.NewOrderSettleTask(queue.OrderSettlePayload{OrderID: order.ID})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleOrderSettle(context.Background(), task); err != nil {
		t.Fatalf("settle task failed: %v", err)
	}

	var account models.WalletAccount
	if err := db.Where("designer_id = ?", 1).First(&account).Error; err != nil {
		t.Fatalf("load account failed: %v", err)
	}
	if !account.Balance.Decimal.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("wallet balance want 70 got %s", account.Balance.String())
	}

	// A redelivered task finds the settled order and changes nothing.
	if err := consumer.handleOrderSettle(context.Background(), task); err != nil {
		t.Fatalf("redelivered task failed: %v", err)
	}
	var entryCount int64
	if err := db.Model(&models.LedgerEntry{}).Count(&entryCount).Error; err != nil {
		t.Fatalf("count entries failed: %v", err)
	}
	if entryCount != 1 {
		t.Fatalf("redelivery duplicated the credit: %d entries", entryCount)
	}
}

func TestHandleWithdrawalPayoutSkipsZeroID(t *testing.T) {
	consumer, _ := setupWorkerTest(t)
	task, err := queue.NewWithdrawalPayoutTask(queue.WithdrawalPayoutPayload{WithdrawalID: 0})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleWithdrawalPayout(context.Background(), task); err != nil {
		t.Fatalf("zero withdrawal id should be dropped, got: %v", err)
	}
}
