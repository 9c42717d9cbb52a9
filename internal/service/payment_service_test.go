package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
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

const testWebhookSecret = "whsec_payment_service_test"

func setupPaymentServiceTest(t *testing.T) (*PaymentService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:payment_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
		&models.WebhookEvent{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	cfg := &config.Config{
		Stripe: config.StripeConfig{
			SecretKey:        "sk_test_123",
			WebhookSecret:    testWebhookSecret,
			ToleranceSeconds: 300,
		},
	}
	orderRepo := repository.NewOrderRepository(db)
	settlementSvc := NewSettlementService(
		orderRepo,
		repository.NewWalletRepository(db),
		repository.NewDesignerRepository(db),
	)
	svc := NewPaymentService(
		cfg,
		orderRepo,
		repository.NewWebhookEventRepository(db),
		settlementSvc,
		nil,
	)
	return svc, db
}

func signTestWebhook(body []byte, at time.Time) map[string]string {
	payload := fmt.Sprintf("%d.%s", at.Unix(), body)
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write([]byte(payload))
	return map[string]string{
		"Stripe-Signature": fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil))),
	}
}

func checkoutCompletedBody(eventID string, orderID uint, sessionID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"object": "checkout.session",
				"id": %q,
				"currency": "ron",
				"amount_total": 20000,
				"payment_status": "paid",
				"status": "complete",
				"metadata": {"order_id": "%d"}
			}
		}
	}`, eventID, sessionID, orderID))
}

func TestPaymentServiceHandleWebhookMarksPaidAndSettles(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	createTestDesigner(t, db, 1, constants.DesignerStatusApproved, decimal.Zero)
	order := createPaidTestOrder(t, db, "BGPAYTEST0001", []models.OrderItem{
		{
			ProductID:   11,
			DesignerID:  1,
			ProductName: "Silk Dress",
			UnitPrice:   models.NewMoneyFromDecimal(decimal.NewFromInt(200)),
			Quantity:    1,
			GrossAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(200)),
		},
	})
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("status", constants.OrderStatusPendingPayment).Error; err != nil {
		t.Fatalf("reset order status failed: %v", err)
	}

	now := time.Now()
	body := checkoutCompletedBody("evt_pay_1", order.ID, "cs_pay_1")
	if err := svc.HandleWebhook(context.Background(), signTestWebhook(body, now), body); err != nil {
		t.Fatalf("webhook failed: %v", err)
	}

	var updated models.Order
	if err := db.First(&updated, order.ID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	// Inline settlement runs when no queue is wired.
	if updated.Status != constants.OrderStatusSettled || updated.PaidAt == nil {
		t.Fatalf("order not settled: %s", updated.Status)
	}
	if updated.StripeSessionID != "cs_pay_1" {
		t.Fatalf("session id not stored: %s", updated.StripeSessionID)
	}

	var account models.WalletAccount
	if err := db.Where("designer_id = ?", 1).First(&account).Error; err != nil {
		t.Fatalf("load account failed: %v", err)
	}
	if !account.Balance.Decimal.Equal(decimal.NewFromInt(140)) {
		t.Fatalf("designer not credited: %s", account.Balance.String())
	}

	// Replay of the same event id is accepted and changes nothing.
	if err := svc.HandleWebhook(context.Background(), signTestWebhook(body, now), body); err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	var entryCount int64
	if err := db.Model(&models.LedgerEntry{}).Count(&entryCount).Error; err != nil {
		t.Fatalf("count entries failed: %v", err)
	}
	if entryCount != 1 {
		t.Fatalf("replay duplicated the credit: %d entries", entryCount)
	}
}

func TestPaymentServiceHandleWebhookRejectsBadSignature(t *testing.T) {
	svc, _ := setupPaymentServiceTest(t)
	body := checkoutCompletedBody("evt_pay_2", 1, "cs_pay_2")
	headers := map[string]string{
		"Stripe-Signature": fmt.Sprintf("t=%d,v1=deadbeef", time.Now().Unix()),
	}
	if err := svc.HandleWebhook(context.Background(), headers, body); !errors.Is(err, ErrWebhookSignatureInvalid) {
		t.Fatalf("expected signature error, got: %v", err)
	}
}

func TestPaymentServiceHandleWebhookUnknownOrderRecorded(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	now := time.Now()
	body := checkoutCompletedBody("evt_pay_3", 9999, "cs_pay_3")
	if err := svc.HandleWebhook(context.Background(), signTestWebhook(body, now), body); err != nil {
		t.Fatalf("webhook failed: %v", err)
	}

	var event models.WebhookEvent
	if err := db.Where("event_id = ?", "evt_pay_3").First(&event).Error; err != nil {
		t.Fatalf("event not recorded: %v", err)
	}
	if event.OrderID != nil {
		t.Fatalf("unknown order got an order id: %v", *event.OrderID)
	}
}

func TestPaymentServiceSyncOrderPayment(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	createTestDesigner(t, db, 3, constants.DesignerStatusApproved, decimal.Zero)
	order := createPaidTestOrder(t, db, "BGPAYTEST0003", []models.OrderItem{
		{
			ProductID:   31,
			DesignerID:  3,
			ProductName: "Wool Coat",
			UnitPrice:   models.NewMoneyFromDecimal(decimal.NewFromInt(200)),
			Quantity:    1,
			GrossAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(200)),
		},
	})
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"status":            constants.OrderStatusPendingPayment,
			"stripe_session_id": "cs_sync_1",
			"paid_at":           nil,
		}).Error; err != nil {
		t.Fatalf("reset order failed: %v", err)
	}

	stripeAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/sessions/cs_sync_1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"object": "checkout.session",
			"id": "cs_sync_1",
			"payment_intent": "pi_sync_1",
			"currency": "ron",
			"amount_total": 20000,
			"payment_status": "paid",
			"status": "complete"
		}`)
	}))
	defer stripeAPI.Close()
	svc.cfg.Stripe.APIBaseURL = stripeAPI.URL
	svc.cfg.Stripe.SuccessURL = "https://baguri.ro/checkout/success"
	svc.cfg.Stripe.CancelURL = "https://baguri.ro/checkout/cancel"

	synced, err := svc.SyncOrderPayment(context.Background(), order.OrderNo)
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if synced.Status != constants.OrderStatusSettled || synced.PaidAt == nil {
		t.Fatalf("sync did not apply payment: %s", synced.Status)
	}

	var event models.WebhookEvent
	if err := db.Where("event_id = ?", "sync:cs_sync_1").First(&event).Error; err != nil {
		t.Fatalf("sync event not recorded: %v", err)
	}

	// A second sync sees the settled order and never calls Stripe again.
	stripeAPI.Close()
	again, err := svc.SyncOrderPayment(context.Background(), order.OrderNo)
	if err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	if again.Status != constants.OrderStatusSettled {
		t.Fatalf("second sync changed the order: %s", again.Status)
	}
}

func TestPaymentServicePaymentBeatsExpiryCancel(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	createTestDesigner(t, db, 2, constants.DesignerStatusApproved, decimal.Zero)
	order := createPaidTestOrder(t, db, "BGPAYTEST0002", []models.OrderItem{
		{
			ProductID:   21,
			DesignerID:  2,
			ProductName: "Linen Set",
			UnitPrice:   models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
			Quantity:    1,
			GrossAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		},
	})
	canceledAt := time.Now()
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"status":      constants.OrderStatusCanceled,
			"canceled_at": canceledAt,
			"paid_at":     nil,
		}).Error; err != nil {
		t.Fatalf("cancel order failed: %v", err)
	}

	now := time.Now()
	body := checkoutCompletedBody("evt_pay_4", order.ID, "cs_pay_4")
	if err := svc.HandleWebhook(context.Background(), signTestWebhook(body, now), body); err != nil {
		t.Fatalf("webhook failed: %v", err)
	}

	var updated models.Order
	if err := db.First(&updated, order.ID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	// The money moved, so a canceled order still flips to paid and settles.
	if updated.Status != constants.OrderStatusSettled {
		t.Fatalf("canceled order did not recover: %s", updated.Status)
	}
	if updated.CanceledAt != nil {
		t.Fatalf("canceled_at not cleared")
	}
}
