package service

import (
	"context"
	"time"

	"github.com/baguri-ro/baguri-api/internal/config"
	"github.com/baguri-ro/baguri-api/internal/constants"
	"github.com/baguri-ro/baguri-api/internal/logger"
	"github.com/baguri-ro/baguri-api/internal/models"
	"github.com/baguri-ro/baguri-api/internal/payment/stripe"
	"github.com/baguri-ro/baguri-api/internal/repository"

	"gorm.io/gorm"
)

// SettlementEnqueuer hands settlement work to the background queue. When no
// queue is configured the payment service settles inline instead.
type SettlementEnqueuer interface {
	EnqueueOrderSettle(ctx context.Context, orderID uint) error
}

// PaymentService processes Stripe webhooks.
type PaymentService struct {
	cfg              *config.Config
	orderRepo        repository.OrderRepository
	webhookEventRepo repository.WebhookEventRepository
	settlementSvc    *SettlementService
	enqueuer         SettlementEnqueuer
}

// NewPaymentService builds a payment service. enqueuer may be nil.
func NewPaymentService(
	cfg *config.Config,
	orderRepo repository.OrderRepository,
	webhookEventRepo repository.WebhookEventRepository,
	settlementSvc *SettlementService,
	enqueuer SettlementEnqueuer,
) *PaymentService {
	return &PaymentService{
		cfg:              cfg,
		orderRepo:        orderRepo,
		webhookEventRepo: webhookEventRepo,
		settlementSvc:    settlementSvc,
		enqueuer:         enqueuer,
	}
}

// SetEnqueuer wires the queue client after construction.
func (s *PaymentService) SetEnqueuer(enqueuer SettlementEnqueuer) {
	s.enqueuer = enqueuer
}

func (s *PaymentService) stripeConfig() *stripe.Config {
	cfg := &stripe.Config{
		SecretKey:               s.cfg.Stripe.SecretKey,
		WebhookSecret:           s.cfg.Stripe.WebhookSecret,
		SuccessURL:              s.cfg.Stripe.SuccessURL,
		CancelURL:               s.cfg.Stripe.CancelURL,
		APIBaseURL:              s.cfg.Stripe.APIBaseURL,
		TimeoutMS:               s.cfg.Stripe.TimeoutMS,
		WebhookToleranceSeconds: s.cfg.Stripe.ToleranceSeconds,
	}
	cfg.Normalize()
	return cfg
}

// HandleWebhook verifies and processes a Stripe webhook delivery. Replays of
// an already-processed event return nil without touching any order.
func (s *PaymentService) HandleWebhook(ctx context.Context, headers map[string]string, body []byte) error {
	event, err := stripe.VerifyAndParseWebhook(s.stripeConfig(), headers, body, time.Now())
	if err != nil {
		logger.Warnw("webhook_verify_failed", "error", err)
		return ErrWebhookSignatureInvalid
	}
	if event.EventID == "" {
		return ErrWebhookPayloadInvalid
	}

	processed, err := s.webhookEventRepo.GetByProviderEventID(constants.PaymentProviderStripe, event.EventID)
	if err != nil {
		return err
	}
	if processed != nil {
		logger.Infow("webhook_event_replayed", "event_id", event.EventID, "event_type", event.EventType)
		return nil
	}

	order, err := s.resolveOrder(event)
	if err != nil {
		return err
	}
	if order == nil {
		// Events for unknown objects are recorded and dropped, not retried.
		logger.Warnw("webhook_order_not_found",
			"event_id", event.EventID,
			"event_type", event.EventType,
			"session_id", event.SessionID,
		)
		return s.recordEvent(nil, event, nil)
	}

	switch event.Status {
	case "success":
		return s.handlePaymentSuccess(ctx, order, event)
	case "expired", "failed":
		logger.Infow("webhook_payment_not_completed",
			"event_id", event.EventID,
			"event_type", event.EventType,
			"order_id", order.ID,
			"status", event.Status,
		)
		return s.recordEvent(nil, event, &order.ID)
	default:
		return s.recordEvent(nil, event, &order.ID)
	}
}

// SyncOrderPayment asks Stripe for the session state of an unpaid order and
// applies a payment the webhook has not delivered yet. Customers returning
// from checkout hit this before the webhook lands.
func (s *PaymentService) SyncOrderPayment(ctx context.Context, orderNo string) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	switch order.Status {
	case constants.OrderStatusPendingPayment, constants.OrderStatusCanceled:
	default:
		return order, nil
	}
	if order.StripeSessionID == "" {
		return order, nil
	}

	result, err := stripe.QuerySession(ctx, s.stripeConfig(), order.StripeSessionID)
	if err != nil {
		logger.Warnw("payment_sync_query_failed",
			"order_id", order.ID,
			"session_id", order.StripeSessionID,
			"error", err,
		)
		return order, nil
	}
	if result.Status != "success" {
		return order, nil
	}

	// The synthetic event id keeps a second concurrent sync from applying
	// the payment twice; a later webhook arrives under its own event id and
	// finds the order already paid.
	event := &stripe.WebhookResult{
		EventID:         "sync:" + order.StripeSessionID,
		EventType:       "checkout.session.sync",
		OrderID:         order.ID,
		OrderNo:         order.OrderNo,
		SessionID:       result.SessionID,
		PaymentIntentID: result.PaymentIntentID,
		Status:          result.Status,
		Amount:          result.Amount,
		Currency:        result.Currency,
		PaidAt:          result.PaidAt,
	}
	if err := s.handlePaymentSuccess(ctx, order, event); err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(order.ID)
}

func (s *PaymentService) resolveOrder(event *stripe.WebhookResult) (*models.Order, error) {
	if event.OrderID != 0 {
		return s.orderRepo.GetByID(event.OrderID)
	}
	if event.SessionID != "" {
		return s.orderRepo.GetByStripeSessionID(event.SessionID)
	}
	if event.OrderNo != "" {
		return s.orderRepo.GetByOrderNo(event.OrderNo)
	}
	return nil, nil
}

func (s *PaymentService) recordEvent(tx *gorm.DB, event *stripe.WebhookResult, orderID *uint) error {
	now := time.Now()
	return s.webhookEventRepo.WithTx(tx).Create(&models.WebhookEvent{
		Provider:    constants.PaymentProviderStripe,
		EventID:     event.EventID,
		EventType:   event.EventType,
		OrderID:     orderID,
		ProcessedAt: now,
		CreatedAt:   now,
	})
}

func (s *PaymentService) handlePaymentSuccess(ctx context.Context, order *models.Order, event *stripe.WebhookResult) error {
	orderID := order.ID
	var marked bool
	err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		locked, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrOrderNotFound
		}

		// The event row is written in the same transaction as the status
		// change; the unique index turns a concurrent duplicate delivery
		// into a rollback here.
		if err := s.recordEvent(tx, event, &locked.ID); err != nil {
			return err
		}

		switch locked.Status {
		case constants.OrderStatusPendingPayment, constants.OrderStatusCanceled:
			// A payment that raced the expiry sweep still wins; the money
			// moved, so the order moves with it.
		case constants.OrderStatusPaid, constants.OrderStatusSettled:
			return nil
		default:
			return ErrOrderStatusInvalid
		}

		now := time.Now()
		locked.Status = constants.OrderStatusPaid
		locked.PaidAt = &now
		locked.CanceledAt = nil
		locked.UpdatedAt = now
		if event.SessionID != "" {
			locked.StripeSessionID = event.SessionID
		}
		if err := orderRepo.Update(locked); err != nil {
			return err
		}
		marked = true
		return nil
	})
	if err != nil {
		return err
	}
	if !marked {
		return nil
	}

	logger.Infow("order_paid",
		"order_id", orderID,
		"order_no", order.OrderNo,
		"event_id", event.EventID,
		"amount", event.Amount,
	)

	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueOrderSettle(ctx, orderID); err == nil {
			return nil
		} else {
			logger.Warnw("order_settle_enqueue_failed", "order_id", orderID, "error", err)
		}
	}
	if s.settlementSvc != nil {
		if _, err := s.settlementSvc.SettleOrder(orderID); err != nil {
			logger.Errorw("order_settle_inline_failed", "order_id", orderID, "error", err)
			return err
		}
	}
	return nil
}
