package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/baguri-ro/baguri-api/internal/config"
	"github.com/baguri-ro/baguri-api/internal/constants"
	"github.com/baguri-ro/baguri-api/internal/logger"
	"github.com/baguri-ro/baguri-api/internal/models"
	"github.com/baguri-ro/baguri-api/internal/payment/stripe"
	"github.com/baguri-ro/baguri-api/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService handles checkout orders.
type OrderService struct {
	cfg          *config.Config
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	designerRepo repository.DesignerRepository
	products     *ProductService
}

// OrderLineInput is one requested product line.
type OrderLineInput struct {
	ProductID uint
	Quantity  int
}

// OrderCreateInput is the checkout creation payload.
type OrderCreateInput struct {
	CustomerEmail string
	CustomerName  string
	ClientIP      string
	Lines         []OrderLineInput
}

// NewOrderService builds an order service. products supplies the persisted
// Stripe price mapping for checkout lines.
func NewOrderService(
	cfg *config.Config,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	designerRepo repository.DesignerRepository,
	products *ProductService,
) *OrderService {
	return &OrderService{
		cfg:          cfg,
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		designerRepo: designerRepo,
		products:     products,
	}
}

func generateOrderNo() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	return fmt.Sprintf("BG%s%s", time.Now().Format("20060102150405"), strings.ToUpper(suffix))
}

// Create builds an order from product lines. Prices and designer ids are
// snapshot onto the items inside the same transaction that decrements stock.
func (s *OrderService) Create(input OrderCreateInput) (*models.Order, error) {
	email := strings.TrimSpace(strings.ToLower(input.CustomerEmail))
	if email == "" {
		return nil, ErrOrderEmpty
	}
	if len(input.Lines) == 0 {
		return nil, ErrOrderEmpty
	}

	expireMinutes := s.cfg.Order.PaymentExpireMinutes
	if expireMinutes <= 0 {
		expireMinutes = 30
	}

	var order *models.Order
	err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)

		now := time.Now()
		expiresAt := now.Add(time.Duration(expireMinutes) * time.Minute)
		total := decimal.Zero
		currency := ""
		items := make([]models.OrderItem, 0, len(input.Lines))

		for _, line := range input.Lines {
			if line.Quantity <= 0 {
				return ErrOrderEmpty
			}
			product, err := productRepo.GetByIDForUpdate(line.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return ErrProductNotFound
			}
			if product.Status != constants.ProductStatusActive {
				return ErrProductNotActive
			}
			if product.Stock != constants.ProductStockUnlimited {
				if product.Stock < line.Quantity {
					return ErrProductOutOfStock
				}
				product.Stock -= line.Quantity
				product.UpdatedAt = now
				if err := productRepo.Update(product); err != nil {
					return err
				}
			}
			if currency == "" {
				currency = product.Currency
			} else if currency != product.Currency {
				return ErrOrderStatusInvalid
			}

			gross := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			total = total.Add(gross)
			items = append(items, models.OrderItem{
				ProductID:        product.ID,
				DesignerID:       product.DesignerID,
				ProductName:      product.Name,
				UnitPrice:        product.Price,
				Quantity:         line.Quantity,
				GrossAmount:      models.NewMoneyFromDecimal(gross),
				SettlementStatus: constants.SettlementStatusPending,
				CreatedAt:        now,
				UpdatedAt:        now,
			})
		}

		order = &models.Order{
			OrderNo:       generateOrderNo(),
			CustomerEmail: email,
			CustomerName:  strings.TrimSpace(input.CustomerName),
			Status:        constants.OrderStatusPendingPayment,
			Currency:      currency,
			TotalAmount:   models.NewMoneyFromDecimal(total),
			ClientIP:      strings.TrimSpace(input.ClientIP),
			ExpiresAt:     &expiresAt,
			CreatedAt:     now,
			UpdatedAt:     now,
			Items:         items,
		}
		return s.orderRepo.WithTx(tx).Create(order)
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("order_created",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"items", len(order.Items),
		"total", order.TotalAmount.String(),
	)
	return order, nil
}

func (s *OrderService) stripeConfig() *stripe.Config {
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

// CreateCheckout opens a Stripe Checkout Session for a pending order and
// stores the session id on the order row.
func (s *OrderService) CreateCheckout(ctx context.Context, orderID uint) (*models.Order, string, error) {
	order, err := s.GetByID(orderID)
	if err != nil {
		return nil, "", err
	}
	if order.Status != constants.OrderStatusPendingPayment {
		return nil, "", ErrOrderStatusInvalid
	}
	if len(order.Items) == 0 {
		return nil, "", ErrOrderEmpty
	}

	lineItems := make([]stripe.LineItem, 0, len(order.Items))
	unmapped := make(map[int]models.OrderItem)
	for i, item := range order.Items {
		line := stripe.LineItem{
			Name:     item.ProductName,
			Amount:   item.UnitPrice.String(),
			Currency: order.Currency,
			Quantity: item.Quantity,
		}
		if s.products != nil {
			priceID, err := s.products.ResolveStripePriceID(ctx, item.ProductID, item.UnitPrice)
			if err == nil && priceID != "" {
				line.PriceID = priceID
			} else {
				unmapped[i] = item
			}
		}
		lineItems = append(lineItems, line)
	}

	result, err := stripe.CreateCheckout(ctx, s.stripeConfig(), stripe.CreateInput{
		OrderNo: order.OrderNo,
		OrderID: order.ID,
		Items:   lineItems,
		Email:   order.CustomerEmail,
	})
	if err != nil {
		logger.Errorw("checkout_session_create_failed", "order_id", order.ID, "error", err)
		return nil, "", ErrPaymentSessionCreateFailed
	}

	// Persist the price ids Stripe minted for inline lines so the next
	// checkout of the same listing reuses them.
	for i, item := range unmapped {
		if i >= len(result.LinePriceIDs) || result.LinePriceIDs[i] == "" {
			continue
		}
		if err := s.products.SaveStripePriceID(ctx, item.ProductID, result.LinePriceIDs[i], item.UnitPrice); err != nil {
			logger.Warnw("stripe_price_map_save_failed",
				"order_id", order.ID,
				"product_id", item.ProductID,
				"error", err,
			)
		}
	}

	order.StripeSessionID = result.SessionID
	order.UpdatedAt = time.Now()
	if err := s.orderRepo.Update(order); err != nil {
		return nil, "", err
	}

	logger.Infow("checkout_session_created",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"session_id", result.SessionID,
	)
	return order, result.URL, nil
}

// GetByID fetches an order with items.
func (s *OrderService) GetByID(id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetByOrderNo fetches an order by its public number.
func (s *OrderService) GetByOrderNo(orderNo string) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// List pages through orders.
func (s *OrderService) List(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.List(filter)
}

// CancelExpired cancels unpaid orders past their expiry and restocks their
// items. Returns the number of orders canceled.
func (s *OrderService) CancelExpired(limit int) (int, error) {
	expired, err := s.orderRepo.ListExpired(limit)
	if err != nil {
		return 0, err
	}

	canceled := 0
	for i := range expired {
		orderID := expired[i].ID
		err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
			orderRepo := s.orderRepo.WithTx(tx)
			productRepo := s.productRepo.WithTx(tx)

			order, err := orderRepo.GetByIDForUpdate(orderID)
			if err != nil {
				return err
			}
			// A payment may have landed between the scan and the lock.
			if order == nil || order.Status != constants.OrderStatusPendingPayment {
				return nil
			}

			items, err := orderRepo.GetItemsByOrderID(order.ID)
			if err != nil {
				return err
			}
			now := time.Now()
			for j := range items {
				product, err := productRepo.GetByIDForUpdate(items[j].ProductID)
				if err != nil {
					return err
				}
				if product == nil || product.Stock == constants.ProductStockUnlimited {
					continue
				}
				product.Stock += items[j].Quantity
				product.UpdatedAt = now
				if err := productRepo.Update(product); err != nil {
					return err
				}
			}

			order.Status = constants.OrderStatusCanceled
			order.CanceledAt = &now
			order.UpdatedAt = now
			if err := orderRepo.Update(order); err != nil {
				return err
			}
			canceled++
			logger.Infow("order_expired_canceled", "order_id", order.ID, "order_no", order.OrderNo)
			return nil
		})
		if err != nil {
			logger.Errorw("order_expire_cancel_failed", "order_id", orderID, "error", err)
		}
	}
	return canceled, nil
}
