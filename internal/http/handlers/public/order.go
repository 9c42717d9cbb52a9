package public

import (
	"strconv"

	"github.com/baguri-ro/baguri-api/internal/http/response"
	"github.com/baguri-ro/baguri-api/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderLineRequest is one requested product line.
type OrderLineRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// OrderCreateRequest is the guest checkout payload.
type OrderCreateRequest struct {
	CustomerEmail string             `json:"customer_email" binding:"required,email"`
	CustomerName  string             `json:"customer_name"`
	Lines         []OrderLineRequest `json:"lines" binding:"required"`
}

// CreateOrder creates a pending order from the cart lines.
func (h *Handler) CreateOrder(c *gin.Context) {
	var req OrderCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	lines := make([]service.OrderLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, service.OrderLineInput{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}

	order, err := h.OrderService.Create(service.OrderCreateInput{
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		ClientIP:      c.ClientIP(),
		Lines:         lines,
	})
	if err != nil {
		respondOrderCreateError(c, err)
		return
	}

	response.Success(c, order)
}

// GetOrder returns an order by its public order number.
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.OrderService.GetByOrderNo(c.Param("order_no"))
	if err != nil {
		respondOrderCheckoutError(c, err)
		return
	}
	response.Success(c, order)
}

// GetOrderPayment reports the payment state of an order, pulling the session
// state from Stripe when the webhook has not arrived yet.
func (h *Handler) GetOrderPayment(c *gin.Context) {
	order, err := h.PaymentService.SyncOrderPayment(c.Request.Context(), c.Param("order_no"))
	if err != nil {
		respondOrderCheckoutError(c, err)
		return
	}
	response.Success(c, gin.H{
		"order_no": order.OrderNo,
		"status":   order.Status,
		"paid_at":  order.PaidAt,
	})
}

// CreateCheckout opens a payment session for a pending order.
func (h *Handler) CreateCheckout(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "order id invalid", nil)
		return
	}

	order, checkoutURL, err := h.OrderService.CreateCheckout(c.Request.Context(), uint(orderID))
	if err != nil {
		respondOrderCheckoutError(c, err)
		return
	}

	response.Success(c, gin.H{
		"order_no":     order.OrderNo,
		"checkout_url": checkoutURL,
		"expires_at":   order.ExpiresAt,
	})
}
