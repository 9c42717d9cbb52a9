package admin

import (
	"errors"
	"strconv"

	handlershared "github.com/baguri-ro/baguri-api/internal/http/handlers/shared"
	"github.com/baguri-ro/baguri-api/internal/http/response"
	"github.com/baguri-ro/baguri-api/internal/queue"
	"github.com/baguri-ro/baguri-api/internal/repository"
	"github.com/baguri-ro/baguri-api/internal/service"

	"github.com/gin-gonic/gin"
)

// ListOrders pages through orders.
func (h *Handler) ListOrders(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)

	filter := repository.OrderListFilter{
		Page:          page,
		PageSize:      pageSize,
		Status:        c.Query("status"),
		OrderNo:       c.Query("order_no"),
		CustomerEmail: c.Query("customer_email"),
	}
	if raw := c.Query("designer_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "designer_id invalid", nil)
			return
		}
		filter.DesignerID = uint(parsed)
	}

	orders, total, err := h.OrderService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "order list failed", err)
		return
	}
	response.SuccessWithPage(c, orders, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: handlershared.TotalPages(total, pageSize),
	})
}

// GetOrder returns one order with its items.
func (h *Handler) GetOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}
	order, err := h.OrderService.GetByID(orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}
	response.Success(c, order)
}

// ResettleOrder re-runs settlement for a paid order. The per-item ledger
// references make repeats safe.
func (h *Handler) ResettleOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if h.QueueClient.Enabled() {
		if err := h.QueueClient.EnqueueOrderSettle(c.Request.Context(), orderID); err != nil && !errors.Is(err, queue.ErrQueueDisabled) {
			respondError(c, response.CodeInternal, "settlement enqueue failed", err)
			return
		}
		response.Success(c, gin.H{"order_id": orderID, "enqueued": true})
		return
	}

	result, err := h.SettlementService.SettleOrder(orderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrSettlementOrderNotPaid):
			respondError(c, response.CodeBadRequest, "order not paid", nil)
		case errors.Is(err, service.ErrSettlementItemFailed):
			respondError(c, response.CodeInternal, "one or more items failed to settle", err)
		default:
			respondError(c, response.CodeInternal, "settlement failed", err)
		}
		return
	}
	response.Success(c, result)
}

// ExpireOrders runs an expiry sweep over stale unpaid orders. The worker
// sweeps on a timer anyway; this is for ops pushing a backlog through.
func (h *Handler) ExpireOrders(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(c, response.CodeBadRequest, "limit invalid", nil)
			return
		}
		limit = parsed
	}

	if h.QueueClient.Enabled() {
		if err := h.QueueClient.EnqueueOrderExpire(c.Request.Context(), limit); err != nil && !errors.Is(err, queue.ErrQueueDisabled) {
			respondError(c, response.CodeInternal, "expiry enqueue failed", err)
			return
		}
		response.Success(c, gin.H{"enqueued": true, "limit": limit})
		return
	}

	canceled, err := h.OrderService.CancelExpired(limit)
	if err != nil {
		respondError(c, response.CodeInternal, "expiry sweep failed", err)
		return
	}
	response.Success(c, gin.H{"canceled": canceled})
}
