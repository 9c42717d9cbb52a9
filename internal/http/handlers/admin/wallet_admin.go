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

// GetWallet returns one designer's wallet summary.
func (h *Handler) GetWallet(c *gin.Context) {
	designerID, ok := parseDesignerIDParam(c)
	if !ok {
		return
	}
	summary, err := h.WalletService.GetSummary(designerID)
	if err != nil {
		respondWalletAdminError(c, err)
		return
	}
	response.Success(c, summary)
}

// ListWalletLedger pages through ledger entries, optionally filtered by
// designer, order, type, or status.
func (h *Handler) ListWalletLedger(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)

	filter := repository.LedgerListFilter{
		Page:     page,
		PageSize: pageSize,
		Type:     c.Query("type"),
		Status:   c.Query("status"),
	}
	if raw := c.Query("designer_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "designer_id invalid", nil)
			return
		}
		filter.DesignerID = uint(parsed)
	}
	if raw := c.Query("order_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "order_id invalid", nil)
			return
		}
		filter.OrderID = uint(parsed)
	}

	entries, total, err := h.WalletService.ListEntries(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "ledger list failed", err)
		return
	}
	response.SuccessWithPage(c, entries, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: handlershared.TotalPages(total, pageSize),
	})
}

// ReconcileWallet rebuilds one designer's wallet aggregates from the ledger.
// With the queue available the rebuild runs on a worker; otherwise inline.
func (h *Handler) ReconcileWallet(c *gin.Context) {
	designerID, ok := parseDesignerIDParam(c)
	if !ok {
		return
	}

	if h.QueueClient.Enabled() {
		if err := h.QueueClient.EnqueueWalletReconcile(c.Request.Context(), designerID); err != nil && !errors.Is(err, queue.ErrQueueDisabled) {
			respondError(c, response.CodeInternal, "reconcile enqueue failed", err)
			return
		}
		response.Success(c, gin.H{"designer_id": designerID, "enqueued": true})
		return
	}

	result, err := h.WalletService.Reconcile(designerID)
	if err != nil {
		respondWalletAdminError(c, err)
		return
	}
	response.Success(c, result)
}

func respondWalletAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDesignerNotFound):
		respondError(c, response.CodeNotFound, "designer not found", nil)
	case errors.Is(err, service.ErrWalletAccountNotFound):
		respondError(c, response.CodeNotFound, "wallet account not found", nil)
	case errors.Is(err, service.ErrWalletInvariantBroken):
		respondError(c, response.CodeInternal, "wallet invariant violated", err)
	default:
		respondError(c, response.CodeInternal, "wallet operation failed", err)
	}
}

func parseDesignerIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("designer_id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "designer_id invalid", nil)
		return 0, false
	}
	return uint(id), true
}
