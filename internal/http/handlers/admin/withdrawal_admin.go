package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/baguri-ro/baguri-api/internal/constants"
	handlershared "github.com/baguri-ro/baguri-api/internal/http/handlers/shared"
	"github.com/baguri-ro/baguri-api/internal/http/response"
	"github.com/baguri-ro/baguri-api/internal/models"
	"github.com/baguri-ro/baguri-api/internal/repository"
	"github.com/baguri-ro/baguri-api/internal/service"

	"github.com/gin-gonic/gin"
)

// ListWithdrawals pages through payout requests.
func (h *Handler) ListWithdrawals(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)

	var designerID uint
	if raw := c.Query("designer_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "designer_id invalid", nil)
			return
		}
		designerID = uint(parsed)
	}

	withdrawals, total, err := h.WithdrawalService.List(repository.WithdrawalListFilter{
		Page:       page,
		PageSize:   pageSize,
		DesignerID: designerID,
		Status:     c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "withdrawal list failed", err)
		return
	}
	response.SuccessWithPage(c, withdrawals, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: handlershared.TotalPages(total, pageSize),
	})
}

// GetWithdrawal returns one payout request.
func (h *Handler) GetWithdrawal(c *gin.Context) {
	withdrawalID, ok := parseIDParam(c)
	if !ok {
		return
	}
	withdrawal, err := h.WithdrawalService.GetByID(withdrawalID)
	if err != nil {
		respondWithdrawalReviewError(c, err)
		return
	}
	response.Success(c, withdrawal)
}

// WithdrawalReviewRequest decides a payout request.
type WithdrawalReviewRequest struct {
	Action string `json:"action" binding:"required"` // approve or reject
	Reason string `json:"reason"`
}

// ReviewWithdrawal approves or rejects a requested withdrawal. Rejection
// requires a reason; the reversal lands in the ledger either way.
func (h *Handler) ReviewWithdrawal(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	withdrawalID, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req WithdrawalReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	var (
		withdrawal *models.WithdrawalRequest
		err        error
	)
	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case constants.WithdrawalActionApprove:
		withdrawal, err = h.WithdrawalService.Approve(withdrawalID, adminID)
	case constants.WithdrawalActionReject:
		if strings.TrimSpace(req.Reason) == "" {
			respondError(c, response.CodeBadRequest, "rejection reason required", nil)
			return
		}
		withdrawal, err = h.WithdrawalService.Reject(withdrawalID, adminID, req.Reason)
	default:
		respondError(c, response.CodeBadRequest, "action must be approve or reject", nil)
		return
	}
	if err != nil {
		respondWithdrawalReviewError(c, err)
		return
	}

	// An approval without a payout reference still owes the provider call.
	if withdrawal.Status == constants.WithdrawalStatusCompleted && withdrawal.PayoutRef == "" {
		if err := h.QueueClient.EnqueueWithdrawalPayout(c.Request.Context(), withdrawal.ID); err != nil {
			requestLog(c).Warnw("withdrawal_payout_enqueue_failed",
				"withdrawal_id", withdrawal.ID,
				"error", err,
			)
		}
	}

	requestLog(c).Infow("withdrawal_reviewed",
		"withdrawal_id", withdrawal.ID,
		"admin_id", adminID,
		"action", req.Action,
		"status", withdrawal.Status,
	)
	response.Success(c, withdrawal)
}

func respondWithdrawalReviewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWithdrawalNotFound):
		respondError(c, response.CodeNotFound, "withdrawal not found", nil)
	case errors.Is(err, service.ErrWithdrawalStatusInvalid):
		respondError(c, response.CodeConflict, "withdrawal already processed", nil)
	case errors.Is(err, service.ErrWalletAccountNotFound):
		respondError(c, response.CodeNotFound, "wallet account not found", nil)
	case errors.Is(err, service.ErrWalletInvariantBroken):
		respondError(c, response.CodeInternal, "wallet invariant violated", err)
	default:
		respondError(c, response.CodeInternal, "withdrawal review failed", err)
	}
}
