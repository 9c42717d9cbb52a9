package public

import (
	"github.com/baguri-ro/baguri-api/internal/constants"
	handlershared "github.com/baguri-ro/baguri-api/internal/http/handlers/shared"
	"github.com/baguri-ro/baguri-api/internal/http/response"
	"github.com/baguri-ro/baguri-api/internal/models"
	"github.com/baguri-ro/baguri-api/internal/repository"
	"github.com/baguri-ro/baguri-api/internal/service"

	"github.com/gin-gonic/gin"
)

// WalletSummary returns the authenticated designer's balances and tier.
func (h *Handler) WalletSummary(c *gin.Context) {
	designerID, ok := getDesignerID(c)
	if !ok {
		return
	}
	summary, err := h.WalletService.GetSummary(designerID)
	if err != nil {
		respondWithdrawalRequestError(c, err)
		return
	}
	response.Success(c, summary)
}

// WalletLedger pages through the designer's own ledger entries.
func (h *Handler) WalletLedger(c *gin.Context) {
	designerID, ok := getDesignerID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c)

	entries, total, err := h.WalletService.ListEntries(repository.LedgerListFilter{
		Page:       page,
		PageSize:   pageSize,
		DesignerID: designerID,
		Type:       c.Query("type"),
		Status:     c.Query("status"),
	})
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

// WithdrawalCreateRequest is the payout request payload.
type WithdrawalCreateRequest struct {
	Amount      models.Money `json:"amount" binding:"required"`
	Channel     string       `json:"channel" binding:"required"`
	AccountInfo string       `json:"account_info" binding:"required"`
}

// RequestWithdrawal opens a payout request against the available balance.
func (h *Handler) RequestWithdrawal(c *gin.Context) {
	designerID, ok := getDesignerID(c)
	if !ok {
		return
	}
	var req WithdrawalCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	switch req.Channel {
	case constants.WithdrawalChannelBankTransfer, constants.WithdrawalChannelStripe:
	default:
		respondError(c, response.CodeBadRequest, "withdrawal channel invalid", nil)
		return
	}

	withdrawal, err := h.WithdrawalService.Request(service.WithdrawalRequestInput{
		DesignerID:  designerID,
		Amount:      req.Amount,
		Channel:     req.Channel,
		AccountInfo: req.AccountInfo,
	})
	if err != nil {
		respondWithdrawalRequestError(c, err)
		return
	}
	response.Success(c, withdrawal)
}

// ListWithdrawals pages through the designer's own payout requests.
func (h *Handler) ListWithdrawals(c *gin.Context) {
	designerID, ok := getDesignerID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c)

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
