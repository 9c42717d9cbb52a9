package admin

import (
	"errors"
	"strconv"

	handlershared "github.com/baguri-ro/baguri-api/internal/http/handlers/shared"
	"github.com/baguri-ro/baguri-api/internal/http/response"
	"github.com/baguri-ro/baguri-api/internal/repository"
	"github.com/baguri-ro/baguri-api/internal/service"

	"github.com/gin-gonic/gin"
)

// ListDesigners pages through designer accounts in any status.
func (h *Handler) ListDesigners(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)

	designers, total, err := h.DesignerService.List(repository.DesignerListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   c.Query("status"),
		Search:   c.Query("search"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "designer list failed", err)
		return
	}
	response.SuccessWithPage(c, designers, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: handlershared.TotalPages(total, pageSize),
	})
}

// GetDesigner returns one designer account.
func (h *Handler) GetDesigner(c *gin.Context) {
	designerID, ok := parseIDParam(c)
	if !ok {
		return
	}
	designer, err := h.DesignerService.GetByID(designerID)
	if err != nil {
		respondDesignerReviewError(c, err)
		return
	}
	response.Success(c, designer)
}

// ApproveDesigner moves a pending application to approved.
func (h *Handler) ApproveDesigner(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	designerID, ok := parseIDParam(c)
	if !ok {
		return
	}

	designer, err := h.DesignerService.Approve(designerID, adminID)
	if err != nil {
		respondDesignerReviewError(c, err)
		return
	}
	response.Success(c, designer)
}

// DesignerRejectRequest carries the rejection reason.
type DesignerRejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RejectDesigner moves a pending application to rejected.
func (h *Handler) RejectDesigner(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	designerID, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req DesignerRejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	designer, err := h.DesignerService.Reject(designerID, adminID, req.Reason)
	if err != nil {
		respondDesignerReviewError(c, err)
		return
	}
	response.Success(c, designer)
}

func respondDesignerReviewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDesignerNotFound):
		respondError(c, response.CodeNotFound, "designer not found", nil)
	case errors.Is(err, service.ErrDesignerStatusInvalid):
		respondError(c, response.CodeBadRequest, "designer not pending review", nil)
	default:
		respondError(c, response.CodeInternal, "designer review failed", err)
	}
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "id invalid", nil)
		return 0, false
	}
	return uint(id), true
}
