package public

import (
	"errors"

	"github.com/baguri-ro/baguri-api/internal/http/response"
	"github.com/baguri-ro/baguri-api/internal/service"

	"github.com/gin-gonic/gin"
)

// DesignerApplyRequest is the onboarding application payload.
type DesignerApplyRequest struct {
	Email        string `json:"email" binding:"required"`
	Password     string `json:"password" binding:"required"`
	BrandName    string `json:"brand_name" binding:"required"`
	Description  string `json:"description"`
	City         string `json:"city"`
	WebsiteURL   string `json:"website_url"`
	InstagramURL string `json:"instagram_url"`
}

// DesignerApply registers a new designer application.
func (h *Handler) DesignerApply(c *gin.Context) {
	var req DesignerApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	designer, err := h.DesignerService.Apply(service.DesignerApplyInput{
		Email:        req.Email,
		Password:     req.Password,
		BrandName:    req.BrandName,
		Description:  req.Description,
		City:         req.City,
		WebsiteURL:   req.WebsiteURL,
		InstagramURL: req.InstagramURL,
	})
	if err != nil {
		if errors.Is(err, service.ErrWeakPassword) {
			respondError(c, response.CodeBadRequest, err.Error(), nil)
			return
		}
		respondDesignerAuthError(c, err)
		return
	}

	response.Success(c, gin.H{
		"designer": gin.H{
			"id":         designer.ID,
			"email":      designer.Email,
			"brand_name": designer.BrandName,
			"slug":       designer.Slug,
			"status":     designer.Status,
		},
	})
}

// DesignerLoginRequest is the designer login payload.
type DesignerLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// DesignerLogin authenticates a designer and issues a token.
func (h *Handler) DesignerLogin(c *gin.Context) {
	var req DesignerLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	designer, token, expiresAt, err := h.DesignerService.Login(req.Email, req.Password)
	if err != nil {
		respondDesignerAuthError(c, err)
		return
	}

	response.Success(c, gin.H{
		"designer": gin.H{
			"id":         designer.ID,
			"email":      designer.Email,
			"brand_name": designer.BrandName,
			"slug":       designer.Slug,
			"status":     designer.Status,
		},
		"token":      token,
		"expires_at": expiresAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// DesignerMe returns the authenticated designer's profile.
func (h *Handler) DesignerMe(c *gin.Context) {
	designerID, ok := getDesignerID(c)
	if !ok {
		return
	}
	designer, err := h.DesignerService.GetByID(designerID)
	if err != nil {
		respondDesignerAuthError(c, err)
		return
	}
	response.Success(c, designer)
}

// DesignerProfileUpdateRequest updates the designer's own profile.
type DesignerProfileUpdateRequest struct {
	Description  *string `json:"description"`
	City         *string `json:"city"`
	WebsiteURL   *string `json:"website_url"`
	InstagramURL *string `json:"instagram_url"`
}

// DesignerUpdateProfile updates the authenticated designer's profile fields.
func (h *Handler) DesignerUpdateProfile(c *gin.Context) {
	designerID, ok := getDesignerID(c)
	if !ok {
		return
	}
	var req DesignerProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	designer, err := h.DesignerService.UpdateProfile(designerID, service.DesignerProfileUpdateInput{
		Description:  req.Description,
		City:         req.City,
		WebsiteURL:   req.WebsiteURL,
		InstagramURL: req.InstagramURL,
	})
	if err != nil {
		respondDesignerAuthError(c, err)
		return
	}
	response.Success(c, designer)
}
