package public

import (
	"strconv"

	"github.com/baguri-ro/baguri-api/internal/constants"
	handlershared "github.com/baguri-ro/baguri-api/internal/http/handlers/shared"
	"github.com/baguri-ro/baguri-api/internal/http/response"
	"github.com/baguri-ro/baguri-api/internal/models"
	"github.com/baguri-ro/baguri-api/internal/repository"

	"github.com/gin-gonic/gin"
)

// designerPublicView hides account fields from the storefront.
func designerPublicView(d *models.Designer) gin.H {
	return gin.H{
		"id":            d.ID,
		"brand_name":    d.BrandName,
		"slug":          d.Slug,
		"description":   d.Description,
		"city":          d.City,
		"website_url":   d.WebsiteURL,
		"instagram_url": d.InstagramURL,
		"created_at":    d.CreatedAt,
	}
}

// ListDesigners lists approved designers for the storefront.
func (h *Handler) ListDesigners(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)

	designers, total, err := h.DesignerService.List(repository.DesignerListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   constants.DesignerStatusApproved,
		Search:   c.Query("search"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "designer list failed", err)
		return
	}

	views := make([]gin.H, 0, len(designers))
	for i := range designers {
		views = append(views, designerPublicView(&designers[i]))
	}
	response.SuccessWithPage(c, views, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: handlershared.TotalPages(total, pageSize),
	})
}

// GetDesignerBySlug returns one approved designer profile.
func (h *Handler) GetDesignerBySlug(c *gin.Context) {
	designer, err := h.DesignerService.GetBySlug(c.Param("slug"))
	if err != nil {
		respondDesignerAuthError(c, err)
		return
	}
	response.Success(c, designerPublicView(designer))
}

// ListProducts lists active products, optionally scoped to one designer.
func (h *Handler) ListProducts(c *gin.Context) {
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

	products, total, err := h.ProductService.List(repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		DesignerID: designerID,
		Search:     c.Query("search"),
		OnlyActive: true,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "product list failed", err)
		return
	}
	response.SuccessWithPage(c, products, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: handlershared.TotalPages(total, pageSize),
	})
}

// GetProductBySlug returns one active product.
func (h *Handler) GetProductBySlug(c *gin.Context) {
	product, err := h.ProductService.GetBySlug(c.Param("slug"))
	if err != nil {
		respondProductWriteError(c, err)
		return
	}
	response.Success(c, product)
}
