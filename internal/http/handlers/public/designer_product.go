package public

import (
	"strconv"

	handlershared "github.com/baguri-ro/baguri-api/internal/http/handlers/shared"
	"github.com/baguri-ro/baguri-api/internal/http/response"
	"github.com/baguri-ro/baguri-api/internal/repository"
	"github.com/baguri-ro/baguri-api/internal/service"

	"github.com/gin-gonic/gin"
)

// ProductCreateRequest is the listing creation payload.
type ProductCreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Price       string `json:"price" binding:"required"`
	Currency    string `json:"currency"`
	Stock       int    `json:"stock"`
	ImageURL    string `json:"image_url"`
}

// CreateProduct creates a draft listing for the authenticated designer.
func (h *Handler) CreateProduct(c *gin.Context) {
	designerID, ok := getDesignerID(c)
	if !ok {
		return
	}
	var req ProductCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	product, err := h.ProductService.Create(designerID, service.ProductCreateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Currency:    req.Currency,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		respondProductWriteError(c, err)
		return
	}
	response.Success(c, product)
}

// ProductUpdateRequest updates listing fields; absent fields are untouched.
type ProductUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *string `json:"price"`
	Stock       *int    `json:"stock"`
	ImageURL    *string `json:"image_url"`
	Status      *string `json:"status"`
}

// UpdateProduct updates one of the designer's own listings.
func (h *Handler) UpdateProduct(c *gin.Context) {
	designerID, ok := getDesignerID(c)
	if !ok {
		return
	}
	productID, ok := parseProductID(c)
	if !ok {
		return
	}
	var req ProductUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	product, err := h.ProductService.Update(designerID, productID, service.ProductUpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		Status:      req.Status,
	})
	if err != nil {
		respondProductWriteError(c, err)
		return
	}
	response.Success(c, product)
}

// ArchiveProduct takes one of the designer's listings off the storefront.
func (h *Handler) ArchiveProduct(c *gin.Context) {
	designerID, ok := getDesignerID(c)
	if !ok {
		return
	}
	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	product, err := h.ProductService.Archive(designerID, productID)
	if err != nil {
		respondProductWriteError(c, err)
		return
	}
	response.Success(c, product)
}

// ListMyProducts pages through the designer's own listings in any status.
func (h *Handler) ListMyProducts(c *gin.Context) {
	designerID, ok := getDesignerID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c)

	products, total, err := h.ProductService.List(repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		DesignerID: designerID,
		Status:     c.Query("status"),
		Search:     c.Query("search"),
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

func parseProductID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "product id invalid", nil)
		return 0, false
	}
	return uint(id), true
}
