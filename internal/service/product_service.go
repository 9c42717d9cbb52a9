package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/baguri-ro/baguri-api/internal/cache"
	"github.com/baguri-ro/baguri-api/internal/constants"
	"github.com/baguri-ro/baguri-api/internal/logger"
	"github.com/baguri-ro/baguri-api/internal/models"
	"github.com/baguri-ro/baguri-api/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductService handles designer product listings.
type ProductService struct {
	productRepo  repository.ProductRepository
	designerRepo repository.DesignerRepository
}

// ProductCreateInput is the listing creation payload.
type ProductCreateInput struct {
	Name        string
	Description string
	Price       string
	Currency    string
	Stock       int
	ImageURL    string
}

// ProductUpdateInput updates listing fields; nil fields are left untouched.
type ProductUpdateInput struct {
	Name        *string
	Description *string
	Price       *string
	Stock       *int
	ImageURL    *string
	Status      *string
}

// NewProductService builds a product service.
func NewProductService(productRepo repository.ProductRepository, designerRepo repository.DesignerRepository) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		designerRepo: designerRepo,
	}
}

// Create registers a new draft listing for an approved designer.
func (s *ProductService) Create(designerID uint, input ProductCreateInput) (*models.Product, error) {
	designer, err := s.designerRepo.GetByID(designerID)
	if err != nil {
		return nil, err
	}
	if designer == nil {
		return nil, ErrDesignerNotFound
	}
	if designer.Status != constants.DesignerStatusApproved {
		return nil, ErrDesignerNotApproved
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrProductInvalid
	}
	price, err := parsePrice(input.Price)
	if err != nil {
		return nil, err
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = constants.SiteCurrencyDefault
	}
	stock := input.Stock
	if stock < constants.ProductStockUnlimited {
		return nil, ErrProductInvalid
	}

	slug, err := s.uniqueSlug(name)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	product := &models.Product{
		DesignerID:  designerID,
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(input.Description),
		Price:       price,
		Currency:    currency,
		Stock:       stock,
		Status:      constants.ProductStatusDraft,
		ImageURL:    strings.TrimSpace(input.ImageURL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}

	logger.Infow("product_created", "product_id", product.ID, "designer_id", designerID, "slug", slug)
	return product, nil
}

func parsePrice(raw string) (models.Money, error) {
	parsed, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || parsed.LessThanOrEqual(decimal.Zero) {
		return models.Money{}, ErrProductPriceInvalid
	}
	return models.NewMoneyFromDecimal(parsed), nil
}

func (s *ProductService) uniqueSlug(name string) (string, error) {
	base := slugify(name)
	if base == "" {
		base = "product"
	}
	slug := base
	for i := 2; ; i++ {
		existing, err := s.productRepo.GetBySlug(slug)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return slug, nil
		}
		if i > 50 {
			return "", ErrProductSlugTaken
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// GetByID fetches a listing.
func (s *ProductService) GetByID(id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// GetBySlug fetches a listing by public slug; only active listings are
// visible.
func (s *ProductService) GetBySlug(slug string) (*models.Product, error) {
	product, err := s.productRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if product == nil || product.Status != constants.ProductStatusActive {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// List pages through listings.
func (s *ProductService) List(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	return s.productRepo.List(filter)
}

// Update edits a listing owned by the designer.
func (s *ProductService) Update(designerID, productID uint, input ProductUpdateInput) (*models.Product, error) {
	product, err := s.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product.DesignerID != designerID {
		return nil, ErrProductNotOwned
	}

	priceChanged := false
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrProductInvalid
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		price, err := parsePrice(*input.Price)
		if err != nil {
			return nil, err
		}
		if !price.Equal(product.Price.Decimal) {
			product.Price = price
			priceChanged = true
		}
	}
	if input.Stock != nil {
		if *input.Stock < constants.ProductStockUnlimited {
			return nil, ErrProductInvalid
		}
		product.Stock = *input.Stock
	}
	if input.ImageURL != nil {
		product.ImageURL = strings.TrimSpace(*input.ImageURL)
	}
	if input.Status != nil {
		switch *input.Status {
		case constants.ProductStatusDraft, constants.ProductStatusActive, constants.ProductStatusArchived:
			product.Status = *input.Status
		default:
			return nil, ErrProductInvalid
		}
	}

	if priceChanged {
		// A new Stripe price is created lazily at the next checkout.
		product.StripePriceID = ""
		_ = cache.DelPriceMapping(context.Background(), product.ID)
	}
	product.UpdatedAt = time.Now()
	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Archive takes a listing off the storefront without deleting it.
func (s *ProductService) Archive(designerID, productID uint) (*models.Product, error) {
	status := constants.ProductStatusArchived
	return s.Update(designerID, productID, ProductUpdateInput{Status: &status})
}

// ResolveStripePriceID returns the persisted Stripe price id for a product,
// reading through the cache. Returns empty when no mapping exists or the
// mapping charges a different amount than unitPrice, so order items
// snapshotted before a price change fall back to inline pricing.
func (s *ProductService) ResolveStripePriceID(ctx context.Context, productID uint, unitPrice models.Money) (string, error) {
	want := unitPrice.Decimal.Round(2)
	if cached, hit, err := cache.GetPriceMapping(ctx, productID); err == nil && hit && cached.PriceID != "" {
		if amount, err := decimal.NewFromString(cached.UnitAmount); err == nil && amount.Equal(want) {
			return cached.PriceID, nil
		}
		return "", nil
	}
	product, err := s.GetByID(productID)
	if err != nil {
		return "", err
	}
	if product.StripePriceID == "" || !product.Price.Decimal.Round(2).Equal(want) {
		return "", nil
	}
	_ = cache.SetPriceMapping(ctx, productID, cache.PriceMapping{
		PriceID:    product.StripePriceID,
		UnitAmount: product.Price.Decimal.Round(2).String(),
	})
	return product.StripePriceID, nil
}

// SaveStripePriceID persists a Stripe price id on the product row and primes
// the cache. The id is dropped when the listing no longer charges unitPrice;
// a mapping created from a stale order snapshot must not shadow the price.
func (s *ProductService) SaveStripePriceID(ctx context.Context, productID uint, priceID string, unitPrice models.Money) error {
	priceID = strings.TrimSpace(priceID)
	if productID == 0 || priceID == "" {
		return nil
	}
	product, err := s.GetByID(productID)
	if err != nil {
		return err
	}
	if !product.Price.Decimal.Round(2).Equal(unitPrice.Decimal.Round(2)) {
		return nil
	}
	product.StripePriceID = priceID
	product.UpdatedAt = time.Now()
	if err := s.productRepo.Update(product); err != nil {
		return err
	}
	return cache.SetPriceMapping(ctx, productID, cache.PriceMapping{
		PriceID:    priceID,
		UnitAmount: product.Price.Decimal.Round(2).String(),
	})
}
