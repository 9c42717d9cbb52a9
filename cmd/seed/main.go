package main

import (
	"time"

	"github.com/baguri-ro/baguri-api/internal/config"
	"github.com/baguri-ro/baguri-api/internal/constants"
	"github.com/baguri-ro/baguri-api/internal/logger"
	"github.com/baguri-ro/baguri-api/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("failed to migrate database: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("Designer-Demo-1"), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("failed to hash demo password: %v", err)
	}
	now := time.Now()

	designers := []models.Designer{
		{
			Email:        "ana@atelier-ana.ro",
			PasswordHash: string(hash),
			BrandName:    "Atelier Ana",
			Slug:         "atelier-ana",
			Description:  "Hand-tailored evening wear from Bucharest.",
			City:         "Bucharest",
			Status:       constants.DesignerStatusApproved,
			ApprovedAt:   &now,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			Email:        "mihai@nord-studio.ro",
			PasswordHash: string(hash),
			BrandName:    "Nord Studio",
			Slug:         "nord-studio",
			Description:  "Minimal knitwear made in Cluj.",
			City:         "Cluj-Napoca",
			Status:       constants.DesignerStatusApproved,
			ApprovedAt:   &now,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			Email:        "ioana@ioana-couture.ro",
			PasswordHash: string(hash),
			BrandName:    "Ioana Couture",
			Slug:         "ioana-couture",
			Description:  "Application pending review.",
			City:         "Iasi",
			Status:       constants.DesignerStatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}

	designerIDs := map[string]uint{}
	for _, d := range designers {
		var existing models.Designer
		if err := models.DB.Where("slug = ?", d.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&d).Error; err != nil {
				stdLog.Printf("failed to create designer %s: %v", d.Slug, err)
				continue
			}
			stdLog.Printf("created designer: %s", d.Slug)
			designerIDs[d.Slug] = d.ID
		} else {
			stdLog.Printf("designer already exists: %s", d.Slug)
			designerIDs[d.Slug] = existing.ID
		}
	}

	products := []models.Product{
		{
			DesignerID:  designerIDs["atelier-ana"],
			Name:        "Silk Wrap Dress",
			Slug:        "silk-wrap-dress",
			Description: "Midnight blue silk, made to order.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromInt(890)),
			Currency:    constants.SiteCurrencyDefault,
			Stock:       5,
			Status:      constants.ProductStatusActive,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			DesignerID:  designerIDs["atelier-ana"],
			Name:        "Linen Summer Set",
			Slug:        "linen-summer-set",
			Description: "Two-piece natural linen set.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromInt(450)),
			Currency:    constants.SiteCurrencyDefault,
			Stock:       12,
			Status:      constants.ProductStatusActive,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			DesignerID:  designerIDs["nord-studio"],
			Name:        "Merino Oversize Sweater",
			Slug:        "merino-oversize-sweater",
			Description: "Undyed merino wool, one size.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromInt(520)),
			Currency:    constants.SiteCurrencyDefault,
			Stock:       -1,
			Status:      constants.ProductStatusActive,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}

	for _, p := range products {
		if p.DesignerID == 0 {
			continue
		}
		var existing models.Product
		if err := models.DB.Where("slug = ?", p.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&p).Error; err != nil {
				stdLog.Printf("failed to create product %s: %v", p.Slug, err)
			} else {
				stdLog.Printf("created product: %s", p.Slug)
			}
		} else {
			stdLog.Printf("product already exists: %s", p.Slug)
		}
	}

	stdLog.Printf("seed finished")
}
