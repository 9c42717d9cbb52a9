package cache

import (
	"context"
	"fmt"
	"time"
)

const priceMapCacheTTL = 30 * time.Minute

// Stripe price ids are persisted on the product row; this cache is a
// read-through layer only, never the source of truth.

// PriceMapping pairs a Stripe price id with the unit amount it charges.
// Carrying the amount lets callers reject a mapping created for a
// different listing price without a database round trip.
type PriceMapping struct {
	PriceID    string `json:"price_id"`
	UnitAmount string `json:"unit_amount"`
}

func stripePriceKey(productID uint) string {
	return fmt.Sprintf("stripe:price:%d", productID)
}

// GetPriceMapping reads the cached Stripe price mapping for a product.
func GetPriceMapping(ctx context.Context, productID uint) (PriceMapping, bool, error) {
	if productID == 0 {
		return PriceMapping{}, false, nil
	}
	var mapping PriceMapping
	hit, err := GetJSON(ctx, stripePriceKey(productID), &mapping)
	if err != nil || !hit {
		return PriceMapping{}, hit, err
	}
	return mapping, true, nil
}

// SetPriceMapping caches the Stripe price mapping for a product.
func SetPriceMapping(ctx context.Context, productID uint, mapping PriceMapping) error {
	if productID == 0 || mapping.PriceID == "" {
		return nil
	}
	return SetJSON(ctx, stripePriceKey(productID), mapping, priceMapCacheTTL)
}

// DelPriceMapping drops the cached mapping after a product price change.
func DelPriceMapping(ctx context.Context, productID uint) error {
	if productID == 0 {
		return nil
	}
	return Del(ctx, stripePriceKey(productID))
}
