package pricing

import (
	"context"
	"strings"
)

const (
	DefaultCreditPrice = 3.0
	DefaultCurrency    = "USD"
)

type Price struct {
	PricePerUnit float64
	CurrencyCode string
}

type Store interface {
	GetSkuPrice(ctx context.Context, sku string) Price
}

type pricingStore struct {
	fallback Price
	prices   map[string]Price
}

// NewStore returns a fixed rate card. Unknown SKUs resolve to the fallback price.
func NewStore(fallback Price, prices map[string]Price) Store {
	if fallback.PricePerUnit <= 0 {
		fallback.PricePerUnit = DefaultCreditPrice
	}
	if fallback.CurrencyCode == "" {
		fallback.CurrencyCode = DefaultCurrency
	}

	normalized := make(map[string]Price, len(prices))
	for sku, p := range prices {
		if p.CurrencyCode == "" {
			p.CurrencyCode = fallback.CurrencyCode
		}
		normalized[strings.ToLower(sku)] = p
	}
	return &pricingStore{fallback: fallback, prices: normalized}
}

func (p *pricingStore) GetSkuPrice(_ context.Context, sku string) Price {
	if price, ok := p.prices[strings.ToLower(sku)]; ok {
		return price
	}
	return p.fallback
}
