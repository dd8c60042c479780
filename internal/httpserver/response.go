package httpserver

import (
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/state/cart"
)

const defaultCurrency = "USD"

type priceValue struct {
	Type           string `json:"type"`
	CurrencyCode   string `json:"currencyCode"`
	CentAmount     int64  `json:"centAmount"`
	FractionDigits int    `json:"fractionDigits"`
}

type imageView struct {
	URL string `json:"url"`
}

type productView struct {
	ID          string                 `json:"id"`
	Key         string                 `json:"key,omitempty"`
	SKU         string                 `json:"sku,omitempty"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Slug        string                 `json:"slug,omitempty"`
	CategoryKey string                 `json:"categoryKey,omitempty"`
	Price       priceValue             `json:"price"`
	Images      []imageView            `json:"images"`
	Attributes  map[string]interface{} `json:"attributes,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
}

type productPageView struct {
	Results []productView `json:"results"`
	Total   int           `json:"total"`
	Limit   int           `json:"limit"`
	Offset  int           `json:"offset"`
}

type lineView struct {
	ID         string      `json:"id"`
	ProductID  string      `json:"productId"`
	ProductKey string      `json:"productKey,omitempty"`
	Name       string      `json:"name"`
	Slug       string      `json:"slug,omitempty"`
	Variant    string      `json:"variant,omitempty"`
	Price      priceValue  `json:"price"`
	Quantity   int         `json:"quantity"`
	Images     []imageView `json:"images"`
	AddedAt    time.Time   `json:"addedAt"`
	TotalPrice priceValue  `json:"totalPrice"`
}

type cartView struct {
	Items      []lineView `json:"items"`
	TotalItems int        `json:"totalItems"`
	TotalPrice priceValue `json:"totalPrice"`
}

func money(currency string, cents int64) priceValue {
	if currency == "" {
		currency = defaultCurrency
	}
	return priceValue{Type: "centPrecision", CurrencyCode: currency, CentAmount: cents, FractionDigits: 2}
}

func slugOf(p domain.Product) string {
	if p.Key == "" {
		return ""
	}
	return strings.ReplaceAll(strings.ToLower(p.Key), " ", "-")
}

func imagesFromURLs(urls []string) []imageView {
	images := make([]imageView, 0, len(urls))
	for _, u := range urls {
		if strings.TrimSpace(u) == "" {
			continue
		}
		images = append(images, imageView{URL: u})
	}
	return images
}

func toProductView(p domain.Product) productView {
	name := p.Name
	if name == "" {
		name = p.Key
	}
	return productView{
		ID:          p.ID,
		Key:         p.Key,
		SKU:         p.SKU,
		Name:        name,
		Description: p.Description,
		Slug:        slugOf(p),
		CategoryKey: p.CategoryKey,
		Price:       money(p.Currency, p.PriceCents),
		Images:      imagesFromURLs(p.Images),
		Attributes:  p.Attributes,
		CreatedAt:   p.CreatedAt,
	}
}

func toCartView(s cart.Snapshot) cartView {
	currency := defaultCurrency
	lines := make([]lineView, 0, len(s.Items))
	for _, it := range s.Items {
		if it.Product.Currency != "" && len(lines) == 0 {
			currency = it.Product.Currency
		}
		name := it.Product.Name
		if name == "" {
			name = it.Product.ID
		}
		lines = append(lines, lineView{
			ID:         it.ID,
			ProductID:  it.Product.ID,
			ProductKey: it.Product.Key,
			Name:       name,
			Slug:       slugOf(it.Product),
			Variant:    it.Variant,
			Price:      money(it.Product.Currency, it.Product.PriceCents),
			Quantity:   it.Quantity,
			Images:     imagesFromURLs(it.Product.Images),
			AddedAt:    it.AddedAt,
			TotalPrice: money(it.Product.Currency, it.LineTotalCents()),
		})
	}
	return cartView{
		Items:      lines,
		TotalItems: s.TotalItems,
		TotalPrice: money(currency, s.TotalPriceCents),
	}
}
