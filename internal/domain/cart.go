package domain

import "time"

// CartItem is a single (product, variant) line in a visitor's cart. The product
// is copied into the line so stored carts keep their prices when the catalog changes.
type CartItem struct {
	ID       string    `json:"id"`
	Product  Product   `json:"product"`
	Quantity int       `json:"quantity"`
	Variant  string    `json:"variant,omitempty"`
	AddedAt  time.Time `json:"addedAt"`
}

// LineTotalCents is price times quantity for the line.
func (i CartItem) LineTotalCents() int64 {
	return i.Product.PriceCents * int64(i.Quantity)
}
