// Package cart holds a visitor's cart: line items keyed by (product, variant),
// derived totals and durable persistence through a key-value store.
package cart

import (
	"fmt"
	"time"

	"storefront/internal/domain"
)

// State is the cart as seen by readers.
type State struct {
	Items    []domain.CartItem
	Hydrated bool
}

// Action is one of the cart mutations below.
type Action interface{ cartAction() }

type (
	AddItem struct {
		Product  domain.Product
		Quantity int
		Variant  string
	}
	RemoveItem struct {
		ID string
	}
	UpdateQuantity struct {
		ID       string
		Quantity int
	}
	UpdateVariant struct {
		ID      string
		Variant string
	}
	Clear   struct{}
	Hydrate struct {
		Items []domain.CartItem
	}
)

func (AddItem) cartAction()        {}
func (RemoveItem) cartAction()     {}
func (UpdateQuantity) cartAction() {}
func (UpdateVariant) cartAction()  {}
func (Clear) cartAction()          {}
func (Hydrate) cartAction()        {}

// Reduce returns the state after a. It never mutates s.Items in place.
func Reduce(s State, a Action, now time.Time) State {
	switch a := a.(type) {
	case AddItem:
		if idx := find(s.Items, a.Product.ID, a.Variant); idx >= 0 {
			items := clone(s.Items)
			items[idx].Quantity += a.Quantity
			s.Items = items
			return s
		}
		item := domain.CartItem{
			ID:       lineID(s.Items, a.Product.ID, a.Variant, now),
			Product:  a.Product,
			Quantity: a.Quantity,
			Variant:  a.Variant,
			AddedAt:  now,
		}
		s.Items = append(clone(s.Items), item)
		return s

	case RemoveItem:
		s.Items = without(s.Items, a.ID)
		return s

	case UpdateQuantity:
		if a.Quantity <= 0 {
			s.Items = without(s.Items, a.ID)
			return s
		}
		idx := indexOf(s.Items, a.ID)
		if idx < 0 {
			return s
		}
		items := clone(s.Items)
		items[idx].Quantity = a.Quantity
		s.Items = items
		return s

	case UpdateVariant:
		return updateVariant(s, a)

	case Clear:
		s.Items = []domain.CartItem{}
		return s

	case Hydrate:
		items := make([]domain.CartItem, 0, len(a.Items))
		for _, it := range a.Items {
			if it.Quantity < 1 || it.ID == "" {
				continue
			}
			if idx := find(items, it.Product.ID, it.Variant); idx >= 0 {
				items[idx].Quantity += it.Quantity
				continue
			}
			items = append(items, it)
		}
		s.Items = items
		s.Hydrated = true
		return s

	default:
		panic(fmt.Sprintf("cart: unhandled action %T", a))
	}
}

// A line moving onto a (product, variant) pair that already has a line is
// folded into the older of the two.
func updateVariant(s State, a UpdateVariant) State {
	idx := indexOf(s.Items, a.ID)
	if idx < 0 || s.Items[idx].Variant == a.Variant {
		return s
	}
	items := clone(s.Items)
	moving := items[idx]
	other := find(items, moving.Product.ID, a.Variant)
	if other < 0 {
		items[idx].Variant = a.Variant
		s.Items = items
		return s
	}

	keep, drop := other, idx
	if moving.AddedAt.Before(items[other].AddedAt) {
		keep, drop = idx, other
	}
	items[keep].Quantity = moving.Quantity + items[other].Quantity
	items[keep].Variant = a.Variant
	s.Items = append(items[:drop], items[drop+1:]...)
	return s
}

func find(items []domain.CartItem, productID, variant string) int {
	for i, it := range items {
		if it.Product.ID == productID && it.Variant == variant {
			return i
		}
	}
	return -1
}

func indexOf(items []domain.CartItem, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func without(items []domain.CartItem, id string) []domain.CartItem {
	out := make([]domain.CartItem, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}

func clone(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, len(items), len(items)+1)
	copy(out, items)
	return out
}

func lineID(items []domain.CartItem, productID, variant string, now time.Time) string {
	v := variant
	if v == "" {
		v = "default"
	}
	base := fmt.Sprintf("%s-%s-%d", productID, v, now.UnixMilli())
	id := base
	for n := 2; indexOf(items, id) >= 0; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	return id
}

func totalItems(items []domain.CartItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

func totalPrice(items []domain.CartItem) int64 {
	var sum int64
	for _, it := range items {
		sum += it.LineTotalCents()
	}
	return sum
}
