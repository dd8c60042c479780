package product

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
)

const defaultLimit = 50

// ErrInvalidQuery wraps every rejection of a malformed listing query.
var ErrInvalidQuery = errors.New("invalid query")

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

// Query narrows and orders the catalog listing. Zero values mean "no filter".
type Query struct {
	CategoryKey   string
	Text          string
	MinPriceCents *int64
	MaxPriceCents *int64
	Sort          string
	Limit         int
	Offset        int
}

// Page is one slice of a filtered listing; Total counts all matches.
type Page struct {
	Results []domain.Product `json:"results"`
	Total   int              `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

func (s *Service) List(ctx context.Context, q Query) (Page, error) {
	if q.Limit < 0 || q.Offset < 0 {
		return Page{}, fmt.Errorf("%w: limit and offset must not be negative", ErrInvalidQuery)
	}
	if q.MinPriceCents != nil && q.MaxPriceCents != nil && *q.MinPriceCents > *q.MaxPriceCents {
		return Page{}, fmt.Errorf("%w: minPrice must not exceed maxPrice", ErrInvalidQuery)
	}
	all, err := s.repo.List(ctx)
	if err != nil {
		return Page{}, err
	}

	filtered := make([]domain.Product, 0, len(all))
	text := strings.ToLower(strings.TrimSpace(q.Text))
	for _, p := range all {
		if q.CategoryKey != "" && !strings.EqualFold(p.CategoryKey, q.CategoryKey) {
			continue
		}
		if q.MinPriceCents != nil && p.PriceCents < *q.MinPriceCents {
			continue
		}
		if q.MaxPriceCents != nil && p.PriceCents > *q.MaxPriceCents {
			continue
		}
		if text != "" && !strings.Contains(strings.ToLower(p.Name), text) {
			continue
		}
		filtered = append(filtered, p)
	}
	if err := sortProducts(filtered, q.Sort); err != nil {
		return Page{}, err
	}

	limit := q.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	page := Page{Total: len(filtered), Limit: limit, Offset: q.Offset, Results: []domain.Product{}}
	if q.Offset < len(filtered) {
		end := q.Offset + limit
		if end > len(filtered) {
			end = len(filtered)
		}
		page.Results = filtered[q.Offset:end]
	}
	return page, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func sortProducts(products []domain.Product, by string) error {
	var less func(a, b domain.Product) bool
	switch strings.TrimSpace(by) {
	case "", "name":
		less = func(a, b domain.Product) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case "price":
		less = func(a, b domain.Product) bool { return a.PriceCents < b.PriceCents }
	case "-price":
		less = func(a, b domain.Product) bool { return a.PriceCents > b.PriceCents }
	case "newest":
		less = func(a, b domain.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	default:
		return fmt.Errorf("%w: unsupported sort %q", ErrInvalidQuery, by)
	}
	sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
	return nil
}
