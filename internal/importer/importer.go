// Package importer loads catalog CSV exports (products or categories) into
// the catalog repositories.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logging"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type CategoryWriter interface {
	Upsert(ctx context.Context, c domain.Category) (*domain.Category, error)
}

// Kind is the type of rows a CSV export carries.
type Kind string

const (
	KindProducts   Kind = "products"
	KindCategories Kind = "categories"
)

// CSVImporter reads catalog CSV exports and inserts/updates their rows.
type CSVImporter struct {
	reader     *csv.Reader
	products   ProductWriter
	categories CategoryWriter
	logger     *zap.Logger
}

func NewCSVImporter(r io.Reader, products ProductWriter, categories CategoryWriter, logger *zap.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:     csvr,
		products:   products,
		categories: categories,
		logger:     logging.OrNop(logger),
	}
}

// DetectKind peeks at the header row.
func DetectKind(r io.Reader) (Kind, error) {
	headers, err := csv.NewReader(r).Read()
	if err != nil {
		return "", fmt.Errorf("read headers: %w", err)
	}
	return kindOf(headerIndex(headers))
}

func kindOf(index map[string]int) (Kind, error) {
	if _, ok := index["variants.sku"]; ok {
		return KindProducts, nil
	}
	_, slug := index["slug.en"]
	_, parent := index["parent.key"]
	if slug || parent {
		return KindCategories, nil
	}
	return "", errors.New("unrecognised csv export: expected product or category columns")
}

type csvRow struct {
	ID          string
	Key         string
	Name        string
	Desc        string
	SKU         string
	Cents       int64
	Currency    string
	ProductType string
	Categories  []string
	ImageURLs   []string
}

// Run imports every row and returns how many products or categories were written.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	kind, err := kindOf(index)
	if err != nil {
		return 0, err
	}
	i.logger.Info("import started", zap.String("kind", string(kind)))

	var n int
	switch kind {
	case KindCategories:
		n, err = i.runCategories(ctx, index)
	default:
		n, err = i.runProducts(ctx, index)
	}
	if err != nil {
		return n, err
	}
	i.logger.Info("import finished", zap.String("kind", string(kind)), zap.Int("count", n))
	return n, nil
}

func (i *CSVImporter) runProducts(ctx context.Context, index map[string]int) (int, error) {
	if i.products == nil {
		return 0, errors.New("product writer not configured")
	}
	var (
		current  *csvRow
		imported int
		seenCats = map[string]bool{}
	)
	flush := func() error {
		if current == nil {
			return nil
		}
		if err := i.saveProduct(ctx, current, seenCats); err != nil {
			return err
		}
		imported++
		return nil
	}

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row := parseRow(record, index)
		if row == nil {
			continue
		}
		if row.Key != "" {
			if err := flush(); err != nil {
				return imported, err
			}
			current = row
			continue
		}
		// Continuation rows (images) belong to the current product.
		if current != nil && len(row.ImageURLs) > 0 {
			current.ImageURLs = append(current.ImageURLs, row.ImageURLs...)
		}
	}
	if err := flush(); err != nil {
		return imported, err
	}
	return imported, nil
}

func (i *CSVImporter) saveProduct(ctx context.Context, row *csvRow, seenCats map[string]bool) error {
	if row.Key == "" || row.Name == "" || row.SKU == "" || row.Cents == 0 || row.Currency == "" {
		return fmt.Errorf("invalid product row (missing required fields) for key %q", row.Key)
	}
	id := row.ID
	if id == "" {
		id = uuid.NewString()
	} else if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid id for key %q: %s", row.Key, row.ID)
	}

	cats := row.Categories
	if len(cats) == 0 && row.ProductType != "" {
		cats = []string{row.ProductType}
	}
	attrs := map[string]interface{}{}
	if len(row.Categories) > 0 {
		attrs["categories"] = row.Categories
	}
	if row.ProductType != "" {
		attrs["productType"] = row.ProductType
	}

	p := domain.Product{
		ID:          id,
		Key:         row.Key,
		SKU:         row.SKU,
		Name:        row.Name,
		Description: row.Desc,
		PriceCents:  row.Cents,
		Currency:    row.Currency,
		Images:      row.ImageURLs,
		Attributes:  attrs,
	}
	if len(cats) > 0 {
		p.CategoryKey = cats[0]
	}

	if i.categories != nil {
		for _, key := range cats {
			if seenCats[key] {
				continue
			}
			seenCats[key] = true
			if _, err := i.categories.Upsert(ctx, domain.Category{Key: key, Name: titleFromKey(key), Slug: key}); err != nil {
				return fmt.Errorf("upsert category %q: %w", key, err)
			}
		}
	}

	if _, err := i.products.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert product %q: %w", row.Key, err)
	}
	return nil
}

// runCategories reads the whole file first: a row without parent.key gets
// the category whose order hint is its own hint minus the last segment.
func (i *CSVImporter) runCategories(ctx context.Context, index map[string]int) (int, error) {
	if i.categories == nil {
		return 0, errors.New("category writer not configured")
	}
	var rows []domain.Category
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read row: %w", err)
		}
		key := pick(record, index, "key")
		slug := pick(record, index, "slug.en")
		if key == "" {
			key = slug
		}
		if key == "" {
			continue
		}
		if slug == "" {
			slug = key
		}
		name := pick(record, index, "name.en")
		if name == "" {
			name = titleFromKey(key)
		}
		rows = append(rows, domain.Category{
			Key:       key,
			Name:      name,
			Slug:      slug,
			ParentKey: pick(record, index, "parent.key"),
			OrderHint: pick(record, index, "orderHint"),
		})
	}

	byHint := make(map[string]string, len(rows))
	for _, c := range rows {
		if c.OrderHint != "" {
			byHint[c.OrderHint] = c.Key
		}
	}
	for n, c := range rows {
		if c.ParentKey != "" || !strings.Contains(c.OrderHint, ".") {
			continue
		}
		prefix := c.OrderHint[:strings.LastIndex(c.OrderHint, ".")]
		if parent, ok := byHint[prefix]; ok && parent != c.Key {
			rows[n].ParentKey = parent
		}
	}

	for n, c := range rows {
		if _, err := i.categories.Upsert(ctx, c); err != nil {
			return n, fmt.Errorf("upsert category %q: %w", c.Key, err)
		}
	}
	return len(rows), nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) *csvRow {
	key := pick(record, index, "key")
	imageURL := pick(record, index, "variants.images.url")
	if key == "" && imageURL == "" {
		return nil
	}

	var cents int64
	if centStr := pick(record, index, "variants.prices.value.centAmount"); centStr != "" {
		cents, _ = strconv.ParseInt(centStr, 10, 64)
	}

	row := &csvRow{
		ID:          pick(record, index, "id"),
		Key:         key,
		Name:        pick(record, index, "name.en"),
		Desc:        pick(record, index, "description.en"),
		SKU:         pick(record, index, "variants.sku"),
		Cents:       cents,
		Currency:    pick(record, index, "variants.prices.value.currencyCode"),
		ProductType: pick(record, index, "productType.key"),
	}
	for _, c := range strings.Split(pick(record, index, "categories"), ";") {
		if c = strings.TrimSpace(c); c != "" {
			row.Categories = append(row.Categories, c)
		}
	}
	if imageURL != "" {
		row.ImageURLs = []string{imageURL}
	}
	return row
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func titleFromKey(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool { return r == '-' || r == '_' })
	for n, w := range words {
		words[n] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
