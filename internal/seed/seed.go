// Package seed loads the demo catalog and a demo account.
package seed

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logging"
	categoryrepo "storefront/internal/repository/category"
	productrepo "storefront/internal/repository/product"
	customersvc "storefront/internal/service/customer"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type CategoryWriter interface {
	Upsert(ctx context.Context, c domain.Category) (*domain.Category, error)
}

type Registrar interface {
	Register(ctx context.Context, in domain.Registration) (*domain.AuthSession, error)
}

// DemoAccount is the login created by Apply.
var DemoAccount = domain.Registration{
	Email:    "demo@storefront.test",
	Password: "Password1",
	Name:     "Demo Shopper",
	Addresses: []domain.Address{
		{Label: "Home", Name: "Demo Shopper", Street: "12 Market Street", City: "Springfield", PostalCode: "12345", Country: "US", IsDefault: true},
	},
}

// Apply inserts the demo data. It is idempotent: catalog rows are upserted by
// key and an existing demo account is left alone.
func Apply(ctx context.Context, products ProductWriter, categories CategoryWriter, accounts Registrar, logger *zap.Logger) error {
	logger = logging.OrNop(logger)

	for _, c := range categoryrepo.Fixtures() {
		c.ID = ""
		if _, err := categories.Upsert(ctx, c); err != nil {
			return fmt.Errorf("upsert category %s: %w", c.Key, err)
		}
	}
	for _, p := range productrepo.Fixtures() {
		// fixture ids are readable slugs; the database assigns uuids
		p.ID = ""
		if _, err := products.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Key, err)
		}
	}

	if accounts != nil {
		_, err := accounts.Register(ctx, DemoAccount)
		switch {
		case errors.Is(err, customersvc.ErrEmailTaken):
			logger.Info("demo account already present", zap.String("email", DemoAccount.Email))
		case err != nil:
			return fmt.Errorf("register demo account: %w", err)
		}
	}

	logger.Info("seed applied",
		zap.Int("categories", len(categoryrepo.Fixtures())),
		zap.Int("products", len(productrepo.Fixtures())),
	)
	return nil
}
