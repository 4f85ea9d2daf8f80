package billing

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Backend creates catalog objects in the payment processor and returns their
// processor-side IDs.
type Backend interface {
	CreateProduct(ctx context.Context, p Product) (string, error)
	CreatePrice(ctx context.Context, productID string, tier string, p Price) (string, error)
}

// Created records one provisioned price.
type Created struct {
	Tier      string `json:"tier"`
	ProductID string `json:"product_id"`
	PriceID   string `json:"price_id,omitempty"`
	Currency  string `json:"currency"`
	Cycle     Cycle  `json:"cycle"`
	Amount    int64  `json:"amount"`
}

// Report is the outcome of a provisioning run.
type Report struct {
	DryRun  bool      `json:"dry_run"`
	Created []Created `json:"created"`
}

// Provisioner walks a catalog and creates each product once, then its prices.
type Provisioner struct {
	backend Backend
	dryRun  bool
	logger  zerolog.Logger
}

type ProvisionerOption func(*Provisioner)

// WithDryRun makes Provision report the matrix without calling the backend.
func WithDryRun(dry bool) ProvisionerOption {
	return func(p *Provisioner) { p.dryRun = dry }
}

func WithProvisionLogger(l zerolog.Logger) ProvisionerOption {
	return func(p *Provisioner) { p.logger = l }
}

func NewProvisioner(backend Backend, opts ...ProvisionerOption) *Provisioner {
	p := &Provisioner{backend: backend, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Provision creates the catalog. On failure the report holds everything
// created before the error so the operator can clean up or resume.
func (p *Provisioner) Provision(ctx context.Context, c Catalog) (Report, error) {
	report := Report{DryRun: p.dryRun}

	if err := c.Validate(); err != nil {
		return report, err
	}

	for _, prod := range c.Products {
		tier := string(prod.Tier)

		productID := "dry-run:" + tier
		if !p.dryRun {
			id, err := p.backend.CreateProduct(ctx, prod)
			if err != nil {
				return report, fmt.Errorf("create product %s: %w", tier, err)
			}
			productID = id
			p.logger.Info().Str("tier", tier).Str("product_id", id).Msg("product created")
		}

		for _, price := range prod.Prices {
			created := Created{
				Tier:      tier,
				ProductID: productID,
				Currency:  price.Currency,
				Cycle:     price.Cycle,
				Amount:    price.Amount,
			}

			if !p.dryRun {
				id, err := p.backend.CreatePrice(ctx, productID, tier, price)
				if err != nil {
					return report, fmt.Errorf("create price %s %s: %w", tier, price.Description(), err)
				}
				created.PriceID = id
				p.logger.Info().
					Str("tier", tier).
					Str("price_id", id).
					Str("currency", price.Currency).
					Str("cycle", string(price.Cycle)).
					Msg("price created")
			}

			report.Created = append(report.Created, created)
		}
	}

	return report, nil
}
