// Package billing provisions the paid plans as products and prices in the
// payment processor. It is setup tooling run by operators, never by the CLI.
package billing

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Meet0105/repoza-sub001/internal/core/plans"
)

// Cycle is a billing interval.
type Cycle string

const (
	CycleMonth Cycle = "month"
	CycleYear  Cycle = "year"
)

// Currencies every paid plan is priced in.
var Currencies = []string{"USD", "EUR", "GBP"}

// yearlyMonths is how many months a yearly price charges for.
const yearlyMonths = 10

var ErrInvalidCatalog = errors.New("invalid catalog")

// Price is a single recurring price for a product.
type Price struct {
	Currency string `json:"currency"`
	Cycle    Cycle  `json:"cycle"`
	// Amount is in the currency's minor unit (cents, pence).
	Amount int64 `json:"amount"`
}

// Description is the human label of the price.
func (p Price) Description() string {
	return fmt.Sprintf("%s %sly", p.Currency, p.Cycle)
}

// Product is a paid plan with its prices.
type Product struct {
	Tier        plans.Tier `json:"tier"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Prices      []Price    `json:"prices"`
}

// Catalog is the full set of products to provision.
type Catalog struct {
	Products []Product `json:"products"`
}

// DefaultCatalog derives products from the paid tiers in the plans table:
// every currency at the plan's monthly price, plus a yearly price billed as
// ten months.
func DefaultCatalog() Catalog {
	var c Catalog
	for _, l := range plans.All() {
		if l.MonthlyPriceUSD <= 0 {
			continue
		}

		monthly := int64(l.MonthlyPriceUSD * 100)
		p := Product{
			Tier:        l.Tier,
			Name:        "repoza " + l.Name,
			Description: strings.Join(l.Features, ", "),
		}
		for _, cur := range Currencies {
			p.Prices = append(p.Prices,
				Price{Currency: cur, Cycle: CycleMonth, Amount: monthly},
				Price{Currency: cur, Cycle: CycleYear, Amount: monthly * yearlyMonths},
			)
		}
		c.Products = append(c.Products, p)
	}
	return c
}

// Validate checks that every product names a paid tier once and every price
// is positive in a supported currency and cycle.
func (c Catalog) Validate() error {
	if len(c.Products) == 0 {
		return fmt.Errorf("%w: no products", ErrInvalidCatalog)
	}

	seen := make(map[plans.Tier]bool)
	for _, p := range c.Products {
		if _, err := plans.Lookup(p.Tier); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
		}
		if seen[p.Tier] {
			return fmt.Errorf("%w: duplicate product %q", ErrInvalidCatalog, p.Tier)
		}
		seen[p.Tier] = true

		if p.Name == "" {
			return fmt.Errorf("%w: product %q has no name", ErrInvalidCatalog, p.Tier)
		}

		for _, pr := range p.Prices {
			if !slices.Contains(Currencies, pr.Currency) {
				return fmt.Errorf("%w: %s: unsupported currency %q", ErrInvalidCatalog, p.Tier, pr.Currency)
			}
			if pr.Cycle != CycleMonth && pr.Cycle != CycleYear {
				return fmt.Errorf("%w: %s: unsupported cycle %q", ErrInvalidCatalog, p.Tier, pr.Cycle)
			}
			if pr.Amount <= 0 {
				return fmt.Errorf("%w: %s: %s must be positive", ErrInvalidCatalog, p.Tier, pr.Description())
			}
		}
	}
	return nil
}

// Len returns the number of prices in the catalog.
func (c Catalog) Len() int {
	n := 0
	for _, p := range c.Products {
		n += len(p.Prices)
	}
	return n
}
