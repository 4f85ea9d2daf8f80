package billing

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Meet0105/repoza-sub001/internal/core/plans"
)

type fakeBackend struct {
	products []Product
	prices   []string
	failOn   string
}

func (f *fakeBackend) CreateProduct(_ context.Context, p Product) (string, error) {
	if f.failOn == "product:"+string(p.Tier) {
		return "", errors.New("boom")
	}
	f.products = append(f.products, p)
	return fmt.Sprintf("pro_%d", len(f.products)), nil
}

func (f *fakeBackend) CreatePrice(_ context.Context, productID, tier string, p Price) (string, error) {
	key := fmt.Sprintf("%s/%s/%s", tier, p.Currency, p.Cycle)
	if f.failOn == "price:"+key {
		return "", errors.New("boom")
	}
	f.prices = append(f.prices, productID+":"+key)
	return fmt.Sprintf("pri_%d", len(f.prices)), nil
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	require.NoError(t, c.Validate())

	require.Len(t, c.Products, 2)
	assert.Equal(t, plans.TierPro, c.Products[0].Tier)
	assert.Equal(t, plans.TierTeam, c.Products[1].Tier)

	// 2 products x 3 currencies x 2 cycles
	assert.Equal(t, 12, c.Len())

	pro := c.Products[0].Prices
	assert.Equal(t, Price{Currency: "USD", Cycle: CycleMonth, Amount: 900}, pro[0])
	assert.Equal(t, Price{Currency: "USD", Cycle: CycleYear, Amount: 9000}, pro[1])
}

func TestCatalog_Validate(t *testing.T) {
	valid := func() Catalog { return DefaultCatalog() }

	tests := []struct {
		name   string
		mutate func(*Catalog)
	}{
		{"empty", func(c *Catalog) { c.Products = nil }},
		{"unknown tier", func(c *Catalog) { c.Products[0].Tier = "enterprise" }},
		{"duplicate tier", func(c *Catalog) { c.Products[1].Tier = c.Products[0].Tier }},
		{"missing name", func(c *Catalog) { c.Products[0].Name = "" }},
		{"bad currency", func(c *Catalog) { c.Products[0].Prices[0].Currency = "JPY" }},
		{"bad cycle", func(c *Catalog) { c.Products[0].Prices[0].Cycle = "week" }},
		{"zero amount", func(c *Catalog) { c.Products[0].Prices[0].Amount = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			require.ErrorIs(t, c.Validate(), ErrInvalidCatalog)
		})
	}
}

func TestProvisioner_creates_each_product_once(t *testing.T) {
	backend := &fakeBackend{}
	p := NewProvisioner(backend)

	report, err := p.Provision(context.Background(), DefaultCatalog())
	require.NoError(t, err)

	assert.False(t, report.DryRun)
	assert.Len(t, backend.products, 2)
	assert.Len(t, backend.prices, 12)
	require.Len(t, report.Created, 12)

	first := report.Created[0]
	assert.Equal(t, "pro", first.Tier)
	assert.Equal(t, "pro_1", first.ProductID)
	assert.Equal(t, "pri_1", first.PriceID)
	assert.Equal(t, "pro_1:pro/USD/month", backend.prices[0])
	assert.Equal(t, "pro_2:team/USD/month", backend.prices[6])
}

func TestProvisioner_dry_run_skips_backend(t *testing.T) {
	backend := &fakeBackend{}
	p := NewProvisioner(backend, WithDryRun(true))

	report, err := p.Provision(context.Background(), DefaultCatalog())
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Empty(t, backend.products)
	assert.Empty(t, backend.prices)
	require.Len(t, report.Created, 12)
	assert.Equal(t, "dry-run:pro", report.Created[0].ProductID)
	assert.Empty(t, report.Created[0].PriceID)
}

func TestProvisioner_partial_failure_keeps_report(t *testing.T) {
	backend := &fakeBackend{failOn: "price:team/EUR/month"}
	p := NewProvisioner(backend)

	report, err := p.Provision(context.Background(), DefaultCatalog())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create price team EUR monthly")

	// 6 pro prices + team USD month + team USD year
	assert.Len(t, report.Created, 8)
}

func TestProvisioner_invalid_catalog(t *testing.T) {
	backend := &fakeBackend{}
	p := NewProvisioner(backend)

	_, err := p.Provision(context.Background(), Catalog{})
	require.ErrorIs(t, err, ErrInvalidCatalog)
	assert.Empty(t, backend.products)
}

func TestNewPaddleBackend_requires_key(t *testing.T) {
	_, err := NewPaddleBackend("", true)
	require.Error(t, err)
}
