package billing

import (
	"context"
	"errors"
	"fmt"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"
)

// PaddleBackend creates products and prices through the Paddle Billing API.
type PaddleBackend struct {
	client *paddle.SDK
}

// NewPaddleBackend builds a client for the sandbox or production environment.
func NewPaddleBackend(apiKey string, sandbox bool) (*PaddleBackend, error) {
	if apiKey == "" {
		return nil, errors.New("paddle API key is required (set PADDLE_API_KEY)")
	}

	var (
		client *paddle.SDK
		err    error
	)
	if sandbox {
		client, err = paddle.NewSandbox(apiKey)
	} else {
		client, err = paddle.New(apiKey)
	}
	if err != nil {
		return nil, fmt.Errorf("create paddle client: %w", err)
	}

	return &PaddleBackend{client: client}, nil
}

func (b *PaddleBackend) CreateProduct(ctx context.Context, p Product) (string, error) {
	product, err := b.client.ProductsClient.CreateProduct(ctx, &paddle.CreateProductRequest{
		Name:        p.Name,
		TaxCategory: paddle.TaxCategoryStandard,
		Description: paddle.PtrTo(p.Description),
		CustomData:  paddle.CustomData{"tier": string(p.Tier)},
	})
	if err != nil {
		return "", err
	}
	return product.ID, nil
}

func (b *PaddleBackend) CreatePrice(ctx context.Context, productID string, tier string, p Price) (string, error) {
	price, err := b.client.PricesClient.CreatePrice(ctx, &paddle.CreatePriceRequest{
		Description: p.Description(),
		ProductID:   productID,
		UnitPrice: paddle.Money{
			Amount:       fmt.Sprint(p.Amount),
			CurrencyCode: paddle.CurrencyCode(p.Currency),
		},
		BillingCycle: &paddle.Duration{
			Interval:  paddle.Interval(p.Cycle),
			Frequency: 1,
		},
		CustomData: paddle.CustomData{"tier": tier},
	})
	if err != nil {
		return "", err
	}
	return price.ID, nil
}
