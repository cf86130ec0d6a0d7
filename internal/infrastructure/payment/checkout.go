package payment

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"digimarket.backend/internal/domain/entities"
)

// HostedCheckout builds the redirect URL of the provider's hosted checkout
// page. The provider reports the outcome through the webhook.
type HostedCheckout struct {
	baseURL   string
	returnURL string
}

func NewHostedCheckout(baseURL, publicBaseURL string) *HostedCheckout {
	return &HostedCheckout{
		baseURL:   strings.TrimRight(baseURL, "/"),
		returnURL: strings.TrimRight(publicBaseURL, "/") + "/orders",
	}
}

func (c *HostedCheckout) CreateSession(_ context.Context, order *entities.Order, product *entities.Product) (string, error) {
	q := url.Values{}
	q.Set("ref", order.CheckoutRef)
	q.Set("orderId", order.ID.String())
	q.Set("amount", strconv.FormatInt(order.AmountCents, 10))
	q.Set("currency", order.Currency)
	q.Set("title", product.Title)
	q.Set("return", c.returnURL)
	return c.baseURL + "?" + q.Encode(), nil
}
