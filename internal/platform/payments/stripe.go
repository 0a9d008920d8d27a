package payments

import (
	"context"
	"fmt"
	"strconv"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Intent is the provider-side handle a checkout hands back to the client.
type Intent struct {
	ID           string
	ClientSecret string
}

// IntentCreator abstracts the payment provider so the checkout flow can be
// tested without network calls.
type IntentCreator interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string, orderID int64) (*Intent, error)
}

// StripeIntents creates real Stripe payment intents.
type StripeIntents struct {
	api *client.API
}

func NewStripeIntents(secretKey string) *StripeIntents {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeIntents{api: api}
}

func (s *StripeIntents) CreateIntent(ctx context.Context, amountCents int64, currency string, orderID int64) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("order_id", strconv.FormatInt(orderID, 10))

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

var _ IntentCreator = (*StripeIntents)(nil)
