// Package payments creates Stripe payment intents for CSR contributions.
package payments

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v84"
)

type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Status       string `json:"status"`
}

type StripePayments struct {
	client   *stripe.Client
	currency string
}

func NewStripePayments(secretKey, currency string, opts ...stripe.ClientOption) *StripePayments {
	return &StripePayments{
		client:   stripe.NewClient(secretKey, opts...),
		currency: currency,
	}
}

// CreateContributionIntent opens a payment intent for a business CSR
// contribution. The business id travels in metadata so the dashboard can
// reconcile payouts.
func (p *StripePayments) CreateContributionIntent(ctx context.Context, businessID string, amountCents int64, purpose string) (*Intent, error) {
	params := &stripe.PaymentIntentCreateParams{
		Amount:      stripe.Int64(amountCents),
		Currency:    stripe.String(p.currency),
		Description: stripe.String(fmt.Sprintf("CSR contribution: %s", purpose)),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("business_id", businessID)
	params.AddMetadata("kind", "csr_contribution")

	pi, err := p.client.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent for business %s: %w", businessID, err)
	}

	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}, nil
}
