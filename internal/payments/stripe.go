package payments

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v84"
)

// StatusCompleted is the normalized capture status the rest of the
// system keys on. A transaction row is recorded only for this status.
const StatusCompleted = "completed"

// Capture is the normalized outcome of capturing an order with the
// payment processor.
type Capture struct {
	OrderID     string
	Status      string
	AmountCents int64
	Currency    string
}

// OrderCapturer captures a previously created order. Implemented by the
// Stripe client; handlers depend on the interface so tests can stand in
// a fake processor.
type OrderCapturer interface {
	CaptureOrder(ctx context.Context, orderID string) (*Capture, error)
}

type StripeClient struct {
	client *stripe.Client
}

func NewStripeClient(apiKey string) *StripeClient {
	return &StripeClient{client: stripe.NewClient(apiKey)}
}

// CaptureOrder retrieves the payment intent behind an order and captures
// it when capture is still pending. Succeeded maps to the normalized
// completed status; anything else surfaces as-is and the caller treats
// it as a failed capture.
func (c *StripeClient) CaptureOrder(ctx context.Context, orderID string) (*Capture, error) {
	intent, err := c.client.V1PaymentIntents.Retrieve(ctx, orderID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payment intent %s: %w", orderID, err)
	}

	if intent.Status == stripe.PaymentIntentStatusRequiresCapture {
		intent, err = c.client.V1PaymentIntents.Capture(ctx, orderID, &stripe.PaymentIntentCaptureParams{})
		if err != nil {
			return nil, fmt.Errorf("failed to capture payment intent %s: %w", orderID, err)
		}
	}

	capture := &Capture{
		OrderID:     orderID,
		Status:      string(intent.Status),
		AmountCents: intent.Amount,
		Currency:    string(intent.Currency),
	}

	if intent.Status == stripe.PaymentIntentStatusSucceeded {
		capture.Status = StatusCompleted
		if intent.AmountReceived > 0 {
			capture.AmountCents = intent.AmountReceived
		}
	}

	return capture, nil
}
