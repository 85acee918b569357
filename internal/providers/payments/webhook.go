package payments

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Varial17/studyfin-jobboard-sub000/internal/models"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

// Handled reports whether eventType can change a subscription.
func Handled(eventType string) bool {
	switch eventType {
	case EventCheckoutCompleted, EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionDeleted:
		return true
	}
	return false
}

// ParseWebhook verifies the Stripe-Signature header and normalizes the event.
// For unhandled types only EventID and Type are set.
func ParseWebhook(payload []byte, sigHeader, secret string) (*models.SubscriptionEvent, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, sigHeader, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &models.SubscriptionEvent{EventID: ev.ID, Type: string(ev.Type)}
	if ev.Data == nil {
		return out, nil
	}

	switch out.Type {
	case EventCheckoutCompleted:
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &cs); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		s := toCheckoutSession(&cs)
		out.UserID = s.UserID
		if out.UserID == "" {
			out.UserID = s.ClientReferenceID
		}
		out.CustomerID = s.CustomerID
		out.SubscriptionID = s.SubscriptionID

	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(ev.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("decode subscription: %w", err)
		}
		s := toSubscription(&sub)
		out.UserID = s.UserID
		out.CustomerID = s.CustomerID
		out.SubscriptionID = s.ID
		out.Status = s.Status
	}
	return out, nil
}
