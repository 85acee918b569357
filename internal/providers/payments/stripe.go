package payments

import (
	"context"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type Stripe struct {
	api *client.API
}

func NewStripe(secretKey string) *Stripe {
	return &Stripe{api: client.New(secretKey, nil)}
}

func (s *Stripe) EnsureCustomer(ctx context.Context, userID, email, existingID string) (string, error) {
	if existingID != "" {
		return existingID, nil
	}
	return withRetry(ctx, func() (string, error) {
		params := &stripe.CustomerParams{}
		params.Context = ctx
		if email != "" {
			params.Email = stripe.String(email)
		}
		params.AddMetadata("user_id", userID)

		c, err := s.api.Customers.New(params)
		if err != nil {
			return "", err
		}
		return c.ID, nil
	})
}

func (s *Stripe) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	return withRetry(ctx, func() (*CheckoutSession, error) {
		params := &stripe.CheckoutSessionParams{
			Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
			Customer:          stripe.String(req.CustomerID),
			ClientReferenceID: stripe.String(req.UserID),
			SuccessURL:        stripe.String(req.SuccessURL),
			CancelURL:         stripe.String(req.CancelURL),
			LineItems: []*stripe.CheckoutSessionLineItemParams{
				{Price: stripe.String(req.PriceID), Quantity: stripe.Int64(1)},
			},
			SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
				Metadata: map[string]string{"user_id": req.UserID},
			},
		}
		params.Context = ctx
		params.AddMetadata("user_id", req.UserID)
		if req.CouponID != "" {
			params.Discounts = []*stripe.CheckoutSessionDiscountParams{
				{Coupon: stripe.String(req.CouponID)},
			}
		}

		cs, err := s.api.CheckoutSessions.New(params)
		if err != nil {
			return nil, err
		}
		return toCheckoutSession(cs), nil
	})
}

func (s *Stripe) GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error) {
	return withRetry(ctx, func() (*CheckoutSession, error) {
		params := &stripe.CheckoutSessionParams{}
		params.Context = ctx

		cs, err := s.api.CheckoutSessions.Get(id, params)
		if err != nil {
			return nil, err
		}
		return toCheckoutSession(cs), nil
	})
}

func (s *Stripe) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	return withRetry(ctx, func() (string, error) {
		params := &stripe.BillingPortalSessionParams{
			Customer:  stripe.String(customerID),
			ReturnURL: stripe.String(returnURL),
		}
		params.Context = ctx

		ps, err := s.api.BillingPortalSessions.New(params)
		if err != nil {
			return "", err
		}
		return ps.URL, nil
	})
}

func (s *Stripe) GetSubscription(ctx context.Context, id string) (*Subscription, error) {
	return withRetry(ctx, func() (*Subscription, error) {
		params := &stripe.SubscriptionParams{}
		params.Context = ctx

		sub, err := s.api.Subscriptions.Get(id, params)
		if err != nil {
			return nil, err
		}
		return toSubscription(sub), nil
	})
}

func (s *Stripe) CustomerUserID(ctx context.Context, customerID string) (string, error) {
	return withRetry(ctx, func() (string, error) {
		params := &stripe.CustomerParams{}
		params.Context = ctx

		c, err := s.api.Customers.Get(customerID, params)
		if err != nil {
			return "", err
		}
		if c.Deleted {
			return "", nil
		}
		return c.Metadata["user_id"], nil
	})
}

func toCheckoutSession(cs *stripe.CheckoutSession) *CheckoutSession {
	out := &CheckoutSession{
		ID:                cs.ID,
		URL:               cs.URL,
		ClientReferenceID: cs.ClientReferenceID,
		UserID:            cs.Metadata["user_id"],
		Complete:          cs.Status == stripe.CheckoutSessionStatusComplete,
	}
	if cs.Customer != nil {
		out.CustomerID = cs.Customer.ID
	}
	if cs.Subscription != nil {
		out.SubscriptionID = cs.Subscription.ID
	}
	return out
}

func toSubscription(sub *stripe.Subscription) *Subscription {
	out := &Subscription{
		ID:     sub.ID,
		Status: string(sub.Status),
		UserID: sub.Metadata["user_id"],
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	return out
}
