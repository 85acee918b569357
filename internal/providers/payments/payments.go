package payments

import "context"

type CheckoutRequest struct {
	UserID     string
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
	CouponID   string
}

type CheckoutSession struct {
	ID                string
	URL               string
	ClientReferenceID string
	UserID            string // metadata.user_id
	CustomerID        string
	SubscriptionID    string
	Complete          bool
}

type Subscription struct {
	ID         string
	CustomerID string
	Status     string
	UserID     string // metadata.user_id
}

// Provider is the payment platform as seen by the billing service.
type Provider interface {
	// EnsureCustomer returns existingID when set, otherwise creates a customer
	// tagged with metadata.user_id.
	EnsureCustomer(ctx context.Context, userID, email, existingID string) (string, error)
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
	GetSubscription(ctx context.Context, id string) (*Subscription, error)
	// CustomerUserID returns the customer's metadata.user_id, "" when absent.
	CustomerUserID(ctx context.Context, customerID string) (string, error)
}
