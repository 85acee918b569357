package models

import "time"

// SubscriptionEvent is the normalized input of the reconciler, whatever channel
// (webhook or checkout success) it arrived through.
type SubscriptionEvent struct {
	EventID        string
	Type           string
	UserID         string
	CustomerID     string
	SubscriptionID string
	Status         string
}

// SubscriptionChange is published after a profile's subscription fields change.
type SubscriptionChange struct {
	Type               string      `json:"type"`
	UserID             string      `json:"user_id"`
	Role               ProfileRole `json:"role"`
	SubscriptionStatus string      `json:"subscription_status"`
	ChangedAt          time.Time   `json:"changed_at"`
}

type BillingStatus struct {
	Role               ProfileRole    `json:"role"`
	SubscriptionStatus *string        `json:"subscription_status"`
	SubscriptionID     string         `json:"subscription_id,omitempty"`
	CheckedAt          time.Time      `json:"checked_at"`
	RecentEvents       []BillingEvent `json:"recent_events,omitempty"`
}

type BillingEventOutcome string

const (
	OutcomeApplied  BillingEventOutcome = "applied"
	OutcomeDropped  BillingEventOutcome = "dropped"
	OutcomeIgnored  BillingEventOutcome = "ignored"
	OutcomeFailed   BillingEventOutcome = "failed"
	OutcomeRejected BillingEventOutcome = "rejected"
)

// BillingEvent is a journal entry for one received payment-provider event.
type BillingEvent struct {
	EventID    string              `bson:"event_id" json:"event_id"`
	Type       string              `bson:"type" json:"type"`
	UserID     string              `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Status     string              `bson:"status,omitempty" json:"status,omitempty"`
	Outcome    BillingEventOutcome `bson:"outcome" json:"outcome"`
	Error      string              `bson:"error,omitempty" json:"error,omitempty"`
	ReceivedAt time.Time           `bson:"received_at" json:"received_at"`

	ExpiresAt time.Time `bson:"expires_at" json:"-"` // for TTL index
}
