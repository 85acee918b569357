package services

import (
	"context"
	"errors"
	"time"

	"github.com/Varial17/studyfin-jobboard-sub000/internal/models"
	pgrepo "github.com/Varial17/studyfin-jobboard-sub000/internal/repositories/postgres"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/utils"
	"github.com/sirupsen/logrus"
)

type SubscriptionNotifier interface {
	PublishSubscription(ctx context.Context, change models.SubscriptionChange) error
}

// Reconciler is the only writer of a profile's role and subscription fields.
//
// Every event overwrites the stored state: role is employer iff the incoming
// status is "active". Events are applied in arrival order with no check of
// their creation time, and a redelivered event is simply applied again.
type Reconciler interface {
	Apply(ctx context.Context, userID string, ev models.SubscriptionEvent) (*models.SubscriptionChange, error)
}

type reconciler struct {
	profiles pgrepo.ProfileRepository
	notifier SubscriptionNotifier
	log      *logrus.Logger
}

func NewReconciler(profiles pgrepo.ProfileRepository, notifier SubscriptionNotifier, log *logrus.Logger) Reconciler {
	return &reconciler{profiles: profiles, notifier: notifier, log: log}
}

func RoleForStatus(status string) models.ProfileRole {
	if status == models.SubscriptionActive {
		return models.RoleEmployer
	}
	return models.RoleApplicant
}

func (r *reconciler) Apply(ctx context.Context, userID string, ev models.SubscriptionEvent) (*models.SubscriptionChange, error) {
	const op = "Reconciler.Apply"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	if ev.Status == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "subscription status is required", nil)
	}

	role := RoleForStatus(ev.Status)
	err := r.profiles.ApplySubscription(ctx, userID, models.SubscriptionPatch{
		Role:               role,
		SubscriptionStatus: ev.Status,
		SubscriptionID:     ev.SubscriptionID,
		StripeCustomerID:   ev.CustomerID,
	})
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "profile not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to write subscription state", err)
	}

	change := &models.SubscriptionChange{
		Type:               ev.Type,
		UserID:             userID,
		Role:               role,
		SubscriptionStatus: ev.Status,
		ChangedAt:          time.Now().UTC(),
	}
	if r.notifier != nil {
		if err := r.notifier.PublishSubscription(ctx, *change); err != nil {
			r.log.WithError(err).WithField("user_id", userID).Warn("subscription change publish failed")
		}
	}
	return change, nil
}
