package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/Varial17/studyfin-jobboard-sub000/internal/models"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/providers/payments"
	mongorepo "github.com/Varial17/studyfin-jobboard-sub000/internal/repositories/mongo"
	pgrepo "github.com/Varial17/studyfin-jobboard-sub000/internal/repositories/postgres"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/utils"
	"github.com/sirupsen/logrus"
)

const eventCheckoutVerified = "checkout.session.verified"

const recentEventLimit = 5

type BillingConfig struct {
	PriceID       string
	WebhookSecret string
}

type BillingService interface {
	// CreateCheckout returns the hosted checkout URL. It never changes the role.
	CreateCheckout(ctx context.Context, userID, email, returnURL, couponID string) (string, error)
	CustomerPortal(ctx context.Context, userID, returnURL string) (string, error)
	// VerifyCheckout applies the subscription of a completed checkout session
	// the caller was redirected back from.
	VerifyCheckout(ctx context.Context, userID, sessionID string) (*models.BillingStatus, error)
	Status(ctx context.Context, userID string) (*models.BillingStatus, error)
	// HandleWebhook verifies and applies one provider event. A nil error with
	// outcome dropped or ignored must still be acknowledged to the provider.
	HandleWebhook(ctx context.Context, payload []byte, signature string) (models.BillingEventOutcome, error)
}

type billingService struct {
	cfg        BillingConfig
	provider   payments.Provider
	profiles   pgrepo.ProfileRepository
	reconciler Reconciler
	journal    mongorepo.BillingEventRepository
	log        *logrus.Logger
}

func NewBillingService(
	cfg BillingConfig,
	provider payments.Provider,
	profiles pgrepo.ProfileRepository,
	reconciler Reconciler,
	journal mongorepo.BillingEventRepository,
	log *logrus.Logger,
) BillingService {
	return &billingService{
		cfg:        cfg,
		provider:   provider,
		profiles:   profiles,
		reconciler: reconciler,
		journal:    journal,
		log:        log,
	}
}

func (s *billingService) CreateCheckout(ctx context.Context, userID, email, returnURL, couponID string) (string, error) {
	const op = "BillingService.CreateCheckout"

	if err := checkReturnURL(op, returnURL); err != nil {
		return "", err
	}
	if s.cfg.PriceID == "" {
		return "", utils.E(utils.CodeUnavailable, op, "subscription price is not configured", nil)
	}

	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return "", mapProfileErr(op, err)
	}
	if email == "" {
		email = p.Email
	}

	customerID, err := s.provider.EnsureCustomer(ctx, userID, email, p.StripeCustomerID)
	if err != nil {
		return "", utils.E(utils.CodeUnavailable, op, "failed to create customer", err)
	}
	if customerID != p.StripeCustomerID {
		if err := s.profiles.SetStripeCustomerID(ctx, userID, customerID); err != nil {
			return "", mapProfileErr(op, err)
		}
	}

	cs, err := s.provider.CreateCheckoutSession(ctx, payments.CheckoutRequest{
		UserID:     userID,
		CustomerID: customerID,
		PriceID:    s.cfg.PriceID,
		SuccessURL: withQuery(returnURL, "success=true&session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  withQuery(returnURL, "canceled=true"),
		CouponID:   strings.TrimSpace(couponID),
	})
	if err != nil {
		return "", utils.E(utils.CodeUnavailable, op, "failed to create checkout session", err)
	}
	return cs.URL, nil
}

func (s *billingService) CustomerPortal(ctx context.Context, userID, returnURL string) (string, error) {
	const op = "BillingService.CustomerPortal"

	if err := checkReturnURL(op, returnURL); err != nil {
		return "", err
	}
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return "", mapProfileErr(op, err)
	}
	if p.StripeCustomerID == "" {
		return "", utils.E(utils.CodeNotFound, op, "no billing account for this user", nil)
	}

	u, err := s.provider.CreatePortalSession(ctx, p.StripeCustomerID, returnURL)
	if err != nil {
		return "", utils.E(utils.CodeUnavailable, op, "failed to create portal session", err)
	}
	return u, nil
}

func (s *billingService) VerifyCheckout(ctx context.Context, userID, sessionID string) (*models.BillingStatus, error) {
	const op = "BillingService.VerifyCheckout"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}

	cs, err := s.provider.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to retrieve checkout session", err)
	}
	if cs.ClientReferenceID != userID {
		return nil, utils.E(utils.CodeForbidden, op, "checkout session belongs to another user", nil)
	}

	if cs.Complete && cs.SubscriptionID != "" {
		sub, err := s.provider.GetSubscription(ctx, cs.SubscriptionID)
		if err != nil {
			return nil, utils.E(utils.CodeUnavailable, op, "failed to retrieve subscription", err)
		}
		_, err = s.reconciler.Apply(ctx, userID, models.SubscriptionEvent{
			EventID:        cs.ID,
			Type:           eventCheckoutVerified,
			UserID:         userID,
			CustomerID:     cs.CustomerID,
			SubscriptionID: sub.ID,
			Status:         sub.Status,
		})
		if err != nil {
			return nil, err
		}
	}
	return s.Status(ctx, userID)
}

func (s *billingService) Status(ctx context.Context, userID string) (*models.BillingStatus, error) {
	const op = "BillingService.Status"

	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, mapProfileErr(op, err)
	}
	st := &models.BillingStatus{
		Role:               p.Role,
		SubscriptionStatus: p.SubscriptionStatus,
		SubscriptionID:     p.SubscriptionID,
		CheckedAt:          time.Now().UTC(),
	}

	// journal is best effort
	events, err := s.journal.ListByUser(ctx, userID, recentEventLimit)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("billing journal read failed")
		return st, nil
	}
	st.RecentEvents = events
	return st, nil
}

func (s *billingService) HandleWebhook(ctx context.Context, payload []byte, signature string) (models.BillingEventOutcome, error) {
	const op = "BillingService.HandleWebhook"

	ev, err := payments.ParseWebhook(payload, signature, s.cfg.WebhookSecret)
	if err != nil {
		s.record(ctx, &models.BillingEvent{Outcome: models.OutcomeRejected, Error: err.Error()})
		if errors.Is(err, payments.ErrInvalidSignature) {
			return models.OutcomeRejected, utils.E(utils.CodeInvalidArgument, op, "invalid signature", err)
		}
		return models.OutcomeRejected, utils.E(utils.CodeInvalidArgument, op, "malformed event", err)
	}

	log := s.log.WithFields(logrus.Fields{"event_id": ev.EventID, "event_type": ev.Type})
	entry := &models.BillingEvent{EventID: ev.EventID, Type: ev.Type}
	defer func() { s.record(ctx, entry) }()

	if !payments.Handled(ev.Type) {
		entry.Outcome = models.OutcomeIgnored
		return entry.Outcome, nil
	}

	userID, err := s.resolveUser(ctx, ev)
	if err != nil {
		entry.Outcome, entry.Error = models.OutcomeFailed, err.Error()
		log.WithError(err).Error("billing linkage lookup failed")
		return entry.Outcome, utils.E(utils.CodeUnavailable, op, "linkage lookup failed", err)
	}
	if userID == "" {
		entry.Outcome = models.OutcomeDropped
		log.WithField("customer_id", ev.CustomerID).Warn("billing event dropped: no user linkage")
		return entry.Outcome, nil
	}
	entry.UserID = userID
	log = log.WithField("user_id", userID)

	// checkout events carry no subscription status
	if ev.Status == "" {
		if ev.SubscriptionID == "" {
			entry.Outcome = models.OutcomeIgnored
			return entry.Outcome, nil
		}
		sub, err := s.provider.GetSubscription(ctx, ev.SubscriptionID)
		if err != nil {
			entry.Outcome, entry.Error = models.OutcomeFailed, err.Error()
			log.WithError(err).Error("subscription lookup failed")
			return entry.Outcome, utils.E(utils.CodeUnavailable, op, "subscription lookup failed", err)
		}
		ev.Status = sub.Status
	}
	entry.Status = ev.Status

	if _, err := s.reconciler.Apply(ctx, userID, *ev); err != nil {
		if utils.IsCode(err, utils.CodeNotFound) {
			entry.Outcome = models.OutcomeDropped
			log.Warn("billing event dropped: profile not found")
			return entry.Outcome, nil
		}
		entry.Outcome, entry.Error = models.OutcomeFailed, err.Error()
		log.WithError(err).Error("billing event apply failed")
		return entry.Outcome, err
	}

	entry.Outcome = models.OutcomeApplied
	log.WithField("status", ev.Status).Info("billing event applied")
	return entry.Outcome, nil
}

// resolveUser follows event metadata, then the customer's metadata, then the
// local profile holding the customer id. "" means unresolved.
func (s *billingService) resolveUser(ctx context.Context, ev *models.SubscriptionEvent) (string, error) {
	if ev.UserID != "" {
		return ev.UserID, nil
	}
	if ev.CustomerID == "" {
		return "", nil
	}

	uid, err := s.provider.CustomerUserID(ctx, ev.CustomerID)
	if err != nil {
		return "", err
	}
	if uid != "" {
		return uid, nil
	}

	p, err := s.profiles.GetByStripeCustomerID(ctx, ev.CustomerID)
	if errors.Is(err, utils.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return p.UserID, nil
}

func (s *billingService) record(ctx context.Context, e *models.BillingEvent) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Record(ctx, e); err != nil {
		s.log.WithError(err).WithField("event_id", e.EventID).Warn("billing journal write failed")
	}
}

func checkReturnURL(op, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return utils.E(utils.CodeInvalidArgument, op, "return_url must be an absolute http(s) URL", err)
	}
	return nil
}

func withQuery(base, query string) string {
	if strings.Contains(base, "?") {
		return base + "&" + query
	}
	return base + "?" + query
}
