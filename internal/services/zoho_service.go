package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Varial17/studyfin-jobboard-sub000/internal/models"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/providers/crm"
	pgrepo "github.com/Varial17/studyfin-jobboard-sub000/internal/repositories/postgres"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	stateTTL   = 10 * time.Minute
	leadSource = "Job Board"
)

type ZohoConfig struct {
	StateSecret string
	BatchSize   int
	BatchDelay  time.Duration
}

type ZohoService interface {
	AuthURL(ctx context.Context, userID, redirectURL string) (string, error)
	Callback(ctx context.Context, userID, code, redirectURL, state string) error
	// Disconnect deletes the stored credentials even when the revoke call fails.
	Disconnect(ctx context.Context, userID string) error
	Status(ctx context.Context, userID string) (*models.ZohoStatus, error)
	// SyncApplication pushes the applicant of one application to the job owner's CRM.
	SyncApplication(ctx context.Context, applicationID string) error
	SyncOwnedApplication(ctx context.Context, employerID, applicationID string) error
	// SyncAllUsers sends every profile as a lead in fixed-size, paced batches.
	// The first failing batch stops the run; earlier batches stay in the CRM.
	SyncAllUsers(ctx context.Context, employerID string) (int, error)
}

type zohoService struct {
	cfg      ZohoConfig
	crm      crm.Provider
	creds    pgrepo.ZohoCredentialRepository
	profiles pgrepo.ProfileRepository
	apps     pgrepo.ApplicationRepository
	jobs     pgrepo.JobRepository
	log      *logrus.Logger
	now      func() time.Time
}

func NewZohoService(
	cfg ZohoConfig,
	provider crm.Provider,
	creds pgrepo.ZohoCredentialRepository,
	profiles pgrepo.ProfileRepository,
	apps pgrepo.ApplicationRepository,
	jobs pgrepo.JobRepository,
	log *logrus.Logger,
) ZohoService {
	if cfg.BatchSize <= 0 || cfg.BatchSize > crm.MaxLeadsPerCall {
		cfg.BatchSize = crm.MaxLeadsPerCall
	}
	return &zohoService{
		cfg:      cfg,
		crm:      provider,
		creds:    creds,
		profiles: profiles,
		apps:     apps,
		jobs:     jobs,
		log:      log,
		now:      time.Now,
	}
}

type stateClaims struct {
	jwt.RegisteredClaims
}

func (s *zohoService) AuthURL(ctx context.Context, userID, redirectURL string) (string, error) {
	const op = "ZohoService.AuthURL"

	if err := s.requireEmployer(ctx, op, userID); err != nil {
		return "", err
	}
	if err := checkReturnURL(op, redirectURL); err != nil {
		return "", err
	}

	now := s.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, stateClaims{jwt.RegisteredClaims{
		Subject:   userID,
		Audience:  jwt.ClaimStrings{models.ZohoStateAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
	}})
	state, err := tok.SignedString([]byte(s.cfg.StateSecret))
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to sign state", err)
	}
	return s.crm.AuthURL(state, redirectURL), nil
}

// requireEmployer reads the role from the stored profile, not the access token.
func (s *zohoService) requireEmployer(ctx context.Context, op, userID string) error {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeForbidden, op, "zoho is only available to employers", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to read profile", err)
	}
	if p.Role != models.RoleEmployer {
		return utils.E(utils.CodeForbidden, op, "zoho is only available to employers", nil)
	}
	return nil
}

func (s *zohoService) verifyState(userID, state string) error {
	var claims stateClaims
	_, err := jwt.ParseWithClaims(state, &claims, func(t *jwt.Token) (any, error) {
		return []byte(s.cfg.StateSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(models.ZohoStateAudience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return err
	}
	if claims.Subject != userID {
		return errors.New("state issued for another user")
	}
	return nil
}

func (s *zohoService) Callback(ctx context.Context, userID, code, redirectURL, state string) error {
	const op = "ZohoService.Callback"

	if strings.TrimSpace(code) == "" {
		return utils.E(utils.CodeInvalidArgument, op, "code is required", nil)
	}
	if state != "" {
		if err := s.verifyState(userID, state); err != nil {
			return utils.E(utils.CodeInvalidArgument, op, "invalid state", err)
		}
	}
	if err := s.requireEmployer(ctx, op, userID); err != nil {
		return err
	}

	tok, err := s.crm.Exchange(ctx, code, redirectURL)
	if err != nil {
		return utils.E(utils.CodeUnavailable, op, "failed to exchange authorization code", err)
	}
	if tok.RefreshToken == "" {
		return utils.E(utils.CodeUnavailable, op, "zoho returned no refresh token", nil)
	}

	now := s.now().UTC()
	err = s.creds.Save(ctx, &models.ZohoCredentials{
		UserID:       userID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		APIDomain:    tok.APIDomain,
		ExpiresAt:    tok.ExpiresAt.UTC(),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to store credentials", err)
	}
	if err := s.profiles.SetZohoConnected(ctx, userID, true); err != nil {
		return mapProfileErr(op, err)
	}
	return nil
}

func (s *zohoService) Disconnect(ctx context.Context, userID string) error {
	const op = "ZohoService.Disconnect"

	c, err := s.creds.Get(ctx, userID)
	switch {
	case err == nil:
		if rerr := s.crm.Revoke(ctx, c.RefreshToken); rerr != nil {
			s.log.WithError(rerr).WithField("user_id", userID).Warn("zoho revoke failed")
		}
	case !errors.Is(err, utils.ErrNotFound):
		s.log.WithError(err).WithField("user_id", userID).Warn("zoho credentials read failed")
	}

	if err := s.creds.Delete(ctx, userID); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to delete credentials", err)
	}
	if err := s.profiles.SetZohoConnected(ctx, userID, false); err != nil && !errors.Is(err, utils.ErrNotFound) {
		return utils.E(utils.CodeInternal, op, "failed to update profile", err)
	}
	return nil
}

func (s *zohoService) Status(ctx context.Context, userID string) (*models.ZohoStatus, error) {
	c, err := s.creds.Get(ctx, userID)
	if errors.Is(err, utils.ErrNotFound) {
		return &models.ZohoStatus{}, nil
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, "ZohoService.Status", "failed to read credentials", err)
	}
	exp := c.ExpiresAt
	return &models.ZohoStatus{Connected: true, ExpiresAt: &exp}, nil
}

// validToken refreshes an expired access token once and persists it before returning.
func (s *zohoService) validToken(ctx context.Context, op, userID string) (*models.ZohoCredentials, error) {
	c, err := s.creds.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "zoho is not connected", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to read credentials", err)
	}
	if !c.Expired(s.now()) {
		return c, nil
	}

	tok, err := s.crm.Refresh(ctx, c.RefreshToken)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to refresh zoho token", err)
	}
	c.AccessToken = tok.AccessToken
	c.ExpiresAt = tok.ExpiresAt.UTC()
	if tok.RefreshToken != "" {
		c.RefreshToken = tok.RefreshToken
	}
	if tok.APIDomain != "" {
		c.APIDomain = tok.APIDomain
	}
	c.UpdatedAt = s.now().UTC()

	if err := s.creds.Save(ctx, c); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist refreshed token", err)
	}
	return c, nil
}

func (s *zohoService) SyncOwnedApplication(ctx context.Context, employerID, applicationID string) error {
	const op = "ZohoService.SyncOwnedApplication"

	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "application not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to get application", err)
	}
	job, err := s.jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to get job", err)
	}
	if job.EmployerID != employerID {
		return utils.E(utils.CodeForbidden, op, "not the owner of this job", nil)
	}
	return s.syncApplication(ctx, op, app, job)
}

func (s *zohoService) SyncApplication(ctx context.Context, applicationID string) error {
	const op = "ZohoService.SyncApplication"

	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "application not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to get application", err)
	}
	job, err := s.jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to get job", err)
	}
	return s.syncApplication(ctx, op, app, job)
}

func (s *zohoService) syncApplication(ctx context.Context, op string, app *models.Application, job *models.Job) error {
	c, err := s.validToken(ctx, op, job.EmployerID)
	if err != nil {
		return err
	}

	applicant, err := s.profiles.GetByUserID(ctx, app.ApplicantID)
	if err != nil {
		return mapProfileErr(op, err)
	}

	lead := leadFromProfile(applicant)
	lead.Company = job.Company
	lead.Description = "Applied for " + job.Title
	if app.CoverLetter != "" {
		lead.Description += "\n\n" + app.CoverLetter
	}

	if err := s.crm.CreateLeads(ctx, c.AccessToken, c.APIDomain, []models.Lead{lead}); err != nil {
		return mapCRMErr(op, err)
	}
	if err := s.apps.MarkZohoSynced(ctx, app.ID); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to mark application synced", err)
	}
	return nil
}

func (s *zohoService) SyncAllUsers(ctx context.Context, employerID string) (int, error) {
	const op = "ZohoService.SyncAllUsers"

	if err := s.requireEmployer(ctx, op, employerID); err != nil {
		return 0, err
	}
	c, err := s.validToken(ctx, op, employerID)
	if err != nil {
		return 0, err
	}

	// one batch per BatchDelay; a zero delay means no pacing
	limiter := rate.NewLimiter(rate.Every(s.cfg.BatchDelay), 1)

	log := s.log.WithField("employer_id", employerID)
	synced := 0
	after := ""
	for {
		page, err := s.profiles.ListAfter(ctx, after, s.cfg.BatchSize)
		if err != nil {
			return synced, utils.E(utils.CodeInternal, op, "failed to list profiles", err)
		}
		if len(page) == 0 {
			break
		}
		after = page[len(page)-1].UserID

		if err := limiter.Wait(ctx); err != nil {
			return synced, utils.E(utils.CodeTimeout, op, "sync cancelled", err)
		}

		leads := make([]models.Lead, 0, len(page))
		for i := range page {
			leads = append(leads, leadFromProfile(&page[i]))
		}
		if err := s.crm.CreateLeads(ctx, c.AccessToken, c.APIDomain, leads); err != nil {
			log.WithError(err).WithField("synced", synced).Warn("zoho batch failed")
			return synced, mapCRMErr(op, err)
		}
		synced += len(leads)
		log.WithField("synced", synced).Debug("zoho batch sent")

		if len(page) < s.cfg.BatchSize {
			break
		}
	}
	log.WithField("synced", synced).Info("zoho sync finished")
	return synced, nil
}

func leadFromProfile(p *models.Profile) models.Lead {
	first, last := splitName(p.FullName)
	if last == "" {
		last = strings.SplitN(p.Email, "@", 2)[0]
	}
	if last == "" {
		last = "Unknown"
	}
	return models.Lead{
		FirstName:   first,
		LastName:    last,
		Email:       p.Email,
		Phone:       p.Phone,
		Designation: p.Title,
		City:        p.Location,
		LeadSource:  leadSource,
		Description: p.Bio,
	}
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return "", parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
	}
}

func mapCRMErr(op string, err error) error {
	switch {
	case errors.Is(err, crm.ErrRateLimited):
		return utils.E(utils.CodeRateLimited, op, "zoho rate limit reached", err)
	case errors.Is(err, crm.ErrUnauthorized):
		return utils.E(utils.CodeUnavailable, op, "zoho rejected the access token, reconnect the integration", err)
	default:
		return utils.E(utils.CodeUnavailable, op, "zoho request failed", err)
	}
}
