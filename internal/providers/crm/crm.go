package crm

import (
	"context"
	"errors"
	"time"

	"github.com/Varial17/studyfin-jobboard-sub000/internal/models"
)

// MaxLeadsPerCall is the Zoho CRM insert limit.
const MaxLeadsPerCall = 100

var (
	ErrRateLimited  = errors.New("crm rate limit exceeded")
	ErrUnauthorized = errors.New("crm rejected access token")
	ErrTooManyLeads = errors.New("too many leads in one call")
)

type Token struct {
	AccessToken  string
	RefreshToken string
	APIDomain    string
	ExpiresAt    time.Time
}

type Provider interface {
	AuthURL(state, redirectURL string) string
	Exchange(ctx context.Context, code, redirectURL string) (*Token, error)
	// Refresh performs a single refresh-token grant.
	Refresh(ctx context.Context, refreshToken string) (*Token, error)
	Revoke(ctx context.Context, token string) error
	CreateLeads(ctx context.Context, accessToken, apiDomain string, leads []models.Lead) error
}
