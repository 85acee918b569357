package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Varial17/studyfin-jobboard-sub000/internal/models"
	"golang.org/x/oauth2"
)

type ZohoConfig struct {
	ClientID     string
	ClientSecret string
	AccountsURL  string // https://accounts.zoho.com
	APIURL       string // https://www.zohoapis.com, used when a token carries no api_domain
	Scopes       []string
	HTTPClient   *http.Client
}

type Zoho struct {
	oauth       oauth2.Config
	accountsURL string
	apiURL      string
	http        *http.Client
}

func NewZoho(cfg ZohoConfig) *Zoho {
	accounts := strings.TrimRight(cfg.AccountsURL, "/")
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Zoho{
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   accounts + "/oauth/v2/auth",
				TokenURL:  accounts + "/oauth/v2/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		accountsURL: accounts,
		apiURL:      strings.TrimRight(cfg.APIURL, "/"),
		http:        hc,
	}
}

func (z *Zoho) config(redirectURL string) *oauth2.Config {
	c := z.oauth
	c.RedirectURL = redirectURL
	return &c
}

// withClient makes x/oauth2 use our HTTP client for token calls.
func (z *Zoho) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, z.http)
}

func (z *Zoho) AuthURL(state, redirectURL string) string {
	return z.config(redirectURL).AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

func (z *Zoho) Exchange(ctx context.Context, code, redirectURL string) (*Token, error) {
	tok, err := z.config(redirectURL).Exchange(z.withClient(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("zoho exchange: %w", err)
	}
	return fromOAuth(tok), nil
}

func (z *Zoho) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	src := z.oauth.TokenSource(z.withClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("zoho refresh: %w", err)
	}
	out := fromOAuth(tok)
	if out.RefreshToken == "" {
		out.RefreshToken = refreshToken
	}
	return out, nil
}

func (z *Zoho) Revoke(ctx context.Context, token string) error {
	u := z.accountsURL + "/oauth/v2/token/revoke?token=" + url.QueryEscape(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return err
	}
	resp, err := z.http.Do(req)
	if err != nil {
		return fmt.Errorf("zoho revoke: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("zoho revoke: status %d", resp.StatusCode)
	}
	return nil
}

type leadsRequest struct {
	Data []models.Lead `json:"data"`
}

type leadsResponse struct {
	Data []struct {
		Code    string `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"data"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (z *Zoho) CreateLeads(ctx context.Context, accessToken, apiDomain string, leads []models.Lead) error {
	if len(leads) == 0 {
		return nil
	}
	if len(leads) > MaxLeadsPerCall {
		return ErrTooManyLeads
	}

	base := strings.TrimRight(apiDomain, "/")
	if base == "" {
		base = z.apiURL
	}

	body, err := json.Marshal(leadsRequest{Data: leads})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/crm/v2/Leads", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Zoho-oauthtoken "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := z.http.Do(req)
	if err != nil {
		return fmt.Errorf("zoho leads: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode >= 300:
		var lr leadsResponse
		_ = json.Unmarshal(raw, &lr)
		return fmt.Errorf("zoho leads: status %d: %s", resp.StatusCode, lr.Message)
	}

	var lr leadsResponse
	if err := json.Unmarshal(raw, &lr); err != nil {
		return fmt.Errorf("zoho leads: decode: %w", err)
	}
	for _, d := range lr.Data {
		if !strings.EqualFold(d.Status, "success") {
			return fmt.Errorf("zoho leads: %s: %s", d.Code, d.Message)
		}
	}
	return nil
}

func fromOAuth(tok *oauth2.Token) *Token {
	out := &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}
	if d, ok := tok.Extra("api_domain").(string); ok {
		out.APIDomain = d
	}
	if out.ExpiresAt.IsZero() {
		out.ExpiresAt = time.Now().Add(time.Hour)
	}
	return out
}
