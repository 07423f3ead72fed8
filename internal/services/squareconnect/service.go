// Package squareconnect onboards sub-merchants through Square's OAuth
// flow: issue an authorization URL, then on callback exchange the code
// for tokens and fetch the merchant profile.
package squareconnect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"tavola/internal/models"
	"tavola/internal/repositories"

	"github.com/go-resty/resty/v2"
)

// Callback failure modes. Handlers map these to redirect error codes.
var (
	ErrTokenExchange = errors.New("token exchange failed")
	ErrMerchantInfo  = errors.New("merchant info fetch failed")
)

// Scopes requested for sub-merchant payment processing.
const oauthScopes = "MERCHANT_PROFILE_READ PAYMENTS_WRITE PAYMENTS_READ"

type Config struct {
	AppID     string
	AppSecret string
	BaseURL   string // https://connect.squareup.com
}

type OnboardRequest struct {
	ClientID     string `json:"clientId"`
	BusinessName string `json:"businessName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
}

type Service interface {
	Onboard(ctx context.Context, req *OnboardRequest) (string, error)
	CompleteCallback(ctx context.Context, code, clientID string) error
}

type service struct {
	client  *resty.Client
	cfg     Config
	clients repositories.ClientAccountRepository
}

func NewService(cfg Config, clients repositories.ClientAccountRepository) Service {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &service{
		client:  client,
		cfg:     cfg,
		clients: clients,
	}
}

// Onboard records the client as pending and returns the OAuth authorize
// URL. The clientID rides along as the OAuth state parameter so the
// callback can correlate the grant back to the account.
func (s *service) Onboard(ctx context.Context, req *OnboardRequest) (string, error) {
	account := &models.ClientAccount{
		ClientID:     req.ClientID,
		BusinessName: req.BusinessName,
		Email:        req.Email,
		Phone:        req.Phone,
	}
	if err := s.clients.UpsertPending(ctx, account); err != nil {
		return "", fmt.Errorf("failed to save client account: %w", err)
	}

	q := url.Values{}
	q.Set("client_id", s.cfg.AppID)
	q.Set("scope", oauthScopes)
	q.Set("session", "false")
	q.Set("state", req.ClientID)

	return s.cfg.BaseURL + "/oauth2/authorize?" + q.Encode(), nil
}

// CompleteCallback exchanges the authorization code for tokens, fetches
// the merchant profile, and activates the client account.
func (s *service) CompleteCallback(ctx context.Context, code, clientID string) error {
	tokens, err := s.obtainTokens(ctx, code)
	if err != nil {
		return err
	}

	merchantID, err := s.fetchMerchantID(ctx, tokens.AccessToken, tokens.MerchantID)
	if err != nil {
		return err
	}

	if err := s.clients.Activate(ctx, clientID, tokens.AccessToken, tokens.RefreshToken, merchantID); err != nil {
		return fmt.Errorf("failed to activate client account: %w", err)
	}
	return nil
}

type oauthTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	MerchantID   string `json:"merchant_id"`
	ExpiresAt    string `json:"expires_at"`
}

func (s *service) obtainTokens(ctx context.Context, code string) (*oauthTokenResponse, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"client_id":     s.cfg.AppID,
			"client_secret": s.cfg.AppSecret,
			"code":          code,
			"grant_type":    "authorization_code",
		}).
		Post(s.cfg.BaseURL + "/oauth2/token")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrTokenExchange, resp.StatusCode())
	}

	var tokens oauthTokenResponse
	if err := json.Unmarshal(resp.Body(), &tokens); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	if tokens.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", ErrTokenExchange)
	}
	return &tokens, nil
}

type merchantResponse struct {
	Merchant struct {
		ID           string `json:"id"`
		BusinessName string `json:"business_name"`
		Country      string `json:"country"`
	} `json:"merchant"`
}

// fetchMerchantID confirms the token works against the merchant API and
// returns the canonical merchant id. The token response already carries
// one; the profile fetch takes precedence when both are present.
func (s *service) fetchMerchantID(ctx context.Context, accessToken, fallback string) (string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		Get(s.cfg.BaseURL + "/v2/merchants/me")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMerchantInfo, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrMerchantInfo, resp.StatusCode())
	}

	var merchant merchantResponse
	if err := json.Unmarshal(resp.Body(), &merchant); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMerchantInfo, err)
	}
	if merchant.Merchant.ID != "" {
		return merchant.Merchant.ID, nil
	}
	return fallback, nil
}
