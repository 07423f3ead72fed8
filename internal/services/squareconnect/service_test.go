package squareconnect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"tavola/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockClientRepo struct {
	mock.Mock
}

func (m *mockClientRepo) UpsertPending(ctx context.Context, account *models.ClientAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *mockClientRepo) GetByClientID(ctx context.Context, clientID string) (*models.ClientAccount, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ClientAccount), args.Error(1)
}

func (m *mockClientRepo) Activate(ctx context.Context, clientID, accessToken, refreshToken, merchantID string) error {
	args := m.Called(ctx, clientID, accessToken, refreshToken, merchantID)
	return args.Error(0)
}

func (m *mockClientRepo) CountActive(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestService_Onboard(t *testing.T) {
	repo := new(mockClientRepo)
	repo.On("UpsertPending", mock.Anything, mock.MatchedBy(func(a *models.ClientAccount) bool {
		return a.ClientID == "client-7" && a.BusinessName == "Trattoria Roma"
	})).Return(nil)

	svc := NewService(Config{
		AppID:     "sq-app",
		AppSecret: "sq-secret",
		BaseURL:   "https://connect.squareup.com",
	}, repo)

	authorizeURL, err := svc.Onboard(context.Background(), &OnboardRequest{
		ClientID:     "client-7",
		BusinessName: "Trattoria Roma",
		Email:        "owner@trattoria.example",
	})
	require.NoError(t, err)

	parsed, err := url.Parse(authorizeURL)
	require.NoError(t, err)
	assert.Equal(t, "/oauth2/authorize", parsed.Path)

	q := parsed.Query()
	assert.Equal(t, "sq-app", q.Get("client_id"))
	assert.Equal(t, "client-7", q.Get("state"))
	assert.Contains(t, q.Get("scope"), "MERCHANT_PROFILE_READ")

	repo.AssertExpectations(t)
}

func TestService_CompleteCallback(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth2/token":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "authorization_code", body["grant_type"])
			assert.Equal(t, "auth-code", body["code"])
			json.NewEncoder(w).Encode(map[string]string{
				"access_token":  "sq-access",
				"refresh_token": "sq-refresh",
				"merchant_id":   "M-TOKEN",
			})
		case "/v2/merchants/me":
			assert.Equal(t, "Bearer sq-access", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]interface{}{
				"merchant": map[string]string{
					"id":            "M-PROFILE",
					"business_name": "Trattoria Roma",
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer upstream.Close()

	repo := new(mockClientRepo)
	repo.On("Activate", mock.Anything, "client-7", "sq-access", "sq-refresh", "M-PROFILE").Return(nil)

	svc := NewService(Config{AppID: "sq-app", AppSecret: "sq-secret", BaseURL: upstream.URL}, repo)

	err := svc.CompleteCallback(context.Background(), "auth-code", "client-7")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestService_CompleteCallback_TokenExchangeFails(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer upstream.Close()

	svc := NewService(Config{BaseURL: upstream.URL}, new(mockClientRepo))

	err := svc.CompleteCallback(context.Background(), "bad-code", "client-7")
	assert.ErrorIs(t, err, ErrTokenExchange)
}

func TestService_CompleteCallback_MerchantInfoFails(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth2/token" {
			json.NewEncoder(w).Encode(map[string]string{"access_token": "sq-access"})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	svc := NewService(Config{BaseURL: upstream.URL}, new(mockClientRepo))

	err := svc.CompleteCallback(context.Background(), "auth-code", "client-7")
	assert.ErrorIs(t, err, ErrMerchantInfo)
}
