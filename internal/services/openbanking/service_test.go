package openbanking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tavola/internal/models"
	"tavola/internal/services/fees"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPaymentRepo struct {
	mock.Mock
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *models.PaymentRecord) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *mockPaymentRepo) GetByPaymentID(ctx context.Context, paymentID string) (*models.PaymentRecord, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentRecord), args.Error(1)
}

func (m *mockPaymentRepo) UpdateStatus(ctx context.Context, paymentID, status string) error {
	args := m.Called(ctx, paymentID, status)
	return args.Error(0)
}

func (m *mockPaymentRepo) SettledVolume(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

func newTestConfig(upstream string) Config {
	return Config{
		AuthURL:           upstream,
		APIURL:            upstream,
		HPPURL:            "https://payment.truelayer.com/payments",
		ClientID:          "client-id",
		ClientSecret:      "client-secret",
		MerchantAccountID: "merchant-account",
		BeneficiaryName:   "Tavola",
		ReturnURI:         "http://localhost:3000/payment/complete",
	}
}

func TestService_CreatePayment(t *testing.T) {
	var capturedPayment createPaymentRequest
	var capturedAuth string

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/connect/token":
			assert.Equal(t, "client_credentials", r.PostFormValue("grant_type"))
			assert.Equal(t, "payments", r.PostFormValue("scope"))
			json.NewEncoder(w).Encode(tokenResponse{AccessToken: "upstream-token"})
		case "/v3/payments":
			capturedAuth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&capturedPayment))
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(createPaymentResponse{
				ID:            "pay-123",
				Status:        "authorization_required",
				ResourceToken: "res-token",
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer upstream.Close()

	repo := new(mockPaymentRepo)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *models.PaymentRecord) bool {
		return p.PaymentID == "pay-123" && p.AmountMinor == 100300
	})).Return(nil)

	svc := NewService(newTestConfig(upstream.URL), fees.NewCalculator(), repo)

	result, err := svc.CreatePayment(context.Background(), &models.CreatePaymentRequest{
		Amount:          1000,
		CustomerDetails: models.CustomerDetails{Name: "Ada", Email: "ada@example.com"},
		OrderID:         "order-1",
		BankID:          "ob-monzo",
		ClientID:        "client-9",
	})
	require.NoError(t, err)

	assert.Equal(t, "pay-123", result.PaymentID)
	assert.Equal(t, "authorization_required", result.Status)
	assert.Equal(t, 1000.0, result.Amount)
	assert.Equal(t, 3.00, result.Fee)
	assert.Equal(t, 1003.00, result.TotalAmount)
	assert.Equal(t, "GBP", result.Currency)
	assert.Equal(t, "order-1", result.OrderID)
	assert.Contains(t, result.AuthorizationURL, "payment_id=pay-123")
	assert.Contains(t, result.AuthorizationURL, "resource_token=res-token")

	assert.Equal(t, "Bearer upstream-token", capturedAuth)
	assert.Equal(t, int64(100300), capturedPayment.AmountInMinor)
	assert.Equal(t, "preselected", capturedPayment.PaymentMethod.ProviderSelection.Type)
	assert.Equal(t, "ob-monzo", capturedPayment.PaymentMethod.ProviderSelection.ProviderID)
	assert.Equal(t, "merchant-account", capturedPayment.PaymentMethod.Beneficiary.MerchantAccountID)

	repo.AssertExpectations(t)
}

func TestService_CreatePayment_InvalidAmount(t *testing.T) {
	svc := NewService(newTestConfig("http://unused"), fees.NewCalculator(), new(mockPaymentRepo))

	_, err := svc.CreatePayment(context.Background(), &models.CreatePaymentRequest{
		Amount: 0,
		BankID: "ob-monzo",
	})
	assert.ErrorIs(t, err, fees.ErrInvalidAmount)
}

func TestService_CreatePayment_TokenFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_client"}`))
	}))
	defer upstream.Close()

	svc := NewService(newTestConfig(upstream.URL), fees.NewCalculator(), new(mockPaymentRepo))

	_, err := svc.CreatePayment(context.Background(), &models.CreatePaymentRequest{
		Amount: 50,
		BankID: "ob-monzo",
	})

	var providerErr *ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, "invalid_client", providerErr.Code)
	assert.Equal(t, http.StatusUnauthorized, providerErr.Status)
}

func TestService_CreatePayment_PaymentFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/connect/token" {
			json.NewEncoder(w).Encode(tokenResponse{AccessToken: "upstream-token"})
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"title":"Invalid provider"}`))
	}))
	defer upstream.Close()

	svc := NewService(newTestConfig(upstream.URL), fees.NewCalculator(), new(mockPaymentRepo))

	_, err := svc.CreatePayment(context.Background(), &models.CreatePaymentRequest{
		Amount: 50,
		BankID: "ob-unknown",
	})

	var providerErr *ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, "Invalid provider", providerErr.Code)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "invalid_client", errorCode([]byte(`{"error":"invalid_client"}`), "fallback"))
	assert.Equal(t, "code_x", errorCode([]byte(`{"error_code":"code_x"}`), "fallback"))
	assert.Equal(t, "fallback", errorCode([]byte(`not json`), "fallback"))
	assert.Equal(t, "fallback", errorCode([]byte(`{}`), "fallback"))
}
