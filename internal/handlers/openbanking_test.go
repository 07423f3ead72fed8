package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tavola/internal/models"
	"tavola/internal/services/openbanking"
	"tavola/internal/services/order"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPaymentService struct {
	mock.Mock
}

func (m *mockPaymentService) CreatePayment(ctx context.Context, req *models.CreatePaymentRequest) (*openbanking.PaymentResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*openbanking.PaymentResult), args.Error(1)
}

func (m *mockPaymentService) UpdateFromWebhook(ctx context.Context, paymentID, status string) (*models.PaymentRecord, error) {
	args := m.Called(ctx, paymentID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentRecord), args.Error(1)
}

type mockOrderService struct {
	mock.Mock
}

func (m *mockOrderService) Create(ctx context.Context, req *order.CreateRequest) (*models.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrderService) UpdateStatus(ctx context.Context, id, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func newPaymentApp(svc openbanking.Service, orders order.Service) *fiber.App {
	app := fiber.New()
	h := NewOpenBankingHandler(svc, orders, nil)
	app.Post("/api/openbanking/create-payment", h.CreatePayment)
	app.Post("/api/openbanking/webhook", h.Webhook)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	// Some endpoints reply with a bare status text rather than JSON.
	var parsed map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &parsed))
	}
	return resp, parsed
}

func TestOpenBankingHandler_CreatePayment_InvalidAmount(t *testing.T) {
	app := newPaymentApp(new(mockPaymentService), new(mockOrderService))

	resp, body := postJSON(t, app, "/api/openbanking/create-payment", fiber.Map{
		"amount": 0,
		"bankId": "ob-monzo",
	})

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid amount", body["error"])
}

func TestOpenBankingHandler_CreatePayment_MissingBank(t *testing.T) {
	app := newPaymentApp(new(mockPaymentService), new(mockOrderService))

	resp, body := postJSON(t, app, "/api/openbanking/create-payment", fiber.Map{
		"amount": 25.50,
	})

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Bank selection is required", body["error"])
}

func TestOpenBankingHandler_CreatePayment_Success(t *testing.T) {
	svc := new(mockPaymentService)
	svc.On("CreatePayment", mock.Anything, mock.MatchedBy(func(req *models.CreatePaymentRequest) bool {
		return req.Amount == 25.50 && req.BankID == "ob-monzo"
	})).Return(&openbanking.PaymentResult{
		PaymentID:        "pay-1",
		Status:           "authorization_required",
		Amount:           25.50,
		Fee:              0.10,
		TotalAmount:      25.60,
		Currency:         "GBP",
		OrderID:          "order-1",
		ClientID:         "client-1",
		AuthorizationURL: "https://payment.truelayer.com/payments#payment_id=pay-1",
		CreatedAt:        time.Now().UTC(),
	}, nil)

	app := newPaymentApp(svc, new(mockOrderService))

	resp, body := postJSON(t, app, "/api/openbanking/create-payment", fiber.Map{
		"amount":   25.50,
		"bankId":   "ob-monzo",
		"orderId":  "order-1",
		"clientId": "client-1",
	})

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "pay-1", body["paymentId"])
	assert.Equal(t, 0.10, body["fee"])
	assert.Equal(t, 25.60, body["totalAmount"])
	assert.Contains(t, body["authorizationUrl"], "payment_id=pay-1")

	svc.AssertExpectations(t)
}

func TestOpenBankingHandler_CreatePayment_ProviderFailure(t *testing.T) {
	svc := new(mockPaymentService)
	svc.On("CreatePayment", mock.Anything, mock.Anything).
		Return(nil, &openbanking.ProviderError{Code: "provider_rejected", Status: 400})

	app := newPaymentApp(svc, new(mockOrderService))

	resp, body := postJSON(t, app, "/api/openbanking/create-payment", fiber.Map{
		"amount": 25.50,
		"bankId": "ob-monzo",
	})

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Payment failed", body["error"])
	assert.Equal(t, "provider_rejected", body["code"])
}

func TestOpenBankingHandler_Webhook_PaymentExecuted(t *testing.T) {
	svc := new(mockPaymentService)
	svc.On("UpdateFromWebhook", mock.Anything, "pay-1", models.PaymentStatusExecuted).
		Return(&models.PaymentRecord{PaymentID: "pay-1", OrderID: "order-1"}, nil)

	// No notifier is wired in the test app, so no confirmation email is
	// queued and Get is never consulted.
	orders := new(mockOrderService)
	orders.On("UpdateStatus", mock.Anything, "order-1", models.OrderStatusPaid).Return(nil)

	app := newPaymentApp(svc, orders)

	resp, _ := postJSON(t, app, "/api/openbanking/webhook", fiber.Map{
		"type":       "payment_executed",
		"payment_id": "pay-1",
	})

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	svc.AssertExpectations(t)
	orders.AssertExpectations(t)
}
