// Package openbanking creates bank-transfer payments through the
// TrueLayer payments API: a client-credentials token request followed
// by a payment creation call, returning the hosted authorization URL.
package openbanking

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"tavola/internal/models"
	"tavola/internal/repositories"
	"tavola/internal/services/fees"

	"github.com/go-resty/resty/v2"
)

type Service interface {
	CreatePayment(ctx context.Context, req *models.CreatePaymentRequest) (*PaymentResult, error)
	UpdateFromWebhook(ctx context.Context, paymentID, status string) (*models.PaymentRecord, error)
}

type service struct {
	client   *resty.Client
	cfg      Config
	fees     *fees.Calculator
	payments repositories.PaymentRepository
}

func NewService(cfg Config, feeCalc *fees.Calculator, payments repositories.PaymentRepository) Service {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &service{
		client:   client,
		cfg:      cfg,
		fees:     feeCalc,
		payments: payments,
	}
}

// CreatePayment runs the two-step provider flow: obtain a bearer token,
// then submit the payment with the fee-inclusive total in minor units
// and the customer's bank preselected. Neither step is retried.
func (s *service) CreatePayment(ctx context.Context, req *models.CreatePaymentRequest) (*PaymentResult, error) {
	fee, total, err := s.fees.Total(req.Amount)
	if err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = "GBP"
	}

	token, err := s.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	payload := createPaymentRequest{
		AmountInMinor: fees.MinorUnits(total),
		Currency:      currency,
		PaymentMethod: paymentMethod{
			Type: "bank_transfer",
			ProviderSelection: providerSelection{
				Type:       "preselected",
				ProviderID: req.BankID,
			},
			Beneficiary: beneficiary{
				Type:              "merchant_account",
				MerchantAccountID: s.cfg.MerchantAccountID,
				AccountHolderName: s.cfg.BeneficiaryName,
			},
		},
		User: paymentUser{
			Name:  req.CustomerDetails.Name,
			Email: req.CustomerDetails.Email,
		},
		Metadata: map[string]string{
			"order_id":  req.OrderID,
			"client_id": req.ClientID,
		},
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(payload).
		Post(s.cfg.APIURL + "/v3/payments")
	if err != nil {
		return nil, fmt.Errorf("failed to call payment endpoint: %w", err)
	}
	if resp.StatusCode() != http.StatusCreated && resp.StatusCode() != http.StatusOK {
		return nil, &ProviderError{
			Code:   errorCode(resp.Body(), "payment_creation_failed"),
			Status: resp.StatusCode(),
		}
	}

	var created createPaymentResponse
	if err := json.Unmarshal(resp.Body(), &created); err != nil {
		return nil, fmt.Errorf("failed to decode payment response: %w", err)
	}

	result := &PaymentResult{
		PaymentID:        created.ID,
		Status:           created.Status,
		Amount:           req.Amount,
		Fee:              fee,
		TotalAmount:      total,
		Currency:         currency,
		OrderID:          req.OrderID,
		ClientID:         req.ClientID,
		AuthorizationURL: s.authorizationURL(created.ID, created.ResourceToken),
		CreatedAt:        time.Now().UTC(),
	}

	// The payment already exists upstream at this point. A failed local
	// write must not turn a created payment into an error response.
	record := &models.PaymentRecord{
		PaymentID:   created.ID,
		OrderID:     req.OrderID,
		ClientID:    req.ClientID,
		Amount:      req.Amount,
		Fee:         fee,
		Total:       total,
		AmountMinor: payload.AmountInMinor,
		Currency:    currency,
		BankID:      req.BankID,
		Status:      created.Status,
	}
	if err := s.payments.Create(ctx, record); err != nil {
		log.Printf("failed to persist payment %s: %v", created.ID, err)
	}

	return result, nil
}

// UpdateFromWebhook records a provider-reported status change and
// returns the updated payment record.
func (s *service) UpdateFromWebhook(ctx context.Context, paymentID, status string) (*models.PaymentRecord, error) {
	if err := s.payments.UpdateStatus(ctx, paymentID, status); err != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	record, err := s.payments.GetByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	return record, nil
}

func (s *service) accessToken(ctx context.Context) (string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{
			"grant_type":    "client_credentials",
			"client_id":     s.cfg.ClientID,
			"client_secret": s.cfg.ClientSecret,
			"scope":         "payments",
		}).
		Post(s.cfg.AuthURL + "/connect/token")
	if err != nil {
		return "", fmt.Errorf("failed to call token endpoint: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", &ProviderError{
			Code:   errorCode(resp.Body(), "token_request_failed"),
			Status: resp.StatusCode(),
		}
	}

	var token tokenResponse
	if err := json.Unmarshal(resp.Body(), &token); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", &ProviderError{Code: "token_request_failed", Status: resp.StatusCode()}
	}
	return token.AccessToken, nil
}

// authorizationURL builds the hosted payment page link the customer is
// redirected to for bank authorization.
func (s *service) authorizationURL(paymentID, resourceToken string) string {
	return fmt.Sprintf("%s#payment_id=%s&resource_token=%s&return_uri=%s",
		s.cfg.HPPURL, paymentID, resourceToken, url.QueryEscape(s.cfg.ReturnURI))
}
