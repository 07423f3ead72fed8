package openbanking

import (
	"encoding/json"
	"fmt"
	"time"
)

// Config holds TrueLayer endpoints and credentials. AuthURL and APIURL
// are overridable so tests can point the client at a stub server.
type Config struct {
	AuthURL           string
	APIURL            string
	HPPURL            string
	ClientID          string
	ClientSecret      string
	MerchantAccountID string
	BeneficiaryName   string
	ReturnURI         string
}

// ProviderError is a non-success response from the payment provider.
// Code is extracted from the upstream body on a best-effort basis.
type ProviderError struct {
	Code   string
	Status int
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("payment provider error: %s (status %d)", e.Code, e.Status)
}

// PaymentResult is the client-facing outcome of a payment creation.
type PaymentResult struct {
	PaymentID        string    `json:"paymentId"`
	Status           string    `json:"status"`
	Amount           float64   `json:"amount"`
	Fee              float64   `json:"fee"`
	TotalAmount      float64   `json:"totalAmount"`
	Currency         string    `json:"currency"`
	OrderID          string    `json:"orderId"`
	ClientID         string    `json:"clientId"`
	AuthorizationURL string    `json:"authorizationUrl"`
	CreatedAt        time.Time `json:"createdAt"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type providerSelection struct {
	Type       string `json:"type"`
	ProviderID string `json:"provider_id"`
}

type beneficiary struct {
	Type              string `json:"type"`
	MerchantAccountID string `json:"merchant_account_id"`
	AccountHolderName string `json:"account_holder_name,omitempty"`
}

type paymentMethod struct {
	Type              string            `json:"type"`
	ProviderSelection providerSelection `json:"provider_selection"`
	Beneficiary       beneficiary       `json:"beneficiary"`
}

type paymentUser struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type createPaymentRequest struct {
	AmountInMinor int64             `json:"amount_in_minor"`
	Currency      string            `json:"currency"`
	PaymentMethod paymentMethod     `json:"payment_method"`
	User          paymentUser       `json:"user"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

type createPaymentResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	ResourceToken string `json:"resource_token"`
}

// errorCode digs a provider error code out of an upstream error body.
// TrueLayer returns either {"error": "..."} or a problem+json document
// with a "type"/"title"; anything unreadable falls back to the default.
func errorCode(body []byte, fallback string) string {
	var parsed struct {
		Error     string `json:"error"`
		ErrorCode string `json:"error_code"`
		Title     string `json:"title"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fallback
	}
	switch {
	case parsed.Error != "":
		return parsed.Error
	case parsed.ErrorCode != "":
		return parsed.ErrorCode
	case parsed.Title != "":
		return parsed.Title
	}
	return fallback
}
