package models

import "time"

// Payment statuses mirror the provider lifecycle.
const (
	PaymentStatusAuthorizationRequired = "authorization_required"
	PaymentStatusAuthorized            = "authorized"
	PaymentStatusExecuted              = "executed"
	PaymentStatusSettled               = "settled"
	PaymentStatusFailed                = "failed"
)

// PaymentRecord is a bank-transfer payment created through the Open
// Banking provider. Amount and Fee are major units; AmountMinor is the
// total sent upstream in minor units.
type PaymentRecord struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	PaymentID   string    `json:"payment_id" gorm:"uniqueIndex;not null"` // provider id
	OrderID     string    `json:"order_id" gorm:"index"`
	ClientID    string    `json:"client_id" gorm:"index"`
	Amount      float64   `json:"amount"`
	Fee         float64   `json:"fee"`
	Total       float64   `json:"total"`
	AmountMinor int64     `json:"amount_minor"`
	Currency    string    `json:"currency"`
	BankID      string    `json:"bank_id"`
	Status      string    `json:"status" gorm:"index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CustomerDetails identifies the paying customer to the provider.
type CustomerDetails struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreatePaymentRequest is the body of POST /api/openbanking/create-payment.
type CreatePaymentRequest struct {
	Amount          float64         `json:"amount"`
	Currency        string          `json:"currency"`
	CustomerDetails CustomerDetails `json:"customerDetails"`
	OrderID         string          `json:"orderId"`
	BankID          string          `json:"bankId"`
	ClientID        string          `json:"clientId"`
}
