package models

import "time"

// Client account statuses.
const (
	ClientStatusPending   = "pending"
	ClientStatusActive    = "active"
	ClientStatusSuspended = "suspended"
)

// ClientAccount is a sub-merchant onboarded through Square Connect.
// It starts pending when the authorization URL is issued and becomes
// active once the OAuth callback stores tokens and merchant identity.
type ClientAccount struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	ClientID     string    `json:"client_id" gorm:"uniqueIndex;not null"`
	BusinessName string    `json:"business_name" gorm:"not null"`
	Email        string    `json:"email" gorm:"not null"`
	Phone        string    `json:"phone"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	MerchantID   string    `json:"merchant_id"`
	Status       string    `json:"status" gorm:"index;default:pending"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
