package repositories

import (
	"context"
	"errors"

	"tavola/internal/models"

	"gorm.io/gorm"
)

type ClientAccountRepository interface {
	UpsertPending(ctx context.Context, account *models.ClientAccount) error
	GetByClientID(ctx context.Context, clientID string) (*models.ClientAccount, error)
	Activate(ctx context.Context, clientID, accessToken, refreshToken, merchantID string) error
	CountActive(ctx context.Context) (int64, error)
}

type clientAccountRepository struct {
	db *gorm.DB
}

func NewClientAccountRepository(db *gorm.DB) ClientAccountRepository {
	return &clientAccountRepository{db: db}
}

// UpsertPending creates the account or refreshes its contact details,
// keeping the existing status. Re-running onboarding for an active
// client must not demote it back to pending.
func (r *clientAccountRepository) UpsertPending(ctx context.Context, account *models.ClientAccount) error {
	var existing models.ClientAccount
	err := r.db.WithContext(ctx).First(&existing, "client_id = ?", account.ClientID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		account.Status = models.ClientStatusPending
		return r.db.WithContext(ctx).Create(account).Error
	}
	if err != nil {
		return err
	}

	existing.BusinessName = account.BusinessName
	existing.Email = account.Email
	existing.Phone = account.Phone
	return r.db.WithContext(ctx).Save(&existing).Error
}

func (r *clientAccountRepository) GetByClientID(ctx context.Context, clientID string) (*models.ClientAccount, error) {
	var account models.ClientAccount
	if err := r.db.WithContext(ctx).First(&account, "client_id = ?", clientID).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *clientAccountRepository) Activate(ctx context.Context, clientID, accessToken, refreshToken, merchantID string) error {
	return r.db.WithContext(ctx).Model(&models.ClientAccount{}).
		Where("client_id = ?", clientID).
		Updates(map[string]interface{}{
			"access_token":  accessToken,
			"refresh_token": refreshToken,
			"merchant_id":   merchantID,
			"status":        models.ClientStatusActive,
		}).Error
}

func (r *clientAccountRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ClientAccount{}).
		Where("status = ?", models.ClientStatusActive).
		Count(&count).Error
	return count, err
}
