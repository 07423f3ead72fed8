package repositories

import (
	"context"

	"tavola/internal/models"

	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.PaymentRecord) error
	GetByPaymentID(ctx context.Context, paymentID string) (*models.PaymentRecord, error)
	UpdateStatus(ctx context.Context, paymentID, status string) error
	SettledVolume(ctx context.Context) (float64, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.PaymentRecord) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) GetByPaymentID(ctx context.Context, paymentID string) (*models.PaymentRecord, error) {
	var payment models.PaymentRecord
	if err := r.db.WithContext(ctx).First(&payment, "payment_id = ?", paymentID).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, paymentID, status string) error {
	return r.db.WithContext(ctx).Model(&models.PaymentRecord{}).
		Where("payment_id = ?", paymentID).
		Update("status", status).Error
}

// SettledVolume sums the totals of executed and settled payments.
func (r *paymentRepository) SettledVolume(ctx context.Context) (float64, error) {
	var volume float64
	err := r.db.WithContext(ctx).Model(&models.PaymentRecord{}).
		Where("status IN ?", []string{models.PaymentStatusExecuted, models.PaymentStatusSettled}).
		Select("COALESCE(SUM(total), 0)").
		Scan(&volume).Error
	return volume, err
}
