package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PurchaseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, purchase *models.Purchase) error
	GetByPaymentID(ctx context.Context, tx *gorm.DB, paymentID string) (*models.Purchase, error)
	// GetByPaymentIDForUpdate locks the row until tx ends.
	GetByPaymentIDForUpdate(ctx context.Context, tx *gorm.DB, paymentID string) (*models.Purchase, error)
	HasCompleted(ctx context.Context, tx *gorm.DB, userID, courseID string) (bool, error)
	MarkCompleted(ctx context.Context, tx *gorm.DB, id string, amount float64, payload datatypes.JSON, at time.Time) error

	ListCompleted(ctx context.Context, tx *gorm.DB, filters PurchaseFilters) ([]*models.Purchase, error)
	// ListCompletedWithoutEnrollment finds completed purchases of existing
	// courses whose enrollment row is missing.
	ListCompletedWithoutEnrollment(ctx context.Context, tx *gorm.DB, limit int) ([]*models.Purchase, error)
}
