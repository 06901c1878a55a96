package postgres

import (
	"context"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchasePostgreSQL struct {
	db *gorm.DB
}

func NewPurchasePostgreSQL(db *gorm.DB) repositories.PurchaseRepository {
	return &PurchasePostgreSQL{db: db}
}

func (p *PurchasePostgreSQL) Create(ctx context.Context, tx *gorm.DB, purchase *models.Purchase) error {
	return p.getDB(tx).WithContext(ctx).Omit(clause.Associations).Create(purchase).Error
}

func (p *PurchasePostgreSQL) GetByPaymentID(ctx context.Context, tx *gorm.DB, paymentID string) (*models.Purchase, error) {
	var purchase models.Purchase
	if err := p.getDB(tx).WithContext(ctx).Where("payment_id = ?", paymentID).First(&purchase).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (p *PurchasePostgreSQL) GetByPaymentIDForUpdate(ctx context.Context, tx *gorm.DB, paymentID string) (*models.Purchase, error) {
	var purchase models.Purchase
	if err := p.getDB(tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("payment_id = ?", paymentID).
		First(&purchase).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (p *PurchasePostgreSQL) HasCompleted(ctx context.Context, tx *gorm.DB, userID, courseID string) (bool, error) {
	var count int64
	err := p.getDB(tx).WithContext(ctx).Model(&models.Purchase{}).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, models.PurchaseCompleted).
		Count(&count).Error
	return count > 0, err
}

func (p *PurchasePostgreSQL) MarkCompleted(ctx context.Context, tx *gorm.DB, id string, amount float64, payload datatypes.JSON, at time.Time) error {
	updates := map[string]interface{}{
		"status":       models.PurchaseCompleted,
		"amount":       amount,
		"completed_at": at,
	}
	if len(payload) > 0 {
		updates["gateway_payload"] = payload
	}
	result := p.getDB(tx).WithContext(ctx).Model(&models.Purchase{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (p *PurchasePostgreSQL) ListCompleted(ctx context.Context, tx *gorm.DB, filters repositories.PurchaseFilters) ([]*models.Purchase, error) {
	query := p.getDB(tx).WithContext(ctx).Model(&models.Purchase{}).
		Select("purchases.*").
		Preload("Course").
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "email")
		}).
		Where("purchases.status = ?", models.PurchaseCompleted)

	if filters.CreatorID != nil {
		query = query.
			Joins("JOIN courses ON courses.id = purchases.course_id").
			Where("courses.creator_id = ?", *filters.CreatorID)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}

	purchases := []*models.Purchase{}
	err := query.Order("purchases.created_at DESC").Find(&purchases).Error
	return purchases, err
}

func (p *PurchasePostgreSQL) ListCompletedWithoutEnrollment(ctx context.Context, tx *gorm.DB, limit int) ([]*models.Purchase, error) {
	purchases := []*models.Purchase{}
	err := p.getDB(tx).WithContext(ctx).Model(&models.Purchase{}).
		Select("purchases.*").
		Joins("JOIN courses ON courses.id = purchases.course_id").
		Joins("LEFT JOIN enrollments ON enrollments.user_id = purchases.user_id AND enrollments.course_id = purchases.course_id").
		Where("purchases.status = ? AND enrollments.user_id IS NULL", models.PurchaseCompleted).
		Order("purchases.created_at ASC").
		Limit(limit).
		Find(&purchases).Error
	return purchases, err
}

func (p *PurchasePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return p.db
}
