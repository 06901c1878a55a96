package postgres

import (
	"context"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrollmentPostgreSQL struct {
	db *gorm.DB
}

func NewEnrollmentPostgreSQL(db *gorm.DB) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{db: db}
}

func (e *EnrollmentPostgreSQL) Enroll(ctx context.Context, tx *gorm.DB, userID, courseID string) (bool, error) {
	result := e.getDB(tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Enrollment{UserID: userID, CourseID: courseID})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (e *EnrollmentPostgreSQL) IsEnrolled(ctx context.Context, tx *gorm.DB, userID, courseID string) (bool, error) {
	var count int64
	err := e.getDB(tx).WithContext(ctx).Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

func (e *EnrollmentPostgreSQL) CourseIDsByUser(ctx context.Context, tx *gorm.DB, userID string) ([]string, error) {
	ids := []string{}
	err := e.getDB(tx).WithContext(ctx).Model(&models.Enrollment{}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Pluck("course_id", &ids).Error
	return ids, err
}

func (e *EnrollmentPostgreSQL) UserIDsByCourse(ctx context.Context, tx *gorm.DB, courseID string) ([]string, error) {
	ids := []string{}
	err := e.getDB(tx).WithContext(ctx).Model(&models.Enrollment{}).
		Where("course_id = ?", courseID).
		Order("created_at ASC").
		Pluck("user_id", &ids).Error
	return ids, err
}

func (e *EnrollmentPostgreSQL) DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID string) error {
	return e.getDB(tx).WithContext(ctx).Where("course_id = ?", courseID).Delete(&models.Enrollment{}).Error
}

func (e *EnrollmentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return e.db
}
