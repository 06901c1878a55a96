package repositories

import (
	"context"

	"gorm.io/gorm"
)

type EnrollmentRepository interface {
	// Enroll is idempotent; created is false when the pair already existed.
	Enroll(ctx context.Context, tx *gorm.DB, userID, courseID string) (created bool, err error)
	IsEnrolled(ctx context.Context, tx *gorm.DB, userID, courseID string) (bool, error)
	CourseIDsByUser(ctx context.Context, tx *gorm.DB, userID string) ([]string, error)
	UserIDsByCourse(ctx context.Context, tx *gorm.DB, courseID string) ([]string, error)
	DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID string) error
}
