package repositories

import (
	"context"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"gorm.io/gorm"
)

type ProgressRepository interface {
	// GetByUserAndCourse preloads lecture flags in first-view order.
	GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID string) (*models.CourseProgress, error)
	// FindOrCreateForUpdate must run inside a transaction; concurrent callers
	// converge on a single row.
	FindOrCreateForUpdate(ctx context.Context, tx *gorm.DB, userID, courseID string) (*models.CourseProgress, error)
	MarkLectureViewed(ctx context.Context, tx *gorm.DB, progressID, lectureID string) error
	// CountViewedInCourse counts viewed flags for lectures currently in the course.
	CountViewedInCourse(ctx context.Context, tx *gorm.DB, progressID, courseID string) (int64, error)
	SetCompleted(ctx context.Context, tx *gorm.DB, progressID string, completed bool) error
	MarkAllViewed(ctx context.Context, tx *gorm.DB, progressID string) error

	DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID string) error
	DeleteLectureFlags(ctx context.Context, tx *gorm.DB, lectureID string) error
}
