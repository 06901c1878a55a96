package repositories

import (
	"context"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"gorm.io/gorm"
)

type CourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	// GetByID loads the course with its ordered lecture ids and enrolled students.
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error)
	Exists(ctx context.Context, tx *gorm.DB, id string) (bool, error)
	Update(ctx context.Context, tx *gorm.DB, id string, updates map[string]interface{}) error
	SetPublished(ctx context.Context, tx *gorm.DB, id string, published bool) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error

	ListByCreator(ctx context.Context, tx *gorm.DB, creatorID string) ([]*models.Course, error)
	// ListPublished preloads only the creator's name and photo.
	ListPublished(ctx context.Context, tx *gorm.DB) ([]*models.Course, error)
	ListByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.Course, error)

	// Lecture sequence
	AppendLecture(ctx context.Context, tx *gorm.DB, courseID, lectureID string) error
	LectureIDs(ctx context.Context, tx *gorm.DB, courseID string) ([]string, error)
	CourseIDsByLecture(ctx context.Context, tx *gorm.DB, lectureID string) ([]string, error)
	HasLecture(ctx context.Context, tx *gorm.DB, courseID, lectureID string) (bool, error)
	CountLectures(ctx context.Context, tx *gorm.DB, courseID string) (int64, error)
	RemoveLectureEverywhere(ctx context.Context, tx *gorm.DB, lectureID string) error
	ClearLectures(ctx context.Context, tx *gorm.DB, courseID string) error
}
