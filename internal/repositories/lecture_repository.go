package repositories

import (
	"context"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"gorm.io/gorm"
)

type LectureRepository interface {
	Create(ctx context.Context, tx *gorm.DB, lecture *models.Lecture) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Lecture, error)
	Update(ctx context.Context, tx *gorm.DB, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []string) error

	// ListByCourse returns full lectures in the course's stored order.
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID string) ([]*models.Lecture, error)
	MarkPreviewFreeByCourse(ctx context.Context, tx *gorm.DB, courseID string) error
}
