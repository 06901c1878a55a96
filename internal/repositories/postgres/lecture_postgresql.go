package postgres

import (
	"context"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"gorm.io/gorm"
)

type LecturePostgreSQL struct {
	db *gorm.DB
}

func NewLecturePostgreSQL(db *gorm.DB) repositories.LectureRepository {
	return &LecturePostgreSQL{db: db}
}

func (l *LecturePostgreSQL) Create(ctx context.Context, tx *gorm.DB, lecture *models.Lecture) error {
	return l.getDB(tx).WithContext(ctx).Create(lecture).Error
}

func (l *LecturePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Lecture, error) {
	var lecture models.Lecture
	if err := l.getDB(tx).WithContext(ctx).First(&lecture, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lecture, nil
}

func (l *LecturePostgreSQL) Update(ctx context.Context, tx *gorm.DB, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	result := l.getDB(tx).WithContext(ctx).Model(&models.Lecture{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (l *LecturePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	result := l.getDB(tx).WithContext(ctx).Where("id = ?", id).Delete(&models.Lecture{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (l *LecturePostgreSQL) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return l.getDB(tx).WithContext(ctx).Where("id IN ?", ids).Delete(&models.Lecture{}).Error
}

func (l *LecturePostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, courseID string) ([]*models.Lecture, error) {
	lectures := []*models.Lecture{}
	err := l.getDB(tx).WithContext(ctx).
		Joins("JOIN course_lectures ON course_lectures.lecture_id = lectures.id").
		Where("course_lectures.course_id = ?", courseID).
		Order("course_lectures.position ASC").
		Find(&lectures).Error
	return lectures, err
}

func (l *LecturePostgreSQL) MarkPreviewFreeByCourse(ctx context.Context, tx *gorm.DB, courseID string) error {
	db := l.getDB(tx).WithContext(ctx)
	courseLectures := db.Model(&models.CourseLecture{}).Select("lecture_id").Where("course_id = ?", courseID)
	return db.Model(&models.Lecture{}).
		Where("id IN (?)", courseLectures).
		Update("is_preview_free", true).Error
}

func (l *LecturePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return l.db
}
