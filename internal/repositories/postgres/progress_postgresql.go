package postgres

import (
	"context"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressPostgreSQL struct {
	db *gorm.DB
}

func NewProgressPostgreSQL(db *gorm.DB) repositories.ProgressRepository {
	return &ProgressPostgreSQL{db: db}
}

func (p *ProgressPostgreSQL) GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID string) (*models.CourseProgress, error) {
	var progress models.CourseProgress
	err := p.getDB(tx).WithContext(ctx).
		Preload("LectureProgress", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (p *ProgressPostgreSQL) FindOrCreateForUpdate(ctx context.Context, tx *gorm.DB, userID, courseID string) (*models.CourseProgress, error) {
	db := p.getDB(tx).WithContext(ctx)

	candidate := &models.CourseProgress{UserID: userID, CourseID: courseID}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoNothing: true,
	}).Omit(clause.Associations).Create(candidate).Error; err != nil {
		return nil, err
	}

	var progress models.CourseProgress
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

func (p *ProgressPostgreSQL) MarkLectureViewed(ctx context.Context, tx *gorm.DB, progressID, lectureID string) error {
	return p.getDB(tx).WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "course_progress_id"}, {Name: "lecture_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"viewed": true}),
	}).Create(&models.LectureProgress{
		CourseProgressID: progressID,
		LectureID:        lectureID,
		Viewed:           true,
	}).Error
}

func (p *ProgressPostgreSQL) CountViewedInCourse(ctx context.Context, tx *gorm.DB, progressID, courseID string) (int64, error) {
	db := p.getDB(tx).WithContext(ctx)
	current := db.Model(&models.CourseLecture{}).Select("lecture_id").Where("course_id = ?", courseID)

	var count int64
	err := db.Model(&models.LectureProgress{}).
		Where("course_progress_id = ? AND viewed = ?", progressID, true).
		Where("lecture_id IN (?)", current).
		Count(&count).Error
	return count, err
}

func (p *ProgressPostgreSQL) SetCompleted(ctx context.Context, tx *gorm.DB, progressID string, completed bool) error {
	return p.getDB(tx).WithContext(ctx).Model(&models.CourseProgress{}).
		Where("id = ?", progressID).
		Update("completed", completed).Error
}

func (p *ProgressPostgreSQL) MarkAllViewed(ctx context.Context, tx *gorm.DB, progressID string) error {
	return p.getDB(tx).WithContext(ctx).Model(&models.LectureProgress{}).
		Where("course_progress_id = ?", progressID).
		Update("viewed", true).Error
}

func (p *ProgressPostgreSQL) DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID string) error {
	db := p.getDB(tx).WithContext(ctx)
	records := db.Model(&models.CourseProgress{}).Select("id").Where("course_id = ?", courseID)

	if err := db.Where("course_progress_id IN (?)", records).Delete(&models.LectureProgress{}).Error; err != nil {
		return err
	}
	return db.Where("course_id = ?", courseID).Delete(&models.CourseProgress{}).Error
}

func (p *ProgressPostgreSQL) DeleteLectureFlags(ctx context.Context, tx *gorm.DB, lectureID string) error {
	return p.getDB(tx).WithContext(ctx).Where("lecture_id = ?", lectureID).Delete(&models.LectureProgress{}).Error
}

func (p *ProgressPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return p.db
}
