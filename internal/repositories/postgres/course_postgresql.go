package postgres

import (
	"context"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CoursePostgreSQL struct {
	db *gorm.DB
}

func NewCoursePostgreSQL(db *gorm.DB) repositories.CourseRepository {
	return &CoursePostgreSQL{db: db}
}

func (c *CoursePostgreSQL) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	return c.getDB(tx).WithContext(ctx).Omit(clause.Associations).Create(course).Error
}

func (c *CoursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error) {
	db := c.getDB(tx).WithContext(ctx)

	var course models.Course
	err := db.Preload("Creator", creatorSummary).First(&course, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	lectureIDs, err := c.LectureIDs(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	course.LectureIDs = lectureIDs

	var studentIDs []string
	if err := db.Model(&models.Enrollment{}).
		Where("course_id = ?", id).
		Order("created_at ASC").
		Pluck("user_id", &studentIDs).Error; err != nil {
		return nil, err
	}
	course.EnrolledStudentIDs = studentIDs

	return &course, nil
}

func (c *CoursePostgreSQL) Exists(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	var count int64
	err := c.getDB(tx).WithContext(ctx).Model(&models.Course{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (c *CoursePostgreSQL) Update(ctx context.Context, tx *gorm.DB, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	result := c.getDB(tx).WithContext(ctx).Model(&models.Course{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (c *CoursePostgreSQL) SetPublished(ctx context.Context, tx *gorm.DB, id string, published bool) error {
	result := c.getDB(tx).WithContext(ctx).Model(&models.Course{}).Where("id = ?", id).Update("is_published", published)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (c *CoursePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	result := c.getDB(tx).WithContext(ctx).Where("id = ?", id).Delete(&models.Course{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (c *CoursePostgreSQL) ListByCreator(ctx context.Context, tx *gorm.DB, creatorID string) ([]*models.Course, error) {
	var courses []*models.Course
	err := c.getDB(tx).WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Find(&courses).Error
	return courses, err
}

func (c *CoursePostgreSQL) ListPublished(ctx context.Context, tx *gorm.DB) ([]*models.Course, error) {
	var courses []*models.Course
	err := c.getDB(tx).WithContext(ctx).
		Preload("Creator", creatorSummary).
		Where("is_published = ?", true).
		Order("created_at DESC").
		Find(&courses).Error
	return courses, err
}

func (c *CoursePostgreSQL) ListByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.Course, error) {
	courses := []*models.Course{}
	if len(ids) == 0 {
		return courses, nil
	}
	err := c.getDB(tx).WithContext(ctx).
		Preload("Creator", creatorSummary).
		Where("id IN ?", ids).
		Order("created_at DESC").
		Find(&courses).Error
	return courses, err
}

// AppendLecture places the lecture after the current last position. The
// course row is locked so concurrent appends do not share a position.
func (c *CoursePostgreSQL) AppendLecture(ctx context.Context, tx *gorm.DB, courseID, lectureID string) error {
	db := c.getDB(tx).WithContext(ctx)

	var course models.Course
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&course, "id = ?", courseID).Error; err != nil {
		return err
	}

	var last int
	if err := db.Model(&models.CourseLecture{}).
		Where("course_id = ?", courseID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&last).Error; err != nil {
		return err
	}

	return db.Create(&models.CourseLecture{
		CourseID:  courseID,
		LectureID: lectureID,
		Position:  last + 1,
	}).Error
}

func (c *CoursePostgreSQL) LectureIDs(ctx context.Context, tx *gorm.DB, courseID string) ([]string, error) {
	ids := []string{}
	err := c.getDB(tx).WithContext(ctx).Model(&models.CourseLecture{}).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Pluck("lecture_id", &ids).Error
	return ids, err
}

func (c *CoursePostgreSQL) CourseIDsByLecture(ctx context.Context, tx *gorm.DB, lectureID string) ([]string, error) {
	ids := []string{}
	err := c.getDB(tx).WithContext(ctx).Model(&models.CourseLecture{}).
		Where("lecture_id = ?", lectureID).
		Pluck("course_id", &ids).Error
	return ids, err
}

func (c *CoursePostgreSQL) HasLecture(ctx context.Context, tx *gorm.DB, courseID, lectureID string) (bool, error) {
	var count int64
	err := c.getDB(tx).WithContext(ctx).Model(&models.CourseLecture{}).
		Where("course_id = ? AND lecture_id = ?", courseID, lectureID).
		Count(&count).Error
	return count > 0, err
}

func (c *CoursePostgreSQL) CountLectures(ctx context.Context, tx *gorm.DB, courseID string) (int64, error) {
	var count int64
	err := c.getDB(tx).WithContext(ctx).Model(&models.CourseLecture{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

func (c *CoursePostgreSQL) RemoveLectureEverywhere(ctx context.Context, tx *gorm.DB, lectureID string) error {
	return c.getDB(tx).WithContext(ctx).Where("lecture_id = ?", lectureID).Delete(&models.CourseLecture{}).Error
}

func (c *CoursePostgreSQL) ClearLectures(ctx context.Context, tx *gorm.DB, courseID string) error {
	return c.getDB(tx).WithContext(ctx).Where("course_id = ?", courseID).Delete(&models.CourseLecture{}).Error
}

func (c *CoursePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

// creatorSummary limits the preloaded creator to what the catalog shows.
func creatorSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "photo_url")
}
