package postgres

import (
	"context"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"gorm.io/gorm"
)

type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

func (u *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	return u.getDB(tx).WithContext(ctx).Create(user).Error
}

// GetByID also fills the user's enrolled course ids.
func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	db := u.getDB(tx).WithContext(ctx)

	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}

	var courseIDs []string
	if err := db.Model(&models.Enrollment{}).
		Where("user_id = ?", id).
		Order("created_at ASC").
		Pluck("course_id", &courseIDs).Error; err != nil {
		return nil, err
	}
	user.EnrolledCourseIDs = courseIDs

	return &user, nil
}

func (u *UserPostgreSQL) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := u.getDB(tx).WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	var count int64
	err := u.getDB(tx).WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (u *UserPostgreSQL) Update(ctx context.Context, tx *gorm.DB, id string, updates map[string]interface{}) error {
	result := u.getDB(tx).WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (u *UserPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return u.db
}
