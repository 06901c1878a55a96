package postgres

import (
	"context"

	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"gorm.io/gorm"
)

type Repository struct {
	db         *gorm.DB
	user       repositories.UserRepository
	course     repositories.CourseRepository
	lecture    repositories.LectureRepository
	enrollment repositories.EnrollmentRepository
	purchase   repositories.PurchaseRepository
	progress   repositories.ProgressRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		db:         db,
		user:       NewUserPostgreSQL(db),
		course:     NewCoursePostgreSQL(db),
		lecture:    NewLecturePostgreSQL(db),
		enrollment: NewEnrollmentPostgreSQL(db),
		purchase:   NewPurchasePostgreSQL(db),
		progress:   NewProgressPostgreSQL(db),
	}
}

func (r *Repository) User() repositories.UserRepository             { return r.user }
func (r *Repository) Course() repositories.CourseRepository         { return r.course }
func (r *Repository) Lecture() repositories.LectureRepository       { return r.lecture }
func (r *Repository) Enrollment() repositories.EnrollmentRepository { return r.enrollment }
func (r *Repository) Purchase() repositories.PurchaseRepository     { return r.purchase }
func (r *Repository) Progress() repositories.ProgressRepository     { return r.progress }

func (r *Repository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}
