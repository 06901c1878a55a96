package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository groups the per-entity repositories and owns transactions.
// Every repository method accepts an optional *gorm.DB; passing the tx handed
// to WithTransaction enrolls the call in that transaction, nil uses the pool.
type Repository interface {
	User() UserRepository
	Course() CourseRepository
	Lecture() LectureRepository
	Enrollment() EnrollmentRepository
	Purchase() PurchaseRepository
	Progress() ProgressRepository

	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ===== SHARED FILTER STRUCTS =====

type PurchaseFilters struct {
	// Restrict to purchases of courses created by this user.
	CreatorID *string `json:"creator_id"`
	Limit     int     `json:"limit"`
	Offset    int     `json:"offset"`
}

// IsNotFoundError reports whether err came from a lookup that matched no row.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
