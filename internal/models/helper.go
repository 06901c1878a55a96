package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel carries the opaque string identifier shared by every stored entity.
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// All returns every model managed by AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Course{},
		&Lecture{},
		&CourseLecture{},
		&Enrollment{},
		&Purchase{},
		&CourseProgress{},
		&LectureProgress{},
	}
}
