package models

import "time"

// CourseProgress tracks one user's viewing state in one course. Completed is
// set once every lecture has been viewed or the user marks the course done;
// marking it incomplete again leaves the lecture flags alone.
type CourseProgress struct {
	BaseModel
	UserID    string `json:"user_id" gorm:"not null;size:36;uniqueIndex:idx_progress_user_course"`
	CourseID  string `json:"course_id" gorm:"not null;size:36;uniqueIndex:idx_progress_user_course"`
	Completed bool   `json:"completed" gorm:"not null;default:false"`

	LectureProgress []LectureProgress `json:"lecture_progress" gorm:"foreignKey:CourseProgressID"`
}

func (CourseProgress) TableName() string {
	return "course_progresses"
}

type LectureProgress struct {
	ID               uint      `json:"-" gorm:"primaryKey"`
	CourseProgressID string    `json:"-" gorm:"not null;size:36;uniqueIndex:idx_lecture_progress"`
	LectureID        string    `json:"lecture_id" gorm:"not null;size:36;uniqueIndex:idx_lecture_progress"`
	Viewed           bool      `json:"viewed" gorm:"not null;default:false"`
	CreatedAt        time.Time `json:"-"`
}

func (LectureProgress) TableName() string {
	return "lecture_progresses"
}
