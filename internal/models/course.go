package models

import "time"

type CourseLevel string

const (
	LevelBeginner CourseLevel = "Beginner"
	LevelMedium   CourseLevel = "Medium"
	LevelAdvance  CourseLevel = "Advance"
)

type Course struct {
	BaseModel
	Title       string      `json:"title" gorm:"not null;size:200"`
	Subtitle    string      `json:"subtitle" gorm:"size:300"`
	Description string      `json:"description" gorm:"type:text"`
	Category    string      `json:"category" gorm:"not null;size:100;index"`
	Level       CourseLevel `json:"level" gorm:"size:20"`
	Price       float64     `json:"price"`

	ThumbnailURL     string `json:"thumbnail_url" gorm:"size:500"`
	ThumbnailMediaID string `json:"-" gorm:"size:500"`

	IsPublished bool   `json:"is_published" gorm:"not null;default:false;index"`
	CreatorID   string `json:"creator_id" gorm:"not null;size:36;index"`
	Creator     *User  `json:"creator,omitempty" gorm:"foreignKey:CreatorID"`

	// Ordered by authoring position; loaded from course_lectures.
	LectureIDs []string `json:"lectures" gorm:"-"`
	// Loaded from enrollments.
	EnrolledStudentIDs []string `json:"enrolled_students" gorm:"-"`
}

func (Course) TableName() string {
	return "courses"
}

// CourseLecture places a lecture at a position inside a course. A lecture
// belongs to the courses that link it here.
type CourseLecture struct {
	CourseID  string `json:"course_id" gorm:"primaryKey;size:36"`
	LectureID string `json:"lecture_id" gorm:"primaryKey;size:36;index"`
	Position  int    `json:"position" gorm:"not null"`
}

func (CourseLecture) TableName() string {
	return "course_lectures"
}

// Enrollment is the single source for both a user's enrolled courses and a
// course's enrolled students.
type Enrollment struct {
	UserID    string    `json:"user_id" gorm:"primaryKey;size:36"`
	CourseID  string    `json:"course_id" gorm:"primaryKey;size:36;index"`
	CreatedAt time.Time `json:"created_at"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
