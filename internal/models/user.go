package models

type UserRole string

const (
	RoleStudent    UserRole = "student"
	RoleInstructor UserRole = "instructor"
	RoleAdmin      UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// CanAuthor reports whether the role may create courses.
func (r UserRole) CanAuthor() bool {
	return r == RoleInstructor || r == RoleAdmin
}

type User struct {
	BaseModel
	Name     string   `json:"name" gorm:"not null;size:100"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password string   `json:"-" gorm:"not null;size:255"`
	Role     UserRole `json:"role" gorm:"not null;size:20;default:student"`

	PhotoURL     string `json:"photo_url" gorm:"size:500"`
	PhotoMediaID string `json:"-" gorm:"size:500"`

	// Read from the enrollments table, never stored on the row.
	EnrolledCourseIDs []string `json:"enrolled_courses" gorm:"-"`
}

func (User) TableName() string {
	return "users"
}
