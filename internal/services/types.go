package services

import (
	"github.com/SAP-F-2025/learning-service/internal/media"
	"github.com/SAP-F-2025/learning-service/internal/models"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID string
	Role   models.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// ===== USER REQUESTS =====

type RegisterRequest struct {
	Name     string          `json:"name" validate:"required,min=2,max=100"`
	Email    string          `json:"email" validate:"required,email,max=255"`
	Password string          `json:"password" validate:"required,min=6,max=72"`
	Role     models.UserRole `json:"role" validate:"omitempty,user_role"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name  *string     `form:"name" validate:"omitempty,min=2,max=100"`
	Photo *media.File `form:"-"`
}

type LoginResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"-"`
}

type ProfileResponse struct {
	*models.User
	EnrolledCourses []*models.Course `json:"enrolled_courses_detail"`
}

// ===== CATALOG REQUESTS =====

type CreateCourseRequest struct {
	CourseTitle string `json:"courseTitle" validate:"required,max=200"`
	Category    string `json:"category" validate:"required,max=100"`
}

type UpdateCourseRequest struct {
	CourseTitle *string  `form:"courseTitle" validate:"omitempty,min=1,max=200"`
	SubTitle    *string  `form:"subTitle" validate:"omitempty,max=300"`
	Description *string  `form:"description"`
	Category    *string  `form:"category" validate:"omitempty,min=1,max=100"`
	CourseLevel *string  `form:"courseLevel" validate:"omitempty,course_level"`
	CoursePrice *float64 `form:"coursePrice" validate:"omitempty,gte=0,lte=1000000"`

	Thumbnail *media.File `form:"-"`
}

type CreateLectureRequest struct {
	LectureTitle string `json:"lectureTitle" validate:"required,max=200"`
}

type VideoInfo struct {
	VideoURL string `json:"videoUrl" validate:"required,url"`
	PublicID string `json:"publicId"`
}

type UpdateLectureRequest struct {
	LectureTitle  *string    `json:"lectureTitle" validate:"omitempty,min=1,max=200"`
	Description   *string    `json:"description"`
	VideoInfo     *VideoInfo `json:"videoInfo"`
	IsPreviewFree *bool      `json:"isPreviewFree"`
}

// ===== PURCHASE RESULTS =====

type CheckoutResult struct {
	URL              string                `json:"url"`
	AlreadyPurchased bool                  `json:"already_purchased"`
	PurchaseID       string                `json:"purchase_id,omitempty"`
	Status           models.PurchaseStatus `json:"status,omitempty"`
}

type WebhookResult struct {
	Handled    bool   `json:"handled"`
	EventType  string `json:"event_type"`
	PurchaseID string `json:"purchase_id,omitempty"`
}

type CourseDetailResponse struct {
	Course    *models.Course    `json:"course"`
	Lectures  []*models.Lecture `json:"lectures"`
	Purchased bool              `json:"purchased"`
}

// ===== PROGRESS RESULTS =====

type ProgressResponse struct {
	CourseDetails *models.Course           `json:"course_details"`
	Lectures      []*models.Lecture        `json:"lectures"`
	Progress      []models.LectureProgress `json:"progress"`
	Completed     bool                     `json:"completed"`
}
