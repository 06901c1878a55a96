package services

import (
	"context"

	"github.com/SAP-F-2025/learning-service/internal/media"
	"github.com/SAP-F-2025/learning-service/internal/models"
)

type UserService interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *LoginRequest) (*LoginResult, error)
	GetProfile(ctx context.Context, actor Actor) (*ProfileResponse, error)
	UpdateProfile(ctx context.Context, actor Actor, req *UpdateProfileRequest) (*models.User, error)
}

type CourseService interface {
	Create(ctx context.Context, actor Actor, req *CreateCourseRequest) (*models.Course, error)
	Update(ctx context.Context, actor Actor, courseID string, req *UpdateCourseRequest) (*models.Course, error)
	GetByID(ctx context.Context, courseID string) (*models.Course, error)
	ListMine(ctx context.Context, actor Actor) ([]*models.Course, error)
	ListPublished(ctx context.Context) ([]*models.Course, error)
	// SetPublished accepts only "true" or "false".
	SetPublished(ctx context.Context, actor Actor, courseID, publish string) (*models.Course, error)
	Delete(ctx context.Context, actor Actor, courseID string) error
}

type LectureService interface {
	Create(ctx context.Context, actor Actor, courseID string, req *CreateLectureRequest) (*models.Lecture, error)
	Update(ctx context.Context, actor Actor, courseID, lectureID string, req *UpdateLectureRequest) (*models.Lecture, error)
	GetByID(ctx context.Context, lectureID string) (*models.Lecture, error)
	ListByCourse(ctx context.Context, courseID string) ([]*models.Lecture, error)
	Delete(ctx context.Context, actor Actor, lectureID string) error
	UploadMedia(ctx context.Context, actor Actor, kind media.Kind, file media.File) (*media.Object, error)
}

type PurchaseService interface {
	Checkout(ctx context.Context, actor Actor, courseID string) (*CheckoutResult, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error)
	GetCourseDetailWithStatus(ctx context.Context, actor Actor, courseID string) (*CourseDetailResponse, error)
	ListCompleted(ctx context.Context, actor Actor) ([]*models.Purchase, error)
}

type ReportService interface {
	// ExportPurchases renders the caller's visible completed purchases as xlsx.
	ExportPurchases(ctx context.Context, actor Actor) ([]byte, error)
}

type ProgressService interface {
	GetCourseProgress(ctx context.Context, actor Actor, courseID string) (*ProgressResponse, error)
	UpdateLectureProgress(ctx context.Context, actor Actor, courseID, lectureID string) (*ProgressResponse, error)
	MarkAsCompleted(ctx context.Context, actor Actor, courseID string) error
	MarkAsInCompleted(ctx context.Context, actor Actor, courseID string) error
}

// TokenIssuer signs session tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID string, role models.UserRole) (string, error)
}
