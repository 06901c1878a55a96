package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/media"
	"github.com/SAP-F-2025/learning-service/internal/payment"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

// ServiceManager exposes every service built from one set of dependencies.
type ServiceManager interface {
	User() UserService
	Course() CourseService
	Lecture() LectureService
	Purchase() PurchaseService
	Report() ReportService
	Progress() ProgressService
	Reconciler() *EnrollmentReconciler
}

// PurchaseSettings selects how checkout completes.
type PurchaseSettings struct {
	// "gateway" or "direct"
	Mode        string
	Currency    string
	FrontendURL string
}

type Dependencies struct {
	Repo      repositories.Repository
	Media     media.Store
	Gateway   payment.Gateway // nil in direct mode
	Cache     cache.CacheService
	Publisher events.EventPublisher
	Tokens    TokenIssuer
	Validator *validator.Validator
	Logger    *slog.Logger

	Purchase        PurchaseSettings
	CatalogCacheTTL time.Duration
}

type serviceManager struct {
	user       UserService
	course     CourseService
	lecture    LectureService
	purchase   PurchaseService
	report     ReportService
	progress   ProgressService
	reconciler *EnrollmentReconciler
}

func NewServiceManager(deps Dependencies) ServiceManager {
	if deps.Cache == nil {
		deps.Cache = cache.NoopCache{}
	}

	purchase := NewPurchaseService(deps)
	return &serviceManager{
		user:       NewUserService(deps),
		course:     NewCourseService(deps),
		lecture:    NewLectureService(deps),
		purchase:   purchase,
		report:     NewReportService(purchase, deps.Logger),
		progress:   NewProgressService(deps),
		reconciler: NewEnrollmentReconciler(deps.Repo, deps.Publisher, deps.Logger),
	}
}

func (m *serviceManager) User() UserService                  { return m.user }
func (m *serviceManager) Course() CourseService              { return m.course }
func (m *serviceManager) Lecture() LectureService            { return m.lecture }
func (m *serviceManager) Purchase() PurchaseService          { return m.purchase }
func (m *serviceManager) Report() ReportService              { return m.report }
func (m *serviceManager) Progress() ProgressService          { return m.progress }
func (m *serviceManager) Reconciler() *EnrollmentReconciler { return m.reconciler }

// ===== SHARED HELPERS =====

// publishEvent never fails the caller; state is already committed.
func publishEvent(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, event *events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
	}
}

// deleteMedia removes stored files after the records that referenced them
// are gone. Failures are logged only.
func deleteMedia(ctx context.Context, store media.Store, logger *slog.Logger, ids ...string) {
	if store == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, id := range ids {
		if id == "" {
			continue
		}
		if err := store.Delete(ctx, id); err != nil {
			logger.Warn("Failed to delete media", "media_id", id, "error", err)
		}
	}
}

func invalidateCatalog(ctx context.Context, c cache.CacheService, logger *slog.Logger) {
	if err := c.Delete(ctx, cache.PublishedCoursesKey); err != nil {
		logger.Warn("Failed to invalidate catalog cache", "error", err)
	}
}

// canManageCourse reports whether the actor owns the course or is an admin.
func canManageCourse(actor Actor, creatorID string) bool {
	return actor.IsAdmin() || actor.UserID == creatorID
}
