package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/media"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/validator"
	"gorm.io/gorm"
)

type courseService struct {
	repo      repositories.Repository
	media     media.Store
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	log       *ServiceLogger
	cacheTTL  time.Duration
}

func NewCourseService(deps Dependencies) CourseService {
	return &courseService{
		repo:      deps.Repo,
		media:     deps.Media,
		cache:     deps.Cache,
		publisher: deps.Publisher,
		logger:    deps.Logger,
		validator: deps.Validator,
		log:       NewServiceLogger(deps.Logger, LogConfig{Service: "course", Component: "catalog"}),
		cacheTTL:  deps.CatalogCacheTTL,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *courseService) Create(ctx context.Context, actor Actor, req *CreateCourseRequest) (course *models.Course, err error) {
	op := s.log.WithOperation(ctx, "create_course", actor.UserID)
	defer func() { op.LogResult(courseID(course), "course", err) }()

	if !actor.Role.CanAuthor() {
		return nil, NewPermissionError(actor.UserID, "", "course", "create", "only instructors can create courses")
	}
	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.CourseTitle)
	category := strings.TrimSpace(req.Category)
	if title == "" || category == "" {
		return nil, NewFieldError("courseTitle", "course title and category are required", req.CourseTitle)
	}

	created := &models.Course{
		Title:     title,
		Category:  category,
		CreatorID: actor.UserID,
	}
	if err = s.repo.Course().Create(ctx, nil, created); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	return s.GetByID(ctx, created.ID)
}

func (s *courseService) GetByID(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

func (s *courseService) ListMine(ctx context.Context, actor Actor) ([]*models.Course, error) {
	courses, err := s.repo.Course().ListByCreator(ctx, nil, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

// ListPublished serves from cache when possible. Cache failures fall back to
// the database.
func (s *courseService) ListPublished(ctx context.Context) ([]*models.Course, error) {
	var cached []*models.Course
	err := s.cache.Get(ctx, cache.PublishedCoursesKey, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Catalog cache read failed", "error", err)
	}

	courses, err := s.repo.Course().ListPublished(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list published courses: %w", err)
	}

	if err := s.cache.Set(ctx, cache.PublishedCoursesKey, courses, s.cacheTTL); err != nil {
		s.logger.Warn("Catalog cache write failed", "error", err)
	}
	return courses, nil
}

func (s *courseService) Update(ctx context.Context, actor Actor, id string, req *UpdateCourseRequest) (course *models.Course, err error) {
	op := s.log.WithOperation(ctx, "update_course", actor.UserID)
	defer func() { op.LogResult(id, "course", err) }()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err = normalizeCourseUpdate(req); err != nil {
		return nil, err
	}

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManageCourse(actor, current.CreatorID) {
		return nil, NewPermissionError(actor.UserID, id, "course", "update", "not the course creator")
	}

	updates := s.buildCourseUpdates(req)

	var uploaded *media.Object
	if req.Thumbnail != nil {
		uploaded, err = s.media.Upload(ctx, media.KindImage, *req.Thumbnail)
		if err != nil {
			return nil, NewUpstreamError("media", err)
		}
		updates["thumbnail_url"] = uploaded.URL
		updates["thumbnail_media_id"] = uploaded.ID
	}

	if err = s.repo.Course().Update(ctx, nil, id, updates); err != nil {
		if uploaded != nil {
			deleteMedia(ctx, s.media, s.logger, uploaded.ID)
		}
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	if uploaded != nil {
		deleteMedia(ctx, s.media, s.logger, current.ThumbnailMediaID)
	}
	if current.IsPublished && len(updates) > 0 {
		invalidateCatalog(ctx, s.cache, s.logger)
	}

	return s.GetByID(ctx, id)
}

// normalizeCourseUpdate trims the required text fields in place. A course
// always keeps a non-blank title and category.
func normalizeCourseUpdate(req *UpdateCourseRequest) error {
	if req.CourseTitle != nil {
		title := strings.TrimSpace(*req.CourseTitle)
		if title == "" {
			return NewFieldError("courseTitle", "course title cannot be blank", *req.CourseTitle)
		}
		req.CourseTitle = &title
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" {
			return NewFieldError("category", "category cannot be blank", *req.Category)
		}
		req.Category = &category
	}
	return nil
}

func (s *courseService) buildCourseUpdates(req *UpdateCourseRequest) map[string]interface{} {
	updates := map[string]interface{}{}
	if req.CourseTitle != nil {
		updates["title"] = *req.CourseTitle
	}
	if req.SubTitle != nil {
		updates["subtitle"] = *req.SubTitle
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.CourseLevel != nil {
		updates["level"] = models.CourseLevel(*req.CourseLevel)
	}
	if req.CoursePrice != nil {
		updates["price"] = *req.CoursePrice
	}
	return updates
}

// ===== PUBLICATION =====

func (s *courseService) SetPublished(ctx context.Context, actor Actor, id, publish string) (course *models.Course, err error) {
	op := s.log.WithOperation(ctx, "set_published", actor.UserID)
	defer func() { op.LogResult(id, "course", err) }()

	var published bool
	switch publish {
	case "true":
		published = true
	case "false":
		published = false
	default:
		return nil, NewFieldError("publish", "publish must be true or false", publish)
	}

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManageCourse(actor, current.CreatorID) {
		return nil, NewPermissionError(actor.UserID, id, "course", "publish", "not the course creator")
	}
	if current.IsPublished == published {
		return nil, ErrPublishStateUnchanged
	}

	if err = s.repo.Course().SetPublished(ctx, nil, id, published); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to update publish state: %w", err)
	}

	invalidateCatalog(ctx, s.cache, s.logger)
	publishEvent(ctx, s.publisher, s.logger,
		events.NewCoursePublicationEvent(id, current.Title, current.CreatorID, published))

	current.IsPublished = published
	return current, nil
}

// ===== DELETION =====

// Delete removes the course together with its lectures, enrollments and
// progress in one transaction. Purchases are kept for accounting. Stored
// media goes only after commit.
func (s *courseService) Delete(ctx context.Context, actor Actor, id string) (err error) {
	op := s.log.WithOperation(ctx, "delete_course", actor.UserID)
	defer func() { op.LogResult(id, "course", err) }()

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !canManageCourse(actor, current.CreatorID) {
		return NewPermissionError(actor.UserID, id, "course", "delete", "not the course creator")
	}

	var (
		lectureIDs []string
		mediaIDs   []string
		students   []string
	)
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		lectures, err := s.repo.Lecture().ListByCourse(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("failed to list lectures: %w", err)
		}
		for _, l := range lectures {
			lectureIDs = append(lectureIDs, l.ID)
			mediaIDs = append(mediaIDs, l.VideoMediaID)
		}

		if students, err = s.repo.Enrollment().UserIDsByCourse(ctx, tx, id); err != nil {
			return fmt.Errorf("failed to list students: %w", err)
		}

		if err := s.repo.Progress().DeleteByCourse(ctx, tx, id); err != nil {
			return fmt.Errorf("failed to delete progress: %w", err)
		}
		if err := s.repo.Enrollment().DeleteByCourse(ctx, tx, id); err != nil {
			return fmt.Errorf("failed to delete enrollments: %w", err)
		}
		if err := s.repo.Course().ClearLectures(ctx, tx, id); err != nil {
			return fmt.Errorf("failed to unlink lectures: %w", err)
		}
		if err := s.repo.Lecture().DeleteByIDs(ctx, tx, lectureIDs); err != nil {
			return fmt.Errorf("failed to delete lectures: %w", err)
		}
		if err := s.repo.Course().Delete(ctx, tx, id); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrCourseNotFound
			}
			return fmt.Errorf("failed to delete course: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	deleteMedia(ctx, s.media, s.logger, append(mediaIDs, current.ThumbnailMediaID)...)
	if current.IsPublished {
		invalidateCatalog(ctx, s.cache, s.logger)
	}
	publishEvent(ctx, s.publisher, s.logger,
		events.NewCourseDeletedEvent(id, current.CreatorID, lectureIDs, len(students)))

	return nil
}

func courseID(course *models.Course) string {
	if course == nil {
		return ""
	}
	return course.ID
}
