package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"gorm.io/gorm"
)

const (
	completionByViews  = "lecture_views"
	completionByManual = "manual"
)

type progressService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	log       *ServiceLogger
}

func NewProgressService(deps Dependencies) ProgressService {
	return &progressService{
		repo:      deps.Repo,
		publisher: deps.Publisher,
		logger:    deps.Logger,
		log:       NewServiceLogger(deps.Logger, LogConfig{Service: "progress", Component: "tracker"}),
	}
}

// GetCourseProgress returns the course with its lectures and the caller's
// viewing state. A caller who has not started the course gets an empty
// progress list rather than an error.
func (s *progressService) GetCourseProgress(ctx context.Context, actor Actor, courseID string) (*ProgressResponse, error) {
	course, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	lectures, err := s.repo.Lecture().ListByCourse(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lectures: %w", err)
	}

	resp := &ProgressResponse{
		CourseDetails: course,
		Lectures:      lectures,
		Progress:      []models.LectureProgress{},
	}

	progress, err := s.repo.Progress().GetByUserAndCourse(ctx, nil, actor.UserID, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return resp, nil
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	resp.Progress = progress.LectureProgress
	resp.Completed = progress.Completed
	return resp, nil
}

// UpdateLectureProgress records a view and completes the course once every
// lecture currently in it has been viewed.
func (s *progressService) UpdateLectureProgress(ctx context.Context, actor Actor, courseID, lectureID string) (resp *ProgressResponse, err error) {
	op := s.log.WithOperation(ctx, "view_lecture", actor.UserID)
	defer func() { op.LogResult(lectureID, "lecture", err) }()

	exists, err := s.repo.Course().Exists(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check course: %w", err)
	}
	if !exists {
		return nil, ErrCourseNotFound
	}

	linked, err := s.repo.Course().HasLecture(ctx, nil, courseID, lectureID)
	if err != nil {
		return nil, fmt.Errorf("failed to check lecture: %w", err)
	}
	if !linked {
		return nil, ErrLectureNotFound
	}

	var completedNow bool
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		progress, err := s.repo.Progress().FindOrCreateForUpdate(ctx, tx, actor.UserID, courseID)
		if err != nil {
			return fmt.Errorf("failed to load progress: %w", err)
		}

		if err := s.repo.Progress().MarkLectureViewed(ctx, tx, progress.ID, lectureID); err != nil {
			return fmt.Errorf("failed to record view: %w", err)
		}
		if progress.Completed {
			return nil
		}

		total, err := s.repo.Course().CountLectures(ctx, tx, courseID)
		if err != nil {
			return fmt.Errorf("failed to count lectures: %w", err)
		}
		viewed, err := s.repo.Progress().CountViewedInCourse(ctx, tx, progress.ID, courseID)
		if err != nil {
			return fmt.Errorf("failed to count views: %w", err)
		}

		if total > 0 && viewed >= total {
			if err := s.repo.Progress().SetCompleted(ctx, tx, progress.ID, true); err != nil {
				return fmt.Errorf("failed to complete course: %w", err)
			}
			completedNow = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if completedNow {
		publishEvent(ctx, s.publisher, s.logger,
			events.NewCourseCompletedEvent(actor.UserID, courseID, completionByViews))
	}
	return s.GetCourseProgress(ctx, actor, courseID)
}

// MarkAsCompleted flags every recorded lecture as viewed and completes the
// course. It needs an existing progress record.
func (s *progressService) MarkAsCompleted(ctx context.Context, actor Actor, courseID string) (err error) {
	op := s.log.WithOperation(ctx, "mark_completed", actor.UserID)
	defer func() { op.LogResult(courseID, "course", err) }()

	var completedNow bool
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		progress, err := s.repo.Progress().GetByUserAndCourse(ctx, tx, actor.UserID, courseID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrProgressNotFound
			}
			return fmt.Errorf("failed to get progress: %w", err)
		}

		if err := s.repo.Progress().MarkAllViewed(ctx, tx, progress.ID); err != nil {
			return fmt.Errorf("failed to mark lectures viewed: %w", err)
		}
		if err := s.repo.Progress().SetCompleted(ctx, tx, progress.ID, true); err != nil {
			return fmt.Errorf("failed to complete course: %w", err)
		}
		completedNow = !progress.Completed
		return nil
	})
	if err != nil {
		return err
	}

	if completedNow {
		publishEvent(ctx, s.publisher, s.logger,
			events.NewCourseCompletedEvent(actor.UserID, courseID, completionByManual))
	}
	return nil
}

// MarkAsInCompleted clears the completed flag only; lecture views are kept.
func (s *progressService) MarkAsInCompleted(ctx context.Context, actor Actor, courseID string) (err error) {
	op := s.log.WithOperation(ctx, "mark_incomplete", actor.UserID)
	defer func() { op.LogResult(courseID, "course", err) }()

	progress, err := s.repo.Progress().GetByUserAndCourse(ctx, nil, actor.UserID, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrProgressNotFound
		}
		return fmt.Errorf("failed to get progress: %w", err)
	}

	if err = s.repo.Progress().SetCompleted(ctx, nil, progress.ID, false); err != nil {
		return fmt.Errorf("failed to reset completion: %w", err)
	}
	return nil
}
