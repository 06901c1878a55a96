package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/learning-service/internal/media"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/validator"
	"gorm.io/gorm"
)

type lectureService struct {
	repo      repositories.Repository
	media     media.Store
	logger    *slog.Logger
	validator *validator.Validator
	log       *ServiceLogger
}

func NewLectureService(deps Dependencies) LectureService {
	return &lectureService{
		repo:      deps.Repo,
		media:     deps.Media,
		logger:    deps.Logger,
		validator: deps.Validator,
		log:       NewServiceLogger(deps.Logger, LogConfig{Service: "lecture", Component: "catalog"}),
	}
}

// Create appends a new lecture to the end of the course sequence.
func (s *lectureService) Create(ctx context.Context, actor Actor, courseID string, req *CreateLectureRequest) (lecture *models.Lecture, err error) {
	op := s.log.WithOperation(ctx, "create_lecture", actor.UserID)
	defer func() { op.LogResult(courseID, "course", err) }()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.LectureTitle)
	if title == "" {
		return nil, NewFieldError("lectureTitle", "lecture title is required", req.LectureTitle)
	}

	if err = s.authorizeCourse(ctx, actor, courseID, "add lecture to"); err != nil {
		return nil, err
	}

	lecture = &models.Lecture{Title: title}
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Lecture().Create(ctx, tx, lecture); err != nil {
			return fmt.Errorf("failed to create lecture: %w", err)
		}
		if err := s.repo.Course().AppendLecture(ctx, tx, courseID, lecture.ID); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrCourseNotFound
			}
			return fmt.Errorf("failed to attach lecture: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lecture, nil
}

func (s *lectureService) Update(ctx context.Context, actor Actor, courseID, lectureID string, req *UpdateLectureRequest) (lecture *models.Lecture, err error) {
	op := s.log.WithOperation(ctx, "update_lecture", actor.UserID)
	defer func() { op.LogResult(lectureID, "lecture", err) }()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.LectureTitle != nil {
		title := strings.TrimSpace(*req.LectureTitle)
		if title == "" {
			return nil, NewFieldError("lectureTitle", "lecture title cannot be blank", *req.LectureTitle)
		}
		req.LectureTitle = &title
	}
	if err = s.authorizeCourse(ctx, actor, courseID, "edit lecture in"); err != nil {
		return nil, err
	}

	linked, err := s.repo.Course().HasLecture(ctx, nil, courseID, lectureID)
	if err != nil {
		return nil, fmt.Errorf("failed to check lecture: %w", err)
	}
	if !linked {
		return nil, ErrLectureNotFound
	}

	current, err := s.GetByID(ctx, lectureID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.LectureTitle != nil {
		updates["title"] = *req.LectureTitle
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsPreviewFree != nil {
		updates["is_preview_free"] = *req.IsPreviewFree
	}
	replacedVideo := ""
	if req.VideoInfo != nil {
		updates["video_url"] = req.VideoInfo.VideoURL
		updates["video_media_id"] = req.VideoInfo.PublicID
		if current.VideoMediaID != "" && current.VideoMediaID != req.VideoInfo.PublicID {
			replacedVideo = current.VideoMediaID
		}
	}

	if err = s.repo.Lecture().Update(ctx, nil, lectureID, updates); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLectureNotFound
		}
		return nil, fmt.Errorf("failed to update lecture: %w", err)
	}

	deleteMedia(ctx, s.media, s.logger, replacedVideo)
	return s.GetByID(ctx, lectureID)
}

func (s *lectureService) GetByID(ctx context.Context, lectureID string) (*models.Lecture, error) {
	lecture, err := s.repo.Lecture().GetByID(ctx, nil, lectureID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLectureNotFound
		}
		return nil, fmt.Errorf("failed to get lecture: %w", err)
	}
	return lecture, nil
}

func (s *lectureService) ListByCourse(ctx context.Context, courseID string) ([]*models.Lecture, error) {
	exists, err := s.repo.Course().Exists(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check course: %w", err)
	}
	if !exists {
		return nil, ErrCourseNotFound
	}

	lectures, err := s.repo.Lecture().ListByCourse(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lectures: %w", err)
	}
	return lectures, nil
}

// Delete unlinks the lecture from every course and drops its progress flags
// before removing it. The stored video is deleted after commit.
func (s *lectureService) Delete(ctx context.Context, actor Actor, lectureID string) (err error) {
	op := s.log.WithOperation(ctx, "delete_lecture", actor.UserID)
	defer func() { op.LogResult(lectureID, "lecture", err) }()

	lecture, err := s.GetByID(ctx, lectureID)
	if err != nil {
		return err
	}

	owners, err := s.repo.Course().CourseIDsByLecture(ctx, nil, lectureID)
	if err != nil {
		return fmt.Errorf("failed to find owning courses: %w", err)
	}
	if !actor.IsAdmin() {
		if len(owners) == 0 {
			return NewPermissionError(actor.UserID, lectureID, "lecture", "delete", "lecture is not part of any course")
		}
		for _, id := range owners {
			if err = s.authorizeCourse(ctx, actor, id, "delete lecture from"); err != nil {
				return err
			}
		}
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Course().RemoveLectureEverywhere(ctx, tx, lectureID); err != nil {
			return fmt.Errorf("failed to unlink lecture: %w", err)
		}
		if err := s.repo.Progress().DeleteLectureFlags(ctx, tx, lectureID); err != nil {
			return fmt.Errorf("failed to delete lecture progress: %w", err)
		}
		if err := s.repo.Lecture().Delete(ctx, tx, lectureID); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrLectureNotFound
			}
			return fmt.Errorf("failed to delete lecture: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	deleteMedia(ctx, s.media, s.logger, lecture.VideoMediaID)
	return nil
}

func (s *lectureService) UploadMedia(ctx context.Context, actor Actor, kind media.Kind, file media.File) (obj *media.Object, err error) {
	op := s.log.WithOperation(ctx, "upload_media", actor.UserID)
	defer func() {
		var id string
		if obj != nil {
			id = obj.ID
		}
		op.LogResult(id, "media", err)
	}()

	if !actor.Role.CanAuthor() {
		return nil, NewPermissionError(actor.UserID, "", "media", "upload", "only instructors can upload media")
	}
	if file.Body == nil || file.Size == 0 {
		return nil, NewFieldError("file", "file is required", file.Name)
	}

	obj, err = s.media.Upload(ctx, kind, file)
	if err != nil {
		return nil, NewUpstreamError("media", err)
	}
	return obj, nil
}

// authorizeCourse loads the course and checks the actor may modify it.
func (s *lectureService) authorizeCourse(ctx context.Context, actor Actor, courseID, action string) error {
	course, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("failed to get course: %w", err)
	}
	if !canManageCourse(actor, course.CreatorID) {
		return NewPermissionError(actor.UserID, courseID, "course", action, "not the course creator")
	}
	return nil
}
