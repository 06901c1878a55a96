package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/media"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/validator"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type userService struct {
	repo      repositories.Repository
	media     media.Store
	cache     cache.CacheService
	tokens    TokenIssuer
	logger    *slog.Logger
	validator *validator.Validator
	log       *ServiceLogger
}

func NewUserService(deps Dependencies) UserService {
	return &userService{
		repo:      deps.Repo,
		media:     deps.Media,
		cache:     deps.Cache,
		tokens:    deps.Tokens,
		logger:    deps.Logger,
		validator: deps.Validator,
		log:       NewServiceLogger(deps.Logger, LogConfig{Service: "user", Component: "directory"}),
	}
}

func (s *userService) Register(ctx context.Context, req *RegisterRequest) (user *models.User, err error) {
	op := s.log.WithOperation(ctx, "register", "")
	defer func() { op.LogResult(userID(user), "user", err) }()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.repo.User().ExistsByEmail(ctx, nil, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = models.RoleStudent
	}

	user = &models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Password: string(hash),
		Role:     role,
	}
	if err = s.repo.User().Create(ctx, nil, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (s *userService) Login(ctx context.Context, req *LoginRequest) (result *LoginResult, err error) {
	op := s.log.WithOperation(ctx, "login", "")
	defer func() {
		var id string
		if result != nil {
			id = result.User.ID
		}
		op.LogResult(id, "user", err)
	}()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	return &LoginResult{User: user, Token: token}, nil
}

func (s *userService) GetProfile(ctx context.Context, actor Actor) (*ProfileResponse, error) {
	user, err := s.repo.User().GetByID(ctx, nil, actor.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	courses, err := s.repo.Course().ListByIDs(ctx, nil, user.EnrolledCourseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get enrolled courses: %w", err)
	}

	return &ProfileResponse{User: user, EnrolledCourses: courses}, nil
}

// UpdateProfile stores the new photo before touching the record, so a failed
// upload leaves the profile unchanged.
func (s *userService) UpdateProfile(ctx context.Context, actor Actor, req *UpdateProfileRequest) (user *models.User, err error) {
	op := s.log.WithOperation(ctx, "update_profile", actor.UserID)
	defer func() { op.LogResult(actor.UserID, "user", err) }()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}

	current, err := s.repo.User().GetByID(ctx, nil, actor.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, NewFieldError("name", "name cannot be blank", *req.Name)
		}
		updates["name"] = name
	}

	var uploaded *media.Object
	if req.Photo != nil {
		uploaded, err = s.media.Upload(ctx, media.KindImage, *req.Photo)
		if err != nil {
			return nil, NewUpstreamError("media", err)
		}
		updates["photo_url"] = uploaded.URL
		updates["photo_media_id"] = uploaded.ID
	}

	if len(updates) > 0 {
		if err = s.repo.User().Update(ctx, nil, actor.UserID, updates); err != nil {
			if uploaded != nil {
				deleteMedia(ctx, s.media, s.logger, uploaded.ID)
			}
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}

	if uploaded != nil {
		deleteMedia(ctx, s.media, s.logger, current.PhotoMediaID)
	}
	// Catalog listings embed the creator's name and photo.
	if current.Role.CanAuthor() && len(updates) > 0 {
		invalidateCatalog(ctx, s.cache, s.logger)
	}

	return s.repo.User().GetByID(ctx, nil, actor.UserID)
}

func userID(user *models.User) string {
	if user == nil {
		return ""
	}
	return user.ID
}
