package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/config"
	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/payment"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type purchaseService struct {
	repo      repositories.Repository
	gateway   payment.Gateway
	publisher events.EventPublisher
	logger    *slog.Logger
	log       *ServiceLogger
	settings  PurchaseSettings
}

func NewPurchaseService(deps Dependencies) PurchaseService {
	return &purchaseService{
		repo:      deps.Repo,
		gateway:   deps.Gateway,
		publisher: deps.Publisher,
		logger:    deps.Logger,
		log:       NewServiceLogger(deps.Logger, LogConfig{Service: "purchase", Component: "enrollment"}),
		settings:  deps.Purchase,
	}
}

// ===== CHECKOUT =====

// Checkout starts a purchase. A caller who already owns the course is sent
// straight to its progress page and nothing is recorded.
func (s *purchaseService) Checkout(ctx context.Context, actor Actor, courseID string) (result *CheckoutResult, err error) {
	op := s.log.WithOperation(ctx, "checkout", actor.UserID)
	defer func() { op.LogResult(courseID, "course", err) }()

	course, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	owned, err := s.repo.Purchase().HasCompleted(ctx, nil, actor.UserID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check purchase: %w", err)
	}
	if owned {
		return &CheckoutResult{URL: s.progressURL(courseID), AlreadyPurchased: true}, nil
	}

	if course.Price <= 0 {
		return nil, ErrCourseNotForSale
	}

	if s.settings.Mode == config.PaymentModeDirect {
		return s.completeDirect(ctx, actor, course)
	}
	return s.startGatewayCheckout(ctx, actor, course)
}

func (s *purchaseService) startGatewayCheckout(ctx context.Context, actor Actor, course *models.Course) (*CheckoutResult, error) {
	if s.gateway == nil {
		return nil, NewUpstreamError("payment", ErrPaymentNotEnabled)
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		UserID:      actor.UserID,
		CourseID:    course.ID,
		CourseTitle: course.Title,
		ImageURL:    course.ThumbnailURL,
		Amount:      course.Price,
		Currency:    s.settings.Currency,
		SuccessURL:  s.progressURL(course.ID),
		CancelURL:   fmt.Sprintf("%s/course-detail/%s", s.settings.FrontendURL, course.ID),
	})
	if err != nil {
		return nil, NewUpstreamError("payment", err)
	}

	purchase := &models.Purchase{
		UserID:    actor.UserID,
		CourseID:  course.ID,
		Amount:    course.Price,
		Currency:  s.settings.Currency,
		Status:    models.PurchasePending,
		PaymentID: session.ID,
	}
	if err := s.repo.Purchase().Create(ctx, nil, purchase); err != nil {
		s.logger.Error("Checkout session created but purchase not recorded",
			"session_id", session.ID,
			"user_id", actor.UserID,
			"course_id", course.ID,
			"error", err)
		return nil, fmt.Errorf("failed to record purchase: %w", err)
	}

	return &CheckoutResult{URL: session.URL, PurchaseID: purchase.ID, Status: purchase.Status}, nil
}

// completeDirect records and completes a purchase without a payment gateway.
// Fulfilment is the same as for a gateway webhook, so the course's lectures
// also become preview-free. Ownership is checked again inside the transaction
// so a repeated request does not record a second completed purchase.
func (s *purchaseService) completeDirect(ctx context.Context, actor Actor, course *models.Course) (*CheckoutResult, error) {
	purchase := &models.Purchase{
		UserID:    actor.UserID,
		CourseID:  course.ID,
		Amount:    course.Price,
		Currency:  s.settings.Currency,
		Status:    models.PurchasePending,
		PaymentID: "direct_" + uuid.NewString(),
	}

	var transitioned, owned bool
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		owned, err = s.repo.Purchase().HasCompleted(ctx, tx, actor.UserID, course.ID)
		if err != nil {
			return fmt.Errorf("failed to check purchase: %w", err)
		}
		if owned {
			return nil
		}
		if err := s.repo.Purchase().Create(ctx, tx, purchase); err != nil {
			return fmt.Errorf("failed to record purchase: %w", err)
		}
		transitioned, err = s.fulfil(ctx, tx, purchase, purchase.Amount, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	if owned {
		return &CheckoutResult{URL: s.progressURL(course.ID), AlreadyPurchased: true}, nil
	}

	if transitioned {
		s.publishEnrollment(ctx, purchase)
	}
	return &CheckoutResult{URL: s.progressURL(course.ID), PurchaseID: purchase.ID, Status: purchase.Status}, nil
}

// ===== WEBHOOK =====

// HandleWebhook applies a verified gateway notification. Completion, preview
// unlocking and enrollment commit together; redelivery leaves state as is.
func (s *purchaseService) HandleWebhook(ctx context.Context, payload []byte, signature string) (result *WebhookResult, err error) {
	op := s.log.WithOperation(ctx, "payment_webhook", "")
	defer func() {
		var id string
		if result != nil {
			id = result.PurchaseID
		}
		op.LogResult(id, "purchase", err)
	}()

	if s.gateway == nil {
		return nil, NewUpstreamError("payment", ErrPaymentNotEnabled)
	}

	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			s.log.LogSecurityEvent(ctx, "webhook signature rejected", "error", err)
			return nil, ErrInvalidSignature
		}
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	if event.Type != payment.EventCheckoutCompleted {
		return &WebhookResult{Handled: false, EventType: event.Type}, nil
	}

	var (
		purchase     *models.Purchase
		transitioned bool
	)
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		purchase, err = s.repo.Purchase().GetByPaymentIDForUpdate(ctx, tx, event.SessionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrPurchaseNotFound
			}
			return fmt.Errorf("failed to get purchase: %w", err)
		}

		amount := purchase.Amount
		if event.AmountTotal > 0 {
			amount = payment.FromMinorUnits(event.AmountTotal)
		}
		transitioned, err = s.fulfil(ctx, tx, purchase, amount, datatypes.JSON(event.Object))
		return err
	})
	if err != nil {
		return nil, err
	}

	if transitioned {
		s.publishEnrollment(ctx, purchase)
	}
	return &WebhookResult{Handled: true, EventType: event.Type, PurchaseID: purchase.ID}, nil
}

// fulfil completes the purchase if needed, unlocks the course's lectures and
// enrolls the buyer. It must run inside a transaction.
func (s *purchaseService) fulfil(ctx context.Context, tx *gorm.DB, purchase *models.Purchase, amount float64, payload datatypes.JSON) (bool, error) {
	transitioned := false
	if !purchase.IsCompleted() {
		now := time.Now().UTC()
		if err := s.repo.Purchase().MarkCompleted(ctx, tx, purchase.ID, amount, payload, now); err != nil {
			return false, fmt.Errorf("failed to complete purchase: %w", err)
		}
		purchase.Status = models.PurchaseCompleted
		purchase.Amount = amount
		purchase.CompletedAt = &now
		transitioned = true
	}

	if err := s.repo.Lecture().MarkPreviewFreeByCourse(ctx, tx, purchase.CourseID); err != nil {
		return false, fmt.Errorf("failed to unlock lectures: %w", err)
	}
	if _, err := s.repo.Enrollment().Enroll(ctx, tx, purchase.UserID, purchase.CourseID); err != nil {
		return false, fmt.Errorf("failed to enroll user: %w", err)
	}
	return transitioned, nil
}

func (s *purchaseService) publishEnrollment(ctx context.Context, purchase *models.Purchase) {
	completedAt := time.Now().UTC()
	if purchase.CompletedAt != nil {
		completedAt = *purchase.CompletedAt
	}
	publishEvent(ctx, s.publisher, s.logger, events.NewEnrollmentCompletedEvent(events.EnrollmentCompletedEvent{
		PurchaseID:  purchase.ID,
		UserID:      purchase.UserID,
		CourseID:    purchase.CourseID,
		Amount:      purchase.Amount,
		Currency:    purchase.Currency,
		CompletedAt: completedAt,
	}))
}

// ===== QUERIES =====

func (s *purchaseService) GetCourseDetailWithStatus(ctx context.Context, actor Actor, courseID string) (*CourseDetailResponse, error) {
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

	purchased, err := s.repo.Purchase().HasCompleted(ctx, nil, actor.UserID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check purchase: %w", err)
	}

	return &CourseDetailResponse{Course: course, Lectures: lectures, Purchased: purchased}, nil
}

// ListCompleted returns every completed purchase to admins and purchases of
// their own courses to instructors.
func (s *purchaseService) ListCompleted(ctx context.Context, actor Actor) ([]*models.Purchase, error) {
	filters := repositories.PurchaseFilters{}
	switch {
	case actor.IsAdmin():
	case actor.Role == models.RoleInstructor:
		filters.CreatorID = &actor.UserID
	default:
		return nil, NewPermissionError(actor.UserID, "", "purchase", "list", "students cannot list sales")
	}

	purchases, err := s.repo.Purchase().ListCompleted(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	return purchases, nil
}

func (s *purchaseService) progressURL(courseID string) string {
	return fmt.Sprintf("%s/course-progress/%s", s.settings.FrontendURL, courseID)
}
