package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

const reconcileBatchSize = 200

// EnrollmentReconciler restores enrollments for completed purchases that
// lack one, e.g. after a partial failure or a manual data fix.
type EnrollmentReconciler struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewEnrollmentReconciler(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger) *EnrollmentReconciler {
	return &EnrollmentReconciler{
		repo:      repo,
		publisher: publisher,
		logger:    logger.With("component", "enrollment_reconciler"),
	}
}

// ReconcileOnce repairs one batch and returns how many enrollments it added.
func (r *EnrollmentReconciler) ReconcileOnce(ctx context.Context) (int, error) {
	purchases, err := r.repo.Purchase().ListCompletedWithoutEnrollment(ctx, nil, reconcileBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to find unenrolled purchases: %w", err)
	}

	repaired := 0
	for _, p := range purchases {
		created, err := r.repo.Enrollment().Enroll(ctx, nil, p.UserID, p.CourseID)
		if err != nil {
			r.logger.Warn("Failed to restore enrollment",
				"purchase_id", p.ID,
				"user_id", p.UserID,
				"course_id", p.CourseID,
				"error", err)
			continue
		}
		if !created {
			continue
		}

		repaired++
		r.logger.Warn("Restored missing enrollment",
			"purchase_id", p.ID,
			"user_id", p.UserID,
			"course_id", p.CourseID)

		completedAt := p.UpdatedAt
		if p.CompletedAt != nil {
			completedAt = *p.CompletedAt
		}
		publishEvent(ctx, r.publisher, r.logger, events.NewEnrollmentCompletedEvent(events.EnrollmentCompletedEvent{
			PurchaseID:  p.ID,
			UserID:      p.UserID,
			CourseID:    p.CourseID,
			Amount:      p.Amount,
			Currency:    p.Currency,
			CompletedAt: completedAt,
			Reconciled:  true,
		}))
	}
	return repaired, nil
}

// Run reconciles immediately and then on every tick until ctx is cancelled.
func (r *EnrollmentReconciler) Run(ctx context.Context, interval time.Duration) {
	r.runOnce(ctx)
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Reconciler stopped")
			return
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *EnrollmentReconciler) runOnce(ctx context.Context) {
	repaired, err := r.ReconcileOnce(ctx)
	if err != nil {
		r.logger.Error("Reconciliation failed", "error", err)
		return
	}
	if repaired > 0 {
		r.logger.Info("Reconciliation finished", "repaired", repaired)
	}
}
