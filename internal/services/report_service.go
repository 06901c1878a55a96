package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/xuri/excelize/v2"
)

const purchaseSheet = "Purchases"

var purchaseHeaders = []string{
	"Purchase ID", "Course ID", "Course", "Student", "Email",
	"Amount", "Currency", "Payment ID", "Completed At",
}

type reportService struct {
	purchases PurchaseService
	logger    *slog.Logger
}

func NewReportService(purchases PurchaseService, logger *slog.Logger) ReportService {
	return &reportService{
		purchases: purchases,
		logger:    logger,
	}
}

// ExportPurchases uses the same visibility rules as listing purchases.
func (s *reportService) ExportPurchases(ctx context.Context, actor Actor) ([]byte, error) {
	purchases, err := s.purchases.ListCompleted(ctx, actor)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", purchaseSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	if err := f.SetSheetRow(purchaseSheet, "A1", &purchaseHeaders); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}

	for i, purchase := range purchases {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := purchaseRow(purchase)
		if err := f.SetSheetRow(purchaseSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exported purchases", "user_id", actor.UserID, "rows", len(purchases))
	return buf.Bytes(), nil
}

func purchaseRow(p *models.Purchase) []interface{} {
	var courseTitle, studentName, studentEmail, completedAt string
	if p.Course != nil {
		courseTitle = p.Course.Title
	}
	if p.User != nil {
		studentName = p.User.Name
		studentEmail = p.User.Email
	}
	if p.CompletedAt != nil {
		completedAt = p.CompletedAt.UTC().Format(time.RFC3339)
	}

	return []interface{}{
		p.ID, p.CourseID, courseTitle, studentName, studentEmail,
		p.Amount, p.Currency, p.PaymentID, completedAt,
	}
}
