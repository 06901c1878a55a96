package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const (
	maxWebhookBodyBytes = int64(65536)
	xlsxContentType     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type CheckoutRequest struct {
	CourseID string `json:"course_id" binding:"required"`
}

type PurchaseHandler struct {
	BaseHandler
	purchaseService services.PurchaseService
	reportService   services.ReportService
}

func NewPurchaseHandler(
	purchaseService services.PurchaseService,
	reportService services.ReportService,
	logger utils.Logger,
) *PurchaseHandler {
	return &PurchaseHandler{
		BaseHandler:     NewBaseHandler(logger),
		purchaseService: purchaseService,
		reportService:   reportService,
	}
}

// Checkout starts a purchase for the caller
// @Summary Checkout course
// @Tags purchases
// @Accept json
// @Produce json
// @Param request body CheckoutRequest true "Course to buy"
// @Success 200 {object} SuccessResponse{data=services.CheckoutResult}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /purchase/checkout [post]
func (h *PurchaseHandler) Checkout(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	result, err := h.purchaseService.Checkout(c.Request.Context(), actor, req.CourseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	message := "Checkout session created"
	if result.AlreadyPurchased {
		message = "Course already purchased"
	}
	h.RespondWithSuccess(c, http.StatusOK, message, result)
}

// Webhook receives gateway events. The signature is checked against the raw
// body before anything is parsed.
func (h *PurchaseHandler) Webhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes)
	payload, err := c.GetRawData()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Unable to read webhook body", err.Error())
		return
	}

	result, err := h.purchaseService.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if !result.Handled {
		h.RespondWithSuccess(c, http.StatusOK, "Event received but not handled", result)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Webhook processed", result)
}

func (h *PurchaseHandler) GetCourseDetailWithStatus(c *gin.Context) {
	courseID := ParseStringIDParam(c, "courseId")
	if courseID == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	detail, err := h.purchaseService.GetCourseDetailWithStatus(c.Request.Context(), actor, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Course detail retrieved", detail)
}

func (h *PurchaseHandler) ListPurchasedCourses(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	purchases, err := h.purchaseService.ListCompleted(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Purchased courses retrieved", purchases)
}

// ExportPurchases streams the completed purchases visible to the caller as xlsx
func (h *PurchaseHandler) ExportPurchases(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	data, err := h.reportService.ExportPurchases(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("purchases-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
