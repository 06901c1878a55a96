package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ProgressHandler struct {
	BaseHandler
	progressService services.ProgressService
}

func NewProgressHandler(progressService services.ProgressService, logger utils.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler:     NewBaseHandler(logger),
		progressService: progressService,
	}
}

// GetCourseProgress returns the course, its lectures and the caller's flags
// @Summary Get course progress
// @Tags progress
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} SuccessResponse{data=services.ProgressResponse}
// @Failure 404 {object} ErrorResponse
// @Router /progress/{courseId} [get]
func (h *ProgressHandler) GetCourseProgress(c *gin.Context) {
	courseID := ParseStringIDParam(c, "courseId")
	if courseID == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	progress, err := h.progressService.GetCourseProgress(c.Request.Context(), actor, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Course progress retrieved", progress)
}

func (h *ProgressHandler) UpdateLectureProgress(c *gin.Context) {
	courseID := ParseStringIDParam(c, "courseId")
	if courseID == "" {
		return
	}
	lectureID := ParseStringIDParam(c, "lectureId")
	if lectureID == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	progress, err := h.progressService.UpdateLectureProgress(c.Request.Context(), actor, courseID, lectureID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Lecture progress updated successfully", progress)
}

func (h *ProgressHandler) MarkAsCompleted(c *gin.Context) {
	courseID := ParseStringIDParam(c, "courseId")
	if courseID == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	if err := h.progressService.MarkAsCompleted(c.Request.Context(), actor, courseID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Course marked as completed", nil)
}

// MarkAsInCompleted clears the completed flag and leaves lecture flags alone
func (h *ProgressHandler) MarkAsInCompleted(c *gin.Context) {
	courseID := ParseStringIDParam(c, "courseId")
	if courseID == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	if err := h.progressService.MarkAsInCompleted(c.Request.Context(), actor, courseID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Course marked as incomplete", nil)
}
