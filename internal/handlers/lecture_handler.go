package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/learning-service/internal/media"
	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type LectureHandler struct {
	BaseHandler
	lectureService services.LectureService
}

func NewLectureHandler(lectureService services.LectureService, logger utils.Logger) *LectureHandler {
	return &LectureHandler{
		BaseHandler:    NewBaseHandler(logger),
		lectureService: lectureService,
	}
}

// CreateLecture appends a lecture to the course
// @Summary Create lecture
// @Tags lectures
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param lecture body services.CreateLectureRequest true "Lecture data"
// @Success 201 {object} SuccessResponse{data=models.Lecture}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/lectures [post]
func (h *LectureHandler) CreateLecture(c *gin.Context) {
	courseID := ParseStringIDParam(c, "id")
	if courseID == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req services.CreateLectureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	lecture, err := h.lectureService.Create(c.Request.Context(), actor, courseID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Lecture created successfully", lecture)
}

func (h *LectureHandler) ListCourseLectures(c *gin.Context) {
	courseID := ParseStringIDParam(c, "id")
	if courseID == "" {
		return
	}

	lectures, err := h.lectureService.ListByCourse(c.Request.Context(), courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Lectures retrieved", lectures)
}

func (h *LectureHandler) UpdateLecture(c *gin.Context) {
	courseID := ParseStringIDParam(c, "id")
	if courseID == "" {
		return
	}
	lectureID := ParseStringIDParam(c, "lid")
	if lectureID == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req services.UpdateLectureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	lecture, err := h.lectureService.Update(c.Request.Context(), actor, courseID, lectureID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Lecture updated successfully", lecture)
}

func (h *LectureHandler) GetLecture(c *gin.Context) {
	lectureID := ParseStringIDParam(c, "lid")
	if lectureID == "" {
		return
	}

	lecture, err := h.lectureService.GetByID(c.Request.Context(), lectureID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Lecture retrieved", lecture)
}

// DeleteLecture removes the lecture from every course that lists it
func (h *LectureHandler) DeleteLecture(c *gin.Context) {
	lectureID := ParseStringIDParam(c, "lid")
	if lectureID == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting lecture", "lecture_id", lectureID)

	if err := h.lectureService.Delete(c.Request.Context(), actor, lectureID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Lecture removed successfully", nil)
}

// UploadMedia stores a lecture video (or an image when kind=images) and
// returns its url and media_id.
// @Summary Upload media
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Media file"
// @Success 201 {object} SuccessResponse{data=media.Object}
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /media/upload [post]
func (h *LectureHandler) UploadMedia(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	kind := media.KindVideo
	if c.PostForm("kind") == string(media.KindImage) {
		kind = media.KindImage
	}

	file, closer, err := formFile(c, "file")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid upload", err.Error())
		return
	}
	if file == nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid upload", "file is required")
		return
	}
	defer closer.Close()

	object, err := h.lectureService.UploadMedia(c.Request.Context(), actor, kind, *file)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "File uploaded successfully", object)
}
