package handlers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	BaseHandler
	courseService services.CourseService
}

func NewCourseHandler(courseService services.CourseService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   NewBaseHandler(logger),
		courseService: courseService,
	}
}

// CreateCourse creates a new course owned by the caller
// @Summary Create course
// @Tags courses
// @Accept json
// @Produce json
// @Param course body services.CreateCourseRequest true "Course data"
// @Success 201 {object} SuccessResponse{data=models.Course}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req services.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Course created", course)
}

// ListMyCourses returns the courses created by the caller
func (h *CourseHandler) ListMyCourses(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	courses, err := h.courseService.ListMine(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Courses retrieved", courses)
}

func (h *CourseHandler) ListPublishedCourses(c *gin.Context) {
	courses, err := h.courseService.ListPublished(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Published courses retrieved", courses)
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	courseID := ParseStringIDParam(c, "id")
	if courseID == "" {
		return
	}

	course, err := h.courseService.GetByID(c.Request.Context(), courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Course retrieved", course)
}

// UpdateCourse applies a partial multipart edit with an optional courseThumbnail
// @Summary Update course
// @Tags courses
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} SuccessResponse{data=models.Course}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /courses/{id} [put]
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	courseID := ParseStringIDParam(c, "id")
	if courseID == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	req := services.UpdateCourseRequest{
		CourseTitle: optionalForm(c, "courseTitle"),
		SubTitle:    optionalForm(c, "subTitle"),
		Description: optionalForm(c, "description"),
		Category:    optionalForm(c, "category"),
		CourseLevel: optionalForm(c, "courseLevel"),
	}
	if raw := optionalForm(c, "coursePrice"); raw != nil && *raw != "" {
		price, err := strconv.ParseFloat(*raw, 64)
		if err != nil {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid coursePrice", err.Error())
			return
		}
		if math.IsInf(price, 0) || math.IsNaN(price) {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid coursePrice", "price must be a finite number")
			return
		}
		req.CoursePrice = &price
	}

	thumbnail, closer, err := formFile(c, "courseThumbnail")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid course thumbnail", err.Error())
		return
	}
	if closer != nil {
		defer closer.Close()
	}
	req.Thumbnail = thumbnail

	course, err := h.courseService.Update(c.Request.Context(), actor, courseID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Course updated successfully", course)
}

// TogglePublish sets the publish state from the publish query parameter.
// A missing or non-boolean value is rejected without touching the course.
func (h *CourseHandler) TogglePublish(c *gin.Context) {
	courseID := ParseStringIDParam(c, "id")
	if courseID == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Changing course publish state", "course_id", courseID, "publish", c.Query("publish"))

	course, err := h.courseService.SetPublished(c.Request.Context(), actor, courseID, c.Query("publish"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	message := "Course is unpublished"
	if course.IsPublished {
		message = "Course is published"
	}
	h.RespondWithSuccess(c, http.StatusOK, message, course)
}

func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	courseID := ParseStringIDParam(c, "id")
	if courseID == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting course", "course_id", courseID)

	if err := h.courseService.Delete(c.Request.Context(), actor, courseID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Course deleted successfully", nil)
}
