package handlers

import (
	"github.com/SAP-F-2025/learning-service/internal/auth"
	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	AllowedOrigins []string
	Cookie         SessionCookie
}

type HandlerManager struct {
	userHandler     *UserHandler
	courseHandler   *CourseHandler
	lectureHandler  *LectureHandler
	purchaseHandler *PurchaseHandler
	progressHandler *ProgressHandler

	tokens *auth.TokenManager
	logger utils.Logger
	config RouterConfig
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	tokens *auth.TokenManager,
	config RouterConfig,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		userHandler:     NewUserHandler(serviceManager.User(), config.Cookie, logger),
		courseHandler:   NewCourseHandler(serviceManager.Course(), logger),
		lectureHandler:  NewLectureHandler(serviceManager.Lecture(), logger),
		purchaseHandler: NewPurchaseHandler(serviceManager.Purchase(), serviceManager.Report(), logger),
		progressHandler: NewProgressHandler(serviceManager.Progress(), logger),
		tokens:          tokens,
		logger:          logger,
		config:          config,
	}
}

// SetupRoutes sets up middleware and all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.Use(utils.RequestID())
	router.Use(utils.LoggerMiddleware(hm.logger))
	router.Use(gin.Recovery())
	if len(hm.config.AllowedOrigins) > 0 {
		router.Use(CORSMiddleware(hm.config.AllowedOrigins))
	}

	authRequired := AuthMiddleware(hm.tokens, hm.logger)

	v1 := router.Group("/api/v1")
	{
		// User routes
		users := v1.Group("/user")
		{
			users.POST("/register", hm.userHandler.Register)
			users.POST("/login", hm.userHandler.Login)
			users.GET("/logout", hm.userHandler.Logout)
			users.GET("/profile", authRequired, hm.userHandler.GetProfile)
			users.PUT("/profile", authRequired, hm.userHandler.UpdateProfile)
		}

		// Course routes
		courses := v1.Group("/courses")
		{
			courses.GET("/published", hm.courseHandler.ListPublishedCourses)

			courses.POST("", authRequired, hm.courseHandler.CreateCourse)
			courses.GET("", authRequired, hm.courseHandler.ListMyCourses)
			courses.GET("/:id", authRequired, hm.courseHandler.GetCourse)
			courses.PUT("/:id", authRequired, hm.courseHandler.UpdateCourse)
			courses.PATCH("/:id", authRequired, hm.courseHandler.TogglePublish)
			courses.DELETE("/:id", authRequired, hm.courseHandler.DeleteCourse)

			// Lectures scoped to a course
			courses.POST("/:id/lectures", authRequired, hm.lectureHandler.CreateLecture)
			courses.GET("/:id/lectures", authRequired, hm.lectureHandler.ListCourseLectures)
			courses.PUT("/:id/lectures/:lid", authRequired, hm.lectureHandler.UpdateLecture)
		}

		lectures := v1.Group("/lectures", authRequired)
		{
			lectures.GET("/:lid", hm.lectureHandler.GetLecture)
			lectures.DELETE("/:lid", hm.lectureHandler.DeleteLecture)
		}

		v1.POST("/media/upload", authRequired, hm.lectureHandler.UploadMedia)

		// Progress routes
		progress := v1.Group("/progress", authRequired)
		{
			progress.GET("/:courseId", hm.progressHandler.GetCourseProgress)
			progress.POST("/:courseId/lectures/:lectureId", hm.progressHandler.UpdateLectureProgress)
			progress.POST("/:courseId/complete", hm.progressHandler.MarkAsCompleted)
			progress.POST("/:courseId/incomplete", hm.progressHandler.MarkAsInCompleted)
		}

		// Purchase routes; the webhook authenticates by signature
		purchases := v1.Group("/purchase")
		{
			purchases.POST("/webhook", hm.purchaseHandler.Webhook)

			purchases.POST("/checkout", authRequired, hm.purchaseHandler.Checkout)
			purchases.GET("/course/:courseId/status", authRequired, hm.purchaseHandler.GetCourseDetailWithStatus)
			purchases.GET("", authRequired, hm.purchaseHandler.ListPurchasedCourses)
			purchases.GET("/export", authRequired, hm.purchaseHandler.ExportPurchases)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "learning-service",
		})
	})
}
