package handlers

import (
	"net/http"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/auth"
	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// SessionCookie controls how the session token is written back to browsers.
type SessionCookie struct {
	Secure bool
	TTL    time.Duration
}

type UserHandler struct {
	BaseHandler
	userService services.UserService
	cookie      SessionCookie
}

func NewUserHandler(userService services.UserService, cookie SessionCookie, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
		cookie:      cookie,
	}
}

// Register creates a new account
// @Summary Register user
// @Tags users
// @Accept json
// @Produce json
// @Param user body services.RegisterRequest true "Account data"
// @Success 201 {object} SuccessResponse{data=models.User}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /user/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	user, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Account created successfully", user)
}

// Login verifies credentials and sets the session cookie
// @Summary Login
// @Tags users
// @Accept json
// @Produce json
// @Param credentials body services.LoginRequest true "Credentials"
// @Success 200 {object} SuccessResponse{data=models.User}
// @Failure 401 {object} ErrorResponse
// @Router /user/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	result, err := h.userService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.setSessionCookie(c, result.Token, int(h.cookie.TTL.Seconds()))
	h.RespondWithSuccess(c, http.StatusOK, "Welcome back "+result.User.Name, result.User)
}

func (h *UserHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	h.RespondWithSuccess(c, http.StatusOK, "Logged out successfully", nil)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Profile retrieved", profile)
}

// UpdateProfile accepts multipart form data with an optional profilePhoto
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	photo, closer, err := formFile(c, "profilePhoto")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid profile photo", err.Error())
		return
	}
	if closer != nil {
		defer closer.Close()
	}

	req := services.UpdateProfileRequest{
		Name:  optionalForm(c, "name"),
		Photo: photo,
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Profile updated successfully", user)
}

func (h *UserHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	if h.cookie.Secure {
		c.SetSameSite(http.SameSiteNoneMode)
	}
	c.SetCookie(auth.CookieName, token, maxAge, "/", "", h.cookie.Secure, true)
}
