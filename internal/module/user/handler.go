package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/readmanga/server/internal/module/auth"
	apperrors "github.com/readmanga/server/internal/shared/errors"
	"github.com/readmanga/server/internal/shared/validation"
)

const invalidDataMessage = "invalid data"

// Handler handles HTTP requests for accounts.
type Handler struct {
	service *Service
}

// NewHandler creates a new user handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the account routes. requireAuth guards the
// routes that act on the current user.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	group := r.Group("/auth")
	{
		group.POST("/register", h.Register)
		group.POST("/login", h.Login)

		group.GET("/me", requireAuth, h.GetCurrentUser)
		group.PUT("/profile", requireAuth, h.UpdateProfile)
		group.POST("/verify-token", requireAuth, h.VerifyToken)
	}
}

// Register handles account registration.
//
//	@Summary		Register
//	@Description	Create an account and receive an access token
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RegisterRequest	true	"Registration request"
//	@Success		201		{object}	AuthResponse
//	@Failure		400		{object}	validation.ErrorResponse
//	@Router			/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validation.AbortWithError(c, invalidDataMessage, err)
		return
	}

	session, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		Message:   "registration successful",
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      session.User.ToResponse(),
	})
}

// Login handles email/password login.
//
//	@Summary		Login
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Login request"
//	@Success		200		{object}	AuthResponse
//	@Failure		400		{object}	validation.ErrorResponse
//	@Failure		401		{object}	apperrors.AppError
//	@Router			/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validation.AbortWithError(c, invalidDataMessage, err)
		return
	}

	session, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Message:   "login successful",
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      session.User.ToResponse(),
	})
}

// GetCurrentUser returns the signed-in user.
//
//	@Summary		Current user
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	ProfileResponse
//	@Failure		401	{object}	apperrors.AppError
//	@Router			/auth/me [get]
func (h *Handler) GetCurrentUser(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{User: user.ToResponse()})
}

// UpdateProfile updates the signed-in user's profile.
//
//	@Summary		Update profile
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		UpdateProfileRequest	true	"Profile changes"
//	@Success		200		{object}	ProfileResponse
//	@Failure		400		{object}	validation.ErrorResponse
//	@Failure		401		{object}	apperrors.AppError
//	@Router			/auth/profile [put]
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validation.AbortWithError(c, invalidDataMessage, err)
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), auth.GetUserID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{Message: "profile updated", User: user.ToResponse()})
}

// VerifyToken confirms the bearer token is valid.
//
//	@Summary		Verify token
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	VerifyTokenResponse
//	@Failure		401	{object}	apperrors.AppError
//	@Router			/auth/verify-token [post]
func (h *Handler) VerifyToken(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, VerifyTokenResponse{Valid: true, User: user.ToResponse()})
}

func handleError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, ErrEmailAlreadyExists):
		appErr = apperrors.BadRequest("email already in use")
	case errors.Is(err, ErrUsernameTaken):
		appErr = apperrors.BadRequest("username already taken")
	case errors.Is(err, ErrInvalidCredentials):
		appErr = apperrors.Unauthorized("incorrect email or password")
	case errors.Is(err, ErrAccountDisabled):
		appErr = apperrors.Unauthorized("account disabled")
	case errors.Is(err, ErrUserNotFound):
		appErr = apperrors.Unauthorized("user not found")
	default:
		_ = c.Error(err)
		appErr = apperrors.Internal("", err)
	}
	c.JSON(appErr.StatusCode, appErr)
}
