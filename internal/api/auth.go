package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smartbites/backend/internal/apperrors"
	"github.com/smartbites/backend/internal/middleware"
	"github.com/smartbites/backend/internal/service"
	"github.com/smartbites/backend/internal/types"
)

type AuthHandler struct {
	authService service.IAuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService service.IAuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger.Named("auth_handler"),
	}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", middleware.AuthMiddleware(h.authService), h.Logout)
		auth.GET("/me", middleware.AuthMiddleware(h.authService), h.Me)
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, bindError(err))
		return
	}

	if _, err := h.authService.Register(c.Request.Context(), &req); err != nil {
		if errors.Is(err, service.ErrUserExists) {
			apperrors.Respond(c, apperrors.BadRequest("Email already registered"))
			return
		}
		apperrors.Respond(c, apperrors.Internal(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, bindError(err))
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apperrors.Respond(c, apperrors.BadRequest("Invalid credentials"))
			return
		}
		apperrors.Respond(c, apperrors.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	claims, _ := middleware.Claims(c)
	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		apperrors.Respond(c, apperrors.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome, authorized user!",
		"user_id": userID,
	})
}
