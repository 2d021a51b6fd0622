package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/smartbites/backend/internal/apperrors"
	"github.com/smartbites/backend/internal/middleware"
	"github.com/smartbites/backend/internal/service"
	"github.com/smartbites/backend/internal/types"
)

type ProfileHandler struct {
	profileService service.IProfileService
	authService    service.IAuthService
}

func NewProfileHandler(profileService service.IProfileService, authService service.IAuthService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		authService:    authService,
	}
}

func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	profile := router.Group("/profile")
	profile.Use(middleware.AuthMiddleware(h.authService))
	{
		profile.GET("", h.GetProfile)
		profile.PUT("", h.UpdateProfile)
		profile.POST("/password", h.ChangePassword)
	}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	profile, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		apperrors.Respond(c, profileError(err))
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req types.UpdateProfileRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		apperrors.Respond(c, bindError(err))
		return
	}
	// "budget": null clears the budget, an absent key leaves it alone
	var raw map[string]json.RawMessage
	if err := c.ShouldBindBodyWith(&raw, binding.JSON); err == nil {
		if v, ok := raw["budget"]; ok && bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			req.ClearBudget = true
		}
	}

	profile, err := h.profileService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		apperrors.Respond(c, profileError(err))
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req types.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, bindError(err))
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordMismatch):
			apperrors.Respond(c, apperrors.BadRequest("Passwords don't match"))
		case errors.Is(err, service.ErrIncorrectPassword):
			apperrors.Respond(c, apperrors.BadRequest("Old password is incorrect"))
		default:
			apperrors.Respond(c, profileError(err))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

func profileError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return apperrors.NotFound("User not found")
	case errors.Is(err, service.ErrEmailTaken):
		return apperrors.BadRequest("Email already in use")
	case errors.Is(err, service.ErrInvalidDiet):
		return apperrors.BadRequest("Invalid dietary preference")
	default:
		return apperrors.Internal(err)
	}
}
