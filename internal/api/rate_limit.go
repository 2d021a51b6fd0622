package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smartbites/backend/internal/apperrors"
	"github.com/smartbites/backend/internal/middleware"
	"github.com/smartbites/backend/internal/service"
)

// RateLimitHandler reports how much suggestion quota the caller has left
type RateLimitHandler struct {
	limiter     *middleware.RateLimiter
	authService service.IAuthService
}

// NewRateLimitHandler accepts a nil limiter when Redis is not configured
func NewRateLimitHandler(limiter *middleware.RateLimiter, authService service.IAuthService) *RateLimitHandler {
	return &RateLimitHandler{limiter: limiter, authService: authService}
}

func (h *RateLimitHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/rate-limits/suggestions", middleware.AuthMiddleware(h.authService), h.GetSuggestionLimit)
}

func (h *RateLimitHandler) GetSuggestionLimit(c *gin.Context) {
	if h.limiter == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false})
		return
	}

	userID, _ := middleware.UserID(c)
	remaining, resetTime, err := h.limiter.GetRemainingRequests(c.Request.Context(), userID.String())
	if err != nil {
		apperrors.Respond(c, apperrors.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"enabled":   true,
		"limit":     h.limiter.Limit(),
		"remaining": remaining,
		"reset":     resetTime.Unix(),
	})
}
