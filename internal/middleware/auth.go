package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/smartbites/backend/internal/apperrors"
	"github.com/smartbites/backend/internal/service"
	"github.com/smartbites/backend/internal/types"
)

const (
	ContextUserID = "user_id"
	ContextClaims = "claims"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
}

// AuthMiddleware rejects requests without a valid token
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			apperrors.Respond(c, apperrors.Unauthorized("Authentication credentials were not provided"))
			return
		}
		if !authenticate(c, validator, header) {
			return
		}
		c.Next()
	}
}

// OptionalAuthMiddleware identifies the caller when a token is sent and lets
// anonymous requests through. A token that is sent but invalid is rejected.
func OptionalAuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		if !authenticate(c, validator, header) {
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, validator TokenValidator, header string) bool {
	token, ok := extractToken(header)
	if !ok {
		apperrors.Respond(c, apperrors.Unauthorized("Invalid authorization header format"))
		return false
	}

	claims, err := validator.ValidateToken(c.Request.Context(), token)
	if err != nil {
		msg := "Invalid token"
		if errors.Is(err, service.ErrTokenRevoked) {
			msg = "Token has been revoked"
		}
		apperrors.Respond(c, apperrors.Wrap(err, apperrors.CodeUnauthorized, msg))
		return false
	}

	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextClaims, claims)
	return true
}

// extractToken accepts "Bearer <token>" and the older "Token <token>"
func extractToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return "", false
	}
	switch strings.ToLower(parts[0]) {
	case "bearer", "token":
		return parts[1], true
	default:
		return "", false
	}
}

// UserID returns the authenticated user, if any
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// Claims returns the validated token claims, if any
func Claims(c *gin.Context) (*types.TokenClaims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*types.TokenClaims)
	return claims, ok
}
