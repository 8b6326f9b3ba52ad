package jwtmw

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"task_backend/internal/feature/users/domain/entity"
	"task_backend/internal/feature/users/usecase"
	"task_backend/internal/platform/http/response"
)

const (
	ContextUserID  = "userID"
	ContextUser    = "currentUser"
	ContextTokenID = "tokenID"

	bearerPrefix = "Bearer "
)

// TokenParser verifies a bearer token.
type TokenParser interface {
	ParseToken(token string) (*Claims, error)
}

// SessionValidator resolves the user of a token whose session is still active.
type SessionValidator interface {
	ValidateSession(ctx context.Context, userID, tokenID string) (*entity.User, error)
}

// AuthRequired returns a Gin middleware function that validates bearer tokens
// and restricts access to users with an active session.
// A rejected request is aborted before any handler runs. Unknown users and
// inactive sessions give 401; any other validation error gives 500.
func AuthRequired(parser TokenParser, validator SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get Authorization header
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, bearerPrefix) {
			reject(c, "missing bearer token", nil)
			return
		}
		tokenStr := strings.TrimPrefix(auth, bearerPrefix)

		// 2. Parse and verify signature, exp, sub and jti
		claims, err := parser.ParseToken(tokenStr)
		if err != nil {
			reject(c, "invalid token", err)
			return
		}

		// 3. The session must still be in the user's active set
		user, err := validator.ValidateSession(c.Request.Context(), claims.Subject, claims.ID)
		if err != nil {
			if errors.Is(err, usecase.ErrUserNotFound) || errors.Is(err, usecase.ErrSessionNotFound) {
				reject(c, "session rejected", err)
				return
			}
			// ストア障害は認証失敗ではない
			response.WriteError(c, fmt.Errorf("failed to validate session: %w", err))
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUser, user)
		c.Set(ContextTokenID, claims.ID)
		c.Next()
	}
}

func reject(c *gin.Context, reason string, err error) {
	cause := errors.New(reason)
	if err != nil {
		cause = fmt.Errorf("%s: %w", reason, err)
	}
	response.WriteError(c, response.NewError(http.StatusUnauthorized, "please authenticate", cause))
}

// CurrentUser returns the user stored by AuthRequired.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*entity.User)
	return user, ok && user != nil
}

// CurrentTokenID returns the jti of the token that authenticated the request.
func CurrentTokenID(c *gin.Context) string {
	return c.GetString(ContextTokenID)
}

// CurrentUserID returns the ID of the authenticated user, or "" when the request is anonymous.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
