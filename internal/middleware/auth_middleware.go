package middleware

import (
	"context"
	"errors"
	"strings"

	autherrors "go-fleetpay/internal/auth/errors"
	"go-fleetpay/internal/auth/token"
	"go-fleetpay/internal/domain"
	"go-fleetpay/internal/shared/contextutil"
	"go-fleetpay/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// SessionChecker tells whether sid is still the user's active session.
type SessionChecker interface {
	IsActiveSession(ctx context.Context, userID, sid string) (bool, error)
}

func AuthMiddleware(secret string, sessions SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			response.AbortWithError(c, autherrors.ErrTokenMissing)
			return
		}

		claims, err := token.Parse(secret, tokenString)
		if err != nil {
			errObj := autherrors.ErrInvalidToken
			if errors.Is(err, token.ErrExpired) {
				errObj = autherrors.ErrTokenExpired
			}
			response.AbortWithError(c, errObj)
			return
		}

		if _, ok := domain.ParseRole(claims.Role); !ok {
			response.AbortWithError(c, autherrors.ErrInvalidToken)
			return
		}

		if sessions != nil {
			active, err := sessions.IsActiveSession(c.Request.Context(), claims.UserID, claims.SessionID)
			if err != nil {
				response.AbortWithError(c, autherrors.ErrSessionUnavailable.WithCause(err))
				return
			}
			if !active {
				response.AbortWithError(c, autherrors.ErrSessionSuperseded)
				return
			}
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_id_validated", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("session_id", claims.SessionID)

		ctx := contextutil.WithUserID(c.Request.Context(), claims.UserID)
		ctx = contextutil.WithRole(ctx, claims.Role)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func RoleMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := domain.Role(c.GetString("role"))
		for _, role := range allowedRoles {
			if userRole == role {
				c.Next()
				return
			}
		}
		response.AbortWithError(c, autherrors.ErrForbidden)
	}
}

// ViewerFrom reads the authenticated caller set by AuthMiddleware.
func ViewerFrom(c *gin.Context) domain.Viewer {
	return domain.Viewer{
		UserID: c.GetString("user_id"),
		Role:   domain.Role(c.GetString("role")),
	}
}
