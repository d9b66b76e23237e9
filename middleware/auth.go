package middleware

import (
	"context"
	"strings"

	"restaurant-service/access"
	"restaurant-service/common/auth"
	apperrors "restaurant-service/common/errors"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

const (
	ActorContextKey  = access.ContextKey
	UserContextKey   = "userID"
	accessCookieName = "access_token"
)

// TokenParser validates a bearer token and returns its claims.
type TokenParser interface {
	ParseAndValidateToken(tokenStr, expectedType string) (jwt.MapClaims, error)
}

// ActorResolver maps a user id to an actor with its role.
type ActorResolver interface {
	Resolve(ctx context.Context, userID uint) (access.Actor, error)
}

// AuthMiddleware verifies the access token and stores the resolved actor in
// the context. The token is read from the Authorization header, falling back
// to the access_token cookie.
func AuthMiddleware(tokens TokenParser, resolver ActorResolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c)
		if tokenStr == "" {
			abortUnauthenticated(c)
			return
		}

		claims, err := tokens.ParseAndValidateToken(tokenStr, "access")
		if err != nil {
			logger.Debug("Rejected access token", zap.Error(err))
			abortUnauthenticated(c)
			return
		}

		userID, err := auth.SubjectID(claims)
		if err != nil {
			logger.Debug("Access token has no usable subject", zap.Error(err))
			abortUnauthenticated(c)
			return
		}

		actor, err := resolver.Resolve(c.Request.Context(), userID)
		if err != nil {
			logger.Error("Failed to resolve actor role", zap.Uint("user_id", userID), zap.Error(err))
			_ = c.Error(apperrors.Internal("Failed to resolve user role", err))
			c.Abort()
			return
		}

		c.Set(ActorContextKey, actor)
		c.Set(UserContextKey, actor.ID)
		c.Next()
	}
}

// RequireCatalogWriter stops callers that may not change the catalog.
func RequireCatalogWriter() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := GetActor(c)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		if !access.CanWriteCatalog(actor) {
			_ = c.Error(apperrors.Forbidden("Manager role required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetActor extracts the actor stored by AuthMiddleware.
func GetActor(c *gin.Context) (access.Actor, error) {
	if val, ok := c.Get(ActorContextKey); ok {
		if actor, ok := val.(access.Actor); ok && actor.ID != 0 {
			return actor, nil
		}
	}
	return access.Actor{}, apperrors.Unauthenticated()
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	if v, err := c.Cookie(accessCookieName); err == nil {
		return strings.TrimSpace(v)
	}
	return ""
}

func abortUnauthenticated(c *gin.Context) {
	_ = c.Error(apperrors.Unauthenticated())
	c.Abort()
}
