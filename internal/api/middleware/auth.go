package middleware

import (
	"errors"
	"net/http"
	"strings"

	"invoicehub/internal/auth"
	"invoicehub/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	authorizationHeader = "Authorization"
	userCtx             = "userID"      // Key to store user ID in context
	claimsCtx           = "tokenClaims" // Key to store the parsed token claims
)

// TokenParser verifies a bearer token.
type TokenParser interface {
	Parse(token string) (auth.Claims, error)
}

// JWTAuthMiddleware creates a Gin middleware for JWT authentication. Tokens whose id
// is in revocations are rejected.
func JWTAuthMiddleware(tokens TokenParser, revocations auth.RevocationStore) gin.HandlerFunc {
	log := logger.WithComponent("auth-middleware")

	return func(c *gin.Context) {
		authHeader := c.GetHeader(authorizationHeader)
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		headerParts := strings.Split(authHeader, " ")
		if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid Authorization header format"})
			return
		}

		claims, err := tokens.Parse(headerParts[1])
		if err != nil {
			log.Debug().Err(err).Msg("Rejected bearer token")
			if errors.Is(err, auth.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has expired"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			}
			return
		}

		revoked, err := revocations.IsRevoked(c.Request.Context(), claims.TokenID)
		if err != nil {
			log.Error().Err(err).Msg("Revocation lookup failed")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Unable to verify session"})
			return
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has been revoked"})
			return
		}

		// Store user ID in context for downstream handlers
		c.Set(userCtx, claims.UserID)
		c.Set(claimsCtx, claims)

		reqLog := logger.FromContext(c.Request.Context()).With().Str("user_id", claims.UserID.String()).Logger()
		c.Request = c.Request.WithContext(reqLog.WithContext(c.Request.Context()))
		c.Next()
	}
}

// GetUserIDFromContext returns the authenticated user's id.
func GetUserIDFromContext(c *gin.Context) (uuid.UUID, error) {
	userIDAny, exists := c.Get(userCtx)
	if !exists {
		return uuid.Nil, errors.New("user ID not found in context")
	}

	userID, ok := userIDAny.(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("user ID in context is of invalid type")
	}

	return userID, nil
}

// GetClaimsFromContext returns the claims of the token that authenticated the request.
func GetClaimsFromContext(c *gin.Context) (auth.Claims, bool) {
	v, ok := c.Get(claimsCtx)
	if !ok {
		return auth.Claims{}, false
	}
	claims, ok := v.(auth.Claims)
	return claims, ok
}
