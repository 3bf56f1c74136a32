package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"whisprdraw-backend/internal/config"
	"whisprdraw-backend/internal/models"
)

const (
	TokenKey  = "access_token"
	UserIDKey = "user_id"
)

// Auth extracts the caller's bearer token so it can be forwarded to
// Supabase. A missing token is allowed. When a JWT secret is configured, a
// present token must be a valid HS256 Supabase token.
func Auth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			c.Next()
			return
		}

		if cfg.SupabaseJWTSecret != "" {
			sub, err := verify(tokenString, cfg.SupabaseJWTSecret)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:  "unauthorized",
					Detail: errorMessage(err),
				})
				return
			}

			c.Set(UserIDKey, sub)
			logger := zerolog.Ctx(c.Request.Context()).With().Str("user_id", sub).Logger()
			c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))
		}

		c.Set(TokenKey, tokenString)
		c.Next()
	}
}

// Token returns the bearer token stored by Auth, or "".
func Token(c *gin.Context) string {
	return c.GetString(TokenKey)
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func verify(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		// Supabase JWT secret is used directly as the signing key
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", jwt.ErrTokenInvalidSubject
	}
	return sub, nil
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token has expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
		return "token signature is invalid"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "token is malformed"
	case errors.Is(err, jwt.ErrTokenInvalidSubject):
		return "missing user id in token"
	}
	return "invalid token"
}
