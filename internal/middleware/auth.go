package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/legalai/core/internal/pkg/jwt"
	"github.com/legalai/core/internal/pkg/response"
)

const (
	ContextKeySubject = "admin_subject"
	// RoleAdmin is the only role admin routes accept.
	RoleAdmin = "admin"
)

// AdminAuth returns a middleware that requires a valid admin JWT. A nil
// signer rejects every request.
func AdminAuth(signer *jwt.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if signer == nil {
			response.Unauthorized(c)
			return
		}
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c)
			return
		}
		claims, err := signer.Parse(token)
		if err != nil || claims.Role != RoleAdmin {
			response.Unauthorized(c)
			return
		}
		c.Set(ContextKeySubject, claims.Subject)
		c.Next()
	}
}

// CurrentSubject returns the authenticated admin subject from context.
func CurrentSubject(c *gin.Context) string {
	v, _ := c.Get(ContextKeySubject)
	s, _ := v.(string)
	return s
}

// IsAuthenticated returns true if an admin token was accepted for the request.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentSubject(c) != ""
}

func extractToken(c *gin.Context) string {
	return NormalizeToken(c.GetHeader("Authorization"))
}

// NormalizeToken trims spaces and strips optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
