package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	identitydomain "github.com/tvnrapp/relationship-os/internal/identity/domain"
)

const (
	contextUserIDKey = "user_id"
	contextRoleKey   = "user_role"
)

// AuthRequired parses the bearer token and stores the caller's identity on
// the request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(raw) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		id, role, err := s.tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextUserIDKey, id)
		c.Set(contextRoleKey, role)
		c.Next()
	}
}

// RequireRole gates a route on an exact role match. Admins pass every gate.
func (s *Server) RequireRole(roles ...identitydomain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := currentRole(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if role == identitydomain.RoleAdmin {
			c.Next()
			return
		}
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		AbortWithError(c, ErrForbidden)
	}
}

// RequireCapability gates a route on a casbin capability check.
func (s *Server) RequireCapability(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := currentRole(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if err := s.authzSvc.Authorize(c.Request.Context(), role, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// AssistRateLimit throttles the AI endpoints per user when redis is
// configured. Limiter errors fail open.
func (s *Server) AssistRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.assistLimiter.Enabled() {
			c.Next()
			return
		}

		uid, ok := currentUserID(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		result, err := s.assistLimiter.Allow(c.Request.Context(), uid.String())
		if err != nil {
			s.obsMetrics.RecordRateLimitDenied(c.Request.Context(), c.FullPath(), "error")
			c.Next()
			return
		}
		if !result.Allowed {
			s.obsMetrics.RecordRateLimitDenied(c.Request.Context(), c.FullPath(), "exhausted")
			retryAfter := int(result.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: errorPayload{
				Type:    "rate_limited",
				Message: "too many requests",
			}})
			return
		}

		s.obsMetrics.RecordRateLimitAllowed(c.Request.Context(), c.FullPath())
		c.Next()
	}
}

func currentUserID(c *gin.Context) (snowflake.ID, bool) {
	v, ok := c.Get(contextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(snowflake.ID)
	return id, ok
}

func currentRole(c *gin.Context) (identitydomain.Role, bool) {
	v, ok := c.Get(contextRoleKey)
	if !ok {
		return "", false
	}
	role, ok := v.(identitydomain.Role)
	return role, ok
}

// currentCaller rebuilds the identity carried by the session token.
func currentCaller(c *gin.Context) (*identitydomain.User, bool) {
	id, ok := currentUserID(c)
	if !ok {
		return nil, false
	}
	role, ok := currentRole(c)
	if !ok {
		return nil, false
	}
	return &identitydomain.User{ID: id, Role: role}, true
}
