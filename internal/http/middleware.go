package http

import (
	"github.com/gin-gonic/gin"

	"scholarhub/internal/auth"
	"scholarhub/internal/core"
	"scholarhub/internal/log"
)

const claimsKey = "claims"

// requireAuth validates the bearer token and stores its claims on the context.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			writeError(c, err)
			return
		}
		claims, err := s.deps.Tokens.Validate(token)
		if err != nil {
			writeError(c, err)
			return
		}

		ctx := c.Request.Context()
		logger := log.FromContext(ctx).With(log.FieldUsername, claims.Username)
		c.Request = c.Request.WithContext(log.WithContext(ctx, logger))
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// requireAdmin checks the stored account type rather than the token claim,
// so a demoted account loses access before its token expires.
func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		username := currentUser(c)
		ok, err := s.deps.Accounts.IsAdmin(ctx, username)
		if err != nil && !core.IsNotFound(err) {
			writeError(c, err)
			return
		}
		if !ok {
			log.FromContext(ctx).WarnContext(ctx, "Admin route denied",
				log.FieldPath, c.Request.URL.Path)
			writeError(c, core.ErrPermissionDenied)
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) string {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims.Username
		}
	}
	return ""
}
