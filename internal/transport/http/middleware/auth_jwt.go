package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"docuisine/internal/core/auth"
	"docuisine/internal/domain"
	"docuisine/internal/transport/http/ez"
	resp "docuisine/internal/transport/http/response"
)

// AuthJWT resolves the bearer token into a principal. With required false a
// request without an Authorization header passes anonymously; a header
// that is present but invalid is always rejected.
func AuthJWT(j *auth.JWTer, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if ah == "" && !required {
			c.Next()
			return
		}
		if !strings.HasPrefix(ah, "Bearer ") {
			resp.Abort(c, resp.CodeUnauthorized, "missing token")
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			resp.Abort(c, resp.CodeUnauthorized, "invalid token")
			return
		}
		p, err := claims.Principal()
		if err != nil {
			resp.Abort(c, resp.CodeUnauthorized, "invalid token")
			return
		}
		ez.SetPrincipal(c, p)
		c.Next()
	}
}

// RequireRole rejects callers below minimum. It must run after AuthJWT.
func RequireRole(minimum domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := ez.PrincipalOf(c)
		if p == nil {
			resp.Abort(c, resp.CodeUnauthorized, "not authenticated")
			return
		}
		if err := auth.RequireRole(*p, minimum); err != nil {
			resp.Abort(c, resp.CodeForbidden, err.Error())
			return
		}
		c.Next()
	}
}
