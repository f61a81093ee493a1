package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	resp "docuisine/internal/transport/http/response"
)

// Timeout bounds the request context. Handlers that return because of the
// deadline without writing get a 504.
func Timeout(d time.Duration) gin.HandlerFunc {
	if d <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			resp.Abort(c, resp.CodeTimeout, "timeout")
		}
	}
}
