package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "docuisine/internal/transport/http/response"
)

// MaxBodyBytes caps the request body. Handlers that hit the cap report it
// themselves through response.FromError.
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 && c.Request.ContentLength > n {
			resp.Abort(c, resp.CodeTooLarge, "request body too large")
			return
		}
		if n > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
