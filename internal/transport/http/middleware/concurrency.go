package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	resp "docuisine/internal/transport/http/response"
)

// ConcurrencyLimit caps the requests in flight to protect the database.
func ConcurrencyLimit(max int64) gin.HandlerFunc {
	if max <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	sem := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		if err := sem.Acquire(c.Request.Context(), 1); err != nil {
			resp.Abort(c, resp.CodeUnavailable, "server busy")
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}
