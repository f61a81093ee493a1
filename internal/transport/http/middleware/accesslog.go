package middleware

import (
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"docuisine/internal/transport/http/ez"
)

type respWriter struct {
	gin.ResponseWriter
	status int
	size   int
}

func (w *respWriter) WriteHeader(code int) { w.status = code; w.ResponseWriter.WriteHeader(code) }
func (w *respWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = 200
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

var sensitiveKeys = map[string]struct{}{
	"password": {}, "old_password": {}, "new_password": {}, "pwd": {},
	"token": {}, "authorization": {}, "secret": {}, "access_token": {},
}

// MaskQuery replaces the values of credential-like keys with "****".
func MaskQuery(kv url.Values) map[string][]string {
	out := make(map[string][]string, len(kv))
	for k, v := range kv {
		if _, ok := sensitiveKeys[strings.ToLower(k)]; ok {
			out[k] = []string{"****"}
		} else {
			out[k] = v
		}
	}
	return out
}

func AccessLog(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		w := &respWriter{ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		status := w.status
		if status == 0 {
			status = c.Writer.Status()
		}
		fields := []zap.Field{
			zap.String("rid", RequestIDOf(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.String("ua", c.Request.UserAgent()),
			zap.Any("query", MaskQuery(c.Request.URL.Query())),
			zap.Int("size", w.size),
		}
		if p := ez.PrincipalOf(c); p != nil {
			fields = append(fields, zap.Int64("uid", p.UserID))
		}
		switch {
		case status >= 500:
			l.Error("HTTP", fields...)
		case status >= 400:
			l.Warn("HTTP", fields...)
		default:
			l.Info("HTTP", fields...)
		}
	}
}
