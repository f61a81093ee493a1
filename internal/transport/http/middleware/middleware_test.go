package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"docuisine/internal/core/auth"
	"docuisine/internal/domain"
	"docuisine/internal/transport/http/ez"
)

func init() { gin.SetMode(gin.TestMode) }

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(KeyRequestID)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(KeyRequestID))
	assert.Equal(t, w.Header().Get(KeyRequestID), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(KeyRequestID, "abc")
	w = serve(r, req)
	assert.Equal(t, "abc", w.Header().Get(KeyRequestID))

	for _, bad := range []string{"has space", "tab\tid", strings.Repeat("x", 129)} {
		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(KeyRequestID, bad)
		w = serve(r, req)
		assert.NotEqual(t, bad, w.Header().Get(KeyRequestID))
		assert.Len(t, w.Header().Get(KeyRequestID), 36)
	}
}

func TestAuthJWT(t *testing.T) {
	j := &auth.JWTer{Secret: []byte("k"), Issuer: "docuisine", TTL: time.Minute}
	tok, err := j.Issue(7, domain.RoleUser)
	require.NoError(t, err)

	newEngine := func(required bool, mw ...gin.HandlerFunc) *gin.Engine {
		r := gin.New()
		r.Use(AuthJWT(j, required))
		r.Use(mw...)
		r.GET("/", func(c *gin.Context) {
			if p := ez.PrincipalOf(c); p != nil {
				c.String(http.StatusOK, "%d", p.UserID)
				return
			}
			c.String(http.StatusOK, "anonymous")
		})
		return r
	}
	withToken := func(tok string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		return req
	}

	optional := newEngine(false)
	assert.Equal(t, "anonymous", serve(optional, httptest.NewRequest(http.MethodGet, "/", nil)).Body.String())
	assert.Equal(t, "7", serve(optional, withToken(tok)).Body.String())
	assert.Equal(t, http.StatusUnauthorized, serve(optional, withToken("garbage")).Code)

	required := newEngine(true)
	assert.Equal(t, http.StatusUnauthorized, serve(required, httptest.NewRequest(http.MethodGet, "/", nil)).Code)

	adminOnly := newEngine(true, RequireRole(domain.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, serve(adminOnly, withToken(tok)).Code)
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitPerIP(1, 1))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"code":429`)
}

func TestRateLimit_Global(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(1, 1))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.RemoteAddr = "10.0.0.1:1"
	second := httptest.NewRequest(http.MethodGet, "/", nil)
	second.RemoteAddr = "10.0.0.2:1"
	assert.Equal(t, http.StatusOK, serve(r, first).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, second).Code)

	off := gin.New()
	off.Use(RateLimit(0, 0))
	off.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(off, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
}

func TestMaxBodyBytes(t *testing.T) {
	r := gin.New()
	r.Use(MaxBodyBytes(4))
	r.POST("/", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("abc"))).Code)
	assert.Equal(t, http.StatusRequestEntityTooLarge, serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("abcdefgh"))).Code)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zap.NewNop()))
	r.GET("/", func(*gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"code":500`)
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/", func(c *gin.Context) { <-c.Request.Context().Done() })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestMaskQuery(t *testing.T) {
	q := url.Values{"password": {"hunter2"}, "Token": {"abc"}, "page": {"2"}}
	got := MaskQuery(q)
	assert.Equal(t, []string{"****"}, got["password"])
	assert.Equal(t, []string{"****"}, got["Token"])
	assert.Equal(t, []string{"2"}, got["page"])
}

func TestMetrics(t *testing.T) {
	m := NewMetrics("docuisine")
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", m.Handler())

	serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	w := serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `docuisine_http_requests_total{method="GET",path="/ping",status="200"} 1`)
}
