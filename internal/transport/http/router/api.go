package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"docuisine/internal/core/auth"
	"docuisine/internal/core/config"
	"docuisine/internal/core/server"
	"docuisine/internal/transport/http/ez"
	mdw "docuisine/internal/transport/http/middleware"
	resp "docuisine/internal/transport/http/response"
)

// Deps is what both engines are built from.
type Deps struct {
	Log     *zap.Logger
	JWT     *auth.JWTer
	HTTP    config.HTTP
	Mode    string
	Metrics *mdw.Metrics // nil disables /metrics
	Modules *Registry
}

// guards is the shared middleware chain.
func guards(d Deps) []gin.HandlerFunc {
	chain := []gin.HandlerFunc{
		mdw.RequestID(),
		mdw.RateLimit(rate.Limit(d.HTTP.GlobalRPS), max(1, d.HTTP.GlobalBurst)),
		mdw.RateLimitPerIP(rate.Limit(d.HTTP.RateLimitRPS), max(1, d.HTTP.RateLimitBurst)),
		mdw.ConcurrencyLimit(d.HTTP.MaxInFlight),
		mdw.MaxBodyBytes(d.HTTP.MaxBodyBytes),
		mdw.Timeout(time.Duration(d.HTTP.HandlerTimeout) * time.Second),
		mdw.Recovery(d.Log),
	}
	if d.Metrics != nil {
		chain = append(chain, d.Metrics.Middleware())
	}
	return append(chain, mdw.AccessLog(d.Log))
}

func newEngine(d Deps) (*gin.Engine, ez.EZ) {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	r := server.NewRouter(server.Options{Mode: d.Mode, CORSOrigins: d.HTTP.CORSOrigins})
	r.Use(guards(d)...)
	r.NoRoute(func(c *gin.Context) { resp.Abort(c, resp.CodeNotFound, "route not found") })
	r.NoMethod(func(c *gin.Context) { resp.Abort(c, resp.CodeMethodNotAllowed, "method not allowed") })
	if d.Metrics != nil {
		r.GET("/metrics", d.Metrics.Handler())
	}
	root := ez.New(&r.RouterGroup, d.Log)
	d.Modules.MountRoot(root)
	return r, root
}

// NewAPIEngine builds the public engine: root routes plus /api/v1, where a
// bearer token is optional and each action states the role it needs.
func NewAPIEngine(d Deps) *gin.Engine {
	r, root := newEngine(d)
	api := root.Group("/api/v1", mdw.AuthJWT(d.JWT, false))
	d.Modules.MountAPI(api)
	return r
}
