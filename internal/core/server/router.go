package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Options struct {
	Name string
	Mode string // gin mode: debug, release or test
	// CORSOrigins lists allowed origins; empty allows all without credentials.
	CORSOrigins []string
}

func NewRouter(opt Options) *gin.Engine {
	if opt.Mode != "" {
		gin.SetMode(opt.Mode)
	}
	r := gin.New()
	r.HandleMethodNotAllowed = true
	if len(opt.CORSOrigins) == 0 {
		r.Use(cors.Default())
		return r
	}
	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = opt.CORSOrigins
	cfg.AllowCredentials = true
	cfg.AddAllowHeaders("Authorization", "X-Request-ID")
	cfg.AddExposeHeaders("X-Request-ID")
	r.Use(cors.New(cfg))
	return r
}

func StartHTTP(srv *http.Server, l *zap.Logger) error {
	l.Info("http starting", zap.String("addr", srv.Addr))
	return srv.ListenAndServe()
}

func BuildServer(addr string, handler http.Handler, rt, wt, it time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       rt,
		ReadHeaderTimeout: rt,
		WriteTimeout:      wt,
		IdleTimeout:       it,
		MaxHeaderBytes:    1 << 20,
	}
}

func Addr(host string, port int) string { return fmt.Sprintf("%s:%d", host, port) }

// HumanURL is the clickable base URL printed at startup.
func HumanURL(host string, port int) string {
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	return "http://" + Addr(host, port)
}
