// Package app wires configuration, storage and services into the handler
// registry shared by the api and admin processes.
package app

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"docuisine/internal/core/auth"
	"docuisine/internal/core/buildinfo"
	"docuisine/internal/core/cache"
	"docuisine/internal/core/config"
	"docuisine/internal/core/database"
	"docuisine/internal/core/logger"
	"docuisine/internal/core/objectstore"
	"docuisine/internal/core/release"
	"docuisine/internal/repo"
	"docuisine/internal/service"
	"docuisine/internal/transport/http/handler"
	mdw "docuisine/internal/transport/http/middleware"
	"docuisine/internal/transport/http/router"
	"docuisine/pkg/utils"
)

type App struct {
	Cfg  *config.Config
	Log  *zap.Logger
	Ring *logger.Ring
	DB   *gorm.DB

	closers []func() error
	deps    router.Deps
}

// NewLogger builds the process logger from cfg. The ring keeps the recent
// lines served by the admin logs endpoint.
func NewLogger(cfg *config.Config) (*zap.Logger, *logger.Ring, func()) {
	ring := logger.NewRing(cfg.Log.BufferLines)
	l, cleanup := logger.New(logger.Options{
		Level:     cfg.Log.Level,
		JSON:      cfg.Log.JSON,
		AddCaller: true,
		Rotate: logger.FileRotate{
			Enable:     cfg.Log.File.Enable,
			Filename:   cfg.Log.File.Filename,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
		Ring: ring,
	})
	return l.With(zap.String("app", cfg.App.Name)), ring, cleanup
}

// OpenDB connects to the configured database and, when enabled, brings the
// schema up to date.
func OpenDB(ctx context.Context, cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	gl, err := logger.ToStdLogger(l.Named("gorm"), zapcore.WarnLevel)
	if err != nil {
		return nil, err
	}
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Log:                gl,
	})
	if err != nil {
		return nil, err
	}
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(ctx, db, cfg.DB.Driver); err != nil {
			return nil, err
		}
		l.Info("migrations done")
	}
	return db, nil
}

// New builds every service and handler module. The caller owns l and ring.
func New(ctx context.Context, cfg *config.Config, l *zap.Logger, ring *logger.Ring) (*App, error) {
	a := &App{Cfg: cfg, Log: l, Ring: ring}

	db, err := OpenDB(ctx, cfg, l)
	if err != nil {
		return nil, err
	}
	a.DB = db
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, sqlDB.Close)

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.TTL(),
	}
	hash := utils.Argon2Params{
		Time:    cfg.Password.Time,
		Memory:  cfg.Password.Memory,
		Threads: cfg.Password.Threads,
		KeyLen:  cfg.Password.KeyLen,
		SaltLen: cfg.Password.SaltLen,
	}

	blobs, err := objectstore.NewS3(ctx, objectstore.Options{
		Endpoint:     cfg.S3.Endpoint,
		Region:       cfg.S3.Region,
		AccessKey:    cfg.S3.AccessKey,
		SecretKey:    cfg.S3.SecretKey,
		Bucket:       cfg.S3.Bucket,
		PublicURL:    cfg.S3.PublicURL,
		UsePathStyle: cfg.S3.UsePathStyle,
	})
	if err != nil {
		return nil, err
	}
	bctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := blobs.EnsureBucket(bctx); err != nil {
		// uploads fail until the store is reachable; the rest of the api works
		l.Warn("object store unavailable", zap.String("bucket", blobs.Bucket()), zap.Error(err))
	}
	cancel()

	var versions cache.Store
	if cfg.Redis.Addr != "" {
		rc := cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Health.CacheTTL())
		a.closers = append(a.closers, rc.Close)
		versions = rc
	} else {
		versions = cache.NewMemory(cfg.Health.CacheSize, cfg.Health.CacheTTL())
	}

	rdb := repo.New(db)
	users := service.NewUsers(rdb, l, hash, jwter)
	categories := service.NewCategories(rdb, l)
	ingredients := service.NewIngredients(rdb, l)
	stores := service.NewStores(rdb, l)
	recipes := service.NewRecipes(rdb, l)
	images := service.NewImages(blobs, cfg.Images.Formats, cfg.Images.MaxBytes, l)
	health := service.NewHealth(service.HealthConfig{
		FrontendRepo:   cfg.Health.FrontendRepo,
		BackendRepo:    cfg.Health.BackendRepo,
		DBDriver:       cfg.DB.Driver,
		DBURL:          cfg.DB.DSN,
		DefaultSecrets: cfg.DefaultSecretsUsed(),
	},
		buildinfo.Get(cfg.Build.Version, cfg.Build.Commit),
		release.NewGitHub(cfg.Health.GitHubAPI),
		versions, ring, sqlDB.PingContext, l)

	if s := cfg.DefaultSecretsUsed(); len(s) > 0 {
		l.Warn("default secrets in use", zap.Strings("secrets", s))
	}

	if err := handler.RegisterValidators(); err != nil {
		return nil, err
	}
	a.deps = router.Deps{
		Log:     l,
		JWT:     jwter,
		HTTP:    cfg.App.HTTP,
		Mode:    ginMode(cfg.App.Env),
		Metrics: mdw.NewMetrics("docuisine"),
		Modules: router.NewRegistry(
			handler.NewHealthHandler(health, users),
			handler.NewUserHandler(users),
			handler.NewCatalogHandler(categories, ingredients, stores),
			handler.NewRecipeHandler(recipes),
			handler.NewImageHandler(images),
			handler.NewAdminHandler(users, health),
		),
	}
	return a, nil
}

func (a *App) APIEngine() *gin.Engine   { return router.NewAPIEngine(a.deps) }
func (a *App) AdminEngine() *gin.Engine { return router.NewAdminEngine(a.deps) }

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Log.Warn("close", zap.Error(err))
		}
	}
}

func ginMode(env string) string {
	switch env {
	case "prod", "production":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
