package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"docuisine/internal/core/buildinfo"
	"docuisine/internal/core/cache"
	"docuisine/internal/core/database"
	"docuisine/internal/core/logger"
	"docuisine/pkg/utils"
)

// ReleaseSource reports the newest release tag and head commit of a
// repository. An empty branch means the default one.
type ReleaseSource interface {
	LatestRelease(ctx context.Context, repo string) (string, error)
	LatestCommit(ctx context.Context, repo, branch string) (string, error)
}

type HealthConfig struct {
	FrontendRepo   string
	BackendRepo    string
	DBDriver       string
	DBURL          string
	DefaultSecrets []string
}

type Health struct {
	cfg      HealthConfig
	build    buildinfo.Info
	releases ReleaseSource
	cache    cache.Store
	ring     *logger.Ring
	ping     func(ctx context.Context) error
	log      *zap.Logger
}

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

type HealthStatus struct {
	Status     string `json:"status"`
	CommitHash string `json:"commitHash"`
	Version    string `json:"version"`
}

type Configuration struct {
	FrontendLatestVersion *string  `json:"frontendLatestVersion"`
	BackendVersion        string   `json:"backendVersion"`
	BackendLatestVersion  *string  `json:"backendLatestVersion"`
	BackendLatestCommit   *string  `json:"backendLatestCommitHash"`
	DefaultSecretsUsed    []string `json:"defaultSecretsUsed"`
	DatabaseURL           string   `json:"databaseURL"`
	DatabaseType          string   `json:"databaseType"`
}

// NewHealth wires the introspection service. ping may be nil when there is
// no datastore to check; ring may be nil when logs are not buffered.
func NewHealth(cfg HealthConfig, build buildinfo.Info, releases ReleaseSource, c cache.Store, ring *logger.Ring, ping func(context.Context) error, l *zap.Logger) *Health {
	if l == nil {
		l = zap.NewNop()
	}
	if c == nil {
		c = cache.NewMemory(100, 5*time.Minute)
	}
	return &Health{cfg: cfg, build: build, releases: releases, cache: c, ring: ring, ping: ping, log: l}
}

func (h *Health) Check(ctx context.Context) HealthStatus {
	st := HealthStatus{Status: StatusHealthy, CommitHash: h.build.Commit, Version: h.build.Version}
	if h.ping != nil {
		if err := h.ping(ctx); err != nil {
			h.log.Warn("datastore ping failed", zap.Error(err))
			st.Status = StatusUnhealthy
		}
	}
	return st
}

// Configuration reports deployment details for admins. Release lookups
// that fail are reported as null rather than failing the call.
func (h *Health) Configuration(ctx context.Context) Configuration {
	secrets := h.cfg.DefaultSecrets
	if secrets == nil {
		secrets = []string{}
	}
	return Configuration{
		FrontendLatestVersion: h.latest(ctx, h.cfg.FrontendRepo),
		BackendVersion:        h.build.Version,
		BackendLatestVersion:  h.latest(ctx, h.cfg.BackendRepo),
		BackendLatestCommit:   h.head(ctx, h.cfg.BackendRepo),
		DefaultSecretsUsed:    secrets,
		DatabaseURL:           database.MaskDSN(h.cfg.DBURL),
		DatabaseType:          database.Type(h.cfg.DBDriver),
	}
}

// Logs returns up to limit of the most recent log lines, oldest first.
func (h *Health) Logs(limit int) []string {
	if h.ring == nil {
		return []string{}
	}
	return h.ring.Lines(limit)
}

func (h *Health) latest(ctx context.Context, repo string) *string {
	if repo == "" || h.releases == nil {
		return nil
	}
	tag, err := cache.GetOrLoadJSON(ctx, h.cache, "release:"+repo, func(ctx context.Context) (string, error) {
		return h.releases.LatestRelease(ctx, repo)
	})
	if err != nil {
		h.log.Warn("latest release lookup failed", zap.String("repo", repo), zap.Error(err))
		return nil
	}
	v, err := utils.ValidateVersion(tag)
	if err != nil {
		h.log.Warn("release tag is not a version", zap.String("repo", repo), zap.String("tag", tag), zap.Error(err))
		return nil
	}
	return &v
}

func (h *Health) head(ctx context.Context, repo string) *string {
	if repo == "" || h.releases == nil {
		return nil
	}
	sha, err := cache.GetOrLoadJSON(ctx, h.cache, "commit:"+repo, func(ctx context.Context) (string, error) {
		return h.releases.LatestCommit(ctx, repo, "")
	})
	if err != nil || sha == "" {
		h.log.Warn("latest commit lookup failed", zap.String("repo", repo), zap.Error(err))
		return nil
	}
	return &sha
}
