package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docuisine/internal/core/buildinfo"
	"docuisine/internal/core/cache"
	"docuisine/internal/core/logger"
)

type fakeReleases struct {
	tags    map[string]string
	commits map[string]string
	calls   atomic.Int32
}

func (f *fakeReleases) LatestRelease(_ context.Context, repo string) (string, error) {
	f.calls.Add(1)
	tag, ok := f.tags[repo]
	if !ok {
		return "", errors.New("rate limited")
	}
	return tag, nil
}

func (f *fakeReleases) LatestCommit(_ context.Context, repo, _ string) (string, error) {
	f.calls.Add(1)
	sha, ok := f.commits[repo]
	if !ok {
		return "", errors.New("rate limited")
	}
	return sha, nil
}

func TestHealth_Check(t *testing.T) {
	build := buildinfo.Info{Version: "1.4.0", Commit: "abc1234"}

	ok := NewHealth(HealthConfig{}, build, nil, nil, nil, func(context.Context) error { return nil }, nil)
	st := ok.Check(context.Background())
	assert.Equal(t, StatusHealthy, st.Status)
	assert.Equal(t, "abc1234", st.CommitHash)
	assert.Equal(t, "1.4.0", st.Version)

	down := NewHealth(HealthConfig{}, build, nil, nil, nil, func(context.Context) error { return errors.New("refused") }, nil)
	assert.Equal(t, StatusUnhealthy, down.Check(context.Background()).Status)
}

func TestHealth_ConfigurationCachesReleases(t *testing.T) {
	releases := &fakeReleases{tags: map[string]string{
		"docuisine/frontend": "v2.1.0",
		"docuisine/backend":  "nightly",
	}, commits: map[string]string{
		"docuisine/backend": "9f1c2ab",
	}}
	h := NewHealth(HealthConfig{
		FrontendRepo:   "docuisine/frontend",
		BackendRepo:    "docuisine/backend",
		DBDriver:       "postgres",
		DBURL:          "postgres://app:hunter2@db:5432/docuisine",
		DefaultSecrets: []string{"jwt.secret"},
	}, buildinfo.Info{Version: "2.0.0"}, releases, cache.NewMemory(10, time.Minute), nil, nil, nil)

	cfg := h.Configuration(context.Background())
	require.NotNil(t, cfg.FrontendLatestVersion)
	assert.Equal(t, "2.1.0", *cfg.FrontendLatestVersion)
	assert.Nil(t, cfg.BackendLatestVersion)
	require.NotNil(t, cfg.BackendLatestCommit)
	assert.Equal(t, "9f1c2ab", *cfg.BackendLatestCommit)
	assert.Equal(t, "2.0.0", cfg.BackendVersion)
	assert.Equal(t, "postgresql", cfg.DatabaseType)
	assert.NotContains(t, cfg.DatabaseURL, "hunter2")
	assert.Equal(t, []string{"jwt.secret"}, cfg.DefaultSecretsUsed)

	h.Configuration(context.Background())
	assert.Equal(t, int32(3), releases.calls.Load())
}

func TestHealth_ConfigurationWithoutReleases(t *testing.T) {
	h := NewHealth(HealthConfig{FrontendRepo: "x/y", DBDriver: "sqlite"}, buildinfo.Info{}, &fakeReleases{}, nil, nil, nil, nil)
	cfg := h.Configuration(context.Background())
	assert.Nil(t, cfg.FrontendLatestVersion)
	assert.Nil(t, cfg.BackendLatestCommit)
	assert.Equal(t, "sqlite", cfg.DatabaseType)
	assert.NotNil(t, cfg.DefaultSecretsUsed)
}

func TestHealth_Logs(t *testing.T) {
	ring := logger.NewRing(3)
	for _, l := range []string{"a\n", "b\n", "c\n", "d\n"} {
		_, _ = ring.Write([]byte(l))
	}
	h := NewHealth(HealthConfig{}, buildinfo.Info{}, nil, nil, ring, nil, nil)
	assert.Equal(t, []string{"c", "d"}, h.Logs(2))
	assert.Equal(t, []string{"b", "c", "d"}, h.Logs(0))
	assert.Empty(t, NewHealth(HealthConfig{}, buildinfo.Info{}, nil, nil, nil, nil, nil).Logs(5))
}
