package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRead_DefaultsWhenFileMissing(t *testing.T) {
	c, err := Read(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", c.DB.Driver)
	assert.Equal(t, 8000, c.App.HTTP.Port)
	assert.Equal(t, []string{"png", "jpeg", "webp", "gif"}, c.Images.Formats)
	assert.Equal(t, uint32(64*1024), c.Password.Memory)
	assert.Equal(t, "docuisine/docuisine-react", c.Health.FrontendRepo)
}

func TestRead_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
db:
  driver: postgres
  dsn: postgres://cook:pw@db:5432/docuisine
jwt:
  secret: not-the-default
  access_token_ttl_min: 5
`)
	c, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", c.DB.Driver)
	assert.Equal(t, "not-the-default", c.JWT.Secret)
	assert.Equal(t, 5, c.JWT.AccessTokenTTLMin)
	assert.Equal(t, "docuisine", c.JWT.Issuer)
}

func TestRead_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "db:\n  driver: mysql\n")
	t.Setenv("APP_DB_DRIVER", "postgres")
	t.Setenv("APP_S3_BUCKET", "pics")

	c, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", c.DB.Driver)
	assert.Equal(t, "pics", c.S3.Bucket)
}

func TestRead_MalformedFile(t *testing.T) {
	path := writeConfig(t, "db: [unterminated")
	_, err := Read(path)
	require.Error(t, err)
}

func TestDefaultSecretsUsed(t *testing.T) {
	c, err := Read(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{"DB_USERNAME", "DB_PASSWORD", "S3_ACCESS_KEY", "S3_SECRET_KEY", "JWT_SECRET_KEY"},
		c.DefaultSecretsUsed())

	c.JWT.Secret = "rotated"
	c.DB.Password = "rotated"
	assert.ElementsMatch(t,
		[]string{"DB_USERNAME", "S3_ACCESS_KEY", "S3_SECRET_KEY"},
		c.DefaultSecretsUsed())
}

func TestDurations(t *testing.T) {
	c := &Config{}
	c.JWT.AccessTokenTTLMin = 2
	c.App.HTTP.ReadTimeoutSec = 3
	assert.Equal(t, "2m0s", c.JWT.TTL().String())
	assert.Equal(t, "3s", c.App.HTTP.ReadTimeout().String())
}
