package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const DefaultPath = "./configs/config.local.yaml"

type HTTP struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ReadTimeoutSec  int    `mapstructure:"read_timeout_sec"`
	WriteTimeoutSec int    `mapstructure:"write_timeout_sec"`
	IdleTimeoutSec  int    `mapstructure:"idle_timeout_sec"`

	// request guards
	RateLimitRPS   float64  `mapstructure:"rate_limit_rps"` // per client ip
	RateLimitBurst int      `mapstructure:"rate_limit_burst"`
	GlobalRPS      float64  `mapstructure:"global_rate_limit_rps"` // whole process, 0 disables
	GlobalBurst    int      `mapstructure:"global_rate_limit_burst"`
	MaxInFlight    int64    `mapstructure:"max_in_flight"`
	MaxBodyBytes   int64    `mapstructure:"max_body_bytes"`
	HandlerTimeout int      `mapstructure:"handler_timeout_sec"`
	CORSOrigins    []string `mapstructure:"cors_origins"`
}

type AdminHTTP struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type App struct {
	Name  string    `mapstructure:"name"`
	Env   string    `mapstructure:"env"`
	HTTP  HTTP      `mapstructure:"http"`
	Admin AdminHTTP `mapstructure:"admin"`
}

type LogFile struct {
	Enable     bool   `mapstructure:"enable"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type Log struct {
	Level       string  `mapstructure:"level"`
	JSON        bool    `mapstructure:"json"`
	File        LogFile `mapstructure:"file"`
	BufferLines int     `mapstructure:"buffer_lines"`
}

type JWT struct {
	Secret            string `mapstructure:"secret"`
	Issuer            string `mapstructure:"issuer"`
	AccessTokenTTLMin int    `mapstructure:"access_token_ttl_min"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string `mapstructure:"driver"`
	DSN                string `mapstructure:"dsn"`
	Username           string `mapstructure:"username"`
	Password           string `mapstructure:"password"`
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMin int    `mapstructure:"conn_max_lifetime_min"`
	AutoMigrate        bool   `mapstructure:"auto_migrate"`
	LogLevel           string `mapstructure:"log_level"`
}

type S3 struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	// PublicURL is the base used in image URLs; defaults to endpoint/bucket.
	PublicURL    string `mapstructure:"public_url"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

type Images struct {
	MaxBytes int64    `mapstructure:"max_bytes"`
	Formats  []string `mapstructure:"formats"`
}

// Password holds the argon2id cost parameters.
type Password struct {
	Time    uint32 `mapstructure:"time"`
	Memory  uint32 `mapstructure:"memory_kib"`
	Threads uint8  `mapstructure:"threads"`
	KeyLen  uint32 `mapstructure:"key_len"`
	SaltLen uint32 `mapstructure:"salt_len"`
}

type Health struct {
	FrontendRepo string `mapstructure:"frontend_repo"`
	BackendRepo  string `mapstructure:"backend_repo"`
	GitHubAPI    string `mapstructure:"github_api"`
	CacheTTLSec  int    `mapstructure:"cache_ttl_sec"`
	CacheSize    int    `mapstructure:"cache_size"`
}

type Build struct {
	Version string `mapstructure:"version"`
	Commit  string `mapstructure:"commit"`
}

type Config struct {
	App      App      `mapstructure:"app"`
	Log      Log      `mapstructure:"log"`
	JWT      JWT      `mapstructure:"jwt"`
	DB       DB       `mapstructure:"db"`
	Redis    Redis    `mapstructure:"redis"`
	S3       S3       `mapstructure:"s3"`
	Images   Images   `mapstructure:"images"`
	Password Password `mapstructure:"password"`
	Health   Health   `mapstructure:"health"`
	Build    Build    `mapstructure:"build"`
}

func (h HTTP) ReadTimeout() time.Duration  { return time.Duration(h.ReadTimeoutSec) * time.Second }
func (h HTTP) WriteTimeout() time.Duration { return time.Duration(h.WriteTimeoutSec) * time.Second }
func (h HTTP) IdleTimeout() time.Duration  { return time.Duration(h.IdleTimeoutSec) * time.Second }

func (j JWT) TTL() time.Duration { return time.Duration(j.AccessTokenTTLMin) * time.Minute }

func (h Health) CacheTTL() time.Duration { return time.Duration(h.CacheTTLSec) * time.Second }

// Shipped defaults for the secrets. A deployment still using any of them is
// reported by the configuration endpoint.
const (
	DefaultDBUsername  = "user"
	DefaultDBPassword  = "password"
	DefaultS3AccessKey = "s3user"
	DefaultS3SecretKey = "s3password"
	DefaultJWTSecret   = "4e9db3a3f86d82cb45f552b9e24e7a652fbb5d3565a3f60a798f904cee6b235b"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "docuisine")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8000)
	v.SetDefault("app.http.read_timeout_sec", 15)
	v.SetDefault("app.http.write_timeout_sec", 30)
	v.SetDefault("app.http.idle_timeout_sec", 60)
	v.SetDefault("app.http.rate_limit_rps", 200)
	v.SetDefault("app.http.rate_limit_burst", 400)
	v.SetDefault("app.http.global_rate_limit_rps", 2000)
	v.SetDefault("app.http.global_rate_limit_burst", 4000)
	v.SetDefault("app.http.max_in_flight", 300)
	v.SetDefault("app.http.max_body_bytes", 16<<20)
	v.SetDefault("app.http.handler_timeout_sec", 10)
	v.SetDefault("app.http.cors_origins", []string{})
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 8001)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.enable", false)
	v.SetDefault("log.file.filename", "logs/docuisine.log")
	v.SetDefault("log.file.max_size_mb", 100)
	v.SetDefault("log.file.max_backups", 7)
	v.SetDefault("log.file.max_age_days", 30)
	v.SetDefault("log.file.compress", true)
	v.SetDefault("log.buffer_lines", 1000)

	v.SetDefault("jwt.secret", DefaultJWTSecret)
	v.SetDefault("jwt.issuer", "docuisine")
	v.SetDefault("jwt.access_token_ttl_min", 30)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:docuisine.db")
	v.SetDefault("db.username", DefaultDBUsername)
	v.SetDefault("db.password", DefaultDBPassword)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime_min", 30)
	v.SetDefault("db.auto_migrate", true)
	v.SetDefault("db.log_level", "warn")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("s3.endpoint", "http://localhost:9000")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key", DefaultS3AccessKey)
	v.SetDefault("s3.secret_key", DefaultS3SecretKey)
	v.SetDefault("s3.bucket", "docuisine-images")
	v.SetDefault("s3.public_url", "")
	v.SetDefault("s3.use_path_style", true)

	v.SetDefault("images.max_bytes", 10<<20)
	v.SetDefault("images.formats", []string{"png", "jpeg", "webp", "gif"})

	v.SetDefault("password.time", 1)
	v.SetDefault("password.memory_kib", 64*1024)
	v.SetDefault("password.threads", 4)
	v.SetDefault("password.key_len", 32)
	v.SetDefault("password.salt_len", 16)

	v.SetDefault("health.frontend_repo", "docuisine/docuisine-react")
	v.SetDefault("health.backend_repo", "docuisine/docuisine")
	v.SetDefault("health.github_api", "https://api.github.com")
	v.SetDefault("health.cache_ttl_sec", 300)
	v.SetDefault("health.cache_size", 100)

	v.SetDefault("build.version", "")
	v.SetDefault("build.commit", "")
}

// Read loads path (or $CONFIG_PATH, or DefaultPath) over the built-in
// defaults. APP_-prefixed environment variables override both, with "." in
// the key spelled "_" (APP_DB_DSN). A missing file is not an error.
func Read(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = DefaultPath
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Load is Read for process entrypoints: any error is fatal.
func Load(path string) *Config {
	c, err := Read(path)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return c
}

// DefaultSecretsUsed names the secrets that still carry their shipped values,
// using the environment-style names operators set them by.
func (c *Config) DefaultSecretsUsed() []string {
	var out []string
	check := func(name, got, def string) {
		if got == def {
			out = append(out, name)
		}
	}
	check("DB_USERNAME", c.DB.Username, DefaultDBUsername)
	check("DB_PASSWORD", c.DB.Password, DefaultDBPassword)
	check("S3_ACCESS_KEY", c.S3.AccessKey, DefaultS3AccessKey)
	check("S3_SECRET_KEY", c.S3.SecretKey, DefaultS3SecretKey)
	check("JWT_SECRET_KEY", c.JWT.Secret, DefaultJWTSecret)
	return out
}
