package database

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Opts struct {
	Driver             string // postgres | mysql | sqlite
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	LogLevel           string
	// Log receives gorm's slow query and error lines; nil uses gorm's default.
	Log *log.Logger
}

var ErrUnsupportedDriver = errors.New("database: unsupported driver")

func NewGorm(o Opts) (*gorm.DB, error) {
	dial, err := dialector(o)
	if err != nil {
		return nil, err
	}

	lvl := logger.Warn
	switch o.LogLevel {
	case "silent":
		lvl = logger.Silent
	case "error":
		lvl = logger.Error
	case "info":
		lvl = logger.Info
	}
	gl := logger.Default.LogMode(lvl)
	if o.Log != nil {
		gl = logger.New(o.Log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  lvl,
			IgnoreRecordNotFoundError: true,
		})
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger: gl,
		// maps driver constraint errors onto gorm.ErrDuplicatedKey / ErrForeignKeyViolated
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if o.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(o.MaxOpenConns)
	}
	if o.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(o.MaxIdleConns)
	}
	if o.ConnMaxLifetimeMin > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(o.ConnMaxLifetimeMin) * time.Minute)
	}

	return db.Session(&gorm.Session{
		PrepareStmt:            o.Driver != "sqlite",
		CreateBatchSize:        200,
		SkipDefaultTransaction: true,
	}), nil
}

func dialector(o Opts) (gorm.Dialector, error) {
	switch o.Driver {
	case "postgres":
		return postgres.Open(o.DSN), nil
	case "mysql":
		return mysql.Open(normalizeMySQLDSN(o.DSN, o.Username, o.Password)), nil
	case "sqlite":
		return sqlite.Open(sqliteDSN(o.DSN)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, o.Driver)
	}
}

// sqliteDSN turns foreign keys on, which sqlite leaves off per connection.
func sqliteDSN(dsn string) string {
	if dsn == "" {
		dsn = "file:docuisine.db"
	}
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=1"
}

// Type names the database family behind driver, as reported by the
// configuration endpoint.
func Type(driver string) string {
	switch driver {
	case "postgres", "postgresql", "pgx":
		return "postgresql"
	case "mysql":
		return "mysql"
	case "sqlite", "sqlite3":
		return "sqlite"
	default:
		return "unknown"
	}
}

// MaskDSN hides the password part of a DSN so it can be shown or logged.
// Both URL form and go-sql-driver form (user:pass@tcp(...)) are handled.
func MaskDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" && u.User != nil {
		return u.Redacted()
	}
	if at := strings.LastIndex(dsn, "@"); at > 0 {
		head := dsn[:at]
		if colon := strings.Index(head, ":"); colon >= 0 && !strings.Contains(head[:colon], "/") {
			return head[:colon+1] + "****" + dsn[at:]
		}
	}
	if i := strings.Index(dsn, "password="); i >= 0 {
		end := strings.IndexAny(dsn[i:], " &")
		if end < 0 {
			return dsn[:i] + "password=****"
		}
		return dsn[:i] + "password=****" + dsn[i+end:]
	}
	return dsn
}

// normalizeMySQLDSN accepts JDBC style URLs (jdbc:mysql://host/db?useSSL=...)
// and rewrites them into go-sql-driver syntax. Native DSNs pass through.
func normalizeMySQLDSN(input, userOverride, passOverride string) string {
	in := strings.TrimSpace(input)
	if in == "" {
		return in
	}
	in = strings.TrimPrefix(in, "jdbc:")
	if !strings.HasPrefix(in, "mysql://") {
		return in
	}

	u, err := url.Parse(in)
	if err != nil {
		return in
	}

	var user, pass string
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}
	q := u.Query()
	if v := q.Get("user"); v != "" {
		user = v
	}
	if v := q.Get("password"); v != "" {
		pass = v
	}
	q.Del("user")
	q.Del("password")
	if userOverride != "" {
		user = userOverride
	}
	if passOverride != "" {
		pass = passOverride
	}

	if q.Get("characterEncoding") != "" && q.Get("charset") == "" {
		q.Set("charset", q.Get("characterEncoding"))
	}
	q.Del("characterEncoding")
	q.Del("useUnicode")
	q.Del("zeroDateTimeBehavior")

	if v := strings.ToLower(q.Get("useSSL")); v != "" {
		switch v {
		case "true", "1":
			q.Set("tls", "true")
		case "skip-verify", "preferred":
			q.Set("tls", v)
		default:
			q.Set("tls", "false")
		}
		q.Del("useSSL")
	}
	if tz := q.Get("serverTimezone"); tz != "" {
		q.Set("loc", tz)
		q.Del("serverTimezone")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "true")
	}
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}

	cred := user
	if pass != "" {
		cred += ":" + pass
	}
	if cred != "" {
		cred += "@"
	}
	dsn := fmt.Sprintf("%stcp(%s)/%s", cred, u.Host, strings.TrimPrefix(u.Path, "/"))
	if enc := q.Encode(); enc != "" {
		dsn += "?" + enc
	}
	return dsn
}
