package core

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env          string
		Build        string
		AppName      string
		Debug        bool
		TestMode     bool
		SecretKey    string
		RollbarToken string

		Server     ServerConfig
		Database   DatabaseConfig
		Session    SessionConfig
		Uploads    UploadsConfig
		Export     ExportConfig
		Pagination PaginationConfig
	}

	ServerConfig struct {
		Address         string
		DebugAddress    string
		Host            string
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
	}

	DatabaseConfig struct {
		Engine       string // postgres | mysql
		Host         string
		Port         string
		User         string
		Password     string
		Name         string
		DisableTLS   bool
		MaxOpenConns int
		AutoMigrate  bool
	}

	SessionConfig struct {
		Store      string // memory | redis
		CookieName string
		RedisAddr  string
		RedisDB    int
	}

	UploadsConfig struct {
		Dir               string
		URLPrefix         string
		AllowedExtensions []string
	}

	ExportConfig struct {
		Path string
	}

	PaginationConfig struct {
		PageSize int
	}
)

func (db DatabaseConfig) Address() string {
	return net.JoinHostPort(db.Host, db.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "MiniCRM")
	v.SetDefault("secretKey", "9x!kq2$wz@m4vt7(ra+e0ul&h=c1p5nd8j*g3yb6s)f")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("build", "dev")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugAddress", ":4000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.shutdownTimeout", 10*time.Second)
	v.SetDefault("server.disableReqLogs", false)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "minicrm")
	v.SetDefault("database.password", "minicrm")
	v.SetDefault("database.name", "minicrm")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.maxOpenConns", 10)
	v.SetDefault("database.autoMigrate", true)

	v.SetDefault("session.store", "memory")
	v.SetDefault("session.cookieName", "minicrm_session")
	v.SetDefault("session.redisAddr", "localhost:6379")
	v.SetDefault("session.redisDB", 0)

	v.SetDefault("uploads.dir", filepath.Join("static", "uploads"))
	v.SetDefault("uploads.urlPrefix", "uploads")
	v.SetDefault("uploads.allowedExtensions", []string{"png", "jpg", "jpeg", "gif"})

	v.SetDefault("export.path", filepath.Join("static", "students_export.csv"))
	v.SetDefault("pagination.pageSize", 5)
}

// NewConfig reads the configuration of the running environment.
// ENV selects the environment: DEV (local; default), TEST, QA or PROD.
// Variables are read with the environment as prefix, e.g. DEV_DATABASE_HOST.
func NewConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	if root, err := Getwd(); err == nil {
		dotEnvPath := filepath.Join(root, "config", ".env."+strings.ToLower(env))
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "stat %s", dotEnvPath)
		}
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:          env,
		Build:        v.GetString("build"),
		AppName:      v.GetString("appName"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Address:         v.GetString("server.address"),
			DebugAddress:    v.GetString("server.debugAddress"),
			Host:            v.GetString("server.host"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			DisableReqLogs:  v.GetBool("server.disableReqLogs"),
		},
		Database: DatabaseConfig{
			Engine:       v.GetString("database.engine"),
			Host:         v.GetString("database.host"),
			Port:         v.GetString("database.port"),
			User:         v.GetString("database.user"),
			Password:     v.GetString("database.password"),
			Name:         v.GetString("database.name"),
			DisableTLS:   v.GetBool("database.disableTLS"),
			MaxOpenConns: v.GetInt("database.maxOpenConns"),
			AutoMigrate:  v.GetBool("database.autoMigrate"),
		},
		Session: SessionConfig{
			Store:      v.GetString("session.store"),
			CookieName: v.GetString("session.cookieName"),
			RedisAddr:  v.GetString("session.redisAddr"),
			RedisDB:    v.GetInt("session.redisDB"),
		},
		Uploads: UploadsConfig{
			Dir:               v.GetString("uploads.dir"),
			URLPrefix:         v.GetString("uploads.urlPrefix"),
			AllowedExtensions: v.GetStringSlice("uploads.allowedExtensions"),
		},
		Export: ExportConfig{
			Path: v.GetString("export.path"),
		},
		Pagination: PaginationConfig{
			PageSize: v.GetInt("pagination.pageSize"),
		},
	}
	if err := conf.validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (conf *Config) validate() error {
	switch conf.Database.Engine {
	case "postgres", "mysql":
	default:
		return fmt.Errorf("config: unsupported database engine %q", conf.Database.Engine)
	}
	switch conf.Session.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: unsupported session store %q", conf.Session.Store)
	}
	if conf.Pagination.PageSize < 1 {
		return fmt.Errorf("config: page size must be positive (got %d)", conf.Pagination.PageSize)
	}
	if !conf.Debug && !conf.TestMode && conf.SecretKey == "" {
		return errors.New("config: secretKey is required")
	}
	return nil
}
