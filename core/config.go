package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// storage & session backends
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"

	SessionStoreDatabase = "database"
	SessionStoreRedis    = "redis"
	SessionStoreMemory   = "memory"
)

type (
	ServerConfig struct {
		Host            string
		Address         string
		DebugHost       string
		ShutdownTimeout time.Duration
		SessionTimeout  time.Duration
		SecureCookies   bool
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
		MaxOpenConns  int
	}

	SessionConfig struct {
		Store         string
		RedisAddr     string
		RedisPassword string
		RedisDB       int
	}

	Config struct {
		Env                       string // DEV (local; default), TEST, QA, PROD
		Build                     string
		Debug                     bool
		TestMode                  bool
		AppName                   string
		SecretKey                 string
		FrontendBaseURL           string
		RollbarToken              string
		SendgridAPIKey            string
		PasswordResetTimeoutDelta time.Duration
		Storage                   string

		defaultFromEmail string

		Server   ServerConfig
		Database DatabaseConfig
		Session  SessionConfig
	}
)

// DefaultFromEmail parses the configured sender; falls back to a bare address.
func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: c.defaultFromEmail}
	}
	return *addr
}

// Address returns the database "host:port".
func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// NewConfig loads the configuration from defaults, the optional `config/.env.<env>` file and the environment.
// Environment variables are prefixed with the env name, eg. DEV_DATABASE_HOST, PROD_SECRET_KEY.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("app_name", "Tempo")
	v.SetDefault("secret_key", "k1x!8b@t3mp0-d4nc3-sch00l-s3cr3t-pl34s3-ch4ng3")
	v.SetDefault("default_from_email", "Tempo <noreply@localhost>")
	v.SetDefault("frontend_base_url", "http://localhost:8000")
	v.SetDefault("rollbar_token", "")
	v.SetDefault("sendgrid_api_key", "")
	v.SetDefault("password_reset_timeout_delta", 3*24*time.Hour)
	v.SetDefault("storage", StoragePostgres)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debug_host", "localhost:4000")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.session_timeout", 30*time.Minute)
	v.SetDefault("server.secure_cookies", false)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "tempo")
	v.SetDefault("database.user", "tempo")
	v.SetDefault("database.password", "tempo")
	v.SetDefault("database.admin_user", "")
	v.SetDefault("database.admin_password", "")
	v.SetDefault("database.disable_tls", true)
	v.SetDefault("database.max_open_conns", 10)

	v.SetDefault("session.store", SessionStoreDatabase)
	v.SetDefault("session.redis_addr", "localhost:6379")
	v.SetDefault("session.redis_password", "")
	v.SetDefault("session.redis_db", 0)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("test_mode", true)
	case "PROD":
		v.SetDefault("debug", false)
		v.SetDefault("server.secure_cookies", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:                       env,
		Build:                     v.GetString("build"),
		Debug:                     v.GetBool("debug"),
		TestMode:                  v.GetBool("test_mode"),
		AppName:                   v.GetString("app_name"),
		SecretKey:                 v.GetString("secret_key"),
		FrontendBaseURL:           strings.TrimRight(v.GetString("frontend_base_url"), "/"),
		RollbarToken:              v.GetString("rollbar_token"),
		SendgridAPIKey:            v.GetString("sendgrid_api_key"),
		PasswordResetTimeoutDelta: v.GetDuration("password_reset_timeout_delta"),
		Storage:                   strings.ToLower(v.GetString("storage")),
		defaultFromEmail:          v.GetString("default_from_email"),
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Address:         v.GetString("server.address"),
			DebugHost:       v.GetString("server.debug_host"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
			SessionTimeout:  v.GetDuration("server.session_timeout"),
			SecureCookies:   v.GetBool("server.secure_cookies"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          strconv.Itoa(v.GetInt("database.port")),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.admin_user"),
			AdminPassword: v.GetString("database.admin_password"),
			DisableTLS:    v.GetBool("database.disable_tls"),
			MaxOpenConns:  v.GetInt("database.max_open_conns"),
		},
		Session: SessionConfig{
			Store:         strings.ToLower(v.GetString("session.store")),
			RedisAddr:     v.GetString("session.redis_addr"),
			RedisPassword: v.GetString("session.redis_password"),
			RedisDB:       v.GetInt("session.redis_db"),
		},
	}
}

// NewTestConfig returns a Config suitable for tests: memory storage, no external services.
func NewTestConfig() *Config {
	return &Config{
		Env:                       "TEST",
		Build:                     "test",
		TestMode:                  true,
		AppName:                   "Tempo",
		SecretKey:                 "secret",
		FrontendBaseURL:           "http://localhost:8000",
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		Storage:                   StorageMemory,
		defaultFromEmail:          "noreply@localhost",
		Server: ServerConfig{
			Host:            "localhost",
			ShutdownTimeout: time.Second,
			SessionTimeout:  30 * time.Minute,
		},
		Session: SessionConfig{Store: SessionStoreMemory},
	}
}
