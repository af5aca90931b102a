package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "TASKBOARD"

const RepoPostgres = "postgres"
const RepoInMemory = "inmemory"

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Repository RepositoryConfig `mapstructure:"repository"`
	Auth       AuthConfig       `mapstructure:"auth"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Worker     WorkerConfig     `mapstructure:"worker"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimit       int           `mapstructure:"rate_limit"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MinConnections int           `mapstructure:"min_connections"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
}

type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

type RepositoryConfig struct {
	Type string `mapstructure:"type"` // "postgres" or "inmemory"
}

type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	GoogleClientID string        `mapstructure:"google_client_id"`
	TokenTTL       time.Duration `mapstructure:"token_ttl"`
	CookieName     string        `mapstructure:"cookie_name"`
}

type CORSConfig struct {
	FrontendURL    string   `mapstructure:"frontend_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Addr      string `mapstructure:"addr"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type WorkerConfig struct {
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// legacyEnv lists the plain variable names the deployment already uses.
var legacyEnv = map[string][]string{
	"app.env":               {"APP_ENV", "NODE_ENV"},
	"server.port":           {"PORT"},
	"database.url":          {"DB_URI", "DATABASE_URL"},
	"auth.jwt_secret":       {"JWT_SECRET"},
	"auth.google_client_id": {"GOOGLE_CLIENT_ID"},
	"cors.frontend_url":     {"FRONTEND_URL"},
	"redis.addr":            {"REDIS_ADDR"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "5001")
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.rate_limit", 100)
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 2)
	v.SetDefault("database.idle_timeout", 5*time.Minute)
	v.SetDefault("logging.development", true)
	v.SetDefault("repository.type", RepoPostgres)
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.cookie_name", "Authtoken")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:4173"})
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.key_prefix", "taskboard:revoked:")
	v.SetDefault("worker.sweep_interval", 10*time.Minute)
}

// Load reads the config file (config.yml in the working directory when path
// is empty) and overlays environment variables. A missing default file is not
// an error; a missing explicit file is.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(append([]string{key, prefixed}, names...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("config: auth.jwt_secret (JWT_SECRET) is required")
	}
	if c.Auth.GoogleClientID == "" {
		return errors.New("config: auth.google_client_id (GOOGLE_CLIENT_ID) is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("config: auth.token_ttl must be positive")
	}
	switch c.Repository.Type {
	case RepoPostgres:
		if c.Database.URL == "" {
			return errors.New("config: database.url (DB_URI) is required for the postgres repository")
		}
	case RepoInMemory:
	default:
		return fmt.Errorf("config: unknown repository.type %q", c.Repository.Type)
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("config: redis.addr is required when redis is enabled")
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "production")
}

// Origins returns the configured CORS origins plus the frontend URL.
func (c *Config) Origins() []string {
	origins := slices.Clone(c.CORS.AllowedOrigins)
	if c.CORS.FrontendURL != "" && !slices.Contains(origins, c.CORS.FrontendURL) {
		origins = append([]string{c.CORS.FrontendURL}, origins...)
	}
	return origins
}
