package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"campaignhub/internal/pkg/jwt"
)

const (
	defaultJWTSecret   = "change-me-jwt-secret"
	defaultMaxFileSize = 50 * 1024 * 1024
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Mapbox    MapboxConfig    `mapstructure:"mapbox"`
	Upload    UploadConfig    `mapstructure:"upload"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"loglevel"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ShutdownTimeout time.Duration `mapstructure:"shutdowntimeout"`
	CORSOrigins     string        `mapstructure:"corsorigins"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type JWTConfig struct {
	Secret    string        `mapstructure:"secret"`
	Algorithm string        `mapstructure:"algorithm"`
	AccessTTL time.Duration `mapstructure:"accessttl"`
	ResetTTL  time.Duration `mapstructure:"resetttl"`
	Issuer    string        `mapstructure:"issuer"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	ListTTL  time.Duration `mapstructure:"listttl"`
}

type StorageConfig struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"accesskeyid"`
	SecretAccessKey string `mapstructure:"secretaccesskey"`
	Endpoint        string `mapstructure:"endpoint"`
	UsePathStyle    bool   `mapstructure:"usepathstyle"`
	LocalDir        string `mapstructure:"localdir"`
	LocalURLPrefix  string `mapstructure:"localurlprefix"`
}

// S3Enabled reports whether enough settings are present to talk to S3.
func (s StorageConfig) S3Enabled() bool {
	return s.Bucket != "" && s.AccessKeyID != "" && s.SecretAccessKey != ""
}

type MapboxConfig struct {
	AccessToken string        `mapstructure:"accesstoken"`
	BaseURL     string        `mapstructure:"baseurl"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type UploadConfig struct {
	MaxFileSize int64 `mapstructure:"maxfilesize"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

// Load reads an optional .env file, an optional config.yaml and the
// environment. Environment keys use underscores, e.g. JWT_SECRET or REDIS_ADDR.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return load("config")
}

func load(configDir string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.App.Env = strings.ToLower(strings.TrimSpace(cfg.App.Env))
	cfg.JWT.Secret = strings.TrimSpace(cfg.JWT.Secret)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "campaignhub")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.loglevel", "info")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.shutdowntimeout", "10s")
	v.SetDefault("server.corsorigins", "")

	v.SetDefault("database.url", "campaignhub.db")

	v.SetDefault("jwt.secret", defaultJWTSecret)
	v.SetDefault("jwt.algorithm", "HS256")
	v.SetDefault("jwt.accessttl", "30m")
	v.SetDefault("jwt.resetttl", "1h")
	v.SetDefault("jwt.issuer", "campaignhub")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "campaigns_api")
	v.SetDefault("redis.listttl", "300s")

	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.accesskeyid", "")
	v.SetDefault("storage.secretaccesskey", "")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.usepathstyle", false)
	v.SetDefault("storage.localdir", "./uploads")
	v.SetDefault("storage.localurlprefix", "/uploads")

	v.SetDefault("mapbox.accesstoken", "")
	v.SetDefault("mapbox.baseurl", "https://api.mapbox.com")
	v.SetDefault("mapbox.timeout", "10s")

	v.SetDefault("upload.maxfilesize", defaultMaxFileSize)

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.rps", 5)
	v.SetDefault("ratelimit.burst", 10)
}

// bindLegacyEnv accepts the conventional names used by deployment tooling.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("database.url", "DATABASE_URL")
	_ = v.BindEnv("app.env", "APP_ENV", "ENV")
	_ = v.BindEnv("jwt.accessttl", "JWT_ACCESS_TTL", "JWT_ACCESSTTL")
	_ = v.BindEnv("storage.accesskeyid", "AWS_ACCESS_KEY_ID", "STORAGE_ACCESSKEYID")
	_ = v.BindEnv("storage.secretaccesskey", "AWS_SECRET_ACCESS_KEY", "STORAGE_SECRETACCESSKEY")
	_ = v.BindEnv("storage.bucket", "S3_BUCKET", "STORAGE_BUCKET")
	_ = v.BindEnv("storage.region", "AWS_REGION", "STORAGE_REGION")
	_ = v.BindEnv("mapbox.accesstoken", "MAPBOX_ACCESS_TOKEN", "MAPBOX_ACCESSTOKEN")
	_ = v.BindEnv("upload.maxfilesize", "MAX_FILE_SIZE", "UPLOAD_MAXFILESIZE")
}

func validateConfig(cfg *Config) error {
	if cfg.JWT.AccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}
	if cfg.JWT.ResetTTL <= 0 {
		return fmt.Errorf("JWT_RESETTTL must be > 0")
	}
	if !jwt.SupportedAlgorithm(cfg.JWT.Algorithm) {
		return fmt.Errorf("JWT_ALGORITHM must be one of: HS256, HS384, HS512")
	}
	if cfg.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be > 0")
	}
	if cfg.Redis.ListTTL <= 0 {
		return fmt.Errorf("REDIS_LISTTTL must be > 0")
	}
	if cfg.Mapbox.Timeout <= 0 {
		return fmt.Errorf("MAPBOX_TIMEOUT must be > 0")
	}
	if strings.TrimSpace(cfg.Database.URL) == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}

	if IsProdLike(cfg.App.Env) {
		if isEmptyOrDefault(cfg.JWT.Secret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
	}

	return nil
}

func IsProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}
