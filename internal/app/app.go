package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"campaignhub/internal/cache"
	"campaignhub/internal/config"
	"campaignhub/internal/database"
	"campaignhub/internal/middleware"
	"campaignhub/internal/modules/auth"
	"campaignhub/internal/modules/campaign"
	"campaignhub/internal/modules/geolocation"
	"campaignhub/internal/modules/media"
	"campaignhub/internal/pkg/jwt"
	"campaignhub/internal/pkg/response"
	"campaignhub/internal/repository"
	"campaignhub/internal/storage"
)

// App owns the process wide handles. Build it once with New and release it
// with Close.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *gorm.DB
	Router *gin.Engine

	redis   *redis.Client
	limiter *middleware.IPRateLimiter
	done    chan struct{}
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := NewLogger(cfg.App)
	slog.SetDefault(logger)

	db, err := database.Connect(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("migrate: %w", err)
	}

	a := &App{
		Config: cfg,
		Logger: logger,
		DB:     db,
		done:   make(chan struct{}),
	}

	c := a.connectCache(ctx)

	store, err := newStorage(ctx, cfg.Storage)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	tokens := jwt.New(cfg.JWT.Secret, cfg.JWT.AccessTTL,
		jwt.WithAlgorithm(cfg.JWT.Algorithm),
		jwt.WithIssuer(cfg.JWT.Issuer),
		jwt.WithResetTTL(cfg.JWT.ResetTTL),
	)

	users := repository.NewUserRepository(db)
	campaigns := repository.NewCampaignRepository(db)
	files := repository.NewMediaRepository(db)
	keys := cache.NewKeys(cfg.Redis.Prefix)

	authService := auth.NewService(users, tokens, logger)
	campaignService := campaign.NewService(campaigns, c, keys, cfg.Redis.ListTTL, logger)
	mediaService := media.NewService(files, campaigns, store, c, keys, media.Config{
		MaxFileSize: cfg.Upload.MaxFileSize,
		ListTTL:     cfg.Redis.ListTTL,
	}, logger)
	geoService := geolocation.NewService(
		geolocation.NewMapboxClient(cfg.Mapbox.AccessToken, cfg.Mapbox.BaseURL, cfg.Mapbox.Timeout),
		logger,
	)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))

	if local, ok := store.(*storage.LocalStorage); ok {
		r.Static(cfg.Storage.LocalURLPrefix, local.BaseDir())
	}

	r.GET("/health", a.health)

	var limit gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		a.limiter = middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
		go a.limiter.Run(a.done)
		limit = a.limiter.Middleware()
	}

	v1 := r.Group("/api/v1")
	authHandler := auth.NewHandler(authService, !config.IsProdLike(cfg.App.Env))
	authHandler.RegisterPublicRoutes(v1, limit)

	protected := v1.Group("")
	protected.Use(middleware.JWTAuth(tokens))
	{
		authHandler.RegisterProtectedRoutes(protected)
		campaign.NewHandler(campaignService).RegisterRoutes(protected)
		media.NewHandler(mediaService).RegisterRoutes(protected)
		geolocation.NewHandler(geoService).RegisterRoutes(protected)
	}

	a.Router = r
	logger.Info("application initialized",
		slog.String("env", cfg.App.Env),
		slog.String("cache", a.cacheMode()),
		slog.Bool("s3", cfg.Storage.S3Enabled()),
	)
	return a, nil
}

// connectCache falls back to cache.Noop when redis is disabled or unreachable.
func (a *App) connectCache(ctx context.Context) cache.Cache {
	if !a.Config.Redis.Enabled {
		return cache.Noop{}
	}

	client, err := cache.Connect(ctx, a.Config.Redis.Addr, a.Config.Redis.Password, a.Config.Redis.DB)
	if err != nil {
		a.Logger.Warn("redis unavailable, caching disabled", slog.String("error", err.Error()))
		return cache.Noop{}
	}
	a.redis = client
	return cache.NewRedisCache(client, a.Logger)
}

func newStorage(ctx context.Context, cfg config.StorageConfig) (storage.Storage, error) {
	if !cfg.S3Enabled() {
		return storage.NewLocalStorage(cfg.LocalDir, cfg.LocalURLPrefix), nil
	}

	s, err := storage.NewS3Storage(ctx, storage.S3Config{
		Bucket:          cfg.Bucket,
		Region:          cfg.Region,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		Endpoint:        cfg.Endpoint,
		UsePathStyle:    cfg.UsePathStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 storage: %w", err)
	}
	return s, nil
}

func (a *App) cacheMode() string {
	if a.redis != nil {
		return "redis"
	}
	return "disabled"
}

func (a *App) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "ok"
	if sqlDB, err := a.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		dbStatus = "unavailable"
	}

	cacheStatus := a.cacheMode()
	if a.redis != nil && a.redis.Ping(ctx).Err() != nil {
		cacheStatus = "unavailable"
	}

	code, status := http.StatusOK, "healthy"
	if dbStatus != "ok" {
		code, status = http.StatusServiceUnavailable, "degraded"
	}
	response.Success(c, code, gin.H{
		"status":   status,
		"database": dbStatus,
		"cache":    cacheStatus,
	})
}

// Close stops background work and releases redis and the database.
func (a *App) Close() error {
	select {
	case <-a.done:
	default:
		close(a.done)
	}

	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, database.Close(a.DB))
	}
	return errors.Join(errs...)
}

// NewLogger builds a JSON logger in prod-like environments and a text logger
// otherwise.
func NewLogger(cfg config.AppConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(cfg.LogLevel))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if config.IsProdLike(cfg.Env) {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(h).With(slog.String("app", cfg.Name))
}
