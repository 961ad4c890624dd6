package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "github.com/readmanga/server/cmd/server/docs" // swagger docs
	"github.com/readmanga/server/internal/module/auth"
	"github.com/readmanga/server/internal/module/catalog"
	"github.com/readmanga/server/internal/module/favorite"
	"github.com/readmanga/server/internal/module/user"
	sharedcache "github.com/readmanga/server/internal/shared/cache"
	"github.com/readmanga/server/internal/shared/config"
	"github.com/readmanga/server/internal/shared/database"
	"github.com/readmanga/server/internal/shared/logger"
	"github.com/readmanga/server/internal/shared/metrics"
	"github.com/readmanga/server/internal/shared/middleware"
	"github.com/redis/go-redis/v9"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const metricsNamespace = "readmanga"

// App represents the application.
type App struct {
	config    *config.Config
	db        *gorm.DB
	redis     redis.UniversalClient
	router    *gin.Engine
	logger    *logger.Logger
	zapLogger *zap.Logger
	registry  *prometheus.Registry
	metrics   *metrics.Metrics

	limiter        middleware.Limiter
	authMiddleware *auth.Middleware

	catalogService  *catalog.Service
	catalogHandler  *catalog.Handler
	userHandler     *user.Handler
	favoriteHandler *favorite.Handler
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	zapLog, err := logger.NewZapLogger(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("init zap logger: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app := &App{
		config:    cfg,
		logger:    log,
		zapLogger: zapLog,
		registry:  registry,
		metrics:   metrics.New(metricsNamespace, registry),
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	app.db = db

	if err := database.Migrate(db, &user.User{}, &favorite.Favorite{}); err != nil {
		return nil, err
	}

	// Redis only backs rate limiting, so the server runs without it.
	if cfg.Redis.Address != "" {
		redisClient, err := sharedcache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Warn("redis unavailable, rate limiting disabled", logger.Err(err))
		} else {
			app.redis = redisClient
			app.limiter = auth.NewRateLimiter(redisClient)
		}
	}

	if err := app.initModules(); err != nil {
		return nil, fmt.Errorf("init modules: %w", err)
	}

	app.router = app.setupRouter()
	app.registerRoutes()

	return app, nil
}

func (a *App) setupRouter() *gin.Engine {
	if a.config.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger))
	r.Use(middleware.CORS(a.config.Server.FrontendURL))
	r.Use(middleware.Metrics(a.metrics))

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	r.NoRoute(middleware.NotFound())

	return r
}

func (a *App) initModules() error {
	if err := a.initCatalogModule(); err != nil {
		return fmt.Errorf("catalog module: %w", err)
	}
	if err := a.initAccountModules(); err != nil {
		return fmt.Errorf("account modules: %w", err)
	}
	a.initFavoriteModule()
	return nil
}

func (a *App) initCatalogModule() error {
	cfg := &a.config.Catalog
	if cfg.CacheTTL <= 0 {
		return fmt.Errorf("cache ttl must be positive")
	}

	cache := catalog.NewCache(cfg.CacheTTLDuration(), catalog.WithEvictHook(func(string) {
		a.metrics.RecordCacheEviction("catalog")
	}))
	client := catalog.NewHTTPClient(cfg, a.metrics, a.zapLogger)

	a.catalogService = catalog.NewService(client, cache, cfg.CoverBaseURL, a.metrics, a.zapLogger)
	a.catalogHandler = catalog.NewHandler(a.catalogService, a.config.IsDevelopment())

	a.zapLogger.Info("catalog cache ready",
		zap.Duration("ttl", cache.TTL()),
		zap.String("upstream", cfg.BaseURL),
	)
	return nil
}

func (a *App) initAccountModules() error {
	secret := a.config.Auth.JWTSecret
	if secret == "" {
		// Only reachable in development; see config.Validate.
		secret = "readmanga-development-secret"
		a.zapLogger.Warn("auth.jwt_secret not set, using development secret")
	}

	jwt := auth.NewJWTManager(&auth.JWTConfig{
		Secret:      secret,
		TokenExpiry: a.config.Auth.TokenExpiry,
		Issuer:      a.config.Auth.Issuer,
	})

	userService := user.NewService(user.NewRepository(a.db), jwt, a.metrics, a.zapLogger.Named("user"))
	a.userHandler = user.NewHandler(userService)
	a.authMiddleware = auth.NewMiddleware(jwt, userService, a.zapLogger)
	return nil
}

func (a *App) initFavoriteModule() {
	service := favorite.NewService(
		favorite.NewRepository(a.db),
		a.catalogService,
		a.zapLogger.Named("favorite"),
	)
	a.favoriteHandler = favorite.NewHandler(service)
}

func (a *App) registerRoutes() {
	rl := a.config.RateLimit

	api := a.router.Group("/api")
	api.Use(middleware.RateLimit(a.limiter, middleware.RateLimitConfig{
		Prefix: "global",
		Limit:  rl.GlobalLimit,
		Window: rl.GlobalWindow,
	}, a.logger))

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":   "Read-Manga API is running",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	catalogLimit := middleware.RateLimit(a.limiter, middleware.RateLimitConfig{
		Prefix:  "catalog",
		Limit:   rl.CatalogLimit,
		Window:  rl.CatalogWindow,
		Message: "Too many catalog requests, please slow down.",
	}, a.logger)

	requireAuth := a.authMiddleware.RequireAuth()

	a.catalogHandler.RegisterRoutes(api, catalogLimit, a.authMiddleware.OptionalAuth())
	a.userHandler.RegisterRoutes(api, requireAuth)
	a.favoriteHandler.RegisterRoutes(api, requireAuth)
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Stop releases the application's resources.
func (a *App) Stop() {
	if a.redis != nil {
		_ = a.redis.Close()
	}

	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			a.logger.Warn("close database", logger.Err(err))
		}
	}

	if a.zapLogger != nil {
		_ = a.zapLogger.Sync()
	}
}
