package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"anime-tracker-backend/docs"
	"anime-tracker-backend/internal/common/cache"
	"anime-tracker-backend/internal/common/config"
	"anime-tracker-backend/internal/common/logger"
	"anime-tracker-backend/internal/common/middleware"
	catalogHTTP "anime-tracker-backend/internal/features/catalog/delivery/http"
	catalogService "anime-tracker-backend/internal/features/catalog/service"
	recHTTP "anime-tracker-backend/internal/features/recommendation/delivery/http"
	recModels "anime-tracker-backend/internal/features/recommendation/models"
	recRepo "anime-tracker-backend/internal/features/recommendation/repository"
	recBadger "anime-tracker-backend/internal/features/recommendation/repository/badger"
	recRedis "anime-tracker-backend/internal/features/recommendation/repository/redis"
	recService "anime-tracker-backend/internal/features/recommendation/service"
	userHTTP "anime-tracker-backend/internal/features/user/delivery/http"
	userModels "anime-tracker-backend/internal/features/user/models"
	userRepo "anime-tracker-backend/internal/features/user/repository"
	userBadger "anime-tracker-backend/internal/features/user/repository/badger"
	userRedis "anime-tracker-backend/internal/features/user/repository/redis"
	userService "anime-tracker-backend/internal/features/user/service"
	badgerdb "anime-tracker-backend/internal/platform/badger"
	"anime-tracker-backend/internal/platform/jikan"
	redisplatform "anime-tracker-backend/internal/platform/redis"
	"anime-tracker-backend/internal/platform/storage"
	"anime-tracker-backend/internal/platform/telegram"
	"anime-tracker-backend/internal/workers"
)

// @title           Anime Tracker API
// @version         1.0
// @description     Backend of the anime tracker Telegram Mini App: watch lists, recommendations and the Jikan catalog.
// @BasePath        /api

// @securityDefinitions.apikey TelegramInitData
// @in header
// @name X-Telegram-Init-Data
// @description Telegram Mini App init-data string

// @tag.name users
// @tag.description Users, watch lists and avatars

// @tag.name recommendations
// @tag.description Recommendations between users

// @tag.name catalog
// @tag.description Jikan catalog proxy

// stores собирает всё, что зависит от выбранного драйвера хранилища
type stores struct {
	users     userRepo.UserRepository
	recs      recRepo.RecommendationRepository
	cache     cache.Store
	publisher recService.EventPublisher
	ping      func(ctx context.Context) error
	startBg   func(ctx context.Context)
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger.Init("anime-tracker-backend", cfg.Debug)
	logger.Info().
		Str("version", docs.SwaggerInfo.Version).
		Str("store", cfg.Store.Driver).
		Msg("Starting Anime Tracker Backend")

	if err := userModels.RegisterValidators(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to register user validators")
	}
	if err := recModels.RegisterValidators(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to register recommendation validators")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bot := telegram.NewClient(cfg.Telegram.BotToken)

	st, err := openStores(ctx, cfg, bot)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open store")
	}
	defer st.close()

	avatars, err := storage.NewLocalStore(cfg.Uploads.Dir, cfg.Uploads.URLPrefix, cfg.Uploads.MaxBytes)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to prepare uploads directory")
	}

	// Инициализируем сервисы
	userSvc := userService.NewUserService(st.users, avatars)
	recSvc := recService.NewRecommendationService(st.recs, userSvc, st.publisher, cfg.Recommendations.PageSize)
	jikanClient := jikan.NewClient(jikan.Config{
		BaseURL:           cfg.Catalog.BaseURL,
		Timeout:           cfg.Catalog.Timeout,
		RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
	})
	catalogSvc := catalogService.NewCatalogService(jikanClient, cache.NewCacheService(st.cache), cfg.Catalog.CacheTTL, cfg.Catalog.SearchLimit)

	logger.Info().Msg("Services initialized")

	st.startBg(ctx)

	router := newRouter(cfg, st.ping, jikanClient.BreakerState)
	api := router.Group(cfg.Server.APIPrefix)
	userHTTP.NewUserHandler(userSvc).RegisterRoutes(api)
	recHTTP.NewRecommendationHandler(recSvc).RegisterRoutes(api)
	catalogHTTP.NewCatalogHandler(catalogSvc).RegisterRoutes(api)

	docs.SwaggerInfo.BasePath = cfg.Server.APIPrefix

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}

func openStores(ctx context.Context, cfg *config.Config, bot *telegram.Client) (*stores, error) {
	switch cfg.Store.Driver {
	case config.DriverBadger:
		return openBadger(ctx, cfg)
	default:
		return openRedis(ctx, cfg, bot)
	}
}

func openRedis(ctx context.Context, cfg *config.Config, bot *telegram.Client) (*stores, error) {
	rc, err := redisplatform.Open(ctx, redisplatform.Options{
		Addr:            cfg.RedisAddr(),
		Password:        cfg.Redis.Password,
		DB:              cfg.Redis.DB,
		ConnectAttempts: cfg.Store.ConnectAttempts,
		ConnectDelay:    cfg.Store.ConnectDelay,
	})
	if err != nil {
		return nil, err
	}
	logger.Info().Str("addr", cfg.RedisAddr()).Msg("Redis connection established")

	st := &stores{
		users:     userRedis.NewUserRepository(rc.Client, cfg.Store.UpdateRetries),
		recs:      recRedis.NewRecommendationRepository(rc.Client, cfg.Store.UpdateRetries),
		cache:     cache.NewRedisStore(rc.Client, "cache:catalog:"),
		publisher: workers.NewStreamPublisher(rc.Client, cfg.Recommendations.StreamKey),
		ping:      rc.Ping,
		startBg:   func(context.Context) {},
		close:     func() { _ = rc.Close() },
	}

	switch {
	case !cfg.Recommendations.NotifyEnabled:
		logger.Info().Msg("Recommendation notifications disabled")
	case !bot.Enabled():
		logger.Warn().Msg("BOT_TOKEN is empty, recommendation notifications disabled")
	default:
		worker := workers.NewRedisStreamWorker(rc.Client, bot, cfg.Recommendations.StreamKey)
		st.startBg = func(ctx context.Context) { go worker.Start(ctx) }
	}

	return st, nil
}

func openBadger(ctx context.Context, cfg *config.Config) (*stores, error) {
	db, err := badgerdb.Open(ctx, badgerdb.Options{
		Path:            cfg.Badger.Path,
		InMemory:        cfg.Badger.InMemory,
		ConnectAttempts: cfg.Store.ConnectAttempts,
		ConnectDelay:    cfg.Store.ConnectDelay,
	})
	if err != nil {
		return nil, err
	}
	logger.Info().Str("path", cfg.Badger.Path).Bool("in_memory", cfg.Badger.InMemory).Msg("Badger opened")

	// без Redis некому доставлять события, уведомления отключены
	logger.Warn().Msg("Recommendation notifications require the redis store driver")

	return &stores{
		users:     userBadger.NewUserRepository(db, cfg.Store.UpdateRetries),
		recs:      recBadger.NewRecommendationRepository(db, cfg.Store.UpdateRetries),
		cache:     cache.NewBadgerStore(db, "cache:catalog:"),
		publisher: workers.NoopPublisher{},
		ping:      func(context.Context) error { return badgerdb.Ping(db) },
		startBg:   func(ctx context.Context) { go runBadgerGC(ctx, db) },
		close:     func() { _ = db.Close() },
	}, nil
}

// runBadgerGC периодически чистит value log
func runBadgerGC(ctx context.Context, db *badger.DB) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for db.RunValueLogGC(0.5) == nil {
			}
		}
	}
}

// newRouter wires middleware and service routes. Readiness follows the
// store only; an open catalog breaker is reported but does not fail it.
func newRouter(cfg *config.Config, ping func(ctx context.Context) error, catalogState func() string) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.Uploads.MaxBytes

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.Server.Origin == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Content-Type", "Authorization", "Accept",
		middleware.InitDataHeader, "init_data", middleware.DevIdentityHeader,
	}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	router.Use(middleware.TelegramIdentity(middleware.IdentityOptions{
		BotToken:       cfg.Telegram.BotToken,
		InitDataTTL:    cfg.Telegram.InitDataTTL,
		AllowDevHeader: cfg.Debug && cfg.Telegram.AllowDevIdentity,
	}))

	router.Static(cfg.Uploads.URLPrefix, cfg.Uploads.Dir)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "anime-tracker-backend",
		})
	})

	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   cfg.Store.Driver + " unavailable",
				"details": err.Error(),
				"catalog": catalogState(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   "anime-tracker-backend",
			"catalog":   catalogState(),
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.NoRoute(middleware.NotFound())

	return router
}
