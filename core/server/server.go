package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"meeting-slot-api/core/cache"
	"meeting-slot-api/core/config"
	"meeting-slot-api/core/constants"
	"meeting-slot-api/core/database"
	"meeting-slot-api/core/logger"
	"meeting-slot-api/core/metrics"
	"meeting-slot-api/core/middleware"
	"meeting-slot-api/core/queue"
	"meeting-slot-api/core/storage"
	"meeting-slot-api/modules/extraction"
	"meeting-slot-api/modules/scheduling"
	schedulingservice "meeting-slot-api/modules/scheduling/service"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run loads config, wires every dependency, serves HTTP and blocks until SIGINT/SIGTERM.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(os.Stdout, cfg.LogLevel)

	defaults := scheduling.DefaultPreferences(cfg.Scheduling)
	if err := defaults.Validate(); err != nil {
		return fmt.Errorf("scheduling.default_preferences: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(database.DatabaseConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
	}

	var proposalCache cache.Cache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer redisCache.Close()
		proposalCache = redisCache
	} else {
		proposalCache = cache.NewMemoryCache()
	}

	deps := scheduling.Deps{
		DB:      db,
		Metrics: metrics.Default(),
		Config:  cfg.Scheduling,
	}

	ext := extraction.Init(cfg.LLM, proposalCache)
	deps.Extractor = ext.Extractor
	deps.Classifier = ext.Classifier

	if cfg.Storage.ArchiveTraces {
		deps.Archiver = storage.NewS3Store(storage.S3Config{
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
		})
	}

	queueRedis := queue.RedisConfig{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
	if cfg.Queue.Enabled {
		client := queue.NewClient(queueRedis)
		defer client.Close()
		deps.Enqueuer = client
	}

	e := newEcho()
	mw := middleware.NewMiddleware(cfg.Auth.JWTSecret)
	module := scheduling.Init(e, mw, deps)

	e.GET("/health", healthHandler(db))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	var worker *queue.Worker
	if cfg.Queue.Enabled {
		worker = queue.NewWorker(queueRedis, cfg.Queue.Concurrency)
		worker.Handle(constants.TaskEmailSuggestSlots, module.TaskHandler.ProcessTask)
		if err := worker.Start(); err != nil {
			return err
		}
	}

	addr := cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.Port)
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server:Run:Listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Server:Run:ShuttingDown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	if worker != nil {
		worker.Shutdown()
	}
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Server:Run:Stopped")
	return nil
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORS())
	e.Use(echomw.BodyLimit("2M"))
	e.Use(echomw.ContextTimeoutWithConfig(echomw.ContextTimeoutConfig{Timeout: constants.DefaultRequestTimeout}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			logger.Info("HTTP:Request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency.String(),
				"request_id", v.RequestID,
			)
			return nil
		},
	}))
	return e
}

type pinger interface {
	PingContext(ctx context.Context) error
}

func healthHandler(db pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), constants.DefaultTimeout)
		defer cancel()

		status := map[string]any{"status": "ok", "time": time.Now().UTC()}
		if err := db.PingContext(ctx); err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
			return c.JSON(http.StatusServiceUnavailable, status)
		}
		return c.JSON(http.StatusOK, status)
	}
}

var _ schedulingservice.TraceArchiver = (*storage.Store)(nil)
