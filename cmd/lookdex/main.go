package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lookdex/internal/config"
	"github.com/kailas-cloud/lookdex/internal/db"
	dbBleve "github.com/kailas-cloud/lookdex/internal/db/bleve"
	dbRedis "github.com/kailas-cloud/lookdex/internal/db/redis"
	logpkg "github.com/kailas-cloud/lookdex/internal/logger"
	"github.com/kailas-cloud/lookdex/internal/metrics"
	searchrepo "github.com/kailas-cloud/lookdex/internal/repository/search"
	chiTransport "github.com/kailas-cloud/lookdex/internal/transport/chi"
	browseuc "github.com/kailas-cloud/lookdex/internal/usecase/browse"
	healthuc "github.com/kailas-cloud/lookdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/lookdex/internal/usecase/search"
	"github.com/kailas-cloud/lookdex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, logpkg.Options{
		Level:    cfg.Logging.Level,
		Encoding: cfg.Logging.Encoding,
	})
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	searcher, ok := cfg.DefaultSearcher()
	if !ok {
		searcher = config.SearcherConfig{Name: "Look", LookAware: true}
	}

	build := version.Get()
	logger.Info("Starting lookdex API server",
		zap.String("version", build.Version),
		zap.String("commit", build.Commit),
		zap.String("build_date", build.Date),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("engine_driver", cfg.Engine.Driver),
		zap.String("searcher", searcher.Name),
	)

	// Create the engine store based on driver
	var (
		store     db.Store
		indexName string
		prefixes  []string
		readiness = time.Duration(cfg.Engine.Redis.ReadinessTimeout) * time.Second
	)
	switch cfg.Engine.Driver {
	case config.DriverBleve:
		store = dbBleve.NewStore(dbBleve.Config{Path: cfg.Engine.Bleve.Path})
		indexName = "look"
	case config.DriverRedis:
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Engine.Redis.Addrs,
			Password: cfg.Engine.Redis.Password,
			Index:    cfg.Engine.Redis.Index,
			Prefix:   cfg.Engine.Redis.Prefix,
		})
		indexName = cfg.Engine.Redis.Index
		prefixes = []string{cfg.Engine.Redis.Prefix}
	default:
		logger.Fatal("Unknown engine driver", zap.String("driver", cfg.Engine.Driver))
	}
	if err != nil {
		logger.Fatal("Failed to create engine store", zap.Error(err))
	}
	defer store.Close()

	// Wait for the engine, then make sure the index exists
	ctx := context.Background()
	if err := store.WaitForReady(ctx, readiness); err != nil {
		logger.Fatal("Engine not ready", zap.Error(err))
	}
	def, err := db.LookIndex(indexName, prefixes...).Build()
	if err != nil {
		logger.Fatal("Invalid index definition", zap.Error(err))
	}
	if err := store.EnsureIndex(ctx, def); err != nil {
		logger.Fatal("Failed to ensure index", zap.String("index", indexName), zap.Error(err))
	}
	logger.Info("Connected to engine", zap.String("index", indexName))

	// Register metrics explicitly (no init())
	metrics.RegisterSearchMetrics()
	metrics.RegisterHTTPMetrics()

	searchCfg := cfg.Search.Domain()
	compiler, err := searchuc.NewCachedCompiler(searchuc.NewCompiler(store, searchCfg), searchCfg.CompileCacheSize)
	if err != nil {
		logger.Fatal("Failed to create compile cache", zap.Error(err))
	}
	searchRepo := searchrepo.New(store, searchrepo.Config{
		GeoPageSize:  searchCfg.GeoPageSize,
		ScanPageSize: searchCfg.FacetPageSize,
	})

	searchSvc := searchuc.New(searchRepo, compiler, searchCfg, logger)
	browseSvc := browseuc.New(searchSvc)
	healthSvc := healthuc.New(store, store, indexName)

	server := chiTransport.NewServer(searchSvc, browseSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
			Code:    chiTransport.CodeNotFound,
			Message: "route not found",
		})
	})
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.CodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// One line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
