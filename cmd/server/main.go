package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/IGRA27/conversations-api-cloudant/internal/api/handlers"
	"github.com/IGRA27/conversations-api-cloudant/internal/api/middleware"
	"github.com/IGRA27/conversations-api-cloudant/internal/cache"
	"github.com/IGRA27/conversations-api-cloudant/internal/config"
	"github.com/IGRA27/conversations-api-cloudant/internal/conversation"
	"github.com/IGRA27/conversations-api-cloudant/internal/logger"
	"github.com/IGRA27/conversations-api-cloudant/internal/metrics"
	"github.com/IGRA27/conversations-api-cloudant/internal/store"
	"github.com/IGRA27/conversations-api-cloudant/internal/store/memstore"
	"github.com/IGRA27/conversations-api-cloudant/internal/store/mongostore"
	"github.com/IGRA27/conversations-api-cloudant/internal/store/pgstore"
)

const (
	startupTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
	cacheTTL        = 5 * time.Minute
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fallback := logger.New(logger.Config{})
		fallback.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	m := metrics.New(prometheus.DefaultRegisterer)

	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	// Initialize the document store
	st, err := openStore(startupCtx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("failed to initialize store")
	}
	st = store.WithMetrics(st, m)

	// Initialize the optional Redis response cache
	var listCache *cache.ListCache
	if cfg.RedisHost != "" {
		listCache = cache.New(cache.Connect(startupCtx, cfg.GetRedisAddr(), cfg.RedisUsername, cfg.RedisPassword, log), cacheTTL, log)
	} else {
		listCache = cache.New(nil, cacheTTL, log)
	}

	svc := conversation.NewService(st, cfg.ConversationTimeout, log, m)
	handler := handlers.NewHandler(svc, listCache, st, log)

	// Setup and run the server
	r := setupRouter(handler, m, cfg)
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("port", cfg.ServerPort).Dur("conversation_timeout", cfg.ConversationTimeout).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := st.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("store close failed")
	}
}

// openStore selects the document store backend from configuration.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendMongo:
		return mongostore.Connect(ctx, cfg, log)
	case config.BackendPostgres:
		return pgstore.Connect(ctx, cfg, log)
	case config.BackendMemory:
		log.Warn().Msg("using in-memory store, data will not survive a restart")
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func setupRouter(handler *handlers.Handler, m *metrics.Metrics, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	// Configure CORS middleware
	if cfg.FrontendURL != "" {
		headers := cors.DefaultConfig()
		headers.AllowOrigins = []string{cfg.FrontendURL}
		headers.AllowMethods = []string{"GET", "POST", "OPTIONS"}
		headers.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
		headers.ExposeHeaders = []string{"Content-Length"}
		headers.AllowCredentials = true
		r.Use(cors.New(headers))
	}

	metricsMiddleware := middleware.NewRequestMetricsMiddleware(m)
	r.Use(metricsMiddleware.RequestMetrics())

	// API routes
	r.POST("/conversations", handler.StoreConversation)
	r.GET("/conversations", handler.ListConversations)
	r.GET("/conversations/:user_id", handler.GetUserConversations)

	// Operational routes
	r.GET("/healthz", handler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
