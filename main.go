package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blog-viewstats/cache"
	"blog-viewstats/classifier"
	"blog-viewstats/config"
	"blog-viewstats/handlers"
	middleware "blog-viewstats/middlewares"
	"blog-viewstats/pubsub"
	"blog-viewstats/queue"
	"blog-viewstats/store"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// App holds everything the server owns and must release on shutdown.
type App struct {
	Router  *mux.Router
	Store   *store.Store
	closers []func() error
}

// Close releases resources in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("shutdown step failed")
		}
	}
}

// NewApp builds the store, classifier and router from cfg. deps lets tests
// inject clients; zero values are created from cfg.
func NewApp(ctx context.Context, cfg *config.Config, deps store.Deps) (*App, error) {
	app := &App{}

	if cfg.UsesRedis() && deps.Redis == nil {
		redisStore, err := cache.DialRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		deps.Redis = redisStore
		app.closers = append(app.closers, redisStore.Close)
	}

	st, err := store.Open(ctx, cfg, deps)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = st
	app.closers = append(app.closers, st.Close)

	var geo classifier.Geolocator
	if cfg.Geo.Enabled {
		geoCache, err := cache.NewBigCacheStore(cfg.Geo.CacheTTL)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.closers = append(app.closers, geoCache.Close)
		geo = classifier.NewCachedGeolocator(classifier.NewIPAPIGeolocator(classifier.IPAPIConfig{
			Endpoint:        cfg.Geo.Endpoint,
			Timeout:         cfg.Geo.Timeout,
			BreakerFailures: cfg.Geo.BreakerFailures,
			BreakerTimeout:  cfg.Geo.BreakerTimeout,
		}), geoCache)
	}

	h := &handlers.Handler{
		Store:        st,
		Countries:    classifier.New(geo, cfg.Geo.TrustedHeaders...),
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	}
	if cfg.Events.Enabled {
		tasks := queue.NewWorker(cfg.Events.QueueDepth)
		tasks.Start(cfg.Events.Workers)
		app.closers = append(app.closers, func() error { tasks.Stop(); return nil })
		h.Publisher = pubsub.NewPubSub(deps.Redis, cfg.Events.Channel)
		h.Tasks = tasks
	}

	proxies, err := middleware.NewTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		app.Close()
		return nil, err
	}

	var limiter cache.Counter = cache.NewMemoryCounter()
	if deps.Redis != nil {
		limiter = deps.Redis
	}

	sentryHandler := sentryhttp.New(sentryhttp.Options{Repanic: true})

	r := mux.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.ClientIPMiddleware(proxies))
	r.Use(middleware.LoggingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         cfg.CORS.MaxAge,
	}))
	r.Use(sentryHandler.Handle)
	r.Use(middleware.SentryScopeMiddleware)
	r.Use(middleware.ResponseTimeMiddleware)

	var track http.Handler = http.HandlerFunc(h.TrackHandler)
	if cfg.RateLimit.Enabled {
		track = middleware.RateLimitMiddleware(limiter, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)(track)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.Handle("/track", track).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/stats", h.StatsHandler).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/stats/summary", h.SummaryHandler).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	app.Router = r
	return app, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logCloser, err := middleware.InitLogger(cfg.Log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize logger")
	}
	defer logCloser.Close()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			TracesSampleRate: cfg.Sentry.TracesSampleRate,
		}); err != nil {
			log.Warn().Err(err).Msg("sentry initialization failed")
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg, store.Deps{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer app.Close()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("backend", app.Store.Backend()).
			Str("consistency", app.Store.Consistency()).
			Msg("server is running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown failed")
	}
}
