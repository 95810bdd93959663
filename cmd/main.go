package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/cobra"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/sbilibin2017/gw-blog/docs"
	"github.com/sbilibin2017/gw-blog/internal/config"
	"github.com/sbilibin2017/gw-blog/internal/handlers"
	"github.com/sbilibin2017/gw-blog/internal/health"
	"github.com/sbilibin2017/gw-blog/internal/jwt"
	"github.com/sbilibin2017/gw-blog/internal/logger"
	"github.com/sbilibin2017/gw-blog/internal/middlewares"
	"github.com/sbilibin2017/gw-blog/internal/password"
	"github.com/sbilibin2017/gw-blog/internal/repositories"
	"github.com/sbilibin2017/gw-blog/internal/services"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

const (
	shutdownTimeout = 10 * time.Second

	limiterSweepInterval = time.Minute
	limiterMaxIdle       = 10 * time.Minute
)

// @title gw-blog API
// @version 1.0.0
// @description Blog backend: users, bearer-token login and posts
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// newRootCmd builds the gw-blog command tree. Without a subcommand it serves.
func newRootCmd() *cobra.Command {
	var configPath string

	serve := func(cmd *cobra.Command, args []string) error {
		cfg, err := setup(configPath)
		if err != nil {
			return err
		}
		defer logger.Sync()
		return run(cmd.Context(), cfg)
	}

	rootCmd := &cobra.Command{
		Use:          "gw-blog",
		Short:        "Blog backend with users, token login and posts",
		SilenceUsage: true,
		RunE:         serve,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.env", "Path to configuration file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the gRPC health server",
		RunE:  serve,
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()
			return migrate(cmd.Context(), cfg)
		},
	}

	rootCmd.AddCommand(serveCmd, migrateCmd)
	return rootCmd
}

// setup loads the configuration and initializes the logger.
func setup(configPath string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := logger.Initialize(cfg.LogLevel, cfg.LogEncoding); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

func openDB(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	logger.Log.Infow("connecting to database", "driver", cfg.DBDriver)

	db, err := repositories.Open(ctx, cfg.DBDriver, cfg.DSN(), repositories.PoolOptions{
		MaxOpenConns: cfg.PGMaxOpenConns,
		MaxIdleConns: cfg.PGMaxIdleConns,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func migrate(ctx context.Context, cfg *config.Config) error {
	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repositories.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Log.Info("database schema is up to date")
	return nil
}

// app holds the wired services the router exposes.
type app struct {
	db      *sqlx.DB
	tokens  *jwt.JWT
	users   *services.UserService
	auth    *services.AuthService
	posts   *services.PostService
	limiter *middlewares.IPRateLimiter
	log     *zap.SugaredLogger

	trustProxyHeaders bool
	maxBodyBytes      int64
}

// newApp wires repositories and services. cache and events may be nil.
func newApp(cfg *config.Config, db *sqlx.DB, cache services.UserCache, events *services.EventPublisher) *app {
	tokens := jwt.New(jwt.WithSecretKey(cfg.JWTSecretKey), jwt.WithExpiration(cfg.JWTExp))
	hasher := password.New(cfg.BcryptCost)
	tx := repositories.NewTxManager(db)

	userReadRepo := repositories.NewUserReadRepository(db)
	userWriteRepo := repositories.NewUserWriteRepository(db)
	postReadRepo := repositories.NewPostReadRepository(db)
	postWriteRepo := repositories.NewPostWriteRepository(db)

	return &app{
		db:      db,
		tokens:  tokens,
		users:   services.NewUserService(tx, userReadRepo, userWriteRepo, hasher, cache, events),
		auth:    services.NewAuthService(userReadRepo, hasher, tokens),
		posts:   services.NewPostService(tx, userReadRepo, postReadRepo, postWriteRepo, events),
		limiter: middlewares.PerMinute(cfg.RateLimitPerMinute, cfg.RateLimitBurst),
		log:     logger.Log,

		trustProxyHeaders: cfg.TrustProxyHeaders,
		maxBodyBytes:      cfg.MaxBodyBytes,
	}
}

// newRouter mounts the API, metrics, docs and health routes.
func newRouter(a *app) http.Handler {
	r := chi.NewRouter()
	if a.trustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware(a.log))
	r.Use(middlewares.Prometheus)

	authMiddleware := middlewares.AuthMiddleware(a.tokens, a.auth)

	r.Route("/api", func(r chi.Router) {
		r.Use(middlewares.MaxBytes(a.maxBodyBytes))

		r.Route("/users", func(r chi.Router) {
			r.With(a.limiter.Middleware).Post("/", handlers.NewCreateUserHandler(a.users))
			r.With(a.limiter.Middleware).Post("/token", handlers.NewTokenHandler(a.auth))
			r.With(authMiddleware).Get("/me", handlers.NewMeHandler())
			r.Get("/{id}", handlers.NewGetUserHandler(a.users))
			r.Get("/{id}/posts", handlers.NewListUserPostsHandler(a.posts))
			r.With(authMiddleware).Patch("/{id}", handlers.NewUpdateUserHandler(a.users))
			r.With(authMiddleware).Delete("/{id}", handlers.NewDeleteUserHandler(a.users))
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", handlers.NewListPostsHandler(a.posts))
			r.With(authMiddleware).Post("/", handlers.NewCreatePostHandler(a.posts))
			r.Get("/{id}", handlers.NewGetPostHandler(a.posts))
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", handlers.NewHealthHandler(a.db))
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	return r
}

// run connects to the database, the optional Redis cache and Kafka broker,
// then serves HTTP and gRPC health until ctx is canceled or a signal arrives.
func run(ctx context.Context, cfg *config.Config) error {
	logger.Log.Infow("Logger initialized", "level", cfg.LogLevel)

	if err := cfg.CheckServe(); err != nil {
		return err
	}
	if cfg.UsesDefaultJWTSecret() {
		logger.Log.Warn("JWT_SECRET_KEY not set, signing tokens with the built-in development key")
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repositories.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	var cache services.UserCache
	if cfg.RedisHost != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:         cfg.RedisAddr(),
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			PoolSize:     cfg.RedisPoolSize,
			MinIdleConns: cfg.RedisMinIdleConns,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis connection error: %w", err)
		}
		defer rdb.Close()
		cache = repositories.NewUserCacheRepository(rdb, cfg.RedisCacheTTL)
		logger.Log.Infow("user cache enabled", "addr", cfg.RedisAddr(), "ttl", cfg.RedisCacheTTL)
	} else {
		logger.Log.Warn("REDIS_HOST not set, user cache disabled")
	}

	var writer services.KafkaWriter
	if len(cfg.KafkaBrokers) > 0 {
		writer = &kafka.Writer{
			Addr:                   kafka.TCP(cfg.KafkaBrokers...),
			Topic:                  cfg.KafkaTopic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		}
		logger.Log.Infow("event publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Log.Warn("KAFKA_BROKERS not set, event publishing disabled")
	}
	events := services.NewEventPublisher(writer)
	defer events.Close()

	docs.SwaggerInfo.Host = cfg.HTTPAddr()

	a := newApp(cfg, db, cache, events)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           newRouter(a),
		ReadHeaderTimeout: 5 * time.Second,
	}

	healthSrv := health.NewServer(db, 5*time.Second)
	grpcLis, err := net.Listen("tcp", cfg.GRPCAddr())
	if err != nil {
		return fmt.Errorf("listen gRPC: %w", err)
	}

	// Graceful shutdown
	errChan := make(chan error, 2)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go healthSrv.Watch(ctxShutdown)
	go a.limiter.Run(ctxShutdown, limiterSweepInterval, limiterMaxIdle)

	go func() {
		if err := healthSrv.Serve(grpcLis); err != nil {
			errChan <- fmt.Errorf("gRPC server failed: %w", err)
		}
	}()

	go func() {
		logger.Log.Infof("HTTP server listening on %s", cfg.HTTPAddr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping servers...")
	case serveErr = <-errChan:
		logger.Log.Errorw("server stopped unexpectedly", "error", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("gRPC server shutdown error", "error", err)
	}

	logger.Log.Info("Servers stopped gracefully")
	return serveErr
}
