package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/2beens/blogql/internal/auth"
	"github.com/2beens/blogql/internal/blog"
	"github.com/2beens/blogql/internal/config"
	"github.com/2beens/blogql/internal/db"
	"github.com/2beens/blogql/internal/globalid"
	"github.com/2beens/blogql/internal/graph"
	"github.com/2beens/blogql/internal/middleware"
	"github.com/2beens/blogql/internal/service"
	"github.com/2beens/blogql/internal/telemetry/metrics"
	"github.com/2beens/blogql/internal/telemetry/tracing"
	"github.com/2beens/blogql/internal/users"
	"github.com/2beens/blogql/pkg"
)

const generatedSecretLength = 64

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server

	config       *config.Config
	dbPool       *pgxpool.Pool
	redisClient  *redis.Client
	graphHandler *graph.Handler
	rateLimiter  middleware.RequestRateLimiter

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBUser:         cfg.PostgresUser,
		DBPassword:     cfg.Secrets.PostgresPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, dbPool); err != nil {
			return nil, fmt.Errorf("migrate db: %w", err)
		}
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": cfg.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("backend", "blogql", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: cfg.Secrets.RedisPassword,
		DB:       0, // use default DB
	})
	if params.HoneycombTracingEnabled {
		rdb.AddHook(redisotel.NewTracingHook())
	}

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	jwtSecret := cfg.Secrets.JWTSecret
	if jwtSecret == "" {
		// tokens will not survive a restart
		log.Warnln("jwt secret not set, use BLOGQL_JWT_SECRET to set it; generating a random one")
		jwtSecret, err = pkg.GenerateRandomString(generatedSecretLength)
		if err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
	}

	graphHandler, err := newGraphHandler(
		blog.NewRepo(dbPool),
		users.NewRepo(dbPool),
		auth.NewTokenManager(jwtSecret, cfg.JWTExpiration, cfg.JWTRefreshExpiration),
		metricsManager,
	)
	if err != nil {
		return nil, fmt.Errorf("new graph handler: %w", err)
	}

	return &Server{
		config:       cfg,
		dbPool:       dbPool,
		redisClient:  rdb,
		graphHandler: graphHandler,
		rateLimiter:  redis_rate.NewLimiter(rdb),

		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

type userRepo interface {
	service.UserStore
	SetLastLogin(ctx context.Context, id int, at time.Time) error
}

// newGraphHandler wires the stores, the auth components and the services into
// an executable GraphQL schema.
func newGraphHandler(
	blogs service.BlogStore,
	userRepo userRepo,
	tokens *auth.TokenManager,
	metricsManager *metrics.Manager,
) (*graph.Handler, error) {
	codec := globalid.Default()
	gate := auth.NewGate(tokens, userRepo)
	credentials := auth.NewCredentials(tokens, userRepo)

	schema, err := graph.NewSchema(
		service.NewQueryService(blogs, userRepo, gate, codec),
		service.NewMutationService(blogs, userRepo, gate, credentials, codec),
		codec,
		metricsManager,
	)
	if err != nil {
		return nil, err
	}

	return graph.NewHandler(schema, metricsManager), nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("blogql-router"))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteJSONResponseOK(w, `{"status":"ok"}`)
	}).Methods("GET").Name("health")

	api := r.NewRoute().Subrouter()
	s.graphHandler.SetupRoutes(api)
	api.Use(middleware.RateLimit(s.rateLimiter, "graphql", s.config.RateLimitPerMinute, s.metricsManager))

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(middleware.BearerToken())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", otelhttp.NewHandler(
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
		"metrics",
	))
	metricsAddr := net.JoinHostPort(s.config.MetricsHost, s.config.MetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Duration(s.config.ShutdownTimeoutSeconds) * time.Second
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	// stop taking requests first, the stores below are still in use until then
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Errorf(" >>> failed to gracefully shutdown http server: %s", err)
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Errorf(" >>> failed to gracefully shutdown metrics http server: %s", err)
		}
		log.Warnln("metrics server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeConnections.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeConnections.Add(-1)
	default:
		// do nothing
	}
}
