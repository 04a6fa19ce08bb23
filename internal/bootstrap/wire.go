package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jiayou/auth-service/internal/application/auth"
	"github.com/jiayou/auth-service/internal/application/caregiver"
	"github.com/jiayou/auth-service/internal/application/documents"
	"github.com/jiayou/auth-service/internal/audit"
	"github.com/jiayou/auth-service/internal/config"
	"github.com/jiayou/auth-service/internal/domain"
	"github.com/jiayou/auth-service/internal/infrastructure/db/postgres"
	"github.com/jiayou/auth-service/internal/infrastructure/memory"
	rabbitmq_pub "github.com/jiayou/auth-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/jiayou/auth-service/internal/infrastructure/redis"
	"github.com/jiayou/auth-service/internal/infrastructure/security"
	"github.com/jiayou/auth-service/internal/infrastructure/storage"
	"github.com/jiayou/auth-service/internal/logger"
	http_handlers "github.com/jiayou/auth-service/internal/transport/http/handlers"
	"github.com/jiayou/auth-service/internal/transport/http/middleware"
	"github.com/jiayou/auth-service/internal/transport/http/response"
	"github.com/jiayou/auth-service/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB   func(addr string, pool config.PoolConfig, debug bool) (*sql.DB, error)
	Migrate func(ctx context.Context, db *sql.DB) error

	NewRedis func(addr, password string, db int) *redis.Client

	NewPublisher func(rabbitURL, exchange string) (Publisher, error)

	NewObjectStore func(ctx context.Context, cfg storage.S3Config) (documents.ObjectStore, error)

	NewRouter func(router.Deps) (http.Handler, error)
}

// Publisher carries every domain event the service emits.
type Publisher interface {
	auth.EventPublisher
	caregiver.EventPublisher
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if cfg == nil {
		return nil, nil, errNilConfig
	}

	var cleanupFns []func()
	fail := func(err error) (*http.Server, func(), error) {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 1) credential + profile stores
	var (
		sqlDB       *sql.DB
		identities  auth.CredentialStore
		profiles    caregiver.ProfileStore
		seedInserts memory.Inserter
	)
	if cfg.DBAddr != "" {
		sqlDB, err = deps.NewDB(cfg.DBAddr, cfg.DBPool, cfg.IsDev())
		if err != nil {
			return nil, nil, err
		}
		cleanupFns = append(cleanupFns, func() { _ = sqlDB.Close() })

		if cfg.DBAutoMigrate && deps.Migrate != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := deps.Migrate(ctx, sqlDB)
			cancel()
			if err != nil {
				return fail(err)
			}
			logger.Logger.Info().Msg("database migrations applied")
		}

		store := postgres.NewIdentityStore(sqlDB)
		identities, seedInserts = store, store
		profiles = postgres.NewProfileStore(sqlDB)
	} else {
		// config.Load only allows this in dev
		logger.Logger.Warn().Msg("DB_ADDR not set; using in-memory stores")
		store := memory.NewIdentityStore()
		identities, seedInserts = store, store
		profiles = memory.NewProfileStore()
	}

	// 2) redis (best-effort)
	var (
		revocations auth.RevocationList = memory.NewRevocationList()
		limiter     middleware.RateLimiter
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" && deps.NewRedis != nil {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := c.Ping(context.Background()); err != nil {
			logger.Logger.Warn().Err(err).Msg("redis unavailable; revocation list and rate limits in memory")
			_ = c.Close()
		} else {
			logger.Logger.Info().Msg("redis connected")
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
			redisClient = c
			revocations = redis.NewRevocationList(c)
			limiter = redis.NewFixedWindowLimiter(c)
		}
	} else {
		logger.Logger.Warn().Msg("REDIS_ADDR not set; revocation list and rate limits in memory")
	}

	// 3) publisher
	var pub Publisher
	if cfg.RabbitURL == "" {
		logger.Logger.Warn().Msg("RABBIT_URL not set; events are logged only")
		pub = memory.NewNoopPublisher(logger.Logger)
	} else {
		p, err := deps.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		switch {
		case err == nil:
			pub = p
		case cfg.IsDev():
			logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; using noop publisher")
			pub = memory.NewNoopPublisher(logger.Logger)
		default:
			return fail(err)
		}
	}
	if c, ok := pub.(interface{ Close() error }); ok {
		cleanupFns = append(cleanupFns, func() { _ = c.Close() })
	}

	// 4) document storage
	var objects documents.ObjectStore
	if cfg.S3Bucket != "" && deps.NewObjectStore != nil {
		objects, err = deps.NewObjectStore(context.Background(), storage.S3Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			UsePathStyle:    cfg.S3UsePathStyle,
		})
		if err != nil {
			return fail(err)
		}
	} else {
		logger.Logger.Warn().Msg("S3_BUCKET not set; document uploads disabled")
	}

	// 5) security
	hasher, err := security.NewPasswordHasher(security.HasherConfig{
		Algorithm:  cfg.PasswordHashAlgo,
		BcryptCost: cfg.BcryptCost,
		Argon2: security.Argon2Params{
			Time:      cfg.Argon2Time,
			MemoryKiB: cfg.Argon2MemoryKiB,
			Threads:   cfg.Argon2Threads,
		},
	})
	if err != nil {
		return fail(err)
	}
	logger.Logger.Info().Str("issuer", cfg.JWTIssuer).Str("hash", cfg.PasswordHashAlgo).Msg("initializing token issuer")
	issuer := security.NewJWTIssuer(cfg.JWTSecret, cfg.JWTIssuer)

	// seed (dev only)
	if cfg.SeedDevIdentities {
		memory.SeedIdentities(context.Background(), seedInserts, hasher, memory.DevSeeds, logger.Logger)
	}

	// 6) services
	auditor := audit.New(logger.Logger)
	logErr := func(ctx context.Context, action string, err error) {
		logger.WithCtx(ctx).Warn().Err(err).Str("action", action).Msg("auth internal error")
	}

	authSvc := auth.NewService(identities, hasher, issuer, revocations, pub, auth.Config{
		AccessTTL: cfg.AccessTokenTTL,
	}).WithAudit(auditor.Record).WithErrorLog(logErr)

	cgSvc := caregiver.NewService(profiles, pub).WithAudit(auditor.Record)
	docSvc := documents.NewService(objects, cfg.UploadURLTTL)

	// 7) handlers + middleware
	var checks []http_handlers.Check
	if sqlDB != nil {
		checks = append(checks, http_handlers.Check{Name: "database", Ping: sqlDB.PingContext, Critical: true})
	}
	if redisClient != nil {
		checks = append(checks, http_handlers.Check{Name: "redis", Ping: redisClient.Ping})
	}

	rateLimit := func(scope string, limit int) func(http.Handler) http.Handler {
		rl := middleware.FixedWindowConfig{Scope: scope, Limit: limit, Window: cfg.LoginRateWindow}
		if limiter != nil {
			return middleware.RateLimitFixedWindow(limiter, rl, response.WriteError)
		}
		return middleware.RateLimitInMemory(rl, response.WriteError)
	}

	var corsMW func(http.Handler) http.Handler
	if len(cfg.CORSAllowedOrigins) > 0 {
		corsMW = middleware.CORS(cfg.CORSAllowedOrigins)
	}

	// 8) router
	mux, err := deps.NewRouter(router.Deps{
		Health:    http_handlers.NewHealthHandler(checks...),
		Auth:      http_handlers.NewAuthHandler(authSvc),
		Caregiver: http_handlers.NewCaregiverHandler(cgSvc),
		Documents: http_handlers.NewDocumentHandler(docSvc),
		Metrics:   promhttp.Handler(),

		RequestIDMW: middleware.RequestID,
		SecurityMW:  middleware.SecurityHeaders(!cfg.IsDev()),
		CORSMW:      corsMW,
		MetricsMW:   middleware.Metrics,
		AuthMW:      middleware.Auth(authSvc, response.WriteError),
		CaregiverMW: middleware.RequireRole(authSvc, domain.RoleCaregiver, response.WriteError),

		RLLogin:    rateLimit("login", cfg.LoginRateLimit),
		RLRegister: rateLimit("register", cfg.RegisterRateLimit),
	})
	if err != nil {
		return fail(err)
	}

	// 9) server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB:      config.NewDB,
		Migrate:    postgres.Migrate,
		NewRedis:   redis.New,
		NewPublisher: func(url, exchange string) (Publisher, error) {
			return rabbitmq_pub.NewPublisher(url, exchange)
		},
		NewObjectStore: func(ctx context.Context, cfg storage.S3Config) (documents.ObjectStore, error) {
			return storage.NewS3DocumentStore(ctx, cfg)
		},
		NewRouter: router.New,
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}

var errNilConfig = errors.New("bootstrap: nil config")
