package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gorm.io/gorm"

	"worldfund-api/internal/app"
	"worldfund-api/internal/chain"
	"worldfund-api/internal/config"
	"worldfund-api/internal/database"
	"worldfund-api/internal/http/handler"
	"worldfund-api/internal/http/middleware"
	"worldfund-api/internal/nonce"
	"worldfund-api/internal/observability"
	"worldfund-api/internal/repository"
	"worldfund-api/internal/security"
	"worldfund-api/internal/service"
	"worldfund-api/internal/siwe"
	"worldfund-api/internal/worldid"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	observability.NewLogger,
	ProvideTracerProvider,
)

var InfraSet = wire.NewSet(
	database.Open,
	database.OpenRedis,
	ProvideChainClient,
	ProvideWorldIDClient,
)

var SecuritySet = wire.NewSet(
	ProvideSecretSource,
	ProvideSessionManager,
)

var RepositorySet = wire.NewSet(
	repository.NewUserRepository,
	repository.NewCampaignRepository,
)

var ServiceSet = wire.NewSet(
	ProvideNonceStore,
	ProvideSIWEVerifier,
	ProvideAuthService,
	ProvideWorldIDService,
	ProvideDonationService,
)

var HTTPSet = wire.NewSet(
	handler.NewAuthHandler,
	handler.NewDonationHandler,
	ProvideAuthLimiter,
	ProvideRouter,
	ProvideHTTPServer,
)

var AppSet = wire.NewSet(app.New)

func ProvideTracerProvider(cfg *config.Config, logger *slog.Logger) (*sdktrace.TracerProvider, error) {
	return observability.InitTracing(context.Background(), cfg, logger)
}

// ProvideSecretSource prefers the literal secret for local development and
// falls back to Secrets Manager in deployed environments.
func ProvideSecretSource(cfg *config.Config) (security.SecretSource, error) {
	if cfg.SessionSecret != "" {
		return security.StaticSecretSource(cfg.SessionSecret), nil
	}
	return security.NewSecretsManagerSource(context.Background(), cfg.AWSRegion, cfg.SessionSecretARN)
}

func ProvideSessionManager(cfg *config.Config, secrets security.SecretSource) *security.SessionManager {
	return security.NewSessionManager(secrets, cfg.SessionTokenTTL)
}

func ProvideNonceStore(client redis.UniversalClient, cfg *config.Config) nonce.Store {
	return nonce.NewRedisStore(client, cfg.NonceTTL)
}

func ProvideSIWEVerifier(nonces nonce.Store, cfg *config.Config, logger *slog.Logger) *siwe.Verifier {
	return siwe.NewVerifier(nonces, cfg.AllowedOrigins, logger)
}

func ProvideChainClient(cfg *config.Config) (*chain.Client, error) {
	return chain.Dial(cfg.ChainRPCURL, cfg.ChainCallTimeout)
}

func ProvideWorldIDClient(cfg *config.Config) *worldid.Client {
	return worldid.NewClient(cfg.WorldIDBaseURL, cfg.WorldIDAppID)
}

func ProvideAuthService(
	nonces nonce.Store,
	verifier *siwe.Verifier,
	users repository.UserRepository,
	sessions *security.SessionManager,
	logger *slog.Logger,
) *service.AuthService {
	return service.NewAuthService(nonces, verifier, users, sessions, logger)
}

func ProvideWorldIDService(client *worldid.Client, users repository.UserRepository, cfg *config.Config, logger *slog.Logger) *service.WorldIDService {
	return service.NewWorldIDService(client, users, cfg.WorldIDActionID, logger)
}

func ProvideDonationService(campaigns repository.CampaignRepository, chainClient *chain.Client, cfg *config.Config, logger *slog.Logger) *service.DonationService {
	return service.NewDonationService(campaigns, chainClient, cfg.ChainID, cfg.TokenContract, cfg.TokenDecimals, logger)
}

// ProvideAuthLimiter limits the unauthenticated auth endpoints per client
// IP. Fail closed: if redis is down, sign-in waits rather than running
// unthrottled.
func ProvideAuthLimiter(client redis.UniversalClient, cfg *config.Config) *middleware.RateLimiter {
	limiter := middleware.NewRedisFixedWindowLimiter(client, "rl:auth")
	return middleware.NewRateLimiter(limiter, cfg.AuthRateLimitPerMin, time.Minute, middleware.FailClosed)
}

func ProvideRouter(
	auth *handler.AuthHandler,
	donations *handler.DonationHandler,
	sessions *security.SessionManager,
	limiter *middleware.RateLimiter,
	cfg *config.Config,
) http.Handler {
	return handler.NewRouter(handler.RouterConfig{
		Auth:           auth,
		Donations:      donations,
		Sessions:       sessions,
		AuthLimiter:    limiter,
		AllowedOrigins: cfg.AllowedOrigins,
	})
}

func ProvideHTTPServer(cfg *config.Config, router http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}

type MigrationRunner struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewMigrationRunner(db *gorm.DB, logger *slog.Logger) *MigrationRunner {
	return &MigrationRunner{db: db, logger: logger}
}

func (m *MigrationRunner) Run() error {
	m.logger.Info("running migrations")
	return database.Migrate(m.db)
}
