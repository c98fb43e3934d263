// Package app assembles the gamefilter service from its configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"

	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/config"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/handler"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/middleware"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/repository"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/social"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/usecase"
	"github.com/vasapolrittideah/gamefilter-api/shared/auth"
	"github.com/vasapolrittideah/gamefilter-api/shared/discovery"
	"github.com/vasapolrittideah/gamefilter-api/shared/interceptor"
	"github.com/vasapolrittideah/gamefilter-api/shared/metrics"
	"github.com/vasapolrittideah/gamefilter-api/shared/security"
	"github.com/vasapolrittideah/gamefilter-api/shared/utilities"
	"github.com/vasapolrittideah/gamefilter-api/shared/validation"
)

const (
	serviceName       = "gamefilter"
	rateLimitSweepGap = time.Minute
)

type App struct {
	cfg    *config.Config
	logger *zerolog.Logger

	httpServer   *http.Server
	grpcServer   *grpc.Server
	healthServer *health.Server
	registrar    *discovery.Registrar

	mongoClient *mongo.Client
	redisClient *redis.Client

	rateLimiter *middleware.RateLimiter
	stopSweep   context.CancelFunc
	sweepDone   chan struct{}
}

// New connects to the backing stores and builds the HTTP router.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	mongoClient, err := repository.ConnectMongo(ctx, cfg.Mongo.URI, cfg.Mongo.ConnectTimeout)
	if err != nil {
		return nil, err
	}
	a.mongoClient = mongoClient
	db := mongoClient.Database(cfg.Mongo.Database)

	userRepo := repository.NewUserMongoRepository(ctx, logger, db)
	userSessionRepo := repository.NewUserSessionMongoRepository(ctx, logger, db)
	discordUserRepo := repository.NewDiscordUserMongoRepository(ctx, logger, db)
	logEntryRepo := repository.NewLogEntryMongoRepository(ctx, logger, db)
	gameRepo := repository.NewGameMongoRepository(ctx, logger, db)

	webSessionRepo, err := a.webSessionRepository(ctx, db)
	if err != nil {
		a.closeStores()
		return nil, err
	}

	mailSender, err := newMailSender(cfg.SMTP, logger)
	if err != nil {
		a.closeStores()
		return nil, err
	}

	tmpl, err := usecase.LoadVerificationTemplate(cfg.Mail.TemplatePath)
	if err != nil {
		a.closeStores()
		return nil, err
	}

	validator, err := validation.New()
	if err != nil {
		a.closeStores()
		return nil, err
	}

	whitelist, err := middleware.LoadOriginWhitelist(cfg.CORS.WhitelistFile)
	if err != nil {
		a.closeStores()
		return nil, err
	}
	logger.Info().Int("origins", whitelist.Len()).Msg("loaded origin whitelist")

	m := metrics.New(serviceName)
	issuer := security.NewTokenIssuer(cfg.Session.Secret)
	signer := auth.NewStateSigner(serviceName, cfg.Session.Secret, cfg.Discord.StateTTL)

	var providers []social.Provider
	if cfg.Discord.Enabled() {
		providers = append(providers, social.NewDiscord(social.DiscordConfig{
			ClientID:     cfg.Discord.ClientID,
			ClientSecret: cfg.Discord.ClientSecret,
			RedirectURL:  cfg.Discord.RedirectURL,
			Scopes:       cfg.Discord.Scopes,
			AuthURL:      cfg.Discord.AuthURL,
			TokenURL:     cfg.Discord.TokenURL,
			APIBaseURL:   cfg.Discord.APIBaseURL,
		}, discordUserRepo))
	} else {
		logger.Warn().Msg("discord is not configured, account linking is disabled")
	}
	registry := social.NewRegistry(providers...)

	sessions := usecase.NewSessionUsecase(userSessionRepo, webSessionRepo, cfg.Session.TTL, logger, m)
	authUsecase := usecase.NewAuthUsecase(
		userRepo,
		userSessionRepo,
		sessions,
		issuer,
		validator,
		mailSender,
		usecase.AuthConfig{VerifyURL: cfg.Mail.VerifyURL, VerificationTemplate: tmpl},
		logger,
		m,
	)

	h := handler.NewHandler(handler.Usecases{
		Auth:  authUsecase,
		User:  usecase.NewUserUsecase(userRepo, sessions, registry, logger),
		Link:  usecase.NewLinkUsecase(userRepo, userSessionRepo, sessions, registry, signer, logger),
		Debug: usecase.NewDebugUsecase(userRepo, logEntryRepo),
		Game:  usecase.NewGameUsecase(gameRepo),
	}, handler.CookieConfig{
		Name:   cfg.Session.CookieName,
		Domain: cfg.Session.CookieDomain,
		Secure: cfg.Session.CookieSecure,
	}, cfg.Discord.ClientRedirect, logger)

	a.rateLimiter = middleware.NewRateLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)

	router := handler.NewRouter(handler.RouterConfig{
		Handler:      h,
		Authorizer:   middleware.NewAuthorizer(userSessionRepo, userRepo, sessions, logger),
		RateLimiter:  a.rateLimiter,
		Whitelist:    whitelist,
		Metrics:      m,
		Logger:       logger,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
	})

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	if cfg.GRPC.Port != 0 {
		a.grpcServer = grpc.NewServer(
			grpc.UnaryInterceptor(interceptor.NewLoggingInterceptor(logger, "/grpc.health.v1.Health/Check")),
		)
		a.healthServer = utilities.RegisterHealthServer(a.grpcServer)
	}

	if cfg.Consul.Enabled() {
		registrar, err := discovery.NewRegistrar(cfg.Consul, logger)
		if err != nil {
			a.closeStores()
			return nil, err
		}
		a.registrar = registrar
	}

	a.startSweeper()

	return a, nil
}

func (a *App) webSessionRepository(ctx context.Context, db *mongo.Database) (repository.WebSessionRepository, error) {
	if a.cfg.Session.Store != config.SessionStoreRedis {
		return repository.NewWebSessionMongoRepository(ctx, a.logger, db), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	a.redisClient = client

	return repository.NewWebSessionRedisRepository(client), nil
}

// Run serves HTTP, and gRPC health when configured, until Shutdown. It
// returns the first listener error.
func (a *App) Run() error {
	errCh := make(chan error, 2)

	if a.grpcServer != nil {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", a.cfg.GRPC.Port))
		if err != nil {
			return fmt.Errorf("failed to listen on grpc port: %w", err)
		}
		go func() {
			if err := a.grpcServer.Serve(lis); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
		utilities.SetServing(a.healthServer, serviceName)
		a.logger.Info().Int("port", a.cfg.GRPC.Port).Msg("grpc health server started")
	}

	if a.registrar != nil {
		if err := a.registrar.Register(a.cfg.HTTP.Port, a.cfg.GRPC.Port, "/healthz"); err != nil {
			a.logger.Error().Err(err).Msg("failed to register with consul")
		}
	}

	go func() {
		a.logger.Info().Int("port", a.cfg.HTTP.Port).Msg("http server started")
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
			return
		}
		errCh <- nil
	}()

	return <-errCh
}

// startSweeper drops idle rate limit buckets until Shutdown.
func (a *App) startSweeper() {
	ctx, cancel := context.WithCancel(context.Background())
	a.stopSweep = cancel
	a.sweepDone = make(chan struct{})

	go func() {
		defer close(a.sweepDone)
		a.sweepRateLimiter(ctx)
	}()
}

func (a *App) sweepRateLimiter(ctx context.Context) {
	ticker := time.NewTicker(rateLimitSweepGap)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.rateLimiter.Sweep()
		}
	}
}

// Shutdown stops accepting traffic and releases the stores.
func (a *App) Shutdown(ctx context.Context) error {
	if a.registrar != nil {
		if err := a.registrar.Deregister(); err != nil {
			a.logger.Warn().Err(err).Msg("failed to deregister from consul")
		}
	}

	if a.stopSweep != nil {
		a.stopSweep()
		<-a.sweepDone
	}

	if a.grpcServer != nil {
		a.healthServer.Shutdown()
		a.grpcServer.GracefulStop()
	}

	var errs []error
	if err := a.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shut down http server: %w", err))
	}
	errs = append(errs, a.closeStoresCtx(ctx))

	return errors.Join(errs...)
}

func (a *App) closeStores() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.closeStoresCtx(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("failed to close stores")
	}
}

func (a *App) closeStoresCtx(ctx context.Context) error {
	var errs []error
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to disconnect mongo: %w", err))
		}
	}
	return errors.Join(errs...)
}
