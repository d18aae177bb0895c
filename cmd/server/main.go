// @title         accounts API
// @version       1.0
// @description   Serviço de contas: cadastro, login por credenciais ou Google, e administração de usuários.
// @BasePath      /api/v1
// @schemes       http
// @host          localhost:8080
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Token de autorização. Formatos aceitos: "Bearer <JWT>" ou "<JWT>".
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/artem13815/accounts/docs"

	// internal imports
	httpapi "github.com/artem13815/accounts/api/http"
	"github.com/artem13815/accounts/api/http/handlers"
	"github.com/artem13815/accounts/pkg/auth"
	"github.com/artem13815/accounts/pkg/bootstrap"
	"github.com/artem13815/accounts/pkg/config"
	"github.com/artem13815/accounts/pkg/health"
	"github.com/artem13815/accounts/pkg/health/checkers"
	"github.com/artem13815/accounts/pkg/logging"
	"github.com/artem13815/accounts/pkg/oauth"
	"github.com/artem13815/accounts/pkg/repository/memory"
	pgrepo "github.com/artem13815/accounts/pkg/repository/postgres"
	"github.com/artem13815/accounts/pkg/security/jwt"
	"github.com/artem13815/accounts/pkg/security/password"
	"github.com/artem13815/accounts/pkg/storage/postgres"
	redisstore "github.com/artem13815/accounts/pkg/storage/redis"
	"github.com/artem13815/accounts/pkg/telemetry"
	"github.com/artem13815/accounts/pkg/user"
)

const serviceName = "accounts"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	var checks []health.Checker

	// Storage: PostgreSQL when configured, otherwise an in-process store.
	var repo user.Repository
	if cfg.DatabaseURL != "" {
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return err
		}
		defer pool.Close()
		db := postgres.OpenDB(pool)
		defer db.Close()
		if err := postgres.RunMigrations(ctx, db); err != nil {
			return err
		}
		repo = pgrepo.NewUserRepository(db)
		checks = append(checks, checkers.NewPostgresChecker(pool))
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory user store")
		repo = memory.NewUserRepository()
	}

	var states oauth.StateStore
	if cfg.RedisURL != "" {
		client, err := redisstore.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		states = oauth.NewRedisStateStore(client, cfg.OAuthStateTTL)
		checks = append(checks, checkers.NewRedisChecker(client))
	} else {
		states = oauth.NewMemoryStateStore(cfg.OAuthStateTTL)
	}

	hasher, err := password.NewHasher(cfg.Security.BcryptCost)
	if err != nil {
		return err
	}
	users := user.NewService(repo, hasher, logger, user.WithInactiveDays(cfg.InactiveThresholdDays))
	tokens := jwt.NewGenerator(cfg.JWT.Secret, cfg.JWT.TTL)
	authUC := auth.NewAuthService(users, hasher, tokens, logger)
	strategy := oauth.NewStrategy(users, authUC, logger)

	google := oauth.GoogleConfig{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		CallbackURL:  cfg.Google.CallbackURL,
	}
	var provider oauth.Provider
	if google.Enabled() {
		provider = oauth.NewGoogleProvider(google)
	} else {
		logger.Info("google login disabled")
	}

	if cfg.SeedAdmin() {
		if _, err := bootstrap.SeedAdmin(ctx, users, bootstrap.AdminSeed{
			Name:     cfg.Admin.Name,
			Email:    cfg.Admin.Email,
			Password: cfg.Admin.Password,
		}, logger); err != nil {
			return err
		}
	}

	app := httpapi.NewApp(logger)
	httpapi.Register(app, httpapi.Routes{
		Auth:        handlers.NewAuthHandler(authUC, logger),
		Google:      handlers.NewGoogleHandler(provider, states, strategy, cfg.FrontendURL, logger),
		Users:       handlers.NewUsersHandler(users, logger),
		Health:      handlers.NewHealthHandler(health.NewService(checks...), logger),
		Authn:       jwt.NewAuthMiddleware(cfg.JWT.Secret),
		CurrentUser: handlers.CurrentUser(users, logger),
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("port", cfg.Port))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(sctx)
}
