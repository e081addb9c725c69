// @title                       Postboard API
// @version                     1.0
// @description                 Multi-user posting service: accounts, bearer tokens, posts and a paginated feed.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 "Bearer <access_token>" as returned by POST /login.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/postboard/postboard-api/docs"
	"github.com/postboard/postboard-api/internal/api"
	"github.com/postboard/postboard-api/internal/core/ports"
	"github.com/postboard/postboard-api/internal/core/service"
	redisdb "github.com/postboard/postboard-api/internal/infrastructure/db/redis"
	httpserver "github.com/postboard/postboard-api/internal/infrastructure/http"
	"github.com/postboard/postboard-api/internal/infrastructure/http/handlers"
	"github.com/postboard/postboard-api/internal/infrastructure/security"
	"github.com/postboard/postboard-api/internal/pkg/config"
	"github.com/postboard/postboard-api/pkg/logger"
)

const serviceName = "postboard-api"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.New(logger.Options{Service: serviceName, Output: os.Stderr})
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()
	log.Info().Str("driver", cfg.Store.Driver).Msg("store ready")

	hasher, err := security.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		return err
	}
	issuer, err := security.NewJWTIssuer(cfg.JWTSecret)
	if err != nil {
		return err
	}
	defaultRole, err := service.ResolveDefaultRole(ctx, st.roles)
	if err != nil {
		return err
	}

	health := map[string]handlers.Pinger{"store": st}
	var lock ports.Locker
	if redisCfg := (redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}); redisCfg.Enabled() {
		rdb, err := redisdb.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()

		lock = redisdb.NewLock(rdb, redisdb.BootstrapLockKey, 0, 0)
		health["redis"] = handlers.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis bootstrap lock enabled")
	}

	bootstrapper := service.NewBootstrapper(
		st.roles, st.accounts, hasher, lock,
		service.AdminCredentials{Username: cfg.Admin.Username, Password: cfg.Admin.Password},
		log,
	)
	if err := bootstrapper.EnsureAdmin(ctx); err != nil {
		return err
	}

	auth, err := service.NewAuthService(st.accounts, hasher, issuer, defaultRole, log)
	if err != nil {
		return err
	}

	e := api.NewRouter(api.Deps{
		Auth:     auth,
		Posts:    service.NewPostService(st.posts, st.accounts, log),
		Verifier: issuer,
		Health:   health,
		Log:      log,
		Metrics:  true,
	})

	return httpserver.Serve(ctx, e, ":"+cfg.Port, cfg.ShutdownTimeout, log)
}
