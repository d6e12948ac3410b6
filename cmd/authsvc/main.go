package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mkrupp/homecase-accounts/internal/infra/config"
	"github.com/mkrupp/homecase-accounts/internal/infra/logging"
	"github.com/mkrupp/homecase-accounts/internal/infra/transport/http"
	"github.com/mkrupp/homecase-accounts/internal/repo/user"
	"github.com/mkrupp/homecase-accounts/internal/svc/authsvc"
)

const (
	appName = "accounts"
	svcName = "authsvc"
)

type Config struct {
	config.EnvConfig

	Log  logging.LoggerConfig        `envPrefix:"LOG_"  toml:"log"`
	Auth authsvc.AuthConfig          `envPrefix:"AUTH_" toml:"auth"`
	HTTP authsvc.HTTPTransportConfig `envPrefix:"HTTP_" toml:"http"`
	User user.RepositoryConfig       `envPrefix:"USER_" toml:"user"`
}

func main() {
	var (
		cfg Config
		ctx = context.Background()

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	log := logging.GetLogger("cmd.authsvc")

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "error", "error", err)
		} else {
			log.InfoContext(ctx, "shutdown")
		}
	}()

	repoFactory, err := user.NewRepositoryFactory(cfg.User)
	if err != nil {
		return fmt.Errorf("new repository factory: %w", err)
	}

	gateway, err := authsvc.NewAuthGateway(ctx, repoFactory, cfg.Auth)
	if err != nil {
		return fmt.Errorf("new auth gateway: %w", err)
	}

	defer func() {
		if closeErr := gateway.Close(); closeErr != nil {
			log.WarnContext(ctx, "close auth gateway", "error", closeErr)
		}
	}()

	log.InfoContext(ctx, "starting",
		"driver", cfg.User.Driver,
		"tokenTTL", cfg.Auth.TokenTTL.String(),
		"hashCost", cfg.Auth.HashCost,
	)

	httpTransport := authsvc.NewHTTPTransport(gateway)

	if err := http.ListenAndServe(ctx, httpTransport, cfg.HTTP.HTTPTransportConfig); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}
