// Package main runs the HR Payroll web portal.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/hrpayroll/modules/portal"
	"github.com/dmitrymomot/hrpayroll/pkg/apiclient"
	"github.com/dmitrymomot/hrpayroll/pkg/clientip"
	"github.com/dmitrymomot/hrpayroll/pkg/config"
	"github.com/dmitrymomot/hrpayroll/pkg/cookie"
	"github.com/dmitrymomot/hrpayroll/pkg/httpserver"
	"github.com/dmitrymomot/hrpayroll/pkg/logger"
	"github.com/dmitrymomot/hrpayroll/pkg/redis"
	"github.com/dmitrymomot/hrpayroll/pkg/requestid"
)

type appConfig struct {
	Env     string `env:"APP_ENV" envDefault:"development"`
	Service string `env:"APP_NAME" envDefault:"hrportal"`
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "hrportal: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var (
		appCfg    appConfig
		apiCfg    apiclient.Config
		cookieCfg cookie.Config
		serverCfg httpserver.Config
		portalCfg portal.Config
	)
	if err := errors.Join(
		config.Load(&appCfg),
		config.Load(&apiCfg),
		config.Load(&cookieCfg),
		config.Load(&serverCfg),
		config.Load(&portalCfg),
	); err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(appCfg.Env, appCfg.Service),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			clientip.LoggerExtractor(),
		),
	)
	logger.SetAsDefault(log)

	cookies, err := cookie.NewFromConfig(cookieCfg)
	if err != nil {
		return fmt.Errorf("cookie manager: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := []portal.Option{portal.WithLogger(log), portal.WithRegistry(reg)}
	if portalCfg.TokenStorage == portal.StorageRedis {
		var redisCfg redis.Config
		if err := config.Load(&redisCfg); err != nil {
			return err
		}
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer func(c *goredis.Client) {
			if err := c.Close(); err != nil {
				log.Warn("failed to close redis client", logger.Error(err))
			}
		}(client)
		opts = append(opts, portal.WithRedis(client))
	}

	api := apiclient.NewFromConfig(apiCfg, apiclient.WithLogger(log))

	p, err := portal.New(portalCfg, api, cookies, opts...)
	if err != nil {
		return err
	}

	log.Info("starting portal",
		slog.String("addr", serverCfg.Addr),
		slog.String("api", api.BaseURL()),
		slog.String("token_storage", portalCfg.TokenStorage),
	)

	srv := httpserver.NewFromConfig(serverCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, p.Handler())
}
