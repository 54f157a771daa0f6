package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/FranksOps/namevet/internal/fingerprint"
	"github.com/FranksOps/namevet/internal/metrics"
	"github.com/FranksOps/namevet/internal/places"
	"github.com/FranksOps/namevet/internal/rdap"
	"github.com/FranksOps/namevet/internal/storage"
	"github.com/FranksOps/namevet/internal/storage/csvbackend"
	"github.com/FranksOps/namevet/internal/storage/jsonbackend"
	"github.com/FranksOps/namevet/internal/storage/postgres"
	"github.com/FranksOps/namevet/internal/storage/sqlite"
	"github.com/FranksOps/namevet/internal/validator"
	"github.com/FranksOps/namevet/pkg/httpclient"
	"github.com/FranksOps/namevet/pkg/proxy"
	"github.com/FranksOps/namevet/pkg/ratelimit"
	"github.com/FranksOps/namevet/pkg/useragent"
)

// app holds the components built from configuration for one command.
type app struct {
	cfg       *Config
	logger    *slog.Logger
	checker   *rdap.Checker
	directory *places.Client
	validator *validator.Validator
	metrics   *metrics.Server
}

func newApp(cfg *Config, logger *slog.Logger) (*app, error) {
	client, err := newHTTPClient(cfg.HTTP, logger)
	if err != nil {
		return nil, err
	}

	checker, err := rdap.New(rdap.Config{
		Servers: cfg.RDAP.Servers,
		Primary: cfg.RDAP.Primary,
		Timeout: cfg.RDAP.Timeout,
		Client:  client,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	directory, err := places.NewClient(places.Config{
		APIKey:     cfg.Places.APIKey,
		Endpoint:   cfg.Places.Endpoint,
		Language:   cfg.Places.Language,
		Joiner:     cfg.Places.Joiner,
		MaxResults: cfg.Places.MaxResults,
		Timeout:    cfg.Places.Timeout,
		Client:     client,
		Logger:     logger,
	})
	if errors.Is(err, places.ErrNoAPIKey) {
		logger.Warn("no directory API key configured, similar-business checks are skipped")
	} else if err != nil {
		return nil, err
	}

	v, err := validator.New(validator.Config{
		Domains:     checker,
		Directory:   directory,
		Concurrency: cfg.Validate.Concurrency,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		logger:    logger,
		checker:   checker,
		directory: directory,
		validator: v,
	}
	if cfg.Metrics.Port > 0 {
		a.metrics = metrics.Start(cfg.Metrics.Port, logger)
	}
	return a, nil
}

func newHTTPClient(cfg HTTPConfig, logger *slog.Logger) (*httpclient.Client, error) {
	profile, err := fingerprint.ParseProfile(cfg.TLSProfile)
	if err != nil {
		return nil, err
	}
	transport, err := fingerprint.Transport(profile, proxy.FromRequest)
	if err != nil {
		return nil, err
	}

	var proxies *proxy.Pool
	if len(cfg.Proxies) > 0 || cfg.ProxyFile != "" {
		proxies = proxy.NewPool(proxy.Config{})
		if err := proxies.Add(cfg.Proxies...); err != nil {
			return nil, err
		}
		if cfg.ProxyFile != "" {
			if err := proxies.LoadFile(cfg.ProxyFile); err != nil {
				return nil, err
			}
		}
		logger.Debug("proxy rotation enabled", "proxies", proxies.Len())
		if profile != fingerprint.ProfileGo {
			logger.Warn("tls profile is not applied to proxied requests", "tls_profile", profile, "proxies", proxies.Len())
		}
	}

	var limiter *ratelimit.Limiter
	if cfg.RPS > 0 {
		limiter = ratelimit.NewLimiter(cfg.RPS, cfg.Jitter)
	}

	agents := useragent.NewPool(cfg.UserAgents)
	logger.Debug("lookup client ready", "tls_profile", profile, "user_agents", agents.All(), "rps", cfg.RPS)

	return httpclient.New(httpclient.Config{
		Timeout:    cfg.Timeout,
		Transport:  transport,
		UserAgents: agents,
		Limiter:    limiter,
		Proxies:    proxies,
	})
}

func (a *app) Close() {
	if a.metrics == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.metrics.Stop(ctx); err != nil {
		a.logger.Warn("metrics server shutdown", "err", err)
	}
}

// openBackend returns the configured export sink, or nil for "none".
func openBackend(ctx context.Context, cfg StorageConfig) (storage.Backend, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" || backend == "none" {
		return nil, nil
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("storage: %s backend needs storage.dsn", backend)
	}

	switch backend {
	case "sqlite":
		return sqlite.New(cfg.DSN)
	case "postgres":
		return postgres.New(ctx, cfg.DSN)
	case "json":
		return jsonbackend.New(cfg.DSN)
	case "csv":
		return csvbackend.New(cfg.DSN)
	}
	return nil, fmt.Errorf("storage: unknown backend %q", cfg.Backend)
}
