package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/mentorai"
	"github.com/aretw0/mentorai/internal/config"
	httpAdapter "github.com/aretw0/mentorai/pkg/adapters/http"
	"github.com/aretw0/mentorai/pkg/adapters/jwtauth"
	"github.com/aretw0/mentorai/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/mentorai/pkg/adapters/redis"
	"github.com/aretw0/mentorai/pkg/adapters/sqlite"
	"github.com/aretw0/mentorai/pkg/adapters/supabase"
	"github.com/aretw0/mentorai/pkg/catalog"
	"github.com/aretw0/mentorai/pkg/credentials"
	"github.com/aretw0/mentorai/pkg/observability"
	"github.com/aretw0/mentorai/pkg/persistence/middleware"
	"github.com/aretw0/mentorai/pkg/ports"
	"github.com/aretw0/mentorai/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// runtime is everything a command needs, built from the configuration.
type runtime struct {
	app      *mentorai.App
	streams  *httpAdapter.StreamManager
	metrics  *observability.Metrics
	registry *prometheus.Registry
	verifier *jwtauth.Verifier
	closers  []func() error
}

func (rt *runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		errs = append(errs, rt.closers[i]())
	}
	return errors.Join(errs...)
}

// build wires the backend selected by cfg. The caller must Close the result.
func build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*runtime, error) {
	rt := &runtime{streams: httpAdapter.NewStreamManager(logger)}
	if cfg.Metrics {
		rt.registry = prometheus.NewRegistry()
		rt.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		rt.metrics = observability.NewMetrics(rt.registry)
	}

	// Workspace drafts.
	var (
		store      ports.WorkspaceStore = memory.NewStore()
		sessOpts                        = []session.Option{session.WithLogger(logger), session.WithDiffHook(rt.streams.Publish)}
		denylist   jwtauth.Denylist     = jwtauth.NewMemoryDenylist()
	)
	if cfg.Redis.Addr != "" {
		rs := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redisAdapter.WithTTL(cfg.Redis.TTL),
			redisAdapter.WithPrefix(cfg.Redis.Prefix+"workspace:"),
		)
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		rt.closers = append(rt.closers, rs.Close)
		store = rs
		sessOpts = append(sessOpts, session.WithLocker(redisAdapter.NewLocker(rs.Client(), cfg.Redis.Prefix)))
		denylist = redisAdapter.NewDenylist(rs.Client(), cfg.Redis.Prefix)
		logger.Info("Workspace drafts stored in Redis", "addr", cfg.Redis.Addr)
	}
	active, fallback, err := cfg.Drafts.Keys()
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	if active != nil {
		seal, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: active, FallbackKeys: fallback})
		if err != nil {
			_ = rt.Close()
			return nil, err
		}
		store = middleware.Chain(store, seal)
		logger.Info("Workspace drafts encrypted at rest", "fallback_keys", len(fallback))
	}

	// Access tokens.
	secret := cfg.Supabase.JWTSecret
	if secret == "" && cfg.Backend != config.BackendSupabase {
		secret = devSecret()
		logger.Warn("No JWT secret configured; generated one for this process. Tokens from `mentorai token` will not validate against it.")
	}
	if secret != "" {
		v, err := jwtauth.NewVerifier([]byte(secret), jwtauth.WithDenylist(denylist))
		if err != nil {
			_ = rt.Close()
			return nil, err
		}
		rt.verifier = v
	}

	backend, err := rt.backend(ctx, cfg, logger)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}

	opts := []mentorai.Option{mentorai.WithLogger(logger)}
	if rt.metrics != nil {
		opts = append(opts, mentorai.WithLifecycleHooks(observability.Hooks(logger, rt.metrics)))
	}
	rt.app = mentorai.New(backend, session.NewManager(store, sessOpts...), opts...)
	return rt, nil
}

func (rt *runtime) backend(ctx context.Context, cfg config.Config, logger *slog.Logger) (mentorai.Backend, error) {
	var b mentorai.Backend
	if rt.verifier != nil {
		b.Verifier, b.Revoker = rt.verifier, rt.verifier
	}

	switch cfg.Backend {
	case config.BackendMemory:
		mb := memory.NewBackend()
		mb.PutCompanies(catalog.Sample()...)
		b.Profiles, b.Companies, b.Settings = mb, mb.Companies(), mb.Settings()
		b.Credentials = memoryStores(mb)
		b.Feed = mb.Feed
		logger.Info("Using in-memory backend with the sample catalog")

	case config.BackendSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return b, err
		}
		rt.closers = append(rt.closers, db.Close)
		b.Profiles, b.Companies, b.Settings = db, db.Companies(), db.Settings()
		b.Credentials = db.CredentialStores()
		b.Feed = db.Feed
		logger.Info("Using SQLite backend", "path", cfg.SQLite.Path)

	case config.BackendSupabase:
		client, err := supabase.New(cfg.Supabase.URL, cfg.Supabase.AnonKey,
			supabase.WithServiceKey(cfg.Supabase.ServiceKey),
			supabase.WithLogger(logger),
		)
		if err != nil {
			return b, err
		}
		b.Profiles, b.Companies, b.Settings = client.Profiles(), client.Companies(), client.Settings()
		b.Credentials = client.CredentialStores()
		b.Feed = client.Realtime()
		if rt.verifier == nil {
			b.Verifier, b.Revoker = client.Auth(), client.Auth()
		}
		logger.Info("Using hosted backend", "url", cfg.Supabase.URL)

	default:
		return b, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	return b, nil
}

func memoryStores(mb *memory.Backend) credentials.Stores {
	return credentials.Stores{
		Education:      mb.Education,
		Experiences:    mb.Experiences,
		Certifications: mb.Certifications,
		Projects:       mb.Projects,
		Skills:         mb.Skills,
		Files:          mb,
	}
}

func devSecret() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
