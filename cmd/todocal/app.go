package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nhle/todocal/internal/auth"
	"github.com/nhle/todocal/internal/cache"
	"github.com/nhle/todocal/internal/credential"
	"github.com/nhle/todocal/internal/logging"
	"github.com/nhle/todocal/internal/model"
	"github.com/nhle/todocal/internal/service"
	"github.com/nhle/todocal/internal/store"
)

// app holds everything a command needs, wired from config.
type app struct {
	cfg    *model.AppConfig
	logger *log.Logger
	clock  service.SystemClock

	store  *store.SQLiteStore
	cache  cache.Cache
	redis  *cache.RedisCache
	tokens *auth.Tokens

	todos   *service.TodoService
	queries *service.QueryService
	tags    *service.TagService
	users   *service.UserService
}

// openApp opens storage and builds the services. Redis is optional: when
// it is not configured or unreachable the cache is a no-op.
func openApp(ctx context.Context, cfg *model.AppConfig) (*app, error) {
	logger := logging.New(os.Stderr, cfg.Log)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	clock := service.SystemClock{Location: loc}

	if dir := filepath.Dir(cfg.Database.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}
	s, err := store.NewSQLiteStore(cfg.Database.Path, store.WithNow(clock.Now))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, clock: clock, store: s, cache: cache.Nop{}}

	if cfg.Redis.Addr != "" {
		rc, err := cache.Connect(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, calendar cache disabled", "addr", cfg.Redis.Addr, "err", err)
		} else {
			a.redis = rc
			a.cache = rc
		}
	}

	secret, source, err := credential.ResolveSigningSecret(cfg.Auth, credential.Open)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("resolving signing secret: %w", err)
	}
	if source == credential.SourceEphemeral {
		logger.Warn("no signing secret configured, tokens will not survive a restart")
	}
	a.tokens = auth.NewTokens(secret, cfg.Auth.TokenTTL, clock.Now)

	svcLogger := logger.WithPrefix("service")
	a.todos = service.NewTodoService(s, s, a.cache, svcLogger)
	a.queries = service.NewQueryService(s, a.cache, clock, svcLogger)
	a.tags = service.NewTagService(s)
	a.users = service.NewUserService(s, a.tokens)

	return a, nil
}

func (a *app) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("closing redis", "err", err)
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing database", "err", err)
	}
}

// lookupUser resolves a username given on the command line.
func (a *app) lookupUser(ctx context.Context, username string) (*model.User, error) {
	if username == "" {
		return nil, errors.New("--user is required")
	}
	u, err := a.users.UserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("looking up user %q: %w", username, err)
	}
	return u, nil
}

// withApp loads config, opens the app and closes it after fn returns.
func withApp(ctx context.Context, fn func(ctx context.Context, a *app) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(ctx, a)
}

const commandTimeout = 30 * time.Second
