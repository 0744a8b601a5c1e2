package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/campus-hub/campus-social/config"
	"github.com/campus-hub/campus-social/internal/application/eventhandler"
	"github.com/campus-hub/campus-social/internal/application/interaction"
	"github.com/campus-hub/campus-social/internal/application/platform"
	"github.com/campus-hub/campus-social/internal/application/profile"
	"github.com/campus-hub/campus-social/internal/domain/access"
	"github.com/campus-hub/campus-social/internal/domain/post"
	"github.com/campus-hub/campus-social/internal/domain/project"
	"github.com/campus-hub/campus-social/internal/domain/shared"
	"github.com/campus-hub/campus-social/internal/domain/user"
	"github.com/campus-hub/campus-social/internal/infrastructure/messaging"
	"github.com/campus-hub/campus-social/internal/infrastructure/persistence/memory"
	"github.com/campus-hub/campus-social/internal/infrastructure/persistence/postgres"
	campusredis "github.com/campus-hub/campus-social/internal/infrastructure/persistence/redis"
	"github.com/campus-hub/campus-social/pkg/circuitbreaker"
	"github.com/campus-hub/campus-social/pkg/logger"
	"github.com/campus-hub/campus-social/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// STORAGE
// ══════════════════════════════════════════════════════════════════════════════

// Repos is the set of repositories the application reads and writes.
type Repos struct {
	Users        user.Repository
	Skills       user.SkillRepository
	CVs          user.CVRepository
	Projects     project.Repository
	Posts        post.Repository
	Interactions post.InteractionRepository
}

func (r Repos) profileSources() profile.Sources {
	return profile.Sources{
		Users:    r.Users,
		Skills:   r.Skills,
		Projects: r.Projects,
		Posts:    r.Posts,
		CVs:      r.CVs,
	}
}

// Store is an opened backend.
type Store struct {
	Repos
	close func()
}

// Close releases the backend.
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

func memoryStore() *Store {
	m := memory.NewStore()
	return &Store{Repos: Repos{
		Users:        m.Users(),
		Skills:       m.Skills(),
		CVs:          m.CVs(),
		Projects:     m.Projects(),
		Posts:        m.Posts(),
		Interactions: m.Interactions(),
	}}
}

// openStore connects to PostgreSQL when a URL is configured and falls back
// to the in-memory store otherwise.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Store, error) {
	if !cfg.UsesPostgres() {
		log.Warn("DATABASE_URL not set, using in-memory store")
		return memoryStore(), nil
	}

	conn, err := connectPostgres(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		migrator := postgres.NewMigrator(conn)
		applied, err := migrator.Migrate(ctx)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
		log.Info("migrations applied", slog.Int("count", applied))
		logSchema(ctx, migrator, log)
	}

	return &Store{
		Repos: Repos{
			Users:        postgres.NewUserRepository(conn),
			Skills:       postgres.NewSkillRepository(conn),
			CVs:          postgres.NewCVRepository(conn),
			Projects:     postgres.NewProjectRepository(conn),
			Posts:        postgres.NewPostRepository(conn),
			Interactions: postgres.NewInteractionRepository(conn),
		},
		close: func() {
			log.Info("closing database connection...")
			conn.Close()
		},
	}, nil
}

// connectPostgres opens the pool with startup retries and logs its health.
func connectPostgres(ctx context.Context, cfg *config.Config, log *slog.Logger) (*postgres.Connection, error) {
	pgCfg := postgres.DefaultConfig()
	pgCfg.URL = cfg.Database.URL
	pgCfg.MaxConns = cfg.Database.MaxConns
	pgCfg.MinConns = cfg.Database.MinConns
	pgCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	pgCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime
	pgCfg.QueryTimeout = cfg.Database.QueryTimeout

	if _, err := pgCfg.PoolConfig(); err != nil {
		return nil, fmt.Errorf("invalid database config: %w", err)
	}

	log.Info("connecting to database...")
	conn, err := retry.DoWithData(ctx, startupRetrier(log, "postgres"), func(ctx context.Context) (*postgres.Connection, error) {
		return postgres.NewConnection(ctx, pgCfg)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	health, err := conn.Health(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("database health check: %w", err)
	}
	if !health.Healthy {
		conn.Close()
		return nil, fmt.Errorf("database unhealthy: %s", health.Error)
	}
	log.Info("database connected",
		slog.Duration("ping", health.PingLatency),
		slog.Int("total_conns", int(health.TotalConns)),
		slog.Int("idle_conns", int(health.IdleConns)),
		slog.Int("max_conns", int(health.MaxConns)),
	)

	return conn, nil
}

// rollbackSchema reverts the most recent migration.
func rollbackSchema(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	if !cfg.UsesPostgres() {
		return errors.New("rollback requires DATABASE_URL")
	}

	conn, err := connectPostgres(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	migrator := postgres.NewMigrator(conn)
	if err := migrator.Rollback(ctx); err != nil {
		return fmt.Errorf("failed to roll back: %w", err)
	}
	log.Info("latest migration rolled back")
	logSchema(ctx, migrator, log)
	return nil
}

// logSchema reports the current schema version and any pending migrations.
func logSchema(ctx context.Context, m *postgres.Migrator, log *slog.Logger) {
	status, err := m.Status(ctx)
	if err != nil {
		log.Warn("migration status unavailable", logger.Err(err))
		return
	}

	version, pending := 0, 0
	for _, mig := range status {
		if mig.IsApplied {
			version = mig.Version
		} else {
			pending++
		}
	}
	log.Info("schema status", slog.Int("version", version), slog.Int("pending", pending))
}

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION
// ══════════════════════════════════════════════════════════════════════════════

// App holds the wired application.
type App struct {
	Service  *platform.Service
	Mediator *messaging.Mediator

	// Counter is nil when Redis is disabled.
	Counter *campusredis.ReactionCounter

	repos Repos
	redis *goredis.Client
}

// Close releases the Redis client, if any.
func (a *App) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

// ReactionCounts returns per-type counts for a post, from Redis when the
// counter is wired and from the ledger otherwise.
func (a *App) ReactionCounts(ctx context.Context, postID int64) (map[string]int64, error) {
	if a.Counter != nil {
		return a.Counter.Counts(ctx, postID)
	}

	tallies, err := a.repos.Interactions.CountByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(tallies))
	for t, n := range tallies {
		counts[t.String()] = int64(n)
	}
	return counts, nil
}

// buildApp registers reactors, builds the mediator and wires the registries
// and the aggregator into the platform service. Redis reactors are skipped
// when Redis is disabled or unreachable.
func buildApp(ctx context.Context, cfg *config.Config, store *Store, log *slog.Logger) (*App, error) {
	app := &App{repos: store.Repos}

	builder := messaging.NewMediatorBuilder(messaging.MediatorConfig{
		Logger:        log,
		EnableMetrics: cfg.Observability.MetricsEnabled,
	})

	activity := eventhandler.NewActivityLog(log, eventhandler.DefaultActivityLogConfig())
	for _, event := range activity.Events() {
		builder.Register(event, "activity-log", activity.React)
	}

	if cfg.Redis.Enabled {
		rc := redisConfig(cfg.Redis)
		if _, err := rc.Options(); err != nil {
			return nil, fmt.Errorf("invalid redis config: %w", err)
		}

		client, err := retry.DoWithData(ctx, startupRetrier(log, "redis"), func(ctx context.Context) (*goredis.Client, error) {
			return campusredis.NewClient(ctx, rc)
		})
		if err != nil {
			log.Warn("redis unavailable, reactors disabled", logger.Err(err))
		} else {
			app.redis = client
			app.Counter = campusredis.NewReactionCounter(client, log)
			forwarder := campusredis.NewEventForwarder(client, campusredis.EventForwarderConfig{
				Channel: cfg.Redis.EventsChannel,
				Logger:  log,
			})

			// One breaker for both reactors: they share the Redis connection.
			breaker := circuitbreaker.ForReactor("redis", func(name string, from, to circuitbreaker.State) {
				log.Warn("circuit breaker state changed",
					slog.String("breaker", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()),
				)
			})

			builder.Register(shared.EventInteractionToggled, "reaction-counter", messaging.Guard(breaker, app.Counter.React))
			for _, event := range activity.Events() {
				builder.Register(event, "event-forwarder", messaging.Guard(breaker, forwarder.React))
			}
			log.Info("redis reactors registered", slog.String("instance_id", forwarder.InstanceID()))
		}
	}

	mediator, err := builder.Build()
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to build mediator: %w", err)
	}
	app.Mediator = mediator

	interactions := interaction.NewRegistry(interaction.RegistryConfig{Mediator: mediator, Logger: log})
	opts := make(map[post.InteractionType]interaction.Options)
	for _, t := range []post.InteractionType{post.InteractionLike, post.InteractionLove, post.InteractionSave} {
		opts[t] = interaction.Options{AllowSelf: cfg.Interactions.AllowSelf(t.String())}
	}
	if err := interactions.Register(interaction.Defaults(store.Posts, store.Interactions, opts)...); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to register interactions: %w", err)
	}

	svc, err := platform.NewService(platform.Config{
		Access:       access.DefaultRegistry(),
		Interactions: interactions,
		Profiles:     profile.NewAggregator(store.profileSources(), cfg.Interactions.RecentPostLimit),
		Mediator:     mediator,
		Logger:       log,
	})
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Service = svc

	return app, nil
}

func startupRetrier(log *slog.Logger, dependency string) *retry.Retrier {
	return retry.Startup(func(attempt int, err error, delay time.Duration) {
		log.Warn("dependency not ready, retrying",
			slog.String("dependency", dependency),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			logger.Err(err),
		)
	})
}

func redisConfig(c config.RedisConfig) campusredis.Config {
	rc := campusredis.DefaultConfig()
	rc.URL = c.URL
	rc.Host = c.Host
	rc.Port = c.Port
	rc.Password = c.Password
	rc.DB = c.DB
	rc.PoolSize = c.PoolSize
	rc.DialTimeout = c.DialTimeout
	rc.ReadTimeout = c.ReadTimeout
	rc.WriteTimeout = c.WriteTimeout
	return rc
}
