// Package main is the Campus Social seed command.
//
// It loads configuration, opens the configured store (PostgreSQL when
// DATABASE_URL is set, in-memory otherwise), applies migrations, inserts a
// small demo campus and then drives the core operations once: a reaction,
// a denied guest reaction and a profile view. The result is logged, which
// makes the command a quick end-to-end check of a deployment.
//
// With -rollback it only reverts the most recent migration and exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/campus-hub/campus-social/config"
	"github.com/campus-hub/campus-social/internal/application/platform"
	"github.com/campus-hub/campus-social/internal/domain/user"
	"github.com/campus-hub/campus-social/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	rollback := flag.Bool("rollback", false, "revert the most recent migration and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *rollback); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, rollback bool) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting Campus Social seed",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"postgres", cfg.UsesPostgres(),
		"redis", cfg.Redis.Enabled,
	)
	ctx = logger.WithContext(ctx, log)

	if rollback {
		return rollbackSchema(ctx, cfg, log)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. STORAGE
	// ─────────────────────────────────────────────────────────────────────────
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	// ─────────────────────────────────────────────────────────────────────────
	// 4. APPLICATION
	// ─────────────────────────────────────────────────────────────────────────
	app, err := buildApp(ctx, cfg, store, log)
	if err != nil {
		return err
	}
	defer app.Close()

	// ─────────────────────────────────────────────────────────────────────────
	// 5. DEMO DATA
	// ─────────────────────────────────────────────────────────────────────────
	demo, err := seedDemo(ctx, store.Repos, log)
	if err != nil {
		return fmt.Errorf("failed to seed demo data: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. EXERCISE THE CORE
	// ─────────────────────────────────────────────────────────────────────────
	return exercise(ctx, app, demo)
}

// exercise runs each core operation once against the seeded data. It logs
// through the logger carried by ctx.
func exercise(ctx context.Context, app *App, demo Demo) error {
	log := logger.FromContext(ctx)
	student := platform.Identity{UserID: demo.StudentID, Role: user.RoleStudent}
	guest := platform.Identity{UserID: 0, Role: user.RoleGuest}

	res, err := app.Service.React(ctx, student, "like", demo.PostID)
	if err != nil {
		return fmt.Errorf("student reaction: %w", err)
	}
	log.Info("reaction toggled",
		logger.PostID(res.PostID),
		slog.String("type", res.Type.String()),
		slog.Bool("active", res.Active),
		slog.Any("warnings", res.Warnings),
	)

	if _, err := app.Service.React(ctx, guest, "like", demo.PostID); err != nil {
		log.Info("guest reaction refused", logger.Err(err))
	}

	view, err := app.Service.ViewProfile(ctx, student, demo.ProfessorID)
	if err != nil {
		return fmt.Errorf("view profile: %w", err)
	}
	if view != nil && view.Public != nil {
		log.Info("public profile",
			logger.UserID(view.Public.User.ID),
			slog.Int("skills", view.Public.Stats.TotalSkills),
			slog.Int("projects", view.Public.Stats.TotalProjects),
			slog.Int("posts", view.Public.Stats.TotalPosts),
		)
	}

	full, err := app.Service.GetFullProfile(ctx, demo.StudentID)
	if err != nil {
		return fmt.Errorf("full profile: %w", err)
	}
	if full != nil {
		log.Info("full profile",
			logger.UserID(full.User.ID),
			slog.Int("skills", full.Stats.TotalSkills),
			slog.Int("projects", full.Stats.TotalProjects),
			slog.Int("posts", full.Stats.TotalPosts),
			slog.Bool("has_cv", full.CV != nil),
		)
	}

	counts, err := app.ReactionCounts(ctx, demo.PostID)
	if err != nil {
		log.Warn("reaction counts unavailable", logger.Err(err))
	} else {
		log.Info("reaction counts", logger.PostID(demo.PostID), slog.Any("counts", counts))
	}

	if m := app.Mediator.Metrics(); m != nil {
		snap := m.Snapshot()
		log.Info("mediator metrics",
			slog.Int64("notified", snap.TotalNotified),
			slog.Int64("reactor_runs", snap.TotalReactorExecs),
			slog.Int64("reactor_failures", snap.TotalReactorFailures),
			slog.Float64("success_rate", snap.ReactorSuccessRate),
		)
	}

	log.Info("seed completed")
	return nil
}

// setupLogger configures structured logging.
func setupLogger(cfg *config.Config) *slog.Logger {
	level := logger.ParseLevel(cfg.Observability.LogLevel)
	if cfg.App.Debug {
		level = slog.LevelDebug
	}

	opts := logger.ForEnvironment(string(cfg.App.Environment), level)
	switch cfg.Observability.LogFormat {
	case string(logger.FormatJSON):
		opts.Format = logger.FormatJSON
	case string(logger.FormatText):
		opts.Format = logger.FormatText
	}
	opts.Service = cfg.App.Name

	log := logger.New(opts)
	slog.SetDefault(log)

	return log
}
