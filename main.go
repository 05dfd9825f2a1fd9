package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/slack-go/slack"
	"github.com/teamops/muster-bot/config"
	"github.com/teamops/muster-bot/handler"
	"github.com/teamops/muster-bot/policy"
	"github.com/teamops/muster-bot/repository"
	"github.com/teamops/muster-bot/scheduler"
	"github.com/teamops/muster-bot/workflow"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v.", err)
	}

	logger, err := newLogger(cfg.LoggerLevel)
	if err != nil {
		log.Fatalf("Build logger: %v.", err)
	}
	defer logger.Sync()

	db, err := sqlx.Open("sqlite3", cfg.DatabaseFile)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("ping database", zap.Error(err))
	}

	if err := setupDatabase(ctx, db, cfg.ReportingUserID); err != nil {
		logger.Fatal("setup database", zap.Error(err))
	}
	logger.Info("database initialized", zap.String("file", cfg.DatabaseFile))

	responseRepo := repository.NewResponseRepository(db)
	leaveRepo := repository.NewLeaveRepository(db)
	holidayRepo := repository.NewHolidayRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	configRepo := repository.NewConfigRepository(db)
	threadRepo := repository.NewDailyThreadRepository(db)

	pol := policy.New(holidayRepo, adminRepo, leaveRepo)

	engine := workflow.NewEngine(
		slack.New(cfg.SlackBotToken),
		cfg.TargetChannelID,
		pol,
		responseRepo,
		leaveRepo,
		threadRepo,
		messageRepo,
		logger,
	)

	jobs, err := scheduleJobs(ctx, configRepo, engine)
	if err != nil {
		logger.Fatal("read schedule config", zap.Error(err))
	}
	go scheduler.New(jobs, logger).Run(ctx)

	h := handler.NewHandler(engine, pol, holidayRepo, cfg.SlackSigningSecret, logger)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Post("/slack/events", h.ReceiveEvent)
	r.Post("/slack/commands", h.ReceiveCommand)
	r.Post("/slack/interactions", h.ReceiveInteraction)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Info("listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen and serve", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

// setupDatabase creates the schema if absent and seeds the config
// defaults and the initial admin.
func setupDatabase(ctx context.Context, db *sqlx.DB, reportingUserID string) error {
	if err := repository.Migrate(ctx, db); err != nil {
		return err
	}
	if err := repository.NewConfigRepository(db).SeedDefaults(ctx); err != nil {
		return err
	}
	if reportingUserID != "" {
		if err := repository.NewAdminRepository(db).Add(ctx, reportingUserID); err != nil {
			return err
		}
	}

	return nil
}

// scheduleJobs arms the three recurring triggers from the config table.
// Check-in runs Monday through Friday; reminders and summary are armed
// every day on purpose and rely on the engine's own off-day check.
func scheduleJobs(ctx context.Context, configRepo *repository.ConfigRepository, engine *workflow.Engine) ([]scheduler.Job, error) {
	times, err := configRepo.Map(ctx)
	if err != nil {
		return nil, err
	}

	at := func(key, fallback string) string {
		if v, ok := times[key]; ok {
			return v
		}
		return fallback
	}

	return []scheduler.Job{
		{
			Name:         "daily_checkin",
			At:           at(repository.ConfigKeyCheckinTime, "08:00"),
			WeekdaysOnly: true,
			Run: func(ctx context.Context) error {
				return engine.PostCheckin(ctx, false)
			},
		},
		{
			Name: "reminders",
			At:   at(repository.ConfigKeyReminderTime, "10:00"),
			Run: func(ctx context.Context) error {
				return engine.PostReminders(ctx, false)
			},
		},
		{
			Name: "daily_summary",
			At:   at(repository.ConfigKeySummaryTime, "11:00"),
			Run: func(ctx context.Context) error {
				return engine.PostSummary(ctx, false)
			},
		},
	}, nil
}

func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
