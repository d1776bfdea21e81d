package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/chisomo/loan-ledger/internal/config"
	"github.com/chisomo/loan-ledger/internal/repository"
	"github.com/chisomo/loan-ledger/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting loan status scheduler")

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	loanRepo := repository.NewLoanRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notifier := service.NewMessageNotifier(messageRepo, logger)
	reminders := repository.NewRedisReminderLog(redisClient)
	sweeps := service.NewSweepService(loanRepo, notifier, reminders, cfg, logger)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		logger.Fatal("invalid scheduler timezone", zap.Error(err))
	}

	// A job that outlives its own interval skips the next firing instead
	// of overlapping itself.
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(location),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)

	if err := setupCronJobs(c, cfg, sweeps, logger); err != nil {
		logger.Fatal("failed to schedule jobs", zap.Error(err))
	}

	c.Start()
	logger.Info("scheduler started")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down scheduler...")
	<-c.Stop().Done()
	logger.Info("scheduler stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, sweeps *service.SweepService, logger *zap.Logger) error {
	timeout := cfg.GetSweepTimeout()

	// Daily job promoting past-due loans to Overdue
	_, err := c.AddFunc(cfg.Scheduler.OverdueSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		logger.Info("running overdue sweep")
		if _, err := sweeps.RunOverdueSweep(ctx); err != nil {
			logger.Error("overdue sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	// Weekly job reminding about loans due within the window
	_, err = c.AddFunc(cfg.Scheduler.DueSoonSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		logger.Info("running due-soon check")
		if _, err := sweeps.RunDueSoonCheck(ctx); err != nil {
			logger.Error("due-soon check failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	// Monthly portfolio digest
	_, err = c.AddFunc(cfg.Scheduler.SummarySpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		logger.Info("running monthly summary")
		if err := sweeps.RunMonthlySummary(ctx); err != nil {
			logger.Error("monthly summary failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	logger.Info("cron jobs scheduled",
		zap.String("overdue", cfg.Scheduler.OverdueSpec),
		zap.String("due_soon", cfg.Scheduler.DueSoonSpec),
		zap.String("summary", cfg.Scheduler.SummarySpec),
	)

	return nil
}
