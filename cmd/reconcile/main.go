package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	reconcileapp "github.com/partnerportal/backend/internal/application/reconcile"
	"github.com/partnerportal/backend/internal/infrastructure/commerce"
	"github.com/partnerportal/backend/internal/infrastructure/config"
	"github.com/partnerportal/backend/internal/infrastructure/event"
	"github.com/partnerportal/backend/internal/infrastructure/logger"
	"github.com/partnerportal/backend/internal/infrastructure/persistence"
)

// Runs a full bulk reconciliation against the commerce platform and prints
// the report as JSON. Meant for operators and cron, not for the HTTP path.
func main() {
	var (
		logLevel string
		mode     string
		delay    time.Duration
		timeout  time.Duration
	)

	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&mode, "mode", "link", "Job to run: link (match customers to accounts) or ensure (create remote customers for unlinked accounts)")
	flag.DurationVar(&delay, "delay", -1, "Pause between records (default: configured reconcile.bulk_delay)")
	flag.DurationVar(&timeout, "timeout", 0, "Abort the run after this duration (0 = no limit)")
	flag.Parse()

	if mode != "link" && mode != "ensure" {
		fmt.Fprintf(os.Stderr, "Unknown mode %q (want link or ensure)\n", mode)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	accountRepo := persistence.NewGormAccountRepository(db.DB)
	attributeRepo := persistence.NewGormAttributeRepository(db.DB)

	commerceConfig := commerce.NewConfig(cfg.Commerce.APIBaseURL, cfg.Commerce.AccessToken, cfg.Commerce.WebhookSecret)
	commerceConfig.TimeoutSeconds = cfg.Commerce.TimeoutSeconds
	commerceConfig.PageSize = cfg.Commerce.PageSize
	gateway, err := commerce.NewClient(commerceConfig)
	if err != nil {
		log.Fatal("Failed to initialize commerce client", zap.Error(err))
	}

	eventBus := event.NewInMemoryEventBus(log)

	service := reconcileapp.NewService(reconcileapp.ServiceConfig{
		Accounts:   accountRepo,
		Attributes: attributeRepo,
		Gateway:    gateway,
		EventBus:   eventBus,
		Logger:     log,
	})

	if delay < 0 {
		delay = cfg.Reconcile.BulkDelay
	}
	bulk := reconcileapp.NewBulkService(service, accountRepo, gateway, delay, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	log.Info("Starting bulk reconciliation",
		zap.String("mode", mode),
		zap.Duration("delay", delay),
		zap.Duration("timeout", timeout),
	)

	run := bulk.Run
	if mode == "ensure" {
		run = bulk.EnsureMissing
	}
	report, runErr := run(ctx)
	if report != nil {
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			log.Fatal("Failed to encode report", zap.Error(err))
		}
		fmt.Println(string(out))
	}

	if runErr != nil {
		log.Error("Bulk reconciliation did not complete", zap.Error(runErr))
		os.Exit(1)
	}

	log.Info("Bulk reconciliation completed",
		zap.Int("total", report.Total),
		zap.Int("linked", len(report.Linked)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("errors", len(report.Errors)),
		zap.Int("manual_review", len(report.ManualReview)),
	)
}
