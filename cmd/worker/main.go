package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"dispatch/internal/config"
	"dispatch/internal/handler/http/respond"
	"dispatch/internal/infra/adapter/persistence/sqlstore"
	"dispatch/internal/infra/db"
	"dispatch/internal/infra/notifier"
	workerPkg "dispatch/internal/infra/worker"
	"dispatch/internal/observability/logging"
	"dispatch/internal/observability/metrics"
	"dispatch/internal/resilience/retry"
	"dispatch/internal/usecase/digest"
)

// waitForMigrations blocks until the API has created the schema.
func waitForMigrations(ctx context.Context, database *sql.DB) error {
	const probe = "SELECT 1 FROM articles LIMIT 1"
	return retry.WithBackoff(ctx, retry.StartupConfig(), func() error {
		_, err := database.ExecContext(ctx, probe)
		return err
	})
}

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, dialect, err := db.Open(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		logger.Error("failed to open database", slog.String("error", respond.SanitizeError(err)))
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()
	if err := metrics.RegisterDBStats(prometheus.DefaultRegisterer, database, "dispatch"); err != nil {
		logger.Warn("database pool metrics unavailable", slog.Any("error", err))
	}
	if err := waitForMigrations(ctx, database); err != nil {
		logger.Error("database not ready", slog.Any("error", err))
		os.Exit(1)
	}

	workerMetrics := workerPkg.NewWorkerMetrics()
	workerConfig, _ := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("digest_timeout", workerConfig.DigestTimeout),
		slog.Int("max_items", workerConfig.MaxItems),
		slog.Int("health_port", workerConfig.HealthPort),
		slog.Int("metrics_port", workerConfig.MetricsPort))

	svc := &digest.Service{
		Store:    sqlstore.New(database, dialect),
		Mailer:   newMailer(logger),
		MaxItems: workerConfig.MaxItems,
		SiteURL:  strings.TrimRight(os.Getenv("SITE_URL"), "/"),
	}

	metricsServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", workerConfig.MetricsPort),
		Handler:      metricsMux(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		_ = workerPkg.Serve(ctx, logger.With(slog.String("server", "metrics")), metricsServer)
	}()

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, database, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	if err := runScheduler(ctx, logger, svc, workerConfig, workerMetrics, healthServer); err != nil {
		logger.Error("worker failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func metricsMux() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

// logMailer stands in when no SMTP relay is configured.
type logMailer struct{ logger *slog.Logger }

func (m logMailer) Send(_ context.Context, to []string, subject, body string) error {
	m.logger.Info("digest not mailed, email disabled",
		slog.Int("recipients", len(to)),
		slog.String("subject", subject),
		slog.Int("body_bytes", len(body)))
	return nil
}

func newMailer(logger *slog.Logger) digest.Mailer {
	cfg, err := config.LoadNotifyConfig()
	if err != nil {
		logger.Warn("invalid notify configuration, digest email disabled", slog.Any("error", err))
		return logMailer{logger: logger}
	}
	for _, w := range cfg.Warnings {
		logger.Warn("notify configuration", slog.String("warning", w))
	}
	if !cfg.Email.Enabled {
		logger.Info("email disabled, digests are logged only")
		return logMailer{logger: logger}
	}
	logger.Info("digest email enabled", slog.String("smtp", cfg.Email.Addr()))
	return notifier.NewEmailNotifier(cfg.Email)
}

// runScheduler registers the digest job and blocks until ctx is cancelled.
func runScheduler(ctx context.Context, logger *slog.Logger, svc *digest.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics, healthServer *workerPkg.HealthServer) error {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(cfg.CronSchedule, func() {
		runDigestJob(ctx, logger, svc, cfg, metrics)
	}); err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}
	c.Start()
	healthServer.SetReady(true)
	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", loc.String()))

	<-ctx.Done()
	healthServer.SetReady(false)
	logger.Info("worker stopping, waiting for running job")
	<-c.Stop().Done()
	logger.Info("worker stopped")
	return nil
}

// runDigestJob executes one digest run with a timeout.
func runDigestJob(parent context.Context, logger *slog.Logger, svc *digest.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics) {
	start := time.Now()
	logger.Info("digest started")

	ctx, cancel := context.WithTimeout(parent, cfg.DigestTimeout)
	defer cancel()

	res, err := svc.Run(ctx)
	metrics.RecordJobDuration(time.Since(start).Seconds())
	if err != nil {
		logger.Error("digest failed", slog.String("error", respond.SanitizeError(err)))
		metrics.RecordJobRun("failure")
		return
	}
	metrics.RecordJobRun("success")
	metrics.RecordRecipients(res.Recipients)
	metrics.RecordLastSuccess()

	logger.Info("digest completed",
		slog.Int64("pending", res.Pending),
		slog.Int64("approved", res.Approved),
		slog.Int("listed", res.Listed),
		slog.Int("recipients", res.Recipients),
		slog.Bool("sent", res.Sent),
		slog.Duration("duration", time.Since(start)))
}
