// cmd/api/main.go

// @title Ad Builder API
// @version 1.0
// @description Compose campaigns from creative assets, ad sets and copy variants, then launch them as draft records.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"adbuilder/internal/config"
	"adbuilder/internal/db"
	"adbuilder/internal/db/migrations"
	"adbuilder/internal/handlers"
	"adbuilder/internal/interfaces"
	"adbuilder/internal/launch"
	"adbuilder/internal/logger"
	"adbuilder/internal/metrics"
	"adbuilder/internal/repository"
	"adbuilder/internal/routes"
	"adbuilder/internal/services"
	"adbuilder/internal/session"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log, err := logger.New(cfg.Environment)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()

	// Create database if it doesn't exist
	if err := db.CreateDatabaseIfNotExists(ctx, cfg.DatabaseURL, log); err != nil {
		log.Fatal("failed to ensure database exists", "error", err)
	}

	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	defer database.Close()

	if err := migrations.RunMigrations(database.DB, log); err != nil {
		log.Fatal("failed to run migrations", "error", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	records := repository.NewRecordRepository(database.DB)
	tenants := repository.NewTenantResolver(database.DB)

	var catalogue interfaces.TemplateCatalogue = repository.NewTemplateRepository(database.DB)
	if cfg.TemplatesFile != "" {
		yc, err := services.LoadYAMLCatalogue(cfg.TemplatesFile)
		if err != nil {
			log.Fatal("failed to load template file", "path", cfg.TemplatesFile, "error", err)
		}
		catalogue = yc
		log.Info("serving templates from file", "path", cfg.TemplatesFile)
	}

	notifier := buildNotifier(ctx, cfg, log)
	feedback := services.NewLogFeedback(log)

	pipeline := launch.NewPipeline(launch.Deps{
		Tenants:  tenants,
		Store:    records,
		Notifier: notifier,
		Feedback: feedback,
		Log:      log,
		Metrics:  m,
	}, launch.Options{
		Mode:        launch.ParseMode(cfg.Launch.Mode),
		StepTimeout: cfg.Launch.StepTimeout,
		Compensate:  cfg.Launch.Compensate,
	})

	var uploader handlers.AssetUploader
	if cfg.S3.Enabled() {
		s3cfg, err := config.NewS3Config(ctx, cfg.S3)
		if err != nil {
			log.Fatal("failed to configure S3", "error", err)
		}
		uploader = services.NewAssetUploader(s3cfg.Client, s3cfg.Bucket, s3cfg.PublicBaseURL)
	} else {
		log.Warn("S3_BUCKET_NAME not set, asset uploads are disabled")
	}

	sessions := session.NewRegistry(nil, catalogue)

	router := routes.SetupRoutes(routes.Deps{
		DB:     database.DB,
		Config: cfg,
		Builder: handlers.NewBuilderHandler(handlers.BuilderDeps{
			Sessions: sessions,
			Tenants:  tenants,
			Pipeline: pipeline,
			Uploader: uploader,
			Feedback: feedback,
			Metrics:  m,
			Log:      log,
		}),
		Campaigns: handlers.NewCampaignHandler(records, tenants, log),
		Gatherer:  reg,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sweepSessions(sweepCtx, sessions, cfg.Sessions, log)

	go func() {
		log.Info("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	stopSweep()
	pipeline.Wait()

	log.Info("server exiting")
}

// buildNotifier always logs launches and adds Redis and email delivery
// when they are configured.
func buildNotifier(ctx context.Context, cfg *config.Config, log *logger.Logger) interfaces.Notifier {
	notifiers := services.MultiNotifier{services.NewLogNotifier(log)}

	if cfg.Redis.Addr != "" {
		rdb, err := services.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn("redis unavailable, launch events will not be published", "addr", cfg.Redis.Addr, "error", err)
		} else {
			notifiers = append(notifiers, services.NewRedisNotifier(rdb, cfg.Redis.Channel))
		}
	}

	if cfg.SMTP.Host != "" && len(cfg.SMTP.Recipients) > 0 {
		sender := &services.SMTPSender{
			Host:   cfg.SMTP.Host,
			Port:   cfg.SMTP.Port,
			User:   cfg.SMTP.User,
			Pass:   cfg.SMTP.Pass,
			From:   cfg.SMTP.From,
			UseTLS: cfg.SMTP.UseTLS,
		}
		notifiers = append(notifiers, services.NewEmailNotifier(sender, cfg.SMTP.Recipients))
	}
	return notifiers
}

func sweepSessions(ctx context.Context, sessions *session.Registry, s config.SessionSettings, log *logger.Logger) {
	if s.SweepInterval <= 0 || s.MaxIdle <= 0 {
		return
	}
	ticker := time.NewTicker(s.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(s.MaxIdle); n > 0 {
				log.Info("expired idle builder sessions", "removed", n, "remaining", sessions.Len())
			}
		}
	}
}
