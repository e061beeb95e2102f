package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/license-monitor/internal/config"
	"github.com/jwalitptl/license-monitor/internal/notifier"
	"github.com/jwalitptl/license-monitor/internal/repository/postgres"
	alertService "github.com/jwalitptl/license-monitor/internal/service/alert"
	sweepWorker "github.com/jwalitptl/license-monitor/internal/worker"
	"github.com/jwalitptl/license-monitor/pkg/logger"
	"github.com/jwalitptl/license-monitor/pkg/metrics"
)

// Standalone sweep runner for deployments that schedule alerting outside
// the API process. With -once it performs a single sweep and exits, which
// suits cron; without it, it keeps sweeping on the configured interval.
func main() {
	once := flag.Bool("once", false, "run a single sweep and exit")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{Level: logger.InfoLevel})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	emailSender := notifier.NewEmailSender(notifier.SMTPConfig{
		Host:     cfg.Email.Host,
		Port:     cfg.Email.Port,
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
		From:     cfg.Email.From,
	})
	twilioClient := notifier.NewTwilioClient(notifier.TwilioConfig{
		AccountSID:       cfg.Twilio.AccountSID,
		AuthToken:        cfg.Twilio.AuthToken,
		FromNumber:       cfg.Twilio.FromNumber,
		VerifyServiceSID: cfg.Twilio.VerifyServiceSID,
	})

	alertSvc := alertService.NewService(
		postgres.NewAlertSettingRepository(db),
		postgres.NewLicenseRepository(db),
		postgres.NewAlertLogRepository(db),
		emailSender,
		twilioClient,
		appLogger,
		metrics.NewMetrics("license_monitor_worker"),
	)

	if *once {
		result, err := alertSvc.RunExpirySweep(context.Background())
		if err != nil {
			log.Fatal().Err(err).Msg("sweep failed")
		}
		log.Info().
			Int("checked", result.Checked).
			Int("alerts_sent", result.AlertsSent).
			Int("errors", result.Errors).
			Msg("sweep complete")
		return
	}

	setupHealthCheck()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("shutting down...")
		cancel()
	}()

	sweepWorker.NewSweepWorker(alertSvc, cfg.Alerts.SweepInterval, appLogger).Start(ctx)
}

func setupHealthCheck() {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			log.Error().Err(err).Msg("health check server failed")
			os.Exit(1)
		}
	}()
}
