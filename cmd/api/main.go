package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/license-monitor/internal/config"
	"github.com/jwalitptl/license-monitor/internal/handler"
	alertHandler "github.com/jwalitptl/license-monitor/internal/handler/alert"
	authHandler "github.com/jwalitptl/license-monitor/internal/handler/auth"
	dashboardHandler "github.com/jwalitptl/license-monitor/internal/handler/dashboard"
	licenseHandler "github.com/jwalitptl/license-monitor/internal/handler/license"
	licenseTypeHandler "github.com/jwalitptl/license-monitor/internal/handler/licensetype"
	workerHandler "github.com/jwalitptl/license-monitor/internal/handler/worker"
	"github.com/jwalitptl/license-monitor/internal/middleware"
	"github.com/jwalitptl/license-monitor/internal/notifier"
	"github.com/jwalitptl/license-monitor/internal/repository/postgres"
	"github.com/jwalitptl/license-monitor/internal/router"
	alertService "github.com/jwalitptl/license-monitor/internal/service/alert"
	authService "github.com/jwalitptl/license-monitor/internal/service/auth"
	dashboardService "github.com/jwalitptl/license-monitor/internal/service/dashboard"
	licenseService "github.com/jwalitptl/license-monitor/internal/service/license"
	licenseTypeService "github.com/jwalitptl/license-monitor/internal/service/licensetype"
	workerService "github.com/jwalitptl/license-monitor/internal/service/worker"
	sweepWorker "github.com/jwalitptl/license-monitor/internal/worker"
	"github.com/jwalitptl/license-monitor/pkg/auth"
	"github.com/jwalitptl/license-monitor/pkg/logger"
	"github.com/jwalitptl/license-monitor/pkg/metrics"
	"github.com/jwalitptl/license-monitor/pkg/ratelimit"
)

func main() {
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

	// Repositories
	workerRepo := postgres.NewWorkerRepository(db)
	licenseRepo := postgres.NewLicenseRepository(db)
	licenseTypeRepo := postgres.NewLicenseTypeRepository(db)
	requiredTypeRepo := postgres.NewRequiredTypeRepository(db)
	alertLogRepo := postgres.NewAlertLogRepository(db)
	alertSettingRepo := postgres.NewAlertSettingRepository(db)

	// Notifiers
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

	// OTP rate limiting, backed by Redis when available
	var rateStore ratelimit.Store = ratelimit.NewMemoryStore()
	if cfg.Redis.Enabled {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid redis URL")
		}
		rateStore = ratelimit.NewRedisStore(redis.NewClient(opts))
	}
	otpLimiter := ratelimit.NewLimiter(
		rateStore,
		time.Duration(cfg.RateLimit.OTPWindowMinutes)*time.Minute,
		cfg.RateLimit.OTPSendLimit,
		cfg.RateLimit.OTPVerifyLimit,
	)

	m := metrics.NewMetrics("license_monitor")
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.SessionHours)*time.Hour)

	// Services
	workerSvc := workerService.NewService(workerRepo, licenseRepo, requiredTypeRepo)
	licenseSvc := licenseService.NewService(licenseRepo, licenseTypeRepo)
	licenseTypeSvc := licenseTypeService.NewService(licenseTypeRepo, licenseRepo)
	dashboardSvc := dashboardService.NewService(workerRepo, licenseRepo)
	alertSvc := alertService.NewService(alertSettingRepo, licenseRepo, alertLogRepo,
		emailSender, twilioClient, appLogger, m)
	authSvc := authService.NewService(twilioClient, jwtSvc, otpLimiter,
		cfg.Auth.WebAdminPhone, cfg.Auth.OfficeAdminPhone, appLogger)

	// Handlers
	h := handler.NewHandler(db)
	authH := authHandler.NewHandler(authSvc, cfg.Auth.SessionHours*3600)
	alertH := alertHandler.NewHandler(alertSvc, cfg.Auth.CronSecret)

	r := router.NewRouter(
		authSvc,
		authH,
		alertH,
		h,
		m,
		router.Config{
			RateLimit:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:  cfg.RateLimit.Burst,
			CORSConfig: middleware.DefaultCORSConfig(),
		},
		workerHandler.NewHandler(workerSvc),
		licenseHandler.NewHandler(licenseSvc, workerSvc),
		licenseTypeHandler.NewHandler(licenseTypeSvc),
		dashboardHandler.NewHandler(dashboardSvc),
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	workerCtx, stopWorker := context.WithCancel(context.Background())
	if cfg.Alerts.Enabled {
		sweeper := sweepWorker.NewSweepWorker(alertSvc, cfg.Alerts.SweepInterval, appLogger)
		go sweeper.Start(workerCtx)
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	stopWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
