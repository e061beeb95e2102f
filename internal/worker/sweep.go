package worker

import (
	"context"
	"time"

	"github.com/jwalitptl/license-monitor/internal/service/alert"
	"github.com/jwalitptl/license-monitor/pkg/logger"
)

// SweepWorker runs the expiry sweep on a fixed interval. The sweep itself
// dedups alerts, so overlapping triggers from the HTTP endpoint are safe.
type SweepWorker struct {
	service  alert.Service
	interval time.Duration
	logger   *logger.Logger
}

func NewSweepWorker(service alert.Service, interval time.Duration, logger *logger.Logger) *SweepWorker {
	return &SweepWorker{
		service:  service,
		interval: interval,
		logger:   logger,
	}
}

func (w *SweepWorker) Start(ctx context.Context) {
	w.logger.Info("expiry sweep worker started", "interval", w.interval.String())

	// run once at startup so a restart never misses a day
	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("expiry sweep worker stopped")
			return
		case <-ticker.C:
			w.run(ctx)
		}
	}
}

func (w *SweepWorker) run(ctx context.Context) {
	result, err := w.service.RunExpirySweep(ctx)
	if err != nil {
		w.logger.Error(err, "scheduled expiry sweep failed")
		return
	}
	w.logger.Info("scheduled expiry sweep complete",
		"checked", result.Checked,
		"alerts_sent", result.AlertsSent,
		"errors", result.Errors)
}
