package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/contextkeys"
	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/core/port"
	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/core/port/usecases_port"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// CronSchedulerAdapter - встроенный планировщик: дергает запуск сбора по
// cron-выражению. Полный аналог внешнего триггера, только внутри процесса,
// поэтому бюджет каждого тика равен абсолютному потолку запуска.
type CronSchedulerAdapter struct {
	cron   *cron.Cron
	logger port.LoggerPort
}

// NewCronSchedulerAdapter регистрирует запуск сбора по расписанию.
// spec - стандартное 5-польное cron-выражение.
func NewCronSchedulerAdapter(
	spec string,
	collectUC usecases_port.CollectAvailabilityPort,
	maxExecution time.Duration,
	baseLogger port.LoggerPort,
) (*CronSchedulerAdapter, error) {
	c := cron.New()

	schedLogger := baseLogger.WithFields(port.Fields{"component": "cron_scheduler"})

	_, err := c.AddFunc(spec, func() {
		runID := uuid.New().String()
		tickLogger := schedLogger.WithFields(port.Fields{"trace_id": runID})

		ctx, cancel := context.WithTimeout(context.Background(), maxExecution)
		defer cancel()
		ctx = contextkeys.ContextWithLogger(ctx, tickLogger)
		ctx = contextkeys.ContextWithTraceID(ctx, runID)

		tickLogger.Info("Scheduled collection tick started", nil)

		startedAt := time.Now()
		run, err := collectUC.Execute(ctx, fmt.Sprintf(`{"source":"cron","spec":%q}`, spec))
		if err != nil {
			fields := port.Fields{"elapsed_ms": time.Since(startedAt).Milliseconds()}
			if run != nil {
				fields["items_completed"] = len(run.Results)
			}
			tickLogger.Error("Scheduled collection tick failed", err, fields)
			return
		}

		tickLogger.Info("Scheduled collection tick finished", port.Fields{
			"successful": run.Summary.SuccessfulCollections,
			"total":      run.Summary.TotalCollections,
			"slots":      run.Summary.TotalSlots,
			"elapsed_ms": time.Since(startedAt).Milliseconds(),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register cron schedule %q: %w", spec, err)
	}

	return &CronSchedulerAdapter{cron: c, logger: schedLogger}, nil
}

// Start запускает планировщик в отдельной горутине
func (s *CronSchedulerAdapter) Start() {
	s.logger.Info("Starting cron scheduler", nil)
	s.cron.Start()
}

// Stop останавливает планировщик и дожидается завершения текущего тика
func (s *CronSchedulerAdapter) Stop(ctx context.Context) error {
	s.logger.Info("Stopping cron scheduler...", nil)
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
