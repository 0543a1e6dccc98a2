package processor

import (
	"context"

	"lavka/internal/app/notifier/service"
	"lavka/pkg/logger"

	"github.com/robfig/cron/v3"
)

// CronScheduler запускает периодическую чистку брошенных корзин
type CronScheduler struct {
	cron    *cron.Cron
	janitor service.CartJanitorInterface
}

// NewCronScheduler создает новый планировщик
func NewCronScheduler(janitor service.CartJanitorInterface) *CronScheduler {
	return &CronScheduler{
		cron:    cron.New(),
		janitor: janitor,
	}
}

// Start регистрирует задачу чистки и запускает планировщик
func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting cron scheduler")

	_, err := s.cron.AddFunc(schedule, func() {
		logger.Info().Msg("Cron job triggered: purging stale carts")

		purged, err := s.janitor.PurgeStaleCarts(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to purge stale carts")
			return
		}

		logger.Info().Int64("purged", purged).Msg("Cron job completed: stale carts purged")
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logger.Info().Msg("Cron scheduler started")

	return nil
}

// Stop останавливает планировщик, дожидаясь текущих задач
func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Cron scheduler stopped")
}

// GetEntries возвращает зарегистрированные задачи
func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
