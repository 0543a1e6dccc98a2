package service

import (
	"context"
	"fmt"
	"time"

	"lavka/internal/app/notifier/repository"
	"lavka/pkg/metrics"
)

// CartJanitor прибирает брошенные корзины
// Позиция считается брошенной, если её не трогали дольше staleAge
type CartJanitor struct {
	cartRepo repository.CartMaintenanceRepository
	staleAge time.Duration
}

// NewCartJanitor создает новый сервис чистки корзин
func NewCartJanitor(cartRepo repository.CartMaintenanceRepository, staleAge time.Duration) *CartJanitor {
	return &CartJanitor{
		cartRepo: cartRepo,
		staleAge: staleAge,
	}
}

// PurgeStaleCarts удаляет залежавшиеся позиции корзин
func (s *CartJanitor) PurgeStaleCarts(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-s.staleAge)

	purged, err := s.cartRepo.PurgeStale(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge stale carts: %w", err)
	}

	metrics.StaleCartItemsPurged.Add(float64(purged))

	return purged, nil
}
