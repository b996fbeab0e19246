package usecase

import (
	"context"

	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/contextkeys"
	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/core/domain"
	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/core/port"
)

// GetCacheStatsUseCase отдает сводку по состоянию кеша для health-проверки.
type GetCacheStatsUseCase struct {
	store port.CacheStorePort
}

// NewGetCacheStatsUseCase создает новый экземпляр use case
func NewGetCacheStatsUseCase(store port.CacheStorePort) *GetCacheStatsUseCase {
	return &GetCacheStatsUseCase{store: store}
}

// Execute возвращает статистику кеша. Сбой хранилища деградирует до нулевой
// статистики: health-эндпоинт должен отвечать даже при недоступной базе.
func (uc *GetCacheStatsUseCase) Execute(ctx context.Context) (domain.CacheStats, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "GetCacheStats",
	})

	stats, err := uc.store.GetCacheStats(ctx)
	if err != nil {
		logger.Warn("Cache stats unavailable, degrading to zero stats", port.Fields{"error": err.Error()})
		return domain.CacheStats{}, nil
	}
	return stats, nil
}
