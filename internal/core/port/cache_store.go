package port

import (
	"context"

	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/core/domain"
)

// CacheStorePort - контракт хранилища кеша и журнала сборов.
type CacheStorePort interface {
	// SetCachedData выполняет upsert записи кеша по cacheKey, полностью
	// заменяя предыдущую строку. Ошибка записи фатальна для элемента сбора.
	SetCachedData(ctx context.Context, entry domain.CacheEntry) error

	// LogCollection вставляет append-only строку журнала. Вызывающий код
	// обязан трактовать ошибку как локальное предупреждение: сбой журнала
	// не должен превращать успешный сбор в неуспешный.
	LogCollection(ctx context.Context, entry domain.CollectionLogEntry) error

	// GetCacheStats возвращает агрегат по кешу для health-check поверхности.
	GetCacheStats(ctx context.Context) (domain.CacheStats, error)
}
