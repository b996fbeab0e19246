package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/contracts"
	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/core/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCacheStoreAdapter реализует CacheStorePort поверх двух таблиц:
// cache (TTL-записи, upsert по cache_key) и collection_log (append-only журнал).
type PostgresCacheStoreAdapter struct {
	pool *pgxpool.Pool
}

// NewPostgresCacheStoreAdapter создает новый адаптер хранилища
func NewPostgresCacheStoreAdapter(pool *pgxpool.Pool) *PostgresCacheStoreAdapter {
	return &PostgresCacheStoreAdapter{pool: pool}
}

// SetCachedData выполняет upsert записи кеша: конфликт по cache_key полностью
// заменяет слоты, метаданные и срок жизни предыдущей записи.
func (a *PostgresCacheStoreAdapter) SetCachedData(ctx context.Context, entry domain.CacheEntry) error {
	slotsJSON, err := json.Marshal(toSlotDTOs(entry.Slots))
	if err != nil {
		return fmt.Errorf("%w: failed to marshal slots for key %s: %v", domain.ErrCacheWriteFailed, entry.CacheKey, err)
	}

	// Проверка контракта до записи: сломанный payload не должен попасть в кеш
	if err := contracts.ValidatePayload("CachedSlotsPayload", "1.0.0", slotsJSON); err != nil {
		return fmt.Errorf("%w: slots payload for key %s rejected: %v", domain.ErrCacheWriteFailed, entry.CacheKey, err)
	}

	metadataJSON, err := json.Marshal(toMetadataDTO(entry.Metadata))
	if err != nil {
		return fmt.Errorf("%w: failed to marshal metadata for key %s: %v", domain.ErrCacheWriteFailed, entry.CacheKey, err)
	}

	_, err = a.pool.Exec(ctx, `
		INSERT INTO cache (cache_key, region, date, slots, metadata, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (cache_key) DO UPDATE SET
			region = EXCLUDED.region,
			date = EXCLUDED.date,
			slots = EXCLUDED.slots,
			metadata = EXCLUDED.metadata,
			expires_at = EXCLUDED.expires_at,
			updated_at = now()`,
		entry.CacheKey, entry.Region, entry.Date, slotsJSON, metadataJSON, entry.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to upsert cache entry %s: %v", domain.ErrCacheWriteFailed, entry.CacheKey, err)
	}

	return nil
}

// LogCollection дописывает запись аудита. Журнал только растет: никаких
// update или delete со стороны сервиса.
func (a *PostgresCacheStoreAdapter) LogCollection(ctx context.Context, entry domain.CollectionLogEntry) error {
	var errorMessage *string
	if entry.ErrorMessage != "" {
		errorMessage = &entry.ErrorMessage
	}

	_, err := a.pool.Exec(ctx, `
		INSERT INTO collection_log (
			collection_id, region, date, status, slots_collected,
			venues_processed, error_message, execution_time_ms, provider
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.CollectionID, entry.Region, entry.Date, string(entry.Status),
		entry.SlotsCollected, entry.VenuesProcessed, errorMessage,
		entry.ExecutionTimeMs, entry.Provider,
	)
	if err != nil {
		return fmt.Errorf("PostgresCacheStoreAdapter: failed to insert collection log entry: %w", err)
	}

	return nil
}

// GetCacheStats собирает сводку по кешу и журналу для health-эндпоинта.
func (a *PostgresCacheStoreAdapter) GetCacheStats(ctx context.Context) (domain.CacheStats, error) {
	var stats domain.CacheStats

	err := a.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE expires_at > now()),
			COUNT(*) FILTER (WHERE expires_at <= now()),
			COUNT(DISTINCT region),
			COALESCE(MIN(date), ''),
			COALESCE(MAX(date), '')
		FROM cache`,
	).Scan(
		&stats.TotalEntries, &stats.ActiveEntries, &stats.ExpiredEntries,
		&stats.Regions, &stats.OldestDate, &stats.NewestDate,
	)
	if err != nil {
		return domain.CacheStats{}, fmt.Errorf("PostgresCacheStoreAdapter: failed to query cache stats: %w", err)
	}

	err = a.pool.QueryRow(ctx,
		`SELECT MAX(created_at) FROM collection_log WHERE status = 'success'`,
	).Scan(&stats.LastCollectionAt)
	if err != nil {
		return domain.CacheStats{}, fmt.Errorf("PostgresCacheStoreAdapter: failed to query last collection time: %w", err)
	}

	return stats, nil
}
