package playtomicfetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/constants"
	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/contextkeys"
	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/core/domain"
	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/core/port"
)

// FetchAvailability находит площадки региона и собирает нормализованные слоты
// на указанную дату. Ожидаемые сбои провайдера не являются ошибкой: пустой
// результат discovery дает пустой срез, сбой отдельной площадки - пустой
// список только для нее. Ошибка возвращается только при отмене контекста.
func (a *PlaytomicFetcherAdapter) FetchAvailability(ctx context.Context, region string, date time.Time) ([]domain.Slot, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	fetchLogger := logger.WithFields(port.Fields{
		"component": "PlaytomicFetcherAdapter(FetchAvailability)",
		"region":    region,
		"date":      date.Format(domain.CacheDateLayout),
	})

	profile, ok := constants.RegionProfileFor(region)
	if !ok {
		// Неизвестный регион - нет профиля поиска, нечего собирать
		fetchLogger.Warn("No search profile for region, skipping", nil)
		return []domain.Slot{}, nil
	}

	// 1. Discovery: стратегии с fallback, результат уже дедуплицирован
	tenants := a.discoverTenants(ctx, profile)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 2. Фильтр по locality провайдера - отсекаем площадки вне региона
	tenants = filterTenantsByLocality(tenants, profile.LocalitySpellings)
	if len(tenants) == 0 {
		fetchLogger.Info("No venues discovered for region", nil)
		return []domain.Slot{}, nil
	}

	venues := make([]domain.Venue, len(tenants))
	for i, t := range tenants {
		venues[i] = toDomainVenue(t)
	}

	fetchLogger.Info("Fetching availability for discovered venues", port.Fields{
		"venues_count": len(venues),
		"batch_size":   a.cfg.BatchSize,
	})

	// 3. Батчи запросов доступности
	slots := a.fetchAllVenues(ctx, venues, date, fetchLogger)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fetchLogger.Info("Finished fetching availability", port.Fields{
		"slots_collected": len(slots),
	})
	return slots, nil
}

// fetchAllVenues выполняет запросы доступности батчами фиксированной ширины:
// внутри батча площадки запрашиваются конкурентно, следующий батч стартует
// только после завершения всего текущего, между батчами - фиксированная
// пауза. Так мы ограничиваем одновременные соединения к провайдеру.
func (a *PlaytomicFetcherAdapter) fetchAllVenues(ctx context.Context, venues []domain.Venue, date time.Time, logger port.LoggerPort) []domain.Slot {
	// Результаты пишутся по индексу площадки: общего изменяемого состояния
	// между горутинами нет, агрегация - только после завершения батча.
	results := make([][]domain.Slot, len(venues))

	for start := 0; start < len(venues); start += a.cfg.BatchSize {
		end := start + a.cfg.BatchSize
		if end > len(venues) {
			end = len(venues)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int, venue domain.Venue) {
				defer wg.Done()

				venueSlots, err := a.fetchVenueAvailability(ctx, venue, date)
				if err != nil {
					// Изоляция сбоя: эта площадка дает пустой список,
					// соседние запросы батча не прерываются
					logger.Warn("Venue availability fetch failed, skipping venue", port.Fields{
						"venue_id":   venue.ID,
						"venue_name": venue.Name,
						"error":      err.Error(),
					})
					return
				}
				results[idx] = venueSlots
			}(i, venues[i])
		}
		wg.Wait()

		// Пауза между батчами, только если батчи еще остались
		if end < len(venues) {
			select {
			case <-ctx.Done():
				return flattenSlots(results)
			case <-time.After(a.cfg.BatchDelay):
			}
		}
	}

	return flattenSlots(results)
}

// fetchVenueAvailability запрашивает доступность одной площадки на дату.
// Запрос идет через http.NewRequestWithContext: сработавший таймаут элемента
// активно закрывает соединение, а не просто бросает его.
func (a *PlaytomicFetcherAdapter) fetchVenueAvailability(ctx context.Context, venue domain.Venue, date time.Time) ([]domain.Slot, error) {
	u, err := url.Parse(a.cfg.AvailabilityURL)
	if err != nil {
		return nil, fmt.Errorf("playtomic adapter: invalid availability URL: %w", err)
	}

	day := date.Format(domain.CacheDateLayout)

	// Окно запроса - весь день локального времени провайдера
	q := u.Query()
	q.Set("sport_id", constants.SportPadel)
	q.Set("tenant_id", venue.ID)
	q.Set("local_start_min", day+"T00:00:00")
	q.Set("local_start_max", day+"T23:59:59")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("playtomic adapter: failed to create availability request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: venue %s: %v", domain.ErrVenueFetchFailed, venue.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Тело ответа читаем, чтобы включить его в ошибку
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: venue %s: status %d: %s", domain.ErrVenueFetchFailed, venue.ID, resp.StatusCode, string(bodyBytes))
	}

	var records []playtomicAvailability
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: venue %s: malformed payload: %v", domain.ErrVenueFetchFailed, venue.ID, err)
	}

	return toDomainSlots(venue, date, records), nil
}

// flattenSlots склеивает результаты батчей в порядке итерации площадок.
// Порядок слотов внутри одной площадки сохраняется как вернул провайдер.
func flattenSlots(results [][]domain.Slot) []domain.Slot {
	total := 0
	for _, r := range results {
		total += len(r)
	}
	flat := make([]domain.Slot, 0, total)
	for _, r := range results {
		flat = append(flat, r...)
	}
	return flat
}
