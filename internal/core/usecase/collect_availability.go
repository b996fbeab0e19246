package usecase

import (
	"context"
	"math/rand"
	"time"

	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/contextkeys"
	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/core/domain"
	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/core/port"

	"github.com/google/uuid"
)

// CollectorSettings - настройки оркестратора сбора.
type CollectorSettings struct {
	Regions       []string
	DaysAhead     int
	ItemTimeout   time.Duration
	SuccessDelay  time.Duration
	SuccessJitter time.Duration
	FailureDelay  time.Duration
	CacheTTL      time.Duration
}

// CollectAvailabilityUseCase - оркестратор сбора: проходит матрицу
// регион × дата строго последовательно, для каждого элемента гоняет
// Provider Client под таймаутом, пишет кеш и журнал, держит паузы между
// элементами. Конкурентность есть только внутри элемента (запросы
// доступности по площадкам).
type CollectAvailabilityUseCase struct {
	fetcher  port.AvailabilityFetcherPort
	store    port.CacheStorePort
	settings CollectorSettings

	now func() time.Time // подменяется в тестах
}

// NewCollectAvailabilityUseCase создает новый экземпляр оркестратора
func NewCollectAvailabilityUseCase(
	fetcher port.AvailabilityFetcherPort,
	store port.CacheStorePort,
	settings CollectorSettings,
) *CollectAvailabilityUseCase {
	if settings.DaysAhead <= 0 {
		settings.DaysAhead = 1
	}
	return &CollectAvailabilityUseCase{
		fetcher:  fetcher,
		store:    store,
		settings: settings,
		now:      time.Now,
	}
}

// collectionItem - один элемент рабочей матрицы.
type collectionItem struct {
	region string
	date   time.Time
	last   bool // после последнего элемента пауза не нужна
}

// Execute выполняет полный проход по матрице регион × дата.
// trigger - непрозрачный payload планировщика, используется только для журнала.
func (uc *CollectAvailabilityUseCase) Execute(ctx context.Context, trigger string) (*domain.CollectionRun, error) {
	collectionID := uuid.New()
	startedAt := uc.now()

	baseLogger := contextkeys.LoggerFromContext(ctx)
	ucLogger := baseLogger.WithFields(port.Fields{
		"use_case":      "CollectAvailability",
		"collection_id": collectionID.String(),
	})

	items := uc.buildMatrix(startedAt)
	ucLogger.Info("Starting collection run", port.Fields{
		"regions":     uc.settings.Regions,
		"days_ahead":  uc.settings.DaysAhead,
		"items_total": len(items),
		"trigger":     trigger,
	})

	run := &domain.CollectionRun{
		CollectionID: collectionID,
		Results:      make([]domain.ItemResult, 0, len(items)),
	}
	venueUnion := make(map[string]struct{})

	for _, item := range items {
		// Дедлайн всей инвокации главнее: прерванный элемент отбрасывается
		// без записи в кеш и журнал, уже завершенные элементы остаются
		if ctx.Err() != nil {
			uc.finishRun(run, startedAt, venueUnion)
			ucLogger.Warn("Collection run aborted by invocation deadline", port.Fields{
				"items_completed": len(run.Results),
			})
			return run, domain.ErrCollectionTimeout
		}

		result, aborted := uc.collectItem(ctx, collectionID, item)
		if aborted {
			uc.finishRun(run, startedAt, venueUnion)
			ucLogger.Warn("Collection run aborted by invocation deadline", port.Fields{
				"items_completed": len(run.Results),
			})
			return run, domain.ErrCollectionTimeout
		}

		run.Results = append(run.Results, result.item)
		for id := range result.venueIDs {
			venueUnion[id] = struct{}{}
		}

		// Адаптивная пауза: после сбоя ждем дольше
		if !item.last {
			delay := uc.delayAfter(result.item.Status)
			if err := waitFor(ctx, delay); err != nil {
				// Дедлайн сработал во время паузы - элемент уже учтен,
				// просто завершимся на следующей итерации
				continue
			}
		}
	}

	uc.finishRun(run, startedAt, venueUnion)
	ucLogger.Info("Collection run finished", port.Fields{
		"total":      run.Summary.TotalCollections,
		"successful": run.Summary.SuccessfulCollections,
		"slots":      run.Summary.TotalSlots,
		"venues":     run.Summary.TotalVenues,
		"elapsed_ms": run.Summary.CollectionTimeMs,
	})
	return run, nil
}

// itemOutcome - результат обработки одного элемента плюс набор venue.ID
// для сводки по всему запуску.
type itemOutcome struct {
	item     domain.ItemResult
	venueIDs map[string]struct{}
}

// collectItem обрабатывает один элемент матрицы: Pending -> Fetching ->
// (Success | Failed) -> Logged. aborted=true означает, что истек дедлайн
// всей инвокации: элемент отбрасывается целиком, без записи журнала.
func (uc *CollectAvailabilityUseCase) collectItem(ctx context.Context, collectionID uuid.UUID, item collectionItem) (itemOutcome, bool) {
	day := item.date.Format(domain.CacheDateLayout)

	baseLogger := contextkeys.LoggerFromContext(ctx)
	itemLogger := baseLogger.WithFields(port.Fields{
		"use_case": "CollectAvailability",
		"region":   item.region,
		"date":     day,
	})

	itemStart := uc.now()

	// Гонка Provider Client против таймаута элемента
	itemCtx, cancel := context.WithTimeout(ctx, uc.settings.ItemTimeout)
	defer cancel()

	itemLogger.Debug("Fetching availability for item", nil)
	slots, fetchErr := uc.fetcher.FetchAvailability(itemCtx, item.region, item.date)

	if ctx.Err() != nil {
		// Истек общий дедлайн, а не таймаут элемента
		return itemOutcome{}, true
	}

	if fetchErr != nil {
		elapsed := uc.now().Sub(itemStart).Milliseconds()
		itemLogger.Error("Item collection failed", fetchErr, port.Fields{"elapsed_ms": elapsed})
		return uc.failItem(ctx, collectionID, item, day, fetchErr.Error(), elapsed, itemLogger), false
	}

	// Запись кеша: ошибка фатальна для элемента, ведь без нее
	// обновление не состоялось
	entry := domain.NewCacheEntry(item.region, item.date, slots, uc.now(), uc.settings.CacheTTL, uc.fetcher.Provider())
	if writeErr := uc.store.SetCachedData(ctx, entry); writeErr != nil {
		if ctx.Err() != nil {
			return itemOutcome{}, true
		}
		elapsed := uc.now().Sub(itemStart).Milliseconds()
		itemLogger.Error("Cache write failed for item", writeErr, nil)
		return uc.failItem(ctx, collectionID, item, day, writeErr.Error(), elapsed, itemLogger), false
	}

	elapsed := uc.now().Sub(itemStart).Milliseconds()
	minPrice, maxPrice := priceRange(slots)
	venueIDs := make(map[string]struct{})
	for _, s := range slots {
		venueIDs[s.Venue.ID] = struct{}{}
	}

	uc.logCollection(ctx, domain.CollectionLogEntry{
		CollectionID:    collectionID,
		Region:          item.region,
		Date:            day,
		Status:          domain.CollectionStatusSuccess,
		SlotsCollected:  len(slots),
		VenuesProcessed: len(venueIDs),
		ExecutionTimeMs: elapsed,
		Provider:        uc.fetcher.Provider(),
	}, itemLogger)

	itemLogger.Info("Item collected", port.Fields{
		"slots":      len(slots),
		"venues":     len(venueIDs),
		"elapsed_ms": elapsed,
	})

	return itemOutcome{
		item: domain.ItemResult{
			Region:          item.region,
			Date:            day,
			Status:          domain.CollectionStatusSuccess,
			SlotsCount:      len(slots),
			VenuesCount:     len(venueIDs),
			MinPrice:        minPrice,
			MaxPrice:        maxPrice,
			ExecutionTimeMs: elapsed,
		},
		venueIDs: venueIDs,
	}, false
}

// failItem оформляет неуспех элемента: запись журнала со статусом error
// плюс failed-результат. Остальные элементы продолжаются.
func (uc *CollectAvailabilityUseCase) failItem(ctx context.Context, collectionID uuid.UUID, item collectionItem, day, message string, elapsed int64, logger port.LoggerPort) itemOutcome {
	uc.logCollection(ctx, domain.CollectionLogEntry{
		CollectionID:    collectionID,
		Region:          item.region,
		Date:            day,
		Status:          domain.CollectionStatusError,
		ErrorMessage:    message,
		ExecutionTimeMs: elapsed,
		Provider:        uc.fetcher.Provider(),
	}, logger)

	return itemOutcome{
		item: domain.ItemResult{
			Region:          item.region,
			Date:            day,
			Status:          domain.CollectionStatusError,
			ExecutionTimeMs: elapsed,
			Error:           message,
		},
	}
}

// logCollection - best-effort запись журнала: сбой журналирования не должен
// превращать успешный сбор в неуспешный, поэтому только предупреждение.
func (uc *CollectAvailabilityUseCase) logCollection(ctx context.Context, entry domain.CollectionLogEntry, logger port.LoggerPort) {
	if err := uc.store.LogCollection(ctx, entry); err != nil {
		logger.Warn("Failed to write collection log entry", port.Fields{"error": err.Error()})
	}
}

// buildMatrix строит рабочую матрицу: регионы × последовательные календарные
// дни начиная с сегодня, в порядке регион-мажор / дата-минор.
func (uc *CollectAvailabilityUseCase) buildMatrix(startedAt time.Time) []collectionItem {
	today := startedAt.UTC().Truncate(24 * time.Hour)

	items := make([]collectionItem, 0, len(uc.settings.Regions)*uc.settings.DaysAhead)
	for _, region := range uc.settings.Regions {
		for offset := 0; offset < uc.settings.DaysAhead; offset++ {
			items = append(items, collectionItem{
				region: region,
				date:   today.AddDate(0, 0, offset),
			})
		}
	}
	if len(items) > 0 {
		items[len(items)-1].last = true
	}
	return items
}

// finishRun агрегирует сводку запуска. TotalVenues - истинное объединение
// venue.ID по всем элементам, а не сумма по элементам.
func (uc *CollectAvailabilityUseCase) finishRun(run *domain.CollectionRun, startedAt time.Time, venueUnion map[string]struct{}) {
	successful := 0
	totalSlots := 0
	for _, r := range run.Results {
		if r.Status == domain.CollectionStatusSuccess {
			successful++
		}
		totalSlots += r.SlotsCount
	}

	run.Summary = domain.RunSummary{
		TotalCollections:      len(run.Results),
		SuccessfulCollections: successful,
		TotalSlots:            totalSlots,
		TotalVenues:           len(venueUnion),
		CollectionTimeMs:      uc.now().Sub(startedAt).Milliseconds(),
	}
}

// delayAfter возвращает паузу перед следующим элементом: рандомизированную
// после успеха, фиксированную подлиннее после сбоя.
func (uc *CollectAvailabilityUseCase) delayAfter(status domain.CollectionStatus) time.Duration {
	if status == domain.CollectionStatusError {
		return uc.settings.FailureDelay
	}
	delay := uc.settings.SuccessDelay
	if uc.settings.SuccessJitter > 0 {
		delay += time.Duration(rand.Int63n(int64(uc.settings.SuccessJitter) + 1))
	}
	return delay
}

// waitFor - отменяемая пауза: дедлайн инвокации прерывает ожидание.
func waitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// priceRange возвращает минимальную и максимальную цену по слотам элемента.
func priceRange(slots []domain.Slot) (minPrice, maxPrice int) {
	for i, s := range slots {
		if i == 0 || s.Price < minPrice {
			minPrice = s.Price
		}
		if s.Price > maxPrice {
			maxPrice = s.Price
		}
	}
	return minPrice, maxPrice
}
