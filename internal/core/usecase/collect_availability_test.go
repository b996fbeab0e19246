package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/core/domain"
)

type stubFetcher struct {
	fetch func(ctx context.Context, region string, date time.Time) ([]domain.Slot, error)
}

func (s *stubFetcher) FetchAvailability(ctx context.Context, region string, date time.Time) ([]domain.Slot, error) {
	return s.fetch(ctx, region, date)
}

func (s *stubFetcher) Provider() string { return "playtomic" }

type stubStore struct {
	mu      sync.Mutex
	entries []domain.CacheEntry
	logs    []domain.CollectionLogEntry

	setErr error
	logErr error
}

func (s *stubStore) SetCachedData(ctx context.Context, entry domain.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubStore) LogCollection(ctx context.Context, entry domain.CollectionLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.logErr != nil {
		return s.logErr
	}
	s.logs = append(s.logs, entry)
	return nil
}

func (s *stubStore) GetCacheStats(ctx context.Context) (domain.CacheStats, error) {
	return domain.CacheStats{}, nil
}

func fastSettings(regions []string, daysAhead int) CollectorSettings {
	return CollectorSettings{
		Regions:     regions,
		DaysAhead:   daysAhead,
		ItemTimeout: time.Second,
		CacheTTL:    30 * time.Minute,
		// Паузы нулевые, чтобы тесты не спали
	}
}

func slotFor(venueID string, price int) domain.Slot {
	return domain.Slot{
		Venue:    domain.Venue{ID: venueID, Name: venueID},
		Court:    domain.Court{ID: venueID + "-c1"},
		Price:    price,
		Currency: "GBP",
	}
}

func TestExecuteCollectsFullMatrix(t *testing.T) {
	fetcher := &stubFetcher{
		fetch: func(ctx context.Context, region string, date time.Time) ([]domain.Slot, error) {
			return []domain.Slot{slotFor("v1", 4800), slotFor("v2", 5200)}, nil
		},
	}
	store := &stubStore{}

	uc := NewCollectAvailabilityUseCase(fetcher, store, fastSettings([]string{"london"}, 2))
	run, err := uc.Execute(context.Background(), "")
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if len(run.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(run.Results))
	}
	for _, r := range run.Results {
		if r.Status != domain.CollectionStatusSuccess {
			t.Errorf("item %s/%s status = %s, want success", r.Region, r.Date, r.Status)
		}
		if r.SlotsCount != 2 || r.VenuesCount != 2 {
			t.Errorf("item %s counts = %d slots / %d venues, want 2/2", r.Date, r.SlotsCount, r.VenuesCount)
		}
		if r.MinPrice != 4800 || r.MaxPrice != 5200 {
			t.Errorf("item %s price range = %d..%d, want 4800..5200", r.Date, r.MinPrice, r.MaxPrice)
		}
	}

	// Даты идут последовательно начиная с сегодня
	if run.Results[0].Date == run.Results[1].Date {
		t.Error("matrix items should cover distinct dates")
	}

	if len(store.entries) != 2 {
		t.Fatalf("got %d cache entries, want 2", len(store.entries))
	}
	for _, e := range store.entries {
		if e.Region != "london" {
			t.Errorf("cache entry region = %q, want london", e.Region)
		}
		if want := e.Metadata.CollectedAt.Add(30 * time.Minute); !e.ExpiresAt.Equal(want) {
			t.Errorf("cache entry ExpiresAt = %v, want collectedAt+TTL %v", e.ExpiresAt, want)
		}
	}

	if len(store.logs) != 2 {
		t.Fatalf("got %d log entries, want 2", len(store.logs))
	}
	for _, l := range store.logs {
		if l.Status != domain.CollectionStatusSuccess {
			t.Errorf("log status = %s, want success", l.Status)
		}
		if l.CollectionID != run.CollectionID {
			t.Error("log entries should share the run collection ID")
		}
		if l.Provider != "playtomic" {
			t.Errorf("log provider = %q, want playtomic", l.Provider)
		}
	}

	if run.Summary.TotalCollections != 2 || run.Summary.SuccessfulCollections != 2 {
		t.Errorf("summary = %+v, want 2/2", run.Summary)
	}
	if run.Summary.TotalSlots != 4 {
		t.Errorf("summary TotalSlots = %d, want 4", run.Summary.TotalSlots)
	}
	// v1 и v2 встречаются в обоих элементах: объединение, а не сумма
	if run.Summary.TotalVenues != 2 {
		t.Errorf("summary TotalVenues = %d, want 2", run.Summary.TotalVenues)
	}
}

func TestExecuteItemFailureDoesNotStopRun(t *testing.T) {
	calls := 0
	fetcher := &stubFetcher{
		fetch: func(ctx context.Context, region string, date time.Time) ([]domain.Slot, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("upstream exploded")
			}
			return []domain.Slot{slotFor("v1", 4000)}, nil
		},
	}
	store := &stubStore{}

	uc := NewCollectAvailabilityUseCase(fetcher, store, fastSettings([]string{"london"}, 2))
	run, err := uc.Execute(context.Background(), "")
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if len(run.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(run.Results))
	}
	if run.Results[0].Status != domain.CollectionStatusError {
		t.Errorf("first item status = %s, want error", run.Results[0].Status)
	}
	if run.Results[0].Error == "" {
		t.Error("failed item should carry the error message")
	}
	if run.Results[1].Status != domain.CollectionStatusSuccess {
		t.Errorf("second item status = %s, want success", run.Results[1].Status)
	}

	// Кеш пишется только для успешного элемента, журнал - для обоих
	if len(store.entries) != 1 {
		t.Errorf("got %d cache entries, want 1", len(store.entries))
	}
	if len(store.logs) != 2 {
		t.Fatalf("got %d log entries, want 2", len(store.logs))
	}
	if store.logs[0].Status != domain.CollectionStatusError || store.logs[0].ErrorMessage == "" {
		t.Errorf("first log entry = %+v, want error with message", store.logs[0])
	}

	if run.Summary.SuccessfulCollections != 1 || run.Summary.TotalCollections != 2 {
		t.Errorf("summary = %+v, want 1 of 2 successful", run.Summary)
	}
}

func TestExecuteCacheWriteFailureFailsItem(t *testing.T) {
	fetcher := &stubFetcher{
		fetch: func(ctx context.Context, region string, date time.Time) ([]domain.Slot, error) {
			return []domain.Slot{slotFor("v1", 4000)}, nil
		},
	}
	store := &stubStore{setErr: domain.ErrCacheWriteFailed}

	uc := NewCollectAvailabilityUseCase(fetcher, store, fastSettings([]string{"london"}, 1))
	run, err := uc.Execute(context.Background(), "")
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if len(run.Results) != 1 || run.Results[0].Status != domain.CollectionStatusError {
		t.Fatalf("results = %+v, want single failed item", run.Results)
	}
	if len(store.logs) != 1 || store.logs[0].Status != domain.CollectionStatusError {
		t.Errorf("logs = %+v, want single error entry", store.logs)
	}
}

func TestExecuteAbortsOnInvocationDeadline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	fetcher := &stubFetcher{
		fetch: func(fetchCtx context.Context, region string, date time.Time) ([]domain.Slot, error) {
			calls++
			if calls == 2 {
				// Дедлайн инвокации истекает во время второго элемента
				cancel()
				<-fetchCtx.Done()
				return nil, fetchCtx.Err()
			}
			return []domain.Slot{slotFor("v1", 4000)}, nil
		},
	}
	store := &stubStore{}

	uc := NewCollectAvailabilityUseCase(fetcher, store, fastSettings([]string{"london"}, 3))
	run, err := uc.Execute(ctx, "")

	if !errors.Is(err, domain.ErrCollectionTimeout) {
		t.Fatalf("Execute error = %v, want ErrCollectionTimeout", err)
	}
	if run == nil {
		t.Fatal("aborted run should still return partial results")
	}

	// Завершился только первый элемент; прерванный отбрасывается без журнала
	if len(run.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(run.Results))
	}
	if len(store.logs) != 1 {
		t.Errorf("got %d log entries, want 1 (no entry for the interrupted item)", len(store.logs))
	}
	if len(store.entries) != 1 {
		t.Errorf("got %d cache entries, want 1", len(store.entries))
	}
	if run.Summary.TotalCollections != 1 {
		t.Errorf("summary TotalCollections = %d, want 1", run.Summary.TotalCollections)
	}
}

func TestExecutePerItemTimeoutFailsItemOnly(t *testing.T) {
	calls := 0
	fetcher := &stubFetcher{
		fetch: func(fetchCtx context.Context, region string, date time.Time) ([]domain.Slot, error) {
			calls++
			if calls == 1 {
				// Медленная площадка: первый элемент упирается в свой таймаут
				<-fetchCtx.Done()
				return nil, fetchCtx.Err()
			}
			return []domain.Slot{slotFor("v1", 4000)}, nil
		},
	}
	store := &stubStore{}

	settings := fastSettings([]string{"london"}, 2)
	settings.ItemTimeout = 20 * time.Millisecond

	uc := NewCollectAvailabilityUseCase(fetcher, store, settings)
	run, err := uc.Execute(context.Background(), "")
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	// Таймаут элемента - не дедлайн инвокации: запуск продолжается
	if len(run.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(run.Results))
	}
	if run.Results[0].Status != domain.CollectionStatusError {
		t.Errorf("timed-out item status = %s, want error", run.Results[0].Status)
	}
	if run.Results[1].Status != domain.CollectionStatusSuccess {
		t.Errorf("second item status = %s, want success", run.Results[1].Status)
	}

	// В отличие от прерванной инвокации, элемент с таймаутом журналируется
	if len(store.logs) != 2 || store.logs[0].Status != domain.CollectionStatusError {
		t.Fatalf("logs = %+v, want error entry then success entry", store.logs)
	}
	if len(store.entries) != 1 {
		t.Errorf("got %d cache entries, want 1", len(store.entries))
	}
}

func TestExecuteLogFailureIsNotFatal(t *testing.T) {
	fetcher := &stubFetcher{
		fetch: func(ctx context.Context, region string, date time.Time) ([]domain.Slot, error) {
			return []domain.Slot{slotFor("v1", 4000)}, nil
		},
	}
	store := &stubStore{logErr: errors.New("log table is gone")}

	uc := NewCollectAvailabilityUseCase(fetcher, store, fastSettings([]string{"london"}, 1))
	run, err := uc.Execute(context.Background(), "")
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	// Сбой журналирования не превращает успешный сбор в неуспешный
	if run.Results[0].Status != domain.CollectionStatusSuccess {
		t.Errorf("item status = %s, want success", run.Results[0].Status)
	}
	if len(store.entries) != 1 {
		t.Errorf("got %d cache entries, want 1", len(store.entries))
	}
}

func TestExecuteRegionMajorOrder(t *testing.T) {
	var order []string
	fetcher := &stubFetcher{
		fetch: func(ctx context.Context, region string, date time.Time) ([]domain.Slot, error) {
			order = append(order, region)
			return nil, nil
		},
	}
	store := &stubStore{}

	uc := NewCollectAvailabilityUseCase(fetcher, store, fastSettings([]string{"london", "manchester"}, 2))
	if _, err := uc.Execute(context.Background(), ""); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	want := []string{"london", "london", "manchester", "manchester"}
	if len(order) != len(want) {
		t.Fatalf("got %d fetches, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("fetch order = %v, want %v", order, want)
		}
	}
}
