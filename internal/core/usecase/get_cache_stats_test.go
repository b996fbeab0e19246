package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/core/domain"
)

type statsStore struct {
	stubStore
	stats    domain.CacheStats
	statsErr error
}

func (s *statsStore) GetCacheStats(ctx context.Context) (domain.CacheStats, error) {
	if s.statsErr != nil {
		return domain.CacheStats{}, s.statsErr
	}
	return s.stats, nil
}

func TestGetCacheStats(t *testing.T) {
	last := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	store := &statsStore{stats: domain.CacheStats{
		TotalEntries:     7,
		ActiveEntries:    5,
		ExpiredEntries:   2,
		Regions:          2,
		OldestDate:       "2025-03-14",
		NewestDate:       "2025-03-20",
		LastCollectionAt: &last,
	}}

	uc := NewGetCacheStatsUseCase(store)
	stats, err := uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if stats.TotalEntries != 7 || stats.ActiveEntries != 5 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.LastCollectionAt == nil || !stats.LastCollectionAt.Equal(last) {
		t.Errorf("LastCollectionAt = %v, want %v", stats.LastCollectionAt, last)
	}
}

func TestGetCacheStatsDegradesOnStoreError(t *testing.T) {
	store := &statsStore{statsErr: errors.New("connection refused")}

	uc := NewGetCacheStatsUseCase(store)
	stats, err := uc.Execute(context.Background())

	// Недоступное хранилище деградирует до нулевой статистики, а не до ошибки
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if stats != (domain.CacheStats{}) {
		t.Errorf("stats = %+v, want zero value", stats)
	}
}
