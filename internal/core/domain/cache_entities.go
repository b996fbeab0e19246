package domain

import (
	"fmt"
	"strings"
	"time"
)

const CacheDateLayout = "2006-01-02"

// CacheMetadata - сводка по содержимому одной записи кеша.
type CacheMetadata struct {
	TotalSlots   int
	UniqueVenues int
	CollectedAt  time.Time
	Provider     string
}

// CacheEntry - единица TTL-кеша: все слоты для пары (регион, дата).
// Инвариант: не более одной живой записи на cacheKey, запись выполняется
// как upsert и полностью заменяет предыдущую (без слияния).
type CacheEntry struct {
	CacheKey  string
	Region    string
	Date      string // календарная дата YYYY-MM-DD
	Slots     []Slot
	Metadata  CacheMetadata
	ExpiresAt time.Time
}

// CacheKeyFor строит составной ключ кеша: lower(region) + ":" + date.
func CacheKeyFor(region string, date time.Time) string {
	return fmt.Sprintf("%s:%s", strings.ToLower(region), date.Format(CacheDateLayout))
}

// NewCacheEntry собирает запись кеша из результатов одного элемента сбора.
// ExpiresAt всегда равен collectedAt + ttl.
func NewCacheEntry(region string, date time.Time, slots []Slot, collectedAt time.Time, ttl time.Duration, provider string) CacheEntry {
	return CacheEntry{
		CacheKey: CacheKeyFor(region, date),
		Region:   region,
		Date:     date.Format(CacheDateLayout),
		Slots:    slots,
		Metadata: CacheMetadata{
			TotalSlots:   len(slots),
			UniqueVenues: UniqueVenueCount(slots),
			CollectedAt:  collectedAt,
			Provider:     provider,
		},
		ExpiresAt: collectedAt.Add(ttl),
	}
}

// UniqueVenueCount считает количество различных venue.ID среди слотов.
func UniqueVenueCount(slots []Slot) int {
	seen := make(map[string]struct{}, len(slots))
	for _, s := range slots {
		seen[s.Venue.ID] = struct{}{}
	}
	return len(seen)
}

// CacheStats - агрегат для health-check поверхности. Не является критическим
// путем: при ошибке чтения возвращается нулевой объект.
type CacheStats struct {
	TotalEntries     int
	ActiveEntries    int
	ExpiredEntries   int
	Regions          int
	OldestDate       string
	NewestDate       string
	LastCollectionAt *time.Time
}
