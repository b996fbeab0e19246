package rest

import (
	"encoding/json"
	"time"

	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/core/domain"
)

// CollectRequest - тело POST /api/v1/collect. Оба поля опциональны:
// budgetMs задает бюджет вызова снаружи, trigger - непрозрачный payload
// планировщика, он попадает в журнал как есть.
type CollectRequest struct {
	BudgetMs int64           `json:"budgetMs,omitempty"`
	Trigger  json.RawMessage `json:"trigger,omitempty"`
}

// Структуры для ответа API

type ItemResultResponse struct {
	Region          string `json:"region"`
	Date            string `json:"date"`
	Status          string `json:"status"`
	SlotsCount      int    `json:"slotsCount"`
	VenuesCount     int    `json:"venuesCount"`
	MinPrice        int    `json:"minPrice"`
	MaxPrice        int    `json:"maxPrice"`
	ExecutionTimeMs int64  `json:"executionTimeMs"`
	Error           string `json:"error,omitempty"`
}

type RunSummaryResponse struct {
	TotalCollections      int   `json:"totalCollections"`
	SuccessfulCollections int   `json:"successfulCollections"`
	TotalSlots            int   `json:"totalSlots"`
	TotalVenues           int   `json:"totalVenues"`
	CollectionTimeMs      int64 `json:"collectionTimeMs"`
}

type CollectionRunResponse struct {
	CollectionID string               `json:"collectionId"`
	Results      []ItemResultResponse `json:"results"`
	Summary      RunSummaryResponse   `json:"summary"`
}

type CollectResponse struct {
	Status        string                 `json:"status"`
	Collection    *CollectionRunResponse `json:"collection,omitempty"`
	Error         string                 `json:"error,omitempty"`
	ExecutionTime int64                  `json:"executionTime"` // миллисекунды
	Timestamp     time.Time              `json:"timestamp"`
}

type CacheStatsResponse struct {
	TotalEntries     int        `json:"totalEntries"`
	ActiveEntries    int        `json:"activeEntries"`
	ExpiredEntries   int        `json:"expiredEntries"`
	Regions          int        `json:"regions"`
	OldestDate       string     `json:"oldestDate,omitempty"`
	NewestDate       string     `json:"newestDate,omitempty"`
	LastCollectionAt *time.Time `json:"lastCollectionAt,omitempty"`
}

type HealthResponse struct {
	Status    string             `json:"status"`
	Cache     CacheStatsResponse `json:"cache"`
	Timestamp time.Time          `json:"timestamp"`
}

// Маппинг из доменной модели в DTO для ответа

func toCollectionRunResponse(run *domain.CollectionRun) *CollectionRunResponse {
	results := make([]ItemResultResponse, len(run.Results))
	for i, r := range run.Results {
		results[i] = ItemResultResponse{
			Region:          r.Region,
			Date:            r.Date,
			Status:          string(r.Status),
			SlotsCount:      r.SlotsCount,
			VenuesCount:     r.VenuesCount,
			MinPrice:        r.MinPrice,
			MaxPrice:        r.MaxPrice,
			ExecutionTimeMs: r.ExecutionTimeMs,
			Error:           r.Error,
		}
	}
	return &CollectionRunResponse{
		CollectionID: run.CollectionID.String(),
		Results:      results,
		Summary: RunSummaryResponse{
			TotalCollections:      run.Summary.TotalCollections,
			SuccessfulCollections: run.Summary.SuccessfulCollections,
			TotalSlots:            run.Summary.TotalSlots,
			TotalVenues:           run.Summary.TotalVenues,
			CollectionTimeMs:      run.Summary.CollectionTimeMs,
		},
	}
}

func toCacheStatsResponse(stats domain.CacheStats) CacheStatsResponse {
	return CacheStatsResponse{
		TotalEntries:     stats.TotalEntries,
		ActiveEntries:    stats.ActiveEntries,
		ExpiredEntries:   stats.ExpiredEntries,
		Regions:          stats.Regions,
		OldestDate:       stats.OldestDate,
		NewestDate:       stats.NewestDate,
		LastCollectionAt: stats.LastCollectionAt,
	}
}
