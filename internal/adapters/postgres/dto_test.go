package postgres

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/contracts"
	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/core/domain"
)

func sampleSlots() []domain.Slot {
	start := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	venue := domain.Venue{
		ID:        "t-1",
		Name:      "Rocket Padel",
		Slug:      "rocket-padel",
		Address:   "1 Example Road",
		Postcode:  "SW11 8AB",
		Latitude:  51.47,
		Longitude: -0.17,
		Indoor:    true,
		Surface:   "panoramic",
		Amenities: []string{"parking"},
	}
	return []domain.Slot{
		{
			Venue:     venue,
			Court:     domain.Court{ID: "r-1", Name: "Court 1", Surface: "panoramic"},
			StartTime: start,
			EndTime:   start.Add(90 * time.Minute),
			Duration:  90,
			Price:     4800,
			Currency:  "GBP",
			Available: true,
			Link:      "https://playtomic.io/tenant/rocket-padel?date=2025-03-15",
		},
	}
}

func TestSlotDTOsMatchContract(t *testing.T) {
	payload, err := json.Marshal(toSlotDTOs(sampleSlots()))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// Сериализация адаптера обязана проходить собственный контракт кеша
	if err := contracts.ValidatePayload("CachedSlotsPayload", "1.0.0", payload); err != nil {
		t.Errorf("serialized slots violate the cache contract: %v", err)
	}
}

func TestSlotDTOFieldNames(t *testing.T) {
	payload, err := json.Marshal(toSlotDTOs(sampleSlots()))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded []map[string]interface{}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	// Внешний контракт кеша - camelCase
	for _, key := range []string{"venue", "court", "startTime", "endTime", "duration", "price", "currency", "available", "link"} {
		if _, ok := decoded[0][key]; !ok {
			t.Errorf("serialized slot is missing %q", key)
		}
	}

	if decoded[0]["startTime"] != "2025-03-15T10:00:00Z" {
		t.Errorf("startTime = %v, want RFC 3339 UTC", decoded[0]["startTime"])
	}
	if decoded[0]["price"] != float64(4800) {
		t.Errorf("price = %v, want 4800", decoded[0]["price"])
	}
}

func TestMetadataDTO(t *testing.T) {
	collectedAt := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)
	dto := toMetadataDTO(domain.CacheMetadata{
		TotalSlots:   4,
		UniqueVenues: 2,
		CollectedAt:  collectedAt,
		Provider:     "playtomic",
	})

	if dto.TotalSlots != 4 || dto.UniqueVenues != 2 || dto.Provider != "playtomic" {
		t.Errorf("metadata dto = %+v", dto)
	}
	if dto.CollectedAt != "2025-03-15T09:00:00Z" {
		t.Errorf("CollectedAt = %q, want RFC 3339 UTC", dto.CollectedAt)
	}
}
