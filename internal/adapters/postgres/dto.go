package postgres

import (
	"time"

	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/core/domain"
)

// DTO для jsonb-колонок. Имена полей - camelCase, это внешний контракт
// кеша, по которому ходят потребители.

type slotDTO struct {
	Venue     venueDTO `json:"venue"`
	Court     courtDTO `json:"court"`
	StartTime string   `json:"startTime"` // RFC 3339, UTC
	EndTime   string   `json:"endTime"`
	Duration  int      `json:"duration"`
	Price     int      `json:"price"` // минорные единицы
	Currency  string   `json:"currency"`
	Available bool     `json:"available"`
	Link      string   `json:"link,omitempty"`
}

type venueDTO struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Slug      string   `json:"slug,omitempty"`
	Address   string   `json:"address,omitempty"`
	Postcode  string   `json:"postcode,omitempty"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Indoor    bool     `json:"indoor"`
	Surface   string   `json:"surface,omitempty"`
	Amenities []string `json:"amenities,omitempty"`
}

type courtDTO struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Surface string `json:"surface,omitempty"`
}

type metadataDTO struct {
	TotalSlots   int    `json:"totalSlots"`
	UniqueVenues int    `json:"uniqueVenues"`
	CollectedAt  string `json:"collectedAt"` // RFC 3339, UTC
	Provider     string `json:"provider"`
}

func toSlotDTOs(slots []domain.Slot) []slotDTO {
	dtos := make([]slotDTO, 0, len(slots))
	for _, s := range slots {
		dtos = append(dtos, slotDTO{
			Venue: venueDTO{
				ID:        s.Venue.ID,
				Name:      s.Venue.Name,
				Slug:      s.Venue.Slug,
				Address:   s.Venue.Address,
				Postcode:  s.Venue.Postcode,
				Latitude:  s.Venue.Latitude,
				Longitude: s.Venue.Longitude,
				Indoor:    s.Venue.Indoor,
				Surface:   s.Venue.Surface,
				Amenities: s.Venue.Amenities,
			},
			Court: courtDTO{
				ID:      s.Court.ID,
				Name:    s.Court.Name,
				Surface: s.Court.Surface,
			},
			StartTime: s.StartTime.UTC().Format(time.RFC3339),
			EndTime:   s.EndTime.UTC().Format(time.RFC3339),
			Duration:  s.Duration,
			Price:     s.Price,
			Currency:  s.Currency,
			Available: s.Available,
			Link:      s.Link,
		})
	}
	return dtos
}

func toMetadataDTO(m domain.CacheMetadata) metadataDTO {
	return metadataDTO{
		TotalSlots:   m.TotalSlots,
		UniqueVenues: m.UniqueVenues,
		CollectedAt:  m.CollectedAt.UTC().Format(time.RFC3339),
		Provider:     m.Provider,
	}
}
