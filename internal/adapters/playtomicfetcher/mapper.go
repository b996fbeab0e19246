package playtomicfetcher

import (
	"fmt"
	"time"

	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/constants"
	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/core/domain"
)

// DTO поисковой поверхности (tenant = площадка у провайдера).

type playtomicTenant struct {
	TenantID   string              `json:"tenant_id"`
	TenantUID  string              `json:"tenant_uid"`
	TenantName string              `json:"tenant_name"`
	Address    playtomicAddress    `json:"address"`
	Resources  []playtomicResource `json:"resources"`
	Amenities  []string            `json:"amenities"`
}

type playtomicAddress struct {
	Street   string              `json:"street"`
	City     string              `json:"city"`
	Country  string              `json:"country"`
	Zip      string              `json:"postal_code"`
	Coord    playtomicCoordinate `json:"coordinate"`
	TimeZone string              `json:"timezone"`
}

type playtomicCoordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type playtomicResource struct {
	ResourceID string                      `json:"resource_id"`
	Name       string                      `json:"name"`
	Properties playtomicResourceProperties `json:"properties"`
}

type playtomicResourceProperties struct {
	ResourceType    string `json:"resource_type"`    // "indoor" или "outdoor"
	ResourceSize    string `json:"resource_size"`    // "single" или "double"
	ResourceFeature string `json:"resource_feature"` // покрытие/особенность корта
}

// DTO endpoint'а доступности: список записей по кортам,
// каждая с нулем и более временных слотов.

type playtomicAvailability struct {
	ResourceID string          `json:"resource_id"`
	StartDate  string          `json:"start_date"`
	Slots      []playtomicSlot `json:"slots"`
}

type playtomicSlot struct {
	StartTime string `json:"start_time"` // "HH:MM:SS", локальное время провайдера
	Duration  int    `json:"duration"`   // минуты; 0, если провайдер не вернул
	Price     string `json:"price"`      // свободный текст "48 GBP"
}

// toDomainVenue преобразует tenant провайдера в доменную площадку.
func toDomainVenue(t playtomicTenant) domain.Venue {
	courts := make([]domain.Court, 0, len(t.Resources))
	indoor := len(t.Resources) > 0
	for _, r := range t.Resources {
		courts = append(courts, domain.Court{
			ID:      r.ResourceID,
			Name:    r.Name,
			Surface: r.Properties.ResourceFeature,
		})
		if !r.IsIndoor() {
			indoor = false
		}
	}

	slug := t.TenantUID
	if slug == "" {
		slug = slugify(t.TenantName)
	}

	surface := ""
	if len(courts) > 0 {
		surface = courts[0].Surface
	}

	return domain.Venue{
		ID:        t.TenantID,
		Name:      t.TenantName,
		Slug:      slug,
		Address:   t.Address.Street,
		Postcode:  t.Address.Zip,
		Latitude:  t.Address.Coord.Lat,
		Longitude: t.Address.Coord.Lon,
		Indoor:    indoor,
		Surface:   surface,
		Amenities: t.Amenities,
		Courts:    courts,
	}
}

func (r playtomicResource) IsIndoor() bool {
	return r.Properties.ResourceType == "indoor"
}

// toDomainSlots нормализует сырой ответ доступности одной площадки в слоты.
// Порядок слотов внутри площадки сохраняется как в ответе провайдера.
func toDomainSlots(venue domain.Venue, date time.Time, records []playtomicAvailability) []domain.Slot {
	day := date.Format(domain.CacheDateLayout)
	link := bookingLink(venue, day)

	var slots []domain.Slot
	for _, rec := range records {
		court, ok := venue.CourtByID(rec.ResourceID)
		if !ok {
			// Ресурс, которого нет в метаданных площадки: строим минимальный корт,
			// чтобы не терять слот
			court = domain.Court{ID: rec.ResourceID, Name: rec.ResourceID}
		}

		startDate := rec.StartDate
		if startDate == "" {
			startDate = day
		}

		for _, raw := range rec.Slots {
			start, err := time.Parse("2006-01-02 15:04:05", startDate+" "+raw.StartTime)
			if err != nil {
				continue // слот с нечитаемым временем пропускаем
			}
			start = start.UTC()

			duration := raw.Duration
			if duration <= 0 {
				duration = constants.DefaultSlotDurationMinutes
			}

			price, currency := parsePrice(raw.Price)

			slots = append(slots, domain.Slot{
				Venue:     venue,
				Court:     court,
				StartTime: start,
				EndTime:   start.Add(time.Duration(duration) * time.Minute),
				Duration:  duration,
				Price:     price,
				Currency:  currency,
				Available: true,
				Link:      link,
			})
		}
	}
	return slots
}

// bookingLink строит deep link на страницу бронирования площадки на конкретную дату.
func bookingLink(venue domain.Venue, day string) string {
	ref := venue.Slug
	if ref == "" {
		ref = venue.ID
	}
	return fmt.Sprintf("%s/tenant/%s?date=%s", constants.BookingBaseURL, ref, day)
}
