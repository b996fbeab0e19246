package domain

import "time"

// Court - один корт внутри площадки (ресурс провайдера).
type Court struct {
	ID      string
	Name    string
	Surface string
}

// Venue - площадка (tenant у провайдера) со статическими метаданными.
// Неизменяема в рамках одного запуска сбора; заново загружается при каждом запуске.
type Venue struct {
	ID        string // ID, присвоенный провайдером, уникален в рамках провайдера
	Name      string
	Slug      string
	Address   string
	Postcode  string
	Latitude  float64
	Longitude float64
	Indoor    bool
	Surface   string
	Amenities []string

	// Список кортов нужен, чтобы сопоставить resource_id из ответа availability
	// с названием и покрытием корта.
	Courts []Court
}

// CourtByID находит корт площадки по ID ресурса провайдера.
func (v Venue) CourtByID(id string) (Court, bool) {
	for _, c := range v.Courts {
		if c.ID == id {
			return c, true
		}
	}
	return Court{}, false
}

// Slot - одно доступное для брони временное окно на одном корте одной площадки.
// Создается заново при каждом запуске сбора и никогда не мутируется.
type Slot struct {
	Venue     Venue
	Court     Court
	StartTime time.Time // UTC
	EndTime   time.Time // UTC
	Duration  int       // минуты
	Price     int       // минорные единицы валюты (пенсы), никогда не float
	Currency  string    // ISO 4217
	Available bool      // всегда true: провайдер не возвращает занятые слоты
	Link      string    // deep link на страницу бронирования
}
