package constants

import "strings"

const (
	ProviderName = "playtomic"

	// Sport IDs
	SportPadel = "PADEL"

	// Статус площадки, по которому фильтрует поисковая поверхность
	TenantStatusActive = "ACTIVE"

	// Базовый URL для deep link на страницу бронирования площадки
	BookingBaseURL = "https://playtomic.io"

	// Длительность слота по умолчанию, если провайдер ее не вернул
	DefaultSlotDurationMinutes = 90

	// Максимум площадок на один поисковый запрос
	MaxTenantsPerSearch = 40
)

// RegionProfile описывает поисковый профиль одного региона: координаты для
// radius-поиска и допустимые локализованные написания locality у провайдера.
// Radius-поиск может возвращать площадки за пределами региона, поэтому
// результат фильтруется по allow-list написаний.
type RegionProfile struct {
	Name              string // канонический ключ региона (lowercase)
	Latitude          float64
	Longitude         float64
	LocalitySpellings []string
}

// regionProfiles - главный "словарь-переводчик" регион -> параметры поиска.
var regionProfiles = map[string]RegionProfile{
	"london": {
		Name:      "london",
		Latitude:  51.5074,
		Longitude: -0.1278,
		// Провайдер локализует названия городов: итальянская поверхность
		// возвращает "Londra", испанская - "Londres".
		LocalitySpellings: []string{"London", "Londra", "Londres", "Greater London"},
	},
	"manchester": {
		Name:              "manchester",
		Latitude:          53.4808,
		Longitude:         -2.2426,
		LocalitySpellings: []string{"Manchester"},
	},
	"birmingham": {
		Name:              "birmingham",
		Latitude:          52.4862,
		Longitude:         -1.8904,
		LocalitySpellings: []string{"Birmingham"},
	},
}

// RegionProfileFor возвращает профиль региона по его ключу (без учета регистра).
func RegionProfileFor(region string) (RegionProfile, bool) {
	profile, ok := regionProfiles[strings.ToLower(strings.TrimSpace(region))]
	return profile, ok
}
