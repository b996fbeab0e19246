package playtomicfetcher

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mmcloughlin/geohash"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const defaultCurrency = "GBP"

var (
	// ведущий числовой токен: "48 GBP", "48.5 GBP", "48,5 GBP"
	leadingAmountRe = regexp.MustCompile(`^(\d+(?:[.,]\d+)?)`)
	// ISO 4217 код валюты в любом месте строки
	currencyCodeRe = regexp.MustCompile(`[A-Z]{3}`)

	nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)
)

// parsePrice разбирает свободный текст вида "сумма + код валюты" в целые
// минорные единицы (пенсы). Нечитаемая сумма дает 0 - намеренно узкая
// функция разбора, чтобы смена формата провайдера не трогала вызывающий код.
func parsePrice(raw string) (minor int, currency string) {
	trimmed := strings.TrimSpace(raw)

	currency = defaultCurrency
	if code := currencyCodeRe.FindString(trimmed); code != "" {
		currency = code
	}

	match := leadingAmountRe.FindString(trimmed)
	if match == "" {
		return 0, currency
	}

	amount, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", "."), 64)
	if err != nil {
		return 0, currency
	}

	return int(math.Round(amount * 100)), currency
}

// NormalizeLocality очищает и стандартизирует написание locality для сравнения
func NormalizeLocality(s string) string {
	if s == "" {
		return ""
	}

	lowerTrimmed := strings.ToLower(strings.TrimSpace(s))

	runes := []rune(lowerTrimmed)
	caser := cases.Upper(language.English)

	// Преобразуем только первую руну
	firstRuneTitle := []rune(caser.String(string(runes[0])))
	runes[0] = firstRuneTitle[0]

	return string(runes)
}

// filterTenantsByLocality оставляет только площадки, чей locality у провайдера
// входит в allow-list написаний региона. Это страховка от radius-поиска,
// который возвращает площадки за пределами региона.
func filterTenantsByLocality(tenants []playtomicTenant, spellings []string) []playtomicTenant {
	allowed := make(map[string]struct{}, len(spellings))
	for _, s := range spellings {
		allowed[NormalizeLocality(s)] = struct{}{}
	}

	filtered := make([]playtomicTenant, 0, len(tenants))
	for _, t := range tenants {
		if _, ok := allowed[NormalizeLocality(t.Address.City)]; ok {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// dedupeTenants убирает дубликаты площадок: сначала по ID провайдера, затем
// по геохешу координат - одна и та же площадка может всплыть дважды на
// поисковой поверхности под разными записями.
func dedupeTenants(tenants []playtomicTenant) []playtomicTenant {
	seen := make(map[string]struct{}, len(tenants)*2)
	result := make([]playtomicTenant, 0, len(tenants))

	for _, t := range tenants {
		idKey := "id:" + t.TenantID
		if _, ok := seen[idKey]; ok {
			continue
		}

		geoKey := ""
		if t.Address.Coord.Lat != 0 || t.Address.Coord.Lon != 0 {
			geoKey = "geo:" + geohash.EncodeWithPrecision(t.Address.Coord.Lat, t.Address.Coord.Lon, 9)
			if _, ok := seen[geoKey]; ok {
				continue
			}
		}

		seen[idKey] = struct{}{}
		if geoKey != "" {
			seen[geoKey] = struct{}{}
		}
		result = append(result, t)
	}
	return result
}

// slugify строит URL-безопасный идентификатор из названия площадки.
func slugify(name string) string {
	slug := nonSlugRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(slug, "-")
}
