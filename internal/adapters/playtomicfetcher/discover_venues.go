package playtomicfetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/constants"
	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/contextkeys"
	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/core/port"

	"github.com/gocolly/colly/v2"
)

// discoveryStrategy - один способ найти площадки региона.
type discoveryStrategy struct {
	name string
	run  func(ctx context.Context, profile constants.RegionProfile) ([]playtomicTenant, error)
}

// discoverTenants пробует стратегии поиска по порядку и возвращает результат
// первой, которая вернула непустой список. Сбой стратегии (HTTP-ошибка,
// нечитаемый payload) логируется, и пробуется следующая. Если все стратегии
// упали или вернули пусто - discovery деградирует до "нет площадок", это
// не ошибка.
func (a *PlaytomicFetcherAdapter) discoverTenants(ctx context.Context, profile constants.RegionProfile) []playtomicTenant {
	logger := contextkeys.LoggerFromContext(ctx)
	discoveryLogger := logger.WithFields(port.Fields{
		"component": "PlaytomicFetcherAdapter(Discovery)",
		"region":    profile.Name,
	})

	strategies := []discoveryStrategy{
		{name: "coordinate_search", run: a.searchTenantsByCoordinate},
		{name: "name_search", run: a.searchTenantsByName},
	}

	for _, strategy := range strategies {
		if ctx.Err() != nil {
			return nil
		}

		tenants, err := strategy.run(ctx, profile)
		if err != nil {
			discoveryLogger.Warn("Discovery strategy failed, trying next", port.Fields{
				"strategy": strategy.name,
				"error":    err.Error(),
			})
			continue
		}
		if len(tenants) == 0 {
			discoveryLogger.Debug("Discovery strategy returned no venues, trying next", port.Fields{
				"strategy": strategy.name,
			})
			continue
		}

		deduped := dedupeTenants(tenants)
		discoveryLogger.Info("Discovery strategy succeeded", port.Fields{
			"strategy":     strategy.name,
			"venues_found": len(deduped),
			"raw_count":    len(tenants),
		})
		return deduped
	}

	discoveryLogger.Warn("All discovery strategies failed or returned empty", nil)
	return nil
}

// searchTenantsByCoordinate - основная стратегия: структурированный поиск
// по координате региона с радиусом.
func (a *PlaytomicFetcherAdapter) searchTenantsByCoordinate(ctx context.Context, profile constants.RegionProfile) ([]playtomicTenant, error) {
	u, err := url.Parse(a.cfg.TenantsURL)
	if err != nil {
		return nil, fmt.Errorf("playtomic adapter: invalid tenants URL: %w", err)
	}

	q := u.Query()
	q.Set("coordinate", fmt.Sprintf("%f,%f", profile.Latitude, profile.Longitude))
	q.Set("sport_id", constants.SportPadel)
	q.Set("radius", strconv.Itoa(a.cfg.SearchRadius))
	q.Set("size", strconv.Itoa(constants.MaxTenantsPerSearch))
	u.RawQuery = q.Encode()

	return a.visitTenantsURL(ctx, u.String())
}

// searchTenantsByName - запасная стратегия: поиск по названию региона на
// общей поисковой поверхности провайдера.
func (a *PlaytomicFetcherAdapter) searchTenantsByName(ctx context.Context, profile constants.RegionProfile) ([]playtomicTenant, error) {
	u, err := url.Parse(a.cfg.TenantsURL)
	if err != nil {
		return nil, fmt.Errorf("playtomic adapter: invalid tenants URL: %w", err)
	}

	q := u.Query()
	q.Set("tenant_name", NormalizeLocality(profile.Name))
	q.Set("sport_id", constants.SportPadel)
	q.Set("playtomic_status", constants.TenantStatusActive)
	q.Set("size", strconv.Itoa(constants.MaxTenantsPerSearch))
	u.RawQuery = q.Encode()

	return a.visitTenantsURL(ctx, u.String())
}

// visitTenantsURL выполняет один discovery-запрос через "одноразовый" клон
// коллектора. Клон наследует лимиты, но имеет свои собственные обработчики!
func (a *PlaytomicFetcherAdapter) visitTenantsURL(ctx context.Context, targetURL string) ([]playtomicTenant, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	visitLogger := logger.WithFields(port.Fields{"component": "PlaytomicFetcherAdapter(TenantSearch)"})

	collector := a.collector.Clone()

	var tenants []playtomicTenant
	var responseErr error // Для хранения ошибки из колбэка

	collector.OnRequest(func(r *colly.Request) {
		// Если элемент сбора уже отменен, запрос не имеет смысла
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		visitLogger.Debug("Making request to search venues", port.Fields{
			"url": r.URL.String(),
		})
	})

	collector.OnResponse(func(r *colly.Response) {
		// Десериализуем JSON из тела ответа
		var data []playtomicTenant
		if jsonErr := json.Unmarshal(r.Body, &data); jsonErr != nil {
			responseErr = fmt.Errorf("playtomic adapter: failed to parse tenants payload from %s: %w", r.Request.URL.String(), jsonErr)
			return
		}
		tenants = data
	})

	collector.OnError(func(r *colly.Response, err error) {
		visitLogger.Error("Failed to fetch venues page", err, port.Fields{
			"url":    r.Request.URL.String(),
			"status": r.StatusCode,
		})
		responseErr = fmt.Errorf("playtomic adapter: request to %s failed with status %d: %w", r.Request.URL, r.StatusCode, err)
	})

	// Ошибки обрабатываются в OnError, но мы все равно должны проверить
	// ошибку самого вызова Visit (например, если домен не разрешен)
	if visitErr := collector.Visit(targetURL); visitErr != nil {
		return nil, fmt.Errorf("playtomic adapter: failed to visit URL %s: %w", targetURL, visitErr)
	}
	collector.Wait()

	if responseErr != nil {
		return nil, responseErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return tenants, nil
}
