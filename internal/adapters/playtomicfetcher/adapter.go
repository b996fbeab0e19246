package playtomicfetcher

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/constants"
	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/core/domain"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
)

// Config хранит настройки адаптера провайдера.
type Config struct {
	TenantsURL      string // поисковый endpoint площадок
	AvailabilityURL string // endpoint доступности
	SearchRadius    int    // метры, для coordinate-поиска
	BatchSize       int    // ширина конкурентности запросов доступности
	BatchDelay      time.Duration
}

// PlaytomicFetcherAdapter отвечает за все взаимодействия с API Playtomic:
// поиск площадок (discovery) и получение доступности по площадкам.
type PlaytomicFetcherAdapter struct {
	// родительский коллектор для discovery-запросов, разделяет лимиты
	collector *colly.Collector
	// отдельный HTTP-клиент для запросов доступности: им управляет контекст,
	// чтобы сработавший таймаут элемента закрывал соединения
	httpClient *http.Client
	cfg        Config
}

// NewPlaytomicFetcherAdapter - конструктор
func NewPlaytomicFetcherAdapter(cfg Config) (*PlaytomicFetcherAdapter, error) {
	if cfg.TenantsURL == "" || cfg.AvailabilityURL == "" {
		return nil, fmt.Errorf("%w: PlaytomicFetcherAdapter: tenants and availability URLs", domain.ErrConfigMissing)
	}
	if cfg.SearchRadius <= 0 {
		cfg.SearchRadius = 50000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	if cfg.BatchDelay <= 0 {
		cfg.BatchDelay = 500 * time.Millisecond
	}

	domains, err := allowedDomains(cfg.TenantsURL, cfg.AvailabilityURL)
	if err != nil {
		return nil, fmt.Errorf("PlaytomicFetcherAdapter: %w", err)
	}

	// родительский коллектор
	c := colly.NewCollector(colly.AllowedDomains(domains...), colly.AllowURLRevisit())

	// Эти правила будут наследоваться всеми клонами коллектора
	err = c.Limit(&colly.LimitRule{
		DomainGlob: "*",

		// Параллелизм на уровне discovery-запросов
		Parallelism: 2,

		// задержка до 1 секунды после завершения предыдущего запроса
		RandomDelay: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("PlaytomicFetcherAdapter: failed to set limit rule: %w", err)
	}

	c.SetRequestTimeout(20 * time.Second)

	extensions.RandomUserAgent(c) // На каждый запрос будет подставлен User-Agent реального браузера
	extensions.Referer(c)         // Автоматически подставляет заголовок Referer, имитируя навигацию

	return &PlaytomicFetcherAdapter{
		collector: c,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cfg: cfg,
	}, nil
}

// Provider возвращает имя провайдера для метаданных кеша и журнала.
func (a *PlaytomicFetcherAdapter) Provider() string {
	return constants.ProviderName
}

// allowedDomains собирает список хостов, к которым разрешено ходить коллектору.
func allowedDomains(urls ...string) ([]string, error) {
	seen := make(map[string]struct{}, len(urls))
	domains := make([]string, 0, len(urls))
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid endpoint URL %q: %w", raw, err)
		}
		host := u.Hostname()
		if host == "" {
			return nil, fmt.Errorf("endpoint URL %q has no host", raw)
		}
		if _, ok := seen[host]; ok {
			continue
		}
		seen[host] = struct{}{}
		domains = append(domains, host)
	}
	return domains, nil
}
