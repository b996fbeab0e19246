package port

import (
	"context"
	"time"

	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/core/domain"
)

// AvailabilityFetcherPort объединяет все операции с upstream-провайдером
// инвентаря (поиск площадок и получение доступности).
type AvailabilityFetcherPort interface {
	// FetchAvailability находит площадки региона и возвращает нормализованные
	// слоты на указанную дату. Ожидаемые сбои провайдера (ошибки поиска,
	// падение отдельных площадок) не являются ошибкой: в худшем случае
	// возвращается пустой срез. Ошибка возвращается только при отмене
	// контекста.
	FetchAvailability(ctx context.Context, region string, date time.Time) ([]domain.Slot, error)

	// Provider возвращает имя провайдера для метаданных кеша и журнала.
	Provider() string
}
