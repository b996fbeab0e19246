package usecases_port

import (
	"context"

	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/core/domain"
)

type CollectAvailabilityPort interface {
	// Execute выполняет полный проход по матрице регион × дата.
	// trigger - непрозрачный payload планировщика, используется только для журнала.
	Execute(ctx context.Context, trigger string) (*domain.CollectionRun, error)
}
