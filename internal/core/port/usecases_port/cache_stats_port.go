package usecases_port

import (
	"context"

	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/core/domain"
)

type GetCacheStatsPort interface {
	Execute(ctx context.Context) (domain.CacheStats, error)
}
