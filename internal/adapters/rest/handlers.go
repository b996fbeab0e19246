package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/contextkeys"
	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/core/domain"
	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/core/port"
	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/core/port/usecases_port"
)

// BudgetPolicy определяет, сколько времени запуску сбора разрешено жить:
// бюджет вызова минус страховочный буфер, но не больше абсолютного потолка.
type BudgetPolicy struct {
	SafetyBuffer time.Duration
	MaxExecution time.Duration
}

// ExecutionBudget возвращает бюджет для одного запуска. ok=false означает,
// что после вычета буфера времени не осталось и запускаться нельзя.
func (p BudgetPolicy) ExecutionBudget(requested time.Duration) (time.Duration, bool) {
	budget := p.MaxExecution
	if requested > 0 {
		remaining := requested - p.SafetyBuffer
		if remaining <= 0 {
			return 0, false
		}
		if remaining < budget {
			budget = remaining
		}
	}
	return budget, true
}

type CollectorHandlers struct {
	collectUC    usecases_port.CollectAvailabilityPort
	cacheStatsUC usecases_port.GetCacheStatsPort
	budget       BudgetPolicy
}

func NewCollectorHandlers(
	collectUC usecases_port.CollectAvailabilityPort,
	cacheStatsUC usecases_port.GetCacheStatsPort,
	budget BudgetPolicy,
) *CollectorHandlers {
	return &CollectorHandlers{
		collectUC:    collectUC,
		cacheStatsUC: cacheStatsUC,
		budget:       budget,
	}
}

// HandleCollect - POST /api/v1/collect: синхронно выполняет полный запуск
// сбора под бюджетом вызова и возвращает отчет.
func (h *CollectorHandlers) HandleCollect(w http.ResponseWriter, r *http.Request) {
	startedAt := time.Now()
	logger := contextkeys.LoggerFromContext(r.Context())

	// Пустое тело допустимо: все поля запроса опциональны
	var req CollectRequest
	body, err := io.ReadAll(r.Body)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "CollectHandler: failed to read request body")
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			WriteJSONError(w, http.StatusBadRequest, "CollectHandler: invalid JSON body")
			return
		}
	}

	execBudget, ok := h.budget.ExecutionBudget(time.Duration(req.BudgetMs) * time.Millisecond)
	if !ok {
		// Бюджет исчерпан еще до старта
		writeCollectError(w, startedAt, "Collection timeout")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), execBudget)
	defer cancel()

	run, err := h.collectUC.Execute(ctx, string(req.Trigger))
	if err != nil {
		message := err.Error()
		if errors.Is(err, domain.ErrCollectionTimeout) {
			message = "Collection timeout"
		}
		logger.Error("Collection run failed", err, port.Fields{
			"elapsed_ms": time.Since(startedAt).Milliseconds(),
		})
		writeCollectError(w, startedAt, message)
		return
	}

	WriteJSON(w, http.StatusOK, CollectResponse{
		Status:        "success",
		Collection:    toCollectionRunResponse(run),
		ExecutionTime: time.Since(startedAt).Milliseconds(),
		Timestamp:     time.Now().UTC(),
	})
}

// HandleHealth - GET /api/v1/health: живость сервиса плюс сводка по кешу.
// Отвечает healthy даже при недоступном хранилище (use case деградирует
// статистику до нулевой).
func (h *CollectorHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	stats, err := h.cacheStatsUC.Execute(r.Context())
	if err != nil {
		WriteJSONError(w, http.StatusInternalServerError, "HealthHandler: failed to collect cache stats")
		return
	}

	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Cache:     toCacheStatsResponse(stats),
		Timestamp: time.Now().UTC(),
	})
}

func writeCollectError(w http.ResponseWriter, startedAt time.Time, message string) {
	WriteJSON(w, http.StatusInternalServerError, CollectResponse{
		Status:        "error",
		Error:         message,
		ExecutionTime: time.Since(startedAt).Milliseconds(),
		Timestamp:     time.Now().UTC(),
	})
}
