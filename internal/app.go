package internal

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	logger_adapter "github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/adapters/logger"
	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/adapters/playtomicfetcher"
	postgres_adapter "github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/adapters/postgres"
	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/adapters/rest"
	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/adapters/scheduler"
	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/configs"
	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/core/port"
	"github.com/BrainTwoPoint0/PLAYBACK-sub001/internal/core/usecase"
	fluentlogger "github.com/BrainTwoPoint0/PLAYBACK-sub001/pkg/fluent_logger"
	"github.com/BrainTwoPoint0/PLAYBACK-sub001/pkg/postgres"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
)

// App – структура приложения
type App struct {
	config    *configs.AppConfig
	dbPool    *pgxpool.Pool
	apiServer *rest.Server
	scheduler *scheduler.CronSchedulerAdapter

	logger       port.LoggerPort
	fluentClient *fluent.Fluent // для корректного закрытия
}

// NewApp создает новый экземпляр приложения
func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// --- 1. ИНИЦИАЛИЗАЦИЯ ЛОГГЕРОВ ---
	var activeLoggers []port.LoggerPort

	slogCfg := logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   false, // текстовый формат
		UseColor: true,
	}
	stdoutLogger := logger_adapter.NewSlogAdapter(slogCfg)
	activeLoggers = append(activeLoggers, stdoutLogger)

	// Добавляем Fluent Bit логгер, если он включен в конфигурации
	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	// Создаем наш композитный логгер
	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{
		"service_name": appConfig.AppName,
	})

	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	// --- 2. ИСХОДЯЩИЕ АДАПТЕРЫ ---
	dbPool, err := postgres.NewClient(context.Background(), postgres.Config{DatabaseURL: appConfig.Database.URL})
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL", err, nil)
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	appLogger.Info("Successfully connected to PostgreSQL pool", nil)

	cacheStoreAdapter := postgres_adapter.NewPostgresCacheStoreAdapter(dbPool)

	fetcherAdapter, err := playtomicfetcher.NewPlaytomicFetcherAdapter(playtomicfetcher.Config{
		TenantsURL:      appConfig.Playtomic.TenantsURL,
		AvailabilityURL: appConfig.Playtomic.AvailabilityURL,
		SearchRadius:    appConfig.Playtomic.SearchRadius,
		BatchSize:       appConfig.Collector.BatchSize,
		BatchDelay:      appConfig.Collector.BatchDelay,
	})
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to create playtomic fetcher adapter: %w", err)
	}
	appLogger.Info("All outgoing adapters initialized", nil)

	// --- 3. USE CASES ---
	collectUseCase := usecase.NewCollectAvailabilityUseCase(fetcherAdapter, cacheStoreAdapter, usecase.CollectorSettings{
		Regions:       appConfig.Collector.Regions,
		DaysAhead:     appConfig.Collector.DaysAhead,
		ItemTimeout:   appConfig.Collector.ItemTimeout,
		SuccessDelay:  appConfig.Collector.SuccessDelay,
		SuccessJitter: appConfig.Collector.SuccessJitter,
		FailureDelay:  appConfig.Collector.FailureDelay,
		CacheTTL:      appConfig.Collector.CacheTTL,
	})
	cacheStatsUseCase := usecase.NewGetCacheStatsUseCase(cacheStoreAdapter)
	appLogger.Info("All use cases initialized", nil)

	// --- 4. ВХОДЯЩИЕ АДАПТЕРЫ: REST + планировщик ---
	apiHandlers := rest.NewCollectorHandlers(collectUseCase, cacheStatsUseCase, rest.BudgetPolicy{
		SafetyBuffer: appConfig.Collector.SafetyBuffer,
		MaxExecution: appConfig.Collector.MaxExecution,
	})
	apiServer := rest.NewServer(appConfig.HTTP.Port, apiHandlers, baseLogger)

	var cronScheduler *scheduler.CronSchedulerAdapter
	if appConfig.Schedule.Enabled {
		cronScheduler, err = scheduler.NewCronSchedulerAdapter(
			appConfig.Schedule.Spec, collectUseCase, appConfig.Collector.MaxExecution, baseLogger,
		)
		if err != nil {
			dbPool.Close()
			return nil, fmt.Errorf("failed to create cron scheduler: %w", err)
		}
		appLogger.Info("Cron scheduler initialized", port.Fields{"spec": appConfig.Schedule.Spec})
	}

	// Собираем приложение
	application := &App{
		config:       appConfig,
		dbPool:       dbPool,
		apiServer:    apiServer,
		scheduler:    cronScheduler,
		logger:       appLogger,
		fluentClient: fluentClient,
	}

	return application, nil
}

// Run запускает все компоненты приложения и управляет их жизненным циклом
func (a *App) Run() error {
	// единый контекст для всего приложения для управления graceful shutdown
	appCtx, cancelApp := context.WithCancel(context.Background())

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		if a.scheduler != nil {
			if err := a.scheduler.Stop(context.Background()); err != nil {
				a.logger.Error("Error during scheduler shutdown", err, nil)
			}
		}

		if a.apiServer != nil {
			if err := a.apiServer.Stop(context.Background()); err != nil {
				a.logger.Error("Error during API server shutdown", err, nil)
			}
		}

		if a.dbPool != nil {
			a.dbPool.Close()
			a.logger.Info("PostgreSQL pool closed", nil)
		}

		a.logger.Info("Application shut down gracefully.", nil)

		if a.fluentClient != nil {
			if err := a.fluentClient.Close(); err != nil {
				// Пишем в stdout, так как fluent может быть уже недоступен
				fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
			}
		}
	}()

	a.logger.Info("Application is starting...", nil)

	serverErrors := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server...", port.Fields{"port": a.config.HTTP.Port})
		if err := a.apiServer.Start(); err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}()

	if a.scheduler != nil {
		a.scheduler.Start()
	}

	// Ожидание сигнала на завершение или ошибки от одного из компонентов
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("Application running. Waiting for signals or server error...", nil)
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case <-appCtx.Done():
		a.logger.Warn("Context was cancelled unexpectedly, shutting down...", nil)
	case err := <-serverErrors:
		a.logger.Error("HTTP server failed to start, shutting down", err, nil)
	}

	// Инициируем graceful shutdown, отменяя главный контекст
	cancelApp()

	return nil
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		// Возвращаем безопасное значение по умолчанию и логируем предупреждение
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
