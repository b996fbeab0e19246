package configs

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DBconfig хранит конфигурацию для БД
type DBconfig struct {
	URL string
}

type HTTPConfig struct {
	Port string
}

type StdoutLogConfig struct {
	Level string // По умолчанию DEBUG
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string // По умолчанию INFO
}

// PlaytomicConfig хранит параметры upstream-провайдера.
type PlaytomicConfig struct {
	TenantsURL      string
	AvailabilityURL string
	SearchRadius    int // метры, для поиска по координатам
}

// CollectorConfig хранит все настройки пайплайна сбора.
// Значения по умолчанию соответствуют рабочим константам пайплайна.
type CollectorConfig struct {
	Regions       []string      // регионы для сбора
	DaysAhead     int           // сколько календарных дней вперед собирать (день 0 = сегодня)
	ItemTimeout   time.Duration // таймаут на один элемент (регион × дата)
	BatchSize     int           // ширина конкурентности запросов доступности
	BatchDelay    time.Duration // пауза между батчами
	SuccessDelay  time.Duration // базовая пауза после успешного элемента
	SuccessJitter time.Duration // случайная добавка к паузе после успеха
	FailureDelay  time.Duration // пауза после неуспешного элемента
	CacheTTL      time.Duration // время жизни записи кеша
	SafetyBuffer  time.Duration // запас, вычитаемый из бюджета вызова
	MaxExecution  time.Duration // абсолютный потолок времени одного запуска
}

// ScheduleConfig - встроенный cron-триггер сбора.
type ScheduleConfig struct {
	Enabled bool
	Spec    string // cron-выражение, например "*/30 * * * *"
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName      string
	Database     DBconfig
	HTTP         HTTPConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
	Playtomic    PlaytomicConfig
	Collector    CollectorConfig
	Schedule     ScheduleConfig
}

// LoadConfig загружает конфигурацию из переменных окружения.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}

	if err != nil {
		// Отсутствие .env не фатально: в контейнере переменные приходят из окружения
		log.Printf("Info: Could not load .env file (path: %v): %v.\n", envPath, err)
	}

	cfg := &AppConfig{}

	cfg.AppName = os.Getenv("APP_NAME")
	if cfg.AppName == "" {
		cfg.AppName = "availability-collector" // Устанавливаем default
	}

	// Читаем DATABASE URL - единственная строго обязательная настройка,
	// без хранилища запуск не имеет смысла
	cfg.Database.URL = os.Getenv("DATABASE_URL")
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	cfg.HTTP.Port = getEnvAsString("HTTP_PORT", "8080")

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}

		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")

	cfg.Playtomic.TenantsURL = getEnvAsString("PLAYTOMIC_TENANTS_URL", "https://playtomic.io/api/v1/tenants")
	cfg.Playtomic.AvailabilityURL = getEnvAsString("PLAYTOMIC_AVAILABILITY_URL", "https://playtomic.io/api/v1/availability")
	cfg.Playtomic.SearchRadius = getEnvAsInt("PLAYTOMIC_SEARCH_RADIUS", 50000)

	cfg.Collector.Regions = getEnvAsStringSlice("COLLECT_REGIONS", []string{"london"})
	cfg.Collector.DaysAhead = getEnvAsInt("COLLECT_DAYS_AHEAD", 7)
	cfg.Collector.ItemTimeout = getEnvAsDuration("COLLECT_ITEM_TIMEOUT", 35*time.Second)
	cfg.Collector.BatchSize = getEnvAsInt("COLLECT_BATCH_SIZE", 5)
	cfg.Collector.BatchDelay = getEnvAsDuration("COLLECT_BATCH_DELAY", 500*time.Millisecond)
	cfg.Collector.SuccessDelay = getEnvAsDuration("COLLECT_SUCCESS_DELAY", 1*time.Second)
	cfg.Collector.SuccessJitter = getEnvAsDuration("COLLECT_SUCCESS_JITTER", 1*time.Second)
	cfg.Collector.FailureDelay = getEnvAsDuration("COLLECT_FAILURE_DELAY", 2*time.Second)
	cfg.Collector.CacheTTL = getEnvAsDuration("CACHE_TTL", 30*time.Minute)
	cfg.Collector.SafetyBuffer = getEnvAsDuration("COLLECT_SAFETY_BUFFER", 10*time.Second)
	cfg.Collector.MaxExecution = getEnvAsDuration("COLLECT_MAX_EXECUTION", 5*time.Minute)

	cfg.Schedule.Enabled = getEnvAsBool("COLLECT_SCHEDULE_ENABLED", false)
	if cfg.Schedule.Enabled {
		cfg.Schedule.Spec = getEnvAsString("COLLECT_SCHEDULE", "*/30 * * * *")
	}

	return cfg, nil
}

// getEnvAsString читает переменную окружения как строку или возвращает значение по умолчанию
func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt читает переменную окружения как int или возвращает значение по умолчанию
// Логирует ошибку, если переменная есть, но не может быть преобразована в int
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

// getEnvAsBool читает переменную окружения как bool или возвращает значение по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

// getEnvAsDuration читает переменную окружения как time.Duration ("35s", "500ms")
// или возвращает значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valDur, err := time.ParseDuration(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as duration: %v. Using default value: %s\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valDur
}

// getEnvAsStringSlice читает переменную окружения как список через запятую
func getEnvAsStringSlice(key string, defaultValue []string) []string {
	valStr, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(valStr) == "" {
		return defaultValue
	}
	parts := strings.Split(valStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
