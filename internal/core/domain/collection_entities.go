package domain

import "github.com/google/uuid"

// Статусы элемента сбора (пара регион × дата).
type CollectionStatus string

const (
	CollectionStatusSuccess CollectionStatus = "success"
	CollectionStatusError   CollectionStatus = "error"
)

// CollectionLogEntry - append-only запись аудита одного элемента сбора.
// Никогда не обновляется и не удаляется ядром.
type CollectionLogEntry struct {
	CollectionID    uuid.UUID // одно значение на весь запуск
	Region          string
	Date            string // YYYY-MM-DD
	Status          CollectionStatus
	SlotsCollected  int
	VenuesProcessed int
	ErrorMessage    string // заполнено только при Status == error
	ExecutionTimeMs int64
	Provider        string
}

// ItemResult - результат одного элемента (регион × дата) для итогового отчета.
type ItemResult struct {
	Region          string
	Date            string
	Status          CollectionStatus
	SlotsCount      int
	VenuesCount     int
	MinPrice        int // минорные единицы; 0, если слотов нет
	MaxPrice        int
	ExecutionTimeMs int64
	Error           string
}

// RunSummary - сводка по всему запуску оркестратора.
type RunSummary struct {
	TotalCollections      int
	SuccessfulCollections int
	TotalSlots            int
	// TotalVenues - истинное объединение venue.ID по всем элементам запуска
	// (а не сумма по элементам, которая завышала бы значение).
	TotalVenues      int
	CollectionTimeMs int64
}

// CollectionRun - полный итог одного запуска: результаты по элементам плюс сводка.
type CollectionRun struct {
	CollectionID uuid.UUID
	Results      []ItemResult
	Summary      RunSummary
}
