package domain

import "errors"

// Определяем переменные-ошибки, по которым вызывающий код может ветвиться
// через errors.Is, вместо разбора текста сообщений.
var (
	ErrConfigMissing     = errors.New("required configuration is missing")
	ErrVenueFetchFailed  = errors.New("venue availability fetch failed")
	ErrCollectionTimeout = errors.New("collection timeout")
	ErrCacheWriteFailed  = errors.New("cache write failed")
)
