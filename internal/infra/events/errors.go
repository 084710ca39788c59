package events

import "errors"

var (
	// ErrConnect ошибка подключения к брокеру
	ErrConnect = errors.New("events: broker connection error")

	// ErrPublish ошибка публикации сообщения
	ErrPublish = errors.New("events: publish error")

	// ErrClosed публикация после Close
	ErrClosed = errors.New("events: publisher is closed")
)
