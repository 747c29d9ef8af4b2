package services

import "errors"

// Классы ошибок бизнес-логики. Конкретные операции оборачивают их через
// fmt.Errorf с %w, вызывающая сторона различает через errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidArgument = errors.New("invalid argument")
)
