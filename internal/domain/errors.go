package domain

import (
	"errors"
	"fmt"
)

// Виды ошибок. Каждая конкретная ошибка ниже разворачивается в один из них:
// ветвление через errors.Is, детали через errors.As.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid transition")
)

// ValidationError некорректный или отсутствующий ввод
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError ссылка на несуществующую сущность
type NotFoundError struct {
	Entity string
	ID     string
}

func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q %s", e.Entity, e.ID, ErrNotFound)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InvalidTransitionError запрещённый переход состояния
type InvalidTransitionError struct {
	Entity string
	ID     string
	From   string
	To     string
}

func NewInvalidTransitionError(entity, id, from, to string) error {
	return &InvalidTransitionError{Entity: entity, ID: id, From: from, To: to}
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s %q cannot move from %s to %s", ErrInvalidTransition, e.Entity, e.ID, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }
