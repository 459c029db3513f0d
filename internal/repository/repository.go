package repository

import (
	"context"
	"strings"

	"medidesk/internal/domain"
)

// ReceptionFilter Query ищет по имени пациента или причине визита
type ReceptionFilter struct {
	Query string
}

// ProductFilter параметры фильтрации списка товаров
type ProductFilter struct {
	Query    string
	Category string
	Statuses []domain.StockStatus
}

type OrderFilter struct {
	Statuses []domain.OrderStatus
}

// ReceptionRepository хранит записи в порядке прибытия
type ReceptionRepository interface {
	Create(ctx context.Context, e *domain.ReceptionEntry) error
	GetByID(ctx context.Context, id string) (*domain.ReceptionEntry, error)
	Update(ctx context.Context, e *domain.ReceptionEntry) error
	List(ctx context.Context, f ReceptionFilter) ([]domain.ReceptionEntry, error)
}

// ProductRepository интерфейс репозитория товаров
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f ProductFilter) ([]domain.Product, error)
}

// OrderRepository интерфейс репозитория заказов
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	Update(ctx context.Context, o *domain.Order) error
	List(ctx context.Context, f OrderFilter) ([]domain.Order, error)
}

// PatientDirectory справочник зарегистрированных пациентов
type PatientDirectory interface {
	GetPatient(ctx context.Context, id string) (*domain.Patient, error)
}

// TxManager абстракция транзакции. Для in-memory это глобальная блокировка записи.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// helper: case-insensitive contains
func containsIgnoreCase(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
