package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"medidesk/internal/domain"
	"medidesk/internal/events"
	"medidesk/internal/repository"
)

// OrderService реализует логику заказов на пополнение: создание, смена статуса,
// приход товара на склад при доставке
type OrderService struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
	tx       repository.TxManager
	notify   notifier
	log      zerolog.Logger
	now      func() time.Time
}

func NewOrderService(products repository.ProductRepository, orders repository.OrderRepository, tx repository.TxManager, pub events.Publisher, log zerolog.Logger) *OrderService {
	log = log.With().Str("component", "pharmacy-orders").Logger()
	return &OrderService{products: products, orders: orders, tx: tx, notify: newNotifier(pub, log), log: log, now: time.Now}
}

// PlaceOrder фиксирует стоимость по текущей цене товара
func (s *OrderService) PlaceOrder(ctx context.Context, in domain.OrderInput) (*domain.Order, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var created *domain.Order
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		p, err := s.products.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		o, err := domain.NewOrder(in, *p, s.now())
		if err != nil {
			return err
		}
		if err := s.orders.Create(ctx, &o); err != nil {
			return err
		}
		created = &o
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("order_id", created.ID).Str("product_id", created.ProductID).Int64("quantity", created.Quantity).Str("total_cost", created.TotalCost.String()).Msg("order placed")
	return created, nil
}

// GetOrder возвращает заказ по id
func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	if id == "" {
		return nil, domain.NewValidationError("id", "is required")
	}
	return s.orders.GetByID(ctx, id)
}

func (s *OrderService) List(ctx context.Context, f repository.OrderFilter) ([]domain.Order, error) {
	return s.orders.List(ctx, f)
}

func (s *OrderService) ListPage(ctx context.Context, f repository.OrderFilter, p repository.Page) (repository.Paginated[domain.Order], error) {
	list, err := s.orders.List(ctx, f)
	if err != nil {
		return repository.Paginated[domain.Order]{}, err
	}
	return repository.Paginate(list, p), nil
}

// Pending заказы, ещё не подтверждённые поставщиком
func (s *OrderService) Pending(ctx context.Context) ([]domain.Order, error) {
	return s.orders.List(ctx, repository.OrderFilter{Statuses: []domain.OrderStatus{domain.OrderPending}})
}

// Open заказы, ожидающие доставки
func (s *OrderService) Open(ctx context.Context) ([]domain.Order, error) {
	return s.orders.List(ctx, repository.OrderFilter{Statuses: []domain.OrderStatus{domain.OrderPending, domain.OrderConfirmed}})
}

// AdvanceStatus переводит заказ по жизненному циклу. Доставка атомарно
// увеличивает остаток товара, пересчитывает статус и дату пополнения;
// повторная доставка отклоняется.
func (s *OrderService) AdvanceStatus(ctx context.Context, id string, to domain.OrderStatus) (*domain.Order, error) {
	if id == "" {
		return nil, domain.NewValidationError("id", "is required")
	}
	if !to.Valid() {
		return nil, domain.NewValidationError("status", "must be one of pending, confirmed, delivered, cancelled")
	}
	var (
		updated   *domain.Order
		restocked *domain.Product
	)
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := o.Advance(to); err != nil {
			return err
		}
		if to == domain.OrderDelivered {
			// товар и заказ пишутся в одной транзакции; если запись заказа
			// не пройдёт, MemoryTx откатит и пополнение склада
			p, err := s.products.GetByID(ctx, o.ProductID)
			if err != nil {
				return err
			}
			if err := p.Restock(o.Quantity, s.now()); err != nil {
				return err
			}
			if err := s.products.Update(ctx, p); err != nil {
				return err
			}
			restocked = p
		}
		if err := s.orders.Update(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("order_id", id).Str("status", string(updated.Status)).Msg("order status changed")
	if restocked != nil {
		s.notify.publish(ctx, events.Event{
			Type:      domain.NotificationPharmacy,
			Title:     "Commande livrée",
			Message:   fmt.Sprintf("%s: +%d, stock %d (%s)", restocked.Name, updated.Quantity, restocked.Quantity, restocked.Status()),
			RelatedID: updated.ID,
		})
	}
	return updated, nil
}

// CancelOrder отмена из pending или confirmed
func (s *OrderService) CancelOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.AdvanceStatus(ctx, id, domain.OrderCancelled)
}

// Summary счётчики для дашборда аптеки
func (s *OrderService) Summary(ctx context.Context) (domain.StockSummary, error) {
	var sum domain.StockSummary
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		products, err := s.products.List(ctx, repository.ProductFilter{})
		if err != nil {
			return err
		}
		for _, p := range products {
			switch p.Status() {
			case domain.StockInStock:
				sum.InStock++
			case domain.StockLow:
				sum.LowStock++
			case domain.StockOutOfStock:
				sum.OutOfStock++
			}
		}
		open, err := s.orders.List(ctx, repository.OrderFilter{Statuses: []domain.OrderStatus{domain.OrderPending, domain.OrderConfirmed}})
		if err != nil {
			return err
		}
		sum.OpenOrders = len(open)
		return nil
	})
	return sum, err
}
