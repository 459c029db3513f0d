package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"medidesk/internal/domain"
	"medidesk/internal/events"
	"medidesk/internal/repository"
)

// ProductService инкапсулирует бизнес-логику вокруг товаров аптеки
type ProductService struct {
	repo   repository.ProductRepository
	tx     repository.TxManager
	notify notifier
	log    zerolog.Logger
	now    func() time.Time
}

func NewProductService(repo repository.ProductRepository, tx repository.TxManager, pub events.Publisher, log zerolog.Logger) *ProductService {
	log = log.With().Str("component", "pharmacy").Logger()
	return &ProductService{repo: repo, tx: tx, notify: newNotifier(pub, log), log: log, now: time.Now}
}

// Upsert создаёт товар (пустой или неизвестный ID) или обновляет существующий.
// Статус наличия всегда пересчитывается.
func (s *ProductService) Upsert(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var (
		saved    *domain.Product
		previous domain.StockStatus
	)
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if in.ID != "" {
			existing, err := s.repo.GetByID(ctx, in.ID)
			switch {
			case err == nil:
				previous = existing.Status()
				if err := existing.Apply(in); err != nil {
					return err
				}
				if err := s.repo.Update(ctx, existing); err != nil {
					return err
				}
				saved = existing
				return nil
			case !errors.Is(err, domain.ErrNotFound):
				return err
			}
		}
		p, err := domain.NewProduct(in, s.now())
		if err != nil {
			return err
		}
		if err := s.repo.Create(ctx, &p); err != nil {
			return err
		}
		saved = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("product_id", saved.ID).Int64("quantity", saved.Quantity).Str("status", string(saved.Status())).Msg("product saved")
	if saved.Status() != previous {
		s.alertStock(ctx, saved)
	}
	return saved, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, domain.NewValidationError("id", "is required")
	}
	return s.repo.GetByID(ctx, id)
}

// Remove удаляет товар; заказы сохраняют снимок названия
func (s *ProductService) Remove(ctx context.Context, id string) error {
	if id == "" {
		return domain.NewValidationError("id", "is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("product_id", id).Msg("product removed")
	return nil
}

func (s *ProductService) List(ctx context.Context, f repository.ProductFilter) ([]domain.Product, error) {
	return s.repo.List(ctx, f)
}

func (s *ProductService) ListPage(ctx context.Context, f repository.ProductFilter, p repository.Page) (repository.Paginated[domain.Product], error) {
	list, err := s.repo.List(ctx, f)
	if err != nil {
		return repository.Paginated[domain.Product]{}, err
	}
	return repository.Paginate(list, p), nil
}

// LowStock товары ниже порога, включая закончившиеся
func (s *ProductService) LowStock(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx, repository.ProductFilter{Statuses: []domain.StockStatus{domain.StockLow, domain.StockOutOfStock}})
}

// Restock ручное пополнение склада на delta единиц
func (s *ProductService) Restock(ctx context.Context, id string, delta int64) (*domain.Product, error) {
	if id == "" {
		return nil, domain.NewValidationError("id", "is required")
	}
	if delta <= 0 {
		return nil, domain.NewValidationError("quantity", "must be > 0")
	}
	var (
		updated  *domain.Product
		previous domain.StockStatus
	)
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		previous = p.Status()
		if err := p.Restock(delta, s.now()); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("product_id", id).Int64("delta", delta).Int64("quantity", updated.Quantity).Msg("product restocked")
	if updated.Status() != previous {
		s.alertStock(ctx, updated)
	}
	return updated, nil
}

func (s *ProductService) alertStock(ctx context.Context, p *domain.Product) {
	var msg string
	switch p.Status() {
	case domain.StockOutOfStock:
		msg = fmt.Sprintf("%s est en rupture de stock", p.Name)
	case domain.StockLow:
		msg = fmt.Sprintf("%s: stock faible (%d/%d %s)", p.Name, p.Quantity, p.MinStock, p.Unit)
	default:
		return
	}
	s.notify.publish(ctx, events.Event{
		Type:      domain.NotificationPharmacy,
		Title:     "Alerte stock",
		Message:   msg,
		RelatedID: p.ID,
	})
}
