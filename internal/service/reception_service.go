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

// ReceptionService очередь приёмной: регистрация прибытия, триаж, смена статусов
type ReceptionService struct {
	entries  repository.ReceptionRepository
	patients repository.PatientDirectory
	tx       repository.TxManager
	notify   notifier
	log      zerolog.Logger
	now      func() time.Time
}

func NewReceptionService(entries repository.ReceptionRepository, patients repository.PatientDirectory, tx repository.TxManager, pub events.Publisher, log zerolog.Logger) *ReceptionService {
	log = log.With().Str("component", "reception").Logger()
	return &ReceptionService{
		entries:  entries,
		patients: patients,
		tx:       tx,
		notify:   newNotifier(pub, log),
		log:      log,
		now:      time.Now,
	}
}

// RegisterArrival ставит пациента в очередь со статусом waiting. Для
// зарегистрированного пациента имя берётся из справочника, иначе из запроса.
func (s *ReceptionService) RegisterArrival(ctx context.Context, in domain.ArrivalInput) (*domain.ReceptionEntry, error) {
	if in.PatientID != "" && s.patients != nil {
		p, err := s.patients.GetPatient(ctx, in.PatientID)
		switch {
		case err == nil:
			in.PatientName = p.FullName()
		case !errors.Is(err, domain.ErrNotFound):
			return nil, err
		}
	}
	now := s.now()
	e, err := domain.NewReceptionEntry(in, now)
	if err != nil {
		return nil, err
	}
	if err := s.entries.Create(ctx, &e); err != nil {
		return nil, err
	}
	s.log.Info().Str("entry_id", e.ID).Str("priority", string(e.Priority)).Bool("walk_in", e.PatientID == "").Msg("patient arrived")
	s.notify.publish(ctx, events.Event{
		Type:       domain.NotificationPatientArrival,
		Title:      "Arrivée patient",
		Message:    fmt.Sprintf("%s attend à l'accueil (%s, priorité %s)", e.PatientName, e.Reason, e.Priority),
		RelatedID:  e.ID,
		OccurredAt: now,
	})
	return &e, nil
}

func (s *ReceptionService) Get(ctx context.Context, id string) (*domain.ReceptionEntry, error) {
	if id == "" {
		return nil, domain.NewValidationError("id", "is required")
	}
	return s.entries.GetByID(ctx, id)
}

// AssignDoctor допустим только из waiting
func (s *ReceptionService) AssignDoctor(ctx context.Context, id, doctor string) (*domain.ReceptionEntry, error) {
	return s.mutate(ctx, id, "assign doctor", func(e *domain.ReceptionEntry) error {
		return e.AssignDoctor(doctor)
	})
}

// Complete допустим только из in_consultation
func (s *ReceptionService) Complete(ctx context.Context, id string) (*domain.ReceptionEntry, error) {
	return s.mutate(ctx, id, "complete", func(e *domain.ReceptionEntry) error {
		return e.Complete()
	})
}

// Cancel допустим из waiting и in_consultation
func (s *ReceptionService) Cancel(ctx context.Context, id string) (*domain.ReceptionEntry, error) {
	return s.mutate(ctx, id, "cancel", func(e *domain.ReceptionEntry) error {
		return e.Cancel()
	})
}

// UpdateStatus общий переход по статусу для PATCH /reception/:id/status
func (s *ReceptionService) UpdateStatus(ctx context.Context, id string, to domain.ReceptionStatus, doctor string) (*domain.ReceptionEntry, error) {
	return s.mutate(ctx, id, "status "+string(to), func(e *domain.ReceptionEntry) error {
		return e.MoveTo(to, doctor)
	})
}

// UpdateDetails меняет причину, приоритет и заметки, пока пациент ждёт
func (s *ReceptionService) UpdateDetails(ctx context.Context, id string, in domain.DetailsInput) (*domain.ReceptionEntry, error) {
	return s.mutate(ctx, id, "update details", func(e *domain.ReceptionEntry) error {
		return e.UpdateDetails(in)
	})
}

// mutate читает копию, применяет fn и сохраняет под одной блокировкой;
// при ошибке fn хранилище не меняется.
func (s *ReceptionService) mutate(ctx context.Context, id, action string, fn func(*domain.ReceptionEntry) error) (*domain.ReceptionEntry, error) {
	if id == "" {
		return nil, domain.NewValidationError("id", "is required")
	}
	var updated *domain.ReceptionEntry
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		e, err := s.entries.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
		if err := s.entries.Update(ctx, e); err != nil {
			return err
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("entry_id", updated.ID).Str("action", action).Str("status", string(updated.Status)).Msg("reception entry updated")
	return updated, nil
}

// ListOrdered очередь для отображения: ожидающие первыми по приоритету, затем
// остальные в порядке прибытия
func (s *ReceptionService) ListOrdered(ctx context.Context, f repository.ReceptionFilter) ([]domain.ReceptionEntry, error) {
	list, err := s.entries.List(ctx, f)
	if err != nil {
		return nil, err
	}
	domain.OrderQueue(list)
	return list, nil
}

// ListPage страница упорядоченной очереди
func (s *ReceptionService) ListPage(ctx context.Context, f repository.ReceptionFilter, p repository.Page) (repository.Paginated[domain.ReceptionEntry], error) {
	list, err := s.ListOrdered(ctx, f)
	if err != nil {
		return repository.Paginated[domain.ReceptionEntry]{}, err
	}
	return repository.Paginate(list, p), nil
}

func (s *ReceptionService) Waiting(ctx context.Context) ([]domain.ReceptionEntry, error) {
	list, err := s.ListOrdered(ctx, repository.ReceptionFilter{})
	if err != nil {
		return nil, err
	}
	n := 0
	for n < len(list) && list[n].Status == domain.ReceptionWaiting {
		n++
	}
	return list[:n], nil
}

// TodayStats считает записи, созданные сегодня
func (s *ReceptionService) TodayStats(ctx context.Context) (domain.ReceptionStats, error) {
	var stats domain.ReceptionStats
	list, err := s.entries.List(ctx, repository.ReceptionFilter{})
	if err != nil {
		return stats, err
	}
	today := s.now()
	for _, e := range list {
		if sameDay(today, e.CreatedAt) {
			stats.Add(e.Status)
		}
	}
	return stats, nil
}
