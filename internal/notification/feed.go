// Package notification хранит ленту уведомлений персонала, наполняемую событиями.
package notification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"medidesk/internal/domain"
	"medidesk/internal/events"
)

const DefaultCapacity = 200

// Feed in-memory лента; при переполнении вытесняются самые старые записи
type Feed struct {
	mu       sync.RWMutex
	items    []domain.Notification // старые первыми
	capacity int
	now      func() time.Time
}

func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Feed{capacity: capacity, now: time.Now}
}

var _ events.Publisher = (*Feed)(nil)

// Publish превращает событие в непрочитанное уведомление
func (f *Feed) Publish(_ context.Context, e events.Event) error {
	created := e.OccurredAt
	if created.IsZero() {
		created = f.now()
	}
	n := domain.Notification{
		ID:        uuid.NewString(),
		Type:      e.Type,
		Title:     e.Title,
		Message:   e.Message,
		RelatedID: e.RelatedID,
		CreatedAt: created,
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, n)
	if over := len(f.items) - f.capacity; over > 0 {
		f.items = append([]domain.Notification(nil), f.items[over:]...)
	}
	return nil
}

// List все уведомления, новые первыми
func (f *Feed) List() []domain.Notification {
	return f.collect(func(domain.Notification) bool { return true })
}

func (f *Feed) Unread() []domain.Notification {
	return f.collect(func(n domain.Notification) bool { return !n.Read })
}

func (f *Feed) UnreadCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	count := 0
	for _, n := range f.items {
		if !n.Read {
			count++
		}
	}
	return count
}

func (f *Feed) collect(keep func(domain.Notification) bool) []domain.Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]domain.Notification, 0, len(f.items))
	for i := len(f.items) - 1; i >= 0; i-- {
		if keep(f.items[i]) {
			out = append(out, f.items[i])
		}
	}
	return out
}

func (f *Feed) MarkRead(id string) (*domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Read = true
			cp := f.items[i]
			return &cp, nil
		}
	}
	return nil, domain.NewNotFoundError("notification", id)
}

// MarkAllRead возвращает число отмеченных уведомлений
func (f *Feed) MarkAllRead() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	marked := 0
	for i := range f.items {
		if !f.items[i].Read {
			f.items[i].Read = true
			marked++
		}
	}
	return marked
}

func (f *Feed) Delete(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return domain.NewNotFoundError("notification", id)
}

func (f *Feed) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = nil
}
