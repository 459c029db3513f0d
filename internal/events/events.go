// Package events разносит доменные события по подписчикам: лента уведомлений,
// websocket-хаб, Redis Streams.
package events

import (
	"context"
	"errors"
	"time"

	"medidesk/internal/domain"
)

// Event событие приёмной или аптеки
type Event struct {
	Type       domain.NotificationType `json:"type"`
	Title      string                  `json:"title"`
	Message    string                  `json:"message"`
	RelatedID  string                  `json:"related_id,omitempty"`
	OccurredAt time.Time               `json:"occurred_at"`
}

// Publisher принимает события; реализация не должна блокироваться надолго
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type PublisherFunc func(ctx context.Context, e Event) error

func (f PublisherFunc) Publish(ctx context.Context, e Event) error { return f(ctx, e) }

// Multi публикует во все приёмники, даже если какой-то вернул ошибку
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type nop struct{}

func (nop) Publish(context.Context, Event) error { return nil }

// Nop отбрасывает события
var Nop Publisher = nop{}
