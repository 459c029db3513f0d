package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"medidesk/internal/events"
)

// notifier публикует события после фиксации изменений. Ошибка доставки
// только логируется: состояние уже изменено.
type notifier struct {
	pub events.Publisher
	log zerolog.Logger
}

func newNotifier(pub events.Publisher, log zerolog.Logger) notifier {
	if pub == nil {
		pub = events.Nop
	}
	return notifier{pub: pub, log: log}
}

func (n notifier) publish(ctx context.Context, e events.Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}
	if err := n.pub.Publish(ctx, e); err != nil {
		n.log.Warn().Err(err).Str("event", string(e.Type)).Str("related_id", e.RelatedID).Msg("publish event")
	}
}

func sameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
