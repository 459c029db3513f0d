package notification

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medidesk/internal/domain"
	"medidesk/internal/events"
)

func publish(t *testing.T, f *Feed, title string) {
	t.Helper()
	require.NoError(t, f.Publish(context.Background(), events.Event{Type: domain.NotificationGeneral, Title: title}))
}

func TestFeed_NewestFirstAndUnread(t *testing.T) {
	f := NewFeed(10)
	publish(t, f, "first")
	publish(t, f, "second")

	list := f.List()
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Title)
	assert.False(t, list[0].Read)
	assert.False(t, list[0].CreatedAt.IsZero())
	assert.Equal(t, 2, f.UnreadCount())

	n, err := f.MarkRead(list[1].ID)
	require.NoError(t, err)
	assert.True(t, n.Read)
	assert.Equal(t, 1, f.UnreadCount())
	unread := f.Unread()
	require.Len(t, unread, 1)
	assert.Equal(t, "second", unread[0].Title)

	assert.Equal(t, 1, f.MarkAllRead())
	assert.Equal(t, 0, f.UnreadCount())
	assert.Equal(t, 0, f.MarkAllRead())
}

func TestFeed_KeepsEventTime(t *testing.T) {
	f := NewFeed(0)
	at := time.Date(2026, 1, 22, 8, 30, 0, 0, time.UTC)
	require.NoError(t, f.Publish(context.Background(), events.Event{Type: domain.NotificationPatientArrival, RelatedID: "rec-1", OccurredAt: at}))
	n := f.List()[0]
	assert.Equal(t, at, n.CreatedAt)
	assert.Equal(t, "rec-1", n.RelatedID)
	assert.Equal(t, domain.NotificationPatientArrival, n.Type)
}

func TestFeed_CapacityDropsOldest(t *testing.T) {
	f := NewFeed(3)
	for i := 0; i < 5; i++ {
		publish(t, f, fmt.Sprintf("n%d", i))
	}
	list := f.List()
	require.Len(t, list, 3)
	assert.Equal(t, "n4", list[0].Title)
	assert.Equal(t, "n2", list[2].Title)
}

func TestFeed_DeleteAndClear(t *testing.T) {
	f := NewFeed(10)
	publish(t, f, "a")
	publish(t, f, "b")
	id := f.List()[0].ID

	require.NoError(t, f.Delete(id))
	require.ErrorIs(t, f.Delete(id), domain.ErrNotFound)
	_, err := f.MarkRead(id)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Len(t, f.List(), 1)

	f.Clear()
	assert.Empty(t, f.List())
}
