package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medidesk/internal/domain"
)

func TestMulti_PublishesToAllAndJoinsErrors(t *testing.T) {
	var got []string
	boom := errors.New("boom")
	m := Multi{
		PublisherFunc(func(_ context.Context, e Event) error {
			got = append(got, "a:"+e.Title)
			return boom
		}),
		nil,
		PublisherFunc(func(_ context.Context, e Event) error {
			got = append(got, "b:"+e.Title)
			return nil
		}),
	}
	err := m.Publish(context.Background(), Event{Title: "x"})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a:x", "b:x"}, got)
}

func TestNop(t *testing.T) {
	require.NoError(t, Nop.Publish(context.Background(), Event{}))
}

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStream_Publish(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()
	sink := NewRedisStream(client, "medidesk:events", 0)

	at := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	require.NoError(t, sink.Publish(ctx, Event{Type: domain.NotificationPatientArrival, Title: "Arrivée patient", Message: "Jean Martin", RelatedID: "rec-1", OccurredAt: at}))
	require.NoError(t, sink.Publish(ctx, Event{Type: domain.NotificationPharmacy, Title: "Alerte stock", RelatedID: "prod-1", OccurredAt: at}))

	msgs, err := client.XRange(ctx, "medidesk:events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "patient_arrival", msgs[0].Values["type"])
	assert.Equal(t, "rec-1", msgs[0].Values["related_id"])

	e, err := Decode(msgs[0])
	require.NoError(t, err)
	assert.Equal(t, "Jean Martin", e.Message)
	assert.True(t, at.Equal(e.OccurredAt))
}

func TestRedisStream_MaxLen(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()
	sink := NewRedisStream(client, "events", 2)
	for i := 0; i < 5; i++ {
		require.NoError(t, sink.Publish(ctx, Event{Type: domain.NotificationGeneral}))
	}
	n, err := client.XLen(ctx, "events").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestRedisStream_ServerDown(t *testing.T) {
	mr, client := setupTestRedis(t)
	mr.Close()
	err := NewRedisStream(client, "events", 0).Publish(context.Background(), Event{})
	require.Error(t, err)
}

func TestDecode_MissingPayload(t *testing.T) {
	_, err := Decode(redis.XMessage{ID: "1-0", Values: map[string]interface{}{}})
	require.Error(t, err)
}
