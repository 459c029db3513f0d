package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medidesk/internal/domain"
	"medidesk/internal/events"
)

func startHub(t *testing.T) (*Hub, *httptest.Server, context.CancelFunc) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/ws", ServeWS(hub))
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, srv, cancel
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_BroadcastsEvents(t *testing.T) {
	hub, srv, _ := startHub(t)
	a := dial(t, srv)
	b := dial(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), events.Event{Type: domain.NotificationPharmacy, Title: "Alerte stock", RelatedID: "prod-1"}))

	for _, conn := range []*websocket.Conn{a, b} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		var e events.Event
		require.NoError(t, json.Unmarshal(msg, &e))
		assert.Equal(t, domain.NotificationPharmacy, e.Type)
		assert.Equal(t, "prod-1", e.RelatedID)
	}
}

func TestHub_UnregistersClosedClient(t *testing.T) {
	hub, srv, _ := startHub(t)
	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_StopClosesClients(t *testing.T) {
	hub, srv, cancel := startHub(t)
	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_PublishWithoutRunDoesNotBlock(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	var err error
	for i := 0; i < 100; i++ {
		err = hub.Publish(context.Background(), events.Event{})
	}
	require.ErrorIs(t, err, ErrHubBusy)
}
