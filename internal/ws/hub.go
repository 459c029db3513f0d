// Package ws транслирует события приёмной и аптеки на дашборды через WebSocket.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"medidesk/internal/events"
)

// ErrHubBusy очередь рассылки переполнена, событие не доставлено
var ErrHubBusy = errors.New("ws hub: broadcast queue full")

// Client одно WebSocket-подключение
type Client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub хранит подключения и рассылает им сообщения
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	count      atomic.Int64
	log        zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

var _ events.Publisher = (*Hub)(nil)

// Run обслуживает хаб до отмены контекста, затем закрывает все подключения
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
			h.count.Add(1)
			h.log.Debug().Int64("clients", h.count.Load()).Msg("ws client registered")
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
				h.log.Debug().Int64("clients", h.count.Load()).Msg("ws client unregistered")
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					h.log.Warn().Msg("ws client too slow, dropping")
					h.drop(c)
				}
			}
		}
	}
}

// enqueue не блокируется после остановки хаба
func (h *Hub) enqueue(ch chan *Client, c *Client) bool {
	select {
	case ch <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.count.Add(-1)
}

// ClientCount число активных подключений
func (h *Hub) ClientCount() int { return int(h.count.Load()) }

// Publish ставит событие в очередь рассылки, не блокируясь
func (h *Hub) Publish(_ context.Context, e events.Event) error {
	msg, err := json.Marshal(e)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- msg:
		return nil
	default:
		return ErrHubBusy
	}
}
