package websocket

import (
	"context"
	"encoding/json"

	"eventhub/internal/microservices/http-api/models"

	"github.com/rs/zerolog"
)

// Central hub pushing notifications to the connected clients of each user.
// Every connection runs its own read and write goroutines; the client registry
// is owned by the Run loop and only touched through channels.
type Hub struct {
	clients    map[string]map[*Client]bool // userID -> open connections
	register   chan *Client
	unregister chan *Client
	deliver    chan delivery
	done       chan struct{}
	log        zerolog.Logger
}

type delivery struct {
	userID  string
	payload []byte
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, 256),
		done:       make(chan struct{}),
		log:        log.With().Str("component", "ws_hub").Logger(),
	}
}

// Run serves the hub until ctx is cancelled, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			if h.clients[c.UserID] == nil {
				h.clients[c.UserID] = make(map[*Client]bool)
			}
			h.clients[c.UserID][c] = true
			h.log.Debug().Str("user_id", c.UserID).Int("connections", len(h.clients[c.UserID])).Msg("client connected")

		case c := <-h.unregister:
			h.remove(c)

		case d := <-h.deliver:
			for c := range h.clients[d.userID] {
				select {
				case c.send <- d.payload:
				default:
					// slow consumer, drop it rather than block everyone else
					h.log.Warn().Str("user_id", c.UserID).Msg("client send buffer full, disconnecting")
					h.remove(c)
				}
			}

		case <-ctx.Done():
			close(h.done)
			for _, conns := range h.clients {
				for c := range conns {
					close(c.send)
				}
			}
			h.clients = make(map[string]map[*Client]bool)
			h.log.Info().Msg("hub stopped")
			return
		}
	}
}

// Register adds c to the hub. It reports false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) remove(c *Client) {
	conns := h.clients[c.UserID]
	if !conns[c] {
		return
	}
	delete(conns, c)
	close(c.send)
	if len(conns) == 0 {
		delete(h.clients, c.UserID)
	}
	h.log.Debug().Str("user_id", c.UserID).Msg("client disconnected")
}

// PublishNotifications queues one message per notification for its recipient.
// Users without an open connection simply miss the push; the notification is
// still stored and listed by the API.
func (h *Hub) PublishNotifications(ctx context.Context, notifications []models.Notification) error {
	if h == nil {
		return nil
	}
	for i := range notifications {
		payload, err := json.Marshal(NewNotificationMessage(notifications[i]))
		if err != nil {
			return err
		}
		select {
		case h.deliver <- delivery{userID: notifications[i].UserID, payload: payload}:
		case <-ctx.Done():
			return ctx.Err()
		case <-h.done:
			return nil
		}
	}
	return nil
}
