package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Elmalamb/vdm/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client is one websocket subscribed to one conversation.
type Client struct {
	ID     string
	UserID string
	Topic  string
	Conn   *websocket.Conn
	Send   chan []byte

	closeOnce sync.Once
}

func NewClient(id, userID, topic string, conn *websocket.Conn) *Client {
	return &Client{
		ID:     id,
		UserID: userID,
		Topic:  topic,
		Conn:   conn,
		Send:   make(chan []byte, 64),
	}
}

// Manager tracks the open subscriptions by topic. The goroutine that feeds
// a client owns its Send channel and closes it; the manager never does.
type Manager struct {
	clients    map[string]map[string]*Client
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
}

func NewManager() *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		clients:    make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Context is cancelled when the manager shuts down. Feeders derive their
// context from it so they stop writing before Send is closed.
func (m *Manager) Context() context.Context {
	return m.ctx
}

// Start runs the registration loop until ctx is done, then drops every
// client and cancels the manager context.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		defer m.cancel()
		for {
			select {
			case client := <-m.register:
				m.mutex.Lock()
				if m.clients[client.Topic] == nil {
					m.clients[client.Topic] = make(map[string]*Client)
				}
				m.clients[client.Topic][client.ID] = client
				m.mutex.Unlock()
				logger.Debug("Websocket client %s subscribed to %s", client.UserID, client.Topic)

			case client := <-m.unregister:
				m.remove(client)
				logger.Debug("Websocket client %s left %s", client.UserID, client.Topic)

			case <-ctx.Done():
				m.mutex.Lock()
				m.clients = make(map[string]map[string]*Client)
				m.mutex.Unlock()
				return
			}
		}
	}()
}

// Register adds client. It reports false once the manager has shut down.
func (m *Manager) Register(client *Client) bool {
	select {
	case m.register <- client:
		return true
	case <-m.ctx.Done():
		return false
	}
}

// Unregister removes client. It returns immediately after shutdown.
func (m *Manager) Unregister(client *Client) {
	select {
	case m.unregister <- client:
	case <-m.ctx.Done():
	}
}

func (m *Manager) remove(client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if topic, ok := m.clients[client.Topic]; ok {
		delete(topic, client.ID)
		if len(topic) == 0 {
			delete(m.clients, client.Topic)
		}
	}
}

// Subscribers returns the number of clients watching topic.
func (m *Manager) Subscribers(topic string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients[topic])
}

// Close ends the client's WritePump. Only the goroutine writing to Send
// may call it.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.Send) })
}

// ReadPump discards incoming frames and returns when the peer goes away.
func (c *Client) ReadPump() {
	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("Websocket read error for %s: %v", c.UserID, err)
			}
			return
		}
	}
}

// WritePump forwards queued frames and keeps the connection alive with
// pings until Send is closed.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("Websocket write error for %s: %v", c.UserID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
