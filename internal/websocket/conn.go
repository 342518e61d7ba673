package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ikkim/shoplive-catalog/pkg/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4 * 1024

	// Rate limiting: 최대 메시지 수 (1초당)
	maxMessagesPerSecond = 20

	sendBufferSize  = 64
	inboxBufferSize = 16
)

// Handler owns the per-connection state. Every method runs on the client's
// serve goroutine, so implementations need no locking.
type Handler interface {
	// Open runs once before any message. An error closes the connection.
	Open(c *Client) error
	HandleMessage(c *Client, message []byte)
	// Refresh runs after the client's product was invalidated.
	Refresh(c *Client)
	Close()
}

// Client is one live connection scoped to a product.
type Client struct {
	ID        string
	ProductID uint
	Hub       *Hub
	Conn      *websocket.Conn
	Send      chan []byte

	handler Handler
	inbox   chan []byte
	// holds at most one pending refresh; further requests coalesce into it
	refresh chan struct{}
	done    chan struct{}
	once    sync.Once

	// touched by ReadPump only
	messageCount  int
	lastResetTime time.Time
}

func NewClient(hub *Hub, conn *websocket.Conn, productID uint, handler Handler) *Client {
	return &Client{
		ID:            uuid.NewString(),
		ProductID:     productID,
		Hub:           hub,
		Conn:          conn,
		Send:          make(chan []byte, sendBufferSize),
		handler:       handler,
		inbox:         make(chan []byte, inboxBufferSize),
		refresh:       make(chan struct{}, 1),
		done:          make(chan struct{}),
		lastResetTime: time.Now(),
	}
}

// Start registers the client and runs its pumps.
func (c *Client) Start() {
	c.Hub.Register(c)
	go c.WritePump()
	go c.ServePump()
	go c.ReadPump()
}

func (c *Client) fields() logger.Fields {
	return logger.Fields{
		"client_id":  c.ID,
		"product_id": c.ProductID,
	}
}

// SendJSON queues v for the peer. A client whose buffer is full is
// disconnected.
func (c *Client) SendJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error("Failed to marshal message", err, c.fields())
		return
	}

	select {
	case c.Send <- data:
	case <-c.done:
	default:
		logger.Warn("Client send buffer full, disconnecting", c.fields())
		c.shutdown()
	}
}

// shutdown stops the pumps. WritePump flushes and closes the socket.
func (c *Client) shutdown() {
	c.once.Do(func() {
		close(c.done)
	})
}

func (c *Client) notifyRefresh() {
	select {
	case c.refresh <- struct{}{}:
	default:
		// one is pending and has not been served yet
	}
}

// ReadPump 클라이언트로부터 메시지 읽기
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.shutdown()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("WebSocket read error", err, c.fields())
			}
			return
		}

		now := time.Now()
		if now.Sub(c.lastResetTime) >= time.Second {
			c.messageCount = 0
			c.lastResetTime = now
		}
		c.messageCount++
		if c.messageCount > maxMessagesPerSecond {
			logger.Warn("Rate limit exceeded", c.fields())
			continue
		}

		select {
		case c.inbox <- message:
		case <-c.done:
			return
		}
	}
}

// ServePump hands queued events to the handler one at a time.
func (c *Client) ServePump() {
	defer c.handler.Close()

	if err := c.handler.Open(c); err != nil {
		logger.Warn("Live session could not open", logger.Fields{
			"client_id":  c.ID,
			"product_id": c.ProductID,
			"error":      err.Error(),
		})
		c.shutdown()
		return
	}

	for {
		select {
		case message := <-c.inbox:
			c.handler.HandleMessage(c, message)
		case <-c.refresh:
			c.handler.Refresh(c)
		case <-c.done:
			return
		}
	}
}

// WritePump 클라이언트로 메시지 쓰기
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.shutdown()
		c.Conn.Close()
	}()

	for {
		select {
		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Error("Failed to write message", err, c.fields())
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			// flush what the handler queued before closing
			for {
				select {
				case message := <-c.Send:
					c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
						return
					}
				default:
					c.Conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))
					return
				}
			}
		}
	}
}

// Close ends the connection from the server side.
func (c *Client) Close() {
	c.shutdown()
}
