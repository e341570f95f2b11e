package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"recite/internal/relay"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Request is a frame sent to the background process
type Request struct {
	ID          string `json:"id"`
	Event       string `json:"event"`
	Payload     any    `json:"payload,omitempty"`
	ExpectReply bool   `json:"expectReply,omitempty"`
}

// Reply is a frame answering a Request with the same ID
type Reply struct {
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Client implements relay.Channel over a websocket connection
type Client struct {
	conn   *websocket.Conn
	logger *zap.Logger

	writeMu sync.Mutex

	mu           sync.Mutex
	pending      map[string]chan Reply
	hooks        []func()
	disconnected bool
	done         chan struct{}
}

// Dial connects to the background process at url
func Dial(ctx context.Context, url string, logger *zap.Logger) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	c := NewClient(conn, logger)
	logger.Info("Connected to background process", zap.String("url", url))
	return c, nil
}

// NewClient wraps an established connection and starts reading replies
func NewClient(conn *websocket.Conn, logger *zap.Logger) *Client {
	c := &Client{
		conn:    conn,
		logger:  logger,
		pending: make(map[string]chan Reply),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// Send writes a request; with expectReply it waits for the matching reply
func (c *Client) Send(ctx context.Context, event string, payload any, expectReply bool) (json.RawMessage, error) {
	id := uuid.NewString()

	c.mu.Lock()
	if c.disconnected {
		c.mu.Unlock()
		return nil, relay.ErrDisconnected
	}
	var ch chan Reply
	if expectReply {
		ch = make(chan Reply, 1)
		c.pending[id] = ch
	}
	c.mu.Unlock()

	c.writeMu.Lock()
	err := c.conn.WriteJSON(Request{ID: id, Event: event, Payload: payload, ExpectReply: expectReply})
	c.writeMu.Unlock()
	if err != nil {
		c.forget(id)
		return nil, fmt.Errorf("write %q: %w", event, err)
	}

	if !expectReply {
		return nil, nil
	}

	select {
	case rep := <-ch:
		if rep.Error != "" {
			return nil, fmt.Errorf("%s: %s", event, rep.Error)
		}
		return rep.Payload, nil
	case <-c.done:
		return nil, relay.ErrDisconnected
	case <-ctx.Done():
		c.forget(id)
		return nil, ctx.Err()
	}
}

// Disconnected reports whether the connection is gone
func (c *Client) Disconnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnected
}

// OnDisconnect registers fn to run once on disconnect; it runs at once if already disconnected
func (c *Client) OnDisconnect(fn func()) {
	c.mu.Lock()
	if c.disconnected {
		c.mu.Unlock()
		fn()
		return
	}
	c.hooks = append(c.hooks, fn)
	c.mu.Unlock()
}

// Close drops the connection
func (c *Client) Close() error {
	c.disconnect()
	return nil
}

func (c *Client) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) readLoop() {
	defer c.disconnect()

	for {
		var rep Reply
		if err := c.conn.ReadJSON(&rep); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn("Background connection lost", zap.Error(err))
			} else {
				c.logger.Info("Background connection closed")
			}
			return
		}

		c.mu.Lock()
		ch, ok := c.pending[rep.ID]
		delete(c.pending, rep.ID)
		c.mu.Unlock()

		if !ok {
			c.logger.Debug("Reply for unknown request", zap.String("id", rep.ID))
			continue
		}
		ch <- rep
	}
}

func (c *Client) disconnect() {
	c.mu.Lock()
	if c.disconnected {
		c.mu.Unlock()
		return
	}
	c.disconnected = true
	hooks := c.hooks
	c.hooks = nil
	c.pending = make(map[string]chan Reply)
	close(c.done)
	c.mu.Unlock()

	_ = c.conn.Close()
	for _, fn := range hooks {
		fn()
	}
}
