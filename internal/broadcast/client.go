package broadcast

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hazyhaar/pkg/idgen"
)

// maxInboundMessage bounds what a client may send; the stream ignores
// inbound payloads and only reads to detect closure.
const maxInboundMessage = 4096

// Client is one registered stream connection. A gorilla connection supports a
// single concurrent writer, so sends are serialized by mu.
type Client struct {
	id   string
	conn *websocket.Conn

	mu        sync.Mutex
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{id: idgen.New(), conn: conn}
}

func (c *Client) send(v any, timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if timeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			return err
		}
	}
	return c.conn.WriteJSON(v)
}

// readLoop blocks until the peer closes the connection or a read fails.
func (c *Client) readLoop() error {
	c.conn.SetReadLimit(maxInboundMessage)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return err
		}
	}
}

// close sends a close frame (best effort) and releases the connection.
func (c *Client) close(code int, reason string) {
	c.closeOnce.Do(func() {
		deadline := time.Now().Add(time.Second)
		_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
		_ = c.conn.Close()
	})
}
