package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/skyplot/skyplot/pkg/streaming"
)

const (
	ackChSize      = 16
	maxRedial      = 5
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
	writeWait      = 10 * time.Second
	ackTimeout     = 10 * time.Second
)

var errNotConnected = errors.New("websocket not connected")

// connection is a request/ack channel to the renderer. Writes happen on
// the caller's goroutine, one exchange at a time; a single read goroutine
// per socket routes acks back.
type connection struct {
	mu     sync.Mutex // guards conn, closed, cachedHello
	conn   *ws.Conn
	closed bool

	// held for a whole write-then-wait exchange
	exchangeMu sync.Mutex

	ackCh chan streaming.AckMessage
	done  chan struct{}

	wsURL   string
	secret  string
	backoff time.Duration

	// Acknowledged hello, replayed after a redial.
	cachedHello []byte

	logger *slog.Logger
}

func newConnection(logger *slog.Logger) *connection {
	return &connection{
		ackCh:   make(chan streaming.AckMessage, ackChSize),
		done:    make(chan struct{}),
		backoff: initialBackoff,
		logger:  logger,
	}
}

// dial connects to the WebSocket server and starts the read loop.
func (c *connection) dial(rawURL, secret string) error {
	c.wsURL = rawURL
	c.secret = secret

	conn, err := c.dialOnce()
	if err != nil {
		return err
	}
	c.attach(conn)
	return nil
}

// dialOnce performs a single WebSocket dial with the secret query param.
func (c *connection) dialOnce() (*ws.Conn, error) {
	u, err := url.Parse(c.wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid websocket URL: %w", err)
	}
	if c.secret != "" {
		q := u.Query()
		q.Set("secret", c.secret)
		u.RawQuery = q.Encode()
	}

	conn, _, err := ws.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	return conn, nil
}

func (c *connection) attach(conn *ws.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	go c.readLoop(conn)
}

// readLoop routes ack messages from conn to ackCh. On a read error the
// socket is detached so the next exchange redials.
func (c *connection) readLoop(conn *ws.Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				return
			default:
			}
			c.logger.Warn("WebSocket read error", "error", err)
			c.mu.Lock()
			if c.conn == conn {
				c.conn = nil
			}
			c.mu.Unlock()
			_ = conn.Close()
			return
		}

		var ack streaming.AckMessage
		if err := json.Unmarshal(message, &ack); err != nil || ack.Type != streaming.TypeAck {
			c.logger.Debug("Non-ack message received", "raw", string(message))
			continue
		}

		select {
		case c.ackCh <- ack:
		default:
			c.logger.Debug("Ack channel full, dropping", "for", ack.For)
		}
	}
}

func (c *connection) write(data []byte) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return errNotConnected
	}

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(ws.TextMessage, data)
}

// redial re-establishes the socket with exponential backoff and replays
// the cached hello before any other message.
func (c *connection) redial() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.New("websocket closed")
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	hello := c.cachedHello
	c.mu.Unlock()

	backoff := c.backoff
	var lastErr error
	for attempt := 1; attempt <= maxRedial; attempt++ {
		c.logger.Info("Reconnecting to WebSocket", "attempt", attempt, "backoff", backoff)
		select {
		case <-c.done:
			return errors.New("websocket closed")
		case <-time.After(backoff):
		}

		conn, err := c.dialOnce()
		if err != nil {
			c.logger.Warn("Reconnect dial failed", "attempt", attempt, "error", err)
			lastErr = err
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		c.attach(conn)

		if hello != nil {
			if err := c.write(hello); err != nil {
				lastErr = err
				continue
			}
			if err := c.waitAck(streaming.TypeHello, ackTimeout); err != nil {
				return err
			}
		}
		c.logger.Info("WebSocket reconnected", "attempt", attempt)
		return nil
	}
	return fmt.Errorf("websocket reconnect failed after %d attempts: %w", maxRedial, lastErr)
}

// sendAndWait writes data and blocks until the server acknowledges it
// with a matching ack or the timeout expires. A failed write triggers one
// redial and resend. An ack carrying an error is returned as an error.
func (c *connection) sendAndWait(data []byte, ackFor string, timeout time.Duration) error {
	c.exchangeMu.Lock()
	defer c.exchangeMu.Unlock()

	if err := c.write(data); err != nil {
		c.logger.Warn("WebSocket write error", "for", ackFor, "error", err)
		if err := c.redial(); err != nil {
			return err
		}
		if err := c.write(data); err != nil {
			return fmt.Errorf("send %s: %w", ackFor, err)
		}
	}
	return c.waitAck(ackFor, timeout)
}

func (c *connection) waitAck(ackFor string, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case ack := <-c.ackCh:
			if ack.For != ackFor {
				continue
			}
			if ack.Error != "" {
				return fmt.Errorf("%s rejected: %s", ackFor, ack.Error)
			}
			return nil
		case <-timer.C:
			return fmt.Errorf("timeout waiting for ack of %q", ackFor)
		case <-c.done:
			return fmt.Errorf("connection closed while waiting for ack of %q", ackFor)
		}
	}
}

// close sends a WebSocket close frame and stops the read loop.
func (c *connection) close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return nil
	}

	_ = conn.WriteControl(
		ws.CloseMessage,
		ws.FormatCloseMessage(ws.CloseNormalClosure, ""),
		time.Now().Add(writeWait),
	)
	return conn.Close()
}
