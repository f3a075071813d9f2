// Package websocket streams render requests to a remote renderer.
package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/skyplot/skyplot/pkg/core"
	"github.com/skyplot/skyplot/pkg/streaming"
)

// ClientName identifies this client in the hello message.
const ClientName = "skyplot"

// Version is reported to the renderer in the hello message.
var Version = "dev"

// Config holds WebSocket backend configuration.
type Config struct {
	URL    string
	Secret string
}

// Backend streams render requests over WebSocket and waits for the
// renderer to acknowledge each one.
type Backend struct {
	conn *connection
	cfg  Config
}

// New creates a new WebSocket storage backend.
func New(cfg Config, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		conn: newConnection(logger),
		cfg:  cfg,
	}
}

// Init connects to the renderer and introduces the client.
func (b *Backend) Init() error {
	if err := b.conn.dial(b.cfg.URL, b.cfg.Secret); err != nil {
		return err
	}

	hello, err := marshalEnvelope(streaming.TypeHello, streaming.HelloPayload{Client: ClientName, Version: Version})
	if err != nil {
		return err
	}

	if err := b.conn.sendAndWait(hello, streaming.TypeHello, ackTimeout); err != nil {
		return err
	}

	// Cache for redial replay.
	b.conn.mu.Lock()
	b.conn.cachedHello = hello
	b.conn.mu.Unlock()
	return nil
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.conn.close()
}

// SaveRender sends req and waits for the renderer's ack.
func (b *Backend) SaveRender(req *core.RenderRequest) error {
	if req == nil {
		return fmt.Errorf("nil render request")
	}
	data, err := marshalEnvelope(streaming.TypeRenderRequest, streaming.RenderRequestPayload{Request: req})
	if err != nil {
		return err
	}
	return b.conn.sendAndWait(data, streaming.TypeRenderRequest, ackTimeout)
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}
