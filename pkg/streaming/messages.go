package streaming

import (
	"encoding/json"

	"github.com/skyplot/skyplot/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeHello         = "hello"
	TypeRenderRequest = "render_request"
	TypeAck           = "ack"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
	// Error is set when the renderer rejected the message.
	Error string `json:"error,omitempty"`
}

// HelloPayload is sent once after connecting.
type HelloPayload struct {
	Client  string `json:"client"`
	Version string `json:"version"`
}

// RenderRequestPayload carries one assembled render request.
type RenderRequestPayload struct {
	Request *core.RenderRequest `json:"request"`
}
