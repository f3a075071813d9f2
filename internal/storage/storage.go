package storage

import "github.com/skyplot/skyplot/pkg/core"

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// SaveRender hands one assembled render request to the sink.
	SaveRender(req *core.RenderRequest) error
}

// Exportable is an optional interface for storage backends that write
// files a renderer can pick up later.
type Exportable interface {
	ExportedFilePath() string
}
