package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/skyplot/skyplot/internal/config"
	"github.com/skyplot/skyplot/pkg/core"
)

// Backend keeps every saved render in memory and exports each one to a
// JSON file, gzipped when configured.
type Backend struct {
	cfg     config.MemoryConfig
	renders []core.RenderRequest

	lastExportPath string
	now            func() time.Time
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg: cfg,
		now: time.Now,
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// SaveRender stores req and writes its export file.
func (b *Backend) SaveRender(req *core.RenderRequest) error {
	if req == nil {
		return fmt.Errorf("nil render request")
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.renders = append(b.renders, *req)
	return b.exportJSON(req)
}

// Renders returns a copy of the saved requests.
func (b *Backend) Renders() []core.RenderRequest {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]core.RenderRequest, len(b.renders))
	copy(out, b.renders)
	return out
}

// ExportedFilePath returns the path of the last exported file
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
