package storage_test

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyplot/skyplot/internal/config"
	"github.com/skyplot/skyplot/internal/storage"
	gormstorage "github.com/skyplot/skyplot/internal/storage/gorm"
	"github.com/skyplot/skyplot/internal/storage/memory"
	"github.com/skyplot/skyplot/internal/storage/websocket"
)

// Compile-time interface checks
var (
	_ storage.Backend    = (*memory.Backend)(nil)
	_ storage.Exportable = (*memory.Backend)(nil)
	_ storage.Backend    = (*gormstorage.Backend)(nil)
	_ storage.Backend    = (*websocket.Backend)(nil)
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestNewBackend(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StorageConfig
		wantT   any
		wantErr bool
	}{
		{"memory", config.StorageConfig{Type: "memory"}, &memory.Backend{}, false},
		{"default", config.StorageConfig{}, &memory.Backend{}, false},
		{"sqlite", config.StorageConfig{Type: "sqlite", SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "x.db")}}, &gormstorage.Backend{}, false},
		{"postgres", config.StorageConfig{Type: "postgres"}, &gormstorage.Backend{}, false},
		{"websocket", config.StorageConfig{Type: "websocket"}, &websocket.Backend{}, false},
		{"unknown", config.StorageConfig{Type: "s3"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := storage.NewBackend(tt.cfg, quietLogger)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantT, b)
		})
	}
}
