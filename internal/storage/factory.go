package storage

import (
	"fmt"
	"log/slog"

	"github.com/skyplot/skyplot/internal/config"
	"github.com/skyplot/skyplot/internal/database"
	gormstorage "github.com/skyplot/skyplot/internal/storage/gorm"
	"github.com/skyplot/skyplot/internal/storage/memory"
	"github.com/skyplot/skyplot/internal/storage/websocket"
)

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, logger *slog.Logger) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		pg := cfg.Postgres
		return gormstorage.New(gormstorage.Config{
			Dialect: gormstorage.Postgres,
			DSN:     database.PostgresDSN(pg.Host, pg.Port, pg.Username, pg.Password, pg.Database),
		}, logger), nil
	case "sqlite":
		return gormstorage.New(gormstorage.Config{
			Dialect: gormstorage.SQLite,
			DSN:     cfg.SQLite.Path,
		}, logger), nil
	case "websocket":
		return websocket.New(websocket.Config{
			URL:    cfg.WebSocket.URL,
			Secret: cfg.WebSocket.Secret,
		}, logger), nil
	case "memory", "":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
