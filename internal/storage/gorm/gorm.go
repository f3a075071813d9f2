// Package gormstorage keeps a ledger of render requests in SQLite or Postgres.
package gormstorage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/skyplot/skyplot/internal/database"
	"github.com/skyplot/skyplot/pkg/core"
)

// Dialect selects the database driver.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// Config holds the ledger connection settings.
type Config struct {
	Dialect Dialect
	// DSN is a file path for SQLite and a libpq connection string for Postgres.
	DSN string
}

// Render is one saved render request.
type Render struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	ObjectID   string    `gorm:"index;size:256" json:"objectId"`
	Nside      int       `json:"nside"`
	Frame      string    `gorm:"size:16" json:"frame"`
	Projection string    `gorm:"size:16" json:"projection"`
	VMax       float64   `json:"vmax"`
	Annotation string    `json:"annotation"`
	// Descriptor is the projection descriptor as JSON.
	Descriptor datatypes.JSON `json:"descriptor"`
	Markers    datatypes.JSON `json:"markers"`
	Warnings   datatypes.JSON `json:"warnings"`
	// Request is the full render request, density and levels included.
	Request  datatypes.JSON  `json:"request"`
	Contours []RenderContour `gorm:"foreignKey:RenderID" json:"contours"`
}

// RenderContour is one contour summary of a saved render.
type RenderContour struct {
	ID         uint    `gorm:"primarykey" json:"id"`
	RenderID   uint    `gorm:"index" json:"renderId"`
	Percent    float64 `json:"percent"`
	PixelCount int     `json:"pixelCount"`
	Area       int     `json:"area"`
}

// Models lists the ledger tables.
var Models = []any{&Render{}, &RenderContour{}}

// Backend writes every render request to the ledger.
type Backend struct {
	cfg    Config
	db     *gorm.DB
	logger *slog.Logger
}

// New creates a ledger backend. The connection is opened by Init.
func New(cfg Config, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{cfg: cfg, logger: logger}
}

// Init connects and migrates the schema.
func (b *Backend) Init() error {
	var (
		db  *gorm.DB
		err error
	)
	switch b.cfg.Dialect {
	case SQLite:
		db, err = database.GetSqliteDB(b.cfg.DSN)
	case Postgres:
		db, err = database.GetPostgresDB(b.cfg.DSN)
	default:
		return fmt.Errorf("unknown ledger dialect: %q", b.cfg.Dialect)
	}
	if err != nil {
		return fmt.Errorf("failed to open %s ledger: %w", b.cfg.Dialect, err)
	}

	if err := db.AutoMigrate(Models...); err != nil {
		_ = database.Close(db)
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	b.db = db
	b.logger.Info("Render ledger ready", "dialect", b.cfg.Dialect)
	return nil
}

// Close releases the connection.
func (b *Backend) Close() error {
	db := b.db
	b.db = nil
	return database.Close(db)
}

// SaveRender inserts req and its contour summaries.
func (b *Backend) SaveRender(req *core.RenderRequest) error {
	if b.db == nil {
		return fmt.Errorf("ledger not initialized")
	}
	if req == nil {
		return fmt.Errorf("nil render request")
	}

	record, err := toRecord(req)
	if err != nil {
		return err
	}
	if err := b.db.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to save render: %w", err)
	}
	b.logger.Debug("Saved render", "id", record.ID, "objectId", record.ObjectID)
	return nil
}

// Renders returns the saved renders for objectID, oldest first, with their contours.
// An empty objectID returns every render.
func (b *Backend) Renders(objectID string) ([]Render, error) {
	if b.db == nil {
		return nil, fmt.Errorf("ledger not initialized")
	}
	q := b.db.Preload("Contours").Order("id")
	if objectID != "" {
		q = q.Where("object_id = ?", objectID)
	}
	var out []Render
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list renders: %w", err)
	}
	return out, nil
}

func toRecord(req *core.RenderRequest) (Render, error) {
	descriptor, err := json.Marshal(req.Projection)
	if err != nil {
		return Render{}, fmt.Errorf("marshal descriptor: %w", err)
	}
	markers, err := json.Marshal(req.Markers)
	if err != nil {
		return Render{}, fmt.Errorf("marshal markers: %w", err)
	}
	warnings, err := json.Marshal(req.Warnings)
	if err != nil {
		return Render{}, fmt.Errorf("marshal warnings: %w", err)
	}
	full, err := json.Marshal(req)
	if err != nil {
		return Render{}, fmt.Errorf("marshal request: %w", err)
	}

	r := Render{
		ObjectID:   req.ObjectID,
		Nside:      req.Nside,
		Frame:      req.Projection.Frame().String(),
		Projection: req.Projection.Family().String(),
		VMax:       req.VMax,
		Annotation: req.Annotation,
		Descriptor: datatypes.JSON(descriptor),
		Markers:    datatypes.JSON(markers),
		Warnings:   datatypes.JSON(warnings),
		Request:    datatypes.JSON(full),
	}
	for _, c := range req.Contours {
		r.Contours = append(r.Contours, RenderContour{
			Percent:    c.Percent,
			PixelCount: c.PixelCount,
			Area:       c.Area,
		})
	}
	return r, nil
}
