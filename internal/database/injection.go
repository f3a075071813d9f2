package database

import (
	"context"
	"math"
	"strings"

	"gorm.io/gorm"

	"github.com/skyplot/skyplot/internal/skyerr"
	"github.com/skyplot/skyplot/pkg/core"
)

// SimInspiral is the subset of the injection table read by the lookup.
// Angles are stored in radians by the pipelines that fill it.
type SimInspiral struct {
	SimulationID string  `gorm:"column:simulation_id;primaryKey"`
	Longitude    float64 `gorm:"column:longitude"`
	Latitude     float64 `gorm:"column:latitude"`
}

func (*SimInspiral) TableName() string { return "sim_inspiral" }

// CoincEventMap links events that belong to the same coincidence.
type CoincEventMap struct {
	CoincEventID string `gorm:"column:coinc_event_id;index"`
	Table        string `gorm:"column:table_name"`
	EventID      string `gorm:"column:event_id;index"`
}

func (*CoincEventMap) TableName() string { return "coinc_event_map" }

// Models lists the tables the lookup touches, for migrations in tests and tooling.
var Models = []any{&SimInspiral{}, &CoincEventMap{}}

const injectionQuery = `SELECT DISTINCT si.longitude AS longitude, si.latitude AS latitude
FROM sim_inspiral AS si
INNER JOIN coinc_event_map AS cm1 ON (si.simulation_id = cm1.event_id)
INNER JOIN coinc_event_map AS cm2 ON (cm1.coinc_event_id = cm2.coinc_event_id)
WHERE cm2.event_id = ?`

type injectionRow struct {
	Longitude float64
	Latitude  float64
}

// InjectionFinder looks up the injected sky position that produced an event.
type InjectionFinder struct {
	db      *gorm.DB
	radians bool
}

// NewInjectionFinder wraps db. angleUnit is "radians" (the default) or "degrees".
func NewInjectionFinder(db *gorm.DB, angleUnit string) *InjectionFinder {
	return &InjectionFinder{
		db:      db,
		radians: !strings.EqualFold(strings.TrimSpace(angleUnit), "degrees"),
	}
}

// FindInjection returns the position correlated with objectID in degrees.
// Zero or several matching rows is a data-source error.
func (f *InjectionFinder) FindInjection(ctx context.Context, objectID string) (core.SkyCoord, error) {
	if objectID == "" {
		return core.SkyCoord{}, skyerr.Config("find injection", skyerr.ErrMissingObjectID)
	}

	var rows []injectionRow
	if err := f.db.WithContext(ctx).Raw(injectionQuery, objectID).Scan(&rows).Error; err != nil {
		return core.SkyCoord{}, skyerr.Source("find injection", err)
	}

	switch len(rows) {
	case 0:
		return core.SkyCoord{}, skyerr.Source("find injection", skyerr.ErrNoInjection)
	case 1:
	default:
		return core.SkyCoord{}, skyerr.Source("find injection", skyerr.ErrAmbiguousInjection)
	}

	lon, lat := rows[0].Longitude, rows[0].Latitude
	if f.radians {
		lon, lat = lon*180/math.Pi, lat*180/math.Pi
	}
	lon = math.Mod(lon, 360)
	if lon < 0 {
		lon += 360
	}
	return core.SkyCoord{Lon: lon, Lat: lat}, nil
}
