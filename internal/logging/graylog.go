package logging

import (
	"fmt"

	"github.com/Graylog2/go-gelf/gelf"

	"github.com/skyplot/skyplot/internal/config"
)

// NewGraylogWriter opens a GELF UDP writer for cfg. It returns nil
// without error when Graylog shipping is disabled.
func NewGraylogWriter(cfg config.GraylogConfig) (*gelf.Writer, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	w, err := gelf.NewWriter(cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("graylog writer %s: %w", cfg.Address, err)
	}
	w.Facility = InstrumentationName
	return w, nil
}
