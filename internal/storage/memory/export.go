package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/skyplot/skyplot/pkg/core"
)

// RenderExport is the root JSON structure of an exported request.
type RenderExport struct {
	FormatVersion int                 `json:"formatVersion"`
	ExportedAt    string              `json:"exportedAt"`
	Request       *core.RenderRequest `json:"request"`
}

const formatVersion = 1

// exportJSON writes req to <objid>_<timestamp>.json[.gz] in the output directory
func (b *Backend) exportJSON(req *core.RenderRequest) error {
	now := b.now().UTC()
	export := RenderExport{
		FormatVersion: formatVersion,
		ExportedAt:    now.Format("2006-01-02T15:04:05Z07:00"),
		Request:       req,
	}

	// Build filename
	name := req.ObjectID
	if name == "" {
		name = "render"
	}
	name = strings.NewReplacer(" ", "_", ":", "_", "/", "_", "\\", "_").Replace(name)
	timestamp := now.Format("20060102_150405")

	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("%s_%s.json.gz", name, timestamp)
	} else {
		filename = fmt.Sprintf("%s_%s.json", name, timestamp)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	// Ensure output directory exists
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Write file
	if b.cfg.CompressOutput {
		if err := writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

func writeJSON(path string, data any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func writeGzipJSON(path string, data any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gw := gzip.NewWriter(f)
	if err := json.NewEncoder(gw).Encode(data); err != nil {
		gw.Close()
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	if err := gw.Close(); err != nil {
		return fmt.Errorf("failed to close gzip writer: %w", err)
	}
	return nil
}
