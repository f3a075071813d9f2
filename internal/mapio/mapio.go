// Package mapio reads sky maps stored as JSON documents, optionally gzipped.
//
// A document looks like
//
//	{"gps_time": 1187008882.4, "ordering": "NESTED", "objid": "coinc_event:coinc_event_id:1", "pixels": [...]}
//
// "gps_time", "ordering" and "objid" are optional.
package mapio

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/skyplot/skyplot/internal/healpix"
	"github.com/skyplot/skyplot/internal/skyerr"
	"github.com/skyplot/skyplot/pkg/core"
)

type document struct {
	GPSTime  *float64  `json:"gps_time"`
	Ordering string    `json:"ordering"`
	ObjectID string    `json:"objid"`
	Pixels   []float64 `json:"pixels"`
}

var gzipMagic = []byte{0x1f, 0x8b}

// ReadFile opens path and decodes the sky map in it.
func ReadFile(path string) (core.SkyMap, core.Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.SkyMap{}, core.Metadata{}, fmt.Errorf("open sky map: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read decodes a sky map. Gzip input is detected from its magic bytes.
//
// The map's own scheme is left unknown: the ordering field is metadata and
// the pixel-ordering resolver decides which one applies. Negative or
// non-finite pixel values and a pixel count that is not 12·k² are
// configuration errors.
func Read(r io.Reader) (core.SkyMap, core.Metadata, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(2); err == nil && bytes.Equal(head, gzipMagic) {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return core.SkyMap{}, core.Metadata{}, fmt.Errorf("open gzip stream: %w", err)
		}
		defer zr.Close()
		r = zr
	} else {
		r = br
	}

	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return core.SkyMap{}, core.Metadata{}, fmt.Errorf("decode sky map: %w", err)
	}

	if _, err := healpix.Npix2Nside(len(doc.Pixels)); err != nil {
		return core.SkyMap{}, core.Metadata{}, err
	}
	for i, v := range doc.Pixels {
		if v < 0 {
			return core.SkyMap{}, core.Metadata{}, skyerr.Configf("read sky map", skyerr.ErrInvalidOption,
				"pixel %d has negative probability %g", i, v)
		}
	}

	meta := core.Metadata{
		Scheme:   core.ParseScheme(doc.Ordering),
		ObjectID: doc.ObjectID,
	}
	if doc.GPSTime != nil {
		meta.GPSTime = *doc.GPSTime
		meta.HasGPSTime = true
	}
	return core.SkyMap{Values: doc.Pixels, Scheme: core.SchemeUnknown}, meta, nil
}

// Write encodes m and meta as a JSON document, gzipped when compress is set.
func Write(w io.Writer, m core.SkyMap, meta core.Metadata, compress bool) error {
	doc := document{
		Ordering: meta.Scheme.String(),
		ObjectID: meta.ObjectID,
		Pixels:   m.Values,
	}
	if meta.Scheme == core.SchemeUnknown {
		doc.Ordering = ""
	}
	if meta.HasGPSTime {
		t := meta.GPSTime
		doc.GPSTime = &t
	}

	if compress {
		zw := gzip.NewWriter(w)
		if err := json.NewEncoder(zw).Encode(doc); err != nil {
			return fmt.Errorf("encode sky map: %w", err)
		}
		return zw.Close()
	}
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("encode sky map: %w", err)
	}
	return nil
}
