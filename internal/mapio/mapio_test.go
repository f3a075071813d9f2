package mapio

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyplot/skyplot/internal/skyerr"
	"github.com/skyplot/skyplot/pkg/core"
)

const twelvePixels = `[0.5, 0.2, 0.1, 0.05, 0.05, 0.04, 0.03, 0.02, 0.01, 0, 0, 0]`

func TestRead_WithMetadata(t *testing.T) {
	doc := `{"gps_time": 1187008882.4, "ordering": "NESTED", "objid": "coinc:1", "pixels": ` + twelvePixels + `}`
	m, meta, err := Read(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, 12, m.Len())
	assert.Equal(t, core.SchemeUnknown, m.Scheme)
	assert.Equal(t, 0.5, m.Values[0])
	assert.Equal(t, core.SchemeNested, meta.Scheme)
	assert.True(t, meta.HasGPSTime)
	assert.Equal(t, 1187008882.4, meta.GPSTime)
	assert.Equal(t, "coinc:1", meta.ObjectID)
}

func TestRead_MinimalDocument(t *testing.T) {
	_, meta, err := Read(strings.NewReader(`{"pixels": ` + twelvePixels + `}`))
	require.NoError(t, err)
	assert.False(t, meta.HasGPSTime)
	assert.Equal(t, core.SchemeUnknown, meta.Scheme)
	assert.Empty(t, meta.ObjectID)
}

func TestRead_InvalidResolution(t *testing.T) {
	_, _, err := Read(strings.NewReader(`{"pixels": [0.5, 0.5]}`))
	require.Error(t, err)
	assert.True(t, skyerr.IsConfiguration(err))
	assert.ErrorIs(t, err, skyerr.ErrInvalidResolution)
}

func TestRead_NegativePixel(t *testing.T) {
	_, _, err := Read(strings.NewReader(`{"pixels": [1, -0.1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0]}`))
	assert.True(t, skyerr.IsConfiguration(err))
}

func TestRead_Garbage(t *testing.T) {
	_, _, err := Read(strings.NewReader(`not json`))
	assert.Error(t, err)
}

func TestWriteRead_Gzip(t *testing.T) {
	m := core.SkyMap{Values: []float64{0.5, 0.2, 0.1, 0.05, 0.05, 0.04, 0.03, 0.02, 0.01, 0, 0, 0}}
	meta := core.Metadata{GPSTime: 1e9, HasGPSTime: true, Scheme: core.SchemeRing, ObjectID: "x"}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, m, meta, true))
	assert.Equal(t, gzipMagic, buf.Bytes()[:2])

	path := filepath.Join(t.TempDir(), "map.json.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	got, gotMeta, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, m.Values, got.Values)
	assert.Equal(t, meta, gotMeta)
}

func TestReadFile_Missing(t *testing.T) {
	_, _, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
