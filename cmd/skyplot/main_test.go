package main

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyplot/skyplot/internal/config"
	"github.com/skyplot/skyplot/internal/database"
	"github.com/skyplot/skyplot/internal/mapio"
	"github.com/skyplot/skyplot/internal/skyerr"
	"github.com/skyplot/skyplot/pkg/core"
)

var testPixels = []float64{0.5, 0.2, 0.1, 0.05, 0.05, 0.04, 0.03, 0.02, 0.01, 0, 0, 0}

func writeSkyMap(t *testing.T, dir string, meta core.Metadata) string {
	t.Helper()
	path := filepath.Join(dir, "skymap.json")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, mapio.Write(f, core.SkyMap{Values: testPixels}, meta, false))
	return path
}

func TestRenderOptions(t *testing.T) {
	opts, err := renderOptions(config.PlotConfig{
		Frame:          "terrestrial",
		Projection:     "zoom",
		Center:         "14h 10d",
		Radius:         "4deg",
		Contours:       []float64{50, 90},
		Nested:         "ring",
		OutputOrdering: "nested",
		AreaUnit:       "sr",
		Colorbar:       true,
	})
	require.NoError(t, err)

	assert.Equal(t, core.Terrestrial, opts.Projection.Frame)
	assert.Equal(t, core.Zoom, opts.Projection.Family)
	assert.Equal(t, "14h 10d", opts.Projection.Center)
	assert.Equal(t, core.SchemeRing, opts.SchemeHint)
	assert.Equal(t, core.SchemeNested, opts.OutputScheme)
	assert.Equal(t, core.Steradians, opts.AreaUnit)
	assert.Equal(t, []float64{50, 90}, opts.Contours)
	assert.True(t, opts.Colorbar)
}

func TestRenderOptions_Invalid(t *testing.T) {
	tests := []struct {
		name string
		plot config.PlotConfig
	}{
		{"frame", config.PlotConfig{Frame: "galactic"}},
		{"projection", config.PlotConfig{Projection: "hammer"}},
		{"ordering", config.PlotConfig{Nested: "zigzag"}},
		{"output ordering", config.PlotConfig{OutputOrdering: "zigzag"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := renderOptions(tt.plot)
			require.Error(t, err)
			assert.True(t, skyerr.IsConfiguration(err))
		})
	}
}

func TestMarkerSources(t *testing.T) {
	mc := config.MarkerConfig{RADec: []string{"14h 10d"}, Symbol: "*", Color: "white", EdgeColor: "black", Size: 10}

	src, db, err := markerSources(mc, config.InjectionDBConfig{})
	require.NoError(t, err)
	assert.Nil(t, db)
	assert.Nil(t, src.Finder)
	require.NotNil(t, src.Explicit)
	assert.Equal(t, "white", src.Style.Color)

	src, db, err = markerSources(mc, config.InjectionDBConfig{Type: "sqlite", Path: filepath.Join(t.TempDir(), "inj.sqlite")})
	require.NoError(t, err)
	require.NotNil(t, db)
	t.Cleanup(func() { _ = database.Close(db) })
	assert.NotNil(t, src.Finder)

	_, _, err = markerSources(config.MarkerConfig{RADec: []string{"nowhere"}}, config.InjectionDBConfig{})
	assert.True(t, skyerr.IsConfiguration(err))

	_, _, err = markerSources(mc, config.InjectionDBConfig{Type: "oracle"})
	assert.True(t, skyerr.IsDataSource(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitConfig, exitCode(skyerr.Config("x", skyerr.ErrInvalidAngle)))
	assert.Equal(t, exitDataSource, exitCode(skyerr.Source("x", skyerr.ErrNoInjection)))
	assert.Equal(t, exitUnavailable, exitCode(errors.New("boom")))
}

func TestRun_ExportsRenderRequest(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := t.TempDir()
	mapPath := writeSkyMap(t, dir, core.Metadata{Scheme: core.SchemeNested, ObjectID: "coinc:1"})
	outDir := filepath.Join(dir, "out")

	var stderr bytes.Buffer
	code := run([]string{
		"--config-dir", dir,
		"--logs-dir", filepath.Join(dir, "logs"),
		"--output-dir", outDir,
		"--contour", "90",
		"--annotate",
		mapPath,
	}, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	exported, err := filepath.Glob(filepath.Join(outDir, "*.json.gz"))
	require.NoError(t, err)
	assert.Len(t, exported, 1)

	logs, err := filepath.Glob(filepath.Join(dir, "logs", "skyplot.*.log"))
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestRun_OutputOrdering(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := t.TempDir()
	mapPath := writeSkyMap(t, dir, core.Metadata{Scheme: core.SchemeNested, ObjectID: "coinc:1"})
	outDir := filepath.Join(dir, "out")

	var stderr bytes.Buffer
	code := run([]string{
		"--config-dir", dir,
		"--logs-dir", filepath.Join(dir, "logs"),
		"--output-dir", outDir,
		"--output-ordering", "ring",
		mapPath,
	}, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	exported, err := filepath.Glob(filepath.Join(outDir, "*.json.gz"))
	require.NoError(t, err)
	require.Len(t, exported, 1)

	f, err := os.Open(exported[0])
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)

	var export struct {
		Request struct {
			Density struct {
				Values []float64 `json:"values"`
				Scheme string    `json:"scheme"`
			} `json:"density"`
		} `json:"request"`
	}
	require.NoError(t, json.NewDecoder(gz).Decode(&export))
	assert.Equal(t, "RING", export.Request.Density.Scheme)
	assert.Len(t, export.Request.Density.Values, len(testPixels))
}

func TestRun_TerrestrialWithoutTime(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := t.TempDir()
	mapPath := writeSkyMap(t, dir, core.Metadata{Scheme: core.SchemeNested})

	var stderr bytes.Buffer
	code := run([]string{
		"--config-dir", dir,
		"--logs-dir", filepath.Join(dir, "logs"),
		"--output-dir", filepath.Join(dir, "out"),
		"--geo", "terrestrial",
		mapPath,
	}, &stderr)
	assert.Equal(t, exitConfig, code)
	assert.Contains(t, stderr.String(), "observation time")
}

func TestRun_MissingMap(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := t.TempDir()

	var stderr bytes.Buffer
	code := run([]string{
		"--config-dir", dir,
		"--logs-dir", filepath.Join(dir, "logs"),
		filepath.Join(dir, "absent.json"),
	}, &stderr)
	assert.Equal(t, exitDataSource, code)
}

func TestRun_Usage(t *testing.T) {
	t.Cleanup(viper.Reset)

	var stderr bytes.Buffer
	assert.Equal(t, exitConfig, run(nil, &stderr))
	assert.Contains(t, stderr.String(), "usage: skyplot")
	assert.Equal(t, exitOK, run([]string{"--help"}, &stderr))
}
